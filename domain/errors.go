package domain

import "errors"

// ErrNotFound is returned when a referenced record id does not exist.
var ErrNotFound = errors.New("not found")
