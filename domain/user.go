package domain

import "time"

// User is a registered account in the auth service. The todo API never sees
// users; it only verifies tokens minted for them.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Email        string
	CreatedAt    time.Time
}
