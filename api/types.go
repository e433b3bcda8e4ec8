package api

import (
	"context"

	"todoboard/domain"
	"todoboard/token"
)

// Storage abstracts persistence for handlers.
type Storage interface {
	List(ctx context.Context) ([]domain.Task, error)
	Get(ctx context.Context, id int64) (domain.Task, error)
	Create(ctx context.Context, t domain.Task) (domain.Task, error)
	Update(ctx context.Context, t domain.Task) error
	Delete(ctx context.Context, id int64) error
}

// Authenticator is implemented by types able to turn request headers into
// verified claims.
type Authenticator interface {
	ClaimsFromAuthHeader(string) (*token.Claims, error)
}
