package types

import (
	"context"

	"github.com/google/uuid"
)

// Identity is the acting user attached to a request by the auth middleware
type Identity struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Name  string    `json:"name"`
}

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying the acting user
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the acting user, or nil for anonymous requests
func IdentityFromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityKey{}).(*Identity)
	return id
}
