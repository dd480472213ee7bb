package types

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionClaims are the claims of a bearer token. The JWT id names the
// server-side session, so revoking the session revokes the token.
type SessionClaims struct {
	jwt.RegisteredClaims
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
}

// NewSessionClaims builds the claims for a session issued to identity
func NewSessionClaims(sessionToken string, identity *Identity, issuedAt, expiresAt time.Time) *SessionClaims {
	return &SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionToken,
			Subject:   identity.ID.String(),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserID: identity.ID,
		Email:  identity.Email,
	}
}

// SessionToken returns the session the token was issued for
func (c *SessionClaims) SessionToken() string {
	return c.ID
}
