package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kitchenkin/recipes/backend/internal/types"
)

// TokenKey is the gin context key holding the raw bearer token
const TokenKey = "token"

// Authenticator resolves a bearer token into the acting user
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*types.Identity, error)
}

// Authenticate attaches the acting user to the request context when a valid
// bearer token is present. Requests without one continue anonymously and
// the resolvers decide whether that is acceptable.
func Authenticate(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			c.Next()
			return
		}

		identity, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			log.Printf("[Auth] Ignoring invalid bearer token: %v", err)
			c.Next()
			return
		}

		c.Set(TokenKey, token)
		c.Request = c.Request.WithContext(types.WithIdentity(c.Request.Context(), identity))
		c.Next()
	}
}

// RequireIdentity rejects anonymous requests with 401
func RequireIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if types.IdentityFromContext(c.Request.Context()) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Unauthorized. Please log in.",
				"code":  "UNAUTHENTICATED",
			})
			return
		}
		c.Next()
	}
}

func bearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
