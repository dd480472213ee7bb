package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/kitchenkin/recipes/backend/internal/mocks"
	"github.com/kitchenkin/recipes/backend/internal/types"
)

func newAuthRouter(auth Authenticator, seen **types.Identity) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Authenticate(auth))
	r.GET("/open", func(c *gin.Context) {
		*seen = types.IdentityFromContext(c.Request.Context())
		c.Status(http.StatusNoContent)
	})
	r.GET("/closed", RequireIdentity(), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(TokenKey))
	})
	return r
}

func get(r *gin.Engine, path, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthenticateAttachesIdentity(t *testing.T) {
	auth := new(mocks.MockAuthService)
	identity := &types.Identity{ID: uuid.New(), Email: "cook@example.com", Name: "Cook"}
	auth.On("Authenticate", mock.Anything, "good").Return(identity, nil)

	var seen *types.Identity
	r := newAuthRouter(auth, &seen)

	w := get(r, "/open", "Bearer good")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, identity, seen)

	w = get(r, "/closed", "bearer good")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "good", w.Body.String())
}

func TestAuthenticateContinuesAnonymously(t *testing.T) {
	auth := new(mocks.MockAuthService)
	auth.On("Authenticate", mock.Anything, "expired").Return(nil, errors.New("session expired"))

	var seen *types.Identity
	r := newAuthRouter(auth, &seen)

	for _, header := range []string{"", "Token abc", "Bearer expired"} {
		seen = &types.Identity{}
		w := get(r, "/open", header)
		assert.Equal(t, http.StatusNoContent, w.Code, header)
		assert.Nil(t, seen, header)
	}

	w := get(r, "/closed", "Bearer expired")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "UNAUTHENTICATED")
	auth.AssertNumberOfCalls(t, "Authenticate", 2)
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", bearerToken("Bearer abc"))
	assert.Equal(t, "abc", bearerToken("BEARER  abc "))
	assert.Empty(t, bearerToken("Basic abc"))
	assert.Empty(t, bearerToken("Bearer"))
}
