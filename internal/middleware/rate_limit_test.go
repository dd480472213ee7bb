package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kitchenkin/recipes/backend/internal/types"
)

func newLimitedRouter(rl *RateLimiter, userID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if userID != uuid.Nil {
			c.Request = c.Request.WithContext(types.WithIdentity(c.Request.Context(), &types.Identity{ID: userID}))
		}
	})
	r.POST("/upload", rl.RateLimitMiddleware(), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})
	return r
}

func post(r *gin.Engine) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/upload", nil))
	return w
}

func TestRateLimiterBlocksAfterLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	rl := NewUploadRateLimiter(client, 2)
	rl.now = func() time.Time { return time.Date(2024, 3, 1, 10, 15, 0, 0, time.UTC) }

	r := newLimitedRouter(rl, uuid.New())

	w := post(r)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Remaining"))

	assert.Equal(t, http.StatusCreated, post(r).Code)

	w = post(r)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "RATE_LIMITED")
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	keys := mr.Keys()
	require.Len(t, keys, 1)
	assert.Contains(t, keys[0], "rate_limit:image_upload:")
	assert.Equal(t, time.Hour, mr.TTL(keys[0]))
}

func TestRateLimiterIsPerUser(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	rl := NewMutationRateLimiter(client, 1)

	assert.Equal(t, http.StatusCreated, post(newLimitedRouter(rl, uuid.New())).Code)
	assert.Equal(t, http.StatusCreated, post(newLimitedRouter(rl, uuid.New())).Code)
}

func TestRateLimiterSkipsAnonymousRequests(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	r := newLimitedRouter(NewUploadRateLimiter(client, 1), uuid.Nil)

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusCreated, post(r).Code)
	}
	assert.Empty(t, mr.Keys())
}

func TestRateLimiterAllowsWhenRedisIsDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	r := newLimitedRouter(NewUploadRateLimiter(client, 1), uuid.New())
	mr.Close()

	w := post(r)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "rate limit check failed", w.Header().Get("X-RateLimit-Error"))
}

func TestRateLimiterWithoutRedis(t *testing.T) {
	r := newLimitedRouter(NewUploadRateLimiter(nil, 1), uuid.New())
	assert.Equal(t, http.StatusCreated, post(r).Code)
	assert.Equal(t, http.StatusCreated, post(r).Code)
}
