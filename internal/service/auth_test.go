package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/kitchenkin/recipes/backend/internal/models"
	"github.com/kitchenkin/recipes/backend/internal/repository"
	"github.com/kitchenkin/recipes/backend/internal/service"
	"github.com/kitchenkin/recipes/backend/internal/testhelpers"
	"github.com/kitchenkin/recipes/backend/internal/types"
)

func setupAuthTest(t *testing.T) (*service.AuthService, *miniredis.Miniredis, *gorm.DB) {
	db := testhelpers.NewSQLiteDB(t)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	svc := service.NewAuthService(
		repository.NewUserRepository(db),
		repository.NewSessionRepository(db),
		service.NewSessionCache(client, 30*time.Minute),
		"test-secret",
		24*time.Hour,
	)
	return svc, mr, db
}

func TestRegisterLoginAuthenticate(t *testing.T) {
	svc, mr, _ := setupAuthTest(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, &types.RegisterRequest{Name: "Ada", Email: "Ada@Example.com", Password: "correct horse"})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", registered.User.Email)
	assert.NotEmpty(t, registered.Token)

	_, err = svc.Register(ctx, &types.RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "another one"})
	assert.Equal(t, models.KindValidation, models.KindOf(err))

	_, err = svc.Login(ctx, &types.LoginRequest{Email: "ada@example.com", Password: "wrong password"})
	assert.Equal(t, models.KindUnauthenticated, models.KindOf(err))

	login, err := svc.Login(ctx, &types.LoginRequest{Email: "ada@example.com", Password: "correct horse"})
	require.NoError(t, err)

	identity, err := svc.Authenticate(ctx, login.Token)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, identity.ID)
	assert.Equal(t, "Ada", identity.Name)

	// both sessions were cached with the 30 minute TTL
	keys := mr.Keys()
	require.Len(t, keys, 2)
	assert.Equal(t, 30*time.Minute, mr.TTL(keys[0]))
}

func TestAuthenticateFallsBackToDatabase(t *testing.T) {
	svc, mr, _ := setupAuthTest(t)
	ctx := context.Background()

	resp, err := svc.Register(ctx, &types.RegisterRequest{Name: "Bo", Email: "bo@example.com", Password: "password123"})
	require.NoError(t, err)

	mr.FlushAll()
	identity, err := svc.Authenticate(ctx, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, identity.ID)
	assert.Len(t, mr.Keys(), 1)
}

func TestAuthenticateSurvivesRedisOutage(t *testing.T) {
	svc, mr, _ := setupAuthTest(t)
	ctx := context.Background()

	resp, err := svc.Register(ctx, &types.RegisterRequest{Name: "Cy", Email: "cy@example.com", Password: "password123"})
	require.NoError(t, err)

	mr.Close()
	identity, err := svc.Authenticate(ctx, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, identity.ID)
}

func TestLogoutRevokesToken(t *testing.T) {
	svc, mr, db := setupAuthTest(t)
	ctx := context.Background()

	resp, err := svc.Register(ctx, &types.RegisterRequest{Name: "Di", Email: "di@example.com", Password: "password123"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, resp.Token))
	assert.Empty(t, mr.Keys())

	var sessions int64
	require.NoError(t, db.Model(&models.Session{}).Count(&sessions).Error)
	assert.Zero(t, sessions)

	_, err = svc.Authenticate(ctx, resp.Token)
	assert.Equal(t, models.KindUnauthenticated, models.KindOf(err))
}

func TestAuthenticateRejectsGarbage(t *testing.T) {
	svc, _, _ := setupAuthTest(t)

	_, err := svc.Authenticate(context.Background(), "not-a-jwt")
	assert.Equal(t, models.KindUnauthenticated, models.KindOf(err))
}

func TestCurrentUser(t *testing.T) {
	svc, _, _ := setupAuthTest(t)
	ctx := context.Background()

	resp, err := svc.Register(ctx, &types.RegisterRequest{Name: "Ed", Email: "ed@example.com", Password: "password123"})
	require.NoError(t, err)

	user, err := svc.CurrentUser(types.WithIdentity(ctx, resp.User))
	require.NoError(t, err)
	assert.Equal(t, "ed@example.com", user.Email)

	_, err = svc.CurrentUser(ctx)
	assert.Equal(t, models.KindUnauthenticated, models.KindOf(err))
}
