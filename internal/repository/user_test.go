package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kitchenkin/recipes/backend/internal/models"
	"github.com/kitchenkin/recipes/backend/internal/repository"
	"github.com/kitchenkin/recipes/backend/internal/testhelpers"
)

func TestUserRepositoryRejectsDuplicateEmail(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	users := repository.NewUserRepository(db)
	ctx := context.Background()

	user := &models.User{Name: "Ada", Email: "ada@example.com", PasswordHash: "x"}
	require.NoError(t, users.Create(ctx, user))

	err := users.Create(ctx, &models.User{Name: "Other", Email: "ada@example.com", PasswordHash: "y"})
	assert.ErrorIs(t, err, repository.ErrDuplicateEmail)

	found, err := users.FindByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	_, err = users.FindByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSessionRepositoryLifecycle(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	user := testhelpers.CreateUser(t, db)
	sessions := repository.NewSessionRepository(db)
	ctx := context.Background()
	now := time.Now()

	live := &models.Session{Token: "live-token", UserID: user.ID, ExpiresAt: now.Add(time.Hour)}
	stale := &models.Session{Token: "stale-token", UserID: user.ID, ExpiresAt: now.Add(-time.Hour)}
	require.NoError(t, sessions.Create(ctx, live))
	require.NoError(t, sessions.Create(ctx, stale))

	found, err := sessions.FindByToken(ctx, "live-token")
	require.NoError(t, err)
	assert.Equal(t, user.Email, found.User.Email)

	removed, err := sessions.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	require.NoError(t, sessions.DeleteByToken(ctx, "live-token"))
	_, err = sessions.FindByToken(ctx, "live-token")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCategoryRepositoryEnsureIsIdempotent(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	categories := repository.NewCategoryRepository(db)
	ctx := context.Background()

	first, err := categories.Ensure(ctx, "Soups")
	require.NoError(t, err)
	second, err := categories.Ensure(ctx, "Soups")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	_, err = categories.Ensure(ctx, "Breads")
	require.NoError(t, err)

	all, err := categories.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Breads", all[0].Name)

	_, err = categories.FindByID(ctx, second.ID)
	require.NoError(t, err)
}
