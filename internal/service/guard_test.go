package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kitchenkin/recipes/backend/internal/mocks"
	"github.com/kitchenkin/recipes/backend/internal/models"
	"github.com/kitchenkin/recipes/backend/internal/repository"
	"github.com/kitchenkin/recipes/backend/internal/service"
	"github.com/kitchenkin/recipes/backend/internal/types"
)

func TestGuardRequireIdentity(t *testing.T) {
	guard := service.NewGuard(new(mocks.MockRecipeRepository))

	_, err := guard.RequireIdentity(context.Background())
	assert.Equal(t, models.KindUnauthenticated, models.KindOf(err))

	id := uuid.New()
	got, err := guard.RequireIdentity(types.WithIdentity(context.Background(), &types.Identity{ID: id}))
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestGuardRequireAuthorship(t *testing.T) {
	author, stranger := uuid.New(), uuid.New()
	owned, missing, broken := uuid.New(), uuid.New(), uuid.New()

	repo := new(mocks.MockRecipeRepository)
	repo.On("AuthorOf", mock.Anything, owned).Return(author, nil)
	repo.On("AuthorOf", mock.Anything, missing).Return(uuid.Nil, repository.ErrNotFound)
	repo.On("AuthorOf", mock.Anything, broken).Return(uuid.Nil, errors.New("connection reset"))
	guard := service.NewGuard(repo)
	ctx := context.Background()

	assert.NoError(t, guard.RequireAuthorship(ctx, owned, author))
	assert.Equal(t, models.KindForbidden, models.KindOf(guard.RequireAuthorship(ctx, owned, stranger)))
	assert.Equal(t, models.KindForbidden, models.KindOf(guard.RequireAuthorship(ctx, missing, author)))
	assert.Equal(t, models.KindInternal, models.KindOf(guard.RequireAuthorship(ctx, broken, author)))
}
