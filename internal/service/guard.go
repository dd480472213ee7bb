package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/kitchenkin/recipes/backend/internal/models"
	"github.com/kitchenkin/recipes/backend/internal/repository"
	"github.com/kitchenkin/recipes/backend/internal/types"
)

// Guard enforces authentication and recipe authorship before mutations
type Guard struct {
	recipes repository.RecipeRepository
}

func NewGuard(recipes repository.RecipeRepository) *Guard {
	return &Guard{recipes: recipes}
}

// RequireIdentity returns the acting user's id or an Unauthenticated error
func (g *Guard) RequireIdentity(ctx context.Context) (uuid.UUID, error) {
	identity := types.IdentityFromContext(ctx)
	if identity == nil || identity.ID == uuid.Nil {
		return uuid.Nil, models.NewUnauthenticatedError()
	}
	return identity.ID, nil
}

// RequireAuthorship fails with Forbidden unless userID authored the recipe.
// A recipe that does not exist is reported as Forbidden as well.
func (g *Guard) RequireAuthorship(ctx context.Context, recipeID, userID uuid.UUID) error {
	authorID, err := g.recipes.AuthorOf(ctx, recipeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.NewForbiddenError()
		}
		return models.NewInternalError(err)
	}
	if authorID != userID {
		return models.NewForbiddenError()
	}
	return nil
}

// RequireAuthor combines RequireIdentity and RequireAuthorship
func (g *Guard) RequireAuthor(ctx context.Context, recipeID uuid.UUID) (uuid.UUID, error) {
	userID, err := g.RequireIdentity(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	if err := g.RequireAuthorship(ctx, recipeID, userID); err != nil {
		return uuid.Nil, err
	}
	return userID, nil
}
