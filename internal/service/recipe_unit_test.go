package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kitchenkin/recipes/backend/internal/mocks"
	"github.com/kitchenkin/recipes/backend/internal/models"
	"github.com/kitchenkin/recipes/backend/internal/service"
	"github.com/kitchenkin/recipes/backend/internal/types"
)

func TestUpdateServingsWritesOneColumn(t *testing.T) {
	repo := new(mocks.MockRecipeRepository)
	tx := new(mocks.MockRecipeTx)
	detector := new(mocks.MockAllergenDetector)
	ingester := new(mocks.MockImageIngester)

	authorID, recipeID := uuid.New(), uuid.New()
	ctx := types.WithIdentity(context.Background(), &types.Identity{ID: authorID})

	repo.On("AuthorOf", mock.Anything, recipeID).Return(authorID, nil)
	repo.On("Transaction", mock.Anything, mock.Anything).Return(tx, nil)
	repo.On("FindByID", mock.Anything, recipeID).Return(&models.Recipe{ID: recipeID, Servings: 6}, nil)
	tx.On("UpdateFields", mock.Anything, recipeID, map[string]interface{}{"servings": 6}).Return(nil).Once()

	svc := service.NewRecipeService(repo, service.NewSideEffectCoordinator(ingester, detector), nil)
	recipe, err := svc.UpdateRecipe(ctx, &types.UpdateRecipeInput{ID: recipeID, Servings: types.Changed(6)})
	require.NoError(t, err)
	assert.Equal(t, 6, recipe.Servings)

	// any other RecipeTx call would have panicked as unexpected
	tx.AssertExpectations(t)
	detector.AssertNotCalled(t, "Detect", mock.Anything, mock.Anything, mock.Anything)
	ingester.AssertNotCalled(t, "Ingest", mock.Anything, mock.Anything)
}

func TestUpdateImageDeletesBeforeCreate(t *testing.T) {
	repo := new(mocks.MockRecipeRepository)
	tx := new(mocks.MockRecipeTx)
	ingester := new(mocks.MockImageIngester)
	remover := new(mocks.MockImageRemover)

	authorID, recipeID := uuid.New(), uuid.New()
	ctx := types.WithIdentity(context.Background(), &types.Identity{ID: authorID})
	image := &types.ImageInput{FileName: "a.png", FileType: "image/png", Encoded: "cG5n"}

	var order []string
	repo.On("AuthorOf", mock.Anything, recipeID).Return(authorID, nil)
	repo.On("Transaction", mock.Anything, mock.Anything).Return(tx, nil)
	repo.On("FindByID", mock.Anything, recipeID).Return(&models.Recipe{ID: recipeID}, nil)
	ingester.On("Ingest", mock.Anything, image).Return(&types.ImageRenditions{ContentID: "new"}, nil)
	tx.On("DeleteImage", mock.Anything, recipeID).
		Run(func(mock.Arguments) { order = append(order, "delete") }).
		Return(&models.Image{ContentID: "old"}, nil)
	tx.On("UpdateFields", mock.Anything, recipeID, map[string]interface{}{}).Return(nil)
	tx.On("CreateImage", mock.Anything, mock.MatchedBy(func(img *models.Image) bool {
		return img.RecipeID == recipeID && img.ContentID == "new"
	})).Run(func(mock.Arguments) { order = append(order, "create") }).Return(nil)
	remover.On("Remove", mock.Anything, "old").Return(nil).Once()

	svc := service.NewRecipeService(repo, service.NewSideEffectCoordinator(ingester, nil), remover)
	_, err := svc.UpdateRecipe(ctx, &types.UpdateRecipeInput{ID: recipeID, Image: types.Changed(image)})
	require.NoError(t, err)

	assert.Equal(t, []string{"delete", "create"}, order)
	tx.AssertExpectations(t)
	remover.AssertExpectations(t)
}
