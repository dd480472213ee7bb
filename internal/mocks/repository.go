package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/kitchenkin/recipes/backend/internal/models"
	"github.com/kitchenkin/recipes/backend/internal/repository"
)

// MockRecipeRepository is a mock implementation of repository.RecipeRepository.
// Transaction runs the callback against the RecipeTx given to Return.
type MockRecipeRepository struct {
	mock.Mock
}

func (m *MockRecipeRepository) Transaction(ctx context.Context, fn func(tx repository.RecipeTx) error) error {
	args := m.Called(ctx, fn)
	if tx, ok := args.Get(0).(repository.RecipeTx); ok {
		return fn(tx)
	}
	return args.Error(1)
}

func (m *MockRecipeRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	return recipeResult(m.Called(ctx, id))
}

func (m *MockRecipeRepository) AuthorOf(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockRecipeRepository) List(ctx context.Context, opts repository.ListOptions) ([]*models.Recipe, error) {
	return recipesResult(m.Called(ctx, opts))
}

func (m *MockRecipeRepository) Search(ctx context.Context, opts repository.SearchOptions) ([]*models.Recipe, error) {
	return recipesResult(m.Called(ctx, opts))
}

func (m *MockRecipeRepository) AddFavorite(ctx context.Context, userID, recipeID uuid.UUID) error {
	return m.Called(ctx, userID, recipeID).Error(0)
}

func (m *MockRecipeRepository) RemoveFavorite(ctx context.Context, userID, recipeID uuid.UUID) error {
	return m.Called(ctx, userID, recipeID).Error(0)
}

// MockRecipeTx is a mock implementation of repository.RecipeTx
type MockRecipeTx struct {
	mock.Mock
}

func (m *MockRecipeTx) CategoryExists(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockRecipeTx) CreateRecipe(ctx context.Context, recipe *models.Recipe) error {
	return m.Called(ctx, recipe).Error(0)
}

func (m *MockRecipeTx) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	return m.Called(ctx, id, fields).Error(0)
}

func (m *MockRecipeTx) SetCategory(ctx context.Context, id, categoryID uuid.UUID) error {
	return m.Called(ctx, id, categoryID).Error(0)
}

func (m *MockRecipeTx) UpsertIngredients(ctx context.Context, keys []models.IngredientKey) ([]models.Ingredient, error) {
	args := m.Called(ctx, keys)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Ingredient), args.Error(1)
}

func (m *MockRecipeTx) LinkIngredients(ctx context.Context, recipeID uuid.UUID, ingredients []models.Ingredient) error {
	return m.Called(ctx, recipeID, ingredients).Error(0)
}

func (m *MockRecipeTx) UnlinkIngredients(ctx context.Context, recipeID uuid.UUID) error {
	return m.Called(ctx, recipeID).Error(0)
}

func (m *MockRecipeTx) DeleteImage(ctx context.Context, recipeID uuid.UUID) (*models.Image, error) {
	args := m.Called(ctx, recipeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Image), args.Error(1)
}

func (m *MockRecipeTx) CreateImage(ctx context.Context, image *models.Image) error {
	return m.Called(ctx, image).Error(0)
}

func (m *MockRecipeTx) DeleteRecipe(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}
