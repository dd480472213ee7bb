package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/kitchenkin/recipes/backend/internal/models"
	"github.com/kitchenkin/recipes/backend/internal/repository"
	"github.com/kitchenkin/recipes/backend/internal/types"
)

// MockRecipeService is a mock implementation of the recipe service
type MockRecipeService struct {
	mock.Mock
}

func recipeResult(args mock.Arguments) (*models.Recipe, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Recipe), args.Error(1)
}

func recipesResult(args mock.Arguments) ([]*models.Recipe, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Recipe), args.Error(1)
}

// CreateRecipe mocks the CreateRecipe method
func (m *MockRecipeService) CreateRecipe(ctx context.Context, input *types.CreateRecipeInput) (*models.Recipe, error) {
	return recipeResult(m.Called(ctx, input))
}

// UpdateRecipe mocks the UpdateRecipe method
func (m *MockRecipeService) UpdateRecipe(ctx context.Context, input *types.UpdateRecipeInput) (*models.Recipe, error) {
	return recipeResult(m.Called(ctx, input))
}

// DeleteRecipe mocks the DeleteRecipe method
func (m *MockRecipeService) DeleteRecipe(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	return recipeResult(m.Called(ctx, id))
}

// GetRecipe mocks the GetRecipe method
func (m *MockRecipeService) GetRecipe(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	return recipeResult(m.Called(ctx, id))
}

// ListRecipes mocks the ListRecipes method
func (m *MockRecipeService) ListRecipes(ctx context.Context, opts repository.ListOptions) ([]*models.Recipe, error) {
	return recipesResult(m.Called(ctx, opts))
}

// SearchRecipes mocks the SearchRecipes method
func (m *MockRecipeService) SearchRecipes(ctx context.Context, query string, offset, limit int) ([]*models.Recipe, error) {
	return recipesResult(m.Called(ctx, query, offset, limit))
}

// MyRecipes mocks the MyRecipes method
func (m *MockRecipeService) MyRecipes(ctx context.Context, after *uuid.UUID, limit int) ([]*models.Recipe, error) {
	return recipesResult(m.Called(ctx, after, limit))
}

// FavoriteRecipes mocks the FavoriteRecipes method
func (m *MockRecipeService) FavoriteRecipes(ctx context.Context, after *uuid.UUID, limit int) ([]*models.Recipe, error) {
	return recipesResult(m.Called(ctx, after, limit))
}

// FavoriteRecipe mocks the FavoriteRecipe method
func (m *MockRecipeService) FavoriteRecipe(ctx context.Context, recipeID uuid.UUID) (*models.Recipe, error) {
	return recipeResult(m.Called(ctx, recipeID))
}

// UnfavoriteRecipe mocks the UnfavoriteRecipe method
func (m *MockRecipeService) UnfavoriteRecipe(ctx context.Context, recipeID uuid.UUID) (*models.Recipe, error) {
	return recipeResult(m.Called(ctx, recipeID))
}

// MockCategoryService is a mock implementation of the category service
type MockCategoryService struct {
	mock.Mock
}

func (m *MockCategoryService) ListCategories(ctx context.Context) ([]*models.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Category), args.Error(1)
}

func (m *MockCategoryService) GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}
