package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/kitchenkin/recipes/backend/internal/models"
	"github.com/kitchenkin/recipes/backend/internal/repository"
	"github.com/kitchenkin/recipes/backend/internal/types"
)

// ImageIngester stores an uploaded picture and returns its rendition URLs
type ImageIngester interface {
	Ingest(ctx context.Context, image *types.ImageInput) (*types.ImageRenditions, error)
}

// ImageRemover deletes every stored rendition of an image by content id
type ImageRemover interface {
	Remove(ctx context.Context, contentID string) error
}

// AllergenDetector classifies a recipe's allergens from its title and ingredients
type AllergenDetector interface {
	Detect(ctx context.Context, title string, ingredients []types.IngredientInput) ([]models.Allergen, error)
}

// IRecipeService defines the interface for recipe operations
type IRecipeService interface {
	CreateRecipe(ctx context.Context, input *types.CreateRecipeInput) (*models.Recipe, error)
	UpdateRecipe(ctx context.Context, input *types.UpdateRecipeInput) (*models.Recipe, error)
	DeleteRecipe(ctx context.Context, id uuid.UUID) (*models.Recipe, error)
	GetRecipe(ctx context.Context, id uuid.UUID) (*models.Recipe, error)
	ListRecipes(ctx context.Context, opts repository.ListOptions) ([]*models.Recipe, error)
	SearchRecipes(ctx context.Context, query string, offset, limit int) ([]*models.Recipe, error)
	MyRecipes(ctx context.Context, after *uuid.UUID, limit int) ([]*models.Recipe, error)
	FavoriteRecipes(ctx context.Context, after *uuid.UUID, limit int) ([]*models.Recipe, error)
	FavoriteRecipe(ctx context.Context, recipeID uuid.UUID) (*models.Recipe, error)
	UnfavoriteRecipe(ctx context.Context, recipeID uuid.UUID) (*models.Recipe, error)
}

// ICategoryService defines the interface for category reads
type ICategoryService interface {
	ListCategories(ctx context.Context) ([]*models.Category, error)
	GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error)
}

// IImageService handles standalone image uploads
type IImageService interface {
	Upload(ctx context.Context, image *types.ImageInput) (*types.ImageRenditions, error)
}

// IAuthService defines the interface for authentication operations
type IAuthService interface {
	Register(ctx context.Context, req *types.RegisterRequest) (*types.AuthResponse, error)
	Login(ctx context.Context, req *types.LoginRequest) (*types.AuthResponse, error)
	Logout(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (*types.Identity, error)
	CurrentUser(ctx context.Context) (*models.User, error)
}
