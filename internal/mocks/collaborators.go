package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/kitchenkin/recipes/backend/internal/models"
	"github.com/kitchenkin/recipes/backend/internal/types"
)

// MockImageIngester mocks the image ingestion collaborator
type MockImageIngester struct {
	mock.Mock
}

func (m *MockImageIngester) Ingest(ctx context.Context, image *types.ImageInput) (*types.ImageRenditions, error) {
	args := m.Called(ctx, image)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.ImageRenditions), args.Error(1)
}

// MockImageRemover mocks the image deletion collaborator
type MockImageRemover struct {
	mock.Mock
}

func (m *MockImageRemover) Remove(ctx context.Context, contentID string) error {
	args := m.Called(ctx, contentID)
	return args.Error(0)
}

// MockAllergenDetector mocks the allergen classification collaborator
type MockAllergenDetector struct {
	mock.Mock
}

func (m *MockAllergenDetector) Detect(ctx context.Context, title string, ingredients []types.IngredientInput) ([]models.Allergen, error) {
	args := m.Called(ctx, title, ingredients)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Allergen), args.Error(1)
}

// MockImageService mocks the standalone upload service
type MockImageService struct {
	mock.Mock
}

func (m *MockImageService) Upload(ctx context.Context, image *types.ImageInput) (*types.ImageRenditions, error) {
	args := m.Called(ctx, image)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.ImageRenditions), args.Error(1)
}
