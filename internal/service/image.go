package service

import (
	"context"
	"log"

	"github.com/kitchenkin/recipes/backend/internal/types"
)

// ImageService uploads pictures outside of a recipe mutation, for forms that
// preview an image before the recipe is saved
type ImageService struct {
	effects *SideEffectCoordinator
}

// NewImageService creates a new ImageService instance
func NewImageService(effects *SideEffectCoordinator) *ImageService {
	return &ImageService{effects: effects}
}

// Upload checks the MIME type and forwards the picture to the ingestion backend
func (s *ImageService) Upload(ctx context.Context, image *types.ImageInput) (*types.ImageRenditions, error) {
	stored, err := s.effects.Ingest(ctx, image)
	if err != nil {
		return nil, err
	}
	log.Printf("[ImageService] Uploaded %s as %s", image.FileName, stored.ContentID)
	return &types.ImageRenditions{
		ContentID: stored.ContentID,
		Original:  stored.Original,
		Optimized: stored.Optimized,
		Small:     stored.Small,
		Medium:    stored.Medium,
		Large:     stored.Large,
	}, nil
}
