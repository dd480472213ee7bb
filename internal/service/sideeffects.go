package service

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"log"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kitchenkin/recipes/backend/internal/models"
	"github.com/kitchenkin/recipes/backend/internal/observability"
	"github.com/kitchenkin/recipes/backend/internal/types"
)

// AllowedImageTypes are the MIME types accepted for recipe pictures
var AllowedImageTypes = []string{
	"image/jpg",
	"image/jpeg",
	"image/png",
	"image/webp",
	"image/heic",
	"image/heif",
}

// SideEffectRequest describes the remote work a mutation needs
type SideEffectRequest struct {
	Image           *types.ImageInput
	DetectAllergens bool
	Title           string
	Ingredients     []types.IngredientInput
}

// SideEffects is what the remote collaborators produced. Image is nil when
// no picture was supplied; Allergens is nil when detection was skipped.
type SideEffects struct {
	Image     *models.Image
	Allergens []models.Allergen
}

// SideEffectCoordinator runs image ingestion and allergen detection side by side
type SideEffectCoordinator struct {
	ingester ImageIngester
	detector AllergenDetector
}

func NewSideEffectCoordinator(ingester ImageIngester, detector AllergenDetector) *SideEffectCoordinator {
	return &SideEffectCoordinator{ingester: ingester, detector: detector}
}

// CheckImageType fails with InvalidImageType unless mime is allowed
func CheckImageType(mime string) error {
	for _, allowed := range AllowedImageTypes {
		if mime == allowed {
			return nil
		}
	}
	return models.NewInvalidImageTypeError(
		fmt.Sprintf("File must be an image of type: %s", strings.Join(AllowedImageTypes, ", ")))
}

// Resolve issues both remote calls concurrently and waits for both. Neither
// call cancels the other; the first failure is returned. On failure the
// returned effects still hold whatever did succeed, so an ingested image can
// be removed by the caller.
func (c *SideEffectCoordinator) Resolve(ctx context.Context, req SideEffectRequest) (*SideEffects, error) {
	if req.Image != nil {
		if err := CheckImageType(req.Image.FileType); err != nil {
			return nil, err
		}
	}

	var (
		out SideEffects
		g   errgroup.Group
	)

	if req.Image != nil {
		g.Go(func() error {
			image, err := c.ingest(ctx, req.Image)
			if err != nil {
				return err
			}
			out.Image = image
			return nil
		})
	}

	if req.DetectAllergens {
		g.Go(func() error {
			start := time.Now()
			allergens, err := c.detector.Detect(ctx, req.Title, req.Ingredients)
			observability.ObserveCollaborator("detect_allergens", start, err)
			if err != nil {
				log.Printf("[SideEffectCoordinator] Allergen detection failed for %q: %v", req.Title, err)
				return models.NewAllergenDetectionError(err)
			}
			if allergens == nil {
				allergens = []models.Allergen{}
			}
			out.Allergens = allergens
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return &out, err
	}
	return &out, nil
}

// Ingest validates and uploads a standalone picture
func (c *SideEffectCoordinator) Ingest(ctx context.Context, image *types.ImageInput) (*models.Image, error) {
	if err := CheckImageType(image.FileType); err != nil {
		return nil, err
	}
	return c.ingest(ctx, image)
}

func (c *SideEffectCoordinator) ingest(ctx context.Context, input *types.ImageInput) (*models.Image, error) {
	raw, err := base64.StdEncoding.DecodeString(input.Encoded)
	if err != nil {
		return nil, models.NewValidationError("image must be base64 encoded", err)
	}

	start := time.Now()
	renditions, err := c.ingester.Ingest(ctx, input)
	observability.ObserveCollaborator("image_upload", start, err)
	if err != nil {
		log.Printf("[SideEffectCoordinator] Image ingestion failed for %s: %v", input.FileName, err)
		return nil, models.NewImageIngestionError(err)
	}

	contentID := renditions.ContentID
	if contentID == "" {
		contentID = ContentID(raw)
	}

	return &models.Image{
		ContentID: contentID,
		Original:  renditions.Original,
		Optimized: renditions.Optimized,
		Small:     renditions.Small,
		Medium:    renditions.Medium,
		Large:     renditions.Large,
	}, nil
}

// ContentID is the hex sha256 of an image's bytes
func ContentID(raw []byte) string {
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
