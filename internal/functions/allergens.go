package functions

import (
	"context"
	"fmt"

	"github.com/kitchenkin/recipes/backend/internal/models"
	"github.com/kitchenkin/recipes/backend/internal/types"
)

type detectRequest struct {
	Title       string                  `json:"title"`
	Ingredients []types.IngredientInput `json:"ingredients"`
}

type detectResponse struct {
	Allergens []string `json:"allergens"`
}

// AllergenDetector classifies recipes through the detect allergens function
type AllergenDetector struct {
	client   *Client
	endpoint string
}

func NewAllergenDetector(client *Client, endpoint string) *AllergenDetector {
	return &AllergenDetector{client: client, endpoint: endpoint}
}

func (d *AllergenDetector) Detect(ctx context.Context, title string, ingredients []types.IngredientInput) ([]models.Allergen, error) {
	if d.endpoint == "" {
		return nil, errNoEndpoint
	}
	if ingredients == nil {
		ingredients = []types.IngredientInput{}
	}

	var resp detectResponse
	if err := d.client.PostJSON(ctx, d.endpoint, detectRequest{Title: title, Ingredients: ingredients}, &resp); err != nil {
		return nil, err
	}

	allergens, err := models.ParseAllergens(resp.Allergens)
	if err != nil {
		return nil, fmt.Errorf("invalid classifier response: %w", err)
	}
	return allergens, nil
}
