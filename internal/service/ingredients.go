package service

import (
	"github.com/kitchenkin/recipes/backend/internal/models"
	"github.com/kitchenkin/recipes/backend/internal/types"
)

// ResolveIngredients turns ingredient lines into the natural keys the store
// connects to or creates. Repeated triples collapse onto their first
// occurrence. Values are used as given; validation has already trimmed them.
func ResolveIngredients(lines []types.IngredientInput) []models.IngredientKey {
	seen := make(map[models.IngredientKey]struct{}, len(lines))
	keys := make([]models.IngredientKey, 0, len(lines))
	for _, line := range lines {
		key := models.IngredientKey{Name: line.Name, Amount: line.Amount, Unit: line.Unit}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	return keys
}
