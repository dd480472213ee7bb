// Package formdiff turns a recipe form's dirty-field markers into a partial
// update. Scalar fields are included one by one; list fields (ingredients,
// instructions) are sent whole whenever any of their elements is dirty.
package formdiff

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/kitchenkin/recipes/backend/internal/models"
	"github.com/kitchenkin/recipes/backend/internal/types"
)

// Diff builds the update input for a recipe from the form's dirty markers.
// A marker is a bool, or a nested map or list of markers mirroring the form.
func Diff(recipeID uuid.UUID, dirty map[string]interface{}, values types.RecipeFormValues) (*types.UpdateRecipeInput, error) {
	in := &types.UpdateRecipeInput{ID: recipeID}

	for field, marker := range dirty {
		if !IsDirty(marker) {
			continue
		}
		switch field {
		case "title":
			in.Title = types.Changed(values.Title)
		case "description":
			in.Description = types.Changed(values.Description)
		case "prepTime":
			in.PrepTime = types.Changed(values.PrepTime)
		case "cookTime":
			in.CookTime = types.Changed(values.CookTime)
		case "servings":
			in.Servings = types.Changed(values.Servings)
		case "categoryId":
			id, err := uuid.Parse(values.CategoryID)
			if err != nil {
				return nil, models.NewValidationError("categoryId must be a valid id", err)
			}
			in.CategoryID = types.Changed(id)
		case "instructions":
			in.Instructions = types.Changed(cloneStrings(values.Instructions))
		case "ingredients":
			in.Ingredients = types.Changed(cloneIngredients(values.Ingredients))
		case "image":
			in.Image = types.Changed(values.Image)
		default:
			return nil, models.NewValidationError(fmt.Sprintf("unknown form field %q", field), nil)
		}
	}

	return in, nil
}

// IsDirty reports whether a marker, or anything nested inside it, is set
func IsDirty(marker interface{}) bool {
	switch m := marker.(type) {
	case bool:
		return m
	case map[string]interface{}:
		for _, v := range m {
			if IsDirty(v) {
				return true
			}
		}
	case []interface{}:
		for _, v := range m {
			if IsDirty(v) {
				return true
			}
		}
	}
	return false
}

func cloneStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	return append([]string(nil), in...)
}

func cloneIngredients(in []types.IngredientInput) []types.IngredientInput {
	if in == nil {
		return []types.IngredientInput{}
	}
	return append([]types.IngredientInput(nil), in...)
}
