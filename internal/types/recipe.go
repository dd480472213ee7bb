package types

import (
	"github.com/google/uuid"
)

// IngredientInput is one ingredient line of a recipe form
type IngredientInput struct {
	Name   string `json:"name" validate:"required,max=255"`
	Amount string `json:"amount" validate:"required,amount,max=50"`
	Unit   string `json:"unit" validate:"required,max=50"`
}

// ImageInput is an uploaded picture encoded as base64
type ImageInput struct {
	FileName string `json:"fileName" validate:"required"`
	FileType string `json:"fileType" validate:"required"`
	Encoded  string `json:"encoded" validate:"required,base64"`
}

// ImageRenditions are the URLs the image ingestion service produced
type ImageRenditions struct {
	ContentID string `json:"id,omitempty"`
	Original  string `json:"original"`
	Optimized string `json:"optimized"`
	Small     string `json:"small"`
	Medium    string `json:"medium"`
	Large     string `json:"large"`
}

// CreateRecipeInput represents the data needed to create a recipe
type CreateRecipeInput struct {
	Title        string            `json:"title" validate:"required,max=255"`
	Description  string            `json:"description" validate:"required"`
	PrepTime     string            `json:"prepTime" validate:"required,recipe_time"`
	CookTime     string            `json:"cookTime" validate:"required,recipe_time"`
	Servings     int               `json:"servings" validate:"gt=0"`
	CategoryID   uuid.UUID         `json:"categoryId" validate:"required"`
	Instructions []string          `json:"instructions" validate:"dive,required"`
	Ingredients  []IngredientInput `json:"ingredients" validate:"min=1,dive"`
	Image        *ImageInput       `json:"image"`
}

// UpdateRecipeInput is a partial update: only changed fields are applied.
// A changed Image holding nil clears the recipe's picture.
type UpdateRecipeInput struct {
	ID           uuid.UUID
	Title        Patch[string]
	Description  Patch[string]
	PrepTime     Patch[string]
	CookTime     Patch[string]
	Servings     Patch[int]
	CategoryID   Patch[uuid.UUID]
	Instructions Patch[[]string]
	Ingredients  Patch[[]IngredientInput]
	Image        Patch[*ImageInput]
}

// ChangedFields lists the names of the modified fields
func (in *UpdateRecipeInput) ChangedFields() []string {
	var fields []string
	add := func(name string, changed bool) {
		if changed {
			fields = append(fields, name)
		}
	}
	add("title", in.Title.IsChanged())
	add("description", in.Description.IsChanged())
	add("prepTime", in.PrepTime.IsChanged())
	add("cookTime", in.CookTime.IsChanged())
	add("servings", in.Servings.IsChanged())
	add("categoryId", in.CategoryID.IsChanged())
	add("instructions", in.Instructions.IsChanged())
	add("ingredients", in.Ingredients.IsChanged())
	add("image", in.Image.IsChanged())
	return fields
}

// NeedsAllergenDetection reports whether the change affects derived allergens
func (in *UpdateRecipeInput) NeedsAllergenDetection() bool {
	return in.Title.IsChanged() || in.Ingredients.IsChanged()
}

// RecipeFormValues are the current values of a recipe form
type RecipeFormValues struct {
	Title        string            `json:"title"`
	Description  string            `json:"description"`
	PrepTime     string            `json:"prepTime"`
	CookTime     string            `json:"cookTime"`
	Servings     int               `json:"servings"`
	CategoryID   string            `json:"categoryId"`
	Instructions []string          `json:"instructions"`
	Ingredients  []IngredientInput `json:"ingredients"`
	Image        *ImageInput       `json:"image"`
}

// RecipeFormSubmission pairs a form's dirty markers with its values
type RecipeFormSubmission struct {
	DirtyFields map[string]interface{} `json:"dirtyFields" binding:"required"`
	Values      RecipeFormValues       `json:"values"`
}
