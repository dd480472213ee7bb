package testhelpers

import (
	"fmt"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kitchenkin/recipes/backend/internal/models"
	"github.com/kitchenkin/recipes/backend/internal/types"
)

// CreateUser inserts a user with fake profile data
func CreateUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	user := &models.User{
		Name:         gofakeit.Name(),
		Email:        gofakeit.Email(),
		PasswordHash: "not-a-real-hash",
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

// CreateCategory inserts a category. An empty name picks a random one.
func CreateCategory(t *testing.T, db *gorm.DB, name string) *models.Category {
	t.Helper()
	if name == "" {
		name = fmt.Sprintf("%s %s", gofakeit.AdjectiveDescriptive(), gofakeit.UUID()[:8])
	}
	category := &models.Category{Name: name}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create category: %v", err)
	}
	return category
}

// CreateRecipe inserts a recipe with two ingredients and an image
func CreateRecipe(t *testing.T, db *gorm.DB, authorID, categoryID uuid.UUID) *models.Recipe {
	t.Helper()
	recipe := &models.Recipe{
		Title:        gofakeit.Dessert(),
		Description:  gofakeit.Sentence(12),
		PrepTime:     "10 min",
		CookTime:     "25 minutes",
		Servings:     gofakeit.Number(1, 8),
		Instructions: models.StringList{gofakeit.Sentence(6), gofakeit.Sentence(6)},
		Allergens:    models.AllergenList{models.AllergenDairy},
		CategoryID:   categoryID,
		AuthorID:     authorID,
	}
	if err := db.Omit("Category", "Author", "Image", "Ingredients").Create(recipe).Error; err != nil {
		t.Fatalf("failed to create recipe: %v", err)
	}

	for _, ing := range []models.Ingredient{
		{Name: gofakeit.Fruit(), Amount: "2", Unit: "cups"},
		{Name: gofakeit.Vegetable(), Amount: "1/2", Unit: "tsp"},
	} {
		ing := ing
		// ingredients are shared on (name, amount, unit)
		if err := db.Where(models.Ingredient{Name: ing.Name, Amount: ing.Amount, Unit: ing.Unit}).FirstOrCreate(&ing).Error; err != nil {
			t.Fatalf("failed to create ingredient: %v", err)
		}
		if err := db.Create(&models.RecipeIngredient{RecipeID: recipe.ID, IngredientID: ing.ID}).Error; err != nil {
			t.Fatalf("failed to link ingredient: %v", err)
		}
		recipe.Ingredients = append(recipe.Ingredients, ing)
	}

	contentID := gofakeit.LetterN(64)
	recipe.Image = &models.Image{
		RecipeID:  recipe.ID,
		ContentID: contentID,
		Original:  "https://cdn.example.com/" + contentID + "/original.jpg",
		Optimized: "https://cdn.example.com/" + contentID + "/optimized.webp",
		Small:     "https://cdn.example.com/" + contentID + "/small.webp",
		Medium:    "https://cdn.example.com/" + contentID + "/medium.webp",
		Large:     "https://cdn.example.com/" + contentID + "/large.webp",
	}
	if err := db.Create(recipe.Image).Error; err != nil {
		t.Fatalf("failed to create image: %v", err)
	}
	return recipe
}

// NewCreateRecipeInput returns a valid creation payload for the category
func NewCreateRecipeInput(categoryID uuid.UUID) types.CreateRecipeInput {
	return types.CreateRecipeInput{
		Title:        gofakeit.Dessert(),
		Description:  gofakeit.Sentence(10),
		PrepTime:     "15 min",
		CookTime:     "30 minutes",
		Servings:     4,
		CategoryID:   categoryID,
		Instructions: []string{"Preheat the oven", "Bake until golden"},
		Ingredients: []types.IngredientInput{
			{Name: "flour", Amount: "2", Unit: "cups"},
			{Name: "milk", Amount: "1 1/2", Unit: "cups"},
		},
	}
}
