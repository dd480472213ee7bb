package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	pgvector "github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kitchenkin/recipes/backend/internal/models"
)

// ErrNotFound is returned when a looked up row does not exist
var ErrNotFound = errors.New("record not found")

// ListOptions filters and pages recipe listings. Pages are ordered by id.
type ListOptions struct {
	After       *uuid.UUID
	Limit       int
	AuthorID    *uuid.UUID
	FavoritedBy *uuid.UUID
	CategoryID  *uuid.UUID
}

// SearchOptions pages a ranked full text search
type SearchOptions struct {
	Query     string
	Embedding *pgvector.Vector
	Offset    int
	Limit     int
}

// RecipeRepository reads recipes and opens write transactions
type RecipeRepository interface {
	Transaction(ctx context.Context, fn func(tx RecipeTx) error) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Recipe, error)
	AuthorOf(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
	List(ctx context.Context, opts ListOptions) ([]*models.Recipe, error)
	Search(ctx context.Context, opts SearchOptions) ([]*models.Recipe, error)
	AddFavorite(ctx context.Context, userID, recipeID uuid.UUID) error
	RemoveFavorite(ctx context.Context, userID, recipeID uuid.UUID) error
}

// RecipeTx is the set of writes available inside one recipe transaction
type RecipeTx interface {
	CategoryExists(ctx context.Context, id uuid.UUID) (bool, error)
	CreateRecipe(ctx context.Context, recipe *models.Recipe) error
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	SetCategory(ctx context.Context, id, categoryID uuid.UUID) error
	UpsertIngredients(ctx context.Context, keys []models.IngredientKey) ([]models.Ingredient, error)
	LinkIngredients(ctx context.Context, recipeID uuid.UUID, ingredients []models.Ingredient) error
	UnlinkIngredients(ctx context.Context, recipeID uuid.UUID) error
	DeleteImage(ctx context.Context, recipeID uuid.UUID) (*models.Image, error)
	CreateImage(ctx context.Context, image *models.Image) error
	DeleteRecipe(ctx context.Context, id uuid.UUID) error
}

type recipeRepository struct {
	db *gorm.DB
}

// NewRecipeRepository creates a gorm backed recipe repository
func NewRecipeRepository(db *gorm.DB) RecipeRepository {
	return &recipeRepository{db: db}
}

func (r *recipeRepository) Transaction(ctx context.Context, fn func(tx RecipeTx) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&recipeRepository{db: tx})
	})
}

func (r *recipeRepository) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Category").
		Preload("Author").
		Preload("Image").
		Preload("Ingredients")
}

func (r *recipeRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := r.preloaded(ctx).Where("recipes.id = ?", id).Take(&recipe).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load recipe: %w", err)
	}
	return &recipe, nil
}

func (r *recipeRepository) AuthorOf(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	var recipe models.Recipe
	err := r.db.WithContext(ctx).Select("id", "author_id").Where("id = ?", id).Take(&recipe).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, ErrNotFound
		}
		return uuid.Nil, fmt.Errorf("failed to load recipe author: %w", err)
	}
	return recipe.AuthorID, nil
}

func (r *recipeRepository) List(ctx context.Context, opts ListOptions) ([]*models.Recipe, error) {
	query := r.preloaded(ctx).Order("recipes.id ASC")

	if opts.FavoritedBy != nil {
		favorites := r.db.Model(&models.RecipeFavorite{}).Select("recipe_id").Where("user_id = ?", *opts.FavoritedBy)
		query = query.Where("recipes.id IN (?)", favorites)
	}
	if opts.AuthorID != nil {
		query = query.Where("recipes.author_id = ?", *opts.AuthorID)
	}
	if opts.CategoryID != nil {
		query = query.Where("recipes.category_id = ?", *opts.CategoryID)
	}
	if opts.After != nil {
		query = query.Where("recipes.id > ?", *opts.After)
	}
	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}

	var recipes []*models.Recipe
	if err := query.Find(&recipes).Error; err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	return recipes, nil
}

// Search matches title or description case-insensitively. On postgres the
// matches are ranked by embedding distance when an embedding is supplied.
func (r *recipeRepository) Search(ctx context.Context, opts SearchOptions) ([]*models.Recipe, error) {
	like := "%" + escapeLike(strings.ToLower(strings.TrimSpace(opts.Query))) + "%"
	query := r.preloaded(ctx).
		Where("LOWER(recipes.title) LIKE ? ESCAPE '\\' OR LOWER(recipes.description) LIKE ? ESCAPE '\\'", like, like)

	if r.db.Dialector.Name() == "postgres" && opts.Embedding != nil {
		query = query.Clauses(clause.OrderBy{
			Expression: clause.Expr{SQL: "recipes.embedding <-> ? NULLS LAST, recipes.id", Vars: []interface{}{*opts.Embedding}},
		})
	} else {
		query = query.Order("recipes.id ASC")
	}

	if opts.Offset > 0 {
		query = query.Offset(opts.Offset)
	}
	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}

	var recipes []*models.Recipe
	if err := query.Find(&recipes).Error; err != nil {
		return nil, fmt.Errorf("failed to search recipes: %w", err)
	}
	return recipes, nil
}

func (r *recipeRepository) AddFavorite(ctx context.Context, userID, recipeID uuid.UUID) error {
	fav := models.RecipeFavorite{UserID: userID, RecipeID: recipeID}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "recipe_id"}, {Name: "user_id"}},
		DoNothing: true,
	}).Create(&fav).Error
	if err != nil {
		return fmt.Errorf("failed to favorite recipe: %w", err)
	}
	return nil
}

func (r *recipeRepository) RemoveFavorite(ctx context.Context, userID, recipeID uuid.UUID) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&models.RecipeFavorite{}).Error
	if err != nil {
		return fmt.Errorf("failed to unfavorite recipe: %w", err)
	}
	return nil
}

func (r *recipeRepository) CategoryExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Category{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check category: %w", err)
	}
	return count > 0, nil
}

func (r *recipeRepository) CreateRecipe(ctx context.Context, recipe *models.Recipe) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(recipe).Error; err != nil {
		return fmt.Errorf("failed to create recipe: %w", err)
	}
	return nil
}

func (r *recipeRepository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	// UpdateColumns leaves updated_at alone so only the dirty columns are written
	result := r.db.WithContext(ctx).Model(&models.Recipe{}).Where("id = ?", id).UpdateColumns(fields)
	if result.Error != nil {
		return fmt.Errorf("failed to update recipe: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *recipeRepository) SetCategory(ctx context.Context, id, categoryID uuid.UUID) error {
	return r.UpdateFields(ctx, id, map[string]interface{}{"category_id": categoryID})
}

// UpsertIngredients returns the stored ingredient for every key, inserting
// the ones that do not exist yet. Keys are matched on (name, amount, unit).
func (r *recipeRepository) UpsertIngredients(ctx context.Context, keys []models.IngredientKey) ([]models.Ingredient, error) {
	db := r.db.WithContext(ctx)
	out := make([]models.Ingredient, 0, len(keys))
	for _, k := range keys {
		candidate := models.Ingredient{Name: k.Name, Amount: k.Amount, Unit: k.Unit}
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}, {Name: "amount"}, {Name: "unit"}},
			DoNothing: true,
		}).Create(&candidate).Error
		if err != nil {
			return nil, fmt.Errorf("failed to upsert ingredient %q: %w", k.Name, err)
		}

		var stored models.Ingredient
		if err := db.Where("name = ? AND amount = ? AND unit = ?", k.Name, k.Amount, k.Unit).Take(&stored).Error; err != nil {
			return nil, fmt.Errorf("failed to load ingredient %q: %w", k.Name, err)
		}
		out = append(out, stored)
	}
	return out, nil
}

func (r *recipeRepository) LinkIngredients(ctx context.Context, recipeID uuid.UUID, ingredients []models.Ingredient) error {
	if len(ingredients) == 0 {
		return nil
	}
	rows := make([]models.RecipeIngredient, 0, len(ingredients))
	for _, ing := range ingredients {
		rows = append(rows, models.RecipeIngredient{RecipeID: recipeID, IngredientID: ing.ID})
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
	if err != nil {
		return fmt.Errorf("failed to link ingredients: %w", err)
	}
	return nil
}

func (r *recipeRepository) UnlinkIngredients(ctx context.Context, recipeID uuid.UUID) error {
	err := r.db.WithContext(ctx).Where("recipe_id = ?", recipeID).Delete(&models.RecipeIngredient{}).Error
	if err != nil {
		return fmt.Errorf("failed to unlink ingredients: %w", err)
	}
	return nil
}

// DeleteImage removes the recipe's image row and returns it, or nil when the
// recipe had no image.
func (r *recipeRepository) DeleteImage(ctx context.Context, recipeID uuid.UUID) (*models.Image, error) {
	db := r.db.WithContext(ctx)
	var image models.Image
	if err := db.Where("recipe_id = ?", recipeID).Take(&image).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load image: %w", err)
	}
	if err := db.Delete(&image).Error; err != nil {
		return nil, fmt.Errorf("failed to delete image: %w", err)
	}
	return &image, nil
}

func (r *recipeRepository) CreateImage(ctx context.Context, image *models.Image) error {
	if err := r.db.WithContext(ctx).Create(image).Error; err != nil {
		return fmt.Errorf("failed to create image: %w", err)
	}
	return nil
}

// DeleteRecipe removes the recipe with its image, ingredient links and favorites
func (r *recipeRepository) DeleteRecipe(ctx context.Context, id uuid.UUID) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("recipe_id = ?", id).Delete(&models.RecipeFavorite{}).Error; err != nil {
		return fmt.Errorf("failed to delete favorites: %w", err)
	}
	if err := db.Where("recipe_id = ?", id).Delete(&models.RecipeIngredient{}).Error; err != nil {
		return fmt.Errorf("failed to unlink ingredients: %w", err)
	}
	if err := db.Where("recipe_id = ?", id).Delete(&models.Image{}).Error; err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	result := db.Where("id = ?", id).Delete(&models.Recipe{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete recipe: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
