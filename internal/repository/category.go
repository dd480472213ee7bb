package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kitchenkin/recipes/backend/internal/models"
)

type CategoryRepository interface {
	List(ctx context.Context) ([]*models.Category, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	FindByName(ctx context.Context, name string) (*models.Category, error)
	Ensure(ctx context.Context, name string) (*models.Category, error)
}

type categoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) List(ctx context.Context) ([]*models.Category, error) {
	var categories []*models.Category
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

func (r *categoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	return r.find(ctx, "id = ?", id)
}

func (r *categoryRepository) FindByName(ctx context.Context, name string) (*models.Category, error) {
	return r.find(ctx, "name = ?", name)
}

func (r *categoryRepository) find(ctx context.Context, cond string, arg interface{}) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).Where(cond, arg).Take(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load category: %w", err)
	}
	return &category, nil
}

// Ensure returns the category with the given name, creating it if needed
func (r *categoryRepository) Ensure(ctx context.Context, name string) (*models.Category, error) {
	candidate := models.Category{Name: name}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&candidate).Error
	if err != nil {
		return nil, fmt.Errorf("failed to create category %q: %w", name, err)
	}
	return r.FindByName(ctx, name)
}
