package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	pgvector "github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

// StringList is a custom type for handling ordered string arrays in JSONB
type StringList []string

// Value implements the driver.Valuer interface
func (a StringList) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface
func (a *StringList) Scan(value interface{}) error {
	if value == nil {
		*a = StringList{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("unsupported string list type %T", value)
	}

	return json.Unmarshal(bytes, a)
}

type Recipe struct {
	ID           uuid.UUID        `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
	Title        string           `gorm:"size:255;not null" json:"title"`
	Description  string           `gorm:"type:text;not null" json:"description"`
	PrepTime     string           `gorm:"size:50;not null" json:"prep_time"`
	CookTime     string           `gorm:"size:50;not null" json:"cook_time"`
	Servings     int              `gorm:"not null" json:"servings"`
	Instructions StringList       `gorm:"type:jsonb;not null;default:'[]'" json:"instructions"`
	Allergens    AllergenList     `gorm:"type:jsonb;not null;default:'[]'" json:"allergens"`
	Embedding    *pgvector.Vector `gorm:"type:vector(3)" json:"-"`
	CategoryID   uuid.UUID        `gorm:"type:varchar(36);not null;index" json:"category_id"`
	Category     *Category        `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	AuthorID     uuid.UUID        `gorm:"type:varchar(36);not null;index" json:"author_id"`
	Author       *User            `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Image        *Image           `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE" json:"image,omitempty"`
	Ingredients  []Ingredient     `gorm:"many2many:recipe_ingredients" json:"ingredients"`
}

func (r *Recipe) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

type Category struct {
	ID        uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Name      string    `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Recipes   []Recipe  `gorm:"foreignKey:CategoryID" json:"recipes,omitempty"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Ingredient is shared between recipes and identified by its name, amount and unit
type Ingredient struct {
	ID     uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	Name   string    `gorm:"size:255;not null;uniqueIndex:idx_ingredient_natural_key" json:"name"`
	Amount string    `gorm:"size:50;not null;uniqueIndex:idx_ingredient_natural_key" json:"amount"`
	Unit   string    `gorm:"size:50;not null;default:'';uniqueIndex:idx_ingredient_natural_key" json:"unit"`
}

func (i *Ingredient) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// Key returns the natural key of the ingredient
func (i Ingredient) Key() IngredientKey {
	return IngredientKey{Name: i.Name, Amount: i.Amount, Unit: i.Unit}
}

// IngredientKey is the (name, amount, unit) triple an ingredient is matched on
type IngredientKey struct {
	Name   string
	Amount string
	Unit   string
}

// RecipeIngredient is the join row between recipes and shared ingredients
type RecipeIngredient struct {
	RecipeID     uuid.UUID `gorm:"type:varchar(36);primaryKey"`
	IngredientID uuid.UUID `gorm:"type:varchar(36);primaryKey"`
}

func (RecipeIngredient) TableName() string {
	return "recipe_ingredients"
}

// Image holds the rendition URLs produced for a recipe's uploaded picture
type Image struct {
	ID        uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	RecipeID  uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex" json:"recipe_id"`
	ContentID string    `gorm:"size:64;not null;index" json:"content_id"`
	Original  string    `gorm:"size:512;not null" json:"original"`
	Optimized string    `gorm:"size:512;not null" json:"optimized"`
	Small     string    `gorm:"size:512;not null" json:"small"`
	Medium    string    `gorm:"size:512;not null" json:"medium"`
	Large     string    `gorm:"size:512;not null" json:"large"`
}

func (i *Image) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

type RecipeFavorite struct {
	ID        uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	RecipeID  uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex:idx_favorite_user_recipe" json:"recipe_id"`
	UserID    uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex:idx_favorite_user_recipe" json:"user_id"`
}

func (RecipeFavorite) TableName() string {
	return "recipe_favorites"
}

func (f *RecipeFavorite) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}
