package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPatch(t *testing.T) {
	unchanged := Unchanged[int]()
	assert.False(t, unchanged.IsChanged())
	assert.Zero(t, unchanged.Value())

	changed := Changed(6)
	v, ok := changed.Get()
	assert.True(t, ok)
	assert.Equal(t, 6, v)

	cleared := Changed[*ImageInput](nil)
	assert.True(t, cleared.IsChanged())
	assert.Nil(t, cleared.Value())
}

func TestUpdateRecipeInputChangedFields(t *testing.T) {
	in := UpdateRecipeInput{Servings: Changed(6)}
	assert.Equal(t, []string{"servings"}, in.ChangedFields())
	assert.False(t, in.NeedsAllergenDetection())

	in.Ingredients = Changed([]IngredientInput{{Name: "flour", Amount: "2", Unit: "cup"}})
	assert.Equal(t, []string{"servings", "ingredients"}, in.ChangedFields())
	assert.True(t, in.NeedsAllergenDetection())
}
