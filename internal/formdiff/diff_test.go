package formdiff

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kitchenkin/recipes/backend/internal/models"
	"github.com/kitchenkin/recipes/backend/internal/types"
)

func formValues() types.RecipeFormValues {
	return types.RecipeFormValues{
		Title:        "Pancakes",
		Description:  "Fluffy",
		PrepTime:     "10 min",
		CookTime:     "15 min",
		Servings:     6,
		CategoryID:   uuid.NewString(),
		Instructions: []string{"Mix", "Fry", "Serve"},
		Ingredients: []types.IngredientInput{
			{Name: "flour", Amount: "2", Unit: "cup"},
			{Name: "milk", Amount: "1", Unit: "cup"},
			{Name: "egg", Amount: "2", Unit: "whole"},
		},
	}
}

func TestDiffScalarFieldsOnly(t *testing.T) {
	id := uuid.New()
	in, err := Diff(id, map[string]interface{}{
		"servings": true,
		"title":    false,
	}, formValues())
	require.NoError(t, err)

	assert.Equal(t, id, in.ID)
	assert.Equal(t, []string{"servings"}, in.ChangedFields())
	assert.Equal(t, 6, in.Servings.Value())
}

func TestDiffSendsWholeListWhenOneElementIsDirty(t *testing.T) {
	values := formValues()
	in, err := Diff(uuid.New(), map[string]interface{}{
		"ingredients": []interface{}{
			nil,
			map[string]interface{}{"amount": true},
		},
		"instructions": []interface{}{false, false, true},
	}, values)
	require.NoError(t, err)

	assert.Equal(t, []string{"instructions", "ingredients"}, in.ChangedFields())
	assert.Equal(t, values.Ingredients, in.Ingredients.Value())
	assert.Equal(t, values.Instructions, in.Instructions.Value())
}

func TestDiffIgnoresCleanNestedMarkers(t *testing.T) {
	in, err := Diff(uuid.New(), map[string]interface{}{
		"ingredients": []interface{}{map[string]interface{}{"name": false}},
	}, formValues())
	require.NoError(t, err)
	assert.Empty(t, in.ChangedFields())
}

func TestDiffImage(t *testing.T) {
	values := formValues()

	cleared, err := Diff(uuid.New(), map[string]interface{}{"image": true}, values)
	require.NoError(t, err)
	assert.True(t, cleared.Image.IsChanged())
	assert.Nil(t, cleared.Image.Value())

	values.Image = &types.ImageInput{FileName: "a.png", FileType: "image/png", Encoded: "aGk="}
	replaced, err := Diff(uuid.New(), map[string]interface{}{
		"image": map[string]interface{}{"encoded": true},
	}, values)
	require.NoError(t, err)
	assert.Equal(t, values.Image, replaced.Image.Value())
}

func TestDiffCategory(t *testing.T) {
	values := formValues()
	in, err := Diff(uuid.New(), map[string]interface{}{"categoryId": true}, values)
	require.NoError(t, err)
	assert.Equal(t, values.CategoryID, in.CategoryID.Value().String())

	values.CategoryID = "breakfast"
	_, err = Diff(uuid.New(), map[string]interface{}{"categoryId": true}, values)
	assert.Equal(t, models.KindValidation, models.KindOf(err))
}

func TestDiffRejectsUnknownFields(t *testing.T) {
	_, err := Diff(uuid.New(), map[string]interface{}{"author": true}, formValues())
	assert.Equal(t, models.KindValidation, models.KindOf(err))
}

func TestDiffFromJSONSubmission(t *testing.T) {
	raw := `{
		"dirtyFields": {"title": true, "ingredients": [{"name": true}]},
		"values": {"title": "Crepes", "ingredients": [{"name": "flour", "amount": "1", "unit": "cup"}]}
	}`
	var sub types.RecipeFormSubmission
	require.NoError(t, json.Unmarshal([]byte(raw), &sub))

	in, err := Diff(uuid.New(), sub.DirtyFields, sub.Values)
	require.NoError(t, err)
	assert.Equal(t, []string{"title", "ingredients"}, in.ChangedFields())
	assert.Equal(t, "Crepes", in.Title.Value())
}

func TestIsDirty(t *testing.T) {
	assert.False(t, IsDirty(nil))
	assert.False(t, IsDirty("yes"))
	assert.True(t, IsDirty(true))
	assert.True(t, IsDirty(map[string]interface{}{"a": []interface{}{false, true}}))
}
