package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kitchenkin/recipes/backend/internal/models"
	"github.com/kitchenkin/recipes/backend/internal/types"
)

func TestResolveIngredients(t *testing.T) {
	tests := []struct {
		name  string
		lines []types.IngredientInput
		want  []models.IngredientKey
	}{
		{
			name:  "empty",
			lines: nil,
			want:  []models.IngredientKey{},
		},
		{
			name: "keeps order",
			lines: []types.IngredientInput{
				{Name: "milk", Amount: "1", Unit: "cup"},
				{Name: "flour", Amount: "2", Unit: "cup"},
			},
			want: []models.IngredientKey{
				{Name: "milk", Amount: "1", Unit: "cup"},
				{Name: "flour", Amount: "2", Unit: "cup"},
			},
		},
		{
			name: "collapses exact repeats",
			lines: []types.IngredientInput{
				{Name: "egg", Amount: "1", Unit: "whole"},
				{Name: "egg", Amount: "2", Unit: "whole"},
				{Name: "egg", Amount: "1", Unit: "whole"},
			},
			want: []models.IngredientKey{
				{Name: "egg", Amount: "1", Unit: "whole"},
				{Name: "egg", Amount: "2", Unit: "whole"},
			},
		},
		{
			name: "whitespace makes a distinct triple",
			lines: []types.IngredientInput{
				{Name: "salt", Amount: "1", Unit: "pinch"},
				{Name: "salt ", Amount: "1", Unit: "pinch"},
			},
			want: []models.IngredientKey{
				{Name: "salt", Amount: "1", Unit: "pinch"},
				{Name: "salt ", Amount: "1", Unit: "pinch"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveIngredients(tt.lines))
		})
	}
}
