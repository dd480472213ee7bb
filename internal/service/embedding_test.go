package service

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateEmbedding(t *testing.T) {
	vec := GenerateEmbedding("Fluffy buttermilk pancakes").Slice()
	assert.Len(t, vec, EmbeddingDimensions)

	var norm float64
	for _, v := range vec {
		norm += float64(v * v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-5)

	assert.Equal(t, vec, GenerateEmbedding("FLUFFY, buttermilk... pancakes!").Slice())
	assert.Equal(t, make([]float32, EmbeddingDimensions), GenerateEmbedding("  -- ").Slice())
}
