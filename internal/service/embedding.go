package service

import (
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	pgvector "github.com/pgvector/pgvector-go"
)

// EmbeddingDimensions matches the recipes.embedding vector column
const EmbeddingDimensions = 3

// GenerateEmbedding hashes the words of text into a unit-length bag-of-words
// vector. Texts sharing words land close together; empty text is the zero vector.
func GenerateEmbedding(text string) pgvector.Vector {
	vec := make([]float32, EmbeddingDimensions)
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, word := range words {
		h := fnv.New32a()
		_, _ = h.Write([]byte(word))
		vec[h.Sum32()%EmbeddingDimensions]++
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v * v)
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= scale
		}
	}
	return pgvector.NewVector(vec)
}

// RecipeEmbedding embeds the searchable text of a recipe
func RecipeEmbedding(title, description string) *pgvector.Vector {
	vec := GenerateEmbedding(title + " " + description)
	return &vec
}
