package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFallbackEmbedding_Dimensions(t *testing.T) {
	for _, text := range []string{"", "hello", "مرحبا", "a much longer input with many words"} {
		vec := FallbackEmbedding(text)
		assert.Len(t, vec, EmbeddingDimensions, "input %q", text)
	}
}

func TestFallbackEmbedding_Deterministic(t *testing.T) {
	a := FallbackEmbedding("greetings lesson")
	b := FallbackEmbedding("greetings lesson")
	assert.Equal(t, a, b)
}

func TestFallbackEmbedding_Range(t *testing.T) {
	vec := FallbackEmbedding("food and dining")
	for i, v := range vec {
		require.GreaterOrEqual(t, v, float32(-1), "index %d", i)
		require.LessOrEqual(t, v, float32(1), "index %d", i)
	}
}

func TestFallbackEmbedding_DifferentInputsDiffer(t *testing.T) {
	// Inputs with different character-code sums get different seeds.
	assert.NotEqual(t, FallbackEmbedding("travel"), FallbackEmbedding("weather"))
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float32{1, 0}, []float32{2, 0}), 1e-9)
	assert.InDelta(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, cosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-9)

	// Mismatched lengths and zero vectors rank at the bottom instead
	// of erroring.
	assert.Equal(t, 0.0, cosineSimilarity([]float32{1, 2}, []float32{1}))
	assert.Equal(t, 0.0, cosineSimilarity([]float32{0, 0}, []float32{1, 1}))
}
