package rag

import (
	"math"

	"github.com/arturoeanton/scout/internal/port"
)

// CosineSimilarity returns dot(a,b) / (|a|*|b|).
// Zero vectors are not special-cased and yield NaN.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, &port.DimensionMismatchError{Left: len(a), Right: len(b)}
	}
	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}
