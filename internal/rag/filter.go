package rag

import "github.com/arturoeanton/scout/internal/domain"

// FilterByMetadata keeps the matches whose metadata holds every filter key
// with an exactly equal value. An empty filter keeps everything.
func FilterByMetadata(matches []domain.SimilarityMatch, filter domain.Metadata) []domain.SimilarityMatch {
	if len(filter) == 0 {
		return matches
	}
	kept := make([]domain.SimilarityMatch, 0, len(matches))
	for _, m := range matches {
		if MatchesMetadata(m.Metadata, filter) {
			kept = append(kept, m)
		}
	}
	return kept
}

// MatchesMetadata reports whether meta satisfies every key of filter.
func MatchesMetadata(meta, filter domain.Metadata) bool {
	for key, want := range filter {
		got, ok := meta[key]
		if !ok || !scalarEqual(got, want) {
			return false
		}
	}
	return true
}

// scalarEqual compares scalar values; numbers compare numerically across Go
// numeric types so JSON-decoded float64 equals an int filter value.
// Composite values (maps, slices) are never equal.
func scalarEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if x, ok := toFloat(a); ok {
		y, ok := toFloat(b)
		return ok && x == y
	}
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	}
	return false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}
