package rag

import (
	"fmt"
	"strings"

	"github.com/arturoeanton/scout/internal/domain"
)

// ContextHeader prefixes the retrieved knowledge appended to a system prompt.
const ContextHeader = "\n\nRelevant context from previous interviews:\n"

// FormatContext renders matches as the context block injected into the system prompt.
// It returns "" when there are no matches.
func FormatContext(matches []domain.SimilarityMatch) string {
	if len(matches) == 0 {
		return ""
	}
	lines := make([]string, len(matches))
	for i, m := range matches {
		lines[i] = fmt.Sprintf("- %s (relevance: %.1f%%)", m.Content, m.Similarity*100)
	}
	return ContextHeader + strings.Join(lines, "\n")
}

// AugmentPrompt appends a context block to a base system prompt.
func AugmentPrompt(base, contextText string) string {
	return base + contextText
}
