package rag

import (
	"strings"
	"testing"

	"github.com/arturoeanton/scout/internal/domain"
)

func TestFormatContext(t *testing.T) {
	if got := FormatContext(nil); got != "" {
		t.Errorf("expected empty context, got %q", got)
	}

	got := FormatContext([]domain.SimilarityMatch{
		{Content: "Use make dev to boot", Similarity: 0.823},
		{Content: "Secrets live in vault", Similarity: 0.9},
	})
	want := ContextHeader +
		"- Use make dev to boot (relevance: 82.3%)\n" +
		"- Secrets live in vault (relevance: 90.0%)"
	if got != want {
		t.Errorf("got %q\nwant %q", got, want)
	}
}

func TestAugmentPrompt(t *testing.T) {
	base := "You are Scout."
	if got := AugmentPrompt(base, ""); got != base {
		t.Errorf("empty context should leave prompt unchanged, got %q", got)
	}
	ctx := FormatContext([]domain.SimilarityMatch{{Content: "x", Similarity: 0.8}})
	if got := AugmentPrompt(base, ctx); !strings.HasPrefix(got, base+"\n\nRelevant context") {
		t.Errorf("unexpected prompt %q", got)
	}
}
