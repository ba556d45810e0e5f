package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/arturoeanton/scout/internal/domain"
	"github.com/arturoeanton/scout/internal/port"
)

func threeMatches() []domain.SimilarityMatch {
	return []domain.SimilarityMatch{
		{ID: "1", Content: "We deploy with Helm", Similarity: 0.92, Metadata: domain.Metadata{"type": "interview"}},
		{ID: "2", Content: "Rollbacks use helm rollback", Similarity: 0.85, Metadata: domain.Metadata{"type": "note"}},
		{ID: "3", Content: "Staging mirrors prod", Similarity: 0.80, Metadata: domain.Metadata{"type": "interview"}},
	}
}

func TestRetrieve_FormatsMatches(t *testing.T) {
	store := &stubStore{matches: threeMatches()}
	svc := NewRetrievalService(NewEmbeddingService(&stubEmbedder{}, 0, 1), store, 0.78, 5)

	res, err := svc.Retrieve(context.Background(), "how do we deploy?", RetrievalOptions{})
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if !res.MatchesFound {
		t.Fatal("expected matches")
	}
	if !strings.HasPrefix(res.ContextText, "\n\nRelevant context from previous interviews:\n") {
		t.Errorf("missing header: %q", res.ContextText)
	}
	if n := strings.Count(res.ContextText, "\n- "); n != 3 {
		t.Errorf("context lines = %d, want 3", n)
	}
	if !strings.Contains(res.ContextText, "- We deploy with Helm (relevance: 92.0%)") {
		t.Errorf("unexpected context: %q", res.ContextText)
	}
	if store.last.Threshold != 0.78 || store.last.Count != 5 {
		t.Errorf("defaults not applied: %+v", store.last)
	}
}

func TestRetrieve_OptionsOverrideDefaults(t *testing.T) {
	store := &stubStore{}
	svc := NewRetrievalService(NewEmbeddingService(&stubEmbedder{}, 0, 1), store, 0.78, 5)
	zero := 0.0

	if _, err := svc.Retrieve(context.Background(), "q", RetrievalOptions{Threshold: &zero, Count: 2}); err != nil {
		t.Fatal(err)
	}
	if store.last.Threshold != 0 || store.last.Count != 2 {
		t.Errorf("options not applied: %+v", store.last)
	}
}

func TestRetrieve_FilterNarrowsMatches(t *testing.T) {
	svc := NewRetrievalService(NewEmbeddingService(&stubEmbedder{}, 0, 1), &stubStore{matches: threeMatches()}, 0.78, 5)

	res, err := svc.Retrieve(context.Background(), "deploy", RetrievalOptions{Filter: domain.Metadata{"type": "interview"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Matches) != 2 {
		t.Errorf("matches = %d, want 2", len(res.Matches))
	}
}

func TestRetrieve_NoMatches(t *testing.T) {
	svc := NewRetrievalService(NewEmbeddingService(&stubEmbedder{}, 0, 1), &stubStore{}, 0.78, 5)

	res, err := svc.Retrieve(context.Background(), "anything", RetrievalOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if res.MatchesFound || res.ContextText != "" {
		t.Errorf("expected empty result, got %+v", res)
	}
}

func TestRetrieve_StoreErrorDegrades(t *testing.T) {
	svc := NewRetrievalService(NewEmbeddingService(&stubEmbedder{}, 0, 1), &stubStore{err: errors.New("rpc down")}, 0.78, 5)

	res, err := svc.Retrieve(context.Background(), "deploy", RetrievalOptions{})
	if err != nil {
		t.Fatalf("store errors must be recovered, got %v", err)
	}
	if res.MatchesFound || res.ContextText != "" {
		t.Errorf("expected degraded result, got %+v", res)
	}
}

func TestRetrieve_EmbeddingErrorBubbles(t *testing.T) {
	svc := NewRetrievalService(NewEmbeddingService(&stubEmbedder{err: errors.New("down")}, 0, 1), &stubStore{}, 0.78, 5)

	if _, err := svc.Retrieve(context.Background(), "deploy", RetrievalOptions{}); !port.IsEmbeddingError(err) {
		t.Fatalf("expected embedding error, got %v", err)
	}
}

func TestRetrieve_BlankQuery(t *testing.T) {
	svc := NewRetrievalService(NewEmbeddingService(&stubEmbedder{}, 0, 1), &stubStore{}, 0.78, 5)

	_, err := svc.Retrieve(context.Background(), "  ", RetrievalOptions{})
	var ve *port.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}
