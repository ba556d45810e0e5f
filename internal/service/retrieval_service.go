package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/arturoeanton/scout/internal/domain"
	"github.com/arturoeanton/scout/internal/port"
	"github.com/arturoeanton/scout/internal/rag"
)

// Default retrieval tuning.
const (
	DefaultMatchThreshold = 0.78
	DefaultMatchCount     = 5
)

// RetrievalOptions tunes one retrieval. A nil Threshold or a Count <= 0 uses the service default.
type RetrievalOptions struct {
	Threshold *float64
	Count     int
	Filter    domain.Metadata
}

// RetrievalResult is the context block built from the matches of one retrieval.
type RetrievalResult struct {
	ContextText  string
	MatchesFound bool
	Matches      []domain.SimilarityMatch
}

// RetrievalService finds stored knowledge relevant to a query and renders it as prompt context.
type RetrievalService struct {
	embedder  *EmbeddingService
	store     port.DocumentStore
	threshold float64
	count     int
}

// NewRetrievalService creates a retrieval service with the given defaults.
func NewRetrievalService(embedder *EmbeddingService, store port.DocumentStore, threshold float64, count int) *RetrievalService {
	if count <= 0 {
		count = DefaultMatchCount
	}
	return &RetrievalService{embedder: embedder, store: store, threshold: threshold, count: count}
}

// query resolves the options against the service defaults.
func (s *RetrievalService) query(embedding []float32, opts RetrievalOptions) domain.SearchQuery {
	q := domain.SearchQuery{Embedding: embedding, Threshold: s.threshold, Count: s.count}
	if opts.Threshold != nil {
		q.Threshold = *opts.Threshold
	}
	if opts.Count > 0 {
		q.Count = opts.Count
	}
	return q
}

// Retrieve embeds query, searches the store and formats the surviving matches.
// Store failures degrade to an empty result; validation and embedding failures are returned.
func (s *RetrievalService) Retrieve(ctx context.Context, query string, opts RetrievalOptions) (RetrievalResult, error) {
	if strings.TrimSpace(query) == "" {
		return RetrievalResult{}, port.NewValidationError("query", "must not be empty")
	}

	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return RetrievalResult{}, err
	}

	matches, err := s.store.Search(ctx, s.query(embedding, opts))
	if err != nil {
		slog.Warn("retrieval degraded", "error", port.NewRetrievalError(err))
		return RetrievalResult{}, nil
	}

	matches = rag.FilterByMetadata(matches, opts.Filter)
	if len(matches) == 0 {
		return RetrievalResult{}, nil
	}

	slog.Debug("retrieved context", "matches", len(matches), "top_similarity", matches[0].Similarity)
	return RetrievalResult{
		ContextText:  rag.FormatContext(matches),
		MatchesFound: true,
		Matches:      matches,
	}, nil
}
