package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/arturoeanton/scout/internal/domain"
	"github.com/arturoeanton/scout/internal/port"
	"github.com/arturoeanton/scout/internal/rag"
)

// StoreRequest describes a write of interview knowledge.
type StoreRequest struct {
	Content  string
	Metadata domain.Metadata
	Split    bool
	// Progress, when set, is called after each stored document.
	Progress func(stored, total int)
}

// KnowledgeService writes, searches, lists and deletes stored interview knowledge.
type KnowledgeService struct {
	embedder  *EmbeddingService
	store     port.DocumentStore
	retrieval *RetrievalService
	maxTokens int
}

// NewKnowledgeService creates a knowledge service.
func NewKnowledgeService(embedder *EmbeddingService, store port.DocumentStore, retrieval *RetrievalService, maxTokens int) *KnowledgeService {
	return &KnowledgeService{embedder: embedder, store: store, retrieval: retrieval, maxTokens: maxTokens}
}

// Store embeds and persists content, optionally split into chunks that share the caller's metadata.
func (s *KnowledgeService) Store(ctx context.Context, req StoreRequest) ([]domain.Document, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, port.NewValidationError("content", "must not be empty")
	}

	if !req.Split {
		embedding, err := s.embedder.Embed(ctx, content)
		if err != nil {
			return nil, err
		}
		doc, err := s.store.Insert(ctx, &domain.Document{
			Content:   content,
			Embedding: embedding,
			Metadata:  req.Metadata.Clone(),
		})
		if err != nil {
			return nil, fmt.Errorf("insert document: %w", err)
		}
		report(req.Progress, 1, 1)
		return []domain.Document{*doc}, nil
	}

	chunks := rag.Split(content, s.maxTokens)
	slog.Info("storing chunked document", "chunks", len(chunks), "chars", len(content))

	embeddings, err := s.embedder.EmbedBatch(ctx, chunks)
	if err != nil {
		return nil, err
	}

	stored := make([]domain.Document, 0, len(chunks))
	for i, chunk := range chunks {
		meta := req.Metadata.Clone()
		meta[domain.MetaChunkIndex] = i
		meta[domain.MetaTotalChunks] = len(chunks)
		meta[domain.MetaIsChunked] = true

		doc, err := s.store.Insert(ctx, &domain.Document{
			Content:   chunk,
			Embedding: embeddings[i],
			Metadata:  meta,
		})
		if err != nil {
			return stored, fmt.Errorf("insert chunk %d/%d: %w", i+1, len(chunks), err)
		}
		stored = append(stored, *doc)
		report(req.Progress, len(stored), len(chunks))
	}
	return stored, nil
}

// Search runs an explicit similarity search. Unlike retrieval for chat, store errors are returned.
func (s *KnowledgeService) Search(ctx context.Context, query string, opts RetrievalOptions) ([]domain.SimilarityMatch, error) {
	if strings.TrimSpace(query) == "" {
		return nil, port.NewValidationError("query", "must not be empty")
	}

	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	matches, err := s.store.Search(ctx, s.retrieval.query(embedding, opts))
	if err != nil {
		return nil, port.NewRetrievalError(err)
	}
	matches = rag.FilterByMetadata(matches, opts.Filter)
	if matches == nil {
		matches = []domain.SimilarityMatch{}
	}
	return matches, nil
}

// List returns stored documents newest first with the total count.
func (s *KnowledgeService) List(ctx context.Context, limit, offset int) ([]domain.Document, int, error) {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.store.List(ctx, limit, offset)
}

// Delete removes a stored document.
func (s *KnowledgeService) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return port.NewValidationError("id", "document ID is required")
	}
	return s.store.Delete(ctx, id)
}

func report(progress func(stored, total int), stored, total int) {
	if progress != nil {
		progress(stored, total)
	}
}
