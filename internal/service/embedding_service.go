package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/arturoeanton/scout/internal/port"
)

// DefaultBatchSize is the largest number of inputs sent in one provider call.
const DefaultBatchSize = 2048

// EmbeddingService turns text into vectors through an EmbeddingProvider.
type EmbeddingService struct {
	provider    port.EmbeddingProvider
	batchSize   int
	concurrency int
}

// NewEmbeddingService creates an embedding service. batchSize <= 0 uses DefaultBatchSize
// and concurrency <= 1 runs batch groups one after another.
func NewEmbeddingService(provider port.EmbeddingProvider, batchSize, concurrency int) *EmbeddingService {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if concurrency < 1 {
		concurrency = 1
	}
	return &EmbeddingService{provider: provider, batchSize: batchSize, concurrency: concurrency}
}

// Model returns the name of the underlying embedding model.
func (s *EmbeddingService) Model() string {
	return s.provider.ModelName()
}

// Embed returns the vector for a single text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, port.NewValidationError("text", "must not be empty")
	}

	vectors, err := s.call(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch returns one vector per input in input order. Inputs are sent in groups of
// at most batchSize; groups may run concurrently but results land in their original slots.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	cleaned := make([]string, len(texts))
	for i, t := range texts {
		cleaned[i] = strings.TrimSpace(t)
		if cleaned[i] == "" {
			return nil, port.NewValidationError(fmt.Sprintf("texts[%d]", i), "must not be empty")
		}
	}

	out := make([][]float32, len(cleaned))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for start := 0; start < len(cleaned); start += s.batchSize {
		end := min(start+s.batchSize, len(cleaned))
		g.Go(func() error {
			vectors, err := s.call(gctx, cleaned[start:end])
			if err != nil {
				return err
			}
			copy(out[start:end], vectors)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// call performs one provider request and normalizes its failures.
func (s *EmbeddingService) call(ctx context.Context, texts []string) ([][]float32, error) {
	vectors, err := s.provider.EmbedBatch(ctx, texts)
	if err != nil {
		var pe *port.ProviderError
		if errors.As(err, &pe) {
			return nil, err
		}
		slog.Error("embedding request failed", "model", s.provider.ModelName(), "inputs", len(texts), "error", err)
		return nil, port.NewEmbeddingError(port.KindUnavailable, err)
	}
	if len(vectors) != len(texts) {
		slog.Error("embedding response size mismatch", "model", s.provider.ModelName(), "want", len(texts), "got", len(vectors))
		return nil, port.NewEmbeddingError(port.KindMalformed,
			fmt.Errorf("got %d vectors for %d inputs", len(vectors), len(texts)))
	}
	return vectors, nil
}
