package ai

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/arturoeanton/scout/internal/port"
)

// GeminiEmbedder implements port.EmbeddingProvider with Google's embedding models.
type GeminiEmbedder struct {
	client *genai.Client
	model  *genai.EmbeddingModel
	name   string
}

var _ port.EmbeddingProvider = (*GeminiEmbedder)(nil)

// NewGeminiEmbedder creates an embedder for modelName, e.g. text-embedding-004.
func NewGeminiEmbedder(ctx context.Context, apiKey, modelName string) (*GeminiEmbedder, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiEmbedder{client: client, model: client.EmbeddingModel(modelName), name: modelName}, nil
}

// ModelName returns the embedding model identifier.
func (g *GeminiEmbedder) ModelName() string { return g.name }

// EmbedBatch embeds every text with one BatchEmbedContents call.
func (g *GeminiEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	batch := g.model.NewBatch()
	for _, text := range texts {
		batch.AddContent(genai.Text(text))
	}

	res, err := g.model.BatchEmbedContents(ctx, batch)
	if err != nil {
		return nil, classify(port.ServiceEmbedding, "gemini", err)
	}

	out := make([][]float32, len(res.Embeddings))
	for i, emb := range res.Embeddings {
		out[i] = emb.Values
	}
	return out, nil
}

// Close releases the underlying client.
func (g *GeminiEmbedder) Close() error {
	return g.client.Close()
}
