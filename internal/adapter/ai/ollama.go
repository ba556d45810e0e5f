package ai

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	ollama "github.com/ollama/ollama/api"

	"github.com/arturoeanton/scout/internal/domain"
	"github.com/arturoeanton/scout/internal/port"
)

// OllamaEndpointConfig holds the configuration for a single Ollama endpoint.
type OllamaEndpointConfig struct {
	BaseURL string // e.g. http://localhost:11434 or https://ollama.com
	Model   string // e.g. nomic-embed-text, llama3.2
	Token   string // Bearer token for Ollama Cloud (empty = no auth)
}

// OllamaProvider implements port.EmbeddingProvider and port.ChatProvider over the Ollama API.
type OllamaProvider struct {
	client      *ollama.Client
	model       string
	temperature float32
}

var (
	_ port.EmbeddingProvider = (*OllamaProvider)(nil)
	_ port.ChatProvider      = (*OllamaProvider)(nil)
)

// NewOllamaProvider creates a provider for one endpoint and model.
func NewOllamaProvider(cfg OllamaEndpointConfig, temperature float32) (*OllamaProvider, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:11434"
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama base URL: %w", err)
	}

	hc := &http.Client{Timeout: 120 * time.Second}
	if cfg.Token != "" {
		hc.Transport = bearerTransport{token: cfg.Token, next: http.DefaultTransport}
	}

	return &OllamaProvider{
		client:      ollama.NewClient(base, hc),
		model:       cfg.Model,
		temperature: temperature,
	}, nil
}

// ModelName returns the model identifier.
func (o *OllamaProvider) ModelName() string {
	return o.model
}

// EmbedBatch generates embeddings for multiple texts in one call.
func (o *OllamaProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := o.client.Embed(ctx, &ollama.EmbedRequest{
		Model: o.model,
		Input: texts,
	})
	if err != nil {
		return nil, classify(port.ServiceEmbedding, "ollama", err)
	}
	return resp.Embeddings, nil
}

// Chat sends the conversation without streaming and returns the reply.
func (o *OllamaProvider) Chat(ctx context.Context, messages []domain.Message) (string, error) {
	msgs := make([]ollama.Message, len(messages))
	for i, m := range messages {
		msgs[i] = ollama.Message{Role: string(m.Role), Content: m.Content}
	}

	stream := false
	var reply string
	err := o.client.Chat(ctx, &ollama.ChatRequest{
		Model:    o.model,
		Messages: msgs,
		Stream:   &stream,
		Options:  map[string]any{"temperature": o.temperature},
	}, func(resp ollama.ChatResponse) error {
		reply += resp.Message.Content
		return nil
	})
	if err != nil {
		return "", classify(port.ServiceChat, "ollama", err)
	}
	return reply, nil
}

// bearerTransport adds the Ollama Cloud token to every request.
type bearerTransport struct {
	token string
	next  http.RoundTripper
}

func (t bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.Header.Set("Authorization", "Bearer "+t.token)
	return t.next.RoundTrip(r)
}
