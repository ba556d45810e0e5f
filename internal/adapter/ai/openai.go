package ai

import (
	"bytes"
	"context"
	"fmt"

	"github.com/meguminnnnnnnnn/go-openai"

	"github.com/arturoeanton/scout/internal/domain"
	"github.com/arturoeanton/scout/internal/port"
)

// OpenAIConfig configures a client for OpenAI or any OpenAI-compatible endpoint.
type OpenAIConfig struct {
	BaseURL     string // empty = api.openai.com
	APIKey      string
	Model       string
	Temperature float32
}

func newOpenAIClient(cfg OpenAIConfig) *openai.Client {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}
	return openai.NewClientWithConfig(config)
}

// OpenAIEmbedder implements port.EmbeddingProvider over the embeddings endpoint.
type OpenAIEmbedder struct {
	client *openai.Client
	model  string
}

var _ port.EmbeddingProvider = (*OpenAIEmbedder)(nil)

// NewOpenAIEmbedder creates an embedder for cfg.Model.
func NewOpenAIEmbedder(cfg OpenAIConfig) *OpenAIEmbedder {
	return &OpenAIEmbedder{client: newOpenAIClient(cfg), model: cfg.Model}
}

// ModelName returns the embedding model identifier.
func (e *OpenAIEmbedder) ModelName() string { return e.model }

// EmbedBatch sends every text in one request and reorders the result by response index.
func (e *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(e.model),
	})
	if err != nil {
		return nil, classify(port.ServiceEmbedding, "openai", err)
	}

	out := make([][]float32, len(texts))
	for i, d := range resp.Data {
		idx := d.Index
		if idx < 0 || idx >= len(out) || out[idx] != nil {
			idx = i
		}
		if idx >= len(out) {
			return nil, port.NewEmbeddingError(port.KindMalformed,
				fmt.Errorf("openai returned %d embeddings for %d inputs", len(resp.Data), len(texts)))
		}
		out[idx] = d.Embedding
	}
	for i, v := range out {
		if v == nil {
			return nil, port.NewEmbeddingError(port.KindMalformed, fmt.Errorf("missing embedding for input %d", i))
		}
	}
	return out, nil
}

// OpenAIChat implements port.ChatProvider over chat completions.
type OpenAIChat struct {
	client      *openai.Client
	model       string
	temperature float32
}

var _ port.ChatProvider = (*OpenAIChat)(nil)

// NewOpenAIChat creates a chat client. Point BaseURL at any OpenAI-compatible API.
func NewOpenAIChat(cfg OpenAIConfig) *OpenAIChat {
	return &OpenAIChat{client: newOpenAIClient(cfg), model: cfg.Model, temperature: cfg.Temperature}
}

// ModelName returns the chat model identifier.
func (c *OpenAIChat) ModelName() string { return c.model }

// Chat sends the conversation and returns the first choice.
func (c *OpenAIChat) Chat(ctx context.Context, messages []domain.Message) (string, error) {
	temperature := c.temperature
	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: &temperature,
		Messages:    make([]openai.ChatCompletionMessage, len(messages)),
	}
	for i, m := range messages {
		req.Messages[i] = openai.ChatCompletionMessage{Role: string(m.Role), Content: m.Content}
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", classify(port.ServiceChat, "openai", err)
	}
	if len(resp.Choices) == 0 {
		return "", port.NewProviderError(port.ServiceChat, port.KindMalformed, fmt.Errorf("no choices returned"))
	}
	return resp.Choices[0].Message.Content, nil
}

// WhisperTranscriber implements port.Transcriber with the audio transcription endpoint.
type WhisperTranscriber struct {
	client *openai.Client
	model  string
}

var _ port.Transcriber = (*WhisperTranscriber)(nil)

// NewWhisperTranscriber creates a transcriber. An empty model uses whisper-1.
func NewWhisperTranscriber(cfg OpenAIConfig) *WhisperTranscriber {
	model := cfg.Model
	if model == "" {
		model = openai.Whisper1
	}
	return &WhisperTranscriber{client: newOpenAIClient(cfg), model: model}
}

// Transcribe uploads the recording and returns the recognised text.
func (w *WhisperTranscriber) Transcribe(ctx context.Context, filename string, audio []byte) (string, error) {
	resp, err := w.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    w.model,
		FilePath: filename,
		Reader:   bytes.NewReader(audio),
	})
	if err != nil {
		return "", classify(port.ServiceTranscription, "openai", err)
	}
	return resp.Text, nil
}
