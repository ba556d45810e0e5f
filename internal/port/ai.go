package port

import (
	"context"

	"github.com/arturoeanton/scout/internal/domain"
)

// EmbeddingProvider abstracts the remote embedding backend.
// Implementations can target OpenAI, Ollama, Gemini, or any compatible API.
type EmbeddingProvider interface {
	// ModelName returns the identifier of the embedding model.
	ModelName() string

	// EmbedBatch returns one vector per input, in input order, using a single remote call.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// ChatProvider abstracts the conversational model.
type ChatProvider interface {
	// ModelName returns the identifier of the chat model.
	ModelName() string

	// Chat sends role-tagged messages and returns the model's reply.
	Chat(ctx context.Context, messages []domain.Message) (string, error)
}

// Transcriber converts recorded audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, filename string, audio []byte) (string, error)
}

// SpeechSynthesizer converts text into MPEG audio.
type SpeechSynthesizer interface {
	// Enabled reports whether the synthesizer has credentials configured.
	Enabled() bool

	Synthesize(ctx context.Context, text, voiceID string) ([]byte, error)
}
