package service

import (
	"context"
	"strings"
	"sync"

	"github.com/arturoeanton/scout/internal/domain"
)

// stubEmbedder returns a deterministic vector per input and records each call's size.
type stubEmbedder struct {
	mu    sync.Mutex
	calls []int
	err   error
	short bool // drop the last vector of every response
}

func (s *stubEmbedder) ModelName() string { return "stub-embed" }

func (s *stubEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	s.mu.Lock()
	s.calls = append(s.calls, len(texts))
	s.mu.Unlock()

	if s.err != nil {
		return nil, s.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = vectorFor(t)
	}
	if s.short {
		out = out[:len(out)-1]
	}
	return out, nil
}

func (s *stubEmbedder) callSizes() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.calls...)
}

// vectorFor maps text onto a small vector so similar prefixes land close together.
func vectorFor(text string) []float32 {
	v := []float32{0, 0, 0}
	switch {
	case strings.Contains(text, "deploy"):
		v[0] = 1
	case strings.Contains(text, "database"):
		v[1] = 1
	default:
		v[2] = 1
	}
	v[2] += float32(len(text)%7) / 1000
	return v
}

// stubChat records the messages of the last call.
type stubChat struct {
	reply    string
	err      error
	messages []domain.Message
}

func (s *stubChat) ModelName() string { return "stub-chat" }

func (s *stubChat) Chat(_ context.Context, messages []domain.Message) (string, error) {
	s.messages = messages
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

// stubStore returns fixed matches or an error and records the last query.
type stubStore struct {
	matches []domain.SimilarityMatch
	err     error
	last    domain.SearchQuery
}

func (s *stubStore) Insert(_ context.Context, doc *domain.Document) (*domain.Document, error) {
	return doc, s.err
}

func (s *stubStore) Search(_ context.Context, q domain.SearchQuery) ([]domain.SimilarityMatch, error) {
	s.last = q
	if s.err != nil {
		return nil, s.err
	}
	return s.matches, nil
}

func (s *stubStore) Delete(context.Context, string) error { return s.err }

func (s *stubStore) List(context.Context, int, int) ([]domain.Document, int, error) {
	return nil, 0, s.err
}
