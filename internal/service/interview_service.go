package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/arturoeanton/scout/internal/domain"
	"github.com/arturoeanton/scout/internal/port"
	"github.com/arturoeanton/scout/internal/rag"
)

// ChatRequest is one conversational turn.
type ChatRequest struct {
	Message      string
	History      []domain.Message
	SystemPrompt string
	UseRAG       bool
	Retrieval    RetrievalOptions
}

// ChatResponse is the interviewer's reply and whether stored knowledge informed it.
type ChatResponse struct {
	Message         string
	RAGUsed         bool
	RAGContextFound bool
}

// InterviewService drives the interviewer persona, optionally grounded in stored knowledge.
type InterviewService struct {
	chat          port.ChatProvider
	retrieval     *RetrievalService
	defaultPrompt string
}

// NewInterviewService creates an interview service. retrieval may be nil when RAG is unavailable.
func NewInterviewService(chat port.ChatProvider, retrieval *RetrievalService, defaultPrompt string) *InterviewService {
	return &InterviewService{chat: chat, retrieval: retrieval, defaultPrompt: defaultPrompt}
}

// Reply produces the next interviewer message. Retrieval failures never fail the turn.
func (s *InterviewService) Reply(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	if strings.TrimSpace(req.Message) == "" {
		return ChatResponse{}, port.NewValidationError("message", "Message is required")
	}

	var contextText string
	if req.UseRAG && s.retrieval != nil {
		res, err := s.retrieval.Retrieve(ctx, req.Message, req.Retrieval)
		if err != nil {
			slog.Warn("chat continuing without retrieved context", "error", err)
		} else {
			contextText = res.ContextText
		}
	}

	prompt := req.SystemPrompt
	if strings.TrimSpace(prompt) == "" {
		prompt = s.defaultPrompt
	}

	messages := make([]domain.Message, 0, len(req.History)+2)
	messages = append(messages, domain.Message{Role: domain.RoleSystem, Content: rag.AugmentPrompt(prompt, contextText)})
	for _, m := range req.History {
		switch m.Role {
		case domain.RoleUser, domain.RoleAssistant:
			messages = append(messages, m)
		}
	}
	messages = append(messages, domain.Message{Role: domain.RoleUser, Content: req.Message})

	reply, err := s.chat.Chat(ctx, messages)
	if err != nil {
		var pe *port.ProviderError
		if !errors.As(err, &pe) {
			err = port.NewProviderError(port.ServiceChat, port.KindUnavailable, err)
		}
		slog.Error("chat completion failed", "model", s.chat.ModelName(), "error", err)
		return ChatResponse{}, err
	}

	return ChatResponse{
		Message:         reply,
		RAGUsed:         req.UseRAG,
		RAGContextFound: contextText != "",
	}, nil
}
