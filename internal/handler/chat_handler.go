package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/arturoeanton/scout/internal/domain"
	"github.com/arturoeanton/scout/internal/service"
)

// ChatHandler serves interviewer turns.
type ChatHandler struct {
	interview *service.InterviewService
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(interview *service.InterviewService) *ChatHandler {
	return &ChatHandler{interview: interview}
}

// Register sets up chat routes.
func (h *ChatHandler) Register(router fiber.Router) {
	router.Post("/chat", h.Chat)
}

// Chat answers one user message, optionally grounded in stored interview knowledge.
func (h *ChatHandler) Chat(c fiber.Ctx) error {
	var body struct {
		Message           string           `json:"message"`
		History           []domain.Message `json:"history"`
		SystemPrompt      string           `json:"systemPrompt"`
		UseRAG            bool             `json:"useRAG"`
		RAGMatchCount     int              `json:"ragMatchCount"`
		RAGMatchThreshold *float64         `json:"ragMatchThreshold"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}

	chatCtx, cancel := context.WithTimeout(c.Context(), 2*time.Minute)
	defer cancel()

	resp, err := h.interview.Reply(chatCtx, service.ChatRequest{
		Message:      body.Message,
		History:      body.History,
		SystemPrompt: body.SystemPrompt,
		UseRAG:       body.UseRAG,
		Retrieval: service.RetrievalOptions{
			Threshold: body.RAGMatchThreshold,
			Count:     body.RAGMatchCount,
		},
	})
	if err != nil {
		return respondError(c, err, "Failed to process chat message")
	}

	return c.JSON(fiber.Map{
		"message":         resp.Message,
		"success":         true,
		"ragUsed":         resp.RAGUsed,
		"ragContextFound": resp.RAGContextFound,
	})
}
