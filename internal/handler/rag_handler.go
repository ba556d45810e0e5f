package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/arturoeanton/scout/internal/domain"
	"github.com/arturoeanton/scout/internal/service"
)

// RAGHandler exposes the retrieval step on its own, for clients that build their own prompts.
type RAGHandler struct {
	retrieval *service.RetrievalService
}

// NewRAGHandler creates a new RAG handler.
func NewRAGHandler(retrieval *service.RetrievalService) *RAGHandler {
	return &RAGHandler{retrieval: retrieval}
}

// Register sets up RAG routes.
func (h *RAGHandler) Register(router fiber.Router) {
	rag := router.Group("/rag")
	rag.Post("/context", h.Context)
}

// Context returns the formatted context block and the matches it was built from.
func (h *RAGHandler) Context(c fiber.Ctx) error {
	var body struct {
		Query          string          `json:"query"`
		MatchThreshold *float64        `json:"matchThreshold"`
		MatchCount     int             `json:"matchCount"`
		Metadata       domain.Metadata `json:"metadata"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	result, err := h.retrieval.Retrieve(c.Context(), body.Query, service.RetrievalOptions{
		Threshold: body.MatchThreshold,
		Count:     body.MatchCount,
		Filter:    body.Metadata,
	})
	if err != nil {
		return respondError(c, err, "Failed to retrieve context")
	}

	sources := result.Matches
	if sources == nil {
		sources = []domain.SimilarityMatch{}
	}
	return c.JSON(fiber.Map{
		"success":      true,
		"context":      result.ContextText,
		"matchesFound": result.MatchesFound,
		"sources":      sources,
	})
}
