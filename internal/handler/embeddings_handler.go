package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/arturoeanton/scout/internal/adapter/loader"
	"github.com/arturoeanton/scout/internal/domain"
	"github.com/arturoeanton/scout/internal/middleware"
	"github.com/arturoeanton/scout/internal/port"
	"github.com/arturoeanton/scout/internal/service"
)

// EmbeddingsHandler exposes the stored knowledge base over HTTP.
type EmbeddingsHandler struct {
	knowledge *service.KnowledgeService
	tracker   *JobTracker
	audit     port.AuditWriter
}

// NewEmbeddingsHandler creates a new embeddings handler. audit may be nil.
func NewEmbeddingsHandler(knowledge *service.KnowledgeService, tracker *JobTracker, audit port.AuditWriter) *EmbeddingsHandler {
	return &EmbeddingsHandler{knowledge: knowledge, tracker: tracker, audit: audit}
}

// RegisterPublic sets up the search routes.
func (h *EmbeddingsHandler) RegisterPublic(router fiber.Router) {
	emb := router.Group("/embeddings")
	emb.Post("/search", h.Search)
	emb.Get("/search", h.SearchQuery)
}

// RegisterAdmin sets up the write and management routes.
func (h *EmbeddingsHandler) RegisterAdmin(router fiber.Router) {
	emb := router.Group("/embeddings")
	emb.Post("/store", h.Store)
	emb.Get("/store", h.List)
	emb.Delete("/store", h.Delete)
	emb.Post("/upload", h.Upload)
}

// Search runs a similarity search with an optional metadata filter.
func (h *EmbeddingsHandler) Search(c fiber.Ctx) error {
	var body struct {
		Query          string          `json:"query"`
		MatchThreshold *float64        `json:"matchThreshold"`
		MatchCount     int             `json:"matchCount"`
		Metadata       domain.Metadata `json:"metadata"`
	}
	if err := c.Bind().JSON(&body); err != nil || strings.TrimSpace(body.Query) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Query is required and must be a string"})
	}

	matches, err := h.knowledge.Search(c.Context(), body.Query, service.RetrievalOptions{
		Threshold: body.MatchThreshold,
		Count:     body.MatchCount,
		Filter:    body.Metadata,
	})
	if err != nil {
		return respondError(c, err, "Failed to search documents")
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"results":    matches,
		"query":      body.Query,
		"matchCount": len(matches),
	})
}

// SearchQuery is the query-string variant of Search, without metadata filtering.
func (h *EmbeddingsHandler) SearchQuery(c fiber.Ctx) error {
	query := c.Query("query")
	if strings.TrimSpace(query) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Query parameter is required"})
	}

	var opts service.RetrievalOptions
	if raw := c.Query("matchThreshold"); raw != "" {
		threshold, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "matchThreshold must be a number"})
		}
		opts.Threshold = &threshold
	}
	opts.Count, _ = strconv.Atoi(c.Query("matchCount"))

	matches, err := h.knowledge.Search(c.Context(), query, opts)
	if err != nil {
		return respondError(c, err, "Failed to search documents")
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"results":    matches,
		"query":      query,
		"matchCount": len(matches),
	})
}

// Store embeds and persists one document, or its chunks when splitIntoChunks is set.
func (h *EmbeddingsHandler) Store(c fiber.Ctx) error {
	var body struct {
		Content         string          `json:"content"`
		Metadata        domain.Metadata `json:"metadata"`
		SplitIntoChunks bool            `json:"splitIntoChunks"`
	}
	if err := c.Bind().JSON(&body); err != nil || strings.TrimSpace(body.Content) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Content is required and must be a string"})
	}

	docs, err := h.knowledge.Store(c.Context(), service.StoreRequest{
		Content:  body.Content,
		Metadata: body.Metadata,
		Split:    body.SplitIntoChunks,
	})
	if err != nil {
		return respondError(c, err, "Failed to store document")
	}

	if body.SplitIntoChunks {
		return c.JSON(fiber.Map{
			"success":   true,
			"documents": docs,
			"message":   "Successfully stored " + strconv.Itoa(len(docs)) + " document chunks",
		})
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"document": docs[0],
		"message":  "Document stored successfully",
	})
}

// List returns stored documents newest first.
func (h *EmbeddingsHandler) List(c fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "10"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))

	docs, total, err := h.knowledge.List(c.Context(), limit, offset)
	if err != nil {
		return respondError(c, err, "Failed to fetch documents")
	}
	if docs == nil {
		docs = []domain.Document{}
	}

	return c.JSON(fiber.Map{
		"success":   true,
		"documents": docs,
		"total":     total,
		"limit":     limit,
		"offset":    offset,
	})
}

// Delete removes a stored document by ?id=.
func (h *EmbeddingsHandler) Delete(c fiber.Ctx) error {
	id := c.Query("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Document ID is required"})
	}

	if err := h.knowledge.Delete(c.Context(), id); err != nil {
		return respondError(c, err, "Failed to delete document")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Document deleted successfully",
	})
}

// Upload extracts text from a multipart "file" and stores it in chunks in the background.
func (h *EmbeddingsHandler) Upload(c fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "No file provided"})
	}

	f, err := fh.Open()
	if err != nil {
		return respondError(c, err, "Failed to read upload")
	}
	data, err := io.ReadAll(f)
	f.Close()
	if err != nil {
		return respondError(c, err, "Failed to read upload")
	}

	text, err := loader.Extract(fh.Filename, data)
	if err != nil {
		return respondError(c, err, "Failed to extract document text")
	}

	var meta domain.Metadata
	if raw := c.FormValue("metadata"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &meta); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "metadata must be a JSON object"})
		}
	}
	if meta == nil {
		meta = domain.Metadata{}
	}
	if _, ok := meta["source"]; !ok {
		meta["source"] = fh.Filename
	}

	jobID := h.tracker.CreateJob(fh.Filename)
	actor := "anonymous"
	if a := middleware.GetAdminContext(c); a != nil {
		actor = a.Subject
	}

	go h.ingest(jobID, actor, fh.Filename, text, meta)

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"success": true,
		"job_id":  jobID,
		"message": "ingest started",
	})
}

func (h *EmbeddingsHandler) ingest(jobID, actor, filename, text string, meta domain.Metadata) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	docs, err := h.knowledge.Store(ctx, service.StoreRequest{
		Content:  text,
		Metadata: meta,
		Split:    true,
		Progress: func(stored, total int) { h.tracker.Progress(jobID, stored, total) },
	})
	if err != nil {
		slog.Error("ingest failed", "job_id", jobID, "file", filename, "error", err)
		h.tracker.Fail(jobID, err)
		return
	}

	ids := make([]string, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}
	h.tracker.Complete(jobID, ids)
	slog.Info("ingest complete", "job_id", jobID, "file", filename, "chunks", len(ids))

	if h.audit == nil {
		return
	}
	details, _ := json.Marshal(map[string]any{"filename": filename, "chunks": len(ids)})
	if err := h.audit.WriteAudit(ctx, domain.AuditLog{
		Actor:      actor,
		Action:     domain.AuditActionIngest,
		Resource:   "document",
		ResourceID: jobID,
		Details:    string(details),
	}); err != nil {
		slog.Error("failed to write audit log", "error", err)
	}
}
