package handler

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/arturoeanton/scout/internal/port"
)

// AuditHandler handles audit log endpoints.
type AuditHandler struct {
	logs port.AuditLogStore
}

// NewAuditHandler creates a new audit handler.
func NewAuditHandler(logs port.AuditLogStore) *AuditHandler {
	return &AuditHandler{logs: logs}
}

// Register sets up audit routes.
func (h *AuditHandler) Register(router fiber.Router) {
	audit := router.Group("/audit")
	audit.Get("/logs", h.ListLogs)
	audit.Get("/recent", h.Recent)
}

// ListLogs returns audit logs with optional filtering.
func (h *AuditHandler) ListLogs(c fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "100"))
	action := c.Query("action", "")

	logs, err := h.logs.ListAuditLogs(c.Context(), limit, action)
	if err != nil {
		return respondError(c, err, "Failed to fetch audit logs")
	}

	return c.JSON(fiber.Map{
		"logs":  logs,
		"count": len(logs),
	})
}

// Recent returns a compact view of the latest 50 entries for dashboard polling.
func (h *AuditHandler) Recent(c fiber.Ctx) error {
	c.Set("Cache-Control", "no-cache")

	logs, err := h.logs.ListAuditLogs(c.Context(), 50, "")
	if err != nil {
		return respondError(c, err, "Failed to fetch audit logs")
	}

	type logEntry struct {
		Timestamp string `json:"timestamp"`
		Action    string `json:"action"`
		Actor     string `json:"actor"`
		Path      string `json:"path"`
		Details   string `json:"details"`
	}

	entries := make([]logEntry, len(logs))
	for i, l := range logs {
		entries[i] = logEntry{
			Timestamp: l.CreatedAt.Format(time.RFC3339),
			Action:    l.Action,
			Actor:     l.Actor,
			Path:      l.ResourceID,
			Details:   l.Details,
		}
	}

	return c.JSON(fiber.Map{
		"logs":  entries,
		"count": len(entries),
	})
}
