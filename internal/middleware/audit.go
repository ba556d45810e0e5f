package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/arturoeanton/scout/internal/domain"
	"github.com/arturoeanton/scout/internal/port"
)

// AuditMiddleware records every request through writer without delaying the response.
func AuditMiddleware(writer port.AuditWriter) fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()

		// Capture request data BEFORE handler execution (Fiber reuses context objects)
		method := c.Method()
		path := c.Path()
		ip := c.IP()
		userAgent := c.Get("User-Agent")

		err := c.Next()

		actor := "anonymous"
		if a := GetAdminContext(c); a != nil {
			actor = a.Subject
		}

		details, _ := json.Marshal(map[string]any{
			"method":      method,
			"status":      c.Response().StatusCode(),
			"duration_ms": time.Since(start).Milliseconds(),
		})

		entry := domain.AuditLog{
			Actor:      actor,
			Action:     domain.AuditActionHTTPRequest,
			Resource:   "api",
			ResourceID: path,
			Details:    string(details),
			IP:         ip,
			UserAgent:  userAgent,
		}

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if writeErr := writer.WriteAudit(ctx, entry); writeErr != nil {
				slog.Error("failed to write audit log", "error", writeErr)
			}
		}()

		return err
	}
}
