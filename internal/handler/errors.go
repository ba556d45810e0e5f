package handler

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"github.com/arturoeanton/scout/internal/port"
)

// providerNames are the user-facing names of the provider behind each service.
var providerNames = map[string]string{
	port.ServiceEmbedding:     "embedding",
	port.ServiceChat:          "chat model",
	port.ServiceTranscription: "OpenAI",
	port.ServiceSpeech:        "Eleven Labs",
}

// respondError maps a service error onto a status code and JSON body.
// fallback is the message used for unexpected failures.
func respondError(c fiber.Ctx, err error, fallback string) error {
	var (
		ve *port.ValidationError
		pe *port.ProviderError
	)

	switch {
	case errors.As(err, &ve):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": ve.Message})

	case errors.Is(err, port.ErrDocumentNotFound), errors.Is(err, port.ErrJobNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})

	case errors.Is(err, port.ErrUnsupportedMedia):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})

	case errors.As(err, &pe) && pe.Kind == port.KindRateLimit:
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"error": "Rate limit exceeded. Please try again later.",
		})

	case errors.As(err, &pe) && pe.Kind == port.KindAuth:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Invalid " + providerNames[pe.Service] + " API key",
		})
	}

	slog.Error(fallback, "path", c.Path(), "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error":   fallback,
		"details": err.Error(),
	})
}
