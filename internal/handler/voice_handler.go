package handler

import (
	"errors"
	"io"

	"github.com/gofiber/fiber/v3"

	"github.com/arturoeanton/scout/internal/port"
	"github.com/arturoeanton/scout/internal/service"
)

// VoiceHandler serves speech-to-text and text-to-speech.
type VoiceHandler struct {
	voice *service.VoiceService
}

// NewVoiceHandler creates a new voice handler.
func NewVoiceHandler(voice *service.VoiceService) *VoiceHandler {
	return &VoiceHandler{voice: voice}
}

// Register sets up voice routes.
func (h *VoiceHandler) Register(router fiber.Router) {
	router.Post("/transcribe", h.Transcribe)
	router.Post("/tts", h.Speak)
}

// Transcribe converts the multipart "audio" recording into text.
func (h *VoiceHandler) Transcribe(c fiber.Ctx) error {
	fh, err := c.FormFile("audio")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "No audio file provided"})
	}
	if fh.Size > service.MaxAudioBytes {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "File size exceeds 25MB limit"})
	}

	f, err := fh.Open()
	if err != nil {
		return respondError(c, err, "Failed to transcribe audio")
	}
	defer f.Close()
	audio, err := io.ReadAll(io.LimitReader(f, service.MaxAudioBytes+1))
	if err != nil {
		return respondError(c, err, "Failed to transcribe audio")
	}

	text, err := h.voice.Transcribe(c.Context(), fh.Filename, audio)
	if errors.Is(err, port.ErrUnsupportedMedia) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid audio format. Supported formats: mp3, mp4, mpeg, mpga, m4a, wav, webm",
		})
	}
	if err != nil {
		return respondError(c, err, "Failed to transcribe audio")
	}

	return c.JSON(fiber.Map{
		"text":    text,
		"success": true,
	})
}

// Speak renders text as MPEG audio. A missing speech key answers 200 with available=false.
func (h *VoiceHandler) Speak(c fiber.Ctx) error {
	if !h.voice.SpeechEnabled() {
		return c.JSON(fiber.Map{"error": "TTS is not configured", "available": false})
	}

	var body struct {
		Text    string `json:"text"`
		VoiceID string `json:"voiceId"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Text is required"})
	}

	audio, err := h.voice.Synthesize(c.Context(), body.Text, body.VoiceID)
	if err != nil {
		return respondError(c, err, "Failed to generate speech")
	}

	c.Set(fiber.HeaderContentType, "audio/mpeg")
	return c.Send(audio)
}
