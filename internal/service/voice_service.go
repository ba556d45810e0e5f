package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/arturoeanton/scout/internal/port"
)

// MaxAudioBytes is the largest recording accepted for transcription.
const MaxAudioBytes = 25 << 20

// allowedAudio lists the recording formats the transcription backend accepts.
var allowedAudio = []string{
	"audio/mpeg",
	"audio/mp3",
	"audio/mp4",
	"audio/x-m4a",
	"video/mp4",
	"audio/wav",
	"audio/x-wav",
	"audio/webm",
	"video/webm",
}

// VoiceService validates recordings for transcription and turns replies into speech.
type VoiceService struct {
	transcriber port.Transcriber
	speech      port.SpeechSynthesizer
}

// NewVoiceService creates a voice service. Either collaborator may be nil when not configured.
func NewVoiceService(transcriber port.Transcriber, speech port.SpeechSynthesizer) *VoiceService {
	return &VoiceService{transcriber: transcriber, speech: speech}
}

// SpeechEnabled reports whether text-to-speech is configured.
func (s *VoiceService) SpeechEnabled() bool {
	return s.speech != nil && s.speech.Enabled()
}

// Transcribe checks size and sniffed format, then converts the recording into text.
func (s *VoiceService) Transcribe(ctx context.Context, filename string, audio []byte) (string, error) {
	if len(audio) == 0 {
		return "", port.NewValidationError("audio", "No audio file provided")
	}
	if len(audio) > MaxAudioBytes {
		return "", port.NewValidationError("audio", "File too large. Maximum size is 25MB.")
	}

	mt := mimetype.Detect(audio)
	if !isAllowedAudio(mt) {
		slog.Warn("rejected audio upload", "filename", filename, "detected", mt.String())
		return "", fmt.Errorf("%w: %s", port.ErrUnsupportedMedia, mt.String())
	}
	if s.transcriber == nil {
		return "", port.NewProviderError(port.ServiceTranscription, port.KindAuth, fmt.Errorf("no transcription key configured"))
	}

	if filename == "" {
		filename = "recording" + mt.Extension()
	}
	text, err := s.transcriber.Transcribe(ctx, filename, audio)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// Synthesize converts text into MPEG audio.
func (s *VoiceService) Synthesize(ctx context.Context, text, voiceID string) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, port.NewValidationError("text", "Text is required")
	}
	if !s.SpeechEnabled() {
		return nil, port.ErrSpeechDisabled
	}
	return s.speech.Synthesize(ctx, text, voiceID)
}

func isAllowedAudio(mt *mimetype.MIME) bool {
	for m := mt; m != nil; m = m.Parent() {
		for _, allowed := range allowedAudio {
			if m.Is(allowed) {
				return true
			}
		}
	}
	return false
}
