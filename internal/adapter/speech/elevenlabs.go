package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/arturoeanton/scout/internal/port"
)

const defaultBaseURL = "https://api.elevenlabs.io/v1"

// ElevenLabsConfig holds the text-to-speech settings.
type ElevenLabsConfig struct {
	APIKey          string
	VoiceID         string
	Model           string
	BaseURL         string
	Stability       float64
	SimilarityBoost float64
}

// ElevenLabs implements port.SpeechSynthesizer against the ElevenLabs REST API.
type ElevenLabs struct {
	cfg        ElevenLabsConfig
	httpClient *http.Client
}

var _ port.SpeechSynthesizer = (*ElevenLabs)(nil)

// NewElevenLabs creates a synthesizer. An empty API key yields a disabled synthesizer.
func NewElevenLabs(cfg ElevenLabsConfig) *ElevenLabs {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.VoiceID == "" {
		cfg.VoiceID = "21m00Tcm4TlvDq8ikWAM"
	}
	if cfg.Model == "" {
		cfg.Model = "eleven_monolingual_v1"
	}
	if cfg.Stability == 0 {
		cfg.Stability = 0.5
	}
	if cfg.SimilarityBoost == 0 {
		cfg.SimilarityBoost = 0.75
	}
	return &ElevenLabs{cfg: cfg, httpClient: &http.Client{Timeout: 60 * time.Second}}
}

// Enabled reports whether an API key is configured.
func (e *ElevenLabs) Enabled() bool {
	return e.cfg.APIKey != ""
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

type ttsRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

// Synthesize returns MPEG audio for text using voiceID, or the configured voice when empty.
func (e *ElevenLabs) Synthesize(ctx context.Context, text, voiceID string) ([]byte, error) {
	if voiceID == "" {
		voiceID = e.cfg.VoiceID
	}

	payload, err := json.Marshal(ttsRequest{
		Text:    text,
		ModelID: e.cfg.Model,
		VoiceSettings: voiceSettings{
			Stability:       e.cfg.Stability,
			SimilarityBoost: e.cfg.SimilarityBoost,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal tts request: %w", err)
	}

	url := e.cfg.BaseURL + "/text-to-speech/" + voiceID
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create tts request: %w", err)
	}
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", e.cfg.APIKey)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, port.NewProviderError(port.ServiceSpeech, port.KindUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, port.NewProviderError(port.ServiceSpeech, port.KindUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		slog.Error("elevenlabs request failed", "status", resp.StatusCode, "body", string(body))
		return nil, port.NewProviderError(port.ServiceSpeech, kindForStatus(resp.StatusCode),
			fmt.Errorf("elevenlabs returned %d", resp.StatusCode))
	}
	return body, nil
}

func kindForStatus(code int) port.ErrorKind {
	switch code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return port.KindAuth
	case http.StatusTooManyRequests:
		return port.KindRateLimit
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return port.KindInvalidInput
	default:
		return port.KindUnavailable
	}
}
