package service

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/arturoeanton/scout/internal/port"
)

type stubTranscriber struct {
	text     string
	filename string
}

func (s *stubTranscriber) Transcribe(_ context.Context, filename string, _ []byte) (string, error) {
	s.filename = filename
	return s.text, nil
}

type stubSpeech struct{ enabled bool }

func (s stubSpeech) Enabled() bool { return s.enabled }

func (s stubSpeech) Synthesize(context.Context, string, string) ([]byte, error) {
	return []byte("ID3audio"), nil
}

// wavHeader is a minimal RIFF/WAVE header recognised by content sniffing.
func wavHeader() []byte {
	b := []byte("RIFF\x24\x00\x00\x00WAVEfmt \x10\x00\x00\x00\x01\x00\x01\x00\x44\xac\x00\x00\x88\x58\x01\x00\x02\x00\x10\x00data\x00\x00\x00\x00")
	return b
}

func TestTranscribe_AcceptsWav(t *testing.T) {
	tr := &stubTranscriber{text: "  we use make  "}
	svc := NewVoiceService(tr, nil)

	text, err := svc.Transcribe(context.Background(), "", wavHeader())
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}
	if text != "we use make" {
		t.Errorf("text = %q", text)
	}
	if tr.filename != "recording.wav" {
		t.Errorf("filename = %q", tr.filename)
	}
}

func TestTranscribe_Validation(t *testing.T) {
	svc := NewVoiceService(&stubTranscriber{}, nil)

	var ve *port.ValidationError
	if _, err := svc.Transcribe(context.Background(), "a.wav", nil); !errors.As(err, &ve) {
		t.Errorf("empty audio: expected ValidationError, got %v", err)
	}

	big := append(wavHeader(), bytes.Repeat([]byte{0}, MaxAudioBytes)...)
	if _, err := svc.Transcribe(context.Background(), "a.wav", big); !errors.As(err, &ve) {
		t.Errorf("oversized audio: expected ValidationError, got %v", err)
	}

	if _, err := svc.Transcribe(context.Background(), "notes.txt", []byte("just some text")); !errors.Is(err, port.ErrUnsupportedMedia) {
		t.Errorf("text upload: expected ErrUnsupportedMedia, got %v", err)
	}
}

func TestSynthesize(t *testing.T) {
	disabled := NewVoiceService(nil, stubSpeech{enabled: false})
	if _, err := disabled.Synthesize(context.Background(), "hello", ""); !errors.Is(err, port.ErrSpeechDisabled) {
		t.Errorf("expected ErrSpeechDisabled, got %v", err)
	}

	enabled := NewVoiceService(nil, stubSpeech{enabled: true})
	var ve *port.ValidationError
	if _, err := enabled.Synthesize(context.Background(), " ", ""); !errors.As(err, &ve) {
		t.Errorf("expected ValidationError, got %v", err)
	}
	audio, err := enabled.Synthesize(context.Background(), "hello", "")
	if err != nil || len(audio) == 0 {
		t.Errorf("Synthesize() = %d bytes, %v", len(audio), err)
	}
}
