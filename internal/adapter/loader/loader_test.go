package loader

import (
	"errors"
	"strings"
	"testing"

	"github.com/arturoeanton/scout/internal/port"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		data     string
		contains string
	}{
		{"plain text", "notes.txt", "  We deploy with Helm.\n", "We deploy with Helm."},
		{"markdown", "notes.md", "# Onboarding\n\nRun make setup.", "Run make setup."},
		{"html", "page.html", "<html><body><h1>Runbook</h1><p>Restart the <b>worker</b>.</p></body></html>", "# Runbook"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Extract(tt.filename, []byte(tt.data))
			if err != nil {
				t.Fatalf("Extract() error = %v", err)
			}
			if !strings.Contains(got, tt.contains) {
				t.Errorf("Extract() = %q, want it to contain %q", got, tt.contains)
			}
			if got != strings.TrimSpace(got) {
				t.Error("output should be trimmed")
			}
		})
	}
}

func TestExtract_HTMLKeepsEmphasis(t *testing.T) {
	got, err := Extract("page.html", []byte("<html><body><p>Restart the <b>worker</b>.</p></body></html>"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "**worker**") {
		t.Errorf("Extract() = %q", got)
	}
}

func TestExtract_Unsupported(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	if _, err := Extract("image.png", png); !errors.Is(err, port.ErrUnsupportedMedia) {
		t.Errorf("expected ErrUnsupportedMedia, got %v", err)
	}
}

func TestExtract_Empty(t *testing.T) {
	var ve *port.ValidationError
	if _, err := Extract("empty.txt", nil); !errors.As(err, &ve) {
		t.Errorf("expected ValidationError, got %v", err)
	}
	if _, err := Extract("blank.txt", []byte("   \n\n ")); !errors.As(err, &ve) {
		t.Errorf("expected ValidationError for blank text, got %v", err)
	}
}
