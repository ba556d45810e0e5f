// Package loader turns uploaded files into plain text ready for chunking.
package loader

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"

	"github.com/arturoeanton/scout/internal/port"
)

// converter extracts text from one family of documents.
type converter struct {
	name       string
	mimeTypes  []string
	extensions []string
	extract    func(data []byte) (string, error)
}

var converters = []converter{
	{name: "pdf", mimeTypes: []string{"application/pdf"}, extensions: []string{".pdf"}, extract: extractPDF},
	{name: "html", mimeTypes: []string{"text/html"}, extensions: []string{".html", ".htm"}, extract: extractHTML},
	{name: "text", mimeTypes: []string{"text/plain"}, extensions: []string{".txt", ".md", ".markdown"}, extract: extractText},
}

// Extract returns the text content of an uploaded file. The format is sniffed from the
// content, with the file extension as a tie breaker for plain text formats.
func Extract(filename string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", port.NewValidationError("file", "file is empty")
	}

	mt := mimetype.Detect(data)
	ext := strings.ToLower(filepath.Ext(filename))

	for _, c := range converters {
		if !accepts(mt, ext, c) {
			continue
		}
		text, err := c.extract(data)
		if err != nil {
			return "", fmt.Errorf("extract %s: %w", c.name, err)
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return "", port.NewValidationError("file", "no text could be extracted")
		}
		return text, nil
	}
	return "", fmt.Errorf("%w: %s", port.ErrUnsupportedMedia, mt.String())
}

func accepts(mt *mimetype.MIME, ext string, c converter) bool {
	if slices.ContainsFunc(c.mimeTypes, mt.Is) {
		return true
	}
	// Markdown and similar sniff as text/plain; only trust the extension for text content.
	return mt.Is("text/plain") && slices.Contains(c.extensions, ext)
}

func extractPDF(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	reader, err := r.GetPlainText()
	if err != nil {
		return "", err
	}
	out, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func extractHTML(data []byte) (string, error) {
	return htmltomarkdown.ConvertString(string(data))
}

func extractText(data []byte) (string, error) {
	return string(data), nil
}
