// Package rag holds the pure retrieval primitives: text chunking, cosine
// similarity, metadata filtering and context formatting.
package rag

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// DefaultMaxTokens keeps chunks under the 8191-token input limit of ada-002 class models.
const DefaultMaxTokens = 8000

// charsPerToken approximates tokenization without a tokenizer dependency.
const charsPerToken = 4

var (
	paragraphBreak   = regexp.MustCompile(`\n\n+`)
	sentenceBoundary = regexp.MustCompile(`[.!?]+\s+`)
)

// Split breaks text into chunks of at most maxTokens*4 characters, preferring
// paragraph boundaries and falling back to sentence boundaries for oversized
// paragraphs. A single sentence longer than the limit is emitted unsplit.
func Split(text string, maxTokens int) []string {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	maxChars := maxTokens * charsPerToken

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}
	if charLen(trimmed) <= maxChars {
		return []string{trimmed}
	}

	b := &chunkBuffer{maxChars: maxChars}
	for _, paragraph := range paragraphBreak.Split(text, -1) {
		if strings.TrimSpace(paragraph) == "" {
			continue
		}
		if charLen(paragraph) > maxChars {
			b.flush()
			for _, sentence := range splitSentences(paragraph) {
				b.add(sentence, " ")
			}
			continue
		}
		b.add(paragraph, "\n\n")
	}
	b.flush()
	return b.chunks
}

type chunkBuffer struct {
	maxChars int
	current  strings.Builder
	size     int
	chunks   []string
}

// add appends piece with sep, flushing first when the result would exceed the limit.
func (b *chunkBuffer) add(piece, sep string) {
	n := charLen(piece)
	if b.size > 0 && b.size+charLen(sep)+n > b.maxChars {
		b.flush()
	}
	if b.size > 0 {
		b.current.WriteString(sep)
		b.size += charLen(sep)
	}
	b.current.WriteString(piece)
	b.size += n
}

func (b *chunkBuffer) flush() {
	if chunk := strings.TrimSpace(b.current.String()); chunk != "" {
		b.chunks = append(b.chunks, chunk)
	}
	b.current.Reset()
	b.size = 0
}

// splitSentences cuts after runs of . ! ? that are followed by whitespace.
// Punctuation stays with its sentence; the whitespace is dropped.
func splitSentences(paragraph string) []string {
	var sentences []string
	start := 0
	for _, loc := range sentenceBoundary.FindAllStringIndex(paragraph, -1) {
		end := loc[0] + len(strings.TrimRight(paragraph[loc[0]:loc[1]], " \t\r\n\f\v"))
		if s := strings.TrimSpace(paragraph[start:end]); s != "" {
			sentences = append(sentences, s)
		}
		start = loc[1]
	}
	if s := strings.TrimSpace(paragraph[start:]); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

func charLen(s string) int { return utf8.RuneCountInString(s) }
