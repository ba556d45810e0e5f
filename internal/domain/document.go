package domain

import "time"

// Metadata is an open string-keyed map attached to a stored document.
// Callers attach arbitrary tags (chunk_index, type, date, speaker, ...).
type Metadata map[string]any

// Clone returns a shallow copy so chunk-level keys never leak into the caller's map.
func (m Metadata) Clone() Metadata {
	out := make(Metadata, len(m)+3)
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Document is a stored unit of interview knowledge.
type Document struct {
	ID        string    `json:"id"         db:"id"`
	Content   string    `json:"content"    db:"content"`
	Embedding []float32 `json:"-"          db:"embedding"`
	Metadata  Metadata  `json:"metadata"   db:"metadata"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// SimilarityMatch is a ranked search result.
type SimilarityMatch struct {
	ID         string   `json:"id"`
	Content    string   `json:"content"`
	Metadata   Metadata `json:"metadata"`
	Similarity float64  `json:"similarity"`
}

// SearchQuery is the request sent to a document store's similarity search.
type SearchQuery struct {
	Embedding []float32
	Threshold float64
	Count     int
}

// Metadata keys written on chunked documents.
const (
	MetaChunkIndex  = "chunk_index"
	MetaTotalChunks = "total_chunks"
	MetaIsChunked   = "is_chunked"
)
