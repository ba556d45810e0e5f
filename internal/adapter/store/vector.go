package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/arturoeanton/scout/internal/domain"
	"github.com/arturoeanton/scout/internal/port"
)

// VectorStore is the pgvector-backed DocumentStore over interview_documents.
type VectorStore struct {
	store *PostgresStore
}

var _ port.DocumentStore = (*VectorStore)(nil)

// NewVectorStore creates a vector store backed by the given Postgres store.
func NewVectorStore(store *PostgresStore) *VectorStore {
	return &VectorStore{store: store}
}

// Insert persists a document and returns it with its generated ID and timestamp.
func (v *VectorStore) Insert(ctx context.Context, doc *domain.Document) (*domain.Document, error) {
	meta, err := json.Marshal(nonNil(doc.Metadata))
	if err != nil {
		return nil, fmt.Errorf("encode metadata: %w", err)
	}

	query := `INSERT INTO interview_documents (content, metadata, embedding)
	          VALUES ($1, $2::jsonb, $3::vector)
	          RETURNING id, created_at`

	out := *doc
	err = v.store.db.QueryRowContext(ctx, query, doc.Content, string(meta), vectorToString(doc.Embedding)).
		Scan(&out.ID, &out.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert document: %w", err)
	}
	return &out, nil
}

// Search calls match_interview_documents, which applies the threshold, ordering and limit.
func (v *VectorStore) Search(ctx context.Context, q domain.SearchQuery) ([]domain.SimilarityMatch, error) {
	query := `SELECT id, content, metadata, similarity
	          FROM match_interview_documents($1::vector, $2, $3)`

	rows, err := v.store.db.QueryContext(ctx, query, vectorToString(q.Embedding), q.Threshold, q.Count)
	if err != nil {
		return nil, fmt.Errorf("match documents: %w", err)
	}
	defer rows.Close()

	results := []domain.SimilarityMatch{}
	for rows.Next() {
		var (
			m   domain.SimilarityMatch
			raw []byte
		)
		if err := rows.Scan(&m.ID, &m.Content, &raw, &m.Similarity); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		if m.Metadata, err = decodeMetadata(raw); err != nil {
			return nil, err
		}
		results = append(results, m)
	}
	return results, rows.Err()
}

// Delete removes one document by ID.
func (v *VectorStore) Delete(ctx context.Context, id string) error {
	res, err := v.store.db.ExecContext(ctx, `DELETE FROM interview_documents WHERE id::text = $1`, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if n == 0 {
		return port.ErrDocumentNotFound
	}
	return nil
}

// List returns documents newest first with the total row count.
func (v *VectorStore) List(ctx context.Context, limit, offset int) ([]domain.Document, int, error) {
	var total int
	if err := v.store.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM interview_documents`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count documents: %w", err)
	}

	query := `SELECT id, content, metadata, created_at
	          FROM interview_documents
	          ORDER BY created_at DESC
	          LIMIT $1 OFFSET $2`

	rows, err := v.store.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	docs := []domain.Document{}
	for rows.Next() {
		var (
			d   domain.Document
			raw []byte
		)
		if err := rows.Scan(&d.ID, &d.Content, &raw, &d.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan document: %w", err)
		}
		if d.Metadata, err = decodeMetadata(raw); err != nil {
			return nil, 0, err
		}
		docs = append(docs, d)
	}
	return docs, total, rows.Err()
}

func decodeMetadata(raw []byte) (domain.Metadata, error) {
	meta := domain.Metadata{}
	if len(raw) == 0 {
		return meta, nil
	}
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	return meta, nil
}

func nonNil(m domain.Metadata) domain.Metadata {
	if m == nil {
		return domain.Metadata{}
	}
	return m
}

// vectorToString converts a float32 slice to pgvector string format: [0.1,0.2,0.3].
func vectorToString(v []float32) string {
	var b strings.Builder
	b.Grow(len(v) * 10)
	b.WriteByte('[')
	for i, val := range v {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(val), 'g', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}
