package store

import (
	"context"
	"math"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/arturoeanton/scout/internal/domain"
	"github.com/arturoeanton/scout/internal/port"
	"github.com/arturoeanton/scout/internal/rag"
)

const maxMemoryAuditLogs = 1000

// MemoryStore is an in-process DocumentStore and audit log for local runs and tests.
type MemoryStore struct {
	mu        sync.RWMutex
	docs      []domain.Document
	dimension int
	nextID    int
	now       func() time.Time

	audit []domain.AuditLog
}

var _ port.DocumentStore = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store. dimension 0 accepts the length of the first insert.
func NewMemoryStore(dimension int) *MemoryStore {
	return &MemoryStore{dimension: dimension, now: time.Now}
}

// Insert stores a copy of doc.
func (m *MemoryStore) Insert(_ context.Context, doc *domain.Document) (*domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.dimension == 0 {
		m.dimension = len(doc.Embedding)
	}
	if len(doc.Embedding) != m.dimension {
		return nil, &port.DimensionMismatchError{Left: m.dimension, Right: len(doc.Embedding)}
	}

	m.nextID++
	out := *doc
	out.ID = strconv.Itoa(m.nextID)
	out.CreatedAt = m.now()
	out.Metadata = doc.Metadata.Clone()
	out.Embedding = append([]float32(nil), doc.Embedding...)
	m.docs = append(m.docs, out)
	return &out, nil
}

// Search scores every document and returns those at or above the threshold, best first.
func (m *MemoryStore) Search(_ context.Context, q domain.SearchQuery) ([]domain.SimilarityMatch, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	matches := []domain.SimilarityMatch{}
	for _, d := range m.docs {
		sim, err := rag.CosineSimilarity(q.Embedding, d.Embedding)
		if err != nil {
			return nil, err
		}
		if math.IsNaN(sim) || sim < q.Threshold {
			continue
		}
		matches = append(matches, domain.SimilarityMatch{
			ID:         d.ID,
			Content:    d.Content,
			Metadata:   d.Metadata.Clone(),
			Similarity: sim,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})
	if q.Count >= 0 && len(matches) > q.Count {
		matches = matches[:q.Count]
	}
	return matches, nil
}

// Delete removes one document by ID.
func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, d := range m.docs {
		if d.ID == id {
			m.docs = append(m.docs[:i], m.docs[i+1:]...)
			return nil
		}
	}
	return port.ErrDocumentNotFound
}

// List returns documents newest first with the total count.
func (m *MemoryStore) List(_ context.Context, limit, offset int) ([]domain.Document, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	total := len(m.docs)
	docs := []domain.Document{}
	for i := total - 1 - offset; i >= 0 && len(docs) < limit; i-- {
		d := m.docs[i]
		d.Metadata = d.Metadata.Clone()
		docs = append(docs, d)
	}
	return docs, total, nil
}

// WriteAudit implements port.AuditWriter, keeping the most recent entries.
func (m *MemoryStore) WriteAudit(_ context.Context, entry domain.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = m.now()
	}
	entry.ID = strconv.Itoa(len(m.audit) + 1)
	m.audit = append(m.audit, entry)
	if len(m.audit) > maxMemoryAuditLogs {
		m.audit = m.audit[len(m.audit)-maxMemoryAuditLogs:]
	}
	return nil
}

// ListAuditLogs returns recent audit logs, newest first, optionally filtered by action.
func (m *MemoryStore) ListAuditLogs(_ context.Context, limit int, action string) ([]domain.AuditLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	logs := []domain.AuditLog{}
	for i := len(m.audit) - 1; i >= 0; i-- {
		if action != "" && m.audit[i].Action != action {
			continue
		}
		logs = append(logs, m.audit[i])
		if limit > 0 && len(logs) == limit {
			break
		}
	}
	return logs, nil
}
