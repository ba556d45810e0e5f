package port

import (
	"context"

	"github.com/arturoeanton/scout/internal/domain"
)

// DocumentStore persists documents and exposes remote similarity search.
type DocumentStore interface {
	// Insert stores doc and returns it with the store-assigned ID and CreatedAt.
	Insert(ctx context.Context, doc *domain.Document) (*domain.Document, error)

	// Search returns matches with similarity >= q.Threshold, highest first, at most q.Count.
	Search(ctx context.Context, q domain.SearchQuery) ([]domain.SimilarityMatch, error)

	// Delete removes a document by ID. Unknown IDs return ErrDocumentNotFound.
	Delete(ctx context.Context, id string) error

	// List returns documents newest first together with the total count.
	List(ctx context.Context, limit, offset int) ([]domain.Document, int, error)
}

// AuditWriter defines how audit records are persisted.
type AuditWriter interface {
	WriteAudit(ctx context.Context, entry domain.AuditLog) error
}

// AuditLogStore combines writing and reading audit records.
type AuditLogStore interface {
	AuditWriter
	ListAuditLogs(ctx context.Context, limit int, action string) ([]domain.AuditLog, error)
}
