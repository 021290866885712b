package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/erp_ledger/internal/core/domain"
)

// DocumentReader defines read operations for invoices and bills.
// Every method filters soft-deleted rows unless the scope says otherwise.
type DocumentReader interface {
	// FindDocumentByID retrieves a document with its line items.
	FindDocumentByID(ctx context.Context, kind domain.DocumentKind, documentID string, scope domain.DeletedScope) (*domain.Document, error)

	// ListDocuments retrieves a page of documents, newest first, and a token for the next page.
	// Line items are not loaded.
	ListDocuments(ctx context.Context, filter domain.DocumentFilter) ([]domain.Document, *string, error)

	// ListOutstandingDocuments returns every live, non-void, non-paid document
	// with a positive amount due, ordered by due date.
	ListOutstandingDocuments(ctx context.Context, kind domain.DocumentKind) ([]domain.Document, error)
}

// DocumentWriter defines write operations for invoices and bills.
type DocumentWriter interface {
	// SaveDocument inserts a document, its line items and the ledger lines
	// recognising it in one transaction. entries may be empty.
	SaveDocument(ctx context.Context, doc domain.Document, entries []domain.LedgerEntry) error

	// UpdateDocument writes the header (and the line items when replaceLines is
	// set) only if the stored version equals doc.Version and the row is live.
	// The stored version is incremented. A stale version yields ErrConcurrentModification.
	// Any entries are posted in the same transaction.
	UpdateDocument(ctx context.Context, doc domain.Document, replaceLines bool, entries []domain.LedgerEntry) error

	// SoftDeleteDocument stamps deleted_at. Deleting an already-deleted row is a no-op.
	SoftDeleteDocument(ctx context.Context, kind domain.DocumentKind, documentID string, at time.Time, actorID string) error

	// RestoreDocument clears deleted_at. Restoring a live row is a no-op.
	RestoreDocument(ctx context.Context, kind domain.DocumentKind, documentID string, actorID string) error
}

// DocumentRepositoryFacade combines all document repository interfaces.
type DocumentRepositoryFacade interface {
	DocumentReader
	DocumentWriter
}
