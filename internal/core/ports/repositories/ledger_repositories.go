package repositories

import (
	"context"

	"github.com/SscSPs/erp_ledger/internal/core/domain"
)

// LedgerReader defines read operations for ledger lines.
type LedgerReader interface {
	// FindEntriesByEntryNumber returns every line of one entry group.
	FindEntriesByEntryNumber(ctx context.Context, entryNumber string) ([]domain.LedgerEntry, error)

	// FindEntriesByReference returns every line linked to a business document.
	FindEntriesByReference(ctx context.Context, refType domain.ReferenceType, refID string) ([]domain.LedgerEntry, error)

	// ListEntries retrieves a page of lines, newest first, and a token for the next page.
	ListEntries(ctx context.Context, filter domain.EntryFilter) ([]domain.LedgerEntry, *string, error)
}

// LedgerWriter defines write operations for ledger lines.
type LedgerWriter interface {
	// SaveEntryGroup writes all lines of a group atomically. Inside the same
	// transaction it re-checks that the fiscal period is OPEN (ErrPeriodLocked)
	// and that every account exists and is active (ErrValidation).
	SaveEntryGroup(ctx context.Context, entries []domain.LedgerEntry) error
}

// LedgerRepositoryFacade combines all ledger repository interfaces.
type LedgerRepositoryFacade interface {
	LedgerReader
	LedgerWriter
}

// SequenceRepository hands out gap-tolerant, strictly increasing counters used
// for human-readable numbers such as JE-2025-000001.
type SequenceRepository interface {
	NextSequenceValue(ctx context.Context, prefix string, year int) (int64, error)
}
