package services

import (
	"context"

	"github.com/SscSPs/erp_ledger/internal/core/domain"
	"github.com/SscSPs/erp_ledger/internal/dto"
)

// PostingWriterSvc defines how ledger lines come into existence. It is the only
// writer of ledger entries.
type PostingWriterSvc interface {
	// PostEntries validates and atomically writes a balanced group of lines.
	PostEntries(ctx context.Context, req dto.PostEntriesRequest, actorID string) (*domain.EntryGroup, error)

	// PostJournalEntry writes one debit line and one credit line for the same amount.
	PostJournalEntry(ctx context.Context, req dto.JournalEntryRequest, actorID string) (*domain.EntryGroup, error)

	// PrepareEntries runs every posting validation and returns the numbered lines
	// without writing them, so another store operation can persist them inside
	// its own transaction.
	PrepareEntries(ctx context.Context, req dto.PostEntriesRequest, actorID string) ([]domain.LedgerEntry, error)

	// ReverseEntries posts a mirror group for every group linked to the reference,
	// dated today in the current open period.
	ReverseEntries(ctx context.Context, req dto.ReverseEntriesRequest, actorID string) ([]domain.EntryGroup, error)
}

// PostingReaderSvc defines read operations over posted groups
type PostingReaderSvc interface {
	GetEntryGroup(ctx context.Context, entryNumber string) (*domain.EntryGroup, error)
	ListEntries(ctx context.Context, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error)
}

// PostingSvcFacade combines all posting service interfaces
type PostingSvcFacade interface {
	PostingWriterSvc
	PostingReaderSvc
}
