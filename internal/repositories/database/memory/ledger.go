package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/erp_ledger/internal/apperrors"
	"github.com/SscSPs/erp_ledger/internal/core/domain"
)

// checkPostableLocked re-validates a group against current state. Callers hold s.mu.
func (s *Store) checkPostableLocked(entries []domain.LedgerEntry) error {
	if len(entries) == 0 {
		return fmt.Errorf("%w: empty entry group", apperrors.ErrValidation)
	}
	periodID := entries[0].FiscalPeriodID
	period, ok := s.periods[periodID]
	if !ok {
		return apperrors.NewNotFoundError("fiscal period", periodID)
	}
	if !period.AcceptsPostings() {
		return fmt.Errorf("%w: period %s is %s", apperrors.ErrPeriodLocked, period.Name, period.Status)
	}
	for _, e := range entries {
		if e.FiscalPeriodID != periodID {
			return fmt.Errorf("%w: all lines of a group must share one fiscal period", apperrors.ErrValidation)
		}
		acc, ok := s.accounts[e.AccountID]
		if !ok {
			return fmt.Errorf("%w: account %s does not exist", apperrors.ErrValidation, e.AccountID)
		}
		if !acc.IsActive {
			return fmt.Errorf("%w: account %s is inactive", apperrors.ErrValidation, acc.AccountNumber)
		}
	}
	return nil
}

func (s *Store) SaveEntryGroup(_ context.Context, entries []domain.LedgerEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkPostableLocked(entries); err != nil {
		return err
	}
	s.entries = append(s.entries, entries...)
	return nil
}

func (s *Store) FindEntriesByEntryNumber(_ context.Context, entryNumber string) ([]domain.LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.LedgerEntry, 0)
	for _, e := range s.entries {
		if e.EntryNumber == entryNumber {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *Store) FindEntriesByReference(_ context.Context, refType domain.ReferenceType, refID string) ([]domain.LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.LedgerEntry, 0)
	for _, e := range s.entries {
		if e.ReferenceType == refType && e.ReferenceID == refID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *Store) ListEntries(_ context.Context, filter domain.EntryFilter) ([]domain.LedgerEntry, *string, error) {
	s.mu.RLock()
	rows := make([]domain.LedgerEntry, 0)
	for _, e := range s.entries {
		if filter.AccountID != "" && e.AccountID != filter.AccountID {
			continue
		}
		if filter.FiscalPeriodID != "" && e.FiscalPeriodID != filter.FiscalPeriodID {
			continue
		}
		if filter.ReferenceType != domain.RefNone && e.ReferenceType != filter.ReferenceType {
			continue
		}
		if filter.ReferenceID != "" && e.ReferenceID != filter.ReferenceID {
			continue
		}
		rows = append(rows, e)
	}
	s.mu.RUnlock()

	key := func(e domain.LedgerEntry) (time.Time, string) { return e.CreatedAt, e.EntryID }
	sortNewestFirst(rows, key)
	return page(rows, filter.Limit, filter.NextToken, key)
}

func (s *Store) NextSequenceValue(_ context.Context, prefix string, year int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := fmt.Sprintf("%s-%d", prefix, year)
	s.sequences[key]++
	return s.sequences[key], nil
}
