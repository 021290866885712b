// Package memory is an in-process Ledger Store. It honours the same
// transactional contract as the PostgreSQL store: every write validates and
// applies under one lock, documents carry optimistic versions, and every read
// of a soft-deletable row goes through visible.
package memory

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/SscSPs/erp_ledger/internal/apperrors"
	"github.com/SscSPs/erp_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/erp_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/erp_ledger/internal/utils/pagination"
)

type Store struct {
	mu sync.RWMutex

	accounts       map[string]*domain.Account
	accountNumbers map[string]string // number -> id

	periods map[string]*domain.FiscalPeriod

	// ledger lines in insertion order
	entries []domain.LedgerEntry

	documents map[domain.DocumentKind]map[string]*domain.Document
	payments  map[string]*domain.Payment

	sequences map[string]int64
}

func New() *Store {
	return &Store{
		accounts:       make(map[string]*domain.Account),
		accountNumbers: make(map[string]string),
		periods:        make(map[string]*domain.FiscalPeriod),
		entries:        make([]domain.LedgerEntry, 0),
		documents: map[domain.DocumentKind]map[string]*domain.Document{
			domain.KindInvoice: make(map[string]*domain.Document),
			domain.KindBill:    make(map[string]*domain.Document),
		},
		payments:  make(map[string]*domain.Payment),
		sequences: make(map[string]int64),
	}
}

var (
	_ portsrepo.AccountRepositoryFacade      = (*Store)(nil)
	_ portsrepo.FiscalPeriodRepositoryFacade = (*Store)(nil)
	_ portsrepo.LedgerRepositoryFacade       = (*Store)(nil)
	_ portsrepo.DocumentRepositoryFacade     = (*Store)(nil)
	_ portsrepo.PaymentRepositoryFacade      = (*Store)(nil)
	_ portsrepo.SequenceRepository           = (*Store)(nil)
	_ portsrepo.ReportingRepository          = (*Store)(nil)
)

// NewRepositoryProvider wires one shared Store behind every repository port.
func NewRepositoryProvider() portsrepo.RepositoryProvider {
	s := New()
	return portsrepo.RepositoryProvider{
		AccountRepo:      s,
		FiscalPeriodRepo: s,
		LedgerRepo:       s,
		DocumentRepo:     s,
		PaymentRepo:      s,
		SequenceRepo:     s,
		ReportingRepo:    s,
	}
}

// visible is the single soft-delete predicate for every read path.
func visible(deletedAt *time.Time, scope domain.DeletedScope) bool {
	return deletedAt == nil || scope == domain.IncludeDeleted
}

// page applies newest-first keyset pagination over rows already sorted that way.
func page[T any](rows []T, limit int, nextToken *string, key func(T) (time.Time, string)) ([]T, *string, error) {
	limit = pagination.NormalizeLimit(limit)
	start := 0
	if nextToken != nil && *nextToken != "" {
		cursor, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: invalid next token: %v", apperrors.ErrValidation, err)
		}
		start = len(rows)
		for i, r := range rows {
			ts, id := key(r)
			if cursor.After(ts, id) {
				start = i
				break
			}
		}
	}

	end := start + limit
	if end >= len(rows) {
		return rows[start:], nil, nil
	}
	ts, id := key(rows[end-1])
	token := pagination.EncodeToken(ts, id)
	return rows[start:end], &token, nil
}

// sortNewestFirst orders rows by (created_at DESC, id DESC).
func sortNewestFirst[T any](rows []T, key func(T) (time.Time, string)) {
	sort.SliceStable(rows, func(i, j int) bool {
		ti, idi := key(rows[i])
		tj, idj := key(rows[j])
		if ti.Equal(tj) {
			return idi > idj
		}
		return ti.After(tj)
	})
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
