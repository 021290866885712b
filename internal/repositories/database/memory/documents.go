package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/SscSPs/erp_ledger/internal/apperrors"
	"github.com/SscSPs/erp_ledger/internal/core/domain"
)

func cloneDocument(d *domain.Document, withLines bool) domain.Document {
	c := *d
	c.DeletedAt = copyTime(d.DeletedAt)
	c.LineItems = nil
	if withLines {
		c.LineItems = make([]domain.LineItem, len(d.LineItems))
		copy(c.LineItems, d.LineItems)
	}
	return c
}

func (s *Store) table(kind domain.DocumentKind) (map[string]*domain.Document, error) {
	t, ok := s.documents[kind]
	if !ok {
		return nil, fmt.Errorf("%w: unknown document kind %q", apperrors.ErrValidation, kind)
	}
	return t, nil
}

func (s *Store) SaveDocument(_ context.Context, doc domain.Document, entries []domain.LedgerEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.table(doc.Kind)
	if err != nil {
		return err
	}
	if _, exists := t[doc.DocumentID]; exists {
		return fmt.Errorf("%w: %s %s", apperrors.ErrDuplicate, doc.Kind.Label(), doc.DocumentID)
	}
	for _, existing := range t {
		if existing.Number == doc.Number {
			return fmt.Errorf("%w: %s number %s", apperrors.ErrDuplicate, doc.Kind.Label(), doc.Number)
		}
	}
	if len(entries) > 0 {
		if err := s.checkPostableLocked(entries); err != nil {
			return err
		}
	}
	c := cloneDocument(&doc, true)
	t[doc.DocumentID] = &c
	s.entries = append(s.entries, entries...)
	return nil
}

func (s *Store) UpdateDocument(_ context.Context, doc domain.Document, replaceLines bool, entries []domain.LedgerEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.table(doc.Kind)
	if err != nil {
		return err
	}
	stored, ok := t[doc.DocumentID]
	if !ok || !visible(stored.DeletedAt, domain.ActiveOnly) {
		return apperrors.NewNotFoundError(doc.Kind.Label(), doc.DocumentID)
	}
	if stored.Version != doc.Version {
		return fmt.Errorf("%w: %s %s is at version %d, update expected %d",
			apperrors.ErrConcurrentModification, doc.Kind.Label(), doc.DocumentID, stored.Version, doc.Version)
	}
	if len(entries) > 0 {
		if err := s.checkPostableLocked(entries); err != nil {
			return err
		}
	}

	lines := stored.LineItems
	if replaceLines {
		lines = make([]domain.LineItem, len(doc.LineItems))
		copy(lines, doc.LineItems)
	}
	updated := cloneDocument(&doc, false)
	updated.LineItems = lines
	updated.Version = stored.Version + 1
	updated.CreatedAt = stored.CreatedAt
	updated.CreatedBy = stored.CreatedBy
	t[doc.DocumentID] = &updated
	s.entries = append(s.entries, entries...)
	return nil
}

func (s *Store) SoftDeleteDocument(_ context.Context, kind domain.DocumentKind, documentID string, at time.Time, actorID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.table(kind)
	if err != nil {
		return err
	}
	stored, ok := t[documentID]
	if !ok {
		return apperrors.NewNotFoundError(kind.Label(), documentID)
	}
	if stored.DeletedAt != nil {
		return nil
	}
	stored.DeletedAt = &at
	stored.Version++
	stored.LastUpdatedAt = at
	stored.LastUpdatedBy = actorID
	return nil
}

func (s *Store) RestoreDocument(_ context.Context, kind domain.DocumentKind, documentID string, actorID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.table(kind)
	if err != nil {
		return err
	}
	stored, ok := t[documentID]
	if !ok {
		return apperrors.NewNotFoundError(kind.Label(), documentID)
	}
	if stored.DeletedAt == nil {
		return nil
	}
	stored.DeletedAt = nil
	stored.Version++
	stored.LastUpdatedAt = time.Now().UTC()
	stored.LastUpdatedBy = actorID
	return nil
}

func (s *Store) FindDocumentByID(_ context.Context, kind domain.DocumentKind, documentID string, scope domain.DeletedScope) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, err := s.table(kind)
	if err != nil {
		return nil, err
	}
	stored, ok := t[documentID]
	if !ok || !visible(stored.DeletedAt, scope) {
		return nil, apperrors.NewNotFoundError(kind.Label(), documentID)
	}
	c := cloneDocument(stored, true)
	return &c, nil
}

func (s *Store) ListDocuments(_ context.Context, filter domain.DocumentFilter) ([]domain.Document, *string, error) {
	s.mu.RLock()
	t, err := s.table(filter.Kind)
	if err != nil {
		s.mu.RUnlock()
		return nil, nil, err
	}
	rows := make([]domain.Document, 0, len(t))
	for _, d := range t {
		if !visible(d.DeletedAt, filter.Scope) {
			continue
		}
		if filter.Status != "" && d.Status != filter.Status {
			continue
		}
		if filter.CounterpartyID != "" && d.CounterpartyID != filter.CounterpartyID {
			continue
		}
		rows = append(rows, cloneDocument(d, false))
	}
	s.mu.RUnlock()

	key := func(d domain.Document) (time.Time, string) { return d.CreatedAt, d.DocumentID }
	sortNewestFirst(rows, key)
	return page(rows, filter.Limit, filter.NextToken, key)
}

func (s *Store) ListOutstandingDocuments(_ context.Context, kind domain.DocumentKind) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, err := s.table(kind)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Document, 0)
	for _, d := range t {
		if !visible(d.DeletedAt, domain.ActiveOnly) || !d.IsOutstanding() {
			continue
		}
		out = append(out, cloneDocument(d, false))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DueDate.Equal(out[j].DueDate) {
			return out[i].Number < out[j].Number
		}
		return out[i].DueDate.Before(out[j].DueDate)
	})
	return out, nil
}
