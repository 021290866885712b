package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/erp_ledger/internal/apperrors"
	"github.com/SscSPs/erp_ledger/internal/core/domain"
)

func clonePayment(p *domain.Payment) domain.Payment {
	c := *p
	c.InvoiceID = copyString(p.InvoiceID)
	c.BillID = copyString(p.BillID)
	c.BankAccountID = copyString(p.BankAccountID)
	c.DeletedAt = copyTime(p.DeletedAt)
	return c
}

// ApplyPayment validates everything before mutating anything, so a failure
// leaves the store untouched.
func (s *Store) ApplyPayment(_ context.Context, app domain.PaymentApplication) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := app.Document
	t, err := s.table(doc.Kind)
	if err != nil {
		return err
	}
	stored, ok := t[doc.DocumentID]
	if !ok || !visible(stored.DeletedAt, domain.ActiveOnly) {
		return apperrors.NewNotFoundError(doc.Kind.Label(), doc.DocumentID)
	}
	if stored.Version != doc.Version {
		return fmt.Errorf("%w: %s %s is at version %d, payment expected %d",
			apperrors.ErrConcurrentModification, doc.Kind.Label(), doc.DocumentID, stored.Version, doc.Version)
	}
	if _, exists := s.payments[app.Payment.PaymentID]; exists {
		return fmt.Errorf("%w: payment %s", apperrors.ErrDuplicate, app.Payment.PaymentID)
	}
	if err := s.checkPostableLocked(app.Entries); err != nil {
		return err
	}

	stored.AmountPaid = doc.AmountPaid
	stored.AmountDue = doc.AmountDue
	stored.Status = doc.Status
	stored.LastUpdatedAt = doc.LastUpdatedAt
	stored.LastUpdatedBy = doc.LastUpdatedBy
	stored.Version++

	p := clonePayment(&app.Payment)
	s.payments[p.PaymentID] = &p
	s.entries = append(s.entries, app.Entries...)
	return nil
}

func (s *Store) SoftDeletePayment(_ context.Context, paymentID string, at time.Time, actorID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.payments[paymentID]
	if !ok {
		return apperrors.NewNotFoundError("payment", paymentID)
	}
	if p.DeletedAt != nil {
		return nil
	}
	p.DeletedAt = &at
	p.LastUpdatedAt = at
	p.LastUpdatedBy = actorID
	return nil
}

func (s *Store) RestorePayment(_ context.Context, paymentID string, actorID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.payments[paymentID]
	if !ok {
		return apperrors.NewNotFoundError("payment", paymentID)
	}
	if p.DeletedAt == nil {
		return nil
	}
	p.DeletedAt = nil
	p.LastUpdatedAt = time.Now().UTC()
	p.LastUpdatedBy = actorID
	return nil
}

func (s *Store) FindPaymentByID(_ context.Context, paymentID string, scope domain.DeletedScope) (*domain.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.payments[paymentID]
	if !ok || !visible(p.DeletedAt, scope) {
		return nil, apperrors.NewNotFoundError("payment", paymentID)
	}
	c := clonePayment(p)
	return &c, nil
}

func (s *Store) ListPayments(_ context.Context, filter domain.PaymentFilter) ([]domain.Payment, *string, error) {
	s.mu.RLock()
	rows := make([]domain.Payment, 0)
	for _, p := range s.payments {
		if !visible(p.DeletedAt, filter.Scope) {
			continue
		}
		if filter.Direction != "" && p.Direction != filter.Direction {
			continue
		}
		if filter.InvoiceID != "" && (p.InvoiceID == nil || *p.InvoiceID != filter.InvoiceID) {
			continue
		}
		if filter.BillID != "" && (p.BillID == nil || *p.BillID != filter.BillID) {
			continue
		}
		rows = append(rows, clonePayment(p))
	}
	s.mu.RUnlock()

	key := func(p domain.Payment) (time.Time, string) { return p.CreatedAt, p.PaymentID }
	sortNewestFirst(rows, key)
	return page(rows, filter.Limit, filter.NextToken, key)
}
