package services

import (
	"fmt"

	"github.com/SscSPs/erp_ledger/internal/apperrors"
	"github.com/SscSPs/erp_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// documentTransitions is the manual transition table for each document kind.
// VOID is added for every non-terminal state by canTransition.
var documentTransitions = map[domain.DocumentKind]map[domain.DocumentStatus][]domain.DocumentStatus{
	domain.KindInvoice: {
		domain.StatusDraft:   {domain.StatusSent},
		domain.StatusSent:    {domain.StatusViewed, domain.StatusOverdue},
		domain.StatusViewed:  {domain.StatusPartial, domain.StatusOverdue},
		domain.StatusPartial: {domain.StatusPaid, domain.StatusOverdue},
		domain.StatusOverdue: {domain.StatusPartial, domain.StatusPaid},
	},
	domain.KindBill: {
		domain.StatusDraft:   {domain.StatusPending},
		domain.StatusPending: {domain.StatusPartial, domain.StatusOverdue},
		domain.StatusPartial: {domain.StatusPaid, domain.StatusOverdue},
		domain.StatusOverdue: {domain.StatusPartial, domain.StatusPaid},
	},
}

func canTransition(kind domain.DocumentKind, from, to domain.DocumentStatus) bool {
	if from.IsTerminal() {
		return false
	}
	if to == domain.StatusVoid {
		return true
	}
	for _, next := range documentTransitions[kind][from] {
		if next == to {
			return true
		}
	}
	return false
}

// checkTransition validates a manual status change of doc to the target status.
// PAID and PARTIAL must agree with the amounts already settled.
func checkTransition(doc domain.Document, to domain.DocumentStatus) error {
	if !canTransition(doc.Kind, doc.Status, to) {
		return fmt.Errorf("%w: %s %s cannot move from %s to %s",
			apperrors.ErrInvalidTransition, doc.Kind.Label(), doc.Number, doc.Status, to)
	}
	switch to {
	case domain.StatusPaid:
		if !doc.AmountDue.IsZero() {
			return fmt.Errorf("%w: %s %s still has %s due",
				apperrors.ErrValidation, doc.Kind.Label(), doc.Number, doc.AmountDue.StringFixed(2))
		}
	case domain.StatusPartial:
		if !doc.AmountPaid.GreaterThan(decimal.Zero) || !doc.AmountPaid.LessThan(doc.TotalAmount) {
			return fmt.Errorf("%w: %s %s is not partially paid",
				apperrors.ErrValidation, doc.Kind.Label(), doc.Number)
		}
	}
	return nil
}

// overdueSources lists the statuses MarkOverdue moves to OVERDUE.
func overdueSources(kind domain.DocumentKind) []domain.DocumentStatus {
	if kind == domain.KindBill {
		return []domain.DocumentStatus{domain.StatusPending, domain.StatusPartial}
	}
	return []domain.DocumentStatus{domain.StatusSent, domain.StatusViewed, domain.StatusPartial}
}

// acceptsPayment reports whether cash may be applied to a document in status s.
// Drafts are already recognised on the ledger, so only VOID refuses cash. A
// PAID document has nothing due and fails the overpayment check instead.
func acceptsPayment(s domain.DocumentStatus) bool {
	return s != domain.StatusVoid
}
