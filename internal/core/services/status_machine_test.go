package services

import (
	"testing"

	"github.com/SscSPs/erp_ledger/internal/apperrors"
	"github.com/SscSPs/erp_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		kind     domain.DocumentKind
		from, to domain.DocumentStatus
		want     bool
	}{
		{domain.KindInvoice, domain.StatusDraft, domain.StatusSent, true},
		{domain.KindInvoice, domain.StatusDraft, domain.StatusPaid, false},
		{domain.KindInvoice, domain.StatusSent, domain.StatusViewed, true},
		{domain.KindInvoice, domain.StatusSent, domain.StatusPartial, false},
		{domain.KindInvoice, domain.StatusViewed, domain.StatusOverdue, true},
		{domain.KindInvoice, domain.StatusOverdue, domain.StatusPaid, true},
		{domain.KindInvoice, domain.StatusOverdue, domain.StatusSent, false},
		{domain.KindInvoice, domain.StatusDraft, domain.StatusVoid, true},
		{domain.KindInvoice, domain.StatusPartial, domain.StatusVoid, true},
		{domain.KindInvoice, domain.StatusPaid, domain.StatusVoid, false},
		{domain.KindInvoice, domain.StatusVoid, domain.StatusDraft, false},
		{domain.KindBill, domain.StatusDraft, domain.StatusPending, true},
		{domain.KindBill, domain.StatusDraft, domain.StatusSent, false},
		{domain.KindBill, domain.StatusPending, domain.StatusOverdue, true},
		{domain.KindBill, domain.StatusPending, domain.StatusViewed, false},
		{domain.KindBill, domain.StatusPartial, domain.StatusPaid, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind)+" "+string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, canTransition(tt.kind, tt.from, tt.to))
		})
	}
}

func TestCheckTransition_AmountGuards(t *testing.T) {
	total := decimal.NewFromInt(1080)
	doc := func(status domain.DocumentStatus, paid string) domain.Document {
		p := decimal.RequireFromString(paid)
		return domain.Document{
			Kind:        domain.KindInvoice,
			Number:      "INV-2026-000001",
			Status:      status,
			TotalAmount: total,
			AmountPaid:  p,
			AmountDue:   total.Sub(p),
		}
	}

	tests := []struct {
		name  string
		doc   domain.Document
		to    domain.DocumentStatus
		errIs error
	}{
		{"paid with balance due", doc(domain.StatusPartial, "500"), domain.StatusPaid, apperrors.ErrValidation},
		{"paid when settled", doc(domain.StatusPartial, "1080"), domain.StatusPaid, nil},
		{"partial with nothing paid", doc(domain.StatusViewed, "0"), domain.StatusPartial, apperrors.ErrValidation},
		{"partial with some paid", doc(domain.StatusOverdue, "200"), domain.StatusPartial, nil},
		{"not in table", doc(domain.StatusSent, "0"), domain.StatusPaid, apperrors.ErrInvalidTransition},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkTransition(tt.doc, tt.to)
			if tt.errIs == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.errIs)
		})
	}
}

func TestAcceptsPayment(t *testing.T) {
	assert.True(t, acceptsPayment(domain.StatusDraft))
	assert.False(t, acceptsPayment(domain.StatusVoid))
	assert.True(t, acceptsPayment(domain.StatusPaid), "overpayment reports a paid document")
	assert.True(t, acceptsPayment(domain.StatusSent))
	assert.True(t, acceptsPayment(domain.StatusOverdue))
	assert.True(t, acceptsPayment(domain.StatusPending))
}
