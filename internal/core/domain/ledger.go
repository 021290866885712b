package domain

import (
	"fmt"
	"time"

	"github.com/SscSPs/erp_ledger/internal/apperrors"
	"github.com/shopspring/decimal"
)

// ReferenceType links an entry group to the business event that caused it.
type ReferenceType string

const (
	RefNone     ReferenceType = ""
	RefInvoice  ReferenceType = "INVOICE"
	RefBill     ReferenceType = "BILL"
	RefPayment  ReferenceType = "PAYMENT"
	RefReversal ReferenceType = "REVERSAL"
	RefManual   ReferenceType = "MANUAL"
)

// IsValid reports whether r is empty or one of the known reference types.
func (r ReferenceType) IsValid() bool {
	switch r {
	case RefNone, RefInvoice, RefBill, RefPayment, RefReversal, RefManual:
		return true
	}
	return false
}

// LedgerEntry is one row of the general ledger. A balanced economic event is
// two or more rows sharing an EntryNumber.
type LedgerEntry struct {
	EntryID        string          `json:"entryID"`
	EntryNumber    string          `json:"entryNumber"`
	EntryDate      time.Time       `json:"entryDate"`
	AccountID      string          `json:"accountID"`
	Debit          decimal.Decimal `json:"debit"`
	Credit         decimal.Decimal `json:"credit"`
	Description    string          `json:"description"`
	FiscalPeriodID string          `json:"fiscalPeriodID"`
	ReferenceType  ReferenceType   `json:"referenceType,omitempty"`
	ReferenceID    string          `json:"referenceID,omitempty"`
	IsPosted       bool            `json:"isPosted"`
	CreatedBy      string          `json:"createdBy"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// ValidateDirection enforces the single-direction rule for a line about to be
// posted: no negative amounts, never both sides, and at least one side set.
func (e LedgerEntry) ValidateDirection() error {
	if e.Debit.IsNegative() || e.Credit.IsNegative() {
		return fmt.Errorf("%w: account %s has a negative amount", apperrors.ErrValidation, e.AccountID)
	}
	if e.Debit.IsPositive() && e.Credit.IsPositive() {
		return fmt.Errorf("%w: account %s debit %s credit %s",
			apperrors.ErrUnbalancedLine, e.AccountID, e.Debit.StringFixed(2), e.Credit.StringFixed(2))
	}
	if e.Debit.IsZero() && e.Credit.IsZero() {
		return fmt.Errorf("%w: account %s has neither a debit nor a credit", apperrors.ErrValidation, e.AccountID)
	}
	return nil
}

// SatisfiesDirection reports whether a stored row honours the single-direction
// invariant. Rows with both sides zero are tolerated.
func (e LedgerEntry) SatisfiesDirection() bool {
	if e.Debit.IsNegative() || e.Credit.IsNegative() {
		return false
	}
	return !(e.Debit.IsPositive() && e.Credit.IsPositive())
}

// EntryGroup is the set of ledger lines written together under one entry number.
type EntryGroup struct {
	EntryNumber    string          `json:"entryNumber"`
	EntryDate      time.Time       `json:"entryDate"`
	FiscalPeriodID string          `json:"fiscalPeriodID"`
	ReferenceType  ReferenceType   `json:"referenceType,omitempty"`
	ReferenceID    string          `json:"referenceID,omitempty"`
	Lines          []LedgerEntry   `json:"lines"`
	TotalDebit     decimal.Decimal `json:"totalDebit"`
	TotalCredit    decimal.Decimal `json:"totalCredit"`
}

// NewEntryGroup assembles a group view over lines that share an entry number.
func NewEntryGroup(lines []LedgerEntry) EntryGroup {
	g := EntryGroup{Lines: lines, TotalDebit: decimal.Zero, TotalCredit: decimal.Zero}
	for i, l := range lines {
		if i == 0 {
			g.EntryNumber = l.EntryNumber
			g.EntryDate = l.EntryDate
			g.FiscalPeriodID = l.FiscalPeriodID
			g.ReferenceType = l.ReferenceType
			g.ReferenceID = l.ReferenceID
		}
		g.TotalDebit = g.TotalDebit.Add(l.Debit)
		g.TotalCredit = g.TotalCredit.Add(l.Credit)
	}
	return g
}

// EntryFilter narrows a ledger listing.
type EntryFilter struct {
	AccountID      string
	FiscalPeriodID string
	ReferenceType  ReferenceType
	ReferenceID    string
	Limit          int
	NextToken      *string
}
