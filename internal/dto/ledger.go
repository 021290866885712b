package dto

import (
	"github.com/SscSPs/erp_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// EntryLineRequest is one line of an ad-hoc entry group.
type EntryLineRequest struct {
	AccountID   string          `json:"accountID" binding:"required"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description"`
}

// PostEntriesRequest posts a balanced group of two or more lines. The line
// count is checked by the posting service after each line's direction.
// When FiscalPeriodID is empty the period covering EntryDate is used.
type PostEntriesRequest struct {
	EntryDate      string               `json:"entryDate" binding:"required,datetime=2006-01-02"`
	Description    string               `json:"description" binding:"max=500"`
	FiscalPeriodID string               `json:"fiscalPeriodID"`
	ReferenceType  domain.ReferenceType `json:"referenceType" binding:"omitempty,oneof=INVOICE BILL PAYMENT REVERSAL MANUAL"`
	ReferenceID    string               `json:"referenceID"`
	Lines          []EntryLineRequest   `json:"lines" binding:"required,dive"`
}

// JournalEntryRequest posts exactly one debit line and one credit line.
type JournalEntryRequest struct {
	DebitAccountID  string          `json:"debitAccountID" binding:"required"`
	CreditAccountID string          `json:"creditAccountID" binding:"required"`
	Amount          decimal.Decimal `json:"amount"`
	EntryDate       string          `json:"entryDate" binding:"required,datetime=2006-01-02"`
	Description     string          `json:"description" binding:"max=500"`
	FiscalPeriodID  string          `json:"fiscalPeriodID"`
}

// ReverseEntriesRequest reverses every group linked to a reference.
type ReverseEntriesRequest struct {
	ReferenceType domain.ReferenceType `json:"referenceType" binding:"required,oneof=INVOICE BILL PAYMENT MANUAL"`
	ReferenceID   string               `json:"referenceID" binding:"required"`
	Reason        string               `json:"reason" binding:"max=500"`
}

// ListEntriesParams defines query parameters for listing ledger lines.
type ListEntriesParams struct {
	AccountID      string  `form:"accountID"`
	FiscalPeriodID string  `form:"fiscalPeriodID"`
	Limit          int     `form:"limit,default=50"`
	NextToken      *string `form:"nextToken"`
}

// ListEntriesResponse is a page of ledger lines.
type ListEntriesResponse struct {
	Entries   []domain.LedgerEntry `json:"entries"`
	NextToken *string              `json:"nextToken,omitempty"`
}
