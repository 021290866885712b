package dto

import (
	"github.com/SscSPs/erp_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// RecordPaymentRequest applies cash to an invoice or bill.
// BankAccountID overrides the standard cash account on the ledger posting.
type RecordPaymentRequest struct {
	Amount          decimal.Decimal `json:"amount"`
	Method          string          `json:"method" binding:"required"`
	PaymentDate     string          `json:"paymentDate" binding:"required,datetime=2006-01-02"`
	ReferenceNumber string          `json:"referenceNumber" binding:"max=100"`
	BankAccountID   *string         `json:"bankAccountID"`
	Notes           string          `json:"notes" binding:"max=2000"`
}

// ListPaymentsParams defines query parameters for listing payments.
type ListPaymentsParams struct {
	Direction string  `form:"direction" binding:"omitempty,oneof=RECEIVED SENT"`
	InvoiceID string  `form:"invoiceID"`
	BillID    string  `form:"billID"`
	Limit     int     `form:"limit,default=50"`
	NextToken *string `form:"nextToken"`
}

// ListPaymentsResponse is a page of payments.
type ListPaymentsResponse struct {
	Payments  []domain.Payment `json:"payments"`
	NextToken *string          `json:"nextToken,omitempty"`
}
