package domain

import (
	"fmt"
	"time"

	"github.com/SscSPs/erp_ledger/internal/apperrors"
	"github.com/shopspring/decimal"
)

// PaymentDirection says whether cash came in or went out.
type PaymentDirection string

const (
	PaymentReceived PaymentDirection = "RECEIVED"
	PaymentSent     PaymentDirection = "SENT"
)

// NumberPrefix is the prefix of the human-readable payment number.
func (d PaymentDirection) NumberPrefix() string {
	if d == PaymentSent {
		return "PMT-SNT"
	}
	return "PMT-RCV"
}

// PaymentMethod is how a payment was settled.
type PaymentMethod string

const (
	MethodCash       PaymentMethod = "CASH"
	MethodCheck      PaymentMethod = "CHECK"
	MethodWire       PaymentMethod = "WIRE"
	MethodACH        PaymentMethod = "ACH"
	MethodCreditCard PaymentMethod = "CREDIT_CARD"
	MethodDebitCard  PaymentMethod = "DEBIT_CARD"
	MethodOther      PaymentMethod = "OTHER"
)

// ParsePaymentMethod accepts exactly the enumerated methods, case-sensitively.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch m := PaymentMethod(s); m {
	case MethodCash, MethodCheck, MethodWire, MethodACH, MethodCreditCard, MethodDebitCard, MethodOther:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q is not a valid payment method", apperrors.ErrValidation, s)
}

// Payment is cash applied against exactly one invoice or bill.
type Payment struct {
	PaymentID       string           `json:"paymentID"`
	PaymentNumber   string           `json:"paymentNumber"`
	Direction       PaymentDirection `json:"direction"`
	PaymentDate     time.Time        `json:"paymentDate"`
	Amount          decimal.Decimal  `json:"amount"`
	Method          PaymentMethod    `json:"method"`
	ReferenceNumber string           `json:"referenceNumber,omitempty"`
	InvoiceID       *string          `json:"invoiceID,omitempty"`
	BillID          *string          `json:"billID,omitempty"`
	BankAccountID   *string          `json:"bankAccountID,omitempty"`
	EntryNumber     string           `json:"entryNumber"`
	Notes           string           `json:"notes,omitempty"`
	DeletedAt       *time.Time       `json:"deletedAt"`
	AuditFields
}

// Document returns the kind and id of the document the payment settles.
func (p Payment) Document() (DocumentKind, string) {
	if p.BillID != nil {
		return KindBill, *p.BillID
	}
	if p.InvoiceID != nil {
		return KindInvoice, *p.InvoiceID
	}
	return "", ""
}

// PaymentFilter narrows a payment listing.
type PaymentFilter struct {
	Direction PaymentDirection
	InvoiceID string
	BillID    string
	Scope     DeletedScope
	Limit     int
	NextToken *string
}

// PaymentApplication is everything one recorded payment writes, persisted as a
// unit. Document holds the post-payment state; its Version is the version the
// caller read, which the store checks before writing.
type PaymentApplication struct {
	Document Document
	Payment  Payment
	Entries  []LedgerEntry
}
