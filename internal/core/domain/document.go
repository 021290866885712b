package domain

import (
	"fmt"
	"time"

	"github.com/SscSPs/erp_ledger/internal/apperrors"
	"github.com/shopspring/decimal"
)

// DocumentKind distinguishes receivables (invoices) from payables (bills).
type DocumentKind string

const (
	KindInvoice DocumentKind = "INVOICE"
	KindBill    DocumentKind = "BILL"
)

// IsValid reports whether k is INVOICE or BILL.
func (k DocumentKind) IsValid() bool {
	return k == KindInvoice || k == KindBill
}

// NumberPrefix is the prefix of the human-readable document number.
func (k DocumentKind) NumberPrefix() string {
	if k == KindBill {
		return "BILL"
	}
	return "INV"
}

// PaymentDirection is the direction of cash for payments against this kind.
func (k DocumentKind) PaymentDirection() PaymentDirection {
	if k == KindBill {
		return PaymentSent
	}
	return PaymentReceived
}

// ReferenceType is the ledger reference used for postings about this kind.
func (k DocumentKind) ReferenceType() ReferenceType {
	if k == KindBill {
		return RefBill
	}
	return RefInvoice
}

// Label is the lower-case noun used in messages.
func (k DocumentKind) Label() string {
	if k == KindBill {
		return "bill"
	}
	return "invoice"
}

// DocumentStatus is a lifecycle state of an invoice or bill.
type DocumentStatus string

const (
	StatusDraft   DocumentStatus = "DRAFT"
	StatusSent    DocumentStatus = "SENT"
	StatusViewed  DocumentStatus = "VIEWED"
	StatusPending DocumentStatus = "PENDING"
	StatusPartial DocumentStatus = "PARTIAL"
	StatusPaid    DocumentStatus = "PAID"
	StatusOverdue DocumentStatus = "OVERDUE"
	StatusVoid    DocumentStatus = "VOID"
)

var statusSets = map[DocumentKind]map[DocumentStatus]struct{}{
	KindInvoice: {
		StatusDraft: {}, StatusSent: {}, StatusViewed: {}, StatusPartial: {},
		StatusPaid: {}, StatusOverdue: {}, StatusVoid: {},
	},
	KindBill: {
		StatusDraft: {}, StatusPending: {}, StatusPartial: {},
		StatusPaid: {}, StatusOverdue: {}, StatusVoid: {},
	},
}

// ParseDocumentStatus accepts exactly the statuses defined for kind.
// Matching is case-sensitive.
func ParseDocumentStatus(kind DocumentKind, s string) (DocumentStatus, error) {
	set, ok := statusSets[kind]
	if !ok {
		return "", fmt.Errorf("%w: unknown document kind %q", apperrors.ErrValidation, kind)
	}
	status := DocumentStatus(s)
	if _, ok := set[status]; !ok {
		return "", fmt.Errorf("%w: %q is not a valid %s status", apperrors.ErrValidation, s, kind.Label())
	}
	return status, nil
}

// IsTerminal reports whether no further status change is possible.
func (s DocumentStatus) IsTerminal() bool {
	return s == StatusPaid || s == StatusVoid
}

// LineItem is one priced line of an invoice or bill.
type LineItem struct {
	LineItemID      string          `json:"lineItemID"`
	DocumentID      string          `json:"documentID"`
	ProductID       string          `json:"productID,omitempty"`
	BatchID         string          `json:"batchID,omitempty"`
	Description     string          `json:"description"`
	Quantity        decimal.Decimal `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unitPrice"`
	TaxRate         decimal.Decimal `json:"taxRate"`         // percent
	DiscountPercent decimal.Decimal `json:"discountPercent"` // percent
	LineTotal       decimal.Decimal `json:"lineTotal"`
	SortOrder       int             `json:"sortOrder"`
}

// Document is an invoice (AR) or a bill (AP). CounterpartyID is the customer
// for invoices and the vendor for bills.
type Document struct {
	DocumentID     string          `json:"documentID"`
	Kind           DocumentKind    `json:"kind"`
	Number         string          `json:"number"`
	CounterpartyID string          `json:"counterpartyID"`
	IssueDate      time.Time       `json:"issueDate"`
	DueDate        time.Time       `json:"dueDate"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	TaxAmount      decimal.Decimal `json:"taxAmount"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
	AmountPaid     decimal.Decimal `json:"amountPaid"`
	AmountDue      decimal.Decimal `json:"amountDue"`
	Status         DocumentStatus  `json:"status"`
	Notes          string          `json:"notes"`
	Version        int64           `json:"version"`
	DeletedAt      *time.Time      `json:"deletedAt"`
	LineItems      []LineItem      `json:"lineItems"`
	AuditFields
}

// IsDeleted reports whether the document carries a deletion timestamp.
func (d Document) IsDeleted() bool {
	return d.DeletedAt != nil
}

// IsOutstanding reports whether the document still counts toward aging:
// not deleted, not void, not paid, and something left to settle.
func (d Document) IsOutstanding() bool {
	return !d.IsDeleted() &&
		d.Status != StatusVoid &&
		d.Status != StatusPaid &&
		d.AmountDue.IsPositive()
}

// DocumentFilter narrows a document listing.
type DocumentFilter struct {
	Kind           DocumentKind
	Status         DocumentStatus
	CounterpartyID string
	Scope          DeletedScope
	Limit          int
	NextToken      *string
}
