package dto

import (
	"github.com/SscSPs/erp_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// LineItemRequest is one priced line on a new or edited document.
// TaxRate and DiscountPercent are percentages.
type LineItemRequest struct {
	ProductID       string          `json:"productID"`
	BatchID         string          `json:"batchID"`
	Description     string          `json:"description" binding:"required,max=500"`
	Quantity        decimal.Decimal `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unitPrice"`
	TaxRate         decimal.Decimal `json:"taxRate"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
}

// CreateDocumentRequest creates an invoice (CounterpartyID = customer) or a
// bill (CounterpartyID = vendor). With line items the header amounts are
// derived from the lines and DiscountAmount is a document-level discount on
// top; without line items Subtotal, TaxAmount and DiscountAmount are used as given.
type CreateDocumentRequest struct {
	CounterpartyID string            `json:"counterpartyID" binding:"required"`
	IssueDate      string            `json:"issueDate" binding:"required,datetime=2006-01-02"`
	DueDate        string            `json:"dueDate" binding:"required,datetime=2006-01-02"`
	Subtotal       decimal.Decimal   `json:"subtotal"`
	TaxAmount      decimal.Decimal   `json:"taxAmount"`
	DiscountAmount decimal.Decimal   `json:"discountAmount"`
	Notes          string            `json:"notes" binding:"max=2000"`
	LineItems      []LineItemRequest `json:"lineItems" binding:"dive"`
}

// UpdateDocumentRequest is a partial update. Nil fields are left unchanged.
// Amount fields and LineItems may only change while the document is a DRAFT
// with nothing paid. Version, when set, must match the stored version.
type UpdateDocumentRequest struct {
	CounterpartyID *string            `json:"counterpartyID" binding:"omitempty,min=1"`
	IssueDate      *string            `json:"issueDate" binding:"omitempty,datetime=2006-01-02"`
	DueDate        *string            `json:"dueDate" binding:"omitempty,datetime=2006-01-02"`
	Notes          *string            `json:"notes" binding:"omitempty,max=2000"`
	Subtotal       *decimal.Decimal   `json:"subtotal"`
	TaxAmount      *decimal.Decimal   `json:"taxAmount"`
	DiscountAmount *decimal.Decimal   `json:"discountAmount"`
	LineItems      *[]LineItemRequest `json:"lineItems"`
	Version        int64              `json:"version" binding:"min=0"`
}

// UpdateStatusRequest asks for a manual status change.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ListDocumentsParams defines query parameters for listing invoices or bills.
type ListDocumentsParams struct {
	Status         string  `form:"status"`
	CounterpartyID string  `form:"counterpartyID"`
	Limit          int     `form:"limit,default=50"`
	NextToken      *string `form:"nextToken"`
}

// ListDocumentsResponse is a page of documents.
type ListDocumentsResponse struct {
	Documents []domain.Document `json:"documents"`
	NextToken *string           `json:"nextToken,omitempty"`
}

// MarkOverdueResponse reports how many documents moved to OVERDUE.
type MarkOverdueResponse struct {
	Invoices int `json:"invoices"`
	Bills    int `json:"bills"`
}
