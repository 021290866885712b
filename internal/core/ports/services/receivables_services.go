package services

import (
	"context"
	"time"

	"github.com/SscSPs/erp_ledger/internal/core/domain"
	"github.com/SscSPs/erp_ledger/internal/dto"
)

// DocumentReaderSvc defines read operations for invoices (KindInvoice) and bills (KindBill).
// Soft-deleted documents are invisible except through the IncludingDeleted path.
type DocumentReaderSvc interface {
	GetDocument(ctx context.Context, kind domain.DocumentKind, documentID string) (*domain.Document, error)
	ListDocuments(ctx context.Context, kind domain.DocumentKind, params dto.ListDocumentsParams) (*dto.ListDocumentsResponse, error)

	// ListDocumentsIncludingDeleted is the administrative recovery listing.
	ListDocumentsIncludingDeleted(ctx context.Context, kind domain.DocumentKind, params dto.ListDocumentsParams) (*dto.ListDocumentsResponse, error)
}

// DocumentWriterSvc defines the invoice and bill lifecycle
type DocumentWriterSvc interface {
	CreateDocument(ctx context.Context, kind domain.DocumentKind, req dto.CreateDocumentRequest, actorID string) (*domain.Document, error)
	UpdateDocument(ctx context.Context, kind domain.DocumentKind, documentID string, req dto.UpdateDocumentRequest, actorID string) (*domain.Document, error)

	// UpdateStatus applies a manual status change through the transition table.
	UpdateStatus(ctx context.Context, kind domain.DocumentKind, documentID string, newStatus string, actorID string) (*domain.Document, error)

	VoidDocument(ctx context.Context, kind domain.DocumentKind, documentID string, actorID string) (*domain.Document, error)

	// SoftDeleteDocument is idempotent.
	SoftDeleteDocument(ctx context.Context, kind domain.DocumentKind, documentID string, actorID string) error
	RestoreDocument(ctx context.Context, kind domain.DocumentKind, documentID string, actorID string) error

	// MarkOverdue moves every past-due document that allows it to OVERDUE.
	MarkOverdue(ctx context.Context, asOf time.Time, actorID string) (*dto.MarkOverdueResponse, error)
}

// PaymentSvc defines payment application and lookup
type PaymentSvc interface {
	// RecordPayment applies cash to a document and posts the settlement to the ledger.
	RecordPayment(ctx context.Context, kind domain.DocumentKind, documentID string, req dto.RecordPaymentRequest, actorID string) (*domain.Payment, error)

	GetPayment(ctx context.Context, paymentID string) (*domain.Payment, error)
	ListPayments(ctx context.Context, params dto.ListPaymentsParams) (*dto.ListPaymentsResponse, error)
	ListPaymentsIncludingDeleted(ctx context.Context, params dto.ListPaymentsParams) (*dto.ListPaymentsResponse, error)
	PaymentsForDocument(ctx context.Context, kind domain.DocumentKind, documentID string) ([]domain.Payment, error)

	SoftDeletePayment(ctx context.Context, paymentID string, actorID string) error
	RestorePayment(ctx context.Context, paymentID string, actorID string) error
}

// ReceivablesSvcFacade combines the receivables and payables interfaces
type ReceivablesSvcFacade interface {
	DocumentReaderSvc
	DocumentWriterSvc
	PaymentSvc
}
