package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/erp_ledger/internal/core/domain"
)

// PaymentReader defines read operations for payments.
type PaymentReader interface {
	FindPaymentByID(ctx context.Context, paymentID string, scope domain.DeletedScope) (*domain.Payment, error)

	// ListPayments retrieves a page of payments, newest first, and a token for the next page.
	ListPayments(ctx context.Context, filter domain.PaymentFilter) ([]domain.Payment, *string, error)
}

// PaymentWriter defines write operations for payments.
type PaymentWriter interface {
	// ApplyPayment writes the document's new settlement state, the payment row
	// and its ledger lines in one transaction. The document write is guarded by
	// app.Document.Version; the ledger write re-checks the fiscal period.
	ApplyPayment(ctx context.Context, app domain.PaymentApplication) error

	SoftDeletePayment(ctx context.Context, paymentID string, at time.Time, actorID string) error
	RestorePayment(ctx context.Context, paymentID string, actorID string) error
}

// PaymentRepositoryFacade combines all payment repository interfaces.
type PaymentRepositoryFacade interface {
	PaymentReader
	PaymentWriter
}
