package services

import (
	"context"
	"time"

	"github.com/SscSPs/erp_ledger/internal/core/domain"
)

// ReportingService defines read-only financial reports. None of them mutate
// state, and empty data yields zeroed results rather than errors.
type ReportingService interface {
	// CalculateARAging buckets outstanding invoices by days past due. A nil asOf means today.
	CalculateARAging(ctx context.Context, asOf *time.Time) (*domain.AgingBuckets, error)

	// CalculateAPAging buckets outstanding bills by days past due. A nil asOf means today.
	CalculateAPAging(ctx context.Context, asOf *time.Time) (*domain.AgingBuckets, error)

	GetOutstandingReceivables(ctx context.Context) ([]domain.Document, error)
	GetOutstandingPayables(ctx context.Context) ([]domain.Document, error)

	// GetAccountBalance sums posted lines up to and including asOf.
	GetAccountBalance(ctx context.Context, accountID string, asOf time.Time) (*domain.AccountBalance, error)

	// GetTrialBalance returns every account's column totals for the period.
	GetTrialBalance(ctx context.Context, periodID string) (*domain.TrialBalance, error)

	// FindUnbalancedGroups audits every historical entry group.
	FindUnbalancedGroups(ctx context.Context) ([]domain.UnbalancedGroup, error)
}
