package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/erp_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ReportingRepository defines read-only aggregate queries over the ledger.
type ReportingRepository interface {
	// SumAccountEntries totals the posted debits and credits of an account
	// dated on or before asOf, across periods of any status.
	SumAccountEntries(ctx context.Context, accountID string, asOf time.Time) (decimal.Decimal, decimal.Decimal, error)

	// GetTrialBalanceRows returns one row per account with its column totals for
	// the period, including accounts without activity. Ordered by account number.
	GetTrialBalanceRows(ctx context.Context, periodID string) ([]domain.TrialBalanceRow, error)

	// FindUnbalancedGroups returns every entry group whose debits differ from its
	// credits or which holds a line violating the single-direction rule.
	FindUnbalancedGroups(ctx context.Context) ([]domain.UnbalancedGroup, error)
}
