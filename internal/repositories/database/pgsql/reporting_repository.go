package pgsql

import (
	"context"
	"time"

	"github.com/SscSPs/erp_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/erp_ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// reportingRepository implements the ReportingRepository interface
type reportingRepository struct {
	BaseRepository
}

// newReportingRepository creates a new reporting repository
func newReportingRepository(db *pgxpool.Pool) portsrepo.ReportingRepository {
	return &reportingRepository{
		BaseRepository: BaseRepository{Pool: db},
	}
}

// SumAccountEntries totals posted lines dated on or before asOf, regardless of period status.
func (r *reportingRepository) SumAccountEntries(ctx context.Context, accountID string, asOf time.Time) (decimal.Decimal, decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(debit), 0), COALESCE(SUM(credit), 0)
		FROM ledger_entries
		WHERE account_id = $1 AND is_posted AND entry_date <= $2
	`
	var debit, credit decimal.Decimal
	if err := r.Pool.QueryRow(ctx, query, accountID, domain.DateOnly(asOf)).Scan(&debit, &credit); err != nil {
		return decimal.Zero, decimal.Zero, mapPgError("sum account entries", err)
	}
	return debit, credit, nil
}

// GetTrialBalanceRows returns every account with its column totals for the period.
func (r *reportingRepository) GetTrialBalanceRows(ctx context.Context, periodID string) ([]domain.TrialBalanceRow, error) {
	query := `
		SELECT
			a.account_id,
			a.account_number,
			a.name,
			a.account_type,
			COALESCE(SUM(e.debit), 0) AS total_debit,
			COALESCE(SUM(e.credit), 0) AS total_credit
		FROM accounts a
		LEFT JOIN ledger_entries e
			ON e.account_id = a.account_id
			AND e.fiscal_period_id = $1
			AND e.is_posted
		GROUP BY a.account_id, a.account_number, a.name, a.account_type
		ORDER BY a.account_number
	`
	rows, err := r.Pool.Query(ctx, query, periodID)
	if err != nil {
		return nil, mapPgError("query trial balance", err)
	}
	defer rows.Close()

	result := make([]domain.TrialBalanceRow, 0)
	for rows.Next() {
		var row domain.TrialBalanceRow
		var accountType string
		if err := rows.Scan(
			&row.AccountID,
			&row.AccountNumber,
			&row.AccountName,
			&accountType,
			&row.Debit,
			&row.Credit,
		); err != nil {
			return nil, mapPgError("scan trial balance row", err)
		}
		row.AccountType = domain.AccountType(accountType)
		result = append(result, row)
	}
	return result, mapPgError("iterate trial balance rows", rows.Err())
}

// FindUnbalancedGroups scans the whole ledger for groups breaking either column
// equality or the single-direction rule.
func (r *reportingRepository) FindUnbalancedGroups(ctx context.Context) ([]domain.UnbalancedGroup, error) {
	query := `
		SELECT
			entry_number,
			MIN(fiscal_period_id),
			SUM(debit),
			SUM(credit),
			COUNT(*) FILTER (WHERE debit < 0 OR credit < 0 OR (debit > 0 AND credit > 0)) AS invalid_lines
		FROM ledger_entries
		GROUP BY entry_number
		HAVING SUM(debit) <> SUM(credit)
			OR COUNT(*) FILTER (WHERE debit < 0 OR credit < 0 OR (debit > 0 AND credit > 0)) > 0
		ORDER BY MIN(created_at), entry_number
	`
	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, mapPgError("find unbalanced groups", err)
	}
	defer rows.Close()

	result := make([]domain.UnbalancedGroup, 0)
	for rows.Next() {
		var g domain.UnbalancedGroup
		if err := rows.Scan(&g.EntryNumber, &g.FiscalPeriodID, &g.TotalDebit, &g.TotalCredit, &g.InvalidLines); err != nil {
			return nil, mapPgError("scan unbalanced group", err)
		}
		result = append(result, g)
	}
	return result, mapPgError("iterate unbalanced groups", rows.Err())
}
