package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/erp_ledger/internal/apperrors"
	"github.com/SscSPs/erp_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/erp_ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxFiscalPeriodRepository struct {
	BaseRepository
}

func newPgxFiscalPeriodRepository(pool *pgxpool.Pool) portsrepo.FiscalPeriodRepositoryFacade {
	return &PgxFiscalPeriodRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.FiscalPeriodRepositoryFacade = (*PgxFiscalPeriodRepository)(nil)

const periodColumns = `period_id, name, start_date, end_date, fiscal_year, status, closed_at, closed_by,
	created_at, created_by, last_updated_at, last_updated_by`

func scanPeriod(row pgx.Row) (domain.FiscalPeriod, error) {
	var p domain.FiscalPeriod
	var status string
	err := row.Scan(
		&p.PeriodID,
		&p.Name,
		&p.StartDate,
		&p.EndDate,
		&p.FiscalYear,
		&status,
		&p.ClosedAt,
		&p.ClosedBy,
		&p.CreatedAt,
		&p.CreatedBy,
		&p.LastUpdatedAt,
		&p.LastUpdatedBy,
	)
	p.Status = domain.PeriodStatus(status)
	return p, err
}

func collectPeriods(rows pgx.Rows) ([]domain.FiscalPeriod, error) {
	defer rows.Close()
	out := make([]domain.FiscalPeriod, 0)
	for rows.Next() {
		p, err := scanPeriod(rows)
		if err != nil {
			return nil, mapPgError("scan fiscal period", err)
		}
		out = append(out, p)
	}
	return out, mapPgError("iterate fiscal periods", rows.Err())
}

// SavePeriod inserts a period after checking, under a table lock, that it
// does not overlap an existing one.
func (r *PgxFiscalPeriodRepository) SavePeriod(ctx context.Context, period domain.FiscalPeriod) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if _, err := tx.Exec(ctx, `LOCK TABLE fiscal_periods IN SHARE ROW EXCLUSIVE MODE;`); err != nil {
		return mapPgError("lock fiscal periods", err)
	}

	var clash string
	err = tx.QueryRow(ctx,
		`SELECT name FROM fiscal_periods WHERE start_date <= $2 AND end_date >= $1 LIMIT 1;`,
		period.StartDate, period.EndDate,
	).Scan(&clash)
	switch {
	case err == nil:
		return fmt.Errorf("%w: period overlaps %s", apperrors.ErrValidation, clash)
	case !errors.Is(err, pgx.ErrNoRows):
		return mapPgError("check period overlap", err)
	}

	query := `
		INSERT INTO fiscal_periods (` + periodColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err = tx.Exec(ctx, query,
		period.PeriodID,
		period.Name,
		period.StartDate,
		period.EndDate,
		period.FiscalYear,
		string(period.Status),
		period.ClosedAt,
		period.ClosedBy,
		period.CreatedAt,
		period.CreatedBy,
		period.LastUpdatedAt,
		period.LastUpdatedBy,
	)
	if err != nil {
		return mapPgError("save fiscal period "+period.Name, err)
	}
	return r.Commit(ctx, tx)
}

// TransitionPeriod is a single conditional UPDATE; a concurrent posting
// holding the period row FOR SHARE makes it wait.
func (r *PgxFiscalPeriodRepository) TransitionPeriod(ctx context.Context, t portsrepo.PeriodTransition) (*domain.FiscalPeriod, error) {
	from := make([]string, len(t.From))
	for i, s := range t.From {
		from[i] = string(s)
	}
	query := `
		UPDATE fiscal_periods
		SET status = $2, closed_at = $3, closed_by = $4, last_updated_at = $5, last_updated_by = $6
		WHERE period_id = $1 AND status = ANY($7)
		RETURNING ` + periodColumns + `;
	`
	p, err := scanPeriod(r.Pool.QueryRow(ctx, query,
		t.PeriodID, string(t.To), t.ClosedAt, t.ClosedBy, t.UpdatedAt, t.UpdatedBy, from))
	if err == nil {
		return &p, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, mapPgError("transition fiscal period "+t.PeriodID, err)
	}

	current, err := r.FindPeriodByID(ctx, t.PeriodID)
	if err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("%w: period %s is %s, cannot move to %s",
		apperrors.ErrInvalidTransition, current.Name, current.Status, t.To)
}

func (r *PgxFiscalPeriodRepository) FindPeriodByID(ctx context.Context, periodID string) (*domain.FiscalPeriod, error) {
	query := `SELECT ` + periodColumns + ` FROM fiscal_periods WHERE period_id = $1;`
	p, err := scanPeriod(r.Pool.QueryRow(ctx, query, periodID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("fiscal period", periodID)
		}
		return nil, mapPgError("find fiscal period "+periodID, err)
	}
	return &p, nil
}

func (r *PgxFiscalPeriodRepository) FindPeriodByDate(ctx context.Context, date time.Time) (*domain.FiscalPeriod, error) {
	day := domain.DateOnly(date)
	query := `SELECT ` + periodColumns + ` FROM fiscal_periods WHERE start_date <= $1 AND end_date >= $1 LIMIT 1;`
	p, err := scanPeriod(r.Pool.QueryRow(ctx, query, day))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: no fiscal period covers %s", apperrors.ErrNotFound, day.Format("2006-01-02"))
		}
		return nil, mapPgError("find fiscal period by date", err)
	}
	return &p, nil
}

func (r *PgxFiscalPeriodRepository) FindOverlappingPeriods(ctx context.Context, start, end time.Time) ([]domain.FiscalPeriod, error) {
	query := `SELECT ` + periodColumns + ` FROM fiscal_periods WHERE start_date <= $2 AND end_date >= $1 ORDER BY start_date;`
	rows, err := r.Pool.Query(ctx, query, domain.DateOnly(start), domain.DateOnly(end))
	if err != nil {
		return nil, mapPgError("find overlapping periods", err)
	}
	return collectPeriods(rows)
}

func (r *PgxFiscalPeriodRepository) ListPeriods(ctx context.Context, fiscalYear *int) ([]domain.FiscalPeriod, error) {
	w := &whereClause{}
	if fiscalYear != nil {
		w.add("fiscal_year = " + w.arg(*fiscalYear))
	}
	query := `SELECT ` + periodColumns + ` FROM fiscal_periods` + w.String() + ` ORDER BY start_date;`
	rows, err := r.Pool.Query(ctx, query, w.args...)
	if err != nil {
		return nil, mapPgError("list fiscal periods", err)
	}
	return collectPeriods(rows)
}
