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

type PgxLedgerRepository struct {
	BaseRepository
}

func newPgxLedgerRepository(pool *pgxpool.Pool) *PgxLedgerRepository {
	return &PgxLedgerRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var (
	_ portsrepo.LedgerRepositoryFacade = (*PgxLedgerRepository)(nil)
	_ portsrepo.SequenceRepository     = (*PgxLedgerRepository)(nil)
)

const entryColumns = `entry_id, entry_number, entry_date, account_id, debit, credit, description,
	fiscal_period_id, reference_type, reference_id, is_posted, created_by, created_at`

func collectEntries(rows pgx.Rows) ([]domain.LedgerEntry, error) {
	defer rows.Close()
	out := make([]domain.LedgerEntry, 0)
	for rows.Next() {
		var e domain.LedgerEntry
		var refType string
		if err := rows.Scan(
			&e.EntryID,
			&e.EntryNumber,
			&e.EntryDate,
			&e.AccountID,
			&e.Debit,
			&e.Credit,
			&e.Description,
			&e.FiscalPeriodID,
			&refType,
			&e.ReferenceID,
			&e.IsPosted,
			&e.CreatedBy,
			&e.CreatedAt,
		); err != nil {
			return nil, mapPgError("scan ledger entry", err)
		}
		e.ReferenceType = domain.ReferenceType(refType)
		out = append(out, e)
	}
	return out, mapPgError("iterate ledger entries", rows.Err())
}

// insertEntryGroup writes the lines of one group inside tx. It first takes
// share locks on the fiscal period and the referenced accounts and re-checks
// them, so a concurrent close or deactivation cannot interleave.
func insertEntryGroup(ctx context.Context, tx pgx.Tx, entries []domain.LedgerEntry) error {
	if len(entries) == 0 {
		return fmt.Errorf("%w: empty entry group", apperrors.ErrValidation)
	}
	periodID := entries[0].FiscalPeriodID

	var name, status string
	err := tx.QueryRow(ctx,
		`SELECT name, status FROM fiscal_periods WHERE period_id = $1 FOR SHARE;`, periodID,
	).Scan(&name, &status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFoundError("fiscal period", periodID)
		}
		return mapPgError("lock fiscal period "+periodID, err)
	}
	if domain.PeriodStatus(status) != domain.PeriodOpen {
		return fmt.Errorf("%w: period %s is %s", apperrors.ErrPeriodLocked, name, status)
	}

	accountIDs := make([]string, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if e.FiscalPeriodID != periodID {
			return fmt.Errorf("%w: all lines of a group must share one fiscal period", apperrors.ErrValidation)
		}
		if _, ok := seen[e.AccountID]; !ok {
			seen[e.AccountID] = struct{}{}
			accountIDs = append(accountIDs, e.AccountID)
		}
	}

	rows, err := tx.Query(ctx,
		`SELECT account_id, account_number, is_active FROM accounts WHERE account_id = ANY($1) FOR SHARE;`, accountIDs)
	if err != nil {
		return mapPgError("lock accounts", err)
	}
	found := make(map[string]bool, len(accountIDs))
	for rows.Next() {
		var id, number string
		var active bool
		if err := rows.Scan(&id, &number, &active); err != nil {
			rows.Close()
			return mapPgError("scan account", err)
		}
		if !active {
			rows.Close()
			return fmt.Errorf("%w: account %s is inactive", apperrors.ErrValidation, number)
		}
		found[id] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return mapPgError("iterate accounts", err)
	}
	for _, id := range accountIDs {
		if !found[id] {
			return fmt.Errorf("%w: account %s does not exist", apperrors.ErrValidation, id)
		}
	}

	batch := &pgx.Batch{}
	query := `INSERT INTO ledger_entries (` + entryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);`
	for _, e := range entries {
		batch.Queue(query,
			e.EntryID,
			e.EntryNumber,
			domain.DateOnly(e.EntryDate),
			e.AccountID,
			e.Debit,
			e.Credit,
			e.Description,
			e.FiscalPeriodID,
			string(e.ReferenceType),
			e.ReferenceID,
			e.IsPosted,
			e.CreatedBy,
			e.CreatedAt,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return mapPgError("insert entry group "+entries[0].EntryNumber, err)
	}
	return nil
}

// SaveEntryGroup writes every line of a group or none of them.
func (r *PgxLedgerRepository) SaveEntryGroup(ctx context.Context, entries []domain.LedgerEntry) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if err := insertEntryGroup(ctx, tx, entries); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

func (r *PgxLedgerRepository) FindEntriesByEntryNumber(ctx context.Context, entryNumber string) ([]domain.LedgerEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM ledger_entries WHERE entry_number = $1 ORDER BY created_at, entry_id;`
	rows, err := r.Pool.Query(ctx, query, entryNumber)
	if err != nil {
		return nil, mapPgError("find entries "+entryNumber, err)
	}
	return collectEntries(rows)
}

func (r *PgxLedgerRepository) FindEntriesByReference(ctx context.Context, refType domain.ReferenceType, refID string) ([]domain.LedgerEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM ledger_entries
		WHERE reference_type = $1 AND reference_id = $2 ORDER BY created_at, entry_id;`
	rows, err := r.Pool.Query(ctx, query, string(refType), refID)
	if err != nil {
		return nil, mapPgError("find entries by reference", err)
	}
	return collectEntries(rows)
}

func (r *PgxLedgerRepository) ListEntries(ctx context.Context, filter domain.EntryFilter) ([]domain.LedgerEntry, *string, error) {
	w := &whereClause{}
	if filter.AccountID != "" {
		w.add("account_id = " + w.arg(filter.AccountID))
	}
	if filter.FiscalPeriodID != "" {
		w.add("fiscal_period_id = " + w.arg(filter.FiscalPeriodID))
	}
	if filter.ReferenceType != domain.RefNone {
		w.add("reference_type = " + w.arg(string(filter.ReferenceType)))
	}
	if filter.ReferenceID != "" {
		w.add("reference_id = " + w.arg(filter.ReferenceID))
	}
	fetch, err := w.keyset("entry_id", filter.Limit, filter.NextToken)
	if err != nil {
		return nil, nil, err
	}

	query := fmt.Sprintf(`SELECT %s FROM ledger_entries%s ORDER BY created_at DESC, entry_id DESC LIMIT %d;`,
		entryColumns, w.String(), fetch)
	rows, err := r.Pool.Query(ctx, query, w.args...)
	if err != nil {
		return nil, nil, mapPgError("list ledger entries", err)
	}
	entries, err := collectEntries(rows)
	if err != nil {
		return nil, nil, err
	}
	page, token := trimPage(entries, fetch, func(e domain.LedgerEntry) (time.Time, string) { return e.CreatedAt, e.EntryID })
	return page, token, nil
}

// NextSequenceValue increments the (prefix, year) counter atomically.
func (r *PgxLedgerRepository) NextSequenceValue(ctx context.Context, prefix string, year int) (int64, error) {
	query := `
		INSERT INTO document_sequences (prefix, year, value) VALUES ($1, $2, 1)
		ON CONFLICT (prefix, year) DO UPDATE SET value = document_sequences.value + 1
		RETURNING value;
	`
	var value int64
	if err := r.Pool.QueryRow(ctx, query, prefix, year).Scan(&value); err != nil {
		return 0, mapPgError("next sequence value "+prefix, err)
	}
	return value, nil
}
