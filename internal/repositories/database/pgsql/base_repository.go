package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/SscSPs/erp_ledger/internal/apperrors"
	"github.com/SscSPs/erp_ledger/internal/core/domain"
	"github.com/SscSPs/erp_ledger/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// BaseRepository provides common functionality for all repositories
type BaseRepository struct {
	Pool *pgxpool.Pool
}

// Begin starts a new database transaction
func (r *BaseRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.Pool.Begin(ctx)
	if err != nil {
		return nil, mapPgError("begin transaction", err)
	}
	return tx, nil
}

// Commit commits a transaction
func (r *BaseRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Commit(ctx); err != nil {
		return mapPgError("commit transaction", err)
	}
	return nil
}

// Rollback rolls back a transaction. Rolling back a finished transaction is not an error.
func (r *BaseRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return apperrors.NewAppError(500, "failed to rollback transaction", err)
	}
	return nil
}

// mapPgError translates driver failures into the application's error sentinels.
func mapPgError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %s", apperrors.ErrNotFound, op)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("%w: %s: %s", apperrors.ErrDuplicate, op, pgErr.ConstraintName)
		case "23503", "23514": // foreign_key_violation, check_violation
			return fmt.Errorf("%w: %s: %s", apperrors.ErrValidation, op, pgErr.Message)
		case "40001", "40P01": // serialization_failure, deadlock_detected
			return fmt.Errorf("%w: %s", apperrors.ErrConcurrentModification, op)
		}
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) || pgconn.Timeout(err) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s: %v", apperrors.ErrDatabaseUnavailable, op, err)
	}
	return apperrors.NewAppError(500, "failed to "+op, err)
}

// whereClause accumulates AND-ed conditions with positional arguments.
type whereClause struct {
	conds []string
	args  []any
}

// arg registers v and returns its placeholder.
func (w *whereClause) arg(v any) string {
	w.args = append(w.args, v)
	return "$" + strconv.Itoa(len(w.args))
}

func (w *whereClause) add(cond string) {
	w.conds = append(w.conds, cond)
}

func (w *whereClause) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	out := " WHERE " + w.conds[0]
	for _, c := range w.conds[1:] {
		out += " AND " + c
	}
	return out
}

// keyset adds the newest-first cursor condition for a listing ordered by
// (created_at DESC, idCol DESC) and returns the LIMIT to query with, one past
// the page size so the caller can tell whether another page exists.
func (w *whereClause) keyset(idCol string, limit int, nextToken *string) (int, error) {
	if nextToken != nil && *nextToken != "" {
		cursor, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return 0, fmt.Errorf("%w: invalid next token: %v", apperrors.ErrValidation, err)
		}
		w.add(fmt.Sprintf("(created_at, %s) < (%s, %s)", idCol, w.arg(cursor.SortTime), w.arg(cursor.ID)))
	}
	return pagination.NormalizeLimit(limit) + 1, nil
}

// trimPage cuts rows fetched with keyset's limit back to the page size and
// builds the token for the following page.
func trimPage[T any](rows []T, fetched int, key func(T) (time.Time, string)) ([]T, *string) {
	pageSize := fetched - 1
	if len(rows) <= pageSize {
		return rows, nil
	}
	rows = rows[:pageSize]
	ts, id := key(rows[pageSize-1])
	token := pagination.EncodeToken(ts, id)
	return rows, &token
}

// liveRows is the single soft-delete predicate for SQL reads.
func liveRows(alias string, scope domain.DeletedScope) string {
	if scope == domain.IncludeDeleted {
		return "TRUE"
	}
	if alias == "" {
		return "deleted_at IS NULL"
	}
	return alias + ".deleted_at IS NULL"
}
