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

type PgxPaymentRepository struct {
	BaseRepository
}

func newPgxPaymentRepository(pool *pgxpool.Pool) portsrepo.PaymentRepositoryFacade {
	return &PgxPaymentRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.PaymentRepositoryFacade = (*PgxPaymentRepository)(nil)

const paymentColumns = `payment_id, payment_number, direction, payment_date, amount, method, reference_number,
	invoice_id, bill_id, bank_account_id, entry_number, notes, deleted_at,
	created_at, created_by, last_updated_at, last_updated_by`

func scanPayment(row pgx.Row) (domain.Payment, error) {
	var p domain.Payment
	var direction, method string
	err := row.Scan(
		&p.PaymentID,
		&p.PaymentNumber,
		&direction,
		&p.PaymentDate,
		&p.Amount,
		&method,
		&p.ReferenceNumber,
		&p.InvoiceID,
		&p.BillID,
		&p.BankAccountID,
		&p.EntryNumber,
		&p.Notes,
		&p.DeletedAt,
		&p.CreatedAt,
		&p.CreatedBy,
		&p.LastUpdatedAt,
		&p.LastUpdatedBy,
	)
	p.Direction = domain.PaymentDirection(direction)
	p.Method = domain.PaymentMethod(method)
	return p, err
}

// ApplyPayment writes the settlement, the payment row and its ledger lines in
// one transaction. The document update is conditional on the version the
// caller read, so two concurrent payments cannot both settle the same balance.
func (r *PgxPaymentRepository) ApplyPayment(ctx context.Context, app domain.PaymentApplication) error {
	doc := app.Document
	t, err := tableFor(doc.Kind)
	if err != nil {
		return err
	}
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	query := fmt.Sprintf(`
		UPDATE %s
		SET amount_paid = $2, amount_due = $3, status = $4, last_updated_at = $5, last_updated_by = $6,
			version = version + 1
		WHERE %s = $1 AND version = $7 AND %s;`,
		t.table, t.idCol, liveRows("", domain.ActiveOnly))
	tag, err := tx.Exec(ctx, query,
		doc.DocumentID,
		doc.AmountPaid,
		doc.AmountDue,
		string(doc.Status),
		doc.LastUpdatedAt,
		doc.LastUpdatedBy,
		doc.Version,
	)
	if err != nil {
		return mapPgError("settle "+doc.Kind.Label()+" "+doc.DocumentID, err)
	}
	if tag.RowsAffected() == 0 {
		return versionConflict(ctx, tx, t, doc.Kind, doc.DocumentID, doc.Version)
	}

	p := app.Payment
	_, err = tx.Exec(ctx, `INSERT INTO payments (`+paymentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17);`,
		p.PaymentID,
		p.PaymentNumber,
		string(p.Direction),
		domain.DateOnly(p.PaymentDate),
		p.Amount,
		string(p.Method),
		p.ReferenceNumber,
		p.InvoiceID,
		p.BillID,
		p.BankAccountID,
		p.EntryNumber,
		p.Notes,
		p.DeletedAt,
		p.CreatedAt,
		p.CreatedBy,
		p.LastUpdatedAt,
		p.LastUpdatedBy,
	)
	if err != nil {
		return mapPgError("insert payment "+p.PaymentNumber, err)
	}

	if err := insertEntryGroup(ctx, tx, app.Entries); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

func (r *PgxPaymentRepository) setDeleted(ctx context.Context, paymentID string, at *time.Time, actorID string) error {
	guard := "deleted_at IS NULL"
	updatedAt := time.Now().UTC()
	if at == nil {
		guard = "deleted_at IS NOT NULL"
	} else {
		updatedAt = *at
	}
	tag, err := r.Pool.Exec(ctx,
		`UPDATE payments SET deleted_at = $2, last_updated_at = $3, last_updated_by = $4
		WHERE payment_id = $1 AND `+guard+`;`,
		paymentID, at, updatedAt, actorID)
	if err != nil {
		return mapPgError("soft delete payment "+paymentID, err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	if err := r.Pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM payments WHERE payment_id = $1);`, paymentID,
	).Scan(&exists); err != nil {
		return mapPgError("check payment exists", err)
	}
	if !exists {
		return apperrors.NewNotFoundError("payment", paymentID)
	}
	return nil
}

func (r *PgxPaymentRepository) SoftDeletePayment(ctx context.Context, paymentID string, at time.Time, actorID string) error {
	return r.setDeleted(ctx, paymentID, &at, actorID)
}

func (r *PgxPaymentRepository) RestorePayment(ctx context.Context, paymentID string, actorID string) error {
	return r.setDeleted(ctx, paymentID, nil, actorID)
}

func (r *PgxPaymentRepository) FindPaymentByID(ctx context.Context, paymentID string, scope domain.DeletedScope) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE payment_id = $1 AND ` + liveRows("", scope) + `;`
	p, err := scanPayment(r.Pool.QueryRow(ctx, query, paymentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("payment", paymentID)
		}
		return nil, mapPgError("find payment "+paymentID, err)
	}
	return &p, nil
}

func (r *PgxPaymentRepository) ListPayments(ctx context.Context, filter domain.PaymentFilter) ([]domain.Payment, *string, error) {
	w := &whereClause{}
	w.add(liveRows("", filter.Scope))
	if filter.Direction != "" {
		w.add("direction = " + w.arg(string(filter.Direction)))
	}
	if filter.InvoiceID != "" {
		w.add("invoice_id = " + w.arg(filter.InvoiceID))
	}
	if filter.BillID != "" {
		w.add("bill_id = " + w.arg(filter.BillID))
	}
	fetch, err := w.keyset("payment_id", filter.Limit, filter.NextToken)
	if err != nil {
		return nil, nil, err
	}

	query := fmt.Sprintf(`SELECT %s FROM payments%s ORDER BY created_at DESC, payment_id DESC LIMIT %d;`,
		paymentColumns, w.String(), fetch)
	rows, err := r.Pool.Query(ctx, query, w.args...)
	if err != nil {
		return nil, nil, mapPgError("list payments", err)
	}
	defer rows.Close()

	payments := make([]domain.Payment, 0)
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, nil, mapPgError("scan payment", err)
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, mapPgError("iterate payments", err)
	}
	page, token := trimPage(payments, fetch, func(p domain.Payment) (time.Time, string) { return p.CreatedAt, p.PaymentID })
	return page, token, nil
}
