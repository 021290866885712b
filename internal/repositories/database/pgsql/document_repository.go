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

// docTable maps a document kind onto its table and key columns.
type docTable struct {
	table     string
	idCol     string
	numberCol string
	partyCol  string
}

var docTables = map[domain.DocumentKind]docTable{
	domain.KindInvoice: {table: "invoices", idCol: "invoice_id", numberCol: "invoice_number", partyCol: "customer_id"},
	domain.KindBill:    {table: "bills", idCol: "bill_id", numberCol: "bill_number", partyCol: "vendor_id"},
}

func tableFor(kind domain.DocumentKind) (docTable, error) {
	t, ok := docTables[kind]
	if !ok {
		return docTable{}, fmt.Errorf("%w: unknown document kind %q", apperrors.ErrValidation, kind)
	}
	return t, nil
}

func (t docTable) columns() string {
	return t.idCol + ", " + t.numberCol + ", " + t.partyCol + `, issue_date, due_date, subtotal, tax_amount,
	discount_amount, total_amount, amount_paid, amount_due, status, notes, version, deleted_at,
	created_at, created_by, last_updated_at, last_updated_by`
}

func scanDocument(row pgx.Row, kind domain.DocumentKind) (domain.Document, error) {
	d := domain.Document{Kind: kind}
	var status string
	err := row.Scan(
		&d.DocumentID,
		&d.Number,
		&d.CounterpartyID,
		&d.IssueDate,
		&d.DueDate,
		&d.Subtotal,
		&d.TaxAmount,
		&d.DiscountAmount,
		&d.TotalAmount,
		&d.AmountPaid,
		&d.AmountDue,
		&status,
		&d.Notes,
		&d.Version,
		&d.DeletedAt,
		&d.CreatedAt,
		&d.CreatedBy,
		&d.LastUpdatedAt,
		&d.LastUpdatedBy,
	)
	d.Status = domain.DocumentStatus(status)
	return d, err
}

func collectDocuments(rows pgx.Rows, kind domain.DocumentKind) ([]domain.Document, error) {
	defer rows.Close()
	out := make([]domain.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows, kind)
		if err != nil {
			return nil, mapPgError("scan "+kind.Label(), err)
		}
		out = append(out, d)
	}
	return out, mapPgError("iterate "+kind.Label()+"s", rows.Err())
}

type PgxDocumentRepository struct {
	BaseRepository
}

func newPgxDocumentRepository(pool *pgxpool.Pool) portsrepo.DocumentRepositoryFacade {
	return &PgxDocumentRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.DocumentRepositoryFacade = (*PgxDocumentRepository)(nil)

const lineItemColumns = `line_item_id, document_kind, document_id, product_id, batch_id, description,
	quantity, unit_price, tax_rate, discount_percent, line_total, sort_order`

func queueLineItems(batch *pgx.Batch, kind domain.DocumentKind, documentID string, items []domain.LineItem) {
	query := `INSERT INTO document_line_items (` + lineItemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);`
	for _, li := range items {
		batch.Queue(query,
			li.LineItemID,
			string(kind),
			documentID,
			li.ProductID,
			li.BatchID,
			li.Description,
			li.Quantity,
			li.UnitPrice,
			li.TaxRate,
			li.DiscountPercent,
			li.LineTotal,
			li.SortOrder,
		)
	}
}

func (r *PgxDocumentRepository) loadLineItems(ctx context.Context, q querier, kind domain.DocumentKind, documentID string) ([]domain.LineItem, error) {
	query := `SELECT line_item_id, document_id, product_id, batch_id, description, quantity, unit_price,
			tax_rate, discount_percent, line_total, sort_order
		FROM document_line_items
		WHERE document_kind = $1 AND document_id = $2
		ORDER BY sort_order, line_item_id;`
	rows, err := q.Query(ctx, query, string(kind), documentID)
	if err != nil {
		return nil, mapPgError("load line items", err)
	}
	defer rows.Close()

	items := make([]domain.LineItem, 0)
	for rows.Next() {
		var li domain.LineItem
		if err := rows.Scan(
			&li.LineItemID,
			&li.DocumentID,
			&li.ProductID,
			&li.BatchID,
			&li.Description,
			&li.Quantity,
			&li.UnitPrice,
			&li.TaxRate,
			&li.DiscountPercent,
			&li.LineTotal,
			&li.SortOrder,
		); err != nil {
			return nil, mapPgError("scan line item", err)
		}
		items = append(items, li)
	}
	return items, mapPgError("iterate line items", rows.Err())
}

// SaveDocument inserts the header, its line items and its recognition
// entries in one transaction.
func (r *PgxDocumentRepository) SaveDocument(ctx context.Context, doc domain.Document, entries []domain.LedgerEntry) error {
	t, err := tableFor(doc.Kind)
	if err != nil {
		return err
	}
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	batch := &pgx.Batch{}
	batch.Queue(fmt.Sprintf(`INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19);`,
		t.table, t.columns()),
		doc.DocumentID,
		doc.Number,
		doc.CounterpartyID,
		domain.DateOnly(doc.IssueDate),
		domain.DateOnly(doc.DueDate),
		doc.Subtotal,
		doc.TaxAmount,
		doc.DiscountAmount,
		doc.TotalAmount,
		doc.AmountPaid,
		doc.AmountDue,
		string(doc.Status),
		doc.Notes,
		doc.Version,
		doc.DeletedAt,
		doc.CreatedAt,
		doc.CreatedBy,
		doc.LastUpdatedAt,
		doc.LastUpdatedBy,
	)
	queueLineItems(batch, doc.Kind, doc.DocumentID, doc.LineItems)
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return mapPgError("save "+doc.Kind.Label()+" "+doc.Number, err)
	}
	if len(entries) > 0 {
		if err := insertEntryGroup(ctx, tx, entries); err != nil {
			return err
		}
	}
	return r.Commit(ctx, tx)
}

// versionConflict explains why a guarded UPDATE touched no row.
func versionConflict(ctx context.Context, q querier, t docTable, kind domain.DocumentKind, documentID string, expected int64) error {
	var version int64
	err := q.QueryRow(ctx,
		fmt.Sprintf(`SELECT version FROM %s WHERE %s = $1 AND %s;`, t.table, t.idCol, liveRows("", domain.ActiveOnly)),
		documentID,
	).Scan(&version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFoundError(kind.Label(), documentID)
		}
		return mapPgError("read "+kind.Label()+" version", err)
	}
	return fmt.Errorf("%w: %s %s is at version %d, update expected %d",
		apperrors.ErrConcurrentModification, kind.Label(), documentID, version, expected)
}

// UpdateDocument is guarded by the version the caller read.
func (r *PgxDocumentRepository) UpdateDocument(ctx context.Context, doc domain.Document, replaceLines bool, entries []domain.LedgerEntry) error {
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
		SET %s = $2, issue_date = $3, due_date = $4, subtotal = $5, tax_amount = $6, discount_amount = $7,
			total_amount = $8, amount_paid = $9, amount_due = $10, status = $11, notes = $12,
			last_updated_at = $13, last_updated_by = $14, version = version + 1
		WHERE %s = $1 AND version = $15 AND %s;`,
		t.table, t.partyCol, t.idCol, liveRows("", domain.ActiveOnly))
	tag, err := tx.Exec(ctx, query,
		doc.DocumentID,
		doc.CounterpartyID,
		domain.DateOnly(doc.IssueDate),
		domain.DateOnly(doc.DueDate),
		doc.Subtotal,
		doc.TaxAmount,
		doc.DiscountAmount,
		doc.TotalAmount,
		doc.AmountPaid,
		doc.AmountDue,
		string(doc.Status),
		doc.Notes,
		doc.LastUpdatedAt,
		doc.LastUpdatedBy,
		doc.Version,
	)
	if err != nil {
		return mapPgError("update "+doc.Kind.Label()+" "+doc.DocumentID, err)
	}
	if tag.RowsAffected() == 0 {
		return versionConflict(ctx, tx, t, doc.Kind, doc.DocumentID, doc.Version)
	}

	if replaceLines {
		batch := &pgx.Batch{}
		batch.Queue(`DELETE FROM document_line_items WHERE document_kind = $1 AND document_id = $2;`,
			string(doc.Kind), doc.DocumentID)
		queueLineItems(batch, doc.Kind, doc.DocumentID, doc.LineItems)
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return mapPgError("replace line items", err)
		}
	}
	if len(entries) > 0 {
		if err := insertEntryGroup(ctx, tx, entries); err != nil {
			return err
		}
	}
	return r.Commit(ctx, tx)
}

// setDeleted stamps deleted_at with at, or clears it when at is nil. A row
// already in the target state is left untouched.
func (r *PgxDocumentRepository) setDeleted(ctx context.Context, kind domain.DocumentKind, documentID string, at *time.Time, actorID string) error {
	t, err := tableFor(kind)
	if err != nil {
		return err
	}
	guard := "deleted_at IS NULL"
	if at == nil {
		guard = "deleted_at IS NOT NULL"
	}
	updatedAt := time.Now().UTC()
	if at != nil {
		updatedAt = *at
	}
	query := fmt.Sprintf(`
		UPDATE %s SET deleted_at = $2, version = version + 1, last_updated_at = $3, last_updated_by = $4
		WHERE %s = $1 AND %s;`, t.table, t.idCol, guard)
	tag, err := r.Pool.Exec(ctx, query, documentID, at, updatedAt, actorID)
	if err != nil {
		return mapPgError("soft delete "+kind.Label()+" "+documentID, err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	if err := r.Pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1);`, t.table, t.idCol), documentID,
	).Scan(&exists); err != nil {
		return mapPgError("check "+kind.Label()+" exists", err)
	}
	if !exists {
		return apperrors.NewNotFoundError(kind.Label(), documentID)
	}
	return nil
}

func (r *PgxDocumentRepository) SoftDeleteDocument(ctx context.Context, kind domain.DocumentKind, documentID string, at time.Time, actorID string) error {
	return r.setDeleted(ctx, kind, documentID, &at, actorID)
}

func (r *PgxDocumentRepository) RestoreDocument(ctx context.Context, kind domain.DocumentKind, documentID string, actorID string) error {
	return r.setDeleted(ctx, kind, documentID, nil, actorID)
}

func (r *PgxDocumentRepository) FindDocumentByID(ctx context.Context, kind domain.DocumentKind, documentID string, scope domain.DeletedScope) (*domain.Document, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s;`,
		t.columns(), t.table, t.idCol, liveRows("", scope))
	d, err := scanDocument(r.Pool.QueryRow(ctx, query, documentID), kind)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError(kind.Label(), documentID)
		}
		return nil, mapPgError("find "+kind.Label()+" "+documentID, err)
	}
	if d.LineItems, err = r.loadLineItems(ctx, r.Pool, kind, documentID); err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *PgxDocumentRepository) ListDocuments(ctx context.Context, filter domain.DocumentFilter) ([]domain.Document, *string, error) {
	t, err := tableFor(filter.Kind)
	if err != nil {
		return nil, nil, err
	}
	w := &whereClause{}
	w.add(liveRows("", filter.Scope))
	if filter.Status != "" {
		w.add("status = " + w.arg(string(filter.Status)))
	}
	if filter.CounterpartyID != "" {
		w.add(t.partyCol + " = " + w.arg(filter.CounterpartyID))
	}
	fetch, err := w.keyset(t.idCol, filter.Limit, filter.NextToken)
	if err != nil {
		return nil, nil, err
	}

	query := fmt.Sprintf(`SELECT %s FROM %s%s ORDER BY created_at DESC, %s DESC LIMIT %d;`,
		t.columns(), t.table, w.String(), t.idCol, fetch)
	rows, err := r.Pool.Query(ctx, query, w.args...)
	if err != nil {
		return nil, nil, mapPgError("list "+filter.Kind.Label()+"s", err)
	}
	docs, err := collectDocuments(rows, filter.Kind)
	if err != nil {
		return nil, nil, err
	}
	page, token := trimPage(docs, fetch, func(d domain.Document) (time.Time, string) { return d.CreatedAt, d.DocumentID })
	return page, token, nil
}

func (r *PgxDocumentRepository) ListOutstandingDocuments(ctx context.Context, kind domain.DocumentKind) ([]domain.Document, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE %s AND status NOT IN ('VOID', 'PAID') AND amount_due > 0
		ORDER BY due_date, %s;`,
		t.columns(), t.table, liveRows("", domain.ActiveOnly), t.numberCol)
	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, mapPgError("list outstanding "+kind.Label()+"s", err)
	}
	return collectDocuments(rows, kind)
}
