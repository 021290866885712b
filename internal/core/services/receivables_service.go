package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/erp_ledger/internal/apperrors"
	"github.com/SscSPs/erp_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/erp_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/erp_ledger/internal/core/ports/services"
	"github.com/SscSPs/erp_ledger/internal/dto"
	"github.com/SscSPs/erp_ledger/internal/utils/accounting"
	"github.com/SscSPs/erp_ledger/internal/utils/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// receivablesService owns the invoice, bill and payment lifecycle. Ledger
// lines for recognition and settlement are built by the posting service and
// persisted in the same store transaction as the document or payment.
type receivablesService struct {
	BaseService
	documentRepo portsrepo.DocumentRepositoryFacade
	paymentRepo  portsrepo.PaymentRepositoryFacade
	accountRepo  portsrepo.AccountReader
	sequence     portsrepo.SequenceRepository
	posting      portssvc.PostingWriterSvc
	standard     domain.StandardAccounts
}

// ReceivablesServiceOption is a functional option for configuring the receivables service
type ReceivablesServiceOption func(*receivablesService)

// WithReceivablesClock overrides the clock used for audit and deletion timestamps.
func WithReceivablesClock(clock func() time.Time) ReceivablesServiceOption {
	return func(s *receivablesService) {
		s.Clock = clock
	}
}

// WithSettlementAccounts sets the account numbers documents and payments post against.
func WithSettlementAccounts(std domain.StandardAccounts) ReceivablesServiceOption {
	return func(s *receivablesService) {
		s.standard = std
	}
}

// NewReceivablesService creates a new receivables and payables service.
func NewReceivablesService(
	documentRepo portsrepo.DocumentRepositoryFacade,
	paymentRepo portsrepo.PaymentRepositoryFacade,
	accountRepo portsrepo.AccountReader,
	sequence portsrepo.SequenceRepository,
	posting portssvc.PostingWriterSvc,
	options ...ReceivablesServiceOption,
) portssvc.ReceivablesSvcFacade {
	svc := &receivablesService{
		documentRepo: documentRepo,
		paymentRepo:  paymentRepo,
		accountRepo:  accountRepo,
		sequence:     sequence,
		posting:      posting,
		standard:     domain.DefaultStandardAccounts(),
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.ReceivablesSvcFacade = (*receivablesService)(nil)

func checkKind(kind domain.DocumentKind) error {
	if !kind.IsValid() {
		return fmt.Errorf("%w: unknown document kind %q", apperrors.ErrValidation, kind)
	}
	return nil
}

func percentInRange(field string, v decimal.Decimal) error {
	if v.IsNegative() || v.GreaterThan(hundred) {
		return fmt.Errorf("%w: %s must be between 0 and 100, got %s", apperrors.ErrValidation, field, v.String())
	}
	return nil
}

// buildLineItems validates requested lines and assigns their ids. Totals are
// filled in by accounting.TotalLines.
func buildLineItems(documentID string, reqs []dto.LineItemRequest) ([]domain.LineItem, error) {
	items := make([]domain.LineItem, len(reqs))
	for i, r := range reqs {
		if !r.Quantity.IsPositive() {
			return nil, fmt.Errorf("%w: line %d quantity must be greater than zero", apperrors.ErrValidation, i+1)
		}
		if r.UnitPrice.IsNegative() {
			return nil, fmt.Errorf("%w: line %d unit price cannot be negative", apperrors.ErrValidation, i+1)
		}
		if err := percentInRange(fmt.Sprintf("line %d tax rate", i+1), r.TaxRate); err != nil {
			return nil, err
		}
		if err := percentInRange(fmt.Sprintf("line %d discount", i+1), r.DiscountPercent); err != nil {
			return nil, err
		}
		items[i] = domain.LineItem{
			LineItemID:      uuid.NewString(),
			DocumentID:      documentID,
			ProductID:       r.ProductID,
			BatchID:         r.BatchID,
			Description:     r.Description,
			Quantity:        r.Quantity,
			UnitPrice:       r.UnitPrice,
			TaxRate:         r.TaxRate,
			DiscountPercent: r.DiscountPercent,
			SortOrder:       i,
		}
	}
	return items, nil
}

func nonNegative(field string, v decimal.Decimal) error {
	if v.IsNegative() {
		return fmt.Errorf("%w: %s cannot be negative", apperrors.ErrValidation, field)
	}
	return nil
}

// applyTotals writes the header amounts of doc from totals. Nothing is paid yet.
func applyTotals(doc *domain.Document, totals accounting.DocumentTotals) error {
	if !totals.Total.IsPositive() {
		return fmt.Errorf("%w: %s total must be greater than zero, got %s",
			apperrors.ErrValidation, doc.Kind.Label(), totals.Total.StringFixed(2))
	}
	doc.Subtotal = totals.Subtotal
	doc.TaxAmount = totals.Tax
	doc.DiscountAmount = totals.Discount
	doc.TotalAmount = totals.Total
	doc.AmountDue = totals.Total.Sub(doc.AmountPaid)
	return nil
}

func (s *receivablesService) CreateDocument(ctx context.Context, kind domain.DocumentKind, req dto.CreateDocumentRequest, actorID string) (*domain.Document, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	issueDate, err := parseDate("issueDate", req.IssueDate)
	if err != nil {
		return nil, err
	}
	dueDate, err := parseDate("dueDate", req.DueDate)
	if err != nil {
		return nil, err
	}
	if dueDate.Before(issueDate) {
		return nil, fmt.Errorf("%w: due date %s is before issue date %s", apperrors.ErrValidation, req.DueDate, req.IssueDate)
	}
	for field, v := range map[string]decimal.Decimal{"subtotal": req.Subtotal, "taxAmount": req.TaxAmount, "discountAmount": req.DiscountAmount} {
		if err := nonNegative(field, v); err != nil {
			return nil, err
		}
	}

	doc := domain.Document{
		DocumentID:     uuid.NewString(),
		Kind:           kind,
		CounterpartyID: req.CounterpartyID,
		IssueDate:      issueDate,
		DueDate:        dueDate,
		AmountPaid:     decimal.Zero,
		Status:         domain.StatusDraft,
		Notes:          req.Notes,
		Version:        1,
	}

	var totals accounting.DocumentTotals
	if len(req.LineItems) > 0 {
		items, err := buildLineItems(doc.DocumentID, req.LineItems)
		if err != nil {
			return nil, err
		}
		totals = accounting.TotalLines(items, req.DiscountAmount)
		doc.LineItems = items
	} else {
		totals = accounting.HeaderTotals(req.Subtotal, req.TaxAmount, req.DiscountAmount)
		doc.LineItems = []domain.LineItem{}
	}
	if err := applyTotals(&doc, totals); err != nil {
		return nil, err
	}

	number, err := nextNumber(ctx, s.sequence, kind.NumberPrefix(), issueDate)
	if err != nil {
		return nil, err
	}
	doc.Number = number
	now := s.Now()
	doc.AuditFields = domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     actorID,
		LastUpdatedAt: now,
		LastUpdatedBy: actorID,
	}

	entries, err := s.recognitionEntries(ctx, doc, doc.TotalAmount, actorID)
	if err != nil {
		return nil, err
	}

	if err := s.documentRepo.SaveDocument(ctx, doc, entries); err != nil {
		s.LogError(ctx, err, "Failed to save document",
			slog.String("kind", string(kind)),
			slog.String("number", number))
		return nil, err
	}

	s.LogInfo(ctx, "Document created",
		slog.String("kind", string(kind)),
		slog.String("document_id", doc.DocumentID),
		slog.String("number", doc.Number),
		slog.String("total", doc.TotalAmount.StringFixed(2)))
	return &doc, nil
}

func (s *receivablesService) GetDocument(ctx context.Context, kind domain.DocumentKind, documentID string) (*domain.Document, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	return s.documentRepo.FindDocumentByID(ctx, kind, documentID, domain.ActiveOnly)
}

func (s *receivablesService) ListDocuments(ctx context.Context, kind domain.DocumentKind, params dto.ListDocumentsParams) (*dto.ListDocumentsResponse, error) {
	return s.listDocuments(ctx, kind, params, domain.ActiveOnly)
}

func (s *receivablesService) ListDocumentsIncludingDeleted(ctx context.Context, kind domain.DocumentKind, params dto.ListDocumentsParams) (*dto.ListDocumentsResponse, error) {
	s.LogInfo(ctx, "Listing documents including deleted", slog.String("kind", string(kind)))
	return s.listDocuments(ctx, kind, params, domain.IncludeDeleted)
}

func (s *receivablesService) listDocuments(ctx context.Context, kind domain.DocumentKind, params dto.ListDocumentsParams, scope domain.DeletedScope) (*dto.ListDocumentsResponse, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	filter := domain.DocumentFilter{
		Kind:           kind,
		CounterpartyID: params.CounterpartyID,
		Scope:          scope,
		Limit:          params.Limit,
		NextToken:      params.NextToken,
	}
	if params.Status != "" {
		status, err := domain.ParseDocumentStatus(kind, params.Status)
		if err != nil {
			return nil, err
		}
		filter.Status = status
	}

	docs, next, err := s.documentRepo.ListDocuments(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &dto.ListDocumentsResponse{Documents: docs, NextToken: next}, nil
}

// UpdateDocument applies a partial update. Amounts may only change while the
// document is a DRAFT with nothing paid.
func (s *receivablesService) UpdateDocument(ctx context.Context, kind domain.DocumentKind, documentID string, req dto.UpdateDocumentRequest, actorID string) (*domain.Document, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	doc, err := s.documentRepo.FindDocumentByID(ctx, kind, documentID, domain.ActiveOnly)
	if err != nil {
		return nil, err
	}
	if req.Version != 0 && req.Version != doc.Version {
		return nil, fmt.Errorf("%w: %s %s is at version %d, update expected %d",
			apperrors.ErrConcurrentModification, kind.Label(), doc.Number, doc.Version, req.Version)
	}
	if doc.Status == domain.StatusVoid {
		return nil, fmt.Errorf("%w: %s %s is void", apperrors.ErrInvalidTransition, kind.Label(), doc.Number)
	}

	if req.CounterpartyID != nil {
		doc.CounterpartyID = *req.CounterpartyID
	}
	if req.Notes != nil {
		doc.Notes = *req.Notes
	}
	if req.IssueDate != nil {
		if doc.IssueDate, err = parseDate("issueDate", *req.IssueDate); err != nil {
			return nil, err
		}
	}
	if req.DueDate != nil {
		if doc.DueDate, err = parseDate("dueDate", *req.DueDate); err != nil {
			return nil, err
		}
	}
	if doc.DueDate.Before(doc.IssueDate) {
		return nil, fmt.Errorf("%w: due date is before issue date", apperrors.ErrValidation)
	}

	previousTotal := doc.TotalAmount
	replaceLines, err := s.reprice(doc, req)
	if err != nil {
		return nil, err
	}
	entries, err := s.recognitionEntries(ctx, *doc, doc.TotalAmount.Sub(previousTotal), actorID)
	if err != nil {
		return nil, err
	}

	doc.LastUpdatedAt = s.Now()
	doc.LastUpdatedBy = actorID
	if err := s.documentRepo.UpdateDocument(ctx, *doc, replaceLines, entries); err != nil {
		if !errors.Is(err, apperrors.ErrConcurrentModification) {
			s.LogError(ctx, err, "Failed to update document", slog.String("document_id", documentID))
		}
		return nil, err
	}
	doc.Version++
	return doc, nil
}

// reprice recomputes the amounts of doc when the request touches them and
// reports whether the line items were replaced.
func (s *receivablesService) reprice(doc *domain.Document, req dto.UpdateDocumentRequest) (bool, error) {
	if req.Subtotal == nil && req.TaxAmount == nil && req.DiscountAmount == nil && req.LineItems == nil {
		return false, nil
	}
	if doc.Status != domain.StatusDraft || !doc.AmountPaid.IsZero() {
		return false, fmt.Errorf("%w: amounts of %s %s can only change while it is an unpaid draft",
			apperrors.ErrInvalidTransition, doc.Kind.Label(), doc.Number)
	}

	extraDiscount := decimal.Zero
	if req.DiscountAmount != nil {
		if err := nonNegative("discountAmount", *req.DiscountAmount); err != nil {
			return false, err
		}
		extraDiscount = *req.DiscountAmount
	}

	replaceLines := false
	if req.LineItems != nil {
		items, err := buildLineItems(doc.DocumentID, *req.LineItems)
		if err != nil {
			return false, err
		}
		doc.LineItems = items
		replaceLines = true
	}

	if len(doc.LineItems) > 0 {
		if req.Subtotal != nil || req.TaxAmount != nil {
			return false, fmt.Errorf("%w: subtotal and tax are derived from line items", apperrors.ErrValidation)
		}
		return replaceLines, applyTotals(doc, accounting.TotalLines(doc.LineItems, extraDiscount))
	}

	subtotal, tax, discount := doc.Subtotal, doc.TaxAmount, doc.DiscountAmount
	if req.Subtotal != nil {
		subtotal = *req.Subtotal
	}
	if req.TaxAmount != nil {
		tax = *req.TaxAmount
	}
	if req.DiscountAmount != nil {
		discount = *req.DiscountAmount
	}
	if err := nonNegative("subtotal", subtotal); err != nil {
		return false, err
	}
	if err := nonNegative("taxAmount", tax); err != nil {
		return false, err
	}
	return replaceLines, applyTotals(doc, accounting.HeaderTotals(subtotal, tax, discount))
}

func (s *receivablesService) UpdateStatus(ctx context.Context, kind domain.DocumentKind, documentID string, newStatus string, actorID string) (*domain.Document, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	status, err := domain.ParseDocumentStatus(kind, newStatus)
	if err != nil {
		return nil, err
	}
	doc, err := s.documentRepo.FindDocumentByID(ctx, kind, documentID, domain.ActiveOnly)
	if err != nil {
		return nil, err
	}
	if status == domain.StatusVoid {
		return s.void(ctx, doc, actorID)
	}
	return s.moveTo(ctx, doc, status, actorID)
}

func (s *receivablesService) moveTo(ctx context.Context, doc *domain.Document, status domain.DocumentStatus, actorID string) (*domain.Document, error) {
	if err := checkTransition(*doc, status); err != nil {
		return nil, err
	}
	from := doc.Status
	doc.Status = status
	doc.LastUpdatedAt = s.Now()
	doc.LastUpdatedBy = actorID
	if err := s.documentRepo.UpdateDocument(ctx, *doc, false, nil); err != nil {
		return nil, err
	}
	doc.Version++

	s.LogInfo(ctx, "Document status changed",
		slog.String("document_id", doc.DocumentID),
		slog.String("from", string(from)),
		slog.String("to", string(status)))
	return doc, nil
}

// VoidDocument cancels a document from any non-terminal state and reverses
// its recognition entries. Settlement postings stay on the ledger.
func (s *receivablesService) VoidDocument(ctx context.Context, kind domain.DocumentKind, documentID string, actorID string) (*domain.Document, error) {
	return s.UpdateStatus(ctx, kind, documentID, string(domain.StatusVoid), actorID)
}

// void reverses the recognition groups before the status write, so a failed
// status write can be retried. A retry finds the groups already reversed.
func (s *receivablesService) void(ctx context.Context, doc *domain.Document, actorID string) (*domain.Document, error) {
	if err := checkTransition(*doc, domain.StatusVoid); err != nil {
		return nil, err
	}
	_, err := s.posting.ReverseEntries(ctx, dto.ReverseEntriesRequest{
		ReferenceType: doc.Kind.ReferenceType(),
		ReferenceID:   doc.DocumentID,
		Reason:        fmt.Sprintf("%s %s voided", doc.Kind.Label(), doc.Number),
	}, actorID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) && !errors.Is(err, apperrors.ErrInvalidTransition) {
		s.LogError(ctx, err, "Failed to reverse recognition entries", slog.String("document_id", doc.DocumentID))
		return nil, err
	}
	return s.moveTo(ctx, doc, domain.StatusVoid, actorID)
}

func (s *receivablesService) SoftDeleteDocument(ctx context.Context, kind domain.DocumentKind, documentID string, actorID string) error {
	if err := checkKind(kind); err != nil {
		return err
	}
	if err := s.documentRepo.SoftDeleteDocument(ctx, kind, documentID, s.Now(), actorID); err != nil {
		return err
	}
	s.LogInfo(ctx, "Document soft-deleted",
		slog.String("kind", string(kind)),
		slog.String("document_id", documentID))
	return nil
}

func (s *receivablesService) RestoreDocument(ctx context.Context, kind domain.DocumentKind, documentID string, actorID string) error {
	if err := checkKind(kind); err != nil {
		return err
	}
	return s.documentRepo.RestoreDocument(ctx, kind, documentID, actorID)
}

// MarkOverdue moves past-due documents to OVERDUE. A document changed
// concurrently is skipped and picked up by the next run.
func (s *receivablesService) MarkOverdue(ctx context.Context, asOf time.Time, actorID string) (*dto.MarkOverdueResponse, error) {
	day := domain.DateOnly(asOf)
	resp := &dto.MarkOverdueResponse{}

	for _, kind := range []domain.DocumentKind{domain.KindInvoice, domain.KindBill} {
		docs, err := s.documentRepo.ListOutstandingDocuments(ctx, kind)
		if err != nil {
			return nil, err
		}
		sources := overdueSources(kind)

		moved := 0
		for i := range docs {
			doc := docs[i]
			if !domain.DateOnly(doc.DueDate).Before(day) || !statusIn(doc.Status, sources) {
				continue
			}
			if _, err := s.moveTo(ctx, &doc, domain.StatusOverdue, actorID); err != nil {
				if apperrors.IsRetryable(err) || errors.Is(err, apperrors.ErrNotFound) {
					s.LogError(ctx, err, "Skipping document in overdue run", slog.String("document_id", doc.DocumentID))
					continue
				}
				return nil, err
			}
			moved++
		}

		if kind == domain.KindBill {
			resp.Bills = moved
		} else {
			resp.Invoices = moved
		}
	}

	s.LogInfo(ctx, "Overdue run finished",
		slog.Int("invoices", resp.Invoices),
		slog.Int("bills", resp.Bills))
	return resp, nil
}

func statusIn(s domain.DocumentStatus, set []domain.DocumentStatus) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

func (s *receivablesService) standardAccountID(ctx context.Context, label, number string) (string, error) {
	acc, err := s.accountRepo.FindAccountByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return "", fmt.Errorf("%w: %s account %s is not set up", apperrors.ErrValidation, label, number)
		}
		return "", err
	}
	return acc.AccountID, nil
}

// recognitionEntries books amount of doc against its control account, dated
// the issue date: Dr AR / Cr Revenue for an invoice, Dr Inventory / Cr AP for
// a bill. A negative amount posts the mirror image. Zero posts nothing.
func (s *receivablesService) recognitionEntries(ctx context.Context, doc domain.Document, amount decimal.Decimal, actorID string) ([]domain.LedgerEntry, error) {
	if amount.IsZero() {
		return nil, nil
	}
	controlLabel, controlNumber := "accounts receivable", s.standard.AccountsReceivable
	offsetLabel, offsetNumber := "revenue", s.standard.Revenue
	if doc.Kind == domain.KindBill {
		controlLabel, controlNumber = "accounts payable", s.standard.AccountsPayable
		offsetLabel, offsetNumber = "inventory", s.standard.Inventory
	}
	controlAccountID, err := s.standardAccountID(ctx, controlLabel, controlNumber)
	if err != nil {
		return nil, err
	}
	offsetAccountID, err := s.standardAccountID(ctx, offsetLabel, offsetNumber)
	if err != nil {
		return nil, err
	}

	debitAccount, creditAccount := controlAccountID, offsetAccountID
	if doc.Kind == domain.KindBill {
		debitAccount, creditAccount = offsetAccountID, controlAccountID
	}
	if amount.IsNegative() {
		debitAccount, creditAccount = creditAccount, debitAccount
		amount = amount.Neg()
	}
	return s.posting.PrepareEntries(ctx, dto.PostEntriesRequest{
		EntryDate:     domain.DateOnly(doc.IssueDate).Format(dateLayout),
		Description:   fmt.Sprintf("%s %s", doc.Kind.Label(), doc.Number),
		ReferenceType: doc.Kind.ReferenceType(),
		ReferenceID:   doc.DocumentID,
		Lines: []dto.EntryLineRequest{
			{AccountID: debitAccount, Debit: amount},
			{AccountID: creditAccount, Credit: amount},
		},
	}, actorID)
}

// RecordPayment applies cash to a document. The payment row, its ledger lines
// and the document's new amounts are written together, guarded by the
// document version read here.
func (s *receivablesService) RecordPayment(ctx context.Context, kind domain.DocumentKind, documentID string, req dto.RecordPaymentRequest, actorID string) (*domain.Payment, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: payment amount must be greater than zero", apperrors.ErrValidation)
	}
	method, err := domain.ParsePaymentMethod(req.Method)
	if err != nil {
		return nil, err
	}
	paymentDate, err := parseDate("paymentDate", req.PaymentDate)
	if err != nil {
		return nil, err
	}

	doc, err := s.documentRepo.FindDocumentByID(ctx, kind, documentID, domain.ActiveOnly)
	if err != nil {
		return nil, err
	}
	if !acceptsPayment(doc.Status) {
		return nil, fmt.Errorf("%w: cannot record a payment against %s %s in status %s",
			apperrors.ErrInvalidTransition, kind.Label(), doc.Number, doc.Status)
	}
	if req.Amount.GreaterThan(doc.AmountDue) {
		return nil, fmt.Errorf("%w: payment %s exceeds amount due %s on %s %s",
			apperrors.ErrOverpayment, req.Amount.StringFixed(2), doc.AmountDue.StringFixed(2), kind.Label(), doc.Number)
	}

	cashAccountID := ""
	if req.BankAccountID != nil && *req.BankAccountID != "" {
		cashAccountID = *req.BankAccountID
	} else if cashAccountID, err = s.standardAccountID(ctx, "cash", s.standard.Cash); err != nil {
		return nil, err
	}
	controlLabel, controlNumber := "accounts receivable", s.standard.AccountsReceivable
	if kind == domain.KindBill {
		controlLabel, controlNumber = "accounts payable", s.standard.AccountsPayable
	}
	controlAccountID, err := s.standardAccountID(ctx, controlLabel, controlNumber)
	if err != nil {
		return nil, err
	}

	direction := kind.PaymentDirection()
	paymentNumber, err := nextNumber(ctx, s.sequence, direction.NumberPrefix(), paymentDate)
	if err != nil {
		return nil, err
	}
	paymentID := uuid.NewString()

	debitAccount, creditAccount := cashAccountID, controlAccountID
	if direction == domain.PaymentSent {
		debitAccount, creditAccount = controlAccountID, cashAccountID
	}
	description := fmt.Sprintf("Payment %s for %s %s", paymentNumber, kind.Label(), doc.Number)
	entries, err := s.posting.PrepareEntries(ctx, dto.PostEntriesRequest{
		EntryDate:     req.PaymentDate,
		Description:   description,
		ReferenceType: domain.RefPayment,
		ReferenceID:   paymentID,
		Lines: []dto.EntryLineRequest{
			{AccountID: debitAccount, Debit: req.Amount},
			{AccountID: creditAccount, Credit: req.Amount},
		},
	}, actorID)
	if err != nil {
		return nil, err
	}

	now := s.Now()
	updated := *doc
	updated.AmountPaid = doc.AmountPaid.Add(req.Amount)
	updated.AmountDue = doc.TotalAmount.Sub(updated.AmountPaid)
	updated.Status = accounting.SettlementStatus(doc.Status, doc.TotalAmount, updated.AmountDue)
	updated.LastUpdatedAt = now
	updated.LastUpdatedBy = actorID

	payment := domain.Payment{
		PaymentID:       paymentID,
		PaymentNumber:   paymentNumber,
		Direction:       direction,
		PaymentDate:     paymentDate,
		Amount:          req.Amount,
		Method:          method,
		ReferenceNumber: req.ReferenceNumber,
		BankAccountID:   req.BankAccountID,
		EntryNumber:     entries[0].EntryNumber,
		Notes:           req.Notes,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actorID,
			LastUpdatedAt: now,
			LastUpdatedBy: actorID,
		},
	}
	if kind == domain.KindBill {
		payment.BillID = &doc.DocumentID
	} else {
		payment.InvoiceID = &doc.DocumentID
	}

	err = s.paymentRepo.ApplyPayment(ctx, domain.PaymentApplication{
		Document: updated,
		Payment:  payment,
		Entries:  entries,
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrConcurrentModification) {
			s.LogError(ctx, err, "Failed to apply payment",
				slog.String("document_id", documentID),
				slog.String("payment_number", paymentNumber))
		}
		return nil, err
	}

	s.LogInfo(ctx, "Payment recorded",
		slog.String("payment_number", paymentNumber),
		slog.String("document_number", doc.Number),
		slog.String("amount", req.Amount.StringFixed(2)),
		slog.String("amount_due", updated.AmountDue.StringFixed(2)),
		slog.String("status", string(updated.Status)))
	return &payment, nil
}

func (s *receivablesService) GetPayment(ctx context.Context, paymentID string) (*domain.Payment, error) {
	return s.paymentRepo.FindPaymentByID(ctx, paymentID, domain.ActiveOnly)
}

func (s *receivablesService) ListPayments(ctx context.Context, params dto.ListPaymentsParams) (*dto.ListPaymentsResponse, error) {
	return s.listPayments(ctx, params, domain.ActiveOnly)
}

func (s *receivablesService) ListPaymentsIncludingDeleted(ctx context.Context, params dto.ListPaymentsParams) (*dto.ListPaymentsResponse, error) {
	s.LogInfo(ctx, "Listing payments including deleted")
	return s.listPayments(ctx, params, domain.IncludeDeleted)
}

func (s *receivablesService) listPayments(ctx context.Context, params dto.ListPaymentsParams, scope domain.DeletedScope) (*dto.ListPaymentsResponse, error) {
	if err := validateRequest(params); err != nil {
		return nil, err
	}
	payments, next, err := s.paymentRepo.ListPayments(ctx, domain.PaymentFilter{
		Direction: domain.PaymentDirection(params.Direction),
		InvoiceID: params.InvoiceID,
		BillID:    params.BillID,
		Scope:     scope,
		Limit:     params.Limit,
		NextToken: params.NextToken,
	})
	if err != nil {
		return nil, err
	}
	return &dto.ListPaymentsResponse{Payments: payments, NextToken: next}, nil
}

// PaymentsForDocument returns every live payment applied to a live document.
func (s *receivablesService) PaymentsForDocument(ctx context.Context, kind domain.DocumentKind, documentID string) ([]domain.Payment, error) {
	if _, err := s.GetDocument(ctx, kind, documentID); err != nil {
		return nil, err
	}
	filter := domain.PaymentFilter{Scope: domain.ActiveOnly, Limit: pagination.MaxLimit}
	if kind == domain.KindBill {
		filter.BillID = documentID
	} else {
		filter.InvoiceID = documentID
	}

	out := make([]domain.Payment, 0)
	for {
		page, next, err := s.paymentRepo.ListPayments(ctx, filter)
		if err != nil {
			return nil, err
		}
		out = append(out, page...)
		if next == nil {
			return out, nil
		}
		filter.NextToken = next
	}
}

// SoftDeletePayment hides a payment. The document amounts and the ledger
// posting are left as they are.
func (s *receivablesService) SoftDeletePayment(ctx context.Context, paymentID string, actorID string) error {
	if err := s.paymentRepo.SoftDeletePayment(ctx, paymentID, s.Now(), actorID); err != nil {
		return err
	}
	s.LogInfo(ctx, "Payment soft-deleted", slog.String("payment_id", paymentID))
	return nil
}

func (s *receivablesService) RestorePayment(ctx context.Context, paymentID string, actorID string) error {
	return s.paymentRepo.RestorePayment(ctx, paymentID, actorID)
}
