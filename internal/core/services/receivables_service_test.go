package services_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/SscSPs/erp_ledger/internal/apperrors"
	"github.com/SscSPs/erp_ledger/internal/core/domain"
	"github.com/SscSPs/erp_ledger/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type receivablesSuite struct {
	ledgerSuite
}

func TestReceivablesService(t *testing.T) {
	suite.Run(t, new(receivablesSuite))
}

func (s *receivablesSuite) TestPartialThenFullPayment() {
	inv := s.issue(s.newDocument(domain.KindInvoice, "1000.00", "80.00", day(-5), day(25)))
	s.Equal("INV-2026-000001", inv.Number)
	s.True(inv.TotalAmount.Equal(dec("1080.00")))

	first, err := s.pay(inv, "500.00")
	s.Require().NoError(err)
	s.Equal(domain.PaymentReceived, first.Direction)
	s.Equal("PMT-RCV-2026-000001", first.PaymentNumber)

	after, err := s.receivables.GetDocument(s.ctx, domain.KindInvoice, inv.DocumentID)
	s.Require().NoError(err)
	s.Equal(domain.StatusPartial, after.Status)
	s.True(after.AmountPaid.Equal(dec("500")))
	s.True(after.AmountDue.Equal(dec("580")))

	group, err := s.posting.GetEntryGroup(s.ctx, first.EntryNumber)
	s.Require().NoError(err)
	s.Equal(domain.RefPayment, group.ReferenceType)
	s.Equal(first.PaymentID, group.ReferenceID)
	for _, l := range group.Lines {
		switch l.AccountID {
		case s.accountID("1000"):
			s.True(l.Debit.Equal(dec("500")))
		case s.accountID("1200"):
			s.True(l.Credit.Equal(dec("500")))
		default:
			s.Failf("unexpected account", "line posted to %s", l.AccountID)
		}
	}

	_, err = s.pay(after, "580.00")
	s.Require().NoError(err)

	paid, err := s.receivables.GetDocument(s.ctx, domain.KindInvoice, inv.DocumentID)
	s.Require().NoError(err)
	s.Equal(domain.StatusPaid, paid.Status)
	s.True(paid.AmountDue.IsZero())
	s.True(s.balance("1000").Equal(dec("1080")))

	payments, err := s.receivables.PaymentsForDocument(s.ctx, domain.KindInvoice, inv.DocumentID)
	s.Require().NoError(err)
	s.Len(payments, 2)
}

func (s *receivablesSuite) TestPaymentsOnFreshInvoice() {
	inv := s.newDocument(domain.KindInvoice, "1000.00", "80.00", day(0), day(30))
	s.Equal(domain.StatusDraft, inv.Status)
	s.True(inv.TotalAmount.Equal(dec("1080.00")))

	_, err := s.pay(inv, "500.00")
	s.Require().NoError(err)

	doc, err := s.receivables.GetDocument(s.ctx, domain.KindInvoice, inv.DocumentID)
	s.Require().NoError(err)
	s.True(doc.AmountDue.Equal(dec("580.00")))
	s.Equal(domain.StatusPartial, doc.Status)

	fresh := s.newDocument(domain.KindInvoice, "1000.00", "80.00", day(0), day(30))
	_, err = s.pay(fresh, "1200.00")
	s.ErrorIs(err, apperrors.ErrOverpayment)
	s.Contains(err.Error(), "exceeds amount due 1080.00")
}

func (s *receivablesSuite) TestRecognitionKeepsControlAccountsInStep() {
	inv := s.issue(s.newDocument(domain.KindInvoice, "1000.00", "80.00", day(-5), day(25)))
	s.True(s.balance("1200").Equal(dec("1080")), "issuing debits accounts receivable")
	s.True(s.balance("4000").Equal(dec("1080")), "issuing credits revenue")

	_, err := s.pay(inv, "500.00")
	s.Require().NoError(err)

	doc, err := s.receivables.GetDocument(s.ctx, domain.KindInvoice, inv.DocumentID)
	s.Require().NoError(err)
	s.True(s.balance("1200").Equal(doc.AmountDue), "receivables equal the amount due")
	s.True(s.balance("1200").Equal(dec("580")))
	s.True(s.balance("1000").Equal(dec("500")))

	recognition, err := s.posting.ListEntries(s.ctx, dto.ListEntriesParams{AccountID: s.accountID("4000"), Limit: 50})
	s.Require().NoError(err)
	s.Require().Len(recognition.Entries, 1)
	s.Equal(domain.RefInvoice, recognition.Entries[0].ReferenceType)
	s.Equal(inv.DocumentID, recognition.Entries[0].ReferenceID)

	bill := s.newDocument(domain.KindBill, "600.00", "0", day(-3), day(27))
	s.True(s.balance("2000").Equal(dec("600")), "a bill credits accounts payable")
	s.True(s.balance("1300").Equal(dec("600")), "and debits inventory")

	_, err = s.receivables.VoidDocument(s.ctx, domain.KindBill, bill.DocumentID, testActor)
	s.Require().NoError(err)
	s.True(s.balance("2000").IsZero(), "voiding reverses the recognition")
	s.True(s.balance("1300").IsZero())

	groups, err := s.reporting.FindUnbalancedGroups(s.ctx)
	s.Require().NoError(err)
	s.Empty(groups)
}

func (s *receivablesSuite) TestCreateWithoutOpenPeriodPostsNothing() {
	_, err := s.receivables.CreateDocument(s.ctx, domain.KindInvoice, dto.CreateDocumentRequest{
		CounterpartyID: "cp-1",
		IssueDate:      "2025-06-30",
		DueDate:        "2025-07-30",
		Subtotal:       dec("100"),
	}, testActor)
	s.ErrorIs(err, apperrors.ErrValidation)

	_, err = s.periods.Close(s.ctx, s.period.PeriodID, testActor)
	s.Require().NoError(err)
	_, err = s.receivables.CreateDocument(s.ctx, domain.KindInvoice, dto.CreateDocumentRequest{
		CounterpartyID: "cp-1",
		IssueDate:      day(0),
		DueDate:        day(30),
		Subtotal:       dec("100"),
	}, testActor)
	s.ErrorIs(err, apperrors.ErrPeriodLocked)

	list, err := s.receivables.ListDocumentsIncludingDeleted(s.ctx, domain.KindInvoice, dto.ListDocumentsParams{Limit: 50})
	s.Require().NoError(err)
	s.Empty(list.Documents)
}

func (s *receivablesSuite) TestOverpaymentRejected() {
	inv := s.issue(s.newDocument(domain.KindInvoice, "1000.00", "80.00", day(-5), day(25)))
	_, err := s.pay(inv, "500.00")
	s.Require().NoError(err)

	_, err = s.pay(inv, "600.00")
	s.ErrorIs(err, apperrors.ErrOverpayment)

	doc, err := s.receivables.GetDocument(s.ctx, domain.KindInvoice, inv.DocumentID)
	s.Require().NoError(err)
	s.True(doc.AmountPaid.Equal(dec("500")), "rejected payment leaves the document untouched")
	s.True(s.balance("1000").Equal(dec("500")), "rejected payment posts nothing")
}

func (s *receivablesSuite) TestPaymentRejections() {
	draft := s.newDocument(domain.KindInvoice, "100", "0", day(0), day(30))
	tests := []struct {
		name   string
		method string
		amount string
		errIs  error
	}{
		{"zero amount", string(domain.MethodCheck), "0", apperrors.ErrValidation},
		{"unknown method", "BARTER", "10", apperrors.ErrValidation},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.receivables.RecordPayment(s.ctx, domain.KindInvoice, draft.DocumentID, dto.RecordPaymentRequest{
				Amount:      dec(tt.amount),
				Method:      tt.method,
				PaymentDate: day(0),
			}, testActor)
			s.ErrorIs(err, tt.errIs)
		})
	}

	voided, err := s.receivables.VoidDocument(s.ctx, domain.KindInvoice, draft.DocumentID, testActor)
	s.Require().NoError(err)
	_, err = s.pay(voided, "10")
	s.ErrorIs(err, apperrors.ErrInvalidTransition)
	s.True(s.balance("1200").IsZero(), "a voided draft leaves nothing receivable")
}

func (s *receivablesSuite) TestBillPaymentCreditsCash() {
	bill := s.issue(s.newDocument(domain.KindBill, "2400.00", "0", day(-10), day(20)))
	s.Equal("BILL-2026-000001", bill.Number)
	s.Equal(domain.StatusPending, bill.Status)

	payment, err := s.pay(bill, "400.00")
	s.Require().NoError(err)
	s.Equal(domain.PaymentSent, payment.Direction)
	s.Require().NotNil(payment.BillID)
	s.Nil(payment.InvoiceID)

	s.True(s.balance("1000").Equal(dec("-400")))
	s.True(s.balance("2000").Equal(dec("2000")), "paying a bill debits accounts payable")
	s.True(s.balance("1300").Equal(dec("2400")))

	doc, err := s.receivables.GetDocument(s.ctx, domain.KindBill, bill.DocumentID)
	s.Require().NoError(err)
	s.Equal(domain.StatusPartial, doc.Status)
}

func (s *receivablesSuite) TestConcurrentPaymentsNeverOverpay() {
	inv := s.issue(s.newDocument(domain.KindInvoice, "1000.00", "80.00", day(-5), day(25)))

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		failures  []error
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.pay(inv, "1080.00")
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures = append(failures, err)
				return
			}
			succeeded++
		}()
	}
	wg.Wait()

	s.Equal(1, succeeded, "exactly one full payment may land")
	for _, err := range failures {
		s.True(errors.Is(err, apperrors.ErrConcurrentModification) || errors.Is(err, apperrors.ErrOverpayment),
			"unexpected error: %v", err)
	}

	doc, err := s.receivables.GetDocument(s.ctx, domain.KindInvoice, inv.DocumentID)
	s.Require().NoError(err)
	s.Equal(domain.StatusPaid, doc.Status)
	s.True(doc.AmountPaid.Equal(dec("1080")))
	s.True(s.balance("1000").Equal(dec("1080")), "losing writers post nothing")
}

func (s *receivablesSuite) TestLineItemTotals() {
	doc, err := s.receivables.CreateDocument(s.ctx, domain.KindInvoice, dto.CreateDocumentRequest{
		CounterpartyID: "dispensary-42",
		IssueDate:      day(0),
		DueDate:        day(30),
		DiscountAmount: dec("8.72"),
		LineItems: []dto.LineItemRequest{
			{Description: "Pre-rolls 1g", Quantity: dec("10"), UnitPrice: dec("25.00"), TaxRate: dec("15"), DiscountPercent: dec("10")},
			{Description: "Tincture 30ml", Quantity: dec("3"), UnitPrice: dec("19.99")},
		},
	}, testActor)
	s.Require().NoError(err)

	s.Require().Len(doc.LineItems, 2)
	s.True(doc.LineItems[0].LineTotal.Equal(dec("258.75")))
	s.True(doc.LineItems[1].LineTotal.Equal(dec("59.97")))
	s.True(doc.Subtotal.Equal(dec("309.97")))
	s.True(doc.TaxAmount.Equal(dec("33.75")))
	s.True(doc.DiscountAmount.Equal(dec("33.72")))
	s.True(doc.TotalAmount.Equal(dec("310.00")))
	s.True(doc.AmountDue.Equal(doc.TotalAmount))
	s.Equal(domain.StatusDraft, doc.Status)
	s.Equal(int64(1), doc.Version)
}

func (s *receivablesSuite) TestCreateDocument_Validation() {
	tests := []struct {
		name string
		req  dto.CreateDocumentRequest
	}{
		{"due before issue", dto.CreateDocumentRequest{CounterpartyID: "c", IssueDate: day(0), DueDate: day(-1), Subtotal: dec("10")}},
		{"zero total", dto.CreateDocumentRequest{CounterpartyID: "c", IssueDate: day(0), DueDate: day(1)}},
		{"negative tax", dto.CreateDocumentRequest{CounterpartyID: "c", IssueDate: day(0), DueDate: day(1), Subtotal: dec("10"), TaxAmount: dec("-1")}},
		{"missing counterparty", dto.CreateDocumentRequest{IssueDate: day(0), DueDate: day(1), Subtotal: dec("10")}},
		{"tax rate over 100", dto.CreateDocumentRequest{CounterpartyID: "c", IssueDate: day(0), DueDate: day(1), LineItems: []dto.LineItemRequest{
			{Description: "x", Quantity: dec("1"), UnitPrice: dec("1"), TaxRate: dec("101")},
		}}},
		{"zero quantity", dto.CreateDocumentRequest{CounterpartyID: "c", IssueDate: day(0), DueDate: day(1), LineItems: []dto.LineItemRequest{
			{Description: "x", Quantity: dec("0"), UnitPrice: dec("1")},
		}}},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.receivables.CreateDocument(s.ctx, domain.KindInvoice, tt.req, testActor)
			s.ErrorIs(err, apperrors.ErrValidation)
		})
	}
}

func (s *receivablesSuite) TestUpdateDocument() {
	draft := s.newDocument(domain.KindInvoice, "100.00", "0", day(0), day(30))

	subtotal := dec("150.00")
	updated, err := s.receivables.UpdateDocument(s.ctx, domain.KindInvoice, draft.DocumentID, dto.UpdateDocumentRequest{
		Subtotal: &subtotal,
		Version:  draft.Version,
	}, testActor)
	s.Require().NoError(err)
	s.True(updated.TotalAmount.Equal(dec("150")))
	s.Equal(draft.Version+1, updated.Version)
	s.True(s.balance("1200").Equal(dec("150")), "repricing a draft posts the difference")

	_, err = s.receivables.UpdateDocument(s.ctx, domain.KindInvoice, draft.DocumentID, dto.UpdateDocumentRequest{
		Subtotal: &subtotal,
		Version:  draft.Version,
	}, testActor)
	s.ErrorIs(err, apperrors.ErrConcurrentModification, "stale version")

	sent := s.issue(updated)
	_, err = s.receivables.UpdateDocument(s.ctx, domain.KindInvoice, sent.DocumentID, dto.UpdateDocumentRequest{
		Subtotal: &subtotal,
	}, testActor)
	s.ErrorIs(err, apperrors.ErrInvalidTransition, "amounts are frozen once issued")

	notes := "deliver to back door"
	withNotes, err := s.receivables.UpdateDocument(s.ctx, domain.KindInvoice, sent.DocumentID, dto.UpdateDocumentRequest{
		Notes: &notes,
	}, testActor)
	s.Require().NoError(err)
	s.Equal(notes, withNotes.Notes)
}

func (s *receivablesSuite) TestManualStatusChanges() {
	inv := s.newDocument(domain.KindInvoice, "100", "0", day(0), day(30))

	_, err := s.receivables.UpdateStatus(s.ctx, domain.KindInvoice, inv.DocumentID, "PAID", testActor)
	s.ErrorIs(err, apperrors.ErrInvalidTransition)

	_, err = s.receivables.UpdateStatus(s.ctx, domain.KindInvoice, inv.DocumentID, "sent", testActor)
	s.ErrorIs(err, apperrors.ErrValidation, "statuses are case-sensitive")

	_, err = s.receivables.UpdateStatus(s.ctx, domain.KindInvoice, inv.DocumentID, "PENDING", testActor)
	s.ErrorIs(err, apperrors.ErrValidation, "PENDING is a bill status")

	sent := s.issue(inv)
	viewed, err := s.receivables.UpdateStatus(s.ctx, domain.KindInvoice, sent.DocumentID, "VIEWED", testActor)
	s.Require().NoError(err)
	s.Equal(domain.StatusViewed, viewed.Status)

	_, err = s.receivables.UpdateStatus(s.ctx, domain.KindInvoice, sent.DocumentID, "PARTIAL", testActor)
	s.ErrorIs(err, apperrors.ErrValidation, "nothing has been paid")

	voided, err := s.receivables.VoidDocument(s.ctx, domain.KindInvoice, sent.DocumentID, testActor)
	s.Require().NoError(err)
	s.Equal(domain.StatusVoid, voided.Status)

	_, err = s.receivables.UpdateStatus(s.ctx, domain.KindInvoice, sent.DocumentID, "SENT", testActor)
	s.ErrorIs(err, apperrors.ErrInvalidTransition)
}

func (s *receivablesSuite) TestMarkOverdue() {
	late := s.issue(s.newDocument(domain.KindInvoice, "100", "0", day(-40), day(-1)))
	onTime := s.issue(s.newDocument(domain.KindInvoice, "100", "0", day(-10), day(5)))
	lateDraft := s.newDocument(domain.KindInvoice, "100", "0", day(-40), day(-3))
	lateBill := s.issue(s.newDocument(domain.KindBill, "300", "0", day(-30), day(-2)))

	resp, err := s.receivables.MarkOverdue(s.ctx, fixedNow, testActor)
	s.Require().NoError(err)
	s.Equal(1, resp.Invoices)
	s.Equal(1, resp.Bills)

	expect := map[*domain.Document]domain.DocumentStatus{
		late:      domain.StatusOverdue,
		onTime:    domain.StatusSent,
		lateDraft: domain.StatusDraft,
		lateBill:  domain.StatusOverdue,
	}
	for doc, want := range expect {
		got, err := s.receivables.GetDocument(s.ctx, doc.Kind, doc.DocumentID)
		s.Require().NoError(err)
		s.Equal(want, got.Status, doc.Number)
	}

	again, err := s.receivables.MarkOverdue(s.ctx, fixedNow, testActor)
	s.Require().NoError(err)
	s.Zero(again.Invoices + again.Bills)

	_, err = s.pay(late, "40")
	s.Require().NoError(err)
	got, err := s.receivables.GetDocument(s.ctx, domain.KindInvoice, late.DocumentID)
	s.Require().NoError(err)
	s.Equal(domain.StatusPartial, got.Status, "a payment on an overdue invoice settles it partially")
}

func (s *receivablesSuite) TestSoftDeleteAndRestore() {
	keep := s.newDocument(domain.KindInvoice, "100", "0", day(0), day(30))
	gone := s.newDocument(domain.KindInvoice, "200", "0", day(0), day(30))

	s.Require().NoError(s.receivables.SoftDeleteDocument(s.ctx, domain.KindInvoice, gone.DocumentID, testActor))

	_, err := s.receivables.GetDocument(s.ctx, domain.KindInvoice, gone.DocumentID)
	s.ErrorIs(err, apperrors.ErrNotFound)

	live, err := s.receivables.ListDocuments(s.ctx, domain.KindInvoice, dto.ListDocumentsParams{Limit: 50})
	s.Require().NoError(err)
	s.Require().Len(live.Documents, 1)
	s.Equal(keep.DocumentID, live.Documents[0].DocumentID)

	all, err := s.receivables.ListDocumentsIncludingDeleted(s.ctx, domain.KindInvoice, dto.ListDocumentsParams{Limit: 50})
	s.Require().NoError(err)
	s.Len(all.Documents, 2)

	aging, err := s.reporting.CalculateARAging(s.ctx, nil)
	s.Require().NoError(err)
	s.True(aging.Total.Equal(dec("100")), "deleted documents drop out of aging")

	s.Require().NoError(s.receivables.RestoreDocument(s.ctx, domain.KindInvoice, gone.DocumentID, testActor))
	restored, err := s.receivables.GetDocument(s.ctx, domain.KindInvoice, gone.DocumentID)
	s.Require().NoError(err)
	s.Nil(restored.DeletedAt)
}

func (s *receivablesSuite) TestPaymentSoftDelete() {
	inv := s.issue(s.newDocument(domain.KindInvoice, "300", "0", day(-1), day(29)))
	payment, err := s.pay(inv, "100")
	s.Require().NoError(err)

	s.Require().NoError(s.receivables.SoftDeletePayment(s.ctx, payment.PaymentID, testActor))
	_, err = s.receivables.GetPayment(s.ctx, payment.PaymentID)
	s.ErrorIs(err, apperrors.ErrNotFound)

	live, err := s.receivables.ListPayments(s.ctx, dto.ListPaymentsParams{Limit: 50})
	s.Require().NoError(err)
	s.Empty(live.Payments)

	all, err := s.receivables.ListPaymentsIncludingDeleted(s.ctx, dto.ListPaymentsParams{Limit: 50, InvoiceID: inv.DocumentID})
	s.Require().NoError(err)
	s.Len(all.Payments, 1)
	s.True(s.balance("1000").Equal(decimal.NewFromInt(100)), "the ledger keeps the posting")

	s.Require().NoError(s.receivables.RestorePayment(s.ctx, payment.PaymentID, testActor))
	_, err = s.receivables.GetPayment(s.ctx, payment.PaymentID)
	s.NoError(err)
}
