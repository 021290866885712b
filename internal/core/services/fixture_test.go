package services_test

import (
	"context"
	"time"

	"github.com/SscSPs/erp_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/erp_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/erp_ledger/internal/core/ports/services"
	"github.com/SscSPs/erp_ledger/internal/core/services"
	"github.com/SscSPs/erp_ledger/internal/dto"
	"github.com/SscSPs/erp_ledger/internal/repositories/database/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

const testActor = "actor-test"

// fixedNow is the clock every fixture service reads.
var fixedNow = time.Date(2026, time.March, 15, 10, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func day(offset int) string {
	return fixedNow.AddDate(0, 0, offset).Format("2006-01-02")
}

// ledgerSuite wires every service over one in-memory store with the standard
// chart seeded, March 2026 open, and an open history period from October 2025
// to February 2026 so older documents can be recognised.
type ledgerSuite struct {
	suite.Suite
	ctx context.Context

	repos       portsrepo.RepositoryProvider
	accounts    portssvc.AccountSvcFacade
	periods     portssvc.FiscalPeriodSvcFacade
	posting     portssvc.PostingSvcFacade
	receivables portssvc.ReceivablesSvcFacade
	reporting   portssvc.ReportingService

	std     map[string]domain.Account // by account number
	period  *domain.FiscalPeriod
	history *domain.FiscalPeriod
}

func (s *ledgerSuite) SetupTest() {
	s.ctx = context.Background()
	s.repos = memory.NewRepositoryProvider()
	std := domain.DefaultStandardAccounts()

	s.accounts = services.NewAccountService(s.repos.AccountRepo, services.WithStandardAccounts(std))
	s.periods = services.NewFiscalPeriodService(s.repos.FiscalPeriodRepo, services.WithPeriodClock(fixedClock))
	s.posting = services.NewPostingService(
		s.repos.AccountRepo, s.repos.FiscalPeriodRepo, s.repos.LedgerRepo, s.repos.SequenceRepo,
		services.WithPostingClock(fixedClock),
	)
	s.receivables = services.NewReceivablesService(
		s.repos.DocumentRepo, s.repos.PaymentRepo, s.repos.AccountRepo, s.repos.SequenceRepo, s.posting,
		services.WithReceivablesClock(fixedClock),
		services.WithSettlementAccounts(std),
	)
	s.reporting = services.NewReportingService(
		s.repos.ReportingRepo, s.repos.DocumentRepo, s.repos.AccountRepo, s.repos.FiscalPeriodRepo,
		services.WithReportingClock(fixedClock),
	)

	seeded, err := s.accounts.SeedStandardAccounts(s.ctx, testActor)
	s.Require().NoError(err)
	s.std = make(map[string]domain.Account, len(seeded))
	for _, a := range seeded {
		s.std[a.AccountNumber] = a
	}

	s.period, err = s.periods.CreatePeriod(s.ctx, dto.CreateFiscalPeriodRequest{
		Name:       "March 2026",
		StartDate:  "2026-03-01",
		EndDate:    "2026-03-31",
		FiscalYear: 2026,
	}, testActor)
	s.Require().NoError(err)

	s.history, err = s.periods.CreatePeriod(s.ctx, dto.CreateFiscalPeriodRequest{
		Name:       "Oct 2025 - Feb 2026",
		StartDate:  "2025-10-01",
		EndDate:    "2026-02-28",
		FiscalYear: 2025,
	}, testActor)
	s.Require().NoError(err)
}

func (s *ledgerSuite) accountID(number string) string {
	acc, ok := s.std[number]
	s.Require().True(ok, "standard account %s not seeded", number)
	return acc.AccountID
}

// newDocument creates a header-only document due on dueDate.
func (s *ledgerSuite) newDocument(kind domain.DocumentKind, subtotal, tax string, issueDate, dueDate string) *domain.Document {
	doc, err := s.receivables.CreateDocument(s.ctx, kind, dto.CreateDocumentRequest{
		CounterpartyID: "cp-1",
		IssueDate:      issueDate,
		DueDate:        dueDate,
		Subtotal:       dec(subtotal),
		TaxAmount:      dec(tax),
	}, testActor)
	s.Require().NoError(err)
	return doc
}

// issue moves a draft to SENT (invoice) or PENDING (bill).
func (s *ledgerSuite) issue(doc *domain.Document) *domain.Document {
	to := domain.StatusSent
	if doc.Kind == domain.KindBill {
		to = domain.StatusPending
	}
	out, err := s.receivables.UpdateStatus(s.ctx, doc.Kind, doc.DocumentID, string(to), testActor)
	s.Require().NoError(err)
	return out
}

func (s *ledgerSuite) pay(doc *domain.Document, amount string) (*domain.Payment, error) {
	return s.receivables.RecordPayment(s.ctx, doc.Kind, doc.DocumentID, dto.RecordPaymentRequest{
		Amount:      dec(amount),
		Method:      string(domain.MethodACH),
		PaymentDate: day(0),
	}, testActor)
}

func (s *ledgerSuite) balance(number string) decimal.Decimal {
	b, err := s.reporting.GetAccountBalance(s.ctx, s.accountID(number), fixedNow)
	s.Require().NoError(err)
	return b.Balance
}
