package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/erp_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/erp_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/erp_ledger/internal/core/ports/services"
	"github.com/SscSPs/erp_ledger/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

// reportingService implements the ReportingService interface
type reportingService struct {
	BaseService
	reportingRepo portsrepo.ReportingRepository
	documentRepo  portsrepo.DocumentReader
	accountRepo   portsrepo.AccountReader
	periodRepo    portsrepo.FiscalPeriodReader
}

// ReportingServiceOption is a functional option for configuring the reporting service
type ReportingServiceOption func(*reportingService)

// WithReportingClock overrides the clock that supplies the default as-of date.
func WithReportingClock(clock func() time.Time) ReportingServiceOption {
	return func(s *reportingService) {
		s.Clock = clock
	}
}

// NewReportingService creates a new reporting service with the provided options
func NewReportingService(
	repo portsrepo.ReportingRepository,
	documentRepo portsrepo.DocumentReader,
	accountRepo portsrepo.AccountReader,
	periodRepo portsrepo.FiscalPeriodReader,
	options ...ReportingServiceOption,
) portssvc.ReportingService {
	svc := &reportingService{
		reportingRepo: repo,
		documentRepo:  documentRepo,
		accountRepo:   accountRepo,
		periodRepo:    periodRepo,
	}

	for _, option := range options {
		option(svc)
	}

	return svc
}

// Ensure reportingService implements the ReportingService interface
var _ portssvc.ReportingService = (*reportingService)(nil)

func (s *reportingService) asOfOrToday(asOf *time.Time) time.Time {
	if asOf != nil {
		return domain.DateOnly(*asOf)
	}
	return domain.DateOnly(s.Now())
}

func (s *reportingService) CalculateARAging(ctx context.Context, asOf *time.Time) (*domain.AgingBuckets, error) {
	return s.aging(ctx, domain.KindInvoice, s.asOfOrToday(asOf))
}

func (s *reportingService) CalculateAPAging(ctx context.Context, asOf *time.Time) (*domain.AgingBuckets, error) {
	return s.aging(ctx, domain.KindBill, s.asOfOrToday(asOf))
}

// aging buckets every outstanding document by whole calendar days past due.
func (s *reportingService) aging(ctx context.Context, kind domain.DocumentKind, asOf time.Time) (*domain.AgingBuckets, error) {
	docs, err := s.documentRepo.ListOutstandingDocuments(ctx, kind)
	if err != nil {
		s.LogError(ctx, err, "Failed to load outstanding documents", slog.String("kind", string(kind)))
		return nil, fmt.Errorf("failed to load outstanding %ss: %w", kind.Label(), err)
	}

	buckets := domain.NewAgingBuckets(asOf)
	for _, d := range docs {
		if !d.IsOutstanding() {
			continue
		}
		buckets.Add(domain.DaysBetween(d.DueDate, asOf), d.AmountDue)
	}

	s.LogDebug(ctx, "Aging calculated",
		slog.String("kind", string(kind)),
		slog.String("as_of", asOf.Format(dateLayout)),
		slog.Int("documents", buckets.DocumentCount),
		slog.String("total", buckets.Total.StringFixed(2)))
	return &buckets, nil
}

func (s *reportingService) GetOutstandingReceivables(ctx context.Context) ([]domain.Document, error) {
	return s.documentRepo.ListOutstandingDocuments(ctx, domain.KindInvoice)
}

func (s *reportingService) GetOutstandingPayables(ctx context.Context) ([]domain.Document, error) {
	return s.documentRepo.ListOutstandingDocuments(ctx, domain.KindBill)
}

func (s *reportingService) GetAccountBalance(ctx context.Context, accountID string, asOf time.Time) (*domain.AccountBalance, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	day := domain.DateOnly(asOf)
	debit, credit, err := s.reportingRepo.SumAccountEntries(ctx, accountID, day)
	if err != nil {
		s.LogError(ctx, err, "Failed to sum account entries", slog.String("account_id", accountID))
		return nil, err
	}

	return &domain.AccountBalance{
		AccountID:     accountID,
		AsOf:          day,
		NormalBalance: account.NormalBalance,
		Debit:         debit,
		Credit:        credit,
		Balance:       accounting.SignedBalance(debit, credit, account.NormalBalance),
	}, nil
}

// GetTrialBalance reports the columns as stored. An imbalance is returned,
// never corrected.
func (s *reportingService) GetTrialBalance(ctx context.Context, periodID string) (*domain.TrialBalance, error) {
	if _, err := s.periodRepo.FindPeriodByID(ctx, periodID); err != nil {
		return nil, err
	}
	rows, err := s.reportingRepo.GetTrialBalanceRows(ctx, periodID)
	if err != nil {
		s.LogError(ctx, err, "Failed to retrieve trial balance data", slog.String("period_id", periodID))
		return nil, fmt.Errorf("failed to retrieve trial balance data: %w", err)
	}

	tb := &domain.TrialBalance{
		PeriodID:    periodID,
		Rows:        rows,
		TotalDebit:  decimal.Zero,
		TotalCredit: decimal.Zero,
	}
	for _, r := range rows {
		tb.TotalDebit = tb.TotalDebit.Add(r.Debit)
		tb.TotalCredit = tb.TotalCredit.Add(r.Credit)
	}
	if !tb.IsBalanced() {
		s.LogError(ctx, fmt.Errorf("trial balance out of balance"), "Trial balance does not balance",
			slog.String("period_id", periodID),
			slog.String("debit", tb.TotalDebit.StringFixed(2)),
			slog.String("credit", tb.TotalCredit.StringFixed(2)))
	}

	s.LogInfo(ctx, "Trial balance report generated successfully",
		slog.String("period_id", periodID),
		slog.Int("row_count", len(rows)))
	return tb, nil
}

func (s *reportingService) FindUnbalancedGroups(ctx context.Context) ([]domain.UnbalancedGroup, error) {
	groups, err := s.reportingRepo.FindUnbalancedGroups(ctx)
	if err != nil {
		return nil, err
	}
	if len(groups) > 0 {
		s.LogInfo(ctx, "Unbalanced entry groups found", slog.Int("count", len(groups)))
	}
	return groups, nil
}
