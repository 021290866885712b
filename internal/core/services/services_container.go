package services

import (
	portsrepo "github.com/SscSPs/erp_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/erp_ledger/internal/core/ports/services"
	"github.com/SscSPs/erp_ledger/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	standard := cfg.StandardAccounts()

	container := &portssvc.ServiceContainer{}

	container.Account = NewAccountService(repos.AccountRepo, WithStandardAccounts(standard))
	container.FiscalPeriod = NewFiscalPeriodService(repos.FiscalPeriodRepo)

	// Posting is shared with receivables so settlement lines pass the same checks.
	container.Posting = NewPostingService(
		repos.AccountRepo,
		repos.FiscalPeriodRepo,
		repos.LedgerRepo,
		repos.SequenceRepo,
	)

	container.Receivables = NewReceivablesService(
		repos.DocumentRepo,
		repos.PaymentRepo,
		repos.AccountRepo,
		repos.SequenceRepo,
		container.Posting,
		WithSettlementAccounts(standard),
	)

	container.Reporting = NewReportingService(
		repos.ReportingRepo,
		repos.DocumentRepo,
		repos.AccountRepo,
		repos.FiscalPeriodRepo,
	)

	return container
}
