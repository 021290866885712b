package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
type RepositoryProvider struct {
	AccountRepo      AccountRepositoryFacade
	FiscalPeriodRepo FiscalPeriodRepositoryFacade
	LedgerRepo       LedgerRepositoryFacade
	DocumentRepo     DocumentRepositoryFacade
	PaymentRepo      PaymentRepositoryFacade
	SequenceRepo     SequenceRepository
	ReportingRepo    ReportingRepository
}
