package pgsql

import (
	portsrepo "github.com/SscSPs/erp_ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	ledgerRepo := newPgxLedgerRepository(dbPool)

	return portsrepo.RepositoryProvider{
		AccountRepo:      newPgxAccountRepository(dbPool),
		FiscalPeriodRepo: newPgxFiscalPeriodRepository(dbPool),
		LedgerRepo:       ledgerRepo,
		DocumentRepo:     newPgxDocumentRepository(dbPool),
		PaymentRepo:      newPgxPaymentRepository(dbPool),
		SequenceRepo:     ledgerRepo,
		ReportingRepo:    newReportingRepository(dbPool),
	}
}
