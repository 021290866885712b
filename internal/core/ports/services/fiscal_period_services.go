package services

import (
	"context"
	"time"

	"github.com/SscSPs/erp_ledger/internal/core/domain"
	"github.com/SscSPs/erp_ledger/internal/dto"
)

// FiscalPeriodReaderSvc defines read operations for fiscal periods
type FiscalPeriodReaderSvc interface {
	GetPeriod(ctx context.Context, periodID string) (*domain.FiscalPeriod, error)

	// GetCurrent returns the OPEN period containing today, or else the most recent period.
	GetCurrent(ctx context.Context) (*domain.FiscalPeriod, error)

	ListPeriods(ctx context.Context, fiscalYear *int) ([]domain.FiscalPeriod, error)

	// IsLocked reports whether the period covering date refuses postings.
	// It fails with ErrNotFound when no period covers the date.
	IsLocked(ctx context.Context, date time.Time) (bool, error)
}

// FiscalPeriodWriterSvc defines the period lifecycle. Only this service
// changes a period's status.
type FiscalPeriodWriterSvc interface {
	CreatePeriod(ctx context.Context, req dto.CreateFiscalPeriodRequest, actorID string) (*domain.FiscalPeriod, error)

	// Close moves OPEN to CLOSED and records who closed it.
	Close(ctx context.Context, periodID string, actorID string) (*domain.FiscalPeriod, error)

	// Lock moves CLOSED to LOCKED.
	Lock(ctx context.Context, periodID string, actorID string) (*domain.FiscalPeriod, error)

	// Reopen moves CLOSED or LOCKED back to OPEN. This is a privileged operation.
	Reopen(ctx context.Context, periodID string, actorID string) (*domain.FiscalPeriod, error)
}

// FiscalPeriodSvcFacade combines all fiscal period service interfaces
type FiscalPeriodSvcFacade interface {
	FiscalPeriodReaderSvc
	FiscalPeriodWriterSvc
}
