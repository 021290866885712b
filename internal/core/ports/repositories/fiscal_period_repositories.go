package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/erp_ledger/internal/core/domain"
)

// FiscalPeriodReader defines read operations for fiscal periods.
type FiscalPeriodReader interface {
	// FindPeriodByID retrieves a period by ID.
	FindPeriodByID(ctx context.Context, periodID string) (*domain.FiscalPeriod, error)

	// FindPeriodByDate retrieves the period whose range covers date.
	FindPeriodByDate(ctx context.Context, date time.Time) (*domain.FiscalPeriod, error)

	// FindOverlappingPeriods returns every period intersecting [start, end].
	FindOverlappingPeriods(ctx context.Context, start, end time.Time) ([]domain.FiscalPeriod, error)

	// ListPeriods returns periods ordered by start date, optionally for one fiscal year.
	ListPeriods(ctx context.Context, fiscalYear *int) ([]domain.FiscalPeriod, error)
}

// PeriodTransition describes a conditional status change of one period.
type PeriodTransition struct {
	PeriodID  string
	From      []domain.PeriodStatus
	To        domain.PeriodStatus
	ClosedAt  *time.Time
	ClosedBy  *string
	UpdatedBy string
	UpdatedAt time.Time
}

// FiscalPeriodWriter defines write operations for fiscal periods.
type FiscalPeriodWriter interface {
	// SavePeriod inserts a new period.
	SavePeriod(ctx context.Context, period domain.FiscalPeriod) error

	// TransitionPeriod moves a period to t.To only if its current status is in t.From.
	// It returns ErrNotFound for an unknown period and ErrInvalidTransition otherwise.
	TransitionPeriod(ctx context.Context, t PeriodTransition) (*domain.FiscalPeriod, error)
}

// FiscalPeriodRepositoryFacade combines all fiscal period repository interfaces.
type FiscalPeriodRepositoryFacade interface {
	FiscalPeriodReader
	FiscalPeriodWriter
}
