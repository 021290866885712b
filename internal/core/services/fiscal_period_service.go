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
	"github.com/google/uuid"
)

type fiscalPeriodService struct {
	BaseService
	periodRepo portsrepo.FiscalPeriodRepositoryFacade
}

// FiscalPeriodServiceOption is a functional option for configuring the fiscal period service
type FiscalPeriodServiceOption func(*fiscalPeriodService)

// WithPeriodClock overrides the clock used for "today" and audit timestamps.
func WithPeriodClock(clock func() time.Time) FiscalPeriodServiceOption {
	return func(s *fiscalPeriodService) {
		s.Clock = clock
	}
}

// NewFiscalPeriodService creates the service that owns every period status change.
func NewFiscalPeriodService(repo portsrepo.FiscalPeriodRepositoryFacade, options ...FiscalPeriodServiceOption) portssvc.FiscalPeriodSvcFacade {
	svc := &fiscalPeriodService{periodRepo: repo}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.FiscalPeriodSvcFacade = (*fiscalPeriodService)(nil)

func (s *fiscalPeriodService) CreatePeriod(ctx context.Context, req dto.CreateFiscalPeriodRequest, actorID string) (*domain.FiscalPeriod, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	start, err := parseDate("startDate", req.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := parseDate("endDate", req.EndDate)
	if err != nil {
		return nil, err
	}
	if start.After(end) {
		return nil, fmt.Errorf("%w: start date %s is after end date %s", apperrors.ErrValidation, req.StartDate, req.EndDate)
	}

	overlapping, err := s.periodRepo.FindOverlappingPeriods(ctx, start, end)
	if err != nil {
		return nil, err
	}
	if len(overlapping) > 0 {
		return nil, fmt.Errorf("%w: period overlaps %s", apperrors.ErrValidation, overlapping[0].Name)
	}

	now := s.Now()
	period := domain.FiscalPeriod{
		PeriodID:   uuid.NewString(),
		Name:       req.Name,
		StartDate:  start,
		EndDate:    end,
		FiscalYear: req.FiscalYear,
		Status:     domain.PeriodOpen,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actorID,
			LastUpdatedAt: now,
			LastUpdatedBy: actorID,
		},
	}
	if err := s.periodRepo.SavePeriod(ctx, period); err != nil {
		s.LogError(ctx, err, "Failed to save fiscal period", slog.String("name", req.Name))
		return nil, err
	}

	s.LogInfo(ctx, "Fiscal period created",
		slog.String("period_id", period.PeriodID),
		slog.String("name", period.Name))
	return &period, nil
}

func (s *fiscalPeriodService) GetPeriod(ctx context.Context, periodID string) (*domain.FiscalPeriod, error) {
	return s.periodRepo.FindPeriodByID(ctx, periodID)
}

func (s *fiscalPeriodService) GetCurrent(ctx context.Context) (*domain.FiscalPeriod, error) {
	today := domain.DateOnly(s.Now())
	period, err := s.periodRepo.FindPeriodByDate(ctx, today)
	if err == nil && period.Status == domain.PeriodOpen {
		return period, nil
	}
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	periods, err := s.periodRepo.ListPeriods(ctx, nil)
	if err != nil {
		return nil, err
	}
	if len(periods) == 0 {
		return nil, fmt.Errorf("%w: no fiscal periods defined", apperrors.ErrNotFound)
	}
	latest := periods[len(periods)-1]
	return &latest, nil
}

func (s *fiscalPeriodService) ListPeriods(ctx context.Context, fiscalYear *int) ([]domain.FiscalPeriod, error) {
	return s.periodRepo.ListPeriods(ctx, fiscalYear)
}

func (s *fiscalPeriodService) IsLocked(ctx context.Context, date time.Time) (bool, error) {
	period, err := s.periodRepo.FindPeriodByDate(ctx, date)
	if err != nil {
		return false, err
	}
	return !period.AcceptsPostings(), nil
}

func (s *fiscalPeriodService) Close(ctx context.Context, periodID string, actorID string) (*domain.FiscalPeriod, error) {
	now := s.Now()
	closedBy := actorID
	return s.transition(ctx, portsrepo.PeriodTransition{
		PeriodID:  periodID,
		From:      []domain.PeriodStatus{domain.PeriodOpen},
		To:        domain.PeriodClosed,
		ClosedAt:  &now,
		ClosedBy:  &closedBy,
		UpdatedBy: actorID,
		UpdatedAt: now,
	})
}

func (s *fiscalPeriodService) Lock(ctx context.Context, periodID string, actorID string) (*domain.FiscalPeriod, error) {
	// The close stamp stays as it was.
	current, err := s.periodRepo.FindPeriodByID(ctx, periodID)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, portsrepo.PeriodTransition{
		PeriodID:  periodID,
		From:      []domain.PeriodStatus{domain.PeriodClosed},
		To:        domain.PeriodLocked,
		ClosedAt:  current.ClosedAt,
		ClosedBy:  current.ClosedBy,
		UpdatedBy: actorID,
		UpdatedAt: s.Now(),
	})
}

func (s *fiscalPeriodService) Reopen(ctx context.Context, periodID string, actorID string) (*domain.FiscalPeriod, error) {
	return s.transition(ctx, portsrepo.PeriodTransition{
		PeriodID:  periodID,
		From:      []domain.PeriodStatus{domain.PeriodClosed, domain.PeriodLocked},
		To:        domain.PeriodOpen,
		UpdatedBy: actorID,
		UpdatedAt: s.Now(),
	})
}

func (s *fiscalPeriodService) transition(ctx context.Context, t portsrepo.PeriodTransition) (*domain.FiscalPeriod, error) {
	period, err := s.periodRepo.TransitionPeriod(ctx, t)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) && !errors.Is(err, apperrors.ErrInvalidTransition) {
			s.LogError(ctx, err, "Failed to transition fiscal period",
				slog.String("period_id", t.PeriodID),
				slog.String("to", string(t.To)))
		}
		return nil, err
	}
	s.LogInfo(ctx, "Fiscal period transitioned",
		slog.String("period_id", period.PeriodID),
		slog.String("status", string(period.Status)),
		slog.String("actor_id", t.UpdatedBy))
	return period, nil
}
