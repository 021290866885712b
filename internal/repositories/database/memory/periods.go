package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/SscSPs/erp_ledger/internal/apperrors"
	"github.com/SscSPs/erp_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/erp_ledger/internal/core/ports/repositories"
)

func clonePeriod(p *domain.FiscalPeriod) domain.FiscalPeriod {
	c := *p
	c.ClosedAt = copyTime(p.ClosedAt)
	c.ClosedBy = copyString(p.ClosedBy)
	return c
}

func (s *Store) SavePeriod(_ context.Context, period domain.FiscalPeriod) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.periods[period.PeriodID]; exists {
		return fmt.Errorf("%w: fiscal period %s", apperrors.ErrDuplicate, period.PeriodID)
	}
	for _, p := range s.periods {
		if p.Overlaps(period.StartDate, period.EndDate) {
			return fmt.Errorf("%w: period overlaps %s", apperrors.ErrValidation, p.Name)
		}
	}
	c := clonePeriod(&period)
	s.periods[period.PeriodID] = &c
	return nil
}

func (s *Store) TransitionPeriod(_ context.Context, t portsrepo.PeriodTransition) (*domain.FiscalPeriod, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.periods[t.PeriodID]
	if !ok {
		return nil, apperrors.NewNotFoundError("fiscal period", t.PeriodID)
	}
	if !slices.Contains(t.From, p.Status) {
		return nil, fmt.Errorf("%w: period %s is %s, cannot move to %s",
			apperrors.ErrInvalidTransition, p.Name, p.Status, t.To)
	}
	p.Status = t.To
	p.ClosedAt = copyTime(t.ClosedAt)
	p.ClosedBy = copyString(t.ClosedBy)
	p.LastUpdatedAt = t.UpdatedAt
	p.LastUpdatedBy = t.UpdatedBy

	c := clonePeriod(p)
	return &c, nil
}

func (s *Store) FindPeriodByID(_ context.Context, periodID string) (*domain.FiscalPeriod, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.periods[periodID]
	if !ok {
		return nil, apperrors.NewNotFoundError("fiscal period", periodID)
	}
	c := clonePeriod(p)
	return &c, nil
}

func (s *Store) FindPeriodByDate(_ context.Context, date time.Time) (*domain.FiscalPeriod, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.periods {
		if p.Contains(date) {
			c := clonePeriod(p)
			return &c, nil
		}
	}
	return nil, fmt.Errorf("%w: no fiscal period covers %s", apperrors.ErrNotFound, date.Format("2006-01-02"))
}

func (s *Store) FindOverlappingPeriods(_ context.Context, start, end time.Time) ([]domain.FiscalPeriod, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.FiscalPeriod, 0)
	for _, p := range s.periods {
		if p.Overlaps(start, end) {
			out = append(out, clonePeriod(p))
		}
	}
	return out, nil
}

func (s *Store) ListPeriods(_ context.Context, fiscalYear *int) ([]domain.FiscalPeriod, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.FiscalPeriod, 0, len(s.periods))
	for _, p := range s.periods {
		if fiscalYear != nil && p.FiscalYear != *fiscalYear {
			continue
		}
		out = append(out, clonePeriod(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}
