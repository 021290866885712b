package services_test

import (
	"testing"
	"time"

	"github.com/SscSPs/erp_ledger/internal/apperrors"
	"github.com/SscSPs/erp_ledger/internal/core/domain"
	"github.com/SscSPs/erp_ledger/internal/dto"
	"github.com/stretchr/testify/suite"
)

type fiscalPeriodSuite struct {
	ledgerSuite
}

func TestFiscalPeriodService(t *testing.T) {
	suite.Run(t, new(fiscalPeriodSuite))
}

func (s *fiscalPeriodSuite) journal(amount string) error {
	_, err := s.posting.PostJournalEntry(s.ctx, dto.JournalEntryRequest{
		DebitAccountID:  s.accountID("1000"),
		CreditAccountID: s.accountID("4000"),
		Amount:          dec(amount),
		EntryDate:       day(0),
		Description:     "Cash sale",
	}, testActor)
	return err
}

func (s *fiscalPeriodSuite) TestCreatePeriod_Validation() {
	tests := []struct {
		name  string
		req   dto.CreateFiscalPeriodRequest
		errIs error
	}{
		{
			name:  "start after end",
			req:   dto.CreateFiscalPeriodRequest{Name: "Backwards", StartDate: "2026-05-31", EndDate: "2026-05-01", FiscalYear: 2026},
			errIs: apperrors.ErrValidation,
		},
		{
			name:  "overlaps march",
			req:   dto.CreateFiscalPeriodRequest{Name: "Q1", StartDate: "2026-01-01", EndDate: "2026-03-10", FiscalYear: 2026},
			errIs: apperrors.ErrValidation,
		},
		{
			name:  "bad date",
			req:   dto.CreateFiscalPeriodRequest{Name: "Bad", StartDate: "2026/04/01", EndDate: "2026-04-30", FiscalYear: 2026},
			errIs: apperrors.ErrValidation,
		},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.periods.CreatePeriod(s.ctx, tt.req, testActor)
			s.ErrorIs(err, tt.errIs)
		})
	}

	april, err := s.periods.CreatePeriod(s.ctx, dto.CreateFiscalPeriodRequest{
		Name: "April 2026", StartDate: "2026-04-01", EndDate: "2026-04-30", FiscalYear: 2026,
	}, testActor)
	s.Require().NoError(err)
	s.Equal(domain.PeriodOpen, april.Status)

	year := 2026
	list, err := s.periods.ListPeriods(s.ctx, &year)
	s.Require().NoError(err)
	s.Len(list, 2)
	s.Equal("March 2026", list[0].Name)
}

func (s *fiscalPeriodSuite) TestCloseLockBlocksPosting() {
	s.Require().NoError(s.journal("100.00"))

	closed, err := s.periods.Close(s.ctx, s.period.PeriodID, "controller")
	s.Require().NoError(err)
	s.Equal(domain.PeriodClosed, closed.Status)
	s.Require().NotNil(closed.ClosedBy)
	s.Equal("controller", *closed.ClosedBy)

	s.ErrorIs(s.journal("50.00"), apperrors.ErrPeriodLocked)

	locked, err := s.periods.Lock(s.ctx, s.period.PeriodID, "cfo")
	s.Require().NoError(err)
	s.Equal(domain.PeriodLocked, locked.Status)
	s.Equal("controller", *locked.ClosedBy)

	s.ErrorIs(s.journal("50.00"), apperrors.ErrPeriodLocked)

	isLocked, err := s.periods.IsLocked(s.ctx, fixedNow)
	s.Require().NoError(err)
	s.True(isLocked)

	tb, err := s.reporting.GetTrialBalance(s.ctx, s.period.PeriodID)
	s.Require().NoError(err)
	s.True(tb.TotalDebit.Equal(dec("100.00")))
}

func (s *fiscalPeriodSuite) TestTransitionRules() {
	_, err := s.periods.Lock(s.ctx, s.period.PeriodID, testActor)
	s.ErrorIs(err, apperrors.ErrInvalidTransition, "an open period must be closed before it is locked")

	_, err = s.periods.Reopen(s.ctx, s.period.PeriodID, testActor)
	s.ErrorIs(err, apperrors.ErrInvalidTransition)

	_, err = s.periods.Close(s.ctx, s.period.PeriodID, testActor)
	s.Require().NoError(err)
	_, err = s.periods.Close(s.ctx, s.period.PeriodID, testActor)
	s.ErrorIs(err, apperrors.ErrInvalidTransition)

	_, err = s.periods.Lock(s.ctx, s.period.PeriodID, testActor)
	s.Require().NoError(err)

	reopened, err := s.periods.Reopen(s.ctx, s.period.PeriodID, testActor)
	s.Require().NoError(err)
	s.Equal(domain.PeriodOpen, reopened.Status)
	s.Nil(reopened.ClosedAt)
	s.NoError(s.journal("10.00"))

	_, err = s.periods.Close(s.ctx, "no-such-period", testActor)
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *fiscalPeriodSuite) TestGetCurrent() {
	current, err := s.periods.GetCurrent(s.ctx)
	s.Require().NoError(err)
	s.Equal(s.period.PeriodID, current.PeriodID)

	_, err = s.periods.IsLocked(s.ctx, time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC))
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *fiscalPeriodSuite) TestPostingOutsideAnyPeriod() {
	_, err := s.posting.PostJournalEntry(s.ctx, dto.JournalEntryRequest{
		DebitAccountID:  s.accountID("1000"),
		CreditAccountID: s.accountID("4000"),
		Amount:          dec("10"),
		EntryDate:       "2025-06-30",
	}, testActor)
	s.ErrorIs(err, apperrors.ErrValidation)
}
