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
	"github.com/SscSPs/erp_ledger/internal/utils/accounting"
	"github.com/google/uuid"
)

const entryNumberPrefix = "JE"

// postingService is the only writer of ledger lines.
type postingService struct {
	BaseService
	accountRepo portsrepo.AccountReader
	periodRepo  portsrepo.FiscalPeriodReader
	ledgerRepo  portsrepo.LedgerRepositoryFacade
	sequence    portsrepo.SequenceRepository
}

// PostingServiceOption is a functional option for configuring the posting service
type PostingServiceOption func(*postingService)

// WithPostingClock overrides the clock used for audit timestamps and reversals.
func WithPostingClock(clock func() time.Time) PostingServiceOption {
	return func(s *postingService) {
		s.Clock = clock
	}
}

// NewPostingService creates a new posting service.
func NewPostingService(
	accountRepo portsrepo.AccountReader,
	periodRepo portsrepo.FiscalPeriodReader,
	ledgerRepo portsrepo.LedgerRepositoryFacade,
	sequence portsrepo.SequenceRepository,
	options ...PostingServiceOption,
) portssvc.PostingSvcFacade {
	svc := &postingService{
		accountRepo: accountRepo,
		periodRepo:  periodRepo,
		ledgerRepo:  ledgerRepo,
		sequence:    sequence,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.PostingSvcFacade = (*postingService)(nil)

// PrepareEntries checks, in order: line direction, line count and group
// balance, the request fields, period status, then the accounts. It numbers
// the lines without writing them.
func (s *postingService) PrepareEntries(ctx context.Context, req dto.PostEntriesRequest, actorID string) ([]domain.LedgerEntry, error) {
	lines := make([]domain.LedgerEntry, len(req.Lines))
	for i, l := range req.Lines {
		description := l.Description
		if description == "" {
			description = req.Description
		}
		lines[i] = domain.LedgerEntry{
			AccountID:   l.AccountID,
			Debit:       l.Debit,
			Credit:      l.Credit,
			Description: description,
		}
	}
	if err := accounting.ValidateEntryGroup(lines); err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	entryDate, err := parseDate("entryDate", req.EntryDate)
	if err != nil {
		return nil, err
	}

	period, err := s.resolvePeriod(ctx, req.FiscalPeriodID, entryDate)
	if err != nil {
		return nil, err
	}
	if !period.AcceptsPostings() {
		return nil, fmt.Errorf("%w: period %s is %s", apperrors.ErrPeriodLocked, period.Name, period.Status)
	}
	if !period.Contains(entryDate) {
		return nil, fmt.Errorf("%w: entry date %s is outside period %s", apperrors.ErrValidation, req.EntryDate, period.Name)
	}

	if err := s.checkAccounts(ctx, lines); err != nil {
		return nil, err
	}

	entryNumber, err := nextNumber(ctx, s.sequence, entryNumberPrefix, entryDate)
	if err != nil {
		return nil, err
	}
	now := s.Now()
	for i := range lines {
		lines[i].EntryID = uuid.NewString()
		lines[i].EntryNumber = entryNumber
		lines[i].EntryDate = entryDate
		lines[i].FiscalPeriodID = period.PeriodID
		lines[i].ReferenceType = req.ReferenceType
		lines[i].ReferenceID = req.ReferenceID
		lines[i].IsPosted = true
		lines[i].CreatedBy = actorID
		lines[i].CreatedAt = now
	}
	return lines, nil
}

func (s *postingService) resolvePeriod(ctx context.Context, periodID string, entryDate time.Time) (*domain.FiscalPeriod, error) {
	if periodID != "" {
		return s.periodRepo.FindPeriodByID(ctx, periodID)
	}
	period, err := s.periodRepo.FindPeriodByDate(ctx, entryDate)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: no fiscal period covers %s", apperrors.ErrValidation, entryDate.Format(dateLayout))
		}
		return nil, err
	}
	return period, nil
}

func (s *postingService) checkAccounts(ctx context.Context, lines []domain.LedgerEntry) error {
	ids := make([]string, 0, len(lines))
	seen := make(map[string]struct{}, len(lines))
	for _, l := range lines {
		if _, ok := seen[l.AccountID]; ok {
			continue
		}
		seen[l.AccountID] = struct{}{}
		ids = append(ids, l.AccountID)
	}

	accounts, err := s.accountRepo.FindAccountsByIDs(ctx, ids)
	if err != nil {
		return err
	}
	for _, id := range ids {
		acc, ok := accounts[id]
		if !ok {
			return fmt.Errorf("%w: account %s does not exist", apperrors.ErrValidation, id)
		}
		if !acc.IsActive {
			return fmt.Errorf("%w: account %s is inactive", apperrors.ErrValidation, acc.AccountNumber)
		}
	}
	return nil
}

func (s *postingService) PostEntries(ctx context.Context, req dto.PostEntriesRequest, actorID string) (*domain.EntryGroup, error) {
	lines, err := s.PrepareEntries(ctx, req, actorID)
	if err != nil {
		return nil, err
	}
	if err := s.ledgerRepo.SaveEntryGroup(ctx, lines); err != nil {
		s.LogError(ctx, err, "Failed to save entry group", slog.String("entry_number", lines[0].EntryNumber))
		return nil, err
	}

	group := domain.NewEntryGroup(lines)
	s.LogInfo(ctx, "Entry group posted",
		slog.String("entry_number", group.EntryNumber),
		slog.String("period_id", group.FiscalPeriodID),
		slog.String("total", group.TotalDebit.StringFixed(2)))
	return &group, nil
}

func (s *postingService) PostJournalEntry(ctx context.Context, req dto.JournalEntryRequest, actorID string) (*domain.EntryGroup, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be greater than zero", apperrors.ErrValidation)
	}
	if req.DebitAccountID == req.CreditAccountID {
		return nil, fmt.Errorf("%w: debit and credit accounts must differ", apperrors.ErrValidation)
	}

	return s.PostEntries(ctx, dto.PostEntriesRequest{
		EntryDate:      req.EntryDate,
		Description:    req.Description,
		FiscalPeriodID: req.FiscalPeriodID,
		ReferenceType:  domain.RefManual,
		Lines: []dto.EntryLineRequest{
			{AccountID: req.DebitAccountID, Debit: req.Amount},
			{AccountID: req.CreditAccountID, Credit: req.Amount},
		},
	}, actorID)
}

// ReverseEntries mirrors every group linked to the reference into the period
// covering today. Each reversal is its own group referencing the original
// entry number. Groups already reversed are skipped.
func (s *postingService) ReverseEntries(ctx context.Context, req dto.ReverseEntriesRequest, actorID string) ([]domain.EntryGroup, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	entries, err := s.ledgerRepo.FindEntriesByReference(ctx, req.ReferenceType, req.ReferenceID)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: no entries reference %s %s", apperrors.ErrNotFound, req.ReferenceType, req.ReferenceID)
	}

	order := make([]string, 0)
	groups := make(map[string][]domain.LedgerEntry)
	for _, e := range entries {
		if _, ok := groups[e.EntryNumber]; !ok {
			order = append(order, e.EntryNumber)
		}
		groups[e.EntryNumber] = append(groups[e.EntryNumber], e)
	}

	today := domain.DateOnly(s.Now()).Format(dateLayout)
	reversed := make([]domain.EntryGroup, 0, len(order))
	for _, number := range order {
		existing, err := s.ledgerRepo.FindEntriesByReference(ctx, domain.RefReversal, number)
		if err != nil {
			return reversed, err
		}
		if len(existing) > 0 {
			continue
		}

		description := "Reversal of " + number
		if req.Reason != "" {
			description += ": " + req.Reason
		}
		lines := make([]dto.EntryLineRequest, 0, len(groups[number]))
		for _, e := range groups[number] {
			if e.Debit.IsZero() && e.Credit.IsZero() {
				continue
			}
			lines = append(lines, dto.EntryLineRequest{
				AccountID:   e.AccountID,
				Debit:       e.Credit,
				Credit:      e.Debit,
				Description: description,
			})
		}

		group, err := s.PostEntries(ctx, dto.PostEntriesRequest{
			EntryDate:     today,
			Description:   description,
			ReferenceType: domain.RefReversal,
			ReferenceID:   number,
			Lines:         lines,
		}, actorID)
		if err != nil {
			return reversed, fmt.Errorf("reversing %s: %w", number, err)
		}
		reversed = append(reversed, *group)
	}

	if len(reversed) == 0 {
		return nil, fmt.Errorf("%w: every entry for %s %s is already reversed",
			apperrors.ErrInvalidTransition, req.ReferenceType, req.ReferenceID)
	}
	return reversed, nil
}

func (s *postingService) GetEntryGroup(ctx context.Context, entryNumber string) (*domain.EntryGroup, error) {
	lines, err := s.ledgerRepo.FindEntriesByEntryNumber(ctx, entryNumber)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, apperrors.NewNotFoundError("entry group", entryNumber)
	}
	group := domain.NewEntryGroup(lines)
	return &group, nil
}

func (s *postingService) ListEntries(ctx context.Context, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error) {
	entries, next, err := s.ledgerRepo.ListEntries(ctx, domain.EntryFilter{
		AccountID:      params.AccountID,
		FiscalPeriodID: params.FiscalPeriodID,
		Limit:          params.Limit,
		NextToken:      params.NextToken,
	})
	if err != nil {
		return nil, err
	}
	return &dto.ListEntriesResponse{Entries: entries, NextToken: next}, nil
}
