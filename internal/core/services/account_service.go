package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/erp_ledger/internal/apperrors"
	"github.com/SscSPs/erp_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/erp_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/erp_ledger/internal/core/ports/services"
	"github.com/SscSPs/erp_ledger/internal/dto"
	"github.com/google/uuid"
)

// accountService implements the AccountSvcFacade interface
type accountService struct {
	BaseService
	accountRepo portsrepo.AccountRepositoryFacade
	standard    domain.StandardAccounts
}

// AccountServiceOption is a functional option for configuring the account service
type AccountServiceOption func(*accountService)

// WithStandardAccounts sets the account numbers SeedStandardAccounts creates.
func WithStandardAccounts(std domain.StandardAccounts) AccountServiceOption {
	return func(s *accountService) {
		s.standard = std
	}
}

// NewAccountService creates a new account service with the provided options
func NewAccountService(repo portsrepo.AccountRepositoryFacade, options ...AccountServiceOption) portssvc.AccountSvcFacade {
	svc := &accountService{
		accountRepo: repo,
		standard:    domain.DefaultStandardAccounts(),
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

func (s *accountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, actorID string) (*domain.Account, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if !req.AccountType.IsValid() {
		return nil, fmt.Errorf("%w: unknown account type %q", apperrors.ErrValidation, req.AccountType)
	}
	normal := req.NormalBalance
	if normal == "" {
		normal = req.AccountType.DefaultNormalBalance()
	}

	if req.ParentAccountID != nil {
		if _, err := s.accountRepo.FindAccountByID(ctx, *req.ParentAccountID); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("%w: parent account %s does not exist", apperrors.ErrValidation, *req.ParentAccountID)
			}
			return nil, err
		}
	}

	now := s.Now()
	account := domain.Account{
		AccountID:       uuid.NewString(),
		AccountNumber:   req.AccountNumber,
		Name:            req.Name,
		AccountType:     req.AccountType,
		NormalBalance:   normal,
		ParentAccountID: req.ParentAccountID,
		Description:     req.Description,
		IsActive:        true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actorID,
			LastUpdatedAt: now,
			LastUpdatedBy: actorID,
		},
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		s.LogError(ctx, err, "Failed to save account",
			slog.String("account_number", account.AccountNumber))
		return nil, err
	}

	s.LogInfo(ctx, "Account created",
		slog.String("account_id", account.AccountID),
		slog.String("account_number", account.AccountNumber))
	return &account, nil
}

func (s *accountService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find account by ID", slog.String("account_id", accountID))
		}
		return nil, err
	}
	return account, nil
}

func (s *accountService) GetAccountByNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	return s.accountRepo.FindAccountByNumber(ctx, accountNumber)
}

func (s *accountService) ListAccounts(ctx context.Context, activeOnly bool) ([]domain.Account, error) {
	accounts, err := s.accountRepo.ListAccounts(ctx, activeOnly)
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounts")
		return nil, err
	}
	return accounts, nil
}

// GetChartOfAccounts arranges every account under its parent. Accounts whose
// parent is unknown are returned as roots.
func (s *accountService) GetChartOfAccounts(ctx context.Context) ([]*domain.AccountNode, error) {
	accounts, err := s.accountRepo.ListAccounts(ctx, false)
	if err != nil {
		return nil, err
	}

	nodes := make(map[string]*domain.AccountNode, len(accounts))
	for _, a := range accounts {
		nodes[a.AccountID] = &domain.AccountNode{Account: a, Children: []*domain.AccountNode{}}
	}

	roots := make([]*domain.AccountNode, 0)
	for _, a := range accounts {
		node := nodes[a.AccountID]
		if a.ParentAccountID != nil {
			if parent, ok := nodes[*a.ParentAccountID]; ok && parent != node {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}
	return roots, nil
}

func (s *accountService) UpdateAccount(ctx context.Context, accountID string, req dto.UpdateAccountRequest, actorID string) (*domain.Account, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		account.Name = *req.Name
	}
	if req.Description != nil {
		account.Description = *req.Description
	}
	if req.IsActive != nil {
		account.IsActive = *req.IsActive
	}
	account.LastUpdatedAt = s.Now()
	account.LastUpdatedBy = actorID

	if err := s.accountRepo.UpdateAccount(ctx, *account); err != nil {
		s.LogError(ctx, err, "Failed to update account", slog.String("account_id", accountID))
		return nil, err
	}
	return account, nil
}

func (s *accountService) DeactivateAccount(ctx context.Context, accountID string, actorID string) error {
	inactive := false
	_, err := s.UpdateAccount(ctx, accountID, dto.UpdateAccountRequest{IsActive: &inactive}, actorID)
	if err != nil {
		return err
	}
	s.LogInfo(ctx, "Account deactivated", slog.String("account_id", accountID))
	return nil
}

type standardAccount struct {
	number string
	name   string
	kind   domain.AccountType
	normal domain.NormalBalance
}

func (s *accountService) standardChart() []standardAccount {
	return []standardAccount{
		{s.standard.Cash, "Cash", domain.Asset, domain.NormalDebit},
		{s.standard.AccountsReceivable, "Accounts Receivable", domain.Asset, domain.NormalDebit},
		{s.standard.Inventory, "Inventory", domain.Asset, domain.NormalDebit},
		{s.standard.AccountsPayable, "Accounts Payable", domain.Liability, domain.NormalCredit},
		{s.standard.Revenue, "Sales Revenue", domain.Revenue, domain.NormalCredit},
		{s.standard.SalesReturns, "Sales Returns", domain.Revenue, domain.NormalDebit},
		{s.standard.COGS, "Cost of Goods Sold", domain.Expense, domain.NormalDebit},
		{s.standard.BadDebt, "Bad Debt Expense", domain.Expense, domain.NormalDebit},
	}
}

// SeedStandardAccounts creates whichever standard accounts are missing and
// returns the full standard set.
func (s *accountService) SeedStandardAccounts(ctx context.Context, actorID string) ([]domain.Account, error) {
	out := make([]domain.Account, 0, 8)
	for _, std := range s.standardChart() {
		existing, err := s.accountRepo.FindAccountByNumber(ctx, std.number)
		if err == nil {
			out = append(out, *existing)
			continue
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}

		created, err := s.CreateAccount(ctx, dto.CreateAccountRequest{
			AccountNumber: std.number,
			Name:          std.name,
			AccountType:   std.kind,
			NormalBalance: std.normal,
		}, actorID)
		if err != nil {
			return nil, fmt.Errorf("seeding account %s: %w", std.number, err)
		}
		out = append(out, *created)
	}
	return out, nil
}
