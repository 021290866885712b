package services

import (
	"context"

	"github.com/SscSPs/erp_ledger/internal/core/domain"
	"github.com/SscSPs/erp_ledger/internal/dto"
)

// AccountReaderSvc defines read operations for the chart of accounts
type AccountReaderSvc interface {
	// GetAccountByID retrieves a specific account by its unique identifier.
	GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// GetAccountByNumber retrieves an account by its human-assigned number.
	GetAccountByNumber(ctx context.Context, accountNumber string) (*domain.Account, error)

	// ListAccounts retrieves accounts ordered by account number.
	ListAccounts(ctx context.Context, activeOnly bool) ([]domain.Account, error)

	// GetChartOfAccounts returns the accounts arranged as a parent/child tree.
	GetChartOfAccounts(ctx context.Context) ([]*domain.AccountNode, error)
}

// AccountWriterSvc defines write operations for the chart of accounts
type AccountWriterSvc interface {
	// CreateAccount persists a new account.
	CreateAccount(ctx context.Context, req dto.CreateAccountRequest, actorID string) (*domain.Account, error)

	// UpdateAccount changes the name, description or active flag of an account.
	UpdateAccount(ctx context.Context, accountID string, req dto.UpdateAccountRequest, actorID string) (*domain.Account, error)

	// DeactivateAccount marks an account as inactive so it rejects new postings.
	DeactivateAccount(ctx context.Context, accountID string, actorID string) error

	// SeedStandardAccounts creates any missing standard accounts. Safe to run repeatedly.
	SeedStandardAccounts(ctx context.Context, actorID string) ([]domain.Account, error)
}

// AccountSvcFacade combines all account-related service interfaces
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
}
