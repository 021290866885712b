package repositories

import (
	"context"

	"github.com/SscSPs/erp_ledger/internal/core/domain"
)

// AccountReader defines read operations for the chart of accounts.
type AccountReader interface {
	// FindAccountByID retrieves an account by its ID.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// FindAccountByNumber retrieves an account by its unique account number.
	FindAccountByNumber(ctx context.Context, accountNumber string) (*domain.Account, error)

	// FindAccountsByIDs retrieves the accounts that exist among accountIDs, keyed by ID.
	// Missing IDs are simply absent from the map.
	FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error)

	// ListAccounts returns accounts ordered by account number.
	ListAccounts(ctx context.Context, activeOnly bool) ([]domain.Account, error)
}

// AccountWriter defines write operations for the chart of accounts.
type AccountWriter interface {
	// SaveAccount inserts a new account. A duplicate account number yields ErrDuplicate.
	SaveAccount(ctx context.Context, account domain.Account) error

	// UpdateAccount persists the mutable fields (name, description, active flag).
	UpdateAccount(ctx context.Context, account domain.Account) error
}

// AccountRepositoryFacade combines all account-related repository interfaces.
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
}
