package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/SscSPs/erp_ledger/internal/apperrors"
	"github.com/SscSPs/erp_ledger/internal/core/domain"
)

func cloneAccount(a *domain.Account) domain.Account {
	c := *a
	c.ParentAccountID = copyString(a.ParentAccountID)
	return c
}

func (s *Store) SaveAccount(_ context.Context, account domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[account.AccountID]; exists {
		return fmt.Errorf("%w: account %s", apperrors.ErrDuplicate, account.AccountID)
	}
	if _, exists := s.accountNumbers[account.AccountNumber]; exists {
		return fmt.Errorf("%w: account number %s", apperrors.ErrDuplicate, account.AccountNumber)
	}
	c := cloneAccount(&account)
	s.accounts[account.AccountID] = &c
	s.accountNumbers[account.AccountNumber] = account.AccountID
	return nil
}

func (s *Store) UpdateAccount(_ context.Context, account domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.accounts[account.AccountID]
	if !ok {
		return apperrors.NewNotFoundError("account", account.AccountID)
	}
	stored.Name = account.Name
	stored.Description = account.Description
	stored.IsActive = account.IsActive
	stored.LastUpdatedAt = account.LastUpdatedAt
	stored.LastUpdatedBy = account.LastUpdatedBy
	return nil
}

func (s *Store) FindAccountByID(_ context.Context, accountID string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[accountID]
	if !ok {
		return nil, apperrors.NewNotFoundError("account", accountID)
	}
	c := cloneAccount(a)
	return &c, nil
}

func (s *Store) FindAccountByNumber(_ context.Context, accountNumber string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.accountNumbers[accountNumber]
	if !ok {
		return nil, apperrors.NewNotFoundError("account number", accountNumber)
	}
	c := cloneAccount(s.accounts[id])
	return &c, nil
}

func (s *Store) FindAccountsByIDs(_ context.Context, accountIDs []string) (map[string]domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]domain.Account, len(accountIDs))
	for _, id := range accountIDs {
		if a, ok := s.accounts[id]; ok {
			out[id] = cloneAccount(a)
		}
	}
	return out, nil
}

func (s *Store) ListAccounts(_ context.Context, activeOnly bool) ([]domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		if activeOnly && !a.IsActive {
			continue
		}
		out = append(out, cloneAccount(a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AccountNumber < out[j].AccountNumber })
	return out, nil
}
