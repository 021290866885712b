package dto

import (
	"time"

	"github.com/SscSPs/erp_ledger/internal/core/domain"
)

// CreateAccountRequest defines the data needed to create a new ledger account.
type CreateAccountRequest struct {
	AccountNumber   string               `json:"accountNumber" binding:"required,max=20"`
	Name            string               `json:"name" binding:"required,max=255"`
	AccountType     domain.AccountType   `json:"accountType" binding:"required,oneof=ASSET LIABILITY EQUITY REVENUE EXPENSE"`
	NormalBalance   domain.NormalBalance `json:"normalBalance" binding:"omitempty,oneof=DEBIT CREDIT"` // defaults from the account type
	ParentAccountID *string              `json:"parentAccountID"`
	Description     string               `json:"description"`
}

// UpdateAccountRequest carries the only fields an account allows to change.
// Use pointers to distinguish between zero-value updates and fields not provided.
type UpdateAccountRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=255"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"isActive"`
}

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	AccountID       string               `json:"accountID"`
	AccountNumber   string               `json:"accountNumber"`
	Name            string               `json:"name"`
	AccountType     domain.AccountType   `json:"accountType"`
	NormalBalance   domain.NormalBalance `json:"normalBalance"`
	ParentAccountID string               `json:"parentAccountID"` // empty when top-level
	Description     string               `json:"description"`
	IsActive        bool                 `json:"isActive"`
	CreatedAt       time.Time            `json:"createdAt"`
	CreatedBy       string               `json:"createdBy"`
	LastUpdatedAt   time.Time            `json:"lastUpdatedAt"`
	LastUpdatedBy   string               `json:"lastUpdatedBy"`
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO
func ToAccountResponse(acc *domain.Account) AccountResponse {
	parent := ""
	if acc.ParentAccountID != nil {
		parent = *acc.ParentAccountID
	}
	return AccountResponse{
		AccountID:       acc.AccountID,
		AccountNumber:   acc.AccountNumber,
		Name:            acc.Name,
		AccountType:     acc.AccountType,
		NormalBalance:   acc.NormalBalance,
		ParentAccountID: parent,
		Description:     acc.Description,
		IsActive:        acc.IsActive,
		CreatedAt:       acc.CreatedAt,
		CreatedBy:       acc.CreatedBy,
		LastUpdatedAt:   acc.LastUpdatedAt,
		LastUpdatedBy:   acc.LastUpdatedBy,
	}
}

// ToListAccountResponse converts a slice of domain.Account to a slice of AccountResponse DTOs
func ToListAccountResponse(accounts []domain.Account) []AccountResponse {
	res := make([]AccountResponse, len(accounts))
	for i := range accounts {
		res[i] = ToAccountResponse(&accounts[i])
	}
	return res
}

// ListAccountsParams defines query parameters for listing accounts.
type ListAccountsParams struct {
	ActiveOnly bool `form:"activeOnly,default=false"`
}
