package dto

import (
	"time"

	"github.com/SscSPs/estate_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest defines the data needed to create a new account.
type CreateAccountRequest struct {
	Number            string  `json:"number" binding:"required,max=20"`
	Name              string  `json:"name" binding:"required,max=255"`
	AccountType       string  `json:"accountType" binding:"required,oneof=ASSET LIABILITY EQUITY REVENUE EXPENSE"`
	NormalBalance     *string `json:"normalBalance" binding:"omitempty,oneof=DEBIT CREDIT"`
	Description       string  `json:"description"`
	IsBankAccount     bool    `json:"isBankAccount"`
	BankAccountNumber *string `json:"bankAccountNumber"`
}

// UpdateAccountRequest defines the data allowed for updating an account.
// Use pointers to distinguish between zero-value updates and fields not provided.
type UpdateAccountRequest struct {
	Number            *string `json:"number" binding:"omitempty,min=1,max=20"`
	AccountType       *string `json:"accountType" binding:"omitempty,oneof=ASSET LIABILITY EQUITY REVENUE EXPENSE"`
	Name              *string `json:"name" binding:"omitempty,max=255"`
	Description       *string `json:"description"`
	IsActive          *bool   `json:"isActive"`
	IsBankAccount     *bool   `json:"isBankAccount"`
	BankAccountNumber *string `json:"bankAccountNumber"`
}

// ListAccountsParams defines query parameters for listing accounts.
type ListAccountsParams struct {
	Type   string `form:"type" binding:"omitempty,oneof=ASSET LIABILITY EQUITY REVENUE EXPENSE"`
	Active *bool  `form:"active"`
}

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	AccountID         string          `json:"accountID"`
	Number            string          `json:"number"`
	Name              string          `json:"name"`
	AccountType       string          `json:"accountType"`
	NormalBalance     string          `json:"normalBalance"`
	Description       string          `json:"description"`
	IsSystemAccount   bool            `json:"isSystemAccount"`
	IsActive          bool            `json:"isActive"`
	IsBankAccount     bool            `json:"isBankAccount"`
	BankAccountNumber *string         `json:"bankAccountNumber,omitempty"`
	Balance           decimal.Decimal `json:"balance"`
	CreatedAt         time.Time       `json:"createdAt"`
	CreatedBy         string          `json:"createdBy"`
	LastUpdatedAt     time.Time       `json:"lastUpdatedAt"`
	LastUpdatedBy     string          `json:"lastUpdatedBy"`
}

// ListAccountsResponse wraps the list of accounts.
type ListAccountsResponse struct {
	Accounts []AccountResponse `json:"accounts"`
}

// SeedAccountsResponse reports a chart-of-accounts upsert.
type SeedAccountsResponse struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO
func ToAccountResponse(acc *domain.Account) AccountResponse {
	normal, _ := acc.ResolveNormalBalance()
	return AccountResponse{
		AccountID:         acc.AccountID,
		Number:            acc.Number,
		Name:              acc.Name,
		AccountType:       string(acc.AccountType),
		NormalBalance:     string(normal),
		Description:       acc.Description,
		IsSystemAccount:   acc.IsSystemAccount,
		IsActive:          acc.IsActive,
		IsBankAccount:     acc.IsBankAccount,
		BankAccountNumber: acc.BankAccountNumber,
		Balance:           acc.Balance,
		CreatedAt:         acc.CreatedAt,
		CreatedBy:         acc.CreatedBy,
		LastUpdatedAt:     acc.LastUpdatedAt,
		LastUpdatedBy:     acc.LastUpdatedBy,
	}
}

// ToListAccountResponse converts a slice of domain.Account to a slice of AccountResponse DTOs
func ToListAccountResponse(accounts []domain.Account) ListAccountsResponse {
	res := make([]AccountResponse, len(accounts))
	for i := range accounts {
		res[i] = ToAccountResponse(&accounts[i])
	}
	return ListAccountsResponse{Accounts: res}
}
