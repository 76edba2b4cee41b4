package services

import (
	"context"

	"github.com/SscSPs/estate_ledger/internal/core/domain"
)

// AccountReaderSvc defines read operations for account data
type AccountReaderSvc interface {
	// GetAccountByID retrieves a specific account by its unique identifier.
	GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// GetAccountByNumber retrieves an account by its business number.
	GetAccountByNumber(ctx context.Context, number string) (*domain.Account, error)

	// ListAccounts retrieves accounts matching the filter.
	ListAccounts(ctx context.Context, filter domain.AccountFilter) ([]domain.Account, error)
}

// AccountWriterSvc defines write operations for account data
type AccountWriterSvc interface {
	// CreateAccount persists a new account.
	CreateAccount(ctx context.Context, in domain.CreateAccountInput, actor domain.Actor) (*domain.Account, error)

	// UpdateAccount updates an existing account's details.
	UpdateAccount(ctx context.Context, accountID string, in domain.UpdateAccountInput, actor domain.Actor) (*domain.Account, error)

	// DeleteAccount deactivates an account. System accounts cannot be deleted.
	DeleteAccount(ctx context.Context, accountID string, actor domain.Actor) error
}

// AccountProvisioningSvc covers the chart-of-accounts setup contract.
type AccountProvisioningSvc interface {
	// EnsureRequiredAccounts fails with a ConfigurationError naming every missing or inactive system account.
	EnsureRequiredAccounts(ctx context.Context) error

	// RequiredAccounts resolves the system accounts by number, failing like EnsureRequiredAccounts.
	RequiredAccounts(ctx context.Context) (*domain.SystemAccounts, error)

	// SeedChartOfAccounts upserts accounts from a YAML document. It returns the number created and updated.
	SeedChartOfAccounts(ctx context.Context, yamlDoc []byte, actor domain.Actor) (created int, updated int, err error)
}

// AccountSvcFacade combines all account-related service interfaces
// This is a facade for clients that need access to all operations
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
	AccountProvisioningSvc
}
