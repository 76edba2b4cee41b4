package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/estate_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// AccountReader defines read operations for account data
type AccountReader interface {
	// FindAccountByID retrieves a specific account by its unique identifier.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// FindAccountByNumber retrieves an account by its business number.
	FindAccountByNumber(ctx context.Context, number string) (*domain.Account, error)

	// FindAccountByBankAccountNumber retrieves the ledger account mapped to an external bank account.
	FindAccountByBankAccountNumber(ctx context.Context, bankAccountNumber string) (*domain.Account, error)

	// FindAccountsByIDs retrieves multiple accounts by their IDs.
	FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error)

	// ListAccounts retrieves accounts ordered by number.
	ListAccounts(ctx context.Context, filter domain.AccountFilter) ([]domain.Account, error)

	// AccountHasLines reports whether any journal line references the account.
	AccountHasLines(ctx context.Context, accountID string) (bool, error)
}

// AccountWriter defines write operations for account data
type AccountWriter interface {
	// SaveAccount persists a new account.
	SaveAccount(ctx context.Context, account domain.Account) error

	// UpdateAccount updates an existing account's details. It never touches the balance.
	UpdateAccount(ctx context.Context, account domain.Account) error
}

// AccountTransactionSupport is used by the journal engine only.
type AccountTransactionSupport interface {
	// FindAccountsByIDsForUpdate selects accounts and locks them for update within the context's transaction.
	FindAccountsByIDsForUpdate(ctx context.Context, accountIDs []string) (map[string]domain.Account, error)

	// UpdateAccountBalances stores new absolute balances for the given accounts.
	UpdateAccountBalances(ctx context.Context, balances map[string]decimal.Decimal, userID string, now time.Time) error
}

// AccountRepositoryFacade combines all account-related repository interfaces
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
	AccountTransactionSupport
}
