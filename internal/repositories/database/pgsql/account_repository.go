package pgsql

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/SscSPs/estate_ledger/internal/apperrors"
	"github.com/SscSPs/estate_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/estate_ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const accountColumns = `account_id, number, name, account_type, normal_balance, description, is_system_account,
	is_active, is_bank_account, bank_account_number, balance, created_at, created_by, last_updated_at, last_updated_by`

type PgxAccountRepository struct {
	BaseRepository
}

// newPgxAccountRepository creates a new repository for account data.
func newPgxAccountRepository(pool *pgxpool.Pool) *PgxAccountRepository {
	return &PgxAccountRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxAccountRepository implements portsrepo.AccountRepositoryFacade
var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

func scanAccount(row rowScanner) (domain.Account, error) {
	var a domain.Account
	var normal *string
	err := row.Scan(
		&a.AccountID,
		&a.Number,
		&a.Name,
		&a.AccountType,
		&normal,
		&a.Description,
		&a.IsSystemAccount,
		&a.IsActive,
		&a.IsBankAccount,
		&a.BankAccountNumber,
		&a.Balance,
		&a.CreatedAt,
		&a.CreatedBy,
		&a.LastUpdatedAt,
		&a.LastUpdatedBy,
	)
	if err != nil {
		return domain.Account{}, err
	}
	if normal != nil {
		nb := domain.LineType(*normal)
		a.NormalBalance = &nb
	}
	return a, nil
}

func collectAccounts(rows pgx.Rows) (map[string]domain.Account, error) {
	defer rows.Close()
	accounts := make(map[string]domain.Account)
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		accounts[a.AccountID] = a
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account rows: %w", err)
	}
	return accounts, nil
}

// SaveAccount inserts a new account.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`
	var normal *string
	if account.NormalBalance != nil {
		s := string(*account.NormalBalance)
		normal = &s
	}
	_, err := r.db(ctx).Exec(ctx, query,
		account.AccountID,
		account.Number,
		account.Name,
		account.AccountType,
		normal,
		account.Description,
		account.IsSystemAccount,
		account.IsActive,
		account.IsBankAccount,
		account.BankAccountNumber,
		account.Balance,
		account.CreatedAt,
		account.CreatedBy,
		account.LastUpdatedAt,
		account.LastUpdatedBy,
	)
	return mapError(err, "save account "+account.Number)
}

// FindAccountByID retrieves an account by its ID.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	return r.findOne(ctx, "account_id = $1", accountID)
}

// FindAccountByNumber retrieves an account by its business number.
func (r *PgxAccountRepository) FindAccountByNumber(ctx context.Context, number string) (*domain.Account, error) {
	return r.findOne(ctx, "number = $1", number)
}

// FindAccountByBankAccountNumber retrieves the ledger account mapped to an external bank account.
func (r *PgxAccountRepository) FindAccountByBankAccountNumber(ctx context.Context, bankAccountNumber string) (*domain.Account, error) {
	return r.findOne(ctx, "bank_account_number = $1", bankAccountNumber)
}

func (r *PgxAccountRepository) findOne(ctx context.Context, where string, arg any) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE ` + where + `;`
	a, err := scanAccount(r.db(ctx).QueryRow(ctx, query, arg))
	if err != nil {
		return nil, mapError(err, "find account")
	}
	return &a, nil
}

// FindAccountsByIDs retrieves multiple accounts by their IDs. Missing IDs are simply absent from the map.
func (r *PgxAccountRepository) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	if len(accountIDs) == 0 {
		return map[string]domain.Account{}, nil
	}
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = ANY($1);`
	rows, err := r.db(ctx).Query(ctx, query, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts by IDs: %w", err)
	}
	return collectAccounts(rows)
}

// FindAccountsByIDsForUpdate retrieves multiple accounts by IDs and locks the rows for update.
// Rows are locked in account_id order so concurrent postings cannot deadlock.
func (r *PgxAccountRepository) FindAccountsByIDsForUpdate(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	if len(accountIDs) == 0 {
		return map[string]domain.Account{}, nil
	}
	if !inTx(ctx) {
		slog.WarnContext(ctx, "Account lock requested outside a transaction", slog.Int("accounts", len(accountIDs)))
	}
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = ANY($1) ORDER BY account_id FOR UPDATE;`
	rows, err := r.db(ctx).Query(ctx, query, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts by IDs for update: %w", err)
	}
	return collectAccounts(rows)
}

// ListAccounts retrieves accounts ordered by number.
func (r *PgxAccountRepository) ListAccounts(ctx context.Context, filter domain.AccountFilter) ([]domain.Account, error) {
	var conds []string
	var args []any
	if filter.Type != nil {
		args = append(args, string(*filter.Type))
		conds = append(conds, "account_type = $"+strconv.Itoa(len(args)))
	}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		conds = append(conds, "is_active = $"+strconv.Itoa(len(args)))
	}
	query := `SELECT ` + accountColumns + ` FROM accounts`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY number;"

	rows, err := r.db(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	accounts := []domain.Account{}
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account rows: %w", err)
	}
	return accounts, nil
}

// AccountHasLines reports whether any journal line references the account.
func (r *PgxAccountRepository) AccountHasLines(ctx context.Context, accountID string) (bool, error) {
	var exists bool
	err := r.db(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM journal_entry_lines WHERE account_id = $1);`, accountID).Scan(&exists)
	if err != nil {
		return false, mapError(err, "check account lines")
	}
	return exists, nil
}

// UpdateAccount updates an existing account in the database. Type, number and balance are not editable here.
func (r *PgxAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	query := `
		UPDATE accounts
		SET name = $2, description = $3, is_active = $4, is_system_account = $5, is_bank_account = $6,
		    bank_account_number = $7, last_updated_at = $8, last_updated_by = $9, number = $10, account_type = $11
		WHERE account_id = $1;
	`
	cmdTag, err := r.db(ctx).Exec(ctx, query,
		account.AccountID,
		account.Name,
		account.Description,
		account.IsActive,
		account.IsSystemAccount,
		account.IsBankAccount,
		account.BankAccountNumber,
		account.LastUpdatedAt,
		account.LastUpdatedBy,
		account.Number,
		string(account.AccountType),
	)
	if err != nil {
		return mapError(err, "update account "+account.AccountID)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// UpdateAccountBalances stores new absolute balances. Callers must hold the row locks.
func (r *PgxAccountRepository) UpdateAccountBalances(ctx context.Context, balances map[string]decimal.Decimal, userID string, now time.Time) error {
	if len(balances) == 0 {
		return nil
	}
	query := `
		UPDATE accounts
		SET balance = $2, last_updated_at = $3, last_updated_by = $4
		WHERE account_id = $1;
	`
	batch := &pgx.Batch{}
	for accountID, balance := range balances {
		batch.Queue(query, accountID, balance, now, userID)
	}
	return execBatch(ctx, r.db(ctx), batch, "update account balances", true)
}
