package memory

import (
	"context"
	"sort"
	"time"

	"github.com/SscSPs/estate_ledger/internal/apperrors"
	"github.com/SscSPs/estate_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/estate_ledger/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

var _ portsrepo.AccountRepositoryFacade = (*Store)(nil)

func (s *Store) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	defer s.lock(ctx)()
	a, ok := s.accounts[accountID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &a, nil
}

func (s *Store) FindAccountByNumber(ctx context.Context, number string) (*domain.Account, error) {
	defer s.lock(ctx)()
	for _, a := range s.accounts {
		if a.Number == number {
			return &a, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (s *Store) FindAccountByBankAccountNumber(ctx context.Context, bankAccountNumber string) (*domain.Account, error) {
	defer s.lock(ctx)()
	for _, a := range s.accounts {
		if a.BankAccountNumber != nil && *a.BankAccountNumber == bankAccountNumber {
			return &a, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (s *Store) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	defer s.lock(ctx)()
	out := make(map[string]domain.Account, len(accountIDs))
	for _, id := range accountIDs {
		if a, ok := s.accounts[id]; ok {
			out[id] = a
		}
	}
	return out, nil
}

// FindAccountsByIDsForUpdate is FindAccountsByIDs; the transaction already holds the store lock.
func (s *Store) FindAccountsByIDsForUpdate(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	return s.FindAccountsByIDs(ctx, accountIDs)
}

func (s *Store) ListAccounts(ctx context.Context, filter domain.AccountFilter) ([]domain.Account, error) {
	defer s.lock(ctx)()
	out := []domain.Account{}
	for _, a := range s.accounts {
		if filter.Type != nil && a.AccountType != *filter.Type {
			continue
		}
		if filter.Active != nil && a.IsActive != *filter.Active {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (s *Store) AccountHasLines(ctx context.Context, accountID string) (bool, error) {
	defer s.lock(ctx)()
	for _, lines := range s.journalLines {
		for _, l := range lines {
			if l.AccountID == accountID {
				return true, nil
			}
		}
	}
	return false, nil
}

func (s *Store) SaveAccount(ctx context.Context, account domain.Account) error {
	defer s.lock(ctx)()
	for _, a := range s.accounts {
		if a.AccountID == account.AccountID || a.Number == account.Number {
			return apperrors.ErrDuplicate
		}
	}
	s.accounts[account.AccountID] = account
	return nil
}

// UpdateAccount replaces the descriptive fields. The balance is only written by UpdateAccountBalances.
func (s *Store) UpdateAccount(ctx context.Context, account domain.Account) error {
	defer s.lock(ctx)()
	existing, ok := s.accounts[account.AccountID]
	if !ok {
		return apperrors.ErrNotFound
	}
	if account.Number != existing.Number {
		for _, a := range s.accounts {
			if a.AccountID != account.AccountID && a.Number == account.Number {
				return apperrors.ErrDuplicate
			}
		}
	}
	account.Balance = existing.Balance
	account.CreatedAt, account.CreatedBy = existing.CreatedAt, existing.CreatedBy
	s.accounts[account.AccountID] = account
	return nil
}

func (s *Store) UpdateAccountBalances(ctx context.Context, balances map[string]decimal.Decimal, userID string, now time.Time) error {
	defer s.lock(ctx)()
	for id := range balances {
		if _, ok := s.accounts[id]; !ok {
			return apperrors.ErrNotFound
		}
	}
	for id, bal := range balances {
		a := s.accounts[id]
		a.Balance = bal
		a.Touch(userID, now)
		s.accounts[id] = a
	}
	return nil
}
