package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/estate_ledger/internal/apperrors"
	"github.com/SscSPs/estate_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/estate_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/estate_ledger/internal/core/ports/services"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// accountService implements the AccountSvcFacade interface
type accountService struct {
	BaseService
	txManager   portsrepo.TransactionManager
	accountRepo portsrepo.AccountRepositoryFacade
}

// NewAccountService creates a new account service with the provided options
func NewAccountService(txManager portsrepo.TransactionManager, repo portsrepo.AccountRepositoryFacade, options ...ServiceOption) portssvc.AccountSvcFacade {
	return &accountService{
		BaseService: newBase(options),
		txManager:   txManager,
		accountRepo: repo,
	}
}

// Ensure accountService implements the AccountSvcFacade interface
var _ portssvc.AccountSvcFacade = (*accountService)(nil)

func (s *accountService) CreateAccount(ctx context.Context, in domain.CreateAccountInput, actor domain.Actor) (*domain.Account, error) {
	in.Number = strings.TrimSpace(in.Number)
	in.Name = strings.TrimSpace(in.Name)
	if in.Number == "" || in.Name == "" {
		return nil, fmt.Errorf("%w: account number and name are required", apperrors.ErrValidation)
	}
	if !in.AccountType.Valid() {
		return nil, fmt.Errorf("%w: invalid account type %q", apperrors.ErrValidation, in.AccountType)
	}
	if in.NormalBalance != nil && !in.NormalBalance.Valid() {
		return nil, fmt.Errorf("%w: invalid normal balance %q", apperrors.ErrValidation, *in.NormalBalance)
	}

	account := domain.Account{
		AccountID:         uuid.NewString(),
		Number:            in.Number,
		Name:              in.Name,
		AccountType:       in.AccountType,
		NormalBalance:     in.NormalBalance,
		Description:       in.Description,
		IsSystemAccount:   isRequiredNumber(in.Number),
		IsActive:          true,
		IsBankAccount:     in.IsBankAccount,
		BankAccountNumber: normalizeOptional(in.BankAccountNumber),
		Balance:           decimal.Zero,
		AuditFields:       domain.NewAuditFields(actor.UserID, s.Now()),
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		s.LogError(ctx, err, "Failed to save account",
			slog.String("account_number", account.Number))
		return nil, err
	}

	s.LogInfo(ctx, "Account created successfully",
		slog.String("account_id", account.AccountID),
		slog.String("account_number", account.Number))
	return &account, nil
}

func (s *accountService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find account by ID",
				slog.String("account_id", accountID))
		}
		return nil, err
	}
	return account, nil
}

func (s *accountService) GetAccountByNumber(ctx context.Context, number string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByNumber(ctx, number)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find account by number",
				slog.String("account_number", number))
		}
		return nil, err
	}
	return account, nil
}

func (s *accountService) ListAccounts(ctx context.Context, filter domain.AccountFilter) ([]domain.Account, error) {
	if filter.Type != nil && !filter.Type.Valid() {
		return nil, fmt.Errorf("%w: invalid account type %q", apperrors.ErrValidation, *filter.Type)
	}
	accounts, err := s.accountRepo.ListAccounts(ctx, filter)
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounts")
		return nil, err
	}
	return accounts, nil
}

func (s *accountService) UpdateAccount(ctx context.Context, accountID string, in domain.UpdateAccountInput, actor domain.Actor) (*domain.Account, error) {
	var updated *domain.Account
	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		account, err := s.accountRepo.FindAccountByID(ctx, accountID)
		if err != nil {
			return err
		}
		if err := s.applyIdentityChange(ctx, account, in); err != nil {
			return err
		}
		if in.Name != nil {
			name := strings.TrimSpace(*in.Name)
			if name == "" {
				return fmt.Errorf("%w: account name cannot be empty", apperrors.ErrValidation)
			}
			account.Name = name
		}
		if in.Description != nil {
			account.Description = *in.Description
		}
		if in.IsActive != nil {
			if !*in.IsActive && account.IsSystemAccount {
				return fmt.Errorf("%w: system account %s cannot be deactivated", apperrors.ErrConflict, account.Number)
			}
			account.IsActive = *in.IsActive
		}
		if in.IsBankAccount != nil {
			account.IsBankAccount = *in.IsBankAccount
		}
		if in.BankAccountNumber != nil {
			account.BankAccountNumber = normalizeOptional(in.BankAccountNumber)
		}
		account.Touch(actor.UserID, s.Now())
		if err := s.accountRepo.UpdateAccount(ctx, *account); err != nil {
			return err
		}
		updated = account
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
		case errors.Is(err, apperrors.ErrConflict), errors.Is(err, apperrors.ErrValidation), errors.Is(err, apperrors.ErrDuplicate):
			s.LogWarn(ctx, "Account update rejected", slog.String("account_id", accountID), slog.String("error", err.Error()))
		default:
			s.LogError(ctx, err, "Failed to update account", slog.String("account_id", accountID))
		}
		return nil, err
	}
	s.LogInfo(ctx, "Account updated successfully", slog.String("account_id", accountID))
	return updated, nil
}

// applyIdentityChange renumbers or retypes an account. Both are frozen once any journal line
// references the account, and system accounts never change identity.
func (s *accountService) applyIdentityChange(ctx context.Context, account *domain.Account, in domain.UpdateAccountInput) error {
	number, accountType := account.Number, account.AccountType
	if in.Number != nil {
		number = strings.TrimSpace(*in.Number)
		if number == "" {
			return fmt.Errorf("%w: account number cannot be empty", apperrors.ErrValidation)
		}
	}
	if in.AccountType != nil {
		accountType = domain.AccountType(strings.ToUpper(string(*in.AccountType)))
		if !accountType.Valid() {
			return fmt.Errorf("%w: invalid account type %q", apperrors.ErrValidation, *in.AccountType)
		}
	}
	if number == account.Number && accountType == account.AccountType {
		return nil
	}

	if account.IsSystemAccount || isRequiredNumber(number) {
		return fmt.Errorf("%w: system account numbers and types are fixed", apperrors.ErrConflict)
	}
	hasLines, err := s.accountRepo.AccountHasLines(ctx, account.AccountID)
	if err != nil {
		return fmt.Errorf("failed to check account history: %w", err)
	}
	if hasLines {
		return fmt.Errorf("%w: account %s has journal lines; its number and type can no longer change", apperrors.ErrConflict, account.Number)
	}
	account.Number, account.AccountType = number, accountType
	return nil
}

// DeleteAccount is a soft delete: the account is deactivated and its history kept.
func (s *accountService) DeleteAccount(ctx context.Context, accountID string, actor domain.Actor) error {
	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		account, err := s.accountRepo.FindAccountByID(ctx, accountID)
		if err != nil {
			return err
		}
		if account.IsSystemAccount {
			return fmt.Errorf("%w: system account %s cannot be deleted", apperrors.ErrConflict, account.Number)
		}
		if !account.IsActive {
			return nil
		}
		account.IsActive = false
		account.Touch(actor.UserID, s.Now())
		return s.accountRepo.UpdateAccount(ctx, *account)
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) && !errors.Is(err, apperrors.ErrConflict) {
			s.LogError(ctx, err, "Failed to delete account", slog.String("account_id", accountID))
		}
		return err
	}
	s.LogInfo(ctx, "Account deactivated", slog.String("account_id", accountID))
	return nil
}

// EnsureRequiredAccounts checks the system accounts are provisioned and active.
func (s *accountService) EnsureRequiredAccounts(ctx context.Context) error {
	_, err := s.RequiredAccounts(ctx)
	return err
}

func (s *accountService) RequiredAccounts(ctx context.Context) (*domain.SystemAccounts, error) {
	found := make(map[string]domain.Account, len(domain.RequiredAccountNumbers))
	var missing []string
	for _, number := range domain.RequiredAccountNumbers {
		account, err := s.accountRepo.FindAccountByNumber(ctx, number)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				missing = append(missing, number)
				continue
			}
			return nil, err
		}
		if !account.IsActive {
			missing = append(missing, number)
			continue
		}
		if _, err := account.ResolveNormalBalance(); err != nil {
			return nil, err
		}
		found[number] = *account
	}
	if len(missing) > 0 {
		err := apperrors.NewConfigurationError("required system accounts are not provisioned", missing...)
		s.LogError(ctx, err, "Ledger configuration incomplete", slog.Any("missing_accounts", missing))
		return nil, err
	}
	return &domain.SystemAccounts{
		Receivable:      found[domain.AccountNumberReceivable],
		DeferredRevenue: found[domain.AccountNumberDeferredRevenue],
		WHTPayable:      found[domain.AccountNumberWHTPayable],
		MemberDues:      found[domain.AccountNumberMemberDues],
	}, nil
}

func isRequiredNumber(number string) bool {
	for _, n := range domain.RequiredAccountNumbers {
		if n == number {
			return true
		}
	}
	return false
}

func normalizeOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
