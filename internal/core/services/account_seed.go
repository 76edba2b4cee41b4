package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/estate_ledger/internal/apperrors"
	"github.com/SscSPs/estate_ledger/internal/core/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// chartOfAccounts is the YAML layout accepted by SeedChartOfAccounts.
type chartOfAccounts struct {
	Accounts []chartAccount `yaml:"accounts"`
}

type chartAccount struct {
	Number            string  `yaml:"number"`
	Name              string  `yaml:"name"`
	Type              string  `yaml:"type"`
	NormalBalance     string  `yaml:"normal_balance"`
	Description       string  `yaml:"description"`
	BankAccountNumber *string `yaml:"bank_account_number"`
}

// SeedChartOfAccounts upserts every account in the document by number in one transaction.
// Balances are never touched. Required numbers are flagged as system accounts.
func (s *accountService) SeedChartOfAccounts(ctx context.Context, yamlDoc []byte, actor domain.Actor) (int, int, error) {
	var chart chartOfAccounts
	if err := yaml.Unmarshal(yamlDoc, &chart); err != nil {
		return 0, 0, fmt.Errorf("%w: invalid chart of accounts: %v", apperrors.ErrValidation, err)
	}
	if len(chart.Accounts) == 0 {
		return 0, 0, fmt.Errorf("%w: chart of accounts is empty", apperrors.ErrValidation)
	}

	seen := make(map[string]bool, len(chart.Accounts))
	for i, a := range chart.Accounts {
		if a.Number == "" || a.Name == "" {
			return 0, 0, fmt.Errorf("%w: account #%d needs a number and a name", apperrors.ErrValidation, i+1)
		}
		if seen[a.Number] {
			return 0, 0, fmt.Errorf("%w: account number %s appears twice", apperrors.ErrValidation, a.Number)
		}
		seen[a.Number] = true
		if !domain.AccountType(strings.ToUpper(a.Type)).Valid() {
			return 0, 0, fmt.Errorf("%w: account %s has invalid type %q", apperrors.ErrValidation, a.Number, a.Type)
		}
		if a.NormalBalance != "" && !domain.LineType(strings.ToUpper(a.NormalBalance)).Valid() {
			return 0, 0, fmt.Errorf("%w: account %s has invalid normal balance %q", apperrors.ErrValidation, a.Number, a.NormalBalance)
		}
	}

	created, updated := 0, 0
	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		created, updated = 0, 0
		now := s.Now()
		for _, a := range chart.Accounts {
			accountType := domain.AccountType(strings.ToUpper(a.Type))
			var normal *domain.LineType
			if a.NormalBalance != "" {
				nb := domain.LineType(strings.ToUpper(a.NormalBalance))
				normal = &nb
			}
			bankNumber := normalizeOptional(a.BankAccountNumber)

			existing, err := s.accountRepo.FindAccountByNumber(ctx, a.Number)
			switch {
			case errors.Is(err, apperrors.ErrNotFound):
				account := domain.Account{
					AccountID:         uuid.NewString(),
					Number:            a.Number,
					Name:              a.Name,
					AccountType:       accountType,
					NormalBalance:     normal,
					Description:       a.Description,
					IsSystemAccount:   isRequiredNumber(a.Number),
					IsActive:          true,
					IsBankAccount:     bankNumber != nil,
					BankAccountNumber: bankNumber,
					Balance:           decimal.Zero,
					AuditFields:       domain.NewAuditFields(actor.UserID, now),
				}
				if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
					return fmt.Errorf("failed to create account %s: %w", a.Number, err)
				}
				created++
			case err != nil:
				return err
			default:
				if existing.AccountType != accountType {
					return fmt.Errorf("%w: account %s exists with type %s, chart says %s",
						apperrors.ErrConflict, a.Number, existing.AccountType, accountType)
				}
				existing.Name = a.Name
				existing.Description = a.Description
				existing.IsActive = true
				existing.IsSystemAccount = existing.IsSystemAccount || isRequiredNumber(a.Number)
				if bankNumber != nil {
					existing.IsBankAccount = true
					existing.BankAccountNumber = bankNumber
				}
				existing.Touch(actor.UserID, now)
				if err := s.accountRepo.UpdateAccount(ctx, *existing); err != nil {
					return fmt.Errorf("failed to update account %s: %w", a.Number, err)
				}
				updated++
			}
		}
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Chart of accounts seed failed")
		return 0, 0, err
	}
	s.LogInfo(ctx, "Chart of accounts seeded", slog.Int("created", created), slog.Int("updated", updated))
	return created, updated, nil
}
