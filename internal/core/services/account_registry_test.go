package services_test

import (
	"testing"

	"github.com/SscSPs/estate_ledger/internal/apperrors"
	"github.com/SscSPs/estate_ledger/internal/core/domain"
	"github.com/stretchr/testify/suite"
)

// AccountRegistryTestSuite exercises account updates against the in-memory store.
type AccountRegistryTestSuite struct {
	ledgerSuite
}

func TestAccountRegistryTestSuite(t *testing.T) {
	suite.Run(t, new(AccountRegistryTestSuite))
}

func typePtr(t domain.AccountType) *domain.AccountType { return &t }

func (s *AccountRegistryTestSuite) TestUpdateAccount_RenumberAndRetypeWithoutLines() {
	updated, err := s.svc.Account.UpdateAccount(s.ctx, s.accountID("5100"), domain.UpdateAccountInput{
		Number:      strPtr("1200"),
		AccountType: typePtr(domain.Asset),
	}, admin)
	s.Require().NoError(err)
	s.Equal("1200", updated.Number)
	s.Equal(domain.Asset, updated.AccountType)

	byNumber, err := s.svc.Account.GetAccountByNumber(s.ctx, "1200")
	s.Require().NoError(err)
	s.Equal(s.accountID("5100"), byNumber.AccountID)
}

func (s *AccountRegistryTestSuite) TestUpdateAccount_IdentityFrozenOnceLinesExist() {
	s.post("Opening fund", s.dr("1000", 5000), s.cr("3000", 5000))
	s.post("Repairs", s.dr("5000", 700), s.cr("1000", 700))

	_, err := s.svc.Account.UpdateAccount(s.ctx, s.accountID("5000"), domain.UpdateAccountInput{Number: strPtr("5900")}, admin)
	s.ErrorIs(err, apperrors.ErrConflict)

	_, err = s.svc.Account.UpdateAccount(s.ctx, s.accountID("5000"), domain.UpdateAccountInput{AccountType: typePtr(domain.Asset)}, admin)
	s.ErrorIs(err, apperrors.ErrConflict)

	renamed, err := s.svc.Account.UpdateAccount(s.ctx, s.accountID("5000"), domain.UpdateAccountInput{
		Number: strPtr("5000"),
		Name:   strPtr("Repairs & Maintenance"),
	}, admin)
	s.Require().NoError(err, "an unchanged number with other edits is allowed")
	s.Equal("Repairs & Maintenance", renamed.Name)
	s.Equal(domain.Expense, renamed.AccountType)
	s.requireBalance("5000", 700)
}

func (s *AccountRegistryTestSuite) TestUpdateAccount_SystemAndDuplicateNumbers() {
	_, err := s.svc.Account.UpdateAccount(s.ctx, s.accountID("1100"), domain.UpdateAccountInput{Number: strPtr("1150")}, admin)
	s.ErrorIs(err, apperrors.ErrConflict)

	_, err = s.svc.Account.UpdateAccount(s.ctx, s.accountID("5100"), domain.UpdateAccountInput{Number: strPtr("5000")}, admin)
	s.ErrorIs(err, apperrors.ErrDuplicate)

	_, err = s.svc.Account.UpdateAccount(s.ctx, s.accountID("5100"), domain.UpdateAccountInput{AccountType: typePtr("INCOME")}, admin)
	s.ErrorIs(err, apperrors.ErrValidation)

	s.Require().NoError(s.svc.Account.EnsureRequiredAccounts(s.ctx))
}
