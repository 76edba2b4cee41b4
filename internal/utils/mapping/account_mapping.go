package mapping

import (
	"strings"

	"github.com/SscSPs/estate_ledger/internal/core/domain"
	"github.com/SscSPs/estate_ledger/internal/dto"
)

// ToCreateAccountInput converts a create request to the service input.
func ToCreateAccountInput(req dto.CreateAccountRequest) domain.CreateAccountInput {
	in := domain.CreateAccountInput{
		Number:            req.Number,
		Name:              req.Name,
		AccountType:       domain.AccountType(strings.ToUpper(req.AccountType)),
		Description:       req.Description,
		IsBankAccount:     req.IsBankAccount || req.BankAccountNumber != nil,
		BankAccountNumber: req.BankAccountNumber,
	}
	if req.NormalBalance != nil {
		nb := domain.LineType(strings.ToUpper(*req.NormalBalance))
		in.NormalBalance = &nb
	}
	return in
}

// ToUpdateAccountInput converts an update request to the service input.
func ToUpdateAccountInput(req dto.UpdateAccountRequest) domain.UpdateAccountInput {
	var accountType *domain.AccountType
	if req.AccountType != nil {
		t := domain.AccountType(strings.ToUpper(*req.AccountType))
		accountType = &t
	}
	return domain.UpdateAccountInput{
		Number:            req.Number,
		AccountType:       accountType,
		Name:              req.Name,
		Description:       req.Description,
		IsActive:          req.IsActive,
		IsBankAccount:     req.IsBankAccount,
		BankAccountNumber: req.BankAccountNumber,
	}
}

// ToAccountFilter converts list query parameters.
func ToAccountFilter(p dto.ListAccountsParams) domain.AccountFilter {
	var f domain.AccountFilter
	if p.Type != "" {
		t := domain.AccountType(strings.ToUpper(p.Type))
		f.Type = &t
	}
	f.Active = p.Active
	return f
}
