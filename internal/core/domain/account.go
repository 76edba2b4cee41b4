package domain

import (
	"fmt"

	"github.com/SscSPs/estate_ledger/internal/apperrors"
	"github.com/shopspring/decimal"
)

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	Expense   AccountType = "EXPENSE"
)

// Valid reports whether t is one of the five account types.
func (t AccountType) Valid() bool {
	switch t {
	case Asset, Liability, Equity, Revenue, Expense:
		return true
	}
	return false
}

// Required system account numbers. Their absence is a fatal configuration error.
const (
	AccountNumberReceivable      = "1100"
	AccountNumberDeferredRevenue = "2200"
	AccountNumberWHTPayable      = "2300"
	AccountNumberMemberDues      = "4000"
)

// RequiredAccountNumbers lists the accounts that must be provisioned before the ledger can run.
var RequiredAccountNumbers = []string{
	AccountNumberReceivable,
	AccountNumberDeferredRevenue,
	AccountNumberWHTPayable,
	AccountNumberMemberDues,
}

// Account represents a ledger account in the chart of accounts.
type Account struct {
	AccountID         string          `json:"accountID"`
	Number            string          `json:"number"` // stable business key, unique
	Name              string          `json:"name"`
	AccountType       AccountType     `json:"accountType"`
	NormalBalance     *LineType       `json:"normalBalance,omitempty"` // derived from AccountType when nil
	Description       string          `json:"description"`
	IsSystemAccount   bool            `json:"isSystemAccount"`
	IsActive          bool            `json:"isActive"`
	IsBankAccount     bool            `json:"isBankAccount"`
	BankAccountNumber *string         `json:"bankAccountNumber,omitempty"`
	Balance           decimal.Decimal `json:"balance"` // positive on the normal side
	AuditFields
}

// DefaultNormalBalance returns the natural side for an account type.
func DefaultNormalBalance(t AccountType) (LineType, bool) {
	switch t {
	case Asset, Expense:
		return Debit, true
	case Liability, Equity, Revenue:
		return Credit, true
	}
	return "", false
}

// ResolveNormalBalance returns the explicit normal balance, falling back to the one implied by the type.
func (a Account) ResolveNormalBalance() (LineType, error) {
	if a.NormalBalance != nil && a.NormalBalance.Valid() {
		return *a.NormalBalance, nil
	}
	if nb, ok := DefaultNormalBalance(a.AccountType); ok {
		return nb, nil
	}
	return "", apperrors.NewConfigurationError(
		fmt.Sprintf("account %s has no resolvable normal balance (type %q)", a.Number, a.AccountType))
}

// SignedEffect is the change a line of the given type and amount makes to this account's balance.
func (a Account) SignedEffect(amount decimal.Decimal, lineType LineType) (decimal.Decimal, error) {
	nb, err := a.ResolveNormalBalance()
	if err != nil {
		return decimal.Zero, err
	}
	if lineType == nb {
		return amount, nil
	}
	return amount.Neg(), nil
}

// ApplyLine applies one posted line to the account balance. A reversal is the same call with the
// line type flipped.
func (a *Account) ApplyLine(amount decimal.Decimal, lineType LineType) error {
	if !lineType.Valid() {
		return fmt.Errorf("%w: invalid line type %q", apperrors.ErrValidation, lineType)
	}
	delta, err := a.SignedEffect(amount, lineType)
	if err != nil {
		return err
	}
	a.Balance = a.Balance.Add(delta)
	return nil
}

// AccountFilter narrows ListAccounts.
type AccountFilter struct {
	Type   *AccountType
	Active *bool
}

// CreateAccountInput describes a new chart-of-accounts entry.
type CreateAccountInput struct {
	Number            string
	Name              string
	AccountType       AccountType
	NormalBalance     *LineType
	Description       string
	IsBankAccount     bool
	BankAccountNumber *string
}

// UpdateAccountInput holds the mutable account fields. Nil means unchanged. Number and AccountType
// can only change while no journal line references the account.
type UpdateAccountInput struct {
	Number            *string
	AccountType       *AccountType
	Name              *string
	Description       *string
	IsActive          *bool
	IsBankAccount     *bool
	BankAccountNumber *string
}

// SystemAccounts are the resolved required accounts.
type SystemAccounts struct {
	Receivable      Account
	DeferredRevenue Account
	WHTPayable      Account
	MemberDues      Account
}
