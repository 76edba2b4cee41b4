package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountActivity is the raw debit/credit sum of posted lines for one account.
type AccountActivity struct {
	Account Account
	Debits  decimal.Decimal
	Credits decimal.Decimal
}

// NetOnNormalSide returns the activity netted against the account's normal balance.
func (a AccountActivity) NetOnNormalSide() (decimal.Decimal, error) {
	nb, err := a.Account.ResolveNormalBalance()
	if err != nil {
		return decimal.Zero, err
	}
	if nb == Debit {
		return a.Debits.Sub(a.Credits), nil
	}
	return a.Credits.Sub(a.Debits), nil
}

// TrialBalanceRow represents a single row in a trial balance report
type TrialBalanceRow struct {
	AccountID     string          `json:"accountID"`
	AccountNumber string          `json:"accountNumber"`
	AccountName   string          `json:"accountName"`
	AccountType   AccountType     `json:"accountType"`
	Debit         decimal.Decimal `json:"debit"`
	Credit        decimal.Decimal `json:"credit"`
}

// TrialBalance is the trial balance as of a date.
type TrialBalance struct {
	AsOf         time.Time         `json:"asOf"`
	Rows         []TrialBalanceRow `json:"rows"`
	TotalDebits  decimal.Decimal   `json:"totalDebits"`
	TotalCredits decimal.Decimal   `json:"totalCredits"`
	Balanced     bool              `json:"balanced"`
}

// AccountAmount represents an account with its net amount for financial reports
type AccountAmount struct {
	AccountID     string          `json:"accountID"`
	AccountNumber string          `json:"accountNumber"`
	Name          string          `json:"name"`
	NetAmount     decimal.Decimal `json:"netAmount"`
}

// IncomeStatement covers a closed date range.
type IncomeStatement struct {
	From          time.Time       `json:"from"`
	To            time.Time       `json:"to"`
	Revenue       []AccountAmount `json:"revenue"`
	Expenses      []AccountAmount `json:"expenses"`
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
	TotalExpenses decimal.Decimal `json:"totalExpenses"`
	NetIncome     decimal.Decimal `json:"netIncome"`
}

// CurrentEarningsLabel names the synthetic equity line holding unclosed net income.
const CurrentEarningsLabel = "Current Period Earnings"

// BalanceSheet is the statement of financial position as of a date.
type BalanceSheet struct {
	AsOf                      time.Time       `json:"asOf"`
	Assets                    []AccountAmount `json:"assets"`
	Liabilities               []AccountAmount `json:"liabilities"`
	Equity                    []AccountAmount `json:"equity"`
	TotalAssets               decimal.Decimal `json:"totalAssets"`
	TotalLiabilities          decimal.Decimal `json:"totalLiabilities"`
	TotalEquity               decimal.Decimal `json:"totalEquity"`
	CurrentEarnings           decimal.Decimal `json:"currentEarnings"`
	TotalLiabilitiesAndEquity decimal.Decimal `json:"totalLiabilitiesAndEquity"`
	Balanced                  bool            `json:"balanced"`
}
