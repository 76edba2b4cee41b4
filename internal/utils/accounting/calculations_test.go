package accounting

import (
	"testing"

	"github.com/SscSPs/estate_ledger/internal/apperrors"
	"github.com/SscSPs/estate_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestValidateEntryLines(t *testing.T) {
	tests := []struct {
		name    string
		lines   []domain.JournalLineInput
		wantErr error
	}{
		{
			name: "balanced",
			lines: []domain.JournalLineInput{
				{AccountID: "a", LineType: domain.Debit, Amount: d("50000")},
				{AccountID: "b", LineType: domain.Credit, Amount: d("50000")},
			},
		},
		{
			name:    "single line",
			lines:   []domain.JournalLineInput{{AccountID: "a", LineType: domain.Debit, Amount: d("1")}},
			wantErr: apperrors.ErrUnbalancedEntry,
		},
		{
			name: "off by one cent",
			lines: []domain.JournalLineInput{
				{AccountID: "a", LineType: domain.Debit, Amount: d("100.00")},
				{AccountID: "b", LineType: domain.Credit, Amount: d("99.99")},
			},
			wantErr: apperrors.ErrUnbalancedEntry,
		},
		{
			name: "zero amount",
			lines: []domain.JournalLineInput{
				{AccountID: "a", LineType: domain.Debit, Amount: d("0")},
				{AccountID: "b", LineType: domain.Credit, Amount: d("0")},
			},
			wantErr: apperrors.ErrValidation,
		},
		{
			name: "bad side",
			lines: []domain.JournalLineInput{
				{AccountID: "a", LineType: "SIDEWAYS", Amount: d("1")},
				{AccountID: "b", LineType: domain.Credit, Amount: d("1")},
			},
			wantErr: apperrors.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEntryLines(tt.lines)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestApplyLinesAndReverse(t *testing.T) {
	accounts := map[string]domain.Account{
		"ar":  {AccountID: "ar", Number: "1100", AccountType: domain.Asset, Balance: decimal.Zero},
		"def": {AccountID: "def", Number: "2200", AccountType: domain.Liability, Balance: decimal.Zero},
	}
	lines := []domain.JournalEntryLine{
		{AccountID: "ar", LineType: domain.Debit, Amount: d("50000")},
		{AccountID: "def", LineType: domain.Credit, Amount: d("50000")},
	}

	posted, err := ApplyLines(accounts, lines, false)
	require.NoError(t, err)
	assert.True(t, posted["ar"].Equal(d("50000")))
	assert.True(t, posted["def"].Equal(d("50000")))
	assert.True(t, accounts["ar"].Balance.IsZero(), "input map must not be modified")

	for id, bal := range posted {
		a := accounts[id]
		a.Balance = bal
		accounts[id] = a
	}
	reversed, err := ApplyLines(accounts, lines, true)
	require.NoError(t, err)
	assert.True(t, reversed["ar"].IsZero())
	assert.True(t, reversed["def"].IsZero())
}

func TestApplyLinesUnknownAccount(t *testing.T) {
	_, err := ApplyLines(map[string]domain.Account{}, []domain.JournalEntryLine{
		{AccountID: "x", LineType: domain.Debit, Amount: d("1")},
	}, false)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestAccountIDsSortedAndUnique(t *testing.T) {
	ids := AccountIDs([]domain.JournalEntryLine{{AccountID: "c"}, {AccountID: "a"}, {AccountID: "c"}, {AccountID: "b"}})
	assert.Equal(t, []string{"a", "b", "c"}, ids)
}

func TestDiscrepancies(t *testing.T) {
	activity := []domain.AccountActivity{
		{
			Account: domain.Account{AccountID: "cash", Number: "1000", AccountType: domain.Asset, Balance: d("70")},
			Debits:  d("100"), Credits: d("30"),
		},
		{
			Account: domain.Account{AccountID: "rev", Number: "4000", AccountType: domain.Revenue, Balance: d("10")},
			Debits:  d("0"), Credits: d("100"),
		},
	}
	out, err := Discrepancies(activity)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "4000", out[0].AccountNumber)
	assert.True(t, out[0].ReplayedBalance.Equal(d("100")))
}
