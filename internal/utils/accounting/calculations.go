package accounting

import (
	"fmt"
	"sort"

	"github.com/SscSPs/estate_ledger/internal/apperrors"
	"github.com/SscSPs/estate_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ValidateEntryLines checks the double-entry invariant on a set of lines before anything is persisted:
// at least two lines, each with a known side, an account and a positive amount, and debits equal to
// credits exactly.
func ValidateEntryLines(lines []domain.JournalLineInput) error {
	if len(lines) < 2 {
		return fmt.Errorf("%w: an entry needs at least two lines, got %d", apperrors.ErrUnbalancedEntry, len(lines))
	}

	debits, credits := decimal.Zero, decimal.Zero
	for i, line := range lines {
		if line.AccountID == "" {
			return fmt.Errorf("%w: line %d has no account", apperrors.ErrValidation, i+1)
		}
		if !line.LineType.Valid() {
			return fmt.Errorf("%w: line %d has invalid type %q", apperrors.ErrValidation, i+1, line.LineType)
		}
		if !line.Amount.IsPositive() {
			return fmt.Errorf("%w: line %d amount must be positive, got %s", apperrors.ErrValidation, i+1, line.Amount)
		}
		if line.LineType == domain.Debit {
			debits = debits.Add(line.Amount)
		} else {
			credits = credits.Add(line.Amount)
		}
	}

	if !debits.Equal(credits) {
		return fmt.Errorf("%w: debits sum is %s and credits sum is %s",
			apperrors.ErrUnbalancedEntry, debits.String(), credits.String())
	}
	return nil
}

// AccountIDs returns the distinct account ids referenced by lines, sorted so that row locks are
// always taken in the same order.
func AccountIDs(lines []domain.JournalEntryLine) []string {
	seen := make(map[string]struct{}, len(lines))
	ids := make([]string, 0, len(lines))
	for _, l := range lines {
		if _, ok := seen[l.AccountID]; !ok {
			seen[l.AccountID] = struct{}{}
			ids = append(ids, l.AccountID)
		}
	}
	sort.Strings(ids)
	return ids
}

// ApplyLines applies every line to its account and returns the new balances keyed by account id.
// With reverse set every line is applied with its type flipped, which undoes a prior application.
// The accounts map is not modified.
func ApplyLines(accounts map[string]domain.Account, lines []domain.JournalEntryLine, reverse bool) (map[string]decimal.Decimal, error) {
	working := make(map[string]domain.Account, len(accounts))
	for id, a := range accounts {
		working[id] = a
	}

	for _, line := range lines {
		account, ok := working[line.AccountID]
		if !ok {
			return nil, fmt.Errorf("%w: account %s not found", apperrors.ErrValidation, line.AccountID)
		}
		lineType := line.LineType
		if reverse {
			lineType = lineType.Opposite()
		}
		if err := account.ApplyLine(line.Amount, lineType); err != nil {
			return nil, err
		}
		working[line.AccountID] = account
	}

	balances := make(map[string]decimal.Decimal, len(working))
	for _, id := range AccountIDs(lines) {
		balances[id] = working[id].Balance
	}
	return balances, nil
}

// FlipLines returns copies of lines with every side swapped, as used by a reversing entry.
func FlipLines(lines []domain.JournalEntryLine) []domain.JournalLineInput {
	out := make([]domain.JournalLineInput, len(lines))
	for i, l := range lines {
		out[i] = domain.JournalLineInput{
			AccountID:   l.AccountID,
			LineType:    l.LineType.Opposite(),
			Amount:      l.Amount,
			Description: l.Description,
		}
	}
	return out
}

// Discrepancies compares stored balances with the net of replayed posted activity.
func Discrepancies(activity []domain.AccountActivity) ([]domain.LedgerDiscrepancy, error) {
	var out []domain.LedgerDiscrepancy
	for _, a := range activity {
		replayed, err := a.NetOnNormalSide()
		if err != nil {
			return nil, err
		}
		if !replayed.Equal(a.Account.Balance) {
			out = append(out, domain.LedgerDiscrepancy{
				AccountID:       a.Account.AccountID,
				AccountNumber:   a.Account.Number,
				StoredBalance:   a.Account.Balance,
				ReplayedBalance: replayed,
			})
		}
	}
	return out, nil
}
