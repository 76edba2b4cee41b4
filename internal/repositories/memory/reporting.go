package memory

import (
	"context"
	"sort"
	"time"

	"github.com/SscSPs/estate_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/estate_ledger/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

var _ portsrepo.ReportingRepository = (*Store)(nil)

// GetAccountActivity replays posted lines dated within [from, to].
func (s *Store) GetAccountActivity(ctx context.Context, from, to *time.Time) ([]domain.AccountActivity, error) {
	defer s.lock(ctx)()
	byAccount := make(map[string]*domain.AccountActivity, len(s.accounts))
	for id, a := range s.accounts {
		byAccount[id] = &domain.AccountActivity{Account: a, Debits: decimal.Zero, Credits: decimal.Zero}
	}
	for id, e := range s.journalEntries {
		if e.Status != domain.Posted {
			continue
		}
		if from != nil && e.EntryDate.Before(*from) {
			continue
		}
		if to != nil && e.EntryDate.After(*to) {
			continue
		}
		for _, l := range s.journalLines[id] {
			act, ok := byAccount[l.AccountID]
			if !ok {
				continue
			}
			if l.LineType == domain.Debit {
				act.Debits = act.Debits.Add(l.Amount)
			} else {
				act.Credits = act.Credits.Add(l.Amount)
			}
		}
	}
	out := make([]domain.AccountActivity, 0, len(byAccount))
	for _, act := range byAccount {
		out = append(out, *act)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Account.Number < out[j].Account.Number })
	return out, nil
}
