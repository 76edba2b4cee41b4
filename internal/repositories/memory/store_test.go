package memory

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/SscSPs/estate_ledger/internal/apperrors"
	"github.com/SscSPs/estate_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAccount(id, number string) domain.Account {
	return domain.Account{
		AccountID:   id,
		Number:      number,
		Name:        "Account " + number,
		AccountType: domain.Asset,
		IsActive:    true,
		Balance:     decimal.Zero,
	}
}

func TestWithinTx_RollbackOnError(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	require.NoError(t, s.SaveAccount(ctx, testAccount("a1", "1000")))

	boom := errors.New("boom")
	err := s.WithinTx(ctx, func(ctx context.Context) error {
		require.NoError(t, s.UpdateAccountBalances(ctx, map[string]decimal.Decimal{"a1": decimal.NewFromInt(50)}, "u", time.Now()))
		require.NoError(t, s.SaveAccount(ctx, testAccount("a2", "1001")))
		_, err := s.NextValue(ctx, "JE-20260101")
		require.NoError(t, err)
		return boom
	})
	require.ErrorIs(t, err, boom)

	a, err := s.FindAccountByID(ctx, "a1")
	require.NoError(t, err)
	assert.True(t, a.Balance.IsZero())
	_, err = s.FindAccountByID(ctx, "a2")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	seq, err := s.NextValue(ctx, "JE-20260101")
	require.NoError(t, err)
	assert.EqualValues(t, 1, seq, "sequence increments inside a rolled back tx are discarded")
}

func TestWithinTx_RollbackOnPanic(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	err := s.WithinTx(ctx, func(ctx context.Context) error {
		require.NoError(t, s.SaveAccount(ctx, testAccount("a1", "1000")))
		panic("unexpected")
	})
	require.Error(t, err)

	_, err = s.FindAccountByID(ctx, "a1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	// the lock must have been released
	require.NoError(t, s.SaveAccount(ctx, testAccount("a1", "1000")))
}

func TestWithinTx_NestedJoinsOuter(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	err := s.WithinTx(ctx, func(ctx context.Context) error {
		require.NoError(t, s.WithinTx(ctx, func(ctx context.Context) error {
			return s.SaveAccount(ctx, testAccount("a1", "1000"))
		}))
		return errors.New("outer fails")
	})
	require.Error(t, err)

	_, err = s.FindAccountByID(ctx, "a1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound, "inner work rolls back with the outer tx")
}

func TestSaveAccount_DuplicateNumber(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	require.NoError(t, s.SaveAccount(ctx, testAccount("a1", "1000")))
	assert.ErrorIs(t, s.SaveAccount(ctx, testAccount("a2", "1000")), apperrors.ErrDuplicate)
}

func TestListJournalEntries_Pagination(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, s.SaveJournalEntry(ctx, domain.JournalEntry{
			JournalEntryID: fmt.Sprintf("je-%d", i),
			EntryNumber:    fmt.Sprintf("JE-%d", i),
			EntryDate:      base.AddDate(0, 0, i),
			Status:         domain.Posted,
			ReferenceType:  domain.RefManual,
			AuditFields:    domain.NewAuditFields("u", base),
		}))
	}

	page1, next, err := s.ListJournalEntries(ctx, domain.JournalListParams{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page1, 2)
	require.NotNil(t, next)
	assert.Equal(t, "je-4", page1[0].JournalEntryID)
	assert.Equal(t, "je-3", page1[1].JournalEntryID)

	page2, next, err := s.ListJournalEntries(ctx, domain.JournalListParams{Limit: 2, NextToken: next})
	require.NoError(t, err)
	require.Len(t, page2, 2)
	assert.Equal(t, "je-2", page2[0].JournalEntryID)

	page3, next, err := s.ListJournalEntries(ctx, domain.JournalListParams{Limit: 2, NextToken: next})
	require.NoError(t, err)
	require.Len(t, page3, 1)
	assert.Nil(t, next)
}

func TestMarkJournalEntryVoid_Twice(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	require.NoError(t, s.SaveJournalEntry(ctx, domain.JournalEntry{JournalEntryID: "je-1", EntryNumber: "JE-1", Status: domain.Posted}))
	require.NoError(t, s.MarkJournalEntryVoid(ctx, "je-1", "u", time.Now()))
	assert.ErrorIs(t, s.MarkJournalEntryVoid(ctx, "je-1", "u", time.Now()), apperrors.ErrAlreadyVoid)
}

func TestGetAccountActivity_SkipsVoid(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	require.NoError(t, s.SaveAccount(ctx, testAccount("cash", "1000")))
	day := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	for i, status := range []domain.JournalStatus{domain.Posted, domain.Void} {
		id := fmt.Sprintf("je-%d", i)
		require.NoError(t, s.SaveJournalEntry(ctx, domain.JournalEntry{
			JournalEntryID: id,
			EntryNumber:    id,
			EntryDate:      day,
			Status:         status,
			Lines: []domain.JournalEntryLine{
				{LineID: id + "-l", JournalEntryID: id, AccountID: "cash", LineType: domain.Debit, Amount: decimal.NewFromInt(100)},
			},
		}))
	}

	activity, err := s.GetAccountActivity(ctx, nil, nil)
	require.NoError(t, err)
	require.Len(t, activity, 1)
	assert.True(t, activity[0].Debits.Equal(decimal.NewFromInt(100)))

	before := day.AddDate(0, 0, -1)
	activity, err = s.GetAccountActivity(ctx, nil, &before)
	require.NoError(t, err)
	assert.True(t, activity[0].Debits.IsZero())
}

func TestListBills_OverdueFilter(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	due := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	bills := []domain.Bill{
		{BillID: "b1", InvoiceNumber: "INV-1", Status: domain.BillPending, DueDate: due},
		{BillID: "b2", InvoiceNumber: "INV-2", Status: domain.BillPaid, DueDate: due},
		{BillID: "b3", InvoiceNumber: "INV-3", Status: domain.BillPartial, DueDate: due.AddDate(0, 1, 0)},
	}
	for _, b := range bills {
		require.NoError(t, s.SaveBill(ctx, b))
	}

	cutoff := domain.OverdueCutoff(time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC), 5)
	got, err := s.ListBills(ctx, domain.BillFilter{OpenOnly: true, DueBefore: &cutoff})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "b1", got[0].BillID)
}
