package services_test

import (
	"testing"

	"github.com/SscSPs/estate_ledger/internal/apperrors"
	"github.com/SscSPs/estate_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type JournalServiceTestSuite struct {
	ledgerSuite
}

func TestJournalServiceTestSuite(t *testing.T) {
	suite.Run(t, new(JournalServiceTestSuite))
}

func (s *JournalServiceTestSuite) TestPostJournalEntry_UpdatesBalances() {
	entry := s.post("Opening fund", s.dr("1000", 120000), s.cr("3000", 120000))

	s.Equal("JE-20240301-0001", entry.EntryNumber)
	s.Equal(domain.Posted, entry.Status)
	s.Equal(domain.RefManual, entry.ReferenceType)
	s.requireDecimal(120000, entry.TotalDebit)
	s.requireDecimal(120000, entry.TotalCredit)
	s.Len(entry.Lines, 2)

	s.requireBalance("1000", 120000)
	s.requireBalance("3000", 120000)
	s.Equal([]domain.EventType{domain.EventJournalPosted}, s.recorder.Types())
	s.requireLedgerConsistent()
}

func (s *JournalServiceTestSuite) TestPostJournalEntry_SequentialNumbers() {
	first := s.post("first", s.dr("1000", 10), s.cr("3000", 10))
	second := s.post("second", s.dr("1000", 10), s.cr("3000", 10))
	s.Equal("JE-20240301-0001", first.EntryNumber)
	s.Equal("JE-20240301-0002", second.EntryNumber)

	s.now = s.now.AddDate(0, 0, 1)
	third := s.post("next day", s.dr("1000", 10), s.cr("3000", 10))
	s.Equal("JE-20240302-0001", third.EntryNumber)
}

func (s *JournalServiceTestSuite) TestPostJournalEntry_Rejections() {
	tests := []struct {
		name  string
		in    domain.PostJournalInput
		isErr error
	}{
		{
			name:  "unbalanced",
			in:    domain.PostJournalInput{Description: "x", Lines: []domain.JournalLineInput{s.dr("1000", 100), s.cr("3000", 99)}},
			isErr: apperrors.ErrUnbalancedEntry,
		},
		{
			name:  "single line",
			in:    domain.PostJournalInput{Description: "x", Lines: []domain.JournalLineInput{s.dr("1000", 100)}},
			isErr: apperrors.ErrUnbalancedEntry,
		},
		{
			name:  "non-positive amount",
			in:    domain.PostJournalInput{Description: "x", Lines: []domain.JournalLineInput{s.dr("1000", 0), s.cr("3000", 0)}},
			isErr: apperrors.ErrValidation,
		},
		{
			name:  "missing description",
			in:    domain.PostJournalInput{Lines: []domain.JournalLineInput{s.dr("1000", 100), s.cr("3000", 100)}},
			isErr: apperrors.ErrValidation,
		},
		{
			name: "unknown account",
			in: domain.PostJournalInput{Description: "x", Lines: []domain.JournalLineInput{
				s.dr("1000", 100),
				{AccountID: "missing", LineType: domain.Credit, Amount: d(100)},
			}},
			isErr: apperrors.ErrValidation,
		},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.svc.Journal.PostJournalEntry(s.ctx, tt.in, accountant)
			s.ErrorIs(err, tt.isErr)
		})
	}

	s.requireBalance("1000", 0)
	s.Empty(s.recorder.Types(), "rejected entries publish nothing")
}

func (s *JournalServiceTestSuite) TestPostJournalEntry_InactiveAccount() {
	inactive := false
	_, err := s.svc.Account.UpdateAccount(s.ctx, s.accountID("1010"), domain.UpdateAccountInput{IsActive: &inactive}, admin)
	s.Require().NoError(err)

	_, err = s.svc.Journal.PostJournalEntry(s.ctx, domain.PostJournalInput{
		Description: "petty cash top-up",
		Lines:       []domain.JournalLineInput{s.dr("1010", 100), s.cr("1000", 100)},
	}, accountant)
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *JournalServiceTestSuite) TestVoidJournalEntry_RestoresBalancesAndRejectsTwice() {
	s.post("Opening fund", s.dr("1000", 5000), s.cr("3000", 5000))
	entry := s.post("Repairs", s.dr("5000", 1200), s.cr("1000", 1200))
	s.requireBalance("1000", 3800)

	voided, err := s.svc.Journal.VoidJournalEntry(s.ctx, entry.JournalEntryID, accountant)
	s.Require().NoError(err)
	s.Equal(domain.Void, voided.Status)
	s.Require().NotNil(voided.VoidedAt)
	s.Require().NotNil(voided.VoidedBy)
	s.Equal(accountant.UserID, *voided.VoidedBy)

	s.requireBalance("1000", 5000)
	s.requireBalance("5000", 0)

	_, err = s.svc.Journal.VoidJournalEntry(s.ctx, entry.JournalEntryID, accountant)
	s.ErrorIs(err, apperrors.ErrAlreadyVoid)
	s.requireBalance("1000", 5000)
	s.requireLedgerConsistent()
}

func (s *JournalServiceTestSuite) TestVoidJournalEntry_NotFound() {
	_, err := s.svc.Journal.VoidJournalEntry(s.ctx, "missing", accountant)
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *JournalServiceTestSuite) TestReverseJournalEntry() {
	s.post("Opening fund", s.dr("1000", 5000), s.cr("3000", 5000))
	entry := s.post("Repairs", s.dr("5000", 700), s.cr("1000", 700))

	reversal, err := s.svc.Journal.ReverseJournalEntry(s.ctx, entry.JournalEntryID, accountant)
	s.Require().NoError(err)
	s.Equal(domain.RefReversal, reversal.ReferenceType)
	s.Require().NotNil(reversal.ReferenceID)
	s.Equal(entry.JournalEntryID, *reversal.ReferenceID)
	s.requireBalance("5000", 0)
	s.requireBalance("1000", 5000)

	original, err := s.svc.Journal.GetJournalEntry(s.ctx, entry.JournalEntryID)
	s.Require().NoError(err)
	s.Equal(domain.Posted, original.Status, "reversal keeps the original posted")

	_, err = s.svc.Journal.ReverseJournalEntry(s.ctx, entry.JournalEntryID, accountant)
	s.ErrorIs(err, apperrors.ErrConflict, "already reversed")

	_, err = s.svc.Journal.ReverseJournalEntry(s.ctx, reversal.JournalEntryID, accountant)
	s.ErrorIs(err, apperrors.ErrConflict, "a reversal cannot be reversed")

	_, err = s.svc.Journal.VoidJournalEntry(s.ctx, reversal.JournalEntryID, accountant)
	s.Require().NoError(err)
	_, err = s.svc.Journal.ReverseJournalEntry(s.ctx, entry.JournalEntryID, accountant)
	s.NoError(err, "voiding the reversal allows a new one")
	s.requireLedgerConsistent()
}

func (s *JournalServiceTestSuite) TestReverseJournalEntry_VoidOriginal() {
	entry := s.post("Opening fund", s.dr("1000", 5000), s.cr("3000", 5000))
	_, err := s.svc.Journal.VoidJournalEntry(s.ctx, entry.JournalEntryID, accountant)
	s.Require().NoError(err)

	_, err = s.svc.Journal.ReverseJournalEntry(s.ctx, entry.JournalEntryID, accountant)
	s.ErrorIs(err, apperrors.ErrConflict)
}

func (s *JournalServiceTestSuite) TestListJournalEntries() {
	for i := 0; i < 3; i++ {
		s.post("entry", s.dr("1000", 10), s.cr("3000", 10))
	}
	voided := s.post("to void", s.dr("1000", 10), s.cr("3000", 10))
	_, err := s.svc.Journal.VoidJournalEntry(s.ctx, voided.JournalEntryID, accountant)
	s.Require().NoError(err)

	page, next, err := s.svc.Journal.ListJournalEntries(s.ctx, domain.JournalListParams{Limit: 3})
	s.Require().NoError(err)
	s.Len(page, 3)
	s.Require().NotNil(next)

	rest, next, err := s.svc.Journal.ListJournalEntries(s.ctx, domain.JournalListParams{Limit: 3, NextToken: next})
	s.Require().NoError(err)
	s.Len(rest, 1)
	s.Nil(next)

	posted := domain.Posted
	onlyPosted, _, err := s.svc.Journal.ListJournalEntries(s.ctx, domain.JournalListParams{Status: &posted})
	s.Require().NoError(err)
	s.Len(onlyPosted, 3)

	bad := "%%%"
	_, _, err = s.svc.Journal.ListJournalEntries(s.ctx, domain.JournalListParams{NextToken: &bad})
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *JournalServiceTestSuite) TestVerifyLedger_ReportsDivergence() {
	s.post("Opening fund", s.dr("1000", 5000), s.cr("3000", 5000))
	s.requireLedgerConsistent()

	// a balance write that bypasses the journal
	err := s.store.UpdateAccountBalances(s.ctx, map[string]decimal.Decimal{s.accountID("1000"): d(4999)}, "tamper", s.now)
	s.Require().NoError(err)

	discrepancies, err := s.svc.Journal.VerifyLedger(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(discrepancies, 1)
	s.Equal("1000", discrepancies[0].AccountNumber)
	s.requireDecimal(4999, discrepancies[0].StoredBalance)
	s.requireDecimal(5000, discrepancies[0].ReplayedBalance)
}

func (s *JournalServiceTestSuite) TestVoidAndReverse_RejectBillAndPaymentEntries() {
	bill := s.billResident("r1", 50000)
	s.Require().NotNil(bill.JournalEntryID)
	payment, err := s.svc.Payment.ApplyPaymentToBill(s.ctx, domain.ApplyPaymentInput{BillID: bill.BillID, Amount: d(20000)}, accountant)
	s.Require().NoError(err)
	s.Require().NotNil(payment.JournalEntryID)

	for _, id := range []string{*bill.JournalEntryID, *payment.JournalEntryID} {
		_, err := s.svc.Journal.VoidJournalEntry(s.ctx, id, accountant)
		s.ErrorIs(err, apperrors.ErrConflict)
		_, err = s.svc.Journal.ReverseJournalEntry(s.ctx, id, accountant)
		s.ErrorIs(err, apperrors.ErrConflict)
	}

	updated, err := s.svc.Billing.GetBill(s.ctx, bill.BillID)
	s.Require().NoError(err)
	s.Equal(domain.BillPartial, updated.Status)
	s.requireDecimal(30000, updated.Balance)
	s.requireBalance("1100", 30000)
	s.requireDecimal(30000, s.resident("r1").Balance)
	s.requireLedgerConsistent()
}

func (s *JournalServiceTestSuite) TestVoidJournalEntry_ReversalCanBeVoided() {
	s.post("Opening fund", s.dr("1000", 5000), s.cr("3000", 5000))
	entry := s.post("Repairs", s.dr("5000", 700), s.cr("1000", 700))
	reversal, err := s.svc.Journal.ReverseJournalEntry(s.ctx, entry.JournalEntryID, accountant)
	s.Require().NoError(err)

	_, err = s.svc.Journal.VoidJournalEntry(s.ctx, reversal.JournalEntryID, accountant)
	s.Require().NoError(err)
	s.requireBalance("5000", 700)
	s.requireLedgerConsistent()
}
