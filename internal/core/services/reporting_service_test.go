package services_test

import (
	"testing"

	"github.com/SscSPs/estate_ledger/internal/apperrors"
	"github.com/SscSPs/estate_ledger/internal/core/domain"
	"github.com/stretchr/testify/suite"
)

type ReportingServiceTestSuite struct {
	ledgerSuite
}

func TestReportingServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ReportingServiceTestSuite))
}

func (s *ReportingServiceTestSuite) TestTrialBalance_SingleEntry() {
	s.post("Opening fund", s.dr("1000", 50000), s.cr("3000", 50000))

	tb, err := s.svc.Reporting.TrialBalance(s.ctx, s.now)
	s.Require().NoError(err)
	s.requireDecimal(50000, tb.TotalDebits)
	s.requireDecimal(50000, tb.TotalCredits)
	s.True(tb.Balanced)
	s.Len(tb.Rows, 2, "accounts without activity are omitted")
}

func (s *ReportingServiceTestSuite) TestTrialBalance_ExcludesVoidAndFutureEntries() {
	s.post("Opening fund", s.dr("1000", 50000), s.cr("3000", 50000))
	voided := s.post("mistake", s.dr("5000", 900), s.cr("1000", 900))
	_, err := s.svc.Journal.VoidJournalEntry(s.ctx, voided.JournalEntryID, accountant)
	s.Require().NoError(err)

	s.now = s.now.AddDate(0, 0, 5)
	s.post("later", s.dr("5000", 300), s.cr("1000", 300))

	tb, err := s.svc.Reporting.TrialBalance(s.ctx, s.now.AddDate(0, 0, -5))
	s.Require().NoError(err)
	s.requireDecimal(50000, tb.TotalDebits)
	s.True(tb.Balanced)
}

func (s *ReportingServiceTestSuite) TestTrialBalance_AbnormalBalanceFlipsColumn() {
	// an overdrawn bank account sits on the credit side
	s.post("Overdraft", s.dr("5000", 700), s.cr("1000", 700))

	tb, err := s.svc.Reporting.TrialBalance(s.ctx, s.now)
	s.Require().NoError(err)
	for _, row := range tb.Rows {
		if row.AccountNumber == "1000" {
			s.requireDecimal(0, row.Debit)
			s.requireDecimal(700, row.Credit)
		}
	}
	s.True(tb.Balanced)
}

func (s *ReportingServiceTestSuite) TestIncomeStatementAndBalanceSheet() {
	bill := s.billResident("r1", 50000)
	_, err := s.svc.Payment.ApplyPaymentToBill(s.ctx, domain.ApplyPaymentInput{BillID: bill.BillID, Amount: d(30000)}, accountant)
	s.Require().NoError(err)
	_, err = s.svc.Expense.RecordApprovedExpense(s.ctx, domain.ApprovedExpense{
		ExpenseID:    "e1",
		AccountID:    strPtr(s.accountID("5000")),
		Amount:       d(8000),
		IncurredDate: s.now,
	}, accountant)
	s.Require().NoError(err)

	is, err := s.svc.Reporting.IncomeStatement(s.ctx, date(2024, 1, 1), s.now)
	s.Require().NoError(err)
	s.requireDecimal(30000, is.TotalRevenue)
	s.requireDecimal(8000, is.TotalExpenses)
	s.requireDecimal(22000, is.NetIncome)

	bs, err := s.svc.Reporting.BalanceSheet(s.ctx, s.now)
	s.Require().NoError(err)
	// cash 22000 + receivable 20000; deferred revenue 20000; current earnings 22000
	s.requireDecimal(42000, bs.TotalAssets)
	s.requireDecimal(20000, bs.TotalLiabilities)
	s.requireDecimal(22000, bs.CurrentEarnings)
	s.requireDecimal(42000, bs.TotalLiabilitiesAndEquity)
	s.True(bs.Balanced)
	s.Require().NotEmpty(bs.Equity)
	s.Equal(domain.CurrentEarningsLabel, bs.Equity[len(bs.Equity)-1].Name)

	_, err = s.svc.Reporting.IncomeStatement(s.ctx, s.now, date(2024, 1, 1))
	s.ErrorIs(err, apperrors.ErrValidation)
}
