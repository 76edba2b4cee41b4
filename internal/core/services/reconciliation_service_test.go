package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SscSPs/estate_ledger/internal/apperrors"
	"github.com/SscSPs/estate_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/estate_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/estate_ledger/internal/core/services"
	"github.com/stretchr/testify/suite"
)

type ReconciliationServiceTestSuite struct {
	ledgerSuite
}

func TestReconciliationServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ReconciliationServiceTestSuite))
}

// failingBills fails invoice lookups for one reference.
type failingBills struct {
	portsrepo.BillRepositoryFacade
	failRef string
}

func (f failingBills) FindBillsByInvoiceNumber(ctx context.Context, invoiceNumber string) ([]domain.Bill, error) {
	if invoiceNumber == f.failRef {
		return nil, errors.New("connection reset")
	}
	return f.BillRepositoryFacade.FindBillsByInvoiceNumber(ctx, invoiceNumber)
}

func (s *ReconciliationServiceTestSuite) meta() domain.StatementMeta {
	return domain.StatementMeta{BankName: "First Bank", AccountNumber: testBankAccountNumber, StatementDate: s.now}
}

func (s *ReconciliationServiceTestSuite) raw(ref string, amount int64) domain.RawStatementEntry {
	return domain.RawStatementEntry{Date: s.now, Description: "transfer " + ref, Reference: ref, Amount: d(amount)}
}

func (s *ReconciliationServiceTestSuite) requireConservation(entries []domain.BankStatementEntry) {
	for _, e := range entries {
		s.True(e.AppliedAmount.Add(e.RemainingAmount).Equal(e.Amount), "entry %d: applied %s + remaining %s != amount %s", e.Sequence, e.AppliedAmount, e.RemainingAmount, e.Amount)
		s.Equal(e.RemainingAmount.IsZero(), e.Status == domain.EntryReconciled, "entry %d status %s with remaining %s", e.Sequence, e.Status, e.RemainingAmount)
	}
}

func (s *ReconciliationServiceTestSuite) TestReconcileStatement_PartialBillPayment() {
	bill := s.billResident("r1", 50000)

	result, err := s.svc.Reconciliation.ReconcileStatement(s.ctx, s.meta(), []domain.RawStatementEntry{
		s.raw(bill.InvoiceNumber, 30000),
	}, accountant)
	s.Require().NoError(err)

	s.Require().Len(result.Statement.Entries, 1)
	entry := result.Statement.Entries[0]
	s.requireDecimal(30000, entry.AppliedAmount)
	s.requireDecimal(0, entry.RemainingAmount)
	s.Equal(domain.EntryReconciled, entry.Status, "the entry is fully consumed even though the bill is not")
	s.requireConservation(result.Statement.Entries)
	s.Require().NotNil(entry.MatchedBillID)
	s.Equal(bill.BillID, *entry.MatchedBillID)

	updated, err := s.svc.Billing.GetBill(s.ctx, bill.BillID)
	s.Require().NoError(err)
	s.Equal(domain.BillPartial, updated.Status)
	s.requireDecimal(20000, updated.Balance)

	payments, err := s.svc.Payment.ListPaymentsForBill(s.ctx, bill.BillID)
	s.Require().NoError(err)
	s.Require().Len(payments, 1)
	s.Equal(domain.ApplicationBankStatement, payments[0].ApplicationType)
	s.Require().NotNil(payments[0].BankStatementEntryID)
	s.Equal(entry.EntryID, *payments[0].BankStatementEntryID)

	s.Equal(1, result.Summary.Matched)
	s.requireDecimal(30000, result.Summary.TotalReconciled)
	s.Equal(domain.StatementCompleted, result.Statement.Status)
	s.requireBalance("1000", 30000)
	s.requireLedgerConsistent()
}

func (s *ReconciliationServiceTestSuite) TestReconcileStatement_MixedEntries() {
	small := s.billResident("r1", 50000)
	big := s.billResident("r2", 80000)
	paid := s.billResident("r3", 10000)
	_, err := s.svc.Payment.ApplyPaymentToBill(s.ctx, domain.ApplyPaymentInput{BillID: paid.BillID, Amount: d(10000)}, accountant)
	s.Require().NoError(err)

	result, err := s.svc.Reconciliation.ReconcileStatement(s.ctx, s.meta(), []domain.RawStatementEntry{
		s.raw(small.InvoiceNumber, 70000), // more than the bill: residual 20000
		s.raw(big.InvoiceNumber, 80000),   // exact
		s.raw("INV-UNKNOWN", 500),         // no such invoice
		s.raw("", 900),                    // no reference
		s.raw(paid.InvoiceNumber, 100),    // bill already paid
		s.raw(big.InvoiceNumber, -250),    // outgoing line
	}, accountant)
	s.Require().NoError(err)
	s.requireConservation(result.Statement.Entries)

	summary := result.Summary
	s.Equal(6, summary.TotalEntries)
	s.Equal(1, summary.Matched)
	s.Equal(1, summary.PartiallyMatched)
	s.Equal(4, summary.Unmatched)
	s.Equal(0, summary.Failed)
	s.requireDecimal(130000, summary.TotalReconciled)
	s.Require().Len(summary.Residuals, 1)
	residual := summary.Residuals[0]
	s.Equal(small.BillID, residual.BillID)
	s.Equal(small.InvoiceNumber, residual.InvoiceNumber)
	s.requireDecimal(20000, residual.RemainingAmount)

	first := result.Statement.Entries[0]
	s.Equal(domain.EntryPartiallyMatched, first.Status)
	s.requireDecimal(50000, first.AppliedAmount)
	s.requireDecimal(20000, first.RemainingAmount)

	stored, err := s.svc.Reconciliation.GetStatement(s.ctx, result.Statement.StatementID)
	s.Require().NoError(err)
	s.Len(stored.Entries, 6)
	s.Require().NotNil(stored.Summary)
	s.Equal(1, stored.Summary.PartiallyMatched)
	s.requireConservation(stored.Entries)
	s.requireLedgerConsistent()
}

func (s *ReconciliationServiceTestSuite) TestReconcileStatement_FailedEntryIsIsolated() {
	before := s.billResident("r1", 50000)
	broken := s.billResident("r2", 50000)
	after := s.billResident("r3", 50000)

	repos := s.store.Provider()
	repos.BillRepo = failingBills{BillRepositoryFacade: s.store, failRef: broken.InvoiceNumber}
	s.svc = services.NewServiceContainer(s.cfg, repos, s.recorder, s.locker, services.WithClock(func() time.Time { return s.now }))

	result, err := s.svc.Reconciliation.ReconcileStatement(s.ctx, s.meta(), []domain.RawStatementEntry{
		s.raw(before.InvoiceNumber, 50000),
		s.raw(broken.InvoiceNumber, 50000),
		s.raw(after.InvoiceNumber, 50000),
	}, accountant)
	s.Require().NoError(err)

	s.Equal(2, result.Summary.Matched)
	s.Equal(1, result.Summary.Failed)
	s.Equal(1, result.Summary.Unmatched)

	failed := result.Statement.Entries[1]
	s.Equal(domain.EntryUnmatched, failed.Status)
	s.Contains(failed.Error, "connection reset")
	s.requireDecimal(0, failed.AppliedAmount)
	s.requireConservation(result.Statement.Entries)

	for id, want := range map[string]domain.BillStatus{before.BillID: domain.BillPaid, broken.BillID: domain.BillPending, after.BillID: domain.BillPaid} {
		b, err := s.svc.Billing.GetBill(s.ctx, id)
		s.Require().NoError(err)
		s.Equal(want, b.Status, b.InvoiceNumber)
	}
	s.requireBalance("1000", 100000)
	s.requireLedgerConsistent()
}

func (s *ReconciliationServiceTestSuite) TestReconcileStatement_UnmappedAccountUsesDefault() {
	bill := s.billResident("r1", 50000)
	meta := s.meta()
	meta.AccountNumber = "555-000"

	result, err := s.svc.Reconciliation.ReconcileStatement(s.ctx, meta, []domain.RawStatementEntry{s.raw(bill.InvoiceNumber, 100)}, accountant)
	s.Require().NoError(err)
	s.Equal(s.accountID("1000"), result.Statement.CashAccountID)
}

func (s *ReconciliationServiceTestSuite) TestReconcileStatement_ConfigurationErrorAborts() {
	s.cfg.DefaultCashAccount = ""
	s.build()
	meta := s.meta()
	meta.AccountNumber = "555-000"

	_, err := s.svc.Reconciliation.ReconcileStatement(s.ctx, meta, []domain.RawStatementEntry{s.raw("INV-1", 100)}, accountant)
	s.ErrorIs(err, apperrors.ErrConfiguration)

	statements, err := s.svc.Reconciliation.ListStatements(s.ctx, 10, 0)
	s.Require().NoError(err)
	s.Empty(statements)
}

func (s *ReconciliationServiceTestSuite) TestMatchStatementEntry() {
	bill := s.billResident("r1", 50000)

	result, err := s.svc.Reconciliation.ReconcileStatement(s.ctx, s.meta(), []domain.RawStatementEntry{
		s.raw("typo-"+bill.InvoiceNumber, 30000),
	}, accountant)
	s.Require().NoError(err)
	entry := result.Statement.Entries[0]
	s.Require().Equal(domain.EntryUnmatched, entry.Status)

	tooMuch := d(40000)
	_, err = s.svc.Reconciliation.MatchStatementEntry(s.ctx, entry.EntryID, bill.BillID, &tooMuch, accountant)
	s.ErrorIs(err, apperrors.ErrValidation)

	part := d(10000)
	matched, err := s.svc.Reconciliation.MatchStatementEntry(s.ctx, entry.EntryID, bill.BillID, &part, accountant)
	s.Require().NoError(err)
	s.Equal(domain.EntryPartiallyMatched, matched.Status)
	s.requireDecimal(20000, matched.RemainingAmount)

	matched, err = s.svc.Reconciliation.MatchStatementEntry(s.ctx, entry.EntryID, bill.BillID, nil, accountant)
	s.Require().NoError(err)
	s.Equal(domain.EntryReconciled, matched.Status)
	s.requireDecimal(30000, matched.AppliedAmount)

	_, err = s.svc.Reconciliation.MatchStatementEntry(s.ctx, entry.EntryID, bill.BillID, nil, accountant)
	s.ErrorIs(err, apperrors.ErrConflict, "nothing left to apply")

	updated, err := s.svc.Billing.GetBill(s.ctx, bill.BillID)
	s.Require().NoError(err)
	s.requireDecimal(20000, updated.Balance)
	s.requireLedgerConsistent()
}
