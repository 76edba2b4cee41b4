package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/estate_ledger/internal/apperrors"
	"github.com/SscSPs/estate_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/estate_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/estate_ledger/internal/core/services"
	"github.com/stretchr/testify/suite"
)

type BudgetServiceTestSuite struct {
	ledgerSuite
}

func TestBudgetServiceTestSuite(t *testing.T) {
	suite.Run(t, new(BudgetServiceTestSuite))
}

func (s *BudgetServiceTestSuite) createBudget(name string, year int) *domain.Budget {
	b, err := s.svc.Budget.CreateBudget(s.ctx, domain.CreateBudgetInput{
		Name:      name,
		StartDate: date(year, 1, 1),
		EndDate:   date(year, 12, 31),
		Lines: []domain.BudgetLineInput{
			{AccountID: s.accountID("5000"), AllocatedAmount: d(100000)},
			{AccountID: s.accountID("5100"), AllocatedAmount: d(50000)},
		},
	}, accountant)
	s.Require().NoError(err)
	return b
}

func (s *BudgetServiceTestSuite) expense(id, account string, amount, charge, wht int64) domain.ApprovedExpense {
	var accountID *string
	if account != "" {
		v := s.accountID(account)
		accountID = &v
	}
	return domain.ApprovedExpense{
		ExpenseID:      id,
		AccountID:      accountID,
		Amount:         d(amount),
		ServiceCharge:  d(charge),
		WithholdingTax: d(wht),
		IncurredDate:   s.now,
		Description:    "expense " + id,
	}
}

func (s *BudgetServiceTestSuite) TestCreateAndActivate() {
	b := s.createBudget("FY2024", 2024)
	s.Equal(domain.BudgetDraft, b.Status)
	s.requireDecimal(150000, b.TotalAllocated)
	s.requireDecimal(150000, b.TotalRemaining)
	s.Len(b.Lines, 2)

	active, err := s.svc.Budget.ActivateBudget(s.ctx, b.BudgetID, accountant)
	s.Require().NoError(err)
	s.Equal(domain.BudgetActive, active.Status)

	_, err = s.svc.Budget.ActivateBudget(s.ctx, b.BudgetID, accountant)
	s.ErrorIs(err, apperrors.ErrConflict, "only drafts can be activated")

	overlapping := s.createBudget("FY2024 revised", 2024)
	_, err = s.svc.Budget.ActivateBudget(s.ctx, overlapping.BudgetID, accountant)
	s.ErrorIs(err, apperrors.ErrConflict)

	closed, err := s.svc.Budget.CloseBudget(s.ctx, b.BudgetID, accountant)
	s.Require().NoError(err)
	s.Equal(domain.BudgetClosed, closed.Status)
	_, err = s.svc.Budget.ActivateBudget(s.ctx, overlapping.BudgetID, accountant)
	s.NoError(err)

	activeStatus := domain.BudgetActive
	list, err := s.svc.Budget.ListBudgets(s.ctx, &activeStatus)
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Equal(overlapping.BudgetID, list[0].BudgetID)
}

func (s *BudgetServiceTestSuite) TestCreateBudget_Validation() {
	_, err := s.svc.Budget.CreateBudget(s.ctx, domain.CreateBudgetInput{
		Name:      "dup",
		StartDate: date(2024, 1, 1),
		EndDate:   date(2024, 12, 31),
		Lines: []domain.BudgetLineInput{
			{AccountID: s.accountID("5000"), AllocatedAmount: d(1)},
			{AccountID: s.accountID("5000"), AllocatedAmount: d(2)},
		},
	}, accountant)
	s.ErrorIs(err, apperrors.ErrValidation)

	_, err = s.svc.Budget.CreateBudget(s.ctx, domain.CreateBudgetInput{
		Name:      "backwards",
		StartDate: date(2024, 12, 31),
		EndDate:   date(2024, 1, 1),
		Lines:     []domain.BudgetLineInput{{AccountID: s.accountID("5000"), AllocatedAmount: d(1)}},
	}, accountant)
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *BudgetServiceTestSuite) TestRecordExpenseConsumption() {
	b := s.createBudget("FY2024", 2024)
	_, err := s.svc.Budget.ActivateBudget(s.ctx, b.BudgetID, accountant)
	s.Require().NoError(err)

	result, err := s.svc.Budget.RecordExpenseConsumption(s.ctx, s.expense("e1", "5000", 12000, 500, 0))
	s.Require().NoError(err)
	s.True(result.Tracked)
	s.requireDecimal(12500, result.Amount)

	got, err := s.svc.Budget.GetBudget(s.ctx, b.BudgetID)
	s.Require().NoError(err)
	s.requireDecimal(12500, got.TotalConsumed)
	s.requireDecimal(137500, got.TotalRemaining)
	for _, l := range got.Lines {
		if l.AccountID == s.accountID("5000") {
			s.requireDecimal(12500, l.ConsumedAmount)
			s.requireDecimal(87500, l.RemainingAmount)
		} else {
			s.requireDecimal(0, l.ConsumedAmount)
		}
	}
	s.Contains(s.recorder.Types(), domain.EventBudgetConsumed)
}

func (s *BudgetServiceTestSuite) TestRecordExpenseConsumption_Skips() {
	result, err := s.svc.Budget.RecordExpenseConsumption(s.ctx, s.expense("no-account", "", 100, 0, 0))
	s.Require().NoError(err)
	s.False(result.Tracked)

	result, err = s.svc.Budget.RecordExpenseConsumption(s.ctx, s.expense("no-budget", "5000", 100, 0, 0))
	s.Require().NoError(err)
	s.False(result.Tracked)
	s.Equal("no active budget", result.SkipReason)

	b := s.createBudget("FY2024", 2024)
	_, err = s.svc.Budget.ActivateBudget(s.ctx, b.BudgetID, accountant)
	s.Require().NoError(err)
	result, err = s.svc.Budget.RecordExpenseConsumption(s.ctx, s.expense("no-line", "1010", 100, 0, 0))
	s.Require().NoError(err)
	s.False(result.Tracked)
	s.Equal("no budget line for account", result.SkipReason)
}

func (s *BudgetServiceTestSuite) TestRecordExpenseConsumption_FallsBackToCurrentBudget() {
	b := s.createBudget("FY2024", 2024)
	_, err := s.svc.Budget.ActivateBudget(s.ctx, b.BudgetID, accountant)
	s.Require().NoError(err)

	e := s.expense("late", "5100", 700, 0, 0)
	e.IncurredDate = date(2023, 12, 20)
	result, err := s.svc.Budget.RecordExpenseConsumption(s.ctx, e)
	s.Require().NoError(err)
	s.True(result.Tracked)
	s.Require().NotNil(result.BudgetID)
	s.Equal(b.BudgetID, *result.BudgetID)
}

func (s *BudgetServiceTestSuite) TestRecordApprovedExpense_WithholdingSplit() {
	s.post("Opening fund", s.dr("1000", 100000), s.cr("3000", 100000))
	b := s.createBudget("FY2024", 2024)
	_, err := s.svc.Budget.ActivateBudget(s.ctx, b.BudgetID, accountant)
	s.Require().NoError(err)

	result, err := s.svc.Expense.RecordApprovedExpense(s.ctx, s.expense("e1", "5000", 10000, 1000, 550), accountant)
	s.Require().NoError(err)
	s.Require().NotNil(result.JournalEntry)
	s.Equal(domain.RefExpense, result.JournalEntry.ReferenceType)
	s.Len(result.JournalEntry.Lines, 3)
	s.requireDecimal(11000, result.JournalEntry.TotalDebit)
	s.True(result.Budget.Tracked)

	s.requireBalance("5000", 11000)
	s.requireBalance("2300", 550)
	s.requireBalance("1000", 100000-10450)
	s.requireLedgerConsistent()
}

func (s *BudgetServiceTestSuite) TestRecordApprovedExpense_Rejections() {
	_, err := s.svc.Expense.RecordApprovedExpense(s.ctx, s.expense("e1", "5000", 100, 0, 200), accountant)
	s.ErrorIs(err, apperrors.ErrValidation, "withholding above the total")

	_, err = s.svc.Expense.RecordApprovedExpense(s.ctx, s.expense("e2", "", 100, 0, 0), accountant)
	s.ErrorIs(err, apperrors.ErrValidation, "no expense account")
	s.requireBalance("1000", 0)
}

func (s *BudgetServiceTestSuite) TestRecordApprovedExpense_NoBudgetStillPosts() {
	result, err := s.svc.Expense.RecordApprovedExpense(s.ctx, s.expense("e1", "5000", 100, 0, 0), accountant)
	s.Require().NoError(err)
	s.NotNil(result.JournalEntry)
	s.False(result.Budget.Tracked)
	s.requireBalance("5000", 100)
}

func (s *BudgetServiceTestSuite) TestRecordApprovedExpense_RetryIsDuplicate() {
	s.post("Opening fund", s.dr("1000", 100000), s.cr("3000", 100000))
	b := s.createBudget("FY2024", 2024)
	_, err := s.svc.Budget.ActivateBudget(s.ctx, b.BudgetID, accountant)
	s.Require().NoError(err)

	first, err := s.svc.Expense.RecordApprovedExpense(s.ctx, s.expense("e1", "5000", 10000, 1000, 550), accountant)
	s.Require().NoError(err)

	_, err = s.svc.Expense.RecordApprovedExpense(s.ctx, s.expense("e1", "5000", 10000, 1000, 550), accountant)
	s.ErrorIs(err, apperrors.ErrDuplicate)
	s.Contains(err.Error(), first.JournalEntry.EntryNumber)

	s.requireBalance("5000", 11000)
	s.requireBalance("2300", 550)
	s.requireBalance("1000", 100000-10450)
	got, err := s.svc.Budget.GetBudget(s.ctx, b.BudgetID)
	s.Require().NoError(err)
	s.requireDecimal(11000, got.TotalConsumed)
	s.requireLedgerConsistent()

	_, err = s.svc.Expense.RecordApprovedExpense(s.ctx, s.expense("e2", "5000", 500, 0, 0), accountant)
	s.Require().NoError(err)
	s.requireBalance("5000", 11500)
}

// closingBudgetRepo closes the budget just before the first row lock is granted, the way a
// concurrent CloseBudget committing between lookup and lock would.
type closingBudgetRepo struct {
	portsrepo.BudgetRepository
	closed bool
}

func (r *closingBudgetRepo) FindBudgetByIDForUpdate(ctx context.Context, budgetID string) (*domain.Budget, error) {
	b, err := r.BudgetRepository.FindBudgetByIDForUpdate(ctx, budgetID)
	if err != nil || r.closed {
		return b, err
	}
	r.closed = true
	b.Status = domain.BudgetClosed
	if err := r.BudgetRepository.UpdateBudget(ctx, *b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *BudgetServiceTestSuite) TestRecordExpenseConsumption_BudgetClosedBeforeLock() {
	b := s.createBudget("FY2024", 2024)
	_, err := s.svc.Budget.ActivateBudget(s.ctx, b.BudgetID, accountant)
	s.Require().NoError(err)

	provider := s.store.Provider()
	provider.BudgetRepo = &closingBudgetRepo{BudgetRepository: provider.BudgetRepo}
	svc := services.NewServiceContainer(s.cfg, provider, s.recorder, s.locker,
		services.WithClock(func() time.Time { return s.now }))

	result, err := svc.Budget.RecordExpenseConsumption(s.ctx, s.expense("e1", "5000", 12000, 0, 0))
	s.Require().NoError(err)
	s.False(result.Tracked)
	s.Equal("no active budget", result.SkipReason)

	got, err := s.svc.Budget.GetBudget(s.ctx, b.BudgetID)
	s.Require().NoError(err)
	s.Equal(domain.BudgetClosed, got.Status)
	s.requireDecimal(0, got.TotalConsumed)
	for _, l := range got.Lines {
		s.requireDecimal(0, l.ConsumedAmount)
	}
}
