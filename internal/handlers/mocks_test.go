package handlers_test

import (
	"context"
	"time"

	"github.com/SscSPs/estate_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/estate_ledger/internal/core/ports/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// --- Mock AccountService ---
type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockAccountService) GetAccountByNumber(ctx context.Context, number string) (*domain.Account, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockAccountService) ListAccounts(ctx context.Context, filter domain.AccountFilter) ([]domain.Account, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}
func (m *MockAccountService) CreateAccount(ctx context.Context, in domain.CreateAccountInput, actor domain.Actor) (*domain.Account, error) {
	args := m.Called(ctx, in, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockAccountService) UpdateAccount(ctx context.Context, accountID string, in domain.UpdateAccountInput, actor domain.Actor) (*domain.Account, error) {
	args := m.Called(ctx, accountID, in, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockAccountService) DeleteAccount(ctx context.Context, accountID string, actor domain.Actor) error {
	return m.Called(ctx, accountID, actor).Error(0)
}
func (m *MockAccountService) EnsureRequiredAccounts(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}
func (m *MockAccountService) RequiredAccounts(ctx context.Context) (*domain.SystemAccounts, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SystemAccounts), args.Error(1)
}
func (m *MockAccountService) SeedChartOfAccounts(ctx context.Context, yamlDoc []byte, actor domain.Actor) (int, int, error) {
	args := m.Called(ctx, yamlDoc, actor)
	return args.Int(0), args.Int(1), args.Error(2)
}

// Ensure mock implements the interface
var _ portssvc.AccountSvcFacade = (*MockAccountService)(nil)

// --- Mock JournalService ---
type MockJournalService struct {
	mock.Mock
}

func (m *MockJournalService) GetJournalEntry(ctx context.Context, id string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}
func (m *MockJournalService) ListJournalEntries(ctx context.Context, params domain.JournalListParams) ([]domain.JournalEntry, *string, error) {
	args := m.Called(ctx, params)
	var next *string
	if args.Get(1) != nil {
		next = args.Get(1).(*string)
	}
	if args.Get(0) == nil {
		return nil, next, args.Error(2)
	}
	return args.Get(0).([]domain.JournalEntry), next, args.Error(2)
}
func (m *MockJournalService) PostJournalEntry(ctx context.Context, in domain.PostJournalInput, actor domain.Actor) (*domain.JournalEntry, error) {
	args := m.Called(ctx, in, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}
func (m *MockJournalService) VoidJournalEntry(ctx context.Context, id string, actor domain.Actor) (*domain.JournalEntry, error) {
	args := m.Called(ctx, id, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}
func (m *MockJournalService) ReverseJournalEntry(ctx context.Context, id string, actor domain.Actor) (*domain.JournalEntry, error) {
	args := m.Called(ctx, id, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}
func (m *MockJournalService) VerifyLedger(ctx context.Context) ([]domain.LedgerDiscrepancy, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LedgerDiscrepancy), args.Error(1)
}

var _ portssvc.JournalSvcFacade = (*MockJournalService)(nil)

// --- Mock BillingService ---
type MockBillingService struct {
	mock.Mock
}

func (m *MockBillingService) GenerateBillForResident(ctx context.Context, residentID string, actor domain.Actor) (*domain.Bill, error) {
	args := m.Called(ctx, residentID, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Bill), args.Error(1)
}
func (m *MockBillingService) GenerateBillsForAllEligible(ctx context.Context, actor domain.Actor) (*domain.BatchBillingResult, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BatchBillingResult), args.Error(1)
}
func (m *MockBillingService) VoidBill(ctx context.Context, billID string, actor domain.Actor) (*domain.Bill, error) {
	args := m.Called(ctx, billID, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Bill), args.Error(1)
}
func (m *MockBillingService) GetBill(ctx context.Context, billID string) (*domain.Bill, error) {
	args := m.Called(ctx, billID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Bill), args.Error(1)
}
func (m *MockBillingService) ListBills(ctx context.Context, filter domain.BillFilter, overdueAsOf *time.Time) ([]domain.Bill, error) {
	args := m.Called(ctx, filter, overdueAsOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Bill), args.Error(1)
}

var _ portssvc.BillingSvc = (*MockBillingService)(nil)

// --- Mock PaymentService ---
type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) ApplyPaymentToBill(ctx context.Context, in domain.ApplyPaymentInput, actor domain.Actor) (*domain.PaymentApplication, error) {
	args := m.Called(ctx, in, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentApplication), args.Error(1)
}
func (m *MockPaymentService) ApplyPaymentInTx(ctx context.Context, in domain.ApplyPaymentInput, cashAccountID string, actor domain.Actor) (*domain.PaymentApplication, *domain.Bill, error) {
	args := m.Called(ctx, in, cashAccountID, actor)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.PaymentApplication), args.Get(1).(*domain.Bill), args.Error(2)
}
func (m *MockPaymentService) ResolveCashAccount(ctx context.Context, explicitID *string, bankAccountNumber *string) (*domain.Account, error) {
	args := m.Called(ctx, explicitID, bankAccountNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockPaymentService) ListPaymentsForBill(ctx context.Context, billID string) ([]domain.PaymentApplication, error) {
	args := m.Called(ctx, billID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PaymentApplication), args.Error(1)
}
func (m *MockPaymentService) GetReceivablesAging(ctx context.Context, asOf time.Time) (*domain.ReceivablesAging, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReceivablesAging), args.Error(1)
}

var _ portssvc.PaymentSvc = (*MockPaymentService)(nil)

// --- Mock ReconciliationService ---
type MockReconciliationService struct {
	mock.Mock
}

func (m *MockReconciliationService) ReconcileStatement(ctx context.Context, meta domain.StatementMeta, entries []domain.RawStatementEntry, actor domain.Actor) (*domain.ReconciliationResult, error) {
	args := m.Called(ctx, meta, entries, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReconciliationResult), args.Error(1)
}
func (m *MockReconciliationService) MatchStatementEntry(ctx context.Context, entryID, billID string, amount *decimal.Decimal, actor domain.Actor) (*domain.BankStatementEntry, error) {
	args := m.Called(ctx, entryID, billID, amount, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BankStatementEntry), args.Error(1)
}
func (m *MockReconciliationService) GetStatement(ctx context.Context, statementID string) (*domain.BankStatement, error) {
	args := m.Called(ctx, statementID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BankStatement), args.Error(1)
}
func (m *MockReconciliationService) ListStatements(ctx context.Context, limit, offset int) ([]domain.BankStatement, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BankStatement), args.Error(1)
}

var _ portssvc.ReconciliationSvc = (*MockReconciliationService)(nil)

// --- Mock Budget and Expense services ---
type MockBudgetService struct {
	mock.Mock
}

func (m *MockBudgetService) budget(args mock.Arguments) (*domain.Budget, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Budget), args.Error(1)
}
func (m *MockBudgetService) CreateBudget(ctx context.Context, in domain.CreateBudgetInput, actor domain.Actor) (*domain.Budget, error) {
	return m.budget(m.Called(ctx, in, actor))
}
func (m *MockBudgetService) ActivateBudget(ctx context.Context, budgetID string, actor domain.Actor) (*domain.Budget, error) {
	return m.budget(m.Called(ctx, budgetID, actor))
}
func (m *MockBudgetService) CloseBudget(ctx context.Context, budgetID string, actor domain.Actor) (*domain.Budget, error) {
	return m.budget(m.Called(ctx, budgetID, actor))
}
func (m *MockBudgetService) GetBudget(ctx context.Context, budgetID string) (*domain.Budget, error) {
	return m.budget(m.Called(ctx, budgetID))
}
func (m *MockBudgetService) ListBudgets(ctx context.Context, status *domain.BudgetStatus) ([]domain.Budget, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Budget), args.Error(1)
}
func (m *MockBudgetService) RecordExpenseConsumption(ctx context.Context, expense domain.ApprovedExpense) (*domain.ConsumptionResult, error) {
	args := m.Called(ctx, expense)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ConsumptionResult), args.Error(1)
}

var _ portssvc.BudgetSvc = (*MockBudgetService)(nil)

type MockExpenseService struct {
	mock.Mock
}

func (m *MockExpenseService) RecordApprovedExpense(ctx context.Context, expense domain.ApprovedExpense, actor domain.Actor) (*domain.ExpenseRecordResult, error) {
	args := m.Called(ctx, expense, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExpenseRecordResult), args.Error(1)
}

var _ portssvc.ExpenseSvc = (*MockExpenseService)(nil)

// --- Mock ReportingService ---
type MockReportingService struct {
	mock.Mock
}

func (m *MockReportingService) TrialBalance(ctx context.Context, asOf time.Time) (*domain.TrialBalance, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TrialBalance), args.Error(1)
}
func (m *MockReportingService) IncomeStatement(ctx context.Context, from, to time.Time) (*domain.IncomeStatement, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.IncomeStatement), args.Error(1)
}
func (m *MockReportingService) BalanceSheet(ctx context.Context, asOf time.Time) (*domain.BalanceSheet, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BalanceSheet), args.Error(1)
}

var _ portssvc.ReportingService = (*MockReportingService)(nil)
