package services

import (
	"context"

	"github.com/SscSPs/estate_ledger/internal/core/domain"
)

// BudgetSvc manages budgets and tracks consumption.
type BudgetSvc interface {
	CreateBudget(ctx context.Context, in domain.CreateBudgetInput, actor domain.Actor) (*domain.Budget, error)
	ActivateBudget(ctx context.Context, budgetID string, actor domain.Actor) (*domain.Budget, error)
	CloseBudget(ctx context.Context, budgetID string, actor domain.Actor) (*domain.Budget, error)
	GetBudget(ctx context.Context, budgetID string) (*domain.Budget, error)
	ListBudgets(ctx context.Context, status *domain.BudgetStatus) ([]domain.Budget, error)

	// RecordExpenseConsumption is best-effort: a missing budget or line yields a skipped result.
	RecordExpenseConsumption(ctx context.Context, expense domain.ApprovedExpense) (*domain.ConsumptionResult, error)
}

// ExpenseSvc posts approved expenses to the ledger.
type ExpenseSvc interface {
	// RecordApprovedExpense posts the expense entry and then tracks budget consumption.
	RecordApprovedExpense(ctx context.Context, expense domain.ApprovedExpense, actor domain.Actor) (*domain.ExpenseRecordResult, error)
}
