package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/estate_ledger/internal/core/domain"
)

// BudgetRepository persists budgets and their lines.
type BudgetRepository interface {
	// SaveBudget persists a budget and its lines.
	SaveBudget(ctx context.Context, budget domain.Budget) error
	// FindBudgetByID returns the budget with its lines.
	FindBudgetByID(ctx context.Context, budgetID string) (*domain.Budget, error)
	// FindBudgetByIDForUpdate locks the budget row within the context's transaction.
	FindBudgetByIDForUpdate(ctx context.Context, budgetID string) (*domain.Budget, error)
	// FindActiveBudgetCovering returns the ACTIVE budget whose range includes date, or ErrNotFound.
	FindActiveBudgetCovering(ctx context.Context, date time.Time) (*domain.Budget, error)
	ListBudgets(ctx context.Context, status *domain.BudgetStatus) ([]domain.Budget, error)
	// UpdateBudget stores status and aggregate totals.
	UpdateBudget(ctx context.Context, budget domain.Budget) error
	// UpdateBudgetLine stores consumed and remaining amounts.
	UpdateBudgetLine(ctx context.Context, line domain.BudgetLine) error
}
