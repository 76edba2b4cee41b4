package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/estate_ledger/internal/apperrors"
	"github.com/SscSPs/estate_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/estate_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/estate_ledger/internal/core/ports/services"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type budgetService struct {
	BaseService
	txManager   portsrepo.TransactionManager
	budgetRepo  portsrepo.BudgetRepository
	accountRepo portsrepo.AccountReader
}

// NewBudgetService creates the budget consumption tracker.
func NewBudgetService(txManager portsrepo.TransactionManager, budgetRepo portsrepo.BudgetRepository, accountRepo portsrepo.AccountReader, options ...ServiceOption) portssvc.BudgetSvc {
	return &budgetService{
		BaseService: newBase(options),
		txManager:   txManager,
		budgetRepo:  budgetRepo,
		accountRepo: accountRepo,
	}
}

var _ portssvc.BudgetSvc = (*budgetService)(nil)

func (s *budgetService) CreateBudget(ctx context.Context, in domain.CreateBudgetInput, actor domain.Actor) (*domain.Budget, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, fmt.Errorf("%w: budget name is required", apperrors.ErrValidation)
	}
	if in.StartDate.IsZero() || in.EndDate.IsZero() || domain.DateOnly(in.EndDate).Before(domain.DateOnly(in.StartDate)) {
		return nil, fmt.Errorf("%w: budget needs a start date on or before its end date", apperrors.ErrValidation)
	}
	if len(in.Lines) == 0 {
		return nil, fmt.Errorf("%w: budget needs at least one line", apperrors.ErrValidation)
	}

	now := s.Now()
	budget := domain.Budget{
		BudgetID:       uuid.NewString(),
		Name:           in.Name,
		StartDate:      domain.DateOnly(in.StartDate),
		EndDate:        domain.DateOnly(in.EndDate),
		Status:         domain.BudgetDraft,
		TotalAllocated: decimal.Zero,
		TotalConsumed:  decimal.Zero,
		AuditFields:    domain.NewAuditFields(actor.UserID, now),
	}

	ids := make([]string, 0, len(in.Lines))
	seen := make(map[string]bool, len(in.Lines))
	for _, l := range in.Lines {
		if seen[l.AccountID] {
			return nil, fmt.Errorf("%w: account %s appears twice in the budget", apperrors.ErrValidation, l.AccountID)
		}
		seen[l.AccountID] = true
		if l.AllocatedAmount.IsNegative() {
			return nil, fmt.Errorf("%w: allocation for account %s must not be negative", apperrors.ErrValidation, l.AccountID)
		}
		ids = append(ids, l.AccountID)
	}
	accounts, err := s.accountRepo.FindAccountsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	for _, l := range in.Lines {
		if _, ok := accounts[l.AccountID]; !ok {
			return nil, fmt.Errorf("%w: account %s not found", apperrors.ErrValidation, l.AccountID)
		}
		budget.Lines = append(budget.Lines, domain.BudgetLine{
			BudgetLineID:    uuid.NewString(),
			BudgetID:        budget.BudgetID,
			AccountID:       l.AccountID,
			AllocatedAmount: l.AllocatedAmount,
			ConsumedAmount:  decimal.Zero,
			RemainingAmount: l.AllocatedAmount,
		})
		budget.TotalAllocated = budget.TotalAllocated.Add(l.AllocatedAmount)
	}
	budget.TotalRemaining = budget.TotalAllocated

	if err := s.budgetRepo.SaveBudget(ctx, budget); err != nil {
		s.LogError(ctx, err, "Failed to save budget")
		return nil, err
	}
	s.LogInfo(ctx, "Budget created", slog.String("budget_id", budget.BudgetID), slog.String("total_allocated", budget.TotalAllocated.String()))
	return &budget, nil
}

// ActivateBudget moves a draft budget to ACTIVE. At most one active budget may cover any given day.
func (s *budgetService) ActivateBudget(ctx context.Context, budgetID string, actor domain.Actor) (*domain.Budget, error) {
	return s.transition(ctx, budgetID, domain.BudgetDraft, domain.BudgetActive, actor, func(ctx context.Context, b *domain.Budget) error {
		active := domain.BudgetActive
		others, err := s.budgetRepo.ListBudgets(ctx, &active)
		if err != nil {
			return err
		}
		for _, o := range others {
			if o.BudgetID != b.BudgetID && o.Overlaps(*b) {
				return fmt.Errorf("%w: budget overlaps active budget %q", apperrors.ErrConflict, o.Name)
			}
		}
		return nil
	})
}

func (s *budgetService) CloseBudget(ctx context.Context, budgetID string, actor domain.Actor) (*domain.Budget, error) {
	return s.transition(ctx, budgetID, domain.BudgetActive, domain.BudgetClosed, actor, nil)
}

func (s *budgetService) transition(ctx context.Context, budgetID string, from, to domain.BudgetStatus, actor domain.Actor, check func(context.Context, *domain.Budget) error) (*domain.Budget, error) {
	var out *domain.Budget
	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		b, err := s.budgetRepo.FindBudgetByIDForUpdate(ctx, budgetID)
		if err != nil {
			return err
		}
		if b.Status != from {
			return fmt.Errorf("%w: budget is %s, expected %s", apperrors.ErrConflict, b.Status, from)
		}
		if check != nil {
			if err := check(ctx, b); err != nil {
				return err
			}
		}
		b.Status = to
		b.Touch(actor.UserID, s.Now())
		if err := s.budgetRepo.UpdateBudget(ctx, *b); err != nil {
			return err
		}
		out = b
		return nil
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) && !errors.Is(err, apperrors.ErrConflict) {
			s.LogError(ctx, err, "Budget status change failed", slog.String("budget_id", budgetID))
		}
		return nil, err
	}
	s.LogInfo(ctx, "Budget status changed", slog.String("budget_id", budgetID), slog.String("status", string(to)))
	return out, nil
}

func (s *budgetService) GetBudget(ctx context.Context, budgetID string) (*domain.Budget, error) {
	return s.budgetRepo.FindBudgetByID(ctx, budgetID)
}

func (s *budgetService) ListBudgets(ctx context.Context, status *domain.BudgetStatus) ([]domain.Budget, error) {
	return s.budgetRepo.ListBudgets(ctx, status)
}

// RecordExpenseConsumption charges the expense total to the active budget's line for its account.
// Budget tracking never blocks expense approval, so a missing budget or line is a skipped result.
func (s *budgetService) RecordExpenseConsumption(ctx context.Context, expense domain.ApprovedExpense) (*domain.ConsumptionResult, error) {
	total := expense.Total()
	result := &domain.ConsumptionResult{Amount: total}

	if expense.AccountID == nil || *expense.AccountID == "" {
		result.SkipReason = "expense has no account"
		return result, nil
	}
	if !total.IsPositive() {
		result.SkipReason = "expense total is not positive"
		return result, nil
	}

	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		budget, err := s.lockActiveBudgetFor(ctx, expense.IncurredDate)
		if err != nil {
			return err
		}
		if budget == nil {
			result.SkipReason = "no active budget"
			return nil
		}

		var line *domain.BudgetLine
		for i := range budget.Lines {
			if budget.Lines[i].AccountID == *expense.AccountID {
				line = &budget.Lines[i]
				break
			}
		}
		if line == nil {
			result.SkipReason = "no budget line for account"
			result.BudgetID = &budget.BudgetID
			return nil
		}

		line.Consume(total)
		if err := s.budgetRepo.UpdateBudgetLine(ctx, *line); err != nil {
			return err
		}
		budget.TotalConsumed = budget.TotalConsumed.Add(total)
		budget.TotalRemaining = budget.TotalAllocated.Sub(budget.TotalConsumed)
		budget.Touch(domain.SystemActor.UserID, s.Now())
		if err := s.budgetRepo.UpdateBudget(ctx, *budget); err != nil {
			return err
		}

		result.Tracked = true
		result.BudgetID = &budget.BudgetID
		result.BudgetLineID = &line.BudgetLineID
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Budget consumption failed", slog.String("expense_id", expense.ExpenseID))
		return nil, err
	}

	if !result.Tracked {
		s.LogWarn(ctx, "Expense not tracked against a budget",
			slog.String("expense_id", expense.ExpenseID),
			slog.String("reason", result.SkipReason))
		return result, nil
	}
	s.LogInfo(ctx, "Budget consumption recorded",
		slog.String("expense_id", expense.ExpenseID),
		slog.String("budget_id", *result.BudgetID),
		slog.String("amount", total.String()))
	s.Publish(ctx, domain.EventBudgetConsumed, *result.BudgetID, result)
	return result, nil
}

// lockActiveBudgetFor locks the budget findBudgetFor picks and re-checks that it is still ACTIVE,
// since a close may commit between the lookup and the lock. A budget closed in that window is
// looked up once more; nil means no active budget remains.
func (s *budgetService) lockActiveBudgetFor(ctx context.Context, date time.Time) (*domain.Budget, error) {
	for attempt := 0; attempt < 2; attempt++ {
		candidate, err := s.findBudgetFor(ctx, date)
		if err != nil || candidate == nil {
			return nil, err
		}
		locked, err := s.budgetRepo.FindBudgetByIDForUpdate(ctx, candidate.BudgetID)
		if err != nil {
			return nil, err
		}
		if locked.Status == domain.BudgetActive {
			return locked, nil
		}
		s.LogWarn(ctx, "Budget left ACTIVE before consumption was recorded",
			slog.String("budget_id", locked.BudgetID),
			slog.String("status", string(locked.Status)))
	}
	return nil, nil
}

// findBudgetFor returns the active budget covering date, falling back to the one active today.
func (s *budgetService) findBudgetFor(ctx context.Context, date time.Time) (*domain.Budget, error) {
	if !date.IsZero() {
		b, err := s.budgetRepo.FindActiveBudgetCovering(ctx, date)
		if err == nil {
			return b, nil
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		s.LogWarn(ctx, "No active budget covers the expense date, falling back to today's budget",
			slog.String("incurred_date", date.Format(time.DateOnly)))
	}
	b, err := s.budgetRepo.FindActiveBudgetCovering(ctx, s.Now())
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, nil
	}
	return b, err
}
