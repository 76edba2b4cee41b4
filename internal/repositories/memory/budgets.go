package memory

import (
	"context"
	"sort"
	"time"

	"github.com/SscSPs/estate_ledger/internal/apperrors"
	"github.com/SscSPs/estate_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/estate_ledger/internal/core/ports/repositories"
)

var _ portsrepo.BudgetRepository = (*Store)(nil)

func (s *Store) withBudgetLines(b domain.Budget) domain.Budget {
	b.Lines = []domain.BudgetLine{}
	for _, l := range s.budgetLines {
		if l.BudgetID == b.BudgetID {
			b.Lines = append(b.Lines, l)
		}
	}
	sort.Slice(b.Lines, func(i, j int) bool { return b.Lines[i].AccountID < b.Lines[j].AccountID })
	return b
}

func (s *Store) SaveBudget(ctx context.Context, budget domain.Budget) error {
	defer s.lock(ctx)()
	if _, ok := s.budgets[budget.BudgetID]; ok {
		return apperrors.ErrDuplicate
	}
	for _, l := range budget.Lines {
		s.budgetLines[l.BudgetLineID] = l
	}
	budget.Lines = nil
	s.budgets[budget.BudgetID] = budget
	return nil
}

func (s *Store) FindBudgetByID(ctx context.Context, budgetID string) (*domain.Budget, error) {
	defer s.lock(ctx)()
	b, ok := s.budgets[budgetID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	b = s.withBudgetLines(b)
	return &b, nil
}

func (s *Store) FindBudgetByIDForUpdate(ctx context.Context, budgetID string) (*domain.Budget, error) {
	return s.FindBudgetByID(ctx, budgetID)
}

func (s *Store) FindActiveBudgetCovering(ctx context.Context, date time.Time) (*domain.Budget, error) {
	defer s.lock(ctx)()
	for _, b := range s.budgets {
		if b.Status == domain.BudgetActive && b.Covers(date) {
			b = s.withBudgetLines(b)
			return &b, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (s *Store) ListBudgets(ctx context.Context, status *domain.BudgetStatus) ([]domain.Budget, error) {
	defer s.lock(ctx)()
	out := []domain.Budget{}
	for _, b := range s.budgets {
		if status != nil && b.Status != *status {
			continue
		}
		out = append(out, s.withBudgetLines(b))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.After(out[j].StartDate) })
	return out, nil
}

// UpdateBudget writes status and totals. Lines are written by UpdateBudgetLine.
func (s *Store) UpdateBudget(ctx context.Context, budget domain.Budget) error {
	defer s.lock(ctx)()
	existing, ok := s.budgets[budget.BudgetID]
	if !ok {
		return apperrors.ErrNotFound
	}
	existing.Status = budget.Status
	existing.TotalAllocated = budget.TotalAllocated
	existing.TotalConsumed = budget.TotalConsumed
	existing.TotalRemaining = budget.TotalRemaining
	existing.AuditFields.Touch(budget.LastUpdatedBy, budget.LastUpdatedAt)
	s.budgets[budget.BudgetID] = existing
	return nil
}

func (s *Store) UpdateBudgetLine(ctx context.Context, line domain.BudgetLine) error {
	defer s.lock(ctx)()
	if _, ok := s.budgetLines[line.BudgetLineID]; !ok {
		return apperrors.ErrNotFound
	}
	s.budgetLines[line.BudgetLineID] = line
	return nil
}
