package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/estate_ledger/internal/apperrors"
	"github.com/SscSPs/estate_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/estate_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/estate_ledger/internal/core/ports/services"
)

type expenseService struct {
	BaseService
	txManager   portsrepo.TransactionManager
	engine      *JournalEngine
	journalRepo portsrepo.JournalRepositoryFacade
	accounts    portssvc.AccountProvisioningSvc
	payments    portssvc.PaymentSvc
	budgets     portssvc.BudgetSvc
}

// NewExpenseService creates the service posting approved expenses.
func NewExpenseService(txManager portsrepo.TransactionManager, engine *JournalEngine, journalRepo portsrepo.JournalRepositoryFacade, accounts portssvc.AccountProvisioningSvc, payments portssvc.PaymentSvc, budgets portssvc.BudgetSvc, options ...ServiceOption) portssvc.ExpenseSvc {
	return &expenseService{
		BaseService: newBase(options),
		txManager:   txManager,
		engine:      engine,
		journalRepo: journalRepo,
		accounts:    accounts,
		payments:    payments,
		budgets:     budgets,
	}
}

var _ portssvc.ExpenseSvc = (*expenseService)(nil)

// RecordApprovedExpense posts Dr expense (amount + service charge), Cr WHT payable (withholding),
// Cr paid-from account (the rest). Budget tracking runs afterwards and cannot fail the posting.
// An expense id that already has a posted entry is rejected with ErrDuplicate.
func (s *expenseService) RecordApprovedExpense(ctx context.Context, expense domain.ApprovedExpense, actor domain.Actor) (*domain.ExpenseRecordResult, error) {
	if strings.TrimSpace(expense.ExpenseID) == "" {
		return nil, fmt.Errorf("%w: expense id is required", apperrors.ErrValidation)
	}
	if expense.AccountID == nil || *expense.AccountID == "" {
		return nil, fmt.Errorf("%w: expense account is required for posting", apperrors.ErrValidation)
	}
	total := expense.Total()
	if !total.IsPositive() || expense.Amount.IsNegative() || expense.ServiceCharge.IsNegative() {
		return nil, fmt.Errorf("%w: expense amounts must be non-negative with a positive total", apperrors.ErrValidation)
	}
	if expense.WithholdingTax.IsNegative() || expense.WithholdingTax.GreaterThanOrEqual(total) {
		return nil, fmt.Errorf("%w: withholding tax %s must be below the expense total %s", apperrors.ErrValidation, expense.WithholdingTax, total)
	}

	sys, err := s.accounts.RequiredAccounts(ctx)
	if err != nil {
		return nil, err
	}
	paidFrom, err := s.payments.ResolveCashAccount(ctx, expense.PaidFromAccountID, nil)
	if err != nil {
		return nil, err
	}

	description := expense.Description
	if strings.TrimSpace(description) == "" {
		description = "Expense " + expense.ExpenseID
	}
	lines := []domain.JournalLineInput{
		{AccountID: *expense.AccountID, LineType: domain.Debit, Amount: total, Description: description},
	}
	if expense.WithholdingTax.IsPositive() {
		lines = append(lines, domain.JournalLineInput{
			AccountID: sys.WHTPayable.AccountID, LineType: domain.Credit, Amount: expense.WithholdingTax, Description: "Withholding tax " + expense.ExpenseID,
		})
	}
	lines = append(lines, domain.JournalLineInput{
		AccountID: paidFrom.AccountID, LineType: domain.Credit, Amount: total.Sub(expense.WithholdingTax), Description: "Paid " + expense.ExpenseID,
	})

	var entry *domain.JournalEntry
	err = s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		existing, err := s.journalRepo.FindPostedEntryByReference(ctx, domain.RefExpense, expense.ExpenseID)
		switch {
		case err == nil:
			return fmt.Errorf("%w: expense %s already posted as %s", apperrors.ErrDuplicate, expense.ExpenseID, existing.EntryNumber)
		case !errors.Is(err, apperrors.ErrNotFound):
			return err
		}
		entry, err = s.engine.Post(ctx, domain.PostJournalInput{
			EntryDate:     expense.IncurredDate,
			Description:   description,
			ReferenceType: domain.RefExpense,
			ReferenceID:   &expense.ExpenseID,
			Lines:         lines,
		}, actor)
		return err
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) || errors.Is(err, apperrors.ErrDuplicate) {
			s.LogWarn(ctx, "Expense posting rejected", slog.String("expense_id", expense.ExpenseID), slog.String("error", err.Error()))
		} else {
			s.LogError(ctx, err, "Failed to post expense", slog.String("expense_id", expense.ExpenseID))
		}
		return nil, err
	}
	s.LogInfo(ctx, "Expense posted",
		slog.String("expense_id", expense.ExpenseID),
		slog.String("journal_entry_id", entry.JournalEntryID))
	s.Publish(ctx, domain.EventJournalPosted, entry.JournalEntryID, entry)

	result := &domain.ExpenseRecordResult{JournalEntry: entry}
	consumption, err := s.budgets.RecordExpenseConsumption(ctx, expense)
	if err != nil {
		s.LogWarn(ctx, "Budget tracking failed after expense posting", slog.String("expense_id", expense.ExpenseID), slog.String("error", err.Error()))
		result.Budget = domain.ConsumptionResult{Amount: total, SkipReason: "budget tracking failed: " + err.Error()}
		return result, nil
	}
	result.Budget = *consumption
	return result, nil
}
