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
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type reconciliationService struct {
	BaseService
	txManager     portsrepo.TransactionManager
	payments      portssvc.PaymentSvc
	accounts      portssvc.AccountProvisioningSvc
	billRepo      portsrepo.BillReader
	statementRepo portsrepo.BankStatementRepository
}

// NewReconciliationService creates the bank reconciliation engine.
func NewReconciliationService(
	txManager portsrepo.TransactionManager,
	payments portssvc.PaymentSvc,
	accounts portssvc.AccountProvisioningSvc,
	billRepo portsrepo.BillReader,
	statementRepo portsrepo.BankStatementRepository,
	options ...ServiceOption,
) portssvc.ReconciliationSvc {
	return &reconciliationService{
		BaseService:   newBase(options),
		txManager:     txManager,
		payments:      payments,
		accounts:      accounts,
		billRepo:      billRepo,
		statementRepo: statementRepo,
	}
}

var _ portssvc.ReconciliationSvc = (*reconciliationService)(nil)

// ReconcileStatement records the statement and processes each entry in its own unit of work.
// Configuration problems abort before anything is written. Entry failures are rolled back, the
// entry is re-recorded as UNMATCHED with the error, and processing continues.
func (s *reconciliationService) ReconcileStatement(ctx context.Context, meta domain.StatementMeta, entries []domain.RawStatementEntry, actor domain.Actor) (*domain.ReconciliationResult, error) {
	meta.BankName = strings.TrimSpace(meta.BankName)
	meta.AccountNumber = strings.TrimSpace(meta.AccountNumber)
	if meta.AccountNumber == "" {
		return nil, fmt.Errorf("%w: statement account number is required", apperrors.ErrValidation)
	}
	if meta.StatementDate.IsZero() {
		meta.StatementDate = s.Now()
	}

	if err := s.accounts.EnsureRequiredAccounts(ctx); err != nil {
		return nil, err
	}
	cash, err := s.payments.ResolveCashAccount(ctx, nil, &meta.AccountNumber)
	if err != nil {
		s.LogError(ctx, err, "Cannot resolve cash account for statement", slog.String("account_number", meta.AccountNumber))
		return nil, err
	}

	now := s.Now()
	statement := domain.BankStatement{
		StatementID:   uuid.NewString(),
		BankName:      meta.BankName,
		AccountNumber: meta.AccountNumber,
		StatementDate: domain.DateOnly(meta.StatementDate),
		Status:        domain.StatementProcessing,
		CashAccountID: cash.AccountID,
		AuditFields:   domain.NewAuditFields(actor.UserID, now),
	}
	if err := s.statementRepo.SaveStatement(ctx, statement); err != nil {
		s.LogError(ctx, err, "Failed to save bank statement")
		return nil, fmt.Errorf("failed to save bank statement: %w", err)
	}

	summary := domain.ReconciliationSummary{
		TotalEntries:    len(entries),
		TotalReconciled: decimal.Zero,
		Residuals:       []domain.Residual{},
	}
	processed := make([]domain.BankStatementEntry, 0, len(entries))

	for i, raw := range entries {
		entry := domain.NewStatementEntry(uuid.NewString(), statement.StatementID, i+1, raw, s.Now())
		var payment *domain.PaymentApplication
		var bill *domain.Bill
		err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
			var err error
			payment, bill, err = s.reconcileEntry(ctx, &entry, cash.AccountID, actor)
			return err
		})
		if err != nil {
			s.LogWarn(ctx, "Statement entry failed, recorded as unmatched",
				slog.String("statement_id", statement.StatementID),
				slog.Int("sequence", entry.Sequence),
				slog.String("reference", entry.ReferenceNumber),
				slog.String("error", err.Error()))
			entry = domain.NewStatementEntry(entry.EntryID, statement.StatementID, entry.Sequence, raw, s.Now())
			entry.Error = err.Error()
			if saveErr := s.statementRepo.SaveStatementEntry(ctx, entry); saveErr != nil {
				s.LogError(ctx, saveErr, "Failed to record failed statement entry", slog.String("entry_id", entry.EntryID))
			}
			summary.Failed++
		} else if payment != nil {
			s.Publish(ctx, domain.EventPaymentApplied, payment.PaymentApplicationID, payment)
		}

		switch entry.Status {
		case domain.EntryReconciled:
			summary.Matched++
		case domain.EntryPartiallyMatched:
			summary.PartiallyMatched++
			residual := domain.Residual{
				EntryID:         entry.EntryID,
				ReferenceNumber: entry.ReferenceNumber,
				RemainingAmount: entry.RemainingAmount,
			}
			if bill != nil {
				residual.BillID = bill.BillID
				residual.InvoiceNumber = bill.InvoiceNumber
			}
			summary.Residuals = append(summary.Residuals, residual)
		default:
			summary.Unmatched++
		}
		summary.TotalReconciled = summary.TotalReconciled.Add(entry.AppliedAmount)
		processed = append(processed, entry)
	}

	statement.Status = domain.StatementCompleted
	statement.Summary = &summary
	statement.Touch(actor.UserID, s.Now())
	if err := s.statementRepo.UpdateStatement(ctx, statement); err != nil {
		s.LogError(ctx, err, "Failed to complete bank statement", slog.String("statement_id", statement.StatementID))
		return nil, fmt.Errorf("failed to complete bank statement: %w", err)
	}
	statement.Entries = processed

	s.LogInfo(ctx, "Bank statement reconciled",
		slog.String("statement_id", statement.StatementID),
		slog.Int("entries", summary.TotalEntries),
		slog.Int("matched", summary.Matched),
		slog.Int("partially_matched", summary.PartiallyMatched),
		slog.Int("unmatched", summary.Unmatched),
		slog.Int("failed", summary.Failed),
		slog.String("total_reconciled", summary.TotalReconciled.String()))
	s.Publish(ctx, domain.EventStatementReconciled, statement.StatementID, summary)

	return &domain.ReconciliationResult{Statement: statement, Summary: summary}, nil
}

// reconcileEntry runs inside the entry's unit of work. A missing reference, an unknown invoice,
// a closed bill or a non-positive amount leaves the entry unmatched without error.
func (s *reconciliationService) reconcileEntry(ctx context.Context, entry *domain.BankStatementEntry, cashAccountID string, actor domain.Actor) (*domain.PaymentApplication, *domain.Bill, error) {
	if err := s.statementRepo.SaveStatementEntry(ctx, *entry); err != nil {
		return nil, nil, fmt.Errorf("failed to save statement entry: %w", err)
	}

	ref := strings.TrimSpace(entry.ReferenceNumber)
	if ref == "" || !entry.Amount.IsPositive() {
		return nil, nil, nil
	}

	candidates, err := s.billRepo.FindBillsByInvoiceNumber(ctx, ref)
	if err != nil {
		return nil, nil, err
	}
	if len(candidates) == 0 {
		return nil, nil, nil
	}

	// Read the bill fresh under lock before deciding the amount.
	bill, err := s.billRepo.FindBillByIDForUpdate(ctx, candidates[0].BillID)
	if err != nil {
		return nil, nil, err
	}
	if !bill.IsOpen() {
		return nil, bill, nil
	}
	amount := decimal.Min(entry.Amount, bill.Balance)
	if !amount.IsPositive() {
		return nil, bill, nil
	}

	payment, updated, err := s.payments.ApplyPaymentInTx(ctx, domain.ApplyPaymentInput{
		BillID:               bill.BillID,
		Amount:               amount,
		Source:               domain.ApplicationBankStatement,
		PaymentDate:          entry.TransactionDate,
		BankStatementEntryID: &entry.EntryID,
		Reference:            entry.ReferenceNumber,
		Notes:                entry.Description,
	}, cashAccountID, actor)
	if err != nil {
		return nil, nil, err
	}

	entry.Apply(amount)
	entry.MatchedBillID = &updated.BillID
	if err := s.statementRepo.UpdateStatementEntry(ctx, *entry); err != nil {
		return nil, nil, fmt.Errorf("failed to update statement entry: %w", err)
	}
	return payment, updated, nil
}

// MatchStatementEntry is the manual follow-up for residuals and unmatched entries.
func (s *reconciliationService) MatchStatementEntry(ctx context.Context, entryID, billID string, amount *decimal.Decimal, actor domain.Actor) (*domain.BankStatementEntry, error) {
	if amount != nil && !amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", apperrors.ErrValidation)
	}

	var result *domain.BankStatementEntry
	var payment *domain.PaymentApplication
	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		entry, err := s.statementRepo.FindStatementEntryByIDForUpdate(ctx, entryID)
		if err != nil {
			return err
		}
		if !entry.RemainingAmount.IsPositive() {
			return fmt.Errorf("%w: statement entry has nothing left to apply", apperrors.ErrConflict)
		}
		statement, err := s.statementRepo.FindStatementByID(ctx, entry.StatementID)
		if err != nil {
			return err
		}

		bill, err := s.billRepo.FindBillByIDForUpdate(ctx, billID)
		if err != nil {
			return err
		}
		if !bill.IsOpen() {
			return fmt.Errorf("%w: bill %s is %s", apperrors.ErrConflict, bill.InvoiceNumber, bill.Status)
		}

		apply := decimal.Min(entry.RemainingAmount, bill.Balance)
		if amount != nil {
			apply = *amount
		}
		if apply.GreaterThan(entry.RemainingAmount) {
			return fmt.Errorf("%w: amount %s exceeds the entry's remaining %s", apperrors.ErrValidation, apply, entry.RemainingAmount)
		}

		var updated *domain.Bill
		payment, updated, err = s.payments.ApplyPaymentInTx(ctx, domain.ApplyPaymentInput{
			BillID:               bill.BillID,
			Amount:               apply,
			Source:               domain.ApplicationBankStatement,
			PaymentDate:          entry.TransactionDate,
			BankStatementEntryID: &entry.EntryID,
			Reference:            entry.ReferenceNumber,
			Notes:                "Manual match: " + entry.Description,
		}, statement.CashAccountID, actor)
		if err != nil {
			return err
		}

		entry.Apply(apply)
		entry.MatchedBillID = &updated.BillID
		entry.Error = ""
		if err := s.statementRepo.UpdateStatementEntry(ctx, *entry); err != nil {
			return err
		}
		result = entry
		return nil
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) || errors.Is(err, apperrors.ErrConflict) ||
			errors.Is(err, apperrors.ErrValidation) || errors.Is(err, apperrors.ErrOverpayment) {
			s.LogWarn(ctx, "Manual match rejected", slog.String("entry_id", entryID), slog.String("bill_id", billID), slog.String("error", err.Error()))
		} else {
			s.LogError(ctx, err, "Manual match failed", slog.String("entry_id", entryID), slog.String("bill_id", billID))
		}
		return nil, err
	}

	s.LogInfo(ctx, "Statement entry matched manually",
		slog.String("entry_id", entryID),
		slog.String("bill_id", billID),
		slog.String("status", string(result.Status)))
	s.Publish(ctx, domain.EventPaymentApplied, payment.PaymentApplicationID, payment)
	return result, nil
}

func (s *reconciliationService) GetStatement(ctx context.Context, statementID string) (*domain.BankStatement, error) {
	statement, err := s.statementRepo.FindStatementByID(ctx, statementID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find bank statement", slog.String("statement_id", statementID))
		}
		return nil, err
	}
	return statement, nil
}

func (s *reconciliationService) ListStatements(ctx context.Context, limit, offset int) ([]domain.BankStatement, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.statementRepo.ListStatements(ctx, limit, offset)
}
