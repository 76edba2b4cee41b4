package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/estate_ledger/internal/apperrors"
	"github.com/SscSPs/estate_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/estate_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/estate_ledger/internal/utils/accounting"
	"github.com/google/uuid"
)

// JournalEngine is the only writer of account balances. Its methods must run inside a unit of
// work started by the caller; billing, payment and expense posting share it so that their ledger
// writes commit together with their own state.
type JournalEngine struct {
	accountRepo  portsrepo.AccountRepositoryFacade
	journalRepo  portsrepo.JournalRepositoryFacade
	sequenceRepo portsrepo.SequenceRepository
	now          func() time.Time
}

// NewJournalEngine creates a JournalEngine.
func NewJournalEngine(accountRepo portsrepo.AccountRepositoryFacade, journalRepo portsrepo.JournalRepositoryFacade, sequenceRepo portsrepo.SequenceRepository, now func() time.Time) *JournalEngine {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &JournalEngine{
		accountRepo:  accountRepo,
		journalRepo:  journalRepo,
		sequenceRepo: sequenceRepo,
		now:          now,
	}
}

// Post validates and persists a balanced entry and applies every line to its account.
func (e *JournalEngine) Post(ctx context.Context, in domain.PostJournalInput, actor domain.Actor) (*domain.JournalEntry, error) {
	if err := validatePostInput(&in); err != nil {
		return nil, err
	}

	now := e.now()
	entryID := uuid.NewString()
	entryDate := domain.DateOnly(in.EntryDate)
	if in.EntryDate.IsZero() {
		entryDate = domain.DateOnly(now)
	}

	lines := make([]domain.JournalEntryLine, len(in.Lines))
	for i, l := range in.Lines {
		lines[i] = domain.JournalEntryLine{
			LineID:         uuid.NewString(),
			JournalEntryID: entryID,
			AccountID:      l.AccountID,
			LineType:       l.LineType,
			Amount:         l.Amount,
			Description:    l.Description,
		}
	}

	accounts, err := e.accountRepo.FindAccountsByIDsForUpdate(ctx, accounting.AccountIDs(lines))
	if err != nil {
		return nil, fmt.Errorf("failed to lock accounts: %w", err)
	}
	for _, id := range accounting.AccountIDs(lines) {
		acc, ok := accounts[id]
		if !ok {
			return nil, fmt.Errorf("%w: account %s not found", apperrors.ErrValidation, id)
		}
		if !acc.IsActive {
			return nil, fmt.Errorf("%w: account %s is inactive", apperrors.ErrValidation, acc.Number)
		}
	}

	balances, err := accounting.ApplyLines(accounts, lines, false)
	if err != nil {
		return nil, err
	}

	seq, err := e.sequenceRepo.NextValue(ctx, domain.EntrySequenceKey(entryDate))
	if err != nil {
		return nil, fmt.Errorf("failed to generate entry number: %w", err)
	}

	totalDebit, totalCredit := domain.LineTotals(lines)
	entry := domain.JournalEntry{
		JournalEntryID: entryID,
		EntryNumber:    domain.EntryNumber(entryDate, seq),
		EntryDate:      entryDate,
		Description:    in.Description,
		ReferenceType:  in.ReferenceType,
		ReferenceID:    in.ReferenceID,
		Status:         domain.Posted,
		TotalDebit:     totalDebit,
		TotalCredit:    totalCredit,
		Lines:          lines,
		AuditFields:    domain.NewAuditFields(actor.UserID, now),
	}

	if err := e.journalRepo.SaveJournalEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to save journal entry: %w", err)
	}
	if err := e.accountRepo.UpdateAccountBalances(ctx, balances, actor.UserID, now); err != nil {
		return nil, fmt.Errorf("failed to update account balances: %w", err)
	}
	return &entry, nil
}

// Void re-applies every line of a posted entry with its side flipped and marks it VOID.
// Voiding twice fails with ErrAlreadyVoid and leaves balances untouched.
func (e *JournalEngine) Void(ctx context.Context, journalEntryID string, actor domain.Actor) (*domain.JournalEntry, error) {
	entry, err := e.journalRepo.FindJournalEntryByIDForUpdate(ctx, journalEntryID)
	if err != nil {
		return nil, err
	}
	if entry.Status == domain.Void {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrAlreadyVoid, entry.EntryNumber)
	}

	accounts, err := e.accountRepo.FindAccountsByIDsForUpdate(ctx, accounting.AccountIDs(entry.Lines))
	if err != nil {
		return nil, fmt.Errorf("failed to lock accounts: %w", err)
	}
	balances, err := accounting.ApplyLines(accounts, entry.Lines, true)
	if err != nil {
		return nil, err
	}

	now := e.now()
	if err := e.journalRepo.MarkJournalEntryVoid(ctx, entry.JournalEntryID, actor.UserID, now); err != nil {
		return nil, fmt.Errorf("failed to void journal entry: %w", err)
	}
	if err := e.accountRepo.UpdateAccountBalances(ctx, balances, actor.UserID, now); err != nil {
		return nil, fmt.Errorf("failed to update account balances: %w", err)
	}

	entry.Status = domain.Void
	entry.VoidedAt = &now
	entry.VoidedBy = &actor.UserID
	entry.Touch(actor.UserID, now)
	return entry, nil
}

func validatePostInput(in *domain.PostJournalInput) error {
	in.Description = strings.TrimSpace(in.Description)
	if in.Description == "" {
		return fmt.Errorf("%w: journal description is required", apperrors.ErrValidation)
	}
	if in.ReferenceType == "" {
		in.ReferenceType = domain.RefManual
	}
	if !in.ReferenceType.Valid() {
		return fmt.Errorf("%w: invalid reference type %q", apperrors.ErrValidation, in.ReferenceType)
	}
	return accounting.ValidateEntryLines(in.Lines)
}
