package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/estate_ledger/internal/apperrors"
	"github.com/SscSPs/estate_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/estate_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/estate_ledger/internal/core/ports/services"
	"github.com/SscSPs/estate_ledger/internal/utils/accounting"
	"github.com/SscSPs/estate_ledger/internal/utils/pagination"
)

// journalService provides core journal operations.
type journalService struct {
	BaseService
	txManager     portsrepo.TransactionManager
	engine        *JournalEngine
	journalRepo   portsrepo.JournalRepositoryFacade
	reportingRepo portsrepo.ReportingRepository
}

// NewJournalService creates a new JournalService.
func NewJournalService(txManager portsrepo.TransactionManager, engine *JournalEngine, journalRepo portsrepo.JournalRepositoryFacade, reportingRepo portsrepo.ReportingRepository, options ...ServiceOption) portssvc.JournalSvcFacade {
	return &journalService{
		BaseService:   newBase(options),
		txManager:     txManager,
		engine:        engine,
		journalRepo:   journalRepo,
		reportingRepo: reportingRepo,
	}
}

// Ensure journalService implements the portssvc.JournalSvcFacade interface
var _ portssvc.JournalSvcFacade = (*journalService)(nil)

// PostJournalEntry posts a balanced entry atomically.
func (s *journalService) PostJournalEntry(ctx context.Context, in domain.PostJournalInput, actor domain.Actor) (*domain.JournalEntry, error) {
	var entry *domain.JournalEntry
	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		entry, err = s.engine.Post(ctx, in, actor)
		return err
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrUnbalancedEntry) || errors.Is(err, apperrors.ErrValidation) {
			s.LogWarn(ctx, "Journal entry rejected", slog.String("error", err.Error()))
		} else {
			s.LogError(ctx, err, "Failed to post journal entry")
		}
		return nil, err
	}

	s.LogInfo(ctx, "Journal entry posted",
		slog.String("journal_entry_id", entry.JournalEntryID),
		slog.String("entry_number", entry.EntryNumber),
		slog.String("total", entry.TotalDebit.String()))
	s.Publish(ctx, domain.EventJournalPosted, entry.JournalEntryID, entry)
	return entry, nil
}

// VoidJournalEntry voids a posted entry atomically.
func (s *journalService) VoidJournalEntry(ctx context.Context, journalEntryID string, actor domain.Actor) (*domain.JournalEntry, error) {
	var entry *domain.JournalEntry
	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		existing, err := s.journalRepo.FindJournalEntryByIDForUpdate(ctx, journalEntryID)
		if err != nil {
			return err
		}
		if existing.Status == domain.Posted && existing.ReferenceType != domain.RefReversal {
			if err := requireManual(existing); err != nil {
				return err
			}
		}
		entry, err = s.engine.Void(ctx, journalEntryID, actor)
		return err
	})
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			s.LogWarn(ctx, "Journal entry not found for void", slog.String("journal_entry_id", journalEntryID))
		case errors.Is(err, apperrors.ErrAlreadyVoid):
			s.LogWarn(ctx, "Journal entry already void", slog.String("journal_entry_id", journalEntryID))
		case errors.Is(err, apperrors.ErrConflict):
			s.LogWarn(ctx, "Journal entry void rejected", slog.String("journal_entry_id", journalEntryID), slog.String("error", err.Error()))
		default:
			s.LogError(ctx, err, "Failed to void journal entry", slog.String("journal_entry_id", journalEntryID))
		}
		return nil, err
	}

	s.LogInfo(ctx, "Journal entry voided",
		slog.String("journal_entry_id", entry.JournalEntryID),
		slog.String("entry_number", entry.EntryNumber))
	s.Publish(ctx, domain.EventJournalVoided, entry.JournalEntryID, entry)
	return entry, nil
}

// ReverseJournalEntry posts a mirror entry dated today. The original stays POSTED so that both
// remain visible in the period they belong to.
func (s *journalService) ReverseJournalEntry(ctx context.Context, journalEntryID string, actor domain.Actor) (*domain.JournalEntry, error) {
	var reversal *domain.JournalEntry
	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		original, err := s.journalRepo.FindJournalEntryByIDForUpdate(ctx, journalEntryID)
		if err != nil {
			return err
		}
		if original.Status == domain.Void {
			return fmt.Errorf("%w: entry %s is void and cannot be reversed", apperrors.ErrConflict, original.EntryNumber)
		}
		if original.ReferenceType == domain.RefReversal {
			return fmt.Errorf("%w: entry %s is itself a reversal", apperrors.ErrConflict, original.EntryNumber)
		}
		if err := requireManual(original); err != nil {
			return err
		}
		existing, err := s.journalRepo.FindPostedEntryByReference(ctx, domain.RefReversal, original.JournalEntryID)
		if err == nil {
			return fmt.Errorf("%w: entry %s was already reversed by %s", apperrors.ErrConflict, original.EntryNumber, existing.EntryNumber)
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return err
		}

		reversal, err = s.engine.Post(ctx, domain.PostJournalInput{
			EntryDate:     s.Now(),
			Description:   "Reversal of " + original.EntryNumber,
			ReferenceType: domain.RefReversal,
			ReferenceID:   &original.JournalEntryID,
			Lines:         accounting.FlipLines(original.Lines),
		}, actor)
		return err
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) || errors.Is(err, apperrors.ErrConflict) {
			s.LogWarn(ctx, "Journal entry reversal rejected", slog.String("journal_entry_id", journalEntryID), slog.String("error", err.Error()))
		} else {
			s.LogError(ctx, err, "Failed to reverse journal entry", slog.String("journal_entry_id", journalEntryID))
		}
		return nil, err
	}

	s.LogInfo(ctx, "Journal entry reversed",
		slog.String("journal_entry_id", journalEntryID),
		slog.String("reversal_entry_id", reversal.JournalEntryID))
	s.Publish(ctx, domain.EventJournalPosted, reversal.JournalEntryID, reversal)
	return reversal, nil
}

// GetJournalEntry retrieves a specific entry with its lines.
func (s *journalService) GetJournalEntry(ctx context.Context, journalEntryID string) (*domain.JournalEntry, error) {
	entry, err := s.journalRepo.FindJournalEntryByID(ctx, journalEntryID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find journal entry by ID", slog.String("journal_entry_id", journalEntryID))
		}
		return nil, err
	}
	return entry, nil
}

// ListJournalEntries retrieves a page of entries, newest first.
func (s *journalService) ListJournalEntries(ctx context.Context, params domain.JournalListParams) ([]domain.JournalEntry, *string, error) {
	params.Limit = pagination.NormalizeLimit(params.Limit)
	if params.ReferenceType != nil && !params.ReferenceType.Valid() {
		return nil, nil, fmt.Errorf("%w: invalid reference type %q", apperrors.ErrValidation, *params.ReferenceType)
	}
	if params.From != nil && params.To != nil && params.To.Before(*params.From) {
		return nil, nil, fmt.Errorf("%w: 'to' date must not be before 'from' date", apperrors.ErrValidation)
	}
	if params.NextToken != nil {
		if _, err := pagination.DecodeToken(*params.NextToken); err != nil {
			return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
	}

	entries, next, err := s.journalRepo.ListJournalEntries(ctx, params)
	if err != nil {
		s.LogError(ctx, err, "Failed to list journal entries")
		return nil, nil, fmt.Errorf("failed to retrieve journal entries: %w", err)
	}
	s.LogDebug(ctx, "Journal entries listed", slog.Int("count", len(entries)))
	return entries, next, nil
}

// VerifyLedger replays every posted line and reports accounts whose stored balance disagrees.
func (s *journalService) VerifyLedger(ctx context.Context) ([]domain.LedgerDiscrepancy, error) {
	activity, err := s.reportingRepo.GetAccountActivity(ctx, nil, nil)
	if err != nil {
		s.LogError(ctx, err, "Failed to load account activity for verification")
		return nil, err
	}
	discrepancies, err := accounting.Discrepancies(activity)
	if err != nil {
		return nil, err
	}
	if len(discrepancies) > 0 {
		s.LogWarn(ctx, "Ledger verification found discrepancies", slog.Int("count", len(discrepancies)))
	} else {
		s.LogInfo(ctx, "Ledger verified", slog.Int("accounts", len(activity)))
	}
	return discrepancies, nil
}

// requireManual rejects entries owned by billing, payments or expenses. Changing them here would
// leave the bill or resident balance out of step with receivables.
func requireManual(entry *domain.JournalEntry) error {
	switch entry.ReferenceType {
	case domain.RefManual, "":
		return nil
	case domain.RefBill:
		return fmt.Errorf("%w: entry %s belongs to a bill; void the bill instead", apperrors.ErrConflict, entry.EntryNumber)
	case domain.RefPayment:
		return fmt.Errorf("%w: entry %s belongs to a payment application and cannot be changed directly", apperrors.ErrConflict, entry.EntryNumber)
	default:
		return fmt.Errorf("%w: entry %s is a %s posting and cannot be changed directly", apperrors.ErrConflict, entry.EntryNumber, entry.ReferenceType)
	}
}
