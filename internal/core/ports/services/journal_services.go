package services

import (
	"context"

	"github.com/SscSPs/estate_ledger/internal/core/domain"
)

// JournalReaderSvc defines read operations for journal data
type JournalReaderSvc interface {
	// GetJournalEntry retrieves an entry with its lines.
	GetJournalEntry(ctx context.Context, journalEntryID string) (*domain.JournalEntry, error)

	// ListJournalEntries retrieves a page of entries and the token for the next page.
	ListJournalEntries(ctx context.Context, params domain.JournalListParams) ([]domain.JournalEntry, *string, error)
}

// JournalWriterSvc defines write operations for journal data
type JournalWriterSvc interface {
	// PostJournalEntry validates and posts a balanced entry, applying every line to its account.
	PostJournalEntry(ctx context.Context, in domain.PostJournalInput, actor domain.Actor) (*domain.JournalEntry, error)

	// VoidJournalEntry reverses the balance effect of a posted entry and marks it VOID.
	VoidJournalEntry(ctx context.Context, journalEntryID string, actor domain.Actor) (*domain.JournalEntry, error)

	// ReverseJournalEntry posts a new entry with every line flipped, referencing the original.
	ReverseJournalEntry(ctx context.Context, journalEntryID string, actor domain.Actor) (*domain.JournalEntry, error)
}

// LedgerVerifierSvc checks stored balances against a replay of posted lines.
type LedgerVerifierSvc interface {
	VerifyLedger(ctx context.Context) ([]domain.LedgerDiscrepancy, error)
}

// JournalSvcFacade combines all journal-related service interfaces
// This is a facade for clients that need access to all operations
type JournalSvcFacade interface {
	JournalReaderSvc
	JournalWriterSvc
	LedgerVerifierSvc
}
