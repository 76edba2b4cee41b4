package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/estate_ledger/internal/core/domain"
)

// JournalReader defines read operations for journal data
type JournalReader interface {
	// FindJournalEntryByID retrieves an entry with its lines.
	FindJournalEntryByID(ctx context.Context, journalEntryID string) (*domain.JournalEntry, error)

	// FindJournalEntryByIDForUpdate retrieves an entry with its lines and locks the entry row.
	FindJournalEntryByIDForUpdate(ctx context.Context, journalEntryID string) (*domain.JournalEntry, error)

	// FindPostedEntryByReference returns the POSTED entry of refType referencing referenceID, or
	// ErrNotFound. Voided entries do not count.
	FindPostedEntryByReference(ctx context.Context, refType domain.ReferenceType, referenceID string) (*domain.JournalEntry, error)

	// ListJournalEntries retrieves entries (without lines) using token-based pagination.
	ListJournalEntries(ctx context.Context, params domain.JournalListParams) ([]domain.JournalEntry, *string, error)
}

// JournalWriter defines write operations for journal data
type JournalWriter interface {
	// SaveJournalEntry persists an entry and its lines.
	SaveJournalEntry(ctx context.Context, entry domain.JournalEntry) error

	// MarkJournalEntryVoid flips a posted entry to VOID.
	MarkJournalEntryVoid(ctx context.Context, journalEntryID string, userID string, now time.Time) error
}

// JournalRepositoryFacade combines all journal-related repository interfaces
type JournalRepositoryFacade interface {
	JournalReader
	JournalWriter
}

// SequenceRepository hands out per-key monotonically increasing numbers.
type SequenceRepository interface {
	// NextValue atomically increments the sequence for key, creating it at 1, and returns the new value.
	NextValue(ctx context.Context, key string) (int64, error)
}
