package repositories

import (
	"context"

	"github.com/SscSPs/estate_ledger/internal/core/domain"
)

// BankStatementRepository persists statements and their entries.
type BankStatementRepository interface {
	SaveStatement(ctx context.Context, statement domain.BankStatement) error
	// UpdateStatement stores status and summary.
	UpdateStatement(ctx context.Context, statement domain.BankStatement) error
	// FindStatementByID returns the statement with its entries ordered by sequence.
	FindStatementByID(ctx context.Context, statementID string) (*domain.BankStatement, error)
	ListStatements(ctx context.Context, limit, offset int) ([]domain.BankStatement, error)

	SaveStatementEntry(ctx context.Context, entry domain.BankStatementEntry) error
	// UpdateStatementEntry stores applied/remaining amounts, status, matched bill and error.
	UpdateStatementEntry(ctx context.Context, entry domain.BankStatementEntry) error
	// FindStatementEntryByIDForUpdate locks the entry row within the context's transaction.
	FindStatementEntryByIDForUpdate(ctx context.Context, entryID string) (*domain.BankStatementEntry, error)
}
