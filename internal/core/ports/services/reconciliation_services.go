package services

import (
	"context"

	"github.com/SscSPs/estate_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ReconciliationSvc matches bank statement entries to bills.
type ReconciliationSvc interface {
	// ReconcileStatement processes every entry in its own unit of work. Entry failures are counted,
	// never returned.
	ReconcileStatement(ctx context.Context, meta domain.StatementMeta, entries []domain.RawStatementEntry, actor domain.Actor) (*domain.ReconciliationResult, error)

	// MatchStatementEntry manually applies an unmatched or partially matched entry to a bill. A nil
	// amount applies as much as both sides allow.
	MatchStatementEntry(ctx context.Context, entryID, billID string, amount *decimal.Decimal, actor domain.Actor) (*domain.BankStatementEntry, error)

	GetStatement(ctx context.Context, statementID string) (*domain.BankStatement, error)

	ListStatements(ctx context.Context, limit, offset int) ([]domain.BankStatement, error)
}
