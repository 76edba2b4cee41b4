package pgsql

import (
	"strings"

	portsrepo "github.com/SscSPs/estate_ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	journalRepo := newPgxJournalRepository(dbPool)
	billingRepo := newPgxBillingRepository(dbPool)

	return portsrepo.RepositoryProvider{
		TxManager:     newTxManager(dbPool),
		AccountRepo:   newPgxAccountRepository(dbPool),
		JournalRepo:   journalRepo,
		SequenceRepo:  journalRepo,
		ResidentRepo:  billingRepo,
		BillRepo:      billingRepo,
		PaymentRepo:   billingRepo,
		StatementRepo: newPgxBankStatementRepository(dbPool),
		BudgetRepo:    newPgxBudgetRepository(dbPool),
		ReportingRepo: newReportingRepository(dbPool),
	}
}

// prefixed qualifies a comma separated column list with a table alias.
func prefixed(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}
