package pgsql

import (
	"context"
	"fmt"

	"github.com/SscSPs/estate_ledger/internal/apperrors"
	"github.com/SscSPs/estate_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/estate_ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

const statementColumns = `statement_id, bank_name, account_number, statement_date, status, cash_account_id, summary,
	created_at, created_by, last_updated_at, last_updated_by`

const statementEntryColumns = `entry_id, statement_id, sequence, transaction_date, description, reference_number, amount,
	applied_amount, remaining_amount, status, matched_bill_id, error, created_at`

type PgxBankStatementRepository struct {
	BaseRepository
}

func newPgxBankStatementRepository(pool *pgxpool.Pool) *PgxBankStatementRepository {
	return &PgxBankStatementRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.BankStatementRepository = (*PgxBankStatementRepository)(nil)

func scanStatement(row rowScanner) (domain.BankStatement, error) {
	var s domain.BankStatement
	err := row.Scan(
		&s.StatementID,
		&s.BankName,
		&s.AccountNumber,
		&s.StatementDate,
		&s.Status,
		&s.CashAccountID,
		&s.Summary, // jsonb
		&s.CreatedAt,
		&s.CreatedBy,
		&s.LastUpdatedAt,
		&s.LastUpdatedBy,
	)
	return s, err
}

func scanStatementEntry(row rowScanner) (domain.BankStatementEntry, error) {
	var e domain.BankStatementEntry
	err := row.Scan(
		&e.EntryID,
		&e.StatementID,
		&e.Sequence,
		&e.TransactionDate,
		&e.Description,
		&e.ReferenceNumber,
		&e.Amount,
		&e.AppliedAmount,
		&e.RemainingAmount,
		&e.Status,
		&e.MatchedBillID,
		&e.Error,
		&e.CreatedAt,
	)
	return e, err
}

func (r *PgxBankStatementRepository) SaveStatement(ctx context.Context, s domain.BankStatement) error {
	query := `
		INSERT INTO bank_statements (` + statementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err := r.db(ctx).Exec(ctx, query,
		s.StatementID, s.BankName, s.AccountNumber, s.StatementDate, s.Status, s.CashAccountID, s.Summary,
		s.CreatedAt, s.CreatedBy, s.LastUpdatedAt, s.LastUpdatedBy)
	return mapError(err, "save bank statement")
}

// UpdateStatement stores status and summary.
func (r *PgxBankStatementRepository) UpdateStatement(ctx context.Context, s domain.BankStatement) error {
	query := `
		UPDATE bank_statements
		SET status = $2, summary = $3, last_updated_at = $4, last_updated_by = $5
		WHERE statement_id = $1;
	`
	cmdTag, err := r.db(ctx).Exec(ctx, query, s.StatementID, s.Status, s.Summary, s.LastUpdatedAt, s.LastUpdatedBy)
	if err != nil {
		return mapError(err, "update bank statement "+s.StatementID)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// FindStatementByID returns the statement with its entries ordered by sequence.
func (r *PgxBankStatementRepository) FindStatementByID(ctx context.Context, statementID string) (*domain.BankStatement, error) {
	q := r.db(ctx)
	s, err := scanStatement(q.QueryRow(ctx, `SELECT `+statementColumns+` FROM bank_statements WHERE statement_id = $1;`, statementID))
	if err != nil {
		return nil, mapError(err, "find bank statement")
	}

	rows, err := q.Query(ctx, `SELECT `+statementEntryColumns+` FROM bank_statement_entries WHERE statement_id = $1 ORDER BY sequence;`, statementID)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries for statement %s: %w", statementID, err)
	}
	defer rows.Close()

	s.Entries = []domain.BankStatementEntry{}
	for rows.Next() {
		e, err := scanStatementEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan statement entry row: %w", err)
		}
		s.Entries = append(s.Entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating statement entry rows: %w", err)
	}
	return &s, nil
}

// ListStatements returns statements without entries, newest first.
func (r *PgxBankStatementRepository) ListStatements(ctx context.Context, limit, offset int) ([]domain.BankStatement, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	query := `
		SELECT ` + statementColumns + `
		FROM bank_statements
		ORDER BY statement_date DESC, created_at DESC
		LIMIT $1 OFFSET $2;
	`
	rows, err := r.db(ctx).Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query bank statements: %w", err)
	}
	defer rows.Close()

	statements := []domain.BankStatement{}
	for rows.Next() {
		s, err := scanStatement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bank statement row: %w", err)
		}
		statements = append(statements, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bank statement rows: %w", err)
	}
	return statements, nil
}

func (r *PgxBankStatementRepository) SaveStatementEntry(ctx context.Context, e domain.BankStatementEntry) error {
	query := `
		INSERT INTO bank_statement_entries (` + statementEntryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	_, err := r.db(ctx).Exec(ctx, query,
		e.EntryID, e.StatementID, e.Sequence, e.TransactionDate, e.Description, e.ReferenceNumber, e.Amount,
		e.AppliedAmount, e.RemainingAmount, e.Status, e.MatchedBillID, e.Error, e.CreatedAt)
	return mapError(err, "save statement entry")
}

// UpdateStatementEntry stores applied/remaining amounts, status, matched bill and error.
func (r *PgxBankStatementRepository) UpdateStatementEntry(ctx context.Context, e domain.BankStatementEntry) error {
	query := `
		UPDATE bank_statement_entries
		SET applied_amount = $2, remaining_amount = $3, status = $4, matched_bill_id = $5, error = $6
		WHERE entry_id = $1;
	`
	cmdTag, err := r.db(ctx).Exec(ctx, query, e.EntryID, e.AppliedAmount, e.RemainingAmount, e.Status, e.MatchedBillID, e.Error)
	if err != nil {
		return mapError(err, "update statement entry "+e.EntryID)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxBankStatementRepository) FindStatementEntryByIDForUpdate(ctx context.Context, entryID string) (*domain.BankStatementEntry, error) {
	query := `SELECT ` + statementEntryColumns + ` FROM bank_statement_entries WHERE entry_id = $1 FOR UPDATE;`
	e, err := scanStatementEntry(r.db(ctx).QueryRow(ctx, query, entryID))
	if err != nil {
		return nil, mapError(err, "find statement entry")
	}
	return &e, nil
}
