package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/estate_ledger/internal/apperrors"
	"github.com/SscSPs/estate_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/estate_ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const budgetColumns = `budget_id, name, start_date, end_date, status, total_allocated, total_consumed, total_remaining,
	created_at, created_by, last_updated_at, last_updated_by`

type PgxBudgetRepository struct {
	BaseRepository
}

func newPgxBudgetRepository(pool *pgxpool.Pool) *PgxBudgetRepository {
	return &PgxBudgetRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.BudgetRepository = (*PgxBudgetRepository)(nil)

func scanBudget(row rowScanner) (domain.Budget, error) {
	var b domain.Budget
	err := row.Scan(
		&b.BudgetID,
		&b.Name,
		&b.StartDate,
		&b.EndDate,
		&b.Status,
		&b.TotalAllocated,
		&b.TotalConsumed,
		&b.TotalRemaining,
		&b.CreatedAt,
		&b.CreatedBy,
		&b.LastUpdatedAt,
		&b.LastUpdatedBy,
	)
	return b, err
}

// SaveBudget persists a budget and its lines.
func (r *PgxBudgetRepository) SaveBudget(ctx context.Context, b domain.Budget) error {
	q := r.db(ctx)
	query := `
		INSERT INTO budgets (` + budgetColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err := q.Exec(ctx, query,
		b.BudgetID, b.Name, b.StartDate, b.EndDate, b.Status, b.TotalAllocated, b.TotalConsumed, b.TotalRemaining,
		b.CreatedAt, b.CreatedBy, b.LastUpdatedAt, b.LastUpdatedBy)
	if err != nil {
		return mapError(err, "save budget "+b.Name)
	}

	lineQuery := `
		INSERT INTO budget_lines (budget_line_id, budget_id, account_id, allocated_amount, consumed_amount, remaining_amount)
		VALUES ($1, $2, $3, $4, $5, $6);
	`
	batch := &pgx.Batch{}
	for _, l := range b.Lines {
		batch.Queue(lineQuery, l.BudgetLineID, b.BudgetID, l.AccountID, l.AllocatedAmount, l.ConsumedAmount, l.RemainingAmount)
	}
	return execBatch(ctx, q, batch, "save budget lines", false)
}

// FindBudgetByID returns the budget with its lines.
func (r *PgxBudgetRepository) FindBudgetByID(ctx context.Context, budgetID string) (*domain.Budget, error) {
	return r.findOne(ctx, `WHERE budget_id = $1`, budgetID)
}

// FindBudgetByIDForUpdate locks the budget row. Lines are only written under that lock.
func (r *PgxBudgetRepository) FindBudgetByIDForUpdate(ctx context.Context, budgetID string) (*domain.Budget, error) {
	return r.findOne(ctx, `WHERE budget_id = $1 FOR UPDATE`, budgetID)
}

// FindActiveBudgetCovering returns the ACTIVE budget whose range includes date.
func (r *PgxBudgetRepository) FindActiveBudgetCovering(ctx context.Context, date time.Time) (*domain.Budget, error) {
	return r.findOne(ctx, `WHERE status = 'ACTIVE' AND start_date <= $1 AND end_date >= $1 ORDER BY start_date LIMIT 1`,
		domain.DateOnly(date))
}

func (r *PgxBudgetRepository) findOne(ctx context.Context, clause string, arg any) (*domain.Budget, error) {
	b, err := scanBudget(r.db(ctx).QueryRow(ctx, `SELECT `+budgetColumns+` FROM budgets `+clause+`;`, arg))
	if err != nil {
		return nil, mapError(err, "find budget")
	}
	lines, err := r.findLines(ctx, b.BudgetID)
	if err != nil {
		return nil, err
	}
	b.Lines = lines
	return &b, nil
}

func (r *PgxBudgetRepository) findLines(ctx context.Context, budgetID string) ([]domain.BudgetLine, error) {
	query := `
		SELECT l.budget_line_id, l.budget_id, l.account_id, l.allocated_amount, l.consumed_amount, l.remaining_amount
		FROM budget_lines l
		JOIN accounts a ON a.account_id = l.account_id
		WHERE l.budget_id = $1
		ORDER BY a.number;
	`
	rows, err := r.db(ctx).Query(ctx, query, budgetID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lines for budget %s: %w", budgetID, err)
	}
	defer rows.Close()

	lines := []domain.BudgetLine{}
	for rows.Next() {
		var l domain.BudgetLine
		if err := rows.Scan(&l.BudgetLineID, &l.BudgetID, &l.AccountID, &l.AllocatedAmount, &l.ConsumedAmount, &l.RemainingAmount); err != nil {
			return nil, fmt.Errorf("failed to scan budget line row: %w", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating budget line rows: %w", err)
	}
	return lines, nil
}

// ListBudgets returns budgets without lines, latest start date first.
func (r *PgxBudgetRepository) ListBudgets(ctx context.Context, status *domain.BudgetStatus) ([]domain.Budget, error) {
	query := `SELECT ` + budgetColumns + ` FROM budgets`
	var args []any
	if status != nil {
		query += ` WHERE status = $1`
		args = append(args, string(*status))
	}
	query += ` ORDER BY start_date DESC, created_at DESC;`

	rows, err := r.db(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query budgets: %w", err)
	}
	defer rows.Close()

	budgets := []domain.Budget{}
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan budget row: %w", err)
		}
		budgets = append(budgets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating budget rows: %w", err)
	}
	return budgets, nil
}

// UpdateBudget stores status and aggregate totals.
func (r *PgxBudgetRepository) UpdateBudget(ctx context.Context, b domain.Budget) error {
	query := `
		UPDATE budgets
		SET status = $2, total_allocated = $3, total_consumed = $4, total_remaining = $5,
		    last_updated_at = $6, last_updated_by = $7
		WHERE budget_id = $1;
	`
	cmdTag, err := r.db(ctx).Exec(ctx, query,
		b.BudgetID, b.Status, b.TotalAllocated, b.TotalConsumed, b.TotalRemaining, b.LastUpdatedAt, b.LastUpdatedBy)
	if err != nil {
		return mapError(err, "update budget "+b.BudgetID)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// UpdateBudgetLine stores consumed and remaining amounts.
func (r *PgxBudgetRepository) UpdateBudgetLine(ctx context.Context, l domain.BudgetLine) error {
	query := `
		UPDATE budget_lines
		SET consumed_amount = $2, remaining_amount = $3
		WHERE budget_line_id = $1;
	`
	cmdTag, err := r.db(ctx).Exec(ctx, query, l.BudgetLineID, l.ConsumedAmount, l.RemainingAmount)
	if err != nil {
		return mapError(err, "update budget line "+l.BudgetLineID)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
