package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/estate_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/estate_ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

type reportingRepository struct {
	BaseRepository
}

// newReportingRepository creates a new reporting repository
func newReportingRepository(pool *pgxpool.Pool) portsrepo.ReportingRepository {
	return &reportingRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// GetAccountActivity sums posted debit and credit lines per account within [from, to]. Every account is
// returned, including those without activity.
func (r *reportingRepository) GetAccountActivity(ctx context.Context, from, to *time.Time) ([]domain.AccountActivity, error) {
	query := `
		SELECT ` + prefixed("a", accountColumns) + `,
			COALESCE(SUM(CASE WHEN l.line_type = 'DEBIT' THEN l.amount END), 0) AS debits,
			COALESCE(SUM(CASE WHEN l.line_type = 'CREDIT' THEN l.amount END), 0) AS credits
		FROM accounts a
		LEFT JOIN (
			SELECT jl.account_id, jl.line_type, jl.amount
			FROM journal_entry_lines jl
			JOIN journal_entries je ON je.journal_entry_id = jl.journal_entry_id
			WHERE je.status = 'POSTED'
				AND ($1::date IS NULL OR je.entry_date >= $1::date)
				AND ($2::date IS NULL OR je.entry_date <= $2::date)
		) l ON l.account_id = a.account_id
		GROUP BY a.account_id
		ORDER BY a.number;
	`
	var fromArg, toArg *time.Time
	if from != nil {
		d := domain.DateOnly(*from)
		fromArg = &d
	}
	if to != nil {
		d := domain.DateOnly(*to)
		toArg = &d
	}

	rows, err := r.db(ctx).Query(ctx, query, fromArg, toArg)
	if err != nil {
		return nil, fmt.Errorf("error querying account activity: %w", err)
	}
	defer rows.Close()

	result := []domain.AccountActivity{}
	for rows.Next() {
		var act domain.AccountActivity
		var normal *string
		a := &act.Account
		err := rows.Scan(
			&a.AccountID, &a.Number, &a.Name, &a.AccountType, &normal, &a.Description, &a.IsSystemAccount,
			&a.IsActive, &a.IsBankAccount, &a.BankAccountNumber, &a.Balance, &a.CreatedAt, &a.CreatedBy,
			&a.LastUpdatedAt, &a.LastUpdatedBy,
			&act.Debits, &act.Credits,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning account activity row: %w", err)
		}
		if normal != nil {
			nb := domain.LineType(*normal)
			a.NormalBalance = &nb
		}
		result = append(result, act)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account activity rows: %w", err)
	}
	return result, nil
}
