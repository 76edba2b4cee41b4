package pgsql

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/SscSPs/estate_ledger/internal/apperrors"
	"github.com/SscSPs/estate_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/estate_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/estate_ledger/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const journalColumns = `journal_entry_id, entry_number, entry_date, description, reference_type, reference_id, status,
	total_debit, total_credit, voided_at, voided_by, created_at, created_by, last_updated_at, last_updated_by`

type PgxJournalRepository struct {
	BaseRepository
}

// newPgxJournalRepository creates a new repository for journal entries and their lines.
func newPgxJournalRepository(pool *pgxpool.Pool) *PgxJournalRepository {
	return &PgxJournalRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var (
	_ portsrepo.JournalRepositoryFacade = (*PgxJournalRepository)(nil)
	_ portsrepo.SequenceRepository      = (*PgxJournalRepository)(nil)
)

func scanJournalEntry(row rowScanner) (domain.JournalEntry, error) {
	var e domain.JournalEntry
	err := row.Scan(
		&e.JournalEntryID,
		&e.EntryNumber,
		&e.EntryDate,
		&e.Description,
		&e.ReferenceType,
		&e.ReferenceID,
		&e.Status,
		&e.TotalDebit,
		&e.TotalCredit,
		&e.VoidedAt,
		&e.VoidedBy,
		&e.CreatedAt,
		&e.CreatedBy,
		&e.LastUpdatedAt,
		&e.LastUpdatedBy,
	)
	return e, err
}

// SaveJournalEntry inserts the entry header and its lines. Balances are the journal engine's concern.
func (r *PgxJournalRepository) SaveJournalEntry(ctx context.Context, entry domain.JournalEntry) error {
	q := r.db(ctx)
	query := `
		INSERT INTO journal_entries (` + journalColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`
	_, err := q.Exec(ctx, query,
		entry.JournalEntryID,
		entry.EntryNumber,
		entry.EntryDate,
		entry.Description,
		entry.ReferenceType,
		entry.ReferenceID,
		entry.Status,
		entry.TotalDebit,
		entry.TotalCredit,
		entry.VoidedAt,
		entry.VoidedBy,
		entry.CreatedAt,
		entry.CreatedBy,
		entry.LastUpdatedAt,
		entry.LastUpdatedBy,
	)
	if err != nil {
		return mapError(err, "insert journal entry "+entry.EntryNumber)
	}

	lineQuery := `
		INSERT INTO journal_entry_lines (line_id, journal_entry_id, line_no, account_id, line_type, amount, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	batch := &pgx.Batch{}
	for i, l := range entry.Lines {
		batch.Queue(lineQuery, l.LineID, entry.JournalEntryID, i+1, l.AccountID, l.LineType, l.Amount, l.Description)
	}
	return execBatch(ctx, q, batch, "insert journal lines for "+entry.EntryNumber, false)
}

// FindJournalEntryByID retrieves an entry with its lines.
func (r *PgxJournalRepository) FindJournalEntryByID(ctx context.Context, journalEntryID string) (*domain.JournalEntry, error) {
	return r.findOne(ctx, `WHERE journal_entry_id = $1`, journalEntryID)
}

// FindJournalEntryByIDForUpdate retrieves an entry with its lines and locks the entry row.
func (r *PgxJournalRepository) FindJournalEntryByIDForUpdate(ctx context.Context, journalEntryID string) (*domain.JournalEntry, error) {
	return r.findOne(ctx, `WHERE journal_entry_id = $1 FOR UPDATE`, journalEntryID)
}

// FindPostedEntryByReference returns the posted entry of refType referencing referenceID. A voided
// entry does not count.
func (r *PgxJournalRepository) FindPostedEntryByReference(ctx context.Context, refType domain.ReferenceType, referenceID string) (*domain.JournalEntry, error) {
	return r.findOne(ctx, `WHERE reference_type = $1 AND status = 'POSTED' AND reference_id = $2
		ORDER BY created_at LIMIT 1`, string(refType), referenceID)
}

func (r *PgxJournalRepository) findOne(ctx context.Context, clause string, args ...any) (*domain.JournalEntry, error) {
	query := `SELECT ` + journalColumns + ` FROM journal_entries ` + clause + `;`
	entry, err := scanJournalEntry(r.db(ctx).QueryRow(ctx, query, args...))
	if err != nil {
		return nil, mapError(err, "find journal entry")
	}
	lines, err := r.findLines(ctx, entry.JournalEntryID)
	if err != nil {
		return nil, err
	}
	entry.Lines = lines
	return &entry, nil
}

func (r *PgxJournalRepository) findLines(ctx context.Context, journalEntryID string) ([]domain.JournalEntryLine, error) {
	query := `
		SELECT line_id, journal_entry_id, account_id, line_type, amount, description
		FROM journal_entry_lines
		WHERE journal_entry_id = $1
		ORDER BY line_no;
	`
	rows, err := r.db(ctx).Query(ctx, query, journalEntryID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query lines for journal entry "+journalEntryID, err)
	}
	defer rows.Close()

	lines := []domain.JournalEntryLine{}
	for rows.Next() {
		var l domain.JournalEntryLine
		if err := rows.Scan(&l.LineID, &l.JournalEntryID, &l.AccountID, &l.LineType, &l.Amount, &l.Description); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan line row for journal entry "+journalEntryID, err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating line rows for journal entry "+journalEntryID, err)
	}
	return lines, nil
}

// ListJournalEntries retrieves entries (without lines) ordered by entry date, creation time and ID, newest first.
// It returns the entries and a token for the next page.
func (r *PgxJournalRepository) ListJournalEntries(ctx context.Context, params domain.JournalListParams) ([]domain.JournalEntry, *string, error) {
	limit := pagination.NormalizeLimit(params.Limit)

	var conds []string
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, strings.ReplaceAll(cond, "?", "$"+strconv.Itoa(len(args))))
	}
	if params.From != nil {
		add("entry_date >= ?", domain.DateOnly(*params.From))
	}
	if params.To != nil {
		add("entry_date <= ?", domain.DateOnly(*params.To))
	}
	if params.ReferenceType != nil {
		add("reference_type = ?", string(*params.ReferenceType))
	}
	if params.Status != nil {
		add("status = ?", string(*params.Status))
	}
	if params.NextToken != nil && *params.NextToken != "" {
		cursor, err := pagination.DecodeToken(*params.NextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		// Tuple comparison is concise and efficient in Postgres
		args = append(args, cursor.Date, cursor.CreatedAt, cursor.ID)
		n := len(args)
		conds = append(conds, fmt.Sprintf("(entry_date, created_at, journal_entry_id) < ($%d, $%d, $%d)", n-2, n-1, n))
	}

	query := `SELECT ` + journalColumns + ` FROM journal_entries`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	// fetch one extra row to know whether a next page exists
	args = append(args, limit+1)
	query += " ORDER BY entry_date DESC, created_at DESC, journal_entry_id DESC LIMIT $" + strconv.Itoa(len(args)) + ";"

	rows, err := r.db(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query journal entries", err)
	}
	defer rows.Close()

	entries := make([]domain.JournalEntry, 0, limit+1)
	for rows.Next() {
		e, err := scanJournalEntry(rows)
		if err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan journal entry row", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating journal entry rows", err)
	}

	var next *string
	if len(entries) > limit {
		entries = entries[:limit]
		last := entries[limit-1]
		token := pagination.EncodeToken(pagination.Cursor{Date: last.EntryDate, CreatedAt: last.CreatedAt, ID: last.JournalEntryID})
		next = &token
	}
	return entries, next, nil
}

// MarkJournalEntryVoid flips a posted entry to VOID.
func (r *PgxJournalRepository) MarkJournalEntryVoid(ctx context.Context, journalEntryID string, userID string, now time.Time) error {
	query := `
		UPDATE journal_entries
		SET status = 'VOID', voided_at = $2, voided_by = $3, last_updated_at = $2, last_updated_by = $3
		WHERE journal_entry_id = $1 AND status = 'POSTED';
	`
	cmdTag, err := r.db(ctx).Exec(ctx, query, journalEntryID, now, userID)
	if err != nil {
		return mapError(err, "void journal entry "+journalEntryID)
	}
	if cmdTag.RowsAffected() == 0 {
		// either missing or already void
		var status string
		err := r.db(ctx).QueryRow(ctx, `SELECT status FROM journal_entries WHERE journal_entry_id = $1;`, journalEntryID).Scan(&status)
		if err != nil {
			return mapError(err, "check journal entry status")
		}
		return apperrors.ErrAlreadyVoid
	}
	return nil
}

// NextValue atomically increments the sequence for key, creating it at 1.
func (r *PgxJournalRepository) NextValue(ctx context.Context, key string) (int64, error) {
	query := `
		INSERT INTO sequences (sequence_key, last_value) VALUES ($1, 1)
		ON CONFLICT (sequence_key) DO UPDATE SET last_value = sequences.last_value + 1
		RETURNING last_value;
	`
	var value int64
	if err := r.db(ctx).QueryRow(ctx, query, key).Scan(&value); err != nil {
		return 0, mapError(err, "advance sequence "+key)
	}
	return value, nil
}
