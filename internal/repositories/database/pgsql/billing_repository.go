package pgsql

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/SscSPs/estate_ledger/internal/apperrors"
	"github.com/SscSPs/estate_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/estate_ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

const residentColumns = `resident_id, name, status, service_charge, start_date, current_period_end, balance,
	created_at, created_by, last_updated_at, last_updated_by`

const billColumns = `bill_id, resident_id, invoice_number, description, amount, total_paid, balance, payment_status,
	status, period_start, period_end, due_date, journal_entry_id, created_at, created_by, last_updated_at, last_updated_by`

const paymentColumns = `payment_application_id, bill_id, amount_applied, application_type, bank_statement_entry_id,
	payment_date, reference, notes, applied_by, journal_entry_id, created_at`

// PgxBillingRepository stores residents' billing state, bills and payment applications.
type PgxBillingRepository struct {
	BaseRepository
}

func newPgxBillingRepository(pool *pgxpool.Pool) *PgxBillingRepository {
	return &PgxBillingRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var (
	_ portsrepo.ResidentRepository   = (*PgxBillingRepository)(nil)
	_ portsrepo.BillRepositoryFacade = (*PgxBillingRepository)(nil)
	_ portsrepo.PaymentRepository    = (*PgxBillingRepository)(nil)
)

func scanResident(row rowScanner) (domain.Resident, error) {
	var r domain.Resident
	err := row.Scan(
		&r.ResidentID,
		&r.Name,
		&r.Status,
		&r.ServiceCharge,
		&r.StartDate,
		&r.CurrentPeriodEnd,
		&r.Balance,
		&r.CreatedAt,
		&r.CreatedBy,
		&r.LastUpdatedAt,
		&r.LastUpdatedBy,
	)
	return r, err
}

func scanBill(row rowScanner) (domain.Bill, error) {
	var b domain.Bill
	err := row.Scan(
		&b.BillID,
		&b.ResidentID,
		&b.InvoiceNumber,
		&b.Description,
		&b.Amount,
		&b.TotalPaid,
		&b.Balance,
		&b.PaymentStatus,
		&b.Status,
		&b.PeriodStart,
		&b.PeriodEnd,
		&b.DueDate,
		&b.JournalEntryID,
		&b.CreatedAt,
		&b.CreatedBy,
		&b.LastUpdatedAt,
		&b.LastUpdatedBy,
	)
	return b, err
}

// --- Residents ---

func (r *PgxBillingRepository) FindResidentByID(ctx context.Context, residentID string) (*domain.Resident, error) {
	return r.findResident(ctx, `WHERE resident_id = $1`, residentID)
}

func (r *PgxBillingRepository) FindResidentByIDForUpdate(ctx context.Context, residentID string) (*domain.Resident, error) {
	return r.findResident(ctx, `WHERE resident_id = $1 FOR UPDATE`, residentID)
}

func (r *PgxBillingRepository) findResident(ctx context.Context, clause string, arg any) (*domain.Resident, error) {
	res, err := scanResident(r.db(ctx).QueryRow(ctx, `SELECT `+residentColumns+` FROM residents `+clause+`;`, arg))
	if err != nil {
		return nil, mapError(err, "find resident")
	}
	return &res, nil
}

// ListBillableResidents returns active residents with a positive service charge and a start date.
func (r *PgxBillingRepository) ListBillableResidents(ctx context.Context) ([]domain.Resident, error) {
	query := `
		SELECT ` + residentColumns + `
		FROM residents
		WHERE status = 'ACTIVE' AND service_charge > 0 AND start_date IS NOT NULL
		ORDER BY resident_id;
	`
	rows, err := r.db(ctx).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query billable residents: %w", err)
	}
	defer rows.Close()

	residents := []domain.Resident{}
	for rows.Next() {
		res, err := scanResident(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan resident row: %w", err)
		}
		residents = append(residents, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating resident rows: %w", err)
	}
	return residents, nil
}

// SaveResident inserts a resident. Resident management proper lives outside the ledger; this seeds fixtures
// and imports.
func (r *PgxBillingRepository) SaveResident(ctx context.Context, res domain.Resident) error {
	query := `
		INSERT INTO residents (` + residentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err := r.db(ctx).Exec(ctx, query,
		res.ResidentID, res.Name, res.Status, res.ServiceCharge, res.StartDate, res.CurrentPeriodEnd, res.Balance,
		res.CreatedAt, res.CreatedBy, res.LastUpdatedAt, res.LastUpdatedBy)
	return mapError(err, "save resident "+res.ResidentID)
}

// UpdateResidentBilling stores CurrentPeriodEnd and Balance only.
func (r *PgxBillingRepository) UpdateResidentBilling(ctx context.Context, res domain.Resident) error {
	query := `
		UPDATE residents
		SET current_period_end = $2, balance = $3, last_updated_at = $4, last_updated_by = $5
		WHERE resident_id = $1;
	`
	cmdTag, err := r.db(ctx).Exec(ctx, query, res.ResidentID, res.CurrentPeriodEnd, res.Balance, res.LastUpdatedAt, res.LastUpdatedBy)
	if err != nil {
		return mapError(err, "update resident billing "+res.ResidentID)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// --- Bills ---

func (r *PgxBillingRepository) FindBillByID(ctx context.Context, billID string) (*domain.Bill, error) {
	return r.findBill(ctx, `WHERE bill_id = $1`, billID)
}

func (r *PgxBillingRepository) FindBillByIDForUpdate(ctx context.Context, billID string) (*domain.Bill, error) {
	return r.findBill(ctx, `WHERE bill_id = $1 FOR UPDATE`, billID)
}

func (r *PgxBillingRepository) findBill(ctx context.Context, clause string, arg any) (*domain.Bill, error) {
	b, err := scanBill(r.db(ctx).QueryRow(ctx, `SELECT `+billColumns+` FROM bills `+clause+`;`, arg))
	if err != nil {
		return nil, mapError(err, "find bill")
	}
	return &b, nil
}

func (r *PgxBillingRepository) FindBillsByInvoiceNumber(ctx context.Context, invoiceNumber string) ([]domain.Bill, error) {
	return r.queryBills(ctx, `SELECT `+billColumns+` FROM bills WHERE invoice_number = $1 ORDER BY created_at;`, invoiceNumber)
}

// ListBills orders by due date then invoice number. A non-positive limit returns every match.
func (r *PgxBillingRepository) ListBills(ctx context.Context, filter domain.BillFilter) ([]domain.Bill, error) {
	var conds []string
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, strings.ReplaceAll(cond, "?", "$"+strconv.Itoa(len(args))))
	}
	if filter.ResidentID != nil {
		add("resident_id = ?", *filter.ResidentID)
	}
	if filter.Status != nil {
		add("status = ?", string(*filter.Status))
	}
	if filter.OpenOnly {
		conds = append(conds, "status IN ('PENDING', 'PARTIAL')")
	}
	if filter.DueBefore != nil {
		add("due_date < ?", domain.DateOnly(*filter.DueBefore))
	}

	query := `SELECT ` + billColumns + ` FROM bills`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY due_date, invoice_number"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += " LIMIT $" + strconv.Itoa(len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += " OFFSET $" + strconv.Itoa(len(args))
	}
	return r.queryBills(ctx, query+";", args...)
}

func (r *PgxBillingRepository) queryBills(ctx context.Context, query string, args ...any) ([]domain.Bill, error) {
	rows, err := r.db(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bills: %w", err)
	}
	defer rows.Close()

	bills := []domain.Bill{}
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bill row: %w", err)
		}
		bills = append(bills, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bill rows: %w", err)
	}
	return bills, nil
}

func (r *PgxBillingRepository) SaveBill(ctx context.Context, b domain.Bill) error {
	query := `
		INSERT INTO bills (` + billColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17);
	`
	_, err := r.db(ctx).Exec(ctx, query,
		b.BillID,
		b.ResidentID,
		b.InvoiceNumber,
		b.Description,
		b.Amount,
		b.TotalPaid,
		b.Balance,
		b.PaymentStatus,
		b.Status,
		b.PeriodStart,
		b.PeriodEnd,
		b.DueDate,
		b.JournalEntryID,
		b.CreatedAt,
		b.CreatedBy,
		b.LastUpdatedAt,
		b.LastUpdatedBy,
	)
	return mapError(err, "save bill "+b.InvoiceNumber)
}

// UpdateBill stores payment totals, status and the journal link.
func (r *PgxBillingRepository) UpdateBill(ctx context.Context, b domain.Bill) error {
	query := `
		UPDATE bills
		SET total_paid = $2, balance = $3, payment_status = $4, status = $5, journal_entry_id = $6,
		    last_updated_at = $7, last_updated_by = $8
		WHERE bill_id = $1;
	`
	cmdTag, err := r.db(ctx).Exec(ctx, query,
		b.BillID, b.TotalPaid, b.Balance, b.PaymentStatus, b.Status, b.JournalEntryID, b.LastUpdatedAt, b.LastUpdatedBy)
	if err != nil {
		return mapError(err, "update bill "+b.BillID)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// --- Payment applications ---

func (r *PgxBillingRepository) SavePaymentApplication(ctx context.Context, p domain.PaymentApplication) error {
	query := `
		INSERT INTO payment_applications (` + paymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err := r.db(ctx).Exec(ctx, query,
		p.PaymentApplicationID,
		p.BillID,
		p.AmountApplied,
		p.ApplicationType,
		p.BankStatementEntryID,
		p.PaymentDate,
		p.Reference,
		p.Notes,
		p.AppliedBy,
		p.JournalEntryID,
		p.CreatedAt,
	)
	return mapError(err, "save payment application for bill "+p.BillID)
}

func (r *PgxBillingRepository) ListPaymentsByBill(ctx context.Context, billID string) ([]domain.PaymentApplication, error) {
	query := `SELECT ` + paymentColumns + ` FROM payment_applications WHERE bill_id = $1 ORDER BY created_at;`
	rows, err := r.db(ctx).Query(ctx, query, billID)
	if err != nil {
		return nil, fmt.Errorf("failed to query payments for bill %s: %w", billID, err)
	}
	defer rows.Close()

	payments := []domain.PaymentApplication{}
	for rows.Next() {
		var p domain.PaymentApplication
		err := rows.Scan(
			&p.PaymentApplicationID,
			&p.BillID,
			&p.AmountApplied,
			&p.ApplicationType,
			&p.BankStatementEntryID,
			&p.PaymentDate,
			&p.Reference,
			&p.Notes,
			&p.AppliedBy,
			&p.JournalEntryID,
			&p.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment row: %w", err)
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payment rows: %w", err)
	}
	return payments, nil
}
