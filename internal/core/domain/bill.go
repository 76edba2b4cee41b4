package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// BillStatus is the lifecycle state of a bill.
type BillStatus string

const (
	BillPending   BillStatus = "PENDING"
	BillPartial   BillStatus = "PARTIAL"
	BillPaid      BillStatus = "PAID"
	BillVoid      BillStatus = "VOID"
	BillCancelled BillStatus = "CANCELLED"
)

// Valid reports whether s is a known bill status.
func (s BillStatus) Valid() bool {
	switch s {
	case BillPending, BillPartial, BillPaid, BillVoid, BillCancelled:
		return true
	}
	return false
}

// PaymentStatus summarizes how much of a bill has been settled.
type PaymentStatus string

const (
	Unpaid         PaymentStatus = "UNPAID"
	PartialPayment PaymentStatus = "PARTIAL_PAYMENT"
	FullPayment    PaymentStatus = "FULL_PAYMENT"
)

// Bill is an annual service-charge invoice for a resident.
type Bill struct {
	BillID         string          `json:"billID"`
	ResidentID     string          `json:"residentID"`
	InvoiceNumber  string          `json:"invoiceNumber"`
	Description    string          `json:"description"`
	Amount         decimal.Decimal `json:"amount"`
	TotalPaid      decimal.Decimal `json:"totalPaid"`
	Balance        decimal.Decimal `json:"balance"`
	PaymentStatus  PaymentStatus   `json:"paymentStatus"`
	Status         BillStatus      `json:"status"`
	PeriodStart    time.Time       `json:"periodStart"`
	PeriodEnd      time.Time       `json:"periodEnd"`
	DueDate        time.Time       `json:"dueDate"`
	JournalEntryID *string         `json:"journalEntryID,omitempty"`
	AuditFields
}

// IsOpen reports whether the bill can still receive payments.
func (b Bill) IsOpen() bool {
	return b.Status == BillPending || b.Status == BillPartial
}

// RecordPayment applies amount to the bill's running totals and flips its status.
// The caller must already have checked amount against the balance.
func (b *Bill) RecordPayment(amount decimal.Decimal) {
	b.TotalPaid = b.TotalPaid.Add(amount)
	b.Balance = b.Amount.Sub(b.TotalPaid)
	if b.Balance.IsZero() {
		b.PaymentStatus = FullPayment
		b.Status = BillPaid
		return
	}
	b.PaymentStatus = PartialPayment
	b.Status = BillPartial
}

// OverdueCutoff is the latest due date that is not yet overdue as of asOf. A bill whose due date
// is before the cutoff is overdue.
func OverdueCutoff(asOf time.Time, graceDays int) time.Time {
	return DateOnly(asOf).AddDate(0, 0, -graceDays)
}

// IsOverdue is the single overdue policy: an open bill is overdue once asOf is strictly after
// dueDate plus graceDays.
func (b Bill) IsOverdue(asOf time.Time, graceDays int) bool {
	if !b.IsOpen() {
		return false
	}
	return DateOnly(b.DueDate).Before(OverdueCutoff(asOf, graceDays))
}

// DaysPastDue returns how many days past the grace deadline the bill is, or 0.
func (b Bill) DaysPastDue(asOf time.Time, graceDays int) int {
	if !b.IsOverdue(asOf, graceDays) {
		return 0
	}
	return int(OverdueCutoff(asOf, graceDays).Sub(DateOnly(b.DueDate)).Hours() / 24)
}

// FiscalYear returns the fiscal year label for date, where the fiscal year starts in startMonth and is
// named by the calendar year in which it ends.
func FiscalYear(date time.Time, startMonth time.Month) int {
	if startMonth <= time.January || startMonth > time.December {
		return date.Year()
	}
	if date.Month() >= startMonth {
		return date.Year() + 1
	}
	return date.Year()
}

// InvoiceSequenceKey is the sequence row key for invoice numbers in a fiscal year.
func InvoiceSequenceKey(fiscalYear int) string {
	return fmt.Sprintf("INV-%d", fiscalYear)
}

// InvoiceNumber formats a per-fiscal-year invoice sequence value.
func InvoiceNumber(fiscalYear int, seq int64) string {
	return fmt.Sprintf("INV-%d-%06d", fiscalYear, seq)
}

// BillFilter narrows ListBills. DueBefore together with OpenOnly selects overdue bills; see
// OverdueCutoff.
type BillFilter struct {
	ResidentID *string
	Status     *BillStatus
	OpenOnly   bool
	DueBefore  *time.Time
	Limit      int
	Offset     int
}

// BillingError records why one resident failed inside a batch run.
type BillingError struct {
	ResidentID string `json:"residentID"`
	Reason     string `json:"reason"`
}

// BatchBillingResult is always returned for a batch run, never raised as an error for partial failures.
type BatchBillingResult struct {
	Success int            `json:"success"`
	Failed  int            `json:"failed"`
	Skipped int            `json:"skipped"`
	Bills   []Bill         `json:"bills"`
	Errors  []BillingError `json:"errors"`
}

// AgingBucket groups open receivables by days past due.
type AgingBucket struct {
	Label     string          `json:"label"`
	BillCount int             `json:"billCount"`
	Amount    decimal.Decimal `json:"amount"`
}

// ReceivablesAging is the AR aging report.
type ReceivablesAging struct {
	AsOf      time.Time       `json:"asOf"`
	GraceDays int             `json:"graceDays"`
	Buckets   []AgingBucket   `json:"buckets"`
	Total     decimal.Decimal `json:"total"`
}
