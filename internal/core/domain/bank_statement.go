package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// StatementStatus is the processing state of an uploaded statement.
type StatementStatus string

const (
	StatementProcessing StatementStatus = "PROCESSING"
	StatementCompleted  StatementStatus = "COMPLETED"
)

// EntryStatus is the reconciliation state of one statement entry.
type EntryStatus string

const (
	EntryUnmatched        EntryStatus = "UNMATCHED"
	EntryPartiallyMatched EntryStatus = "PARTIALLY_MATCHED"
	EntryReconciled       EntryStatus = "RECONCILED"
)

// BankStatement owns an ordered set of entries.
type BankStatement struct {
	StatementID   string                 `json:"statementID"`
	BankName      string                 `json:"bankName"`
	AccountNumber string                 `json:"accountNumber"`
	StatementDate time.Time              `json:"statementDate"`
	Status        StatementStatus        `json:"status"`
	CashAccountID string                 `json:"cashAccountID"`
	Summary       *ReconciliationSummary `json:"summary,omitempty"`
	Entries       []BankStatementEntry   `json:"entries,omitempty"`
	AuditFields
}

// BankStatementEntry keeps AppliedAmount + RemainingAmount == Amount at all times.
type BankStatementEntry struct {
	EntryID         string          `json:"entryID"`
	StatementID     string          `json:"statementID"`
	Sequence        int             `json:"sequence"`
	TransactionDate time.Time       `json:"transactionDate"`
	Description     string          `json:"description"`
	ReferenceNumber string          `json:"referenceNumber"`
	Amount          decimal.Decimal `json:"amount"`
	AppliedAmount   decimal.Decimal `json:"appliedAmount"`
	RemainingAmount decimal.Decimal `json:"remainingAmount"`
	Status          EntryStatus     `json:"status"`
	MatchedBillID   *string         `json:"matchedBillID,omitempty"`
	Error           string          `json:"error,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// NewStatementEntry builds an unmatched entry with its full amount remaining.
func NewStatementEntry(id, statementID string, seq int, raw RawStatementEntry, now time.Time) BankStatementEntry {
	return BankStatementEntry{
		EntryID:         id,
		StatementID:     statementID,
		Sequence:        seq,
		TransactionDate: raw.Date,
		Description:     raw.Description,
		ReferenceNumber: raw.Reference,
		Amount:          raw.Amount,
		AppliedAmount:   decimal.Zero,
		RemainingAmount: raw.Amount,
		Status:          EntryUnmatched,
		CreatedAt:       now,
	}
}

// Apply moves amount from remaining to applied and derives the status.
func (e *BankStatementEntry) Apply(amount decimal.Decimal) {
	e.AppliedAmount = e.AppliedAmount.Add(amount)
	e.RemainingAmount = e.Amount.Sub(e.AppliedAmount)
	switch {
	case e.RemainingAmount.IsZero():
		e.Status = EntryReconciled
	case e.AppliedAmount.IsPositive():
		e.Status = EntryPartiallyMatched
	default:
		e.Status = EntryUnmatched
	}
}

// StatementMeta describes the uploaded statement.
type StatementMeta struct {
	BankName      string    `json:"bankName"`
	AccountNumber string    `json:"accountNumber"`
	StatementDate time.Time `json:"statementDate"`
}

// RawStatementEntry is one parsed line of a bank statement.
type RawStatementEntry struct {
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Reference   string          `json:"reference"`
	Amount      decimal.Decimal `json:"amount"`
}

// Residual is a partially matched entry left for manual follow-up.
type Residual struct {
	EntryID         string          `json:"entryID"`
	ReferenceNumber string          `json:"referenceNumber"`
	BillID          string          `json:"billID"`
	InvoiceNumber   string          `json:"invoiceNumber"`
	RemainingAmount decimal.Decimal `json:"remainingAmount"`
}

// ReconciliationSummary is the audit record of one reconciliation run.
type ReconciliationSummary struct {
	TotalEntries     int             `json:"totalEntries"`
	Matched          int             `json:"matched"`
	PartiallyMatched int             `json:"partiallyMatched"`
	Unmatched        int             `json:"unmatched"`
	Failed           int             `json:"failed"` // subset of Unmatched whose unit of work errored
	TotalReconciled  decimal.Decimal `json:"totalReconciled"`
	Residuals        []Residual      `json:"residuals"`
}

// ReconciliationResult is returned by ReconcileStatement.
type ReconciliationResult struct {
	Statement BankStatement         `json:"statement"`
	Summary   ReconciliationSummary `json:"summary"`
}
