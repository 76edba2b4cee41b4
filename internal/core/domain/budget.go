package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BudgetStatus is the lifecycle of a budget. Only ACTIVE budgets accept consumption.
type BudgetStatus string

const (
	BudgetDraft  BudgetStatus = "DRAFT"
	BudgetActive BudgetStatus = "ACTIVE"
	BudgetClosed BudgetStatus = "CLOSED"
)

// Budget owns per-account allocation lines.
type Budget struct {
	BudgetID       string          `json:"budgetID"`
	Name           string          `json:"name"`
	StartDate      time.Time       `json:"startDate"`
	EndDate        time.Time       `json:"endDate"`
	Status         BudgetStatus    `json:"status"`
	TotalAllocated decimal.Decimal `json:"totalAllocated"`
	TotalConsumed  decimal.Decimal `json:"totalConsumed"`
	TotalRemaining decimal.Decimal `json:"totalRemaining"`
	Lines          []BudgetLine    `json:"lines,omitempty"`
	AuditFields
}

// Covers reports whether date falls within the budget's inclusive date range.
func (b Budget) Covers(date time.Time) bool {
	d := DateOnly(date)
	return !d.Before(DateOnly(b.StartDate)) && !d.After(DateOnly(b.EndDate))
}

// Overlaps reports whether two budgets share at least one day.
func (b Budget) Overlaps(other Budget) bool {
	return !DateOnly(b.EndDate).Before(DateOnly(other.StartDate)) &&
		!DateOnly(other.EndDate).Before(DateOnly(b.StartDate))
}

// BudgetLine keeps RemainingAmount == AllocatedAmount - ConsumedAmount.
type BudgetLine struct {
	BudgetLineID    string          `json:"budgetLineID"`
	BudgetID        string          `json:"budgetID"`
	AccountID       string          `json:"accountID"`
	AllocatedAmount decimal.Decimal `json:"allocatedAmount"`
	ConsumedAmount  decimal.Decimal `json:"consumedAmount"`
	RemainingAmount decimal.Decimal `json:"remainingAmount"`
}

// Consume records spend against the line.
func (l *BudgetLine) Consume(amount decimal.Decimal) {
	l.ConsumedAmount = l.ConsumedAmount.Add(amount)
	l.RemainingAmount = l.AllocatedAmount.Sub(l.ConsumedAmount)
}

// BudgetLineInput is an allocation in a new budget.
type BudgetLineInput struct {
	AccountID       string
	AllocatedAmount decimal.Decimal
}

// CreateBudgetInput describes a new draft budget.
type CreateBudgetInput struct {
	Name      string
	StartDate time.Time
	EndDate   time.Time
	Lines     []BudgetLineInput
}

// ApprovedExpense is handed over by the external expense approval workflow.
type ApprovedExpense struct {
	ExpenseID         string          `json:"expenseID"`
	AccountID         *string         `json:"accountID,omitempty"`
	Amount            decimal.Decimal `json:"amount"`
	ServiceCharge     decimal.Decimal `json:"serviceCharge"`
	WithholdingTax    decimal.Decimal `json:"withholdingTax"`
	IncurredDate      time.Time       `json:"incurredDate"`
	PaidFromAccountID *string         `json:"paidFromAccountID,omitempty"`
	Description       string          `json:"description"`
}

// Total is the amount charged against the budget.
func (e ApprovedExpense) Total() decimal.Decimal {
	return e.Amount.Add(e.ServiceCharge)
}

// ConsumptionResult reports what budget tracking did for one expense.
type ConsumptionResult struct {
	Tracked      bool            `json:"tracked"`
	BudgetID     *string         `json:"budgetID,omitempty"`
	BudgetLineID *string         `json:"budgetLineID,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
	SkipReason   string          `json:"skipReason,omitempty"`
}

// ExpenseRecordResult is returned by RecordApprovedExpense.
type ExpenseRecordResult struct {
	JournalEntry *JournalEntry     `json:"journalEntry,omitempty"`
	Budget       ConsumptionResult `json:"budget"`
}
