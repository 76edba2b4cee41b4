package dto

import (
	"github.com/shopspring/decimal"
)

// BudgetLineRequest allocates an amount to an account.
type BudgetLineRequest struct {
	AccountID       string          `json:"accountID" binding:"required"`
	AllocatedAmount decimal.Decimal `json:"allocatedAmount" binding:"gte=0" swaggertype:"string" example:"50000.00"`
}

// CreateBudgetRequest defines a new draft budget.
type CreateBudgetRequest struct {
	Name      string              `json:"name" binding:"required,max=255"`
	StartDate string              `json:"startDate" binding:"required,datetime=2006-01-02"`
	EndDate   string              `json:"endDate" binding:"required,datetime=2006-01-02"`
	Lines     []BudgetLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// ListBudgetsParams filters budgets by status.
type ListBudgetsParams struct {
	Status string `form:"status" binding:"omitempty,oneof=DRAFT ACTIVE CLOSED"`
}

// ApprovedExpenseRequest hands an approved expense to the ledger.
type ApprovedExpenseRequest struct {
	ExpenseID         string          `json:"expenseID" binding:"required"`
	AccountID         *string         `json:"accountID"`
	Amount            decimal.Decimal `json:"amount" binding:"gt=0" swaggertype:"string" example:"10000.00"`
	ServiceCharge     decimal.Decimal `json:"serviceCharge" binding:"gte=0" swaggertype:"string" example:"0"`
	WithholdingTax    decimal.Decimal `json:"withholdingTax" binding:"gte=0" swaggertype:"string" example:"0"`
	IncurredDate      string          `json:"incurredDate" binding:"required,datetime=2006-01-02"`
	PaidFromAccountID *string         `json:"paidFromAccountID"`
	Description       string          `json:"description" binding:"max=500"`
}
