package mapping

import (
	"github.com/SscSPs/estate_ledger/internal/core/domain"
	"github.com/SscSPs/estate_ledger/internal/dto"
)

// ToCreateBudgetInput converts a budget request.
func ToCreateBudgetInput(req dto.CreateBudgetRequest) (domain.CreateBudgetInput, error) {
	start, err := ParseDate("startDate", req.StartDate)
	if err != nil {
		return domain.CreateBudgetInput{}, err
	}
	end, err := ParseDate("endDate", req.EndDate)
	if err != nil {
		return domain.CreateBudgetInput{}, err
	}
	lines := make([]domain.BudgetLineInput, len(req.Lines))
	for i, l := range req.Lines {
		lines[i] = domain.BudgetLineInput{AccountID: l.AccountID, AllocatedAmount: l.AllocatedAmount}
	}
	return domain.CreateBudgetInput{Name: req.Name, StartDate: start, EndDate: end, Lines: lines}, nil
}

// ToApprovedExpense converts an approved expense hand-off.
func ToApprovedExpense(req dto.ApprovedExpenseRequest) (domain.ApprovedExpense, error) {
	incurred, err := ParseDate("incurredDate", req.IncurredDate)
	if err != nil {
		return domain.ApprovedExpense{}, err
	}
	return domain.ApprovedExpense{
		ExpenseID:         req.ExpenseID,
		AccountID:         req.AccountID,
		Amount:            req.Amount,
		ServiceCharge:     req.ServiceCharge,
		WithholdingTax:    req.WithholdingTax,
		IncurredDate:      incurred,
		PaidFromAccountID: req.PaidFromAccountID,
		Description:       req.Description,
	}, nil
}
