package dto

import (
	"time"

	"github.com/SscSPs/estate_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ApplyPaymentRequest records a manual payment against a bill.
type ApplyPaymentRequest struct {
	Amount        decimal.Decimal `json:"amount" binding:"required,gt=0" swaggertype:"string" example:"15000.00"`
	PaymentDate   string          `json:"paymentDate" binding:"required,datetime=2006-01-02" example:"2024-03-05"`
	CashAccountID *string         `json:"cashAccountID"`
	Reference     string          `json:"reference" binding:"max=100"`
	Notes         string          `json:"notes" binding:"max=500"`
}

// PaymentResponse defines the data returned for a payment application.
type PaymentResponse struct {
	PaymentApplicationID string          `json:"paymentApplicationID"`
	BillID               string          `json:"billID"`
	AmountApplied        decimal.Decimal `json:"amountApplied"`
	ApplicationType      string          `json:"applicationType"`
	BankStatementEntryID *string         `json:"bankStatementEntryID,omitempty"`
	PaymentDate          string          `json:"paymentDate"`
	Reference            string          `json:"reference"`
	Notes                string          `json:"notes"`
	AppliedBy            string          `json:"appliedBy"`
	JournalEntryID       *string         `json:"journalEntryID,omitempty"`
	CreatedAt            time.Time       `json:"createdAt"`
}

// AgingParams selects the receivables aging date.
type AgingParams struct {
	AsOf string `form:"asOf" binding:"omitempty,datetime=2006-01-02"`
}

// ToPaymentResponse converts a domain.PaymentApplication to PaymentResponse DTO.
func ToPaymentResponse(p *domain.PaymentApplication) PaymentResponse {
	return PaymentResponse{
		PaymentApplicationID: p.PaymentApplicationID,
		BillID:               p.BillID,
		AmountApplied:        p.AmountApplied,
		ApplicationType:      string(p.ApplicationType),
		BankStatementEntryID: p.BankStatementEntryID,
		PaymentDate:          p.PaymentDate.Format(DateLayout),
		Reference:            p.Reference,
		Notes:                p.Notes,
		AppliedBy:            p.AppliedBy,
		JournalEntryID:       p.JournalEntryID,
		CreatedAt:            p.CreatedAt,
	}
}

// ToPaymentResponses converts a slice of payment applications.
func ToPaymentResponses(payments []domain.PaymentApplication) []PaymentResponse {
	res := make([]PaymentResponse, len(payments))
	for i := range payments {
		res[i] = ToPaymentResponse(&payments[i])
	}
	return res
}
