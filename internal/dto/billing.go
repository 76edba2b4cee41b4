package dto

import (
	"time"

	"github.com/SscSPs/estate_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ListBillsParams defines query parameters for listing bills.
type ListBillsParams struct {
	ResidentID  string `form:"residentID"`
	Status      string `form:"status" binding:"omitempty,oneof=PENDING PARTIAL PAID VOID CANCELLED"`
	OverdueAsOf string `form:"overdueAsOf" binding:"omitempty,datetime=2006-01-02"`
	Limit       int    `form:"limit,default=50" binding:"omitempty,min=1,max=500"`
	Offset      int    `form:"offset,default=0" binding:"omitempty,min=0"`
}

// BillResponse defines the data returned for a bill.
type BillResponse struct {
	BillID         string          `json:"billID"`
	ResidentID     string          `json:"residentID"`
	InvoiceNumber  string          `json:"invoiceNumber"`
	Description    string          `json:"description"`
	Amount         decimal.Decimal `json:"amount"`
	TotalPaid      decimal.Decimal `json:"totalPaid"`
	Balance        decimal.Decimal `json:"balance"`
	PaymentStatus  string          `json:"paymentStatus"`
	Status         string          `json:"status"`
	PeriodStart    string          `json:"periodStart"`
	PeriodEnd      string          `json:"periodEnd"`
	DueDate        string          `json:"dueDate"`
	JournalEntryID *string         `json:"journalEntryID,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	CreatedBy      string          `json:"createdBy"`
}

// GenerateBillResponse is returned by the single-resident billing endpoint. Bill is nil when nothing was due.
type GenerateBillResponse struct {
	Generated bool          `json:"generated"`
	Bill      *BillResponse `json:"bill,omitempty"`
}

// BatchBillingResponse reports a batch billing run.
type BatchBillingResponse struct {
	Success int                   `json:"success"`
	Failed  int                   `json:"failed"`
	Skipped int                   `json:"skipped"`
	Bills   []BillResponse        `json:"bills"`
	Errors  []domain.BillingError `json:"errors"`
}

// ToBillResponse converts a domain.Bill to BillResponse DTO.
func ToBillResponse(b *domain.Bill) BillResponse {
	return BillResponse{
		BillID:         b.BillID,
		ResidentID:     b.ResidentID,
		InvoiceNumber:  b.InvoiceNumber,
		Description:    b.Description,
		Amount:         b.Amount,
		TotalPaid:      b.TotalPaid,
		Balance:        b.Balance,
		PaymentStatus:  string(b.PaymentStatus),
		Status:         string(b.Status),
		PeriodStart:    b.PeriodStart.Format(DateLayout),
		PeriodEnd:      b.PeriodEnd.Format(DateLayout),
		DueDate:        b.DueDate.Format(DateLayout),
		JournalEntryID: b.JournalEntryID,
		CreatedAt:      b.CreatedAt,
		CreatedBy:      b.CreatedBy,
	}
}

// ToBillResponses converts a slice of bills.
func ToBillResponses(bills []domain.Bill) []BillResponse {
	res := make([]BillResponse, len(bills))
	for i := range bills {
		res[i] = ToBillResponse(&bills[i])
	}
	return res
}

// ToBatchBillingResponse converts a batch result.
func ToBatchBillingResponse(r *domain.BatchBillingResult) BatchBillingResponse {
	errs := r.Errors
	if errs == nil {
		errs = []domain.BillingError{}
	}
	return BatchBillingResponse{
		Success: r.Success,
		Failed:  r.Failed,
		Skipped: r.Skipped,
		Bills:   ToBillResponses(r.Bills),
		Errors:  errs,
	}
}
