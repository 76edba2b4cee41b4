package mapping

import (
	"time"

	"github.com/SscSPs/estate_ledger/internal/core/domain"
	"github.com/SscSPs/estate_ledger/internal/dto"
)

// ToBillFilter converts list query parameters. The second result is the overdue reference date, if any.
func ToBillFilter(p dto.ListBillsParams) (domain.BillFilter, *time.Time, error) {
	overdue, err := ParseOptionalDate("overdueAsOf", p.OverdueAsOf)
	if err != nil {
		return domain.BillFilter{}, nil, err
	}
	f := domain.BillFilter{Limit: p.Limit, Offset: p.Offset}
	if p.ResidentID != "" {
		id := p.ResidentID
		f.ResidentID = &id
	}
	if p.Status != "" {
		st := domain.BillStatus(p.Status)
		f.Status = &st
	}
	return f, overdue, nil
}

// ToApplyPaymentInput converts a manual payment request for billID.
func ToApplyPaymentInput(billID string, req dto.ApplyPaymentRequest) (domain.ApplyPaymentInput, error) {
	paymentDate, err := ParseDate("paymentDate", req.PaymentDate)
	if err != nil {
		return domain.ApplyPaymentInput{}, err
	}
	return domain.ApplyPaymentInput{
		BillID:        billID,
		Amount:        req.Amount,
		Source:        domain.ApplicationManual,
		PaymentDate:   paymentDate,
		CashAccountID: req.CashAccountID,
		Reference:     req.Reference,
		Notes:         req.Notes,
	}, nil
}
