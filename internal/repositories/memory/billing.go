package memory

import (
	"context"
	"sort"

	"github.com/SscSPs/estate_ledger/internal/apperrors"
	"github.com/SscSPs/estate_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/estate_ledger/internal/core/ports/repositories"
)

var (
	_ portsrepo.ResidentRepository   = (*Store)(nil)
	_ portsrepo.BillRepositoryFacade = (*Store)(nil)
	_ portsrepo.PaymentRepository    = (*Store)(nil)
)

func (s *Store) FindResidentByID(ctx context.Context, residentID string) (*domain.Resident, error) {
	defer s.lock(ctx)()
	r, ok := s.residents[residentID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &r, nil
}

func (s *Store) FindResidentByIDForUpdate(ctx context.Context, residentID string) (*domain.Resident, error) {
	return s.FindResidentByID(ctx, residentID)
}

func (s *Store) ListBillableResidents(ctx context.Context) ([]domain.Resident, error) {
	defer s.lock(ctx)()
	out := []domain.Resident{}
	for _, r := range s.residents {
		if r.IsBillable() {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ResidentID < out[j].ResidentID })
	return out, nil
}

// UpdateResidentBilling writes the billing-owned fields only.
func (s *Store) UpdateResidentBilling(ctx context.Context, resident domain.Resident) error {
	defer s.lock(ctx)()
	existing, ok := s.residents[resident.ResidentID]
	if !ok {
		return apperrors.ErrNotFound
	}
	existing.CurrentPeriodEnd = resident.CurrentPeriodEnd
	existing.Balance = resident.Balance
	existing.AuditFields.Touch(resident.LastUpdatedBy, resident.LastUpdatedAt)
	s.residents[resident.ResidentID] = existing
	return nil
}

func (s *Store) FindBillByID(ctx context.Context, billID string) (*domain.Bill, error) {
	defer s.lock(ctx)()
	b, ok := s.bills[billID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &b, nil
}

func (s *Store) FindBillByIDForUpdate(ctx context.Context, billID string) (*domain.Bill, error) {
	return s.FindBillByID(ctx, billID)
}

func (s *Store) FindBillsByInvoiceNumber(ctx context.Context, invoiceNumber string) ([]domain.Bill, error) {
	defer s.lock(ctx)()
	out := []domain.Bill{}
	for _, b := range s.bills {
		if b.InvoiceNumber == invoiceNumber {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// ListBills orders by due date, then invoice number. A non-positive limit returns every match.
func (s *Store) ListBills(ctx context.Context, filter domain.BillFilter) ([]domain.Bill, error) {
	defer s.lock(ctx)()
	out := []domain.Bill{}
	for _, b := range s.bills {
		if filter.ResidentID != nil && b.ResidentID != *filter.ResidentID {
			continue
		}
		if filter.Status != nil && b.Status != *filter.Status {
			continue
		}
		if filter.OpenOnly && !b.IsOpen() {
			continue
		}
		if filter.DueBefore != nil && !domain.DateOnly(b.DueDate).Before(*filter.DueBefore) {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].DueDate.Equal(out[j].DueDate) {
			return out[i].DueDate.Before(out[j].DueDate)
		}
		return out[i].InvoiceNumber < out[j].InvoiceNumber
	})
	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return []domain.Bill{}, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (s *Store) SaveBill(ctx context.Context, bill domain.Bill) error {
	defer s.lock(ctx)()
	if _, ok := s.bills[bill.BillID]; ok {
		return apperrors.ErrDuplicate
	}
	for _, b := range s.bills {
		if b.InvoiceNumber == bill.InvoiceNumber {
			return apperrors.ErrDuplicate
		}
	}
	s.bills[bill.BillID] = bill
	return nil
}

func (s *Store) UpdateBill(ctx context.Context, bill domain.Bill) error {
	defer s.lock(ctx)()
	if _, ok := s.bills[bill.BillID]; !ok {
		return apperrors.ErrNotFound
	}
	s.bills[bill.BillID] = bill
	return nil
}

func (s *Store) SavePaymentApplication(ctx context.Context, payment domain.PaymentApplication) error {
	defer s.lock(ctx)()
	if _, ok := s.payments[payment.PaymentApplicationID]; ok {
		return apperrors.ErrDuplicate
	}
	s.payments[payment.PaymentApplicationID] = payment
	return nil
}

func (s *Store) ListPaymentsByBill(ctx context.Context, billID string) ([]domain.PaymentApplication, error) {
	defer s.lock(ctx)()
	out := []domain.PaymentApplication{}
	for _, p := range s.payments {
		if p.BillID == billID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
