package repositories

import (
	"context"

	"github.com/SscSPs/estate_ledger/internal/core/domain"
)

// ResidentRepository is the billing view of residents. Resident CRUD lives elsewhere.
type ResidentRepository interface {
	FindResidentByID(ctx context.Context, residentID string) (*domain.Resident, error)
	// FindResidentByIDForUpdate locks the resident row within the context's transaction.
	FindResidentByIDForUpdate(ctx context.Context, residentID string) (*domain.Resident, error)
	// ListBillableResidents returns active residents with a positive service charge and a start date.
	ListBillableResidents(ctx context.Context) ([]domain.Resident, error)
	// UpdateResidentBilling stores CurrentPeriodEnd and Balance.
	UpdateResidentBilling(ctx context.Context, resident domain.Resident) error
}

// BillReader defines read operations for bills
type BillReader interface {
	FindBillByID(ctx context.Context, billID string) (*domain.Bill, error)
	// FindBillByIDForUpdate locks the bill row within the context's transaction.
	FindBillByIDForUpdate(ctx context.Context, billID string) (*domain.Bill, error)
	// FindBillsByInvoiceNumber returns bills whose invoice number equals invoiceNumber.
	FindBillsByInvoiceNumber(ctx context.Context, invoiceNumber string) ([]domain.Bill, error)
	ListBills(ctx context.Context, filter domain.BillFilter) ([]domain.Bill, error)
}

// BillWriter defines write operations for bills
type BillWriter interface {
	SaveBill(ctx context.Context, bill domain.Bill) error
	// UpdateBill stores payment totals, status and the journal link.
	UpdateBill(ctx context.Context, bill domain.Bill) error
}

// BillRepositoryFacade combines all bill-related repository interfaces
type BillRepositoryFacade interface {
	BillReader
	BillWriter
}

// PaymentRepository stores immutable payment applications.
type PaymentRepository interface {
	SavePaymentApplication(ctx context.Context, payment domain.PaymentApplication) error
	ListPaymentsByBill(ctx context.Context, billID string) ([]domain.PaymentApplication, error)
}
