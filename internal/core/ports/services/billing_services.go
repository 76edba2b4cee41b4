package services

import (
	"context"
	"time"

	"github.com/SscSPs/estate_ledger/internal/core/domain"
)

// BillingSvc generates and voids service-charge bills.
type BillingSvc interface {
	// GenerateBillForResident returns nil without error when no bill is due.
	GenerateBillForResident(ctx context.Context, residentID string, actor domain.Actor) (*domain.Bill, error)

	// GenerateBillsForAllEligible bills every eligible resident, isolating per-resident failures.
	// Only configuration errors and lock contention are returned as errors.
	GenerateBillsForAllEligible(ctx context.Context, actor domain.Actor) (*domain.BatchBillingResult, error)

	// VoidBill cancels an unpaid bill and voids its originating journal entry.
	VoidBill(ctx context.Context, billID string, actor domain.Actor) (*domain.Bill, error)

	GetBill(ctx context.Context, billID string) (*domain.Bill, error)

	// ListBills lists bills. When overdueAsOf is set only bills overdue at that date are returned.
	ListBills(ctx context.Context, filter domain.BillFilter, overdueAsOf *time.Time) ([]domain.Bill, error)
}

// PaymentSvc applies payments against bills.
type PaymentSvc interface {
	// ApplyPaymentToBill records a payment and posts the revenue-recognition entry.
	ApplyPaymentToBill(ctx context.Context, in domain.ApplyPaymentInput, actor domain.Actor) (*domain.PaymentApplication, error)

	// ApplyPaymentInTx is ApplyPaymentToBill for callers already inside a unit of work. The bill
	// row is locked and read fresh.
	ApplyPaymentInTx(ctx context.Context, in domain.ApplyPaymentInput, cashAccountID string, actor domain.Actor) (*domain.PaymentApplication, *domain.Bill, error)

	// ResolveCashAccount picks the ledger account receiving cash.
	ResolveCashAccount(ctx context.Context, explicitID *string, bankAccountNumber *string) (*domain.Account, error)

	ListPaymentsForBill(ctx context.Context, billID string) ([]domain.PaymentApplication, error)

	GetReceivablesAging(ctx context.Context, asOf time.Time) (*domain.ReceivablesAging, error)
}
