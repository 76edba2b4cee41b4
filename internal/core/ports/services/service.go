package services

import (
	"context"
	"time"

	"github.com/SscSPs/estate_ledger/internal/core/domain"
)

// ServiceContainer holds instances of all the application services.
// This is the main entry point for accessing service functionality and
// is used throughout the application, particularly in the handlers.
type ServiceContainer struct {
	Account        AccountSvcFacade
	Journal        JournalSvcFacade
	Billing        BillingSvc
	Payment        PaymentSvc
	Reconciliation ReconciliationSvc
	Budget         BudgetSvc
	Expense        ExpenseSvc
	Reporting      ReportingService
}

// EventPublisher delivers ledger events after commit. Failures are logged, never propagated.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.LedgerEvent)
}

// Lock is a held mutual-exclusion lease.
type Lock interface {
	Release(ctx context.Context) error
}

// BatchLocker provides cross-process mutual exclusion for batch runs.
type BatchLocker interface {
	// Obtain returns ErrConflict when the key is already held.
	Obtain(ctx context.Context, key string, ttl time.Duration) (Lock, error)
}
