package services

import (
	portsrepo "github.com/SscSPs/estate_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/estate_ledger/internal/core/ports/services"
	"github.com/SscSPs/estate_ledger/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies.
// All balance-changing services share one JournalEngine.
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, publisher portssvc.EventPublisher, locker portssvc.BatchLocker, options ...ServiceOption) *portssvc.ServiceContainer {
	if publisher != nil {
		options = append(options, WithPublisher(publisher))
	}
	base := newBase(options)
	engine := NewJournalEngine(repos.AccountRepo, repos.JournalRepo, repos.SequenceRepo, base.Now)

	container := &portssvc.ServiceContainer{}

	// Account provisioning is needed by every posting service, so it goes first
	container.Account = NewAccountService(repos.TxManager, repos.AccountRepo, options...)
	container.Journal = NewJournalService(repos.TxManager, engine, repos.JournalRepo, repos.ReportingRepo, options...)

	container.Payment = NewPaymentService(
		PaymentConfig{
			DefaultCashAccount: cfg.DefaultCashAccount,
			OverdueGraceDays:   cfg.OverdueGraceDays,
		},
		repos.TxManager,
		engine,
		container.Account,
		repos.AccountRepo,
		repos.BillRepo,
		repos.ResidentRepo,
		repos.PaymentRepo,
		options...,
	)
	container.Billing = NewBillingService(
		BillingConfig{
			DueDays:              cfg.BillingDueDays,
			FiscalYearStartMonth: cfg.FiscalYearStartMonth,
			LockTTL:              cfg.BillingLockTTL,
			OverdueGraceDays:     cfg.OverdueGraceDays,
		},
		repos.TxManager,
		engine,
		container.Account,
		repos.ResidentRepo,
		repos.BillRepo,
		repos.SequenceRepo,
		locker,
		options...,
	)
	container.Reconciliation = NewReconciliationService(repos.TxManager, container.Payment, container.Account, repos.BillRepo, repos.StatementRepo, options...)
	container.Budget = NewBudgetService(repos.TxManager, repos.BudgetRepo, repos.AccountRepo, options...)
	container.Expense = NewExpenseService(repos.TxManager, engine, repos.JournalRepo, container.Account, container.Payment, container.Budget, options...)
	container.Reporting = NewReportingService(repos.ReportingRepo, options...)

	return container
}
