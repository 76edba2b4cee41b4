package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
type RepositoryProvider struct {
	TxManager     TransactionManager
	AccountRepo   AccountRepositoryFacade
	JournalRepo   JournalRepositoryFacade
	SequenceRepo  SequenceRepository
	ResidentRepo  ResidentRepository
	BillRepo      BillRepositoryFacade
	PaymentRepo   PaymentRepository
	StatementRepo BankStatementRepository
	BudgetRepo    BudgetRepository
	ReportingRepo ReportingRepository
}
