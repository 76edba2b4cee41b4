// Package memory is an in-process implementation of every repository port. It backs the
// "memory" storage driver and the service tests.
package memory

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"github.com/SscSPs/estate_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/estate_ledger/internal/core/ports/repositories"
)

type txKey struct{}

// Store holds all ledger state. A transaction holds the store-wide lock until it finishes, so
// transactions are serializable and FOR UPDATE reads need no extra locking.
type Store struct {
	mu sync.Mutex

	accounts         map[string]domain.Account
	journalEntries   map[string]domain.JournalEntry
	journalLines     map[string][]domain.JournalEntryLine
	sequences        map[string]int64
	residents        map[string]domain.Resident
	bills            map[string]domain.Bill
	payments         map[string]domain.PaymentApplication
	statements       map[string]domain.BankStatement
	statementEntries map[string]domain.BankStatementEntry
	budgets          map[string]domain.Budget
	budgetLines      map[string]domain.BudgetLine
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		accounts:         make(map[string]domain.Account),
		journalEntries:   make(map[string]domain.JournalEntry),
		journalLines:     make(map[string][]domain.JournalEntryLine),
		sequences:        make(map[string]int64),
		residents:        make(map[string]domain.Resident),
		bills:            make(map[string]domain.Bill),
		payments:         make(map[string]domain.PaymentApplication),
		statements:       make(map[string]domain.BankStatement),
		statementEntries: make(map[string]domain.BankStatementEntry),
		budgets:          make(map[string]domain.Budget),
		budgetLines:      make(map[string]domain.BudgetLine),
	}
}

// Provider exposes the store through the repository ports.
func (s *Store) Provider() portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		TxManager:     s,
		AccountRepo:   s,
		JournalRepo:   s,
		SequenceRepo:  s,
		ResidentRepo:  s,
		BillRepo:      s,
		PaymentRepo:   s,
		StatementRepo: s,
		BudgetRepo:    s,
		ReportingRepo: s,
	}
}

var _ portsrepo.TransactionManager = (*Store)(nil)

type snapshot struct {
	accounts         map[string]domain.Account
	journalEntries   map[string]domain.JournalEntry
	journalLines     map[string][]domain.JournalEntryLine
	sequences        map[string]int64
	residents        map[string]domain.Resident
	bills            map[string]domain.Bill
	payments         map[string]domain.PaymentApplication
	statements       map[string]domain.BankStatement
	statementEntries map[string]domain.BankStatementEntry
	budgets          map[string]domain.Budget
	budgetLines      map[string]domain.BudgetLine
}

// Stored values are replaced, never mutated in place, so shallow map copies are enough.
func (s *Store) snapshot() snapshot {
	return snapshot{
		accounts:         maps.Clone(s.accounts),
		journalEntries:   maps.Clone(s.journalEntries),
		journalLines:     maps.Clone(s.journalLines),
		sequences:        maps.Clone(s.sequences),
		residents:        maps.Clone(s.residents),
		bills:            maps.Clone(s.bills),
		payments:         maps.Clone(s.payments),
		statements:       maps.Clone(s.statements),
		statementEntries: maps.Clone(s.statementEntries),
		budgets:          maps.Clone(s.budgets),
		budgetLines:      maps.Clone(s.budgetLines),
	}
}

func (s *Store) restore(snap snapshot) {
	s.accounts = snap.accounts
	s.journalEntries = snap.journalEntries
	s.journalLines = snap.journalLines
	s.sequences = snap.sequences
	s.residents = snap.residents
	s.bills = snap.bills
	s.payments = snap.payments
	s.statements = snap.statements
	s.statementEntries = snap.statementEntries
	s.budgets = snap.budgets
	s.budgetLines = snap.budgetLines
}

// WithinTx runs fn holding the store lock. Any error or panic restores the state seen at the start.
// Nested calls join the outer transaction.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if inTx(ctx) {
		return fn(ctx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	defer func() {
		if p := recover(); p != nil {
			s.restore(snap)
			err = fmt.Errorf("transaction panicked: %v", p)
		}
	}()

	if err = fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

func inTx(ctx context.Context) bool {
	v, _ := ctx.Value(txKey{}).(bool)
	return v
}

// lock guards a single call made outside a transaction.
func (s *Store) lock(ctx context.Context) func() {
	if inTx(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// SaveResident seeds or replaces a resident. Residents are owned by the resident management workflow.
func (s *Store) SaveResident(ctx context.Context, r domain.Resident) error {
	defer s.lock(ctx)()
	s.residents[r.ResidentID] = r
	return nil
}
