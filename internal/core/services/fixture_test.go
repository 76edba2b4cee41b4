package services_test

import (
	"context"
	"time"

	"github.com/SscSPs/estate_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/estate_ledger/internal/core/ports/services"
	"github.com/SscSPs/estate_ledger/internal/core/services"
	"github.com/SscSPs/estate_ledger/internal/platform/config"
	"github.com/SscSPs/estate_ledger/internal/platform/events"
	"github.com/SscSPs/estate_ledger/internal/platform/lock"
	"github.com/SscSPs/estate_ledger/internal/repositories/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

const testBankAccountNumber = "0123456789"

var (
	accountant = domain.Actor{UserID: "user-accountant", Role: domain.RoleAccountant}
	admin      = domain.Actor{UserID: "user-admin", Role: domain.RoleAdmin}
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func date(y int, m time.Month, day int) time.Time {
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

// ledgerSuite wires every service over the in-memory store with a controllable clock.
type ledgerSuite struct {
	suite.Suite
	ctx      context.Context
	now      time.Time
	cfg      *config.Config
	store    *memory.Store
	locker   *lock.LocalLocker
	recorder *events.Recorder
	svc      *portssvc.ServiceContainer
	accounts map[string]domain.Account // by number
}

func (s *ledgerSuite) SetupTest() {
	s.ctx = context.Background()
	s.now = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	s.cfg = &config.Config{
		BillingDueDays:       7,
		BillingLockTTL:       time.Minute,
		OverdueGraceDays:     0,
		FiscalYearStartMonth: time.January,
		DefaultCashAccount:   "1000",
	}
	s.store = memory.NewStore()
	s.locker = lock.NewLocalLocker()
	s.recorder = &events.Recorder{}
	s.build()
	s.seedChart()
}

// build (re)creates the container from the current store, config and clock.
func (s *ledgerSuite) build() {
	s.svc = services.NewServiceContainer(s.cfg, s.store.Provider(), s.recorder, s.locker,
		services.WithClock(func() time.Time { return s.now }))
}

func (s *ledgerSuite) seedChart() {
	bank := testBankAccountNumber
	inputs := []domain.CreateAccountInput{
		{Number: "1000", Name: "Operating Bank", AccountType: domain.Asset, IsBankAccount: true, BankAccountNumber: &bank},
		{Number: "1010", Name: "Petty Cash", AccountType: domain.Asset},
		{Number: "1100", Name: "Accounts Receivable", AccountType: domain.Asset},
		{Number: "2200", Name: "Deferred Revenue", AccountType: domain.Liability},
		{Number: "2300", Name: "Withholding Tax Payable", AccountType: domain.Liability},
		{Number: "3000", Name: "Accumulated Fund", AccountType: domain.Equity},
		{Number: "4000", Name: "Member Dues", AccountType: domain.Revenue},
		{Number: "5000", Name: "Maintenance", AccountType: domain.Expense},
		{Number: "5100", Name: "Security", AccountType: domain.Expense},
	}
	s.accounts = make(map[string]domain.Account, len(inputs))
	for _, in := range inputs {
		a, err := s.svc.Account.CreateAccount(s.ctx, in, admin)
		s.Require().NoError(err)
		s.accounts[in.Number] = *a
	}
}

func (s *ledgerSuite) accountID(number string) string {
	a, ok := s.accounts[number]
	s.Require().True(ok, "unknown account %s", number)
	return a.AccountID
}

func (s *ledgerSuite) balance(number string) decimal.Decimal {
	a, err := s.svc.Account.GetAccountByNumber(s.ctx, number)
	s.Require().NoError(err)
	return a.Balance
}

func (s *ledgerSuite) requireBalance(number string, want int64) {
	got := s.balance(number)
	s.Require().True(got.Equal(d(want)), "account %s balance = %s, want %d", number, got, want)
}

func (s *ledgerSuite) requireDecimal(want int64, got decimal.Decimal, msgAndArgs ...any) {
	s.Require().True(got.Equal(d(want)), append([]any{"got %s, want %d", got, want}, msgAndArgs...)...)
}

func (s *ledgerSuite) addResident(id string, charge int64, start *time.Time) domain.Resident {
	r := domain.Resident{
		ResidentID:    id,
		Name:          "Resident " + id,
		Status:        domain.ResidentActive,
		ServiceCharge: d(charge),
		StartDate:     start,
		Balance:       decimal.Zero,
		AuditFields:   domain.NewAuditFields("seed", s.now),
	}
	s.Require().NoError(s.store.SaveResident(s.ctx, r))
	return r
}

func (s *ledgerSuite) resident(id string) *domain.Resident {
	r, err := s.store.FindResidentByID(s.ctx, id)
	s.Require().NoError(err)
	return r
}

// billResident creates a resident starting on 2024-01-01 and bills it.
func (s *ledgerSuite) billResident(id string, charge int64) *domain.Bill {
	start := date(2024, 1, 1)
	s.addResident(id, charge, &start)
	bill, err := s.svc.Billing.GenerateBillForResident(s.ctx, id, accountant)
	s.Require().NoError(err)
	s.Require().NotNil(bill)
	return bill
}

func (s *ledgerSuite) post(description string, lines ...domain.JournalLineInput) *domain.JournalEntry {
	entry, err := s.svc.Journal.PostJournalEntry(s.ctx, domain.PostJournalInput{
		EntryDate:   s.now,
		Description: description,
		Lines:       lines,
	}, accountant)
	s.Require().NoError(err)
	return entry
}

func (s *ledgerSuite) dr(number string, amount int64) domain.JournalLineInput {
	return domain.JournalLineInput{AccountID: s.accountID(number), LineType: domain.Debit, Amount: d(amount)}
}

func (s *ledgerSuite) cr(number string, amount int64) domain.JournalLineInput {
	return domain.JournalLineInput{AccountID: s.accountID(number), LineType: domain.Credit, Amount: d(amount)}
}

// requireLedgerConsistent checks replay equivalence and the global debit/credit balance.
func (s *ledgerSuite) requireLedgerConsistent() {
	discrepancies, err := s.svc.Journal.VerifyLedger(s.ctx)
	s.Require().NoError(err)
	s.Require().Empty(discrepancies, "stored balances diverge from a replay of posted lines")

	tb, err := s.svc.Reporting.TrialBalance(s.ctx, s.now)
	s.Require().NoError(err)
	s.Require().True(tb.Balanced, "trial balance: debits %s credits %s", tb.TotalDebits, tb.TotalCredits)
}
