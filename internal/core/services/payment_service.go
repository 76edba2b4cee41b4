package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/estate_ledger/internal/apperrors"
	"github.com/SscSPs/estate_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/estate_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/estate_ledger/internal/core/ports/services"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentConfig holds payment rules taken from configuration.
type PaymentConfig struct {
	DefaultCashAccount string
	OverdueGraceDays   int
}

type paymentService struct {
	BaseService
	cfg          PaymentConfig
	txManager    portsrepo.TransactionManager
	engine       *JournalEngine
	accounts     portssvc.AccountProvisioningSvc
	accountRepo  portsrepo.AccountReader
	billRepo     portsrepo.BillRepositoryFacade
	residentRepo portsrepo.ResidentRepository
	paymentRepo  portsrepo.PaymentRepository
}

// NewPaymentService creates the receivables and payment application service.
func NewPaymentService(
	cfg PaymentConfig,
	txManager portsrepo.TransactionManager,
	engine *JournalEngine,
	accounts portssvc.AccountProvisioningSvc,
	accountRepo portsrepo.AccountReader,
	billRepo portsrepo.BillRepositoryFacade,
	residentRepo portsrepo.ResidentRepository,
	paymentRepo portsrepo.PaymentRepository,
	options ...ServiceOption,
) portssvc.PaymentSvc {
	return &paymentService{
		BaseService:  newBase(options),
		cfg:          cfg,
		txManager:    txManager,
		engine:       engine,
		accounts:     accounts,
		accountRepo:  accountRepo,
		billRepo:     billRepo,
		residentRepo: residentRepo,
		paymentRepo:  paymentRepo,
	}
}

var _ portssvc.PaymentSvc = (*paymentService)(nil)

// ApplyPaymentToBill settles (part of) a bill in one unit of work.
func (s *paymentService) ApplyPaymentToBill(ctx context.Context, in domain.ApplyPaymentInput, actor domain.Actor) (*domain.PaymentApplication, error) {
	if err := validatePaymentInput(&in, s.Now()); err != nil {
		return nil, err
	}
	cash, err := s.ResolveCashAccount(ctx, in.CashAccountID, in.BankAccountNumber)
	if err != nil {
		return nil, err
	}

	var payment *domain.PaymentApplication
	err = s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		payment, _, err = s.ApplyPaymentInTx(ctx, in, cash.AccountID, actor)
		return err
	})
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrOverpayment), errors.Is(err, apperrors.ErrValidation),
			errors.Is(err, apperrors.ErrConflict), errors.Is(err, apperrors.ErrNotFound):
			s.LogWarn(ctx, "Payment rejected", slog.String("bill_id", in.BillID), slog.String("error", err.Error()))
		default:
			s.LogError(ctx, err, "Failed to apply payment", slog.String("bill_id", in.BillID))
		}
		return nil, err
	}

	s.LogInfo(ctx, "Payment applied",
		slog.String("payment_application_id", payment.PaymentApplicationID),
		slog.String("bill_id", payment.BillID),
		slog.String("amount", payment.AmountApplied.String()))
	s.Publish(ctx, domain.EventPaymentApplied, payment.PaymentApplicationID, payment)
	return payment, nil
}

// ApplyPaymentInTx must be called inside a unit of work. The bill is locked and read fresh here so
// the overpayment check sees the latest balance.
func (s *paymentService) ApplyPaymentInTx(ctx context.Context, in domain.ApplyPaymentInput, cashAccountID string, actor domain.Actor) (*domain.PaymentApplication, *domain.Bill, error) {
	if err := validatePaymentInput(&in, s.Now()); err != nil {
		return nil, nil, err
	}
	sys, err := s.accounts.RequiredAccounts(ctx)
	if err != nil {
		return nil, nil, err
	}

	bill, err := s.billRepo.FindBillByIDForUpdate(ctx, in.BillID)
	if err != nil {
		return nil, nil, err
	}
	if bill.Status == domain.BillVoid || bill.Status == domain.BillCancelled {
		return nil, nil, fmt.Errorf("%w: bill %s is %s", apperrors.ErrConflict, bill.InvoiceNumber, bill.Status)
	}
	if in.Amount.GreaterThan(bill.Balance) {
		return nil, nil, fmt.Errorf("%w: amount %s exceeds balance %s on bill %s",
			apperrors.ErrOverpayment, in.Amount, bill.Balance, bill.InvoiceNumber)
	}

	now := s.Now()
	payment := domain.PaymentApplication{
		PaymentApplicationID: uuid.NewString(),
		BillID:               bill.BillID,
		AmountApplied:        in.Amount,
		ApplicationType:      in.Source,
		BankStatementEntryID: in.BankStatementEntryID,
		PaymentDate:          domain.DateOnly(in.PaymentDate),
		Reference:            in.Reference,
		Notes:                in.Notes,
		AppliedBy:            actor.UserID,
		CreatedAt:            now,
	}

	entry, err := s.engine.Post(ctx, domain.PostJournalInput{
		EntryDate:     payment.PaymentDate,
		Description:   fmt.Sprintf("Payment on invoice %s", bill.InvoiceNumber),
		ReferenceType: domain.RefPayment,
		ReferenceID:   &payment.PaymentApplicationID,
		Lines: []domain.JournalLineInput{
			{AccountID: cashAccountID, LineType: domain.Debit, Amount: in.Amount, Description: "Cash received " + bill.InvoiceNumber},
			{AccountID: sys.Receivable.AccountID, LineType: domain.Credit, Amount: in.Amount, Description: "Receivable settled " + bill.InvoiceNumber},
			{AccountID: sys.DeferredRevenue.AccountID, LineType: domain.Debit, Amount: in.Amount, Description: "Deferred revenue released " + bill.InvoiceNumber},
			{AccountID: sys.MemberDues.AccountID, LineType: domain.Credit, Amount: in.Amount, Description: "Member dues recognized " + bill.InvoiceNumber},
		},
	}, actor)
	if err != nil {
		return nil, nil, err
	}
	payment.JournalEntryID = &entry.JournalEntryID

	if err := s.paymentRepo.SavePaymentApplication(ctx, payment); err != nil {
		return nil, nil, fmt.Errorf("failed to save payment application: %w", err)
	}

	bill.RecordPayment(in.Amount)
	bill.Touch(actor.UserID, now)
	if err := s.billRepo.UpdateBill(ctx, *bill); err != nil {
		return nil, nil, fmt.Errorf("failed to update bill: %w", err)
	}

	resident, err := s.residentRepo.FindResidentByIDForUpdate(ctx, bill.ResidentID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load resident %s: %w", bill.ResidentID, err)
	}
	resident.Balance = resident.Balance.Sub(in.Amount)
	resident.Touch(actor.UserID, now)
	if err := s.residentRepo.UpdateResidentBilling(ctx, *resident); err != nil {
		return nil, nil, fmt.Errorf("failed to update resident balance: %w", err)
	}

	return &payment, bill, nil
}

// ResolveCashAccount applies the explicit mapping: the requested account, else the account mapped to
// the statement's bank account number, else the configured default cash account.
func (s *paymentService) ResolveCashAccount(ctx context.Context, explicitID *string, bankAccountNumber *string) (*domain.Account, error) {
	if explicitID != nil && *explicitID != "" {
		account, err := s.accountRepo.FindAccountByID(ctx, *explicitID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("%w: cash account %s not found", apperrors.ErrValidation, *explicitID)
			}
			return nil, err
		}
		if !account.IsActive || account.AccountType != domain.Asset {
			return nil, fmt.Errorf("%w: account %s is not an active asset account", apperrors.ErrValidation, account.Number)
		}
		return account, nil
	}

	if bankAccountNumber != nil && *bankAccountNumber != "" {
		account, err := s.accountRepo.FindAccountByBankAccountNumber(ctx, *bankAccountNumber)
		switch {
		case err == nil && account.IsActive:
			return account, nil
		case err != nil && !errors.Is(err, apperrors.ErrNotFound):
			return nil, err
		}
		s.LogDebug(ctx, "No ledger account mapped to bank account, using default cash account",
			slog.String("bank_account_number", *bankAccountNumber))
	}

	if s.cfg.DefaultCashAccount == "" {
		return nil, apperrors.NewConfigurationError("no default cash account configured", "DEFAULT_CASH_ACCOUNT")
	}
	account, err := s.accountRepo.FindAccountByNumber(ctx, s.cfg.DefaultCashAccount)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewConfigurationError("default cash account is not provisioned", s.cfg.DefaultCashAccount)
		}
		return nil, err
	}
	if !account.IsActive {
		return nil, apperrors.NewConfigurationError("default cash account is inactive", s.cfg.DefaultCashAccount)
	}
	return account, nil
}

func (s *paymentService) ListPaymentsForBill(ctx context.Context, billID string) ([]domain.PaymentApplication, error) {
	if _, err := s.billRepo.FindBillByID(ctx, billID); err != nil {
		return nil, err
	}
	payments, err := s.paymentRepo.ListPaymentsByBill(ctx, billID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list payments", slog.String("bill_id", billID))
		return nil, err
	}
	return payments, nil
}

// agingBuckets are inclusive upper bounds of days past due. The last bucket is open-ended.
var agingBuckets = []struct {
	label   string
	maxDays int
}{
	{"current", 0},
	{"1-30", 30},
	{"31-60", 60},
	{"61-90", 90},
	{"90+", -1},
}

// GetReceivablesAging groups open bills by days past due, using the same overdue policy as ListBills.
func (s *paymentService) GetReceivablesAging(ctx context.Context, asOf time.Time) (*domain.ReceivablesAging, error) {
	bills, err := s.billRepo.ListBills(ctx, domain.BillFilter{OpenOnly: true})
	if err != nil {
		s.LogError(ctx, err, "Failed to list open bills for aging")
		return nil, err
	}

	report := &domain.ReceivablesAging{
		AsOf:      domain.DateOnly(asOf),
		GraceDays: s.cfg.OverdueGraceDays,
		Buckets:   make([]domain.AgingBucket, len(agingBuckets)),
		Total:     decimal.Zero,
	}
	for i, b := range agingBuckets {
		report.Buckets[i] = domain.AgingBucket{Label: b.label, Amount: decimal.Zero}
	}

	for _, bill := range bills {
		days := bill.DaysPastDue(asOf, s.cfg.OverdueGraceDays)
		idx := len(agingBuckets) - 1
		for i, b := range agingBuckets {
			if b.maxDays >= 0 && days <= b.maxDays {
				idx = i
				break
			}
		}
		report.Buckets[idx].BillCount++
		report.Buckets[idx].Amount = report.Buckets[idx].Amount.Add(bill.Balance)
		report.Total = report.Total.Add(bill.Balance)
	}
	return report, nil
}

func validatePaymentInput(in *domain.ApplyPaymentInput, now time.Time) error {
	if in.BillID == "" {
		return fmt.Errorf("%w: bill id is required", apperrors.ErrValidation)
	}
	if !in.Amount.IsPositive() {
		return fmt.Errorf("%w: payment amount must be positive, got %s", apperrors.ErrValidation, in.Amount)
	}
	if in.Source == "" {
		in.Source = domain.ApplicationManual
	}
	if !in.Source.Valid() {
		return fmt.Errorf("%w: invalid payment source %q", apperrors.ErrValidation, in.Source)
	}
	if in.PaymentDate.IsZero() {
		in.PaymentDate = now
	}
	return nil
}
