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

// BatchBillingLockKey guards GenerateBillsForAllEligible across processes.
const BatchBillingLockKey = "estate-ledger:billing:batch"

// BillingConfig holds the billing rules taken from configuration.
type BillingConfig struct {
	DueDays              int
	FiscalYearStartMonth time.Month
	LockTTL              time.Duration
	OverdueGraceDays     int
}

type billingService struct {
	BaseService
	cfg          BillingConfig
	txManager    portsrepo.TransactionManager
	engine       *JournalEngine
	accounts     portssvc.AccountProvisioningSvc
	residentRepo portsrepo.ResidentRepository
	billRepo     portsrepo.BillRepositoryFacade
	sequenceRepo portsrepo.SequenceRepository
	locker       portssvc.BatchLocker
}

// NewBillingService creates the billing engine.
func NewBillingService(
	cfg BillingConfig,
	txManager portsrepo.TransactionManager,
	engine *JournalEngine,
	accounts portssvc.AccountProvisioningSvc,
	residentRepo portsrepo.ResidentRepository,
	billRepo portsrepo.BillRepositoryFacade,
	sequenceRepo portsrepo.SequenceRepository,
	locker portssvc.BatchLocker,
	options ...ServiceOption,
) portssvc.BillingSvc {
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 10 * time.Minute
	}
	return &billingService{
		BaseService:  newBase(options),
		cfg:          cfg,
		txManager:    txManager,
		engine:       engine,
		accounts:     accounts,
		residentRepo: residentRepo,
		billRepo:     billRepo,
		sequenceRepo: sequenceRepo,
		locker:       locker,
	}
}

var _ portssvc.BillingSvc = (*billingService)(nil)

// GenerateBillForResident bills one resident for their next annual period.
func (s *billingService) GenerateBillForResident(ctx context.Context, residentID string, actor domain.Actor) (*domain.Bill, error) {
	sys, err := s.accounts.RequiredAccounts(ctx)
	if err != nil {
		return nil, err
	}
	bill, err := s.generate(ctx, residentID, sys, actor)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to generate bill", slog.String("resident_id", residentID))
		}
		return nil, err
	}
	if bill == nil {
		s.LogDebug(ctx, "No bill due for resident", slog.String("resident_id", residentID))
		return nil, nil
	}
	s.Publish(ctx, domain.EventBillGenerated, bill.BillID, bill)
	return bill, nil
}

// GenerateBillsForAllEligible iterates every billable resident in its own unit of work.
func (s *billingService) GenerateBillsForAllEligible(ctx context.Context, actor domain.Actor) (*domain.BatchBillingResult, error) {
	if s.locker != nil {
		lock, err := s.locker.Obtain(ctx, BatchBillingLockKey, s.cfg.LockTTL)
		if err != nil {
			s.LogWarn(ctx, "Batch billing already running elsewhere", slog.String("error", err.Error()))
			return nil, err
		}
		defer func() {
			if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
				s.LogWarn(ctx, "Failed to release batch billing lock", slog.String("error", err.Error()))
			}
		}()
	}

	sys, err := s.accounts.RequiredAccounts(ctx)
	if err != nil {
		return nil, err
	}

	residents, err := s.residentRepo.ListBillableResidents(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to list billable residents")
		return nil, fmt.Errorf("failed to list billable residents: %w", err)
	}

	result := &domain.BatchBillingResult{Bills: []domain.Bill{}, Errors: []domain.BillingError{}}
	for _, r := range residents {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		bill, err := s.generate(ctx, r.ResidentID, sys, actor)
		if err != nil {
			if errors.Is(err, apperrors.ErrConfiguration) {
				s.LogError(ctx, err, "Batch billing aborted on configuration error", slog.String("resident_id", r.ResidentID))
				return result, err
			}
			s.LogWarn(ctx, "Bill generation failed for resident",
				slog.String("resident_id", r.ResidentID),
				slog.String("error", err.Error()))
			result.Failed++
			result.Errors = append(result.Errors, domain.BillingError{ResidentID: r.ResidentID, Reason: err.Error()})
			continue
		}
		if bill == nil {
			result.Skipped++
			continue
		}
		result.Success++
		result.Bills = append(result.Bills, *bill)
		s.Publish(ctx, domain.EventBillGenerated, bill.BillID, bill)
	}

	s.LogInfo(ctx, "Batch billing completed",
		slog.Int("success", result.Success),
		slog.Int("failed", result.Failed),
		slog.Int("skipped", result.Skipped))
	return result, nil
}

// generate runs one resident's billing inside a single unit of work. A nil bill means nothing is due.
func (s *billingService) generate(ctx context.Context, residentID string, sys *domain.SystemAccounts, actor domain.Actor) (*domain.Bill, error) {
	var bill *domain.Bill
	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		resident, err := s.residentRepo.FindResidentByIDForUpdate(ctx, residentID)
		if err != nil {
			return err
		}
		if !resident.IsBillable() {
			return nil
		}

		now := s.Now()
		today := domain.DateOnly(now)
		start, end, due := resident.NextBillingPeriod(today)
		if !due {
			return nil
		}

		fy := domain.FiscalYear(today, s.cfg.FiscalYearStartMonth)
		seq, err := s.sequenceRepo.NextValue(ctx, domain.InvoiceSequenceKey(fy))
		if err != nil {
			return fmt.Errorf("failed to generate invoice number: %w", err)
		}

		b := domain.Bill{
			BillID:        uuid.NewString(),
			ResidentID:    resident.ResidentID,
			InvoiceNumber: domain.InvoiceNumber(fy, seq),
			Description:   fmt.Sprintf("Service charge %s to %s", start.Format(time.DateOnly), end.Format(time.DateOnly)),
			Amount:        resident.ServiceCharge,
			TotalPaid:     decimal.Zero,
			Balance:       resident.ServiceCharge,
			PaymentStatus: domain.Unpaid,
			Status:        domain.BillPending,
			PeriodStart:   start,
			PeriodEnd:     end,
			DueDate:       today.AddDate(0, 0, s.cfg.DueDays),
			AuditFields:   domain.NewAuditFields(actor.UserID, now),
		}
		if err := s.billRepo.SaveBill(ctx, b); err != nil {
			return fmt.Errorf("failed to save bill: %w", err)
		}

		entry, err := s.engine.Post(ctx, domain.PostJournalInput{
			EntryDate:     today,
			Description:   fmt.Sprintf("Invoice %s for %s", b.InvoiceNumber, resident.Name),
			ReferenceType: domain.RefBill,
			ReferenceID:   &b.BillID,
			Lines: []domain.JournalLineInput{
				{AccountID: sys.Receivable.AccountID, LineType: domain.Debit, Amount: b.Amount, Description: "Accounts receivable " + b.InvoiceNumber},
				{AccountID: sys.DeferredRevenue.AccountID, LineType: domain.Credit, Amount: b.Amount, Description: "Deferred revenue " + b.InvoiceNumber},
			},
		}, actor)
		if err != nil {
			return err
		}

		b.JournalEntryID = &entry.JournalEntryID
		if err := s.billRepo.UpdateBill(ctx, b); err != nil {
			return fmt.Errorf("failed to link bill to journal entry: %w", err)
		}

		resident.CurrentPeriodEnd = &end
		resident.Balance = resident.Balance.Add(b.Amount)
		resident.Touch(actor.UserID, now)
		if err := s.residentRepo.UpdateResidentBilling(ctx, *resident); err != nil {
			return fmt.Errorf("failed to advance resident billing period: %w", err)
		}

		bill = &b
		return nil
	})
	if err != nil {
		return nil, err
	}
	if bill != nil {
		s.LogInfo(ctx, "Bill generated",
			slog.String("bill_id", bill.BillID),
			slog.String("invoice_number", bill.InvoiceNumber),
			slog.String("resident_id", residentID),
			slog.String("amount", bill.Amount.String()))
	}
	return bill, nil
}

// VoidBill cancels a bill that has received no payments. The originating entry is voided and the
// resident's period is rolled back when this was their latest bill.
func (s *billingService) VoidBill(ctx context.Context, billID string, actor domain.Actor) (*domain.Bill, error) {
	var voided *domain.Bill
	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		bill, err := s.billRepo.FindBillByIDForUpdate(ctx, billID)
		if err != nil {
			return err
		}
		if bill.Status == domain.BillVoid || bill.Status == domain.BillCancelled {
			return fmt.Errorf("%w: bill %s is already %s", apperrors.ErrConflict, bill.InvoiceNumber, bill.Status)
		}
		if bill.TotalPaid.IsPositive() {
			return fmt.Errorf("%w: bill %s has payments applied", apperrors.ErrConflict, bill.InvoiceNumber)
		}

		if bill.JournalEntryID != nil {
			if _, err := s.engine.Void(ctx, *bill.JournalEntryID, actor); err != nil && !errors.Is(err, apperrors.ErrAlreadyVoid) {
				return err
			}
		}

		now := s.Now()
		bill.Status = domain.BillVoid
		bill.Touch(actor.UserID, now)
		if err := s.billRepo.UpdateBill(ctx, *bill); err != nil {
			return err
		}

		resident, err := s.residentRepo.FindResidentByIDForUpdate(ctx, bill.ResidentID)
		if err != nil {
			return err
		}
		resident.Balance = resident.Balance.Sub(bill.Balance)
		if resident.CurrentPeriodEnd != nil && resident.CurrentPeriodEnd.Equal(bill.PeriodEnd) {
			if resident.StartDate != nil && domain.DateOnly(*resident.StartDate).Equal(bill.PeriodStart) {
				resident.CurrentPeriodEnd = nil
			} else {
				prior := bill.PeriodStart.AddDate(0, 0, -1)
				resident.CurrentPeriodEnd = &prior
			}
		}
		resident.Touch(actor.UserID, now)
		if err := s.residentRepo.UpdateResidentBilling(ctx, *resident); err != nil {
			return err
		}
		voided = bill
		return nil
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) && !errors.Is(err, apperrors.ErrConflict) {
			s.LogError(ctx, err, "Failed to void bill", slog.String("bill_id", billID))
		}
		return nil, err
	}
	s.LogInfo(ctx, "Bill voided", slog.String("bill_id", billID), slog.String("invoice_number", voided.InvoiceNumber))
	s.Publish(ctx, domain.EventBillVoided, voided.BillID, voided)
	return voided, nil
}

func (s *billingService) GetBill(ctx context.Context, billID string) (*domain.Bill, error) {
	bill, err := s.billRepo.FindBillByID(ctx, billID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find bill", slog.String("bill_id", billID))
		}
		return nil, err
	}
	return bill, nil
}

func (s *billingService) ListBills(ctx context.Context, filter domain.BillFilter, overdueAsOf *time.Time) ([]domain.Bill, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: invalid bill status %q", apperrors.ErrValidation, *filter.Status)
	}
	if overdueAsOf != nil {
		cutoff := domain.OverdueCutoff(*overdueAsOf, s.cfg.OverdueGraceDays)
		filter.OpenOnly = true
		filter.DueBefore = &cutoff
	}
	bills, err := s.billRepo.ListBills(ctx, filter)
	if err != nil {
		s.LogError(ctx, err, "Failed to list bills")
		return nil, err
	}
	return bills, nil
}
