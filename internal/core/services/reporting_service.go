package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/SscSPs/estate_ledger/internal/apperrors"
	"github.com/SscSPs/estate_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/estate_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/estate_ledger/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

// reportingService implements the ReportingService interface
type reportingService struct {
	BaseService
	reportingRepo portsrepo.ReportingRepository
}

// NewReportingService creates a new reporting service with the provided options
func NewReportingService(repo portsrepo.ReportingRepository, options ...ServiceOption) portssvc.ReportingService {
	return &reportingService{
		BaseService:   newBase(options),
		reportingRepo: repo,
	}
}

// Ensure reportingService implements the ReportingService interface
var _ portssvc.ReportingService = (*reportingService)(nil)

// endOfDay makes an as-of date inclusive of everything dated that day.
func endOfDay(t time.Time) time.Time {
	return domain.DateOnly(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

func (s *reportingService) activity(ctx context.Context, from, to *time.Time) ([]domain.AccountActivity, error) {
	rows, err := s.reportingRepo.GetAccountActivity(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve account activity: %w", err)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Account.Number < rows[j].Account.Number })
	return rows, nil
}

// TrialBalance lists every account with a non-zero net, in the column of its normal side.
// A net against the normal side moves to the other column.
func (s *reportingService) TrialBalance(ctx context.Context, asOf time.Time) (*domain.TrialBalance, error) {
	to := endOfDay(asOf)
	rows, err := s.activity(ctx, nil, &to)
	if err != nil {
		s.LogError(ctx, err, "Failed to build trial balance", slog.String("asOf", asOf.Format(time.DateOnly)))
		return nil, err
	}

	tb := &domain.TrialBalance{
		AsOf:         domain.DateOnly(asOf),
		Rows:         []domain.TrialBalanceRow{},
		TotalDebits:  decimal.Zero,
		TotalCredits: decimal.Zero,
	}
	for _, a := range rows {
		net, err := a.NetOnNormalSide()
		if err != nil {
			return nil, err
		}
		if net.IsZero() {
			continue
		}
		nb, _ := a.Account.ResolveNormalBalance()
		side := nb
		if net.IsNegative() {
			side = nb.Opposite()
			net = net.Neg()
		}
		row := domain.TrialBalanceRow{
			AccountID:     a.Account.AccountID,
			AccountNumber: a.Account.Number,
			AccountName:   a.Account.Name,
			AccountType:   a.Account.AccountType,
			Debit:         decimal.Zero,
			Credit:        decimal.Zero,
		}
		if side == domain.Debit {
			row.Debit = net
			tb.TotalDebits = tb.TotalDebits.Add(net)
		} else {
			row.Credit = net
			tb.TotalCredits = tb.TotalCredits.Add(net)
		}
		tb.Rows = append(tb.Rows, row)
	}
	tb.Balanced = tb.TotalDebits.Equal(tb.TotalCredits)
	if !tb.Balanced {
		s.LogWarn(ctx, "Trial balance does not balance",
			slog.String("total_debits", tb.TotalDebits.String()),
			slog.String("total_credits", tb.TotalCredits.String()))
	}

	s.LogInfo(ctx, "Trial balance report generated",
		slog.String("asOf", asOf.Format(time.DateOnly)),
		slog.Int("row_count", len(tb.Rows)))
	return tb, nil
}

// IncomeStatement reports revenue (net credit) and expenses (net debit) dated within [from, to].
func (s *reportingService) IncomeStatement(ctx context.Context, from, to time.Time) (*domain.IncomeStatement, error) {
	if domain.DateOnly(to).Before(domain.DateOnly(from)) {
		return nil, fmt.Errorf("%w: 'to' date must not be before 'from' date", apperrors.ErrValidation)
	}
	start, end := domain.DateOnly(from), endOfDay(to)
	rows, err := s.activity(ctx, &start, &end)
	if err != nil {
		s.LogError(ctx, err, "Failed to build income statement")
		return nil, err
	}

	is := &domain.IncomeStatement{
		From:          start,
		To:            domain.DateOnly(to),
		Revenue:       []domain.AccountAmount{},
		Expenses:      []domain.AccountAmount{},
		TotalRevenue:  decimal.Zero,
		TotalExpenses: decimal.Zero,
	}
	for _, a := range rows {
		switch a.Account.AccountType {
		case domain.Revenue:
			net := a.Credits.Sub(a.Debits)
			if !net.IsZero() {
				is.Revenue = append(is.Revenue, accountAmount(a.Account, net))
				is.TotalRevenue = is.TotalRevenue.Add(net)
			}
		case domain.Expense:
			net := a.Debits.Sub(a.Credits)
			if !net.IsZero() {
				is.Expenses = append(is.Expenses, accountAmount(a.Account, net))
				is.TotalExpenses = is.TotalExpenses.Add(net)
			}
		}
	}
	is.NetIncome = is.TotalRevenue.Sub(is.TotalExpenses)

	s.LogInfo(ctx, "Income statement generated",
		slog.String("from", start.Format(time.DateOnly)),
		slog.String("to", is.To.Format(time.DateOnly)),
		slog.String("net_income", is.NetIncome.String()))
	return is, nil
}

// BalanceSheet reports assets against liabilities plus equity as of a date. Revenue and expense
// activity up to asOf has not been closed, so it is shown as a synthetic current earnings line in equity.
func (s *reportingService) BalanceSheet(ctx context.Context, asOf time.Time) (*domain.BalanceSheet, error) {
	to := endOfDay(asOf)
	rows, err := s.activity(ctx, nil, &to)
	if err != nil {
		s.LogError(ctx, err, "Failed to build balance sheet", slog.String("asOf", asOf.Format(time.DateOnly)))
		return nil, err
	}

	bs := &domain.BalanceSheet{
		AsOf:             domain.DateOnly(asOf),
		Assets:           []domain.AccountAmount{},
		Liabilities:      []domain.AccountAmount{},
		Equity:           []domain.AccountAmount{},
		TotalAssets:      decimal.Zero,
		TotalLiabilities: decimal.Zero,
		TotalEquity:      decimal.Zero,
		CurrentEarnings:  decimal.Zero,
	}
	for _, a := range rows {
		switch a.Account.AccountType {
		case domain.Asset:
			net := a.Debits.Sub(a.Credits)
			if !net.IsZero() {
				bs.Assets = append(bs.Assets, accountAmount(a.Account, net))
				bs.TotalAssets = bs.TotalAssets.Add(net)
			}
		case domain.Liability:
			net := a.Credits.Sub(a.Debits)
			if !net.IsZero() {
				bs.Liabilities = append(bs.Liabilities, accountAmount(a.Account, net))
				bs.TotalLiabilities = bs.TotalLiabilities.Add(net)
			}
		case domain.Equity:
			net := a.Credits.Sub(a.Debits)
			if !net.IsZero() {
				bs.Equity = append(bs.Equity, accountAmount(a.Account, net))
				bs.TotalEquity = bs.TotalEquity.Add(net)
			}
		case domain.Revenue:
			bs.CurrentEarnings = bs.CurrentEarnings.Add(a.Credits.Sub(a.Debits))
		case domain.Expense:
			bs.CurrentEarnings = bs.CurrentEarnings.Sub(a.Debits.Sub(a.Credits))
		}
	}
	if !bs.CurrentEarnings.IsZero() {
		bs.Equity = append(bs.Equity, domain.AccountAmount{Name: domain.CurrentEarningsLabel, NetAmount: bs.CurrentEarnings})
		bs.TotalEquity = bs.TotalEquity.Add(bs.CurrentEarnings)
	}
	bs.TotalLiabilitiesAndEquity = bs.TotalLiabilities.Add(bs.TotalEquity)
	bs.Balanced = bs.TotalAssets.Equal(bs.TotalLiabilitiesAndEquity)

	s.LogInfo(ctx, "Balance sheet generated",
		slog.String("asOf", asOf.Format(time.DateOnly)),
		slog.Bool("balanced", bs.Balanced))
	return bs, nil
}

func accountAmount(a domain.Account, net decimal.Decimal) domain.AccountAmount {
	return domain.AccountAmount{
		AccountID:     a.AccountID,
		AccountNumber: a.Number,
		Name:          a.Name,
		NetAmount:     net,
	}
}
