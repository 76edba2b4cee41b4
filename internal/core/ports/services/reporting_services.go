package services

import (
	"context"
	"time"

	"github.com/SscSPs/estate_ledger/internal/core/domain"
)

// ReportingService defines operations for generating financial reports
type ReportingService interface {
	// TrialBalance generates a trial balance report as of a specific date
	TrialBalance(ctx context.Context, asOf time.Time) (*domain.TrialBalance, error)

	// IncomeStatement generates an income statement for a specific period
	IncomeStatement(ctx context.Context, from, to time.Time) (*domain.IncomeStatement, error)

	// BalanceSheet generates a balance sheet report as of a specific date
	BalanceSheet(ctx context.Context, asOf time.Time) (*domain.BalanceSheet, error)
}
