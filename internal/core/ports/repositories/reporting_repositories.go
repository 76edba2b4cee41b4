package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/estate_ledger/internal/core/domain"
)

// ReportingRepository defines operations for retrieving financial report data
type ReportingRepository interface {
	// GetAccountActivity sums the debit and credit sides of POSTED lines per account for entries dated
	// within [from, to]. A nil bound is open. Every account is returned, including those without activity.
	GetAccountActivity(ctx context.Context, from, to *time.Time) ([]domain.AccountActivity, error)
}
