package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ResidentStatus is maintained by the resident management workflow.
type ResidentStatus string

const (
	ResidentActive   ResidentStatus = "ACTIVE"
	ResidentInactive ResidentStatus = "INACTIVE"
)

// Resident is the billing view of a resident. Only the billing and payment paths write to it,
// and only CurrentPeriodEnd and Balance.
type Resident struct {
	ResidentID       string          `json:"residentID"`
	Name             string          `json:"name"`
	Status           ResidentStatus  `json:"status"`
	ServiceCharge    decimal.Decimal `json:"serviceCharge"`
	StartDate        *time.Time      `json:"startDate,omitempty"`
	CurrentPeriodEnd *time.Time      `json:"currentPeriodEnd,omitempty"`
	Balance          decimal.Decimal `json:"balance"` // amount owed across bills
	AuditFields
}

// IsBillable reports whether the resident is active, has a positive service charge and a start date.
func (r Resident) IsBillable() bool {
	return r.Status == ResidentActive && r.ServiceCharge.IsPositive() && r.StartDate != nil
}

// NextBillingPeriod returns the next annual period and whether a bill is due today.
// A bill is due only when no period is open: no prior end, or the prior end is before today.
func (r Resident) NextBillingPeriod(today time.Time) (start, end time.Time, due bool) {
	today = DateOnly(today)
	if r.CurrentPeriodEnd == nil {
		start = DateOnly(*r.StartDate)
	} else {
		priorEnd := DateOnly(*r.CurrentPeriodEnd)
		if !priorEnd.Before(today) {
			return time.Time{}, time.Time{}, false
		}
		start = priorEnd.AddDate(0, 0, 1)
	}
	end = start.AddDate(1, 0, -1)
	return start, end, true
}
