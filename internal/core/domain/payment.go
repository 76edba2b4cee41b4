package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ApplicationType records where a payment came from.
type ApplicationType string

const (
	ApplicationManual        ApplicationType = "MANUAL"
	ApplicationBankStatement ApplicationType = "BANK_STATEMENT"
)

// Valid reports whether t is a known application type.
func (t ApplicationType) Valid() bool {
	return t == ApplicationManual || t == ApplicationBankStatement
}

// PaymentApplication is one immutable settlement event against a bill.
type PaymentApplication struct {
	PaymentApplicationID string          `json:"paymentApplicationID"`
	BillID               string          `json:"billID"`
	AmountApplied        decimal.Decimal `json:"amountApplied"`
	ApplicationType      ApplicationType `json:"applicationType"`
	BankStatementEntryID *string         `json:"bankStatementEntryID,omitempty"`
	PaymentDate          time.Time       `json:"paymentDate"`
	Reference            string          `json:"reference"`
	Notes                string          `json:"notes"`
	AppliedBy            string          `json:"appliedBy"`
	JournalEntryID       *string         `json:"journalEntryID,omitempty"`
	CreatedAt            time.Time       `json:"createdAt"`
}

// ApplyPaymentInput is the request to settle (part of) a bill.
type ApplyPaymentInput struct {
	BillID               string
	Amount               decimal.Decimal
	Source               ApplicationType
	PaymentDate          time.Time
	CashAccountID        *string
	BankAccountNumber    *string // statement account, used to resolve the cash account
	BankStatementEntryID *string
	Reference            string
	Notes                string
}
