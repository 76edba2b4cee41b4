package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// LineType indicates whether a journal line is a Debit or a Credit.
type LineType string

const (
	Debit  LineType = "DEBIT"
	Credit LineType = "CREDIT"
)

// Valid reports whether l is DEBIT or CREDIT.
func (l LineType) Valid() bool {
	return l == Debit || l == Credit
}

// Opposite returns the other side.
func (l LineType) Opposite() LineType {
	if l == Debit {
		return Credit
	}
	return Debit
}

// JournalStatus indicates the state of a journal entry.
type JournalStatus string

const (
	Posted JournalStatus = "POSTED"
	Void   JournalStatus = "VOID"
)

// ReferenceType links a journal entry to the event that produced it.
type ReferenceType string

const (
	RefBill     ReferenceType = "BILL"
	RefPayment  ReferenceType = "PAYMENT"
	RefExpense  ReferenceType = "EXPENSE"
	RefReversal ReferenceType = "REVERSAL"
	RefManual   ReferenceType = "MANUAL"
)

// Valid reports whether r is a known reference type.
func (r ReferenceType) Valid() bool {
	switch r {
	case RefBill, RefPayment, RefExpense, RefReversal, RefManual:
		return true
	}
	return false
}

// JournalEntry is a balanced, immutable set of lines. It only ever transitions POSTED -> VOID.
type JournalEntry struct {
	JournalEntryID string             `json:"journalEntryID"`
	EntryNumber    string             `json:"entryNumber"` // JE-YYYYMMDD-NNNN
	EntryDate      time.Time          `json:"entryDate"`
	Description    string             `json:"description"`
	ReferenceType  ReferenceType      `json:"referenceType"`
	ReferenceID    *string            `json:"referenceID,omitempty"`
	Status         JournalStatus      `json:"status"`
	TotalDebit     decimal.Decimal    `json:"totalDebit"`
	TotalCredit    decimal.Decimal    `json:"totalCredit"`
	VoidedAt       *time.Time         `json:"voidedAt,omitempty"`
	VoidedBy       *string            `json:"voidedBy,omitempty"`
	Lines          []JournalEntryLine `json:"lines,omitempty"`
	AuditFields
}

// JournalEntryLine is a single debit or credit against one account.
type JournalEntryLine struct {
	LineID         string          `json:"lineID"`
	JournalEntryID string          `json:"journalEntryID"`
	AccountID      string          `json:"accountID"`
	LineType       LineType        `json:"lineType"`
	Amount         decimal.Decimal `json:"amount"` // always positive
	Description    string          `json:"description"`
}

// LineTotals sums the debit and credit sides of lines.
func LineTotals(lines []JournalEntryLine) (debits, credits decimal.Decimal) {
	debits, credits = decimal.Zero, decimal.Zero
	for _, l := range lines {
		if l.LineType == Debit {
			debits = debits.Add(l.Amount)
		} else {
			credits = credits.Add(l.Amount)
		}
	}
	return debits, credits
}

// EntryNumber formats a per-day journal sequence value.
func EntryNumber(entryDate time.Time, seq int64) string {
	return fmt.Sprintf("JE-%s-%04d", entryDate.Format("20060102"), seq)
}

// EntrySequenceKey is the sequence row key for journal numbers on a given day.
func EntrySequenceKey(entryDate time.Time) string {
	return "JE-" + entryDate.Format("20060102")
}

// JournalLineInput describes a line to post.
type JournalLineInput struct {
	AccountID   string
	LineType    LineType
	Amount      decimal.Decimal
	Description string
}

// PostJournalInput describes a new journal entry.
type PostJournalInput struct {
	EntryDate     time.Time
	Description   string
	ReferenceType ReferenceType
	ReferenceID   *string
	Lines         []JournalLineInput
}

// JournalListParams filters and pages ListJournalEntries.
type JournalListParams struct {
	From          *time.Time
	To            *time.Time
	ReferenceType *ReferenceType
	Status        *JournalStatus
	Limit         int
	NextToken     *string
}

// LedgerDiscrepancy reports an account whose stored balance disagrees with a replay of posted lines.
type LedgerDiscrepancy struct {
	AccountID       string          `json:"accountID"`
	AccountNumber   string          `json:"accountNumber"`
	StoredBalance   decimal.Decimal `json:"storedBalance"`
	ReplayedBalance decimal.Decimal `json:"replayedBalance"`
}
