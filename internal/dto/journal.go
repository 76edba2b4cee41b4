package dto

import (
	"time"

	"github.com/SscSPs/estate_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// JournalLineRequest is one line of a manual journal entry.
type JournalLineRequest struct {
	AccountID   string          `json:"accountID" binding:"required"`
	LineType    string          `json:"lineType" binding:"required,oneof=DEBIT CREDIT"`
	Amount      decimal.Decimal `json:"amount" binding:"required,gt=0" swaggertype:"string" example:"100.00"`
	Description string          `json:"description"`
}

// PostJournalRequest defines a manual journal entry. Entries generated by billing, payments and expenses
// are posted by those services, not through this request.
type PostJournalRequest struct {
	EntryDate     string               `json:"entryDate" binding:"required,datetime=2006-01-02" example:"2024-03-01"`
	Description   string               `json:"description" binding:"required,max=500"`
	ReferenceType string               `json:"referenceType" binding:"omitempty,oneof=MANUAL"`
	ReferenceID   *string              `json:"referenceID"`
	Lines         []JournalLineRequest `json:"lines" binding:"required,min=2,dive"`
}

// ListJournalEntriesParams defines query parameters for listing journal entries.
type ListJournalEntriesParams struct {
	From          string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To            string `form:"to" binding:"omitempty,datetime=2006-01-02"`
	ReferenceType string `form:"referenceType" binding:"omitempty,oneof=BILL PAYMENT EXPENSE REVERSAL MANUAL"`
	Status        string `form:"status" binding:"omitempty,oneof=POSTED VOID"`
	Limit         int    `form:"limit,default=20" binding:"omitempty,min=1,max=100"`
	NextToken     string `form:"nextToken"`
}

// JournalLineResponse defines the data returned for a journal line.
type JournalLineResponse struct {
	LineID      string          `json:"lineID"`
	AccountID   string          `json:"accountID"`
	LineType    string          `json:"lineType"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

// JournalEntryResponse defines the data returned for a journal entry.
type JournalEntryResponse struct {
	JournalEntryID string                `json:"journalEntryID"`
	EntryNumber    string                `json:"entryNumber"`
	EntryDate      string                `json:"entryDate"`
	Description    string                `json:"description"`
	ReferenceType  string                `json:"referenceType"`
	ReferenceID    *string               `json:"referenceID,omitempty"`
	Status         string                `json:"status"`
	TotalDebit     decimal.Decimal       `json:"totalDebit"`
	TotalCredit    decimal.Decimal       `json:"totalCredit"`
	VoidedAt       *time.Time            `json:"voidedAt,omitempty"`
	VoidedBy       *string               `json:"voidedBy,omitempty"`
	Lines          []JournalLineResponse `json:"lines,omitempty"`
	CreatedAt      time.Time             `json:"createdAt"`
	CreatedBy      string                `json:"createdBy"`
}

// ListJournalEntriesResponse is a page of journal entries.
type ListJournalEntriesResponse struct {
	Entries   []JournalEntryResponse `json:"entries"`
	NextToken *string                `json:"nextToken,omitempty"`
}

// LedgerVerificationResponse reports accounts whose stored balance disagrees with a replay.
type LedgerVerificationResponse struct {
	Consistent    bool                       `json:"consistent"`
	Discrepancies []domain.LedgerDiscrepancy `json:"discrepancies"`
}

// ToJournalEntryResponse converts a domain.JournalEntry to JournalEntryResponse DTO.
func ToJournalEntryResponse(e *domain.JournalEntry) JournalEntryResponse {
	lines := make([]JournalLineResponse, len(e.Lines))
	for i, l := range e.Lines {
		lines[i] = JournalLineResponse{
			LineID:      l.LineID,
			AccountID:   l.AccountID,
			LineType:    string(l.LineType),
			Amount:      l.Amount,
			Description: l.Description,
		}
	}
	return JournalEntryResponse{
		JournalEntryID: e.JournalEntryID,
		EntryNumber:    e.EntryNumber,
		EntryDate:      e.EntryDate.Format(DateLayout),
		Description:    e.Description,
		ReferenceType:  string(e.ReferenceType),
		ReferenceID:    e.ReferenceID,
		Status:         string(e.Status),
		TotalDebit:     e.TotalDebit,
		TotalCredit:    e.TotalCredit,
		VoidedAt:       e.VoidedAt,
		VoidedBy:       e.VoidedBy,
		Lines:          lines,
		CreatedAt:      e.CreatedAt,
		CreatedBy:      e.CreatedBy,
	}
}

// ToListJournalEntriesResponse converts a page of entries.
func ToListJournalEntriesResponse(entries []domain.JournalEntry, next *string) ListJournalEntriesResponse {
	res := make([]JournalEntryResponse, len(entries))
	for i := range entries {
		res[i] = ToJournalEntryResponse(&entries[i])
	}
	return ListJournalEntriesResponse{Entries: res, NextToken: next}
}
