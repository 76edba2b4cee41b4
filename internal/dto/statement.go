package dto

import (
	"github.com/SscSPs/estate_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// StatementEntryRequest is one line of an uploaded statement.
type StatementEntryRequest struct {
	Date        string          `json:"date" binding:"required,datetime=2006-01-02"`
	Description string          `json:"description"`
	Reference   string          `json:"reference"`
	Amount      decimal.Decimal `json:"amount" swaggertype:"string" example:"30000.00"`
}

// StatementMetaRequest describes the statement. In multipart uploads the same fields arrive as form values.
type StatementMetaRequest struct {
	BankName      string `json:"bankName" form:"bankName" binding:"required,max=100"`
	AccountNumber string `json:"accountNumber" form:"accountNumber" binding:"required,max=50"`
	StatementDate string `json:"statementDate" form:"statementDate" binding:"required,datetime=2006-01-02"`
}

// ReconcileStatementRequest is the JSON form of a statement upload.
type ReconcileStatementRequest struct {
	StatementMetaRequest
	Entries []StatementEntryRequest `json:"entries" binding:"required,min=1,dive"`
}

// MatchStatementEntryRequest manually applies a statement entry to a bill.
type MatchStatementEntryRequest struct {
	BillID string           `json:"billID" binding:"required"`
	Amount *decimal.Decimal `json:"amount" swaggertype:"string"`
}

// ListStatementsParams pages statements.
type ListStatementsParams struct {
	Limit  int `form:"limit,default=20" binding:"omitempty,min=1,max=100"`
	Offset int `form:"offset,default=0" binding:"omitempty,min=0"`
}

// ReconciliationResponse is returned by a reconciliation run.
type ReconciliationResponse struct {
	Statement domain.BankStatement         `json:"statement"`
	Summary   domain.ReconciliationSummary `json:"summary"`
}

// ListStatementsResponse wraps a page of statements.
type ListStatementsResponse struct {
	Statements []domain.BankStatement `json:"statements"`
}
