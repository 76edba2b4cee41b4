package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/estate_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/estate_ledger/internal/core/ports/services"
	"github.com/SscSPs/estate_ledger/internal/dto"
	"github.com/SscSPs/estate_ledger/internal/middleware"
	"github.com/SscSPs/estate_ledger/internal/utils/mapping"
	"github.com/SscSPs/estate_ledger/internal/utils/statement"
	"github.com/gin-gonic/gin"
)

// maxStatementSize bounds an uploaded statement file.
const maxStatementSize = 10 << 20

// statementHandler handles bank statement uploads and manual matching.
type statementHandler struct {
	reconciliationService portssvc.ReconciliationSvc
}

// newStatementHandler creates a new statementHandler.
func newStatementHandler(rs portssvc.ReconciliationSvc) *statementHandler {
	return &statementHandler{reconciliationService: rs}
}

// registerStatementRoutes registers bank statement routes.
func registerStatementRoutes(rg *gin.RouterGroup, rs portssvc.ReconciliationSvc) {
	h := newStatementHandler(rs)
	write := middleware.RequireRole(domain.RoleAccountant)

	statements := rg.Group("/bank-statements")
	{
		statements.GET("", h.listStatements)
		statements.GET("/:id", h.getStatement)
		statements.POST("", write, h.reconcileStatement)
		statements.POST("/entries/:entryID/match", write, h.matchStatementEntry)
	}
}

// reconcileStatement godoc
// @Summary Upload and reconcile a bank statement
// @Description Accepts a JSON statement or a multipart CSV/XLSX file. Every entry is matched to bills by invoice number and reconciled in its own unit of work.
// @Tags bank-statements
// @Accept  json
// @Accept  multipart/form-data
// @Produce  json
// @Param   statement body dto.ReconcileStatementRequest false "Statement (JSON form)"
// @Param   file formData file false "Statement file (.csv or .xlsx)"
// @Param   bankName formData string false "Bank name"
// @Param   accountNumber formData string false "Bank account number"
// @Param   statementDate formData string false "Statement date (YYYY-MM-DD)"
// @Success 201 {object} dto.ReconciliationResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid statement"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 503 {object} dto.ErrorResponse "Cash account not configured"
// @Security BearerAuth
// @Router /bank-statements [post]
func (h *statementHandler) reconcileStatement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actor, ok := requireActor(c, logger)
	if !ok {
		return
	}

	var (
		metaReq dto.StatementMetaRequest
		entries []domain.RawStatementEntry
		err     error
	)
	if c.ContentType() == gin.MIMEMultipartPOSTForm {
		if err := c.ShouldBind(&metaReq); err != nil {
			bindError(c, logger, "statement form", err)
			return
		}
		entries, err = h.parseUpload(c)
	} else {
		var req dto.ReconcileStatementRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, logger, "ReconcileStatement", err)
			return
		}
		metaReq = req.StatementMetaRequest
		entries, err = mapping.ToRawStatementEntries(req.Entries)
	}
	if err != nil {
		respondError(c, logger, err, "Failed to read statement")
		return
	}
	meta, err := mapping.ToStatementMeta(metaReq)
	if err != nil {
		respondError(c, logger, err, "Failed to read statement")
		return
	}

	logger = logger.With(slog.String("bank", meta.BankName), slog.Int("entry_count", len(entries)))
	logger.Info("Received bank statement")

	result, err := h.reconciliationService.ReconcileStatement(c.Request.Context(), meta, entries, actor)
	if err != nil {
		respondError(c, logger, err, "Failed to reconcile statement")
		return
	}

	logger.Info("Bank statement reconciled",
		slog.String("statement_id", result.Statement.StatementID),
		slog.Int("matched", result.Summary.Matched),
		slog.Int("unmatched", result.Summary.Unmatched),
		slog.Int("failed", result.Summary.Failed),
	)
	c.JSON(http.StatusCreated, dto.ReconciliationResponse{Statement: result.Statement, Summary: result.Summary})
}

func (h *statementHandler) parseUpload(c *gin.Context) ([]domain.RawStatementEntry, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return nil, validationf("statement file is required: %v", err)
	}
	if fh.Size > maxStatementSize {
		return nil, validationf("statement file exceeds %d bytes", maxStatementSize)
	}
	format, err := statement.FormatFromFilename(fh.Filename)
	if err != nil {
		return nil, err
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return statement.Parse(format, f)
}

// matchStatementEntry godoc
// @Summary Manually match a statement entry
// @Description Applies an unmatched or partially matched statement entry to a bill. Without an amount, as much as both sides allow is applied.
// @Tags bank-statements
// @Accept  json
// @Produce  json
// @Param   entryID path string true "Statement entry ID"
// @Param   match body dto.MatchStatementEntryRequest true "Target bill"
// @Success 200 {object} domain.BankStatementEntry
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 404 {object} dto.ErrorResponse "Entry or bill not found"
// @Failure 409 {object} dto.ErrorResponse "Entry already fully matched"
// @Failure 422 {object} dto.ErrorResponse "Amount exceeds bill balance"
// @Security BearerAuth
// @Router /bank-statements/entries/{entryID}/match [post]
func (h *statementHandler) matchStatementEntry(c *gin.Context) {
	entryID := c.Param("entryID")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("entry_id", entryID))
	var req dto.MatchStatementEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, logger, "MatchStatementEntry", err)
		return
	}
	actor, ok := requireActor(c, logger)
	if !ok {
		return
	}

	entry, err := h.reconciliationService.MatchStatementEntry(c.Request.Context(), entryID, req.BillID, req.Amount, actor)
	if err != nil {
		respondError(c, logger, err, "Failed to match statement entry")
		return
	}

	logger.Info("Statement entry matched", slog.String("bill_id", req.BillID), slog.String("status", string(entry.Status)))
	c.JSON(http.StatusOK, entry)
}

// getStatement godoc
// @Summary Get a bank statement
// @Description Retrieves a statement with its entries and reconciliation summary
// @Tags bank-statements
// @Produce  json
// @Param   id path string true "Statement ID"
// @Success 200 {object} domain.BankStatement
// @Failure 404 {object} dto.ErrorResponse "Statement not found"
// @Security BearerAuth
// @Router /bank-statements/{id} [get]
func (h *statementHandler) getStatement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("statement_id", c.Param("id")))

	stmt, err := h.reconciliationService.GetStatement(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve statement")
		return
	}
	c.JSON(http.StatusOK, stmt)
}

// listStatements godoc
// @Summary List bank statements
// @Tags bank-statements
// @Produce  json
// @Param   limit query int false "Page size" default(20)
// @Param   offset query int false "Offset" default(0)
// @Success 200 {object} dto.ListStatementsResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid query parameters"
// @Security BearerAuth
// @Router /bank-statements [get]
func (h *statementHandler) listStatements(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListStatementsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindError(c, logger, "ListStatements query", err)
		return
	}

	statements, err := h.reconciliationService.ListStatements(c.Request.Context(), params.Limit, params.Offset)
	if err != nil {
		respondError(c, logger, err, "Failed to list statements")
		return
	}
	if statements == nil {
		statements = []domain.BankStatement{}
	}
	c.JSON(http.StatusOK, dto.ListStatementsResponse{Statements: statements})
}
