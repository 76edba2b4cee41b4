package handlers

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/estate_ledger/internal/core/ports/services"
	"github.com/SscSPs/estate_ledger/internal/dto"
	"github.com/SscSPs/estate_ledger/internal/middleware"
	"github.com/SscSPs/estate_ledger/internal/utils/export"
	"github.com/SscSPs/estate_ledger/internal/utils/mapping"
	"github.com/gin-gonic/gin"
)

const formatXLSX = "xlsx"

// reportingHandler handles HTTP requests related to financial reports
type reportingHandler struct {
	reportingService portssvc.ReportingService
}

// newReportingHandler creates a new reportingHandler
func newReportingHandler(rs portssvc.ReportingService) *reportingHandler {
	return &reportingHandler{
		reportingService: rs,
	}
}

// registerReportingRoutes registers routes related to financial reports
func registerReportingRoutes(rg *gin.RouterGroup, reportingService portssvc.ReportingService) {
	h := newReportingHandler(reportingService)

	reportingGroup := rg.Group("/reports")
	{
		reportingGroup.GET("/trial-balance", h.getTrialBalance)
		reportingGroup.GET("/income-statement", h.getIncomeStatement)
		reportingGroup.GET("/balance-sheet", h.getBalanceSheet)
	}
}

// getTrialBalance godoc
// @Summary Generate trial balance report
// @Description Generates a trial balance as of a specific date from posted journal lines
// @Tags reports
// @Produce json
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param asOf query string false "Report date (YYYY-MM-DD)" default(current date)
// @Param format query string false "Output format" Enums(json, xlsx)
// @Success 200 {object} domain.TrialBalance
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Failed to generate report"
// @Security BearerAuth
// @Router /reports/trial-balance [get]
func (h *reportingHandler) getTrialBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.AsOfParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindError(c, logger, "TrialBalance query", err)
		return
	}
	asOf, err := asOfOrToday(params.AsOf)
	if err != nil {
		respondError(c, logger, err, "Failed to generate trial balance report")
		return
	}
	logger = logger.With(slog.Time("as_of", asOf))

	tb, err := h.reportingService.TrialBalance(c.Request.Context(), asOf)
	if err != nil {
		respondError(c, logger, err, "Failed to generate trial balance report")
		return
	}

	logger.Info("Trial balance report generated", slog.Int("row_count", len(tb.Rows)), slog.Bool("balanced", tb.Balanced))
	if params.Format == formatXLSX {
		h.writeWorkbook(c, logger, fmt.Sprintf("trial-balance-%s.xlsx", asOf.Format(dto.DateLayout)), func(w io.Writer) error {
			return export.TrialBalance(w, tb)
		})
		return
	}
	c.JSON(http.StatusOK, tb)
}

// getIncomeStatement godoc
// @Summary Generate income statement
// @Description Revenue and expense activity for a period with the resulting net income
// @Tags reports
// @Produce json
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param from query string true "Start date (YYYY-MM-DD)"
// @Param to query string true "End date (YYYY-MM-DD)"
// @Param format query string false "Output format" Enums(json, xlsx)
// @Success 200 {object} domain.IncomeStatement
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Failed to generate report"
// @Security BearerAuth
// @Router /reports/income-statement [get]
func (h *reportingHandler) getIncomeStatement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.PeriodParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindError(c, logger, "IncomeStatement query", err)
		return
	}
	from, err := mapping.ParseDate("from", params.From)
	if err != nil {
		respondError(c, logger, err, "Failed to generate income statement")
		return
	}
	to, err := mapping.ParseDate("to", params.To)
	if err != nil {
		respondError(c, logger, err, "Failed to generate income statement")
		return
	}
	if to.Before(from) {
		respondError(c, logger, validationf("to must not be before from"), "Failed to generate income statement")
		return
	}

	is, err := h.reportingService.IncomeStatement(c.Request.Context(), from, to)
	if err != nil {
		respondError(c, logger, err, "Failed to generate income statement")
		return
	}

	logger.Info("Income statement generated", slog.String("net_income", is.NetIncome.String()))
	if params.Format == formatXLSX {
		name := fmt.Sprintf("income-statement-%s-%s.xlsx", from.Format(dto.DateLayout), to.Format(dto.DateLayout))
		h.writeWorkbook(c, logger, name, func(w io.Writer) error {
			return export.IncomeStatement(w, is)
		})
		return
	}
	c.JSON(http.StatusOK, is)
}

// getBalanceSheet godoc
// @Summary Generate balance sheet
// @Description Assets, liabilities and equity as of a date. Current-period earnings are folded into equity.
// @Tags reports
// @Produce json
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param asOf query string false "Report date (YYYY-MM-DD)" default(current date)
// @Param format query string false "Output format" Enums(json, xlsx)
// @Success 200 {object} domain.BalanceSheet
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Failed to generate report"
// @Security BearerAuth
// @Router /reports/balance-sheet [get]
func (h *reportingHandler) getBalanceSheet(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.AsOfParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindError(c, logger, "BalanceSheet query", err)
		return
	}
	asOf, err := asOfOrToday(params.AsOf)
	if err != nil {
		respondError(c, logger, err, "Failed to generate balance sheet")
		return
	}

	bs, err := h.reportingService.BalanceSheet(c.Request.Context(), asOf)
	if err != nil {
		respondError(c, logger, err, "Failed to generate balance sheet")
		return
	}

	logger.Info("Balance sheet generated", slog.Bool("balanced", bs.Balanced))
	if params.Format == formatXLSX {
		h.writeWorkbook(c, logger, fmt.Sprintf("balance-sheet-%s.xlsx", asOf.Format(dto.DateLayout)), func(w io.Writer) error {
			return export.BalanceSheet(w, bs)
		})
		return
	}
	c.JSON(http.StatusOK, bs)
}

// writeWorkbook renders into a buffer first so that a failed export can still answer with JSON.
func (h *reportingHandler) writeWorkbook(c *gin.Context, logger *slog.Logger, filename string, render func(io.Writer) error) {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		respondError(c, logger, err, "Failed to export report")
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, export.ContentType, buf.Bytes())
}
