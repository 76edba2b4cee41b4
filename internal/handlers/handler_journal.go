package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/estate_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/estate_ledger/internal/core/ports/services"
	"github.com/SscSPs/estate_ledger/internal/dto"
	"github.com/SscSPs/estate_ledger/internal/middleware"
	"github.com/SscSPs/estate_ledger/internal/utils/mapping"
	"github.com/gin-gonic/gin"
)

// journalHandler handles HTTP requests related to journal entries.
type journalHandler struct {
	journalService portssvc.JournalSvcFacade
}

// newJournalHandler creates a new journalHandler.
func newJournalHandler(journalService portssvc.JournalSvcFacade) *journalHandler {
	return &journalHandler{
		journalService: journalService,
	}
}

// registerJournalRoutes registers journal entry routes and the ledger consistency check.
func registerJournalRoutes(rg *gin.RouterGroup, journalService portssvc.JournalSvcFacade) {
	h := newJournalHandler(journalService)
	write := middleware.RequireRole(domain.RoleAccountant)

	entries := rg.Group("/journal-entries")
	{
		entries.GET("", h.listJournalEntries)
		entries.GET("/:id", h.getJournalEntry)
		entries.POST("", write, h.postJournalEntry)
		entries.POST("/:id/void", write, h.voidJournalEntry)
		entries.POST("/:id/reverse", write, h.reverseJournalEntry)
	}
	rg.GET("/ledger/verify", middleware.RequireRole(domain.RoleAccountant), h.verifyLedger)
}

// postJournalEntry godoc
// @Summary Post a manual journal entry
// @Description Validates and posts a balanced journal entry, updating every affected account balance atomically
// @Tags journal-entries
// @Accept  json
// @Produce  json
// @Param   entry body dto.PostJournalRequest true "Journal entry"
// @Success 201 {object} dto.JournalEntryResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid input or unbalanced entry"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Account not found"
// @Failure 500 {object} dto.ErrorResponse "Failed to post journal entry"
// @Security BearerAuth
// @Router /journal-entries [post]
func (h *journalHandler) postJournalEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.PostJournalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, logger, "PostJournalEntry", err)
		return
	}
	actor, ok := requireActor(c, logger)
	if !ok {
		return
	}
	in, err := mapping.ToPostJournalInput(req)
	if err != nil {
		respondError(c, logger, err, "Failed to post journal entry")
		return
	}

	logger.Info("Received request to post journal entry", slog.Int("line_count", len(in.Lines)))

	entry, err := h.journalService.PostJournalEntry(c.Request.Context(), in, actor)
	if err != nil {
		respondError(c, logger, err, "Failed to post journal entry")
		return
	}

	logger.Info("Journal entry posted", slog.String("journal_entry_id", entry.JournalEntryID), slog.String("entry_number", entry.EntryNumber))
	c.JSON(http.StatusCreated, dto.ToJournalEntryResponse(entry))
}

// getJournalEntry godoc
// @Summary Get a journal entry
// @Description Retrieves a journal entry with its lines
// @Tags journal-entries
// @Produce  json
// @Param   id path string true "Journal entry ID"
// @Success 200 {object} dto.JournalEntryResponse
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Journal entry not found"
// @Failure 500 {object} dto.ErrorResponse "Failed to retrieve journal entry"
// @Security BearerAuth
// @Router /journal-entries/{id} [get]
func (h *journalHandler) getJournalEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("journal_entry_id", c.Param("id")))

	entry, err := h.journalService.GetJournalEntry(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve journal entry")
		return
	}
	c.JSON(http.StatusOK, dto.ToJournalEntryResponse(entry))
}

// listJournalEntries godoc
// @Summary List journal entries
// @Description Lists journal entries newest first with token-based pagination. Lines are not included.
// @Tags journal-entries
// @Produce  json
// @Param   from query string false "Earliest entry date (YYYY-MM-DD)"
// @Param   to query string false "Latest entry date (YYYY-MM-DD)"
// @Param   referenceType query string false "Reference type" Enums(BILL, PAYMENT, EXPENSE, REVERSAL, MANUAL)
// @Param   status query string false "Status" Enums(POSTED, VOID)
// @Param   limit query int false "Page size" default(20)
// @Param   nextToken query string false "Token from the previous page"
// @Success 200 {object} dto.ListJournalEntriesResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid query parameters"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Failed to list journal entries"
// @Security BearerAuth
// @Router /journal-entries [get]
func (h *journalHandler) listJournalEntries(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListJournalEntriesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindError(c, logger, "ListJournalEntries query", err)
		return
	}
	listParams, err := mapping.ToJournalListParams(params)
	if err != nil {
		respondError(c, logger, err, "Failed to list journal entries")
		return
	}

	entries, next, err := h.journalService.ListJournalEntries(c.Request.Context(), listParams)
	if err != nil {
		respondError(c, logger, err, "Failed to list journal entries")
		return
	}
	c.JSON(http.StatusOK, dto.ToListJournalEntriesResponse(entries, next))
}

// voidJournalEntry godoc
// @Summary Void a journal entry
// @Description Reverses the balance effect of a posted entry and marks it VOID. Voiding twice is rejected.
// @Tags journal-entries
// @Produce  json
// @Param   id path string true "Journal entry ID"
// @Success 200 {object} dto.JournalEntryResponse
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Journal entry not found"
// @Failure 409 {object} dto.ErrorResponse "Journal entry already void"
// @Failure 500 {object} dto.ErrorResponse "Failed to void journal entry"
// @Security BearerAuth
// @Router /journal-entries/{id}/void [post]
func (h *journalHandler) voidJournalEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("journal_entry_id", c.Param("id")))
	actor, ok := requireActor(c, logger)
	if !ok {
		return
	}

	entry, err := h.journalService.VoidJournalEntry(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		respondError(c, logger, err, "Failed to void journal entry")
		return
	}

	logger.Info("Journal entry voided")
	c.JSON(http.StatusOK, dto.ToJournalEntryResponse(entry))
}

// reverseJournalEntry godoc
// @Summary Reverse a journal entry
// @Description Posts a new entry with every line flipped, referencing the original. An entry can be reversed once.
// @Tags journal-entries
// @Produce  json
// @Param   id path string true "Journal entry ID"
// @Success 201 {object} dto.JournalEntryResponse
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Journal entry not found"
// @Failure 409 {object} dto.ErrorResponse "Entry is void or already reversed"
// @Failure 500 {object} dto.ErrorResponse "Failed to reverse journal entry"
// @Security BearerAuth
// @Router /journal-entries/{id}/reverse [post]
func (h *journalHandler) reverseJournalEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("journal_entry_id", c.Param("id")))
	actor, ok := requireActor(c, logger)
	if !ok {
		return
	}

	reversal, err := h.journalService.ReverseJournalEntry(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		respondError(c, logger, err, "Failed to reverse journal entry")
		return
	}

	logger.Info("Journal entry reversed", slog.String("reversal_id", reversal.JournalEntryID))
	c.JSON(http.StatusCreated, dto.ToJournalEntryResponse(reversal))
}

// verifyLedger godoc
// @Summary Verify ledger consistency
// @Description Replays every posted line and compares the result with stored account balances
// @Tags journal-entries
// @Produce  json
// @Success 200 {object} dto.LedgerVerificationResponse
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Failed to verify ledger"
// @Security BearerAuth
// @Router /ledger/verify [get]
func (h *journalHandler) verifyLedger(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	discrepancies, err := h.journalService.VerifyLedger(c.Request.Context())
	if err != nil {
		respondError(c, logger, err, "Failed to verify ledger")
		return
	}
	if len(discrepancies) > 0 {
		logger.Error("Ledger balances disagree with posted lines", slog.Int("accounts", len(discrepancies)))
	}
	if discrepancies == nil {
		discrepancies = []domain.LedgerDiscrepancy{}
	}
	c.JSON(http.StatusOK, dto.LedgerVerificationResponse{Consistent: len(discrepancies) == 0, Discrepancies: discrepancies})
}
