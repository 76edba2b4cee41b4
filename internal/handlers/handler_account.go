package handlers

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/SscSPs/estate_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/estate_ledger/internal/core/ports/services"
	"github.com/SscSPs/estate_ledger/internal/dto"
	"github.com/SscSPs/estate_ledger/internal/middleware"
	"github.com/SscSPs/estate_ledger/internal/utils/mapping"
	"github.com/gin-gonic/gin"
)

// maxChartSize bounds an uploaded chart of accounts document.
const maxChartSize = 1 << 20

// accountHandler handles HTTP requests related to the chart of accounts.
type accountHandler struct {
	accountService portssvc.AccountSvcFacade
}

// newAccountHandler creates a new accountHandler.
func newAccountHandler(as portssvc.AccountSvcFacade) *accountHandler {
	return &accountHandler{
		accountService: as,
	}
}

// registerAccountRoutes registers routes related to accounts. Structural changes to the chart are
// reserved for administrators.
func registerAccountRoutes(rg *gin.RouterGroup, accountService portssvc.AccountSvcFacade) {
	h := newAccountHandler(accountService)

	accounts := rg.Group("/accounts")
	{
		accounts.GET("", h.listAccounts)
		accounts.GET("/required", h.checkRequiredAccounts)
		accounts.GET("/:id", h.getAccount)
		accounts.POST("", middleware.RequireRole(), h.createAccount)
		accounts.POST("/seed", middleware.RequireRole(), h.seedAccounts)
		accounts.PUT("/:id", middleware.RequireRole(domain.RoleAccountant), h.updateAccount)
		accounts.DELETE("/:id", middleware.RequireRole(), h.deleteAccount)
	}
}

// createAccount godoc
// @Summary Create a new account
// @Description Adds an account to the chart of accounts. Numbers of required system accounts are flagged automatically.
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   account body dto.CreateAccountRequest true "Account details"
// @Success 201 {object} dto.AccountResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid input format or validation error"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 409 {object} dto.ErrorResponse "Account number already exists"
// @Failure 500 {object} dto.ErrorResponse "Failed to create account"
// @Security BearerAuth
// @Router /accounts [post]
func (h *accountHandler) createAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, logger, "CreateAccount", err)
		return
	}
	actor, ok := requireActor(c, logger)
	if !ok {
		return
	}

	logger.Info("Received request to create account", slog.String("number", req.Number), slog.String("type", req.AccountType))

	account, err := h.accountService.CreateAccount(c.Request.Context(), mapping.ToCreateAccountInput(req), actor)
	if err != nil {
		respondError(c, logger, err, "Failed to create account")
		return
	}

	logger.Info("Account created successfully", slog.String("account_id", account.AccountID))
	c.JSON(http.StatusCreated, dto.ToAccountResponse(account))
}

// getAccount godoc
// @Summary Get an account by ID
// @Description Retrieves a specific account with its current balance
// @Tags accounts
// @Produce  json
// @Param   id path string true "Account ID"
// @Success 200 {object} dto.AccountResponse
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Account not found"
// @Failure 500 {object} dto.ErrorResponse "Failed to retrieve account"
// @Security BearerAuth
// @Router /accounts/{id} [get]
func (h *accountHandler) getAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("account_id", c.Param("id")))

	account, err := h.accountService.GetAccountByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve account")
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// listAccounts godoc
// @Summary List accounts
// @Description Lists the chart of accounts ordered by number
// @Tags accounts
// @Produce  json
// @Param   type query string false "Account type" Enums(ASSET, LIABILITY, EQUITY, REVENUE, EXPENSE)
// @Param   active query bool false "Filter by active flag"
// @Success 200 {object} dto.ListAccountsResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid query parameters"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Failed to list accounts"
// @Security BearerAuth
// @Router /accounts [get]
func (h *accountHandler) listAccounts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListAccountsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindError(c, logger, "ListAccounts query", err)
		return
	}

	accounts, err := h.accountService.ListAccounts(c.Request.Context(), mapping.ToAccountFilter(params))
	if err != nil {
		respondError(c, logger, err, "Failed to list accounts")
		return
	}

	logger.Debug("Accounts listed", slog.Int("count", len(accounts)))
	c.JSON(http.StatusOK, dto.ToListAccountResponse(accounts))
}

// updateAccount godoc
// @Summary Update an account
// @Description Updates mutable account fields. Number, type and balance cannot be changed.
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   id path string true "Account ID"
// @Param   account body dto.UpdateAccountRequest true "Fields to update"
// @Success 200 {object} dto.AccountResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Account not found"
// @Failure 409 {object} dto.ErrorResponse "System accounts cannot be deactivated"
// @Failure 500 {object} dto.ErrorResponse "Failed to update account"
// @Security BearerAuth
// @Router /accounts/{id} [put]
func (h *accountHandler) updateAccount(c *gin.Context) {
	accountID := c.Param("id")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("account_id", accountID))
	var req dto.UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, logger, "UpdateAccount", err)
		return
	}
	actor, ok := requireActor(c, logger)
	if !ok {
		return
	}

	account, err := h.accountService.UpdateAccount(c.Request.Context(), accountID, mapping.ToUpdateAccountInput(req), actor)
	if err != nil {
		respondError(c, logger, err, "Failed to update account")
		return
	}

	logger.Info("Account updated successfully")
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// deleteAccount godoc
// @Summary Deactivate an account
// @Description Deactivates an account. System accounts cannot be deleted.
// @Tags accounts
// @Param   id path string true "Account ID"
// @Success 204 "No Content"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Account not found"
// @Failure 409 {object} dto.ErrorResponse "System account"
// @Failure 500 {object} dto.ErrorResponse "Failed to delete account"
// @Security BearerAuth
// @Router /accounts/{id} [delete]
func (h *accountHandler) deleteAccount(c *gin.Context) {
	accountID := c.Param("id")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("account_id", accountID))
	actor, ok := requireActor(c, logger)
	if !ok {
		return
	}

	if err := h.accountService.DeleteAccount(c.Request.Context(), accountID, actor); err != nil {
		respondError(c, logger, err, "Failed to delete account")
		return
	}

	logger.Info("Account deactivated")
	c.Status(http.StatusNoContent)
}

// checkRequiredAccounts godoc
// @Summary Check required system accounts
// @Description Reports whether every required system account is provisioned and active
// @Tags accounts
// @Produce  json
// @Success 204 "All required accounts present"
// @Failure 503 {object} dto.ErrorResponse "Missing system accounts"
// @Security BearerAuth
// @Router /accounts/required [get]
func (h *accountHandler) checkRequiredAccounts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	if err := h.accountService.EnsureRequiredAccounts(c.Request.Context()); err != nil {
		respondError(c, logger, err, "Failed to check required accounts")
		return
	}
	c.Status(http.StatusNoContent)
}

// seedAccounts godoc
// @Summary Seed the chart of accounts
// @Description Creates or updates accounts from a YAML chart of accounts document
// @Tags accounts
// @Accept  application/x-yaml
// @Produce  json
// @Success 200 {object} dto.SeedAccountsResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid document"
// @Failure 409 {object} dto.ErrorResponse "Document conflicts with existing accounts"
// @Security BearerAuth
// @Router /accounts/seed [post]
func (h *accountHandler) seedAccounts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actor, ok := requireActor(c, logger)
	if !ok {
		return
	}
	doc, err := io.ReadAll(io.LimitReader(c.Request.Body, maxChartSize))
	if err != nil {
		bindError(c, logger, "chart of accounts", err)
		return
	}

	created, updated, err := h.accountService.SeedChartOfAccounts(c.Request.Context(), doc, actor)
	if err != nil {
		respondError(c, logger, err, "Failed to seed chart of accounts")
		return
	}

	logger.Info("Chart of accounts seeded", slog.Int("created", created), slog.Int("updated", updated))
	c.JSON(http.StatusOK, dto.SeedAccountsResponse{Created: created, Updated: updated})
}
