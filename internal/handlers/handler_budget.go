package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/SscSPs/estate_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/estate_ledger/internal/core/ports/services"
	"github.com/SscSPs/estate_ledger/internal/dto"
	"github.com/SscSPs/estate_ledger/internal/middleware"
	"github.com/SscSPs/estate_ledger/internal/utils/mapping"
	"github.com/gin-gonic/gin"
)

// budgetHandler handles budgets and the approved-expense hand-off.
type budgetHandler struct {
	budgetService  portssvc.BudgetSvc
	expenseService portssvc.ExpenseSvc
}

func newBudgetHandler(bs portssvc.BudgetSvc, es portssvc.ExpenseSvc) *budgetHandler {
	return &budgetHandler{budgetService: bs, expenseService: es}
}

// registerBudgetRoutes registers budget and expense routes.
func registerBudgetRoutes(rg *gin.RouterGroup, bs portssvc.BudgetSvc, es portssvc.ExpenseSvc) {
	h := newBudgetHandler(bs, es)
	write := middleware.RequireRole(domain.RoleAccountant)

	budgets := rg.Group("/budgets")
	{
		budgets.GET("", h.listBudgets)
		budgets.GET("/:id", h.getBudget)
		budgets.POST("", write, h.createBudget)
		budgets.POST("/:id/activate", write, h.activateBudget)
		budgets.POST("/:id/close", write, h.closeBudget)
	}
	rg.POST("/expenses", write, h.recordExpense)
}

// createBudget godoc
// @Summary Create a draft budget
// @Tags budgets
// @Accept  json
// @Produce  json
// @Param   budget body dto.CreateBudgetRequest true "Budget"
// @Success 201 {object} domain.Budget
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Account not found"
// @Security BearerAuth
// @Router /budgets [post]
func (h *budgetHandler) createBudget(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, logger, "CreateBudget", err)
		return
	}
	actor, ok := requireActor(c, logger)
	if !ok {
		return
	}
	in, err := mapping.ToCreateBudgetInput(req)
	if err != nil {
		respondError(c, logger, err, "Failed to create budget")
		return
	}

	budget, err := h.budgetService.CreateBudget(c.Request.Context(), in, actor)
	if err != nil {
		respondError(c, logger, err, "Failed to create budget")
		return
	}

	logger.Info("Budget created", slog.String("budget_id", budget.BudgetID))
	c.JSON(http.StatusCreated, budget)
}

// getBudget godoc
// @Summary Get a budget
// @Tags budgets
// @Produce  json
// @Param   id path string true "Budget ID"
// @Success 200 {object} domain.Budget
// @Failure 404 {object} dto.ErrorResponse "Budget not found"
// @Security BearerAuth
// @Router /budgets/{id} [get]
func (h *budgetHandler) getBudget(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("budget_id", c.Param("id")))

	budget, err := h.budgetService.GetBudget(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve budget")
		return
	}
	c.JSON(http.StatusOK, budget)
}

// listBudgets godoc
// @Summary List budgets
// @Tags budgets
// @Produce  json
// @Param   status query string false "Budget status" Enums(DRAFT, ACTIVE, CLOSED)
// @Success 200 {array} domain.Budget
// @Failure 400 {object} dto.ErrorResponse "Invalid query parameters"
// @Security BearerAuth
// @Router /budgets [get]
func (h *budgetHandler) listBudgets(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListBudgetsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindError(c, logger, "ListBudgets query", err)
		return
	}
	var status *domain.BudgetStatus
	if params.Status != "" {
		s := domain.BudgetStatus(params.Status)
		status = &s
	}

	budgets, err := h.budgetService.ListBudgets(c.Request.Context(), status)
	if err != nil {
		respondError(c, logger, err, "Failed to list budgets")
		return
	}
	if budgets == nil {
		budgets = []domain.Budget{}
	}
	c.JSON(http.StatusOK, budgets)
}

// activateBudget godoc
// @Summary Activate a budget
// @Description Activates a draft budget. Active budgets may not overlap.
// @Tags budgets
// @Produce  json
// @Param   id path string true "Budget ID"
// @Success 200 {object} domain.Budget
// @Failure 404 {object} dto.ErrorResponse "Budget not found"
// @Failure 409 {object} dto.ErrorResponse "Budget not in DRAFT or overlaps an active budget"
// @Security BearerAuth
// @Router /budgets/{id}/activate [post]
func (h *budgetHandler) activateBudget(c *gin.Context) {
	h.transition(c, "activate", h.budgetService.ActivateBudget)
}

// closeBudget godoc
// @Summary Close a budget
// @Tags budgets
// @Produce  json
// @Param   id path string true "Budget ID"
// @Success 200 {object} domain.Budget
// @Failure 404 {object} dto.ErrorResponse "Budget not found"
// @Failure 409 {object} dto.ErrorResponse "Budget already closed"
// @Security BearerAuth
// @Router /budgets/{id}/close [post]
func (h *budgetHandler) closeBudget(c *gin.Context) {
	h.transition(c, "close", h.budgetService.CloseBudget)
}

func (h *budgetHandler) transition(c *gin.Context, action string, fn func(ctx context.Context, id string, actor domain.Actor) (*domain.Budget, error)) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("budget_id", c.Param("id")))
	actor, ok := requireActor(c, logger)
	if !ok {
		return
	}

	budget, err := fn(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		respondError(c, logger, err, "Failed to "+action+" budget")
		return
	}

	logger.Info("Budget status changed", slog.String("status", string(budget.Status)))
	c.JSON(http.StatusOK, budget)
}

// recordExpense godoc
// @Summary Record an approved expense
// @Description Posts the expense journal entry (splitting withholding tax) and tracks consumption against the active budget. Budget tracking never fails the request.
// @Tags expenses
// @Accept  json
// @Produce  json
// @Param   expense body dto.ApprovedExpenseRequest true "Approved expense"
// @Success 201 {object} domain.ExpenseRecordResult
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 503 {object} dto.ErrorResponse "Required system accounts missing"
// @Security BearerAuth
// @Router /expenses [post]
func (h *budgetHandler) recordExpense(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.ApprovedExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, logger, "ApprovedExpense", err)
		return
	}
	actor, ok := requireActor(c, logger)
	if !ok {
		return
	}
	expense, err := mapping.ToApprovedExpense(req)
	if err != nil {
		respondError(c, logger, err, "Failed to record expense")
		return
	}

	logger = logger.With(slog.String("expense_id", expense.ExpenseID))
	result, err := h.expenseService.RecordApprovedExpense(c.Request.Context(), expense, actor)
	if err != nil {
		respondError(c, logger, err, "Failed to record expense")
		return
	}

	logger.Info("Expense recorded", slog.Bool("budget_tracked", result.Budget.Tracked))
	c.JSON(http.StatusCreated, result)
}
