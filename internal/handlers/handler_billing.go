package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/SscSPs/estate_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/estate_ledger/internal/core/ports/services"
	"github.com/SscSPs/estate_ledger/internal/dto"
	"github.com/SscSPs/estate_ledger/internal/middleware"
	"github.com/SscSPs/estate_ledger/internal/utils/mapping"
	"github.com/gin-gonic/gin"
)

// billingHandler handles bills, payments against them and receivables reporting.
type billingHandler struct {
	billingService portssvc.BillingSvc
	paymentService portssvc.PaymentSvc
}

// newBillingHandler creates a new billingHandler.
func newBillingHandler(bs portssvc.BillingSvc, ps portssvc.PaymentSvc) *billingHandler {
	return &billingHandler{
		billingService: bs,
		paymentService: ps,
	}
}

// registerBillingRoutes registers routes for resident billing, bills and payments.
func registerBillingRoutes(rg *gin.RouterGroup, bs portssvc.BillingSvc, ps portssvc.PaymentSvc) {
	h := newBillingHandler(bs, ps)
	write := middleware.RequireRole(domain.RoleAccountant)

	rg.POST("/residents/:id/bills", write, h.generateBillForResident)

	bills := rg.Group("/bills")
	{
		bills.GET("", h.listBills)
		bills.GET("/:id", h.getBill)
		bills.POST("/:id/void", write, h.voidBill)
		bills.GET("/:id/payments", h.listPayments)
		bills.POST("/:id/payments", write, h.applyPayment)
	}
	rg.GET("/receivables/aging", h.getReceivablesAging)
}

// registerBillingTriggerRoutes registers the scheduler entry point for the batch billing run.
func registerBillingTriggerRoutes(rg *gin.RouterGroup, bs portssvc.BillingSvc) {
	h := newBillingHandler(bs, nil)
	rg.POST("/billing/run", h.runBilling)
}

// generateBillForResident godoc
// @Summary Generate a bill for a resident
// @Description Generates the resident's next membership-dues bill when one is due. Returns generated=false otherwise.
// @Tags bills
// @Produce  json
// @Param   id path string true "Resident ID"
// @Success 201 {object} dto.GenerateBillResponse "Bill generated"
// @Success 200 {object} dto.GenerateBillResponse "No bill due"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Resident not found"
// @Failure 503 {object} dto.ErrorResponse "Required system accounts missing"
// @Security BearerAuth
// @Router /residents/{id}/bills [post]
func (h *billingHandler) generateBillForResident(c *gin.Context) {
	residentID := c.Param("id")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("resident_id", residentID))
	actor, ok := requireActor(c, logger)
	if !ok {
		return
	}

	bill, err := h.billingService.GenerateBillForResident(c.Request.Context(), residentID, actor)
	if err != nil {
		respondError(c, logger, err, "Failed to generate bill")
		return
	}
	if bill == nil {
		logger.Info("No bill due for resident")
		c.JSON(http.StatusOK, dto.GenerateBillResponse{Generated: false})
		return
	}

	resp := dto.ToBillResponse(bill)
	logger.Info("Bill generated", slog.String("bill_id", bill.BillID), slog.String("invoice_number", bill.InvoiceNumber))
	c.JSON(http.StatusCreated, dto.GenerateBillResponse{Generated: true, Bill: &resp})
}

// runBilling godoc
// @Summary Run batch billing
// @Description Bills every eligible resident. Per-resident failures are reported, not raised. Authenticated with the X-Trigger-Key header.
// @Tags billing
// @Produce  json
// @Param   X-Trigger-Key header string true "Scheduler trigger key"
// @Success 200 {object} dto.BatchBillingResponse
// @Failure 401 {object} dto.ErrorResponse "Invalid trigger key"
// @Failure 409 {object} dto.ErrorResponse "Another billing run is in progress"
// @Failure 503 {object} dto.ErrorResponse "Required system accounts missing"
// @Router /internal/billing/run [post]
func (h *billingHandler) runBilling(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actor, ok := requireActor(c, logger)
	if !ok {
		return
	}

	logger.Info("Batch billing run triggered")
	result, err := h.billingService.GenerateBillsForAllEligible(c.Request.Context(), actor)
	if err != nil {
		respondError(c, logger, err, "Batch billing run failed")
		return
	}

	logger.Info("Batch billing run finished",
		slog.Int("success", result.Success),
		slog.Int("failed", result.Failed),
		slog.Int("skipped", result.Skipped),
	)
	c.JSON(http.StatusOK, dto.ToBatchBillingResponse(result))
}

// listBills godoc
// @Summary List bills
// @Description Lists bills ordered by due date. overdueAsOf restricts the list to bills overdue at that date.
// @Tags bills
// @Produce  json
// @Param   residentID query string false "Resident ID"
// @Param   status query string false "Bill status" Enums(PENDING, PARTIAL, PAID, VOID, CANCELLED)
// @Param   overdueAsOf query string false "Reference date for overdue bills (YYYY-MM-DD)"
// @Param   limit query int false "Page size" default(50)
// @Param   offset query int false "Offset" default(0)
// @Success 200 {array} dto.BillResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid query parameters"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Failed to list bills"
// @Security BearerAuth
// @Router /bills [get]
func (h *billingHandler) listBills(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListBillsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindError(c, logger, "ListBills query", err)
		return
	}
	filter, overdueAsOf, err := mapping.ToBillFilter(params)
	if err != nil {
		respondError(c, logger, err, "Failed to list bills")
		return
	}

	bills, err := h.billingService.ListBills(c.Request.Context(), filter, overdueAsOf)
	if err != nil {
		respondError(c, logger, err, "Failed to list bills")
		return
	}
	c.JSON(http.StatusOK, dto.ToBillResponses(bills))
}

// getBill godoc
// @Summary Get a bill
// @Tags bills
// @Produce  json
// @Param   id path string true "Bill ID"
// @Success 200 {object} dto.BillResponse
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Bill not found"
// @Security BearerAuth
// @Router /bills/{id} [get]
func (h *billingHandler) getBill(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("bill_id", c.Param("id")))

	bill, err := h.billingService.GetBill(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve bill")
		return
	}
	c.JSON(http.StatusOK, dto.ToBillResponse(bill))
}

// voidBill godoc
// @Summary Void a bill
// @Description Cancels an unpaid bill and voids its originating journal entry
// @Tags bills
// @Produce  json
// @Param   id path string true "Bill ID"
// @Success 200 {object} dto.BillResponse
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Bill not found"
// @Failure 409 {object} dto.ErrorResponse "Bill has payments or is already closed"
// @Security BearerAuth
// @Router /bills/{id}/void [post]
func (h *billingHandler) voidBill(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("bill_id", c.Param("id")))
	actor, ok := requireActor(c, logger)
	if !ok {
		return
	}

	bill, err := h.billingService.VoidBill(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		respondError(c, logger, err, "Failed to void bill")
		return
	}

	logger.Info("Bill voided")
	c.JSON(http.StatusOK, dto.ToBillResponse(bill))
}

// applyPayment godoc
// @Summary Apply a payment to a bill
// @Description Records a payment, moves the bill toward PAID and posts the revenue recognition entry. Overpayment is rejected.
// @Tags bills
// @Accept  json
// @Produce  json
// @Param   id path string true "Bill ID"
// @Param   payment body dto.ApplyPaymentRequest true "Payment details"
// @Success 201 {object} dto.PaymentResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Bill not found"
// @Failure 409 {object} dto.ErrorResponse "Bill is not open"
// @Failure 422 {object} dto.ErrorResponse "Payment exceeds bill balance"
// @Failure 503 {object} dto.ErrorResponse "Cash account not configured"
// @Security BearerAuth
// @Router /bills/{id}/payments [post]
func (h *billingHandler) applyPayment(c *gin.Context) {
	billID := c.Param("id")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("bill_id", billID))
	var req dto.ApplyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, logger, "ApplyPayment", err)
		return
	}
	actor, ok := requireActor(c, logger)
	if !ok {
		return
	}
	in, err := mapping.ToApplyPaymentInput(billID, req)
	if err != nil {
		respondError(c, logger, err, "Failed to apply payment")
		return
	}

	payment, err := h.paymentService.ApplyPaymentToBill(c.Request.Context(), in, actor)
	if err != nil {
		respondError(c, logger, err, "Failed to apply payment")
		return
	}

	logger.Info("Payment applied", slog.String("payment_id", payment.PaymentApplicationID), slog.String("amount", payment.AmountApplied.String()))
	c.JSON(http.StatusCreated, dto.ToPaymentResponse(payment))
}

// listPayments godoc
// @Summary List payments for a bill
// @Tags bills
// @Produce  json
// @Param   id path string true "Bill ID"
// @Success 200 {array} dto.PaymentResponse
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Bill not found"
// @Security BearerAuth
// @Router /bills/{id}/payments [get]
func (h *billingHandler) listPayments(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("bill_id", c.Param("id")))

	payments, err := h.paymentService.ListPaymentsForBill(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, logger, err, "Failed to list payments")
		return
	}
	c.JSON(http.StatusOK, dto.ToPaymentResponses(payments))
}

// getReceivablesAging godoc
// @Summary Receivables aging
// @Description Groups open bill balances by days past due, counting the configured grace period
// @Tags bills
// @Produce  json
// @Param   asOf query string false "Reference date (YYYY-MM-DD)" default(current date)
// @Success 200 {object} domain.ReceivablesAging
// @Failure 400 {object} dto.ErrorResponse "Invalid date"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Security BearerAuth
// @Router /receivables/aging [get]
func (h *billingHandler) getReceivablesAging(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.AgingParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindError(c, logger, "ReceivablesAging query", err)
		return
	}
	asOf, err := asOfOrToday(params.AsOf)
	if err != nil {
		respondError(c, logger, err, "Failed to build receivables aging")
		return
	}

	aging, err := h.paymentService.GetReceivablesAging(c.Request.Context(), asOf)
	if err != nil {
		respondError(c, logger, err, "Failed to build receivables aging")
		return
	}
	c.JSON(http.StatusOK, aging)
}

// asOfOrToday parses an optional report date, defaulting to the current day.
func asOfOrToday(value string) (time.Time, error) {
	if value == "" {
		return domain.DateOnly(time.Now()), nil
	}
	return mapping.ParseDate("asOf", value)
}
