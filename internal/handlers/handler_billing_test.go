package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SscSPs/estate_ledger/internal/apperrors"
	"github.com/SscSPs/estate_ledger/internal/core/domain"
	"github.com/SscSPs/estate_ledger/internal/dto"
	"github.com/SscSPs/estate_ledger/internal/middleware"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type BillingHandlerTestSuite struct {
	handlerSuite
}

func pendingBill() *domain.Bill {
	return &domain.Bill{
		BillID:        "bill-1",
		ResidentID:    "res-1",
		InvoiceNumber: "INV-2024-0001",
		Amount:        decimal.NewFromInt(30000),
		TotalPaid:     decimal.Zero,
		Balance:       decimal.NewFromInt(30000),
		PaymentStatus: domain.Unpaid,
		Status:        domain.BillPending,
		PeriodStart:   time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:     time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
		DueDate:       time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
	}
}

func (s *BillingHandlerTestSuite) TestGenerateBill_Created() {
	s.billing.On("GenerateBillForResident", mock.Anything, "res-1", accountant).Return(pendingBill(), nil).Once()

	w := s.do(http.MethodPost, "/api/v1/residents/res-1/bills", nil, accountant)

	s.Equal(http.StatusCreated, w.Code)
	var resp dto.GenerateBillResponse
	s.decode(w, &resp)
	s.True(resp.Generated)
	s.Require().NotNil(resp.Bill)
	s.Equal("INV-2024-0001", resp.Bill.InvoiceNumber)
	s.Equal("2024-03-31", resp.Bill.DueDate)
}

func (s *BillingHandlerTestSuite) TestGenerateBill_NotDue() {
	s.billing.On("GenerateBillForResident", mock.Anything, "res-1", accountant).Return(nil, nil).Once()

	w := s.do(http.MethodPost, "/api/v1/residents/res-1/bills", nil, accountant)

	s.Equal(http.StatusOK, w.Code)
	var resp dto.GenerateBillResponse
	s.decode(w, &resp)
	s.False(resp.Generated)
	s.Nil(resp.Bill)
}

func (s *BillingHandlerTestSuite) TestGenerateBill_MissingSystemAccounts() {
	s.billing.On("GenerateBillForResident", mock.Anything, "res-1", accountant).
		Return(nil, apperrors.NewConfigurationError("required system accounts are not provisioned", "1100")).Once()

	w := s.do(http.MethodPost, "/api/v1/residents/res-1/bills", nil, accountant)

	s.Equal(http.StatusServiceUnavailable, w.Code)
	var resp dto.ErrorResponse
	s.decode(w, &resp)
	s.True(resp.Fatal)
	s.Equal([]string{"1100"}, resp.Missing)
}

func (s *BillingHandlerTestSuite) TestBillingRun_TriggerKey() {
	s.billing.On("GenerateBillsForAllEligible", mock.Anything, domain.SystemActor).
		Return(&domain.BatchBillingResult{Success: 2, Skipped: 1, Bills: []domain.Bill{*pendingBill()}}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/internal/billing/run", nil)
	req.Header.Set(middleware.TriggerKeyHeader, testTriggerKey)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusOK, w.Code, w.Body.String())
	var resp dto.BatchBillingResponse
	s.decode(w, &resp)
	s.Equal(2, resp.Success)
	s.Equal(1, resp.Skipped)
	s.Len(resp.Bills, 1)
}

func (s *BillingHandlerTestSuite) TestBillingRun_WrongKey() {
	req := httptest.NewRequest(http.MethodPost, "/internal/billing/run", nil)
	req.Header.Set(middleware.TriggerKeyHeader, "guess")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *BillingHandlerTestSuite) TestBillingRun_AlreadyRunning() {
	s.billing.On("GenerateBillsForAllEligible", mock.Anything, domain.SystemActor).
		Return(nil, apperrors.ErrConflict).Once()

	req := httptest.NewRequest(http.MethodPost, "/internal/billing/run", nil)
	req.Header.Set(middleware.TriggerKeyHeader, testTriggerKey)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusConflict, w.Code)
}

func (s *BillingHandlerTestSuite) TestApplyPayment_Success() {
	s.payments.On("ApplyPaymentToBill", mock.Anything, mock.MatchedBy(func(in domain.ApplyPaymentInput) bool {
		return in.BillID == "bill-1" &&
			in.Source == domain.ApplicationManual &&
			in.Amount.Equal(decimal.NewFromInt(15000)) &&
			in.PaymentDate.Equal(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC))
	}), accountant).Return(&domain.PaymentApplication{
		PaymentApplicationID: "pay-1",
		BillID:               "bill-1",
		AmountApplied:        decimal.NewFromInt(15000),
		ApplicationType:      domain.ApplicationManual,
	}, nil).Once()

	w := s.do(http.MethodPost, "/api/v1/bills/bill-1/payments", map[string]any{
		"amount":      "15000.00",
		"paymentDate": "2024-03-05",
		"reference":   "TRX-77",
	}, accountant)

	s.Equal(http.StatusCreated, w.Code, w.Body.String())
}

func (s *BillingHandlerTestSuite) TestApplyPayment_Overpayment() {
	s.payments.On("ApplyPaymentToBill", mock.Anything, mock.Anything, accountant).
		Return(nil, apperrors.ErrOverpayment).Once()

	w := s.do(http.MethodPost, "/api/v1/bills/bill-1/payments", map[string]any{
		"amount":      "40000",
		"paymentDate": "2024-03-05",
	}, accountant)

	s.Equal(http.StatusBadRequest, w.Code)
	var body dto.ErrorResponse
	s.decode(w, &body)
	s.Contains(body.Error, apperrors.ErrOverpayment.Error())
	s.False(body.Fatal)
}

func (s *BillingHandlerTestSuite) TestApplyPayment_NonPositiveAmount() {
	w := s.do(http.MethodPost, "/api/v1/bills/bill-1/payments", map[string]any{
		"amount":      "0",
		"paymentDate": "2024-03-05",
	}, accountant)

	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *BillingHandlerTestSuite) TestListBills_Overdue() {
	asOf := time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC)
	s.billing.On("ListBills", mock.Anything, mock.MatchedBy(func(f domain.BillFilter) bool {
		return f.ResidentID != nil && *f.ResidentID == "res-1" && f.Limit == 50
	}), mock.MatchedBy(func(t *time.Time) bool {
		return t != nil && t.Equal(asOf)
	})).Return([]domain.Bill{*pendingBill()}, nil).Once()

	w := s.do(http.MethodGet, "/api/v1/bills?residentID=res-1&overdueAsOf=2024-04-10", nil, viewer)

	s.Equal(http.StatusOK, w.Code, w.Body.String())
	var resp []dto.BillResponse
	s.decode(w, &resp)
	s.Len(resp, 1)
}

func (s *BillingHandlerTestSuite) TestVoidBill_HasPayments() {
	s.billing.On("VoidBill", mock.Anything, "bill-1", accountant).Return(nil, apperrors.ErrConflict).Once()

	w := s.do(http.MethodPost, "/api/v1/bills/bill-1/void", nil, accountant)
	s.Equal(http.StatusConflict, w.Code)
}

func (s *BillingHandlerTestSuite) TestReceivablesAging() {
	asOf := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	s.payments.On("GetReceivablesAging", mock.Anything, mock.MatchedBy(asOf.Equal)).
		Return(&domain.ReceivablesAging{AsOf: asOf, GraceDays: 5, Total: decimal.NewFromInt(30000)}, nil).Once()

	w := s.do(http.MethodGet, "/api/v1/receivables/aging?asOf=2024-05-01", nil, viewer)

	s.Equal(http.StatusOK, w.Code)
	var resp domain.ReceivablesAging
	s.decode(w, &resp)
	s.True(resp.Total.Equal(decimal.NewFromInt(30000)))
}

func TestBillingHandler(t *testing.T) {
	suite.Run(t, new(BillingHandlerTestSuite))
}
