package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"time"

	"github.com/SscSPs/estate_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/estate_ledger/internal/core/ports/services"
	"github.com/SscSPs/estate_ledger/internal/dto"
	"github.com/SscSPs/estate_ledger/internal/handlers"
	"github.com/SscSPs/estate_ledger/internal/platform/config"
	"github.com/SscSPs/estate_ledger/internal/utils/credentials"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
)

const (
	testJWTSecret  = "test-secret-key-that-is-long-enough"
	testIssuer     = "estate-ledger-test"
	testTriggerKey = "scheduler-trigger-key"
)

// handlerSuite wires the real router, auth middleware and request validation to mocked services.
type handlerSuite struct {
	suite.Suite
	router         *gin.Engine
	accounts       *MockAccountService
	journal        *MockJournalService
	billing        *MockBillingService
	payments       *MockPaymentService
	reconciliation *MockReconciliationService
	budgets        *MockBudgetService
	expenses       *MockExpenseService
	reporting      *MockReportingService
}

func (s *handlerSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	dto.RegisterValidators()

	hash, err := bcrypt.GenerateFromPassword([]byte(testTriggerKey), bcrypt.MinCost)
	s.Require().NoError(err)
	cfg := &config.Config{
		JWTSecret:             testJWTSecret,
		JWTIssuer:             testIssuer,
		BillingTriggerKeyHash: string(hash),
		IsProduction:          true,
	}

	s.accounts = new(MockAccountService)
	s.journal = new(MockJournalService)
	s.billing = new(MockBillingService)
	s.payments = new(MockPaymentService)
	s.reconciliation = new(MockReconciliationService)
	s.budgets = new(MockBudgetService)
	s.expenses = new(MockExpenseService)
	s.reporting = new(MockReportingService)

	s.router = gin.New()
	handlers.RegisterRoutes(s.router, cfg, &portssvc.ServiceContainer{
		Account:        s.accounts,
		Journal:        s.journal,
		Billing:        s.billing,
		Payment:        s.payments,
		Reconciliation: s.reconciliation,
		Budget:         s.budgets,
		Expense:        s.expenses,
		Reporting:      s.reporting,
	})
}

func (s *handlerSuite) TearDownTest() {
	s.accounts.AssertExpectations(s.T())
	s.journal.AssertExpectations(s.T())
	s.billing.AssertExpectations(s.T())
	s.payments.AssertExpectations(s.T())
	s.reconciliation.AssertExpectations(s.T())
	s.budgets.AssertExpectations(s.T())
	s.expenses.AssertExpectations(s.T())
	s.reporting.AssertExpectations(s.T())
}

// token creates a signed JWT for userID with the given role.
func (s *handlerSuite) token(userID string, role domain.Role) string {
	signed, err := credentials.IssueToken(testJWTSecret, testIssuer, userID, role, time.Hour)
	if err != nil {
		s.FailNow("Failed to sign test token", err.Error())
	}
	return signed
}

// do sends a request as actor. A nil body sends no content; any other value is JSON encoded
// unless it is already an io.Reader.
func (s *handlerSuite) do(method, url string, body any, actor domain.Actor) *httptest.ResponseRecorder {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case io.Reader:
		reader = b
	default:
		raw, err := json.Marshal(b)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, url, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if actor.UserID != "" {
		req.Header.Set("Authorization", "Bearer "+s.token(actor.UserID, actor.Role))
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *handlerSuite) decode(w *httptest.ResponseRecorder, v any) {
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

var (
	admin      = domain.Actor{UserID: "user-admin", Role: domain.RoleAdmin}
	accountant = domain.Actor{UserID: "user-accountant", Role: domain.RoleAccountant}
	viewer     = domain.Actor{UserID: "user-viewer", Role: domain.RoleViewer}
)
