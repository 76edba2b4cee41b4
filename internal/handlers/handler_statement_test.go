package handlers_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SscSPs/estate_ledger/internal/apperrors"
	"github.com/SscSPs/estate_ledger/internal/core/domain"
	"github.com/SscSPs/estate_ledger/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type StatementHandlerTestSuite struct {
	handlerSuite
}

func reconciliationResult() *domain.ReconciliationResult {
	return &domain.ReconciliationResult{
		Statement: domain.BankStatement{StatementID: "stmt-1", BankName: "First Bank", AccountNumber: "0123456789"},
		Summary: domain.ReconciliationSummary{
			TotalEntries:    2,
			Matched:         1,
			Unmatched:       1,
			TotalReconciled: decimal.NewFromInt(30000),
		},
	}
}

func (s *StatementHandlerTestSuite) multipartRequest(filename, content string) *http.Request {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	s.Require().NoError(mw.WriteField("bankName", "First Bank"))
	s.Require().NoError(mw.WriteField("accountNumber", "0123456789"))
	s.Require().NoError(mw.WriteField("statementDate", "2024-03-31"))
	fw, err := mw.CreateFormFile("file", filename)
	s.Require().NoError(err)
	_, err = fw.Write([]byte(content))
	s.Require().NoError(err)
	s.Require().NoError(mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bank-statements", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+s.token(accountant.UserID, accountant.Role))
	return req
}

func (s *StatementHandlerTestSuite) TestReconcile_JSON() {
	s.reconciliation.On("ReconcileStatement", mock.Anything,
		mock.MatchedBy(func(m domain.StatementMeta) bool {
			return m.BankName == "First Bank" && m.StatementDate.Equal(time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC))
		}),
		mock.MatchedBy(func(entries []domain.RawStatementEntry) bool {
			return len(entries) == 2 && entries[0].Reference == "INV-2024-0001" && entries[1].Amount.IsNegative()
		}),
		accountant,
	).Return(reconciliationResult(), nil).Once()

	w := s.do(http.MethodPost, "/api/v1/bank-statements", map[string]any{
		"bankName":      "First Bank",
		"accountNumber": "0123456789",
		"statementDate": "2024-03-31",
		"entries": []map[string]any{
			{"date": "2024-03-05", "reference": "INV-2024-0001", "amount": "30000.00", "description": "Dues"},
			{"date": "2024-03-06", "reference": "CHG", "amount": "-50.00", "description": "Bank charge"},
		},
	}, accountant)

	s.Equal(http.StatusCreated, w.Code, w.Body.String())
	var resp dto.ReconciliationResponse
	s.decode(w, &resp)
	s.Equal("stmt-1", resp.Statement.StatementID)
	s.Equal(1, resp.Summary.Matched)
}

func (s *StatementHandlerTestSuite) TestReconcile_MissingEntries() {
	w := s.do(http.MethodPost, "/api/v1/bank-statements", map[string]any{
		"bankName":      "First Bank",
		"accountNumber": "0123456789",
		"statementDate": "2024-03-31",
	}, accountant)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *StatementHandlerTestSuite) TestReconcile_CSVUpload() {
	csv := "Date,Description,Reference,Amount\n" +
		"2024-03-05,Dues March,INV-2024-0001,\"30,000.00\"\n" +
		"2024-03-07,Unknown transfer,XYZ,1500\n"
	s.reconciliation.On("ReconcileStatement", mock.Anything,
		mock.MatchedBy(func(m domain.StatementMeta) bool { return m.AccountNumber == "0123456789" }),
		mock.MatchedBy(func(entries []domain.RawStatementEntry) bool {
			return len(entries) == 2 && entries[0].Amount.Equal(decimal.NewFromInt(30000))
		}),
		accountant,
	).Return(reconciliationResult(), nil).Once()

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, s.multipartRequest("march.csv", csv))

	s.Equal(http.StatusCreated, w.Code, w.Body.String())
}

func (s *StatementHandlerTestSuite) TestReconcile_UnsupportedFile() {
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, s.multipartRequest("march.pdf", "%PDF"))
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *StatementHandlerTestSuite) TestReconcile_CashAccountNotConfigured() {
	s.reconciliation.On("ReconcileStatement", mock.Anything, mock.Anything, mock.Anything, accountant).
		Return(nil, apperrors.NewConfigurationError("no cash account for statement account 0123456789", "DEFAULT_CASH_ACCOUNT")).Once()

	w := s.do(http.MethodPost, "/api/v1/bank-statements", map[string]any{
		"bankName":      "First Bank",
		"accountNumber": "0123456789",
		"statementDate": "2024-03-31",
		"entries":       []map[string]any{{"date": "2024-03-05", "reference": "INV-1", "amount": "10"}},
	}, accountant)

	s.Equal(http.StatusServiceUnavailable, w.Code)
}

func (s *StatementHandlerTestSuite) TestMatchStatementEntry() {
	amount := decimal.NewFromInt(1500)
	s.reconciliation.On("MatchStatementEntry", mock.Anything, "entry-2", "bill-9",
		mock.MatchedBy(func(a *decimal.Decimal) bool { return a != nil && a.Equal(amount) }),
		accountant,
	).Return(&domain.BankStatementEntry{EntryID: "entry-2", Status: domain.EntryReconciled}, nil).Once()

	w := s.do(http.MethodPost, "/api/v1/bank-statements/entries/entry-2/match", map[string]any{
		"billID": "bill-9",
		"amount": "1500",
	}, accountant)

	s.Equal(http.StatusOK, w.Code, w.Body.String())
}

func (s *StatementHandlerTestSuite) TestListStatements() {
	s.reconciliation.On("ListStatements", mock.Anything, 20, 0).Return(nil, nil).Once()

	w := s.do(http.MethodGet, "/api/v1/bank-statements", nil, viewer)

	s.Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"statements":[]}`, w.Body.String())
}

func TestStatementHandler(t *testing.T) {
	suite.Run(t, new(StatementHandlerTestSuite))
}
