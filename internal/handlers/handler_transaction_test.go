package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"

	"github.com/SscSPs/erp_finance_ledger/internal/adapters/database/memory"
	"github.com/SscSPs/erp_finance_ledger/internal/core/domain"
	"github.com/SscSPs/erp_finance_ledger/internal/core/services"
	"github.com/SscSPs/erp_finance_ledger/internal/dto"
	"github.com/SscSPs/erp_finance_ledger/internal/handlers"
	"github.com/SscSPs/erp_finance_ledger/internal/middleware"
	"github.com/SscSPs/erp_finance_ledger/internal/platform/config"
	"github.com/SscSPs/erp_finance_ledger/internal/utils"
	"github.com/SscSPs/erp_finance_ledger/internal/validator"
)

const (
	testSecret = "handler-test-secret"
	testIssuer = "erp-finance-ledger"
)

type TransactionHandlerTestSuite struct {
	suite.Suite
	router *gin.Engine
	token  string
}

func (suite *TransactionHandlerTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	validator.Register()
}

func (suite *TransactionHandlerTestSuite) SetupTest() {
	suite.setupRouter(handlers.RouteOptions{})
}

func (suite *TransactionHandlerTestSuite) setupRouter(opts handlers.RouteOptions) {
	cfg := &config.Config{
		IsProduction:       true,
		JWTSecret:          testSecret,
		JWTIssuer:          testIssuer,
		PersistenceTimeout: time.Second,
	}
	repos := memory.NewRepositoryProvider([]domain.Account{
		{AccountID: "CASH-01", Name: "Kas", AccountType: domain.Asset, IsActive: true},
		{AccountID: "BANK-01", Name: "Bank", AccountType: domain.Asset, IsActive: true},
		{AccountID: "SALES-01", Name: "Penjualan", AccountType: domain.Revenue, IsActive: true},
	})

	suite.router = gin.New()
	handlers.RegisterRoutes(suite.router, cfg, services.NewServiceContainer(cfg, repos), opts)

	token, err := utils.GenerateJWT("user-finance-1", testSecret, time.Hour, testIssuer)
	suite.Require().NoError(err)
	suite.token = token
}

func (suite *TransactionHandlerTestSuite) do(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		suite.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if suite.token != "" {
		req.Header.Set("Authorization", "Bearer "+suite.token)
	}
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *TransactionHandlerTestSuite) decode(w *httptest.ResponseRecorder, into any) {
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), into), w.Body.String())
}

func expenseBody(amount string) map[string]any {
	return map[string]any{
		"type":        "expense",
		"category":    "Material",
		"amount":      amount,
		"date":        "2024-05-01",
		"accountFrom": "CASH-01",
		"description": "Pembelian material proyek",
	}
}

// postedTransaction creates a record and drives it to posted through the API.
func (suite *TransactionHandlerTestSuite) postedTransaction(amount string) string {
	w := suite.do(http.MethodPost, "/api/v1/transactions", expenseBody(amount))
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var created dto.TransactionResponse
	suite.decode(w, &created)

	for _, step := range []string{"submit", "approve", "post"} {
		w = suite.do(http.MethodPost, "/api/v1/transactions/"+created.TransactionID+"/"+step, nil)
		suite.Require().Equal(http.StatusOK, w.Code, step+": "+w.Body.String())
	}
	return created.TransactionID
}

func (suite *TransactionHandlerTestSuite) TestCreateTransaction() {
	w := suite.do(http.MethodPost, "/api/v1/transactions", expenseBody("1500000"))

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.TransactionResponse
	suite.decode(w, &resp)
	suite.NotEmpty(resp.TransactionID)
	suite.Equal(domain.StatusDraft, resp.Status)
	suite.Equal("2024-05-01", resp.Date)
	suite.Equal("user-finance-1", resp.CreatedBy)
	suite.Equal("1500000", resp.Amount.String())
}

func (suite *TransactionHandlerTestSuite) TestCreateTransaction_ValidationFields() {
	body := expenseBody("-10")
	body["description"] = "beli"

	w := suite.do(http.MethodPost, "/api/v1/transactions", body)

	suite.Equal(http.StatusBadRequest, w.Code)
	var resp dto.ErrorResponse
	suite.decode(w, &resp)
	suite.Equal("Validation failed", resp.Error)
	suite.Equal("amount must be greater than 0", resp.Fields["amount"])
	suite.Equal("minimum 5 characters", resp.Fields["description"])
}

func (suite *TransactionHandlerTestSuite) TestCreateTransaction_BindingFields() {
	body := expenseBody("100")
	body["type"] = "refund"

	w := suite.do(http.MethodPost, "/api/v1/transactions", body)

	suite.Equal(http.StatusBadRequest, w.Code)
	var resp dto.ErrorResponse
	suite.decode(w, &resp)
	suite.Equal("type must be one of income, expense, transfer", resp.Fields["type"])
}

func (suite *TransactionHandlerTestSuite) TestCreateTransaction_MalformedJSON() {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions", bytes.NewBufferString("{"))
	req.Header.Set("Authorization", "Bearer "+suite.token)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Contains(w.Body.String(), "Invalid request format")
}

func (suite *TransactionHandlerTestSuite) TestRequiresBearerToken() {
	suite.token = ""
	w := suite.do(http.MethodGet, "/api/v1/transactions", nil)
	suite.Equal(http.StatusUnauthorized, w.Code)

	token, err := utils.GenerateJWT("user-finance-1", testSecret, time.Hour, "someone-else")
	suite.Require().NoError(err)
	suite.token = token
	w = suite.do(http.MethodGet, "/api/v1/transactions", nil)
	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.Contains(w.Body.String(), "Token issuer not accepted")
}

func (suite *TransactionHandlerTestSuite) TestGetTransaction_NotFound() {
	w := suite.do(http.MethodGet, "/api/v1/transactions/does-not-exist", nil)

	suite.Equal(http.StatusNotFound, w.Code)
	suite.Contains(w.Body.String(), "does-not-exist")
}

func (suite *TransactionHandlerTestSuite) TestVoidTransaction() {
	id := suite.postedTransaction("2000000")

	w := suite.do(http.MethodPost, "/api/v1/transactions/"+id+"/void", map[string]any{
		"reason":   "Transaksi tercatat dua kali",
		"voidedBy": "someone-else",
	})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var resp dto.TransactionResponse
	suite.decode(w, &resp)
	suite.Equal(domain.StatusVoided, resp.Status)
	suite.Equal("user-finance-1", *resp.VoidedBy)

	w = suite.do(http.MethodPost, "/api/v1/transactions/"+id+"/void", map[string]any{"reason": "Transaksi tercatat dua kali"})
	suite.Equal(http.StatusConflict, w.Code)
	suite.Contains(w.Body.String(), "transaction is already voided")
}

func (suite *TransactionHandlerTestSuite) TestVoidTransaction_ShortReason() {
	id := suite.postedTransaction("2000000")

	w := suite.do(http.MethodPost, "/api/v1/transactions/"+id+"/void", map[string]any{"reason": "salah"})

	suite.Equal(http.StatusBadRequest, w.Code)
	var resp dto.ErrorResponse
	suite.decode(w, &resp)
	suite.Equal("minimum 10 characters", resp.Fields["reason"])
}

func (suite *TransactionHandlerTestSuite) TestReverseTransaction() {
	id := suite.postedTransaction("50000000")

	w := suite.do(http.MethodPost, "/api/v1/transactions/"+id+"/reverse", map[string]any{
		"reason":        "Nilai salah, seharusnya 30 juta",
		"correctedData": map[string]any{"amount": "30000000"},
	})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var resp dto.ReverseTransactionResponse
	suite.decode(w, &resp)
	suite.Equal(domain.StatusReversed, resp.Original.Status)
	suite.True(resp.Original.IsReversed)
	suite.Equal(id, *resp.ReversalEntry.ReversalOf)
	suite.Equal(id, *resp.CorrectionEntry.CorrectionOf)
	suite.Equal("-30000000", resp.BalanceEffect.Net.String())

	w = suite.do(http.MethodGet, "/api/v1/transactions/"+resp.CorrectionEntry.TransactionID+"/lineage", nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var lineage dto.LineageResponse
	suite.decode(w, &lineage)
	suite.Equal(id, lineage.Original.TransactionID)
	suite.NotNil(lineage.ReversalEntry)
	suite.NotNil(lineage.CorrectionEntry)

	w = suite.do(http.MethodGet, "/api/v1/accounts/CASH-01/balance", nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var balance dto.AccountBalanceResponse
	suite.decode(w, &balance)
	suite.Equal("-30000000", balance.Balance.String())
	suite.Equal(3, balance.EntryCount)
}

func (suite *TransactionHandlerTestSuite) TestReverseTransaction_FieldKeysAreNested() {
	id := suite.postedTransaction("50000000")

	// Rejected while binding.
	w := suite.do(http.MethodPost, "/api/v1/transactions/"+id+"/reverse", map[string]any{
		"reason":        "Nilai salah, seharusnya 30 juta",
		"correctedData": map[string]any{"amount": "30000000", "type": "refund"},
	})
	suite.Require().Equal(http.StatusBadRequest, w.Code, w.Body.String())
	var resp dto.ErrorResponse
	suite.decode(w, &resp)
	suite.Equal("type must be one of income, expense, transfer", resp.Fields["correctedData.type"])
	suite.NotContains(resp.Fields, "type")

	// Rejected by the service.
	w = suite.do(http.MethodPost, "/api/v1/transactions/"+id+"/reverse", map[string]any{
		"reason":        "Nilai salah, seharusnya 30 juta",
		"correctedData": map[string]any{"amount": "0.00001"},
	})
	suite.Require().Equal(http.StatusBadRequest, w.Code, w.Body.String())
	resp = dto.ErrorResponse{}
	suite.decode(w, &resp)
	suite.Equal("amount must have at most 4 decimal places", resp.Fields["correctedData.amount"])
}

func (suite *TransactionHandlerTestSuite) TestReverseTransaction_DraftConflicts() {
	w := suite.do(http.MethodPost, "/api/v1/transactions", expenseBody("100000"))
	suite.Require().Equal(http.StatusCreated, w.Code)
	var created dto.TransactionResponse
	suite.decode(w, &created)

	w = suite.do(http.MethodPost, "/api/v1/transactions/"+created.TransactionID+"/reverse", map[string]any{
		"reason":        "Nilai salah, harus dikoreksi",
		"correctedData": map[string]any{"amount": "90000"},
	})

	suite.Equal(http.StatusConflict, w.Code)
	suite.Contains(w.Body.String(), "expected posted")
}

func (suite *TransactionHandlerTestSuite) TestUpdateAndDelete_LockedAfterApproval() {
	id := suite.postedTransaction("100000")

	w := suite.do(http.MethodPatch, "/api/v1/transactions/"+id, map[string]any{"amount": "1"})
	suite.Equal(http.StatusConflict, w.Code)

	w = suite.do(http.MethodDelete, "/api/v1/transactions/"+id, nil)
	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *TransactionHandlerTestSuite) TestDeleteDraft() {
	w := suite.do(http.MethodPost, "/api/v1/transactions", expenseBody("100000"))
	suite.Require().Equal(http.StatusCreated, w.Code)
	var created dto.TransactionResponse
	suite.decode(w, &created)

	w = suite.do(http.MethodDelete, "/api/v1/transactions/"+created.TransactionID, nil)
	suite.Equal(http.StatusNoContent, w.Code)

	w = suite.do(http.MethodGet, "/api/v1/transactions/"+created.TransactionID, nil)
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *TransactionHandlerTestSuite) TestListTransactions() {
	suite.postedTransaction("100000")
	suite.postedTransaction("200000")

	w := suite.do(http.MethodGet, "/api/v1/transactions?status=posted&limit=1", nil)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var page dto.ListTransactionsResponse
	suite.decode(w, &page)
	suite.Len(page.Transactions, 1)
	suite.NotNil(page.NextToken)

	w = suite.do(http.MethodGet, "/api/v1/transactions?startDate=2024-05-10&endDate=2024-05-01", nil)
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Contains(w.Body.String(), "endDate must not be before startDate")
}

func (suite *TransactionHandlerTestSuite) TestSummary() {
	suite.postedTransaction("4000")

	w := suite.do(http.MethodGet, "/api/v1/transactions/summary?startDate=2024-05-01&endDate=2024-05-31", nil)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var summary domain.TransactionSummary
	suite.decode(w, &summary)
	suite.Equal("4000", summary.TotalExpense.String())
	suite.Equal("-4000", summary.NetCashFlow.String())
	suite.Equal(1, summary.EntryCount)
}

func (suite *TransactionHandlerTestSuite) TestAccountBalance_UnknownAccount() {
	w := suite.do(http.MethodGet, "/api/v1/accounts/NOPE-01/balance", nil)
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *TransactionHandlerTestSuite) TestCorrectionsAreRateLimited() {
	limiter, err := middleware.NewRateLimiter("1-M", "")
	suite.Require().NoError(err)
	suite.setupRouter(handlers.RouteOptions{CorrectionLimiter: limiter})

	id := suite.postedTransaction("100000")
	body := map[string]any{"reason": "Transaksi tercatat dua kali"}

	w := suite.do(http.MethodPost, "/api/v1/transactions/"+id+"/void", body)
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal("1", w.Header().Get("X-RateLimit-Limit"))

	w = suite.do(http.MethodPost, "/api/v1/transactions/"+id+"/void", body)
	suite.Equal(http.StatusTooManyRequests, w.Code)
}

func TestTransactionHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(TransactionHandlerTestSuite))
}
