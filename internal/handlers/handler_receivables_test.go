package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SscSPs/erp_ledger/internal/core/domain"
	"github.com/SscSPs/erp_ledger/internal/core/services"
	"github.com/SscSPs/erp_ledger/internal/handlers"
	"github.com/SscSPs/erp_ledger/internal/middleware"
	"github.com/SscSPs/erp_ledger/internal/platform/config"
	"github.com/SscSPs/erp_ledger/internal/repositories/database/memory"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

// ReceivablesFlowTestSuite drives the full API over the in-memory store.
type ReceivablesFlowTestSuite struct {
	suite.Suite
	router *gin.Engine
	token  string
	today  time.Time
}

func (suite *ReceivablesFlowTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	std := domain.DefaultStandardAccounts()
	cfg := &config.Config{
		StoreDriver:         config.StoreDriverMemory,
		JWTSecret:           "flow-secret",
		JWTIssuer:           "erp-ledger-test",
		AccountCash:         std.Cash,
		AccountReceivable:   std.AccountsReceivable,
		AccountInventory:    std.Inventory,
		AccountPayable:      std.AccountsPayable,
		AccountRevenue:      std.Revenue,
		AccountSalesReturns: std.SalesReturns,
		AccountCOGS:         std.COGS,
		AccountBadDebt:      std.BadDebt,
	}
	container := services.NewServiceContainer(cfg, memory.NewRepositoryProvider())

	suite.router = gin.New()
	handlers.RegisterRoutes(suite.router, cfg, container)

	token, err := middleware.IssueToken(cfg.JWTSecret, cfg.JWTIssuer, "clerk-1", time.Hour)
	suite.Require().NoError(err)
	suite.token = token
	suite.today = domain.DateOnly(time.Now())

	suite.call(http.MethodPost, "/api/v1/accounts/seed", nil, http.StatusOK, nil)
}

func (suite *ReceivablesFlowTestSuite) date(offset int) string {
	return suite.today.AddDate(0, 0, offset).Format("2006-01-02")
}

// call sends body as JSON, checks the status and decodes the reply into out when given.
func (suite *ReceivablesFlowTestSuite) call(method, path string, body any, wantStatus int, out any) {
	var buf bytes.Buffer
	if body != nil {
		suite.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Authorization", "Bearer "+suite.token)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Require().Equal(wantStatus, w.Code, "%s %s: %s", method, path, w.Body.String())
	if out != nil {
		suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), out))
	}
}

func (suite *ReceivablesFlowTestSuite) openPeriod() domain.FiscalPeriod {
	var period domain.FiscalPeriod
	suite.call(http.MethodPost, "/api/v1/fiscal-periods", map[string]any{
		"name":       "Current",
		"startDate":  suite.date(-60),
		"endDate":    suite.date(60),
		"fiscalYear": suite.today.Year(),
	}, http.StatusCreated, &period)
	return period
}

func (suite *ReceivablesFlowTestSuite) TestInvoicePaymentFlow() {
	suite.openPeriod()

	var inv domain.Document
	suite.call(http.MethodPost, "/api/v1/invoices", map[string]any{
		"counterpartyID": "dispensary-7",
		"issueDate":      suite.date(-5),
		"dueDate":        suite.date(25),
		"subtotal":       "1000.00",
		"taxAmount":      "80.00",
	}, http.StatusCreated, &inv)
	suite.Equal(domain.StatusDraft, inv.Status)

	var payment domain.Payment
	suite.call(http.MethodPost, "/api/v1/invoices/"+inv.DocumentID+"/payments", map[string]any{
		"amount": "500.00", "method": "ACH", "paymentDate": suite.date(0),
	}, http.StatusCreated, &payment)
	suite.NotEmpty(payment.EntryNumber)

	var rejected struct {
		Error     string `json:"error"`
		Retryable bool   `json:"retryable"`
	}
	suite.call(http.MethodPost, "/api/v1/invoices/"+inv.DocumentID+"/payments", map[string]any{
		"amount": "600.00", "method": "ACH", "paymentDate": suite.date(0),
	}, http.StatusConflict, &rejected)
	suite.Contains(rejected.Error, "exceeds amount due")
	suite.False(rejected.Retryable)

	var current domain.Document
	suite.call(http.MethodGet, "/api/v1/invoices/"+inv.DocumentID, nil, http.StatusOK, &current)
	suite.Equal(domain.StatusPartial, current.Status)
	suite.True(current.AmountDue.Equal(decimal.NewFromInt(580)))

	var receivable struct {
		AccountID string `json:"accountID"`
	}
	suite.call(http.MethodGet, "/api/v1/accounts/by-number/1200", nil, http.StatusOK, &receivable)
	var balance domain.AccountBalance
	suite.call(http.MethodGet, "/api/v1/reports/accounts/"+receivable.AccountID+"/balance", nil, http.StatusOK, &balance)
	suite.True(balance.Balance.Equal(decimal.NewFromInt(580)), "receivables equal the amount due")

	var aging domain.AgingBuckets
	suite.call(http.MethodGet, "/api/v1/reports/aging/ar?asOf="+suite.date(0), nil, http.StatusOK, &aging)
	suite.True(aging.Current.Equal(decimal.NewFromInt(580)))

	var payments struct {
		Payments []domain.Payment `json:"payments"`
	}
	suite.call(http.MethodGet, "/api/v1/invoices/"+inv.DocumentID+"/payments", nil, http.StatusOK, &payments)
	suite.Len(payments.Payments, 1)

	// invoices and bills do not share ids
	suite.call(http.MethodGet, "/api/v1/bills/"+inv.DocumentID, nil, http.StatusNotFound, nil)
}

func (suite *ReceivablesFlowTestSuite) TestSoftDeleteRoutes() {
	suite.openPeriod()
	var bill domain.Document
	suite.call(http.MethodPost, "/api/v1/bills", map[string]any{
		"counterpartyID": "grower-3",
		"issueDate":      suite.date(0),
		"dueDate":        suite.date(30),
		"subtotal":       "250",
	}, http.StatusCreated, &bill)

	suite.call(http.MethodDelete, "/api/v1/bills/"+bill.DocumentID, nil, http.StatusNoContent, nil)
	suite.call(http.MethodGet, "/api/v1/bills/"+bill.DocumentID, nil, http.StatusNotFound, nil)

	var live, all struct {
		Documents []domain.Document `json:"documents"`
	}
	suite.call(http.MethodGet, "/api/v1/bills", nil, http.StatusOK, &live)
	suite.Empty(live.Documents)
	suite.call(http.MethodGet, "/api/v1/bills/deleted", nil, http.StatusOK, &all)
	suite.Require().Len(all.Documents, 1)
	suite.NotNil(all.Documents[0].DeletedAt)

	suite.call(http.MethodPost, "/api/v1/bills/"+bill.DocumentID+"/restore", nil, http.StatusNoContent, nil)
	suite.call(http.MethodGet, "/api/v1/bills/"+bill.DocumentID, nil, http.StatusOK, nil)
}

func (suite *ReceivablesFlowTestSuite) TestLockedPeriodRejectsPosting() {
	period := suite.openPeriod()

	var cash, revenue struct {
		AccountID string `json:"accountID"`
	}
	suite.call(http.MethodGet, "/api/v1/accounts/by-number/1000", nil, http.StatusOK, &cash)
	suite.call(http.MethodGet, "/api/v1/accounts/by-number/4000", nil, http.StatusOK, &revenue)
	entry := map[string]any{
		"debitAccountID":  cash.AccountID,
		"creditAccountID": revenue.AccountID,
		"amount":          "42.00",
		"entryDate":       suite.date(0),
	}
	suite.call(http.MethodPost, "/api/v1/journal-entries", entry, http.StatusCreated, nil)

	suite.call(http.MethodPost, "/api/v1/fiscal-periods/"+period.PeriodID+"/lock", nil, http.StatusConflict, nil)
	suite.call(http.MethodPost, "/api/v1/fiscal-periods/"+period.PeriodID+"/close", nil, http.StatusOK, nil)
	suite.call(http.MethodPost, "/api/v1/fiscal-periods/"+period.PeriodID+"/lock", nil, http.StatusOK, nil)

	suite.call(http.MethodPost, "/api/v1/journal-entries", entry, http.StatusLocked, nil)

	var locked struct {
		Locked bool `json:"locked"`
	}
	suite.call(http.MethodGet, "/api/v1/fiscal-periods/locked?date="+suite.date(0), nil, http.StatusOK, &locked)
	suite.True(locked.Locked)

	var tb domain.TrialBalance
	suite.call(http.MethodGet, "/api/v1/reports/trial-balance/"+period.PeriodID, nil, http.StatusOK, &tb)
	suite.True(tb.IsBalanced())
	suite.True(tb.TotalDebit.Equal(decimal.NewFromInt(42)))

	var verify struct {
		Balanced bool `json:"balanced"`
	}
	suite.call(http.MethodGet, "/api/v1/reports/unbalanced-groups", nil, http.StatusOK, &verify)
	suite.True(verify.Balanced)
}

func (suite *ReceivablesFlowTestSuite) TestSingleLineWithBothSides() {
	suite.openPeriod()
	var cash struct {
		AccountID string `json:"accountID"`
	}
	suite.call(http.MethodGet, "/api/v1/accounts/by-number/1000", nil, http.StatusOK, &cash)

	var rejected struct {
		Error string `json:"error"`
	}
	suite.call(http.MethodPost, "/api/v1/ledger/entries", map[string]any{
		"entryDate": suite.date(0),
		"lines": []map[string]any{
			{"accountID": cash.AccountID, "debit": "5.00", "credit": "5.00"},
		},
	}, http.StatusBadRequest, &rejected)
	suite.Contains(rejected.Error, "both debit and credit")
}

func (suite *ReceivablesFlowTestSuite) TestMarkOverdueRoute() {
	suite.openPeriod()
	var inv domain.Document
	suite.call(http.MethodPost, "/api/v1/invoices", map[string]any{
		"counterpartyID": "dispensary-9",
		"issueDate":      suite.date(-30),
		"dueDate":        suite.date(-1),
		"subtotal":       "90",
	}, http.StatusCreated, &inv)
	suite.call(http.MethodPost, "/api/v1/invoices/"+inv.DocumentID+"/status",
		map[string]string{"status": "SENT"}, http.StatusOK, nil)

	var resp struct {
		Invoices int `json:"invoices"`
		Bills    int `json:"bills"`
	}
	suite.call(http.MethodPost, "/api/v1/receivables/mark-overdue", nil, http.StatusOK, &resp)
	suite.Equal(1, resp.Invoices)
	suite.Equal(0, resp.Bills)
}

func (suite *ReceivablesFlowTestSuite) TestHealthIsPublic() {
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	suite.Equal(http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	suite.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/status", nil))
	suite.Equal(http.StatusUnauthorized, w.Code)
}

func TestReceivablesFlow(t *testing.T) {
	suite.Run(t, new(ReceivablesFlowTestSuite))
}
