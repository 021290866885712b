package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SscSPs/erp_ledger/internal/apperrors"
	"github.com/SscSPs/erp_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/erp_ledger/internal/core/ports/services"
	"github.com/SscSPs/erp_ledger/internal/dto"
	"github.com/SscSPs/erp_ledger/internal/handlers"
	"github.com/SscSPs/erp_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock AccountService ---
type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, actorID string) (*domain.Account, error) {
	args := m.Called(ctx, req, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockAccountService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockAccountService) GetAccountByNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	args := m.Called(ctx, accountNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockAccountService) ListAccounts(ctx context.Context, activeOnly bool) ([]domain.Account, error) {
	args := m.Called(ctx, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}
func (m *MockAccountService) GetChartOfAccounts(ctx context.Context) ([]*domain.AccountNode, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.AccountNode), args.Error(1)
}
func (m *MockAccountService) UpdateAccount(ctx context.Context, accountID string, req dto.UpdateAccountRequest, actorID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID, req, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockAccountService) DeactivateAccount(ctx context.Context, accountID string, actorID string) error {
	args := m.Called(ctx, accountID, actorID)
	return args.Error(0)
}
func (m *MockAccountService) SeedStandardAccounts(ctx context.Context, actorID string) ([]domain.Account, error) {
	args := m.Called(ctx, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

// Ensure mock implements the interface
var _ portssvc.AccountSvcFacade = (*MockAccountService)(nil)

type AccountHandlerTestSuite struct {
	suite.Suite
	router             *gin.Engine
	mockAccountService *MockAccountService
	jwtSecret          string
	actorID            string
}

func (suite *AccountHandlerTestSuite) generateTestToken(actorID string) string {
	token, err := middleware.IssueToken(suite.jwtSecret, "erp-ledger-test", actorID, time.Hour)
	if err != nil {
		suite.FailNow("Failed to sign test token", err.Error())
	}
	return token
}

func (suite *AccountHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.jwtSecret = "test-secret-key-that-is-long-enough"
	suite.actorID = uuid.NewString()

	suite.mockAccountService = new(MockAccountService)

	v1 := suite.router.Group("/api/v1", middleware.AuthMiddleware(suite.jwtSecret, "erp-ledger-test"))
	handlers.RegisterAccountRoutes(v1, suite.mockAccountService)
}

func (suite *AccountHandlerTestSuite) do(method, url string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		suite.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req, _ := http.NewRequest(method, url, &buf)
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(suite.actorID))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *AccountHandlerTestSuite) TestCreateAccount_Success() {
	req := dto.CreateAccountRequest{
		AccountNumber: "1010",
		Name:          "Operating Bank",
		AccountType:   domain.Asset,
	}
	created := &domain.Account{
		AccountID:     uuid.NewString(),
		AccountNumber: req.AccountNumber,
		Name:          req.Name,
		AccountType:   domain.Asset,
		NormalBalance: domain.NormalDebit,
		IsActive:      true,
	}
	suite.mockAccountService.On("CreateAccount", mock.Anything, req, suite.actorID).Return(created, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/accounts", req)

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.AccountResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(created.AccountID, resp.AccountID)
	suite.Equal(domain.NormalDebit, resp.NormalBalance)
	suite.mockAccountService.AssertExpectations(suite.T())
}

func (suite *AccountHandlerTestSuite) TestCreateAccount_BindingFailure() {
	w := suite.do(http.MethodPost, "/api/v1/accounts", map[string]string{"name": "No number"})

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockAccountService.AssertNotCalled(suite.T(), "CreateAccount")
}

func (suite *AccountHandlerTestSuite) TestCreateAccount_Duplicate() {
	req := dto.CreateAccountRequest{AccountNumber: "1000", Name: "Cash", AccountType: domain.Asset}
	suite.mockAccountService.On("CreateAccount", mock.Anything, req, suite.actorID).
		Return(nil, fmt.Errorf("%w: account number 1000", apperrors.ErrDuplicate)).Once()

	w := suite.do(http.MethodPost, "/api/v1/accounts", req)

	suite.Equal(http.StatusConflict, w.Code)
	suite.Contains(w.Body.String(), "already exists")
}

func (suite *AccountHandlerTestSuite) TestGetAccount_NotFound() {
	id := uuid.NewString()
	suite.mockAccountService.On("GetAccountByID", mock.Anything, id).
		Return(nil, apperrors.NewNotFoundError("account", id)).Once()

	w := suite.do(http.MethodGet, "/api/v1/accounts/"+id, nil)

	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *AccountHandlerTestSuite) TestGetAccountByNumber_Success() {
	acc := &domain.Account{AccountID: uuid.NewString(), AccountNumber: "1200", Name: "Accounts Receivable"}
	suite.mockAccountService.On("GetAccountByNumber", mock.Anything, "1200").Return(acc, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/accounts/by-number/1200", nil)

	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), acc.AccountID)
}

func (suite *AccountHandlerTestSuite) TestListAccounts_ActiveOnly() {
	accounts := []domain.Account{{AccountID: "a1", AccountNumber: "1000"}, {AccountID: "a2", AccountNumber: "1200"}}
	suite.mockAccountService.On("ListAccounts", mock.Anything, true).Return(accounts, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/accounts?activeOnly=true", nil)

	suite.Equal(http.StatusOK, w.Code)
	var body struct {
		Accounts []dto.AccountResponse `json:"accounts"`
	}
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &body))
	suite.Len(body.Accounts, 2)
}

func (suite *AccountHandlerTestSuite) TestListAccounts_DatabaseUnavailable() {
	suite.mockAccountService.On("ListAccounts", mock.Anything, false).
		Return(nil, fmt.Errorf("list accounts: %w", apperrors.ErrDatabaseUnavailable)).Once()

	w := suite.do(http.MethodGet, "/api/v1/accounts", nil)

	suite.Equal(http.StatusServiceUnavailable, w.Code)
	suite.Contains(w.Body.String(), `"retryable":true`)
	suite.NotContains(w.Body.String(), "database unavailable")
}

func (suite *AccountHandlerTestSuite) TestDeactivateAccount() {
	id := uuid.NewString()
	suite.mockAccountService.On("DeactivateAccount", mock.Anything, id, suite.actorID).Return(nil).Once()

	w := suite.do(http.MethodDelete, "/api/v1/accounts/"+id, nil)

	suite.Equal(http.StatusNoContent, w.Code)
	suite.mockAccountService.AssertExpectations(suite.T())
}

func (suite *AccountHandlerTestSuite) TestSeedStandardAccounts() {
	seeded := []domain.Account{{AccountID: "cash", AccountNumber: "1000"}}
	suite.mockAccountService.On("SeedStandardAccounts", mock.Anything, suite.actorID).Return(seeded, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/accounts/seed", nil)

	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), `"accountNumber":"1000"`)
}

func (suite *AccountHandlerTestSuite) TestMissingToken() {
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/accounts", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.mockAccountService.AssertNotCalled(suite.T(), "ListAccounts")
}

func TestAccountHandler(t *testing.T) {
	suite.Run(t, new(AccountHandlerTestSuite))
}
