package services_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/SscSPs/erp_ledger/internal/apperrors"
	"github.com/SscSPs/erp_ledger/internal/core/domain"
	"github.com/SscSPs/erp_ledger/internal/core/services"
	"github.com/SscSPs/erp_ledger/internal/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// MockAccountRepository is a mock type for the AccountRepositoryFacade interface
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountByNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	args := m.Called(ctx, accountNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListAccounts(ctx context.Context, activeOnly bool) ([]domain.Account, error) {
	args := m.Called(ctx, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

type AccountServiceTestSuite struct {
	suite.Suite
	mockRepo *MockAccountRepository
	ctx      context.Context
}

func (s *AccountServiceTestSuite) SetupTest() {
	s.mockRepo = new(MockAccountRepository)
	s.ctx = context.Background()
}

func (s *AccountServiceTestSuite) TestCreateAccount_DefaultsNormalBalance() {
	svc := services.NewAccountService(s.mockRepo)
	s.mockRepo.On("SaveAccount", s.ctx, mock.MatchedBy(func(a domain.Account) bool {
		return a.AccountNumber == "2100" && a.NormalBalance == domain.NormalCredit && a.IsActive && a.CreatedBy == testActor
	})).Return(nil).Once()

	acc, err := svc.CreateAccount(s.ctx, dto.CreateAccountRequest{
		AccountNumber: "2100",
		Name:          "Excise Tax Payable",
		AccountType:   domain.Liability,
	}, testActor)

	s.Require().NoError(err)
	s.NotEmpty(acc.AccountID)
	s.Equal(domain.NormalCredit, acc.NormalBalance)
	s.mockRepo.AssertExpectations(s.T())
}

func (s *AccountServiceTestSuite) TestCreateAccount_MissingParent() {
	svc := services.NewAccountService(s.mockRepo)
	parent := "missing-parent"
	s.mockRepo.On("FindAccountByID", s.ctx, parent).Return(nil, apperrors.NewNotFoundError("account", parent)).Once()

	_, err := svc.CreateAccount(s.ctx, dto.CreateAccountRequest{
		AccountNumber:   "1010",
		Name:            "Bank",
		AccountType:     domain.Asset,
		ParentAccountID: &parent,
	}, testActor)

	s.ErrorIs(err, apperrors.ErrValidation)
	s.mockRepo.AssertNotCalled(s.T(), "SaveAccount", mock.Anything, mock.Anything)
}

func (s *AccountServiceTestSuite) TestCreateAccount_RejectsUnknownType() {
	svc := services.NewAccountService(s.mockRepo)
	_, err := svc.CreateAccount(s.ctx, dto.CreateAccountRequest{
		AccountNumber: "9999",
		Name:          "Mystery",
		AccountType:   domain.AccountType("GOODWILL"),
	}, testActor)
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *AccountServiceTestSuite) TestRepositoryErrorsPropagate() {
	svc := services.NewAccountService(s.mockRepo)
	dbErr := fmt.Errorf("list accounts: %w", apperrors.ErrDatabaseUnavailable)
	s.mockRepo.On("ListAccounts", s.ctx, true).Return(nil, dbErr).Once()

	_, err := svc.ListAccounts(s.ctx, true)

	s.ErrorIs(err, apperrors.ErrDatabaseUnavailable)
	s.True(apperrors.IsRetryable(err))
}

func (s *AccountServiceTestSuite) TestSeedStandardAccounts_StopsOnStoreFailure() {
	svc := services.NewAccountService(s.mockRepo)
	s.mockRepo.On("FindAccountByNumber", s.ctx, "1000").Return(nil, apperrors.ErrDatabaseUnavailable).Once()

	_, err := svc.SeedStandardAccounts(s.ctx, testActor)

	s.ErrorIs(err, apperrors.ErrDatabaseUnavailable)
	s.mockRepo.AssertNotCalled(s.T(), "SaveAccount", mock.Anything, mock.Anything)
}

func TestAccountServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AccountServiceTestSuite))
}

type accountStoreSuite struct {
	ledgerSuite
}

func (s *accountStoreSuite) TestSeedIsIdempotent() {
	again, err := s.accounts.SeedStandardAccounts(s.ctx, "someone-else")
	s.Require().NoError(err)
	s.Len(again, 8)
	for _, a := range again {
		s.Equal(s.std[a.AccountNumber].AccountID, a.AccountID)
		s.Equal(testActor, a.CreatedBy)
	}

	all, err := s.accounts.ListAccounts(s.ctx, false)
	s.Require().NoError(err)
	s.Len(all, 8)
}

func (s *accountStoreSuite) TestDuplicateNumberRejected() {
	_, err := s.accounts.CreateAccount(s.ctx, dto.CreateAccountRequest{
		AccountNumber: "1000",
		Name:          "Second Cash",
		AccountType:   domain.Asset,
	}, testActor)
	s.ErrorIs(err, apperrors.ErrDuplicate)
}

func (s *accountStoreSuite) TestChartOfAccountsNestsChildren() {
	parent := s.accountID("1000")
	child, err := s.accounts.CreateAccount(s.ctx, dto.CreateAccountRequest{
		AccountNumber:   "1010",
		Name:            "Operating Bank",
		AccountType:     domain.Asset,
		ParentAccountID: &parent,
	}, testActor)
	s.Require().NoError(err)

	tree, err := s.accounts.GetChartOfAccounts(s.ctx)
	s.Require().NoError(err)
	s.Len(tree, 8)
	for _, node := range tree {
		if node.Account.AccountID == parent {
			s.Require().Len(node.Children, 1)
			s.Equal(child.AccountID, node.Children[0].Account.AccountID)
		}
	}
}

func (s *accountStoreSuite) TestDeactivatedAccountRejectsPostings() {
	s.Require().NoError(s.accounts.DeactivateAccount(s.ctx, s.accountID("5100"), testActor))

	_, err := s.posting.PostJournalEntry(s.ctx, dto.JournalEntryRequest{
		DebitAccountID:  s.accountID("5100"),
		CreditAccountID: s.accountID("1200"),
		Amount:          dec("25.00"),
		EntryDate:       day(0),
	}, testActor)
	s.ErrorIs(err, apperrors.ErrValidation)

	active, err := s.accounts.ListAccounts(s.ctx, true)
	s.Require().NoError(err)
	s.Len(active, 7)
}

func TestAccountStore(t *testing.T) {
	suite.Run(t, new(accountStoreSuite))
}

func TestAccountService_UpdateKeepsNumber(t *testing.T) {
	repo := new(MockAccountRepository)
	svc := services.NewAccountService(repo)
	ctx := context.Background()
	existing := &domain.Account{AccountID: "acc-1", AccountNumber: "4000", Name: "Sales", IsActive: true}
	repo.On("FindAccountByID", ctx, "acc-1").Return(existing, nil).Once()
	repo.On("UpdateAccount", ctx, mock.AnythingOfType("domain.Account")).Return(nil).Once()

	name := "Wholesale Revenue"
	updated, err := svc.UpdateAccount(ctx, "acc-1", dto.UpdateAccountRequest{Name: &name}, testActor)

	require.NoError(t, err)
	assert.Equal(t, "Wholesale Revenue", updated.Name)
	assert.Equal(t, "4000", updated.AccountNumber)
	assert.Equal(t, testActor, updated.LastUpdatedBy)
	repo.AssertExpectations(t)
}
