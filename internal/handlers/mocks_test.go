package handlers_test

import (
	"context"

	"github.com/SscSPs/transit_finance/internal/core/domain"
	portssvc "github.com/SscSPs/transit_finance/internal/core/ports/services"
	"github.com/SscSPs/transit_finance/internal/dto"
	"github.com/stretchr/testify/mock"
)

// --- Mock AccountService ---
type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) LookupAccount(ctx context.Context, code string) (*domain.Account, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) LookupAccounts(ctx context.Context, codes []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, codes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountService) ListAccounts(ctx context.Context, params dto.ListAccountsParams) ([]domain.Account, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, userID string) (*domain.Account, error) {
	args := m.Called(ctx, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) DeactivateAccount(ctx context.Context, accountID string, userID string) error {
	args := m.Called(ctx, accountID, userID)
	return args.Error(0)
}

var _ portssvc.AccountSvcFacade = (*MockAccountService)(nil)

// --- Mock JournalService ---
type MockJournalService struct {
	mock.Mock
}

func (m *MockJournalService) entry(args mock.Arguments) (*domain.JournalEntry, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockJournalService) GetEntry(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	return m.entry(m.Called(ctx, entryID))
}

func (m *MockJournalService) ListEntries(ctx context.Context, params dto.ListJournalEntriesParams) (*dto.ListJournalEntriesResponse, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListJournalEntriesResponse), args.Error(1)
}

func (m *MockJournalService) GetEntryHistory(ctx context.Context, entryID string) ([]domain.JournalStatusChange, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JournalStatusChange), args.Error(1)
}

func (m *MockJournalService) CreateAuto(ctx context.Context, req dto.CreateJournalEntryRequest, userID string) (*domain.JournalEntry, error) {
	return m.entry(m.Called(ctx, req, userID))
}

func (m *MockJournalService) CreateAdjustment(ctx context.Context, originalID string, req dto.AdjustJournalEntryRequest, userID string) (*domain.JournalEntry, error) {
	return m.entry(m.Called(ctx, originalID, req, userID))
}

func (m *MockJournalService) CreateReversal(ctx context.Context, originalID string, req dto.ReverseJournalEntryRequest, userID string) (*domain.JournalEntry, error) {
	return m.entry(m.Called(ctx, originalID, req, userID))
}

func (m *MockJournalService) UpdateDraft(ctx context.Context, entryID string, req dto.UpdateJournalEntryRequest, userID string) (*domain.JournalEntry, error) {
	return m.entry(m.Called(ctx, entryID, req, userID))
}

func (m *MockJournalService) DeleteDraft(ctx context.Context, entryID string, req dto.DeleteJournalEntryRequest, userID string) error {
	args := m.Called(ctx, entryID, req, userID)
	return args.Error(0)
}

func (m *MockJournalService) Post(ctx context.Context, entryID string, userID string) (*domain.JournalEntry, error) {
	return m.entry(m.Called(ctx, entryID, userID))
}

var _ portssvc.JournalSvcFacade = (*MockJournalService)(nil)

// --- Mock ReceivableService ---
type MockReceivableService struct {
	mock.Mock
}

func (m *MockReceivableService) receivable(args mock.Arguments) (*domain.Receivable, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Receivable), args.Error(1)
}

func (m *MockReceivableService) GetReceivable(ctx context.Context, receivableID string) (*domain.Receivable, error) {
	return m.receivable(m.Called(ctx, receivableID))
}

func (m *MockReceivableService) ListReceivables(ctx context.Context, params dto.ListReceivablesParams) (*dto.ListReceivablesResponse, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListReceivablesResponse), args.Error(1)
}

func (m *MockReceivableService) ListInstallmentPayments(ctx context.Context, receivableID string) ([]domain.InstallmentPayment, error) {
	args := m.Called(ctx, receivableID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.InstallmentPayment), args.Error(1)
}

func (m *MockReceivableService) CreateWithSchedule(ctx context.Context, req dto.CreateReceivableRequest, userID string) (*domain.Receivable, error) {
	return m.receivable(m.Called(ctx, req, userID))
}

func (m *MockReceivableService) UpdateSchedule(ctx context.Context, receivableID string, req dto.UpdateScheduleRequest, userID string) (*domain.Receivable, error) {
	return m.receivable(m.Called(ctx, receivableID, req, userID))
}

func (m *MockReceivableService) ChangeStatus(ctx context.Context, receivableID string, req dto.ChangeReceivableStatusRequest, userID string) (*domain.Receivable, error) {
	return m.receivable(m.Called(ctx, receivableID, req, userID))
}

var _ portssvc.ReceivableSvcFacade = (*MockReceivableService)(nil)

// --- Mock PaymentService ---
type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) RecordPayment(ctx context.Context, installmentID string, req dto.RecordPaymentRequest, userID string) (*domain.PaymentResult, error) {
	args := m.Called(ctx, installmentID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentResult), args.Error(1)
}

var _ portssvc.PaymentSvc = (*MockPaymentService)(nil)

// --- Mock RevenueService ---
type MockRevenueService struct {
	mock.Mock
}

func (m *MockRevenueService) revenue(args mock.Arguments) (*domain.Revenue, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Revenue), args.Error(1)
}

func (m *MockRevenueService) CreateRevenueSource(ctx context.Context, req dto.CreateRevenueSourceRequest, userID string) (*domain.RevenueSource, error) {
	args := m.Called(ctx, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RevenueSource), args.Error(1)
}

func (m *MockRevenueService) ListRevenueSources(ctx context.Context) ([]domain.RevenueSource, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RevenueSource), args.Error(1)
}

func (m *MockRevenueService) GetRevenue(ctx context.Context, revenueID string) (*domain.Revenue, error) {
	return m.revenue(m.Called(ctx, revenueID))
}

func (m *MockRevenueService) ListRevenues(ctx context.Context, params dto.ListRevenuesParams) (*dto.ListRevenuesResponse, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListRevenuesResponse), args.Error(1)
}

func (m *MockRevenueService) CreateRevenue(ctx context.Context, req dto.CreateRevenueRequest, userID string) (*domain.Revenue, error) {
	return m.revenue(m.Called(ctx, req, userID))
}

func (m *MockRevenueService) RecognizeRevenue(ctx context.Context, revenueID string, userID string) (*domain.Revenue, error) {
	return m.revenue(m.Called(ctx, revenueID, userID))
}

func (m *MockRevenueService) PostRevenueToGL(ctx context.Context, revenueID string, userID string) (*domain.Revenue, error) {
	return m.revenue(m.Called(ctx, revenueID, userID))
}

func (m *MockRevenueService) ReverseRevenue(ctx context.Context, revenueID string, req dto.ReverseRevenueRequest, userID string) (*domain.Revenue, error) {
	return m.revenue(m.Called(ctx, revenueID, req, userID))
}

func (m *MockRevenueService) RecordReceivableCollection(ctx context.Context, collection dto.ReceivableCollection, userID string) (*domain.Revenue, error) {
	return m.revenue(m.Called(ctx, collection, userID))
}

var _ portssvc.RevenueSvcFacade = (*MockRevenueService)(nil)
