package services_test

import (
	"context"
	"sync"
	"time"

	"github.com/SscSPs/transit_finance/internal/core/domain"
	portsrepo "github.com/SscSPs/transit_finance/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/transit_finance/internal/core/ports/services"
	"github.com/SscSPs/transit_finance/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// --- Fake TransactionManager ---
// Runs fn directly and fires after-commit callbacks only when fn succeeds.
type fakeTxManager struct {
	mu       sync.Mutex
	depth    int
	pending  []func(ctx context.Context)
	commits  int
	rollback int
}

var _ portsrepo.TransactionManager = (*fakeTxManager)(nil)

func (f *fakeTxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.mu.Lock()
	f.depth++
	outer := f.depth == 1
	f.mu.Unlock()

	err := fn(ctx)

	f.mu.Lock()
	f.depth--
	if !outer {
		f.mu.Unlock()
		return err
	}
	callbacks := f.pending
	f.pending = nil
	if err != nil {
		f.rollback++
		f.mu.Unlock()
		return err
	}
	f.commits++
	f.mu.Unlock()

	for _, cb := range callbacks {
		cb(ctx)
	}
	return nil
}

func (f *fakeTxManager) AfterCommit(ctx context.Context, fn func(ctx context.Context)) {
	f.mu.Lock()
	if f.depth == 0 {
		f.mu.Unlock()
		fn(ctx)
		return
	}
	f.pending = append(f.pending, fn)
	f.mu.Unlock()
}

// --- Recording auditor ---
type recordingAuditor struct {
	mu      sync.Mutex
	records []domain.AuditRecord
}

var _ portssvc.AuditSvc = (*recordingAuditor)(nil)

func (r *recordingAuditor) Record(_ context.Context, record domain.AuditRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, record)
}

func (r *recordingAuditor) actions() []domain.AuditAction {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.AuditAction, len(r.records))
	for i, rec := range r.records {
		out[i] = rec.Action
	}
	return out
}

// --- Mock AccountRepository ---
type MockAccountRepository struct {
	mock.Mock
}

var _ portsrepo.AccountRepositoryFacade = (*MockAccountRepository)(nil)

func (m *MockAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountsByCodes(ctx context.Context, codes []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, codes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListAccounts(ctx context.Context, limit int, offset int) ([]domain.Account, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) DeactivateAccount(ctx context.Context, accountID string, userID string, now time.Time) error {
	args := m.Called(ctx, accountID, userID, now)
	return args.Error(0)
}

func (m *MockAccountRepository) FindAccountsByIDsForUpdate(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) UpdateAccountBalances(ctx context.Context, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error {
	args := m.Called(ctx, balanceChanges, userID, now)
	return args.Error(0)
}

// --- Mock AccountReaderSvc ---
type MockAccountReader struct {
	mock.Mock
}

var _ portssvc.AccountReaderSvc = (*MockAccountReader)(nil)

func (m *MockAccountReader) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountReader) LookupAccount(ctx context.Context, code string) (*domain.Account, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountReader) LookupAccounts(ctx context.Context, codes []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, codes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountReader) ListAccounts(ctx context.Context, params dto.ListAccountsParams) ([]domain.Account, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

// --- Mock JournalRepository ---
type MockJournalRepository struct {
	mock.Mock
}

var _ portsrepo.JournalRepositoryFacade = (*MockJournalRepository)(nil)

func (m *MockJournalRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockJournalRepository) FindEntryByIDForUpdate(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockJournalRepository) FindLinesByEntryID(ctx context.Context, entryID string) ([]domain.JournalEntryLine, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JournalEntryLine), args.Error(1)
}

func (m *MockJournalRepository) FindStatusHistory(ctx context.Context, entryID string) ([]domain.JournalStatusChange, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JournalStatusChange), args.Error(1)
}

func (m *MockJournalRepository) ListEntries(ctx context.Context, filter portsrepo.JournalEntryFilter, limit int, nextToken *string) ([]domain.JournalEntry, *string, error) {
	args := m.Called(ctx, filter, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedNextToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedNextToken = &tokenVal
	}
	return args.Get(0).([]domain.JournalEntry), returnedNextToken, args.Error(2)
}

func (m *MockJournalRepository) SaveEntry(ctx context.Context, entry domain.JournalEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockJournalRepository) UpdateEntryHeader(ctx context.Context, entry domain.JournalEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockJournalRepository) ReplaceLines(ctx context.Context, entryID string, lines []domain.JournalEntryLine) error {
	args := m.Called(ctx, entryID, lines)
	return args.Error(0)
}

func (m *MockJournalRepository) SoftDeleteLines(ctx context.Context, entryID string) error {
	args := m.Called(ctx, entryID)
	return args.Error(0)
}

func (m *MockJournalRepository) UpdateEntryStatus(ctx context.Context, entry domain.JournalEntry, from domain.JournalStatus) error {
	args := m.Called(ctx, entry, from)
	return args.Error(0)
}

func (m *MockJournalRepository) SaveStatusChange(ctx context.Context, change domain.JournalStatusChange) error {
	args := m.Called(ctx, change)
	return args.Error(0)
}

// --- Mock JournalSvc ---
type MockJournalService struct {
	mock.Mock
}

var _ portssvc.JournalSvcFacade = (*MockJournalService)(nil)

func (m *MockJournalService) GetEntry(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
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
	args := m.Called(ctx, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockJournalService) CreateAdjustment(ctx context.Context, originalID string, req dto.AdjustJournalEntryRequest, userID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, originalID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockJournalService) CreateReversal(ctx context.Context, originalID string, req dto.ReverseJournalEntryRequest, userID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, originalID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockJournalService) UpdateDraft(ctx context.Context, entryID string, req dto.UpdateJournalEntryRequest, userID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, entryID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockJournalService) DeleteDraft(ctx context.Context, entryID string, req dto.DeleteJournalEntryRequest, userID string) error {
	args := m.Called(ctx, entryID, req, userID)
	return args.Error(0)
}

func (m *MockJournalService) Post(ctx context.Context, entryID string, userID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, entryID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

// --- Mock ReceivableRepository ---
type MockReceivableRepository struct {
	mock.Mock
}

var _ portsrepo.ReceivableRepositoryFacade = (*MockReceivableRepository)(nil)

func (m *MockReceivableRepository) FindReceivableByID(ctx context.Context, receivableID string) (*domain.Receivable, error) {
	args := m.Called(ctx, receivableID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Receivable), args.Error(1)
}

func (m *MockReceivableRepository) FindReceivableByIDForUpdate(ctx context.Context, receivableID string) (*domain.Receivable, error) {
	args := m.Called(ctx, receivableID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Receivable), args.Error(1)
}

func (m *MockReceivableRepository) ListReceivables(ctx context.Context, filter portsrepo.ReceivableFilter, limit int, nextToken *string) ([]domain.Receivable, *string, error) {
	args := m.Called(ctx, filter, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedNextToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedNextToken = &tokenVal
	}
	return args.Get(0).([]domain.Receivable), returnedNextToken, args.Error(2)
}

func (m *MockReceivableRepository) SaveReceivable(ctx context.Context, receivable domain.Receivable) error {
	args := m.Called(ctx, receivable)
	return args.Error(0)
}

func (m *MockReceivableRepository) UpdateReceivable(ctx context.Context, receivable domain.Receivable) error {
	args := m.Called(ctx, receivable)
	return args.Error(0)
}

func (m *MockReceivableRepository) FindInstallmentByID(ctx context.Context, installmentID string) (*domain.InstallmentSchedule, error) {
	args := m.Called(ctx, installmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InstallmentSchedule), args.Error(1)
}

func (m *MockReceivableRepository) FindInstallmentsByReceivableID(ctx context.Context, receivableID string) ([]domain.InstallmentSchedule, error) {
	args := m.Called(ctx, receivableID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.InstallmentSchedule), args.Error(1)
}

func (m *MockReceivableRepository) FindInstallmentsForUpdate(ctx context.Context, receivableID string) ([]domain.InstallmentSchedule, error) {
	args := m.Called(ctx, receivableID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.InstallmentSchedule), args.Error(1)
}

func (m *MockReceivableRepository) CountPaymentsByReceivableID(ctx context.Context, receivableID string) (int, error) {
	args := m.Called(ctx, receivableID)
	return args.Int(0), args.Error(1)
}

func (m *MockReceivableRepository) ListPaymentsByReceivableID(ctx context.Context, receivableID string) ([]domain.InstallmentPayment, error) {
	args := m.Called(ctx, receivableID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.InstallmentPayment), args.Error(1)
}

func (m *MockReceivableRepository) SaveInstallments(ctx context.Context, installments []domain.InstallmentSchedule) error {
	args := m.Called(ctx, installments)
	return args.Error(0)
}

func (m *MockReceivableRepository) UpdateInstallment(ctx context.Context, installment domain.InstallmentSchedule) error {
	args := m.Called(ctx, installment)
	return args.Error(0)
}

func (m *MockReceivableRepository) SoftDeleteInstallments(ctx context.Context, receivableID string, userID string) error {
	args := m.Called(ctx, receivableID, userID)
	return args.Error(0)
}

func (m *MockReceivableRepository) SavePayments(ctx context.Context, payments []domain.InstallmentPayment) error {
	args := m.Called(ctx, payments)
	return args.Error(0)
}

// --- Mock DebtorDirectory ---
type MockDebtorDirectory struct {
	mock.Mock
}

var _ portsrepo.DebtorDirectory = (*MockDebtorDirectory)(nil)

func (m *MockDebtorDirectory) ResolveDebtorName(ctx context.Context, debtorType string, debtorID string) (string, error) {
	args := m.Called(ctx, debtorType, debtorID)
	return args.String(0), args.Error(1)
}

// --- Mock RevenueRepository ---
type MockRevenueRepository struct {
	mock.Mock
}

var _ portsrepo.RevenueRepositoryFacade = (*MockRevenueRepository)(nil)

func (m *MockRevenueRepository) FindSourceByID(ctx context.Context, sourceID string) (*domain.RevenueSource, error) {
	args := m.Called(ctx, sourceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RevenueSource), args.Error(1)
}

func (m *MockRevenueRepository) FindSourceByCode(ctx context.Context, code string) (*domain.RevenueSource, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RevenueSource), args.Error(1)
}

func (m *MockRevenueRepository) ListSources(ctx context.Context) ([]domain.RevenueSource, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RevenueSource), args.Error(1)
}

func (m *MockRevenueRepository) SaveSource(ctx context.Context, source domain.RevenueSource) error {
	args := m.Called(ctx, source)
	return args.Error(0)
}

func (m *MockRevenueRepository) FindRevenueByID(ctx context.Context, revenueID string) (*domain.Revenue, error) {
	args := m.Called(ctx, revenueID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Revenue), args.Error(1)
}

func (m *MockRevenueRepository) FindRevenueByIDForUpdate(ctx context.Context, revenueID string) (*domain.Revenue, error) {
	args := m.Called(ctx, revenueID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Revenue), args.Error(1)
}

func (m *MockRevenueRepository) ListRevenues(ctx context.Context, filter portsrepo.RevenueFilter, limit int, nextToken *string) ([]domain.Revenue, *string, error) {
	args := m.Called(ctx, filter, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedNextToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedNextToken = &tokenVal
	}
	return args.Get(0).([]domain.Revenue), returnedNextToken, args.Error(2)
}

func (m *MockRevenueRepository) SaveRevenue(ctx context.Context, revenue domain.Revenue) error {
	args := m.Called(ctx, revenue)
	return args.Error(0)
}

func (m *MockRevenueRepository) UpdateRevenueLedgerLink(ctx context.Context, revenue domain.Revenue) error {
	args := m.Called(ctx, revenue)
	return args.Error(0)
}

// --- Mock RevenueLedgerSvc ---
type MockRevenueLedger struct {
	mock.Mock
}

var _ portssvc.RevenueLedgerSvc = (*MockRevenueLedger)(nil)

func (m *MockRevenueLedger) CreateRevenue(ctx context.Context, req dto.CreateRevenueRequest, userID string) (*domain.Revenue, error) {
	args := m.Called(ctx, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Revenue), args.Error(1)
}

func (m *MockRevenueLedger) RecognizeRevenue(ctx context.Context, revenueID string, userID string) (*domain.Revenue, error) {
	args := m.Called(ctx, revenueID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Revenue), args.Error(1)
}

func (m *MockRevenueLedger) PostRevenueToGL(ctx context.Context, revenueID string, userID string) (*domain.Revenue, error) {
	args := m.Called(ctx, revenueID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Revenue), args.Error(1)
}

func (m *MockRevenueLedger) ReverseRevenue(ctx context.Context, revenueID string, req dto.ReverseRevenueRequest, userID string) (*domain.Revenue, error) {
	args := m.Called(ctx, revenueID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Revenue), args.Error(1)
}

func (m *MockRevenueLedger) RecordReceivableCollection(ctx context.Context, collection dto.ReceivableCollection, userID string) (*domain.Revenue, error) {
	args := m.Called(ctx, collection, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Revenue), args.Error(1)
}
