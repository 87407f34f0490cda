package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/transit_finance/internal/apperrors"
	"github.com/SscSPs/transit_finance/internal/core/domain"
	portssvc "github.com/SscSPs/transit_finance/internal/core/ports/services"
	"github.com/SscSPs/transit_finance/internal/core/services"
	"github.com/SscSPs/transit_finance/internal/dto"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type RevenueServiceTestSuite struct {
	suite.Suite
	mockRepo       *MockRevenueRepository
	mockJournalSvc *MockJournalService
	mockAccountSvc *MockAccountReader
	txManager      *fakeTxManager
	auditor        *recordingAuditor
	service        portssvc.RevenueSvcFacade
	userID         string
	now            time.Time
	fareSource     *domain.RevenueSource
}

func (suite *RevenueServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockRevenueRepository)
	suite.mockJournalSvc = new(MockJournalService)
	suite.mockAccountSvc = new(MockAccountReader)
	suite.txManager = &fakeTxManager{}
	suite.auditor = &recordingAuditor{}
	suite.now = time.Date(2026, 5, 3, 8, 0, 0, 0, time.UTC)
	suite.userID = uuid.NewString()
	suite.service = services.NewRevenueService(suite.mockRepo, suite.mockJournalSvc, suite.mockAccountSvc,
		services.LedgerAccountCodes{
			Cash:             "1010",
			Bank:             "1020",
			DefaultRevenue:   "4900",
			CollectionSource: "RECEIVABLE_COLLECTION",
		},
		services.WithTransactionManager(suite.txManager),
		services.WithAuditor(suite.auditor),
		services.WithClock(func() time.Time { return suite.now }),
	)
	suite.fareSource = &domain.RevenueSource{
		SourceID:    uuid.NewString(),
		Code:        "FARES",
		Name:        "Passenger fares",
		AccountCode: "4000",
		IsActive:    true,
	}
}

func (suite *RevenueServiceTestSuite) createRequest(method domain.PaymentMethod) dto.CreateRevenueRequest {
	return dto.CreateRevenueRequest{
		SourceID:      suite.fareSource.SourceID,
		Amount:        money("842.50"),
		RevenueDate:   time.Date(2026, 5, 2, 20, 0, 0, 0, time.UTC),
		Description:   "Route 12 fares",
		PaymentMethod: method,
	}
}

func linesMatch(req dto.CreateJournalEntryRequest, debitCode, creditCode string) bool {
	return len(req.Lines) == 2 &&
		req.Lines[0].AccountCode == debitCode && req.Lines[0].Debit.IsPositive() && req.Lines[0].Credit.IsZero() &&
		req.Lines[1].AccountCode == creditCode && req.Lines[1].Credit.IsPositive() && req.Lines[1].Debit.IsZero() &&
		req.Lines[0].Debit.Equal(req.Lines[1].Credit)
}

func (suite *RevenueServiceTestSuite) TestCreateRevenue_CashDebitsCashAccount() {
	ctx := context.Background()
	entry := &domain.JournalEntry{EntryID: uuid.NewString(), Status: domain.JournalDraft}

	suite.mockRepo.On("FindSourceByID", mock.Anything, suite.fareSource.SourceID).Return(suite.fareSource, nil).Once()
	suite.mockRepo.On("SaveRevenue", mock.Anything, mock.MatchedBy(func(r domain.Revenue) bool {
		return r.Status == domain.RevenueRecorded && r.JournalEntryID == nil && r.RevenueDate.Equal(day(2026, 5, 2))
	})).Return(nil).Once()
	suite.mockJournalSvc.On("CreateAuto", mock.Anything, mock.MatchedBy(func(req dto.CreateJournalEntryRequest) bool {
		return req.SourceModule == domain.ModuleRevenue && linesMatch(req, "1010", "4000")
	}), suite.userID).Return(entry, nil).Once()
	suite.mockRepo.On("UpdateRevenueLedgerLink", mock.Anything, mock.MatchedBy(func(r domain.Revenue) bool {
		return r.JournalEntryID != nil && *r.JournalEntryID == entry.EntryID
	})).Return(nil).Once()

	revenue, err := suite.service.CreateRevenue(ctx, suite.createRequest(domain.PaymentCash), suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.RevenueRecorded, revenue.Status)
	suite.Equal(entry.EntryID, *revenue.JournalEntryID)
	suite.Equal("REV-20260502-", revenue.Code[:13])
	suite.Equal([]domain.AuditAction{domain.AuditCreate}, suite.auditor.actions())
	suite.mockRepo.AssertExpectations(suite.T())
	suite.mockJournalSvc.AssertExpectations(suite.T())
}

func (suite *RevenueServiceTestSuite) TestCreateRevenue_BankTransferUsesBankAndDefaultRevenue() {
	ctx := context.Background()
	suite.fareSource.AccountCode = ""
	entry := &domain.JournalEntry{EntryID: uuid.NewString()}

	suite.mockRepo.On("FindSourceByID", mock.Anything, suite.fareSource.SourceID).Return(suite.fareSource, nil).Once()
	suite.mockRepo.On("SaveRevenue", mock.Anything, mock.Anything).Return(nil).Once()
	suite.mockJournalSvc.On("CreateAuto", mock.Anything, mock.MatchedBy(func(req dto.CreateJournalEntryRequest) bool {
		return linesMatch(req, "1020", "4900")
	}), suite.userID).Return(entry, nil).Once()
	suite.mockRepo.On("UpdateRevenueLedgerLink", mock.Anything, mock.Anything).Return(nil).Once()

	_, err := suite.service.CreateRevenue(ctx, suite.createRequest(domain.PaymentBankTransfer), suite.userID)

	suite.Require().NoError(err)
	suite.mockJournalSvc.AssertExpectations(suite.T())
}

func (suite *RevenueServiceTestSuite) TestCreateRevenue_InactiveSource() {
	ctx := context.Background()
	suite.fareSource.IsActive = false
	suite.mockRepo.On("FindSourceByID", mock.Anything, suite.fareSource.SourceID).Return(suite.fareSource, nil).Once()

	_, err := suite.service.CreateRevenue(ctx, suite.createRequest(domain.PaymentCash), suite.userID)

	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveRevenue", mock.Anything, mock.Anything)
}

func (suite *RevenueServiceTestSuite) TestCreateRevenue_UnbalancedLedgerRollsBack() {
	ctx := context.Background()
	suite.mockRepo.On("FindSourceByID", mock.Anything, suite.fareSource.SourceID).Return(suite.fareSource, nil).Once()
	suite.mockRepo.On("SaveRevenue", mock.Anything, mock.Anything).Return(nil).Once()
	suite.mockJournalSvc.On("CreateAuto", mock.Anything, mock.Anything, suite.userID).
		Return(nil, apperrors.NewValidationError("unknown or inactive account(s): 4000")).Once()

	_, err := suite.service.CreateRevenue(ctx, suite.createRequest(domain.PaymentCash), suite.userID)

	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Equal(1, suite.txManager.rollback)
	suite.Empty(suite.auditor.actions())
}

func (suite *RevenueServiceTestSuite) recordedRevenue(withEntry bool) *domain.Revenue {
	revenue := &domain.Revenue{
		RevenueID:     uuid.NewString(),
		Code:          "REV-20260502-0000BEEF",
		SourceID:      suite.fareSource.SourceID,
		Amount:        money("842.50"),
		RevenueDate:   day(2026, 5, 2),
		PaymentMethod: domain.PaymentCash,
		Status:        domain.RevenueRecorded,
		AuditFields:   domain.NewAuditFields(suite.userID, suite.now.Add(-time.Hour)),
	}
	if withEntry {
		entryID := uuid.NewString()
		revenue.JournalEntryID = &entryID
	}
	return revenue
}

func (suite *RevenueServiceTestSuite) TestPostRevenueToGL_PostsLinkedEntry() {
	ctx := context.Background()
	revenue := suite.recordedRevenue(true)

	suite.mockRepo.On("FindRevenueByIDForUpdate", mock.Anything, revenue.RevenueID).Return(revenue, nil).Once()
	suite.mockJournalSvc.On("GetEntry", mock.Anything, *revenue.JournalEntryID).
		Return(&domain.JournalEntry{EntryID: *revenue.JournalEntryID, Status: domain.JournalDraft}, nil).Once()
	suite.mockJournalSvc.On("Post", mock.Anything, *revenue.JournalEntryID, suite.userID).
		Return(&domain.JournalEntry{EntryID: *revenue.JournalEntryID, Status: domain.JournalPosted}, nil).Once()
	suite.mockRepo.On("UpdateRevenueLedgerLink", mock.Anything, mock.MatchedBy(func(r domain.Revenue) bool {
		return r.Status == domain.RevenuePosted
	})).Return(nil).Once()

	posted, err := suite.service.PostRevenueToGL(ctx, revenue.RevenueID, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.RevenuePosted, posted.Status)
	suite.Equal(2, posted.Version)
	suite.mockJournalSvc.AssertNotCalled(suite.T(), "CreateAuto", mock.Anything, mock.Anything, mock.Anything)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *RevenueServiceTestSuite) TestPostRevenueToGL_RecognisesFirstWhenUnlinked() {
	ctx := context.Background()
	revenue := suite.recordedRevenue(false)
	entry := &domain.JournalEntry{EntryID: uuid.NewString()}

	suite.mockRepo.On("FindRevenueByIDForUpdate", mock.Anything, revenue.RevenueID).Return(revenue, nil).Once()
	suite.mockRepo.On("FindSourceByID", mock.Anything, suite.fareSource.SourceID).Return(suite.fareSource, nil).Once()
	suite.mockJournalSvc.On("CreateAuto", mock.Anything, mock.Anything, suite.userID).Return(entry, nil).Once()
	suite.mockRepo.On("UpdateRevenueLedgerLink", mock.Anything, mock.Anything).Return(nil).Twice()
	suite.mockJournalSvc.On("Post", mock.Anything, entry.EntryID, suite.userID).Return(entry, nil).Once()

	posted, err := suite.service.PostRevenueToGL(ctx, revenue.RevenueID, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(entry.EntryID, *posted.JournalEntryID)
	suite.Equal(domain.RevenuePosted, posted.Status)
	suite.mockJournalSvc.AssertExpectations(suite.T())
}

func (suite *RevenueServiceTestSuite) TestPostRevenueToGL_ReplacesDeletedEntry() {
	ctx := context.Background()
	revenue := suite.recordedRevenue(true)
	deletedID := *revenue.JournalEntryID
	entry := &domain.JournalEntry{EntryID: uuid.NewString(), Status: domain.JournalDraft}

	suite.mockRepo.On("FindRevenueByIDForUpdate", mock.Anything, revenue.RevenueID).Return(revenue, nil).Once()
	suite.mockJournalSvc.On("GetEntry", mock.Anything, deletedID).
		Return(&domain.JournalEntry{EntryID: deletedID, Status: domain.JournalDeleted}, nil).Once()
	suite.mockRepo.On("FindSourceByID", mock.Anything, suite.fareSource.SourceID).Return(suite.fareSource, nil).Once()
	suite.mockJournalSvc.On("CreateAuto", mock.Anything, mock.Anything, suite.userID).Return(entry, nil).Once()
	suite.mockRepo.On("UpdateRevenueLedgerLink", mock.Anything, mock.Anything).Return(nil).Twice()
	suite.mockJournalSvc.On("Post", mock.Anything, entry.EntryID, suite.userID).Return(entry, nil).Once()

	posted, err := suite.service.PostRevenueToGL(ctx, revenue.RevenueID, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(entry.EntryID, *posted.JournalEntryID)
	suite.Equal(domain.RevenuePosted, posted.Status)
	suite.mockJournalSvc.AssertNotCalled(suite.T(), "Post", mock.Anything, deletedID, mock.Anything)
	suite.mockJournalSvc.AssertExpectations(suite.T())
}

func (suite *RevenueServiceTestSuite) TestRecognizeRevenue_ReplacesDeletedEntry() {
	ctx := context.Background()
	revenue := suite.recordedRevenue(true)
	deletedID := *revenue.JournalEntryID
	entry := &domain.JournalEntry{EntryID: uuid.NewString(), Status: domain.JournalDraft}

	suite.mockRepo.On("FindRevenueByIDForUpdate", mock.Anything, revenue.RevenueID).Return(revenue, nil).Once()
	suite.mockJournalSvc.On("GetEntry", mock.Anything, deletedID).
		Return(&domain.JournalEntry{EntryID: deletedID, Status: domain.JournalDeleted}, nil).Once()
	suite.mockRepo.On("FindSourceByID", mock.Anything, suite.fareSource.SourceID).Return(suite.fareSource, nil).Once()
	suite.mockJournalSvc.On("CreateAuto", mock.Anything, mock.MatchedBy(func(req dto.CreateJournalEntryRequest) bool {
		return req.ReferenceID == revenue.RevenueID && linesMatch(req, "1010", "4000")
	}), suite.userID).Return(entry, nil).Once()
	suite.mockRepo.On("UpdateRevenueLedgerLink", mock.Anything, mock.MatchedBy(func(r domain.Revenue) bool {
		return r.JournalEntryID != nil && *r.JournalEntryID == entry.EntryID
	})).Return(nil).Once()

	recognised, err := suite.service.RecognizeRevenue(ctx, revenue.RevenueID, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(entry.EntryID, *recognised.JournalEntryID)
	suite.Equal(domain.RevenueRecorded, recognised.Status)
	suite.mockJournalSvc.AssertExpectations(suite.T())
}

func (suite *RevenueServiceTestSuite) TestRecognizeRevenue_LiveEntryIsConflict() {
	ctx := context.Background()
	revenue := suite.recordedRevenue(true)

	suite.mockRepo.On("FindRevenueByIDForUpdate", mock.Anything, revenue.RevenueID).Return(revenue, nil).Once()
	suite.mockJournalSvc.On("GetEntry", mock.Anything, *revenue.JournalEntryID).
		Return(&domain.JournalEntry{EntryID: *revenue.JournalEntryID, Status: domain.JournalDraft}, nil).Once()
	suite.mockRepo.On("FindSourceByID", mock.Anything, suite.fareSource.SourceID).Return(suite.fareSource, nil).Once()

	_, err := suite.service.RecognizeRevenue(ctx, revenue.RevenueID, suite.userID)

	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockJournalSvc.AssertNotCalled(suite.T(), "CreateAuto", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *RevenueServiceTestSuite) TestPostRevenueToGL_AlreadyPosted() {
	ctx := context.Background()
	revenue := suite.recordedRevenue(true)
	revenue.Status = domain.RevenuePosted

	suite.mockRepo.On("FindRevenueByIDForUpdate", mock.Anything, revenue.RevenueID).Return(revenue, nil).Once()

	_, err := suite.service.PostRevenueToGL(ctx, revenue.RevenueID, suite.userID)

	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockJournalSvc.AssertNotCalled(suite.T(), "Post", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *RevenueServiceTestSuite) TestReverseRevenue_Success() {
	ctx := context.Background()
	revenue := suite.recordedRevenue(true)
	revenue.Status = domain.RevenuePosted
	reversal := &domain.JournalEntry{EntryID: uuid.NewString()}
	req := dto.ReverseRevenueRequest{Reason: "Counterfeit notes"}

	suite.mockRepo.On("FindRevenueByIDForUpdate", mock.Anything, revenue.RevenueID).Return(revenue, nil).Once()
	suite.mockJournalSvc.On("CreateReversal", mock.Anything, *revenue.JournalEntryID, dto.ReverseJournalEntryRequest{Reason: req.Reason}, suite.userID).
		Return(reversal, nil).Once()
	suite.mockRepo.On("UpdateRevenueLedgerLink", mock.Anything, mock.MatchedBy(func(r domain.Revenue) bool {
		return r.Status == domain.RevenueReversed && r.ReversalEntryID != nil && *r.ReversalEntryID == reversal.EntryID
	})).Return(nil).Once()

	reversed, err := suite.service.ReverseRevenue(ctx, revenue.RevenueID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.RevenueReversed, reversed.Status)
	suite.Equal([]domain.AuditAction{domain.AuditReverse}, suite.auditor.actions())
	suite.mockJournalSvc.AssertExpectations(suite.T())
}

func (suite *RevenueServiceTestSuite) TestReverseRevenue_NotPosted() {
	ctx := context.Background()
	revenue := suite.recordedRevenue(true)

	suite.mockRepo.On("FindRevenueByIDForUpdate", mock.Anything, revenue.RevenueID).Return(revenue, nil).Once()

	_, err := suite.service.ReverseRevenue(ctx, revenue.RevenueID, dto.ReverseRevenueRequest{Reason: "x"}, suite.userID)

	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockJournalSvc.AssertNotCalled(suite.T(), "CreateReversal", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *RevenueServiceTestSuite) TestRecordReceivableCollection_PostsUnderReceivableModule() {
	ctx := context.Background()
	collectionSource := &domain.RevenueSource{SourceID: uuid.NewString(), Code: "RECEIVABLE_COLLECTION", Name: "Receivable collections", AccountCode: "1200", IsActive: true}
	entry := &domain.JournalEntry{EntryID: uuid.NewString()}
	collection := dto.ReceivableCollection{
		ReceivableID:   uuid.NewString(),
		ReceivableCode: "AR-20260401-00000001",
		DebtorName:     "Ama Mensah",
		Amount:         money("1500"),
		Date:           day(2026, 5, 3),
		PaymentMethod:  domain.PaymentMobileMoney,
	}

	suite.mockRepo.On("FindSourceByCode", mock.Anything, "RECEIVABLE_COLLECTION").Return(collectionSource, nil).Once()
	suite.mockRepo.On("SaveRevenue", mock.Anything, mock.MatchedBy(func(r domain.Revenue) bool {
		return r.ReceivableID != nil && *r.ReceivableID == collection.ReceivableID
	})).Return(nil).Once()
	suite.mockJournalSvc.On("CreateAuto", mock.Anything, mock.MatchedBy(func(req dto.CreateJournalEntryRequest) bool {
		return req.SourceModule == domain.ModuleReceivable && linesMatch(req, "1010", "1200") &&
			req.Description == "Collection on AR-20260401-00000001 from Ama Mensah"
	}), suite.userID).Return(entry, nil).Once()
	suite.mockRepo.On("UpdateRevenueLedgerLink", mock.Anything, mock.Anything).Return(nil).Once()

	revenue, err := suite.service.RecordReceivableCollection(ctx, collection, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(entry.EntryID, *revenue.JournalEntryID)
	suite.mockJournalSvc.AssertExpectations(suite.T())
}

func (suite *RevenueServiceTestSuite) TestRecordReceivableCollection_SourceNotConfigured() {
	ctx := context.Background()
	suite.mockRepo.On("FindSourceByCode", mock.Anything, "RECEIVABLE_COLLECTION").Return(nil, apperrors.NewNotFoundError("revenue source")).Once()

	_, err := suite.service.RecordReceivableCollection(ctx, dto.ReceivableCollection{Amount: money("10"), Date: day(2026, 5, 3)}, suite.userID)

	suite.ErrorIs(err, apperrors.ErrInternal)
}

func (suite *RevenueServiceTestSuite) TestCreateRevenueSource_RejectsUnknownAccount() {
	ctx := context.Background()
	suite.mockAccountSvc.On("LookupAccount", mock.Anything, "4999").Return(nil, apperrors.NewNotFoundError("account 4999")).Once()

	_, err := suite.service.CreateRevenueSource(ctx, dto.CreateRevenueSourceRequest{Code: "charter", Name: "Charters", AccountCode: "4999"}, suite.userID)

	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveSource", mock.Anything, mock.Anything)
}

func (suite *RevenueServiceTestSuite) TestCreateRevenueSource_NormalisesCode() {
	ctx := context.Background()
	suite.mockRepo.On("SaveSource", mock.Anything, mock.MatchedBy(func(s domain.RevenueSource) bool {
		return s.Code == "CHARTER" && s.IsActive
	})).Return(nil).Once()

	source, err := suite.service.CreateRevenueSource(ctx, dto.CreateRevenueSourceRequest{Code: " charter ", Name: "Charters"}, suite.userID)

	suite.Require().NoError(err)
	suite.Equal("CHARTER", source.Code)
	suite.mockAccountSvc.AssertNotCalled(suite.T(), "LookupAccount", mock.Anything, mock.Anything)
}

func TestRevenueService(t *testing.T) {
	suite.Run(t, new(RevenueServiceTestSuite))
}
