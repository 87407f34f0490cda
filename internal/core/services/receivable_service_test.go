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
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type ReceivableServiceTestSuite struct {
	suite.Suite
	mockRepo    *MockReceivableRepository
	mockDebtors *MockDebtorDirectory
	txManager   *fakeTxManager
	auditor     *recordingAuditor
	service     portssvc.ReceivableSvcFacade
	userID      string
	now         time.Time
}

func (suite *ReceivableServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockReceivableRepository)
	suite.mockDebtors = new(MockDebtorDirectory)
	suite.txManager = &fakeTxManager{}
	suite.auditor = &recordingAuditor{}
	suite.now = time.Date(2026, 4, 10, 9, 0, 0, 0, time.UTC)
	suite.userID = uuid.NewString()
	suite.service = services.NewReceivableService(suite.mockRepo, suite.mockDebtors,
		services.WithTransactionManager(suite.txManager),
		services.WithAuditor(suite.auditor),
		services.WithClock(func() time.Time { return suite.now }),
	)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// openReceivable returns a PENDING receivable of 3000 split into three 1000 installments
// due on the 1st of May, June and July.
func openReceivable() (*domain.Receivable, []domain.InstallmentSchedule) {
	receivableID := uuid.NewString()
	receivable := &domain.Receivable{
		ReceivableID: receivableID,
		Code:         "AR-20260401-00000001",
		DebtorType:   "DRIVER",
		DebtorID:     "drv-7",
		DebtorName:   "Ama Mensah",
		TotalAmount:  money("3000"),
		PaidAmount:   decimal.Zero,
		Balance:      money("3000"),
		DueDate:      day(2026, 7, 1),
		Status:       domain.StatusPending,
		AuditFields:  domain.NewAuditFields("creator", day(2026, 4, 1)),
	}
	installments := make([]domain.InstallmentSchedule, 3)
	for i := range installments {
		installments[i] = domain.InstallmentSchedule{
			InstallmentID:     uuid.NewString(),
			ReceivableID:      receivableID,
			InstallmentNumber: i + 1,
			DueDate:           day(2026, time.Month(5+i), 1),
			AmountDue:         money("1000"),
			AmountPaid:        decimal.Zero,
			Balance:           money("1000"),
			CarriedOverAmount: decimal.Zero,
			Status:            domain.StatusPending,
			AuditFields:       domain.NewAuditFields("creator", day(2026, 4, 1)),
		}
	}
	return receivable, installments
}

func (suite *ReceivableServiceTestSuite) TestCreateWithSchedule_DefaultsToSingleInstallment() {
	ctx := context.Background()
	req := dto.CreateReceivableRequest{
		DebtorType:  "DRIVER",
		DebtorID:    "drv-7",
		Description: "Vehicle damage",
		TotalAmount: money("450.00"),
		DueDate:     time.Date(2026, 5, 1, 15, 0, 0, 0, time.UTC),
	}

	suite.mockDebtors.On("ResolveDebtorName", mock.Anything, "DRIVER", "drv-7").Return("Ama Mensah", nil).Once()
	suite.mockRepo.On("SaveReceivable", mock.Anything, mock.MatchedBy(func(r domain.Receivable) bool {
		return r.DebtorName == "Ama Mensah" && r.Status == domain.StatusPending && r.Balance.Equal(money("450"))
	})).Return(nil).Once()
	suite.mockRepo.On("SaveInstallments", mock.Anything, mock.MatchedBy(func(rows []domain.InstallmentSchedule) bool {
		return len(rows) == 1 && rows[0].InstallmentNumber == 1 && rows[0].AmountDue.Equal(money("450")) && rows[0].DueDate.Equal(day(2026, 5, 1))
	})).Return(nil).Once()

	receivable, err := suite.service.CreateWithSchedule(ctx, req, suite.userID)

	suite.Require().NoError(err)
	suite.Equal("AR-20260410-", receivable.Code[:12])
	suite.Equal(day(2026, 5, 1), receivable.DueDate)
	suite.Require().Len(receivable.Installments, 1)
	suite.NotEmpty(receivable.Installments[0].InstallmentID)
	suite.Equal([]domain.AuditAction{domain.AuditCreate}, suite.auditor.actions())
	suite.mockRepo.AssertExpectations(suite.T())
	suite.mockDebtors.AssertExpectations(suite.T())
}

func (suite *ReceivableServiceTestSuite) TestCreateWithSchedule_ScheduleTotals() {
	testCases := []struct {
		name    string
		amounts []string
		wantErr bool
	}{
		{name: "exact", amounts: []string{"1000", "1000", "1000"}},
		{name: "short by one cent", amounts: []string{"1000", "1000", "999.99"}},
		{name: "short by two cents", amounts: []string{"1000", "1000", "999.98"}, wantErr: true},
		{name: "over by two cents", amounts: []string{"1000", "1000", "1000.02"}, wantErr: true},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			suite.SetupTest()
			ctx := context.Background()
			schedule := make([]dto.ScheduleItemRequest, len(tc.amounts))
			for i, a := range tc.amounts {
				schedule[i] = dto.ScheduleItemRequest{DueDate: day(2026, time.Month(5+i), 1), AmountDue: money(a)}
			}
			req := dto.CreateReceivableRequest{
				DebtorType:  "DRIVER",
				DebtorID:    "drv-7",
				TotalAmount: money("3000"),
				DueDate:     day(2026, 7, 1),
				Schedule:    schedule,
			}

			if !tc.wantErr {
				suite.mockDebtors.On("ResolveDebtorName", mock.Anything, mock.Anything, mock.Anything).Return("Ama Mensah", nil).Once()
				suite.mockRepo.On("SaveReceivable", mock.Anything, mock.Anything).Return(nil).Once()
				suite.mockRepo.On("SaveInstallments", mock.Anything, mock.AnythingOfType("[]domain.InstallmentSchedule")).Return(nil).Once()
			}

			receivable, err := suite.service.CreateWithSchedule(ctx, req, suite.userID)

			if tc.wantErr {
				suite.Require().Error(err)
				suite.ErrorIs(err, apperrors.ErrValidation)
				suite.mockRepo.AssertNotCalled(suite.T(), "SaveReceivable", mock.Anything, mock.Anything)
				return
			}
			suite.Require().NoError(err)
			suite.Len(receivable.Installments, 3)
			suite.Equal(3, receivable.Installments[2].InstallmentNumber)
		})
	}
}

func (suite *ReceivableServiceTestSuite) TestCreateWithSchedule_DueDateFollowsLastInstallment() {
	ctx := context.Background()
	req := dto.CreateReceivableRequest{
		DebtorType:  "DRIVER",
		DebtorID:    "drv-7",
		TotalAmount: money("2000"),
		DueDate:     day(2026, 5, 1),
		Schedule: []dto.ScheduleItemRequest{
			{DueDate: day(2026, 5, 1), AmountDue: money("1000")},
			{DueDate: day(2026, 8, 15), AmountDue: money("1000")},
		},
	}

	suite.mockDebtors.On("ResolveDebtorName", mock.Anything, "DRIVER", "drv-7").Return("Ama Mensah", nil).Once()
	suite.mockRepo.On("SaveReceivable", mock.Anything, mock.MatchedBy(func(r domain.Receivable) bool {
		return r.DueDate.Equal(day(2026, 8, 15))
	})).Return(nil).Once()
	suite.mockRepo.On("SaveInstallments", mock.Anything, mock.Anything).Return(nil).Once()

	receivable, err := suite.service.CreateWithSchedule(ctx, req, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(day(2026, 8, 15), receivable.DueDate)
	suite.Equal(receivable.Installments[1].DueDate, receivable.DueDate)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *ReceivableServiceTestSuite) TestCreateWithSchedule_DueDatesMustNotGoBackwards() {
	ctx := context.Background()
	req := dto.CreateReceivableRequest{
		DebtorType:  "DRIVER",
		DebtorID:    "drv-7",
		TotalAmount: money("200"),
		DueDate:     day(2026, 6, 1),
		Schedule: []dto.ScheduleItemRequest{
			{DueDate: day(2026, 6, 1), AmountDue: money("100")},
			{DueDate: day(2026, 5, 1), AmountDue: money("100")},
		},
	}

	_, err := suite.service.CreateWithSchedule(ctx, req, suite.userID)

	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *ReceivableServiceTestSuite) TestCreateWithSchedule_DebtorLookupFallsBackToPlaceholder() {
	ctx := context.Background()
	req := dto.CreateReceivableRequest{
		DebtorType:  "DRIVER",
		DebtorID:    "drv-9",
		TotalAmount: money("100"),
		DueDate:     day(2026, 5, 1),
	}

	suite.mockDebtors.On("ResolveDebtorName", mock.Anything, "DRIVER", "drv-9").Return("", assert.AnError).Once()
	suite.mockRepo.On("SaveReceivable", mock.Anything, mock.MatchedBy(func(r domain.Receivable) bool {
		return r.DebtorName == "Unknown debtor (drv-9)"
	})).Return(nil).Once()
	suite.mockRepo.On("SaveInstallments", mock.Anything, mock.Anything).Return(nil).Once()

	receivable, err := suite.service.CreateWithSchedule(ctx, req, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(services.UnknownDebtorName("drv-9"), receivable.DebtorName)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *ReceivableServiceTestSuite) TestUpdateSchedule_Success() {
	ctx := context.Background()
	receivable, installments := openReceivable()
	plan := "2 x monthly"
	req := dto.UpdateScheduleRequest{
		InstallmentPlan: &plan,
		Schedule: []dto.ScheduleItemRequest{
			{DueDate: day(2026, 5, 15), AmountDue: money("1500")},
			{DueDate: day(2026, 6, 15), AmountDue: money("1500")},
		},
	}

	suite.mockRepo.On("FindReceivableByIDForUpdate", mock.Anything, receivable.ReceivableID).Return(receivable, nil).Once()
	suite.mockRepo.On("CountPaymentsByReceivableID", mock.Anything, receivable.ReceivableID).Return(0, nil).Once()
	suite.mockRepo.On("FindInstallmentsForUpdate", mock.Anything, receivable.ReceivableID).Return(installments, nil).Once()
	suite.mockRepo.On("SoftDeleteInstallments", mock.Anything, receivable.ReceivableID, suite.userID).Return(nil).Once()
	suite.mockRepo.On("SaveInstallments", mock.Anything, mock.MatchedBy(func(rows []domain.InstallmentSchedule) bool {
		return len(rows) == 2 && rows[0].InstallmentNumber == 1 && rows[1].InstallmentNumber == 2 &&
			rows[1].AmountDue.Equal(money("1500"))
	})).Return(nil).Once()
	suite.mockRepo.On("UpdateReceivable", mock.Anything, mock.MatchedBy(func(r domain.Receivable) bool {
		return r.InstallmentPlan == plan && r.DueDate.Equal(day(2026, 6, 15))
	})).Return(nil).Once()

	updated, err := suite.service.UpdateSchedule(ctx, receivable.ReceivableID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Len(updated.Installments, 2)
	suite.Equal(day(2026, 6, 15), updated.DueDate)
	suite.Equal([]domain.AuditAction{domain.AuditSchedule}, suite.auditor.actions())
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *ReceivableServiceTestSuite) TestUpdateSchedule_RejectedOncePaymentsExist() {
	ctx := context.Background()
	receivable, _ := openReceivable()
	req := dto.UpdateScheduleRequest{
		Schedule: []dto.ScheduleItemRequest{{DueDate: day(2026, 5, 15), AmountDue: money("3000")}},
	}

	suite.mockRepo.On("FindReceivableByIDForUpdate", mock.Anything, receivable.ReceivableID).Return(receivable, nil).Once()
	suite.mockRepo.On("CountPaymentsByReceivableID", mock.Anything, receivable.ReceivableID).Return(2, nil).Once()

	_, err := suite.service.UpdateSchedule(ctx, receivable.ReceivableID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockRepo.AssertNotCalled(suite.T(), "SoftDeleteInstallments", mock.Anything, mock.Anything, mock.Anything)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveInstallments", mock.Anything, mock.Anything)
}

func (suite *ReceivableServiceTestSuite) TestUpdateSchedule_TotalMismatch() {
	ctx := context.Background()
	receivable, _ := openReceivable()
	req := dto.UpdateScheduleRequest{
		Schedule: []dto.ScheduleItemRequest{{DueDate: day(2026, 5, 15), AmountDue: money("2999.98")}},
	}

	suite.mockRepo.On("FindReceivableByIDForUpdate", mock.Anything, receivable.ReceivableID).Return(receivable, nil).Once()
	suite.mockRepo.On("CountPaymentsByReceivableID", mock.Anything, receivable.ReceivableID).Return(0, nil).Once()

	_, err := suite.service.UpdateSchedule(ctx, receivable.ReceivableID, req, suite.userID)

	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockRepo.AssertNotCalled(suite.T(), "SoftDeleteInstallments", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ReceivableServiceTestSuite) TestUpdateSchedule_ClosedReceivable() {
	ctx := context.Background()
	receivable, _ := openReceivable()
	receivable.Status = domain.StatusWrittenOff
	req := dto.UpdateScheduleRequest{
		Schedule: []dto.ScheduleItemRequest{{DueDate: day(2026, 5, 15), AmountDue: money("3000")}},
	}

	suite.mockRepo.On("FindReceivableByIDForUpdate", mock.Anything, receivable.ReceivableID).Return(receivable, nil).Once()

	_, err := suite.service.UpdateSchedule(ctx, receivable.ReceivableID, req, suite.userID)

	suite.ErrorIs(err, apperrors.ErrConflict)
}

func (suite *ReceivableServiceTestSuite) TestChangeStatus_CancelCascadesToOpenInstallments() {
	ctx := context.Background()
	receivable, installments := openReceivable()
	installments[0].Status = domain.StatusPaid
	installments[1].Status = domain.StatusPartiallyPaid

	suite.mockRepo.On("FindReceivableByIDForUpdate", mock.Anything, receivable.ReceivableID).Return(receivable, nil).Once()
	suite.mockRepo.On("FindInstallmentsForUpdate", mock.Anything, receivable.ReceivableID).Return(installments, nil).Once()
	suite.mockRepo.On("UpdateInstallment", mock.Anything, mock.MatchedBy(func(i domain.InstallmentSchedule) bool {
		return i.Status == domain.StatusCancelled && i.InstallmentNumber > 1
	})).Return(nil).Twice()
	suite.mockRepo.On("UpdateReceivable", mock.Anything, mock.MatchedBy(func(r domain.Receivable) bool {
		return r.Status == domain.StatusCancelled
	})).Return(nil).Once()

	updated, err := suite.service.ChangeStatus(ctx, receivable.ReceivableID, dto.ChangeReceivableStatusRequest{
		Status: domain.StatusCancelled,
		Reason: "Route contract terminated",
	}, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.StatusCancelled, updated.Status)
	suite.Equal(domain.StatusPaid, updated.Installments[0].Status)
	suite.Equal(domain.StatusCancelled, updated.Installments[1].Status)
	suite.Equal(domain.StatusCancelled, updated.Installments[2].Status)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *ReceivableServiceTestSuite) TestChangeStatus_OverdueOnlyMarksPastDueInstallments() {
	ctx := context.Background()
	receivable, installments := openReceivable()
	suite.now = time.Date(2026, 6, 20, 12, 0, 0, 0, time.UTC)

	suite.mockRepo.On("FindReceivableByIDForUpdate", mock.Anything, receivable.ReceivableID).Return(receivable, nil).Once()
	suite.mockRepo.On("FindInstallmentsForUpdate", mock.Anything, receivable.ReceivableID).Return(installments, nil).Once()
	suite.mockRepo.On("UpdateInstallment", mock.Anything, mock.MatchedBy(func(i domain.InstallmentSchedule) bool {
		return i.Status == domain.StatusOverdue && i.InstallmentNumber <= 2
	})).Return(nil).Twice()
	suite.mockRepo.On("UpdateReceivable", mock.Anything, mock.Anything).Return(nil).Once()

	updated, err := suite.service.ChangeStatus(ctx, receivable.ReceivableID, dto.ChangeReceivableStatusRequest{
		Status: domain.StatusOverdue,
		Reason: "Missed two months",
	}, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.StatusOverdue, updated.Status)
	suite.Equal(domain.StatusPending, updated.Installments[2].Status)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *ReceivableServiceTestSuite) TestChangeStatus_FromClosedStatus() {
	ctx := context.Background()
	receivable, _ := openReceivable()
	receivable.Status = domain.StatusPaid

	suite.mockRepo.On("FindReceivableByIDForUpdate", mock.Anything, receivable.ReceivableID).Return(receivable, nil).Once()

	_, err := suite.service.ChangeStatus(ctx, receivable.ReceivableID, dto.ChangeReceivableStatusRequest{
		Status: domain.StatusWrittenOff,
		Reason: "n/a",
	}, suite.userID)

	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockRepo.AssertNotCalled(suite.T(), "UpdateReceivable", mock.Anything, mock.Anything)
}

func (suite *ReceivableServiceTestSuite) TestChangeStatus_OverdueToOverdue() {
	ctx := context.Background()
	receivable, _ := openReceivable()
	receivable.Status = domain.StatusOverdue

	suite.mockRepo.On("FindReceivableByIDForUpdate", mock.Anything, receivable.ReceivableID).Return(receivable, nil).Once()

	_, err := suite.service.ChangeStatus(ctx, receivable.ReceivableID, dto.ChangeReceivableStatusRequest{
		Status: domain.StatusOverdue,
		Reason: "still late",
	}, suite.userID)

	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *ReceivableServiceTestSuite) TestGetReceivable_DeletedIsNotFound() {
	ctx := context.Background()
	receivable, _ := openReceivable()
	receivable.IsDeleted = true

	suite.mockRepo.On("FindReceivableByID", mock.Anything, receivable.ReceivableID).Return(receivable, nil).Once()

	_, err := suite.service.GetReceivable(ctx, receivable.ReceivableID)

	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.mockRepo.AssertNotCalled(suite.T(), "FindInstallmentsByReceivableID", mock.Anything, mock.Anything)
}

func (suite *ReceivableServiceTestSuite) TestListInstallmentPayments() {
	ctx := context.Background()
	receivable, installments := openReceivable()
	payments := []domain.InstallmentPayment{
		{PaymentID: uuid.NewString(), InstallmentID: installments[0].InstallmentID, AmountApplied: money("1000")},
	}

	suite.mockRepo.On("FindReceivableByID", mock.Anything, receivable.ReceivableID).Return(receivable, nil).Once()
	suite.mockRepo.On("FindInstallmentsByReceivableID", mock.Anything, receivable.ReceivableID).Return(installments, nil).Once()
	suite.mockRepo.On("ListPaymentsByReceivableID", mock.Anything, receivable.ReceivableID).Return(payments, nil).Once()

	got, err := suite.service.ListInstallmentPayments(ctx, receivable.ReceivableID)

	suite.Require().NoError(err)
	suite.Len(got, 1)
}

func TestReceivableService(t *testing.T) {
	suite.Run(t, new(ReceivableServiceTestSuite))
}
