package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/transit_finance/internal/apperrors"
	"github.com/SscSPs/transit_finance/internal/core/domain"
	portsrepo "github.com/SscSPs/transit_finance/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/transit_finance/internal/core/ports/services"
	"github.com/SscSPs/transit_finance/internal/dto"
	"github.com/SscSPs/transit_finance/internal/utils"
	"github.com/SscSPs/transit_finance/internal/utils/accounting"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const auditModuleReceivable = "RECEIVABLE"

// receivableService manages receivables and their installment schedules.
type receivableService struct {
	BaseService
	receivableRepo portsrepo.ReceivableRepositoryFacade
	debtors        portsrepo.DebtorDirectory
}

// NewReceivableService creates a new ReceivableService.
func NewReceivableService(repo portsrepo.ReceivableRepositoryFacade, debtors portsrepo.DebtorDirectory, options ...ServiceOption) portssvc.ReceivableSvcFacade {
	return &receivableService{
		BaseService:    newBaseService(options),
		receivableRepo: repo,
		debtors:        debtors,
	}
}

var _ portssvc.ReceivableSvcFacade = (*receivableService)(nil)

func receivableLockKey(receivableID string) string {
	return "receivable:" + receivableID
}

// UnknownDebtorName is the placeholder stored when a debtor's name cannot be resolved.
func UnknownDebtorName(debtorID string) string {
	return fmt.Sprintf("Unknown debtor (%s)", debtorID)
}

// resolveDebtorName never fails: lookup problems fall back to a placeholder.
func (s *receivableService) resolveDebtorName(ctx context.Context, debtorType, debtorID string) string {
	if s.debtors == nil {
		return UnknownDebtorName(debtorID)
	}
	name, err := s.debtors.ResolveDebtorName(ctx, debtorType, debtorID)
	if err != nil || name == "" {
		attrs := []any{slog.String("debtor_type", debtorType), slog.String("debtor_id", debtorID)}
		if err != nil {
			attrs = append(attrs, slog.String("error", err.Error()))
		}
		s.GetLogger(ctx).Warn("Debtor name lookup failed, using placeholder", attrs...)
		return UnknownDebtorName(debtorID)
	}
	return name
}

// finalDueDate is the due date of the last installment; a receivable falls due with it.
func finalDueDate(items []domain.ScheduleItem) time.Time {
	return items[len(items)-1].DueDate
}

// newInstallments builds persisted-ready installment rows for receivableID.
func (s *receivableService) newInstallments(receivableID string, items []domain.ScheduleItem, userID string) []domain.InstallmentSchedule {
	rows := accounting.BuildSchedule(receivableID, items)
	audit := domain.NewAuditFields(userID, s.Now())
	for i := range rows {
		rows[i].InstallmentID = uuid.NewString()
		rows[i].AuditFields = audit
	}
	return rows
}

func (s *receivableService) CreateWithSchedule(ctx context.Context, req dto.CreateReceivableRequest, userID string) (*domain.Receivable, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	if err := accounting.ValidatePositiveMoney(req.TotalAmount); err != nil {
		return nil, fmt.Errorf("total amount: %w", err)
	}

	items := dto.ToScheduleItems(req.Schedule)
	if len(items) == 0 {
		items = []domain.ScheduleItem{{DueDate: req.DueDate, AmountDue: req.TotalAmount}}
	}
	for i := range items {
		items[i].DueDate = dateOnly(items[i].DueDate)
	}
	if err := accounting.ValidateSchedule(req.TotalAmount, items); err != nil {
		return nil, err
	}

	// Outside the transaction: a failed lookup query would abort it.
	debtorName := s.resolveDebtorName(ctx, req.DebtorType, req.DebtorID)

	now := s.Now()
	code, err := utils.GenerateDocumentCode("AR", now)
	if err != nil {
		return nil, fmt.Errorf("generating receivable code: %w", err)
	}
	receivable := domain.Receivable{
		ReceivableID:    uuid.NewString(),
		Code:            code,
		DebtorType:      req.DebtorType,
		DebtorID:        req.DebtorID,
		DebtorName:      debtorName,
		Description:     req.Description,
		TotalAmount:     req.TotalAmount,
		PaidAmount:      decimal.Zero,
		Balance:         req.TotalAmount,
		DueDate:         finalDueDate(items),
		Status:          domain.StatusPending,
		InstallmentPlan: req.InstallmentPlan,
		AuditFields:     domain.NewAuditFields(userID, now),
	}
	receivable.Installments = s.newInstallments(receivable.ReceivableID, items, userID)

	err = s.InTx(ctx, func(ctx context.Context) error {
		if err := s.receivableRepo.SaveReceivable(ctx, receivable); err != nil {
			return err
		}
		if err := s.receivableRepo.SaveInstallments(ctx, receivable.Installments); err != nil {
			return err
		}
		s.RecordAudit(ctx, domain.AuditCreate, auditModuleReceivable, receivable.ReceivableID, nil, receivable, userID)
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to create receivable", slog.String("debtor_id", req.DebtorID))
		return nil, err
	}

	s.LogInfo(ctx, "Receivable created",
		slog.String("receivable_id", receivable.ReceivableID),
		slog.String("code", receivable.Code),
		slog.Int("installments", len(receivable.Installments)))
	return &receivable, nil
}

// lockLiveReceivable loads and locks a receivable, treating soft-deleted rows as missing.
func (s *receivableService) lockLiveReceivable(ctx context.Context, receivableID string) (*domain.Receivable, error) {
	receivable, err := s.receivableRepo.FindReceivableByIDForUpdate(ctx, receivableID)
	if err != nil {
		return nil, err
	}
	if receivable.IsDeleted {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("receivable %s", receivableID))
	}
	return receivable, nil
}

func (s *receivableService) UpdateSchedule(ctx context.Context, receivableID string, req dto.UpdateScheduleRequest, userID string) (*domain.Receivable, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	items := dto.ToScheduleItems(req.Schedule)
	for i := range items {
		items[i].DueDate = dateOnly(items[i].DueDate)
	}

	var receivable *domain.Receivable
	err := s.WithLock(ctx, receivableLockKey(receivableID), func(ctx context.Context) error {
		return s.InTx(ctx, func(ctx context.Context) error {
			var err error
			receivable, err = s.lockLiveReceivable(ctx, receivableID)
			if err != nil {
				return err
			}
			if receivable.Status.IsClosed() {
				return apperrors.NewConflictError(fmt.Sprintf("receivable %s is %s", receivable.Code, receivable.Status))
			}
			paymentCount, err := s.receivableRepo.CountPaymentsByReceivableID(ctx, receivableID)
			if err != nil {
				return err
			}
			if paymentCount > 0 {
				return apperrors.NewConflictError(fmt.Sprintf("receivable %s already has %d recorded payment(s)", receivable.Code, paymentCount))
			}
			if err := accounting.ValidateSchedule(receivable.TotalAmount, items); err != nil {
				return err
			}

			before := *receivable
			if before.Installments, err = s.receivableRepo.FindInstallmentsForUpdate(ctx, receivableID); err != nil {
				return err
			}

			if err := s.receivableRepo.SoftDeleteInstallments(ctx, receivableID, userID); err != nil {
				return err
			}
			receivable.Installments = s.newInstallments(receivableID, items, userID)
			if err := s.receivableRepo.SaveInstallments(ctx, receivable.Installments); err != nil {
				return err
			}

			if req.InstallmentPlan != nil {
				receivable.InstallmentPlan = *req.InstallmentPlan
			}
			receivable.DueDate = finalDueDate(items)
			receivable.Touch(userID, s.Now())
			if err := s.receivableRepo.UpdateReceivable(ctx, *receivable); err != nil {
				return err
			}
			receivable.Version++

			s.RecordAudit(ctx, domain.AuditSchedule, auditModuleReceivable, receivableID, before, receivable, userID)
			return nil
		})
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrValidation) && !errors.Is(err, apperrors.ErrConflict) && !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to update schedule", slog.String("receivable_id", receivableID))
		}
		return nil, err
	}

	s.LogInfo(ctx, "Receivable schedule replaced", slog.String("receivable_id", receivableID), slog.Int("installments", len(items)))
	return receivable, nil
}

func (s *receivableService) ChangeStatus(ctx context.Context, receivableID string, req dto.ChangeReceivableStatusRequest, userID string) (*domain.Receivable, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}

	var receivable *domain.Receivable
	err := s.WithLock(ctx, receivableLockKey(receivableID), func(ctx context.Context) error {
		return s.InTx(ctx, func(ctx context.Context) error {
			var err error
			receivable, err = s.lockLiveReceivable(ctx, receivableID)
			if err != nil {
				return err
			}
			if receivable.Status.IsClosed() {
				return apperrors.NewConflictError(fmt.Sprintf("receivable %s is %s", receivable.Code, receivable.Status))
			}
			if !receivable.Status.CanTransitionTo(req.Status) {
				return fmt.Errorf("%w: receivable %s cannot move from %s to %s", apperrors.ErrValidation, receivable.Code, receivable.Status, req.Status)
			}
			before := *receivable

			installments, err := s.receivableRepo.FindInstallmentsForUpdate(ctx, receivableID)
			if err != nil {
				return err
			}
			now := s.Now()
			today := dateOnly(now)
			for i := range installments {
				inst := &installments[i]
				if inst.Status.IsClosed() {
					continue
				}
				// OVERDUE only touches installments already past due.
				if req.Status == domain.StatusOverdue && !inst.DueDate.Before(today) {
					continue
				}
				inst.Status = req.Status
				inst.Touch(userID, now)
				if err := s.receivableRepo.UpdateInstallment(ctx, *inst); err != nil {
					return err
				}
				inst.Version++
			}

			receivable.Status = req.Status
			receivable.Touch(userID, now)
			if err := s.receivableRepo.UpdateReceivable(ctx, *receivable); err != nil {
				return err
			}
			receivable.Version++
			receivable.Installments = installments

			s.RecordAudit(ctx, domain.AuditStatus, auditModuleReceivable, receivableID, before, receivable, userID)
			return nil
		})
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrValidation) && !errors.Is(err, apperrors.ErrConflict) && !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to change receivable status", slog.String("receivable_id", receivableID))
		}
		return nil, err
	}

	s.LogInfo(ctx, "Receivable status changed",
		slog.String("receivable_id", receivableID),
		slog.String("status", string(req.Status)),
		slog.String("reason", req.Reason))
	return receivable, nil
}

func (s *receivableService) GetReceivable(ctx context.Context, receivableID string) (*domain.Receivable, error) {
	receivable, err := s.receivableRepo.FindReceivableByID(ctx, receivableID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to get receivable", slog.String("receivable_id", receivableID))
		}
		return nil, err
	}
	if receivable.IsDeleted {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("receivable %s", receivableID))
	}
	if receivable.Installments, err = s.receivableRepo.FindInstallmentsByReceivableID(ctx, receivableID); err != nil {
		s.LogError(ctx, err, "Failed to get installments", slog.String("receivable_id", receivableID))
		return nil, err
	}
	return receivable, nil
}

func (s *receivableService) ListReceivables(ctx context.Context, params dto.ListReceivablesParams) (*dto.ListReceivablesResponse, error) {
	if err := dto.Validate(params); err != nil {
		return nil, err
	}
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	filter := portsrepo.ReceivableFilter{
		Status:     domain.SettlementStatus(params.Status),
		DebtorType: params.DebtorType,
		DebtorID:   params.DebtorID,
	}
	receivables, nextToken, err := s.receivableRepo.ListReceivables(ctx, filter, limit, params.NextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list receivables", slog.Int("limit", limit))
		return nil, err
	}
	if receivables == nil {
		receivables = []domain.Receivable{}
	}
	return &dto.ListReceivablesResponse{Receivables: receivables, NextToken: nextToken}, nil
}

func (s *receivableService) ListInstallmentPayments(ctx context.Context, receivableID string) ([]domain.InstallmentPayment, error) {
	if _, err := s.GetReceivable(ctx, receivableID); err != nil {
		return nil, err
	}
	payments, err := s.receivableRepo.ListPaymentsByReceivableID(ctx, receivableID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list installment payments", slog.String("receivable_id", receivableID))
		return nil, err
	}
	if payments == nil {
		payments = []domain.InstallmentPayment{}
	}
	return payments, nil
}
