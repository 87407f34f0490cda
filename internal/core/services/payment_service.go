package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/transit_finance/internal/apperrors"
	"github.com/SscSPs/transit_finance/internal/core/domain"
	portsrepo "github.com/SscSPs/transit_finance/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/transit_finance/internal/core/ports/services"
	"github.com/SscSPs/transit_finance/internal/dto"
	"github.com/SscSPs/transit_finance/internal/utils"
	"github.com/SscSPs/transit_finance/internal/utils/accounting"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// paymentService applies cash to installments and cascades overflow forward.
type paymentService struct {
	BaseService
	receivableRepo portsrepo.ReceivableRepositoryFacade
	revenueSvc     portssvc.RevenueLedgerSvc
}

// NewPaymentService creates a new PaymentSvc.
func NewPaymentService(repo portsrepo.ReceivableRepositoryFacade, revenueSvc portssvc.RevenueLedgerSvc, options ...ServiceOption) portssvc.PaymentSvc {
	return &paymentService{
		BaseService:    newBaseService(options),
		receivableRepo: repo,
		revenueSvc:     revenueSvc,
	}
}

var _ portssvc.PaymentSvc = (*paymentService)(nil)

// RecordPayment applies req.AmountPaid to the installment, then to later installments in
// ascending order. Either every allocation, the payment rows, the receivable aggregate and the
// revenue record are persisted, or none are.
func (s *paymentService) RecordPayment(ctx context.Context, installmentID string, req dto.RecordPaymentRequest, userID string) (_ *domain.PaymentResult, err error) {
	ctx, span := s.StartSpan(ctx, "payment.RecordPayment", attribute.String("installment.id", installmentID))
	defer func() { EndSpan(span, err) }()

	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	if err := accounting.ValidatePositiveMoney(req.AmountPaid); err != nil {
		return nil, fmt.Errorf("amount paid: %w", err)
	}
	method := req.PaymentMethod
	if method == "" {
		method = domain.PaymentCash
	}

	target, err := s.receivableRepo.FindInstallmentByID(ctx, installmentID)
	if err != nil {
		return nil, err
	}
	if target.IsDeleted {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("installment %s", installmentID))
	}
	receivableID := target.ReceivableID

	var result *domain.PaymentResult
	err = s.WithLock(ctx, receivableLockKey(receivableID), func(ctx context.Context) error {
		return s.InTx(ctx, func(ctx context.Context) error {
			receivable, err := s.receivableRepo.FindReceivableByIDForUpdate(ctx, receivableID)
			if err != nil {
				return err
			}
			if receivable.IsDeleted {
				return apperrors.NewNotFoundError(fmt.Sprintf("receivable %s", receivableID))
			}
			if receivable.Status.IsClosed() {
				return fmt.Errorf("%w: receivable %s is %s", apperrors.ErrValidation, receivable.Code, receivable.Status)
			}

			installments, err := s.receivableRepo.FindInstallmentsForUpdate(ctx, receivableID)
			if err != nil {
				return err
			}
			idx := -1
			for i := range installments {
				if installments[i].InstallmentID == installmentID {
					idx = i
					break
				}
			}
			if idx < 0 {
				return apperrors.NewNotFoundError(fmt.Sprintf("installment %s", installmentID))
			}
			current := installments[idx]
			if current.Status.IsClosed() {
				return fmt.Errorf("%w: installment %d of %s is %s", apperrors.ErrValidation, current.InstallmentNumber, receivable.Code, current.Status)
			}

			outstanding := accounting.OutstandingFrom(current.InstallmentNumber, installments)
			if req.AmountPaid.GreaterThan(outstanding) {
				return fmt.Errorf("%w: payment of %s exceeds the %s outstanding from installment %d",
					apperrors.ErrValidation, utils.FormatMoney(req.AmountPaid), utils.FormatMoney(outstanding), current.InstallmentNumber)
			}

			plan := accounting.PlanCascade(current.InstallmentNumber, req.AmountPaid, installments)
			before := *receivable

			revenue, err := s.revenueSvc.RecordReceivableCollection(ctx, dto.ReceivableCollection{
				ReceivableID:    receivableID,
				ReceivableCode:  receivable.Code,
				DebtorName:      receivable.DebtorName,
				Amount:          plan.Applied(),
				Date:            req.PaymentDate,
				PaymentMethod:   method,
				ReferenceNumber: req.ReferenceNumber,
			}, userID)
			if err != nil {
				return err
			}

			now := s.Now()
			byID := make(map[string]int, len(installments))
			for i := range installments {
				byID[installments[i].InstallmentID] = i
			}
			payments := make([]domain.InstallmentPayment, 0, len(plan.Allocations))
			paymentIDs := make([]string, 0, len(plan.Allocations))
			for _, alloc := range plan.Allocations {
				i := byID[alloc.InstallmentID]
				updated := accounting.ApplyAllocation(installments[i], alloc)
				updated.Touch(userID, now)
				if err := s.receivableRepo.UpdateInstallment(ctx, updated); err != nil {
					return err
				}
				updated.Version++
				installments[i] = updated

				payment := domain.InstallmentPayment{
					PaymentID:       uuid.NewString(),
					InstallmentID:   alloc.InstallmentID,
					RevenueID:       revenue.RevenueID,
					AmountApplied:   alloc.AmountApplied,
					PaymentDate:     dateOnly(req.PaymentDate),
					PaymentMethod:   method,
					ReferenceNumber: req.ReferenceNumber,
					IsCarriedOver:   alloc.IsCarriedOver,
					CreatedAt:       now,
					CreatedBy:       userID,
				}
				payments = append(payments, payment)
				paymentIDs = append(paymentIDs, payment.PaymentID)
			}
			if err := s.receivableRepo.SavePayments(ctx, payments); err != nil {
				return err
			}

			receivable.ApplyPayment(plan.Applied())
			receivable.Touch(userID, now)
			if err := s.receivableRepo.UpdateReceivable(ctx, *receivable); err != nil {
				return err
			}
			receivable.Version++
			receivable.Installments = installments

			s.RecordAudit(ctx, domain.AuditPayment, auditModuleReceivable, receivableID, before, receivable, userID)

			result = &domain.PaymentResult{
				Success:         true,
				AmountPaid:      req.AmountPaid,
				Allocations:     plan.Allocations,
				RemainingAmount: plan.Remaining,
				PaymentIDs:      paymentIDs,
				RevenueID:       revenue.RevenueID,
				Receivable:      receivable,
			}
			return nil
		})
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrValidation) && !errors.Is(err, apperrors.ErrNotFound) && !errors.Is(err, apperrors.ErrConflict) {
			s.LogError(ctx, err, "Failed to record payment", slog.String("installment_id", installmentID))
		}
		return nil, err
	}

	s.LogInfo(ctx, "Payment recorded",
		slog.String("receivable_id", receivableID),
		slog.String("installment_id", installmentID),
		slog.String("amount", utils.FormatMoney(req.AmountPaid)),
		slog.Int("allocations", len(result.Allocations)))
	return result, nil
}
