package services

import (
	"context"

	"github.com/SscSPs/transit_finance/internal/core/domain"
	"github.com/SscSPs/transit_finance/internal/dto"
)

// ReceivableReaderSvc defines read operations for receivables
type ReceivableReaderSvc interface {
	// GetReceivable retrieves a receivable with its installments.
	GetReceivable(ctx context.Context, receivableID string) (*domain.Receivable, error)

	// ListReceivables retrieves a page of receivables.
	ListReceivables(ctx context.Context, params dto.ListReceivablesParams) (*dto.ListReceivablesResponse, error)

	// ListInstallmentPayments retrieves every installment payment recorded under a receivable.
	ListInstallmentPayments(ctx context.Context, receivableID string) ([]domain.InstallmentPayment, error)
}

// ReceivableWriterSvc defines write operations for receivables and their schedules
type ReceivableWriterSvc interface {
	// CreateWithSchedule creates a receivable and its installment schedule.
	CreateWithSchedule(ctx context.Context, req dto.CreateReceivableRequest, userID string) (*domain.Receivable, error)

	// UpdateSchedule replaces the schedule of a receivable that has no recorded payments.
	UpdateSchedule(ctx context.Context, receivableID string, req dto.UpdateScheduleRequest, userID string) (*domain.Receivable, error)

	// ChangeStatus applies an operator status change (OVERDUE, CANCELLED, WRITTEN_OFF).
	ChangeStatus(ctx context.Context, receivableID string, req dto.ChangeReceivableStatusRequest, userID string) (*domain.Receivable, error)
}

// ReceivableSvcFacade combines all receivable-related service interfaces
type ReceivableSvcFacade interface {
	ReceivableReaderSvc
	ReceivableWriterSvc
}

// PaymentSvc applies cash against installments.
type PaymentSvc interface {
	// RecordPayment applies a payment to an installment, cascading any excess into later ones.
	RecordPayment(ctx context.Context, installmentID string, req dto.RecordPaymentRequest, userID string) (*domain.PaymentResult, error)
}
