package repositories

import (
	"context"

	"github.com/SscSPs/transit_finance/internal/core/domain"
)

// ReceivableFilter narrows ListReceivables. Zero values mean "any".
type ReceivableFilter struct {
	Status     domain.SettlementStatus
	DebtorType string
	DebtorID   string
}

// ReceivableReader defines read operations for receivables.
type ReceivableReader interface {
	// FindReceivableByID retrieves a receivable (without installments), including soft-deleted ones.
	FindReceivableByID(ctx context.Context, receivableID string) (*domain.Receivable, error)

	// FindReceivableByIDForUpdate is FindReceivableByID with a row lock.
	FindReceivableByIDForUpdate(ctx context.Context, receivableID string) (*domain.Receivable, error)

	// ListReceivables retrieves non-deleted receivables ordered by due date using token-based pagination.
	ListReceivables(ctx context.Context, filter ReceivableFilter, limit int, nextToken *string) ([]domain.Receivable, *string, error)
}

// ReceivableWriter defines write operations for receivables.
type ReceivableWriter interface {
	// SaveReceivable persists a new receivable.
	SaveReceivable(ctx context.Context, receivable domain.Receivable) error

	// UpdateReceivable writes paid amount, balance, status and total back.
	// Fails with ErrConflict when the stored version differs from receivable.Version.
	UpdateReceivable(ctx context.Context, receivable domain.Receivable) error
}

// InstallmentReader defines read operations for installment schedules and their payments.
type InstallmentReader interface {
	// FindInstallmentByID retrieves one installment row, including soft-deleted ones.
	FindInstallmentByID(ctx context.Context, installmentID string) (*domain.InstallmentSchedule, error)

	// FindInstallmentsByReceivableID retrieves non-deleted installments ordered by number.
	FindInstallmentsByReceivableID(ctx context.Context, receivableID string) ([]domain.InstallmentSchedule, error)

	// FindInstallmentsForUpdate is FindInstallmentsByReceivableID with row locks.
	FindInstallmentsForUpdate(ctx context.Context, receivableID string) ([]domain.InstallmentSchedule, error)

	// CountPaymentsByReceivableID counts installment payments recorded under a receivable.
	CountPaymentsByReceivableID(ctx context.Context, receivableID string) (int, error)

	// ListPaymentsByReceivableID retrieves installment payments under a receivable, oldest first.
	ListPaymentsByReceivableID(ctx context.Context, receivableID string) ([]domain.InstallmentPayment, error)
}

// InstallmentWriter defines write operations for installment schedules and their payments.
type InstallmentWriter interface {
	// SaveInstallments persists a batch of new installment rows.
	SaveInstallments(ctx context.Context, installments []domain.InstallmentSchedule) error

	// UpdateInstallment writes amount paid, balance, carried-over amount and status back.
	// Fails with ErrConflict when the stored version differs from installment.Version.
	UpdateInstallment(ctx context.Context, installment domain.InstallmentSchedule) error

	// SoftDeleteInstallments marks every installment of a receivable as deleted.
	SoftDeleteInstallments(ctx context.Context, receivableID string, userID string) error

	// SavePayments persists a batch of installment payments.
	SavePayments(ctx context.Context, payments []domain.InstallmentPayment) error
}

// ReceivableRepositoryFacade combines all receivable-related repository interfaces
type ReceivableRepositoryFacade interface {
	ReceivableReader
	ReceivableWriter
	InstallmentReader
	InstallmentWriter
}
