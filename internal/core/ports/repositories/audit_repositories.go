package repositories

import (
	"context"

	"github.com/SscSPs/transit_finance/internal/core/domain"
)

// AuditRepository persists audit records.
type AuditRepository interface {
	SaveAuditRecord(ctx context.Context, record domain.AuditRecord) error
}

// DebtorDirectory resolves display names of debtors owned by external systems.
type DebtorDirectory interface {
	// ResolveDebtorName returns the display name of a debtor, or ErrNotFound.
	ResolveDebtorName(ctx context.Context, debtorType string, debtorID string) (string, error)
}
