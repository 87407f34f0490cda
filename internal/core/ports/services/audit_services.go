package services

import (
	"context"

	"github.com/SscSPs/transit_finance/internal/core/domain"
)

// AuditSvc receives audit records. Recording is best-effort and never reports failure.
type AuditSvc interface {
	Record(ctx context.Context, record domain.AuditRecord)
}
