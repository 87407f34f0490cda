package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/SscSPs/transit_finance/internal/core/domain"
	portsrepo "github.com/SscSPs/transit_finance/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/transit_finance/internal/core/ports/services"
	"github.com/SscSPs/transit_finance/internal/middleware"
	"github.com/SscSPs/transit_finance/internal/utils"
	"github.com/google/uuid"
)

// auditService stores audit records and forwards them to PostHog when configured.
type auditService struct {
	repo    portsrepo.AuditRepository
	posthog *utils.PosthogClientWrapper
}

// NewAuditService creates a new AuditSvc. posthog may be nil.
func NewAuditService(repo portsrepo.AuditRepository, posthog *utils.PosthogClientWrapper) portssvc.AuditSvc {
	return &auditService{repo: repo, posthog: posthog}
}

var _ portssvc.AuditSvc = (*auditService)(nil)

// Record never fails the caller; problems are logged.
func (s *auditService) Record(ctx context.Context, record domain.AuditRecord) {
	if record.AuditID == "" {
		record.AuditID = uuid.NewString()
	}
	logger := middleware.GetLoggerFromCtx(ctx)

	if s.repo != nil {
		if err := s.repo.SaveAuditRecord(ctx, record); err != nil {
			logger.Warn("Failed to store audit record",
				slog.String("error", err.Error()),
				slog.String("module", record.Module),
				slog.String("record_id", record.RecordID),
				slog.String("action", string(record.Action)))
		}
	}

	s.posthog.Enqueue(record.Actor, "audit_"+strings.ToLower(string(record.Action)), map[string]any{
		"module":    record.Module,
		"record_id": record.RecordID,
		"audit_id":  record.AuditID,
	})
}
