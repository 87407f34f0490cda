package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/SscSPs/transit_finance/internal/core/domain"
	portsrepo "github.com/SscSPs/transit_finance/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/transit_finance/internal/core/ports/services"
	"github.com/SscSPs/transit_finance/internal/middleware"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/SscSPs/transit_finance/internal/core/services"

// BaseService provides common functionality for all services
type BaseService struct {
	TxManager portsrepo.TransactionManager
	Locker    portsrepo.Locker
	Auditor   portssvc.AuditSvc

	// now is swapped in tests.
	now func() time.Time
}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	return middleware.GetLoggerFromCtx(ctx)
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	args := make([]any, 0, len(keyvals)+1)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	s.GetLogger(ctx).Error(msg, args...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Debug(msg, keyvals...)
}

// Now returns the service clock in UTC.
func (s *BaseService) Now() time.Time {
	if s.now != nil {
		return s.now().UTC()
	}
	return time.Now().UTC()
}

// StartSpan opens a tracing span for a ledger operation. The global tracer provider is a
// no-op unless the process installs one.
func (s *BaseService) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, name, trace.WithAttributes(attrs...))
}

// EndSpan records err on span (if any) and ends it.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// InTx runs fn inside the service's transaction manager. Without one, fn runs directly.
func (s *BaseService) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.TxManager == nil {
		return fn(ctx)
	}
	return s.TxManager.RunInTx(ctx, fn)
}

// WithLock holds key in the distributed locker (when configured) for the duration of fn.
func (s *BaseService) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	if s.Locker == nil {
		return fn(ctx)
	}
	unlock, err := s.Locker.Lock(ctx, key)
	if err != nil {
		return err
	}
	defer unlock()
	return fn(ctx)
}

// RecordAudit schedules an audit record to be emitted once the current transaction commits.
// Marshalling or delivery problems are logged and never reach the caller.
func (s *BaseService) RecordAudit(ctx context.Context, action domain.AuditAction, module, recordID string, before, after any, actor string) {
	if s.Auditor == nil {
		return
	}
	record := domain.AuditRecord{
		Action:    action,
		Module:    module,
		RecordID:  recordID,
		Actor:     actor,
		Timestamp: s.Now(),
	}
	var err error
	if before != nil {
		if record.Before, err = json.Marshal(before); err != nil {
			s.LogError(ctx, err, "Failed to marshal audit snapshot", slog.String("record_id", recordID))
			record.Before = nil
		}
	}
	if record.After, err = json.Marshal(after); err != nil {
		s.LogError(ctx, err, "Failed to marshal audit snapshot", slog.String("record_id", recordID))
		record.After = json.RawMessage("null")
	}

	emit := func(ctx context.Context) { s.Auditor.Record(ctx, record) }
	if s.TxManager == nil {
		emit(ctx)
		return
	}
	s.TxManager.AfterCommit(ctx, emit)
}

// ServiceOption is a functional option applied to the BaseService of any service.
type ServiceOption func(*BaseService)

// WithTransactionManager sets the transaction manager used for mutating operations.
func WithTransactionManager(tm portsrepo.TransactionManager) ServiceOption {
	return func(s *BaseService) {
		s.TxManager = tm
	}
}

// WithLocker sets the distributed locker used to serialise work per aggregate.
func WithLocker(l portsrepo.Locker) ServiceOption {
	return func(s *BaseService) {
		s.Locker = l
	}
}

// WithAuditor sets the audit collaborator.
func WithAuditor(a portssvc.AuditSvc) ServiceOption {
	return func(s *BaseService) {
		s.Auditor = a
	}
}

// WithClock overrides the service clock.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *BaseService) {
		s.now = now
	}
}

func newBaseService(options []ServiceOption) BaseService {
	var base BaseService
	for _, option := range options {
		option(&base)
	}
	return base
}
