package pgsql

import (
	"context"

	"github.com/SscSPs/transit_finance/internal/core/domain"
	portsrepo "github.com/SscSPs/transit_finance/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxAuditRepository struct {
	BaseRepository
}

// newPgxAuditRepository creates a new repository for the audit trail.
func newPgxAuditRepository(pool *pgxpool.Pool) *PgxAuditRepository {
	return &PgxAuditRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.AuditRepository = (*PgxAuditRepository)(nil)

// SaveAuditRecord appends a record to audit_logs. Before and After are stored as JSONB.
func (r *PgxAuditRepository) SaveAuditRecord(ctx context.Context, record domain.AuditRecord) error {
	query := `
		INSERT INTO audit_logs (audit_id, action, module, record_id, before_state, after_state, actor, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	var before, after []byte
	if len(record.Before) > 0 {
		before = record.Before
	}
	if len(record.After) > 0 {
		after = record.After
	}
	_, err := r.db(ctx).Exec(ctx, query,
		record.AuditID,
		string(record.Action),
		record.Module,
		record.RecordID,
		before,
		after,
		record.Actor,
		record.Timestamp,
	)
	if err != nil {
		return mapPgError(err, "insert audit record for "+record.Module+" "+record.RecordID)
	}
	return nil
}
