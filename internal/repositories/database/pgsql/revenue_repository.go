package pgsql

import (
	"context"

	"github.com/SscSPs/transit_finance/internal/apperrors"
	"github.com/SscSPs/transit_finance/internal/core/domain"
	portsrepo "github.com/SscSPs/transit_finance/internal/core/ports/repositories"
	"github.com/SscSPs/transit_finance/internal/models"
	"github.com/SscSPs/transit_finance/internal/utils/mapping"
	"github.com/SscSPs/transit_finance/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const revenueSourceColumns = `source_id, code, name, account_code, is_active,
		created_at, created_by, last_updated_at, last_updated_by, version`

const revenueColumns = `revenue_id, code, source_id, amount, revenue_date, description, payment_method,
		reference_number, receivable_id, journal_entry_id, reversal_entry_id, status,
		created_at, created_by, last_updated_at, last_updated_by, version`

const revenueExists = `SELECT EXISTS (SELECT 1 FROM revenues WHERE revenue_id = $1);`

type PgxRevenueRepository struct {
	BaseRepository
}

// newPgxRevenueRepository creates a new repository for revenue sources and revenue records.
func newPgxRevenueRepository(pool *pgxpool.Pool) *PgxRevenueRepository {
	return &PgxRevenueRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxRevenueRepository implements portsrepo.RevenueRepositoryFacade
var _ portsrepo.RevenueRepositoryFacade = (*PgxRevenueRepository)(nil)

func scanRevenueSource(row pgx.Row) (models.RevenueSource, error) {
	var m models.RevenueSource
	err := row.Scan(
		&m.SourceID,
		&m.Code,
		&m.Name,
		&m.AccountCode,
		&m.IsActive,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
		&m.Version,
	)
	return m, err
}

func scanRevenue(row pgx.Row) (models.Revenue, error) {
	var m models.Revenue
	err := row.Scan(
		&m.RevenueID,
		&m.Code,
		&m.SourceID,
		&m.Amount,
		&m.RevenueDate,
		&m.Description,
		&m.PaymentMethod,
		&m.ReferenceNumber,
		&m.ReceivableID,
		&m.JournalEntryID,
		&m.ReversalEntryID,
		&m.Status,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
		&m.Version,
	)
	return m, err
}

// FindSourceByID retrieves a revenue source by its ID.
func (r *PgxRevenueRepository) FindSourceByID(ctx context.Context, sourceID string) (*domain.RevenueSource, error) {
	query := `SELECT ` + revenueSourceColumns + ` FROM revenue_sources WHERE source_id = $1;`
	m, err := scanRevenueSource(r.db(ctx).QueryRow(ctx, query, sourceID))
	if err != nil {
		return nil, mapPgError(err, "find revenue source "+sourceID)
	}
	d := mapping.ToDomainRevenueSource(m)
	return &d, nil
}

// FindSourceByCode retrieves a revenue source by its code.
func (r *PgxRevenueRepository) FindSourceByCode(ctx context.Context, code string) (*domain.RevenueSource, error) {
	query := `SELECT ` + revenueSourceColumns + ` FROM revenue_sources WHERE code = $1;`
	m, err := scanRevenueSource(r.db(ctx).QueryRow(ctx, query, code))
	if err != nil {
		return nil, mapPgError(err, "find revenue source by code "+code)
	}
	d := mapping.ToDomainRevenueSource(m)
	return &d, nil
}

// ListSources retrieves every revenue source ordered by code.
func (r *PgxRevenueRepository) ListSources(ctx context.Context) ([]domain.RevenueSource, error) {
	query := `SELECT ` + revenueSourceColumns + ` FROM revenue_sources ORDER BY code;`
	rows, err := r.db(ctx).Query(ctx, query)
	if err != nil {
		return nil, mapPgError(err, "query revenue sources")
	}
	defer rows.Close()

	sources := []domain.RevenueSource{}
	for rows.Next() {
		m, err := scanRevenueSource(rows)
		if err != nil {
			return nil, mapPgError(err, "scan revenue source")
		}
		sources = append(sources, mapping.ToDomainRevenueSource(m))
	}
	if err := rows.Err(); err != nil {
		return nil, mapPgError(err, "iterate revenue sources")
	}
	return sources, nil
}

// SaveSource inserts a new revenue source.
func (r *PgxRevenueRepository) SaveSource(ctx context.Context, source domain.RevenueSource) error {
	m := mapping.ToModelRevenueSource(source)
	query := `
		INSERT INTO revenue_sources (` + revenueSourceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := r.db(ctx).Exec(ctx, query,
		m.SourceID,
		m.Code,
		m.Name,
		m.AccountCode,
		m.IsActive,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
		m.Version,
	)
	if err != nil {
		return mapPgError(err, "insert revenue source "+m.Code)
	}
	return nil
}

func (r *PgxRevenueRepository) findRevenue(ctx context.Context, revenueID string, forUpdate bool) (*domain.Revenue, error) {
	query := `SELECT ` + revenueColumns + ` FROM revenues WHERE revenue_id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	m, err := scanRevenue(r.db(ctx).QueryRow(ctx, query, revenueID))
	if err != nil {
		return nil, mapPgError(err, "find revenue "+revenueID)
	}
	d := mapping.ToDomainRevenue(m)
	return &d, nil
}

// FindRevenueByID retrieves a revenue record by its ID.
func (r *PgxRevenueRepository) FindRevenueByID(ctx context.Context, revenueID string) (*domain.Revenue, error) {
	return r.findRevenue(ctx, revenueID, false)
}

// FindRevenueByIDForUpdate retrieves a revenue record and locks its row.
func (r *PgxRevenueRepository) FindRevenueByIDForUpdate(ctx context.Context, revenueID string) (*domain.Revenue, error) {
	return r.findRevenue(ctx, revenueID, r.inTx(ctx))
}

// ListRevenues retrieves revenues newest first using token-based pagination.
func (r *PgxRevenueRepository) ListRevenues(ctx context.Context, filter portsrepo.RevenueFilter, limit int, nextToken *string) ([]domain.Revenue, *string, error) {
	if limit <= 0 {
		limit = 20
	}

	var f filterBuilder
	if filter.SourceID != "" {
		f.add("source_id = ?", filter.SourceID)
	}
	if filter.Status != "" {
		f.add("status = ?", filter.Status)
	}
	if filter.ReceivableID != "" {
		f.add("receivable_id = ?", filter.ReceivableID)
	}
	if filter.FromDate != nil {
		f.add("revenue_date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		f.add("revenue_date <= ?", *filter.ToDate)
	}
	if nextToken != nil && *nextToken != "" {
		cursor, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, apperrors.NewValidationError("invalid nextToken: " + err.Error())
		}
		f.add("(revenue_date, created_at, revenue_id) < (?, ?, ?)", cursor.Date, cursor.CreatedAt, cursor.ID)
	}

	query := `SELECT ` + revenueColumns + ` FROM revenues` + f.where() +
		` ORDER BY revenue_date DESC, created_at DESC, revenue_id DESC` + f.limit(limit+1)

	rows, err := r.db(ctx).Query(ctx, query, f.args...)
	if err != nil {
		return nil, nil, mapPgError(err, "query revenues")
	}
	defer rows.Close()

	ms := make([]models.Revenue, 0, limit+1)
	for rows.Next() {
		m, err := scanRevenue(rows)
		if err != nil {
			return nil, nil, mapPgError(err, "scan revenue")
		}
		ms = append(ms, m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, mapPgError(err, "iterate revenues")
	}

	var nextTokenVal *string
	if len(ms) > limit {
		last := ms[limit-1]
		token := pagination.EncodeToken(pagination.Cursor{Date: last.RevenueDate, CreatedAt: last.CreatedAt, ID: last.RevenueID})
		nextTokenVal = &token
		ms = ms[:limit]
	}

	result := make([]domain.Revenue, len(ms))
	for i, m := range ms {
		result[i] = mapping.ToDomainRevenue(m)
	}
	return result, nextTokenVal, nil
}

// SaveRevenue inserts a new revenue record.
func (r *PgxRevenueRepository) SaveRevenue(ctx context.Context, revenue domain.Revenue) error {
	m := mapping.ToModelRevenue(revenue)
	query := `
		INSERT INTO revenues (` + revenueColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17);
	`
	_, err := r.db(ctx).Exec(ctx, query,
		m.RevenueID,
		m.Code,
		m.SourceID,
		m.Amount,
		m.RevenueDate,
		m.Description,
		m.PaymentMethod,
		m.ReferenceNumber,
		m.ReceivableID,
		m.JournalEntryID,
		m.ReversalEntryID,
		m.Status,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
		m.Version,
	)
	if err != nil {
		return mapPgError(err, "insert revenue "+m.Code)
	}
	return nil
}

// UpdateRevenueLedgerLink writes the journal links and status of a revenue back, guarded by version.
func (r *PgxRevenueRepository) UpdateRevenueLedgerLink(ctx context.Context, revenue domain.Revenue) error {
	m := mapping.ToModelRevenue(revenue)
	query := `
		UPDATE revenues
		SET journal_entry_id = $3,
		    reversal_entry_id = $4,
		    status = $5,
		    last_updated_at = $6,
		    last_updated_by = $7,
		    version = version + 1
		WHERE revenue_id = $1 AND version = $2;
	`
	cmdTag, err := r.db(ctx).Exec(ctx, query,
		m.RevenueID,
		m.Version,
		m.JournalEntryID,
		m.ReversalEntryID,
		m.Status,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return mapPgError(err, "update ledger link of revenue "+m.RevenueID)
	}
	return r.checkVersioned(ctx, cmdTag, revenueExists, m.RevenueID, "update revenue")
}
