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

const journalEntryColumns = `entry_id, code, entry_date, description, source_module, reference_id, status,
		adjustment_of, reversal_of, prepared_by, posted_by, posted_at,
		is_deleted, deleted_at, deleted_by, delete_reason, total_debit, total_credit,
		created_at, created_by, last_updated_at, last_updated_by, version`

const journalLineColumns = `line_id, entry_id, account_id, account_code, debit, credit, description, line_order`

const journalEntryExists = `SELECT EXISTS (SELECT 1 FROM journal_entries WHERE entry_id = $1);`

type PgxJournalRepository struct {
	BaseRepository
}

// newPgxJournalRepository creates a new repository for journal entries and their lines.
func newPgxJournalRepository(pool *pgxpool.Pool) *PgxJournalRepository {
	return &PgxJournalRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxJournalRepository implements portsrepo.JournalRepositoryFacade
var _ portsrepo.JournalRepositoryFacade = (*PgxJournalRepository)(nil)

func scanJournalEntry(row pgx.Row) (models.JournalEntry, error) {
	var m models.JournalEntry
	err := row.Scan(
		&m.EntryID,
		&m.Code,
		&m.EntryDate,
		&m.Description,
		&m.SourceModule,
		&m.ReferenceID,
		&m.Status,
		&m.AdjustmentOf,
		&m.ReversalOf,
		&m.PreparedBy,
		&m.PostedBy,
		&m.PostedAt,
		&m.IsDeleted,
		&m.DeletedAt,
		&m.DeletedBy,
		&m.DeleteReason,
		&m.TotalDebit,
		&m.TotalCredit,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
		&m.Version,
	)
	return m, err
}

// SaveEntry inserts the entry header and all its lines.
func (r *PgxJournalRepository) SaveEntry(ctx context.Context, entry domain.JournalEntry) error {
	m := mapping.ToModelJournalEntry(entry)
	query := `
		INSERT INTO journal_entries (` + journalEntryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23);
	`
	_, err := r.db(ctx).Exec(ctx, query,
		m.EntryID,
		m.Code,
		m.EntryDate,
		m.Description,
		m.SourceModule,
		m.ReferenceID,
		m.Status,
		m.AdjustmentOf,
		m.ReversalOf,
		m.PreparedBy,
		m.PostedBy,
		m.PostedAt,
		m.IsDeleted,
		m.DeletedAt,
		m.DeletedBy,
		m.DeleteReason,
		m.TotalDebit,
		m.TotalCredit,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
		m.Version,
	)
	if err != nil {
		return mapPgError(err, "insert journal entry "+m.Code)
	}
	return r.insertLines(ctx, entry.Lines)
}

func (r *PgxJournalRepository) insertLines(ctx context.Context, lines []domain.JournalEntryLine) error {
	if len(lines) == 0 {
		return nil
	}
	query := `
		INSERT INTO journal_entry_lines (` + journalLineColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	batch := &pgx.Batch{}
	for _, line := range lines {
		m := mapping.ToModelJournalEntryLine(line)
		batch.Queue(query, m.LineID, m.EntryID, m.AccountID, m.AccountCode, m.Debit, m.Credit, m.Description, m.LineOrder)
	}
	if err := r.db(ctx).SendBatch(ctx, batch).Close(); err != nil {
		return mapPgError(err, "insert journal lines")
	}
	return nil
}

func (r *PgxJournalRepository) findEntry(ctx context.Context, entryID string, forUpdate bool) (*domain.JournalEntry, error) {
	query := `SELECT ` + journalEntryColumns + ` FROM journal_entries WHERE entry_id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	m, err := scanJournalEntry(r.db(ctx).QueryRow(ctx, query, entryID))
	if err != nil {
		return nil, mapPgError(err, "find journal entry "+entryID)
	}
	d := mapping.ToDomainJournalEntry(m)
	return &d, nil
}

// FindEntryByID retrieves an entry header by its ID. Soft-deleted entries are returned too.
func (r *PgxJournalRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	return r.findEntry(ctx, entryID, false)
}

// FindEntryByIDForUpdate retrieves an entry header and locks its row until the transaction ends.
func (r *PgxJournalRepository) FindEntryByIDForUpdate(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	return r.findEntry(ctx, entryID, r.inTx(ctx))
}

// FindLinesByEntryID retrieves the live lines of an entry in line order.
func (r *PgxJournalRepository) FindLinesByEntryID(ctx context.Context, entryID string) ([]domain.JournalEntryLine, error) {
	query := `
		SELECT ` + journalLineColumns + `
		FROM journal_entry_lines
		WHERE entry_id = $1 AND is_deleted = FALSE
		ORDER BY line_order;
	`
	rows, err := r.db(ctx).Query(ctx, query, entryID)
	if err != nil {
		return nil, mapPgError(err, "query lines for journal entry "+entryID)
	}
	defer rows.Close()

	lines := []models.JournalEntryLine{}
	for rows.Next() {
		var l models.JournalEntryLine
		if err := rows.Scan(&l.LineID, &l.EntryID, &l.AccountID, &l.AccountCode, &l.Debit, &l.Credit, &l.Description, &l.LineOrder); err != nil {
			return nil, mapPgError(err, "scan line for journal entry "+entryID)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, mapPgError(err, "iterate lines for journal entry "+entryID)
	}
	return mapping.ToDomainJournalEntryLineSlice(lines), nil
}

// FindStatusHistory retrieves the status changes of an entry, oldest first.
func (r *PgxJournalRepository) FindStatusHistory(ctx context.Context, entryID string) ([]domain.JournalStatusChange, error) {
	query := `
		SELECT change_id, entry_id, from_status, to_status, related_entry_id, reason, changed_by, changed_at
		FROM journal_status_history
		WHERE entry_id = $1
		ORDER BY changed_at, change_id;
	`
	rows, err := r.db(ctx).Query(ctx, query, entryID)
	if err != nil {
		return nil, mapPgError(err, "query history for journal entry "+entryID)
	}
	defer rows.Close()

	history := []domain.JournalStatusChange{}
	for rows.Next() {
		var m models.JournalStatusChange
		if err := rows.Scan(&m.ChangeID, &m.EntryID, &m.FromStatus, &m.ToStatus, &m.RelatedEntryID, &m.Reason, &m.ChangedBy, &m.ChangedAt); err != nil {
			return nil, mapPgError(err, "scan history for journal entry "+entryID)
		}
		history = append(history, mapping.ToDomainJournalStatusChange(m))
	}
	if err := rows.Err(); err != nil {
		return nil, mapPgError(err, "iterate history for journal entry "+entryID)
	}
	return history, nil
}

// ListEntries retrieves entries newest first using token-based pagination.
// Deleted entries are only listed when the filter asks for status DELETED.
func (r *PgxJournalRepository) ListEntries(ctx context.Context, filter portsrepo.JournalEntryFilter, limit int, nextToken *string) ([]domain.JournalEntry, *string, error) {
	if limit <= 0 {
		limit = 20
	}

	var f filterBuilder
	if filter.Status == domain.JournalDeleted {
		f.add("is_deleted = TRUE")
	} else {
		f.add("is_deleted = FALSE")
		if filter.Status != "" {
			f.add("status = ?", filter.Status)
		}
	}
	if filter.SourceModule != "" {
		f.add("source_module = ?", filter.SourceModule)
	}
	if filter.ReferenceID != "" {
		f.add("reference_id = ?", filter.ReferenceID)
	}
	if filter.FromDate != nil {
		f.add("entry_date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		f.add("entry_date <= ?", *filter.ToDate)
	}
	if nextToken != nil && *nextToken != "" {
		cursor, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, apperrors.NewValidationError("invalid nextToken: " + err.Error())
		}
		f.add("(entry_date, created_at, entry_id) < (?, ?, ?)", cursor.Date, cursor.CreatedAt, cursor.ID)
	}

	// One extra row tells us whether there is a next page.
	query := `SELECT ` + journalEntryColumns + ` FROM journal_entries` + f.where() +
		` ORDER BY entry_date DESC, created_at DESC, entry_id DESC` + f.limit(limit+1)

	rows, err := r.db(ctx).Query(ctx, query, f.args...)
	if err != nil {
		return nil, nil, mapPgError(err, "query journal entries")
	}
	defer rows.Close()

	entries := make([]models.JournalEntry, 0, limit+1)
	for rows.Next() {
		m, err := scanJournalEntry(rows)
		if err != nil {
			return nil, nil, mapPgError(err, "scan journal entry")
		}
		entries = append(entries, m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, mapPgError(err, "iterate journal entries")
	}

	var nextTokenVal *string
	if len(entries) > limit {
		last := entries[limit-1]
		token := pagination.EncodeToken(pagination.Cursor{Date: last.EntryDate, CreatedAt: last.CreatedAt, ID: last.EntryID})
		nextTokenVal = &token
		entries = entries[:limit]
	}

	result := make([]domain.JournalEntry, len(entries))
	for i, m := range entries {
		result[i] = mapping.ToDomainJournalEntry(m)
	}
	return result, nextTokenVal, nil
}

// UpdateEntryHeader updates description, date and totals of a DRAFT entry.
func (r *PgxJournalRepository) UpdateEntryHeader(ctx context.Context, entry domain.JournalEntry) error {
	m := mapping.ToModelJournalEntry(entry)
	query := `
		UPDATE journal_entries
		SET entry_date = $3,
		    description = $4,
		    total_debit = $5,
		    total_credit = $6,
		    last_updated_at = $7,
		    last_updated_by = $8,
		    version = version + 1
		WHERE entry_id = $1 AND version = $2 AND status = 'DRAFT';
	`
	cmdTag, err := r.db(ctx).Exec(ctx, query,
		m.EntryID,
		m.Version,
		m.EntryDate,
		m.Description,
		m.TotalDebit,
		m.TotalCredit,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return mapPgError(err, "update journal entry "+m.EntryID)
	}
	return r.checkVersioned(ctx, cmdTag, journalEntryExists, m.EntryID, "update journal entry")
}

// ReplaceLines soft-deletes the live lines of an entry and inserts lines in their place.
func (r *PgxJournalRepository) ReplaceLines(ctx context.Context, entryID string, lines []domain.JournalEntryLine) error {
	if err := r.SoftDeleteLines(ctx, entryID); err != nil {
		return err
	}
	return r.insertLines(ctx, lines)
}

// SoftDeleteLines marks every live line of an entry deleted.
func (r *PgxJournalRepository) SoftDeleteLines(ctx context.Context, entryID string) error {
	query := `UPDATE journal_entry_lines SET is_deleted = TRUE WHERE entry_id = $1 AND is_deleted = FALSE;`
	if _, err := r.db(ctx).Exec(ctx, query, entryID); err != nil {
		return mapPgError(err, "delete lines of journal entry "+entryID)
	}
	return nil
}

// UpdateEntryStatus moves an entry from status `from` to entry.Status, along with the
// posting and deletion fields.
func (r *PgxJournalRepository) UpdateEntryStatus(ctx context.Context, entry domain.JournalEntry, from domain.JournalStatus) error {
	m := mapping.ToModelJournalEntry(entry)
	query := `
		UPDATE journal_entries
		SET status = $4,
		    posted_by = $5,
		    posted_at = $6,
		    is_deleted = $7,
		    deleted_at = $8,
		    deleted_by = $9,
		    delete_reason = $10,
		    last_updated_at = $11,
		    last_updated_by = $12,
		    version = version + 1
		WHERE entry_id = $1 AND version = $2 AND status = $3;
	`
	cmdTag, err := r.db(ctx).Exec(ctx, query,
		m.EntryID,
		m.Version,
		from,
		m.Status,
		m.PostedBy,
		m.PostedAt,
		m.IsDeleted,
		m.DeletedAt,
		m.DeletedBy,
		m.DeleteReason,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return mapPgError(err, "update status of journal entry "+m.EntryID)
	}
	return r.checkVersioned(ctx, cmdTag, journalEntryExists, m.EntryID, "update status of journal entry")
}

// SaveStatusChange appends a row to an entry's status history.
func (r *PgxJournalRepository) SaveStatusChange(ctx context.Context, change domain.JournalStatusChange) error {
	m := mapping.ToModelJournalStatusChange(change)
	query := `
		INSERT INTO journal_status_history (change_id, entry_id, from_status, to_status, related_entry_id, reason, changed_by, changed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err := r.db(ctx).Exec(ctx, query, m.ChangeID, m.EntryID, m.FromStatus, m.ToStatus, m.RelatedEntryID, m.Reason, m.ChangedBy, m.ChangedAt)
	if err != nil {
		return mapPgError(err, "save status change for journal entry "+m.EntryID)
	}
	return nil
}
