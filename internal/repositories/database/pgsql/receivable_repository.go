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

const receivableColumns = `receivable_id, code, debtor_type, debtor_id, debtor_name, description,
		total_amount, paid_amount, balance, due_date, status, installment_plan, is_deleted,
		created_at, created_by, last_updated_at, last_updated_by, version`

const installmentColumns = `installment_id, receivable_id, installment_number, due_date,
		amount_due, amount_paid, balance, carried_over_amount, status, is_deleted,
		created_at, created_by, last_updated_at, last_updated_by, version`

const installmentPaymentColumns = `payment_id, installment_id, revenue_id, amount_applied, payment_date,
		payment_method, reference_number, is_carried_over, created_at, created_by`

const (
	receivableExists  = `SELECT EXISTS (SELECT 1 FROM receivables WHERE receivable_id = $1);`
	installmentExists = `SELECT EXISTS (SELECT 1 FROM installment_schedules WHERE installment_id = $1);`
)

type PgxReceivableRepository struct {
	BaseRepository
}

// newPgxReceivableRepository creates a new repository for receivables, installments and installment payments.
func newPgxReceivableRepository(pool *pgxpool.Pool) *PgxReceivableRepository {
	return &PgxReceivableRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxReceivableRepository implements portsrepo.ReceivableRepositoryFacade
var _ portsrepo.ReceivableRepositoryFacade = (*PgxReceivableRepository)(nil)

func scanReceivable(row pgx.Row) (models.Receivable, error) {
	var m models.Receivable
	err := row.Scan(
		&m.ReceivableID,
		&m.Code,
		&m.DebtorType,
		&m.DebtorID,
		&m.DebtorName,
		&m.Description,
		&m.TotalAmount,
		&m.PaidAmount,
		&m.Balance,
		&m.DueDate,
		&m.Status,
		&m.InstallmentPlan,
		&m.IsDeleted,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
		&m.Version,
	)
	return m, err
}

func scanInstallment(row pgx.Row) (models.InstallmentSchedule, error) {
	var m models.InstallmentSchedule
	err := row.Scan(
		&m.InstallmentID,
		&m.ReceivableID,
		&m.InstallmentNumber,
		&m.DueDate,
		&m.AmountDue,
		&m.AmountPaid,
		&m.Balance,
		&m.CarriedOverAmount,
		&m.Status,
		&m.IsDeleted,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
		&m.Version,
	)
	return m, err
}

// SaveReceivable inserts a new receivable header.
func (r *PgxReceivableRepository) SaveReceivable(ctx context.Context, receivable domain.Receivable) error {
	m := mapping.ToModelReceivable(receivable)
	query := `
		INSERT INTO receivables (` + receivableColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18);
	`
	_, err := r.db(ctx).Exec(ctx, query,
		m.ReceivableID,
		m.Code,
		m.DebtorType,
		m.DebtorID,
		m.DebtorName,
		m.Description,
		m.TotalAmount,
		m.PaidAmount,
		m.Balance,
		m.DueDate,
		m.Status,
		m.InstallmentPlan,
		m.IsDeleted,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
		m.Version,
	)
	if err != nil {
		return mapPgError(err, "insert receivable "+m.Code)
	}
	return nil
}

func (r *PgxReceivableRepository) findReceivable(ctx context.Context, receivableID string, forUpdate bool) (*domain.Receivable, error) {
	query := `SELECT ` + receivableColumns + ` FROM receivables WHERE receivable_id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	m, err := scanReceivable(r.db(ctx).QueryRow(ctx, query, receivableID))
	if err != nil {
		return nil, mapPgError(err, "find receivable "+receivableID)
	}
	d := mapping.ToDomainReceivable(m)
	return &d, nil
}

// FindReceivableByID retrieves a receivable header, including soft-deleted ones.
func (r *PgxReceivableRepository) FindReceivableByID(ctx context.Context, receivableID string) (*domain.Receivable, error) {
	return r.findReceivable(ctx, receivableID, false)
}

// FindReceivableByIDForUpdate retrieves a receivable header and locks its row.
func (r *PgxReceivableRepository) FindReceivableByIDForUpdate(ctx context.Context, receivableID string) (*domain.Receivable, error) {
	return r.findReceivable(ctx, receivableID, r.inTx(ctx))
}

// ListReceivables retrieves live receivables, earliest due first, using token-based pagination.
func (r *PgxReceivableRepository) ListReceivables(ctx context.Context, filter portsrepo.ReceivableFilter, limit int, nextToken *string) ([]domain.Receivable, *string, error) {
	if limit <= 0 {
		limit = 20
	}

	var f filterBuilder
	f.add("is_deleted = FALSE")
	if filter.Status != "" {
		f.add("status = ?", filter.Status)
	}
	if filter.DebtorType != "" {
		f.add("debtor_type = ?", filter.DebtorType)
	}
	if filter.DebtorID != "" {
		f.add("debtor_id = ?", filter.DebtorID)
	}
	if nextToken != nil && *nextToken != "" {
		cursor, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, apperrors.NewValidationError("invalid nextToken: " + err.Error())
		}
		f.add("(due_date, created_at, receivable_id) > (?, ?, ?)", cursor.Date, cursor.CreatedAt, cursor.ID)
	}

	query := `SELECT ` + receivableColumns + ` FROM receivables` + f.where() +
		` ORDER BY due_date, created_at, receivable_id` + f.limit(limit+1)

	rows, err := r.db(ctx).Query(ctx, query, f.args...)
	if err != nil {
		return nil, nil, mapPgError(err, "query receivables")
	}
	defer rows.Close()

	ms := make([]models.Receivable, 0, limit+1)
	for rows.Next() {
		m, err := scanReceivable(rows)
		if err != nil {
			return nil, nil, mapPgError(err, "scan receivable")
		}
		ms = append(ms, m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, mapPgError(err, "iterate receivables")
	}

	var nextTokenVal *string
	if len(ms) > limit {
		last := ms[limit-1]
		token := pagination.EncodeToken(pagination.Cursor{Date: last.DueDate, CreatedAt: last.CreatedAt, ID: last.ReceivableID})
		nextTokenVal = &token
		ms = ms[:limit]
	}

	result := make([]domain.Receivable, len(ms))
	for i, m := range ms {
		result[i] = mapping.ToDomainReceivable(m)
	}
	return result, nextTokenVal, nil
}

// UpdateReceivable writes the mutable columns of a receivable back, guarded by version.
func (r *PgxReceivableRepository) UpdateReceivable(ctx context.Context, receivable domain.Receivable) error {
	m := mapping.ToModelReceivable(receivable)
	query := `
		UPDATE receivables
		SET total_amount = $3,
		    paid_amount = $4,
		    balance = $5,
		    due_date = $6,
		    status = $7,
		    installment_plan = $8,
		    is_deleted = $9,
		    last_updated_at = $10,
		    last_updated_by = $11,
		    version = version + 1
		WHERE receivable_id = $1 AND version = $2;
	`
	cmdTag, err := r.db(ctx).Exec(ctx, query,
		m.ReceivableID,
		m.Version,
		m.TotalAmount,
		m.PaidAmount,
		m.Balance,
		m.DueDate,
		m.Status,
		m.InstallmentPlan,
		m.IsDeleted,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return mapPgError(err, "update receivable "+m.ReceivableID)
	}
	return r.checkVersioned(ctx, cmdTag, receivableExists, m.ReceivableID, "update receivable")
}

// FindInstallmentByID retrieves one installment row, including soft-deleted ones.
func (r *PgxReceivableRepository) FindInstallmentByID(ctx context.Context, installmentID string) (*domain.InstallmentSchedule, error) {
	query := `SELECT ` + installmentColumns + ` FROM installment_schedules WHERE installment_id = $1;`
	m, err := scanInstallment(r.db(ctx).QueryRow(ctx, query, installmentID))
	if err != nil {
		return nil, mapPgError(err, "find installment "+installmentID)
	}
	d := mapping.ToDomainInstallment(m)
	return &d, nil
}

func (r *PgxReceivableRepository) findInstallments(ctx context.Context, receivableID string, forUpdate bool) ([]domain.InstallmentSchedule, error) {
	query := `
		SELECT ` + installmentColumns + `
		FROM installment_schedules
		WHERE receivable_id = $1 AND is_deleted = FALSE
		ORDER BY installment_number`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	rows, err := r.db(ctx).Query(ctx, query, receivableID)
	if err != nil {
		return nil, mapPgError(err, "query installments of receivable "+receivableID)
	}
	defer rows.Close()

	installments := []domain.InstallmentSchedule{}
	for rows.Next() {
		m, err := scanInstallment(rows)
		if err != nil {
			return nil, mapPgError(err, "scan installment of receivable "+receivableID)
		}
		installments = append(installments, mapping.ToDomainInstallment(m))
	}
	if err := rows.Err(); err != nil {
		return nil, mapPgError(err, "iterate installments of receivable "+receivableID)
	}
	return installments, nil
}

// FindInstallmentsByReceivableID retrieves the live schedule of a receivable by installment number.
func (r *PgxReceivableRepository) FindInstallmentsByReceivableID(ctx context.Context, receivableID string) ([]domain.InstallmentSchedule, error) {
	return r.findInstallments(ctx, receivableID, false)
}

// FindInstallmentsForUpdate retrieves the live schedule of a receivable and locks every row.
func (r *PgxReceivableRepository) FindInstallmentsForUpdate(ctx context.Context, receivableID string) ([]domain.InstallmentSchedule, error) {
	return r.findInstallments(ctx, receivableID, r.inTx(ctx))
}

// CountPaymentsByReceivableID counts installment payments recorded against any installment of a receivable,
// deleted schedules included.
func (r *PgxReceivableRepository) CountPaymentsByReceivableID(ctx context.Context, receivableID string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM installment_payments p
		JOIN installment_schedules s ON s.installment_id = p.installment_id
		WHERE s.receivable_id = $1;
	`
	var count int
	if err := r.db(ctx).QueryRow(ctx, query, receivableID).Scan(&count); err != nil {
		return 0, mapPgError(err, "count payments of receivable "+receivableID)
	}
	return count, nil
}

// ListPaymentsByReceivableID retrieves installment payments of a receivable, oldest first.
func (r *PgxReceivableRepository) ListPaymentsByReceivableID(ctx context.Context, receivableID string) ([]domain.InstallmentPayment, error) {
	query := `
		SELECT p.payment_id, p.installment_id, p.revenue_id, p.amount_applied, p.payment_date,
		       p.payment_method, p.reference_number, p.is_carried_over, p.created_at, p.created_by
		FROM installment_payments p
		JOIN installment_schedules s ON s.installment_id = p.installment_id
		WHERE s.receivable_id = $1
		ORDER BY p.created_at, s.installment_number;
	`
	rows, err := r.db(ctx).Query(ctx, query, receivableID)
	if err != nil {
		return nil, mapPgError(err, "query payments of receivable "+receivableID)
	}
	defer rows.Close()

	payments := []domain.InstallmentPayment{}
	for rows.Next() {
		var m models.InstallmentPayment
		if err := rows.Scan(
			&m.PaymentID,
			&m.InstallmentID,
			&m.RevenueID,
			&m.AmountApplied,
			&m.PaymentDate,
			&m.PaymentMethod,
			&m.ReferenceNumber,
			&m.IsCarriedOver,
			&m.CreatedAt,
			&m.CreatedBy,
		); err != nil {
			return nil, mapPgError(err, "scan payment of receivable "+receivableID)
		}
		payments = append(payments, mapping.ToDomainInstallmentPayment(m))
	}
	if err := rows.Err(); err != nil {
		return nil, mapPgError(err, "iterate payments of receivable "+receivableID)
	}
	return payments, nil
}

// SaveInstallments inserts a batch of new installment rows.
func (r *PgxReceivableRepository) SaveInstallments(ctx context.Context, installments []domain.InstallmentSchedule) error {
	if len(installments) == 0 {
		return nil
	}
	query := `
		INSERT INTO installment_schedules (` + installmentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`
	batch := &pgx.Batch{}
	for _, inst := range installments {
		m := mapping.ToModelInstallment(inst)
		batch.Queue(query,
			m.InstallmentID,
			m.ReceivableID,
			m.InstallmentNumber,
			m.DueDate,
			m.AmountDue,
			m.AmountPaid,
			m.Balance,
			m.CarriedOverAmount,
			m.Status,
			m.IsDeleted,
			m.CreatedAt,
			m.CreatedBy,
			m.LastUpdatedAt,
			m.LastUpdatedBy,
			m.Version,
		)
	}
	if err := r.db(ctx).SendBatch(ctx, batch).Close(); err != nil {
		return mapPgError(err, "insert installments")
	}
	return nil
}

// UpdateInstallment writes the payment-driven columns of an installment back, guarded by version.
func (r *PgxReceivableRepository) UpdateInstallment(ctx context.Context, installment domain.InstallmentSchedule) error {
	m := mapping.ToModelInstallment(installment)
	query := `
		UPDATE installment_schedules
		SET amount_paid = $3,
		    balance = $4,
		    carried_over_amount = $5,
		    status = $6,
		    last_updated_at = $7,
		    last_updated_by = $8,
		    version = version + 1
		WHERE installment_id = $1 AND version = $2;
	`
	cmdTag, err := r.db(ctx).Exec(ctx, query,
		m.InstallmentID,
		m.Version,
		m.AmountPaid,
		m.Balance,
		m.CarriedOverAmount,
		m.Status,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return mapPgError(err, "update installment "+m.InstallmentID)
	}
	return r.checkVersioned(ctx, cmdTag, installmentExists, m.InstallmentID, "update installment")
}

// SoftDeleteInstallments marks every live installment of a receivable as deleted.
func (r *PgxReceivableRepository) SoftDeleteInstallments(ctx context.Context, receivableID string, userID string) error {
	query := `
		UPDATE installment_schedules
		SET is_deleted = TRUE, last_updated_at = NOW(), last_updated_by = $2, version = version + 1
		WHERE receivable_id = $1 AND is_deleted = FALSE;
	`
	if _, err := r.db(ctx).Exec(ctx, query, receivableID, userID); err != nil {
		return mapPgError(err, "delete installments of receivable "+receivableID)
	}
	return nil
}

// SavePayments inserts a batch of installment payments.
func (r *PgxReceivableRepository) SavePayments(ctx context.Context, payments []domain.InstallmentPayment) error {
	if len(payments) == 0 {
		return nil
	}
	query := `
		INSERT INTO installment_payments (` + installmentPaymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	batch := &pgx.Batch{}
	for _, p := range payments {
		m := mapping.ToModelInstallmentPayment(p)
		batch.Queue(query,
			m.PaymentID,
			m.InstallmentID,
			m.RevenueID,
			m.AmountApplied,
			m.PaymentDate,
			m.PaymentMethod,
			m.ReferenceNumber,
			m.IsCarriedOver,
			m.CreatedAt,
			m.CreatedBy,
		)
	}
	if err := r.db(ctx).SendBatch(ctx, batch).Close(); err != nil {
		return mapPgError(err, "insert installment payments")
	}
	return nil
}
