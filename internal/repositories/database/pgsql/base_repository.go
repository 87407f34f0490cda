package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/SscSPs/transit_finance/internal/apperrors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// BaseRepository provides common functionality for all repositories
type BaseRepository struct {
	Pool *pgxpool.Pool
}

// db returns the transaction carried by ctx, or the pool when there is none.
func (r *BaseRepository) db(ctx context.Context) querier {
	if state := txStateFrom(ctx); state != nil {
		return state.tx
	}
	return r.Pool
}

// inTx reports whether ctx carries a transaction. Row locks are only meaningful inside one.
func (r *BaseRepository) inTx(ctx context.Context) bool {
	return txStateFrom(ctx) != nil
}

// mapPgError turns driver errors into application errors. what names the failed operation.
func mapPgError(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFoundError(what + ": not found")
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%w: %s: %s", apperrors.ErrDuplicate, what, pgErr.ConstraintName)
		case pgForeignKeyViolation, pgCheckViolation:
			return fmt.Errorf("%w: %s: %s", apperrors.ErrValidation, what, pgErr.ConstraintName)
		}
	}
	return apperrors.NewAppError(500, "failed to "+what, err)
}

// checkVersioned interprets the result of an optimistic UPDATE guarded by version.
// Zero affected rows mean either the row is gone or someone else updated it first.
func (r *BaseRepository) checkVersioned(ctx context.Context, tag pgconn.CommandTag, existsQuery string, id string, what string) error {
	if tag.RowsAffected() > 0 {
		return nil
	}
	var exists bool
	if err := r.db(ctx).QueryRow(ctx, existsQuery, id).Scan(&exists); err != nil {
		return mapPgError(err, what)
	}
	if !exists {
		return apperrors.NewNotFoundError(what + ": " + id + " not found")
	}
	return apperrors.NewConflictError(what + ": " + id + " was modified concurrently")
}

// filterBuilder collects WHERE conditions written with ? placeholders and numbers them for pgx.
type filterBuilder struct {
	conds []string
	args  []any
}

// add appends cond, replacing each ? in turn with the positional parameter for the next value.
func (f *filterBuilder) add(cond string, vals ...any) {
	var b strings.Builder
	i := 0
	for _, c := range cond {
		if c == '?' && i < len(vals) {
			f.args = append(f.args, vals[i])
			b.WriteString("$" + strconv.Itoa(len(f.args)))
			i++
			continue
		}
		b.WriteRune(c)
	}
	f.conds = append(f.conds, b.String())
}

func (f *filterBuilder) where() string {
	if len(f.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(f.conds, " AND ")
}

// limit appends the LIMIT parameter and returns its clause.
func (f *filterBuilder) limit(n int) string {
	f.args = append(f.args, n)
	return " LIMIT $" + strconv.Itoa(len(f.args))
}
