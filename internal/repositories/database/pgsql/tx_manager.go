package pgsql

import (
	"context"
	"errors"
	"log/slog"

	"github.com/SscSPs/transit_finance/internal/apperrors"
	portsrepo "github.com/SscSPs/transit_finance/internal/core/ports/repositories"
	"github.com/SscSPs/transit_finance/internal/middleware"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type txKey struct{}

type txState struct {
	tx          pgx.Tx
	afterCommit []func(ctx context.Context)
}

func txStateFrom(ctx context.Context) *txState {
	state, _ := ctx.Value(txKey{}).(*txState)
	return state
}

// PgxTransactionManager runs units of work in a pgx transaction carried by the context.
type PgxTransactionManager struct {
	BaseRepository
}

// newPgxTransactionManager creates a transaction manager over pool.
func newPgxTransactionManager(pool *pgxpool.Pool) *PgxTransactionManager {
	return &PgxTransactionManager{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.TransactionManager = (*PgxTransactionManager)(nil)

// RunInTx begins a transaction unless ctx already carries one, in which case fn joins it.
func (m *PgxTransactionManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if txStateFrom(ctx) != nil {
		return fn(ctx)
	}

	tx, err := m.Pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return apperrors.NewAppError(500, "failed to begin transaction", err)
	}
	state := &txState{tx: tx}
	txCtx := context.WithValue(ctx, txKey{}, state)

	defer func() {
		if p := recover(); p != nil {
			m.rollback(ctx, tx)
			panic(p)
		}
		if err != nil {
			m.rollback(ctx, tx)
		}
	}()

	if err = fn(txCtx); err != nil {
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return apperrors.NewAppError(500, "failed to commit transaction", err)
	}

	for _, cb := range state.afterCommit {
		cb(ctx)
	}
	return nil
}

// AfterCommit queues fn until the outermost transaction commits, or runs it now if there is none.
func (m *PgxTransactionManager) AfterCommit(ctx context.Context, fn func(ctx context.Context)) {
	state := txStateFrom(ctx)
	if state == nil {
		fn(ctx)
		return
	}
	state.afterCommit = append(state.afterCommit, fn)
}

func (m *PgxTransactionManager) rollback(ctx context.Context, tx pgx.Tx) {
	if err := tx.Rollback(context.WithoutCancel(ctx)); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		middleware.GetLoggerFromCtx(ctx).Error("Failed to roll back transaction", slog.String("error", err.Error()))
	}
}
