package repositories

import (
	"context"
)

// TransactionManager runs units of work inside a single database transaction.
// The transaction travels in the context, so repositories called with the context
// passed to fn take part in it. Nested RunInTx calls join the outer transaction.
type TransactionManager interface {
	// RunInTx begins a transaction, calls fn and commits if fn returns nil.
	// Any error from fn rolls the whole transaction back.
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error

	// AfterCommit registers fn to run once the outermost transaction has committed.
	// When ctx carries no transaction fn runs immediately. Callbacks are dropped on rollback.
	AfterCommit(ctx context.Context, fn func(ctx context.Context))
}

// Locker serialises work on a logical key (e.g. "receivable:<id>") across processes.
type Locker interface {
	// Lock blocks until the key is held or ctx is done. The returned func releases it.
	Lock(ctx context.Context, key string) (unlock func(), err error)
}
