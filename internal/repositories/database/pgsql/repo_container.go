package pgsql

import (
	portsrepo "github.com/SscSPs/transit_finance/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider builds every pgx-backed repository over dbPool. locker serialises
// journal and receivable mutations and may be nil when the caller relies on row locks alone.
func NewRepositoryProvider(dbPool *pgxpool.Pool, locker portsrepo.Locker) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AccountRepo:     newPgxAccountRepository(dbPool),
		JournalRepo:     newPgxJournalRepository(dbPool),
		ReceivableRepo:  newPgxReceivableRepository(dbPool),
		RevenueRepo:     newPgxRevenueRepository(dbPool),
		AuditRepo:       newPgxAuditRepository(dbPool),
		DebtorDirectory: newPgxDebtorDirectory(dbPool),
		TxManager:       newPgxTransactionManager(dbPool),
		Locker:          locker,
	}
}
