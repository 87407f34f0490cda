package pgsql

import (
	"context"

	portsrepo "github.com/SscSPs/transit_finance/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxDebtorDirectory reads debtor display names from the debtor_directory table, which the
// fleet, staff and customer systems keep populated.
type PgxDebtorDirectory struct {
	BaseRepository
}

// newPgxDebtorDirectory creates a debtor name resolver.
func newPgxDebtorDirectory(pool *pgxpool.Pool) *PgxDebtorDirectory {
	return &PgxDebtorDirectory{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.DebtorDirectory = (*PgxDebtorDirectory)(nil)

// ResolveDebtorName returns the display name of a debtor, or a NotFound error.
func (d *PgxDebtorDirectory) ResolveDebtorName(ctx context.Context, debtorType string, debtorID string) (string, error) {
	query := `SELECT display_name FROM debtor_directory WHERE debtor_type = $1 AND debtor_id = $2;`
	var name string
	if err := d.db(ctx).QueryRow(ctx, query, debtorType, debtorID).Scan(&name); err != nil {
		return "", mapPgError(err, "resolve debtor "+debtorType+"/"+debtorID)
	}
	return name, nil
}
