package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/transit_finance/internal/core/domain"
)

// RevenueFilter narrows ListRevenues. Zero values mean "any".
type RevenueFilter struct {
	SourceID     string
	Status       domain.RevenueStatus
	ReceivableID string
	FromDate     *time.Time
	ToDate       *time.Time
}

// RevenueSourceRepository defines operations on revenue sources.
type RevenueSourceRepository interface {
	FindSourceByID(ctx context.Context, sourceID string) (*domain.RevenueSource, error)
	FindSourceByCode(ctx context.Context, code string) (*domain.RevenueSource, error)
	ListSources(ctx context.Context) ([]domain.RevenueSource, error)
	SaveSource(ctx context.Context, source domain.RevenueSource) error
}

// RevenueReader defines read operations for revenue records.
type RevenueReader interface {
	FindRevenueByID(ctx context.Context, revenueID string) (*domain.Revenue, error)

	// FindRevenueByIDForUpdate is FindRevenueByID with a row lock.
	FindRevenueByIDForUpdate(ctx context.Context, revenueID string) (*domain.Revenue, error)

	// ListRevenues retrieves revenues newest first using token-based pagination.
	ListRevenues(ctx context.Context, filter RevenueFilter, limit int, nextToken *string) ([]domain.Revenue, *string, error)
}

// RevenueWriter defines write operations for revenue records.
type RevenueWriter interface {
	SaveRevenue(ctx context.Context, revenue domain.Revenue) error

	// UpdateRevenueLedgerLink writes the journal links and status of a revenue back.
	// Fails with ErrConflict when the stored version differs from revenue.Version.
	UpdateRevenueLedgerLink(ctx context.Context, revenue domain.Revenue) error
}

// RevenueRepositoryFacade combines all revenue-related repository interfaces
type RevenueRepositoryFacade interface {
	RevenueSourceRepository
	RevenueReader
	RevenueWriter
}
