package services

import (
	"context"

	"github.com/SscSPs/transit_finance/internal/core/domain"
	"github.com/SscSPs/transit_finance/internal/dto"
)

// RevenueSourceSvc manages revenue sources
type RevenueSourceSvc interface {
	CreateRevenueSource(ctx context.Context, req dto.CreateRevenueSourceRequest, userID string) (*domain.RevenueSource, error)
	ListRevenueSources(ctx context.Context) ([]domain.RevenueSource, error)
}

// RevenueReaderSvc defines read operations for revenues
type RevenueReaderSvc interface {
	GetRevenue(ctx context.Context, revenueID string) (*domain.Revenue, error)
	ListRevenues(ctx context.Context, params dto.ListRevenuesParams) (*dto.ListRevenuesResponse, error)
}

// RevenueLedgerSvc bridges revenue records and the general ledger
type RevenueLedgerSvc interface {
	// CreateRevenue records cash received and recognises it as a DRAFT journal entry.
	CreateRevenue(ctx context.Context, req dto.CreateRevenueRequest, userID string) (*domain.Revenue, error)

	// RecognizeRevenue creates the DRAFT journal entry of a revenue and links it.
	RecognizeRevenue(ctx context.Context, revenueID string, userID string) (*domain.Revenue, error)

	// PostRevenueToGL posts the revenue's journal entry, recognising it first if needed.
	PostRevenueToGL(ctx context.Context, revenueID string, userID string) (*domain.Revenue, error)

	// ReverseRevenue reverses the revenue's posted journal entry.
	ReverseRevenue(ctx context.Context, revenueID string, req dto.ReverseRevenueRequest, userID string) (*domain.Revenue, error)

	// RecordReceivableCollection records cash collected against a receivable and recognises it.
	RecordReceivableCollection(ctx context.Context, collection dto.ReceivableCollection, userID string) (*domain.Revenue, error)
}

// RevenueSvcFacade combines all revenue-related service interfaces
type RevenueSvcFacade interface {
	RevenueSourceSvc
	RevenueReaderSvc
	RevenueLedgerSvc
}
