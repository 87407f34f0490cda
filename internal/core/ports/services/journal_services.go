package services

import (
	"context"

	"github.com/SscSPs/transit_finance/internal/core/domain"
	"github.com/SscSPs/transit_finance/internal/dto"
)

// JournalReaderSvc defines read operations for journal entries
type JournalReaderSvc interface {
	// GetEntry retrieves an entry with its lines and status history.
	GetEntry(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// ListEntries retrieves a page of entries.
	ListEntries(ctx context.Context, params dto.ListJournalEntriesParams) (*dto.ListJournalEntriesResponse, error)

	// GetEntryHistory retrieves the status history of an entry, oldest first.
	GetEntryHistory(ctx context.Context, entryID string) ([]domain.JournalStatusChange, error)
}

// JournalWriterSvc defines the lifecycle operations of journal entries
type JournalWriterSvc interface {
	// CreateAuto creates a balanced DRAFT entry for a source module.
	CreateAuto(ctx context.Context, req dto.CreateJournalEntryRequest, userID string) (*domain.JournalEntry, error)

	// CreateAdjustment creates a DRAFT entry adjusting a POSTED entry and marks the original ADJUSTED.
	CreateAdjustment(ctx context.Context, originalID string, req dto.AdjustJournalEntryRequest, userID string) (*domain.JournalEntry, error)

	// CreateReversal creates a DRAFT entry mirroring a POSTED entry and marks the original REVERSED.
	CreateReversal(ctx context.Context, originalID string, req dto.ReverseJournalEntryRequest, userID string) (*domain.JournalEntry, error)

	// UpdateDraft edits a DRAFT entry.
	UpdateDraft(ctx context.Context, entryID string, req dto.UpdateJournalEntryRequest, userID string) (*domain.JournalEntry, error)

	// DeleteDraft soft-deletes a DRAFT entry.
	DeleteDraft(ctx context.Context, entryID string, req dto.DeleteJournalEntryRequest, userID string) error

	// Post makes a DRAFT entry final and moves account balances.
	Post(ctx context.Context, entryID string, userID string) (*domain.JournalEntry, error)
}

// JournalSvcFacade combines all journal-related service interfaces
type JournalSvcFacade interface {
	JournalReaderSvc
	JournalWriterSvc
}
