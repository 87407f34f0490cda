package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/transit_finance/internal/core/domain"
)

// JournalEntryFilter narrows ListEntries. Zero values mean "any".
type JournalEntryFilter struct {
	Status       domain.JournalStatus
	SourceModule string
	ReferenceID  string
	FromDate     *time.Time
	ToDate       *time.Time
}

// JournalReader defines read operations for journal entries.
type JournalReader interface {
	// FindEntryByID retrieves an entry header (without lines) by id.
	FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// FindEntryByIDForUpdate is FindEntryByID with a row lock held until the transaction ends.
	FindEntryByIDForUpdate(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// FindLinesByEntryID retrieves the non-deleted lines of an entry ordered by line order.
	FindLinesByEntryID(ctx context.Context, entryID string) ([]domain.JournalEntryLine, error)

	// FindStatusHistory retrieves every recorded status change of an entry, oldest first.
	FindStatusHistory(ctx context.Context, entryID string) ([]domain.JournalStatusChange, error)

	// ListEntries retrieves entries newest first using token-based pagination.
	// It returns the entries, a token for the next page, and an error.
	ListEntries(ctx context.Context, filter JournalEntryFilter, limit int, nextToken *string) ([]domain.JournalEntry, *string, error)
}

// JournalWriter defines write operations for journal entries.
type JournalWriter interface {
	// SaveEntry persists a new entry and its lines.
	SaveEntry(ctx context.Context, entry domain.JournalEntry) error

	// UpdateEntryHeader updates description, date and totals of a DRAFT entry.
	// Fails with ErrConflict when the stored version differs from entry.Version.
	UpdateEntryHeader(ctx context.Context, entry domain.JournalEntry) error

	// ReplaceLines soft-deletes the current lines of an entry and inserts lines in their place.
	ReplaceLines(ctx context.Context, entryID string, lines []domain.JournalEntryLine) error

	// SoftDeleteLines marks every live line of an entry deleted.
	SoftDeleteLines(ctx context.Context, entryID string) error

	// UpdateEntryStatus moves an entry from status `from` to entry.Status, persisting the
	// posting and deletion fields. Fails with ErrConflict if the stored status is not `from`.
	UpdateEntryStatus(ctx context.Context, entry domain.JournalEntry, from domain.JournalStatus) error

	// SaveStatusChange appends a row to an entry's status history.
	SaveStatusChange(ctx context.Context, change domain.JournalStatusChange) error
}

// JournalRepositoryFacade combines all journal-related repository interfaces
type JournalRepositoryFacade interface {
	JournalReader
	JournalWriter
}
