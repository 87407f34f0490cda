package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalStatus indicates the state of a journal entry.
type JournalStatus string

// JournalEntry is a row of the journal_entries table.
type JournalEntry struct {
	EntryID      string          `db:"entry_id"`
	Code         string          `db:"code"`
	EntryDate    time.Time       `db:"entry_date"`
	Description  string          `db:"description"`
	SourceModule string          `db:"source_module"`
	ReferenceID  string          `db:"reference_id"`
	Status       JournalStatus   `db:"status"`
	AdjustmentOf *string         `db:"adjustment_of"` // Nullable
	ReversalOf   *string         `db:"reversal_of"`   // Nullable
	PreparedBy   string          `db:"prepared_by"`
	PostedBy     *string         `db:"posted_by"`
	PostedAt     *time.Time      `db:"posted_at"`
	IsDeleted    bool            `db:"is_deleted"`
	DeletedAt    *time.Time      `db:"deleted_at"`
	DeletedBy    *string         `db:"deleted_by"`
	DeleteReason string          `db:"delete_reason"`
	TotalDebit   decimal.Decimal `db:"total_debit"`
	TotalCredit  decimal.Decimal `db:"total_credit"`
	AuditFields
}

// JournalEntryLine is a row of the journal_entry_lines table.
type JournalEntryLine struct {
	LineID      string          `db:"line_id"`
	EntryID     string          `db:"entry_id"`
	AccountID   string          `db:"account_id"`
	AccountCode string          `db:"account_code"`
	Debit       decimal.Decimal `db:"debit"`
	Credit      decimal.Decimal `db:"credit"`
	Description string          `db:"description"`
	LineOrder   int             `db:"line_order"`
}

// JournalStatusChange is a row of the journal_status_history table.
type JournalStatusChange struct {
	ChangeID       string    `db:"change_id"`
	EntryID        string    `db:"entry_id"`
	FromStatus     *string   `db:"from_status"` // NULL for the creation row
	ToStatus       string    `db:"to_status"`
	RelatedEntryID *string   `db:"related_entry_id"`
	Reason         string    `db:"reason"`
	ChangedBy      string    `db:"changed_by"`
	ChangedAt      time.Time `db:"changed_at"`
}
