package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RevenueSource is a row of the revenue_sources table.
type RevenueSource struct {
	SourceID    string  `db:"source_id"`
	Code        string  `db:"code"`
	Name        string  `db:"name"`
	AccountCode *string `db:"account_code"` // Nullable
	IsActive    bool    `db:"is_active"`
	AuditFields
}

// Revenue is a row of the revenues table.
type Revenue struct {
	RevenueID       string          `db:"revenue_id"`
	Code            string          `db:"code"`
	SourceID        string          `db:"source_id"`
	Amount          decimal.Decimal `db:"amount"`
	RevenueDate     time.Time       `db:"revenue_date"`
	Description     string          `db:"description"`
	PaymentMethod   string          `db:"payment_method"`
	ReferenceNumber string          `db:"reference_number"`
	ReceivableID    *string         `db:"receivable_id"`
	JournalEntryID  *string         `db:"journal_entry_id"`
	ReversalEntryID *string         `db:"reversal_entry_id"`
	Status          string          `db:"status"`
	AuditFields
}
