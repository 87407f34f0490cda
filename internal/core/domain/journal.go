package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalStatus indicates the lifecycle state of a journal entry.
type JournalStatus string

const (
	JournalDraft    JournalStatus = "DRAFT"
	JournalPosted   JournalStatus = "POSTED"
	JournalAdjusted JournalStatus = "ADJUSTED"
	JournalReversed JournalStatus = "REVERSED"
	JournalDeleted  JournalStatus = "DELETED"
)

// journalTransitions lists every legal status change. Anything absent is illegal.
var journalTransitions = map[JournalStatus][]JournalStatus{
	JournalDraft:    {JournalPosted, JournalDeleted},
	JournalPosted:   {JournalAdjusted, JournalReversed},
	JournalAdjusted: nil,
	JournalReversed: nil,
	JournalDeleted:  nil,
}

// IsValid reports whether s is a known journal status.
func (s JournalStatus) IsValid() bool {
	_, ok := journalTransitions[s]
	return ok
}

// CanTransitionTo reports whether an entry in status s may move to next.
func (s JournalStatus) CanTransitionTo(next JournalStatus) bool {
	for _, allowed := range journalTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is possible from s.
func (s JournalStatus) IsTerminal() bool {
	return len(journalTransitions[s]) == 0
}

// Source modules that create journal entries.
const (
	ModuleRevenue    = "REVENUE"
	ModuleExpense    = "EXPENSE"
	ModuleReceivable = "RECEIVABLE"
	ModulePayroll    = "PAYROLL"
	ModuleManual     = "MANUAL"
)

// JournalEntry is a dated, balanced set of postings against ledger accounts.
type JournalEntry struct {
	EntryID      string             `json:"entryID"`
	Code         string             `json:"code"`
	EntryDate    time.Time          `json:"entryDate"`
	Description  string             `json:"description"`
	SourceModule string             `json:"sourceModule"`
	ReferenceID  string             `json:"referenceID"`
	Status       JournalStatus      `json:"status"`
	AdjustmentOf *string            `json:"adjustmentOf,omitempty"`
	ReversalOf   *string            `json:"reversalOf,omitempty"`
	PreparedBy   string             `json:"preparedBy"`
	PostedBy     *string            `json:"postedBy,omitempty"`
	PostedAt     *time.Time         `json:"postedAt,omitempty"`
	IsDeleted    bool               `json:"isDeleted"`
	DeletedAt    *time.Time         `json:"deletedAt,omitempty"`
	DeletedBy    *string            `json:"deletedBy,omitempty"`
	DeleteReason string             `json:"deleteReason,omitempty"`
	TotalDebit   decimal.Decimal    `json:"totalDebit"`
	TotalCredit  decimal.Decimal    `json:"totalCredit"`
	Lines        []JournalEntryLine `json:"lines,omitempty"`

	History []JournalStatusChange `json:"history,omitempty"`
	AuditFields
}

// JournalEntryLine is one posting within a journal entry. Exactly one of Debit/Credit is positive.
type JournalEntryLine struct {
	LineID      string          `json:"lineID"`
	EntryID     string          `json:"entryID"`
	AccountID   string          `json:"accountID"`
	AccountCode string          `json:"accountCode"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description"`
	LineOrder   int             `json:"lineOrder"`
}

// Side returns the side of the line that carries the amount.
func (l JournalEntryLine) Side() BalanceSide {
	if l.Debit.IsPositive() {
		return Debit
	}
	return Credit
}

// Amount returns the positive amount of the line regardless of side.
func (l JournalEntryLine) Amount() decimal.Decimal {
	if l.Debit.IsPositive() {
		return l.Debit
	}
	return l.Credit
}

// JournalStatusChange is one row of an entry's status history. An entry that was posted and
// later reversed carries both transitions here even though Status only holds the latest one.
type JournalStatusChange struct {
	ChangeID       string        `json:"changeID"`
	EntryID        string        `json:"entryID"`
	FromStatus     JournalStatus `json:"fromStatus,omitempty"`
	ToStatus       JournalStatus `json:"toStatus"`
	RelatedEntryID *string       `json:"relatedEntryID,omitempty"`
	Reason         string        `json:"reason,omitempty"`
	ChangedBy      string        `json:"changedBy"`
	ChangedAt      time.Time     `json:"changedAt"`
}
