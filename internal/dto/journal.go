package dto

import (
	"time"

	"github.com/SscSPs/transit_finance/internal/core/domain"
	"github.com/shopspring/decimal"
)

// JournalLineRequest is one posting in a create/update/adjust request.
// Exactly one of Debit or Credit must be positive.
type JournalLineRequest struct {
	AccountCode string          `json:"accountCode" binding:"required"`
	Debit       decimal.Decimal `json:"debit" binding:"money"`
	Credit      decimal.Decimal `json:"credit" binding:"money"`
	Description string          `json:"description"`
}

// CreateJournalEntryRequest creates a DRAFT entry on behalf of a source module.
type CreateJournalEntryRequest struct {
	SourceModule string               `json:"sourceModule" binding:"required,oneof=REVENUE EXPENSE RECEIVABLE PAYROLL MANUAL"`
	ReferenceID  string               `json:"referenceID"`
	Description  string               `json:"description" binding:"required"`
	EntryDate    time.Time            `json:"entryDate" binding:"required"`
	Lines        []JournalLineRequest `json:"lines" binding:"required,min=2,dive"`
}

// AdjustJournalEntryRequest creates a DRAFT adjustment of a POSTED entry.
type AdjustJournalEntryRequest struct {
	Description string               `json:"description" binding:"required"`
	EntryDate   *time.Time           `json:"entryDate"` // Defaults to today
	Lines       []JournalLineRequest `json:"lines" binding:"required,min=2,dive"`
}

// ReverseJournalEntryRequest creates a DRAFT reversal of a POSTED entry.
type ReverseJournalEntryRequest struct {
	Reason    string     `json:"reason" binding:"required"`
	EntryDate *time.Time `json:"entryDate"` // Defaults to today
}

// UpdateJournalEntryRequest edits a DRAFT entry. Nil fields are left unchanged;
// non-nil Lines replace the full line set.
type UpdateJournalEntryRequest struct {
	Description *string              `json:"description"`
	EntryDate   *time.Time           `json:"entryDate"`
	Lines       []JournalLineRequest `json:"lines" binding:"omitempty,min=2,dive"`
}

// DeleteJournalEntryRequest soft-deletes a DRAFT entry.
type DeleteJournalEntryRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// ListJournalEntriesParams defines query parameters for listing entries.
type ListJournalEntriesParams struct {
	Status       string     `form:"status" binding:"omitempty,oneof=DRAFT POSTED ADJUSTED REVERSED DELETED"`
	SourceModule string     `form:"sourceModule"`
	ReferenceID  string     `form:"referenceID"`
	FromDate     *time.Time `form:"fromDate" time_format:"2006-01-02"`
	ToDate       *time.Time `form:"toDate" time_format:"2006-01-02"`
	Limit        int        `form:"limit,default=20" binding:"min=0,max=200"`
	NextToken    *string    `form:"nextToken"`
}

// JournalLineResponse defines the data returned for one journal line.
type JournalLineResponse struct {
	LineID      string          `json:"lineID"`
	AccountID   string          `json:"accountID"`
	AccountCode string          `json:"accountCode"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description"`
	LineOrder   int             `json:"lineOrder"`
}

// JournalEntryResponse defines the data returned for a journal entry.
type JournalEntryResponse struct {
	EntryID      string                `json:"entryID"`
	Code         string                `json:"code"`
	EntryDate    time.Time             `json:"entryDate"`
	Description  string                `json:"description"`
	SourceModule string                `json:"sourceModule"`
	ReferenceID  string                `json:"referenceID"`
	Status       domain.JournalStatus  `json:"status"`
	AdjustmentOf *string               `json:"adjustmentOf,omitempty"`
	ReversalOf   *string               `json:"reversalOf,omitempty"`
	PreparedBy   string                `json:"preparedBy"`
	PostedBy     *string               `json:"postedBy,omitempty"`
	PostedAt     *time.Time            `json:"postedAt,omitempty"`
	TotalDebit   decimal.Decimal       `json:"totalDebit"`
	TotalCredit  decimal.Decimal       `json:"totalCredit"`
	Lines        []JournalLineResponse `json:"lines,omitempty"`
	CreatedAt    time.Time             `json:"createdAt"`
	CreatedBy    string                `json:"createdBy"`
	Version      int                   `json:"version"`
}

// ListJournalEntriesResponse wraps a page of entries.
type ListJournalEntriesResponse struct {
	Entries   []JournalEntryResponse `json:"entries"`
	NextToken *string                `json:"nextToken,omitempty"`
}

// ToJournalEntryResponse converts a domain.JournalEntry to JournalEntryResponse DTO.
func ToJournalEntryResponse(e *domain.JournalEntry) JournalEntryResponse {
	resp := JournalEntryResponse{
		EntryID:      e.EntryID,
		Code:         e.Code,
		EntryDate:    e.EntryDate,
		Description:  e.Description,
		SourceModule: e.SourceModule,
		ReferenceID:  e.ReferenceID,
		Status:       e.Status,
		AdjustmentOf: e.AdjustmentOf,
		ReversalOf:   e.ReversalOf,
		PreparedBy:   e.PreparedBy,
		PostedBy:     e.PostedBy,
		PostedAt:     e.PostedAt,
		TotalDebit:   e.TotalDebit,
		TotalCredit:  e.TotalCredit,
		CreatedAt:    e.CreatedAt,
		CreatedBy:    e.CreatedBy,
		Version:      e.Version,
	}
	if len(e.Lines) > 0 {
		resp.Lines = make([]JournalLineResponse, len(e.Lines))
		for i, l := range e.Lines {
			resp.Lines[i] = JournalLineResponse{
				LineID:      l.LineID,
				AccountID:   l.AccountID,
				AccountCode: l.AccountCode,
				Debit:       l.Debit,
				Credit:      l.Credit,
				Description: l.Description,
				LineOrder:   l.LineOrder,
			}
		}
	}
	return resp
}

// ToJournalEntryResponses converts a slice of domain.JournalEntry to []JournalEntryResponse.
func ToJournalEntryResponses(entries []domain.JournalEntry) []JournalEntryResponse {
	responses := make([]JournalEntryResponse, len(entries))
	for i := range entries {
		responses[i] = ToJournalEntryResponse(&entries[i])
	}
	return responses
}
