package mapping

import (
	"github.com/SscSPs/transit_finance/internal/core/domain"
	"github.com/SscSPs/transit_finance/internal/models"
)

// ToModelJournalEntry converts a domain JournalEntry header to a model JournalEntry
func ToModelJournalEntry(d domain.JournalEntry) models.JournalEntry {
	return models.JournalEntry{
		EntryID:      d.EntryID,
		Code:         d.Code,
		EntryDate:    d.EntryDate,
		Description:  d.Description,
		SourceModule: d.SourceModule,
		ReferenceID:  d.ReferenceID,
		Status:       models.JournalStatus(d.Status),
		AdjustmentOf: d.AdjustmentOf,
		ReversalOf:   d.ReversalOf,
		PreparedBy:   d.PreparedBy,
		PostedBy:     d.PostedBy,
		PostedAt:     d.PostedAt,
		IsDeleted:    d.IsDeleted,
		DeletedAt:    d.DeletedAt,
		DeletedBy:    d.DeletedBy,
		DeleteReason: d.DeleteReason,
		TotalDebit:   d.TotalDebit,
		TotalCredit:  d.TotalCredit,
		AuditFields:  ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainJournalEntry converts a model JournalEntry to a domain JournalEntry without lines
func ToDomainJournalEntry(m models.JournalEntry) domain.JournalEntry {
	return domain.JournalEntry{
		EntryID:      m.EntryID,
		Code:         m.Code,
		EntryDate:    m.EntryDate,
		Description:  m.Description,
		SourceModule: m.SourceModule,
		ReferenceID:  m.ReferenceID,
		Status:       domain.JournalStatus(m.Status),
		AdjustmentOf: m.AdjustmentOf,
		ReversalOf:   m.ReversalOf,
		PreparedBy:   m.PreparedBy,
		PostedBy:     m.PostedBy,
		PostedAt:     m.PostedAt,
		IsDeleted:    m.IsDeleted,
		DeletedAt:    m.DeletedAt,
		DeletedBy:    m.DeletedBy,
		DeleteReason: m.DeleteReason,
		TotalDebit:   m.TotalDebit,
		TotalCredit:  m.TotalCredit,
		AuditFields:  ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelJournalEntryLine converts a domain JournalEntryLine to a model JournalEntryLine
func ToModelJournalEntryLine(d domain.JournalEntryLine) models.JournalEntryLine {
	return models.JournalEntryLine(d)
}

// ToDomainJournalEntryLine converts a model JournalEntryLine to a domain JournalEntryLine
func ToDomainJournalEntryLine(m models.JournalEntryLine) domain.JournalEntryLine {
	return domain.JournalEntryLine(m)
}

// ToDomainJournalEntryLineSlice converts a slice of model lines to domain lines
func ToDomainJournalEntryLineSlice(ms []models.JournalEntryLine) []domain.JournalEntryLine {
	ds := make([]domain.JournalEntryLine, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainJournalEntryLine(m)
	}
	return ds
}

// ToModelJournalStatusChange converts a domain JournalStatusChange to a model JournalStatusChange
func ToModelJournalStatusChange(d domain.JournalStatusChange) models.JournalStatusChange {
	m := models.JournalStatusChange{
		ChangeID:       d.ChangeID,
		EntryID:        d.EntryID,
		ToStatus:       string(d.ToStatus),
		RelatedEntryID: d.RelatedEntryID,
		Reason:         d.Reason,
		ChangedBy:      d.ChangedBy,
		ChangedAt:      d.ChangedAt,
	}
	if d.FromStatus != "" {
		from := string(d.FromStatus)
		m.FromStatus = &from
	}
	return m
}

// ToDomainJournalStatusChange converts a model JournalStatusChange to a domain JournalStatusChange
func ToDomainJournalStatusChange(m models.JournalStatusChange) domain.JournalStatusChange {
	d := domain.JournalStatusChange{
		ChangeID:       m.ChangeID,
		EntryID:        m.EntryID,
		ToStatus:       domain.JournalStatus(m.ToStatus),
		RelatedEntryID: m.RelatedEntryID,
		Reason:         m.Reason,
		ChangedBy:      m.ChangedBy,
		ChangedAt:      m.ChangedAt,
	}
	if m.FromStatus != nil {
		d.FromStatus = domain.JournalStatus(*m.FromStatus)
	}
	return d
}
