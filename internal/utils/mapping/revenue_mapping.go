package mapping

import (
	"github.com/SscSPs/transit_finance/internal/core/domain"
	"github.com/SscSPs/transit_finance/internal/models"
)

// ToModelRevenueSource converts a domain RevenueSource to a model RevenueSource
func ToModelRevenueSource(d domain.RevenueSource) models.RevenueSource {
	m := models.RevenueSource{
		SourceID:    d.SourceID,
		Code:        d.Code,
		Name:        d.Name,
		IsActive:    d.IsActive,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
	if d.AccountCode != "" {
		code := d.AccountCode
		m.AccountCode = &code
	}
	return m
}

// ToDomainRevenueSource converts a model RevenueSource to a domain RevenueSource
func ToDomainRevenueSource(m models.RevenueSource) domain.RevenueSource {
	d := domain.RevenueSource{
		SourceID:    m.SourceID,
		Code:        m.Code,
		Name:        m.Name,
		IsActive:    m.IsActive,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
	if m.AccountCode != nil {
		d.AccountCode = *m.AccountCode
	}
	return d
}

// ToModelRevenue converts a domain Revenue to a model Revenue
func ToModelRevenue(d domain.Revenue) models.Revenue {
	return models.Revenue{
		RevenueID:       d.RevenueID,
		Code:            d.Code,
		SourceID:        d.SourceID,
		Amount:          d.Amount,
		RevenueDate:     d.RevenueDate,
		Description:     d.Description,
		PaymentMethod:   string(d.PaymentMethod),
		ReferenceNumber: d.ReferenceNumber,
		ReceivableID:    d.ReceivableID,
		JournalEntryID:  d.JournalEntryID,
		ReversalEntryID: d.ReversalEntryID,
		Status:          string(d.Status),
		AuditFields:     ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainRevenue converts a model Revenue to a domain Revenue
func ToDomainRevenue(m models.Revenue) domain.Revenue {
	return domain.Revenue{
		RevenueID:       m.RevenueID,
		Code:            m.Code,
		SourceID:        m.SourceID,
		Amount:          m.Amount,
		RevenueDate:     m.RevenueDate,
		Description:     m.Description,
		PaymentMethod:   domain.PaymentMethod(m.PaymentMethod),
		ReferenceNumber: m.ReferenceNumber,
		ReceivableID:    m.ReceivableID,
		JournalEntryID:  m.JournalEntryID,
		ReversalEntryID: m.ReversalEntryID,
		Status:          domain.RevenueStatus(m.Status),
		AuditFields:     ToDomainAuditFields(m.AuditFields),
	}
}
