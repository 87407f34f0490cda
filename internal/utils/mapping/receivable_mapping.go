package mapping

import (
	"github.com/SscSPs/transit_finance/internal/core/domain"
	"github.com/SscSPs/transit_finance/internal/models"
)

// ToModelReceivable converts a domain Receivable to a model Receivable
func ToModelReceivable(d domain.Receivable) models.Receivable {
	return models.Receivable{
		ReceivableID:    d.ReceivableID,
		Code:            d.Code,
		DebtorType:      d.DebtorType,
		DebtorID:        d.DebtorID,
		DebtorName:      d.DebtorName,
		Description:     d.Description,
		TotalAmount:     d.TotalAmount,
		PaidAmount:      d.PaidAmount,
		Balance:         d.Balance,
		DueDate:         d.DueDate,
		Status:          string(d.Status),
		InstallmentPlan: d.InstallmentPlan,
		IsDeleted:       d.IsDeleted,
		AuditFields:     ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainReceivable converts a model Receivable to a domain Receivable without installments
func ToDomainReceivable(m models.Receivable) domain.Receivable {
	return domain.Receivable{
		ReceivableID:    m.ReceivableID,
		Code:            m.Code,
		DebtorType:      m.DebtorType,
		DebtorID:        m.DebtorID,
		DebtorName:      m.DebtorName,
		Description:     m.Description,
		TotalAmount:     m.TotalAmount,
		PaidAmount:      m.PaidAmount,
		Balance:         m.Balance,
		DueDate:         m.DueDate,
		Status:          domain.SettlementStatus(m.Status),
		InstallmentPlan: m.InstallmentPlan,
		IsDeleted:       m.IsDeleted,
		AuditFields:     ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelInstallment converts a domain InstallmentSchedule to a model InstallmentSchedule
func ToModelInstallment(d domain.InstallmentSchedule) models.InstallmentSchedule {
	return models.InstallmentSchedule{
		InstallmentID:     d.InstallmentID,
		ReceivableID:      d.ReceivableID,
		InstallmentNumber: d.InstallmentNumber,
		DueDate:           d.DueDate,
		AmountDue:         d.AmountDue,
		AmountPaid:        d.AmountPaid,
		Balance:           d.Balance,
		CarriedOverAmount: d.CarriedOverAmount,
		Status:            string(d.Status),
		IsDeleted:         d.IsDeleted,
		AuditFields:       ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainInstallment converts a model InstallmentSchedule to a domain InstallmentSchedule
func ToDomainInstallment(m models.InstallmentSchedule) domain.InstallmentSchedule {
	return domain.InstallmentSchedule{
		InstallmentID:     m.InstallmentID,
		ReceivableID:      m.ReceivableID,
		InstallmentNumber: m.InstallmentNumber,
		DueDate:           m.DueDate,
		AmountDue:         m.AmountDue,
		AmountPaid:        m.AmountPaid,
		Balance:           m.Balance,
		CarriedOverAmount: m.CarriedOverAmount,
		Status:            domain.SettlementStatus(m.Status),
		IsDeleted:         m.IsDeleted,
		AuditFields:       ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelInstallmentPayment converts a domain InstallmentPayment to a model InstallmentPayment
func ToModelInstallmentPayment(d domain.InstallmentPayment) models.InstallmentPayment {
	return models.InstallmentPayment{
		PaymentID:       d.PaymentID,
		InstallmentID:   d.InstallmentID,
		RevenueID:       d.RevenueID,
		AmountApplied:   d.AmountApplied,
		PaymentDate:     d.PaymentDate,
		PaymentMethod:   string(d.PaymentMethod),
		ReferenceNumber: d.ReferenceNumber,
		IsCarriedOver:   d.IsCarriedOver,
		CreatedAt:       d.CreatedAt,
		CreatedBy:       d.CreatedBy,
	}
}

// ToDomainInstallmentPayment converts a model InstallmentPayment to a domain InstallmentPayment
func ToDomainInstallmentPayment(m models.InstallmentPayment) domain.InstallmentPayment {
	return domain.InstallmentPayment{
		PaymentID:       m.PaymentID,
		InstallmentID:   m.InstallmentID,
		RevenueID:       m.RevenueID,
		AmountApplied:   m.AmountApplied,
		PaymentDate:     m.PaymentDate,
		PaymentMethod:   domain.PaymentMethod(m.PaymentMethod),
		ReferenceNumber: m.ReferenceNumber,
		IsCarriedOver:   m.IsCarriedOver,
		CreatedAt:       m.CreatedAt,
		CreatedBy:       m.CreatedBy,
	}
}
