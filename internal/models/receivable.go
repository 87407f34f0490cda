package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Receivable is a row of the receivables table.
type Receivable struct {
	ReceivableID    string          `db:"receivable_id"`
	Code            string          `db:"code"`
	DebtorType      string          `db:"debtor_type"`
	DebtorID        string          `db:"debtor_id"`
	DebtorName      string          `db:"debtor_name"`
	Description     string          `db:"description"`
	TotalAmount     decimal.Decimal `db:"total_amount"`
	PaidAmount      decimal.Decimal `db:"paid_amount"`
	Balance         decimal.Decimal `db:"balance"`
	DueDate         time.Time       `db:"due_date"`
	Status          string          `db:"status"`
	InstallmentPlan string          `db:"installment_plan"`
	IsDeleted       bool            `db:"is_deleted"`
	AuditFields
}

// InstallmentSchedule is a row of the installment_schedules table.
type InstallmentSchedule struct {
	InstallmentID     string          `db:"installment_id"`
	ReceivableID      string          `db:"receivable_id"`
	InstallmentNumber int             `db:"installment_number"`
	DueDate           time.Time       `db:"due_date"`
	AmountDue         decimal.Decimal `db:"amount_due"`
	AmountPaid        decimal.Decimal `db:"amount_paid"`
	Balance           decimal.Decimal `db:"balance"`
	CarriedOverAmount decimal.Decimal `db:"carried_over_amount"`
	Status            string          `db:"status"`
	IsDeleted         bool            `db:"is_deleted"`
	AuditFields
}

// InstallmentPayment is a row of the installment_payments table. Rows are never updated.
type InstallmentPayment struct {
	PaymentID       string          `db:"payment_id"`
	InstallmentID   string          `db:"installment_id"`
	RevenueID       string          `db:"revenue_id"`
	AmountApplied   decimal.Decimal `db:"amount_applied"`
	PaymentDate     time.Time       `db:"payment_date"`
	PaymentMethod   string          `db:"payment_method"`
	ReferenceNumber string          `db:"reference_number"`
	IsCarriedOver   bool            `db:"is_carried_over"`
	CreatedAt       time.Time       `db:"created_at"`
	CreatedBy       string          `db:"created_by"`
}
