package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SettlementStatus is shared by receivables and their installment rows.
type SettlementStatus string

const (
	StatusPending       SettlementStatus = "PENDING"
	StatusPartiallyPaid SettlementStatus = "PARTIALLY_PAID"
	StatusPaid          SettlementStatus = "PAID"
	StatusOverdue       SettlementStatus = "OVERDUE"
	StatusCancelled     SettlementStatus = "CANCELLED"
	StatusWrittenOff    SettlementStatus = "WRITTEN_OFF"
)

// operatorTransitions lists the status changes an operator may request explicitly.
// Payment-driven changes (PENDING -> PARTIALLY_PAID -> PAID) are computed, not requested.
var operatorTransitions = map[SettlementStatus][]SettlementStatus{
	StatusPending:       {StatusOverdue, StatusCancelled, StatusWrittenOff},
	StatusPartiallyPaid: {StatusOverdue, StatusCancelled, StatusWrittenOff},
	StatusOverdue:       {StatusCancelled, StatusWrittenOff},
	StatusPaid:          nil,
	StatusCancelled:     nil,
	StatusWrittenOff:    nil,
}

// IsValid reports whether s is a known settlement status.
func (s SettlementStatus) IsValid() bool {
	_, ok := operatorTransitions[s]
	return ok
}

// IsClosed reports whether no further payment may be applied in status s.
func (s SettlementStatus) IsClosed() bool {
	return s == StatusPaid || s == StatusCancelled || s == StatusWrittenOff
}

// CanTransitionTo reports whether an operator may move a record from s to next.
func (s SettlementStatus) CanTransitionTo(next SettlementStatus) bool {
	for _, allowed := range operatorTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Receivable is an amount owed to the organisation, optionally split into installments.
type Receivable struct {
	ReceivableID    string           `json:"receivableID"`
	Code            string           `json:"code"`
	DebtorType      string           `json:"debtorType"`
	DebtorID        string           `json:"debtorID"`
	DebtorName      string           `json:"debtorName"`
	Description     string           `json:"description"`
	TotalAmount     decimal.Decimal  `json:"totalAmount"`
	PaidAmount      decimal.Decimal  `json:"paidAmount"`
	Balance         decimal.Decimal  `json:"balance"`
	DueDate         time.Time        `json:"dueDate"`
	Status          SettlementStatus `json:"status"`
	InstallmentPlan string           `json:"installmentPlan"`
	IsDeleted       bool             `json:"isDeleted"`

	Installments []InstallmentSchedule `json:"installments,omitempty"`
	AuditFields
}

// ApplyPayment adds amount to the paid aggregate and recomputes balance and status.
func (r *Receivable) ApplyPayment(amount decimal.Decimal) {
	r.PaidAmount = r.PaidAmount.Add(amount)
	r.Balance = r.TotalAmount.Sub(r.PaidAmount)
	if r.Balance.IsNegative() {
		r.Balance = decimal.Zero
	}
	switch {
	case !r.Balance.IsPositive():
		r.Status = StatusPaid
	case r.PaidAmount.IsPositive():
		r.Status = StatusPartiallyPaid
	}
}

// InstallmentSchedule is one scheduled obligation of a receivable.
type InstallmentSchedule struct {
	InstallmentID     string           `json:"installmentID"`
	ReceivableID      string           `json:"receivableID"`
	InstallmentNumber int              `json:"installmentNumber"` // 1-based, defines cascade order
	DueDate           time.Time        `json:"dueDate"`
	AmountDue         decimal.Decimal  `json:"amountDue"`
	AmountPaid        decimal.Decimal  `json:"amountPaid"`
	Balance           decimal.Decimal  `json:"balance"`
	CarriedOverAmount decimal.Decimal  `json:"carriedOverAmount"`
	Status            SettlementStatus `json:"status"`
	IsDeleted         bool             `json:"isDeleted"`
	AuditFields
}

// ScheduleItem is the input shape of one installment when a schedule is (re)built.
type ScheduleItem struct {
	DueDate   time.Time
	AmountDue decimal.Decimal
}

// InstallmentPayment records cash applied to one installment in one payment event. Immutable.
type InstallmentPayment struct {
	PaymentID       string          `json:"paymentID"`
	InstallmentID   string          `json:"installmentID"`
	RevenueID       string          `json:"revenueID"`
	AmountApplied   decimal.Decimal `json:"amountApplied"`
	PaymentDate     time.Time       `json:"paymentDate"`
	PaymentMethod   PaymentMethod   `json:"paymentMethod"`
	ReferenceNumber string          `json:"referenceNumber,omitempty"`
	IsCarriedOver   bool            `json:"isCarriedOver"`
	CreatedAt       time.Time       `json:"createdAt"`
	CreatedBy       string          `json:"createdBy"`
}

// PaymentAllocation describes what one payment event did to one installment.
type PaymentAllocation struct {
	InstallmentID     string           `json:"installmentID"`
	InstallmentNumber int              `json:"installmentNumber"`
	PreviousBalance   decimal.Decimal  `json:"previousBalance"`
	AmountApplied     decimal.Decimal  `json:"amountApplied"`
	NewAmountPaid     decimal.Decimal  `json:"newAmountPaid"`
	NewBalance        decimal.Decimal  `json:"newBalance"`
	NewStatus         SettlementStatus `json:"newStatus"`
	IsCarriedOver     bool             `json:"isCarriedOver"`
}

// PaymentResult is returned by a cascade payment.
type PaymentResult struct {
	Success         bool                `json:"success"`
	AmountPaid      decimal.Decimal     `json:"amountPaid"`
	Allocations     []PaymentAllocation `json:"allocations"`
	RemainingAmount decimal.Decimal     `json:"remainingAmount"`
	PaymentIDs      []string            `json:"paymentIDs"`
	RevenueID       string              `json:"revenueID"`
	Receivable      *Receivable         `json:"receivable,omitempty"`
}
