package dto

import (
	"time"

	"github.com/SscSPs/transit_finance/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ScheduleItemRequest is one installment of a schedule.
type ScheduleItemRequest struct {
	DueDate   time.Time       `json:"dueDate" binding:"required"`
	AmountDue decimal.Decimal `json:"amountDue" binding:"required,money"`
}

// CreateReceivableRequest creates a receivable and its installment schedule.
// An empty Schedule yields a single installment of TotalAmount due on DueDate.
// With a Schedule, the receivable falls due with its last installment.
type CreateReceivableRequest struct {
	DebtorType      string                `json:"debtorType" binding:"required,max=30"`
	DebtorID        string                `json:"debtorID" binding:"required"`
	Description     string                `json:"description"`
	TotalAmount     decimal.Decimal       `json:"totalAmount" binding:"required,money"`
	DueDate         time.Time             `json:"dueDate" binding:"required"`
	InstallmentPlan string                `json:"installmentPlan"`
	Schedule        []ScheduleItemRequest `json:"schedule" binding:"omitempty,dive"`
}

// UpdateScheduleRequest replaces a receivable's schedule wholesale.
type UpdateScheduleRequest struct {
	InstallmentPlan *string               `json:"installmentPlan"`
	Schedule        []ScheduleItemRequest `json:"schedule" binding:"required,min=1,dive"`
}

// ChangeReceivableStatusRequest is an operator status change.
type ChangeReceivableStatusRequest struct {
	Status domain.SettlementStatus `json:"status" binding:"required,oneof=OVERDUE CANCELLED WRITTEN_OFF"`
	Reason string                  `json:"reason" binding:"required"`
}

// RecordPaymentRequest applies cash against an installment.
type RecordPaymentRequest struct {
	AmountPaid      decimal.Decimal      `json:"amountPaid" binding:"required,money"`
	PaymentDate     time.Time            `json:"paymentDate" binding:"required"`
	PaymentMethod   domain.PaymentMethod `json:"paymentMethod" binding:"omitempty,oneof=CASH BANK_TRANSFER CHECK CARD MOBILE_MONEY"` // Defaults to CASH
	ReferenceNumber string               `json:"referenceNumber"`
}

// ListReceivablesParams defines query parameters for listing receivables.
type ListReceivablesParams struct {
	Status     string  `form:"status" binding:"omitempty,oneof=PENDING PARTIALLY_PAID PAID OVERDUE CANCELLED WRITTEN_OFF"`
	DebtorType string  `form:"debtorType"`
	DebtorID   string  `form:"debtorID"`
	Limit      int     `form:"limit,default=20" binding:"min=0,max=200"`
	NextToken  *string `form:"nextToken"`
}

// ListReceivablesResponse wraps a page of receivables.
type ListReceivablesResponse struct {
	Receivables []domain.Receivable `json:"receivables"`
	NextToken   *string             `json:"nextToken,omitempty"`
}

// ToScheduleItems converts request items to domain schedule items.
func ToScheduleItems(items []ScheduleItemRequest) []domain.ScheduleItem {
	out := make([]domain.ScheduleItem, len(items))
	for i, item := range items {
		out[i] = domain.ScheduleItem{DueDate: item.DueDate, AmountDue: item.AmountDue}
	}
	return out
}
