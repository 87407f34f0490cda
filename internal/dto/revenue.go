package dto

import (
	"time"

	"github.com/SscSPs/transit_finance/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateRevenueSourceRequest defines the data needed to add a revenue source.
type CreateRevenueSourceRequest struct {
	Code        string `json:"code" binding:"required,max=30"`
	Name        string `json:"name" binding:"required,max=150"`
	AccountCode string `json:"accountCode"` // Empty falls back to the default revenue account
}

// CreateRevenueRequest records cash received and recognises it in the ledger as a DRAFT entry.
type CreateRevenueRequest struct {
	SourceID        string               `json:"sourceID" binding:"required"`
	Amount          decimal.Decimal      `json:"amount" binding:"required,money"`
	RevenueDate     time.Time            `json:"revenueDate" binding:"required"`
	Description     string               `json:"description"`
	PaymentMethod   domain.PaymentMethod `json:"paymentMethod" binding:"required,oneof=CASH BANK_TRANSFER CHECK CARD MOBILE_MONEY"`
	ReferenceNumber string               `json:"referenceNumber"`
	ReceivableID    *string              `json:"receivableID"`
}

// ReverseRevenueRequest reverses a posted revenue.
type ReverseRevenueRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// ReceivableCollection is cash received against a receivable, recorded by the payment allocator.
type ReceivableCollection struct {
	ReceivableID    string
	ReceivableCode  string
	DebtorName      string
	Amount          decimal.Decimal
	Date            time.Time
	PaymentMethod   domain.PaymentMethod
	ReferenceNumber string
}

// ListRevenuesParams defines query parameters for listing revenues.
type ListRevenuesParams struct {
	SourceID     string     `form:"sourceID"`
	Status       string     `form:"status" binding:"omitempty,oneof=RECORDED POSTED REVERSED"`
	ReceivableID string     `form:"receivableID"`
	FromDate     *time.Time `form:"fromDate" time_format:"2006-01-02"`
	ToDate       *time.Time `form:"toDate" time_format:"2006-01-02"`
	Limit        int        `form:"limit,default=20" binding:"min=0,max=200"`
	NextToken    *string    `form:"nextToken"`
}

// ListRevenuesResponse wraps a page of revenues.
type ListRevenuesResponse struct {
	Revenues  []domain.Revenue `json:"revenues"`
	NextToken *string          `json:"nextToken,omitempty"`
}
