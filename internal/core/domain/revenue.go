package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod is how cash was received.
type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "CASH"
	PaymentBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentCheck        PaymentMethod = "CHECK"
	PaymentCard         PaymentMethod = "CARD"
	PaymentMobileMoney  PaymentMethod = "MOBILE_MONEY"
)

// IsValid reports whether m is a known payment method.
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentCash, PaymentBankTransfer, PaymentCheck, PaymentCard, PaymentMobileMoney:
		return true
	}
	return false
}

// SettlesThroughBank reports whether money received this way lands in the bank account
// rather than the cash account.
func (m PaymentMethod) SettlesThroughBank() bool {
	return m == PaymentBankTransfer || m == PaymentCheck
}

// RevenueStatus tracks a revenue record's position in the general ledger.
type RevenueStatus string

const (
	RevenueRecorded RevenueStatus = "RECORDED"
	RevenuePosted   RevenueStatus = "POSTED"
	RevenueReversed RevenueStatus = "REVERSED"
)

// RevenueSource classifies revenue (fares, charters, advertising, collections...) and
// optionally pins the revenue account credited for it.
type RevenueSource struct {
	SourceID    string `json:"sourceID"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	AccountCode string `json:"accountCode,omitempty"`
	IsActive    bool   `json:"isActive"`
	AuditFields
}

// Revenue is one cash-received record.
type Revenue struct {
	RevenueID       string          `json:"revenueID"`
	Code            string          `json:"code"`
	SourceID        string          `json:"sourceID"`
	Amount          decimal.Decimal `json:"amount"`
	RevenueDate     time.Time       `json:"revenueDate"`
	Description     string          `json:"description"`
	PaymentMethod   PaymentMethod   `json:"paymentMethod"`
	ReferenceNumber string          `json:"referenceNumber,omitempty"`
	ReceivableID    *string         `json:"receivableID,omitempty"`
	JournalEntryID  *string         `json:"journalEntryID,omitempty"`
	ReversalEntryID *string         `json:"reversalEntryID,omitempty"`
	Status          RevenueStatus   `json:"status"`
	AuditFields
}
