package domain

import (
	"github.com/shopspring/decimal"
)

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset       AccountType = "ASSET"
	Liability   AccountType = "LIABILITY"
	Equity      AccountType = "EQUITY"
	RevenueType AccountType = "REVENUE"
	Expense     AccountType = "EXPENSE"
)

// IsValid reports whether t is one of the known account types.
func (t AccountType) IsValid() bool {
	switch t {
	case Asset, Liability, Equity, RevenueType, Expense:
		return true
	}
	return false
}

// DefaultNormalBalance returns the side on which an account of this type normally increases.
func (t AccountType) DefaultNormalBalance() BalanceSide {
	if t == Asset || t == Expense {
		return Debit
	}
	return Credit
}

// BalanceSide is either side of a ledger posting.
type BalanceSide string

const (
	Debit  BalanceSide = "DEBIT"
	Credit BalanceSide = "CREDIT"
)

// IsValid reports whether s is DEBIT or CREDIT.
func (s BalanceSide) IsValid() bool {
	return s == Debit || s == Credit
}

// Account is an entry in the chart of accounts.
type Account struct {
	AccountID     string          `json:"accountID"`
	Code          string          `json:"code"` // Unique, stable
	Name          string          `json:"name"`
	AccountType   AccountType     `json:"accountType"`
	NormalBalance BalanceSide     `json:"normalBalance"`
	Description   string          `json:"description"`
	IsActive      bool            `json:"isActive"`
	Balance       decimal.Decimal `json:"balance"` // Moved only when entries are posted
	AuditFields
}
