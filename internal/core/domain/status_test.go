package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestJournalStatusTransitions(t *testing.T) {
	assert.True(t, JournalDraft.CanTransitionTo(JournalPosted))
	assert.True(t, JournalDraft.CanTransitionTo(JournalDeleted))
	assert.True(t, JournalPosted.CanTransitionTo(JournalAdjusted))
	assert.True(t, JournalPosted.CanTransitionTo(JournalReversed))

	assert.False(t, JournalDraft.CanTransitionTo(JournalReversed))
	assert.False(t, JournalPosted.CanTransitionTo(JournalPosted))
	assert.False(t, JournalReversed.CanTransitionTo(JournalReversed))
	assert.False(t, JournalAdjusted.CanTransitionTo(JournalReversed))
	assert.False(t, JournalDeleted.CanTransitionTo(JournalDraft))

	for _, s := range []JournalStatus{JournalAdjusted, JournalReversed, JournalDeleted} {
		assert.True(t, s.IsTerminal(), s)
	}
	assert.False(t, JournalStatus("APPROVED").IsValid())
}

func TestAccountTypeNormalBalance(t *testing.T) {
	tests := []struct {
		accountType AccountType
		want        BalanceSide
	}{
		{Asset, Debit},
		{Expense, Debit},
		{Liability, Credit},
		{Equity, Credit},
		{RevenueType, Credit},
	}
	for _, tt := range tests {
		assert.True(t, tt.accountType.IsValid(), tt.accountType)
		assert.Equal(t, tt.want, tt.accountType.DefaultNormalBalance(), tt.accountType)
	}
	assert.Equal(t, AccountType("REVENUE"), RevenueType)
	assert.False(t, AccountType("INCOME").IsValid())
}

func TestSettlementStatusTransitions(t *testing.T) {
	assert.True(t, StatusPending.CanTransitionTo(StatusOverdue))
	assert.True(t, StatusPartiallyPaid.CanTransitionTo(StatusWrittenOff))
	assert.True(t, StatusOverdue.CanTransitionTo(StatusCancelled))
	assert.False(t, StatusOverdue.CanTransitionTo(StatusPending))
	assert.False(t, StatusPaid.CanTransitionTo(StatusCancelled))
	assert.False(t, StatusCancelled.CanTransitionTo(StatusWrittenOff))

	assert.True(t, StatusPaid.IsClosed())
	assert.True(t, StatusWrittenOff.IsClosed())
	assert.False(t, StatusOverdue.IsClosed())
}

func TestReceivableApplyPayment(t *testing.T) {
	r := Receivable{
		TotalAmount: decimal.NewFromInt(3000),
		PaidAmount:  decimal.Zero,
		Balance:     decimal.NewFromInt(3000),
		Status:      StatusPending,
	}

	r.ApplyPayment(decimal.NewFromInt(1500))
	assert.True(t, r.PaidAmount.Equal(decimal.NewFromInt(1500)))
	assert.True(t, r.Balance.Equal(decimal.NewFromInt(1500)))
	assert.Equal(t, StatusPartiallyPaid, r.Status)

	r.ApplyPayment(decimal.NewFromInt(1500))
	assert.True(t, r.Balance.IsZero())
	assert.Equal(t, StatusPaid, r.Status)
}

func TestPaymentMethodSettlesThroughBank(t *testing.T) {
	assert.True(t, PaymentBankTransfer.SettlesThroughBank())
	assert.True(t, PaymentCheck.SettlesThroughBank())
	assert.False(t, PaymentCash.SettlesThroughBank())
	assert.False(t, PaymentMobileMoney.SettlesThroughBank())
	assert.False(t, PaymentMethod("BARTER").IsValid())
}
