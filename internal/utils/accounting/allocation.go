package accounting

import (
	"fmt"
	"sort"

	"github.com/SscSPs/transit_finance/internal/apperrors"
	"github.com/SscSPs/transit_finance/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CascadePlan is the outcome of walking a payment across installment snapshots.
// Nothing in it has been persisted.
type CascadePlan struct {
	Allocations []domain.PaymentAllocation
	Remaining   decimal.Decimal
}

// Applied returns the total amount the plan allocates.
func (p CascadePlan) Applied() decimal.Decimal {
	total := decimal.Zero
	for _, a := range p.Allocations {
		total = total.Add(a.AmountApplied)
	}
	return total
}

// EligibleForCascade filters installments to the ones a payment targeting targetNumber may touch:
// not deleted, not closed, number >= targetNumber. The result is ordered by installment number.
func EligibleForCascade(targetNumber int, installments []domain.InstallmentSchedule) []domain.InstallmentSchedule {
	eligible := make([]domain.InstallmentSchedule, 0, len(installments))
	for _, inst := range installments {
		if inst.IsDeleted || inst.Status.IsClosed() || inst.InstallmentNumber < targetNumber {
			continue
		}
		eligible = append(eligible, inst)
	}
	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].InstallmentNumber < eligible[j].InstallmentNumber
	})
	return eligible
}

// OutstandingFrom sums the balances of the installments eligible for a payment on targetNumber.
func OutstandingFrom(targetNumber int, installments []domain.InstallmentSchedule) decimal.Decimal {
	total := decimal.Zero
	for _, inst := range EligibleForCascade(targetNumber, installments) {
		total = total.Add(inst.Balance)
	}
	return total
}

// PlanCascade distributes amount over the installments eligible for targetNumber, in ascending
// installment order. Each installment takes min(remaining, balance). Allocations to anything other
// than the target are flagged carried-over. Overflow never flows to earlier installments.
func PlanCascade(targetNumber int, amount decimal.Decimal, installments []domain.InstallmentSchedule) CascadePlan {
	plan := CascadePlan{Remaining: amount}
	for _, inst := range EligibleForCascade(targetNumber, installments) {
		if !plan.Remaining.IsPositive() {
			break
		}
		if !inst.Balance.IsPositive() {
			continue
		}

		applied := decimal.Min(plan.Remaining, inst.Balance)
		newPaid := inst.AmountPaid.Add(applied)
		newBalance := inst.AmountDue.Sub(newPaid)
		if newBalance.IsNegative() {
			newBalance = decimal.Zero
		}

		newStatus := inst.Status
		switch {
		case !newBalance.IsPositive():
			newStatus = domain.StatusPaid
		case newPaid.IsPositive():
			newStatus = domain.StatusPartiallyPaid
		}

		plan.Allocations = append(plan.Allocations, domain.PaymentAllocation{
			InstallmentID:     inst.InstallmentID,
			InstallmentNumber: inst.InstallmentNumber,
			PreviousBalance:   inst.Balance,
			AmountApplied:     applied,
			NewAmountPaid:     newPaid,
			NewBalance:        newBalance,
			NewStatus:         newStatus,
			IsCarriedOver:     inst.InstallmentNumber != targetNumber,
		})
		plan.Remaining = plan.Remaining.Sub(applied)
	}
	return plan
}

// ApplyAllocation returns inst updated with the effect of a, including the carried-over amount.
func ApplyAllocation(inst domain.InstallmentSchedule, a domain.PaymentAllocation) domain.InstallmentSchedule {
	inst.AmountPaid = a.NewAmountPaid
	inst.Balance = a.NewBalance
	inst.Status = a.NewStatus
	if a.IsCarriedOver {
		inst.CarriedOverAmount = inst.CarriedOverAmount.Add(a.AmountApplied)
	}
	return inst
}

// BuildSchedule turns schedule items into installment rows numbered 1..n for receivableID.
// Ids and audit fields are left to the caller.
func BuildSchedule(receivableID string, items []domain.ScheduleItem) []domain.InstallmentSchedule {
	rows := make([]domain.InstallmentSchedule, len(items))
	for i, item := range items {
		rows[i] = domain.InstallmentSchedule{
			ReceivableID:      receivableID,
			InstallmentNumber: i + 1,
			DueDate:           item.DueDate,
			AmountDue:         item.AmountDue,
			AmountPaid:        decimal.Zero,
			Balance:           item.AmountDue,
			CarriedOverAmount: decimal.Zero,
			Status:            domain.StatusPending,
		}
	}
	return rows
}

// ValidateSchedule checks that items are positive money amounts with non-decreasing due dates
// whose sum matches total within BalanceTolerance.
func ValidateSchedule(total decimal.Decimal, items []domain.ScheduleItem) error {
	if len(items) == 0 {
		return fmt.Errorf("%w: schedule must contain at least one installment", apperrors.ErrValidation)
	}
	sum := decimal.Zero
	for i, item := range items {
		if err := ValidatePositiveMoney(item.AmountDue); err != nil {
			return fmt.Errorf("installment %d: %w", i+1, err)
		}
		if item.DueDate.IsZero() {
			return fmt.Errorf("%w: installment %d: due date is required", apperrors.ErrValidation, i+1)
		}
		if i > 0 && item.DueDate.Before(items[i-1].DueDate) {
			return fmt.Errorf("%w: installment %d: due date is earlier than installment %d", apperrors.ErrValidation, i+1, i)
		}
		sum = sum.Add(item.AmountDue)
	}
	if !WithinTolerance(sum, total) {
		return fmt.Errorf("%w: installment amounts total %s but receivable total is %s",
			apperrors.ErrValidation, sum.StringFixed(MoneyScale), total.StringFixed(MoneyScale))
	}
	return nil
}
