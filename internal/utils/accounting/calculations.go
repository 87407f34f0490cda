package accounting

import (
	"fmt"

	"github.com/SscSPs/transit_finance/internal/apperrors"
	"github.com/SscSPs/transit_finance/internal/core/domain"
	"github.com/shopspring/decimal"
)

// MoneyScale is the number of decimal places a money amount may carry.
const MoneyScale = 2

// BalanceTolerance is the largest difference tolerated between two money totals
// that must agree (debits vs credits, schedule vs receivable total).
var BalanceTolerance = decimal.New(1, -MoneyScale)

var (
	ErrTooFewLines     = fmt.Errorf("%w: journal entry must have at least two lines", apperrors.ErrValidation)
	ErrLineSides       = fmt.Errorf("%w: exactly one of debit or credit must be positive", apperrors.ErrValidation)
	ErrNegativeAmount  = fmt.Errorf("%w: amounts cannot be negative", apperrors.ErrValidation)
	ErrAmountPrecision = fmt.Errorf("%w: amounts cannot have more than 2 decimal places", apperrors.ErrValidation)
	ErrUnbalanced      = fmt.Errorf("%w: journal entry is not balanced", apperrors.ErrValidation)
	ErrNonPositive     = fmt.Errorf("%w: amount must be greater than zero", apperrors.ErrValidation)
)

// WithinTolerance reports whether a and b differ by no more than BalanceTolerance.
func WithinTolerance(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(BalanceTolerance)
}

// ValidateMoney checks that amount is non-negative and has at most two decimal places.
func ValidateMoney(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ErrNegativeAmount
	}
	if !amount.Equal(amount.Truncate(MoneyScale)) {
		return ErrAmountPrecision
	}
	return nil
}

// ValidatePositiveMoney is ValidateMoney plus a strictly-positive check.
func ValidatePositiveMoney(amount decimal.Decimal) error {
	if err := ValidateMoney(amount); err != nil {
		return err
	}
	if !amount.IsPositive() {
		return ErrNonPositive
	}
	return nil
}

// ValidateLine checks the one-side-positive rule for a single posting.
func ValidateLine(line domain.JournalEntryLine) error {
	if err := ValidateMoney(line.Debit); err != nil {
		return err
	}
	if err := ValidateMoney(line.Credit); err != nil {
		return err
	}
	if line.Debit.IsPositive() == line.Credit.IsPositive() {
		return ErrLineSides
	}
	return nil
}

// SumLines returns the debit and credit totals of lines.
func SumLines(lines []domain.JournalEntryLine) (totalDebit, totalCredit decimal.Decimal) {
	totalDebit, totalCredit = decimal.Zero, decimal.Zero
	for _, l := range lines {
		totalDebit = totalDebit.Add(l.Debit)
		totalCredit = totalCredit.Add(l.Credit)
	}
	return totalDebit, totalCredit
}

// ValidateLines checks every line and that the set balances within tolerance.
func ValidateLines(lines []domain.JournalEntryLine) error {
	if len(lines) < 2 {
		return ErrTooFewLines
	}
	for i, l := range lines {
		if err := ValidateLine(l); err != nil {
			return fmt.Errorf("line %d (%s): %w", i+1, l.AccountCode, err)
		}
	}
	totalDebit, totalCredit := SumLines(lines)
	if !WithinTolerance(totalDebit, totalCredit) {
		return fmt.Errorf("%w: debits %s, credits %s, difference %s",
			ErrUnbalanced, totalDebit.StringFixed(MoneyScale), totalCredit.StringFixed(MoneyScale),
			totalDebit.Sub(totalCredit).Abs().StringFixed(MoneyScale))
	}
	return nil
}

// MirrorLines returns a copy of lines with debit and credit swapped on every line.
// Line ids and entry ids are cleared; order is preserved.
func MirrorLines(lines []domain.JournalEntryLine) []domain.JournalEntryLine {
	mirrored := make([]domain.JournalEntryLine, len(lines))
	for i, l := range lines {
		mirrored[i] = domain.JournalEntryLine{
			AccountID:   l.AccountID,
			AccountCode: l.AccountCode,
			Debit:       l.Credit,
			Credit:      l.Debit,
			Description: l.Description,
			LineOrder:   l.LineOrder,
		}
	}
	return mirrored
}

// CalculateSignedAmount returns the effect of a line on an account's balance, expressed in the
// account's normal direction.
// DEBIT to a debit-normal account (ASSET/EXPENSE) -> positive
// CREDIT to a debit-normal account -> negative
// and the opposite for credit-normal accounts (LIABILITY/EQUITY/REVENUE).
func CalculateSignedAmount(line domain.JournalEntryLine, normalBalance domain.BalanceSide) (decimal.Decimal, error) {
	net := line.Debit.Sub(line.Credit)
	switch normalBalance {
	case domain.Debit:
		return net, nil
	case domain.Credit:
		return net.Neg(), nil
	default:
		return decimal.Zero, fmt.Errorf("unknown normal balance '%s' for account %s", normalBalance, line.AccountCode)
	}
}

// BalanceChanges aggregates the signed effect of lines per account id. normalBalances maps
// account id to the account's normal side and must contain every account the lines touch.
func BalanceChanges(lines []domain.JournalEntryLine, normalBalances map[string]domain.BalanceSide) (map[string]decimal.Decimal, error) {
	changes := make(map[string]decimal.Decimal, len(lines))
	for _, l := range lines {
		side, ok := normalBalances[l.AccountID]
		if !ok {
			return nil, fmt.Errorf("normal balance not found for account %s", l.AccountCode)
		}
		signed, err := CalculateSignedAmount(l, side)
		if err != nil {
			return nil, err
		}
		changes[l.AccountID] = changes[l.AccountID].Add(signed)
	}
	return changes, nil
}

