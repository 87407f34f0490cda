package utils

import (
	"github.com/shopspring/decimal"
)

// FormatMoney renders an amount with exactly two decimals, e.g. 1500 -> "1500.00".
func FormatMoney(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}
