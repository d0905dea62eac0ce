// Package money implements integer-pence arithmetic for order pricing.
//
// All amounts are minor currency units (pence). Percentage math goes through
// shopspring/decimal so tax never touches binary floating point.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Symbol is the display currency symbol.
const Symbol = "£"

// Line is a priced basket line used for subtotal calculation.
type Line struct {
	UnitPricePence int64
	Quantity       int
}

// Format renders pence as a major-unit display string, e.g. 450 -> "£4.50".
func Format(pence int64) string {
	neg := ""
	if pence < 0 {
		neg = "-"
		pence = -pence
	}
	return fmt.Sprintf("%s%s%d.%02d", neg, Symbol, pence/100, pence%100)
}

// Subtotal sums unit price times quantity across all lines.
// An empty basket yields zero.
func Subtotal(lines []Line) int64 {
	var sum int64
	for _, l := range lines {
		sum += l.UnitPricePence * int64(l.Quantity)
	}
	return sum
}

// Tax applies rate to the taxable base (subtotal plus opted-in fees) and
// rounds half away from zero to the nearest penny. A zero rate yields zero.
func Tax(basePence int64, rate decimal.Decimal) int64 {
	if rate.IsZero() || basePence <= 0 {
		return 0
	}
	return decimal.NewFromInt(basePence).Mul(rate).Round(0).IntPart()
}

// Total combines the order's monetary components.
func Total(subtotal, bagFee, tax int64) int64 {
	return subtotal + bagFee + tax
}
