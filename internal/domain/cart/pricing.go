package cart

import "github.com/shopspring/decimal"

// Subtotal returns the sum of unit price * quantity over the given lines.
// An empty cart yields exactly zero.
func Subtotal(lines []Line) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		qty := decimal.NewFromInt(int64(l.Quantity))
		sum = sum.Add(l.UnitPrice.Mul(qty))
	}
	return sum
}
