package offer

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Match determines which of the candidate offers apply to the given cart
// lines and computes the aggregate discount. Offers are returned in candidate
// order.
//
// An offer applies when at least one single line matches its category with a
// quantity at or above the offer's minimum. The threshold is checked per line,
// not against the aggregate quantity of the category across lines.
// TODO: product has not decided whether the threshold should be aggregate
// per category; keep per-line until that call is made.
//
// Expiry is not checked here: the backend owns the offer lifecycle and is
// expected to stop serving offers past their ValidUntil date.
func Match(lines []Line, candidates []Offer) ([]Offer, decimal.Decimal) {
	applied := make([]Offer, 0, len(candidates))
	for _, o := range candidates {
		if applies(o, lines) {
			applied = append(applied, o)
		}
	}
	return applied, Discount(lines, applied)
}

// Discount computes the aggregate discount of the given applied offers
// against the cart lines. Each offer discounts the subtotal of its category;
// multiple offers on the same category stack additively, with no cap.
func Discount(lines []Line, applied []Offer) decimal.Decimal {
	total := decimal.Zero
	for _, o := range applied {
		sub := categorySubtotal(lines, o.Category)
		total = total.Add(sub.Mul(o.DiscountPercentage).Div(hundred))
	}
	return total
}

func applies(o Offer, lines []Line) bool {
	for _, l := range lines {
		if l.Category == o.Category && l.Quantity >= o.MinQuantity {
			return true
		}
	}
	return false
}

// categorySubtotal returns the sum of price * quantity over lines in the
// given category.
func categorySubtotal(lines []Line, category string) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		if l.Category != category {
			continue
		}
		qty := decimal.NewFromInt(int64(l.Quantity))
		sum = sum.Add(l.UnitPrice.Mul(qty))
	}
	return sum
}
