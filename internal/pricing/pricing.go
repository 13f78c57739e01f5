// Package pricing computes order totals. It is pure: no I/O, no mutation,
// deterministic for identical inputs.
package pricing

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// LineItem is a validated line carrying a catalog-resolved unit price.
type LineItem struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

// Subtotal returns the line's quantity x unit price.
func (l LineItem) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Quote is the priced result of a set of line items.
type Quote struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
}

// Calculate prices a set of line items with an optional percentage discount.
// The discount is rounded to 2 decimals half-away-from-zero, matching stored
// currency semantics; with percentages capped at 100 the total cannot go
// negative.
func Calculate(items []LineItem, discountPct decimal.Decimal) Quote {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.Subtotal())
	}

	discount := Discount(subtotal, discountPct)

	return Quote{
		Subtotal: subtotal,
		Discount: discount,
		Total:    subtotal.Sub(discount),
	}
}

// Discount returns subtotal x pct/100 rounded to 2 decimals.
func Discount(subtotal, pct decimal.Decimal) decimal.Decimal {
	if pct.IsZero() {
		return decimal.Zero
	}
	return subtotal.Mul(pct).Div(hundred).Round(2)
}
