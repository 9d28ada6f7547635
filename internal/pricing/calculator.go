package pricing

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// LineBreakdown shows how a single row total was derived
type LineBreakdown struct {
	UID        string
	Title      string
	Quantity   int
	UnitPrice  decimal.Decimal
	Base       decimal.Decimal
	Discount   decimal.Decimal
	Total      decimal.Decimal
	Discounted bool
}

// Totals is the result of pricing a selection
type Totals struct {
	Lines         []LineBreakdown
	Subtotal      decimal.Decimal
	DiscountTotal decimal.Decimal
	Total         decimal.Decimal
}

// Line prices one row: qty*price less qty*price*pct/100 when the row is discount eligible
func Line(p SelectedProduct, discountPct decimal.Decimal) LineBreakdown {
	base := decimal.NewFromInt(int64(p.Quantity)).Mul(p.UnitPrice)
	discount := decimal.Zero
	if p.Discounted {
		discount = base.Mul(discountPct).Div(hundred)
	}
	return LineBreakdown{
		UID:        p.UID,
		Title:      p.Title,
		Quantity:   p.Quantity,
		UnitPrice:  p.UnitPrice,
		Base:       base,
		Discount:   discount,
		Total:      base.Sub(discount),
		Discounted: p.Discounted,
	}
}

// Calculate prices every row and sums the result
func Calculate(products []SelectedProduct, discountPct decimal.Decimal) Totals {
	t := Totals{
		Lines:         make([]LineBreakdown, 0, len(products)),
		Subtotal:      decimal.Zero,
		DiscountTotal: decimal.Zero,
		Total:         decimal.Zero,
	}
	for _, p := range products {
		l := Line(p, discountPct)
		t.Lines = append(t.Lines, l)
		t.Subtotal = t.Subtotal.Add(l.Base)
		t.DiscountTotal = t.DiscountTotal.Add(l.Discount)
		t.Total = t.Total.Add(l.Total)
	}
	return t
}

// Total returns only the grand total
func Total(products []SelectedProduct, discountPct decimal.Decimal) decimal.Decimal {
	return Calculate(products, discountPct).Total
}

// FormatAmount renders an amount with exactly two decimals
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}
