package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/straye-as/salesops-api/internal/domain"
)

var (
	// ExemptDiscount is applied whenever the VAT classification is switched to exempt
	ExemptDiscount = decimal.NewFromInt(12)
	// MaxDiscount caps the discount percentage so a total never goes negative
	MaxDiscount = decimal.NewFromInt(100)
)

// Context holds the quotation-wide pricing inputs
type Context struct {
	discount decimal.Decimal
	vat      domain.VATType
}

// NewContext returns a VAT inclusive context with no discount
func NewContext() *Context {
	return &Context{discount: decimal.Zero, vat: domain.VATInclusive}
}

// SetVATType switches the VAT classification. Exempt forces the discount to 12,
// every other classification resets it to 0. The previous discount is not restored.
func (c *Context) SetVATType(v domain.VATType) {
	if !v.IsValid() {
		v = domain.VATInclusive
	}
	c.vat = v
	if v == domain.VATExempt {
		c.discount = ExemptDiscount
		return
	}
	c.discount = decimal.Zero
}

// SetDiscount sets the discount percentage, clamped to [0, 100]
func (c *Context) SetDiscount(pct decimal.Decimal) {
	switch {
	case pct.IsNegative():
		pct = decimal.Zero
	case pct.GreaterThan(MaxDiscount):
		pct = MaxDiscount
	}
	c.discount = pct
}

// Discount returns the current discount percentage
func (c *Context) Discount() decimal.Decimal {
	return c.discount
}

// VATType returns the current VAT classification
func (c *Context) VATType() domain.VATType {
	return c.vat
}

// VATLabel returns the label shown next to the total
func (c *Context) VATLabel() string {
	return c.vat.Label()
}

// Totals prices products with the context's discount
func (c *Context) Totals(products []SelectedProduct) Totals {
	return Calculate(products, c.discount)
}

// ResolveContext replays a client request: the VAT switch first, then the
// explicit discount if one was sent. Non-numeric discount input counts as 0.
func ResolveContext(vat domain.VATType, discount domain.FlexNumber) *Context {
	c := NewContext()
	if vat != "" {
		c.SetVATType(vat)
	}
	raw := strings.TrimSpace(string(discount))
	if raw == "" {
		return c
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		d = decimal.Zero
	}
	c.SetDiscount(d)
	return c
}

// ToDTO converts priced totals into the API shape
func ToDTO(c *Context, t Totals) domain.QuotationTotalsDTO {
	lines := make([]domain.LineBreakdownDTO, 0, len(t.Lines))
	for _, l := range t.Lines {
		lines = append(lines, domain.LineBreakdownDTO{
			UID:        l.UID,
			Title:      l.Title,
			Quantity:   l.Quantity,
			UnitPrice:  FormatAmount(l.UnitPrice),
			Base:       FormatAmount(l.Base),
			Discount:   FormatAmount(l.Discount),
			Total:      FormatAmount(l.Total),
			Discounted: l.Discounted,
		})
	}
	return domain.QuotationTotalsDTO{
		Lines:           lines,
		Subtotal:        FormatAmount(t.Subtotal),
		DiscountTotal:   FormatAmount(t.DiscountTotal),
		Total:           FormatAmount(t.Total),
		DiscountPercent: FormatAmount(c.Discount()),
		VATType:         c.VATType(),
		VATLabel:        c.VATLabel(),
	}
}
