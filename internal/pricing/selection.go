package pricing

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/straye-as/salesops-api/internal/domain"
)

// SelectedProduct is one row of a quotation's product selection
type SelectedProduct struct {
	ID          string
	UID         string
	Title       string
	Description string
	Image       string
	SKUs        []string
	Quantity    int
	UnitPrice   decimal.Decimal
	Discounted  bool
}

// ProductPatch holds the editable fields of a row. Nil fields are left unchanged.
type ProductPatch struct {
	Title       *string
	Description *string
	Quantity    *string
	UnitPrice   *string
	Discounted  *bool
}

// MaxQuantity is the largest quantity a row can carry; larger input saturates here
const MaxQuantity = 999999

var maxQuantity = decimal.NewFromInt(MaxQuantity)

// ParseQuantity coerces raw input to a quantity between 1 and MaxQuantity.
// Fractions are truncated and non-numeric input counts as 0.
func ParseQuantity(raw string) int {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return ClampQuantity(0)
	}
	// IntPart wraps outside int64, so saturate on the decimal first
	if d.GreaterThan(maxQuantity) {
		return MaxQuantity
	}
	return ClampQuantity(d.IntPart())
}

// ClampQuantity raises anything below 1 to 1 and caps at MaxQuantity
func ClampQuantity(q int64) int {
	if q < 1 {
		return 1
	}
	if q > MaxQuantity {
		return MaxQuantity
	}
	return int(q)
}

// ParsePrice coerces raw input to a non-negative unit price. Non-numeric input counts as 0.
func ParsePrice(raw string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero
	}
	return ClampPrice(d)
}

// ClampPrice raises negative prices to 0
func ClampPrice(p decimal.Decimal) decimal.Decimal {
	if p.IsNegative() {
		return decimal.Zero
	}
	return p
}

// FromInput converts a client row into a SelectedProduct, applying the edit clamps.
// A missing uid is generated.
func FromInput(in domain.SelectedProductInput) SelectedProduct {
	uid := in.UID
	if uid == "" {
		uid = uuid.NewString()
	}
	return SelectedProduct{
		ID:          in.ID,
		UID:         uid,
		Title:       in.Title,
		Description: in.Description,
		Image:       in.Image,
		SKUs:        append([]string(nil), in.SKUs...),
		Quantity:    ParseQuantity(string(in.Quantity)),
		UnitPrice:   ParsePrice(string(in.Price)),
		Discounted:  in.Discounted,
	}
}

// FromInputs converts every client row, preserving order
func FromInputs(in []domain.SelectedProductInput) []SelectedProduct {
	out := make([]SelectedProduct, 0, len(in))
	for _, p := range in {
		out = append(out, FromInput(p))
	}
	return out
}

// Selection is the ordered product list of a quotation being composed.
// It is not safe for concurrent use.
type Selection struct {
	items []SelectedProduct
}

// NewSelection creates an empty selection
func NewSelection() *Selection {
	return &Selection{}
}

// Add appends a catalog search result with quantity 1 and the catalog price, if any
func (s *Selection) Add(p domain.Product) SelectedProduct {
	image := ""
	if len(p.Images) > 0 {
		image = p.Images[0]
	}
	item := SelectedProduct{
		ID:          p.ID,
		UID:         uuid.NewString(),
		Title:       p.Title,
		Description: p.Description,
		Image:       image,
		SKUs:        append([]string(nil), p.SKUs...),
		Quantity:    1,
		UnitPrice:   ParsePrice(p.Price),
	}
	s.items = append(s.items, item)
	return item
}

// Update applies a patch to the row at index. Each field is clamped on its own.
func (s *Selection) Update(index int, patch ProductPatch) error {
	if index < 0 || index >= len(s.items) {
		return fmt.Errorf("row %d out of range (len %d)", index, len(s.items))
	}
	item := &s.items[index]
	if patch.Title != nil {
		item.Title = *patch.Title
	}
	if patch.Description != nil {
		item.Description = *patch.Description
	}
	if patch.Quantity != nil {
		item.Quantity = ParseQuantity(*patch.Quantity)
	}
	if patch.UnitPrice != nil {
		item.UnitPrice = ParsePrice(*patch.UnitPrice)
	}
	if patch.Discounted != nil {
		item.Discounted = *patch.Discounted
	}
	return nil
}

// Remove deletes the row at index, keeping the order of the rest
func (s *Selection) Remove(index int) error {
	if index < 0 || index >= len(s.items) {
		return fmt.Errorf("row %d out of range (len %d)", index, len(s.items))
	}
	s.items = append(s.items[:index], s.items[index+1:]...)
	return nil
}

// Discard clears the selection
func (s *Selection) Discard() {
	s.items = nil
}

// Len returns the number of rows
func (s *Selection) Len() int {
	return len(s.items)
}

// Items returns a copy of the rows in order
func (s *Selection) Items() []SelectedProduct {
	out := make([]SelectedProduct, len(s.items))
	copy(out, s.items)
	return out
}
