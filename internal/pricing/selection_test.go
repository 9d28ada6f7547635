package pricing_test

import (
	"testing"

	"github.com/straye-as/salesops-api/internal/domain"
	"github.com/straye-as/salesops-api/internal/pricing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want int
	}{
		{name: "positive", raw: "5", want: 5},
		{name: "zero clamps to one", raw: "0", want: 1},
		{name: "negative clamps to one", raw: "-3", want: 1},
		{name: "non numeric clamps to one", raw: "abc", want: 1},
		{name: "empty clamps to one", raw: "", want: 1},
		{name: "fraction truncates", raw: "2.9", want: 2},
		{name: "whitespace", raw: " 4 ", want: 4},
		{name: "at the cap", raw: "999999", want: pricing.MaxQuantity},
		{name: "above the cap saturates", raw: "1000000", want: pricing.MaxQuantity},
		{name: "exponent saturates", raw: "1e30", want: pricing.MaxQuantity},
		{name: "just past int64 saturates", raw: "9223372036854775808", want: pricing.MaxQuantity},
		{name: "past uint64 saturates", raw: "18446744073709551617", want: pricing.MaxQuantity},
		{name: "huge negative clamps to one", raw: "-1e30", want: 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, pricing.ParseQuantity(tc.raw))
		})
	}
}

func TestClampQuantity(t *testing.T) {
	assert.Equal(t, 1, pricing.ClampQuantity(-5))
	assert.Equal(t, 7, pricing.ClampQuantity(7))
	assert.Equal(t, pricing.MaxQuantity, pricing.ClampQuantity(1<<40))
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "positive", raw: "12.5", want: "12.50"},
		{name: "negative clamps to zero", raw: "-1", want: "0.00"},
		{name: "non numeric is zero", raw: "n/a", want: "0.00"},
		{name: "zero", raw: "0", want: "0.00"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, pricing.FormatAmount(pricing.ParsePrice(tc.raw)))
		})
	}
}

func TestSelection_AddUpdateRemove(t *testing.T) {
	s := pricing.NewSelection()
	first := s.Add(domain.Product{ID: "p1", Title: "Panel", Images: []string{"a.jpg", "b.jpg"}, SKUs: []string{"SKU-1"}, Price: "99.50"})
	s.Add(domain.Product{ID: "p2", Title: "Bracket"})

	require.Equal(t, 2, s.Len())
	assert.Equal(t, 1, first.Quantity)
	assert.Equal(t, "a.jpg", first.Image)
	assert.Equal(t, "99.50", pricing.FormatAmount(first.UnitPrice))
	assert.NotEmpty(t, first.UID)
	assert.NotEqual(t, first.UID, s.Items()[1].UID)

	qty := "-2"
	price := "-10"
	discounted := true
	require.NoError(t, s.Update(1, pricing.ProductPatch{Quantity: &qty, UnitPrice: &price, Discounted: &discounted}))

	updated := s.Items()[1]
	assert.Equal(t, 1, updated.Quantity)
	assert.True(t, updated.UnitPrice.IsZero())
	assert.True(t, updated.Discounted)

	require.NoError(t, s.Remove(0))
	require.Equal(t, 1, s.Len())
	assert.Equal(t, "p2", s.Items()[0].ID)

	s.Discard()
	assert.Equal(t, 0, s.Len())
}

func TestSelection_UpdateOutOfRange(t *testing.T) {
	s := pricing.NewSelection()
	qty := "2"
	assert.Error(t, s.Update(0, pricing.ProductPatch{Quantity: &qty}))
	assert.Error(t, s.Remove(-1))
}

func TestSelection_ItemsReturnsCopy(t *testing.T) {
	s := pricing.NewSelection()
	s.Add(domain.Product{ID: "p1", Title: "Panel"})

	items := s.Items()
	items[0].Title = "changed"

	assert.Equal(t, "Panel", s.Items()[0].Title)
}

func TestFromInputs_ClampsAndKeepsOrder(t *testing.T) {
	in := []domain.SelectedProductInput{
		{ID: "a", UID: "uid-a", Title: "A", Quantity: "0", Price: "-5"},
		{ID: "b", Title: "B", Quantity: "3", Price: "2.25", Discounted: true},
	}

	out := pricing.FromInputs(in)

	require.Len(t, out, 2)
	assert.Equal(t, "uid-a", out[0].UID)
	assert.Equal(t, 1, out[0].Quantity)
	assert.True(t, out[0].UnitPrice.IsZero())
	assert.Equal(t, "b", out[1].ID)
	assert.NotEmpty(t, out[1].UID)
	assert.Equal(t, 3, out[1].Quantity)
}
