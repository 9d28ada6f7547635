package mapper

import (
	"errors"
	"fmt"
	"strings"

	"github.com/straye-as/salesops-api/internal/domain"
)

const (
	legacyFieldSeparator       = ","
	legacyDescriptionSeparator = "||"
)

// ErrLegacyLengthMismatch is returned when the parallel legacy fields disagree on item count
var ErrLegacyLengthMismatch = errors.New("legacy product fields have mismatched lengths")

// DecodeLegacyProducts turns the parallel delimited encoding into line item inputs.
// Titles decide the item count; every other non-empty field must carry the same
// number of entries. Empty fields leave the matching attribute blank.
func DecodeLegacyProducts(fields *domain.LegacyProductFields) ([]domain.LineItemInput, error) {
	if fields == nil || strings.TrimSpace(fields.ProductTitle) == "" {
		return nil, nil
	}

	titles := splitLegacy(fields.ProductTitle, legacyFieldSeparator)
	n := len(titles)

	columns := []struct {
		name   string
		values []string
	}{
		{"productQuantity", splitLegacy(fields.ProductQuantity, legacyFieldSeparator)},
		{"productAmount", splitLegacy(fields.ProductAmount, legacyFieldSeparator)},
		{"productPhoto", splitLegacy(fields.ProductPhoto, legacyFieldSeparator)},
		{"productSku", splitLegacy(fields.ProductSKU, legacyFieldSeparator)},
		{"productDescription", splitLegacy(fields.ProductDescription, legacyDescriptionSeparator)},
	}
	for _, col := range columns {
		if col.values != nil && len(col.values) != n {
			return nil, fmt.Errorf("%w: %s has %d entries, productTitle has %d", ErrLegacyLengthMismatch, col.name, len(col.values), n)
		}
	}

	at := func(values []string, i int) string {
		if values == nil {
			return ""
		}
		return values[i]
	}

	items := make([]domain.LineItemInput, n)
	for i := range titles {
		items[i] = domain.LineItemInput{
			Title:       titles[i],
			Quantity:    domain.FlexNumber(at(columns[0].values, i)),
			UnitPrice:   domain.FlexNumber(at(columns[1].values, i)),
			Photo:       at(columns[2].values, i),
			SKU:         at(columns[3].values, i),
			Description: at(columns[4].values, i),
		}
	}
	return items, nil
}

// EncodeLegacyProducts is the inverse of DecodeLegacyProducts for exports to older clients
func EncodeLegacyProducts(items []domain.LineItem) domain.LegacyProductFields {
	var quantities, amounts, titles, descriptions, photos, skus []string
	for _, item := range items {
		quantities = append(quantities, fmt.Sprintf("%d", item.Quantity))
		amounts = append(amounts, item.UnitPrice.StringFixed(2))
		titles = append(titles, item.Title)
		descriptions = append(descriptions, item.Description)
		photos = append(photos, item.Photo)
		skus = append(skus, item.SKU)
	}
	return domain.LegacyProductFields{
		ProductQuantity:    strings.Join(quantities, legacyFieldSeparator),
		ProductAmount:      strings.Join(amounts, legacyFieldSeparator),
		ProductTitle:       strings.Join(titles, legacyFieldSeparator),
		ProductDescription: strings.Join(descriptions, legacyDescriptionSeparator),
		ProductPhoto:       strings.Join(photos, legacyFieldSeparator),
		ProductSKU:         strings.Join(skus, legacyFieldSeparator),
	}
}

func splitLegacy(value, sep string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, sep)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
