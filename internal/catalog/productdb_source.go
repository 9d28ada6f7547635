package catalog

import (
	"context"
	"encoding/json"
	"html"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/straye-as/salesops-api/internal/domain"
	"github.com/straye-as/salesops-api/internal/productdb"
)

const defaultSearchLimit = 25

// rowSearcher is satisfied by *productdb.Client
type rowSearcher interface {
	SearchProducts(ctx context.Context, term string, limit int) ([]productdb.ProductRow, error)
}

// ProductDBSource searches the MS SQL product database
type ProductDBSource struct {
	db    rowSearcher
	limit int
}

// NewProductDBSource wraps a product database client
func NewProductDBSource(db rowSearcher, limit int) *ProductDBSource {
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	return &ProductDBSource{db: db, limit: limit}
}

// Name implements ProductSource
func (s *ProductDBSource) Name() string { return SourceProductDB }

// Search implements ProductSource
func (s *ProductDBSource) Search(ctx context.Context, term string) ([]domain.Product, error) {
	rows, err := s.db.SearchProducts(ctx, term, s.limit)
	if err != nil {
		return nil, err
	}
	products := make([]domain.Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, NormalizeRow(row))
	}
	return products, nil
}

// NormalizeRow maps a product database row onto domain.Product.
// The sale price wins when positive, otherwise the regular price is used.
func NormalizeRow(row productdb.ProductRow) domain.Product {
	p := domain.Product{
		ID:          row.ID,
		Title:       strings.TrimSpace(row.Name),
		Description: SpecsToHTML(row.TechnicalSpecs.String),
		Images:      []string{},
		SKUs:        []string{},
		Source:      SourceProductDB,
	}

	switch {
	case row.SalePrice.Valid && row.SalePrice.Float64 > 0:
		p.Price = decimal.NewFromFloat(row.SalePrice.Float64).StringFixed(2)
	case row.RegularPrice.Valid:
		p.Price = decimal.NewFromFloat(row.RegularPrice.Float64).StringFixed(2)
	}

	if img := strings.TrimSpace(row.MainImage.String); row.MainImage.Valid && img != "" {
		p.Images = append(p.Images, img)
	}
	if code := strings.TrimSpace(row.ItemCode.String); row.ItemCode.Valid && code != "" {
		p.SKUs = append(p.SKUs, code)
	}
	return p
}

// SpecsToHTML renders a JSON array of specification strings as an HTML list.
// Plain text input becomes a single list entry.
func SpecsToHTML(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	var specs []string
	if err := json.Unmarshal([]byte(raw), &specs); err != nil {
		specs = []string{raw}
	}

	var b strings.Builder
	b.WriteString("<ul>")
	n := 0
	for _, spec := range specs {
		spec = strings.TrimSpace(spec)
		if spec == "" {
			continue
		}
		b.WriteString("<li>")
		b.WriteString(html.EscapeString(spec))
		b.WriteString("</li>")
		n++
	}
	if n == 0 {
		return ""
	}
	b.WriteString("</ul>")
	return b.String()
}
