// Package catalog normalizes product search results from the HTTP catalog and
// the product database into domain.Product.
package catalog

import (
	"context"

	"github.com/straye-as/salesops-api/internal/domain"
)

// Source names reported on every normalized product
const (
	SourceCatalog   = "catalog"
	SourceProductDB = "productdb"
)

// ProductSource searches one backend for products matching term
type ProductSource interface {
	Name() string
	Search(ctx context.Context, term string) ([]domain.Product, error)
}
