package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/straye-as/salesops-api/internal/catalog"
	"github.com/straye-as/salesops-api/internal/domain"
	"github.com/straye-as/salesops-api/internal/metrics"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const minSearchTermLength = 2

// ProductService searches every configured product source concurrently
type ProductService struct {
	sources []catalog.ProductSource
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewProductService creates a new ProductService. Nil sources are skipped.
func NewProductService(m *metrics.Metrics, logger *zap.Logger, sources ...catalog.ProductSource) *ProductService {
	enabled := make([]catalog.ProductSource, 0, len(sources))
	for _, src := range sources {
		if src != nil {
			enabled = append(enabled, src)
		}
	}
	return &ProductService{sources: enabled, metrics: m, logger: logger}
}

// Sources returns the names of the enabled sources
func (s *ProductService) Sources() []string {
	names := make([]string, len(s.sources))
	for i, src := range s.sources {
		names[i] = src.Name()
	}
	return names
}

// Search returns the merged results of every source, in source order.
// A failing source is logged and skipped; only when every source fails is an
// error returned. Results are discarded when ctx is done.
func (s *ProductService) Search(ctx context.Context, term string) ([]domain.Product, error) {
	term = strings.TrimSpace(term)
	if len([]rune(term)) < minSearchTermLength {
		return []domain.Product{}, nil
	}
	if len(s.sources) == 0 {
		return nil, fmt.Errorf("%w: no product source configured", ErrUpstream)
	}

	results := make([][]domain.Product, len(s.sources))
	failures := make([]error, len(s.sources))

	g, gctx := errgroup.WithContext(ctx)
	for i, src := range s.sources {
		g.Go(func() error {
			products, err := src.Search(gctx, term)
			if err != nil {
				failures[i] = err
				return nil
			}
			results[i] = products
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	merged := []domain.Product{}
	failed := 0
	for i, src := range s.sources {
		if failures[i] != nil {
			failed++
			s.metrics.ProductSourceFailed(src.Name())
			s.logger.Warn("product source failed, continuing with remaining sources",
				zap.String("source", src.Name()),
				zap.String("term", term),
				zap.Error(failures[i]))
			continue
		}
		merged = append(merged, results[i]...)
	}

	if failed == len(s.sources) {
		return nil, fmt.Errorf("%w: all product sources failed: %v", ErrUpstream, failures[0])
	}
	return merged, nil
}
