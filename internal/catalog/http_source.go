package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/straye-as/salesops-api/internal/config"
	"github.com/straye-as/salesops-api/internal/domain"
)

const maxCatalogResponseBytes = 4 << 20

type catalogProduct struct {
	ID          json.RawMessage   `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Images      []string          `json:"images"`
	SKUs        []string          `json:"skus"`
	Price       domain.FlexNumber `json:"price"`
}

// CatalogSource queries the HTTP product catalog: GET {baseURL}/products?query=term
type CatalogSource struct {
	baseURL    string
	httpClient *http.Client
}

// NewCatalogSource creates a catalog source from configuration
func NewCatalogSource(cfg *config.CatalogConfig) *CatalogSource {
	return NewCatalogSourceWithClient(cfg.BaseURL, &http.Client{Timeout: cfg.TimeoutDuration()})
}

// NewCatalogSourceWithClient creates a catalog source with a custom HTTP client
func NewCatalogSourceWithClient(baseURL string, client *http.Client) *CatalogSource {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &CatalogSource{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
	}
}

// Name implements ProductSource
func (c *CatalogSource) Name() string { return SourceCatalog }

// Search implements ProductSource
func (c *CatalogSource) Search(ctx context.Context, term string) ([]domain.Product, error) {
	endpoint := c.baseURL + "/products?" + url.Values{"query": {term}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("building catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog returned status %d", resp.StatusCode)
	}

	var raw []catalogProduct
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxCatalogResponseBytes)).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding catalog response: %w", err)
	}

	products := make([]domain.Product, 0, len(raw))
	for _, p := range raw {
		products = append(products, normalizeCatalogProduct(p))
	}
	return products, nil
}

func normalizeCatalogProduct(p catalogProduct) domain.Product {
	images := p.Images
	if images == nil {
		images = []string{}
	}
	skus := p.SKUs
	if skus == nil {
		skus = []string{}
	}
	return domain.Product{
		ID:          rawID(p.ID),
		Title:       strings.TrimSpace(p.Title),
		Description: p.Description,
		Images:      images,
		SKUs:        skus,
		Price:       string(p.Price),
		Source:      SourceCatalog,
	}
}

// rawID accepts numeric and string ids
func rawID(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	id := strings.TrimSpace(string(raw))
	if id == "null" {
		return ""
	}
	return id
}
