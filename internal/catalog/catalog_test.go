package catalog_test

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/straye-as/salesops-api/internal/catalog"
	"github.com/straye-as/salesops-api/internal/productdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogSource_Search(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/products", r.URL.Path)
		gotQuery = r.URL.Query().Get("query")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id": 17, "title": " LED Panel ", "description": "<p>40W</p>", "images": ["a.png", "b.png"], "skus": ["LP-100"], "price": 1250.5},
			{"id": "x-2", "title": "Floodlight"}
		]`))
	}))
	defer server.Close()

	src := catalog.NewCatalogSourceWithClient(server.URL+"/api/", server.Client())
	products, err := src.Search(context.Background(), "led & panel")
	require.NoError(t, err)

	assert.Equal(t, "led & panel", gotQuery)
	require.Len(t, products, 2)
	assert.Equal(t, "17", products[0].ID)
	assert.Equal(t, "LED Panel", products[0].Title)
	assert.Equal(t, []string{"a.png", "b.png"}, products[0].Images)
	assert.Equal(t, "1250.5", products[0].Price)
	assert.Equal(t, catalog.SourceCatalog, products[0].Source)

	assert.Equal(t, "x-2", products[1].ID)
	assert.NotNil(t, products[1].Images)
	assert.NotNil(t, products[1].SKUs)
}

func TestCatalogSource_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	src := catalog.NewCatalogSourceWithClient(server.URL, server.Client())
	_, err := src.Search(context.Background(), "led")
	assert.Error(t, err)
}

func TestCatalogSource_CancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := catalog.NewCatalogSourceWithClient(server.URL, server.Client())
	_, err := src.Search(ctx, "led")
	assert.ErrorIs(t, err, context.Canceled)
}

type fakeSearcher struct {
	rows      []productdb.ProductRow
	err       error
	lastLimit int
}

func (f *fakeSearcher) SearchProducts(ctx context.Context, term string, limit int) ([]productdb.ProductRow, error) {
	f.lastLimit = limit
	return f.rows, f.err
}

func TestProductDBSource_Search(t *testing.T) {
	searcher := &fakeSearcher{rows: []productdb.ProductRow{
		{
			ID:             "101",
			Name:           "Solar Street Light",
			SalePrice:      sql.NullFloat64{Float64: 0, Valid: true},
			RegularPrice:   sql.NullFloat64{Float64: 4999, Valid: true},
			MainImage:      sql.NullString{String: "https://cdn.example.com/ssl.png", Valid: true},
			ItemCode:       sql.NullString{String: "SSL-60", Valid: true},
			TechnicalSpecs: sql.NullString{String: `["60W", "IP66 <outdoor>"]`, Valid: true},
		},
		{
			ID:           "102",
			Name:         "Bulb",
			SalePrice:    sql.NullFloat64{Float64: 89.9, Valid: true},
			RegularPrice: sql.NullFloat64{Float64: 120, Valid: true},
		},
	}}

	src := catalog.NewProductDBSource(searcher, 0)
	products, err := src.Search(context.Background(), "light")
	require.NoError(t, err)
	assert.Equal(t, 25, searcher.lastLimit)

	require.Len(t, products, 2)
	assert.Equal(t, "4999.00", products[0].Price)
	assert.Equal(t, []string{"https://cdn.example.com/ssl.png"}, products[0].Images)
	assert.Equal(t, []string{"SSL-60"}, products[0].SKUs)
	assert.Equal(t, "<ul><li>60W</li><li>IP66 &lt;outdoor&gt;</li></ul>", products[0].Description)
	assert.Equal(t, catalog.SourceProductDB, products[0].Source)

	assert.Equal(t, "89.90", products[1].Price)
	assert.Empty(t, products[1].Description)
	assert.Empty(t, products[1].Images)
}

func TestProductDBSource_Error(t *testing.T) {
	src := catalog.NewProductDBSource(&fakeSearcher{err: errors.New("login failed")}, 10)
	_, err := src.Search(context.Background(), "light")
	assert.Error(t, err)
}

func TestSpecsToHTML(t *testing.T) {
	assert.Equal(t, "", catalog.SpecsToHTML(""))
	assert.Equal(t, "", catalog.SpecsToHTML(`[" ", ""]`))
	assert.Equal(t, "<ul><li>plain text</li></ul>", catalog.SpecsToHTML("plain text"))
}
