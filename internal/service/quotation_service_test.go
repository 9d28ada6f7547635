package service_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/straye-as/salesops-api/internal/config"
	"github.com/straye-as/salesops-api/internal/domain"
	"github.com/straye-as/salesops-api/internal/metrics"
	"github.com/straye-as/salesops-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func documentConfig() *config.DocumentConfig {
	return &config.DocumentConfig{
		PageSize:      "letter",
		MarginTop:     10,
		MarginBottom:  10,
		MarginLeft:    12,
		MarginRight:   12,
		FooterHeight:  8,
		Renderer:      service.RendererNative,
		RenderTimeout: 10,
	}
}

func newQuotationService(t *testing.T, cfg *config.DocumentConfig) *service.QuotationService {
	t.Helper()
	svc, err := service.NewQuotationService(cfg, metrics.New(prometheus.NewRegistry()), zap.NewNop())
	require.NoError(t, err)
	return svc.WithClock(func() time.Time { return time.Date(2025, 3, 4, 9, 0, 0, 0, time.UTC) })
}

func documentRequest() *domain.QuotationDocumentRequest {
	return &domain.QuotationDocumentRequest{
		QuotationNumber: "EC-MN-2025-0004",
		Brand:           domain.BrandEcoshift,
		Client:          domain.ClientBlock{CompanyName: "Acme Trading", ContactPerson: "Maria Santos"},
		Products: []domain.SelectedProductInput{
			{ID: "1", Title: "LED Panel", Quantity: "2", Price: "100", Discounted: true},
			{ID: "2", Title: "Floodlight", Quantity: "1", Price: "50"},
		},
		DiscountPercent: "10",
		PreparedBy:      "Juan Dela Cruz",
	}
}

func TestQuotationService_Calculate(t *testing.T) {
	svc := newQuotationService(t, documentConfig())

	req := &domain.CalculateQuotationRequest{
		Products:        documentRequest().Products,
		DiscountPercent: "10",
	}
	first := svc.Calculate(req)
	assert.Equal(t, "230.00", first.Total)
	assert.Equal(t, "VAT Inc", first.VATLabel)
	require.Len(t, first.Lines, 2)
	assert.Equal(t, "20.00", first.Lines[0].Discount)

	assert.Equal(t, first, svc.Calculate(req), "calculation is idempotent")
}

func TestQuotationService_CalculateExemptForcesTwelve(t *testing.T) {
	svc := newQuotationService(t, documentConfig())

	totals := svc.Calculate(&domain.CalculateQuotationRequest{
		Products: documentRequest().Products,
		VATType:  domain.VATExempt,
	})
	assert.Equal(t, "12.00", totals.DiscountPercent)
	assert.Equal(t, "226.00", totals.Total)
	assert.Equal(t, "VAT Exempt", totals.VATLabel)
}

func TestQuotationService_CalculateEmpty(t *testing.T) {
	svc := newQuotationService(t, documentConfig())
	totals := svc.Calculate(&domain.CalculateQuotationRequest{})
	assert.Equal(t, "0.00", totals.Total)
	assert.Empty(t, totals.Lines)
}

func TestQuotationService_Preview(t *testing.T) {
	svc := newQuotationService(t, documentConfig())

	doc, err := svc.Preview(context.Background(), documentRequest())
	require.NoError(t, err)
	assert.Equal(t, "text/html; charset=utf-8", doc.ContentType)
	body := string(doc.Bytes)
	assert.Contains(t, body, "EC-MN-2025-0004")
	assert.Contains(t, body, "Acme Trading")
}

func TestQuotationService_NativePDF(t *testing.T) {
	svc := newQuotationService(t, documentConfig())

	doc, err := svc.PDF(context.Background(), documentRequest())
	require.NoError(t, err)
	assert.Equal(t, "QUOTATION_EC-MN-2025-0004.pdf", doc.Filename)
	assert.Equal(t, "application/pdf", doc.ContentType)
	assert.True(t, strings.HasPrefix(string(doc.Bytes), "%PDF"))
	assert.Equal(t, 1, doc.Pages)
}

func TestQuotationService_InvalidRequest(t *testing.T) {
	svc := newQuotationService(t, documentConfig())

	req := documentRequest()
	req.QuotationNumber = " "
	_, err := svc.PDF(context.Background(), req)
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	req = documentRequest()
	req.Brand = "acme"
	_, err = svc.Preview(context.Background(), req)
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestQuotationService_CancelledRender(t *testing.T) {
	svc := newQuotationService(t, documentConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	doc, err := svc.PDF(ctx, documentRequest())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, doc)
}

func TestQuotationService_Spreadsheet(t *testing.T) {
	svc := newQuotationService(t, documentConfig())

	req := documentRequest()
	req.Brand = ""
	doc, err := svc.Spreadsheet(context.Background(), domain.BrandBuildchem, req)
	require.NoError(t, err)
	assert.Equal(t, "Quotation_EC-MN-2025-0004.xlsx", doc.Filename)
	assert.Equal(t, domain.BrandBuildchem, req.Brand)
	assert.True(t, strings.HasPrefix(string(doc.Bytes), "PK"), "xlsx is a zip archive")

	_, err = svc.Spreadsheet(context.Background(), "acme", documentRequest())
	assert.ErrorIs(t, err, service.ErrInvalidBrand)
}

func TestQuotationService_RenderFormats(t *testing.T) {
	svc := newQuotationService(t, documentConfig())

	_, err := svc.Render(context.Background(), "docx", documentRequest())
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	doc, err := svc.Render(context.Background(), service.FormatXLSX, documentRequest())
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(doc.Filename, ".xlsx"))
}

func TestNewQuotationService_RendererConfig(t *testing.T) {
	cfg := documentConfig()
	cfg.Renderer = "wkhtmltopdf"
	_, err := service.NewQuotationService(cfg, nil, zap.NewNop())
	assert.Error(t, err)

	cfg = documentConfig()
	cfg.Renderer = service.RendererGotenberg
	_, err = service.NewQuotationService(cfg, nil, zap.NewNop())
	assert.Error(t, err, "gotenberg needs a URL")

	cfg = documentConfig()
	cfg.PageSize = "a4"
	_, err = service.NewQuotationService(cfg, nil, zap.NewNop())
	assert.Error(t, err)
}

func TestQuotationService_GotenbergUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	cfg := documentConfig()
	cfg.Renderer = service.RendererGotenberg
	cfg.GotenbergURL = srv.URL
	svc := newQuotationService(t, cfg)
	assert.Equal(t, service.RendererGotenberg, svc.Renderer())

	_, err := svc.PDF(context.Background(), documentRequest())
	assert.ErrorIs(t, err, service.ErrUpstream)
}

func TestQuotationService_Gotenberg(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.7 converted"))
	}))
	defer srv.Close()

	cfg := documentConfig()
	cfg.Renderer = service.RendererGotenberg
	cfg.GotenbergURL = srv.URL
	svc := newQuotationService(t, cfg)

	doc, err := svc.PDF(context.Background(), documentRequest())
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7 converted", string(doc.Bytes))
}
