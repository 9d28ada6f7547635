package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/straye-as/salesops-api/internal/auth"
	"github.com/straye-as/salesops-api/internal/config"
	"github.com/straye-as/salesops-api/internal/http/handler"
	"github.com/straye-as/salesops-api/internal/http/middleware"
	"github.com/straye-as/salesops-api/internal/metrics"
	"github.com/straye-as/salesops-api/internal/repository"
	"github.com/straye-as/salesops-api/internal/service"
	"github.com/straye-as/salesops-api/internal/session"
	"github.com/straye-as/salesops-api/internal/storage"
	"github.com/straye-as/salesops-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testAPIKey = "test-api-key"

func testConfig() *config.Config {
	return &config.Config{
		App:  config.AppConfig{Name: "salesops-api", Environment: "development", Port: 8080},
		Auth: config.AuthConfig{APIKey: testAPIKey, JWTSecret: "secret"},
		Server: config.ServerConfig{
			EnableMetrics: true,
		},
		Security: config.SecurityConfig{ContentTypeNosniff: true, FrameOptions: "DENY"},
		RateLimit: config.RateLimitConfig{
			Enabled:               true,
			RequestsPerMinute:     1000,
			RequestsPerMinuteAuth: 1000,
			WhitelistPaths:        []string{"/health"},
		},
		Document: config.DocumentConfig{
			PageSize:      "letter",
			MarginTop:     10,
			MarginBottom:  10,
			MarginLeft:    12,
			MarginRight:   12,
			FooterHeight:  8,
			Renderer:      "native",
			RenderTimeout: 10,
		},
	}
}

type testServer struct {
	handler http.Handler
	mr      *miniredis.Miniredis
}

func setupRouter(t *testing.T) *testServer {
	t.Helper()
	cfg := testConfig()
	log := zap.NewNop()

	db := testutil.SetupTestDB(t)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	blobs, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	activityRepo := repository.NewActivityRepository(db)
	quotationService, err := service.NewQuotationService(&cfg.Document, m, log)
	require.NoError(t, err)
	exportService := service.NewExportService(quotationService, blobs,
		session.NewLinkStore(client, "test:"), session.NewExportSessionStore(client, "test:"),
		time.Minute, "http://localhost:8080", m, log)

	rt := NewRouter(cfg, log, db, client,
		auth.NewMiddleware(cfg, log),
		middleware.NewRateLimiter(&cfg.RateLimit, log),
		m, registry,
		Handlers{
			Activity:        handler.NewActivityHandler(service.NewActivityService(activityRepo, log), log),
			Product:         handler.NewProductHandler(service.NewProductService(m, log), log),
			QuotationNumber: handler.NewQuotationNumberHandler(service.NewNumberSequenceService(activityRepo, m, log), log),
			Quotation:       handler.NewQuotationHandler(quotationService, log),
			Export:          handler.NewExportHandler(exportService, log),
		},
	)
	return &testServer{handler: rt.Setup(), mr: mr}
}

func (s *testServer) do(method, target, body string, apiKey bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if apiKey {
		req.Header.Set("x-api-key", testAPIKey)
		req.Header.Set("X-Territory-Code", "MNL-NORTH")
	}
	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)
	return rr
}

func TestRouter_Health(t *testing.T) {
	s := setupRouter(t)

	rr := s.do(http.MethodGet, "/health", "", false)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "OK", rr.Body.String())
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rr.Header().Get(middleware.RequestIDHeader))
}

func TestRouter_Readiness(t *testing.T) {
	s := setupRouter(t)

	rr := s.do(http.MethodGet, "/health/ready", "", false)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	s.mr.Close()
	rr = s.do(http.MethodGet, "/health/ready", "", false)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)

	var body struct {
		Status string                            `json:"status"`
		Checks map[string]map[string]interface{} `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "unhealthy", body.Status)
	assert.Equal(t, "healthy", body.Checks["database"]["status"])
	assert.Equal(t, "unhealthy", body.Checks["redis"]["status"])
}

func TestRouter_ProtectedRoutesRequireAuth(t *testing.T) {
	s := setupRouter(t)

	for _, target := range []string{"/api/v1/activities", "/api/v1/products?query=led", "/api/v1/export-sessions/current"} {
		rr := s.do(http.MethodGet, target, "", false)
		assert.Equal(t, http.StatusUnauthorized, rr.Code, target)
	}
}

func TestRouter_DownloadIsPublic(t *testing.T) {
	s := setupRouter(t)

	// unknown tokens are a 404 rather than a 401
	rr := s.do(http.MethodGet, "/api/v1/downloads/does-not-exist", "", false)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRouter_CalculateWithAPIKey(t *testing.T) {
	s := setupRouter(t)

	body := `{"products":[{"title":"LED Panel","quantity":2,"price":"100","discounted":true},{"title":"Floodlight","quantity":1,"price":50}],"discountPercent":10}`
	rr := s.do(http.MethodPost, "/api/v1/quotations/calculate", body, true)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Body.String(), `"total":"230.00"`)
}

func TestRouter_PreviewGetsDocumentCSP(t *testing.T) {
	s := setupRouter(t)

	body := `{"quotationNumber":"EC-MN-2025-0004","brand":"ecoshift","client":{"companyName":"Acme"},"products":[{"title":"LED Panel","quantity":1,"price":100}]}`
	rr := s.do(http.MethodPost, "/api/v1/quotations/preview", body, true)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, middleware.DocumentContentSecurityPolicy, rr.Header().Get("Content-Security-Policy"))
}

func TestRouter_ProductSearchWithoutSources(t *testing.T) {
	s := setupRouter(t)

	rr := s.do(http.MethodGet, "/api/v1/products?query=led", "", true)
	assert.Equal(t, http.StatusBadGateway, rr.Code)
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	s := setupRouter(t)

	s.do(http.MethodGet, "/health", "", false)
	rr := s.do(http.MethodGet, "/metrics", "", false)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `salesops_http_requests_total{method="GET",route="/health",status="200"}`)
}
