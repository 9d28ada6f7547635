package document

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

const maxGotenbergResponseBytes = 32 << 20

// GotenbergClient wraps interactions with the Gotenberg API
type GotenbergClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewGotenbergClient constructs a new client
func NewGotenbergClient(baseURL string, timeout time.Duration) *GotenbergClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &GotenbergClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Ping checks if the remote Gotenberg service is available
func (c *GotenbergClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("gotenberg returned status %d", resp.StatusCode)
	}
	return nil
}

// ConvertHTML converts an HTML document into PDF using the chromium route.
// Page size comes from the document's CSS @page rule.
func (c *GotenbergClient) ConvertHTML(ctx context.Context, html []byte) ([]byte, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("files", "index.html")
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(html); err != nil {
		return nil, err
	}
	for field, value := range map[string]string{
		"preferCssPageSize": "true",
		"printBackground":   "true",
		"marginTop":         "0",
		"marginBottom":      "0",
		"marginLeft":        "0",
		"marginRight":       "0",
	} {
		if err := writer.WriteField(field, value); err != nil {
			return nil, err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/forms/chromium/convert/html", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("render failed with status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxGotenbergResponseBytes))
}

// GotenbergRenderer renders paged HTML and converts it to PDF with Gotenberg
type GotenbergRenderer struct {
	client   *GotenbergClient
	geometry Geometry
}

// NewGotenbergRenderer creates a renderer backed by client
func NewGotenbergRenderer(client *GotenbergClient) *GotenbergRenderer {
	return &GotenbergRenderer{client: client}
}

// ContentType implements Renderer
func (r *GotenbergRenderer) ContentType() string { return "application/pdf" }

// Extension implements Renderer
func (r *GotenbergRenderer) Extension() string { return "pdf" }

// Begin implements Renderer. An unreachable Gotenberg fails here, before layout.
func (r *GotenbergRenderer) Begin(ctx context.Context, q *Quotation, g Geometry) error {
	if r.client == nil {
		return fmt.Errorf("gotenberg client not configured")
	}
	if err := r.client.Ping(ctx); err != nil {
		return fmt.Errorf("gotenberg unavailable: %w", err)
	}
	r.geometry = g
	return nil
}

// Finish implements Renderer
func (r *GotenbergRenderer) Finish(ctx context.Context, q *Quotation, pages []Page) ([]byte, error) {
	html, err := RenderPagedHTML(q, r.geometry, pages)
	if err != nil {
		return nil, err
	}
	return r.client.ConvertHTML(ctx, html)
}
