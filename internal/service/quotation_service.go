package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/straye-as/salesops-api/internal/config"
	"github.com/straye-as/salesops-api/internal/document"
	"github.com/straye-as/salesops-api/internal/domain"
	"github.com/straye-as/salesops-api/internal/metrics"
	"github.com/straye-as/salesops-api/internal/pricing"
	"go.uber.org/zap"
)

// Export formats
const (
	FormatPDF  = "pdf"
	FormatXLSX = "xlsx"
	FormatHTML = "html"
)

// Document renderers selectable in configuration
const (
	RendererNative    = "native"
	RendererGotenberg = "gotenberg"
)

// QuotationService prices selections and renders quotation documents
type QuotationService struct {
	geometry  document.Geometry
	renderer  string
	gotenberg *document.GotenbergClient
	timeout   time.Duration
	metrics   *metrics.Metrics
	logger    *zap.Logger
	now       func() time.Time
}

// NewQuotationService creates a new QuotationService from the document settings
func NewQuotationService(cfg *config.DocumentConfig, m *metrics.Metrics, logger *zap.Logger) (*QuotationService, error) {
	g, err := document.GeometryFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	s := &QuotationService{
		geometry: g,
		renderer: cfg.Renderer,
		timeout:  cfg.RenderTimeoutDuration(),
		metrics:  m,
		logger:   logger,
		now:      time.Now,
	}
	switch cfg.Renderer {
	case "", RendererNative:
		s.renderer = RendererNative
	case RendererGotenberg:
		if cfg.GotenbergURL == "" {
			return nil, fmt.Errorf("document.gotenbergUrl is required for the gotenberg renderer")
		}
		s.gotenberg = document.NewGotenbergClient(cfg.GotenbergURL, s.timeout)
	default:
		return nil, fmt.Errorf("unsupported document renderer: %s", cfg.Renderer)
	}
	return s, nil
}

// WithClock replaces the clock used for undated quotations
func (s *QuotationService) WithClock(now func() time.Time) *QuotationService {
	s.now = now
	return s
}

// Renderer returns the configured PDF renderer name
func (s *QuotationService) Renderer() string {
	return s.renderer
}

// Calculate prices a selection. The VAT type is applied before the explicit
// discount, so an exempt request sits at 12% unless it also sends a discount.
func (s *QuotationService) Calculate(req *domain.CalculateQuotationRequest) domain.QuotationTotalsDTO {
	pc := pricing.ResolveContext(req.VATType, req.DiscountPercent)
	totals := pc.Totals(pricing.FromInputs(req.Products))
	return pricing.ToDTO(pc, totals)
}

// Preview renders the single-page HTML preview
func (s *QuotationService) Preview(ctx context.Context, req *domain.QuotationDocumentRequest) (*document.Document, error) {
	return s.assemble(ctx, req, FormatHTML, document.NewPreviewRenderer())
}

// PDF renders the paginated PDF with the configured renderer
func (s *QuotationService) PDF(ctx context.Context, req *domain.QuotationDocumentRequest) (*document.Document, error) {
	var r document.Renderer
	if s.renderer == RendererGotenberg {
		r = document.NewGotenbergRenderer(s.gotenberg)
	} else {
		r = document.NewPDFRenderer()
	}

	doc, err := s.assemble(ctx, req, FormatPDF, r)
	if err != nil && s.renderer == RendererGotenberg && !isCallerError(err) {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return doc, err
}

// Spreadsheet builds the XLSX export. The brand in the path wins over the body.
func (s *QuotationService) Spreadsheet(ctx context.Context, brand domain.Brand, req *domain.QuotationDocumentRequest) (*document.Document, error) {
	if brand != "" {
		if !domain.IsValidBrand(string(brand)) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidBrand, brand)
		}
		req.Brand = brand
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	q, err := document.NewQuotation(req, s.now())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	doc, err := document.BuildSpreadsheet(q)
	s.metrics.DocumentRendered(FormatXLSX, 1, err)
	if err != nil {
		s.logger.Error("failed to build spreadsheet",
			zap.String("quotationNumber", q.Reference),
			zap.Error(err))
		return nil, err
	}
	return doc, nil
}

// Render produces an export in format, pdf or xlsx
func (s *QuotationService) Render(ctx context.Context, format string, req *domain.QuotationDocumentRequest) (*document.Document, error) {
	switch format {
	case FormatPDF:
		return s.PDF(ctx, req)
	case FormatXLSX:
		return s.Spreadsheet(ctx, "", req)
	default:
		return nil, fmt.Errorf("%w: unsupported export format %q", ErrInvalidInput, format)
	}
}

func (s *QuotationService) assemble(ctx context.Context, req *domain.QuotationDocumentRequest, format string, r document.Renderer) (*document.Document, error) {
	q, err := document.NewQuotation(req, s.now())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := s.now()
	asm := document.NewAssembler(s.geometry, nil, func(t document.Transition) {
		if t.PageBreak {
			s.logger.Debug("page break",
				zap.String("quotationNumber", q.Reference),
				zap.Int("page", t.Page),
				zap.Int("row", t.Row))
		}
	})

	doc, err := asm.Assemble(ctx, q, r)
	if err != nil {
		s.metrics.DocumentRendered(format, 0, err)
		if isCallerError(err) {
			return nil, err
		}
		s.logger.Error("failed to render quotation",
			zap.String("quotationNumber", q.Reference),
			zap.String("format", format),
			zap.Error(err))
		return nil, err
	}

	s.metrics.DocumentRendered(format, doc.Pages, nil)
	s.logger.Info("quotation rendered",
		zap.String("quotationNumber", q.Reference),
		zap.String("format", format),
		zap.Int("pages", doc.Pages),
		zap.Int("bytes", len(doc.Bytes)),
		zap.Duration("duration", s.now().Sub(start)))
	return doc, nil
}

func isCallerError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, ErrInvalidInput)
}
