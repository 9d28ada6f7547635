package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/straye-as/salesops-api/internal/document"
	"github.com/straye-as/salesops-api/internal/domain"
	"github.com/straye-as/salesops-api/internal/metrics"
	"github.com/straye-as/salesops-api/internal/session"
	"github.com/straye-as/salesops-api/internal/storage"
	"go.uber.org/zap"
)

// DocumentRenderer renders an export in a given format
type DocumentRenderer interface {
	Render(ctx context.Context, format string, req *domain.QuotationDocumentRequest) (*document.Document, error)
}

// ExportService stores rendered quotations behind single-use download links
// and tracks whether a session's export finished.
type ExportService struct {
	renderer DocumentRenderer
	blobs    storage.BlobStore
	links    *session.LinkStore
	sessions *session.ExportSessionStore
	linkTTL  time.Duration
	baseURL  string
	metrics  *metrics.Metrics
	logger   *zap.Logger
	now      func() time.Time
}

// NewExportService creates a new ExportService. baseURL prefixes download URLs.
func NewExportService(
	renderer DocumentRenderer,
	blobs storage.BlobStore,
	links *session.LinkStore,
	sessions *session.ExportSessionStore,
	linkTTL time.Duration,
	baseURL string,
	m *metrics.Metrics,
	logger *zap.Logger,
) *ExportService {
	return &ExportService{
		renderer: renderer,
		blobs:    blobs,
		links:    links,
		sessions: sessions,
		linkTTL:  linkTTL,
		baseURL:  strings.TrimRight(baseURL, "/"),
		metrics:  m,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock replaces the clock used for link expiry
func (s *ExportService) WithClock(now func() time.Time) *ExportService {
	s.now = now
	return s
}

// Export renders req, stores it and returns a temporary download link.
// The session flag is set for the duration of the export and always cleared.
func (s *ExportService) Export(ctx context.Context, req *domain.ExportQuotationRequest) (*domain.DownloadLinkDTO, error) {
	if req.Format != FormatPDF && req.Format != FormatXLSX {
		return nil, fmt.Errorf("%w: unsupported export format %q", ErrInvalidInput, req.Format)
	}
	if strings.TrimSpace(req.SessionID) == "" {
		return nil, fmt.Errorf("%w: session id is required", ErrInvalidInput)
	}

	err := s.sessions.MarkStarted(ctx, req.SessionID, session.ExportSession{
		ReferenceNumber: req.Quotation.QuotationNumber,
		Format:          req.Format,
		StartedAt:       s.now().UTC(),
	})
	if err != nil {
		s.metrics.ExportFailed(req.Format, "session")
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer func() {
		if err := s.sessions.Clear(context.WithoutCancel(ctx), req.SessionID); err != nil {
			s.logger.Warn("failed to clear export session",
				zap.String("sessionId", req.SessionID),
				zap.Error(err))
		}
	}()

	doc, err := s.renderer.Render(ctx, req.Format, &req.Quotation)
	if err != nil {
		s.metrics.ExportFailed(req.Format, "render")
		return nil, err
	}

	key, size, err := s.blobs.Put(ctx, doc.Filename, doc.ContentType, bytes.NewReader(doc.Bytes))
	if err != nil {
		s.metrics.ExportFailed(req.Format, "store")
		s.logger.Error("failed to store export", zap.String("filename", doc.Filename), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	link := session.Link{
		Token:       uuid.NewString(),
		BlobKey:     key,
		Filename:    doc.Filename,
		ContentType: doc.ContentType,
		ExpiresAt:   s.now().Add(s.linkTTL),
	}
	if err := s.links.Create(ctx, link, s.linkTTL); err != nil {
		s.metrics.ExportFailed(req.Format, "link")
		s.discard(ctx, key)
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	s.logger.Info("export stored",
		zap.String("quotationNumber", req.Quotation.QuotationNumber),
		zap.String("format", req.Format),
		zap.String("key", key),
		zap.Int64("size", size),
		zap.Time("expiresAt", link.ExpiresAt))

	expires := link.ExpiresAt.UTC().Format(time.RFC3339)
	return &domain.DownloadLinkDTO{
		Token:     link.Token,
		URL:       s.baseURL + "/api/v1/downloads/" + link.Token,
		Filename:  link.Filename,
		ExpiresAt: expires,
	}, nil
}

// Download streams the export behind token once. open is called with the
// filename and content type before any bytes are written. The link is
// revoked and the blob deleted whether or not the copy succeeds.
func (s *ExportService) Download(ctx context.Context, token string, open func(filename, contentType string) io.Writer) error {
	link, err := s.links.Consume(ctx, token)
	if err != nil {
		if errors.Is(err, session.ErrLinkNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer s.discard(ctx, link.BlobKey)

	rc, err := s.blobs.Open(ctx, link.BlobKey)
	if err != nil {
		if errors.Is(err, storage.ErrBlobNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer rc.Close()

	if _, err := io.Copy(open(link.Filename, link.ContentType), rc); err != nil {
		s.logger.Warn("download interrupted", zap.String("key", link.BlobKey), zap.Error(err))
		return err
	}
	return nil
}

// InterruptedExport reports, once, whether the session's previous export
// started without finishing
func (s *ExportService) InterruptedExport(ctx context.Context, sessionID string) (*domain.ExportSessionDTO, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, fmt.Errorf("%w: session id is required", ErrInvalidInput)
	}
	es, err := s.sessions.TakeInterrupted(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if es == nil {
		return &domain.ExportSessionDTO{Interrupted: false}, nil
	}
	started := es.StartedAt.UTC().Format(time.RFC3339)
	return &domain.ExportSessionDTO{
		Interrupted:     true,
		ReferenceNumber: es.ReferenceNumber,
		Format:          es.Format,
		StartedAt:       &started,
	}, nil
}

// CleanupExpired deletes up to batch blobs whose links have expired
func (s *ExportService) CleanupExpired(ctx context.Context, batch int64) (int, error) {
	keys, err := s.links.Expired(ctx, s.now(), batch)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return deleted, err
		}
		if err := s.blobs.Delete(ctx, key); err != nil {
			s.logger.Warn("failed to delete expired export", zap.String("key", key), zap.Error(err))
			continue
		}
		if err := s.links.Forget(ctx, key); err != nil {
			s.logger.Warn("failed to forget expired export", zap.String("key", key), zap.Error(err))
			continue
		}
		deleted++
	}
	s.metrics.CleanupDeleted(deleted)
	return deleted, nil
}

func (s *ExportService) discard(ctx context.Context, key string) {
	ctx = context.WithoutCancel(ctx)
	if err := s.blobs.Delete(ctx, key); err != nil {
		s.logger.Warn("failed to delete export", zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.links.Forget(ctx, key); err != nil {
		s.logger.Warn("failed to forget export", zap.String("key", key), zap.Error(err))
	}
}
