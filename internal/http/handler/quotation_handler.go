package handler

import (
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/straye-as/salesops-api/internal/domain"
	"github.com/straye-as/salesops-api/internal/service"
	"go.uber.org/zap"
)

// QuotationHandler prices selections and renders quotation documents
type QuotationHandler struct {
	quotationService *service.QuotationService
	logger           *zap.Logger
}

// NewQuotationHandler creates a new QuotationHandler instance
func NewQuotationHandler(quotationService *service.QuotationService, logger *zap.Logger) *QuotationHandler {
	return &QuotationHandler{quotationService: quotationService, logger: logger}
}

// Calculate godoc
// @Summary Calculate quotation totals
// @Description Quantities below 1 count as 1 and negative prices as 0. The discount applies to discounted lines only.
// @Tags Quotations
// @Accept json
// @Produce json
// @Param body body domain.CalculateQuotationRequest true "Product selection"
// @Success 200 {object} domain.QuotationTotalsDTO
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /quotations/calculate [post]
func (h *QuotationHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	var req domain.CalculateQuotationRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	respondJSON(w, http.StatusOK, h.quotationService.Calculate(&req))
}

// Preview godoc
// @Summary Preview quotation
// @Description Renders the quotation as a single HTML page
// @Tags Quotations
// @Accept json
// @Produce html
// @Param body body domain.QuotationDocumentRequest true "Quotation"
// @Success 200 {string} string "HTML document"
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /quotations/preview [post]
func (h *QuotationHandler) Preview(w http.ResponseWriter, r *http.Request) {
	var req domain.QuotationDocumentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	doc, err := h.quotationService.Preview(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "render preview")
		return
	}

	w.Header().Set("Content-Type", doc.ContentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc.Bytes)
}

// PDF godoc
// @Summary Download quotation PDF
// @Tags Quotations
// @Accept json
// @Produce application/pdf
// @Param body body domain.QuotationDocumentRequest true "Quotation"
// @Success 200 {file} binary "QUOTATION_{ref}.pdf"
// @Failure 400 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Failure 502 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /quotations/pdf [post]
func (h *QuotationHandler) PDF(w http.ResponseWriter, r *http.Request) {
	var req domain.QuotationDocumentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	doc, err := h.quotationService.PDF(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "generate PDF")
		return
	}
	respondAttachment(w, doc)
}

// Spreadsheet godoc
// @Summary Download quotation spreadsheet
// @Tags Quotations
// @Accept json
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param brand path string true "Brand (ecoshift, disruptive, buildchem, progressive)"
// @Param body body domain.QuotationDocumentRequest true "Quotation"
// @Success 200 {file} binary "Quotation_{ref}.xlsx"
// @Failure 400 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /quotations/{brand}/spreadsheet [post]
func (h *QuotationHandler) Spreadsheet(w http.ResponseWriter, r *http.Request) {
	brand := domain.Brand(strings.ToLower(chi.URLParam(r, "brand")))
	if !domain.IsValidBrand(string(brand)) {
		respondWithError(w, http.StatusBadRequest, "Invalid brand")
		return
	}

	var req domain.QuotationDocumentRequest
	// the path supplies the brand, so the body may omit it
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := decodeBody(r.Body, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Brand = brand
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	doc, err := h.quotationService.Spreadsheet(r.Context(), brand, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "generate spreadsheet")
		return
	}
	respondAttachment(w, doc)
}

// ExportHandler stores exports behind temporary download links
type ExportHandler struct {
	exportService *service.ExportService
	logger        *zap.Logger
}

// NewExportHandler creates a new ExportHandler instance
func NewExportHandler(exportService *service.ExportService, logger *zap.Logger) *ExportHandler {
	return &ExportHandler{exportService: exportService, logger: logger}
}

// Export godoc
// @Summary Export quotation
// @Description Renders the quotation, stores it and returns a single-use download link
// @Tags Exports
// @Accept json
// @Produce json
// @Param body body domain.ExportQuotationRequest true "Export request"
// @Success 201 {object} domain.DownloadLinkDTO
// @Failure 400 {object} domain.APIError
// @Failure 502 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /quotations/export [post]
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	var req domain.ExportQuotationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	link, err := h.exportService.Export(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "export quotation")
		return
	}
	respondJSON(w, http.StatusCreated, link)
}

// Download godoc
// @Summary Download an export
// @Description The link works once; the stored file is deleted afterwards
// @Tags Exports
// @Produce octet-stream
// @Param token path string true "Download token"
// @Success 200 {file} binary
// @Failure 404 {object} domain.APIError
// @Router /downloads/{token} [get]
func (h *ExportHandler) Download(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if token == "" {
		respondWithError(w, http.StatusNotFound, "Download not found")
		return
	}

	started := false
	err := h.exportService.Download(r.Context(), token, func(filename, contentType string) io.Writer {
		started = true
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Content-Disposition", "attachment; filename=\""+filename+"\"")
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(http.StatusOK)
		return w
	})
	if err != nil && !started {
		respondServiceError(w, h.logger, err, "download export")
	}
}

// CurrentSession godoc
// @Summary Check for an interrupted export
// @Description Reports whether the session's last export never finished. Reading clears the flag.
// @Tags Exports
// @Produce json
// @Param sessionId query string true "Client session ID"
// @Success 200 {object} domain.ExportSessionDTO
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /export-sessions/current [get]
func (h *ExportHandler) CurrentSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("sessionId")
	if sessionID == "" {
		sessionID = r.Header.Get("X-Session-ID")
	}

	status, err := h.exportService.InterruptedExport(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, h.logger, err, "read export session")
		return
	}
	respondJSON(w, http.StatusOK, status)
}
