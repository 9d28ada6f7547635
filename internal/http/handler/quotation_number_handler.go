package handler

import (
	"net/http"

	"github.com/straye-as/salesops-api/internal/domain"
	"github.com/straye-as/salesops-api/internal/service"
	"go.uber.org/zap"
)

// QuotationNumberHandler exposes quotation number allocation
type QuotationNumberHandler struct {
	numberService *service.NumberSequenceService
	logger        *zap.Logger
}

// NewQuotationNumberHandler creates a new QuotationNumberHandler instance
func NewQuotationNumberHandler(numberService *service.NumberSequenceService, logger *zap.Logger) *QuotationNumberHandler {
	return &QuotationNumberHandler{numberService: numberService, logger: logger}
}

// List godoc
// @Summary List quotation numbers
// @Description Returns every stored quotation number starting with prefix
// @Tags Quotation Numbers
// @Produce json
// @Param prefix query string true "Prefix, e.g. EC-MN-2025"
// @Success 200 {object} domain.QuotationNumbersResponse
// @Failure 400 {object} domain.APIError
// @Failure 502 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /quotation-numbers [get]
func (h *QuotationNumberHandler) List(w http.ResponseWriter, r *http.Request) {
	result, err := h.numberService.GetQuotationNumbers(r.Context(), r.URL.Query().Get("prefix"))
	if err != nil {
		respondServiceError(w, h.logger, err, "list quotation numbers")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Generate godoc
// @Summary Generate quotation number
// @Description Allocates {BRAND}-{TERRITORY}-{YEAR}-{NNNN}. Numbers are not reserved; concurrent calls may collide.
// @Tags Quotation Numbers
// @Accept json
// @Produce json
// @Param body body domain.GenerateQuotationNumberRequest true "Brand and optional territory"
// @Success 200 {object} domain.QuotationNumberDTO
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /quotation-numbers/generate [post]
func (h *QuotationNumberHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req domain.GenerateQuotationNumberRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.numberService.Generate(r.Context(), req.Brand, req.TerritoryCode)
	if err != nil {
		respondServiceError(w, h.logger, err, "generate quotation number")
		return
	}
	respondJSON(w, http.StatusOK, result)
}
