package handler

import (
	"net/http"

	"github.com/straye-as/salesops-api/internal/service"
	"go.uber.org/zap"
)

// ProductHandler serves product catalog search
type ProductHandler struct {
	productService *service.ProductService
	logger         *zap.Logger
}

// NewProductHandler creates a new ProductHandler instance
func NewProductHandler(productService *service.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{productService: productService, logger: logger}
}

// Search godoc
// @Summary Search products
// @Description Searches every enabled product source. Terms shorter than 2 characters return an empty list.
// @Tags Products
// @Produce json
// @Param query query string true "Search term"
// @Success 200 {array} domain.Product
// @Failure 502 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /products [get]
func (h *ProductHandler) Search(w http.ResponseWriter, r *http.Request) {
	products, err := h.productService.Search(r.Context(), r.URL.Query().Get("query"))
	if err != nil {
		respondServiceError(w, h.logger, err, "search products")
		return
	}
	respondJSON(w, http.StatusOK, products)
}
