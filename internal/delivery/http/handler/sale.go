package handler

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/Pesokrava/bakery_ledger/internal/delivery/http/request"
	"github.com/Pesokrava/bakery_ledger/internal/delivery/http/response"
	"github.com/Pesokrava/bakery_ledger/internal/domain"
	"github.com/Pesokrava/bakery_ledger/internal/pkg/logger"
	"github.com/Pesokrava/bakery_ledger/internal/usecase/sale"
)

// SaleHandler handles HTTP requests for the sale ledger
type SaleHandler struct {
	service *sale.Service
	logger  *logger.Logger
}

// NewSaleHandler creates a new sale handler
func NewSaleHandler(service *sale.Service, log *logger.Logger) *SaleHandler {
	return &SaleHandler{
		service: service,
		logger:  log,
	}
}

// CreateSaleRequest represents the request body for recording a sale
type CreateSaleRequest struct {
	ProductID uuid.UUID `json:"product_id" swaggertype:"string" format:"uuid"`
	Quantity  int       `json:"quantity" example:"2"`
}

// Create handles POST /api/v1/sales
// @Summary Record a sale
// @Description Record a sale against a product. Rejected when remaining stock is insufficient.
// @Tags Sales
// @Accept json
// @Produce json
// @Param sale body CreateSaleRequest true "Sale details"
// @Success 201 {object} map[string]interface{} "Sale recorded"
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 404 {object} map[string]string "Product not found"
// @Failure 409 {object} map[string]string "Insufficient stock"
// @Failure 503 {object} map[string]string "Storage unavailable"
// @Router /sales [post]
func (h *SaleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateSaleRequest
	if err := request.DecodeJSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s, err := h.service.Record(r.Context(), req.ProductID, req.Quantity)
	if err != nil {
		handleError(w, h.logger, err, productNotFound)
		return
	}

	response.Created(w, s)
}

// List handles GET /api/v1/sales
// @Summary List sales
// @Description Get a page of sales, newest first, optionally filtered by product and time window
// @Tags Sales
// @Accept json
// @Produce json
// @Param product_id query string false "Product ID (UUID)"
// @Param from query string false "Window start (RFC 3339, inclusive)"
// @Param to query string false "Window end (RFC 3339, inclusive)"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Number of items per page (max 100)" default(20)
// @Success 200 {object} map[string]interface{} "Paginated list of sales"
// @Failure 400 {object} map[string]string "Invalid query"
// @Router /sales [get]
func (h *SaleHandler) List(w http.ResponseWriter, r *http.Request) {
	productID, err := request.GetUUIDQuery(r, "product_id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid product_id")
		return
	}

	from, to, err := request.GetTimeWindow(r)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid time window")
		return
	}

	page, err := request.GetPaginationParams(r)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid pagination parameters")
		return
	}

	filter := domain.SaleFilter{ProductID: productID, From: from, To: to}
	sales, total, err := h.service.List(r.Context(), filter, page)
	if err != nil {
		handleError(w, h.logger, err, productNotFound)
		return
	}

	response.Paginated(w, sales, total, page.Number, page.Limit)
}
