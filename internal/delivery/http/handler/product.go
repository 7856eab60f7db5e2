package handler

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/Pesokrava/bakery_ledger/internal/delivery/http/request"
	"github.com/Pesokrava/bakery_ledger/internal/delivery/http/response"
	"github.com/Pesokrava/bakery_ledger/internal/domain"
	"github.com/Pesokrava/bakery_ledger/internal/pkg/logger"
	"github.com/Pesokrava/bakery_ledger/internal/usecase/product"
)

const productNotFound = "Product not found"

// ProductHandler handles HTTP requests for products
type ProductHandler struct {
	service *product.Service
	logger  *logger.Logger
}

// NewProductHandler creates a new product handler
func NewProductHandler(service *product.Service, log *logger.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		logger:  log,
	}
}

// CreateProductRequest represents the request body for creating a product
type CreateProductRequest struct {
	Name       string           `json:"name" example:"Croissant"`
	Price      *decimal.Decimal `json:"price" swaggertype:"string" example:"2.50"`
	TotalStock *int             `json:"total_stock" example:"40"`
	ImagePath  *string          `json:"image_path,omitempty"`
}

// UpdateProductRequest represents the request body for a partial product update.
// Absent and null fields are left unchanged; an empty image_path clears it.
type UpdateProductRequest struct {
	Name       *string          `json:"name,omitempty"`
	Price      *decimal.Decimal `json:"price,omitempty" swaggertype:"string"`
	TotalStock *int             `json:"total_stock,omitempty"`
	ImagePath  *string          `json:"image_path,omitempty"`
}

// Create handles POST /api/v1/products
// @Summary Create a new product
// @Description Create a catalog entry with name, price and total stock
// @Tags Products
// @Accept json
// @Produce json
// @Param product body CreateProductRequest true "Product details"
// @Success 201 {object} map[string]interface{} "Product created successfully"
// @Failure 400 {object} map[string]string "Invalid request body"
// @Failure 503 {object} map[string]string "Storage unavailable"
// @Router /products [post]
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := request.DecodeJSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Price == nil || req.TotalStock == nil {
		response.Error(w, http.StatusBadRequest, "price and total_stock are required")
		return
	}

	product := &domain.Product{
		Name:       req.Name,
		Price:      *req.Price,
		TotalStock: *req.TotalStock,
		ImagePath:  req.ImagePath,
	}

	if err := h.service.Create(r.Context(), product); err != nil {
		handleError(w, h.logger, err, productNotFound)
		return
	}

	response.Created(w, product)
}

// GetByID handles GET /api/v1/products/:id
// @Summary Get a product by ID
// @Description Get a product with its sold quantity and remaining stock
// @Tags Products
// @Accept json
// @Produce json
// @Param id path string true "Product ID (UUID)"
// @Param include_deleted query bool false "Resolve soft-deleted products too"
// @Success 200 {object} map[string]interface{} "Product details"
// @Failure 400 {object} map[string]string "Invalid product ID"
// @Failure 404 {object} map[string]string "Product not found"
// @Router /products/{id} [get]
func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := request.GetUUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	includeDeleted, err := request.GetBoolQuery(r, "include_deleted")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid include_deleted")
		return
	}

	var product *domain.Product
	if includeDeleted {
		product, err = h.service.GetByIDIncludingDeleted(r.Context(), id)
	} else {
		product, err = h.service.GetByID(r.Context(), id)
	}
	if err != nil {
		handleError(w, h.logger, err, productNotFound)
		return
	}

	response.Success(w, product)
}

// List handles GET /api/v1/products
// @Summary List products
// @Description Get a page of non-deleted products ordered by name
// @Tags Products
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Number of items per page (max 100)" default(20)
// @Success 200 {object} map[string]interface{} "Paginated list of products"
// @Failure 400 {object} map[string]string "Invalid pagination"
// @Router /products [get]
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := request.GetPaginationParams(r)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid pagination parameters")
		return
	}

	products, total, err := h.service.List(r.Context(), page)
	if err != nil {
		handleError(w, h.logger, err, productNotFound)
		return
	}

	response.Paginated(w, products, total, page.Number, page.Limit)
}

// Update handles PATCH /api/v1/products/:id
// @Summary Update a product
// @Description Apply a partial update to name, price, total stock or image path. Send an empty image_path to clear it.
// @Tags Products
// @Accept json
// @Produce json
// @Param id path string true "Product ID (UUID)"
// @Param product body UpdateProductRequest true "Fields to change"
// @Success 200 {object} map[string]interface{} "Product updated successfully"
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 404 {object} map[string]string "Product not found"
// @Failure 409 {object} map[string]string "Stock below sold quantity or concurrent modification"
// @Router /products/{id} [patch]
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := request.GetUUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	var req UpdateProductRequest
	if err := request.DecodeJSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	product, err := h.service.Update(r.Context(), id, domain.ProductUpdate{
		Name:       req.Name,
		Price:      req.Price,
		TotalStock: req.TotalStock,
		ImagePath:  req.ImagePath,
	})
	if err != nil {
		handleError(w, h.logger, err, productNotFound)
		return
	}

	response.Success(w, product)
}

// Delete handles DELETE /api/v1/products/:id
// @Summary Delete a product
// @Description Soft delete a product; its sales stay in the ledger
// @Tags Products
// @Accept json
// @Produce json
// @Param id path string true "Product ID (UUID)"
// @Success 204 "Product deleted successfully"
// @Failure 400 {object} map[string]string "Invalid product ID"
// @Failure 404 {object} map[string]string "Product not found"
// @Router /products/{id} [delete]
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := request.GetUUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		handleError(w, h.logger, err, productNotFound)
		return
	}

	response.NoContent(w)
}
