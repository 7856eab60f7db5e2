package handler

import (
	"net/http"

	"github.com/Pesokrava/bakery_ledger/internal/delivery/http/request"
	"github.com/Pesokrava/bakery_ledger/internal/delivery/http/response"
	"github.com/Pesokrava/bakery_ledger/internal/pkg/logger"
	"github.com/Pesokrava/bakery_ledger/internal/usecase/stats"
)

// StatsHandler serves inventory summaries and best-seller rankings
type StatsHandler struct {
	service *stats.Service
	logger  *logger.Logger
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(service *stats.Service, log *logger.Logger) *StatsHandler {
	return &StatsHandler{
		service: service,
		logger:  log,
	}
}

// Summary handles GET /api/v1/stats/summary
// @Summary Inventory summary
// @Description Totals of stock, sold quantity and remaining stock over non-deleted products
// @Tags Stats
// @Produce json
// @Success 200 {object} map[string]interface{} "Summary"
// @Failure 503 {object} map[string]string "Storage unavailable"
// @Router /stats/summary [get]
func (h *StatsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context())
	if err != nil {
		handleError(w, h.logger, err, "Not found")
		return
	}

	response.Success(w, summary)
}

// BestSellers handles GET /api/v1/stats/best-sellers
// @Summary Best sellers
// @Description Top product by quantity and by revenue within an optional time window
// @Tags Stats
// @Produce json
// @Param from query string false "Window start (RFC 3339, inclusive)"
// @Param to query string false "Window end (RFC 3339, inclusive)"
// @Success 200 {object} map[string]interface{} "Best sellers, null when no sales"
// @Failure 400 {object} map[string]string "Invalid time window"
// @Router /stats/best-sellers [get]
func (h *StatsHandler) BestSellers(w http.ResponseWriter, r *http.Request) {
	from, to, err := request.GetTimeWindow(r)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid time window")
		return
	}

	result, err := h.service.BestSellers(r.Context(), from, to)
	if err != nil {
		handleError(w, h.logger, err, "Not found")
		return
	}

	response.Success(w, result)
}
