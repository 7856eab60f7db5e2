package handler

import (
	"errors"
	"net/http"

	"github.com/Pesokrava/bakery_ledger/internal/delivery/http/response"
	"github.com/Pesokrava/bakery_ledger/internal/domain"
	"github.com/Pesokrava/bakery_ledger/internal/pkg/logger"
)

// handleError maps service layer errors to HTTP responses. notFound is the
// message used for domain.ErrNotFound.
func handleError(w http.ResponseWriter, log *logger.Logger, err error, notFound string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		response.Error(w, http.StatusNotFound, notFound)
	case errors.Is(err, domain.ErrInvalidInput):
		response.Error(w, http.StatusBadRequest, "Invalid input")
	case errors.Is(err, domain.ErrInsufficientStock):
		response.Error(w, http.StatusConflict, "Insufficient stock")
	case errors.Is(err, domain.ErrConflict):
		response.Error(w, http.StatusConflict, "Conflict - product was modified or stock is below sold quantity")
	case errors.Is(err, domain.ErrStorageUnavailable):
		log.Error("Storage unavailable", err)
		response.Error(w, http.StatusServiceUnavailable, "Storage unavailable")
	default:
		log.Error("Internal error in handler", err)
		response.Error(w, http.StatusInternalServerError, "Internal server error")
	}
}
