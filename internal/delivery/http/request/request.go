package request

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Pesokrava/bakery_ledger/internal/domain"
)

const (
	maxRequestBodySize = 1 << 20 // 1MB

	defaultPage  = 1
	defaultLimit = 20
)

// DecodeJSON decodes JSON request body into the provided struct with size limit
func DecodeJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()

	// Limit request body size to prevent DoS attacks
	limitedReader := io.LimitReader(r.Body, maxRequestBodySize)

	decoder := json.NewDecoder(limitedReader)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		return fmt.Errorf("failed to decode JSON: %w", err)
	}
	return nil
}

// GetUUIDParam extracts a UUID parameter from the URL
func GetUUIDParam(r *http.Request, key string) (uuid.UUID, error) {
	param := chi.URLParam(r, key)
	if param == "" {
		return uuid.Nil, fmt.Errorf("missing parameter: %s", key)
	}

	id, err := uuid.Parse(param)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid UUID: %w", err)
	}

	return id, nil
}

// GetIntQuery extracts an integer query parameter. Absent parameters yield
// the default; malformed ones are an error.
func GetIntQuery(r *http.Request, key string, defaultValue int) (int, error) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue, nil
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}

	return intValue, nil
}

// GetBoolQuery extracts a boolean query parameter, false when absent
func GetBoolQuery(r *http.Request, key string) (bool, error) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return false, nil
	}

	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

// GetTimeQuery extracts an optional RFC 3339 timestamp, normalized to UTC
func GetTimeQuery(r *http.Request, key string) (*time.Time, error) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return nil, nil
	}

	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", key, err)
	}
	t = t.UTC()
	return &t, nil
}

// GetUUIDQuery extracts an optional UUID query parameter
func GetUUIDQuery(r *http.Request, key string) (*uuid.UUID, error) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return nil, nil
	}

	id, err := uuid.Parse(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", key, err)
	}
	return &id, nil
}

// GetPaginationParams extracts page and limit. Missing values fall back to
// page 1 and limit 20; range checks are left to the service layer.
func GetPaginationParams(r *http.Request) (domain.Page, error) {
	page, err := GetIntQuery(r, "page", defaultPage)
	if err != nil {
		return domain.Page{}, err
	}

	limit, err := GetIntQuery(r, "limit", defaultLimit)
	if err != nil {
		return domain.Page{}, err
	}

	return domain.Page{Number: page, Limit: limit}, nil
}

// GetTimeWindow extracts the optional from/to bounds of a reporting window
func GetTimeWindow(r *http.Request) (from, to *time.Time, err error) {
	from, err = GetTimeQuery(r, "from")
	if err != nil {
		return nil, nil, err
	}
	to, err = GetTimeQuery(r, "to")
	if err != nil {
		return nil, nil, err
	}
	return from, to, nil
}
