package domain

import "errors"

var (
	// ErrNotFound is returned when a product does not exist or is soft-deleted
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrInsufficientStock is returned when a sale would drive remaining stock below zero
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrConflict is returned when a catalog update would violate the stock invariant
	// or the product was modified concurrently
	ErrConflict = errors.New("conflict occurred")

	// ErrStorageUnavailable is returned when the persistence layer cannot be reached
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrInternal is returned when an internal error occurs
	ErrInternal = errors.New("internal error")
)
