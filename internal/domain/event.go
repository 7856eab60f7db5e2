package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	// SubjectSales carries sale.recorded events
	SubjectSales = "sales.events"

	// SubjectProducts carries product.created, product.updated and product.deleted events
	SubjectProducts = "products.events"

	EventSaleRecorded   = "sale.recorded"
	EventProductCreated = "product.created"
	EventProductUpdated = "product.updated"
	EventProductDeleted = "product.deleted"
)

// Event is the JSON envelope published after a committed change
type Event struct {
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
	ProductID uuid.UUID `json:"product_id"`
	Sale      *Sale     `json:"sale,omitempty"`
	Product   *Product  `json:"product,omitempty"`
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}
