package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sale is an immutable ledger entry depleting a product's stock
type Sale struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	ProductID   uuid.UUID       `json:"product_id" db:"product_id" validate:"required"`
	ProductName string          `json:"product_name" db:"product_name"`
	Quantity    int             `json:"quantity" db:"quantity" validate:"gt=0"`
	UnitPrice   decimal.Decimal `json:"unit_price" db:"unit_price"`
	TotalAmount decimal.Decimal `json:"total_amount" db:"total_amount"`
	SoldAt      time.Time       `json:"sold_at" db:"sold_at"`
}

// SaleFilter narrows a ledger listing. Zero values mean "no bound".
type SaleFilter struct {
	ProductID *uuid.UUID
	From      *time.Time
	To        *time.Time
}

// SaleRepository defines the interface for the append-only sale ledger
type SaleRepository interface {
	// Admit validates stock and appends a sale in one atomic unit of work,
	// serialized against other admissions for the same product. The unit
	// price and product name are captured from the product at commit time.
	Admit(ctx context.Context, productID uuid.UUID, quantity int, soldAt time.Time) (*Sale, error)

	// List retrieves a page of sales matching the filter, newest first
	List(ctx context.Context, filter SaleFilter, limit, offset int) ([]*Sale, error)

	// Count returns the number of sales matching the filter
	Count(ctx context.Context, filter SaleFilter) (int, error)
}
