package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents a catalog entry. SoldQuantity and RemainingStock are
// derived from the sale ledger on every read and never stored.
type Product struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	Name           string          `json:"name" db:"name" validate:"required,min=1,max=255"`
	Price          decimal.Decimal `json:"price" db:"price" validate:"gte=0,lte=9999999999.99"`
	TotalStock     int             `json:"total_stock" db:"total_stock" validate:"gte=0,lte=2147483647"`
	ImagePath      *string         `json:"image_path,omitempty" db:"image_path" validate:"omitempty,max=1024"`
	SoldQuantity   int             `json:"sold_quantity" db:"sold_quantity"`
	RemainingStock int             `json:"remaining_stock" db:"-"`
	Version        int             `json:"version" db:"version"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`
	DeletedAt      *time.Time      `json:"deleted_at,omitempty" db:"deleted_at"`
}

// IsDeleted reports whether the product has been soft-deleted
func (p *Product) IsDeleted() bool {
	return p.DeletedAt != nil
}

// StockState is the current version and ledger sum of a live product
type StockState struct {
	Version      int `db:"version"`
	SoldQuantity int `db:"sold_quantity"`
}

// ProductUpdate carries the fields of a partial update. Nil fields are left
// untouched; an empty ImagePath clears the stored path.
type ProductUpdate struct {
	Name       *string
	Price      *decimal.Decimal
	TotalStock *int
	ImagePath  *string
}

// IsEmpty reports whether no field was supplied
func (u ProductUpdate) IsEmpty() bool {
	return u.Name == nil && u.Price == nil && u.TotalStock == nil && u.ImagePath == nil
}

// ApplyTo copies the supplied fields onto p
func (u ProductUpdate) ApplyTo(p *Product) {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Price != nil {
		p.Price = *u.Price
	}
	if u.TotalStock != nil {
		p.TotalStock = *u.TotalStock
	}
	if u.ImagePath != nil {
		if *u.ImagePath == "" {
			p.ImagePath = nil
		} else {
			p.ImagePath = u.ImagePath
		}
	}
}

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	// Create creates a new product
	Create(ctx context.Context, product *Product) error

	// GetByID retrieves a product by ID with its current sold quantity.
	// Soft-deleted products are returned only when includeDeleted is set.
	GetByID(ctx context.Context, id uuid.UUID, includeDeleted bool) (*Product, error)

	// StockState returns the version and sold quantity of a non-deleted
	// product without loading the catalog row
	StockState(ctx context.Context, id uuid.UUID) (*StockState, error)

	// List retrieves a page of products ordered by name (excludes soft-deleted)
	List(ctx context.Context, limit, offset int) ([]*Product, error)

	// Update persists catalog fields. It fails with ErrConflict when the new
	// total stock is below the sold quantity or the version no longer matches.
	Update(ctx context.Context, product *Product) error

	// Delete soft-deletes a product
	Delete(ctx context.Context, id uuid.UUID) error

	// Count returns the total number of products (excludes soft-deleted)
	Count(ctx context.Context) (int, error)
}
