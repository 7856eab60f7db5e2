package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockLevel is the read-model row for a single product
type StockLevel struct {
	ProductID      uuid.UUID `json:"product_id" db:"product_id"`
	TotalStock     int       `json:"total_stock" db:"total_stock"`
	SoldQuantity   int       `json:"sold_quantity" db:"sold_quantity"`
	RemainingStock int       `json:"remaining_stock" db:"-"`
}

// Summary aggregates the read model across all non-deleted products
type Summary struct {
	TotalProducts       int `json:"total_products"`
	TotalStock          int `json:"total_stock"`
	TotalSoldQuantity   int `json:"total_sold_quantity"`
	TotalRemainingStock int `json:"total_remaining_stock"`
}

// SaleTotal is the per-product sum of sales inside a time window
type SaleTotal struct {
	ProductID uuid.UUID       `db:"product_id"`
	Quantity  int             `db:"quantity"`
	Revenue   decimal.Decimal `db:"revenue"`
}

// BestSeller is a ranked product with the name and price it has at query time
type BestSeller struct {
	ProductID     uuid.UUID       `json:"product_id"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	TotalQuantity int             `json:"total_quantity"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
}

// BestSellers holds both rankings; either is nil when no sale falls in the window
type BestSellers struct {
	BestByQuantity *BestSeller `json:"best_by_quantity"`
	BestByRevenue  *BestSeller `json:"best_by_revenue"`
}

// StatsRepository defines read access needed by the stats engine
type StatsRepository interface {
	// StockLevels returns total stock and sold quantity for every non-deleted product
	StockLevels(ctx context.Context) ([]StockLevel, error)

	// SaleTotals sums quantity and revenue per non-deleted product for sales
	// whose sold_at falls within [from, to]; nil bounds are open
	SaleTotals(ctx context.Context, from, to *time.Time) ([]SaleTotal, error)
}
