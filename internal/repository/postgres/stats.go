package postgres

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Pesokrava/bakery_ledger/internal/domain"
)

// StatsRepository implements domain.StatsRepository for PostgreSQL
type StatsRepository struct {
	db *sqlx.DB
}

// NewStatsRepository creates a new PostgreSQL stats repository
func NewStatsRepository(db *sqlx.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// StockLevels returns capacity and ledger sum for every non-deleted product
func (r *StatsRepository) StockLevels(ctx context.Context) ([]domain.StockLevel, error) {
	query := `
		SELECT p.id AS product_id, p.total_stock, COALESCE(s.sold, 0) AS sold_quantity
		FROM products p
		LEFT JOIN (
			SELECT product_id, SUM(quantity) AS sold
			FROM sales
			GROUP BY product_id
		) s ON s.product_id = p.id
		WHERE p.deleted_at IS NULL
		ORDER BY p.id
	`

	levels := []domain.StockLevel{}
	if err := r.db.SelectContext(ctx, &levels, query); err != nil {
		return nil, translateError(err)
	}

	return levels, nil
}

// SaleTotals groups sales within [from, to] by non-deleted product
func (r *StatsRepository) SaleTotals(ctx context.Context, from, to *time.Time) ([]domain.SaleTotal, error) {
	query := `
		SELECT s.product_id, SUM(s.quantity) AS quantity, SUM(s.total_amount) AS revenue
		FROM sales s
		JOIN products p ON p.id = s.product_id AND p.deleted_at IS NULL
		WHERE ($1::timestamptz IS NULL OR s.sold_at >= $1)
		  AND ($2::timestamptz IS NULL OR s.sold_at <= $2)
		GROUP BY s.product_id
		ORDER BY s.product_id
	`

	totals := []domain.SaleTotal{}
	if err := r.db.SelectContext(ctx, &totals, query, utcOrNil(from), utcOrNil(to)); err != nil {
		return nil, translateError(err)
	}

	return totals, nil
}

func utcOrNil(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC()
}
