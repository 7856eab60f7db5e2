package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/Pesokrava/bakery_ledger/internal/domain"
)

// SaleRepository implements domain.SaleRepository for PostgreSQL
type SaleRepository struct {
	db         *sqlx.DB
	maxRetries int
}

// NewSaleRepository creates a new PostgreSQL sale repository. maxRetries
// bounds how many times an admission is attempted under write contention.
func NewSaleRepository(db *sqlx.DB, maxRetries int) *SaleRepository {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &SaleRepository{db: db, maxRetries: maxRetries}
}

type lockedProduct struct {
	Name       string          `db:"name"`
	Price      decimal.Decimal `db:"price"`
	TotalStock int             `db:"total_stock"`
}

// Admit checks remaining stock and appends the sale inside one transaction.
// SELECT ... FOR UPDATE on the product row serializes admissions for the same
// product while leaving other products unblocked.
func (r *SaleRepository) Admit(ctx context.Context, productID uuid.UUID, quantity int, soldAt time.Time) (*domain.Sale, error) {
	var lastErr error

	for attempt := 0; attempt < r.maxRetries; attempt++ {
		sale, err := r.admitOnce(ctx, productID, quantity, soldAt)
		if err == nil {
			return sale, nil
		}
		if !isRetryable(err) {
			return nil, translateError(err)
		}
		lastErr = err
	}

	return nil, fmt.Errorf("%w: sale admission gave up after %d attempts: %v", domain.ErrStorageUnavailable, r.maxRetries, lastErr)
}

func (r *SaleRepository) admitOnce(ctx context.Context, productID uuid.UUID, quantity int, soldAt time.Time) (*domain.Sale, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var product lockedProduct
	err = tx.GetContext(ctx, &product, `
		SELECT name, price, total_stock
		FROM products
		WHERE id = $1 AND deleted_at IS NULL
		FOR UPDATE
	`, productID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	var sold int
	err = tx.GetContext(ctx, &sold, `SELECT COALESCE(SUM(quantity), 0) FROM sales WHERE product_id = $1`, productID)
	if err != nil {
		return nil, err
	}

	remaining := product.TotalStock - sold
	if quantity > remaining {
		return nil, fmt.Errorf("%w: requested %d, remaining %d", domain.ErrInsufficientStock, quantity, remaining)
	}

	sale := &domain.Sale{
		ProductID:   productID,
		ProductName: product.Name,
		Quantity:    quantity,
		UnitPrice:   product.Price,
		TotalAmount: product.Price.Mul(decimal.NewFromInt(int64(quantity))),
		SoldAt:      soldAt.UTC(),
	}

	err = tx.QueryRowxContext(ctx, `
		INSERT INTO sales (product_id, product_name, quantity, unit_price, total_amount, sold_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`,
		sale.ProductID,
		sale.ProductName,
		sale.Quantity,
		sale.UnitPrice,
		sale.TotalAmount,
		sale.SoldAt,
	).Scan(&sale.ID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return sale, nil
}

// List retrieves a page of sales matching the filter, newest first
func (r *SaleRepository) List(ctx context.Context, filter domain.SaleFilter, limit, offset int) ([]*domain.Sale, error) {
	where, args := buildSaleFilter(filter)
	args = append(args, limit, offset)

	query := fmt.Sprintf(`
		SELECT id, product_id, product_name, quantity, unit_price, total_amount, sold_at
		FROM sales
		%s
		ORDER BY sold_at DESC, id ASC
		LIMIT $%d OFFSET $%d
	`, where, len(args)-1, len(args))

	sales := []*domain.Sale{}
	if err := r.db.SelectContext(ctx, &sales, query, args...); err != nil {
		return nil, translateError(err)
	}

	return sales, nil
}

// Count returns the number of sales matching the filter
func (r *SaleRepository) Count(ctx context.Context, filter domain.SaleFilter) (int, error) {
	where, args := buildSaleFilter(filter)
	query := `SELECT COUNT(*) FROM sales ` + where

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, translateError(err)
	}

	return count, nil
}

func buildSaleFilter(filter domain.SaleFilter) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if filter.ProductID != nil {
		args = append(args, *filter.ProductID)
		conditions = append(conditions, fmt.Sprintf("product_id = $%d", len(args)))
	}
	if filter.From != nil {
		args = append(args, filter.From.UTC())
		conditions = append(conditions, fmt.Sprintf("sold_at >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, filter.To.UTC())
		conditions = append(conditions, fmt.Sprintf("sold_at <= $%d", len(args)))
	}

	if len(conditions) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conditions, " AND "), args
}
