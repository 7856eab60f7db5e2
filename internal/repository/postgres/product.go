package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Pesokrava/bakery_ledger/internal/domain"
)

const productColumns = `
	p.id, p.name, p.price, p.total_stock, p.image_path, p.version,
	p.created_at, p.updated_at, p.deleted_at,
	COALESCE((SELECT SUM(s.quantity) FROM sales s WHERE s.product_id = p.id), 0) AS sold_quantity`

// ProductRepository implements domain.ProductRepository for PostgreSQL
type ProductRepository struct {
	db *sqlx.DB
}

// NewProductRepository creates a new PostgreSQL product repository
func NewProductRepository(db *sqlx.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// Create creates a new product
func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (name, price, total_stock, image_path, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, version, created_at, updated_at
	`

	now := time.Now().UTC()
	product.CreatedAt = now
	product.UpdatedAt = now

	err := r.db.QueryRowxContext(
		ctx,
		query,
		product.Name,
		product.Price,
		product.TotalStock,
		product.ImagePath,
		product.CreatedAt,
		product.UpdatedAt,
	).Scan(
		&product.ID,
		&product.Version,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return translateError(err)
	}

	product.SoldQuantity = 0
	product.DeletedAt = nil

	return nil
}

// GetByID retrieves a product by ID together with its ledger sum
func (r *ProductRepository) GetByID(ctx context.Context, id uuid.UUID, includeDeleted bool) (*domain.Product, error) {
	query := `SELECT ` + productColumns + `
		FROM products p
		WHERE p.id = $1 AND ($2::boolean OR p.deleted_at IS NULL)
	`

	var product domain.Product
	err := r.db.GetContext(ctx, &product, query, id, includeDeleted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, translateError(err)
	}

	return &product, nil
}

// StockState returns the version and ledger sum of a non-deleted product
func (r *ProductRepository) StockState(ctx context.Context, id uuid.UUID) (*domain.StockState, error) {
	query := `
		SELECT p.version,
			COALESCE((SELECT SUM(s.quantity) FROM sales s WHERE s.product_id = p.id), 0) AS sold_quantity
		FROM products p
		WHERE p.id = $1 AND p.deleted_at IS NULL
	`

	var state domain.StockState
	err := r.db.GetContext(ctx, &state, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, translateError(err)
	}

	return &state, nil
}

// List retrieves a page of non-deleted products ordered by name
func (r *ProductRepository) List(ctx context.Context, limit, offset int) ([]*domain.Product, error) {
	query := `SELECT ` + productColumns + `
		FROM products p
		WHERE p.deleted_at IS NULL
		ORDER BY p.name ASC, p.id ASC
		LIMIT $1 OFFSET $2
	`

	products := []*domain.Product{}
	err := r.db.SelectContext(ctx, &products, query, limit, offset)
	if err != nil {
		return nil, translateError(err)
	}

	return products, nil
}

// Update persists catalog fields under a row lock on the product. The lock
// serializes the stock check against concurrent sale admissions.
func (r *ProductRepository) Update(ctx context.Context, product *domain.Product) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return translateError(err)
	}
	defer tx.Rollback()

	var version int
	err = tx.GetContext(ctx, &version,
		`SELECT version FROM products WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`,
		product.ID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return translateError(err)
	}

	if version != product.Version {
		return fmt.Errorf("%w: product was modified by another request", domain.ErrConflict)
	}

	var sold int
	err = tx.GetContext(ctx, &sold,
		`SELECT COALESCE(SUM(quantity), 0) FROM sales WHERE product_id = $1`,
		product.ID,
	)
	if err != nil {
		return translateError(err)
	}

	if product.TotalStock < sold {
		return fmt.Errorf("%w: total stock %d is below sold quantity %d", domain.ErrConflict, product.TotalStock, sold)
	}

	product.UpdatedAt = time.Now().UTC()
	err = tx.QueryRowxContext(ctx, `
		UPDATE products
		SET name = $1, price = $2, total_stock = $3, image_path = $4, updated_at = $5, version = version + 1
		WHERE id = $6
		RETURNING version, updated_at
	`,
		product.Name,
		product.Price,
		product.TotalStock,
		product.ImagePath,
		product.UpdatedAt,
		product.ID,
	).Scan(&product.Version, &product.UpdatedAt)
	if err != nil {
		return translateError(err)
	}

	if err := tx.Commit(); err != nil {
		return translateError(err)
	}

	product.SoldQuantity = sold
	return nil
}

// Delete soft-deletes a product
func (r *ProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE products
		SET deleted_at = $1, version = version + 1
		WHERE id = $2 AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return translateError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return translateError(err)
	}

	if rowsAffected == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// Count returns the total number of non-deleted products
func (r *ProductRepository) Count(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM products WHERE deleted_at IS NULL`

	var count int
	err := r.db.GetContext(ctx, &count, query)
	if err != nil {
		return 0, translateError(err)
	}

	return count, nil
}
