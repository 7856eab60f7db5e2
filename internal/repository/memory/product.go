package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Pesokrava/bakery_ledger/internal/domain"
)

// ProductRepository implements domain.ProductRepository in memory
type ProductRepository struct {
	s *Store
}

// Create creates a new product
func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	now := time.Now().UTC()
	product.ID = uuid.New()
	product.Version = 1
	product.CreatedAt = now
	product.UpdatedAt = now
	product.DeletedAt = nil
	product.SoldQuantity = 0

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored := *product
	stored.ImagePath = copyString(product.ImagePath)
	r.s.products[product.ID] = &stored
	r.s.locks[product.ID] = &sync.Mutex{}
	return nil
}

// GetByID retrieves a product by ID together with its ledger sum
func (r *ProductRepository) GetByID(ctx context.Context, id uuid.UUID, includeDeleted bool) (*domain.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.products[id]
	if !ok || (p.IsDeleted() && !includeDeleted) {
		return nil, domain.ErrNotFound
	}
	return r.s.snapshot(p), nil
}

// StockState returns the version and ledger sum of a non-deleted product
func (r *ProductRepository) StockState(ctx context.Context, id uuid.UUID) (*domain.StockState, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.products[id]
	if !ok || p.IsDeleted() {
		return nil, domain.ErrNotFound
	}
	return &domain.StockState{Version: p.Version, SoldQuantity: r.s.soldLocked(id)}, nil
}

// List retrieves a page of non-deleted products ordered by name
func (r *ProductRepository) List(ctx context.Context, limit, offset int) ([]*domain.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	active := make([]*domain.Product, 0, len(r.s.products))
	for _, p := range r.s.products {
		if !p.IsDeleted() {
			active = append(active, p)
		}
	}
	sort.Slice(active, func(i, j int) bool {
		if active[i].Name != active[j].Name {
			return active[i].Name < active[j].Name
		}
		return active[i].ID.String() < active[j].ID.String()
	})

	if offset < 0 {
		offset = 0
	}
	products := []*domain.Product{}
	for i := offset; i < len(active) && len(products) < limit; i++ {
		products = append(products, r.s.snapshot(active[i]))
	}
	return products, nil
}

// Update persists catalog fields while holding the product's write lock
func (r *ProductRepository) Update(ctx context.Context, product *domain.Product) error {
	lock, ok := r.s.productLock(product.ID)
	if !ok {
		return domain.ErrNotFound
	}
	lock.Lock()
	defer lock.Unlock()

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.products[product.ID]
	if !ok || stored.IsDeleted() {
		return domain.ErrNotFound
	}
	if stored.Version != product.Version {
		return fmt.Errorf("%w: product was modified by another request", domain.ErrConflict)
	}

	sold := r.s.soldLocked(product.ID)
	if product.TotalStock < sold {
		return fmt.Errorf("%w: total stock %d is below sold quantity %d", domain.ErrConflict, product.TotalStock, sold)
	}

	stored.Name = product.Name
	stored.Price = product.Price
	stored.TotalStock = product.TotalStock
	stored.ImagePath = copyString(product.ImagePath)
	stored.UpdatedAt = time.Now().UTC()
	stored.Version++

	product.Version = stored.Version
	product.UpdatedAt = stored.UpdatedAt
	product.SoldQuantity = sold
	return nil
}

// Delete soft-deletes a product
func (r *ProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	lock, ok := r.s.productLock(id)
	if !ok {
		return domain.ErrNotFound
	}
	lock.Lock()
	defer lock.Unlock()

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.products[id]
	if !ok || stored.IsDeleted() {
		return domain.ErrNotFound
	}

	now := time.Now().UTC()
	stored.DeletedAt = &now
	stored.Version++
	return nil
}

// Count returns the total number of non-deleted products
func (r *ProductRepository) Count(ctx context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	count := 0
	for _, p := range r.s.products {
		if !p.IsDeleted() {
			count++
		}
	}
	return count, nil
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	cp := *s
	return &cp
}
