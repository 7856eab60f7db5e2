package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Pesokrava/bakery_ledger/internal/domain"
)

// SaleRepository implements domain.SaleRepository in memory
type SaleRepository struct {
	s *Store
}

// Admit checks remaining stock and appends the sale while holding the
// product's write lock. Admissions for other products proceed in parallel.
func (r *SaleRepository) Admit(ctx context.Context, productID uuid.UUID, quantity int, soldAt time.Time) (*domain.Sale, error) {
	lock, ok := r.s.productLock(productID)
	if !ok {
		return nil, domain.ErrNotFound
	}
	lock.Lock()
	defer lock.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.s.mu.RLock()
	product, ok := r.s.products[productID]
	if !ok || product.IsDeleted() {
		r.s.mu.RUnlock()
		return nil, domain.ErrNotFound
	}
	name, price, totalStock := product.Name, product.Price, product.TotalStock
	sold := r.s.soldLocked(productID)
	r.s.mu.RUnlock()

	remaining := totalStock - sold
	if quantity > remaining {
		return nil, fmt.Errorf("%w: requested %d, remaining %d", domain.ErrInsufficientStock, quantity, remaining)
	}

	sale := &domain.Sale{
		ID:          uuid.New(),
		ProductID:   productID,
		ProductName: name,
		Quantity:    quantity,
		UnitPrice:   price,
		TotalAmount: price.Mul(decimal.NewFromInt(int64(quantity))),
		SoldAt:      soldAt.UTC(),
	}

	r.s.mu.Lock()
	r.s.sales = append(r.s.sales, sale)
	r.s.byProd[productID] = append(r.s.byProd[productID], sale)
	r.s.mu.Unlock()

	cp := *sale
	return &cp, nil
}

// List retrieves a page of sales matching the filter, newest first
func (r *SaleRepository) List(ctx context.Context, filter domain.SaleFilter, limit, offset int) ([]*domain.Sale, error) {
	matched := r.match(filter)
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].SoldAt.Equal(matched[j].SoldAt) {
			return matched[i].SoldAt.After(matched[j].SoldAt)
		}
		return matched[i].ID.String() < matched[j].ID.String()
	})

	sales := []*domain.Sale{}
	if offset < 0 {
		offset = 0
	}
	for i := offset; i < len(matched) && len(sales) < limit; i++ {
		cp := *matched[i]
		sales = append(sales, &cp)
	}
	return sales, nil
}

// Count returns the number of sales matching the filter
func (r *SaleRepository) Count(ctx context.Context, filter domain.SaleFilter) (int, error) {
	return len(r.match(filter)), nil
}

func (r *SaleRepository) match(filter domain.SaleFilter) []*domain.Sale {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	source := r.s.sales
	if filter.ProductID != nil {
		source = r.s.byProd[*filter.ProductID]
	}

	matched := make([]*domain.Sale, 0, len(source))
	for _, sale := range source {
		if inWindow(sale.SoldAt, filter.From, filter.To) {
			matched = append(matched, sale)
		}
	}
	return matched
}

func inWindow(t time.Time, from, to *time.Time) bool {
	if from != nil && t.Before(*from) {
		return false
	}
	if to != nil && t.After(*to) {
		return false
	}
	return true
}
