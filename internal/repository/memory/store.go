// Package memory keeps the catalog and sale ledger in process memory.
// Admission and catalog updates are serialized per product; the store-wide
// RWMutex only guards map access and is never held across a stock check.
package memory

import (
	"sync"

	"github.com/google/uuid"

	"github.com/Pesokrava/bakery_ledger/internal/domain"
)

var (
	_ domain.ProductRepository = (*ProductRepository)(nil)
	_ domain.SaleRepository    = (*SaleRepository)(nil)
	_ domain.StatsRepository   = (*StatsRepository)(nil)
)

// Store holds products and their ledgers
type Store struct {
	mu       sync.RWMutex
	products map[uuid.UUID]*domain.Product
	sales    []*domain.Sale
	byProd   map[uuid.UUID][]*domain.Sale
	locks    map[uuid.UUID]*sync.Mutex
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		products: make(map[uuid.UUID]*domain.Product),
		byProd:   make(map[uuid.UUID][]*domain.Sale),
		locks:    make(map[uuid.UUID]*sync.Mutex),
	}
}

// Products returns the catalog view of the store
func (s *Store) Products() *ProductRepository {
	return &ProductRepository{s: s}
}

// Sales returns the ledger view of the store
func (s *Store) Sales() *SaleRepository {
	return &SaleRepository{s: s}
}

// Stats returns the aggregate view of the store
func (s *Store) Stats() *StatsRepository {
	return &StatsRepository{s: s}
}

// productLock returns the mutex serializing writes for one product. Locks
// are registered by Create, so unknown ids never add an entry.
func (s *Store) productLock(id uuid.UUID) (*sync.Mutex, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.locks[id]
	return l, ok
}

// snapshot returns a copy of the product with its ledger sum; caller holds s.mu
func (s *Store) snapshot(p *domain.Product) *domain.Product {
	cp := *p
	if p.ImagePath != nil {
		path := *p.ImagePath
		cp.ImagePath = &path
	}
	if p.DeletedAt != nil {
		deletedAt := *p.DeletedAt
		cp.DeletedAt = &deletedAt
	}
	cp.SoldQuantity = s.soldLocked(p.ID)
	return &cp
}

// soldLocked sums the ledger for a product; caller holds s.mu
func (s *Store) soldLocked(id uuid.UUID) int {
	total := 0
	for _, sale := range s.byProd[id] {
		total += sale.Quantity
	}
	return total
}
