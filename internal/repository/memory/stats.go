package memory

import (
	"bytes"
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Pesokrava/bakery_ledger/internal/domain"
)

// StatsRepository implements domain.StatsRepository in memory
type StatsRepository struct {
	s *Store
}

// StockLevels returns capacity and ledger sum for every non-deleted product
func (r *StatsRepository) StockLevels(ctx context.Context) ([]domain.StockLevel, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	levels := []domain.StockLevel{}
	for id, p := range r.s.products {
		if p.IsDeleted() {
			continue
		}
		levels = append(levels, domain.StockLevel{
			ProductID:    id,
			TotalStock:   p.TotalStock,
			SoldQuantity: r.s.soldLocked(id),
		})
	}
	sort.Slice(levels, func(i, j int) bool {
		return bytes.Compare(levels[i].ProductID[:], levels[j].ProductID[:]) < 0
	})
	return levels, nil
}

// SaleTotals groups sales within [from, to] by non-deleted product
func (r *StatsRepository) SaleTotals(ctx context.Context, from, to *time.Time) ([]domain.SaleTotal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	totals := []domain.SaleTotal{}
	for id, sales := range r.s.byProd {
		p, ok := r.s.products[id]
		if !ok || p.IsDeleted() {
			continue
		}

		total := domain.SaleTotal{ProductID: id, Revenue: decimal.Zero}
		for _, sale := range sales {
			if !inWindow(sale.SoldAt, from, to) {
				continue
			}
			total.Quantity += sale.Quantity
			total.Revenue = total.Revenue.Add(sale.TotalAmount)
		}
		if total.Quantity > 0 {
			totals = append(totals, total)
		}
	}
	sort.Slice(totals, func(i, j int) bool {
		return bytes.Compare(totals[i].ProductID[:], totals[j].ProductID[:]) < 0
	})
	return totals, nil
}
