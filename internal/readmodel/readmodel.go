// Package readmodel derives stock figures and rankings from the catalog and
// the sale ledger. Nothing here mutates or caches state.
package readmodel

import (
	"bytes"

	"github.com/google/uuid"

	"github.com/Pesokrava/bakery_ledger/internal/domain"
)

// Derive builds the read-model row for a product from its capacity and ledger sum
func Derive(productID uuid.UUID, totalStock, soldQuantity int) domain.StockLevel {
	return domain.StockLevel{
		ProductID:      productID,
		TotalStock:     totalStock,
		SoldQuantity:   soldQuantity,
		RemainingStock: totalStock - soldQuantity,
	}
}

// Apply fills the derived fields of a product whose SoldQuantity is already loaded
func Apply(p *domain.Product) *domain.Product {
	if p == nil {
		return nil
	}
	p.RemainingStock = p.TotalStock - p.SoldQuantity
	return p
}

// SoldQuantity sums the quantities of the given ledger entries
func SoldQuantity(sales []*domain.Sale) int {
	total := 0
	for _, s := range sales {
		total += s.Quantity
	}
	return total
}

// Summarize folds stock levels into a fleet-wide summary. Levels missing
// their remaining stock are derived first.
func Summarize(levels []domain.StockLevel) domain.Summary {
	var summary domain.Summary
	for _, l := range levels {
		l = Derive(l.ProductID, l.TotalStock, l.SoldQuantity)
		summary.TotalProducts++
		summary.TotalStock += l.TotalStock
		summary.TotalSoldQuantity += l.SoldQuantity
		summary.TotalRemainingStock += l.RemainingStock
	}
	return summary
}

// Rank picks the best seller by quantity and by revenue independently.
// Ties go to the lowest product id. Both results are nil for an empty input.
func Rank(totals []domain.SaleTotal) (byQuantity, byRevenue *domain.SaleTotal) {
	for i := range totals {
		t := &totals[i]

		if byQuantity == nil ||
			t.Quantity > byQuantity.Quantity ||
			(t.Quantity == byQuantity.Quantity && lessID(t.ProductID, byQuantity.ProductID)) {
			byQuantity = t
		}

		if byRevenue == nil {
			byRevenue = t
			continue
		}
		switch t.Revenue.Cmp(byRevenue.Revenue) {
		case 1:
			byRevenue = t
		case 0:
			if lessID(t.ProductID, byRevenue.ProductID) {
				byRevenue = t
			}
		}
	}
	return byQuantity, byRevenue
}

func lessID(a, b uuid.UUID) bool {
	return bytes.Compare(a[:], b[:]) < 0
}
