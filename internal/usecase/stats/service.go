package stats

import (
	"context"
	"errors"
	"time"

	"github.com/Pesokrava/bakery_ledger/internal/domain"
	"github.com/Pesokrava/bakery_ledger/internal/pkg/logger"
	"github.com/Pesokrava/bakery_ledger/internal/readmodel"
)

// Service computes inventory aggregates from the catalog and the ledger
type Service struct {
	repo     domain.StatsRepository
	products domain.ProductRepository
	logger   *logger.Logger
}

// NewService creates a new stats service
func NewService(repo domain.StatsRepository, products domain.ProductRepository, log *logger.Logger) *Service {
	return &Service{
		repo:     repo,
		products: products,
		logger:   log,
	}
}

// Summary returns store-wide totals over all non-deleted products
func (s *Service) Summary(ctx context.Context) (*domain.Summary, error) {
	levels, err := s.repo.StockLevels(ctx)
	if err != nil {
		s.logger.Error("Failed to load stock levels", err)
		return nil, err
	}

	summary := readmodel.Summarize(levels)
	return &summary, nil
}

// BestSellers returns the top product by quantity and by revenue for sales
// inside [from, to]. Either bound may be nil. Both results are nil when the
// window holds no sales.
func (s *Service) BestSellers(ctx context.Context, from, to *time.Time) (*domain.BestSellers, error) {
	if from != nil && to != nil && from.After(*to) {
		s.logger.Debugf("Invalid best-seller window: from %s is after to %s", from, to)
		return nil, domain.ErrInvalidInput
	}

	totals, err := s.repo.SaleTotals(ctx, from, to)
	if err != nil {
		s.logger.Error("Failed to aggregate sales", err)
		return nil, err
	}

	byQuantity, byRevenue := readmodel.Rank(totals)

	result := &domain.BestSellers{}
	if result.BestByQuantity, err = s.resolve(ctx, byQuantity); err != nil {
		return nil, err
	}
	if result.BestByRevenue, err = s.resolve(ctx, byRevenue); err != nil {
		return nil, err
	}

	return result, nil
}

func (s *Service) resolve(ctx context.Context, total *domain.SaleTotal) (*domain.BestSeller, error) {
	if total == nil {
		return nil, nil
	}

	product, err := s.products.GetByID(ctx, total.ProductID, true)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Totals only reference rows that exist; a miss means the store is inconsistent
			s.logger.Errorf(err, "Best seller %s missing from catalog", total.ProductID)
			return nil, domain.ErrInternal
		}
		s.logger.Errorf(err, "Failed to resolve best seller %s", total.ProductID)
		return nil, err
	}

	return newBestSeller(product, total), nil
}

func newBestSeller(p *domain.Product, total *domain.SaleTotal) *domain.BestSeller {
	return &domain.BestSeller{
		ProductID:     p.ID,
		Name:          p.Name,
		Price:         p.Price,
		TotalQuantity: total.Quantity,
		TotalRevenue:  total.Revenue,
	}
}
