package product

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/Pesokrava/bakery_ledger/internal/domain"
	"github.com/Pesokrava/bakery_ledger/internal/pkg/logger"
	pkgvalidator "github.com/Pesokrava/bakery_ledger/internal/pkg/validator"
	"github.com/Pesokrava/bakery_ledger/internal/readmodel"
)

// Cache stores catalog rows by id
type Cache interface {
	GetProduct(ctx context.Context, productID uuid.UUID) (*domain.Product, error)
	SetProduct(ctx context.Context, product *domain.Product) error
	InvalidateProduct(ctx context.Context, productID uuid.UUID) error
}

// Service handles product catalog business logic. Cache and publisher are optional.
type Service struct {
	repo      domain.ProductRepository
	cache     Cache
	publisher domain.EventPublisher
	validate  *validator.Validate
	logger    *logger.Logger
}

// NewService creates a new product service
func NewService(
	repo domain.ProductRepository,
	cache Cache,
	publisher domain.EventPublisher,
	log *logger.Logger,
) *Service {
	return &Service{
		repo:      repo,
		cache:     cache,
		publisher: publisher,
		validate:  pkgvalidator.Get(),
		logger:    log,
	}
}

// Create creates a new product
func (s *Service) Create(ctx context.Context, product *domain.Product) error {
	product.Name = strings.TrimSpace(product.Name)
	if err := s.validateProduct(product); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, product); err != nil {
		s.logger.Error("Failed to create product", err)
		return err
	}
	readmodel.Apply(product)

	s.cacheProduct(ctx, product)
	s.publishEvent(domain.EventProductCreated, product)

	s.logger.WithFields(map[string]interface{}{
		"product_id":  product.ID,
		"name":        product.Name,
		"total_stock": product.TotalStock,
	}).Info("Product created successfully")

	return nil
}

// GetByID retrieves a non-deleted product merged with its current stock figures
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	if product := s.fromCache(ctx, id); product != nil {
		return product, nil
	}

	product, err := s.repo.GetByID(ctx, id, false)
	if err != nil {
		s.logLookupError(id, err)
		return nil, err
	}

	s.cacheProduct(ctx, product)
	return readmodel.Apply(product), nil
}

// GetByIDIncludingDeleted resolves a product even after soft deletion,
// for displaying historical sales
func (s *Service) GetByIDIncludingDeleted(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	product, err := s.repo.GetByID(ctx, id, true)
	if err != nil {
		s.logLookupError(id, err)
		return nil, err
	}

	return readmodel.Apply(product), nil
}

// List retrieves a page of non-deleted products ordered by name
func (s *Service) List(ctx context.Context, page domain.Page) ([]*domain.Product, int, error) {
	if err := s.validate.Struct(page); err != nil {
		s.logger.Debugf("Invalid pagination: %v", err)
		return nil, 0, domain.ErrInvalidInput
	}

	products, err := s.repo.List(ctx, page.Limit, page.Offset())
	if err != nil {
		s.logger.Error("Failed to list products", err)
		return nil, 0, err
	}

	total, err := s.repo.Count(ctx)
	if err != nil {
		s.logger.Error("Failed to count products", err)
		return nil, 0, err
	}

	for _, p := range products {
		readmodel.Apply(p)
	}

	return products, total, nil
}

// Update applies a partial update. Shrinking total stock below the sold
// quantity fails with domain.ErrConflict.
func (s *Service) Update(ctx context.Context, id uuid.UUID, update domain.ProductUpdate) (*domain.Product, error) {
	if update.IsEmpty() {
		s.logger.Debugf("Empty update for product %s", id)
		return nil, domain.ErrInvalidInput
	}

	product, err := s.repo.GetByID(ctx, id, false)
	if err != nil {
		s.logLookupError(id, err)
		return nil, err
	}

	update.ApplyTo(product)
	product.Name = strings.TrimSpace(product.Name)
	if err := s.validateProduct(product); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, product); err != nil {
		if errors.Is(err, domain.ErrConflict) || errors.Is(err, domain.ErrNotFound) {
			s.logger.WithFields(map[string]interface{}{
				"product_id":  id,
				"total_stock": product.TotalStock,
			}).Warnf("Product update rejected: %v", err)
		} else {
			s.logger.Error("Failed to update product", err)
		}
		return nil, err
	}
	readmodel.Apply(product)

	s.invalidate(ctx, id)
	s.publishEvent(domain.EventProductUpdated, product)

	s.logger.WithFields(map[string]interface{}{
		"product_id": product.ID,
		"version":    product.Version,
	}).Info("Product updated successfully")

	return product, nil
}

// Delete soft-deletes a product. Its sales remain in the ledger.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		s.logLookupError(id, err)
		return err
	}

	s.invalidate(ctx, id)
	s.publishEvent(domain.EventProductDeleted, &domain.Product{ID: id})

	s.logger.WithFields(map[string]interface{}{
		"product_id": id,
	}).Info("Product deleted successfully")

	return nil
}

func (s *Service) validateProduct(product *domain.Product) error {
	if err := s.validate.Struct(product); err != nil {
		s.logger.Error("Product validation failed", err)
		return domain.ErrInvalidInput
	}
	if !pkgvalidator.HasAtMostTwoDecimals(product.Price) {
		s.logger.Debugf("Product price %s has more than two decimals", product.Price)
		return domain.ErrInvalidInput
	}
	return nil
}

// fromCache returns the cached catalog row merged with a fresh ledger sum,
// or nil when the cache misses or the row was written since it was cached
func (s *Service) fromCache(ctx context.Context, id uuid.UUID) *domain.Product {
	if s.cache == nil {
		return nil
	}

	product, err := s.cache.GetProduct(ctx, id)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Warnf("Failed to read product %s from cache: %v", id, err)
		}
		return nil
	}

	state, err := s.repo.StockState(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.invalidate(ctx, id)
		} else {
			s.logger.Warnf("Failed to read stock state for product %s: %v", id, err)
		}
		return nil
	}

	// Update and Delete bump the version
	if state.Version != product.Version {
		s.logger.Debugf("Stale cache entry for product %s: version %d, current %d", id, product.Version, state.Version)
		s.invalidate(ctx, id)
		return nil
	}

	s.logger.Debugf("Cache hit for product %s", id)
	product.SoldQuantity = state.SoldQuantity
	return readmodel.Apply(product)
}

func (s *Service) cacheProduct(ctx context.Context, product *domain.Product) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetProduct(ctx, product); err != nil {
		s.logger.Warnf("Failed to cache product %s: %v", product.ID, err)
	}
}

func (s *Service) invalidate(ctx context.Context, id uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateProduct(ctx, id); err != nil {
		s.logger.Warnf("Failed to invalidate cache for product %s: %v", id, err)
	}
}

func (s *Service) logLookupError(id uuid.UUID, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		s.logger.Debugf("Product not found: %s", id)
		return
	}
	s.logger.Error("Failed to get product", err)
}

// publishEvent publishes a catalog event in the background
func (s *Service) publishEvent(eventType string, product *domain.Product) {
	if s.publisher == nil {
		return
	}

	data, err := json.Marshal(domain.Event{
		EventType: eventType,
		Timestamp: time.Now().UTC(),
		ProductID: product.ID,
		Product:   product,
	})
	if err != nil {
		s.logger.Errorf(err, "Failed to marshal event for product %s", product.ID)
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.publisher.Publish(ctx, domain.SubjectProducts, data); err != nil {
			s.logger.Errorf(err, "Failed to publish %s for product %s", eventType, product.ID)
		}
	}()
}
