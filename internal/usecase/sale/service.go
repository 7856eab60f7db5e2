package sale

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/Pesokrava/bakery_ledger/internal/domain"
	"github.com/Pesokrava/bakery_ledger/internal/pkg/logger"
	pkgvalidator "github.com/Pesokrava/bakery_ledger/internal/pkg/validator"
)

// Service records sales against the catalog and lists the ledger
type Service struct {
	repo      domain.SaleRepository
	products  domain.ProductRepository
	publisher domain.EventPublisher
	validate  *validator.Validate
	logger    *logger.Logger
	now       func() time.Time
}

// NewService creates a new sale service. The publisher is optional.
func NewService(
	repo domain.SaleRepository,
	products domain.ProductRepository,
	publisher domain.EventPublisher,
	log *logger.Logger,
) *Service {
	return &Service{
		repo:      repo,
		products:  products,
		publisher: publisher,
		validate:  pkgvalidator.Get(),
		logger:    log,
		now:       time.Now,
	}
}

// Record admits a sale of quantity units. The stock check and the ledger
// append happen atomically in the repository; concurrent calls for the same
// product never both take the last unit.
func (s *Service) Record(ctx context.Context, productID uuid.UUID, quantity int) (*domain.Sale, error) {
	if _, err := s.products.GetByID(ctx, productID, false); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Debugf("Sale rejected, product not found: %s", productID)
		} else {
			s.logger.Error("Failed to resolve product for sale", err)
		}
		return nil, err
	}

	if err := s.validate.Var(quantity, "gt=0"); err != nil {
		s.logger.Debugf("Sale rejected, invalid quantity %d for product %s", quantity, productID)
		return nil, domain.ErrInvalidInput
	}

	sale, err := s.repo.Admit(ctx, productID, quantity, s.now().UTC())
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInsufficientStock):
			s.logger.WithFields(map[string]interface{}{
				"product_id": productID,
				"quantity":   quantity,
			}).Warnf("Sale rejected: %v", err)
		case errors.Is(err, domain.ErrNotFound):
			s.logger.Debugf("Sale rejected, product removed during admission: %s", productID)
		default:
			s.logger.Error("Failed to record sale", err)
		}
		return nil, err
	}

	s.publishEvent(sale)

	s.logger.WithFields(map[string]interface{}{
		"sale_id":      sale.ID,
		"product_id":   sale.ProductID,
		"quantity":     sale.Quantity,
		"total_amount": sale.TotalAmount.StringFixed(2),
	}).Info("Sale recorded successfully")

	return sale, nil
}

// List returns a page of the ledger, newest first, and the number of matching sales
func (s *Service) List(ctx context.Context, filter domain.SaleFilter, page domain.Page) ([]*domain.Sale, int, error) {
	if err := s.validate.Struct(page); err != nil {
		s.logger.Debugf("Invalid pagination: %v", err)
		return nil, 0, domain.ErrInvalidInput
	}
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		s.logger.Debugf("Invalid sale window: from %s is after to %s", filter.From, filter.To)
		return nil, 0, domain.ErrInvalidInput
	}

	sales, err := s.repo.List(ctx, filter, page.Limit, page.Offset())
	if err != nil {
		s.logger.Error("Failed to list sales", err)
		return nil, 0, err
	}

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to count sales", err)
		return nil, 0, err
	}

	return sales, total, nil
}

// publishEvent publishes a sale.recorded event in the background
func (s *Service) publishEvent(sale *domain.Sale) {
	if s.publisher == nil {
		return
	}

	data, err := json.Marshal(domain.Event{
		EventType: domain.EventSaleRecorded,
		Timestamp: time.Now().UTC(),
		ProductID: sale.ProductID,
		Sale:      sale,
	})
	if err != nil {
		s.logger.Errorf(err, "Failed to marshal event for sale %s", sale.ID)
		return
	}

	saleID := sale.ID
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.publisher.Publish(ctx, domain.SubjectSales, data); err != nil {
			s.logger.Errorf(err, "Failed to publish event for sale %s", saleID)
		}
	}()
}
