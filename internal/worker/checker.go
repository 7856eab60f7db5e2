package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Pesokrava/bakery_ledger/internal/domain"
	"github.com/Pesokrava/bakery_ledger/internal/pkg/logger"
	"github.com/Pesokrava/bakery_ledger/internal/readmodel"
)

// Alert levels
const (
	AlertLowStock   = "low_stock"
	AlertOutOfStock = "out_of_stock"
)

// Alert describes a product whose remaining stock reached the threshold
type Alert struct {
	Level string
	Stock domain.StockLevel
	Name  string
}

// Checker re-derives a product's stock level from the catalog and the ledger
type Checker struct {
	products  domain.ProductRepository
	threshold int
	logger    *logger.Logger
}

// NewChecker creates a new stock checker. Products whose remaining stock is
// at or below threshold raise an alert.
func NewChecker(products domain.ProductRepository, threshold int, logger *logger.Logger) *Checker {
	return &Checker{
		products:  products,
		threshold: threshold,
		logger:    logger,
	}
}

// Check returns an alert when the product is low on or out of stock, nil otherwise.
// Deleted or unknown products are skipped.
func (c *Checker) Check(ctx context.Context, productID uuid.UUID) (*Alert, error) {
	product, err := c.products.GetByID(ctx, productID, false)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.logger.WithFields(map[string]any{
				"product_id": productID.String(),
			}).Info("Product not found or deleted, skipping stock check")
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load product stock: %w", err)
	}

	level := readmodel.Derive(product.ID, product.TotalStock, product.SoldQuantity)

	var alert *Alert
	switch {
	case level.RemainingStock == 0:
		alert = &Alert{Level: AlertOutOfStock, Stock: level, Name: product.Name}
	case level.RemainingStock <= c.threshold:
		alert = &Alert{Level: AlertLowStock, Stock: level, Name: product.Name}
	}

	fields := map[string]any{
		"product_id":      productID.String(),
		"name":            product.Name,
		"total_stock":     level.TotalStock,
		"sold_quantity":   level.SoldQuantity,
		"remaining_stock": level.RemainingStock,
	}
	if alert == nil {
		c.logger.WithFields(fields).Debug("Stock level ok")
		return nil, nil
	}

	fields["alert"] = alert.Level
	if alert.Level == AlertOutOfStock {
		c.logger.WithFields(fields).Warn("Product is out of stock")
	} else {
		c.logger.WithFields(fields).Warnf("Product stock at or below %d", c.threshold)
	}

	return alert, nil
}
