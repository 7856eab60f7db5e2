package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Pesokrava/bakery_ledger/internal/domain"
)

// RedisCache caches catalog rows by product id. Only catalog fields are
// stored; ledger-derived figures are always recomputed by the caller.
type RedisCache struct {
	client     *redis.Client
	productTTL time.Duration
}

// NewRedisCache creates a new Redis cache instance
func NewRedisCache(client *redis.Client, productTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:     client,
		productTTL: productTTL,
	}
}

func (c *RedisCache) productKey(productID uuid.UUID) string {
	return fmt.Sprintf("product:%s:catalog", productID.String())
}

// GetProduct retrieves a cached catalog row
func (c *RedisCache) GetProduct(ctx context.Context, productID uuid.UUID) (*domain.Product, error) {
	val, err := c.client.Get(ctx, c.productKey(productID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	var product domain.Product
	if err := json.Unmarshal(val, &product); err != nil {
		return nil, err
	}

	product.SoldQuantity = 0
	product.RemainingStock = 0
	return &product, nil
}

// SetProduct stores a catalog row
func (c *RedisCache) SetProduct(ctx context.Context, product *domain.Product) error {
	row := *product
	row.SoldQuantity = 0
	row.RemainingStock = 0

	data, err := json.Marshal(row)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, c.productKey(product.ID), data, c.productTTL).Err()
}

// InvalidateProduct removes a catalog row from the cache
func (c *RedisCache) InvalidateProduct(ctx context.Context, productID uuid.UUID) error {
	err := c.client.Del(ctx, c.productKey(productID)).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	return nil
}
