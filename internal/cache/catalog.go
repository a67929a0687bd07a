package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/lylastore/storefront/internal/domain/models"
	"github.com/redis/go-redis/v9"
)

const (
	featuredKey = "catalog:featured"
	saleKey     = "catalog:active_sale"
)

// CatalogCache — redis-кэш горячих чтений каталога: витрина и активная
// распродажа меняются редко, а читаются на каждой загрузке главной страницы.
type CatalogCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCatalogCache(client *redis.Client, ttl time.Duration) *CatalogCache {
	return &CatalogCache{client: client, ttl: ttl}
}

func (c *CatalogCache) GetFeatured(ctx context.Context) ([]*models.FeaturedProduct, bool, error) {
	data, err := c.client.Get(ctx, featuredKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var featured []*models.FeaturedProduct
	if err := json.Unmarshal(data, &featured); err != nil {
		return nil, false, err
	}
	return featured, true, nil
}

func (c *CatalogCache) SetFeatured(ctx context.Context, featured []*models.FeaturedProduct) error {
	data, err := json.Marshal(featured)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, featuredKey, data, c.ttl).Err()
}

// GetActiveSale различает «кэш пуст» и «закэшировано отсутствие распродажи»:
// во втором случае в redis лежит JSON null.
func (c *CatalogCache) GetActiveSale(ctx context.Context) (*models.StorewideSale, bool, error) {
	data, err := c.client.Get(ctx, saleKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var sale *models.StorewideSale
	if err := json.Unmarshal(data, &sale); err != nil {
		return nil, false, err
	}
	return sale, true, nil
}

func (c *CatalogCache) SetActiveSale(ctx context.Context, sale *models.StorewideSale) error {
	data, err := json.Marshal(sale)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, saleKey, data, c.ttl).Err()
}
