package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lylastore/storefront/internal/domain/models"
	"github.com/lylastore/storefront/internal/service"
	"github.com/stretchr/testify/assert"
)

type fakeCatalogCache struct {
	featured    []*models.FeaturedProduct
	hasFeatured bool
	sale        *models.StorewideSale
	hasSale     bool
	failReads   bool

	setFeaturedCalls int
	setSaleCalls     int
}

var _ service.CatalogCache = (*fakeCatalogCache)(nil)

func (f *fakeCatalogCache) GetFeatured(ctx context.Context) ([]*models.FeaturedProduct, bool, error) {
	if f.failReads {
		return nil, false, errors.New("redis down")
	}
	return f.featured, f.hasFeatured, nil
}

func (f *fakeCatalogCache) SetFeatured(ctx context.Context, featured []*models.FeaturedProduct) error {
	f.featured = featured
	f.hasFeatured = true
	f.setFeaturedCalls++
	return nil
}

func (f *fakeCatalogCache) GetActiveSale(ctx context.Context) (*models.StorewideSale, bool, error) {
	if f.failReads {
		return nil, false, errors.New("redis down")
	}
	return f.sale, f.hasSale, nil
}

func (f *fakeCatalogCache) SetActiveSale(ctx context.Context, sale *models.StorewideSale) error {
	f.sale = sale
	f.hasSale = true
	f.setSaleCalls++
	return nil
}

func TestCatalogService_FeaturedProducts_WarmsCache(t *testing.T) {
	catalogRepo := newFakeCatalogRepo()
	catalogRepo.featured = []*models.FeaturedProduct{
		{ID: 1, Product: models.Product{ID: 10, Name: "hoodie", Price: 60.00}, CreatedAt: time.Now()},
	}
	cache := &fakeCatalogCache{}

	svc := service.NewCatalogService(testLogger(), catalogRepo, cache)

	// Первый запрос — промах кэша, чтение из БД и прогрев
	featured, err := svc.FeaturedProducts(context.Background())
	assert.NoError(t, err)
	assert.Len(t, featured, 1)
	assert.Equal(t, 1, cache.setFeaturedCalls)

	// Второй запрос обслуживается из кэша, БД мог бы уже отдать другое
	catalogRepo.featured = nil
	featured, err = svc.FeaturedProducts(context.Background())
	assert.NoError(t, err)
	assert.Len(t, featured, 1)
	assert.Equal(t, 1, cache.setFeaturedCalls, "Cache hit should not rewrite the cache")
}

func TestCatalogService_FeaturedProducts_CacheFailureFallsThrough(t *testing.T) {
	catalogRepo := newFakeCatalogRepo()
	catalogRepo.featured = []*models.FeaturedProduct{
		{ID: 1, Product: models.Product{ID: 10, Name: "hoodie"}},
	}
	cache := &fakeCatalogCache{failReads: true}

	svc := service.NewCatalogService(testLogger(), catalogRepo, cache)

	featured, err := svc.FeaturedProducts(context.Background())
	assert.NoError(t, err, "Cache errors must not fail the request")
	assert.Len(t, featured, 1)
}

func TestCatalogService_FeaturedProducts_NoCache(t *testing.T) {
	catalogRepo := newFakeCatalogRepo()
	svc := service.NewCatalogService(testLogger(), catalogRepo, nil)

	featured, err := svc.FeaturedProducts(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, featured)
}

func TestCatalogService_ActiveSale_None(t *testing.T) {
	svc := service.NewCatalogService(testLogger(), newFakeCatalogRepo(), nil)

	sale, err := svc.ActiveSale(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, sale, "No active sale is not an error")
}

func TestCatalogService_ActiveSale_FromCache(t *testing.T) {
	catalogRepo := newFakeCatalogRepo()
	catalogRepo.sale = &models.StorewideSale{ID: 1, DiscountPercent: 20, IsActive: true}
	cache := &fakeCatalogCache{}

	svc := service.NewCatalogService(testLogger(), catalogRepo, cache)

	sale, err := svc.ActiveSale(context.Background())
	assert.NoError(t, err)
	assert.NotNil(t, sale)
	assert.Equal(t, 1, cache.setSaleCalls)

	catalogRepo.sale = nil
	sale, err = svc.ActiveSale(context.Background())
	assert.NoError(t, err)
	assert.NotNil(t, sale, "Second read comes from the cache")
}
