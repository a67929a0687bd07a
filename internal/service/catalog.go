package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lylastore/storefront/internal/domain/models"
	"github.com/lylastore/storefront/internal/storage"
)

// CatalogCache — кэш горячих чтений каталога. Промах — (nil, false, nil).
// Реализуется поверх redis (internal/cache); может отсутствовать (nil).
type CatalogCache interface {
	GetFeatured(ctx context.Context) ([]*models.FeaturedProduct, bool, error)
	SetFeatured(ctx context.Context, featured []*models.FeaturedProduct) error
	GetActiveSale(ctx context.Context) (*models.StorewideSale, bool, error)
	SetActiveSale(ctx context.Context, sale *models.StorewideSale) error
}

// CatalogService определяет интерфейс чтения витрины, категорий и распродажи.
type CatalogService interface {
	FeaturedProducts(ctx context.Context) ([]*models.FeaturedProduct, error)
	Categories(ctx context.Context) ([]*models.Category, error)
	ActiveSale(ctx context.Context) (*models.StorewideSale, error)
}

type catalogService struct {
	log         *slog.Logger
	catalogRepo storage.CatalogStorage
	cache       CatalogCache // nil, если кэш отключён в конфигурации
}

func NewCatalogService(log *slog.Logger, catalogRepo storage.CatalogStorage, cache CatalogCache) CatalogService {
	return &catalogService{log: log, catalogRepo: catalogRepo, cache: cache}
}

// FeaturedProducts отдаёт витрину сквозь кэш: промах читает БД и прогревает кэш.
// Ошибки кэша не роняют запрос — чтение уходит в БД.
func (s *catalogService) FeaturedProducts(ctx context.Context) ([]*models.FeaturedProduct, error) {
	const op = "service.CatalogService.FeaturedProducts"

	if s.cache != nil {
		featured, ok, err := s.cache.GetFeatured(ctx)
		if err != nil {
			s.log.Warn("featured cache read failed", slog.String("op", op), slog.Any("error", err))
		} else if ok {
			return featured, nil
		}
	}

	featured, err := s.catalogRepo.ListFeaturedProducts(ctx)
	if err != nil {
		s.log.Error("failed to list featured products", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if s.cache != nil {
		if err := s.cache.SetFeatured(ctx, featured); err != nil {
			s.log.Warn("featured cache write failed", slog.String("op", op), slog.Any("error", err))
		}
	}
	return featured, nil
}

func (s *catalogService) Categories(ctx context.Context) ([]*models.Category, error) {
	const op = "service.CatalogService.Categories"
	categories, err := s.catalogRepo.ListCategories(ctx)
	if err != nil {
		s.log.Error("failed to list categories", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return categories, nil
}

// ActiveSale возвращает действующую общемагазинную распродажу (nil, если её нет).
func (s *catalogService) ActiveSale(ctx context.Context) (*models.StorewideSale, error) {
	const op = "service.CatalogService.ActiveSale"

	if s.cache != nil {
		sale, ok, err := s.cache.GetActiveSale(ctx)
		if err != nil {
			s.log.Warn("sale cache read failed", slog.String("op", op), slog.Any("error", err))
		} else if ok {
			return sale, nil
		}
	}

	sale, err := s.catalogRepo.GetActiveSale(ctx)
	if err != nil {
		s.log.Error("failed to get active sale", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if s.cache != nil {
		if err := s.cache.SetActiveSale(ctx, sale); err != nil {
			s.log.Warn("sale cache write failed", slog.String("op", op), slog.Any("error", err))
		}
	}
	return sale, nil
}
