package handlers

import (
	"log/slog"
	"net/http"

	"github.com/lylastore/storefront/internal/service"
)

// FeaturedProductsHandler обрабатывает запрос GET /api/products/featured.
func FeaturedProductsHandler(log *slog.Logger, catalogService service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.FeaturedProductsHandler"
		logger := log.With(slog.String("op", op))

		products, err := catalogService.FeaturedProducts(r.Context())
		if err != nil {
			logger.Error("failed to load featured products", slog.Any("error", err))
			writeServiceError(w, logger, err)
			return
		}

		writeJSON(w, logger, http.StatusOK, products)
	}
}

// CategoriesHandler обрабатывает запрос GET /api/categories.
func CategoriesHandler(log *slog.Logger, catalogService service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CategoriesHandler"
		logger := log.With(slog.String("op", op))

		categories, err := catalogService.Categories(r.Context())
		if err != nil {
			logger.Error("failed to load categories", slog.Any("error", err))
			writeServiceError(w, logger, err)
			return
		}

		writeJSON(w, logger, http.StatusOK, categories)
	}
}

// ActiveSaleResponse — действующая распродажа либо null, если её нет
type ActiveSaleResponse struct {
	Sale any `json:"sale"`
}

// ActiveSaleHandler обрабатывает запрос GET /api/sale.
func ActiveSaleHandler(log *slog.Logger, catalogService service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ActiveSaleHandler"
		logger := log.With(slog.String("op", op))

		sale, err := catalogService.ActiveSale(r.Context())
		if err != nil {
			logger.Error("failed to load active sale", slog.Any("error", err))
			writeServiceError(w, logger, err)
			return
		}

		resp := ActiveSaleResponse{}
		if sale != nil {
			resp.Sale = sale
		}
		writeJSON(w, logger, http.StatusOK, resp)
	}
}
