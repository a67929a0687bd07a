package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/lylastore/storefront/internal/auth/authmw"
	"github.com/lylastore/storefront/internal/service"
)

// AddCartItemRequest — входной JSON добавления товара в корзину
type AddCartItemRequest struct {
	ProductID int64   `json:"productId" validate:"required"`
	Quantity  int     `json:"quantity" validate:"required,gt=0"`
	Size      *string `json:"size,omitempty"`
}

// UpdateCartItemRequest — входной JSON изменения количества
type UpdateCartItemRequest struct {
	CartItemID int64 `json:"cartItemId" validate:"required"`
	Quantity   int   `json:"quantity"`
}

// GetCartHandler обрабатывает запрос GET /api/cart
func GetCartHandler(log *slog.Logger, cartService service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.GetCartHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := authmw.FromContext(r.Context())
		if !ok {
			logger.Error("userID not found in context")
			writeError(w, logger, http.StatusUnauthorized, "unauthorized")
			return
		}

		view, err := cartService.GetCart(r.Context(), userID)
		if err != nil {
			logger.Error("failed to get cart", slog.Any("error", err))
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, view)
	}
}

// AddCartItemHandler обрабатывает запрос POST /api/cart/items
func AddCartItemHandler(log *slog.Logger, cartService service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.AddCartItemHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := authmw.FromContext(r.Context())
		if !ok {
			logger.Error("userID not found in context")
			writeError(w, logger, http.StatusUnauthorized, "unauthorized")
			return
		}

		var req AddCartItemRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			writeError(w, logger, http.StatusBadRequest, "invalid request")
			return
		}
		if err := validate.Struct(req); err != nil {
			logger.Error("invalid request: validation error", slog.Any("error", err))
			writeError(w, logger, http.StatusBadRequest, "validation error")
			return
		}

		view, err := cartService.AddItem(r.Context(), userID, req.ProductID, req.Quantity, req.Size)
		if err != nil {
			logger.Error("failed to add item", slog.Any("error", err))
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, view)
	}
}

// UpdateCartItemHandler обрабатывает запрос PUT /api/cart/items.
// Количество <= 0 удаляет позицию.
func UpdateCartItemHandler(log *slog.Logger, cartService service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.UpdateCartItemHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := authmw.FromContext(r.Context())
		if !ok {
			logger.Error("userID not found in context")
			writeError(w, logger, http.StatusUnauthorized, "unauthorized")
			return
		}

		var req UpdateCartItemRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			writeError(w, logger, http.StatusBadRequest, "invalid request")
			return
		}
		if err := validate.Struct(req); err != nil {
			logger.Error("invalid request: validation error", slog.Any("error", err))
			writeError(w, logger, http.StatusBadRequest, "validation error")
			return
		}

		view, err := cartService.UpdateItem(r.Context(), userID, req.CartItemID, req.Quantity)
		if err != nil {
			logger.Error("failed to update item", slog.Any("error", err))
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, view)
	}
}

// DeleteCartItemHandler обрабатывает запрос DELETE /api/cart/items?cartItemId=N
func DeleteCartItemHandler(log *slog.Logger, cartService service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.DeleteCartItemHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := authmw.FromContext(r.Context())
		if !ok {
			logger.Error("userID not found in context")
			writeError(w, logger, http.StatusUnauthorized, "unauthorized")
			return
		}

		itemID, err := strconv.ParseInt(r.URL.Query().Get("cartItemId"), 10, 64)
		if err != nil {
			writeError(w, logger, http.StatusBadRequest, "cartItemId is required")
			return
		}

		view, err := cartService.RemoveItem(r.Context(), userID, itemID)
		if err != nil {
			logger.Error("failed to remove item", slog.Any("error", err))
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, view)
	}
}
