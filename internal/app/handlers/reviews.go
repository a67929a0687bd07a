package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/lylastore/storefront/internal/auth/authmw"
	"github.com/lylastore/storefront/internal/service"
)

// CreateReviewRequest — входной JSON создания отзыва
type CreateReviewRequest struct {
	OrderID   int64  `json:"orderId" validate:"required"`
	ProductID int64  `json:"productId" validate:"required"`
	Rating    int    `json:"rating" validate:"required"`
	Comment   string `json:"comment,omitempty"`
}

// ReviewCheckHandler обрабатывает запрос GET /api/reviews/check?orderId=.
// Возвращает список товаров заказа, по которым ещё нет отзыва.
func ReviewCheckHandler(log *slog.Logger, reviewService service.ReviewService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ReviewCheckHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := authmw.FromContext(r.Context())
		if !ok {
			logger.Error("userID not found in context")
			writeError(w, logger, http.StatusUnauthorized, service.ErrUnauthenticated.Error())
			return
		}

		orderID, err := strconv.ParseInt(r.URL.Query().Get("orderId"), 10, 64)
		if err != nil || orderID <= 0 {
			logger.Error("invalid orderId query parameter")
			writeError(w, logger, http.StatusBadRequest, "orderId is required")
			return
		}

		status, err := reviewService.CheckOrder(r.Context(), userID, orderID)
		if err != nil {
			logger.Error("review check failed", slog.Any("error", err))
			writeReviewError(w, logger, err)
			return
		}

		writeJSON(w, logger, http.StatusOK, status)
	}
}

// CreateReviewHandler обрабатывает запрос POST /api/reviews.
func CreateReviewHandler(log *slog.Logger, reviewService service.ReviewService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CreateReviewHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := authmw.FromContext(r.Context())
		if !ok {
			logger.Error("userID not found in context")
			writeError(w, logger, http.StatusUnauthorized, service.ErrUnauthenticated.Error())
			return
		}

		var req CreateReviewRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			writeError(w, logger, http.StatusBadRequest, "invalid request")
			return
		}
		if err := validate.Struct(req); err != nil {
			logger.Error("invalid request: validation error", slog.Any("error", err))
			writeError(w, logger, http.StatusBadRequest, "orderId, productId and rating are required")
			return
		}

		review, err := reviewService.CreateReview(r.Context(), userID, req.OrderID, req.ProductID, req.Rating, req.Comment)
		if err != nil {
			logger.Error("failed to create review", slog.Any("error", err))
			writeReviewError(w, logger, err)
			return
		}

		writeJSON(w, logger, http.StatusCreated, review)
	}
}

// writeReviewError переводит ошибки отзывов в HTTP-статусы.
func writeReviewError(w http.ResponseWriter, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrOrderNotReviewable):
		writeError(w, logger, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrProductNotInOrder):
		writeError(w, logger, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrInvalidRating):
		writeError(w, logger, http.StatusBadRequest, err.Error())
	default:
		writeServiceError(w, logger, err)
	}
}
