package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/lylastore/storefront/internal/auth/authmw"
	"github.com/lylastore/storefront/internal/service"
)

// ValidatePromoRequest — входной JSON проверки промокода
type ValidatePromoRequest struct {
	Code       string  `json:"code" validate:"required"`
	OrderTotal float64 `json:"orderTotal" validate:"gte=0"`
}

// ValidatePromoResponse — ответ с параметрами скидки без её применения
type ValidatePromoResponse struct {
	Code           string  `json:"code"`
	DiscountType   string  `json:"discountType"`
	DiscountValue  float64 `json:"discountValue"`
	DiscountAmount float64 `json:"discountAmount"`
}

// ValidatePromoHandler обрабатывает запрос POST /api/promo/validate.
// Проверка не создаёт записи об использовании: окончательная фиксация
// промокода происходит только при оформлении заказа.
func ValidatePromoHandler(log *slog.Logger, promoService service.PromoService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ValidatePromoHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := authmw.FromContext(r.Context())
		if !ok {
			logger.Error("userID not found in context")
			writeError(w, logger, http.StatusUnauthorized, service.ErrUnauthenticated.Error())
			return
		}

		var req ValidatePromoRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			writeError(w, logger, http.StatusBadRequest, "invalid request")
			return
		}
		if err := validate.Struct(req); err != nil {
			logger.Error("invalid request: validation error", slog.Any("error", err))
			writeError(w, logger, http.StatusBadRequest, "promo code is required")
			return
		}

		result, err := promoService.Validate(r.Context(), req.Code, userID, req.OrderTotal)
		if err != nil {
			logger.Warn("promo validation failed", slog.String("code", req.Code), slog.Any("error", err))
			writeServiceError(w, logger, err)
			return
		}

		writeJSON(w, logger, http.StatusOK, ValidatePromoResponse{
			Code:           result.Promo.Code,
			DiscountType:   result.Promo.DiscountType,
			DiscountValue:  result.Promo.DiscountValue,
			DiscountAmount: result.DiscountAmount,
		})
	}
}
