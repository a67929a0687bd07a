package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/lylastore/storefront/internal/auth/authmw"
	"github.com/lylastore/storefront/internal/domain/models"
	"github.com/lylastore/storefront/internal/payment"
	"github.com/lylastore/storefront/internal/service"
)

// CreateOrderRequest — входной JSON оформления заказа
type CreateOrderRequest struct {
	ShippingInfo     models.ShippingInfo `json:"shippingInfo" validate:"required"`
	PaymentReference string              `json:"paymentReference" validate:"required"`
	TotalAmount      float64             `json:"totalAmount" validate:"gte=0"`
	PromoCode        string              `json:"promoCode,omitempty"`
}

// CreateOrderResponse — ответ с созданным заказом
type CreateOrderResponse struct {
	Order *models.Order `json:"order"`
}

// CreateOrderHandler обрабатывает запрос POST /api/orders.
// Сначала подтверждается оплата по ссылке на платёж, и только затем
// вызывается оформление заказа: заказ без подтверждённой оплаты не создаётся.
func CreateOrderHandler(log *slog.Logger, checkoutService service.CheckoutService, verifier payment.Verifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CreateOrderHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := authmw.FromContext(r.Context())
		if !ok {
			logger.Error("userID not found in context")
			writeError(w, logger, http.StatusUnauthorized, service.ErrUnauthenticated.Error())
			return
		}

		var req CreateOrderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			writeError(w, logger, http.StatusBadRequest, "invalid request")
			return
		}
		if err := validate.Struct(req); err != nil {
			logger.Error("invalid request: validation error", slog.Any("error", err))
			writeError(w, logger, http.StatusBadRequest, "missing required fields: shippingInfo, paymentReference")
			return
		}

		verification, err := verifier.Verify(r.Context(), req.PaymentReference)
		if err != nil {
			logger.Error("payment verification error", slog.Any("error", err))
			writeError(w, logger, http.StatusBadGateway, "payment verification failed")
			return
		}
		if !verification.Success {
			logger.Warn("payment not verified", slog.String("reference", req.PaymentReference))
			writeError(w, logger, http.StatusBadRequest, "payment verification failed")
			return
		}

		order, err := checkoutService.PlaceOrder(r.Context(), userID, service.PlaceOrderRequest{
			Shipping:         req.ShippingInfo,
			PaymentReference: req.PaymentReference,
			TotalAmount:      req.TotalAmount,
			PromoCode:        req.PromoCode,
		})
		if err != nil {
			logger.Error("checkout failed", slog.Any("error", err))
			writeServiceError(w, logger, err)
			return
		}

		writeJSON(w, logger, http.StatusCreated, CreateOrderResponse{Order: order})
	}
}
