package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/lylastore/storefront/internal/service"
	"github.com/lylastore/storefront/internal/storage"
)

var validate = validator.New()

// ErrorResponse — единый формат JSON-ошибки
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, log *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("failed to encode response", slog.Any("error", err))
	}
}

func writeError(w http.ResponseWriter, log *slog.Logger, status int, msg string) {
	writeJSON(w, log, status, ErrorResponse{Error: msg})
}

// checkoutErrors — бизнес-отказы оформления заказа, каждому соответствует
// своё сообщение и статус 400. Всё остальное — 500 с обобщённым текстом.
var checkoutErrors = []error{
	service.ErrEmptyCart,
	service.ErrInvalidPromoCode,
	service.ErrPromoInactive,
	service.ErrPromoExpired,
	service.ErrPromoUsageLimitExceeded,
	service.ErrPromoPerUserLimitExceeded,
	service.ErrTotalMismatch,
	service.ErrMissingShippingFields,
}

// writeServiceError отображает ошибку сервиса на HTTP-статус и JSON-сообщение.
func writeServiceError(w http.ResponseWriter, log *slog.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		writeError(w, log, http.StatusUnauthorized, service.ErrUnauthenticated.Error())
		return
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, log, http.StatusUnauthorized, service.ErrInvalidCredentials.Error())
		return
	case errors.Is(err, storage.ErrProductNotFound),
		errors.Is(err, storage.ErrCartItemNotFound),
		errors.Is(err, storage.ErrOrderNotFound):
		writeError(w, log, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, storage.ErrAlreadyReviewed):
		writeError(w, log, http.StatusConflict, err.Error())
		return
	}
	for _, target := range checkoutErrors {
		if errors.Is(err, target) {
			writeError(w, log, http.StatusBadRequest, target.Error())
			return
		}
	}
	if errors.Is(err, service.ErrOrderCreationFailed) {
		writeError(w, log, http.StatusInternalServerError, service.ErrOrderCreationFailed.Error())
		return
	}
	writeError(w, log, http.StatusInternalServerError, "internal server error")
}
