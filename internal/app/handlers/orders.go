package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/lylastore/storefront/internal/auth/authmw"
	"github.com/lylastore/storefront/internal/service"
)

// ListOrdersHandler обрабатывает запрос GET /api/orders?page=&limit=.
// Возвращает заказы пользователя постранично, от новых к старым.
func ListOrdersHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ListOrdersHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := authmw.FromContext(r.Context())
		if !ok {
			logger.Error("userID not found in context")
			writeError(w, logger, http.StatusUnauthorized, service.ErrUnauthenticated.Error())
			return
		}

		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

		result, err := orderService.ListOrders(r.Context(), userID, page, limit)
		if err != nil {
			logger.Error("failed to list orders", slog.Any("error", err))
			writeServiceError(w, logger, err)
			return
		}

		writeJSON(w, logger, http.StatusOK, result)
	}
}
