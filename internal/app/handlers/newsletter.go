package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/lylastore/storefront/internal/auth/authmw"
	"github.com/lylastore/storefront/internal/service"
)

// SubscribeRequest — входной JSON подписки на рассылку
type SubscribeRequest struct {
	Email string `json:"email" validate:"omitempty,email"`
}

// NewsletterStatusHandler обрабатывает запрос GET /api/newsletter?email=|userId=.
// Достаточно любого из двух параметров; приоритет у userId.
func NewsletterStatusHandler(log *slog.Logger, newsletterService service.NewsletterService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.NewsletterStatusHandler"
		logger := log.With(slog.String("op", op))

		email := r.URL.Query().Get("email")
		var userID *int64
		if raw := r.URL.Query().Get("userId"); raw != "" {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				logger.Error("invalid userId query parameter")
				writeError(w, logger, http.StatusBadRequest, "invalid userId")
				return
			}
			userID = &id
		}
		if email == "" && userID == nil {
			writeError(w, logger, http.StatusBadRequest, "email or userId is required")
			return
		}

		status, err := newsletterService.Status(r.Context(), email, userID)
		if err != nil {
			logger.Error("failed to load subscription status", slog.Any("error", err))
			writeServiceError(w, logger, err)
			return
		}

		writeJSON(w, logger, http.StatusOK, status)
	}
}

// SubscribeHandler обрабатывает запрос POST /api/newsletter.
// Повторная подписка того же адреса не считается ошибкой.
func SubscribeHandler(log *slog.Logger, newsletterService service.NewsletterService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.SubscribeHandler"
		logger := log.With(slog.String("op", op))

		var req SubscribeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			writeError(w, logger, http.StatusBadRequest, "invalid request")
			return
		}
		if err := validate.Struct(req); err != nil {
			logger.Error("invalid request: validation error", slog.Any("error", err))
			writeError(w, logger, http.StatusBadRequest, "invalid email")
			return
		}

		var userID *int64
		if id, ok := authmw.FromContext(r.Context()); ok {
			userID = &id
		}
		if req.Email == "" && userID == nil {
			writeError(w, logger, http.StatusBadRequest, "email is required")
			return
		}

		sub, err := newsletterService.Subscribe(r.Context(), req.Email, userID)
		if err != nil {
			logger.Error("failed to subscribe", slog.Any("error", err))
			writeServiceError(w, logger, err)
			return
		}

		writeJSON(w, logger, http.StatusCreated, sub)
	}
}
