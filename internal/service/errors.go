package service

import "errors"

// Ошибки чекаута и валидации промокодов. Хендлеры различают их через errors.Is
// и отдают клиенту отдельное человекочитаемое сообщение для каждой.
var (
	ErrUnauthenticated           = errors.New("authentication required")
	ErrEmptyCart                 = errors.New("cart is empty")
	ErrInvalidPromoCode          = errors.New("invalid promo code")
	ErrPromoInactive             = errors.New("promo code is not active")
	ErrPromoExpired              = errors.New("promo code has expired")
	ErrPromoUsageLimitExceeded   = errors.New("promo code usage limit exceeded")
	ErrPromoPerUserLimitExceeded = errors.New("promo code already used the maximum number of times")
	ErrTotalMismatch             = errors.New("total amount mismatch")
	ErrMissingShippingFields     = errors.New("missing required shipping fields")
	// ErrOrderCreationFailed — обобщённая ошибка для сбоев внутри транзакции:
	// наружу не утекают детали БД, корзина остаётся нетронутой.
	ErrOrderCreationFailed = errors.New("failed to create order")

	ErrInvalidCredentials = errors.New("invalid email or password")
)
