package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/lylastore/storefront/internal/domain/models"
	"github.com/lylastore/storefront/internal/storage"
)

// PromoResult — результат успешной валидации промокода.
type PromoResult struct {
	Promo          *models.PromoCode
	DiscountAmount float64
}

// PromoService определяет интерфейс валидации промокода без побочных эффектов.
// Запись о применении создаётся только при успешном оформлении заказа.
type PromoService interface {
	Validate(ctx context.Context, code string, userID int64, subtotal float64) (*PromoResult, error)
}

type promoService struct {
	log       *slog.Logger
	promoRepo storage.PromoStorage
}

func NewPromoService(log *slog.Logger, promoRepo storage.PromoStorage) PromoService {
	return &promoService{log: log, promoRepo: promoRepo}
}

// NormalizePromoCode приводит код к каноническому виду: верхний регистр без краевых пробелов.
func NormalizePromoCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// checkRedeemable проверяет активность, срок действия и лимиты промокода.
// usages и userUsages — уже подсчитанные количества применений.
func checkRedeemable(promo *models.PromoCode, now time.Time, usages, userUsages int) error {
	if !promo.IsActive {
		return ErrPromoInactive
	}
	if promo.ExpiresAt != nil && promo.ExpiresAt.Before(now) {
		return ErrPromoExpired
	}
	if promo.UsageLimit != nil && usages >= *promo.UsageLimit {
		return ErrPromoUsageLimitExceeded
	}
	if promo.PerUserLimit != nil && userUsages >= *promo.PerUserLimit {
		return ErrPromoPerUserLimitExceeded
	}
	return nil
}

// computeDiscount вычисляет скидку: процент от подытога либо фиксированная сумма.
// Скидка никогда не превышает подытог — отрицательных итогов не бывает.
func computeDiscount(promo *models.PromoCode, subtotal float64) float64 {
	var discount float64
	if promo.DiscountType == models.DiscountTypePercentage {
		discount = subtotal * promo.DiscountValue / 100
	} else {
		discount = promo.DiscountValue
	}
	return math.Min(discount, subtotal)
}

// Validate проверяет промокод против подытога корзины. Побочных эффектов нет.
func (s *promoService) Validate(ctx context.Context, code string, userID int64, subtotal float64) (*PromoResult, error) {
	const op = "service.PromoService.Validate"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID))

	normalized := NormalizePromoCode(code)
	promo, err := s.promoRepo.GetByCode(ctx, normalized)
	if err != nil {
		if errors.Is(err, storage.ErrPromoNotFound) {
			logger.Warn("promo code not found", slog.String("code", normalized))
			return nil, ErrInvalidPromoCode
		}
		logger.Error("failed to get promo code", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get promo code: %w", op, err)
	}

	usages := 0
	if promo.UsageLimit != nil {
		if usages, err = s.promoRepo.CountUsages(ctx, promo.ID); err != nil {
			logger.Error("failed to count usages", slog.Any("error", err))
			return nil, fmt.Errorf("%s: failed to count usages: %w", op, err)
		}
	}
	userUsages := 0
	if promo.PerUserLimit != nil {
		if userUsages, err = s.promoRepo.CountUserUsages(ctx, promo.ID, userID); err != nil {
			logger.Error("failed to count user usages", slog.Any("error", err))
			return nil, fmt.Errorf("%s: failed to count user usages: %w", op, err)
		}
	}

	if err := checkRedeemable(promo, time.Now(), usages, userUsages); err != nil {
		logger.Warn("promo code rejected", slog.String("code", normalized), slog.Any("reason", err))
		return nil, err
	}

	discount := computeDiscount(promo, subtotal)
	logger.Info("promo code validated", slog.String("code", normalized), slog.Float64("discount", discount))
	return &PromoResult{Promo: promo, DiscountAmount: discount}, nil
}

// validatePromoTx повторяет валидацию внутри транзакции чекаута с блокировкой
// строки промокода. Используется CheckoutService; отличается от Validate тем,
// что считает использования уже под блокировкой FOR UPDATE — конкурирующий
// чекаут того же кода дождётся коммита и увидит новую запись о применении.
func validatePromoTx(ctx context.Context, tx *sql.Tx, repo storage.PromoStorage, code string, userID int64, subtotal float64) (*PromoResult, error) {
	promo, err := repo.LockByCodeTx(ctx, tx, NormalizePromoCode(code))
	if err != nil {
		if errors.Is(err, storage.ErrPromoNotFound) {
			return nil, ErrInvalidPromoCode
		}
		return nil, err
	}

	usages := 0
	if promo.UsageLimit != nil {
		if usages, err = repo.CountUsagesTx(ctx, tx, promo.ID); err != nil {
			return nil, err
		}
	}
	userUsages := 0
	if promo.PerUserLimit != nil {
		if userUsages, err = repo.CountUserUsagesTx(ctx, tx, promo.ID, userID); err != nil {
			return nil, err
		}
	}

	if err := checkRedeemable(promo, time.Now(), usages, userUsages); err != nil {
		return nil, err
	}
	return &PromoResult{Promo: promo, DiscountAmount: computeDiscount(promo, subtotal)}, nil
}
