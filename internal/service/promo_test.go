package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/lylastore/storefront/internal/domain/models"
	"github.com/lylastore/storefront/internal/service"
	"github.com/stretchr/testify/assert"
)

func newPromoService(repo *fakePromoRepo) service.PromoService {
	return service.NewPromoService(testLogger(), repo)
}

func TestPromoService_Validate_Success_Percentage(t *testing.T) {
	repo := newFakePromoRepo()
	repo.promos["SAVE10"] = &models.PromoCode{
		ID:            1,
		Code:          "SAVE10",
		DiscountType:  models.DiscountTypePercentage,
		DiscountValue: 10,
		IsActive:      true,
	}

	svc := newPromoService(repo)

	// Код нормализуется: нижний регистр и пробелы не мешают
	result, err := svc.Validate(context.Background(), "  save10 ", 1, 200.00)
	assert.NoError(t, err)
	assert.Equal(t, "SAVE10", result.Promo.Code)
	assert.Equal(t, 20.00, result.DiscountAmount)

	// Валидация без побочных эффектов: применение не записано
	assert.Empty(t, repo.usages)
}

func TestPromoService_Validate_FixedClampedToSubtotal(t *testing.T) {
	repo := newFakePromoRepo()
	repo.promos["FLAT20"] = &models.PromoCode{
		ID:            2,
		Code:          "FLAT20",
		DiscountType:  models.DiscountTypeFixed,
		DiscountValue: 20,
		IsActive:      true,
	}

	svc := newPromoService(repo)

	// Фиксированная скидка больше подытога — итог не уходит в минус
	result, err := svc.Validate(context.Background(), "FLAT20", 1, 15.00)
	assert.NoError(t, err)
	assert.Equal(t, 15.00, result.DiscountAmount, "Discount must be clamped to the subtotal")
}

func TestPromoService_Validate_UnknownCode(t *testing.T) {
	svc := newPromoService(newFakePromoRepo())

	result, err := svc.Validate(context.Background(), "NOPE", 1, 100.00)
	assert.ErrorIs(t, err, service.ErrInvalidPromoCode)
	assert.Nil(t, result)
}

func TestPromoService_Validate_Inactive(t *testing.T) {
	repo := newFakePromoRepo()
	repo.promos["OLD"] = &models.PromoCode{
		ID:            3,
		Code:          "OLD",
		DiscountType:  models.DiscountTypeFixed,
		DiscountValue: 5,
		IsActive:      false,
	}

	svc := newPromoService(repo)

	result, err := svc.Validate(context.Background(), "OLD", 1, 100.00)
	assert.ErrorIs(t, err, service.ErrPromoInactive)
	assert.Nil(t, result)
}

func TestPromoService_Validate_Expired(t *testing.T) {
	repo := newFakePromoRepo()
	expired := time.Now().Add(-time.Hour)
	repo.promos["GONE"] = &models.PromoCode{
		ID:            4,
		Code:          "GONE",
		DiscountType:  models.DiscountTypePercentage,
		DiscountValue: 15,
		ExpiresAt:     &expired,
		IsActive:      true,
	}

	svc := newPromoService(repo)

	result, err := svc.Validate(context.Background(), "GONE", 1, 100.00)
	assert.ErrorIs(t, err, service.ErrPromoExpired)
	assert.Nil(t, result)
}

func TestPromoService_Validate_UsageLimitBoundary(t *testing.T) {
	repo := newFakePromoRepo()
	repo.promos["LIMIT3"] = &models.PromoCode{
		ID:            5,
		Code:          "LIMIT3",
		DiscountType:  models.DiscountTypeFixed,
		DiscountValue: 5,
		UsageLimit:    intPtr(3),
		IsActive:      true,
	}
	// Два применения из трёх: код ещё валиден
	repo.usages = []*models.PromoUsage{
		{ID: 1, PromoCodeID: 5, UserID: 10, OrderID: 100, DiscountApplied: 5},
		{ID: 2, PromoCodeID: 5, UserID: 11, OrderID: 101, DiscountApplied: 5},
	}

	svc := newPromoService(repo)

	result, err := svc.Validate(context.Background(), "LIMIT3", 1, 50.00)
	assert.NoError(t, err, "Code should still validate one use before the limit")
	assert.NotNil(t, result)

	// Третье применение исчерпывает лимит
	repo.usages = append(repo.usages,
		&models.PromoUsage{ID: 3, PromoCodeID: 5, UserID: 12, OrderID: 102, DiscountApplied: 5})

	result, err = svc.Validate(context.Background(), "LIMIT3", 1, 50.00)
	assert.ErrorIs(t, err, service.ErrPromoUsageLimitExceeded)
	assert.Nil(t, result)
}

func TestPromoService_Validate_PerUserLimit(t *testing.T) {
	repo := newFakePromoRepo()
	repo.promos["ONCE"] = &models.PromoCode{
		ID:            6,
		Code:          "ONCE",
		DiscountType:  models.DiscountTypePercentage,
		DiscountValue: 20,
		PerUserLimit:  intPtr(1),
		IsActive:      true,
	}
	// Пользователь 1 уже применял код; пользователь 2 — нет
	repo.usages = []*models.PromoUsage{
		{ID: 1, PromoCodeID: 6, UserID: 1, OrderID: 100, DiscountApplied: 10},
	}

	svc := newPromoService(repo)

	result, err := svc.Validate(context.Background(), "ONCE", 1, 100.00)
	assert.ErrorIs(t, err, service.ErrPromoPerUserLimitExceeded)
	assert.Nil(t, result)

	result, err = svc.Validate(context.Background(), "ONCE", 2, 100.00)
	assert.NoError(t, err, "Another user should still be able to use the code")
	assert.Equal(t, 20.00, result.DiscountAmount)
}
