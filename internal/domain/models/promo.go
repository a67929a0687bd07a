package models

import "time"

// Типы скидок промокода
const (
	DiscountTypePercentage = "PERCENTAGE"
	DiscountTypeFixed      = "FIXED"
)

// PromoCode представляет промокод. Код хранится в верхнем регистре.
// UsageLimit и PerUserLimit равны nil, если лимит не установлен.
type PromoCode struct {
	ID            int64      `json:"id"`
	Code          string     `json:"code"`
	DiscountType  string     `json:"discount_type"`
	DiscountValue float64    `json:"discount_value"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	UsageLimit    *int       `json:"usage_limit,omitempty"`
	PerUserLimit  *int       `json:"per_user_limit,omitempty"`
	IsActive      bool       `json:"is_active"`
}

// PromoUsage — запись об одном успешном применении промокода к заказу.
// Создаётся ровно один раз при оформлении заказа и никогда не изменяется.
type PromoUsage struct {
	ID              int64     `json:"id"`
	PromoCodeID     int64     `json:"promo_code_id"`
	UserID          int64     `json:"user_id"`
	OrderID         int64     `json:"order_id"`
	DiscountApplied float64   `json:"discount_applied"`
	CreatedAt       time.Time `json:"created_at"`
}
