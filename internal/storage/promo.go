package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/lylastore/storefront/internal/domain/models"
)

var ErrPromoNotFound = errors.New("promo code not found")

// PromoStorage описывает методы для работы с промокодами и записями об их применении.
// Счётчики использования не хранятся как изменяемое поле — они выводятся
// подсчётом строк promo_code_usages.
type PromoStorage interface {
	GetByCode(ctx context.Context, code string) (*models.PromoCode, error)
	// LockByCodeTx читает промокод с блокировкой FOR UPDATE: пока транзакция
	// не завершится, конкурирующий чекаут не сможет пересчитать использования
	// того же кода и оба пролезть под лимит.
	LockByCodeTx(ctx context.Context, tx *sql.Tx, code string) (*models.PromoCode, error)
	CountUsages(ctx context.Context, promoCodeID int64) (int, error)
	CountUsagesTx(ctx context.Context, tx *sql.Tx, promoCodeID int64) (int, error)
	CountUserUsages(ctx context.Context, promoCodeID, userID int64) (int, error)
	CountUserUsagesTx(ctx context.Context, tx *sql.Tx, promoCodeID, userID int64) (int, error)
	CreateUsageTx(ctx context.Context, tx *sql.Tx, usage *models.PromoUsage) error
}

type promoRepository struct {
	db *sql.DB
}

func NewPromoRepository(db *sql.DB) PromoStorage {
	return &promoRepository{db: db}
}

const promoColumns = "id, code, discount_type, discount_value, expires_at, usage_limit, per_user_limit, is_active"

func scanPromo(row *sql.Row) (*models.PromoCode, error) {
	promo := &models.PromoCode{}
	if err := row.Scan(&promo.ID, &promo.Code, &promo.DiscountType, &promo.DiscountValue,
		&promo.ExpiresAt, &promo.UsageLimit, &promo.PerUserLimit, &promo.IsActive); err != nil {
		return nil, err
	}
	return promo, nil
}

func (r *promoRepository) GetByCode(ctx context.Context, code string) (*models.PromoCode, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+promoColumns+" FROM promo_codes WHERE code = $1", code)
	promo, err := scanPromo(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPromoNotFound
		}
		return nil, err
	}
	return promo, nil
}

func (r *promoRepository) LockByCodeTx(ctx context.Context, tx *sql.Tx, code string) (*models.PromoCode, error) {
	row := tx.QueryRowContext(ctx, "SELECT "+promoColumns+" FROM promo_codes WHERE code = $1 FOR UPDATE", code)
	promo, err := scanPromo(row)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "55P03" { // lock
				return nil, fmt.Errorf("promo code is locked, please try again: %w", err)
			}
		}
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPromoNotFound
		}
		return nil, err
	}
	return promo, nil
}

func (r *promoRepository) CountUsages(ctx context.Context, promoCodeID int64) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM promo_code_usages WHERE promo_code_id = $1", promoCodeID).Scan(&count)
	return count, err
}

func (r *promoRepository) CountUsagesTx(ctx context.Context, tx *sql.Tx, promoCodeID int64) (int, error) {
	var count int
	err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM promo_code_usages WHERE promo_code_id = $1", promoCodeID).Scan(&count)
	return count, err
}

func (r *promoRepository) CountUserUsages(ctx context.Context, promoCodeID, userID int64) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM promo_code_usages WHERE promo_code_id = $1 AND user_id = $2", promoCodeID, userID).Scan(&count)
	return count, err
}

func (r *promoRepository) CountUserUsagesTx(ctx context.Context, tx *sql.Tx, promoCodeID, userID int64) (int, error) {
	var count int
	err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM promo_code_usages WHERE promo_code_id = $1 AND user_id = $2", promoCodeID, userID).Scan(&count)
	return count, err
}

func (r *promoRepository) CreateUsageTx(ctx context.Context, tx *sql.Tx, usage *models.PromoUsage) error {
	query := `INSERT INTO promo_code_usages (promo_code_id, user_id, order_id, discount_applied, created_at)
	          VALUES ($1, $2, $3, $4, NOW())`
	_, err := tx.ExecContext(ctx, query, usage.PromoCodeID, usage.UserID, usage.OrderID, usage.DiscountApplied)
	if err != nil {
		return fmt.Errorf("failed to create promo usage: %w", err)
	}
	return nil
}
