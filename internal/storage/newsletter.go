package storage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lylastore/storefront/internal/domain/models"
)

var ErrSubscriptionNotFound = errors.New("subscription not found")

// NewsletterStorage описывает методы для работы со списком рассылки.
type NewsletterStorage interface {
	FindByEmail(ctx context.Context, email string) (*models.Subscription, error)
	FindByUserID(ctx context.Context, userID int64) (*models.Subscription, error)
	CreateSubscription(ctx context.Context, email string, userID *int64) (*models.Subscription, error)
}

type newsletterRepository struct {
	db *sql.DB
}

func NewNewsletterRepository(db *sql.DB) NewsletterStorage {
	return &newsletterRepository{db: db}
}

func scanSubscription(row *sql.Row) (*models.Subscription, error) {
	sub := &models.Subscription{}
	if err := row.Scan(&sub.ID, &sub.Email, &sub.UserID, &sub.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}
	return sub, nil
}

func (r *newsletterRepository) FindByEmail(ctx context.Context, email string) (*models.Subscription, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT id, email, user_id, created_at FROM email_list WHERE email = $1", email)
	return scanSubscription(row)
}

func (r *newsletterRepository) FindByUserID(ctx context.Context, userID int64) (*models.Subscription, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT id, email, user_id, created_at FROM email_list WHERE user_id = $1", userID)
	return scanSubscription(row)
}

func (r *newsletterRepository) CreateSubscription(ctx context.Context, email string, userID *int64) (*models.Subscription, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO email_list (email, user_id, created_at)
		VALUES ($1, $2, NOW()) RETURNING id, email, user_id, created_at`, email, userID)
	return scanSubscription(row)
}
