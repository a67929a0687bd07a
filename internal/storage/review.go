package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/lylastore/storefront/internal/domain/models"
)

var ErrAlreadyReviewed = errors.New("product already reviewed for this order")

// ReviewStorage описывает методы для работы с отзывами.
type ReviewStorage interface {
	ListByOrderAndUser(ctx context.Context, orderID, userID int64) ([]*models.Review, error)
	CreateReview(ctx context.Context, review *models.Review) (*models.Review, error)
}

type reviewRepository struct {
	db *sql.DB
}

func NewReviewRepository(db *sql.DB) ReviewStorage {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) ListByOrderAndUser(ctx context.Context, orderID, userID int64) ([]*models.Review, error) {
	query := `
		SELECT id, user_id, product_id, order_id, rating, comment, created_at
		FROM reviews
		WHERE order_id = $1 AND user_id = $2
		ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query, orderID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []*models.Review
	for rows.Next() {
		rev := &models.Review{}
		if err := rows.Scan(&rev.ID, &rev.UserID, &rev.ProductID, &rev.OrderID, &rev.Rating, &rev.Comment, &rev.CreatedAt); err != nil {
			return nil, err
		}
		reviews = append(reviews, rev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return reviews, nil
}

func (r *reviewRepository) CreateReview(ctx context.Context, review *models.Review) (*models.Review, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO reviews (user_id, product_id, order_id, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW()) RETURNING id`,
		review.UserID, review.ProductID, review.OrderID, review.Rating, review.Comment,
	).Scan(&id)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" { // unique_violation
			return nil, ErrAlreadyReviewed
		}
		return nil, fmt.Errorf("failed to create review: %w", err)
	}
	review.ID = id
	return review, nil
}
