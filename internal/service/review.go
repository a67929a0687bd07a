package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lylastore/storefront/internal/domain/models"
	"github.com/lylastore/storefront/internal/storage"
)

var (
	ErrOrderNotReviewable = errors.New("order not found or not completed")
	ErrProductNotInOrder  = errors.New("product is not part of this order")
	ErrInvalidRating      = errors.New("rating must be between 1 and 5")
)

// UnreviewedProduct — товар завершённого заказа, на который ещё нет отзыва.
type UnreviewedProduct struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"image_url"`
}

// ReviewStatus — состояние отзывов по заказу.
type ReviewStatus struct {
	HasReviewedAll     bool                 `json:"has_reviewed_all"`
	TotalProducts      int                  `json:"total_products"`
	ReviewedProducts   int                  `json:"reviewed_products"`
	UnreviewedProducts []*UnreviewedProduct `json:"unreviewed_products"`
	Reviews            []*models.Review     `json:"reviews"`
}

// ReviewService определяет интерфейс работы с отзывами на товары заказа.
type ReviewService interface {
	CheckOrder(ctx context.Context, userID, orderID int64) (*ReviewStatus, error)
	CreateReview(ctx context.Context, userID, orderID, productID int64, rating int, comment string) (*models.Review, error)
}

type reviewService struct {
	log         *slog.Logger
	reviewRepo  storage.ReviewStorage
	orderRepo   storage.OrderStorage
	catalogRepo storage.CatalogStorage
}

func NewReviewService(log *slog.Logger, reviewRepo storage.ReviewStorage,
	orderRepo storage.OrderStorage, catalogRepo storage.CatalogStorage) ReviewService {
	return &reviewService{
		log:         log,
		reviewRepo:  reviewRepo,
		orderRepo:   orderRepo,
		catalogRepo: catalogRepo,
	}
}

// completedOrderForUser возвращает завершённый заказ пользователя вместе с позициями.
func (s *reviewService) completedOrderForUser(ctx context.Context, userID, orderID int64) (*models.Order, error) {
	order, err := s.orderRepo.GetOrderForUser(ctx, orderID, userID)
	if err != nil {
		if errors.Is(err, storage.ErrOrderNotFound) {
			return nil, ErrOrderNotReviewable
		}
		return nil, err
	}
	if order.Status != models.OrderStatusCompleted {
		return nil, ErrOrderNotReviewable
	}
	items, err := s.orderRepo.GetItemsByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	order.Items = items
	return order, nil
}

// CheckOrder сообщает, оставил ли пользователь отзыв на каждый товар
// завершённого заказа, и перечисляет товары без отзыва.
func (s *reviewService) CheckOrder(ctx context.Context, userID, orderID int64) (*ReviewStatus, error) {
	const op = "service.ReviewService.CheckOrder"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID), slog.Int64("orderID", orderID))

	order, err := s.completedOrderForUser(ctx, userID, orderID)
	if err != nil {
		if errors.Is(err, ErrOrderNotReviewable) {
			return nil, err
		}
		logger.Error("failed to load order", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to load order: %w", op, err)
	}

	reviews, err := s.reviewRepo.ListByOrderAndUser(ctx, orderID, userID)
	if err != nil {
		logger.Error("failed to list reviews", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to list reviews: %w", op, err)
	}

	reviewed := make(map[int64]bool, len(reviews))
	for _, rev := range reviews {
		reviewed[rev.ProductID] = true
	}

	var unreviewed []*UnreviewedProduct
	for _, item := range order.Items {
		if reviewed[item.ProductID] {
			continue
		}
		up := &UnreviewedProduct{ID: item.ProductID, Name: item.ProductName}
		if product, err := s.catalogRepo.GetProductByID(ctx, item.ProductID); err == nil {
			up.ImageURL = product.ImageURL
		}
		unreviewed = append(unreviewed, up)
	}

	return &ReviewStatus{
		HasReviewedAll:     len(order.Items) == len(reviews),
		TotalProducts:      len(order.Items),
		ReviewedProducts:   len(reviews),
		UnreviewedProducts: unreviewed,
		Reviews:            reviews,
	}, nil
}

// CreateReview создаёт отзыв на товар из завершённого заказа пользователя.
// На пару (товар, заказ) допускается один отзыв.
func (s *reviewService) CreateReview(ctx context.Context, userID, orderID, productID int64, rating int, comment string) (*models.Review, error) {
	const op = "service.ReviewService.CreateReview"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID), slog.Int64("orderID", orderID))

	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}

	order, err := s.completedOrderForUser(ctx, userID, orderID)
	if err != nil {
		if errors.Is(err, ErrOrderNotReviewable) {
			return nil, err
		}
		logger.Error("failed to load order", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to load order: %w", op, err)
	}

	inOrder := false
	for _, item := range order.Items {
		if item.ProductID == productID {
			inOrder = true
			break
		}
	}
	if !inOrder {
		return nil, ErrProductNotInOrder
	}

	review, err := s.reviewRepo.CreateReview(ctx, &models.Review{
		UserID:    userID,
		ProductID: productID,
		OrderID:   orderID,
		Rating:    rating,
		Comment:   comment,
	})
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyReviewed) {
			return nil, storage.ErrAlreadyReviewed
		}
		logger.Error("failed to create review", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to create review: %w", op, err)
	}

	logger.Info("review created", slog.Int64("productID", productID))
	return review, nil
}
