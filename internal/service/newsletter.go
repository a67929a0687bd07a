package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lylastore/storefront/internal/domain/models"
	"github.com/lylastore/storefront/internal/storage"
)

// SubscriptionStatus — состояние подписки на рассылку.
type SubscriptionStatus struct {
	IsSubscribed bool                 `json:"is_subscribed"`
	Subscription *models.Subscription `json:"subscription,omitempty"`
}

// NewsletterService определяет интерфейс подписки на рассылку.
type NewsletterService interface {
	Status(ctx context.Context, email string, userID *int64) (*SubscriptionStatus, error)
	Subscribe(ctx context.Context, email string, userID *int64) (*models.Subscription, error)
}

type newsletterService struct {
	log            *slog.Logger
	newsletterRepo storage.NewsletterStorage
}

func NewNewsletterService(log *slog.Logger, newsletterRepo storage.NewsletterStorage) NewsletterService {
	return &newsletterService{log: log, newsletterRepo: newsletterRepo}
}

func (s *newsletterService) find(ctx context.Context, email string, userID *int64) (*models.Subscription, error) {
	if userID != nil {
		return s.newsletterRepo.FindByUserID(ctx, *userID)
	}
	return s.newsletterRepo.FindByEmail(ctx, email)
}

func (s *newsletterService) Status(ctx context.Context, email string, userID *int64) (*SubscriptionStatus, error) {
	const op = "service.NewsletterService.Status"

	sub, err := s.find(ctx, email, userID)
	if err != nil {
		if errors.Is(err, storage.ErrSubscriptionNotFound) {
			return &SubscriptionStatus{IsSubscribed: false}, nil
		}
		s.log.Error("failed to look up subscription", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &SubscriptionStatus{IsSubscribed: true, Subscription: sub}, nil
}

// Subscribe добавляет email в список рассылки; повторная подписка не ошибка,
// возвращается существующая запись.
func (s *newsletterService) Subscribe(ctx context.Context, email string, userID *int64) (*models.Subscription, error) {
	const op = "service.NewsletterService.Subscribe"
	logger := s.log.With(slog.String("op", op), slog.String("email", email))

	existing, err := s.newsletterRepo.FindByEmail(ctx, email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, storage.ErrSubscriptionNotFound) {
		logger.Error("failed to look up subscription", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	sub, err := s.newsletterRepo.CreateSubscription(ctx, email, userID)
	if err != nil {
		logger.Error("failed to create subscription", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	logger.Info("newsletter subscription created")
	return sub, nil
}
