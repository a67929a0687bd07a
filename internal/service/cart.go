package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lylastore/storefront/internal/domain/models"
	"github.com/lylastore/storefront/internal/storage"
)

// CartView — корзина вместе с подытогом по зафиксированным ценам.
type CartView struct {
	Cart     *models.Cart       `json:"cart"`
	Items    []*models.CartItem `json:"items"`
	Subtotal float64            `json:"subtotal"`
}

// CartService определяет интерфейс операций с корзиной.
type CartService interface {
	GetCart(ctx context.Context, userID int64) (*CartView, error)
	AddItem(ctx context.Context, userID, productID int64, quantity int, size *string) (*CartView, error)
	UpdateItem(ctx context.Context, userID, itemID int64, quantity int) (*CartView, error)
	RemoveItem(ctx context.Context, userID, itemID int64) (*CartView, error)
}

type cartService struct {
	log         *slog.Logger
	cartRepo    storage.CartStorage
	catalogRepo storage.CatalogStorage
}

func NewCartService(log *slog.Logger, cartRepo storage.CartStorage, catalogRepo storage.CatalogStorage) CartService {
	return &cartService{
		log:         log,
		cartRepo:    cartRepo,
		catalogRepo: catalogRepo,
	}
}

func (s *cartService) view(ctx context.Context, userID int64) (*CartView, error) {
	cart, err := s.cartRepo.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	items, err := s.cartRepo.GetItemsByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart items: %w", err)
	}
	return &CartView{Cart: cart, Items: items, Subtotal: lineSubtotal(items)}, nil
}

func (s *cartService) GetCart(ctx context.Context, userID int64) (*CartView, error) {
	const op = "service.CartService.GetCart"
	view, err := s.view(ctx, userID)
	if err != nil {
		s.log.Error("failed to load cart", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return view, nil
}

// AddItem добавляет товар в корзину. Цена фиксируется здесь и больше не
// пересчитывается из живой цены товара, даже если та изменится. Повторное
// добавление того же товара и размера сливается в одну позицию.
func (s *cartService) AddItem(ctx context.Context, userID, productID int64, quantity int, size *string) (*CartView, error) {
	const op = "service.CartService.AddItem"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID), slog.Int64("productID", productID))

	if quantity <= 0 {
		return nil, fmt.Errorf("%s: quantity must be positive", op)
	}

	product, err := s.catalogRepo.GetProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, storage.ErrProductNotFound) {
			return nil, storage.ErrProductNotFound
		}
		logger.Error("failed to get product", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get product: %w", op, err)
	}

	cart, err := s.cartRepo.GetOrCreateCart(ctx, userID)
	if err != nil {
		logger.Error("failed to get cart", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get cart: %w", op, err)
	}

	existing, err := s.cartRepo.FindItem(ctx, cart.ID, productID, size)
	switch {
	case err == nil:
		if err := s.cartRepo.UpdateItemQuantity(ctx, existing.ID, existing.Quantity+quantity); err != nil {
			logger.Error("failed to update quantity", slog.Any("error", err))
			return nil, fmt.Errorf("%s: failed to update quantity: %w", op, err)
		}
	case errors.Is(err, storage.ErrCartItemNotFound):
		item := &models.CartItem{
			CartID:          cart.ID,
			ProductID:       productID,
			Quantity:        quantity,
			Size:            size,
			PriceAtAddition: product.CurrentPrice(),
		}
		if _, err := s.cartRepo.AddItem(ctx, item); err != nil {
			logger.Error("failed to add item", slog.Any("error", err))
			return nil, fmt.Errorf("%s: failed to add item: %w", op, err)
		}
	default:
		logger.Error("failed to look up existing item", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to look up existing item: %w", op, err)
	}

	logger.Info("item added to cart", slog.Int("quantity", quantity))
	return s.view(ctx, userID)
}

// UpdateItem меняет количество позиции; количество <= 0 удаляет позицию.
func (s *cartService) UpdateItem(ctx context.Context, userID, itemID int64, quantity int) (*CartView, error) {
	const op = "service.CartService.UpdateItem"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID), slog.Int64("itemID", itemID))

	// Проверяем принадлежность позиции пользователю
	if _, err := s.cartRepo.GetItemForUser(ctx, itemID, userID); err != nil {
		if errors.Is(err, storage.ErrCartItemNotFound) {
			return nil, storage.ErrCartItemNotFound
		}
		logger.Error("failed to get cart item", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get cart item: %w", op, err)
	}

	if quantity <= 0 {
		if err := s.cartRepo.DeleteItem(ctx, itemID); err != nil {
			logger.Error("failed to delete item", slog.Any("error", err))
			return nil, fmt.Errorf("%s: failed to delete item: %w", op, err)
		}
	} else {
		if err := s.cartRepo.UpdateItemQuantity(ctx, itemID, quantity); err != nil {
			logger.Error("failed to update quantity", slog.Any("error", err))
			return nil, fmt.Errorf("%s: failed to update quantity: %w", op, err)
		}
	}
	return s.view(ctx, userID)
}

func (s *cartService) RemoveItem(ctx context.Context, userID, itemID int64) (*CartView, error) {
	const op = "service.CartService.RemoveItem"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID), slog.Int64("itemID", itemID))

	if _, err := s.cartRepo.GetItemForUser(ctx, itemID, userID); err != nil {
		if errors.Is(err, storage.ErrCartItemNotFound) {
			return nil, storage.ErrCartItemNotFound
		}
		logger.Error("failed to get cart item", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get cart item: %w", op, err)
	}

	if err := s.cartRepo.DeleteItem(ctx, itemID); err != nil {
		logger.Error("failed to delete item", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to delete item: %w", op, err)
	}
	return s.view(ctx, userID)
}
