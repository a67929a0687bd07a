package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lylastore/storefront/internal/domain/models"
	"github.com/lylastore/storefront/internal/storage"
)

// OrderSummary — заказ с позициями и агрегатами для истории покупок.
type OrderSummary struct {
	*models.Order
	Total     float64 `json:"total"`
	ItemCount int     `json:"item_count"`
}

// Pagination — метаданные постраничного вывода.
type Pagination struct {
	Page        int  `json:"page"`
	Limit       int  `json:"limit"`
	TotalCount  int  `json:"total_count"`
	TotalPages  int  `json:"total_pages"`
	HasNextPage bool `json:"has_next_page"`
	HasPrevPage bool `json:"has_prev_page"`
}

// OrdersPage — страница истории заказов.
type OrdersPage struct {
	Orders     []*OrderSummary `json:"orders"`
	Pagination Pagination      `json:"pagination"`
}

// OrderService определяет интерфейс чтения истории заказов.
type OrderService interface {
	ListOrders(ctx context.Context, userID int64, page, limit int) (*OrdersPage, error)
}

type orderService struct {
	log       *slog.Logger
	orderRepo storage.OrderStorage
}

func NewOrderService(log *slog.Logger, orderRepo storage.OrderStorage) OrderService {
	return &orderService{log: log, orderRepo: orderRepo}
}

// ListOrders возвращает заказы пользователя постранично, свежие первыми,
// каждый с суммой по зафиксированным ценам и количеством единиц.
func (s *orderService) ListOrders(ctx context.Context, userID int64, page, limit int) (*OrdersPage, error) {
	const op = "service.OrderService.ListOrders"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID))

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	offset := (page - 1) * limit

	orders, err := s.orderRepo.ListByUserID(ctx, userID, limit, offset)
	if err != nil {
		logger.Error("failed to list orders", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to list orders: %w", op, err)
	}
	totalCount, err := s.orderRepo.CountByUserID(ctx, userID)
	if err != nil {
		logger.Error("failed to count orders", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to count orders: %w", op, err)
	}

	summaries := make([]*OrderSummary, 0, len(orders))
	for _, order := range orders {
		items, err := s.orderRepo.GetItemsByOrderID(ctx, order.ID)
		if err != nil {
			logger.Error("failed to get order items", slog.Any("error", err), slog.Int64("orderID", order.ID))
			return nil, fmt.Errorf("%s: failed to get order items: %w", op, err)
		}
		order.Items = items

		var total float64
		var itemCount int
		for _, item := range items {
			total += item.PriceAtOrder * float64(item.Quantity)
			itemCount += item.Quantity
		}
		summaries = append(summaries, &OrderSummary{Order: order, Total: total, ItemCount: itemCount})
	}

	totalPages := (totalCount + limit - 1) / limit
	return &OrdersPage{
		Orders: summaries,
		Pagination: Pagination{
			Page:        page,
			Limit:       limit,
			TotalCount:  totalCount,
			TotalPages:  totalPages,
			HasNextPage: page < totalPages,
			HasPrevPage: page > 1,
		},
	}, nil
}
