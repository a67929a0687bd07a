package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/google/uuid"
	"github.com/lylastore/storefront/internal/domain/models"
	"github.com/lylastore/storefront/internal/storage"
)

// TotalTolerance — допуск на расхождение присланного клиентом итога
// с пересчитанным на сервере (погрешности плавающей запятой).
const TotalTolerance = 0.01

// PlaceOrderRequest — данные оформления заказа. Оплата уже проверена
// вызывающей стороной до обращения к CheckoutService.
type PlaceOrderRequest struct {
	Shipping         models.ShippingInfo
	PaymentReference string
	TotalAmount      float64
	PromoCode        string
}

// CheckoutService определяет интерфейс оформления заказа.
type CheckoutService interface {
	PlaceOrder(ctx context.Context, userID int64, req PlaceOrderRequest) (*models.Order, error)
}

type checkoutService struct {
	log       *slog.Logger
	db        *sql.DB
	cartRepo  storage.CartStorage
	promoRepo storage.PromoStorage
	orderRepo storage.OrderStorage
	promoSvc  PromoService
}

func NewCheckoutService(log *slog.Logger, db *sql.DB, cartRepo storage.CartStorage,
	promoRepo storage.PromoStorage, orderRepo storage.OrderStorage, promoSvc PromoService) CheckoutService {
	return &checkoutService{
		log:       log,
		db:        db,
		cartRepo:  cartRepo,
		promoRepo: promoRepo,
		orderRepo: orderRepo,
		promoSvc:  promoSvc,
	}
}

func lineSubtotal(items []*models.CartItem) float64 {
	var subtotal float64
	for _, item := range items {
		subtotal += item.PriceAtAddition * float64(item.Quantity)
	}
	return subtotal
}

func validateShipping(s models.ShippingInfo) error {
	if s.FirstName == "" || s.LastName == "" || s.Email == "" ||
		s.StreetAddress == "" || s.City == "" || s.PostalCode == "" {
		return ErrMissingShippingFields
	}
	return nil
}

// PlaceOrder оформляет заказ: корзина, промокод и итог сначала проверяются до
// транзакции (бизнес-отказы не доходят до БД-записи), затем всё перечитывается
// и пишется внутри одной транзакции. Любой сбой внутри — полный откат:
// ни заказа, ни позиций, ни записи о промокоде, корзина нетронута.
func (s *checkoutService) PlaceOrder(ctx context.Context, userID int64, req PlaceOrderRequest) (*models.Order, error) {
	const op = "service.CheckoutService.PlaceOrder"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID))
	logger.Info("starting checkout")

	if err := validateShipping(req.Shipping); err != nil {
		logger.Warn("shipping fields missing")
		return nil, err
	}

	// Предварительная проверка вне транзакции: бизнес-отказы (пустая корзина,
	// плохой промокод, расхождение итога) возвращаются клиенту без записи в БД.
	items, err := s.cartRepo.GetItemsByUserID(ctx, userID)
	if err != nil {
		logger.Error("failed to read cart", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to read cart: %w", op, err)
	}
	if len(items) == 0 {
		logger.Warn("cart is empty")
		return nil, ErrEmptyCart
	}

	subtotal := lineSubtotal(items)
	var discount float64
	if req.PromoCode != "" {
		result, err := s.promoSvc.Validate(ctx, req.PromoCode, userID, subtotal)
		if err != nil {
			return nil, err
		}
		discount = result.DiscountAmount
	}

	if math.Abs(req.TotalAmount-(subtotal-discount)) > TotalTolerance {
		logger.Warn("total mismatch",
			slog.Float64("clientTotal", req.TotalAmount),
			slog.Float64("expectedTotal", subtotal-discount))
		return nil, ErrTotalMismatch
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, ErrOrderCreationFailed)
	}

	order, err := s.placeOrderTx(ctx, tx, logger, userID, req)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, ErrOrderCreationFailed)
	}

	logger.Info("checkout completed",
		slog.Int64("orderID", order.ID),
		slog.Float64("total", order.TotalAmount))
	return order, nil
}

// placeOrderTx выполняет все шаги записи внутри открытой транзакции.
// Вызывающий откатывает транзакцию при любой ошибке и коммитит при успехе.
func (s *checkoutService) placeOrderTx(ctx context.Context, tx *sql.Tx, logger *slog.Logger,
	userID int64, req PlaceOrderRequest) (*models.Order, error) {
	const op = "service.CheckoutService.placeOrderTx"

	// Перечитываем корзину внутри транзакции, снимок снаружи мог устареть
	items, err := s.cartRepo.GetItemsByUserIDTx(ctx, tx, userID)
	if err != nil {
		logger.Error("failed to re-read cart", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, ErrOrderCreationFailed)
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}
	subtotal := lineSubtotal(items)

	// Повторная валидация промокода уже под блокировкой строки промокода:
	// два конкурирующих чекаута на исчерпываемом лимите сериализуются здесь
	var promoResult *PromoResult
	var discount float64
	if req.PromoCode != "" {
		promoResult, err = validatePromoTx(ctx, tx, s.promoRepo, req.PromoCode, userID, subtotal)
		if err != nil {
			if isCheckoutError(err) {
				return nil, err
			}
			logger.Error("promo re-validation failed", slog.Any("error", err))
			return nil, fmt.Errorf("%s: %w", op, ErrOrderCreationFailed)
		}
		discount = promoResult.DiscountAmount
	}

	expectedTotal := subtotal - discount
	if math.Abs(req.TotalAmount-expectedTotal) > TotalTolerance {
		return nil, ErrTotalMismatch
	}

	// Итог заказа — серверный пересчёт, а не присланное клиентом значение
	orderID, err := s.orderRepo.CreateOrderTx(ctx, tx, &models.Order{
		OrderNumber:      uuid.NewString(),
		UserID:           userID,
		Status:           models.OrderStatusPending,
		Shipping:         req.Shipping,
		PaymentReference: req.PaymentReference,
		TotalAmount:      expectedTotal,
	})
	if err != nil {
		logger.Error("failed to create order", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, ErrOrderCreationFailed)
	}

	// Позиции заказа копируют цену, зафиксированную при добавлении в корзину
	for _, item := range items {
		orderItem := &models.OrderItem{
			OrderID:      orderID,
			ProductID:    item.ProductID,
			Quantity:     item.Quantity,
			Size:         item.Size,
			PriceAtOrder: item.PriceAtAddition,
		}
		if err := s.orderRepo.CreateOrderItemTx(ctx, tx, orderItem); err != nil {
			logger.Error("failed to create order item", slog.Any("error", err), slog.Int64("productID", item.ProductID))
			return nil, fmt.Errorf("%s: %w", op, ErrOrderCreationFailed)
		}
	}

	if promoResult != nil {
		usage := &models.PromoUsage{
			PromoCodeID:     promoResult.Promo.ID,
			UserID:          userID,
			OrderID:         orderID,
			DiscountApplied: discount,
		}
		if err := s.promoRepo.CreateUsageTx(ctx, tx, usage); err != nil {
			logger.Error("failed to record promo usage", slog.Any("error", err))
			return nil, fmt.Errorf("%s: %w", op, ErrOrderCreationFailed)
		}
	}

	if err := s.cartRepo.ClearByUserIDTx(ctx, tx, userID); err != nil {
		logger.Error("failed to clear cart", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, ErrOrderCreationFailed)
	}

	order, err := s.orderRepo.GetOrderWithItemsTx(ctx, tx, orderID)
	if err != nil {
		logger.Error("failed to read created order", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, ErrOrderCreationFailed)
	}
	return order, nil
}

// isCheckoutError сообщает, относится ли ошибка к типизированным бизнес-отказам
// чекаута (в отличие от сбоев хранилища, которые наружу идут как ErrOrderCreationFailed).
func isCheckoutError(err error) bool {
	for _, target := range []error{
		ErrEmptyCart, ErrInvalidPromoCode, ErrPromoInactive, ErrPromoExpired,
		ErrPromoUsageLimitExceeded, ErrPromoPerUserLimitExceeded,
		ErrTotalMismatch, ErrMissingShippingFields,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
