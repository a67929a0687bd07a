package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lylastore/storefront/internal/domain/models"
)

var ErrOrderNotFound = errors.New("order not found")

// OrderStorage описывает методы для работы с заказами.
// Запись заказа, его позиций и чтение созданного заказа выполняются
// внутри транзакции чекаута.
type OrderStorage interface {
	CreateOrderTx(ctx context.Context, tx *sql.Tx, order *models.Order) (int64, error)
	CreateOrderItemTx(ctx context.Context, tx *sql.Tx, item *models.OrderItem) error
	GetOrderWithItemsTx(ctx context.Context, tx *sql.Tx, orderID int64) (*models.Order, error)
	ListByUserID(ctx context.Context, userID int64, limit, offset int) ([]*models.Order, error)
	CountByUserID(ctx context.Context, userID int64) (int, error)
	GetItemsByOrderID(ctx context.Context, orderID int64) ([]*models.OrderItem, error)
	// GetOrderForUser возвращает заказ, только если он принадлежит пользователю.
	GetOrderForUser(ctx context.Context, orderID, userID int64) (*models.Order, error)
}

type orderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) OrderStorage {
	return &orderRepository{db: db}
}

const orderColumns = `id, order_number, user_id, status,
		shipping_first_name, shipping_last_name, shipping_email,
		shipping_street_address, shipping_city, shipping_postal_code,
		payment_reference, total_amount, created_at, updated_at`

func scanOrder(scan func(dest ...any) error) (*models.Order, error) {
	o := &models.Order{}
	err := scan(&o.ID, &o.OrderNumber, &o.UserID, &o.Status,
		&o.Shipping.FirstName, &o.Shipping.LastName, &o.Shipping.Email,
		&o.Shipping.StreetAddress, &o.Shipping.City, &o.Shipping.PostalCode,
		&o.PaymentReference, &o.TotalAmount, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (r *orderRepository) CreateOrderTx(ctx context.Context, tx *sql.Tx, order *models.Order) (int64, error) {
	var id int64
	query := `INSERT INTO orders (order_number, user_id, status,
			shipping_first_name, shipping_last_name, shipping_email,
			shipping_street_address, shipping_city, shipping_postal_code,
			payment_reference, total_amount, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW()) RETURNING id`
	err := tx.QueryRowContext(ctx, query,
		order.OrderNumber, order.UserID, order.Status,
		order.Shipping.FirstName, order.Shipping.LastName, order.Shipping.Email,
		order.Shipping.StreetAddress, order.Shipping.City, order.Shipping.PostalCode,
		order.PaymentReference, order.TotalAmount,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create order: %w", err)
	}
	return id, nil
}

func (r *orderRepository) CreateOrderItemTx(ctx context.Context, tx *sql.Tx, item *models.OrderItem) error {
	query := `INSERT INTO order_items (order_id, product_id, quantity, size, price_at_order)
	          VALUES ($1, $2, $3, $4, $5)`
	_, err := tx.ExecContext(ctx, query, item.OrderID, item.ProductID, item.Quantity, item.Size, item.PriceAtOrder)
	if err != nil {
		return fmt.Errorf("failed to create order item: %w", err)
	}
	return nil
}

// GetOrderWithItemsTx перечитывает созданный заказ вместе с позициями до коммита.
func (r *orderRepository) GetOrderWithItemsTx(ctx context.Context, tx *sql.Tx, orderID int64) (*models.Order, error) {
	row := tx.QueryRowContext(ctx, "SELECT "+orderColumns+" FROM orders WHERE id = $1", orderID)
	order, err := scanOrder(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	query := `
		SELECT oi.id, oi.order_id, oi.product_id, p.name, oi.quantity, oi.size, oi.price_at_order
		FROM order_items oi
		JOIN products p ON oi.product_id = p.id
		WHERE oi.order_id = $1
		ORDER BY oi.id`
	rows, err := tx.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items, err := scanOrderItems(rows)
	if err != nil {
		return nil, err
	}
	order.Items = items
	return order, nil
}

func scanOrderItems(rows *sql.Rows) ([]*models.OrderItem, error) {
	var items []*models.OrderItem
	for rows.Next() {
		item := &models.OrderItem{}
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.ProductName,
			&item.Quantity, &item.Size, &item.PriceAtOrder); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *orderRepository) ListByUserID(ctx context.Context, userID int64, limit, offset int) ([]*models.Order, error) {
	query := `SELECT ` + orderColumns + `
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		order, err := scanOrder(rows.Scan)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) CountByUserID(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM orders WHERE user_id = $1", userID).Scan(&count)
	return count, err
}

func (r *orderRepository) GetItemsByOrderID(ctx context.Context, orderID int64) ([]*models.OrderItem, error) {
	query := `
		SELECT oi.id, oi.order_id, oi.product_id, p.name, oi.quantity, oi.size, oi.price_at_order
		FROM order_items oi
		JOIN products p ON oi.product_id = p.id
		WHERE oi.order_id = $1
		ORDER BY oi.id`
	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOrderItems(rows)
}

func (r *orderRepository) GetOrderForUser(ctx context.Context, orderID, userID int64) (*models.Order, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE id = $1 AND user_id = $2", orderID, userID)
	order, err := scanOrder(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}
