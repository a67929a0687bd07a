package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lylastore/storefront/internal/domain/models"
)

var ErrCartItemNotFound = errors.New("cart item not found")

// CartStorage описывает методы для работы с корзиной.
// Методы с суффиксом Tx выполняются внутри переданной транзакции —
// чекаут перечитывает и очищает корзину строго в своей транзакции.
type CartStorage interface {
	GetOrCreateCart(ctx context.Context, userID int64) (*models.Cart, error)
	GetItemsByUserID(ctx context.Context, userID int64) ([]*models.CartItem, error)
	GetItemsByUserIDTx(ctx context.Context, tx *sql.Tx, userID int64) ([]*models.CartItem, error)
	GetItemForUser(ctx context.Context, itemID, userID int64) (*models.CartItem, error)
	FindItem(ctx context.Context, cartID, productID int64, size *string) (*models.CartItem, error)
	AddItem(ctx context.Context, item *models.CartItem) (*models.CartItem, error)
	UpdateItemQuantity(ctx context.Context, itemID int64, quantity int) error
	DeleteItem(ctx context.Context, itemID int64) error
	ClearByUserIDTx(ctx context.Context, tx *sql.Tx, userID int64) error
}

type cartRepository struct {
	db *sql.DB
}

func NewCartRepository(db *sql.DB) CartStorage {
	return &cartRepository{db: db}
}

// GetOrCreateCart возвращает корзину пользователя, создавая её при первом обращении.
func (r *cartRepository) GetOrCreateCart(ctx context.Context, userID int64) (*models.Cart, error) {
	cart := &models.Cart{}
	row := r.db.QueryRowContext(ctx, "SELECT id, user_id, created_at FROM carts WHERE user_id = $1", userID)
	err := row.Scan(&cart.ID, &cart.UserID, &cart.CreatedAt)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	// ON CONFLICT на случай гонки двух первых запросов одного пользователя
	row = r.db.QueryRowContext(ctx, `
		INSERT INTO carts (user_id) VALUES ($1)
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING id, user_id, created_at`, userID)
	if err := row.Scan(&cart.ID, &cart.UserID, &cart.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}
	return cart, nil
}

const cartItemColumns = `ci.id, ci.cart_id, ci.product_id, p.name, ci.quantity, ci.size, ci.price_at_addition, ci.created_at`

func scanCartItems(rows *sql.Rows) ([]*models.CartItem, error) {
	var items []*models.CartItem
	for rows.Next() {
		item := &models.CartItem{}
		if err := rows.Scan(&item.ID, &item.CartID, &item.ProductID, &item.ProductName,
			&item.Quantity, &item.Size, &item.PriceAtAddition, &item.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *cartRepository) GetItemsByUserID(ctx context.Context, userID int64) ([]*models.CartItem, error) {
	query := `
		SELECT ` + cartItemColumns + `
		FROM cart_items ci
		JOIN carts c ON ci.cart_id = c.id
		JOIN products p ON ci.product_id = p.id
		WHERE c.user_id = $1
		ORDER BY ci.created_at`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCartItems(rows)
}

// GetItemsByUserIDTx перечитывает позиции корзины внутри транзакции чекаута,
// чтобы не оформлять заказ по устаревшему снимку.
func (r *cartRepository) GetItemsByUserIDTx(ctx context.Context, tx *sql.Tx, userID int64) ([]*models.CartItem, error) {
	query := `
		SELECT ` + cartItemColumns + `
		FROM cart_items ci
		JOIN carts c ON ci.cart_id = c.id
		JOIN products p ON ci.product_id = p.id
		WHERE c.user_id = $1
		ORDER BY ci.created_at`
	rows, err := tx.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCartItems(rows)
}

// GetItemForUser возвращает позицию корзины, только если она принадлежит пользователю.
func (r *cartRepository) GetItemForUser(ctx context.Context, itemID, userID int64) (*models.CartItem, error) {
	query := `
		SELECT ` + cartItemColumns + `
		FROM cart_items ci
		JOIN carts c ON ci.cart_id = c.id
		JOIN products p ON ci.product_id = p.id
		WHERE ci.id = $1 AND c.user_id = $2`
	row := r.db.QueryRowContext(ctx, query, itemID, userID)
	item := &models.CartItem{}
	if err := row.Scan(&item.ID, &item.CartID, &item.ProductID, &item.ProductName,
		&item.Quantity, &item.Size, &item.PriceAtAddition, &item.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCartItemNotFound
		}
		return nil, err
	}
	return item, nil
}

// FindItem ищет позицию по товару и размеру для слияния количества при повторном добавлении.
func (r *cartRepository) FindItem(ctx context.Context, cartID, productID int64, size *string) (*models.CartItem, error) {
	query := `
		SELECT ` + cartItemColumns + `
		FROM cart_items ci
		JOIN products p ON ci.product_id = p.id
		WHERE ci.cart_id = $1 AND ci.product_id = $2 AND ci.size IS NOT DISTINCT FROM $3`
	row := r.db.QueryRowContext(ctx, query, cartID, productID, size)
	item := &models.CartItem{}
	if err := row.Scan(&item.ID, &item.CartID, &item.ProductID, &item.ProductName,
		&item.Quantity, &item.Size, &item.PriceAtAddition, &item.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCartItemNotFound
		}
		return nil, err
	}
	return item, nil
}

func (r *cartRepository) AddItem(ctx context.Context, item *models.CartItem) (*models.CartItem, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO cart_items (cart_id, product_id, quantity, size, price_at_addition, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW()) RETURNING id`,
		item.CartID, item.ProductID, item.Quantity, item.Size, item.PriceAtAddition,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to add cart item: %w", err)
	}
	item.ID = id
	return item, nil
}

func (r *cartRepository) UpdateItemQuantity(ctx context.Context, itemID int64, quantity int) error {
	res, err := r.db.ExecContext(ctx, "UPDATE cart_items SET quantity = $1 WHERE id = $2", quantity, itemID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrCartItemNotFound
	}
	return nil
}

func (r *cartRepository) DeleteItem(ctx context.Context, itemID int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM cart_items WHERE id = $1", itemID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrCartItemNotFound
	}
	return nil
}

// ClearByUserIDTx опустошает корзину пользователя внутри транзакции чекаута.
func (r *cartRepository) ClearByUserIDTx(ctx context.Context, tx *sql.Tx, userID int64) error {
	query := `
		DELETE FROM cart_items
		WHERE cart_id IN (SELECT id FROM carts WHERE user_id = $1)`
	if _, err := tx.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}
