package models

import "time"

// Cart представляет единственную активную корзину пользователя
type Cart struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// CartItem — позиция корзины. PriceAtAddition фиксируется в момент добавления
// товара и дальше не пересчитывается из актуальной цены товара.
type CartItem struct {
	ID              int64     `json:"id"`
	CartID          int64     `json:"cart_id"`
	ProductID       int64     `json:"product_id"`
	ProductName     string    `json:"product_name"` // заполняется через JOIN с таблицей products
	Quantity        int       `json:"quantity"`
	Size            *string   `json:"size,omitempty"`
	PriceAtAddition float64   `json:"price_at_addition"`
	CreatedAt       time.Time `json:"created_at"`
}
