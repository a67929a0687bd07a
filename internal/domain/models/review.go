package models

import "time"

// Review представляет отзыв на товар из завершённого заказа.
// Пара (user_id, product_id, order_id) уникальна.
type Review struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	ProductID int64     `json:"product_id"`
	OrderID   int64     `json:"order_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}
