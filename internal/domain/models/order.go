package models

import "time"

// Статусы заказа. Оформление создаёт заказ только в статусе pending,
// дальнейшие переходы выполняет внешний процесс подтверждения оплаты.
const (
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
)

// ShippingInfo — снимок адреса доставки, сохранённый в заказе
type ShippingInfo struct {
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	Email         string `json:"email"`
	StreetAddress string `json:"streetAddress"`
	City          string `json:"city"`
	PostalCode    string `json:"postalCode"`
}

// Order представляет заказ
type Order struct {
	ID               int64        `json:"id"`
	OrderNumber      string       `json:"order_number"`
	UserID           int64        `json:"user_id"`
	Status           string       `json:"status"`
	Shipping         ShippingInfo `json:"shipping"`
	PaymentReference string       `json:"payment_reference"`
	TotalAmount      float64      `json:"total_amount"`
	Items            []*OrderItem `json:"items,omitempty"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

// OrderItem — неизменяемый снимок позиции корзины на момент оформления заказа.
// PriceAtOrder копируется из PriceAtAddition позиции корзины, а не из живой цены товара.
type OrderItem struct {
	ID           int64   `json:"id"`
	OrderID      int64   `json:"order_id"`
	ProductID    int64   `json:"product_id"`
	ProductName  string  `json:"product_name"` // заполняется через JOIN с таблицей products
	Quantity     int     `json:"quantity"`
	Size         *string `json:"size,omitempty"`
	PriceAtOrder float64 `json:"price_at_order"`
}
