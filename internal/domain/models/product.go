package models

import "time"

// Category представляет категорию каталога
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Product представляет товар каталога
type Product struct {
	ID               int64   `json:"id"`
	Name             string  `json:"name"`
	DescriptionShort string  `json:"description_short"`
	Price            float64 `json:"price"`        // базовая цена
	SalePercent      float64 `json:"sale_percent"` // скидка товара в процентах, 0 — без скидки
	Stock            int     `json:"stock"`
	ImageURL         string  `json:"image_url"`
	CategoryID       int64   `json:"category_id"`
	CategoryName     string  `json:"category_name,omitempty"` // заполняется через JOIN с таблицей categories
}

// CurrentPrice возвращает актуальную цену с учётом скидки товара.
func (p *Product) CurrentPrice() float64 {
	if p.SalePercent > 0 {
		return p.Price * (1 - p.SalePercent/100)
	}
	return p.Price
}

// FeaturedProduct — товар, закреплённый на витрине
type FeaturedProduct struct {
	ID        int64     `json:"id"`
	Product   Product   `json:"product"`
	CreatedAt time.Time `json:"created_at"`
}

// StorewideSale представляет общемагазинную распродажу
type StorewideSale struct {
	ID              int64     `json:"id"`
	DiscountPercent float64   `json:"discount_percent"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
}
