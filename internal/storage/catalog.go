package storage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lylastore/storefront/internal/domain/models"
)

var ErrProductNotFound = errors.New("product not found")

// CatalogStorage описывает методы для чтения каталога: товары, категории,
// витрина и общемагазинная распродажа.
type CatalogStorage interface {
	GetProductByID(ctx context.Context, id int64) (*models.Product, error)
	ListFeaturedProducts(ctx context.Context) ([]*models.FeaturedProduct, error)
	ListCategories(ctx context.Context) ([]*models.Category, error)
	// GetActiveSale возвращает последнюю активную распродажу или nil, если её нет.
	GetActiveSale(ctx context.Context) (*models.StorewideSale, error)
}

type catalogRepository struct {
	db *sql.DB
}

func NewCatalogRepository(db *sql.DB) CatalogStorage {
	return &catalogRepository{db: db}
}

func (r *catalogRepository) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	p := &models.Product{}
	query := `
		SELECT p.id, p.name, p.description_short, p.price, p.sale_percent, p.stock, p.image_url, p.category_id, c.name
		FROM products p
		JOIN categories c ON p.category_id = c.id
		WHERE p.id = $1`
	row := r.db.QueryRowContext(ctx, query, id)
	if err := row.Scan(&p.ID, &p.Name, &p.DescriptionShort, &p.Price, &p.SalePercent, &p.Stock, &p.ImageURL, &p.CategoryID, &p.CategoryName); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return p, nil
}

// ListFeaturedProducts возвращает товары витрины, свежезакреплённые первыми.
func (r *catalogRepository) ListFeaturedProducts(ctx context.Context) ([]*models.FeaturedProduct, error) {
	query := `
		SELECT f.id, f.created_at, p.id, p.name, p.description_short, p.price, p.sale_percent, p.stock, p.image_url, p.category_id, c.name
		FROM featured_products f
		JOIN products p ON f.product_id = p.id
		JOIN categories c ON p.category_id = c.id
		ORDER BY f.created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var featured []*models.FeaturedProduct
	for rows.Next() {
		f := &models.FeaturedProduct{}
		if err := rows.Scan(&f.ID, &f.CreatedAt,
			&f.Product.ID, &f.Product.Name, &f.Product.DescriptionShort, &f.Product.Price,
			&f.Product.SalePercent, &f.Product.Stock, &f.Product.ImageURL, &f.Product.CategoryID, &f.Product.CategoryName); err != nil {
			return nil, err
		}
		featured = append(featured, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return featured, nil
}

func (r *catalogRepository) ListCategories(ctx context.Context) ([]*models.Category, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name FROM categories ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []*models.Category
	for rows.Next() {
		c := &models.Category{}
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *catalogRepository) GetActiveSale(ctx context.Context) (*models.StorewideSale, error) {
	sale := &models.StorewideSale{}
	query := `
		SELECT id, discount_percent, is_active, created_at
		FROM storewide_sales
		WHERE is_active = TRUE
		ORDER BY created_at DESC
		LIMIT 1`
	row := r.db.QueryRowContext(ctx, query)
	if err := row.Scan(&sale.ID, &sale.DiscountPercent, &sale.IsActive, &sale.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return sale, nil
}
