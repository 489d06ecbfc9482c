package postgres

import (
	"context"
	"database/sql"

	"github.com/storefront/api/internal/core/domain"
	"github.com/storefront/api/internal/core/ports"
)

type ProductRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) ports.ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) GetAll(ctx context.Context) ([]*domain.Product, error) {
	query := `SELECT id, name, description, price, category, is_featured, created_at FROM products ORDER BY created_at DESC`
	return r.queryProducts(ctx, query)
}

func (r *ProductRepository) GetFeatured(ctx context.Context) ([]*domain.Product, error) {
	query := `SELECT id, name, description, price, category, is_featured, created_at FROM products WHERE is_featured ORDER BY created_at DESC`
	return r.queryProducts(ctx, query)
}

func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (name, description, price, category, is_featured)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	return r.db.QueryRowContext(ctx, query, product.Name, product.Description, product.Price, product.Category, product.IsFeatured).
		Scan(&product.ID, &product.CreatedAt)
}

func (r *ProductRepository) queryProducts(ctx context.Context, query string) ([]*domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		product := &domain.Product{}
		if err := rows.Scan(&product.ID, &product.Name, &product.Description, &product.Price, &product.Category, &product.IsFeatured, &product.CreatedAt); err != nil {
			return nil, err
		}
		products = append(products, product)
	}

	return products, rows.Err()
}
