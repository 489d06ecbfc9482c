package ports

import (
	"context"

	"github.com/storefront/api/internal/core/domain"
)

type ProductRepository interface {
	GetAll(ctx context.Context) ([]*domain.Product, error)
	GetFeatured(ctx context.Context) ([]*domain.Product, error)
	Create(ctx context.Context, product *domain.Product) error
}

type CreateProductInput struct {
	Name        string
	Description string
	Price       float64
	Category    string
	IsFeatured  bool
}

type ProductService interface {
	List(ctx context.Context) ([]*domain.Product, error)
	Featured(ctx context.Context) ([]*domain.Product, error)
	Create(ctx context.Context, input CreateProductInput) (*domain.Product, error)
}
