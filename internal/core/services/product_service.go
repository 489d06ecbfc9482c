package services

import (
	"context"
	"errors"
	"strings"

	"github.com/storefront/api/internal/core/domain"
	"github.com/storefront/api/internal/core/ports"
)

type ProductService struct {
	repo ports.ProductRepository
}

func NewProductService(repo ports.ProductRepository) ports.ProductService {
	return &ProductService{
		repo: repo,
	}
}

func (s *ProductService) List(ctx context.Context) ([]*domain.Product, error) {
	return s.repo.GetAll(ctx)
}

func (s *ProductService) Featured(ctx context.Context) ([]*domain.Product, error) {
	return s.repo.GetFeatured(ctx)
}

func (s *ProductService) Create(ctx context.Context, input ports.CreateProductInput) (*domain.Product, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, errors.New("name is required")
	}
	if input.Price <= 0 {
		return nil, errors.New("price must be positive")
	}

	product := &domain.Product{
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Price:       input.Price,
		Category:    input.Category,
		IsFeatured:  input.IsFeatured,
	}

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}
