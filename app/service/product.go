package service

import (
	"context"

	"github.com/vibast-solutions/ms-go-shop/app/entity"
	"github.com/vibast-solutions/ms-go-shop/app/repository"

	"github.com/google/uuid"
)

type ProductService struct {
	productRepo *repository.ProductRepository
}

func NewProductService(productRepo *repository.ProductRepository) *ProductService {
	return &ProductService{productRepo: productRepo}
}

func (s *ProductService) AddProduct(ctx context.Context, title, description string, price, quantityAvailable int64) (*entity.Product, error) {
	if price <= 0 {
		return nil, ErrInvalidAmount
	}

	product := &entity.Product{
		ProductID:         uuid.New().String(),
		Title:             title,
		Description:       description,
		Price:             price,
		QuantityAvailable: quantityAvailable,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *ProductService) ListProducts(ctx context.Context) ([]*entity.Product, error) {
	return s.productRepo.List(ctx)
}
