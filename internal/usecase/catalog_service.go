package usecase

import (
	"context"
	"errors"

	"challenge_server/internal/domain"
)

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

type CatalogService struct {
	catalog domain.ProductCatalog
}

func NewCatalogService(catalog domain.ProductCatalog) (*CatalogService, error) {
	if catalog == nil {
		return nil, errors.New("product catalog required")
	}
	return &CatalogService{catalog: catalog}, nil
}

func (s *CatalogService) ListProducts(ctx context.Context, page, perPage int) (domain.ProductPage, error) {
	if page < 1 {
		page = 1
	}
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return s.catalog.ListProducts(ctx, page, perPage)
}

func (s *CatalogService) ListVariations(ctx context.Context, productID int64) ([]domain.ProductVariation, error) {
	if productID <= 0 {
		return nil, &ValidationError{Err: errors.New("product id required")}
	}
	return s.catalog.ListVariations(ctx, productID)
}
