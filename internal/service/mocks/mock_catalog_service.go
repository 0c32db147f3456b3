package mocks

import (
	"context"
	"storefront/internal/dto"
	"storefront/internal/model"
	"storefront/internal/pricing"

	"github.com/stretchr/testify/mock"
)

type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) ListProducts(ctx context.Context, customer pricing.Customer, req dto.ProductListRequest) (*dto.ProductList, error) {
	args := m.Called(ctx, customer, req)
	if l := args.Get(0); l != nil {
		return l.(*dto.ProductList), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCatalogService) GetProduct(ctx context.Context, customer pricing.Customer, slug string) (*dto.Product, error) {
	args := m.Called(ctx, customer, slug)
	if p := args.Get(0); p != nil {
		return p.(*dto.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCatalogService) CategoryTree(ctx context.Context) ([]*dto.Category, error) {
	args := m.Called(ctx)
	if t := args.Get(0); t != nil {
		return t.([]*dto.Category), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCatalogService) GetCategory(ctx context.Context, customer pricing.Customer, slug string, page, perPage int) (*dto.CategoryPage, error) {
	args := m.Called(ctx, customer, slug, page, perPage)
	if p := args.Get(0); p != nil {
		return p.(*dto.CategoryPage), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCatalogService) Product(ctx context.Context, productID int64) (*model.Product, error) {
	args := m.Called(ctx, productID)
	if p := args.Get(0); p != nil {
		return p.(*model.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCatalogService) Warmup(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
