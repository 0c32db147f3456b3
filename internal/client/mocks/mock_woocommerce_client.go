package mocks

import (
	"context"
	"storefront/internal/client"
	"storefront/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockWooCommerceClient struct {
	mock.Mock
}

func (m *MockWooCommerceClient) ListProducts(ctx context.Context, q client.ProductQuery) (*client.ProductPage, error) {
	args := m.Called(ctx, q)
	if page := args.Get(0); page != nil {
		return page.(*client.ProductPage), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockWooCommerceClient) GetProduct(ctx context.Context, productID int64) (*model.Product, error) {
	args := m.Called(ctx, productID)
	if p := args.Get(0); p != nil {
		return p.(*model.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockWooCommerceClient) GetProductBySlug(ctx context.Context, slug string) (*model.Product, error) {
	args := m.Called(ctx, slug)
	if p := args.Get(0); p != nil {
		return p.(*model.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockWooCommerceClient) ListCategories(ctx context.Context) ([]*model.Category, error) {
	args := m.Called(ctx)
	if c := args.Get(0); c != nil {
		return c.([]*model.Category), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockWooCommerceClient) GetCategoryBySlug(ctx context.Context, slug string) (*model.Category, error) {
	args := m.Called(ctx, slug)
	if c := args.Get(0); c != nil {
		return c.(*model.Category), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockWooCommerceClient) ListTaxRates(ctx context.Context, class string) ([]*model.TaxRate, error) {
	args := m.Called(ctx, class)
	if r := args.Get(0); r != nil {
		return r.([]*model.TaxRate), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockWooCommerceClient) GetCouponByCode(ctx context.Context, code string) (*model.Coupon, error) {
	args := m.Called(ctx, code)
	if c := args.Get(0); c != nil {
		return c.(*model.Coupon), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockWooCommerceClient) CreateOrder(ctx context.Context, order *model.WooOrder) (*model.WooOrder, error) {
	args := m.Called(ctx, order)
	if o := args.Get(0); o != nil {
		return o.(*model.WooOrder), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockWooCommerceClient) UpdateOrder(ctx context.Context, orderID int64, order *model.WooOrder) (*model.WooOrder, error) {
	args := m.Called(ctx, orderID, order)
	if o := args.Get(0); o != nil {
		return o.(*model.WooOrder), args.Error(1)
	}
	return nil, args.Error(1)
}
