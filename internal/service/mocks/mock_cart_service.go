package mocks

import (
	"context"
	"storefront/internal/dto"
	"storefront/internal/model"
	"storefront/internal/pricing"
	"storefront/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockCartService struct {
	mock.Mock
}

func cartResult(args mock.Arguments) (*dto.Cart, error) {
	if c := args.Get(0); c != nil {
		return c.(*dto.Cart), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCartService) Create(ctx context.Context, customer pricing.Customer) (*dto.Cart, error) {
	return cartResult(m.Called(ctx, customer))
}

func (m *MockCartService) Get(ctx context.Context, customer pricing.Customer, cartID, couponPreview string) (*dto.Cart, error) {
	return cartResult(m.Called(ctx, customer, cartID, couponPreview))
}

func (m *MockCartService) AddItem(ctx context.Context, customer pricing.Customer, cartID string, req dto.AddItemRequest) (*dto.Cart, error) {
	return cartResult(m.Called(ctx, customer, cartID, req))
}

func (m *MockCartService) UpdateItem(ctx context.Context, customer pricing.Customer, cartID string, productID int64, quantity int) (*dto.Cart, error) {
	return cartResult(m.Called(ctx, customer, cartID, productID, quantity))
}

func (m *MockCartService) RemoveItem(ctx context.Context, customer pricing.Customer, cartID string, productID int64) (*dto.Cart, error) {
	return cartResult(m.Called(ctx, customer, cartID, productID))
}

func (m *MockCartService) ApplyCoupon(ctx context.Context, customer pricing.Customer, cartID, code string) (*dto.Cart, error) {
	return cartResult(m.Called(ctx, customer, cartID, code))
}

func (m *MockCartService) RemoveCoupon(ctx context.Context, customer pricing.Customer, cartID string) (*dto.Cart, error) {
	return cartResult(m.Called(ctx, customer, cartID))
}

func (m *MockCartService) Quote(ctx context.Context, customer pricing.Customer, cart *model.Cart, products map[int64]*model.Product) *service.Quote {
	args := m.Called(ctx, customer, cart, products)
	if q := args.Get(0); q != nil {
		return q.(*service.Quote)
	}
	return nil
}
