package mocks

import (
	"context"
	"storefront/internal/dto"
	"storefront/internal/pricing"
	"time"

	"github.com/stretchr/testify/mock"
)

type MockCheckoutService struct {
	mock.Mock
}

func (m *MockCheckoutService) Place(ctx context.Context, customer pricing.Customer, req dto.CheckoutRequest) (*dto.CheckoutResponse, error) {
	args := m.Called(ctx, customer, req)
	if r := args.Get(0); r != nil {
		return r.(*dto.CheckoutResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCheckoutService) Get(ctx context.Context, checkoutID string) (*dto.CheckoutStatus, error) {
	args := m.Called(ctx, checkoutID)
	if s := args.Get(0); s != nil {
		return s.(*dto.CheckoutStatus), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCheckoutService) HandleWebhook(ctx context.Context, paymentID string) error {
	args := m.Called(ctx, paymentID)
	return args.Error(0)
}

func (m *MockCheckoutService) Reconcile(ctx context.Context, age time.Duration) (int, error) {
	args := m.Called(ctx, age)
	return args.Int(0), args.Error(1)
}
