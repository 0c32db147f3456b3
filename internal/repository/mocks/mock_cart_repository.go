package mocks

import (
	"context"
	"storefront/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockCartRepository struct {
	mock.Mock
}

func (m *MockCartRepository) Get(ctx context.Context, cartID string) (*model.Cart, error) {
	args := m.Called(ctx, cartID)
	if c := args.Get(0); c != nil {
		return c.(*model.Cart), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCartRepository) Save(ctx context.Context, cart *model.Cart) error {
	args := m.Called(ctx, cart)
	return args.Error(0)
}

func (m *MockCartRepository) Delete(ctx context.Context, cartID string) error {
	args := m.Called(ctx, cartID)
	return args.Error(0)
}
