package mocks

import (
	"context"
	"storefront/internal/client"
	"storefront/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockMollieClient struct {
	mock.Mock
}

func (m *MockMollieClient) CreatePayment(ctx context.Context, req *client.PaymentRequest) (*model.MolliePayment, error) {
	args := m.Called(ctx, req)
	if p := args.Get(0); p != nil {
		return p.(*model.MolliePayment), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockMollieClient) GetPayment(ctx context.Context, paymentID string) (*model.MolliePayment, error) {
	args := m.Called(ctx, paymentID)
	if p := args.Get(0); p != nil {
		return p.(*model.MolliePayment), args.Error(1)
	}
	return nil, args.Error(1)
}
