package mocks

import (
	"context"
	"storefront/internal/dto"
	"storefront/internal/pricing"

	"github.com/stretchr/testify/mock"
)

type MockSearchService struct {
	mock.Mock
}

func (m *MockSearchService) Search(ctx context.Context, customer pricing.Customer, req dto.SearchRequest) (*dto.SearchResponse, error) {
	args := m.Called(ctx, customer, req)
	if r := args.Get(0); r != nil {
		return r.(*dto.SearchResponse), args.Error(1)
	}
	return nil, args.Error(1)
}
