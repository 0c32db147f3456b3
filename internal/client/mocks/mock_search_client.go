package mocks

import (
	"context"
	"storefront/internal/client"

	"github.com/stretchr/testify/mock"
)

type MockSearchClient struct {
	mock.Mock
}

func (m *MockSearchClient) Search(ctx context.Context, q client.SearchQuery) (*client.SearchResult, error) {
	args := m.Called(ctx, q)
	if r := args.Get(0); r != nil {
		return r.(*client.SearchResult), args.Error(1)
	}
	return nil, args.Error(1)
}
