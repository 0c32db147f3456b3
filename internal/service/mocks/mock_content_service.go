package mocks

import (
	"context"
	"storefront/internal/dto"

	"github.com/stretchr/testify/mock"
)

type MockContentService struct {
	mock.Mock
}

func (m *MockContentService) ListPosts(ctx context.Context, page, perPage int) (*dto.PostList, error) {
	args := m.Called(ctx, page, perPage)
	if l := args.Get(0); l != nil {
		return l.(*dto.PostList), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockContentService) GetPost(ctx context.Context, slug string) (*dto.Post, error) {
	args := m.Called(ctx, slug)
	if p := args.Get(0); p != nil {
		return p.(*dto.Post), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockContentService) GetPage(ctx context.Context, slug string) (*dto.Post, error) {
	args := m.Called(ctx, slug)
	if p := args.Get(0); p != nil {
		return p.(*dto.Post), args.Error(1)
	}
	return nil, args.Error(1)
}
