package mocks

import (
	"context"
	"storefront/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockWordPressClient struct {
	mock.Mock
}

func (m *MockWordPressClient) ListPosts(ctx context.Context, page, perPage int) ([]*model.Post, int, error) {
	args := m.Called(ctx, page, perPage)
	if posts := args.Get(0); posts != nil {
		return posts.([]*model.Post), args.Int(1), args.Error(2)
	}
	return nil, args.Int(1), args.Error(2)
}

func (m *MockWordPressClient) GetPostBySlug(ctx context.Context, slug string) (*model.Post, error) {
	args := m.Called(ctx, slug)
	if p := args.Get(0); p != nil {
		return p.(*model.Post), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockWordPressClient) GetPageBySlug(ctx context.Context, slug string) (*model.Post, error) {
	args := m.Called(ctx, slug)
	if p := args.Get(0); p != nil {
		return p.(*model.Post), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockWordPressClient) GetMedia(ctx context.Context, mediaID int64) (*model.Media, error) {
	args := m.Called(ctx, mediaID)
	if media := args.Get(0); media != nil {
		return media.(*model.Media), args.Error(1)
	}
	return nil, args.Error(1)
}
