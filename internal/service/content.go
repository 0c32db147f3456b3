package service

import (
	"context"
	"fmt"
	"storefront/internal/cache"
	"storefront/internal/client"
	"storefront/internal/dto"
	"storefront/internal/logger"
	"storefront/internal/model"
	"strconv"
	"time"
)

// preferred WordPress image size for featured media
const featuredSize = "large"

type ContentService interface {
	ListPosts(ctx context.Context, page, perPage int) (*dto.PostList, error)
	GetPost(ctx context.Context, slug string) (*dto.Post, error)
	GetPage(ctx context.Context, slug string) (*dto.Post, error)
}

type contentServiceImpl struct {
	wp    client.WordPressClient
	cache cache.Cache
	ttl   time.Duration
	log   logger.Logger
}

func NewContentService(wp client.WordPressClient, c cache.Cache, ttl time.Duration, log logger.Logger) ContentService {
	return &contentServiceImpl{
		wp:    wp,
		cache: c,
		ttl:   ttl,
		log:   log,
	}
}

type postPage struct {
	Posts      []*model.Post `json:"posts"`
	TotalPages int           `json:"total_pages"`
}

func (s *contentServiceImpl) ListPosts(ctx context.Context, page, perPage int) (*dto.PostList, error) {
	page, perPage = normalizePage(page, perPage)

	key := fmt.Sprintf("posts:%d:%d", page, perPage)
	result, err := cache.Remember(ctx, s.cache, s.log, key, s.ttl, func(ctx context.Context) (*postPage, error) {
		posts, totalPages, err := s.wp.ListPosts(ctx, page, perPage)
		if err != nil {
			return nil, err
		}
		return &postPage{Posts: posts, TotalPages: totalPages}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	list := &dto.PostList{
		Posts:      make([]*dto.Post, 0, len(result.Posts)),
		Page:       page,
		TotalPages: result.TotalPages,
	}
	for _, p := range result.Posts {
		v := s.postView(ctx, p)
		v.Content = ""
		list.Posts = append(list.Posts, v)
	}
	return list, nil
}

func (s *contentServiceImpl) GetPost(ctx context.Context, slug string) (*dto.Post, error) {
	post, err := cache.Remember(ctx, s.cache, s.log, "post:"+slug, s.ttl, func(ctx context.Context) (*model.Post, error) {
		return s.wp.GetPostBySlug(ctx, slug)
	})
	if err != nil {
		return nil, err
	}
	return s.postView(ctx, post), nil
}

func (s *contentServiceImpl) GetPage(ctx context.Context, slug string) (*dto.Post, error) {
	page, err := cache.Remember(ctx, s.cache, s.log, "page:"+slug, s.ttl, func(ctx context.Context) (*model.Post, error) {
		return s.wp.GetPageBySlug(ctx, slug)
	})
	if err != nil {
		return nil, err
	}
	return s.postView(ctx, page), nil
}

func (s *contentServiceImpl) postView(ctx context.Context, p *model.Post) *dto.Post {
	v := &dto.Post{
		ID:      p.ID,
		Slug:    p.Slug,
		Date:    p.Date,
		Title:   p.Title.Rendered,
		Excerpt: p.Excerpt.Rendered,
		Content: p.Content.Rendered,
	}
	if p.FeaturedMedia > 0 {
		v.Image = s.media(ctx, p.FeaturedMedia)
	}
	return v
}

// media resolves featured media. A missing image never fails the page.
func (s *contentServiceImpl) media(ctx context.Context, mediaID int64) *dto.Media {
	key := "media:" + strconv.FormatInt(mediaID, 10)
	m, err := cache.Remember(ctx, s.cache, s.log, key, s.ttl, func(ctx context.Context) (*model.Media, error) {
		return s.wp.GetMedia(ctx, mediaID)
	})
	if err != nil {
		s.log.Warnf("load media %d: %v", mediaID, err)
		return nil
	}

	v := &dto.Media{
		URL:    m.SourceURL,
		Alt:    m.AltText,
		Width:  m.MediaDetails.Width,
		Height: m.MediaDetails.Height,
	}
	if size, ok := m.MediaDetails.Sizes[featuredSize]; ok && size.SourceURL != "" {
		v.URL, v.Width, v.Height = size.SourceURL, size.Width, size.Height
	}
	return v
}
