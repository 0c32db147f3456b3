package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"storefront/internal/config"
	"storefront/internal/model"
	"strconv"
	"strings"
)

type WordPressClient interface {
	ListPosts(ctx context.Context, page, perPage int) ([]*model.Post, int, error)
	GetPostBySlug(ctx context.Context, slug string) (*model.Post, error)
	GetPageBySlug(ctx context.Context, slug string) (*model.Post, error)
	GetMedia(ctx context.Context, mediaID int64) (*model.Media, error)
}

type wordPressClientImpl struct {
	rest *restClient
}

func NewWordPressClient(cfg *config.WordPress) WordPressClient {
	return newWordPressClient(cfg, newHTTPClient())
}

func newWordPressClient(cfg *config.WordPress, httpClient *http.Client) *wordPressClientImpl {
	return &wordPressClientImpl{
		rest: &restClient{
			httpClient: httpClient,
			baseURL:    strings.TrimRight(cfg.BaseURL, "/") + "/wp-json/wp/v2",
			service:    "wordpress",
		},
	}
}

func (c *wordPressClientImpl) ListPosts(ctx context.Context, page, perPage int) ([]*model.Post, int, error) {
	v := url.Values{
		"page":     {strconv.Itoa(page)},
		"per_page": {strconv.Itoa(perPage)},
		"_fields":  {"id,slug,date,link,title,excerpt,featured_media"},
	}

	var posts []*model.Post
	resp, err := c.rest.do(ctx, http.MethodGet, "/posts?"+v.Encode(), nil, &posts)
	if err != nil {
		return nil, 0, fmt.Errorf("list posts: %w", err)
	}
	return posts, headerInt(resp, "X-WP-TotalPages"), nil
}

func (c *wordPressClientImpl) getBySlug(ctx context.Context, kind, slug string) (*model.Post, error) {
	var posts []*model.Post
	path := "/" + kind + "?" + url.Values{"slug": {slug}}.Encode()
	if _, err := c.rest.do(ctx, http.MethodGet, path, nil, &posts); err != nil {
		return nil, fmt.Errorf("get %s %q: %w", kind, slug, err)
	}
	if len(posts) == 0 {
		return nil, fmt.Errorf("%s %q: %w", kind, slug, ErrNotFound)
	}
	return posts[0], nil
}

func (c *wordPressClientImpl) GetPostBySlug(ctx context.Context, slug string) (*model.Post, error) {
	return c.getBySlug(ctx, "posts", slug)
}

func (c *wordPressClientImpl) GetPageBySlug(ctx context.Context, slug string) (*model.Post, error) {
	return c.getBySlug(ctx, "pages", slug)
}

func (c *wordPressClientImpl) GetMedia(ctx context.Context, mediaID int64) (*model.Media, error) {
	var media model.Media
	if _, err := c.rest.do(ctx, http.MethodGet, fmt.Sprintf("/media/%d", mediaID), nil, &media); err != nil {
		return nil, fmt.Errorf("get media %d: %w", mediaID, err)
	}
	return &media, nil
}
