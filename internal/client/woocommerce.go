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

type ProductQuery struct {
	CategoryID int64
	Search     string
	Include    []int64
	Page       int
	PerPage    int
}

func (q ProductQuery) values() url.Values {
	v := url.Values{}
	v.Set("status", "publish")
	if q.CategoryID > 0 {
		v.Set("category", strconv.FormatInt(q.CategoryID, 10))
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if len(q.Include) > 0 {
		ids := make([]string, len(q.Include))
		for i, id := range q.Include {
			ids[i] = strconv.FormatInt(id, 10)
		}
		v.Set("include", strings.Join(ids, ","))
		v.Set("orderby", "include")
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.PerPage > 0 {
		v.Set("per_page", strconv.Itoa(q.PerPage))
	}
	return v
}

type ProductPage struct {
	Products   []*model.Product
	Total      int
	TotalPages int
}

type WooCommerceClient interface {
	ListProducts(ctx context.Context, q ProductQuery) (*ProductPage, error)
	GetProduct(ctx context.Context, productID int64) (*model.Product, error)
	GetProductBySlug(ctx context.Context, slug string) (*model.Product, error)
	ListCategories(ctx context.Context) ([]*model.Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*model.Category, error)
	ListTaxRates(ctx context.Context, class string) ([]*model.TaxRate, error)
	GetCouponByCode(ctx context.Context, code string) (*model.Coupon, error)
	CreateOrder(ctx context.Context, order *model.WooOrder) (*model.WooOrder, error)
	UpdateOrder(ctx context.Context, orderID int64, order *model.WooOrder) (*model.WooOrder, error)
}

type wooCommerceClientImpl struct {
	rest *restClient
}

func NewWooCommerceClient(cfg *config.WooCommerce) WooCommerceClient {
	return newWooCommerceClient(cfg, newHTTPClient())
}

func newWooCommerceClient(cfg *config.WooCommerce, httpClient *http.Client) *wooCommerceClientImpl {
	return &wooCommerceClientImpl{
		rest: &restClient{
			httpClient: httpClient,
			baseURL:    strings.TrimRight(cfg.BaseURL, "/") + "/wp-json/wc/v3",
			service:    "woocommerce",
			authorize: func(req *http.Request) {
				req.SetBasicAuth(cfg.ConsumerKey, cfg.ConsumerSecret)
			},
		},
	}
}

func headerInt(resp *http.Response, name string) int {
	if resp == nil {
		return 0
	}
	n, _ := strconv.Atoi(resp.Header.Get(name))
	return n
}

func (c *wooCommerceClientImpl) ListProducts(ctx context.Context, q ProductQuery) (*ProductPage, error) {
	var products []*model.Product
	resp, err := c.rest.do(ctx, http.MethodGet, "/products?"+q.values().Encode(), nil, &products)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	return &ProductPage{
		Products:   products,
		Total:      headerInt(resp, "X-WP-Total"),
		TotalPages: headerInt(resp, "X-WP-TotalPages"),
	}, nil
}

func (c *wooCommerceClientImpl) GetProduct(ctx context.Context, productID int64) (*model.Product, error) {
	var product model.Product
	if _, err := c.rest.do(ctx, http.MethodGet, fmt.Sprintf("/products/%d", productID), nil, &product); err != nil {
		return nil, fmt.Errorf("get product %d: %w", productID, err)
	}
	return &product, nil
}

func (c *wooCommerceClientImpl) GetProductBySlug(ctx context.Context, slug string) (*model.Product, error) {
	var products []*model.Product
	path := "/products?" + url.Values{"slug": {slug}, "status": {"publish"}}.Encode()
	if _, err := c.rest.do(ctx, http.MethodGet, path, nil, &products); err != nil {
		return nil, fmt.Errorf("get product %q: %w", slug, err)
	}
	if len(products) == 0 {
		return nil, fmt.Errorf("product %q: %w", slug, ErrNotFound)
	}
	return products[0], nil
}

func (c *wooCommerceClientImpl) ListCategories(ctx context.Context) ([]*model.Category, error) {
	var all []*model.Category
	for page := 1; ; page++ {
		var categories []*model.Category
		path := fmt.Sprintf("/products/categories?per_page=100&hide_empty=true&page=%d", page)
		resp, err := c.rest.do(ctx, http.MethodGet, path, nil, &categories)
		if err != nil {
			return nil, fmt.Errorf("list categories: %w", err)
		}
		all = append(all, categories...)

		if page >= headerInt(resp, "X-WP-TotalPages") || len(categories) == 0 {
			return all, nil
		}
	}
}

func (c *wooCommerceClientImpl) GetCategoryBySlug(ctx context.Context, slug string) (*model.Category, error) {
	var categories []*model.Category
	path := "/products/categories?" + url.Values{"slug": {slug}}.Encode()
	if _, err := c.rest.do(ctx, http.MethodGet, path, nil, &categories); err != nil {
		return nil, fmt.Errorf("get category %q: %w", slug, err)
	}
	if len(categories) == 0 {
		return nil, fmt.Errorf("category %q: %w", slug, ErrNotFound)
	}
	return categories[0], nil
}

func (c *wooCommerceClientImpl) ListTaxRates(ctx context.Context, class string) ([]*model.TaxRate, error) {
	var rates []*model.TaxRate
	v := url.Values{"per_page": {"100"}}
	if class != "" {
		v.Set("class", class)
	}
	if _, err := c.rest.do(ctx, http.MethodGet, "/taxes?"+v.Encode(), nil, &rates); err != nil {
		return nil, fmt.Errorf("list tax rates: %w", err)
	}
	return rates, nil
}

func (c *wooCommerceClientImpl) GetCouponByCode(ctx context.Context, code string) (*model.Coupon, error) {
	var coupons []*model.Coupon
	path := "/coupons?" + url.Values{"code": {code}}.Encode()
	if _, err := c.rest.do(ctx, http.MethodGet, path, nil, &coupons); err != nil {
		return nil, fmt.Errorf("get coupon %q: %w", code, err)
	}
	// the code filter is a search, keep exact matches only
	for _, coupon := range coupons {
		if strings.EqualFold(coupon.Code, code) {
			return coupon, nil
		}
	}
	return nil, fmt.Errorf("coupon %q: %w", code, ErrNotFound)
}

func (c *wooCommerceClientImpl) CreateOrder(ctx context.Context, order *model.WooOrder) (*model.WooOrder, error) {
	var created model.WooOrder
	if _, err := c.rest.do(ctx, http.MethodPost, "/orders", order, &created); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	return &created, nil
}

func (c *wooCommerceClientImpl) UpdateOrder(ctx context.Context, orderID int64, order *model.WooOrder) (*model.WooOrder, error) {
	var updated model.WooOrder
	if _, err := c.rest.do(ctx, http.MethodPut, fmt.Sprintf("/orders/%d", orderID), order, &updated); err != nil {
		return nil, fmt.Errorf("update order %d: %w", orderID, err)
	}
	return &updated, nil
}
