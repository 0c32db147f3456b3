package service

import (
	"context"
	"fmt"
	"storefront/internal/cache"
	"storefront/internal/client"
	"storefront/internal/config"
	"storefront/internal/dto"
	"storefront/internal/logger"
	"storefront/internal/model"
	"storefront/internal/pricing"
	"strconv"
	"strings"
)

const (
	defaultPerPage = 24
	maxPerPage     = 100
)

type CatalogService interface {
	ListProducts(ctx context.Context, customer pricing.Customer, req dto.ProductListRequest) (*dto.ProductList, error)
	GetProduct(ctx context.Context, customer pricing.Customer, slug string) (*dto.Product, error)
	CategoryTree(ctx context.Context) ([]*dto.Category, error)
	GetCategory(ctx context.Context, customer pricing.Customer, slug string, page, perPage int) (*dto.CategoryPage, error)
	// Product loads the raw product through the catalog cache.
	Product(ctx context.Context, productID int64) (*model.Product, error)
	Warmup(ctx context.Context) error
}

type catalogServiceImpl struct {
	woo    client.WooCommerceClient
	cache  cache.Cache
	ttl    config.Redis
	tax    TaxService
	pricer *productPricer
	log    logger.Logger
}

func NewCatalogService(
	woo client.WooCommerceClient,
	c cache.Cache,
	ttl config.Redis,
	tax TaxService,
	policy pricing.Policy,
	log logger.Logger,
) CatalogService {
	return &catalogServiceImpl{
		woo:    woo,
		cache:  c,
		ttl:    ttl,
		tax:    tax,
		pricer: newProductPricer(tax, policy, log),
		log:    log,
	}
}

func normalizePage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return page, perPage
}

func (s *catalogServiceImpl) categories(ctx context.Context) ([]*model.Category, error) {
	return cache.Remember(ctx, s.cache, s.log, "categories", s.ttl.TaxonomyTTL, s.woo.ListCategories)
}

func (s *catalogServiceImpl) category(ctx context.Context, slug string) (*model.Category, error) {
	return cache.Remember(ctx, s.cache, s.log, "category:"+slug, s.ttl.TaxonomyTTL, func(ctx context.Context) (*model.Category, error) {
		return s.woo.GetCategoryBySlug(ctx, slug)
	})
}

func (s *catalogServiceImpl) products(ctx context.Context, q client.ProductQuery) (*client.ProductPage, error) {
	key := fmt.Sprintf("products:%d:%s:%d:%d", q.CategoryID, strings.ToLower(q.Search), q.Page, q.PerPage)
	return cache.Remember(ctx, s.cache, s.log, key, s.ttl.CatalogTTL, func(ctx context.Context) (*client.ProductPage, error) {
		return s.woo.ListProducts(ctx, q)
	})
}

func (s *catalogServiceImpl) Product(ctx context.Context, productID int64) (*model.Product, error) {
	key := "product:" + strconv.FormatInt(productID, 10)
	return cache.Remember(ctx, s.cache, s.log, key, s.ttl.CatalogTTL, func(ctx context.Context) (*model.Product, error) {
		return s.woo.GetProduct(ctx, productID)
	})
}

func (s *catalogServiceImpl) productList(ctx context.Context, customer pricing.Customer, q client.ProductQuery) (*dto.ProductList, error) {
	page, err := s.products(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	list := &dto.ProductList{
		Products:   make([]*dto.Product, 0, len(page.Products)),
		Page:       q.Page,
		Total:      page.Total,
		TotalPages: page.TotalPages,
	}
	for _, p := range page.Products {
		list.Products = append(list.Products, s.pricer.view(ctx, p, customer, false))
	}
	return list, nil
}

func (s *catalogServiceImpl) ListProducts(ctx context.Context, customer pricing.Customer, req dto.ProductListRequest) (*dto.ProductList, error) {
	page, perPage := normalizePage(req.Page, req.PerPage)
	q := client.ProductQuery{
		Search:  strings.TrimSpace(req.Search),
		Page:    page,
		PerPage: perPage,
	}

	if req.Category != "" {
		category, err := s.category(ctx, req.Category)
		if err != nil {
			return nil, err
		}
		q.CategoryID = category.ID
	}

	return s.productList(ctx, customer, q)
}

func (s *catalogServiceImpl) GetProduct(ctx context.Context, customer pricing.Customer, slug string) (*dto.Product, error) {
	product, err := cache.Remember(ctx, s.cache, s.log, "product:slug:"+slug, s.ttl.CatalogTTL, func(ctx context.Context) (*model.Product, error) {
		return s.woo.GetProductBySlug(ctx, slug)
	})
	if err != nil {
		return nil, err
	}

	return s.pricer.view(ctx, product, customer, true), nil
}

func categoryView(c *model.Category) *dto.Category {
	v := &dto.Category{
		ID:          c.ID,
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		Count:       c.Count,
	}
	if c.Image != nil {
		v.Image = c.Image.Src
	}
	return v
}

// buildTree nests categories under their parents, keeping WooCommerce's
// order. Categories whose parent is missing become roots.
func buildTree(categories []*model.Category) []*dto.Category {
	nodes := make(map[int64]*dto.Category, len(categories))
	for _, c := range categories {
		nodes[c.ID] = categoryView(c)
	}

	roots := make([]*dto.Category, 0)
	for _, c := range categories {
		node := nodes[c.ID]
		if parent, ok := nodes[c.Parent]; ok && c.Parent != 0 && c.Parent != c.ID {
			parent.Children = append(parent.Children, node)
			continue
		}
		roots = append(roots, node)
	}
	return roots
}

func (s *catalogServiceImpl) CategoryTree(ctx context.Context) ([]*dto.Category, error) {
	categories, err := s.categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return buildTree(categories), nil
}

func (s *catalogServiceImpl) GetCategory(ctx context.Context, customer pricing.Customer, slug string, page, perPage int) (*dto.CategoryPage, error) {
	category, err := s.category(ctx, slug)
	if err != nil {
		return nil, err
	}

	page, perPage = normalizePage(page, perPage)
	products, err := s.productList(ctx, customer, client.ProductQuery{
		CategoryID: category.ID,
		Page:       page,
		PerPage:    perPage,
	})
	if err != nil {
		return nil, err
	}

	return &dto.CategoryPage{
		Category: categoryView(category),
		Products: *products,
	}, nil
}

// Warmup refreshes the long-lived taxonomy entries: categories and the
// standard tax rates.
func (s *catalogServiceImpl) Warmup(ctx context.Context) error {
	if err := s.cache.Delete(ctx, "categories"); err != nil {
		s.log.Warnf("drop cached categories: %v", err)
	}
	categories, err := s.categories(ctx)
	if err != nil {
		return fmt.Errorf("warm categories: %w", err)
	}

	if err := s.tax.Refresh(ctx); err != nil {
		return fmt.Errorf("warm tax rates: %w", err)
	}

	s.log.Infof("catalog warm-up done: %d categories", len(categories))
	return nil
}
