package service

import (
	"context"
	"fmt"
	"storefront/internal/client"
	"storefront/internal/dto"
	"storefront/internal/logger"
	"storefront/internal/model"
	"storefront/internal/pricing"
	"strings"
)

type SearchService interface {
	Search(ctx context.Context, customer pricing.Customer, req dto.SearchRequest) (*dto.SearchResponse, error)
}

type searchServiceImpl struct {
	search client.SearchClient
	woo    client.WooCommerceClient
	pricer *productPricer
	log    logger.Logger
}

func NewSearchService(
	search client.SearchClient,
	woo client.WooCommerceClient,
	tax TaxService,
	policy pricing.Policy,
	log logger.Logger,
) SearchService {
	return &searchServiceImpl{
		search: search,
		woo:    woo,
		pricer: newProductPricer(tax, policy, log),
		log:    log,
	}
}

// Search runs the query against the index and hydrates the hits with live
// WooCommerce products, keeping the index's relevance order. Hits that are
// no longer published in WooCommerce are dropped.
func (s *searchServiceImpl) Search(ctx context.Context, customer pricing.Customer, req dto.SearchRequest) (*dto.SearchResponse, error) {
	page, perPage := normalizePage(req.Page, req.PerPage)

	result, err := s.search.Search(ctx, client.SearchQuery{
		Text:       strings.TrimSpace(req.Query),
		Category:   req.Category,
		Attributes: req.Attributes,
		MinPrice:   req.MinPrice,
		MaxPrice:   req.MaxPrice,
		From:       (page - 1) * perPage,
		Size:       perPage,
	})
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}

	resp := &dto.SearchResponse{
		Total:    int(result.Total),
		Page:     page,
		Products: make([]*dto.Product, 0, len(result.ProductIDs)),
		Facets:   result.Facets,
	}
	if len(result.ProductIDs) == 0 {
		return resp, nil
	}

	found, err := s.woo.ListProducts(ctx, client.ProductQuery{
		Include: result.ProductIDs,
		PerPage: len(result.ProductIDs),
	})
	if err != nil {
		return nil, fmt.Errorf("hydrate search hits: %w", err)
	}

	byID := make(map[int64]*model.Product, len(found.Products))
	for _, p := range found.Products {
		byID[p.ID] = p
	}
	for _, id := range result.ProductIDs {
		p, ok := byID[id]
		if !ok {
			s.log.Debugf("search hit %d is not in woocommerce, skipping", id)
			continue
		}
		resp.Products = append(resp.Products, s.pricer.view(ctx, p, customer, false))
	}

	return resp, nil
}
