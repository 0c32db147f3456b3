package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"storefront/internal/config"
	"strconv"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// ErrSearchUnavailable covers every error response from the index, a missing
// index included, so none of them reach the customer as a 404.
var ErrSearchUnavailable = errors.New("search index unavailable")

type SearchQuery struct {
	Text       string
	Category   string
	Attributes map[string][]string
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	From       int
	Size       int
}

type FacetBucket struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}

type SearchResult struct {
	Total      int64                    `json:"total"`
	ProductIDs []int64                  `json:"product_ids"`
	Facets     map[string][]FacetBucket `json:"facets"`
}

type SearchClient interface {
	Search(ctx context.Context, q SearchQuery) (*SearchResult, error)
}

type priceRange struct {
	key      string
	from, to float64
}

var priceRanges = []priceRange{
	{"0-25", 0, 25},
	{"25-50", 25, 50},
	{"50-100", 50, 100},
	{"100-250", 100, 250},
	{"250+", 250, 0},
}

type elasticsearchClientImpl struct {
	es              *elasticsearch.Client
	index           string
	facetAttributes []string
}

func NewElasticsearchClient(cfg *config.Elasticsearch) (SearchClient, error) {
	return newElasticsearchClient(cfg, otelhttp.NewTransport(http.DefaultTransport))
}

func newElasticsearchClient(cfg *config.Elasticsearch, transport http.RoundTripper) (*elasticsearchClientImpl, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
		Transport: transport,
	})
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}

	return &elasticsearchClientImpl{
		es:              es,
		index:           cfg.Index,
		facetAttributes: cfg.FacetAttributes,
	}, nil
}

// buildQuery maps a SearchQuery onto the products index: name/sku/descriptions
// are full-text, categories and attributes.<name> are keywords, price is numeric.
func (c *elasticsearchClientImpl) buildQuery(q SearchQuery) map[string]interface{} {
	var must interface{} = map[string]interface{}{"match_all": map[string]interface{}{}}
	if q.Text != "" {
		must = map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     q.Text,
				"fields":    []string{"name^3", "sku^2", "short_description", "description"},
				"fuzziness": "AUTO",
			},
		}
	}

	filters := []interface{}{}
	if q.Category != "" {
		filters = append(filters, map[string]interface{}{
			"term": map[string]interface{}{"categories": q.Category},
		})
	}
	for _, name := range c.facetAttributes {
		if values := q.Attributes[name]; len(values) > 0 {
			filters = append(filters, map[string]interface{}{
				"terms": map[string]interface{}{"attributes." + name: values},
			})
		}
	}
	if q.MinPrice != nil || q.MaxPrice != nil {
		r := map[string]interface{}{}
		if q.MinPrice != nil {
			r["gte"] = q.MinPrice.InexactFloat64()
		}
		if q.MaxPrice != nil {
			r["lte"] = q.MaxPrice.InexactFloat64()
		}
		filters = append(filters, map[string]interface{}{"range": map[string]interface{}{"price": r}})
	}

	aggs := map[string]interface{}{
		"categories": map[string]interface{}{"terms": map[string]interface{}{"field": "categories", "size": 50}},
	}
	for _, name := range c.facetAttributes {
		aggs[name] = map[string]interface{}{"terms": map[string]interface{}{"field": "attributes." + name, "size": 50}}
	}
	ranges := make([]map[string]interface{}, 0, len(priceRanges))
	for _, pr := range priceRanges {
		r := map[string]interface{}{"key": pr.key, "from": pr.from}
		if pr.to > 0 {
			r["to"] = pr.to
		}
		ranges = append(ranges, r)
	}
	aggs["price"] = map[string]interface{}{"range": map[string]interface{}{"field": "price", "ranges": ranges}}

	size := q.Size
	if size <= 0 {
		size = 24
	}

	return map[string]interface{}{
		"from":    q.From,
		"size":    size,
		"_source": []string{"id"},
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must":   must,
				"filter": filters,
			},
		},
		"aggs": aggs,
	}
}

type searchResponse struct {
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []struct {
			ID     string `json:"_id"`
			Source struct {
				ID int64 `json:"id"`
			} `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
	Aggregations map[string]struct {
		Buckets []struct {
			Key      interface{} `json:"key"`
			DocCount int64       `json:"doc_count"`
		} `json:"buckets"`
	} `json:"aggregations"`
}

func (c *elasticsearchClientImpl) Search(ctx context.Context, q SearchQuery) (*SearchResult, error) {
	body, err := json.Marshal(c.buildQuery(q))
	if err != nil {
		return nil, fmt.Errorf("marshal search query: %w", err)
	}

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(c.index),
		c.es.Search.WithBody(bytes.NewReader(body)),
		c.es.Search.WithTrackTotalHits(true),
	)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		b, _ := io.ReadAll(io.LimitReader(res.Body, 64<<10))
		return nil, fmt.Errorf("%w: status %d: %s", ErrSearchUnavailable, res.StatusCode, b)
	}

	var sr searchResponse
	if err := json.NewDecoder(res.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("decode elasticsearch response: %w", err)
	}

	result := &SearchResult{
		Total:      sr.Hits.Total.Value,
		ProductIDs: make([]int64, 0, len(sr.Hits.Hits)),
		Facets:     make(map[string][]FacetBucket, len(sr.Aggregations)),
	}
	for _, hit := range sr.Hits.Hits {
		id := hit.Source.ID
		if id == 0 {
			id, _ = strconv.ParseInt(hit.ID, 10, 64)
		}
		if id > 0 {
			result.ProductIDs = append(result.ProductIDs, id)
		}
	}
	for name, agg := range sr.Aggregations {
		buckets := make([]FacetBucket, 0, len(agg.Buckets))
		for _, b := range agg.Buckets {
			buckets = append(buckets, FacetBucket{Key: fmt.Sprint(b.Key), Count: b.DocCount})
		}
		result.Facets[name] = buckets
	}

	return result, nil
}
