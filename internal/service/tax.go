package service

import (
	"context"
	"sort"
	"storefront/internal/cache"
	"storefront/internal/client"
	"storefront/internal/logger"
	"storefront/internal/model"
	"storefront/internal/pricing"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type TaxService interface {
	// Rate returns the VAT percentage for a WooCommerce tax class ("" is the
	// standard class). It never fails: the policy default is used instead.
	Rate(ctx context.Context, class string) decimal.Decimal
	Refresh(ctx context.Context) error
}

type taxServiceImpl struct {
	woo     client.WooCommerceClient
	cache   cache.Cache
	ttl     time.Duration
	country string
	policy  pricing.Policy
	log     logger.Logger
}

func NewTaxService(
	woo client.WooCommerceClient,
	c cache.Cache,
	ttl time.Duration,
	country string,
	policy pricing.Policy,
	log logger.Logger,
) TaxService {
	return &taxServiceImpl{
		woo:     woo,
		cache:   c,
		ttl:     ttl,
		country: country,
		policy:  policy,
		log:     log,
	}
}

func taxCacheKey(class string) string {
	if class == "" {
		class = "standard"
	}
	return "tax:" + class
}

func (s *taxServiceImpl) rates(ctx context.Context, class string) ([]*model.TaxRate, error) {
	return cache.Remember(ctx, s.cache, s.log, taxCacheKey(class), s.ttl, func(ctx context.Context) ([]*model.TaxRate, error) {
		return s.woo.ListTaxRates(ctx, class)
	})
}

func (s *taxServiceImpl) Rate(ctx context.Context, class string) decimal.Decimal {
	rates, err := s.rates(ctx, class)
	if err != nil {
		s.log.Warnf("tax rates for class %q unavailable, using default %s%%: %v", class, s.policy.DefaultTaxRate, err)
		return s.policy.DefaultTaxRate
	}

	if rate, ok := pickRate(rates, s.country); ok {
		return rate
	}

	s.log.Warnf("no tax rate for class %q in %s, using default %s%%", class, s.country, s.policy.DefaultTaxRate)
	return s.policy.DefaultTaxRate
}

// Refresh reloads the standard rates into the cache.
func (s *taxServiceImpl) Refresh(ctx context.Context) error {
	if err := s.cache.Delete(ctx, taxCacheKey("")); err != nil {
		s.log.Warnf("drop cached tax rates: %v", err)
	}
	_, err := s.rates(ctx, "")
	return err
}

// pickRate prefers a rate for the exact country over a wildcard rate, and a
// lower priority number over a higher one.
func pickRate(rates []*model.TaxRate, country string) (decimal.Decimal, bool) {
	candidates := make([]*model.TaxRate, 0, len(rates))
	for _, r := range rates {
		if strings.EqualFold(r.Country, country) || r.Country == "" {
			candidates = append(candidates, r)
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		ci, cj := candidates[i].Country != "", candidates[j].Country != ""
		if ci != cj {
			return ci
		}
		return candidates[i].Priority < candidates[j].Priority
	})

	for _, r := range candidates {
		rate, err := decimal.NewFromString(strings.TrimSpace(r.Rate))
		if err == nil && !rate.IsNegative() {
			return rate, true
		}
	}
	return decimal.Zero, false
}
