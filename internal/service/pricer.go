package service

import (
	"context"
	"errors"
	"storefront/internal/dto"
	"storefront/internal/logger"
	"storefront/internal/model"
	"storefront/internal/pricing"
	"time"

	"github.com/shopspring/decimal"
)

// productPricer turns WooCommerce products into priced views. Catalog, search
// and cart all go through it so a product shows the same price everywhere.
type productPricer struct {
	tax    TaxService
	policy pricing.Policy
	log    logger.Logger
	now    func() time.Time
}

func newProductPricer(tax TaxService, policy pricing.Policy, log logger.Logger) *productPricer {
	return &productPricer{
		tax:    tax,
		policy: policy,
		log:    log,
		now:    time.Now,
	}
}

func (p *productPricer) unit(ctx context.Context, product *model.Product, customer pricing.Customer, qty int) (pricing.Price, error) {
	rate := p.tax.Rate(ctx, product.TaxClass)
	return pricing.UnitPrice(product, customer, qty, rate, p.policy)
}

func (p *productPricer) view(ctx context.Context, product *model.Product, customer pricing.Customer, detailed bool) *dto.Product {
	v := &dto.Product{
		ID:               product.ID,
		Name:             product.Name,
		Slug:             product.Slug,
		Sku:              product.Sku,
		Permalink:        product.Permalink,
		ShortDescription: product.ShortDescription,
		Images:           product.Images,
		Categories:       product.Categories,
		Stock:            pricing.Availability(product),
		Delivery:         pricing.EstimateDelivery(product, 1, p.policy, p.now()),
	}
	if detailed {
		v.Description = product.Description
		v.Attributes = product.Attributes
	}

	rate := p.tax.Rate(ctx, product.TaxClass)
	price, err := pricing.UnitPrice(product, customer, 1, rate, p.policy)
	if err != nil {
		if !errors.Is(err, pricing.ErrNoPrice) {
			p.log.Warnf("price product %d: %v", product.ID, err)
		}
		v.Price = pricing.Price{TaxRate: rate, DisplayIncludesTax: !customer.SeesNetPrices()}
		return v
	}
	v.Price = price
	v.Purchasable = v.Stock.State != pricing.OutOfStock

	for _, tier := range pricing.VolumeTiers(product, p.policy) {
		tierPrice, err := pricing.UnitPrice(product, customer, tier.MinQty, rate, p.policy)
		if err != nil {
			continue
		}
		v.VolumeTiers = append(v.VolumeTiers, dto.VolumeTier{
			MinQty:      tier.MinQty,
			Percent:     tier.Percent,
			UnitDisplay: tierPrice.Display,
		})
	}

	return v
}

// snapshotPrice rebuilds a unit price from the net price stored on a cart
// line, for products WooCommerce no longer returns.
func (p *productPricer) snapshotPrice(line model.CartLine, customer pricing.Customer, rate decimal.Decimal) pricing.Price {
	net, err := decimal.NewFromString(line.UnitNet)
	if err != nil {
		net = decimal.Zero
	}
	net, gross := pricing.NetGross(net.Round(2), rate, false)
	gross = gross.Round(2)

	price := pricing.Price{
		Net:                net,
		Gross:              gross,
		TaxRate:            rate,
		DisplayIncludesTax: !customer.SeesNetPrices(),
		DiscountPercent:    decimal.Zero,
		B2B:                customer == pricing.CustomerB2B,
	}
	if customer.SeesNetPrices() {
		price.Display, price.RegularDisplay = net, net
	} else {
		price.Display, price.RegularDisplay = gross, gross
	}
	return price
}
