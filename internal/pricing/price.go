package pricing

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"storefront/internal/model"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	MetaB2BPrice        = "b2b_price"
	MetaVolumeDiscounts = "volume_discounts"
)

var (
	ErrNoPrice = errors.New("product has no price")

	hundred = decimal.NewFromInt(100)
)

// Price is a unit price after every applicable discount. Net and Gross are
// rounded to cents; Display is what the customer type gets to see.
type Price struct {
	Net                decimal.Decimal `json:"net"`
	Gross              decimal.Decimal `json:"gross"`
	Display            decimal.Decimal `json:"display"`
	RegularDisplay     decimal.Decimal `json:"regular_display"`
	DisplayIncludesTax bool            `json:"display_includes_tax"`
	TaxRate            decimal.Decimal `json:"tax_rate"`
	DiscountPercent    decimal.Decimal `json:"discount_percent"`
	OnSale             bool            `json:"on_sale"`
	B2B                bool            `json:"b2b"`
}

func parseAmount(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return decimal.Zero, false
	}
	return d, true
}

// BasePrice is the shop price before customer-specific discounts: the sale
// price when it undercuts the regular price, otherwise the regular price,
// otherwise the computed "price" field.
func BasePrice(p *model.Product) (decimal.Decimal, error) {
	regular, hasRegular := parseAmount(p.RegularPrice)
	if sale, ok := parseAmount(p.SalePrice); ok && (!hasRegular || sale.LessThan(regular)) {
		return sale, nil
	}
	if hasRegular {
		return regular, nil
	}
	if price, ok := parseAmount(p.Price); ok {
		return price, nil
	}
	return decimal.Zero, fmt.Errorf("product %d: %w", p.ID, ErrNoPrice)
}

func regularPrice(p *model.Product) (decimal.Decimal, error) {
	if regular, ok := parseAmount(p.RegularPrice); ok {
		return regular, nil
	}
	return BasePrice(p)
}

func OnSale(p *model.Product) bool {
	regular, hasRegular := parseAmount(p.RegularPrice)
	sale, hasSale := parseAmount(p.SalePrice)
	return hasRegular && hasSale && sale.LessThan(regular)
}

func taxFactor(rate decimal.Decimal) decimal.Decimal {
	return decimal.NewFromInt(1).Add(rate.Div(hundred))
}

// NetGross splits a shop amount into unrounded net and gross values.
func NetGross(amount, rate decimal.Decimal, includesTax bool) (net, gross decimal.Decimal) {
	if includesTax {
		return amount.Div(taxFactor(rate)), amount
	}
	return amount, amount.Mul(taxFactor(rate))
}

// split rounds an amount in the shop's tax convention to cents on the side
// the shop entered it, then derives the other side from the rounded value.
func split(amount, rate decimal.Decimal, includesTax bool) (net, gross decimal.Decimal) {
	if includesTax {
		gross = amount.Round(2)
		return gross.Div(taxFactor(rate)).Round(2), gross
	}
	net = amount.Round(2)
	return net, net.Mul(taxFactor(rate)).Round(2)
}

func percentOff(amount, percent decimal.Decimal) decimal.Decimal {
	return amount.Mul(hundred.Sub(percent)).Div(hundred)
}

// VolumeTiers returns the product's tiers from the volume_discounts meta
// field, falling back to the policy tiers, in ascending min_qty order.
func VolumeTiers(p *model.Product, policy Policy) []VolumeTier {
	if raw, ok := p.Meta(MetaVolumeDiscounts); ok {
		if tiers, err := decodeTiers(raw); err == nil && len(tiers) > 0 {
			return tiers
		}
	}
	tiers := make([]VolumeTier, len(policy.VolumeTiers))
	copy(tiers, policy.VolumeTiers)
	sortTiers(tiers)
	return tiers
}

func decodeTiers(raw json.RawMessage) ([]VolumeTier, error) {
	// ACF sometimes stores the repeater as a JSON string
	var encoded string
	if err := json.Unmarshal(raw, &encoded); err == nil {
		raw = json.RawMessage(encoded)
	}

	var tiers []VolumeTier
	if err := json.Unmarshal(raw, &tiers); err != nil {
		return nil, err
	}

	valid := tiers[:0]
	for _, t := range tiers {
		if t.MinQty > 0 && t.Percent.IsPositive() && t.Percent.LessThan(hundred) {
			valid = append(valid, t)
		}
	}
	sortTiers(valid)
	return valid, nil
}

func sortTiers(tiers []VolumeTier) {
	sort.SliceStable(tiers, func(i, j int) bool {
		return tiers[i].MinQty < tiers[j].MinQty
	})
}

// tierFor picks the tier with the highest min_qty not above qty.
func tierFor(tiers []VolumeTier, qty int) (VolumeTier, bool) {
	var (
		found VolumeTier
		ok    bool
	)
	for _, t := range tiers {
		if t.MinQty <= qty {
			found, ok = t, true
		}
	}
	return found, ok
}

// UnitPrice prices one unit of p for the given customer type and quantity.
func UnitPrice(p *model.Product, customer Customer, qty int, rate decimal.Decimal, policy Policy) (Price, error) {
	base, err := BasePrice(p)
	if err != nil {
		return Price{}, err
	}
	regular, err := regularPrice(p)
	if err != nil {
		return Price{}, err
	}

	amount := base
	if customer == CustomerB2B {
		if b2b, ok := parseAmount(p.MetaString(MetaB2BPrice)); ok {
			// b2b_price is always entered net
			if policy.PricesIncludeTax {
				amount = b2b.Mul(taxFactor(rate))
			} else {
				amount = b2b
			}
		} else if policy.B2BDiscountPercent.IsPositive() {
			amount = percentOff(amount, policy.B2BDiscountPercent)
		}
	}

	price := Price{
		TaxRate:            rate,
		OnSale:             OnSale(p),
		B2B:                customer == CustomerB2B,
		DisplayIncludesTax: !customer.SeesNetPrices(),
		DiscountPercent:    decimal.Zero,
	}

	if tier, ok := tierFor(VolumeTiers(p, policy), qty); ok {
		amount = percentOff(amount, tier.Percent)
		price.DiscountPercent = tier.Percent
	}

	price.Net, price.Gross = split(amount, rate, policy.PricesIncludeTax)
	regularNet, regularGross := split(regular, rate, policy.PricesIncludeTax)

	if customer.SeesNetPrices() {
		price.Display, price.RegularDisplay = price.Net, regularNet
	} else {
		price.Display, price.RegularDisplay = price.Gross, regularGross
	}

	return price, nil
}

// Line is a priced cart line.
type Line struct {
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Unit      Price           `json:"unit"`
	Net       decimal.Decimal `json:"net"`
	Gross     decimal.Decimal `json:"gross"`
	Tax       decimal.Decimal `json:"tax"`
	Display   decimal.Decimal `json:"display"`
}

func LinePrice(productID int64, unit Price, qty int) Line {
	q := decimal.NewFromInt(int64(qty))
	line := Line{
		ProductID: productID,
		Quantity:  qty,
		Unit:      unit,
		Net:       unit.Net.Mul(q),
		Gross:     unit.Gross.Mul(q),
	}
	line.Tax = line.Gross.Sub(line.Net)
	line.Display = unit.Display.Mul(q)
	return line
}
