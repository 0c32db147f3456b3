// Package pricing holds the storefront's price, discount, tax, stock and
// delivery rules. Every function is pure: callers pass in the WooCommerce
// records, the tax rate, the customer type and a Policy.
package pricing

import (
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

type Customer string

const (
	CustomerB2C Customer = "b2c"
	CustomerB2B Customer = "b2b"
)

// SeesNetPrices reports whether prices are displayed excluding VAT.
func (c Customer) SeesNetPrices() bool {
	return c == CustomerB2B
}

type VolumeTier struct {
	MinQty  int             `json:"min_qty"`
	Percent decimal.Decimal `json:"percent"`
}

type Policy struct {
	PricesIncludeTax      bool
	DefaultTaxRate        decimal.Decimal
	B2BDiscountPercent    decimal.Decimal
	VolumeTiers           []VolumeTier
	LeadTimeInStockDays   int
	LeadTimeBackorderDays int
	ShippingFlatRate      decimal.Decimal // gross
	FreeShippingThreshold decimal.Decimal // gross, zero disables
	Currency              string
}

func DefaultPolicy() Policy {
	return Policy{
		PricesIncludeTax:      true,
		DefaultTaxRate:        decimal.NewFromInt(21),
		B2BDiscountPercent:    decimal.Zero,
		LeadTimeInStockDays:   2,
		LeadTimeBackorderDays: 14,
		ShippingFlatRate:      decimal.RequireFromString("6.95"),
		FreeShippingThreshold: decimal.NewFromInt(100),
		Currency:              "EUR",
	}
}

type policyFile struct {
	PricesIncludeTax      *bool  `yaml:"prices_include_tax"`
	DefaultTaxRate        string `yaml:"default_tax_rate"`
	B2BDiscountPercent    string `yaml:"b2b_discount_percent"`
	LeadTimeInStockDays   *int   `yaml:"lead_time_in_stock_days"`
	LeadTimeBackorderDays *int   `yaml:"lead_time_backorder_days"`
	ShippingFlatRate      string `yaml:"shipping_flat_rate"`
	FreeShippingThreshold string `yaml:"free_shipping_threshold"`
	Currency              string `yaml:"currency"`
	VolumeTiers           []struct {
		MinQty  int    `yaml:"min_qty"`
		Percent string `yaml:"percent"`
	} `yaml:"volume_tiers"`
}

// LoadPolicy reads a YAML policy file on top of DefaultPolicy. An empty
// path returns the defaults.
func LoadPolicy(path string) (Policy, error) {
	policy := DefaultPolicy()
	if path == "" {
		return policy, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return policy, fmt.Errorf("read pricing policy: %w", err)
	}

	return ParsePolicy(data)
}

// WithCurrency returns p priced in code. An empty code keeps the policy's
// own currency.
func (p Policy) WithCurrency(code string) Policy {
	if code = strings.TrimSpace(code); code != "" {
		p.Currency = strings.ToUpper(code)
	}
	return p
}

func ParsePolicy(data []byte) (Policy, error) {
	policy := DefaultPolicy()

	var f policyFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return policy, fmt.Errorf("decode pricing policy: %w", err)
	}

	if f.PricesIncludeTax != nil {
		policy.PricesIncludeTax = *f.PricesIncludeTax
	}
	if f.LeadTimeInStockDays != nil {
		policy.LeadTimeInStockDays = *f.LeadTimeInStockDays
	}
	if f.LeadTimeBackorderDays != nil {
		policy.LeadTimeBackorderDays = *f.LeadTimeBackorderDays
	}
	if f.Currency != "" {
		policy.Currency = f.Currency
	}

	decimals := []struct {
		name  string
		value string
		dst   *decimal.Decimal
	}{
		{"default_tax_rate", f.DefaultTaxRate, &policy.DefaultTaxRate},
		{"b2b_discount_percent", f.B2BDiscountPercent, &policy.B2BDiscountPercent},
		{"shipping_flat_rate", f.ShippingFlatRate, &policy.ShippingFlatRate},
		{"free_shipping_threshold", f.FreeShippingThreshold, &policy.FreeShippingThreshold},
	}
	for _, d := range decimals {
		if d.value == "" {
			continue
		}
		v, err := decimal.NewFromString(d.value)
		if err != nil {
			return policy, fmt.Errorf("pricing policy %s: %w", d.name, err)
		}
		*d.dst = v
	}

	for _, t := range f.VolumeTiers {
		pct, err := decimal.NewFromString(t.Percent)
		if err != nil {
			return policy, fmt.Errorf("pricing policy volume tier %d: %w", t.MinQty, err)
		}
		if t.MinQty < 1 {
			return policy, fmt.Errorf("pricing policy volume tier min_qty must be positive, got %d", t.MinQty)
		}
		policy.VolumeTiers = append(policy.VolumeTiers, VolumeTier{MinQty: t.MinQty, Percent: pct})
	}
	sortTiers(policy.VolumeTiers)

	return policy, nil
}
