package pricing

import "github.com/shopspring/decimal"

type Totals struct {
	SubtotalNet        decimal.Decimal `json:"subtotal_net"`
	SubtotalGross      decimal.Decimal `json:"subtotal_gross"`
	DiscountNet        decimal.Decimal `json:"discount_net"`
	DiscountGross      decimal.Decimal `json:"discount_gross"`
	ShippingNet        decimal.Decimal `json:"shipping_net"`
	ShippingGross      decimal.Decimal `json:"shipping_gross"`
	Tax                decimal.Decimal `json:"tax"`
	TotalNet           decimal.Decimal `json:"total_net"`
	TotalGross         decimal.Decimal `json:"total_gross"`
	DisplaySubtotal    decimal.Decimal `json:"display_subtotal"`
	DisplayIncludesTax bool            `json:"display_includes_tax"`
	TaxRate            decimal.Decimal `json:"tax_rate"`
	Currency           string          `json:"currency"`
}

// CalculateTotals sums priced lines, takes off the coupon discount and adds
// shipping. Shipping is free once the discounted gross subtotal reaches the
// policy threshold or the coupon grants it.
func CalculateTotals(lines []Line, discount Discount, customer Customer, rate decimal.Decimal, policy Policy) Totals {
	t := Totals{
		SubtotalNet:        decimal.Zero,
		SubtotalGross:      decimal.Zero,
		DiscountNet:        decimal.Zero,
		DiscountGross:      decimal.Zero,
		ShippingNet:        decimal.Zero,
		ShippingGross:      decimal.Zero,
		DisplayIncludesTax: !customer.SeesNetPrices(),
		TaxRate:            rate,
		Currency:           policy.Currency,
	}

	for _, l := range lines {
		t.SubtotalNet = t.SubtotalNet.Add(l.Net)
		t.SubtotalGross = t.SubtotalGross.Add(l.Gross)
	}

	if discount.Amount.IsPositive() {
		t.DiscountGross = decimal.Min(discount.Amount, t.SubtotalGross)
		t.DiscountNet = decimal.Min(t.DiscountGross.Div(taxFactor(rate)).Round(2), t.SubtotalNet)
	}

	discounted := t.SubtotalGross.Sub(t.DiscountGross)
	freeByThreshold := policy.FreeShippingThreshold.IsPositive() && discounted.GreaterThanOrEqual(policy.FreeShippingThreshold)
	if len(lines) > 0 && !discount.FreeShipping && !freeByThreshold {
		t.ShippingGross = policy.ShippingFlatRate
		t.ShippingNet = policy.ShippingFlatRate.Div(taxFactor(rate)).Round(2)
	}

	t.TotalGross = decimal.Max(discounted.Add(t.ShippingGross), decimal.Zero)
	t.TotalNet = decimal.Max(t.SubtotalNet.Sub(t.DiscountNet).Add(t.ShippingNet), decimal.Zero)
	t.Tax = t.TotalGross.Sub(t.TotalNet)

	if customer.SeesNetPrices() {
		t.DisplaySubtotal = t.SubtotalNet
	} else {
		t.DisplaySubtotal = t.SubtotalGross
	}

	return t
}
