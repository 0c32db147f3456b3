package pricing

import (
	"errors"
	"fmt"
	"storefront/internal/model"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrCouponExpired       = errors.New("coupon has expired")
	ErrCouponUsageLimit    = errors.New("coupon usage limit reached")
	ErrCouponMinimum       = errors.New("cart is below the coupon minimum spend")
	ErrCouponMaximum       = errors.New("cart is above the coupon maximum spend")
	ErrCouponNotApplicable = errors.New("coupon does not apply to any product in the cart")
	ErrCouponInvalid       = errors.New("coupon is invalid")
)

// WooCommerce returns GMT dates without a zone suffix.
const wooDateLayout = "2006-01-02T15:04:05"

type Discount struct {
	Code         string          `json:"code"`
	Amount       decimal.Decimal `json:"amount"` // gross
	FreeShipping bool            `json:"free_shipping"`
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func couponEligible(c *model.Coupon, productID int64) bool {
	if containsID(c.ExcludedProductIDs, productID) {
		return false
	}
	return len(c.ProductIDs) == 0 || containsID(c.ProductIDs, productID)
}

// CouponDiscount validates c against the priced lines and returns the gross
// discount it grants. Coupon amounts are read as gross amounts.
func CouponDiscount(c *model.Coupon, lines []Line, now time.Time) (Discount, error) {
	if c == nil {
		return Discount{Amount: decimal.Zero}, nil
	}
	d := Discount{Code: strings.ToLower(c.Code), Amount: decimal.Zero}

	if c.DateExpiresGmt != "" {
		expires, err := time.Parse(wooDateLayout, c.DateExpiresGmt)
		if err != nil {
			return d, fmt.Errorf("%w: expiry date %q", ErrCouponInvalid, c.DateExpiresGmt)
		}
		if !now.UTC().Before(expires) {
			return d, ErrCouponExpired
		}
	}

	if c.UsageLimit != nil && *c.UsageLimit > 0 && c.UsageCount >= *c.UsageLimit {
		return d, ErrCouponUsageLimit
	}

	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.Gross)
	}
	if minSpend, ok := parseAmount(c.MinimumAmount); ok && minSpend.IsPositive() && subtotal.LessThan(minSpend) {
		return d, fmt.Errorf("%w of %s", ErrCouponMinimum, minSpend.StringFixed(2))
	}
	if maxSpend, ok := parseAmount(c.MaximumAmount); ok && maxSpend.IsPositive() && subtotal.GreaterThan(maxSpend) {
		return d, fmt.Errorf("%w of %s", ErrCouponMaximum, maxSpend.StringFixed(2))
	}

	eligible := decimal.Zero
	var eligibleLines []Line
	for _, l := range lines {
		if couponEligible(c, l.ProductID) {
			eligible = eligible.Add(l.Gross)
			eligibleLines = append(eligibleLines, l)
		}
	}
	if len(eligibleLines) == 0 {
		return d, ErrCouponNotApplicable
	}

	amount, ok := parseAmount(c.Amount)
	if !ok {
		amount = decimal.Zero
	}

	switch c.DiscountType {
	case model.CouponPercent:
		d.Amount = eligible.Mul(decimal.Min(amount, hundred)).Div(hundred).Round(2)
	case model.CouponFixedCart:
		d.Amount = decimal.Min(amount, eligible)
	case model.CouponFixedProduct:
		for _, l := range eligibleLines {
			perLine := amount.Mul(decimal.NewFromInt(int64(l.Quantity)))
			d.Amount = d.Amount.Add(decimal.Min(perLine, l.Gross))
		}
	default:
		return d, fmt.Errorf("%w: discount type %q", ErrCouponInvalid, c.DiscountType)
	}

	d.FreeShipping = c.FreeShipping
	return d, nil
}
