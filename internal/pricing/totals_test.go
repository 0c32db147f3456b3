package pricing

import (
	"storefront/internal/model"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateTotals(t *testing.T) {
	policy := DefaultPolicy()
	lines := couponLines(t)

	t.Run("shipping below threshold", func(t *testing.T) {
		tot := CalculateTotals(lines, Discount{Amount: decimal.Zero}, CustomerB2C, vat21, policy)
		assertMoney(t, "56.30", tot.SubtotalGross)
		assertMoney(t, "46.53", tot.SubtotalNet)
		assertMoney(t, "6.95", tot.ShippingGross)
		assertMoney(t, "5.74", tot.ShippingNet)
		assertMoney(t, "63.25", tot.TotalGross)
		assertMoney(t, "52.27", tot.TotalNet)
		assertMoney(t, "10.98", tot.Tax)
		assertMoney(t, "56.30", tot.DisplaySubtotal)
		assert.True(t, tot.DisplayIncludesTax)
		assert.Equal(t, "EUR", tot.Currency)
	})

	t.Run("with coupon", func(t *testing.T) {
		tot := CalculateTotals(lines, Discount{Amount: decimal.RequireFromString("5.63")}, CustomerB2C, vat21, policy)
		assertMoney(t, "5.63", tot.DiscountGross)
		assertMoney(t, "4.65", tot.DiscountNet)
		assertMoney(t, "57.62", tot.TotalGross)
		assertMoney(t, "47.62", tot.TotalNet)
		assertMoney(t, "10.00", tot.Tax)
	})

	t.Run("coupon grants free shipping", func(t *testing.T) {
		tot := CalculateTotals(lines, Discount{Amount: decimal.Zero, FreeShipping: true}, CustomerB2C, vat21, policy)
		assert.True(t, tot.ShippingGross.IsZero())
		assertMoney(t, "56.30", tot.TotalGross)
	})

	t.Run("free shipping above threshold", func(t *testing.T) {
		unit, err := UnitPrice(&model.Product{ID: 3, RegularPrice: "60"}, CustomerB2C, 2, vat21, policy)
		require.NoError(t, err)
		tot := CalculateTotals([]Line{LinePrice(3, unit, 2)}, Discount{Amount: decimal.Zero}, CustomerB2C, vat21, policy)
		assert.True(t, tot.ShippingGross.IsZero())
		assertMoney(t, "120.00", tot.TotalGross)
	})

	t.Run("discount larger than subtotal", func(t *testing.T) {
		tot := CalculateTotals(lines, Discount{Amount: decimal.NewFromInt(500)}, CustomerB2C, vat21, policy)
		assertMoney(t, "56.30", tot.DiscountGross)
		assertMoney(t, "6.95", tot.TotalGross)
		assert.False(t, tot.TotalNet.IsNegative())
	})

	t.Run("business customer", func(t *testing.T) {
		tot := CalculateTotals(lines, Discount{Amount: decimal.Zero}, CustomerB2B, vat21, policy)
		assertMoney(t, "46.53", tot.DisplaySubtotal)
		assert.False(t, tot.DisplayIncludesTax)
	})

	t.Run("empty cart", func(t *testing.T) {
		tot := CalculateTotals(nil, Discount{Amount: decimal.Zero}, CustomerB2C, vat21, policy)
		assert.True(t, tot.TotalGross.IsZero())
		assert.True(t, tot.ShippingGross.IsZero())
	})
}
