package service

import (
	"context"
	"fmt"
	"storefront/internal/cache"
	"storefront/internal/client"
	clientMocks "storefront/internal/client/mocks"
	"storefront/internal/dto"
	"storefront/internal/model"
	"storefront/internal/pricing"
	"storefront/internal/repository"
	repoMocks "storefront/internal/repository/mocks"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestCartService() (CartService, *repoMocks.MockCartRepository, *clientMocks.MockWooCommerceClient) {
	carts := new(repoMocks.MockCartRepository)
	woo := new(clientMocks.MockWooCommerceClient)
	catalog := newTestCatalog(woo, cache.NewNoop())
	svc := NewCartService(carts, woo, catalog, vat21, pricing.DefaultPolicy(), discardLog)
	return svc, carts, woo
}

func cartWithLine(productID int64, qty int) *model.Cart {
	return &model.Cart{
		ID: "c1",
		Lines: []model.CartLine{
			{ProductID: productID, Name: "Product", Quantity: qty, UnitNet: "10.00", LeadDays: 2},
		},
	}
}

func TestCartService_Create(t *testing.T) {
	svc, carts, _ := newTestCartService()
	carts.On("Save", mock.Anything, mock.AnythingOfType("*model.Cart")).Return(nil).Once()

	view, err := svc.Create(context.Background(), pricing.CustomerB2C)
	require.NoError(t, err)
	assert.NotEmpty(t, view.ID)
	assert.Empty(t, view.Lines)
	assert.Equal(t, "0.00", view.Totals.TotalGross.StringFixed(2))
	carts.AssertExpectations(t)
}

func TestCartService_AddItem(t *testing.T) {
	ctx := context.Background()

	t.Run("clamps to stock", func(t *testing.T) {
		svc, carts, woo := newTestCartService()
		carts.On("Get", mock.Anything, "c1").Return(&model.Cart{ID: "c1"}, nil).Once()
		woo.On("GetProduct", mock.Anything, int64(1)).Return(stocked(1, 3), nil)
		carts.On("Save", mock.Anything, mock.MatchedBy(func(c *model.Cart) bool {
			return len(c.Lines) == 1 && c.Lines[0].Quantity == 3 && c.Lines[0].UnitNet == "10.00"
		})).Return(nil).Once()

		view, err := svc.AddItem(ctx, pricing.CustomerB2C, "c1", dto.AddItemRequest{ProductID: 1, Quantity: 5})
		require.NoError(t, err)

		require.Len(t, view.Lines, 1)
		assert.Equal(t, 3, view.Lines[0].Quantity)
		assert.Equal(t, 3, view.ItemCount)
		assert.Equal(t, "36.30", view.Totals.SubtotalGross.StringFixed(2))
		assert.Equal(t, "43.25", view.Totals.TotalGross.StringFixed(2))
		carts.AssertExpectations(t)
	})

	t.Run("adds to an existing line", func(t *testing.T) {
		svc, carts, woo := newTestCartService()
		carts.On("Get", mock.Anything, "c1").Return(cartWithLine(1, 2), nil).Once()
		woo.On("GetProduct", mock.Anything, int64(1)).Return(stocked(1, 10), nil)
		carts.On("Save", mock.Anything, mock.MatchedBy(func(c *model.Cart) bool {
			return len(c.Lines) == 1 && c.Lines[0].Quantity == 5
		})).Return(nil).Once()

		view, err := svc.AddItem(ctx, pricing.CustomerB2C, "c1", dto.AddItemRequest{ProductID: 1, Quantity: 3})
		require.NoError(t, err)
		assert.Equal(t, 5, view.Lines[0].Quantity)
		carts.AssertExpectations(t)
	})

	t.Run("backorders allowed keeps the quantity", func(t *testing.T) {
		svc, carts, woo := newTestCartService()
		product := stocked(1, 1)
		product.Backorders = model.BackordersYes
		carts.On("Get", mock.Anything, "c1").Return(&model.Cart{ID: "c1"}, nil).Once()
		woo.On("GetProduct", mock.Anything, int64(1)).Return(product, nil)
		carts.On("Save", mock.Anything, mock.MatchedBy(func(c *model.Cart) bool {
			return c.Lines[0].Quantity == 4 && c.Lines[0].Backordered == 3 && c.Lines[0].LeadDays == 14
		})).Return(nil).Once()

		view, err := svc.AddItem(ctx, pricing.CustomerB2C, "c1", dto.AddItemRequest{ProductID: 1, Quantity: 4})
		require.NoError(t, err)
		assert.Equal(t, 3, view.Lines[0].Delivery.Backordered)
		carts.AssertExpectations(t)
	})

	t.Run("out of stock", func(t *testing.T) {
		svc, carts, woo := newTestCartService()
		carts.On("Get", mock.Anything, "c1").Return(&model.Cart{ID: "c1"}, nil).Once()
		woo.On("GetProduct", mock.Anything, int64(1)).Return(stocked(1, 0), nil)

		_, err := svc.AddItem(ctx, pricing.CustomerB2C, "c1", dto.AddItemRequest{ProductID: 1, Quantity: 1})
		assert.ErrorIs(t, err, pricing.ErrOutOfStock)
		carts.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("negative quantity", func(t *testing.T) {
		svc, _, _ := newTestCartService()
		_, err := svc.AddItem(ctx, pricing.CustomerB2C, "c1", dto.AddItemRequest{ProductID: 1, Quantity: -2})
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	})

	t.Run("unknown cart", func(t *testing.T) {
		svc, carts, _ := newTestCartService()
		carts.On("Get", mock.Anything, "gone").Return(nil, repository.ErrCartNotFound).Once()
		_, err := svc.AddItem(ctx, pricing.CustomerB2C, "gone", dto.AddItemRequest{ProductID: 1, Quantity: 1})
		assert.ErrorIs(t, err, repository.ErrCartNotFound)
	})
}

func TestCartService_UpdateAndRemove(t *testing.T) {
	ctx := context.Background()

	t.Run("quantity below one is raised to one", func(t *testing.T) {
		svc, carts, woo := newTestCartService()
		carts.On("Get", mock.Anything, "c1").Return(cartWithLine(1, 4), nil).Once()
		woo.On("GetProduct", mock.Anything, int64(1)).Return(stocked(1, 10), nil)
		carts.On("Save", mock.Anything, mock.MatchedBy(func(c *model.Cart) bool {
			return c.Lines[0].Quantity == 1
		})).Return(nil).Once()

		view, err := svc.UpdateItem(ctx, pricing.CustomerB2C, "c1", 1, 0)
		require.NoError(t, err)
		assert.Equal(t, 1, view.Lines[0].Quantity)
	})

	t.Run("update missing line", func(t *testing.T) {
		svc, carts, _ := newTestCartService()
		carts.On("Get", mock.Anything, "c1").Return(cartWithLine(1, 1), nil).Once()
		_, err := svc.UpdateItem(ctx, pricing.CustomerB2C, "c1", 2, 3)
		assert.ErrorIs(t, err, ErrLineNotFound)
	})

	t.Run("remove line", func(t *testing.T) {
		svc, carts, _ := newTestCartService()
		carts.On("Get", mock.Anything, "c1").Return(cartWithLine(1, 1), nil).Once()
		carts.On("Save", mock.Anything, mock.MatchedBy(func(c *model.Cart) bool {
			return len(c.Lines) == 0
		})).Return(nil).Once()

		view, err := svc.RemoveItem(ctx, pricing.CustomerB2C, "c1", 1)
		require.NoError(t, err)
		assert.Empty(t, view.Lines)
		assert.Equal(t, "0.00", view.Totals.ShippingGross.StringFixed(2))
	})

	t.Run("remove missing line", func(t *testing.T) {
		svc, carts, _ := newTestCartService()
		carts.On("Get", mock.Anything, "c1").Return(cartWithLine(1, 1), nil).Once()
		_, err := svc.RemoveItem(ctx, pricing.CustomerB2C, "c1", 9)
		assert.ErrorIs(t, err, ErrLineNotFound)
	})
}

func TestCartService_Coupons(t *testing.T) {
	ctx := context.Background()
	save10 := &model.Coupon{Code: "SAVE10", Amount: "10", DiscountType: model.CouponPercent}

	t.Run("preview does not save", func(t *testing.T) {
		svc, carts, woo := newTestCartService()
		carts.On("Get", mock.Anything, "c1").Return(cartWithLine(1, 2), nil).Once()
		woo.On("GetProduct", mock.Anything, int64(1)).Return(stocked(1, 10), nil)
		woo.On("GetCouponByCode", mock.Anything, "save10").Return(save10, nil).Once()

		view, err := svc.Get(ctx, pricing.CustomerB2C, "c1", "save10")
		require.NoError(t, err)

		require.NotNil(t, view.Coupon)
		assert.Equal(t, "save10", view.Coupon.Code)
		assert.Equal(t, "2.42", view.Totals.DiscountGross.StringFixed(2))
		assert.Equal(t, "28.73", view.Totals.TotalGross.StringFixed(2))
		carts.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("apply stores the code", func(t *testing.T) {
		svc, carts, woo := newTestCartService()
		carts.On("Get", mock.Anything, "c1").Return(cartWithLine(1, 2), nil).Once()
		woo.On("GetProduct", mock.Anything, int64(1)).Return(stocked(1, 10), nil)
		woo.On("GetCouponByCode", mock.Anything, "SAVE10").Return(save10, nil).Once()
		woo.On("GetCouponByCode", mock.Anything, "save10").Return(save10, nil).Once()
		carts.On("Save", mock.Anything, mock.MatchedBy(func(c *model.Cart) bool {
			return c.CouponCode == "save10"
		})).Return(nil).Once()

		view, err := svc.ApplyCoupon(ctx, pricing.CustomerB2C, "c1", " SAVE10 ")
		require.NoError(t, err)
		assert.Empty(t, view.CouponError)
		assert.Equal(t, "2.42", view.Totals.DiscountGross.StringFixed(2))
		carts.AssertExpectations(t)
	})

	t.Run("expired coupon is rejected", func(t *testing.T) {
		svc, carts, woo := newTestCartService()
		expired := &model.Coupon{Code: "old", Amount: "5", DiscountType: model.CouponFixedCart, DateExpiresGmt: "2020-01-01T00:00:00"}
		carts.On("Get", mock.Anything, "c1").Return(cartWithLine(1, 2), nil).Once()
		woo.On("GetProduct", mock.Anything, int64(1)).Return(stocked(1, 10), nil)
		woo.On("GetCouponByCode", mock.Anything, "old").Return(expired, nil).Once()

		_, err := svc.ApplyCoupon(ctx, pricing.CustomerB2C, "c1", "old")
		assert.ErrorIs(t, err, pricing.ErrCouponExpired)
		carts.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("unknown coupon", func(t *testing.T) {
		svc, carts, woo := newTestCartService()
		carts.On("Get", mock.Anything, "c1").Return(cartWithLine(1, 2), nil).Once()
		woo.On("GetProduct", mock.Anything, int64(1)).Return(stocked(1, 10), nil)
		woo.On("GetCouponByCode", mock.Anything, "nope").Return(nil, fmt.Errorf("coupon: %w", client.ErrNotFound)).Once()

		_, err := svc.ApplyCoupon(ctx, pricing.CustomerB2C, "c1", "nope")
		assert.ErrorIs(t, err, pricing.ErrCouponInvalid)
	})

	t.Run("stored coupon that stopped applying", func(t *testing.T) {
		svc, carts, woo := newTestCartService()
		cart := cartWithLine(1, 2)
		cart.CouponCode = "big"
		carts.On("Get", mock.Anything, "c1").Return(cart, nil).Once()
		woo.On("GetProduct", mock.Anything, int64(1)).Return(stocked(1, 10), nil)
		woo.On("GetCouponByCode", mock.Anything, "big").
			Return(&model.Coupon{Code: "big", Amount: "5", DiscountType: model.CouponFixedCart, MinimumAmount: "50"}, nil).Once()

		view, err := svc.Get(ctx, pricing.CustomerB2C, "c1", "")
		require.NoError(t, err)
		assert.Nil(t, view.Coupon)
		assert.Contains(t, view.CouponError, "minimum spend")
		assert.Equal(t, "31.15", view.Totals.TotalGross.StringFixed(2))
	})

	t.Run("remove coupon", func(t *testing.T) {
		svc, carts, woo := newTestCartService()
		cart := cartWithLine(1, 1)
		cart.CouponCode = "save10"
		carts.On("Get", mock.Anything, "c1").Return(cart, nil).Once()
		woo.On("GetProduct", mock.Anything, int64(1)).Return(stocked(1, 10), nil)
		carts.On("Save", mock.Anything, mock.MatchedBy(func(c *model.Cart) bool {
			return c.CouponCode == ""
		})).Return(nil).Once()

		view, err := svc.RemoveCoupon(ctx, pricing.CustomerB2C, "c1")
		require.NoError(t, err)
		assert.Nil(t, view.Coupon)
	})
}

func TestCartService_SnapshotPriceForMissingProduct(t *testing.T) {
	svc, carts, woo := newTestCartService()
	carts.On("Get", mock.Anything, "c1").Return(cartWithLine(1, 1), nil).Once()
	woo.On("GetProduct", mock.Anything, int64(1)).Return(nil, fmt.Errorf("product: %w", client.ErrNotFound))

	view, err := svc.Get(context.Background(), pricing.CustomerB2C, "c1", "")
	require.NoError(t, err)

	require.Len(t, view.Lines, 1)
	assert.Equal(t, "12.10", view.Lines[0].Unit.Display.StringFixed(2))
	assert.Equal(t, 2, view.Lines[0].Delivery.Days)
}
