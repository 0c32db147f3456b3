package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"storefront/internal/cache"
	"storefront/internal/client"
	clientMocks "storefront/internal/client/mocks"
	"storefront/internal/dto"
	"storefront/internal/model"
	"storefront/internal/pricing"
	"storefront/internal/repository"
	repoMocks "storefront/internal/repository/mocks"
	"storefront/internal/telemetry"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"gorm.io/gorm"
)

type checkoutFixture struct {
	svc    CheckoutService
	db     *gorm.DB
	orders repository.OrderRepository
	carts  *repoMocks.MockCartRepository
	woo    *clientMocks.MockWooCommerceClient
	mollie *clientMocks.MockMollieClient
}

func newCheckoutFixture(t *testing.T) *checkoutFixture {
	t.Helper()

	db, err := client.InitDatabase("sqlite://" + filepath.Join(t.TempDir(), "checkout.db"))
	require.NoError(t, err)

	metrics, err := telemetry.NewMetrics(otel.Meter("test"))
	require.NoError(t, err)

	f := &checkoutFixture{
		db:     db,
		orders: repository.NewOrderRepository(db),
		carts:  new(repoMocks.MockCartRepository),
		woo:    new(clientMocks.MockWooCommerceClient),
		mollie: new(clientMocks.MockMollieClient),
	}

	policy := pricing.DefaultPolicy()
	catalog := NewCatalogService(f.woo, cache.NewNoop(), testTTL, vat21, policy, discardLog)
	carts := NewCartService(f.carts, f.woo, catalog, vat21, policy, discardLog)

	f.svc = NewCheckoutService(
		db,
		f.woo,
		f.mollie,
		f.carts,
		f.orders,
		repository.NewWebhookEventRepository(db),
		carts,
		policy,
		"https://shop.test/",
		metrics,
		discardLog,
	)
	return f
}

func checkoutRequest() dto.CheckoutRequest {
	return dto.CheckoutRequest{
		CartID: "c1",
		Billing: model.Address{
			FirstName: "Anne",
			LastName:  "de Vries",
			Address1:  "Keizersgracht 1",
			City:      "Amsterdam",
			Postcode:  "1015 CJ",
			Country:   "NL",
			Email:     "anne@example.com",
		},
	}
}

func (f *checkoutFixture) seedOrder(t *testing.T, id, paymentID string) {
	t.Helper()
	require.NoError(t, f.orders.Create(context.Background(), &model.CheckoutOrder{
		ID:              id,
		CartID:          "c1",
		WooOrderID:      501,
		MolliePaymentID: paymentID,
		Status:          model.CheckoutOpen,
		Amount:          "31.15",
		Currency:        "EUR",
		CustomerType:    "b2c",
		CreatedAt:       time.Now().Add(-time.Hour),
	}))
}

func TestCheckoutService_Place(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(t)

	f.carts.On("Get", mock.Anything, "c1").Return(cartWithLine(1, 2), nil).Once()
	f.woo.On("GetProduct", mock.Anything, int64(1)).Return(stocked(1, 10), nil)
	f.woo.On("CreateOrder", mock.Anything, mock.MatchedBy(func(o *model.WooOrder) bool {
		return o.Status == "pending" && !o.SetPaid &&
			len(o.LineItems) == 1 && o.LineItems[0].Quantity == 2 && o.LineItems[0].Total == "20.00" &&
			len(o.ShippingLines) == 1 && o.ShippingLines[0].Total == "5.74" &&
			o.Billing.Email == "anne@example.com" && o.Shipping.City == "Amsterdam" &&
			o.CustomerID == 42
	})).Return(&model.WooOrder{ID: 501}, nil).Once()
	f.mollie.On("CreatePayment", mock.Anything, mock.MatchedBy(func(r *client.PaymentRequest) bool {
		return r.Amount.Value == "31.15" && r.Amount.Currency == "EUR" &&
			strings.HasPrefix(r.RedirectURL, "https://shop.test/checkout/return?order=") &&
			r.WebhookURL == "https://shop.test/api/mollie/webhook" &&
			r.Metadata["woo_order_id"] == "501"
	})).Return(&model.MolliePayment{
		ID:     "tr_1",
		Status: model.MollieStatusOpen,
		Links:  model.MollieLinks{Checkout: &model.MollieLink{Href: "https://mollie.test/pay/tr_1"}},
	}, nil).Once()
	f.woo.On("UpdateOrder", mock.Anything, int64(501), &model.WooOrder{TransactionID: "tr_1"}).
		Return(&model.WooOrder{ID: 501}, nil).Once()

	req := checkoutRequest()
	req.UserID = 42
	resp, err := f.svc.Place(ctx, pricing.CustomerB2C, req)
	require.NoError(t, err)

	assert.Equal(t, int64(501), resp.WooOrderID)
	assert.Equal(t, "https://mollie.test/pay/tr_1", resp.CheckoutURL)
	assert.Equal(t, "31.15", resp.Totals.TotalGross.StringFixed(2))

	status, err := f.svc.Get(ctx, resp.CheckoutID)
	require.NoError(t, err)
	assert.Equal(t, model.CheckoutOpen, status.Status)
	assert.Equal(t, "31.15", status.Amount)

	stored, err := f.orders.FindByID(ctx, resp.CheckoutID)
	require.NoError(t, err)
	assert.Equal(t, "tr_1", stored.MolliePaymentID)

	f.woo.AssertExpectations(t)
	f.mollie.AssertExpectations(t)
}

func TestCheckoutService_PlaceRejects(t *testing.T) {
	ctx := context.Background()

	t.Run("missing email", func(t *testing.T) {
		f := newCheckoutFixture(t)
		req := checkoutRequest()
		req.Billing.Email = " "
		_, err := f.svc.Place(ctx, pricing.CustomerB2C, req)
		assert.ErrorIs(t, err, ErrMissingEmail)
	})

	t.Run("empty cart", func(t *testing.T) {
		f := newCheckoutFixture(t)
		f.carts.On("Get", mock.Anything, "c1").Return(&model.Cart{ID: "c1"}, nil).Once()
		_, err := f.svc.Place(ctx, pricing.CustomerB2C, checkoutRequest())
		assert.ErrorIs(t, err, ErrEmptyCart)
	})

	t.Run("stock changed", func(t *testing.T) {
		f := newCheckoutFixture(t)
		cart := cartWithLine(1, 3)
		cart.Lines = append(cart.Lines, model.CartLine{ProductID: 2, Quantity: 1, UnitNet: "10.00"})

		f.carts.On("Get", mock.Anything, "c1").Return(cart, nil).Once()
		f.woo.On("GetProduct", mock.Anything, int64(1)).Return(stocked(1, 1), nil)
		f.woo.On("GetProduct", mock.Anything, int64(2)).Return(stocked(2, 0), nil)
		f.carts.On("Save", mock.Anything, mock.MatchedBy(func(c *model.Cart) bool {
			return len(c.Lines) == 1 && c.Lines[0].Quantity == 1
		})).Return(nil).Once()

		_, err := f.svc.Place(ctx, pricing.CustomerB2C, checkoutRequest())
		require.ErrorIs(t, err, ErrStockChanged)

		var changed *StockChangedError
		require.True(t, errors.As(err, &changed))
		require.Len(t, changed.Cart.Lines, 1)
		assert.Equal(t, 1, changed.Cart.Lines[0].Quantity)
		f.woo.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
		f.carts.AssertExpectations(t)
	})

	t.Run("payment creation fails", func(t *testing.T) {
		f := newCheckoutFixture(t)
		f.carts.On("Get", mock.Anything, "c1").Return(cartWithLine(1, 1), nil).Once()
		f.woo.On("GetProduct", mock.Anything, int64(1)).Return(stocked(1, 10), nil)
		f.woo.On("CreateOrder", mock.Anything, mock.Anything).Return(&model.WooOrder{ID: 777}, nil).Once()
		f.mollie.On("CreatePayment", mock.Anything, mock.Anything).
			Return(nil, &client.APIError{Service: "mollie", StatusCode: 422, Message: "amount too low"}).Once()
		f.woo.On("UpdateOrder", mock.Anything, int64(777), &model.WooOrder{Status: "failed"}).
			Return(&model.WooOrder{ID: 777}, nil).Once()

		_, err := f.svc.Place(ctx, pricing.CustomerB2C, checkoutRequest())
		assert.ErrorIs(t, err, ErrPaymentCreation)

		var orders []model.CheckoutOrder
		require.NoError(t, f.db.Find(&orders).Error)
		require.Len(t, orders, 1)
		assert.Equal(t, model.CheckoutFailed, orders[0].Status)
		f.woo.AssertExpectations(t)
	})
}

func TestCheckoutService_HandleWebhook(t *testing.T) {
	ctx := context.Background()

	t.Run("paid payment completes the order once", func(t *testing.T) {
		f := newCheckoutFixture(t)
		f.seedOrder(t, "o1", "tr_1")

		f.mollie.On("GetPayment", mock.Anything, "tr_1").
			Return(&model.MolliePayment{ID: "tr_1", Status: model.MollieStatusPaid}, nil).Twice()
		f.woo.On("UpdateOrder", mock.Anything, int64(501), mock.MatchedBy(func(o *model.WooOrder) bool {
			return o.Status == "processing" && o.SetPaid && o.TransactionID == "tr_1"
		})).Return(&model.WooOrder{ID: 501}, nil).Once()
		f.carts.On("Delete", mock.Anything, "c1").Return(nil).Once()

		require.NoError(t, f.svc.HandleWebhook(ctx, "tr_1"))
		require.NoError(t, f.svc.HandleWebhook(ctx, "tr_1"))

		order, err := f.orders.FindByID(ctx, "o1")
		require.NoError(t, err)
		assert.Equal(t, model.CheckoutPaid, order.Status)

		f.woo.AssertExpectations(t)
		f.carts.AssertExpectations(t)
		f.mollie.AssertExpectations(t)
	})

	t.Run("open payment changes nothing", func(t *testing.T) {
		f := newCheckoutFixture(t)
		f.seedOrder(t, "o1", "tr_1")
		f.mollie.On("GetPayment", mock.Anything, "tr_1").
			Return(&model.MolliePayment{ID: "tr_1", Status: model.MollieStatusPending}, nil).Once()

		require.NoError(t, f.svc.HandleWebhook(ctx, "tr_1"))

		order, err := f.orders.FindByID(ctx, "o1")
		require.NoError(t, err)
		assert.Equal(t, model.CheckoutOpen, order.Status)
		f.woo.AssertNotCalled(t, "UpdateOrder", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("expired payment cancels without dropping the cart", func(t *testing.T) {
		f := newCheckoutFixture(t)
		f.seedOrder(t, "o1", "tr_1")
		f.mollie.On("GetPayment", mock.Anything, "tr_1").
			Return(&model.MolliePayment{ID: "tr_1", Status: model.MollieStatusExpired}, nil).Once()
		f.woo.On("UpdateOrder", mock.Anything, int64(501), &model.WooOrder{Status: "cancelled"}).
			Return(&model.WooOrder{ID: 501}, nil).Once()

		require.NoError(t, f.svc.HandleWebhook(ctx, "tr_1"))

		order, err := f.orders.FindByID(ctx, "o1")
		require.NoError(t, err)
		assert.Equal(t, model.CheckoutExpired, order.Status)
		f.carts.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("woocommerce failure rolls back for a retry", func(t *testing.T) {
		f := newCheckoutFixture(t)
		f.seedOrder(t, "o1", "tr_1")
		f.mollie.On("GetPayment", mock.Anything, "tr_1").
			Return(&model.MolliePayment{ID: "tr_1", Status: model.MollieStatusFailed}, nil).Twice()
		f.woo.On("UpdateOrder", mock.Anything, int64(501), &model.WooOrder{Status: "failed"}).
			Return(nil, errors.New("woocommerce unavailable")).Once()

		assert.Error(t, f.svc.HandleWebhook(ctx, "tr_1"))

		order, err := f.orders.FindByID(ctx, "o1")
		require.NoError(t, err)
		assert.Equal(t, model.CheckoutOpen, order.Status)

		f.woo.On("UpdateOrder", mock.Anything, int64(501), &model.WooOrder{Status: "failed"}).
			Return(&model.WooOrder{ID: 501}, nil).Once()
		require.NoError(t, f.svc.HandleWebhook(ctx, "tr_1"))

		order, err = f.orders.FindByID(ctx, "o1")
		require.NoError(t, err)
		assert.Equal(t, model.CheckoutFailed, order.Status)
	})

	t.Run("unknown payment is acknowledged", func(t *testing.T) {
		f := newCheckoutFixture(t)
		f.mollie.On("GetPayment", mock.Anything, "tr_x").
			Return(&model.MolliePayment{ID: "tr_x", Status: model.MollieStatusPaid}, nil).Once()

		assert.NoError(t, f.svc.HandleWebhook(ctx, "tr_x"))
	})

	t.Run("payment unknown to mollie is acknowledged", func(t *testing.T) {
		f := newCheckoutFixture(t)
		notFound := fmt.Errorf("get mollie payment tr_bogus: %w",
			&client.APIError{Service: "mollie", StatusCode: http.StatusNotFound, Message: "No payment exists with token tr_bogus."})
		f.mollie.On("GetPayment", mock.Anything, "tr_bogus").Return(nil, notFound).Once()

		assert.NoError(t, f.svc.HandleWebhook(ctx, "tr_bogus"))
		f.woo.AssertNotCalled(t, "UpdateOrder", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("mollie server error is retried", func(t *testing.T) {
		f := newCheckoutFixture(t)
		f.mollie.On("GetPayment", mock.Anything, "tr_1").
			Return(nil, &client.APIError{Service: "mollie", StatusCode: http.StatusBadGateway, Message: "bad gateway"}).Once()

		assert.Error(t, f.svc.HandleWebhook(ctx, "tr_1"))
	})

	t.Run("mollie unavailable", func(t *testing.T) {
		f := newCheckoutFixture(t)
		f.mollie.On("GetPayment", mock.Anything, "tr_1").Return(nil, errors.New("timeout")).Once()

		assert.Error(t, f.svc.HandleWebhook(ctx, "tr_1"))
	})
}

func TestCheckoutService_Reconcile(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(t)
	f.seedOrder(t, "o1", "tr_1")
	f.seedOrder(t, "o2", "tr_2")

	f.mollie.On("GetPayment", mock.Anything, "tr_1").
		Return(&model.MolliePayment{ID: "tr_1", Status: model.MollieStatusCanceled}, nil).Once()
	f.mollie.On("GetPayment", mock.Anything, "tr_2").
		Return(&model.MolliePayment{ID: "tr_2", Status: model.MollieStatusOpen}, nil).Once()
	f.woo.On("UpdateOrder", mock.Anything, int64(501), &model.WooOrder{Status: "cancelled"}).
		Return(&model.WooOrder{ID: 501}, nil).Once()

	moved, err := f.svc.Reconcile(ctx, 15*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, moved)

	order, err := f.orders.FindByID(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, model.CheckoutCanceled, order.Status)

	order, err = f.orders.FindByID(ctx, "o2")
	require.NoError(t, err)
	assert.Equal(t, model.CheckoutOpen, order.Status)
}

func TestCheckoutService_ReconcileExpiresOrdersWithoutPayment(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(t)
	f.seedOrder(t, "o1", "")

	f.woo.On("UpdateOrder", mock.Anything, int64(501), &model.WooOrder{Status: "cancelled"}).
		Return(&model.WooOrder{ID: 501}, nil).Once()

	moved, err := f.svc.Reconcile(ctx, 15*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, moved)

	order, err := f.orders.FindByID(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, model.CheckoutExpired, order.Status)
	f.mollie.AssertNotCalled(t, "GetPayment", mock.Anything, mock.Anything)
	f.woo.AssertExpectations(t)

	moved, err = f.svc.Reconcile(ctx, 15*time.Minute)
	require.NoError(t, err)
	assert.Zero(t, moved)
}
