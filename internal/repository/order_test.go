package repository

import (
	"context"
	"path/filepath"
	"storefront/internal/client"
	"storefront/internal/model"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := client.InitDatabase("sqlite://" + filepath.Join(t.TempDir(), "checkout.db"))
	require.NoError(t, err)
	return db
}

func openOrder(id string) *model.CheckoutOrder {
	return &model.CheckoutOrder{
		ID:           id,
		CartID:       "cart-" + id,
		WooOrderID:   100,
		Status:       model.CheckoutOpen,
		Amount:       "63.25",
		Currency:     "EUR",
		CustomerType: "b2c",
	}
}

func TestOrderRepository_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository(newTestDB(t))

	require.NoError(t, repo.Create(ctx, openOrder("o1")))
	require.NoError(t, repo.AttachPayment(ctx, "o1", "tr_1", "https://pay.example/tr_1"))

	got, err := repo.FindByID(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, "tr_1", got.MolliePaymentID)
	assert.Equal(t, "https://pay.example/tr_1", got.CheckoutURL)

	got, err = repo.FindByPaymentID(ctx, "tr_1")
	require.NoError(t, err)
	assert.Equal(t, "o1", got.ID)

	_, err = repo.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrOrderNotFound)

	assert.ErrorIs(t, repo.AttachPayment(ctx, "missing", "tr_2", ""), ErrOrderNotFound)
}

func TestOrderRepository_TransitionOnlyFromOpen(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewOrderRepository(db)
	require.NoError(t, repo.Create(ctx, openOrder("o1")))

	changed, err := repo.Transition(ctx, db, "o1", model.CheckoutPaid)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = repo.Transition(ctx, db, "o1", model.CheckoutFailed)
	require.NoError(t, err)
	assert.False(t, changed)

	got, err := repo.FindByID(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, model.CheckoutPaid, got.Status)
}

func TestOrderRepository_ListOpenOlderThan(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewOrderRepository(db)

	old := openOrder("old")
	old.MolliePaymentID = "tr_old"
	old.CreatedAt = time.Now().Add(-time.Hour)
	require.NoError(t, repo.Create(ctx, old))

	fresh := openOrder("fresh")
	fresh.MolliePaymentID = "tr_fresh"
	require.NoError(t, repo.Create(ctx, fresh))

	unpaid := openOrder("no-payment")
	unpaid.CreatedAt = time.Now().Add(-time.Hour)
	require.NoError(t, repo.Create(ctx, unpaid))

	paid := openOrder("paid")
	paid.MolliePaymentID = "tr_paid"
	paid.Status = model.CheckoutPaid
	paid.CreatedAt = time.Now().Add(-time.Hour)
	require.NoError(t, repo.Create(ctx, paid))

	orders, err := repo.ListOpenOlderThan(ctx, 15*time.Minute)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	ids := []string{orders[0].ID, orders[1].ID}
	assert.ElementsMatch(t, []string{"old", "no-payment"}, ids)
}

func TestWebhookEventRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewWebhookEventRepository(db)

	exists, err := repo.Exists(ctx, "tr_1:paid")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, repo.MarkProcessed(ctx, db, "tr_1:paid", "payment.paid"))
	// second delivery of the same event is a no-op
	require.NoError(t, repo.MarkProcessed(ctx, db, "tr_1:paid", "payment.paid"))

	exists, err = repo.Exists(ctx, "tr_1:paid")
	require.NoError(t, err)
	assert.True(t, exists)
}
