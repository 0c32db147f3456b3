package repository

import (
	"context"
	"errors"
	"storefront/internal/model"
	"time"

	"gorm.io/gorm"
)

var ErrOrderNotFound = errors.New("checkout order not found")

type OrderRepository interface {
	Create(ctx context.Context, order *model.CheckoutOrder) error
	FindByID(ctx context.Context, id string) (*model.CheckoutOrder, error)
	FindByPaymentID(ctx context.Context, paymentID string) (*model.CheckoutOrder, error)
	AttachPayment(ctx context.Context, id, paymentID, checkoutURL string) error
	Transition(ctx context.Context, tx *gorm.DB, id string, status model.CheckoutStatus) (bool, error)
	ListOpenOlderThan(ctx context.Context, age time.Duration) ([]*model.CheckoutOrder, error)
}

type orderRepoImpl struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepoImpl{
		db: db,
	}
}

func (r *orderRepoImpl) Create(ctx context.Context, order *model.CheckoutOrder) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *orderRepoImpl) find(ctx context.Context, column, value string) (*model.CheckoutOrder, error) {
	var order model.CheckoutOrder
	err := r.db.WithContext(ctx).
		Where(column+" = ?", value).
		First(&order).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *orderRepoImpl) FindByID(ctx context.Context, id string) (*model.CheckoutOrder, error) {
	return r.find(ctx, "id", id)
}

func (r *orderRepoImpl) FindByPaymentID(ctx context.Context, paymentID string) (*model.CheckoutOrder, error) {
	return r.find(ctx, "mollie_payment_id", paymentID)
}

func (r *orderRepoImpl) AttachPayment(ctx context.Context, id, paymentID, checkoutURL string) error {
	result := r.db.WithContext(ctx).Model(&model.CheckoutOrder{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"mollie_payment_id": paymentID,
			"checkout_url":      checkoutURL,
			"updated_at":        time.Now(),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// Transition moves an open order to status. It reports false when the order
// had already left the open state, so concurrent webhooks apply once.
func (r *orderRepoImpl) Transition(ctx context.Context, tx *gorm.DB, id string, status model.CheckoutStatus) (bool, error) {
	result := tx.WithContext(ctx).Model(&model.CheckoutOrder{}).
		Where("id = ? AND status = ?", id, model.CheckoutOpen).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *orderRepoImpl) ListOpenOlderThan(ctx context.Context, age time.Duration) ([]*model.CheckoutOrder, error) {
	var orders []*model.CheckoutOrder
	err := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", model.CheckoutOpen, time.Now().Add(-age)).
		Order("created_at").
		Find(&orders).Error

	if err != nil {
		return nil, err
	}

	return orders, nil
}
