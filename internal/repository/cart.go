package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"storefront/internal/model"
	"time"

	"github.com/go-redis/redis/v8"
)

var ErrCartNotFound = errors.New("cart not found")

type CartRepository interface {
	Get(ctx context.Context, cartID string) (*model.Cart, error)
	Save(ctx context.Context, cart *model.Cart) error
	Delete(ctx context.Context, cartID string) error
}

type cartRepoImpl struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewCartRepository stores carts as JSON under <prefix>cart:<id>. Every save
// pushes the expiry ttl further out.
func NewCartRepository(client *redis.Client, prefix string, ttl time.Duration) CartRepository {
	return &cartRepoImpl{
		client: client,
		prefix: prefix + "cart:",
		ttl:    ttl,
	}
}

func (r *cartRepoImpl) Get(ctx context.Context, cartID string) (*model.Cart, error) {
	data, err := r.client.Get(ctx, r.prefix+cartID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCartNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load cart %s: %w", cartID, err)
	}

	var cart model.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, fmt.Errorf("decode cart %s: %w", cartID, err)
	}
	return &cart, nil
}

func (r *cartRepoImpl) Save(ctx context.Context, cart *model.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("encode cart %s: %w", cart.ID, err)
	}
	if err := r.client.Set(ctx, r.prefix+cart.ID, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("save cart %s: %w", cart.ID, err)
	}
	return nil
}

func (r *cartRepoImpl) Delete(ctx context.Context, cartID string) error {
	return r.client.Del(ctx, r.prefix+cartID).Err()
}
