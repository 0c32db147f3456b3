package service

import (
	"errors"
	"storefront/internal/dto"
)

var (
	ErrEmptyCart       = errors.New("cart is empty")
	ErrStockChanged    = errors.New("stock changed since the cart was filled")
	ErrLineNotFound    = errors.New("product is not in the cart")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrNotPurchasable  = errors.New("product cannot be purchased")
	ErrMissingEmail    = errors.New("billing email is required")
	ErrPaymentCreation = errors.New("payment could not be created")
)

// StockChangedError carries the adjusted cart back to the customer so the
// checkout can be retried with the new quantities.
type StockChangedError struct {
	Cart *dto.Cart
}

func (e *StockChangedError) Error() string {
	return ErrStockChanged.Error()
}

func (e *StockChangedError) Unwrap() error {
	return ErrStockChanged
}
