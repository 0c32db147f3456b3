package pricing

import (
	"errors"
	"storefront/internal/model"
)

var ErrOutOfStock = errors.New("product is out of stock")

type StockState string

const (
	InStock    StockState = "in_stock"
	Backorder  StockState = "backorder"
	OutOfStock StockState = "out_of_stock"
)

type Stock struct {
	State StockState `json:"state"`
	// Quantity is nil when WooCommerce does not manage the product's stock.
	Quantity *int `json:"quantity,omitempty"`
}

func Availability(p *model.Product) Stock {
	if p.ManageStock && p.StockQuantity != nil {
		q := *p.StockQuantity
		st := Stock{Quantity: &q}
		switch {
		case q > 0:
			st.State = InStock
		case p.BackordersAllowed():
			st.State = Backorder
		default:
			st.State = OutOfStock
		}
		return st
	}

	switch p.StockStatus {
	case model.StockStatusOutOfStock:
		return Stock{State: OutOfStock}
	case model.StockStatusOnBackorder:
		return Stock{State: Backorder}
	default:
		return Stock{State: InStock}
	}
}

// ClampQuantity enforces quantity >= 1 and, for managed stock without
// backorders, quantity <= stock.
func ClampQuantity(p *model.Product, qty int) (int, error) {
	if qty < 1 {
		qty = 1
	}

	if Availability(p).State == OutOfStock {
		return 0, ErrOutOfStock
	}

	if p.ManageStock && p.StockQuantity != nil && !p.BackordersAllowed() && qty > *p.StockQuantity {
		return *p.StockQuantity, nil
	}
	return qty, nil
}

// SplitBackorder divides qty into the part served from stock and the part
// that has to be backordered.
func SplitBackorder(p *model.Product, qty int) (fromStock, backordered int) {
	if qty < 0 {
		qty = 0
	}

	if !p.ManageStock || p.StockQuantity == nil {
		if p.StockStatus == model.StockStatusOnBackorder {
			return 0, qty
		}
		return qty, 0
	}

	available := *p.StockQuantity
	if available < 0 {
		available = 0
	}
	if qty <= available {
		return qty, 0
	}
	return available, qty - available
}
