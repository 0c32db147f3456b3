package model

import "time"

// CartLine is one product in a cart. UnitNet is the net unit price seen
// when the line was last priced; checkout always re-prices.
type CartLine struct {
	ProductID   int64  `json:"product_id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Sku         string `json:"sku"`
	Image       string `json:"image,omitempty"`
	Quantity    int    `json:"quantity"`
	UnitNet     string `json:"unit_net"`
	LeadDays    int    `json:"lead_days"`
	Backordered int    `json:"backordered"`
}

type Cart struct {
	ID         string     `json:"id"`
	Lines      []CartLine `json:"lines"`
	CouponCode string     `json:"coupon_code,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Line returns the index of the line for productID, or -1.
func (c *Cart) Line(productID int64) int {
	for i, l := range c.Lines {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}

func (c *Cart) ItemCount() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}
