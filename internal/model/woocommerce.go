package model

import (
	"encoding/json"
	"strconv"
	"strings"
)

type StockStatus string

const (
	StockStatusInStock     StockStatus = "instock"
	StockStatusOutOfStock  StockStatus = "outofstock"
	StockStatusOnBackorder StockStatus = "onbackorder"
)

// Backorders mirrors the WooCommerce "backorders" product setting.
type Backorders string

const (
	BackordersNo     Backorders = "no"
	BackordersNotify Backorders = "notify"
	BackordersYes    Backorders = "yes"
)

// MetaData is a WooCommerce meta_data entry. ACF fields land here with
// arbitrary JSON values.
type MetaData struct {
	ID    int64           `json:"id,omitempty"`
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

type Image struct {
	ID   int64  `json:"id"`
	Src  string `json:"src"`
	Name string `json:"name"`
	Alt  string `json:"alt"`
}

type CategoryRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type Attribute struct {
	ID      int64    `json:"id"`
	Name    string   `json:"name"`
	Slug    string   `json:"slug,omitempty"`
	Visible bool     `json:"visible"`
	Options []string `json:"options"`
}

type Product struct {
	ID               int64         `json:"id"`
	Name             string        `json:"name"`
	Slug             string        `json:"slug"`
	Sku              string        `json:"sku"`
	Type             string        `json:"type"`
	Status           string        `json:"status"`
	Permalink        string        `json:"permalink"`
	Description      string        `json:"description"`
	ShortDescription string        `json:"short_description"`
	Price            string        `json:"price"`
	RegularPrice     string        `json:"regular_price"`
	SalePrice        string        `json:"sale_price"`
	TaxClass         string        `json:"tax_class"`
	ManageStock      bool          `json:"manage_stock"`
	StockQuantity    *int          `json:"stock_quantity"`
	StockStatus      StockStatus   `json:"stock_status"`
	Backorders       Backorders    `json:"backorders"`
	Categories       []CategoryRef `json:"categories"`
	Images           []Image       `json:"images"`
	Attributes       []Attribute   `json:"attributes"`
	MetaData         []MetaData    `json:"meta_data"`
}

// Meta returns the raw value for key and whether it was present.
func (p *Product) Meta(key string) (json.RawMessage, bool) {
	for _, m := range p.MetaData {
		if m.Key == key {
			return m.Value, true
		}
	}
	return nil, false
}

// MetaString returns the meta value for key as a string. Numbers are
// formatted, strings are unquoted, anything else yields "".
func (p *Product) MetaString(key string) string {
	raw, ok := p.Meta(key)
	if !ok || len(raw) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}

	return ""
}

// MetaInt returns the meta value for key as an int, or false when absent
// or not numeric.
func (p *Product) MetaInt(key string) (int, bool) {
	s := p.MetaString(key)
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// BackordersAllowed reports whether WooCommerce accepts orders beyond stock.
func (p *Product) BackordersAllowed() bool {
	return p.Backorders == BackordersYes || p.Backorders == BackordersNotify
}

type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Parent      int64  `json:"parent"`
	Description string `json:"description"`
	Count       int    `json:"count"`
	Image       *Image `json:"image"`
}

type TaxRate struct {
	ID       int64  `json:"id"`
	Country  string `json:"country"`
	Rate     string `json:"rate"`
	Name     string `json:"name"`
	Priority int    `json:"priority"`
	Shipping bool   `json:"shipping"`
	Class    string `json:"class"`
}

type CouponDiscountType string

const (
	CouponPercent      CouponDiscountType = "percent"
	CouponFixedCart    CouponDiscountType = "fixed_cart"
	CouponFixedProduct CouponDiscountType = "fixed_product"
)

type Coupon struct {
	ID                 int64              `json:"id"`
	Code               string             `json:"code"`
	Amount             string             `json:"amount"`
	DiscountType       CouponDiscountType `json:"discount_type"`
	DateExpiresGmt     string             `json:"date_expires_gmt"`
	UsageCount         int                `json:"usage_count"`
	UsageLimit         *int               `json:"usage_limit"`
	ProductIDs         []int64            `json:"product_ids"`
	ExcludedProductIDs []int64            `json:"excluded_product_ids"`
	FreeShipping       bool               `json:"free_shipping"`
	MinimumAmount      string             `json:"minimum_amount"`
	MaximumAmount      string             `json:"maximum_amount"`
}

type Address struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Company   string `json:"company,omitempty"`
	Address1  string `json:"address_1"`
	Address2  string `json:"address_2,omitempty"`
	City      string `json:"city"`
	Postcode  string `json:"postcode"`
	Country   string `json:"country"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

type OrderLineItem struct {
	ID        int64      `json:"id,omitempty"`
	ProductID int64      `json:"product_id"`
	Name      string     `json:"name,omitempty"`
	Quantity  int        `json:"quantity"`
	Subtotal  string     `json:"subtotal,omitempty"`
	Total     string     `json:"total,omitempty"`
	MetaData  []MetaData `json:"meta_data,omitempty"`
}

type CouponLine struct {
	Code     string `json:"code"`
	Discount string `json:"discount,omitempty"`
}

type ShippingLine struct {
	MethodID    string `json:"method_id"`
	MethodTitle string `json:"method_title"`
	Total       string `json:"total"`
}

// WooOrder is both the create/update payload and the response body of
// /orders. Zero-valued fields are omitted on writes.
type WooOrder struct {
	ID                 int64           `json:"id,omitempty"`
	Status             string          `json:"status,omitempty"`
	Currency           string          `json:"currency,omitempty"`
	Total              string          `json:"total,omitempty"`
	PaymentMethod      string          `json:"payment_method,omitempty"`
	PaymentMethodTitle string          `json:"payment_method_title,omitempty"`
	TransactionID      string          `json:"transaction_id,omitempty"`
	SetPaid            bool            `json:"set_paid,omitempty"`
	CustomerID         int64           `json:"customer_id,omitempty"`
	Billing            *Address        `json:"billing,omitempty"`
	Shipping           *Address        `json:"shipping,omitempty"`
	LineItems          []OrderLineItem `json:"line_items,omitempty"`
	CouponLines        []CouponLine    `json:"coupon_lines,omitempty"`
	ShippingLines      []ShippingLine  `json:"shipping_lines,omitempty"`
	MetaData           []MetaData      `json:"meta_data,omitempty"`
}

// StringMeta builds a meta_data entry with a string value.
func StringMeta(key, value string) MetaData {
	raw, _ := json.Marshal(value)
	return MetaData{Key: key, Value: raw}
}
