package dto

import (
	"storefront/internal/client"
	"storefront/internal/model"
	"storefront/internal/pricing"
	"time"

	"github.com/shopspring/decimal"
)

type VolumeTier struct {
	MinQty      int             `json:"min_qty"`
	Percent     decimal.Decimal `json:"percent"`
	UnitDisplay decimal.Decimal `json:"unit_display"`
}

// Product is a WooCommerce product priced for one customer type.
type Product struct {
	ID               int64               `json:"id"`
	Name             string              `json:"name"`
	Slug             string              `json:"slug"`
	Sku              string              `json:"sku"`
	Permalink        string              `json:"permalink"`
	ShortDescription string              `json:"short_description"`
	Description      string              `json:"description,omitempty"`
	Images           []model.Image       `json:"images"`
	Categories       []model.CategoryRef `json:"categories"`
	Attributes       []model.Attribute   `json:"attributes,omitempty"`
	Price            pricing.Price       `json:"price"`
	VolumeTiers      []VolumeTier        `json:"volume_tiers,omitempty"`
	Stock            pricing.Stock       `json:"stock"`
	Delivery         pricing.Delivery    `json:"delivery"`
	Purchasable      bool                `json:"purchasable"`
}

type ProductList struct {
	Products   []*Product `json:"products"`
	Page       int        `json:"page"`
	Total      int        `json:"total"`
	TotalPages int        `json:"total_pages"`
}

type ProductListRequest struct {
	Category string `query:"category"`
	Search   string `query:"search"`
	Page     int    `query:"page"`
	PerPage  int    `query:"per_page"`
}

type Category struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	Slug        string      `json:"slug"`
	Description string      `json:"description,omitempty"`
	Count       int         `json:"count"`
	Image       string      `json:"image,omitempty"`
	Children    []*Category `json:"children,omitempty"`
}

type CategoryPage struct {
	Category *Category   `json:"category"`
	Products ProductList `json:"products"`
}

type SearchRequest struct {
	Query    string
	Category string
	// attribute facet name -> selected terms
	Attributes map[string][]string
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	Page       int
	PerPage    int
}

type SearchResponse struct {
	Total    int                             `json:"total"`
	Page     int                             `json:"page"`
	Products []*Product                      `json:"products"`
	Facets   map[string][]client.FacetBucket `json:"facets"`
}

type Media struct {
	URL    string `json:"url"`
	Alt    string `json:"alt"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

type Post struct {
	ID      int64  `json:"id"`
	Slug    string `json:"slug"`
	Date    string `json:"date"`
	Title   string `json:"title"`
	Excerpt string `json:"excerpt,omitempty"`
	Content string `json:"content,omitempty"`
	Image   *Media `json:"image,omitempty"`
}

type PostList struct {
	Posts      []*Post `json:"posts"`
	Page       int     `json:"page"`
	TotalPages int     `json:"total_pages"`
}

type AddItemRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type UpdateItemRequest struct {
	Quantity int `json:"quantity"`
}

type CouponRequest struct {
	Code string `json:"code"`
}

type CartLine struct {
	ProductID int64            `json:"product_id"`
	Name      string           `json:"name"`
	Slug      string           `json:"slug"`
	Sku       string           `json:"sku"`
	Image     string           `json:"image,omitempty"`
	Quantity  int              `json:"quantity"`
	Unit      pricing.Price    `json:"unit"`
	Total     decimal.Decimal  `json:"total"` // display total for the line
	Delivery  pricing.Delivery `json:"delivery"`
}

type Cart struct {
	ID          string            `json:"id"`
	Lines       []*CartLine       `json:"lines"`
	ItemCount   int               `json:"item_count"`
	Coupon      *pricing.Discount `json:"coupon,omitempty"`
	CouponError string            `json:"coupon_error,omitempty"`
	Totals      pricing.Totals    `json:"totals"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

type CheckoutRequest struct {
	CartID   string         `json:"cart_id"`
	Billing  model.Address  `json:"billing"`
	Shipping *model.Address `json:"shipping,omitempty"`
	Method   string         `json:"method,omitempty"` // mollie method, e.g. "ideal"
	Locale   string         `json:"locale,omitempty"`

	// WordPress user placing the order, taken from the bearer token
	UserID int64 `json:"-"`
}

type CheckoutResponse struct {
	CheckoutID  string         `json:"checkout_id"`
	WooOrderID  int64          `json:"woo_order_id"`
	CheckoutURL string         `json:"checkout_url"`
	Totals      pricing.Totals `json:"totals"`
}

type CheckoutStatus struct {
	CheckoutID  string               `json:"checkout_id"`
	WooOrderID  int64                `json:"woo_order_id"`
	Status      model.CheckoutStatus `json:"status"`
	Amount      string               `json:"amount"`
	Currency    string               `json:"currency"`
	CheckoutURL string               `json:"checkout_url,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
}

type ErrorResponse struct {
	Message string `json:"message"`
	Cart    *Cart  `json:"cart,omitempty"`
}
