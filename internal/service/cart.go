package service

import (
	"context"
	"errors"
	"fmt"
	"storefront/internal/client"
	"storefront/internal/dto"
	"storefront/internal/logger"
	"storefront/internal/model"
	"storefront/internal/pricing"
	"storefront/internal/repository"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CartService interface {
	Create(ctx context.Context, customer pricing.Customer) (*dto.Cart, error)
	// Get prices the cart. A non-empty couponPreview is evaluated instead of
	// the stored coupon without being saved.
	Get(ctx context.Context, customer pricing.Customer, cartID, couponPreview string) (*dto.Cart, error)
	AddItem(ctx context.Context, customer pricing.Customer, cartID string, req dto.AddItemRequest) (*dto.Cart, error)
	UpdateItem(ctx context.Context, customer pricing.Customer, cartID string, productID int64, quantity int) (*dto.Cart, error)
	RemoveItem(ctx context.Context, customer pricing.Customer, cartID string, productID int64) (*dto.Cart, error)
	ApplyCoupon(ctx context.Context, customer pricing.Customer, cartID, code string) (*dto.Cart, error)
	RemoveCoupon(ctx context.Context, customer pricing.Customer, cartID string) (*dto.Cart, error)
	Quote(ctx context.Context, customer pricing.Customer, cart *model.Cart, products map[int64]*model.Product) *Quote
}

type cartServiceImpl struct {
	carts   repository.CartRepository
	woo     client.WooCommerceClient
	catalog CatalogService
	pricer  *productPricer
	log     logger.Logger
}

func NewCartService(
	carts repository.CartRepository,
	woo client.WooCommerceClient,
	catalog CatalogService,
	tax TaxService,
	policy pricing.Policy,
	log logger.Logger,
) CartService {
	return &cartServiceImpl{
		carts:   carts,
		woo:     woo,
		catalog: catalog,
		pricer:  newProductPricer(tax, policy, log),
		log:     log,
	}
}

func (s *cartServiceImpl) Create(ctx context.Context, customer pricing.Customer) (*dto.Cart, error) {
	now := time.Now().UTC()
	cart := &model.Cart{
		ID:        uuid.NewString(),
		Lines:     []model.CartLine{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, err
	}
	return s.view(ctx, customer, cart, nil, "")
}

func (s *cartServiceImpl) Get(ctx context.Context, customer pricing.Customer, cartID, couponPreview string) (*dto.Cart, error) {
	cart, err := s.carts.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, customer, cart, nil, strings.TrimSpace(couponPreview))
}

// fillLine refreshes the snapshot fields of a line from the product after
// the quantity has been clamped.
func (s *cartServiceImpl) fillLine(ctx context.Context, line *model.CartLine, product *model.Product, customer pricing.Customer) error {
	price, err := s.pricer.unit(ctx, product, customer, line.Quantity)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotPurchasable, err)
	}

	delivery := pricing.EstimateDelivery(product, line.Quantity, s.pricer.policy, s.pricer.now())

	line.Name = product.Name
	line.Slug = product.Slug
	line.Sku = product.Sku
	line.Image = ""
	if len(product.Images) > 0 {
		line.Image = product.Images[0].Src
	}
	line.UnitNet = price.Net.StringFixed(2)
	line.LeadDays = delivery.Days
	line.Backordered = delivery.Backordered
	return nil
}

func (s *cartServiceImpl) save(ctx context.Context, customer pricing.Customer, cart *model.Cart, products map[int64]*model.Product) (*dto.Cart, error) {
	cart.UpdatedAt = time.Now().UTC()
	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, err
	}
	return s.view(ctx, customer, cart, products, "")
}

func (s *cartServiceImpl) AddItem(ctx context.Context, customer pricing.Customer, cartID string, req dto.AddItemRequest) (*dto.Cart, error) {
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.Quantity < 0 {
		return nil, ErrInvalidQuantity
	}

	cart, err := s.carts.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}

	product, err := s.catalog.Product(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	idx := cart.Line(product.ID)
	wanted := req.Quantity
	if idx >= 0 {
		wanted += cart.Lines[idx].Quantity
	}

	qty, err := pricing.ClampQuantity(product, wanted)
	if err != nil {
		return nil, err
	}

	line := model.CartLine{ProductID: product.ID, Quantity: qty}
	if err := s.fillLine(ctx, &line, product, customer); err != nil {
		return nil, err
	}

	if idx >= 0 {
		cart.Lines[idx] = line
	} else {
		cart.Lines = append(cart.Lines, line)
	}

	return s.save(ctx, customer, cart, map[int64]*model.Product{product.ID: product})
}

func (s *cartServiceImpl) UpdateItem(ctx context.Context, customer pricing.Customer, cartID string, productID int64, quantity int) (*dto.Cart, error) {
	cart, err := s.carts.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}

	idx := cart.Line(productID)
	if idx < 0 {
		return nil, ErrLineNotFound
	}

	product, err := s.catalog.Product(ctx, productID)
	if err != nil {
		return nil, err
	}

	qty, err := pricing.ClampQuantity(product, quantity)
	if err != nil {
		return nil, err
	}

	line := model.CartLine{ProductID: productID, Quantity: qty}
	if err := s.fillLine(ctx, &line, product, customer); err != nil {
		return nil, err
	}
	cart.Lines[idx] = line

	return s.save(ctx, customer, cart, map[int64]*model.Product{product.ID: product})
}

func (s *cartServiceImpl) RemoveItem(ctx context.Context, customer pricing.Customer, cartID string, productID int64) (*dto.Cart, error) {
	cart, err := s.carts.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}

	idx := cart.Line(productID)
	if idx < 0 {
		return nil, ErrLineNotFound
	}
	cart.Lines = append(cart.Lines[:idx], cart.Lines[idx+1:]...)

	return s.save(ctx, customer, cart, nil)
}

func (s *cartServiceImpl) ApplyCoupon(ctx context.Context, customer pricing.Customer, cartID, code string) (*dto.Cart, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, pricing.ErrCouponInvalid
	}

	cart, err := s.carts.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if len(cart.Lines) == 0 {
		return nil, ErrEmptyCart
	}

	products := s.loadProducts(ctx, cart)
	lines, _ := s.priceLines(ctx, customer, cart, products)

	discount, err := s.couponDiscount(ctx, code, lines)
	if err != nil {
		return nil, err
	}

	cart.CouponCode = discount.Code
	return s.save(ctx, customer, cart, products)
}

func (s *cartServiceImpl) RemoveCoupon(ctx context.Context, customer pricing.Customer, cartID string) (*dto.Cart, error) {
	cart, err := s.carts.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}
	cart.CouponCode = ""
	return s.save(ctx, customer, cart, nil)
}

// loadProducts fetches the products behind the cart lines through the
// catalog cache. Products that cannot be loaded are left out and priced from
// the line snapshot.
func (s *cartServiceImpl) loadProducts(ctx context.Context, cart *model.Cart) map[int64]*model.Product {
	products := make(map[int64]*model.Product, len(cart.Lines))
	for _, l := range cart.Lines {
		p, err := s.catalog.Product(ctx, l.ProductID)
		if err != nil {
			s.log.Warnf("cart %s: load product %d: %v", cart.ID, l.ProductID, err)
			continue
		}
		products[l.ProductID] = p
	}
	return products
}

func (s *cartServiceImpl) priceLines(ctx context.Context, customer pricing.Customer, cart *model.Cart, products map[int64]*model.Product) ([]pricing.Line, []*dto.CartLine) {
	lines := make([]pricing.Line, 0, len(cart.Lines))
	views := make([]*dto.CartLine, 0, len(cart.Lines))
	standard := s.pricer.tax.Rate(ctx, "")

	for _, l := range cart.Lines {
		v := &dto.CartLine{
			ProductID: l.ProductID,
			Name:      l.Name,
			Slug:      l.Slug,
			Sku:       l.Sku,
			Image:     l.Image,
			Quantity:  l.Quantity,
			Delivery: pricing.Delivery{
				Days:        l.LeadDays,
				Date:        pricing.AddWorkingDays(s.pricer.now(), l.LeadDays),
				Backordered: l.Backordered,
			},
		}

		var unit pricing.Price
		product, ok := products[l.ProductID]
		if ok {
			price, err := s.pricer.unit(ctx, product, customer, l.Quantity)
			if err == nil {
				unit = price
				v.Delivery = pricing.EstimateDelivery(product, l.Quantity, s.pricer.policy, s.pricer.now())
			} else {
				ok = false
			}
		}
		if !ok {
			unit = s.pricer.snapshotPrice(l, customer, standard)
		}

		line := pricing.LinePrice(l.ProductID, unit, l.Quantity)
		v.Unit = unit
		v.Total = line.Display

		lines = append(lines, line)
		views = append(views, v)
	}
	return lines, views
}

// Quote is a fully priced cart.
type Quote struct {
	Cart     *dto.Cart
	Lines    []pricing.Line
	Discount pricing.Discount
	Totals   pricing.Totals
	// CouponErr is set when the cart's coupon no longer applies. The quote
	// is then priced without it.
	CouponErr error
}

// Quote prices cart for the customer. products may be partially filled;
// missing entries are loaded through the catalog.
func (s *cartServiceImpl) Quote(ctx context.Context, customer pricing.Customer, cart *model.Cart, products map[int64]*model.Product) *Quote {
	return s.quote(ctx, customer, cart, products, "")
}

func (s *cartServiceImpl) quote(ctx context.Context, customer pricing.Customer, cart *model.Cart, products map[int64]*model.Product, couponPreview string) *Quote {
	if products == nil {
		products = map[int64]*model.Product{}
	}
	missing := &model.Cart{ID: cart.ID}
	for _, l := range cart.Lines {
		if _, ok := products[l.ProductID]; !ok {
			missing.Lines = append(missing.Lines, l)
		}
	}
	for id, p := range s.loadProducts(ctx, missing) {
		products[id] = p
	}

	lines, views := s.priceLines(ctx, customer, cart, products)
	q := &Quote{
		Cart: &dto.Cart{
			ID:        cart.ID,
			Lines:     views,
			ItemCount: cart.ItemCount(),
			UpdatedAt: cart.UpdatedAt,
		},
		Lines:    lines,
		Discount: pricing.Discount{Amount: decimal.Zero},
	}

	code := cart.CouponCode
	if couponPreview != "" {
		code = couponPreview
	}

	if code != "" && len(lines) > 0 {
		d, err := s.couponDiscount(ctx, code, lines)
		if err != nil {
			q.CouponErr = err
			q.Cart.CouponError = err.Error()
		} else {
			q.Discount = d
			q.Cart.Coupon = &d
		}
	}

	q.Totals = pricing.CalculateTotals(lines, q.Discount, customer, s.pricer.tax.Rate(ctx, ""), s.pricer.policy)
	q.Cart.Totals = q.Totals
	return q
}

func (s *cartServiceImpl) view(ctx context.Context, customer pricing.Customer, cart *model.Cart, products map[int64]*model.Product, couponPreview string) (*dto.Cart, error) {
	return s.quote(ctx, customer, cart, products, couponPreview).Cart, nil
}

func (s *cartServiceImpl) couponDiscount(ctx context.Context, code string, lines []pricing.Line) (pricing.Discount, error) {
	coupon, err := s.woo.GetCouponByCode(ctx, code)
	if errors.Is(err, client.ErrNotFound) {
		return pricing.Discount{}, fmt.Errorf("%w: unknown code %q", pricing.ErrCouponInvalid, code)
	}
	if err != nil {
		return pricing.Discount{}, err
	}
	return pricing.CouponDiscount(coupon, lines, time.Now())
}
