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
	"storefront/internal/telemetry"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

const (
	MetaCheckoutID   = "_storefront_checkout_id"
	MetaCustomerType = "_storefront_customer_type"

	shippingMethodID = "flat_rate"
)

type CheckoutService interface {
	Place(ctx context.Context, customer pricing.Customer, req dto.CheckoutRequest) (*dto.CheckoutResponse, error)
	Get(ctx context.Context, checkoutID string) (*dto.CheckoutStatus, error)
	HandleWebhook(ctx context.Context, paymentID string) error
	// Reconcile re-checks open orders older than age against Mollie and
	// returns how many left the open state.
	Reconcile(ctx context.Context, age time.Duration) (int, error)
}

type checkoutServiceImpl struct {
	db               *gorm.DB
	woo              client.WooCommerceClient
	mollie           client.MollieClient
	carts            repository.CartRepository
	orderRepo        repository.OrderRepository
	webhookEventRepo repository.WebhookEventRepository
	cartService      CartService
	policy           pricing.Policy
	serviceBaseUrl   string
	metrics          *telemetry.Metrics
	tracer           trace.Tracer
	log              logger.Logger
}

func NewCheckoutService(
	db *gorm.DB,
	woo client.WooCommerceClient,
	mollie client.MollieClient,
	carts repository.CartRepository,
	orderRepo repository.OrderRepository,
	webhookEventRepo repository.WebhookEventRepository,
	cartService CartService,
	policy pricing.Policy,
	serviceBaseUrl string,
	metrics *telemetry.Metrics,
	log logger.Logger,
) CheckoutService {
	return &checkoutServiceImpl{
		db:               db,
		woo:              woo,
		mollie:           mollie,
		carts:            carts,
		orderRepo:        orderRepo,
		webhookEventRepo: webhookEventRepo,
		cartService:      cartService,
		policy:           policy,
		serviceBaseUrl:   strings.TrimRight(serviceBaseUrl, "/"),
		metrics:          metrics,
		tracer:           otel.Tracer(telemetry.InstrumentationName),
		log:              log,
	}
}

type liveProduct struct {
	product *model.Product
	err     error
}

// fetchLive loads every cart product straight from WooCommerce, bypassing
// the catalog cache.
func (s *checkoutServiceImpl) fetchLive(ctx context.Context, cart *model.Cart) map[int64]liveProduct {
	results := make(map[int64]liveProduct, len(cart.Lines))
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)

	for _, l := range cart.Lines {
		wg.Add(1)
		go func(productID int64) {
			defer wg.Done()
			p, err := s.woo.GetProduct(ctx, productID)
			mu.Lock()
			results[productID] = liveProduct{product: p, err: err}
			mu.Unlock()
		}(l.ProductID)
	}
	wg.Wait()

	return results
}

// revalidate clamps every line against live stock. It reports whether the
// cart had to change; products that are gone or out of stock are dropped.
func (s *checkoutServiceImpl) revalidate(cart *model.Cart, live map[int64]liveProduct) (map[int64]*model.Product, bool, error) {
	products := make(map[int64]*model.Product, len(live))
	kept := cart.Lines[:0]
	changed := false

	for _, l := range cart.Lines {
		res := live[l.ProductID]
		if res.err != nil {
			if errors.Is(res.err, client.ErrNotFound) {
				s.log.Warnf("checkout: product %d no longer exists, dropping it from cart %s", l.ProductID, cart.ID)
				changed = true
				continue
			}
			return nil, false, fmt.Errorf("load product %d: %w", l.ProductID, res.err)
		}

		qty, err := pricing.ClampQuantity(res.product, l.Quantity)
		if errors.Is(err, pricing.ErrOutOfStock) {
			changed = true
			continue
		}
		if qty != l.Quantity {
			l.Quantity = qty
			changed = true
		}
		delivery := pricing.EstimateDelivery(res.product, l.Quantity, s.policy, time.Now())
		l.LeadDays = delivery.Days
		l.Backordered = delivery.Backordered

		products[l.ProductID] = res.product
		kept = append(kept, l)
	}

	cart.Lines = kept
	return products, changed, nil
}

func (s *checkoutServiceImpl) Place(ctx context.Context, customer pricing.Customer, req dto.CheckoutRequest) (*dto.CheckoutResponse, error) {
	ctx, span := s.tracer.Start(ctx, "checkout.place", trace.WithAttributes(
		attribute.String("cart.id", req.CartID),
		attribute.String("customer.type", string(customer)),
	))
	defer span.End()

	resp, err := s.place(ctx, customer, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.String("checkout.id", resp.CheckoutID),
		attribute.Int64("woo.order_id", resp.WooOrderID),
	)
	s.metrics.Checkouts.Add(ctx, 1, metric.WithAttributes(attribute.String("customer", string(customer))))
	return resp, nil
}

func (s *checkoutServiceImpl) place(ctx context.Context, customer pricing.Customer, req dto.CheckoutRequest) (*dto.CheckoutResponse, error) {
	email := strings.TrimSpace(req.Billing.Email)
	if email == "" {
		return nil, ErrMissingEmail
	}

	cart, err := s.carts.Get(ctx, req.CartID)
	if err != nil {
		return nil, err
	}
	if len(cart.Lines) == 0 {
		return nil, ErrEmptyCart
	}

	products, changed, err := s.revalidate(cart, s.fetchLive(ctx, cart))
	if err != nil {
		return nil, err
	}
	if changed {
		cart.UpdatedAt = time.Now().UTC()
		if err := s.carts.Save(ctx, cart); err != nil {
			return nil, err
		}
		quote := s.cartService.Quote(ctx, customer, cart, products)
		return nil, &StockChangedError{Cart: quote.Cart}
	}

	quote := s.cartService.Quote(ctx, customer, cart, products)
	if quote.CouponErr != nil {
		return nil, quote.CouponErr
	}
	totals := quote.Totals

	checkoutID := uuid.NewString()
	wooOrder, err := s.woo.CreateOrder(ctx, s.buildWooOrder(checkoutID, customer, cart, quote, req))
	if err != nil {
		return nil, fmt.Errorf("create woocommerce order: %w", err)
	}

	amount := totals.TotalGross.StringFixed(2)
	order := &model.CheckoutOrder{
		ID:           checkoutID,
		CartID:       cart.ID,
		WooOrderID:   wooOrder.ID,
		Status:       model.CheckoutOpen,
		Amount:       amount,
		Currency:     totals.Currency,
		Email:        email,
		CustomerType: string(customer),
	}
	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("store checkout order: %w", err)
	}

	payment, err := s.mollie.CreatePayment(ctx, &client.PaymentRequest{
		Amount:      model.MollieAmount{Currency: totals.Currency, Value: amount},
		Description: fmt.Sprintf("Order %d", wooOrder.ID),
		RedirectURL: s.serviceBaseUrl + "/checkout/return?order=" + checkoutID,
		WebhookURL:  s.serviceBaseUrl + "/api/mollie/webhook",
		Method:      req.Method,
		Locale:      req.Locale,
		Metadata: map[string]string{
			"checkout_id":  checkoutID,
			"woo_order_id": strconv.FormatInt(wooOrder.ID, 10),
		},
	})
	if err != nil {
		s.abandon(ctx, order)
		return nil, fmt.Errorf("%w: %v", ErrPaymentCreation, err)
	}

	if err := s.orderRepo.AttachPayment(ctx, checkoutID, payment.ID, payment.CheckoutURL()); err != nil {
		s.abandon(ctx, order)
		return nil, fmt.Errorf("store payment id: %w", err)
	}

	if _, err := s.woo.UpdateOrder(ctx, wooOrder.ID, &model.WooOrder{TransactionID: payment.ID}); err != nil {
		// the webhook still finds the order by payment id
		s.log.Warnf("checkout %s: set transaction id on order %d: %v", checkoutID, wooOrder.ID, err)
	}

	s.log.Infof("checkout %s placed: woo order %d, payment %s, %s %s", checkoutID, wooOrder.ID, payment.ID, amount, totals.Currency)

	return &dto.CheckoutResponse{
		CheckoutID:  checkoutID,
		WooOrderID:  wooOrder.ID,
		CheckoutURL: payment.CheckoutURL(),
		Totals:      totals,
	}, nil
}

func (s *checkoutServiceImpl) buildWooOrder(checkoutID string, customer pricing.Customer, cart *model.Cart, quote *Quote, req dto.CheckoutRequest) *model.WooOrder {
	billing := req.Billing
	shipping := req.Shipping
	if shipping == nil {
		shipping = &billing
	}

	names := make(map[int64]string, len(cart.Lines))
	for _, l := range cart.Lines {
		names[l.ProductID] = l.Name
	}

	order := &model.WooOrder{
		Status:             "pending",
		Currency:           quote.Totals.Currency,
		PaymentMethod:      "mollie",
		PaymentMethodTitle: "Mollie",
		SetPaid:            false,
		CustomerID:         req.UserID,
		Billing:            &billing,
		Shipping:           shipping,
		MetaData: []model.MetaData{
			model.StringMeta(MetaCheckoutID, checkoutID),
			model.StringMeta(MetaCustomerType, string(customer)),
		},
	}

	for _, l := range quote.Lines {
		order.LineItems = append(order.LineItems, model.OrderLineItem{
			ProductID: l.ProductID,
			Name:      names[l.ProductID],
			Quantity:  l.Quantity,
			Subtotal:  l.Net.StringFixed(2),
			Total:     l.Net.StringFixed(2),
		})
	}

	if quote.Discount.Code != "" {
		order.CouponLines = []model.CouponLine{{
			Code:     quote.Discount.Code,
			Discount: quote.Totals.DiscountNet.StringFixed(2),
		}}
	}

	title := "Shipping"
	if quote.Totals.ShippingGross.IsZero() {
		title = "Free shipping"
	}
	order.ShippingLines = []model.ShippingLine{{
		MethodID:    shippingMethodID,
		MethodTitle: title,
		Total:       quote.Totals.ShippingNet.StringFixed(2),
	}}

	return order
}

// abandon marks an order whose payment could not be created as failed, on
// both sides.
func (s *checkoutServiceImpl) abandon(ctx context.Context, order *model.CheckoutOrder) {
	if _, err := s.orderRepo.Transition(ctx, s.db, order.ID, model.CheckoutFailed); err != nil {
		s.log.Errorf("checkout %s: mark failed: %v", order.ID, err)
	}
	if _, err := s.woo.UpdateOrder(ctx, order.WooOrderID, &model.WooOrder{Status: "failed"}); err != nil {
		s.log.Errorf("checkout %s: fail woo order %d: %v", order.ID, order.WooOrderID, err)
	}
}

func (s *checkoutServiceImpl) Get(ctx context.Context, checkoutID string) (*dto.CheckoutStatus, error) {
	order, err := s.orderRepo.FindByID(ctx, checkoutID)
	if err != nil {
		return nil, err
	}

	return &dto.CheckoutStatus{
		CheckoutID:  order.ID,
		WooOrderID:  order.WooOrderID,
		Status:      order.Status,
		Amount:      order.Amount,
		Currency:    order.Currency,
		CheckoutURL: order.CheckoutURL,
		CreatedAt:   order.CreatedAt,
	}, nil
}

// checkoutStatusFor maps a Mollie status onto the local order status. Open
// and pending payments leave the order untouched.
func checkoutStatusFor(status model.MolliePaymentStatus) (model.CheckoutStatus, bool) {
	switch status {
	case model.MollieStatusPaid, model.MollieStatusAuthorized:
		return model.CheckoutPaid, true
	case model.MollieStatusCanceled:
		return model.CheckoutCanceled, true
	case model.MollieStatusExpired:
		return model.CheckoutExpired, true
	case model.MollieStatusFailed:
		return model.CheckoutFailed, true
	default:
		return "", false
	}
}

func wooUpdateFor(status model.CheckoutStatus, paymentID string) *model.WooOrder {
	switch status {
	case model.CheckoutPaid:
		return &model.WooOrder{Status: "processing", SetPaid: true, TransactionID: paymentID}
	case model.CheckoutFailed:
		return &model.WooOrder{Status: "failed"}
	default:
		return &model.WooOrder{Status: "cancelled"}
	}
}

func (s *checkoutServiceImpl) HandleWebhook(ctx context.Context, paymentID string) error {
	ctx, span := s.tracer.Start(ctx, "checkout.webhook", trace.WithAttributes(
		attribute.String("payment.id", paymentID),
	))
	defer span.End()

	if paymentID == "" {
		return fmt.Errorf("webhook without payment id")
	}

	payment, err := s.mollie.GetPayment(ctx, paymentID)
	if errors.Is(err, client.ErrNotFound) {
		s.log.Warnf("webhook for payment %s unknown to mollie, ignoring", paymentID)
		return nil
	}
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("get payment %s: %w", paymentID, err)
	}

	order, err := s.orderRepo.FindByPaymentID(ctx, payment.ID)
	if errors.Is(err, repository.ErrOrderNotFound) {
		s.log.Warnf("webhook for unknown payment %s (%s), ignoring", payment.ID, payment.Status)
		return nil
	}
	if err != nil {
		return err
	}

	if _, err := s.applyPayment(ctx, order, payment); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

// applyPayment moves the order out of open when the payment reached a final
// state. Each <payment>:<status> pair is processed once.
func (s *checkoutServiceImpl) applyPayment(ctx context.Context, order *model.CheckoutOrder, payment *model.MolliePayment) (bool, error) {
	status, final := checkoutStatusFor(payment.Status)
	if !final {
		return false, nil
	}

	eventID := payment.ID + ":" + string(payment.Status)
	seen, err := s.webhookEventRepo.Exists(ctx, eventID)
	if err != nil {
		return false, fmt.Errorf("check webhook event: %w", err)
	}
	if seen {
		return false, nil
	}

	changed := false
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txErr error
		changed, txErr = s.orderRepo.Transition(ctx, tx, order.ID, status)
		if txErr != nil {
			return fmt.Errorf("update checkout order: %w", txErr)
		}

		if changed {
			if _, err := s.woo.UpdateOrder(ctx, order.WooOrderID, wooUpdateFor(status, payment.ID)); err != nil {
				return fmt.Errorf("update woocommerce order %d: %w", order.WooOrderID, err)
			}
		}

		if err := s.webhookEventRepo.MarkProcessed(ctx, tx, eventID, "payment."+string(payment.Status)); err != nil {
			return fmt.Errorf("store webhook event: %w", err)
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	if !changed {
		return false, nil
	}

	if status == model.CheckoutPaid {
		if err := s.carts.Delete(ctx, order.CartID); err != nil {
			s.log.Warnf("checkout %s: delete cart %s: %v", order.ID, order.CartID, err)
		}
	}

	s.metrics.PaymentTransitions.Add(ctx, 1, metric.WithAttributes(attribute.String("status", string(status))))
	s.log.Infof("checkout %s: payment %s is %s, order %d now %s", order.ID, payment.ID, payment.Status, order.WooOrderID, status)
	return true, nil
}

// expireUnpaid closes an open order that never got a Mollie payment, for
// instance when the process stopped between creating the order and the
// payment.
func (s *checkoutServiceImpl) expireUnpaid(ctx context.Context, order *model.CheckoutOrder) (bool, error) {
	changed := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txErr error
		changed, txErr = s.orderRepo.Transition(ctx, tx, order.ID, model.CheckoutExpired)
		if txErr != nil {
			return fmt.Errorf("update checkout order: %w", txErr)
		}
		if changed {
			if _, err := s.woo.UpdateOrder(ctx, order.WooOrderID, wooUpdateFor(model.CheckoutExpired, "")); err != nil {
				return fmt.Errorf("update woocommerce order %d: %w", order.WooOrderID, err)
			}
		}
		return nil
	})
	if err != nil || !changed {
		return false, err
	}

	s.metrics.PaymentTransitions.Add(ctx, 1, metric.WithAttributes(attribute.String("status", string(model.CheckoutExpired))))
	s.log.Warnf("checkout %s: no payment was ever attached, order %d expired", order.ID, order.WooOrderID)
	return true, nil
}

func (s *checkoutServiceImpl) Reconcile(ctx context.Context, age time.Duration) (int, error) {
	orders, err := s.orderRepo.ListOpenOlderThan(ctx, age)
	if err != nil {
		return 0, fmt.Errorf("list open orders: %w", err)
	}

	var errs []error
	moved := 0
	for _, order := range orders {
		if order.MolliePaymentID == "" {
			changed, err := s.expireUnpaid(ctx, order)
			if err != nil {
				errs = append(errs, fmt.Errorf("checkout %s: %w", order.ID, err))
				continue
			}
			if changed {
				moved++
			}
			continue
		}

		payment, err := s.mollie.GetPayment(ctx, order.MolliePaymentID)
		if err != nil {
			errs = append(errs, fmt.Errorf("checkout %s: %w", order.ID, err))
			continue
		}

		changed, err := s.applyPayment(ctx, order, payment)
		if err != nil {
			errs = append(errs, fmt.Errorf("checkout %s: %w", order.ID, err))
			continue
		}
		if changed {
			moved++
		}
	}

	return moved, errors.Join(errs...)
}
