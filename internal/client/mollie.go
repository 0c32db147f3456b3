package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"storefront/internal/config"
	"storefront/internal/model"
	"strings"
)

type PaymentRequest struct {
	Amount      model.MollieAmount `json:"amount"`
	Description string             `json:"description"`
	RedirectURL string             `json:"redirectUrl"`
	WebhookURL  string             `json:"webhookUrl,omitempty"`
	Method      string             `json:"method,omitempty"`
	Locale      string             `json:"locale,omitempty"`
	Metadata    map[string]string  `json:"metadata,omitempty"`
}

type MollieClient interface {
	CreatePayment(ctx context.Context, req *PaymentRequest) (*model.MolliePayment, error)
	GetPayment(ctx context.Context, paymentID string) (*model.MolliePayment, error)
}

type mollieClientImpl struct {
	rest *restClient
}

func NewMollieClient(cfg *config.Mollie) MollieClient {
	return newMollieClient(cfg, newHTTPClient())
}

func newMollieClient(cfg *config.Mollie, httpClient *http.Client) *mollieClientImpl {
	return &mollieClientImpl{
		rest: &restClient{
			httpClient: httpClient,
			baseURL:    strings.TrimRight(cfg.BaseApiURL, "/") + "/v2",
			service:    "mollie",
			authorize: func(req *http.Request) {
				req.Header.Set("Authorization", "Bearer "+cfg.ApiKey)
			},
		},
	}
}

func (c *mollieClientImpl) CreatePayment(ctx context.Context, req *PaymentRequest) (*model.MolliePayment, error) {
	var payment model.MolliePayment
	if _, err := c.rest.do(ctx, http.MethodPost, "/payments", req, &payment); err != nil {
		return nil, fmt.Errorf("create mollie payment: %w", err)
	}
	if payment.CheckoutURL() == "" {
		return nil, fmt.Errorf("mollie payment %s has no checkout link", payment.ID)
	}
	return &payment, nil
}

func (c *mollieClientImpl) GetPayment(ctx context.Context, paymentID string) (*model.MolliePayment, error) {
	var payment model.MolliePayment
	if _, err := c.rest.do(ctx, http.MethodGet, "/payments/"+url.PathEscape(paymentID), nil, &payment); err != nil {
		return nil, fmt.Errorf("get mollie payment %s: %w", paymentID, err)
	}
	return &payment, nil
}
