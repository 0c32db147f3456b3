package handler

import (
	"errors"
	"net/http"
	"storefront/internal/client"
	"storefront/internal/dto"
	"storefront/internal/logger"
	"storefront/internal/pricing"
	"storefront/internal/repository"
	"storefront/internal/service"
	"strings"

	"github.com/labstack/echo/v4"
)

var (
	notFoundErrors = []error{
		client.ErrNotFound,
		repository.ErrCartNotFound,
		repository.ErrOrderNotFound,
		service.ErrLineNotFound,
	}
	badRequestErrors = []error{
		service.ErrEmptyCart,
		service.ErrInvalidQuantity,
		service.ErrMissingEmail,
		service.ErrNotPurchasable,
		pricing.ErrCouponInvalid,
		pricing.ErrCouponExpired,
		pricing.ErrCouponUsageLimit,
		pricing.ErrCouponMinimum,
		pricing.ErrCouponMaximum,
		pricing.ErrCouponNotApplicable,
	}
)

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// statusFor maps domain errors onto an HTTP status and a message that is
// safe to show to the customer.
func statusFor(err error) (int, string) {
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		if msg, ok := httpErr.Message.(string); ok {
			return httpErr.Code, msg
		}
		return httpErr.Code, http.StatusText(httpErr.Code)
	}

	var stockErr *service.StockChangedError
	switch {
	case errors.As(err, &stockErr):
		return http.StatusConflict, service.ErrStockChanged.Error()
	case errors.Is(err, pricing.ErrOutOfStock):
		return http.StatusConflict, pricing.ErrOutOfStock.Error()
	case isAny(err, notFoundErrors):
		for _, target := range notFoundErrors {
			if errors.Is(err, target) && target != client.ErrNotFound {
				return http.StatusNotFound, target.Error()
			}
		}
		return http.StatusNotFound, http.StatusText(http.StatusNotFound)
	case isAny(err, badRequestErrors):
		for _, target := range badRequestErrors {
			if errors.Is(err, target) {
				return http.StatusBadRequest, target.Error()
			}
		}
	case errors.Is(err, service.ErrPaymentCreation):
		return http.StatusBadGateway, service.ErrPaymentCreation.Error()
	}
	return http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)
}

// ErrorHandler replaces echo's default handler. API routes answer with a
// JSON body; everything else renders the error page.
func ErrorHandler(log logger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, message := statusFor(err)
		if status >= http.StatusInternalServerError {
			log.Errorf("%s %s: %v", c.Request().Method, c.Request().URL.Path, err)
		}

		var writeErr error
		switch {
		case c.Request().Method == http.MethodHead:
			writeErr = c.NoContent(status)
		case strings.HasPrefix(c.Request().URL.Path, "/api/"):
			body := dto.ErrorResponse{Message: message}
			var stockErr *service.StockChangedError
			if errors.As(err, &stockErr) {
				body.Cart = stockErr.Cart
			}
			writeErr = c.JSON(status, body)
		default:
			writeErr = c.Render(status, "error.html", map[string]interface{}{
				"Status":  status,
				"Message": message,
			})
		}
		if writeErr != nil {
			log.Errorf("write error response: %v", writeErr)
		}
	}
}
