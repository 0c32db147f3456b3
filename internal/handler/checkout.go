package handler

import (
	"net/http"
	"storefront/internal/dto"
	"storefront/internal/logger"
	"storefront/internal/middleware"
	"storefront/internal/service"
	"strconv"

	"github.com/labstack/echo/v4"
)

type CheckoutHandler struct {
	checkoutService service.CheckoutService
	log             logger.Logger
}

func NewCheckoutHandler(checkoutService service.CheckoutService, log logger.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
		log:             log,
	}
}

func (h *CheckoutHandler) Place(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.CartID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "cart_id is required")
	}
	if id, err := strconv.ParseInt(middleware.UserID(c), 10, 64); err == nil && id > 0 {
		req.UserID = id
	}

	result, err := h.checkoutService.Place(ctx, middleware.Customer(c), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, result)
}

func (h *CheckoutHandler) Get(c echo.Context) error {
	status, err := h.checkoutService.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, status)
}

// MollieWebhook receives the payment id as a form field. Mollie retries
// anything that is not a 2xx, so processing errors are returned as 500.
func (h *CheckoutHandler) MollieWebhook(c echo.Context) error {
	ctx := c.Request().Context()

	paymentID := c.FormValue("id")
	if paymentID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing payment id")
	}

	if err := h.checkoutService.HandleWebhook(ctx, paymentID); err != nil {
		h.log.Errorf("mollie webhook %s: %v", paymentID, err)
		return c.NoContent(http.StatusInternalServerError)
	}
	return c.NoContent(http.StatusOK)
}
