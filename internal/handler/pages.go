package handler

import (
	"net/http"
	"storefront/internal/middleware"
	"storefront/internal/service"

	"github.com/labstack/echo/v4"
)

// PageHandler renders the server-side pages. Templates are registered on
// the echo renderer.
type PageHandler struct {
	catalogService  service.CatalogService
	checkoutService service.CheckoutService
}

func NewPageHandler(catalogService service.CatalogService, checkoutService service.CheckoutService) *PageHandler {
	return &PageHandler{
		catalogService:  catalogService,
		checkoutService: checkoutService,
	}
}

func (h *PageHandler) Product(c echo.Context) error {
	product, err := h.catalogService.GetProduct(c.Request().Context(), middleware.Customer(c), c.Param("slug"))
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "product.html", product)
}

func (h *PageHandler) Category(c echo.Context) error {
	page, err := intQuery(c, "page")
	if err != nil {
		return err
	}

	category, err := h.catalogService.GetCategory(c.Request().Context(), middleware.Customer(c), c.Param("slug"), page, 0)
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "category.html", category)
}

// CheckoutReturn is where Mollie sends the customer back. The webhook may
// not have arrived yet, so an open order shows a refreshing waiting page.
func (h *PageHandler) CheckoutReturn(c echo.Context) error {
	checkoutID := c.QueryParam("order")
	if checkoutID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing order")
	}

	status, err := h.checkoutService.Get(c.Request().Context(), checkoutID)
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "checkout_return.html", status)
}
