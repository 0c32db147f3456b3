package handler

import (
	"net/http"
	"storefront/internal/dto"
	"storefront/internal/middleware"
	"storefront/internal/service"
	"strconv"

	"github.com/labstack/echo/v4"
)

type CartHandler struct {
	cartService service.CartService
}

func NewCartHandler(cartService service.CartService) *CartHandler {
	return &CartHandler{cartService: cartService}
}

func productIDParam(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("productID"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	return id, nil
}

func (h *CartHandler) Create(c echo.Context) error {
	cart, err := h.cartService.Create(c.Request().Context(), middleware.Customer(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, cart)
}

func (h *CartHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	cart, err := h.cartService.Get(ctx, middleware.Customer(c), c.Param("id"), c.QueryParam("coupon"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cart)
}

func (h *CartHandler) AddItem(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.AddItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.ProductID <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "product_id is required")
	}

	cart, err := h.cartService.AddItem(ctx, middleware.Customer(c), c.Param("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cart)
}

func (h *CartHandler) UpdateItem(c echo.Context) error {
	ctx := c.Request().Context()

	productID, err := productIDParam(c)
	if err != nil {
		return err
	}

	var req dto.UpdateItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	cart, err := h.cartService.UpdateItem(ctx, middleware.Customer(c), c.Param("id"), productID, req.Quantity)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cart)
}

func (h *CartHandler) RemoveItem(c echo.Context) error {
	ctx := c.Request().Context()

	productID, err := productIDParam(c)
	if err != nil {
		return err
	}

	cart, err := h.cartService.RemoveItem(ctx, middleware.Customer(c), c.Param("id"), productID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cart)
}

func (h *CartHandler) ApplyCoupon(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CouponRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Code == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "code is required")
	}

	cart, err := h.cartService.ApplyCoupon(ctx, middleware.Customer(c), c.Param("id"), req.Code)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cart)
}

func (h *CartHandler) RemoveCoupon(c echo.Context) error {
	cart, err := h.cartService.RemoveCoupon(c.Request().Context(), middleware.Customer(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cart)
}
