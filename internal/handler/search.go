package handler

import (
	"net/http"
	"storefront/internal/dto"
	"storefront/internal/middleware"
	"storefront/internal/service"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type SearchHandler struct {
	searchService service.SearchService
	facets        []string
}

// NewSearchHandler takes the attribute names that may be filtered on, the
// same ones the index aggregates as facets.
func NewSearchHandler(searchService service.SearchService, facets []string) *SearchHandler {
	return &SearchHandler{
		searchService: searchService,
		facets:        facets,
	}
}

func decimalQuery(c echo.Context, name string) (*decimal.Decimal, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil || d.IsNegative() {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return &d, nil
}

// Search handles GET /api/search?q=&category=&min_price=&max_price=&page=
// with facet filters passed as repeated attribute parameters, e.g.
// pa_brand=acme&pa_brand=globex.
func (h *SearchHandler) Search(c echo.Context) error {
	ctx := c.Request().Context()

	req := dto.SearchRequest{
		Query:    strings.TrimSpace(c.QueryParam("q")),
		Category: c.QueryParam("category"),
	}

	var err error
	if req.MinPrice, err = decimalQuery(c, "min_price"); err != nil {
		return err
	}
	if req.MaxPrice, err = decimalQuery(c, "max_price"); err != nil {
		return err
	}
	if req.MinPrice != nil && req.MaxPrice != nil && req.MinPrice.GreaterThan(*req.MaxPrice) {
		return echo.NewHTTPError(http.StatusBadRequest, "min_price is above max_price")
	}
	if req.Page, err = intQuery(c, "page"); err != nil {
		return err
	}
	if req.PerPage, err = intQuery(c, "per_page"); err != nil {
		return err
	}

	params := c.QueryParams()
	for _, facet := range h.facets {
		terms := params[facet]
		if len(terms) == 0 {
			continue
		}
		if req.Attributes == nil {
			req.Attributes = make(map[string][]string)
		}
		req.Attributes[facet] = terms
	}

	result, err := h.searchService.Search(ctx, middleware.Customer(c), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}
