package server

import (
	"context"
	"fmt"
	"net/http"
	"storefront/internal/config"
	"storefront/internal/handler"
	storemw "storefront/internal/middleware"
	"storefront/internal/service"
	"storefront/internal/web"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// StatsReporter is implemented by caches that count hits and misses.
type StatsReporter interface {
	Stats() map[string]interface{}
}

type Server struct {
	echo            *echo.Echo
	cacheStats      StatsReporter
	catalogHandler  *handler.CatalogHandler
	searchHandler   *handler.SearchHandler
	contentHandler  *handler.ContentHandler
	cartHandler     *handler.CartHandler
	checkoutHandler *handler.CheckoutHandler
	pageHandler     *handler.PageHandler
}

func NewServer(
	cfg *config.Config,
	logger *log.Logger,
	catalogService service.CatalogService,
	searchService service.SearchService,
	contentService service.ContentService,
	cartService service.CartService,
	checkoutService service.CheckoutService,
	cacheStats StatsReporter,
) (*Server, error) {
	e := echo.New()
	e.HideBanner = true
	e.Logger = logger

	renderer, err := web.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}
	e.Renderer = renderer
	e.HTTPErrorHandler = handler.ErrorHandler(logger)

	e.Use(echo.WrapMiddleware(otelhttp.NewMiddleware(cfg.Telemetry.ServiceName)))
	e.Use(middleware.RequestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(storemw.CustomerMiddleware(cfg.Auth))

	s := &Server{
		echo:            e,
		cacheStats:      cacheStats,
		catalogHandler:  handler.NewCatalogHandler(catalogService),
		searchHandler:   handler.NewSearchHandler(searchService, cfg.Elasticsearch.FacetAttributes),
		contentHandler:  handler.NewContentHandler(contentService),
		cartHandler:     handler.NewCartHandler(cartService),
		checkoutHandler: handler.NewCheckoutHandler(checkoutService, logger),
		pageHandler:     handler.NewPageHandler(catalogService, checkoutService),
	}

	s.setupRoutes()
	return s, nil
}

func (s *Server) setupRoutes() {
	s.echo.GET("/product/:slug", s.pageHandler.Product)
	s.echo.GET("/category/:slug", s.pageHandler.Category)
	s.echo.GET("/checkout/return", s.pageHandler.CheckoutReturn)

	api := s.echo.Group("/api")

	api.GET("/health", s.health)

	// -------- catalog --------
	api.GET("/products", s.catalogHandler.ListProducts)
	api.GET("/products/:slug", s.catalogHandler.GetProduct)
	api.GET("/categories", s.catalogHandler.ListCategories)
	api.GET("/categories/:slug", s.catalogHandler.GetCategory)
	api.GET("/search", s.searchHandler.Search)

	// -------- wordpress content --------
	api.GET("/posts", s.contentHandler.ListPosts)
	api.GET("/posts/:slug", s.contentHandler.GetPost)
	api.GET("/pages/:slug", s.contentHandler.GetPage)

	// -------- cart --------
	cart := api.Group("/cart")
	cart.POST("", s.cartHandler.Create)
	cart.GET("/:id", s.cartHandler.Get)
	cart.POST("/:id/items", s.cartHandler.AddItem)
	cart.PUT("/:id/items/:productID", s.cartHandler.UpdateItem)
	cart.DELETE("/:id/items/:productID", s.cartHandler.RemoveItem)
	cart.PUT("/:id/coupon", s.cartHandler.ApplyCoupon)
	cart.DELETE("/:id/coupon", s.cartHandler.RemoveCoupon)

	// -------- checkout --------
	api.POST("/checkout", s.checkoutHandler.Place)
	api.GET("/checkout/:id", s.checkoutHandler.Get)

	// -------- mollie webhooks --------
	api.POST("/mollie/webhook", s.checkoutHandler.MollieWebhook)
}

func (s *Server) health(c echo.Context) error {
	body := map[string]interface{}{"status": "ok"}
	if s.cacheStats != nil {
		body["cache"] = s.cacheStats.Stats()
	}
	return c.JSON(http.StatusOK, body)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
