package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"storefront/internal/cache"
	"storefront/internal/client"
	"storefront/internal/config"
	"storefront/internal/logger"
	"storefront/internal/pricing"
	"storefront/internal/repository"
	"storefront/internal/scheduler"
	"storefront/internal/server"
	"storefront/internal/service"
	"storefront/internal/telemetry"
	"syscall"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/otel"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New("storefront", cfg.Log)

	ctx := context.Background()
	shutdownTelemetry, err := telemetry.Init(ctx, cfg.Telemetry)
	if err != nil {
		log.Fatalf("init telemetry: %v", err)
	}
	metrics, err := telemetry.NewMetrics(otel.Meter(telemetry.InstrumentationName))
	if err != nil {
		log.Fatalf("init metrics: %v", err)
	}

	policy, err := pricing.LoadPolicy(cfg.Pricing.PolicyFile)
	if err != nil {
		log.Fatalf("load pricing policy: %v", err)
	}
	policy = policy.WithCurrency(cfg.Pricing.Currency)

	db, err := client.InitDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}
	rdb, err := client.InitRedisClient(cfg.Redis.URL)
	if err != nil {
		log.Fatalf("init redis: %v", err)
	}

	var cacheStats server.StatsReporter
	catalogCache := cache.NewNoop()
	if cfg.Redis.CacheEnabled {
		redisCache := cache.NewRedisCache(rdb, cfg.Redis.KeyPrefix)
		catalogCache, cacheStats = redisCache, redisCache
	}

	wooClient := client.NewWooCommerceClient(&cfg.WooCommerce)
	wpClient := client.NewWordPressClient(&cfg.WordPress)
	mollieClient := client.NewMollieClient(&cfg.Mollie)
	searchClient, err := client.NewElasticsearchClient(&cfg.Elasticsearch)
	if err != nil {
		log.Fatalf("init elasticsearch: %v", err)
	}

	cartRepo := repository.NewCartRepository(rdb, cfg.Redis.KeyPrefix, cfg.Redis.CartTTL)
	orderRepo := repository.NewOrderRepository(db)
	webhookEventRepo := repository.NewWebhookEventRepository(db)

	taxService := service.NewTaxService(wooClient, catalogCache, cfg.Redis.TaxonomyTTL, cfg.WooCommerce.Country, policy, log)
	catalogService := service.NewCatalogService(wooClient, catalogCache, cfg.Redis, taxService, policy, log)
	searchService := service.NewSearchService(searchClient, wooClient, taxService, policy, log)
	contentService := service.NewContentService(wpClient, catalogCache, cfg.Redis.CatalogTTL, log)
	cartService := service.NewCartService(cartRepo, wooClient, catalogService, taxService, policy, log)
	checkoutService := service.NewCheckoutService(
		db,
		wooClient,
		mollieClient,
		cartRepo,
		orderRepo,
		webhookEventRepo,
		cartService,
		policy,
		cfg.BaseURL,
		metrics,
		log,
	)

	jobs, err := scheduler.New(cfg.Checkout, checkoutService, catalogService, log)
	if err != nil {
		log.Fatalf("init scheduler: %v", err)
	}

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port

	// Init HTTP server
	srv, err := server.NewServer(cfg, log, catalogService, searchService, contentService, cartService, checkoutService, cacheStats)
	if err != nil {
		log.Fatalf("init server: %v", err)
	}

	jobs.Start()

	log.Infof("Starting HTTP server on %s (%s)", serverAddr, cfg.Environment.Name)
	go func() {
		if err := srv.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	log.Info("Signal received, starting graceful shutdown...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("HTTP server shutdown error: %v", err)
	}
	jobs.Stop(shutdownCtx)
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		log.Errorf("telemetry shutdown error: %v", err)
	}
	if err := rdb.Close(); err != nil {
		log.Errorf("redis close error: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
