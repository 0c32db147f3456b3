package config

import "time"

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	BaseURL     string `env:"BASE_URL" envDefault:"http://localhost:8080"`
	DatabaseURL string `env:"DATABASE_URL" envDefault:"sqlite://storefront.db"`

	Redis         Redis         `envPrefix:"REDIS_"`
	WooCommerce   WooCommerce   `envPrefix:"WOOCOMMERCE_"`
	WordPress     WordPress     `envPrefix:"WORDPRESS_"`
	Mollie        Mollie        `envPrefix:"MOLLIE_"`
	Elasticsearch Elasticsearch `envPrefix:"ELASTICSEARCH_"`
	Auth          Auth          `envPrefix:"AUTH_"`
	Pricing       Pricing       `envPrefix:"PRICING_"`
	Checkout      Checkout      `envPrefix:"CHECKOUT_"`
	Telemetry     Telemetry     `envPrefix:"OTEL_"`
}

type WooCommerce struct {
	BaseURL        string `env:"BASE_URL"`
	ConsumerKey    string `env:"CONSUMER_KEY"`
	ConsumerSecret string `env:"CONSUMER_SECRET"`
	Country        string `env:"COUNTRY" envDefault:"NL"`
}

type WordPress struct {
	BaseURL string `env:"BASE_URL"`
}

type Mollie struct {
	BaseApiURL string `env:"BASE_API_URL" envDefault:"https://api.mollie.com"`
	ApiKey     string `env:"API_KEY"`
}

type Elasticsearch struct {
	Addresses []string `env:"ADDRESSES" envSeparator:","`
	Index     string   `env:"INDEX" envDefault:"products"`
	Username  string   `env:"USERNAME"`
	Password  string   `env:"PASSWORD"`

	// attribute names exposed as search facets, e.g. "pa_brand,pa_color"
	FacetAttributes []string `env:"FACET_ATTRIBUTES" envSeparator:"," envDefault:"pa_brand"`
}

type Redis struct {
	URL         string        `env:"URL" envDefault:"redis://localhost:6379/0"`
	CartTTL     time.Duration `env:"CART_TTL" envDefault:"720h"`
	CatalogTTL  time.Duration `env:"CATALOG_TTL" envDefault:"5m"`
	TaxonomyTTL time.Duration `env:"TAXONOMY_TTL" envDefault:"1h"`
	KeyPrefix   string        `env:"KEY_PREFIX" envDefault:"storefront:"`

	// carts always live in Redis; this only turns off the read-through cache
	CacheEnabled bool `env:"CACHE_ENABLED" envDefault:"true"`
}

type Auth struct {
	JWTSecret string `env:"JWT_SECRET"`
	B2BRole   string `env:"B2B_ROLE" envDefault:"b2b_customer"`
}

type Pricing struct {
	PolicyFile string `env:"POLICY_FILE"`
	// overrides the policy file; the policy defaults to EUR
	Currency string `env:"CURRENCY"`
}

type Checkout struct {
	ReconcileSpec  string        `env:"RECONCILE_SPEC" envDefault:"@every 5m"`
	ReconcileAfter time.Duration `env:"RECONCILE_AFTER" envDefault:"15m"`
	WarmupSpec     string        `env:"WARMUP_SPEC" envDefault:"@hourly"`
}

type Telemetry struct {
	Enabled      bool   `env:"ENABLED" envDefault:"false"`
	Exporter     string `env:"EXPORTER" envDefault:"stdout"` // stdout, otlp
	OTLPEndpoint string `env:"EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4317"`
	ServiceName  string `env:"SERVICE_NAME" envDefault:"storefront"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}
