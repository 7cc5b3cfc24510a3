package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"penta-xml-feed/internal/catalog"
	"penta-xml-feed/internal/normalize"
	"penta-xml-feed/internal/notify"
	"penta-xml-feed/internal/render"
)

func init() {
	// Load .env file if it exists (silent fail if not)
	_ = godotenv.Load()
}

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Server    ServerConfig
	App       AppConfig
	Upstream  UpstreamConfig
	Catalog   CatalogConfig
	Feed      FeedConfig
	Notify    NotifyConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"SERVER_PORT" default:"3000" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"15m"` // POST /refresh waits for a full cycle
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name        string `envconfig:"APP_NAME" default:"penta-xml-feed"`
	Environment string `envconfig:"APP_ENV" default:"development"`
	Version     string `envconfig:"APP_VERSION" default:"1.0.0"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
	LogFormat   string `envconfig:"LOG_FORMAT" default:"text" validate:"oneof=text json"`
}

// UpstreamConfig holds the catalog API connection.
type UpstreamConfig struct {
	URL       string        `envconfig:"PENTA_API_URL" validate:"required,url"`
	Token     string        `envconfig:"PENTA_API_TOKEN"`
	Timeout   time.Duration `envconfig:"PENTA_API_TIMEOUT" default:"60s"`
	PageDelay time.Duration `envconfig:"PENTA_PAGE_DELAY" default:"500ms"`
}

// CatalogConfig holds the query sent to the catalog API. Zero values are
// left out of the request.
type CatalogConfig struct {
	ProductType int    `envconfig:"PRODUCT_TYPE" default:"1"`
	FieldsKey   string `envconfig:"FIELDS_KEY"`
	Stock       bool   `envconfig:"STOCK" default:"false"`
	Category    string `envconfig:"CATEGORY"` // comma separated, one request series per entry
	Brand       string `envconfig:"BRAND"`
	ProductID   string `envconfig:"PRODUCT_ID"`
	UpdateDate  string `envconfig:"UPDATE_DATE"`
	Page        int    `envconfig:"PAGE" validate:"min=0"`
	PageSize    int    `envconfig:"PAGE_SIZE" validate:"min=0"`
}

// FeedConfig holds refresh and rendering settings.
type FeedConfig struct {
	UpdateIntervalMinutes int           `envconfig:"UPDATE_INTERVAL_MINUTES" default:"30" validate:"min=1"`
	Schema                string        `envconfig:"FEED_SCHEMA" default:"attribute" validate:"oneof=attribute element"`
	StockPolicy           string        `envconfig:"STOCK_POLICY" validate:"omitempty,oneof=cap external"`
	StockCap              int           `envconfig:"STOCK_CAP" default:"200" validate:"min=1"`
	ExternalWarehouseCode string        `envconfig:"EXTERNAL_WAREHOUSE_CODE" default:"EXT"`
	RefreshTimeout        time.Duration `envconfig:"REFRESH_TIMEOUT" default:"10m"`
}

// NotifyConfig holds the refresh event sink.
type NotifyConfig struct {
	Type         string   `envconfig:"NOTIFY_TYPE" default:"none" validate:"oneof=none redis kafka"`
	RedisURL     string   `envconfig:"NOTIFY_REDIS_URL" default:"redis://localhost:6379/0"`
	RedisChannel string   `envconfig:"NOTIFY_REDIS_CHANNEL" default:"catalog:events"`
	KafkaBrokers []string `envconfig:"NOTIFY_KAFKA_BROKERS" default:"localhost:9092"`
	KafkaTopic   string   `envconfig:"NOTIFY_KAFKA_TOPIC" default:"catalog.refreshed"`
}

// RateLimitConfig limits on-demand refresh triggers per client IP.
type RateLimitConfig struct {
	Enabled bool    `envconfig:"REFRESH_RATE_LIMIT_ENABLED" default:"true"`
	RPS     float64 `envconfig:"REFRESH_RATE_LIMIT_RPS" default:"0.1" validate:"gt=0"`
	Burst   int     `envconfig:"REFRESH_RATE_LIMIT_BURST" default:"2" validate:"min=1"`
}

// Address returns the server address in host:port format.
func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// IsDevelopment returns true if running in development mode.
func (a *AppConfig) IsDevelopment() bool {
	return a.Environment == "development"
}

// Query builds the catalog query.
func (c *CatalogConfig) Query() catalog.Query {
	return catalog.Query{
		ProductType: c.ProductType,
		FieldsKey:   c.FieldsKey,
		Stock:       c.Stock,
		Category:    c.Category,
		Brand:       c.Brand,
		ProductID:   c.ProductID,
		UpdateDate:  c.UpdateDate,
		Page:        c.Page,
		PageSize:    c.PageSize,
	}
}

// CategoriesLabel returns the configured category list, or "all".
func (c *CatalogConfig) CategoriesLabel() string {
	if c.Category == "" {
		return "all"
	}
	return c.Category
}

// Interval returns the refresh period.
func (f *FeedConfig) Interval() time.Duration {
	return time.Duration(f.UpdateIntervalMinutes) * time.Minute
}

// ResolvedStockPolicy returns the configured stock policy, or the default
// of the selected schema.
func (f *FeedConfig) ResolvedStockPolicy() string {
	if f.StockPolicy != "" {
		return f.StockPolicy
	}
	if f.Schema == render.SchemaElement {
		return normalize.PolicyExternal
	}
	return normalize.PolicyCap
}

// NotifierConfig converts to the notifier settings.
func (n *NotifyConfig) NotifierConfig() notify.Config {
	return notify.Config{
		Type:         n.Type,
		RedisURL:     n.RedisURL,
		RedisChannel: n.RedisChannel,
		KafkaBrokers: n.KafkaBrokers,
		KafkaTopic:   n.KafkaTopic,
	}
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration or panics on error.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}
