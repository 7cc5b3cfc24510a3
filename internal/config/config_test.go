package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"penta-xml-feed/internal/catalog"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PENTA_API_URL", "https://api.example.com/products")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:3000", cfg.Server.Address())
	assert.Equal(t, 500*time.Millisecond, cfg.Upstream.PageDelay)
	assert.Equal(t, 1, cfg.Catalog.ProductType)
	assert.False(t, cfg.Catalog.Stock)
	assert.Equal(t, 30*time.Minute, cfg.Feed.Interval())
	assert.Equal(t, "attribute", cfg.Feed.Schema)
	assert.Equal(t, "cap", cfg.Feed.ResolvedStockPolicy())
	assert.Equal(t, 200, cfg.Feed.StockCap)
	assert.Equal(t, "none", cfg.Notify.Type)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Notify.KafkaBrokers)
	assert.Equal(t, "all", cfg.Catalog.CategoriesLabel())
	assert.True(t, cfg.App.IsDevelopment())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PENTA_API_URL", "https://api.example.com/products")
	t.Setenv("PENTA_API_TOKEN", "secret")
	t.Setenv("SERVER_PORT", "8081")
	t.Setenv("UPDATE_INTERVAL_MINUTES", "5")
	t.Setenv("PRODUCT_TYPE", "2")
	t.Setenv("STOCK", "true")
	t.Setenv("CATEGORY", "A, B")
	t.Setenv("PAGE_SIZE", "100")
	t.Setenv("FEED_SCHEMA", "element")
	t.Setenv("NOTIFY_TYPE", "kafka")
	t.Setenv("NOTIFY_KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 8081, cfg.Server.Port)
	assert.Equal(t, "secret", cfg.Upstream.Token)
	assert.Equal(t, 5*time.Minute, cfg.Feed.Interval())
	assert.Equal(t, "external", cfg.Feed.ResolvedStockPolicy())
	assert.Equal(t, "A, B", cfg.Catalog.CategoriesLabel())
	assert.Equal(t, catalog.Query{
		ProductType: 2,
		Stock:       true,
		Category:    "A, B",
		PageSize:    100,
	}, cfg.Catalog.Query())

	nc := cfg.Notify.NotifierConfig()
	assert.Equal(t, "kafka", nc.Type)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, nc.KafkaBrokers)
}

func TestLoad_ExplicitStockPolicyWins(t *testing.T) {
	t.Setenv("PENTA_API_URL", "https://api.example.com/products")
	t.Setenv("FEED_SCHEMA", "element")
	t.Setenv("STOCK_POLICY", "cap")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "cap", cfg.Feed.ResolvedStockPolicy())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "missing upstream url", env: map[string]string{"PENTA_API_URL": ""}},
		{name: "bad schema", env: map[string]string{"FEED_SCHEMA": "json"}},
		{name: "bad stock policy", env: map[string]string{"STOCK_POLICY": "sum"}},
		{name: "zero interval", env: map[string]string{"UPDATE_INTERVAL_MINUTES": "0"}},
		{name: "bad notifier", env: map[string]string{"NOTIFY_TYPE": "sqs"}},
		{name: "non numeric port", env: map[string]string{"SERVER_PORT": "http"}},
		{name: "bad log level", env: map[string]string{"LOG_LEVEL": "trace"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("PENTA_API_URL", "https://api.example.com/products")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()

			assert.Error(t, err)
		})
	}
}

func TestMustLoad_Panics(t *testing.T) {
	t.Setenv("PENTA_API_URL", "")

	assert.Panics(t, func() { MustLoad() })
}
