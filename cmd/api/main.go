package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"penta-xml-feed/internal/catalog"
	"penta-xml-feed/internal/config"
	"penta-xml-feed/internal/handler"
	"penta-xml-feed/internal/metrics"
	"penta-xml-feed/internal/middleware"
	"penta-xml-feed/internal/normalize"
	"penta-xml-feed/internal/notify"
	"penta-xml-feed/internal/render"
	"penta-xml-feed/internal/router"
	"penta-xml-feed/internal/service"
	"penta-xml-feed/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.MustLoad()

	log := logger.Setup(cfg.App.LogLevel, cfg.App.LogFormat)

	log.Info(strings.Repeat("=", 50))
	log.Info("starting catalog XML feed",
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)
	log.Info("feed configuration",
		"api_url", cfg.Upstream.URL,
		"interval", cfg.Feed.Interval(),
		"product_type", cfg.Catalog.ProductType,
		"categories", cfg.Catalog.CategoriesLabel(),
		"schema", cfg.Feed.Schema,
		"stock_policy", cfg.Feed.ResolvedStockPolicy(),
	)
	log.Info(strings.Repeat("=", 50))

	// Metrics registry with process and runtime collectors
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	// Pipeline components
	stockPolicy, err := normalize.NewStockPolicy(
		cfg.Feed.ResolvedStockPolicy(),
		cfg.Feed.StockCap,
		cfg.Feed.ExternalWarehouseCode,
	)
	if err != nil {
		fatal(log, "invalid stock policy", err)
	}

	renderer, err := render.New(cfg.Feed.Schema)
	if err != nil {
		fatal(log, "invalid feed schema", err)
	}

	notifier, err := notify.New(cfg.Notify.NotifierConfig())
	if err != nil {
		fatal(log, "failed to initialize notifier", err)
	}
	log.Info("refresh notifier initialized", "type", notifier.Name())

	client := catalog.NewClient(catalog.ClientConfig{
		Endpoint:  cfg.Upstream.URL,
		Token:     cfg.Upstream.Token,
		Timeout:   cfg.Upstream.Timeout,
		PageDelay: cfg.Upstream.PageDelay,
		Logger:    log,
		Observer:  m,
	})

	feed := service.NewRefreshService(client, normalize.New(stockPolicy), renderer, service.RefreshConfig{
		Query:    cfg.Catalog.Query(),
		Timeout:  cfg.Feed.RefreshTimeout,
		Logger:   log,
		Metrics:  m,
		Notifier: notifier,
	})

	scheduler := service.NewScheduler(feed, cfg.Feed.Interval(), log)
	feed.AttachSchedule(scheduler)

	// HTTP layer
	var limiter *middleware.IPRateLimiter
	if cfg.RateLimit.Enabled {
		limiter = middleware.NewIPRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	}

	r := router.New(router.Config{
		Handler:        handler.New(feed, cfg.App.Version),
		CatalogHandler: handler.NewCatalogHandler(feed, cfg.Feed.Interval(), log),
		AdminHandler:   handler.NewAdminHandler(feed, notifier.Name()),
		Metrics:        m.Handler(),
		RefreshLimiter: limiter,
		Logger:         log,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// First refresh runs in the background; the placeholder is served until then.
	scheduler.Start()

	// Start server in goroutine
	go func() {
		log.Info("server listening",
			"addr", cfg.Server.Address(),
			"feed_url", "http://localhost:"+portOf(cfg.Server.Address())+"/products.xml",
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal(log, "server error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	scheduler.Stop()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown error", "error", err)
	}

	// The notifier stays open until scheduled refreshes have announced.
	if err := scheduler.Wait(ctx); err != nil {
		log.Warn("scheduled refresh still running at shutdown", "error", err)
	}

	if err := notifier.Close(); err != nil {
		log.Warn("failed to close notifier", "error", err)
	}

	log.Info("server stopped")
}

func fatal(log *slog.Logger, msg string, err error) {
	log.Error(msg, "error", err)
	os.Exit(1)
}

func portOf(addr string) string {
	if i := strings.LastIndex(addr, ":"); i >= 0 {
		return addr[i+1:]
	}
	return addr
}
