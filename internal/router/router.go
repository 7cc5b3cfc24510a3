package router

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"penta-xml-feed/internal/handler"
	"penta-xml-feed/internal/middleware"
	"penta-xml-feed/pkg/apierror"
	"penta-xml-feed/pkg/response"
)

// Config holds the configuration for creating a router.
type Config struct {
	Handler        *handler.Handler
	CatalogHandler *handler.CatalogHandler
	AdminHandler   *handler.AdminHandler
	Metrics        http.Handler
	// RefreshLimiter throttles POST /refresh; nil disables throttling.
	RefreshLimiter *middleware.IPRateLimiter
	Logger         *slog.Logger
}

// New creates and configures the HTTP router.
func New(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware stack (applies to ALL routes)
	r.Use(middleware.PeerAddr)
	r.Use(middleware.Recovery)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(cfg.Logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, apierror.NotFound(""))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, apierror.MethodNotAllowed(""))
	})

	// Feed routes
	if cfg.CatalogHandler != nil {
		r.Get("/", cfg.CatalogHandler.Index)
		r.Get("/products.xml", cfg.CatalogHandler.Products)
		r.Get("/status", cfg.CatalogHandler.Status)

		r.Group(func(r chi.Router) {
			if cfg.RefreshLimiter != nil {
				r.Use(cfg.RefreshLimiter.Middleware)
			}
			r.Post("/refresh", cfg.CatalogHandler.Refresh)
		})
	}

	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics)
	}

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Health check endpoints
		if cfg.Handler != nil {
			r.Get("/health", cfg.Handler.Health)
			r.Get("/ready", cfg.Handler.Ready)
		}

		// Admin endpoints
		if cfg.AdminHandler != nil {
			r.Route("/admin", func(r chi.Router) {
				r.Get("/stats", cfg.AdminHandler.GetStats)
			})
		}
	})

	return r
}
