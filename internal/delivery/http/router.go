package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/hwstudio/product-catalog/internal/config"
	"github.com/hwstudio/product-catalog/internal/delivery/http/handler"
	"github.com/hwstudio/product-catalog/internal/delivery/http/middleware"
	"github.com/hwstudio/product-catalog/internal/pkg/logger"
)

// Router holds HTTP handlers and router configuration
type Router struct {
	static *handler.StaticHandler
	logger *logger.Logger
	cfg    *config.Config
}

// NewRouter creates a new HTTP router
func NewRouter(static *handler.StaticHandler, cfg *config.Config, log *logger.Logger) *Router {
	return &Router{
		static: static,
		logger: log,
		cfg:    cfg,
	}
}

// Setup configures and returns the HTTP router
func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(rt.logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: rt.cfg.FileServer.AllowedOrigins,
		AllowedMethods: []string{"GET", "HEAD", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", rt.healthCheck)
	r.Get("/*", rt.static.Serve)

	return r
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}
