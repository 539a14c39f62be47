// Package api provides the HTTP API server and handlers for the Notable application.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/notableapp/notable-server/internal/config"
	"github.com/notableapp/notable-server/internal/ratelimit"
	"github.com/notableapp/notable-server/internal/store"
	"github.com/notableapp/notable-server/internal/validation"
)

// apiVersion is reported by the health endpoint.
const apiVersion = "1.0.0"

// Server holds dependencies for HTTP handlers.
type Server struct {
	store           store.Store
	services        *Services
	config          *config.Config
	validator       *validation.Validator
	router          *chi.Mux
	api             huma.API
	logger          *slog.Logger
	metrics         *Metrics
	authRateLimiter *ratelimit.KeyedRateLimiter
}

// NewServer creates an HTTP server with all routes configured.
func NewServer(st store.Store, services *Services, cfg *config.Config, logger *slog.Logger) *Server {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	router.Use(authMiddleware(services.Auth))

	metrics := NewMetrics()
	router.Use(metrics.Middleware)
	router.Handle("/metrics", promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{}))

	humaConfig := huma.DefaultConfig(cfg.Server.Name+" API", apiVersion)
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)

	api := humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s := &Server{
		store:           st,
		services:        services,
		config:          cfg,
		validator:       validation.New(),
		router:          router,
		api:             api,
		logger:          logger,
		metrics:         metrics,
		authRateLimiter: ratelimit.New(rateLimitRPS(20, time.Minute), 10),
	}

	s.registerHealthRoutes()
	s.registerAuthRoutes()
	s.registerNoteRoutes()
	s.registerShareRoutes()
	s.registerPublicRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close releases server-held resources.
func (s *Server) Close() {
	s.authRateLimiter.Stop()
}

// rateLimitRPS converts a per-interval request budget to requests per second.
func rateLimitRPS(requests int, interval time.Duration) float64 {
	return float64(requests) / interval.Seconds()
}
