package api

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/openroomhq/openroom/internal/api/middleware"
	"github.com/openroomhq/openroom/internal/chat"
	"github.com/openroomhq/openroom/internal/handlers"
	"github.com/openroomhq/openroom/internal/store"
)

// NewRouter creates and configures the HTTP router. redisClient may be nil,
// in which case rate limiting is disabled.
func NewRouter(logger zerolog.Logger, registry *chat.Registry, ledger *chat.Ledger, st store.RecordStore, redisClient *redis.Client) *chi.Mux {
	r := chi.NewRouter()

	// Metrics middleware (first to capture all requests)
	r.Use(middleware.Metrics)

	// Security middleware
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.MaxBodySize(8 * 1024)) // 8KB max body
	r.Use(middleware.RequireJSON)

	// Standard middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(chimw.Recoverer)

	// Rate limiting, only when redis is configured
	if redisClient != nil {
		limiter := middleware.NewRateLimiter(redisClient, logger)
		r.Use(limiter.Middleware)
	}

	// CORS - allow all origins; identity is a plain header, not a credential
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "User"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	h := handlers.NewHandler(registry, ledger, st, redisClient, logger)

	// Metrics endpoint (for Prometheus scraping)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/health", h.Health)

	r.Get("/participants", h.ListParticipants)
	r.Post("/participants", h.Register)

	r.Get("/messages", h.ListMessages)
	r.Post("/messages", h.PostMessage)
	r.Put("/messages/{id}", h.EditMessage)
	r.Delete("/messages/{id}", h.DeleteMessage)

	r.Post("/status", h.Heartbeat)

	return r
}
