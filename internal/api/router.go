package api

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/photonp05/VartaLab/internal/api/middleware"
	"github.com/photonp05/VartaLab/internal/chat"
	"github.com/photonp05/VartaLab/internal/gateway"
	"github.com/photonp05/VartaLab/internal/handlers"
	"github.com/photonp05/VartaLab/internal/presence"
	"github.com/photonp05/VartaLab/internal/relay"
	"github.com/photonp05/VartaLab/internal/session"
	"github.com/photonp05/VartaLab/internal/store"
)

// NewRouter creates and configures the HTTP router, wiring the relay core
// (presence registry, relay engine, WebSocket gateway) together with the
// account and query handlers. redisClient may be nil; rate limiting is then
// disabled.
func NewRouter(logger zerolog.Logger, ds store.DataStore, sessions session.Store, redisClient *redis.Client) *chi.Mux {
	r := chi.NewRouter()

	// Metrics middleware (first to capture all requests)
	r.Use(middleware.Metrics)

	// Security middleware
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.MaxBodySize(16 * 1024)) // 16KB max body

	// Standard middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(chimw.Recoverer)

	// Rate limiting on credential endpoints (requires Redis)
	if redisClient != nil {
		limiter := middleware.NewRateLimiter(redisClient, logger)
		r.Use(limiter.Middleware)
	}

	// CORS - browser clients connect from anywhere
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Relay core
	registry := presence.NewRegistry()
	engine := relay.NewEngine(ds, registry, logger)
	gw := gateway.New(registry, engine, logger)

	// Handlers and auth middleware
	h := handlers.NewHandler(ds, sessions, chat.NewService(ds), registry, logger)
	auth := middleware.NewAuthMiddleware(ds, sessions)

	// Metrics endpoint (for Prometheus scraping)
	r.Handle("/metrics", promhttp.Handler())

	// Public routes (no auth required)
	r.Get("/", h.Root)
	r.Get("/health", h.Health)
	r.Get("/stats", h.Stats)
	r.Post("/signup", h.Signup)
	r.Post("/login", h.Login)

	// Authenticated routes (require session token)
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth)

		r.Post("/logout", h.Logout)
		r.Get("/api/users", h.Users)
		r.Get("/api/search/{username}", h.SearchUser)
		r.Get("/api/messages/{userID}", h.Conversation)
		r.Get("/ws", gw.HandleWS)
	})

	return r
}
