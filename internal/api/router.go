// Package api provides the HTTP API for SkyDeck.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/skydeck/skydeck/internal/api/handler"
	"github.com/skydeck/skydeck/internal/api/middleware"
	"github.com/skydeck/skydeck/internal/dashboard"
	"github.com/skydeck/skydeck/internal/provider/resilience"
	"github.com/skydeck/skydeck/internal/session"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version     string
	BuildTime   string
	Logger      zerolog.Logger
	ServiceName string
	Metrics     *middleware.Metrics
	RequireTLS  bool

	Providers    *resilience.Registry
	Sessions     *session.Registry
	Tokens       *session.TokenService
	Orchestrator *dashboard.Orchestrator
	Quotes       handler.QuoteSource
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "skydeck-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)
	r.Use(middleware.Tracing(serviceName))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware())
	}
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.RequireTLS(cfg.RequireTLS))
	r.Use(middleware.ContentTypeJSON)

	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.Providers, cfg.Sessions)
	sessionHandler := handler.NewSessionHandler(cfg.Sessions, cfg.Tokens, cfg.Logger)
	dashboardHandler := handler.NewDashboardHandler(cfg.Orchestrator)
	quoteHandler := handler.NewQuoteHandler(cfg.Quotes, cfg.Logger)
	recordsHandler := handler.NewRecordsHandler()

	sessionMiddleware := middleware.Session(cfg.Tokens, cfg.Sessions)

	sessionRateLimit := middleware.RateLimitByIP(middleware.SessionRateLimit)      // 10 req/min
	searchRateLimit := middleware.RateLimitBySession(middleware.SearchRateLimit)   // 30 req/min
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit)    // 100 req/min
	perSessionLimit := middleware.RateLimitBySession(middleware.StandardRateLimit) // 100 req/min

	r.Route("/v1", func(r chi.Router) {
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			r.With(standardRateLimit).Get("/status", opsHandler.SystemStatus)
		})

		r.With(sessionRateLimit).Post("/sessions", sessionHandler.CreateSession)

		r.With(standardRateLimit).Get("/quote", quoteHandler.GetQuote)

		r.Route("/dashboard", func(r chi.Router) {
			r.Use(sessionMiddleware)
			r.Use(perSessionLimit)
			r.Use(middleware.RequireJSON)
			r.Get("/", dashboardHandler.GetDashboard)
			r.With(searchRateLimit).Post("/search", dashboardHandler.Search)
			r.With(searchRateLimit).Post("/locate", dashboardHandler.Locate)
			r.Post("/geolocation-failure", dashboardHandler.GeolocationFailure)
		})

		r.Route("/records", func(r chi.Router) {
			r.Use(sessionMiddleware)
			r.Use(perSessionLimit)
			r.Use(middleware.RequireJSON)
			r.Get("/", recordsHandler.ListRecords)
			r.Post("/", recordsHandler.CreateRecord)
			r.Get("/state", recordsHandler.GetState)
			r.Get("/export.csv", recordsHandler.ExportRecords)
			r.Delete("/overlay", recordsHandler.CloseOverlay)
			r.Route("/{recordId}", func(r chi.Router) {
				r.Get("/", recordsHandler.GetRecord)
				r.Put("/", recordsHandler.UpdateRecord)
				r.Delete("/", recordsHandler.DeleteRecord)
				r.Post("/edit", recordsHandler.BeginEdit)
			})
		})
	})

	return r
}
