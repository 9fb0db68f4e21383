// Package main provides the entrypoint for the SkyDeck API server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/skydeck/skydeck/internal/api"
	"github.com/skydeck/skydeck/internal/api/middleware"
	"github.com/skydeck/skydeck/internal/config"
	"github.com/skydeck/skydeck/internal/dashboard"
	"github.com/skydeck/skydeck/internal/photo"
	"github.com/skydeck/skydeck/internal/photo/unsplash"
	"github.com/skydeck/skydeck/internal/provider/resilience"
	"github.com/skydeck/skydeck/internal/quotes"
	"github.com/skydeck/skydeck/internal/records/remotestore"
	"github.com/skydeck/skydeck/internal/session"
	"github.com/skydeck/skydeck/internal/telemetry"
	"github.com/skydeck/skydeck/internal/weather/openweathermap"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

const (
	serviceName     = "skydeck-api"
	sessionIssuer   = "skydeck"
	sessionAudience = "skydeck-api"
	sweepInterval   = time.Minute
)

func main() {
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting SkyDeck API")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if cfg.UsesDevSigningKey() {
		log.Warn().Msg("using default session signing key - not secure for production")
	}

	ctx := context.Background()

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		Enabled:        cfg.OTelEnabled,
		SampleRatio:    cfg.OTelSampleRatio,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if cfg.OTelEnabled {
		log.Info().
			Str("otlp_endpoint", cfg.OTLPEndpoint).
			Msg("OpenTelemetry initialized")
	}

	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}
	providerMetrics, err := middleware.NewProviderMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize provider metrics")
		os.Exit(1)
	}

	// One resilient client per upstream, all reporting to the same registry.
	providers := resilience.NewRegistry()
	newHTTPClient := func(name string) *resilience.Client {
		c := resilience.DefaultClientConfig(name)
		c.Timeout = cfg.HTTPTimeout
		c.MaxRetries = cfg.HTTPMaxRetries
		c.Registry = providers
		return resilience.NewClient(c)
	}

	weatherClient := openweathermap.NewClient(openweathermap.ClientConfig{
		APIKey:      cfg.WeatherAPIKey,
		CurrentURL:  cfg.WeatherURL,
		ForecastURL: cfg.ForecastURL,
		OverviewURL: cfg.OverviewURL,
		HTTPClient:  newHTTPClient(openweathermap.ProviderName),
		Logger:      log,
	})

	var photos photo.Searcher
	if cfg.PhotoAPIKey != "" {
		photos = photo.NewRateLimitedSearcher(unsplash.NewClient(unsplash.ClientConfig{
			AccessKey:  cfg.PhotoAPIKey,
			SearchURL:  cfg.PhotoURL,
			HTTPClient: newHTTPClient(unsplash.ProviderName),
			Logger:     log,
		}), cfg.PhotoRatePerHour)
	} else {
		log.Warn().Msg("UNSPLASH_API_KEY not set - dashboard always shows the fallback background")
	}

	quoteClient := quotes.NewClient(quotes.ClientConfig{
		URL:        cfg.QuotesURL,
		HTTPClient: newHTTPClient(quotes.ProviderName),
		Logger:     log,
	})

	recordStore := remotestore.NewClient(remotestore.ClientConfig{
		BaseURL:    cfg.RecordsURL,
		CSVURL:     cfg.RecordsCSVURL,
		HTTPClient: newHTTPClient(remotestore.ProviderName),
		Logger:     log,
	})

	orchestrator := dashboard.NewOrchestrator(dashboard.Config{
		Weather:  weatherClient,
		Photos:   photos,
		Recorder: providerMetrics,
		Logger:   log,
	})

	sessions := session.NewRegistry(session.RegistryConfig{
		RecordStore: recordStore,
		IdleTTL:     cfg.SessionIdleTTL,
		Logger:      log,
	})
	tokens := session.NewTokenService(session.TokenConfig{
		SigningKey: cfg.SessionSigningKey,
		Issuer:     sessionIssuer,
		Audience:   sessionAudience,
	})

	sweeper := session.NewSweeper(sessions, sweepInterval, log)
	if err := sweeper.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start session sweeper")
	}
	defer sweeper.Stop()

	router := api.NewRouter(api.RouterConfig{
		Version:      Version,
		BuildTime:    BuildTime,
		Logger:       log,
		ServiceName:  serviceName,
		Metrics:      metrics,
		RequireTLS:   cfg.RequireTLS,
		Providers:    providers,
		Sessions:     sessions,
		Tokens:       tokens,
		Orchestrator: orchestrator,
		Quotes:       quoteClient,
	})

	// A search runs up to three sequential upstream steps, each bounded by
	// HTTP_TIMEOUT, before it responds.
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15*time.Second + 3*cfg.HTTPTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().
			Str("addr", server.Addr).
			Str("environment", cfg.Environment).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
