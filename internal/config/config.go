// Package config loads SkyDeck configuration once at startup.
//
// Sources are applied in order, later ones winning:
//  1. a .env file in the working directory (optional)
//  2. a YAML file named by CONFIG_FILE (optional)
//  3. process environment variables
//
// Defaults are filled in for anything still unset, then the result is
// validated. There is no runtime reconfiguration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// DevSigningKey is used for session tokens outside production when no key is configured.
const DevSigningKey = "local-dev-session-key-change-in-production"

// Default endpoints.
const (
	DefaultWeatherURL  = "https://api.openweathermap.org/data/2.5/weather"
	DefaultForecastURL = "https://api.openweathermap.org/data/2.5/forecast"
	DefaultOverviewURL = "https://api.openweathermap.org/data/3.0/onecall"
	DefaultPhotoURL    = "https://api.unsplash.com/search/photos"
	DefaultQuotesURL   = "https://api.breakingbadquotes.xyz/v1/quotes"
)

// Config holds every recognised option.
type Config struct {
	Port        string `envconfig:"APP_PORT" yaml:"port"`
	Environment string `envconfig:"APP_ENV" yaml:"environment"`

	// Weather provider endpoints and credential.
	WeatherURL    string `envconfig:"WEATHER_URL" yaml:"weather_url"`
	ForecastURL   string `envconfig:"FORECAST_URL" yaml:"forecast_url"`
	OverviewURL   string `envconfig:"OVERVIEW_URL" yaml:"overview_url"`
	WeatherAPIKey string `envconfig:"WEATHER_API_KEY" yaml:"weather_api_key"`

	// Photo search endpoint, credential and hourly request budget.
	PhotoURL         string  `envconfig:"UNSPLASH_URL" yaml:"unsplash_url"`
	PhotoAPIKey      string  `envconfig:"UNSPLASH_API_KEY" yaml:"unsplash_api_key"`
	PhotoRatePerHour float64 `envconfig:"UNSPLASH_RATE_PER_HOUR" yaml:"unsplash_rate_per_hour"`

	// Remote CRUD store.
	RecordsURL    string `envconfig:"RECORDS_API_URL" yaml:"records_api_url"`
	RecordsCSVURL string `envconfig:"RECORDS_CSV_URL" yaml:"records_csv_url"`

	QuotesURL string `envconfig:"QUOTES_URL" yaml:"quotes_url"`

	SessionSigningKey string        `envconfig:"SESSION_SIGNING_KEY" yaml:"session_signing_key"`
	SessionIdleTTL    time.Duration `envconfig:"SESSION_IDLE_TTL" yaml:"session_idle_ttl"`

	// Outbound HTTP behaviour. Retries default to zero: every upstream
	// failure is terminal for the call that hit it.
	HTTPTimeout    time.Duration `envconfig:"HTTP_TIMEOUT" yaml:"http_timeout"`
	HTTPMaxRetries uint64        `envconfig:"HTTP_MAX_RETRIES" yaml:"http_max_retries"`

	OTelEnabled     bool    `envconfig:"OTEL_ENABLED" yaml:"otel_enabled"`
	OTLPEndpoint    string  `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT" yaml:"otlp_endpoint"`
	OTelSampleRatio float64 `envconfig:"OTEL_SAMPLE_RATIO" yaml:"otel_sample_ratio"`

	RequireTLS bool `envconfig:"REQUIRE_TLS" yaml:"require_tls"`
}

// Load resolves configuration from .env, CONFIG_FILE and the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	var cfg Config

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadYAML(path, &cfg); err != nil {
			return nil, err
		}
	}

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func loadYAML(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyDefaults() {
	setDefault(&c.Port, "8080")
	setDefault(&c.Environment, "development")
	setDefault(&c.WeatherURL, DefaultWeatherURL)
	setDefault(&c.ForecastURL, DefaultForecastURL)
	setDefault(&c.OverviewURL, DefaultOverviewURL)
	setDefault(&c.PhotoURL, DefaultPhotoURL)
	setDefault(&c.QuotesURL, DefaultQuotesURL)
	setDefault(&c.OTLPEndpoint, "localhost:4317")

	if c.PhotoRatePerHour == 0 {
		c.PhotoRatePerHour = 50 // Unsplash demo tier
	}
	if c.SessionIdleTTL == 0 {
		c.SessionIdleTTL = 2 * time.Hour
	}
	if c.HTTPTimeout == 0 {
		c.HTTPTimeout = 10 * time.Second
	}
	if c.OTelSampleRatio == 0 {
		c.OTelSampleRatio = 1
	}
	if c.SessionSigningKey == "" && !c.IsProduction() {
		c.SessionSigningKey = DevSigningKey
	}

	// Record URLs are joined as <base><id>/, so the base keeps a trailing slash.
	if c.RecordsURL != "" && !strings.HasSuffix(c.RecordsURL, "/") {
		c.RecordsURL += "/"
	}
}

func setDefault(field *string, value string) {
	if *field == "" {
		*field = value
	}
}

// Validate reports the first missing or inconsistent option.
func (c *Config) Validate() error {
	var missing []string
	if c.WeatherAPIKey == "" {
		missing = append(missing, "WEATHER_API_KEY")
	}
	if c.RecordsURL == "" {
		missing = append(missing, "RECORDS_API_URL")
	}
	if c.RecordsCSVURL == "" {
		missing = append(missing, "RECORDS_CSV_URL")
	}
	if c.SessionSigningKey == "" {
		missing = append(missing, "SESSION_SIGNING_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	if c.PhotoRatePerHour < 0 {
		return errors.New("UNSPLASH_RATE_PER_HOUR must not be negative")
	}
	if c.HTTPTimeout < 0 {
		return errors.New("HTTP_TIMEOUT must not be negative")
	}
	if c.OTelSampleRatio < 0 || c.OTelSampleRatio > 1 {
		return errors.New("OTEL_SAMPLE_RATIO must be between 0 and 1")
	}
	return nil
}

// IsProduction reports whether the service runs in the production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// UsesDevSigningKey reports whether session tokens are signed with the built-in dev key.
func (c *Config) UsesDevSigningKey() bool {
	return c.SessionSigningKey == DevSigningKey
}
