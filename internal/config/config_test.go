package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skydeck/skydeck/internal/config"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("WEATHER_API_KEY", "owm-key")
	t.Setenv("RECORDS_API_URL", "http://store.local/api/weather")
	t.Setenv("RECORDS_CSV_URL", "http://store.local/api/weather/export/csv/")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, config.DefaultWeatherURL, cfg.WeatherURL)
	assert.Equal(t, config.DefaultForecastURL, cfg.ForecastURL)
	assert.Equal(t, config.DefaultOverviewURL, cfg.OverviewURL)
	assert.Equal(t, config.DefaultPhotoURL, cfg.PhotoURL)
	assert.Equal(t, config.DefaultQuotesURL, cfg.QuotesURL)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, uint64(0), cfg.HTTPMaxRetries)
	assert.Equal(t, 2*time.Hour, cfg.SessionIdleTTL)
	assert.InDelta(t, 50.0, cfg.PhotoRatePerHour, 0.001)
	assert.InDelta(t, 1.0, cfg.OTelSampleRatio, 0.001)
	assert.True(t, cfg.UsesDevSigningKey())
}

func TestLoad_RecordsURLGetsTrailingSlash(t *testing.T) {
	setRequired(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "http://store.local/api/weather/", cfg.RecordsURL)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("APP_PORT", "9090")
	t.Setenv("WEATHER_URL", "http://owm.local/weather")
	t.Setenv("HTTP_TIMEOUT", "3s")
	t.Setenv("HTTP_MAX_RETRIES", "2")
	t.Setenv("UNSPLASH_RATE_PER_HOUR", "10")
	t.Setenv("SESSION_SIGNING_KEY", "secret")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "http://owm.local/weather", cfg.WeatherURL)
	assert.Equal(t, 3*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, uint64(2), cfg.HTTPMaxRetries)
	assert.InDelta(t, 10.0, cfg.PhotoRatePerHour, 0.001)
	assert.False(t, cfg.UsesDevSigningKey())
}

func TestLoad_YAMLFileThenEnvironment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "skydeck.yaml")
	content := `
port: "7070"
weather_api_key: from-yaml
records_api_url: http://yaml.local/weather/
records_csv_url: http://yaml.local/weather/export/csv/
unsplash_api_key: photo-yaml
http_timeout: 4s
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("UNSPLASH_API_KEY", "photo-env")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.Port)
	assert.Equal(t, "from-yaml", cfg.WeatherAPIKey)
	assert.Equal(t, "http://yaml.local/weather/", cfg.RecordsURL)
	assert.Equal(t, 4*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "photo-env", cfg.PhotoAPIKey, "environment wins over the file")
}

func TestLoad_MissingConfigFile(t *testing.T) {
	setRequired(t)
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config file")
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("WEATHER_API_KEY", "")
	t.Setenv("RECORDS_API_URL", "")
	t.Setenv("RECORDS_CSV_URL", "")

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WEATHER_API_KEY")
	assert.Contains(t, err.Error(), "RECORDS_API_URL")
	assert.Contains(t, err.Error(), "RECORDS_CSV_URL")
}

func TestLoad_ProductionRequiresSigningKey(t *testing.T) {
	setRequired(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("SESSION_SIGNING_KEY", "")

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SESSION_SIGNING_KEY")
}

func TestValidate_NegativeValues(t *testing.T) {
	base := config.Config{
		WeatherAPIKey:     "k",
		RecordsURL:        "http://x/",
		RecordsCSVURL:     "http://x/csv/",
		SessionSigningKey: "s",
	}

	cfg := base
	cfg.PhotoRatePerHour = -1
	assert.Error(t, cfg.Validate())

	cfg = base
	cfg.HTTPTimeout = -time.Second
	assert.Error(t, cfg.Validate())

	cfg = base
	cfg.OTelSampleRatio = 1.5
	assert.Error(t, cfg.Validate())

	assert.NoError(t, base.Validate())
}
