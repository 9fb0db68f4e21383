package openweathermap

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/skydeck/skydeck/internal/provider/resilience"
	"github.com/skydeck/skydeck/internal/weather"
)

const (
	// ProviderName identifies this weather provider.
	ProviderName = "openweathermap"

	DefaultCurrentURL  = "https://api.openweathermap.org/data/2.5/weather"
	DefaultForecastURL = "https://api.openweathermap.org/data/2.5/forecast"
	DefaultOverviewURL = "https://api.openweathermap.org/data/3.0/onecall"

	forecastLabelLayout = "2006-01-02 15:04:05"
)

// ClientConfig holds configuration for the OpenWeatherMap client.
type ClientConfig struct {
	// APIKey is the OpenWeatherMap API key (required).
	APIKey string

	// Endpoint URLs, each defaulting to the public OpenWeatherMap API.
	CurrentURL  string
	ForecastURL string
	OverviewURL string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with defaults.
	HTTPClient *resilience.Client

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is an OpenWeatherMap API client.
type Client struct {
	apiKey      string
	currentURL  string
	forecastURL string
	overviewURL string
	httpClient  *resilience.Client
	logger      zerolog.Logger
	now         func() time.Time
}

// NewClient creates a new OpenWeatherMap client.
func NewClient(cfg ClientConfig) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig(ProviderName))
	}

	return &Client{
		apiKey:      cfg.APIKey,
		currentURL:  orDefault(cfg.CurrentURL, DefaultCurrentURL),
		forecastURL: orDefault(cfg.ForecastURL, DefaultForecastURL),
		overviewURL: orDefault(cfg.OverviewURL, DefaultOverviewURL),
		httpClient:  httpClient,
		logger:      cfg.Logger.With().Str("provider", ProviderName).Logger(),
		now:         time.Now,
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// Current fetches current conditions by name or coordinates.
func (c *Client) Current(ctx context.Context, loc weather.Location) (*weather.CurrentConditions, error) {
	var owmResp currentWeatherResponse
	if err := c.get(ctx, c.currentURL, c.locationQuery(loc), &owmResp); err != nil {
		return nil, err
	}
	return c.toCurrent(&owmResp), nil
}

// Forecast fetches the 3-hourly forecast list by name or coordinates.
func (c *Client) Forecast(ctx context.Context, loc weather.Location) ([]weather.ForecastPoint, error) {
	var owmResp forecastResponse
	if err := c.get(ctx, c.forecastURL, c.locationQuery(loc), &owmResp); err != nil {
		return nil, err
	}
	return toForecast(&owmResp), nil
}

// Overview fetches the detailed snapshot nested under "current".
func (c *Client) Overview(ctx context.Context, coords weather.Coordinates) (*weather.OverviewSnapshot, error) {
	q := c.coordinateQuery(coords)
	q.Set("exclude", "minutely,hourly,daily,alerts")

	var owmResp overviewResponse
	if err := c.get(ctx, c.overviewURL, q, &owmResp); err != nil {
		return nil, err
	}

	conditions := toDescriptors(owmResp.Current.Weather)
	first := weather.FirstDescriptor(conditions)

	return &weather.OverviewSnapshot{
		Temperature: owmResp.Current.Temp,
		Humidity:    owmResp.Current.Humidity,
		WindSpeed:   owmResp.Current.WindSpeed,
		Description: first.Description,
		Icon:        first.Icon,
		Conditions:  conditions,
		FetchedAt:   c.now(),
	}, nil
}

func (c *Client) locationQuery(loc weather.Location) url.Values {
	if loc.IsCoordinates() {
		return c.coordinateQuery(*loc.Coordinates)
	}
	q := c.baseQuery()
	q.Set("q", loc.Name)
	return q
}

func (c *Client) coordinateQuery(coords weather.Coordinates) url.Values {
	q := c.baseQuery()
	q.Set("lat", strconv.FormatFloat(coords.Lat, 'f', 6, 64))
	q.Set("lon", strconv.FormatFloat(coords.Lon, 'f', 6, 64))
	return q
}

func (c *Client) baseQuery() url.Values {
	q := url.Values{}
	q.Set("appid", c.apiKey)
	q.Set("units", "metric")
	return q
}

func (c *Client) get(ctx context.Context, endpoint string, q url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+q.Encode(), http.NoBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", weather.ErrNoDataForLocation, q.Get("q"))
	case resp.StatusCode != http.StatusOK:
		c.logger.Warn().Int("status", resp.StatusCode).Str("endpoint", endpoint).Msg("unexpected weather provider status")
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func (c *Client) toCurrent(resp *currentWeatherResponse) *weather.CurrentConditions {
	conditions := toDescriptors(resp.Weather)
	first := weather.FirstDescriptor(conditions)

	return &weather.CurrentConditions{
		Name:        resp.Name,
		Coordinates: weather.Coordinates{Lat: resp.Coord.Lat, Lon: resp.Coord.Lon},
		Temperature: resp.Main.Temp,
		Humidity:    resp.Main.Humidity,
		WindSpeed:   resp.Wind.Speed,
		Description: first.Description,
		Icon:        first.Icon,
		Conditions:  conditions,
		FetchedAt:   c.now(),
	}
}

func toForecast(resp *forecastResponse) []weather.ForecastPoint {
	points := make([]weather.ForecastPoint, 0, len(resp.List))
	for _, item := range resp.List {
		first := weather.FirstDescriptor(toDescriptors(item.Weather))

		ts := time.Unix(item.Dt, 0).UTC()
		if item.Dt == 0 {
			if parsed, err := time.Parse(forecastLabelLayout, item.DtTxt); err == nil {
				ts = parsed
			}
		}

		points = append(points, weather.ForecastPoint{
			Time:        ts,
			Label:       item.DtTxt,
			Temperature: item.Main.Temp,
			Description: first.Description,
			Icon:        first.Icon,
		})
	}
	return points
}

func toDescriptors(in []weatherDescriptor) []weather.Descriptor {
	out := make([]weather.Descriptor, 0, len(in))
	for _, w := range in {
		out = append(out, weather.Descriptor{
			Condition:   weather.ParseCondition(w.Main),
			Description: w.Description,
			Icon:        w.Icon,
		})
	}
	return out
}

// OpenWeatherMap API response structures.

type weatherDescriptor struct {
	ID          int    `json:"id"`
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type currentWeatherResponse struct {
	Coord struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"coord"`
	Weather []weatherDescriptor `json:"weather"`
	Main    struct {
		Temp     float64 `json:"temp"`
		Humidity float64 `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Dt   int64  `json:"dt"`
	Name string `json:"name"`
}

type forecastResponse struct {
	List []struct {
		Dt    int64  `json:"dt"`
		DtTxt string `json:"dt_txt"`
		Main  struct {
			Temp float64 `json:"temp"`
		} `json:"main"`
		Weather []weatherDescriptor `json:"weather"`
	} `json:"list"`
}

type overviewResponse struct {
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Current struct {
		Temp      float64             `json:"temp"`
		Humidity  float64             `json:"humidity"`
		WindSpeed float64             `json:"wind_speed"`
		Weather   []weatherDescriptor `json:"weather"`
	} `json:"current"`
}
