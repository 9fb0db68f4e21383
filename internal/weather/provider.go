package weather

import "context"

// Provider defines the interface for weather data providers.
type Provider interface {
	// Current fetches current conditions for a location given by name or coordinates.
	Current(ctx context.Context, loc Location) (*CurrentConditions, error)

	// Forecast fetches the provider's forecast list, in chronological order.
	Forecast(ctx context.Context, loc Location) ([]ForecastPoint, error)

	// Overview fetches the detailed snapshot for a coordinate pair.
	Overview(ctx context.Context, coords Coordinates) (*OverviewSnapshot, error)

	// Name returns the provider name for logging.
	Name() string
}
