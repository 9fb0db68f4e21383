package weather

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Weather errors.
var (
	ErrEmptyLocation          = errors.New("empty location")
	ErrInvalidCoordinates     = errors.New("invalid coordinates")
	ErrGeolocationUnavailable = errors.New("geolocation unavailable")
	ErrNoDataForLocation      = errors.New("no weather data for location")
)

// Coordinates is a latitude/longitude pair in degrees.
type Coordinates struct {
	Lat float64
	Lon float64
}

func (c Coordinates) String() string {
	return fmt.Sprintf("%.4f,%.4f", c.Lat, c.Lon)
}

// Location is what a weather lookup is keyed by: either a display name or
// a coordinate pair, never both.
type Location struct {
	Name        string
	Coordinates *Coordinates
}

// IsCoordinates reports whether the location was resolved from a coordinate pair.
func (l Location) IsCoordinates() bool {
	return l.Coordinates != nil
}

func (l Location) String() string {
	if l.IsCoordinates() {
		return l.Coordinates.String()
	}
	return l.Name
}

// Condition represents the general weather condition.
type Condition string

const (
	ConditionClear        Condition = "CLEAR"
	ConditionClouds       Condition = "CLOUDS"
	ConditionRain         Condition = "RAIN"
	ConditionDrizzle      Condition = "DRIZZLE"
	ConditionThunderstorm Condition = "THUNDERSTORM"
	ConditionSnow         Condition = "SNOW"
	ConditionMist         Condition = "MIST"
	ConditionFog          Condition = "FOG"
	ConditionHaze         Condition = "HAZE"
	ConditionUnknown      Condition = "UNKNOWN"
)

// Descriptor is one weather descriptor as reported by the provider.
type Descriptor struct {
	Condition   Condition
	Description string
	Icon        string
}

// CurrentConditions is the current weather at a location. It is replaced
// wholesale on every successful fetch.
type CurrentConditions struct {
	Name        string
	Coordinates Coordinates

	// Temperature in Celsius
	Temperature float64

	// Humidity percentage (0-100)
	Humidity float64

	// WindSpeed in m/s
	WindSpeed float64

	// Description and Icon come from the first descriptor.
	Description string
	Icon        string
	Conditions  []Descriptor

	FetchedAt time.Time
}

// ForecastPoint is one entry of the provider's forecast list.
type ForecastPoint struct {
	Time time.Time

	// Label is the provider's own timestamp text, e.g. "2024-05-01 12:00:00".
	Label string

	Temperature float64
	Description string
	Icon        string
}

// OverviewSnapshot is the detailed "right now" view. It overlaps with
// CurrentConditions but is fetched and kept separately so that either can
// fail on its own.
type OverviewSnapshot struct {
	Temperature float64
	Humidity    float64
	WindSpeed   float64
	Description string
	Icon        string
	Conditions  []Descriptor
	FetchedAt   time.Time
}

// FirstDescriptor returns the first descriptor, or a zero Descriptor with
// ConditionUnknown when the list is empty.
func FirstDescriptor(ds []Descriptor) Descriptor {
	if len(ds) == 0 {
		return Descriptor{Condition: ConditionUnknown}
	}
	return ds[0]
}

// ParseCondition maps a provider condition group to a Condition.
func ParseCondition(group string) Condition {
	switch strings.TrimSpace(group) {
	case "Clear":
		return ConditionClear
	case "Clouds":
		return ConditionClouds
	case "Rain":
		return ConditionRain
	case "Drizzle":
		return ConditionDrizzle
	case "Thunderstorm":
		return ConditionThunderstorm
	case "Snow":
		return ConditionSnow
	case "Mist":
		return ConditionMist
	case "Fog":
		return ConditionFog
	case "Haze", "Dust", "Sand", "Ash", "Smoke", "Squall", "Tornado":
		return ConditionHaze
	default:
		return ConditionUnknown
	}
}
