package models

import (
	"github.com/skydeck/skydeck/internal/dashboard"
	"github.com/skydeck/skydeck/internal/weather"
)

// SearchRequest is the body of POST /v1/dashboard/search.
type SearchRequest struct {
	Location string `json:"location"`
}

// LocateRequest is the body of POST /v1/dashboard/locate. Both fields are
// pointers so that a missing coordinate is told apart from zero.
type LocateRequest struct {
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`
}

// GeolocationFailureRequest is the body of POST /v1/dashboard/geolocation-failure.
type GeolocationFailureRequest struct {
	Reason string `json:"reason,omitempty"`
}

// WeatherCondition is one provider weather descriptor.
type WeatherCondition struct {
	Condition   weather.Condition `json:"condition"`
	Description string            `json:"description"`
	Icon        string            `json:"icon"`
}

// CurrentWeather is the current-conditions panel.
type CurrentWeather struct {
	Name        string             `json:"name"`
	Coordinates Point              `json:"coordinates"`
	Temperature float64            `json:"temperature"`
	Humidity    float64            `json:"humidity"`
	WindSpeed   float64            `json:"windSpeed"`
	Description string             `json:"description"`
	Icon        string             `json:"icon"`
	Conditions  []WeatherCondition `json:"conditions"`
	FetchedAt   Timestamp          `json:"fetchedAt"`
}

// ForecastEntry is one forecast row.
type ForecastEntry struct {
	Time        Timestamp `json:"time"`
	Label       string    `json:"label"`
	Temperature float64   `json:"temperature"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
}

// WeatherOverview is the detailed overview panel.
type WeatherOverview struct {
	Temperature float64            `json:"temperature"`
	Humidity    float64            `json:"humidity"`
	WindSpeed   float64            `json:"windSpeed"`
	Description string             `json:"description"`
	Icon        string             `json:"icon"`
	Conditions  []WeatherCondition `json:"conditions"`
	FetchedAt   Timestamp          `json:"fetchedAt"`
}

// DashboardView is the full dashboard view state.
type DashboardView struct {
	Query           string           `json:"query,omitempty"`
	Current         *CurrentWeather  `json:"current"`
	Forecast        []ForecastEntry  `json:"forecast"`
	Overview        *WeatherOverview `json:"overview"`
	BackgroundImage string           `json:"backgroundImage"`
	Loading         bool             `json:"loading"`
	WeatherError    string           `json:"weatherError,omitempty"`
	OverviewError   string           `json:"overviewError,omitempty"`
	Generation      uint64           `json:"generation"`
	UpdatedAt       *Timestamp       `json:"updatedAt,omitempty"`
}

// NewDashboardView converts a dashboard snapshot to its wire form.
func NewDashboardView(v dashboard.View) DashboardView {
	out := DashboardView{
		Query:           v.Query,
		Forecast:        make([]ForecastEntry, 0, len(v.Forecast)),
		BackgroundImage: v.BackgroundImage,
		Loading:         v.Loading,
		WeatherError:    v.WeatherError,
		OverviewError:   v.OverviewError,
		Generation:      v.Generation,
		UpdatedAt:       timestampPtr(v.UpdatedAt),
	}

	if c := v.Current; c != nil {
		out.Current = &CurrentWeather{
			Name:        c.Name,
			Coordinates: Point{Lat: c.Coordinates.Lat, Lon: c.Coordinates.Lon},
			Temperature: c.Temperature,
			Humidity:    c.Humidity,
			WindSpeed:   c.WindSpeed,
			Description: c.Description,
			Icon:        c.Icon,
			Conditions:  newConditions(c.Conditions),
			FetchedAt:   Timestamp(c.FetchedAt),
		}
	}

	for _, p := range v.Forecast {
		out.Forecast = append(out.Forecast, ForecastEntry{
			Time:        Timestamp(p.Time),
			Label:       p.Label,
			Temperature: p.Temperature,
			Description: p.Description,
			Icon:        p.Icon,
		})
	}

	if o := v.Overview; o != nil {
		out.Overview = &WeatherOverview{
			Temperature: o.Temperature,
			Humidity:    o.Humidity,
			WindSpeed:   o.WindSpeed,
			Description: o.Description,
			Icon:        o.Icon,
			Conditions:  newConditions(o.Conditions),
			FetchedAt:   Timestamp(o.FetchedAt),
		}
	}

	return out
}

func newConditions(ds []weather.Descriptor) []WeatherCondition {
	out := make([]WeatherCondition, 0, len(ds))
	for _, d := range ds {
		out = append(out, WeatherCondition{Condition: d.Condition, Description: d.Description, Icon: d.Icon})
	}
	return out
}
