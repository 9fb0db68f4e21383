// Package dashboard runs weather lookups and keeps each session's
// dashboard view state.
package dashboard

import (
	"slices"
	"sync"
	"time"

	"github.com/skydeck/skydeck/internal/photo"
	"github.com/skydeck/skydeck/internal/weather"
)

// View is a point-in-time copy of one dashboard. Current, Forecast,
// Overview and BackgroundImage are independent: after a partial failure
// they may describe different lookups.
type View struct {
	// Query is the location text or coordinates of the last lookup that
	// reached the weather provider successfully.
	Query string

	Current         *weather.CurrentConditions
	Forecast        []weather.ForecastPoint
	Overview        *weather.OverviewSnapshot
	BackgroundImage string

	Loading bool

	// WeatherError covers validation, geolocation and current/forecast
	// failures. OverviewError only covers the overview step.
	WeatherError  string
	OverviewError string

	// Generation identifies the newest lookup started on this dashboard.
	Generation uint64
	UpdatedAt  time.Time
}

// State is the mutable view state of one dashboard. Lookups that were
// superseded by a newer one on the same State are not allowed to publish.
type State struct {
	mu         sync.RWMutex
	view       View
	generation uint64
	now        func() time.Time
}

// NewState returns an empty dashboard showing the fallback background.
func NewState() *State {
	return &State{
		view: View{BackgroundImage: photo.FallbackImage},
		now:  time.Now,
	}
}

// Snapshot returns a copy of the current view.
func (s *State) Snapshot() View {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v := s.view
	v.Forecast = slices.Clone(s.view.Forecast)
	v.Generation = s.generation
	return v
}

// begin starts a new lookup: it becomes the only one allowed to publish,
// loading is asserted and the weather error slot is cleared.
func (s *State) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++
	s.view.Loading = true
	s.view.WeatherError = ""
	s.view.UpdatedAt = s.now()
	return s.generation
}

// publish applies fn if gen is still the newest lookup. It reports whether
// the update was applied.
func (s *State) publish(gen uint64, fn func(v *View)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		return false
	}
	fn(&s.view)
	s.view.UpdatedAt = s.now()
	return true
}

// finish drops the loading flag if gen is still the newest lookup.
func (s *State) finish(gen uint64) {
	s.publish(gen, func(v *View) { v.Loading = false })
}

// setWeatherError sets the weather error slot outside of any lookup.
func (s *State) setWeatherError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.view.WeatherError = msg
	s.view.UpdatedAt = s.now()
}
