package dashboard

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/skydeck/skydeck/internal/photo"
	"github.com/skydeck/skydeck/internal/telemetry"
	"github.com/skydeck/skydeck/internal/weather"
)

// User-facing messages placed in the error slots.
const (
	MsgEmptyLocation          = "Please enter a valid location."
	MsgWeatherFailed          = "Could not fetch weather data. Please try again."
	MsgWeatherFailedForCoords = "Could not fetch weather data for your location. Please try again."
	MsgOverviewFailed         = "Could not fetch weather overview. Please try again."
	MsgGeolocationFailed      = "Unable to fetch your location."
)

// Recorder receives the outcome of every provider call and every
// degradation to the fallback background image.
type Recorder interface {
	RecordRequest(provider, operation string, duration time.Duration, err error)
	RecordFallback(provider, reason string)
}

type noopRecorder struct{}

func (noopRecorder) RecordRequest(string, string, time.Duration, error) {}
func (noopRecorder) RecordFallback(string, string) {}

// Config holds the orchestrator's collaborators.
type Config struct {
	Weather weather.Provider

	// Photos is optional; without it every lookup shows the fallback image.
	Photos photo.Searcher

	Recorder Recorder
	Logger   zerolog.Logger
}

// Orchestrator runs the lookup chain: current conditions and forecast,
// then background photo, then overview.
type Orchestrator struct {
	weather  weather.Provider
	photos   photo.Searcher
	recorder Recorder
	logger   zerolog.Logger
}

// NewOrchestrator creates an orchestrator.
func NewOrchestrator(cfg Config) *Orchestrator {
	rec := cfg.Recorder
	if rec == nil {
		rec = noopRecorder{}
	}
	return &Orchestrator{
		weather:  cfg.Weather,
		photos:   cfg.Photos,
		recorder: rec,
		logger:   cfg.Logger.With().Str("component", "dashboard").Logger(),
	}
}

// Search looks up a location by name. Blank input only sets the
// validation message; nothing else changes and no request is made.
func (o *Orchestrator) Search(ctx context.Context, st *State, input string) View {
	loc, err := weather.ResolveName(input)
	if err != nil {
		st.setWeatherError(MsgEmptyLocation)
		return st.Snapshot()
	}

	o.run(ctx, st, loc, MsgWeatherFailed)
	return st.Snapshot()
}

// SearchByCoordinates looks up the device position.
func (o *Orchestrator) SearchByCoordinates(ctx context.Context, st *State, lat, lon float64) View {
	loc, err := weather.ResolveCoordinates(lat, lon)
	if err != nil {
		o.logger.Warn().Err(err).Msg("rejected device position")
		st.setWeatherError(MsgGeolocationFailed)
		return st.Snapshot()
	}

	o.run(ctx, st, loc, MsgWeatherFailedForCoords)
	return st.Snapshot()
}

// ReportGeolocationFailure records that the browser could not obtain a
// position. There is no retry.
func (o *Orchestrator) ReportGeolocationFailure(st *State, reason string) View {
	err := weather.ResolveGeolocationFailure(reason)
	o.logger.Info().Err(err).Msg("geolocation failed")
	st.setWeatherError(MsgGeolocationFailed)
	return st.Snapshot()
}

func (o *Orchestrator) run(ctx context.Context, st *State, loc weather.Location, failMsg string) {
	gen := st.begin()
	defer st.finish(gen)

	logger := o.logger.With().Str("location", loc.String()).Uint64("generation", gen).Logger()

	// Current conditions and forecast are independent; both must succeed
	// before anything is published.
	var (
		current  *weather.CurrentConditions
		forecast []weather.ForecastPoint
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		current, err = o.fetchCurrent(gctx, loc)
		return err
	})
	g.Go(func() error {
		var err error
		forecast, err = o.fetchForecast(gctx, loc)
		return err
	})
	if err := g.Wait(); err != nil {
		logger.Warn().Err(err).Msg("weather lookup failed")
		st.publish(gen, func(v *View) { v.WeatherError = failMsg })
		return
	}

	if !st.publish(gen, func(v *View) {
		v.Query = loc.String()
		v.Current = current
		v.Forecast = weather.ProjectForecast(forecast)
	}) {
		logger.Debug().Msg("lookup superseded, dropping results")
		return
	}

	image := o.backgroundImage(ctx, loc, current, logger)
	st.publish(gen, func(v *View) { v.BackgroundImage = image })

	if !st.publish(gen, func(v *View) { v.OverviewError = "" }) {
		return
	}
	overview, err := o.fetchOverview(ctx, current.Coordinates)
	if err != nil {
		logger.Warn().Err(err).Msg("overview lookup failed")
		st.publish(gen, func(v *View) { v.OverviewError = MsgOverviewFailed })
		return
	}
	st.publish(gen, func(v *View) { v.Overview = overview })
}

// backgroundImage never fails: any error degrades to the fallback marker.
func (o *Orchestrator) backgroundImage(ctx context.Context, loc weather.Location, current *weather.CurrentConditions, logger zerolog.Logger) string {
	if o.photos == nil {
		return photo.FallbackImage
	}

	query := loc.Name
	if loc.IsCoordinates() {
		query = current.Name
	}
	if query == "" {
		query = photo.GenericQuery
	}

	url, err := observe(ctx, o.recorder, o.photos.Name(), "search", func(ctx context.Context) (string, error) {
		return o.photos.Search(ctx, query)
	})
	if err != nil {
		o.recorder.RecordFallback(o.photos.Name(), fallbackReason(err))
		if !errors.Is(err, photo.ErrNoResults) {
			logger.Debug().Err(err).Str("query", query).Msg("photo search failed, using fallback")
		}
	}
	return photo.URLOrFallback(url, err)
}

func fallbackReason(err error) string {
	switch {
	case errors.Is(err, photo.ErrNoResults):
		return "no_results"
	case errors.Is(err, photo.ErrRateLimited):
		return "rate_limited"
	default:
		return "error"
	}
}

func (o *Orchestrator) fetchCurrent(ctx context.Context, loc weather.Location) (*weather.CurrentConditions, error) {
	return observe(ctx, o.recorder, o.weather.Name(), "current", func(ctx context.Context) (*weather.CurrentConditions, error) {
		return o.weather.Current(ctx, loc)
	})
}

func (o *Orchestrator) fetchForecast(ctx context.Context, loc weather.Location) ([]weather.ForecastPoint, error) {
	return observe(ctx, o.recorder, o.weather.Name(), "forecast", func(ctx context.Context) ([]weather.ForecastPoint, error) {
		return o.weather.Forecast(ctx, loc)
	})
}

func (o *Orchestrator) fetchOverview(ctx context.Context, coords weather.Coordinates) (*weather.OverviewSnapshot, error) {
	return observe(ctx, o.recorder, o.weather.Name(), "overview", func(ctx context.Context) (*weather.OverviewSnapshot, error) {
		return o.weather.Overview(ctx, coords)
	})
}

// observe wraps one provider call in a client span and reports its
// duration and outcome to rec.
func observe[T any](ctx context.Context, rec Recorder, provider, operation string, call func(context.Context) (T, error)) (T, error) {
	ctx, span := telemetry.StartProviderSpan(ctx, provider, operation)
	start := time.Now()
	v, err := call(ctx)
	rec.RecordRequest(provider, operation, time.Since(start), err)
	telemetry.EndProviderSpan(span, err)
	return v, err
}
