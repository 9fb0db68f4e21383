// Package photo finds a decorative background image for a location.
package photo

import (
	"context"
	"errors"

	"golang.org/x/time/rate"
)

// FallbackImage is the marker the browser renders as its bundled default
// background whenever no photo could be found.
const FallbackImage = "default_image.jpg"

// GenericQuery is searched when a location has no display name yet.
const GenericQuery = "nature"

var (
	ErrNoResults   = errors.New("no photo found")
	ErrRateLimited = errors.New("photo search budget exhausted")
)

// Searcher returns the URL of one image matching a free-text query.
type Searcher interface {
	Search(ctx context.Context, query string) (string, error)
	Name() string
}

// RateLimitedSearcher wraps a Searcher with a token bucket. Requests over
// budget are refused immediately instead of queued, so a search never waits
// on the limiter.
type RateLimitedSearcher struct {
	searcher Searcher
	limiter  *rate.Limiter
}

// NewRateLimitedSearcher allows perHour searches per hour with a burst of
// the same size. A non-positive perHour disables limiting.
func NewRateLimitedSearcher(searcher Searcher, perHour float64) *RateLimitedSearcher {
	limit := rate.Inf
	burst := 1
	if perHour > 0 {
		limit = rate.Limit(perHour / 3600)
		burst = max(1, int(perHour))
	}
	return &RateLimitedSearcher{
		searcher: searcher,
		limiter:  rate.NewLimiter(limit, burst),
	}
}

// Search forwards to the wrapped searcher when a token is available.
func (s *RateLimitedSearcher) Search(ctx context.Context, query string) (string, error) {
	if !s.limiter.Allow() {
		return "", ErrRateLimited
	}
	return s.searcher.Search(ctx, query)
}

// Name returns the wrapped searcher's name.
func (s *RateLimitedSearcher) Name() string {
	return s.searcher.Name()
}

// URLOrFallback maps a search outcome to an image reference: the URL on
// success, FallbackImage on any error or empty result.
func URLOrFallback(url string, err error) string {
	if err != nil || url == "" {
		return FallbackImage
	}
	return url
}
