package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/skydeck/skydeck/internal/api/middleware"
	"github.com/skydeck/skydeck/internal/session"
)

// limited wraps okHandler in limiter and returns a sender that reports the
// status for a request from ip, optionally inside session s.
func limited(limiter func(http.Handler) http.Handler) func(ip string, s *session.Session) *httptest.ResponseRecorder {
	handler := middleware.RequestID(limiter(http.HandlerFunc(okHandler)))
	return func(ip string, s *session.Session) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/v1/dashboard/search", http.NoBody)
		req.RemoteAddr = ip
		if s != nil {
			req = req.WithContext(middleware.WithSession(req.Context(), s))
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}
}

func perMinute(n int) middleware.RateLimitConfig {
	return middleware.RateLimitConfig{RequestLimit: n, WindowLength: time.Minute}
}

func TestRateLimitByIP_BlocksOverLimit(t *testing.T) {
	send := limited(middleware.RateLimitByIP(perMinute(3)))

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, send("10.0.0.1:12345", nil).Code, "request %d should be allowed", i+1)
	}

	rec := send("10.0.0.1:12345", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))

	// A different client keeps its own budget.
	assert.Equal(t, http.StatusOK, send("10.0.0.2:12345", nil).Code)
}

func TestRateLimitBySession_KeysBySession(t *testing.T) {
	registry := session.NewRegistry(session.RegistryConfig{Logger: zerolog.Nop()})
	first := registry.Create()
	second := registry.Create()

	send := limited(middleware.RateLimitBySession(perMinute(2)))

	// Same session from different IPs shares one budget.
	assert.Equal(t, http.StatusOK, send("192.168.1.1:12345", first).Code)
	assert.Equal(t, http.StatusOK, send("192.168.1.2:12345", first).Code)
	assert.Equal(t, http.StatusTooManyRequests, send("192.168.1.3:12345", first).Code)

	// Another session from the same IP has its own budget.
	assert.Equal(t, http.StatusOK, send("192.168.1.1:12345", second).Code)
}

func TestRateLimitBySession_FallsBackToIP(t *testing.T) {
	send := limited(middleware.RateLimitBySession(perMinute(1)))

	assert.Equal(t, http.StatusOK, send("10.1.1.1:1000", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, send("10.1.1.1:1000", nil).Code)
}

func TestRateLimitExceededResponse_Format(t *testing.T) {
	send := limited(middleware.RateLimitByIP(perMinute(1)))

	send("203.0.113.1:12345", nil)
	rec := send("203.0.113.1:12345", nil)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	assert.Contains(t, body, "too-many-requests")
	assert.Contains(t, body, "Rate limit exceeded")
	assert.Contains(t, body, `"instance":"/v1/dashboard/search"`)
	assert.Contains(t, body, rec.Header().Get("X-Request-Id"))
}

func TestDefaultRateLimitConfigs(t *testing.T) {
	tests := []struct {
		name  string
		cfg   middleware.RateLimitConfig
		limit int
	}{
		{"session", middleware.SessionRateLimit, 10},
		{"search", middleware.SearchRateLimit, 30},
		{"standard", middleware.StandardRateLimit, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.limit, tt.cfg.RequestLimit)
			assert.Equal(t, time.Minute, tt.cfg.WindowLength)
		})
	}
}
