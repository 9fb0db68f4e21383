package middleware_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skydeck/skydeck/internal/api/middleware"
	"github.com/skydeck/skydeck/internal/session"
)

func newSessionDeps(t *testing.T) (*session.TokenService, *session.Registry) {
	t.Helper()
	tokens := session.NewTokenService(session.TokenConfig{
		SigningKey: "test-signing-key",
		Issuer:     "skydeck-test",
		Audience:   "skydeck-api",
	})
	registry := session.NewRegistry(session.RegistryConfig{Logger: zerolog.Nop()})
	return tokens, registry
}

func okHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestSession_MissingAuthorizationHeader(t *testing.T) {
	tokens, registry := newSessionDeps(t)
	handler := middleware.Session(tokens, registry)(http.HandlerFunc(okHandler))

	req := httptest.NewRequest(http.MethodGet, "/v1/dashboard", http.NoBody)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "missing authorization header")
}

func TestSession_InvalidAuthorizationFormat(t *testing.T) {
	tokens, registry := newSessionDeps(t)
	handler := middleware.Session(tokens, registry)(http.HandlerFunc(okHandler))

	tests := []struct {
		name   string
		header string
	}{
		{"no bearer prefix", "token123"},
		{"basic auth", "Basic dXNlcjpwYXNz"},
		{"empty bearer", "Bearer "},
		{"just bearer", "Bearer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/dashboard", http.NoBody)
			req.Header.Set("Authorization", tt.header)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestSession_InvalidToken(t *testing.T) {
	tokens, registry := newSessionDeps(t)
	handler := middleware.Session(tokens, registry)(http.HandlerFunc(okHandler))

	req := httptest.NewRequest(http.MethodGet, "/v1/dashboard", http.NoBody)
	req.Header.Set("Authorization", "Bearer not.a.jwt")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid session token")
}

func TestSession_UnknownSession(t *testing.T) {
	tokens, registry := newSessionDeps(t)
	handler := middleware.Session(tokens, registry)(http.HandlerFunc(okHandler))

	token, _, err := tokens.Issue("not-registered")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/v1/dashboard", http.NoBody)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "session not found")
}

func TestSession_ValidTokenAttachesSession(t *testing.T) {
	tokens, registry := newSessionDeps(t)
	sess := registry.Create()

	token, _, err := tokens.Issue(sess.ID)
	require.NoError(t, err)

	var got *session.Session
	var gotID string
	handler := middleware.Session(tokens, registry)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = middleware.GetSession(r.Context())
		gotID = middleware.GetSessionID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/dashboard", http.NoBody)
	req.Header.Set("Authorization", "bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Same(t, sess, got)
	assert.Equal(t, sess.ID, gotID)
}

func TestGetSession_Empty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	assert.Nil(t, middleware.GetSession(req.Context()))
	assert.Empty(t, middleware.GetSessionID(req.Context()))
}

func TestSession_AnnotatesAccessLog(t *testing.T) {
	tokens, registry := newSessionDeps(t)
	sess := registry.Create()
	token, _, err := tokens.Issue(sess.ID)
	require.NoError(t, err)

	var buf bytes.Buffer
	handler := middleware.RequestID(
		middleware.Logger(zerolog.New(&buf))(
			middleware.Session(tokens, registry)(http.HandlerFunc(okHandler)),
		),
	)

	req := httptest.NewRequest(http.MethodGet, "/v1/records/state", http.NoBody)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	entry := decodeLogLine(t, &buf)
	assert.Equal(t, sess.ID, entry["session_id"])
}
