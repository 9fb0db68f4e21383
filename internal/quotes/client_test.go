package quotes_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skydeck/skydeck/internal/provider/resilience"
	"github.com/skydeck/skydeck/internal/quotes"
)

func newTestClient(url string) *quotes.Client {
	return quotes.NewClient(quotes.ClientConfig{
		URL:        url,
		HTTPClient: resilience.NewClient(resilience.DefaultClientConfig("test")),
	})
}

func TestClient_Random(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"quote":"Say my name.","author":"Walter White"}]`))
	}))
	defer server.Close()

	q, err := newTestClient(server.URL).Random(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Say my name.", q.Text)
	assert.Equal(t, "Walter White", q.Author)
}

func TestClient_Random_Empty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Random(context.Background())
	assert.ErrorIs(t, err, quotes.ErrNoQuote)
}

func TestClient_Random_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Random(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}
