// Package quotes fetches the banner quote shown above the dashboard.
package quotes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/skydeck/skydeck/internal/provider/resilience"
)

const (
	// ProviderName identifies the quotes provider.
	ProviderName = "quotes"

	// DefaultURL returns a JSON array holding one random quote.
	DefaultURL = "https://api.breakingbadquotes.xyz/v1/quotes"
)

// ErrNoQuote is returned when the provider answers with an empty list.
var ErrNoQuote = errors.New("no quote returned")

// Quote is a single quotation.
type Quote struct {
	Text   string `json:"quote"`
	Author string `json:"author"`
}

// ClientConfig holds configuration for the quotes client.
type ClientConfig struct {
	URL        string
	HTTPClient *resilience.Client
	Logger     zerolog.Logger
}

// Client fetches quotes.
type Client struct {
	url        string
	httpClient *resilience.Client
	logger     zerolog.Logger
}

// NewClient creates a new quotes client.
func NewClient(cfg ClientConfig) *Client {
	u := cfg.URL
	if u == "" {
		u = DefaultURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig(ProviderName))
	}

	return &Client{
		url:        u,
		httpClient: httpClient,
		logger:     cfg.Logger.With().Str("provider", ProviderName).Logger(),
	}
}

// Random returns the first quote of a fresh provider response.
func (c *Client) Random(ctx context.Context) (*Quote, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var list []Quote
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if len(list) == 0 {
		return nil, ErrNoQuote
	}

	return &list[0], nil
}
