// Package unsplash searches Unsplash for landscape photos.
package unsplash

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/rs/zerolog"

	"github.com/skydeck/skydeck/internal/photo"
	"github.com/skydeck/skydeck/internal/provider/resilience"
)

const (
	// ProviderName identifies this photo provider.
	ProviderName = "unsplash"

	// DefaultSearchURL is the Unsplash photo search endpoint.
	DefaultSearchURL = "https://api.unsplash.com/search/photos"
)

// ClientConfig holds configuration for the Unsplash client.
type ClientConfig struct {
	// AccessKey is sent as client_id.
	AccessKey string

	// SearchURL defaults to DefaultSearchURL.
	SearchURL string

	// HTTPClient is the HTTP client to use (optional).
	HTTPClient *resilience.Client

	Logger zerolog.Logger
}

// Client is an Unsplash search client.
type Client struct {
	accessKey  string
	searchURL  string
	httpClient *resilience.Client
	logger     zerolog.Logger
}

// NewClient creates a new Unsplash client.
func NewClient(cfg ClientConfig) *Client {
	searchURL := cfg.SearchURL
	if searchURL == "" {
		searchURL = DefaultSearchURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig(ProviderName))
	}

	return &Client{
		accessKey:  cfg.AccessKey,
		searchURL:  searchURL,
		httpClient: httpClient,
		logger:     cfg.Logger.With().Str("provider", ProviderName).Logger(),
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// Search returns the regular-size URL of the first landscape result for query.
func (c *Client) Search(ctx context.Context, query string) (string, error) {
	q := url.Values{}
	q.Set("query", query)
	q.Set("client_id", c.accessKey)
	q.Set("orientation", "landscape")
	q.Set("per_page", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.searchURL+"?"+q.Encode(), http.NoBody)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept-Version", "v1")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var searchResp searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}

	if len(searchResp.Results) == 0 || searchResp.Results[0].URLs.Regular == "" {
		c.logger.Debug().Str("query", query).Msg("no photo results")
		return "", photo.ErrNoResults
	}

	return searchResp.Results[0].URLs.Regular, nil
}

type searchResponse struct {
	Total   int `json:"total"`
	Results []struct {
		ID   string `json:"id"`
		URLs struct {
			Raw     string `json:"raw"`
			Full    string `json:"full"`
			Regular string `json:"regular"`
			Small   string `json:"small"`
		} `json:"urls"`
	} `json:"results"`
}
