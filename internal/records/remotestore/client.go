// Package remotestore talks to the REST collection that persists saved
// records. Record URLs are <base><id>/.
package remotestore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"

	"github.com/skydeck/skydeck/internal/provider/resilience"
	"github.com/skydeck/skydeck/internal/records"
)

// ProviderName identifies the store in the provider registry.
const ProviderName = "records"

// maxErrorBody bounds how much of an error payload is read.
const maxErrorBody = 64 << 10

// ClientConfig holds configuration for the store client.
type ClientConfig struct {
	// BaseURL is the collection URL, e.g. http://host/api/weather/.
	BaseURL string

	// CSVURL is the export resource.
	CSVURL string

	HTTPClient *resilience.Client
	Logger     zerolog.Logger
}

// Client implements records.Store over HTTP.
type Client struct {
	baseURL    string
	csvURL     string
	httpClient *resilience.Client
	logger     zerolog.Logger
}

// NewClient creates a store client.
func NewClient(cfg ClientConfig) *Client {
	base := cfg.BaseURL
	if base != "" && !strings.HasSuffix(base, "/") {
		base += "/"
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig(ProviderName))
	}

	return &Client{
		baseURL:    base,
		csvURL:     cfg.CSVURL,
		httpClient: httpClient,
		logger:     cfg.Logger.With().Str("provider", ProviderName).Logger(),
	}
}

// List returns every record.
func (c *Client) List(ctx context.Context) ([]records.Record, error) {
	resp, err := c.do(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, readStoreError(resp)
	}

	var wire []recordJSON
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	out := make([]records.Record, 0, len(wire))
	for _, w := range wire {
		out = append(out, w.toRecord())
	}
	return out, nil
}

// Create posts a new record and expects 201 Created.
func (c *Client) Create(ctx context.Context, rec records.NewRecord) (*records.Record, error) {
	body := createJSON{
		Location:       rec.Location,
		DateRangeStart: rec.DateRangeStart,
		DateRangeEnd:   rec.DateRangeEnd,
	}

	resp, err := c.do(ctx, http.MethodPost, c.baseURL, body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusCreated:
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil, fmt.Errorf("%w: %d", records.ErrUnexpectedStatus, resp.StatusCode)
	default:
		return nil, readStoreError(resp)
	}

	var wire recordJSON
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	r := wire.toRecord()
	return &r, nil
}

// Update puts a partial body and returns the fields present in the reply.
func (c *Client) Update(ctx context.Context, id int64, patch records.Patch) (*records.Partial, error) {
	body := patchJSON{
		DateRangeStart: patch.DateRangeStart,
		DateRangeEnd:   patch.DateRangeEnd,
	}

	resp, err := c.do(ctx, http.MethodPut, c.recordURL(id), body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %d", records.ErrRecordNotFound, id)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, readStoreError(resp)
	}

	var fields map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&fields); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return partialFromFields(fields)
}

// Delete removes a record.
func (c *Client) Delete(ctx context.Context, id int64) error {
	resp, err := c.do(ctx, http.MethodDelete, c.recordURL(id), nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNoContent, http.StatusOK, http.StatusAccepted:
		return nil
	case http.StatusNotFound:
		return fmt.Errorf("%w: %d", records.ErrRecordNotFound, id)
	default:
		return readStoreError(resp)
	}
}

// Get returns one record including its weather fields.
func (c *Client) Get(ctx context.Context, id int64) (*records.Record, error) {
	resp, err := c.do(ctx, http.MethodGet, c.recordURL(id), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %d", records.ErrRecordNotFound, id)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, readStoreError(resp)
	}

	var wire recordJSON
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	r := wire.toRecord()
	return &r, nil
}

// ExportCSV returns the CSV export as an opaque blob.
func (c *Client) ExportCSV(ctx context.Context) ([]byte, error) {
	resp, err := c.do(ctx, http.MethodGet, c.csvURL, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, readStoreError(resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading export: %w", err)
	}
	return data, nil
}

func (c *Client) recordURL(id int64) string {
	return c.baseURL + strconv.FormatInt(id, 10) + "/"
}

func (c *Client) do(ctx context.Context, method, url string, body any) (*http.Response, error) {
	var reader io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug().Err(err).Str("method", method).Str("url", url).Msg("store request failed")
		return nil, fmt.Errorf("executing request: %w", err)
	}
	return resp, nil
}

// readStoreError builds a StoreError, taking the message from the first of
// "message", "error" or "detail" found in a JSON object body.
func readStoreError(resp *http.Response) error {
	storeErr := &records.StoreError{StatusCode: resp.StatusCode}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(data) == 0 {
		return storeErr
	}

	var payload map[string]json.RawMessage
	if json.Unmarshal(data, &payload) != nil {
		return storeErr
	}
	for _, key := range []string{"message", "error", "detail"} {
		raw, ok := payload[key]
		if !ok {
			continue
		}
		var msg string
		if json.Unmarshal(raw, &msg) == nil && msg != "" {
			storeErr.Message = msg
			break
		}
	}
	return storeErr
}

func partialFromFields(fields map[string]json.RawMessage) (*records.Partial, error) {
	var p records.Partial
	var errs []error

	if raw, ok := fields["location"]; ok {
		var v string
		errs = append(errs, json.Unmarshal(raw, &v))
		p.Location = &v
	}
	if raw, ok := fields["date_range_start"]; ok {
		var v civil.Date
		errs = append(errs, json.Unmarshal(raw, &v))
		p.DateRangeStart = &v
	}
	if raw, ok := fields["date_range_end"]; ok {
		var v civil.Date
		errs = append(errs, json.Unmarshal(raw, &v))
		p.DateRangeEnd = &v
	}

	var err error
	if p.Temperature, err = nullableField[float64](fields, "temperature"); err != nil {
		errs = append(errs, err)
	}
	if p.Humidity, err = nullableField[float64](fields, "humidity"); err != nil {
		errs = append(errs, err)
	}
	if p.WindSpeed, err = nullableField[float64](fields, "wind_speed"); err != nil {
		errs = append(errs, err)
	}
	if p.WeatherDescription, err = nullableField[string](fields, "weather_description"); err != nil {
		errs = append(errs, err)
	}

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return &p, nil
}

func nullableField[T any](fields map[string]json.RawMessage, key string) (records.Nullable[T], error) {
	raw, ok := fields[key]
	if !ok {
		return records.Nullable[T]{}, nil
	}
	var v *T
	if err := json.Unmarshal(raw, &v); err != nil {
		return records.Nullable[T]{}, err
	}
	return records.Nullable[T]{Present: true, Value: v}, nil
}

type recordJSON struct {
	ID                 int64      `json:"id"`
	Location           string     `json:"location"`
	DateRangeStart     civil.Date `json:"date_range_start"`
	DateRangeEnd       civil.Date `json:"date_range_end"`
	Temperature        *float64   `json:"temperature"`
	Humidity           *float64   `json:"humidity"`
	WindSpeed          *float64   `json:"wind_speed"`
	WeatherDescription *string    `json:"weather_description"`
}

func (w recordJSON) toRecord() records.Record {
	return records.Record{
		ID:                 w.ID,
		Location:           w.Location,
		DateRangeStart:     w.DateRangeStart,
		DateRangeEnd:       w.DateRangeEnd,
		Temperature:        w.Temperature,
		Humidity:           w.Humidity,
		WindSpeed:          w.WindSpeed,
		WeatherDescription: w.WeatherDescription,
	}
}

type createJSON struct {
	Location       string     `json:"location"`
	DateRangeStart civil.Date `json:"date_range_start"`
	DateRangeEnd   civil.Date `json:"date_range_end"`
}

type patchJSON struct {
	DateRangeStart *civil.Date `json:"date_range_start,omitempty"`
	DateRangeEnd   *civil.Date `json:"date_range_end,omitempty"`
}
