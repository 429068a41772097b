// Package worldbank provides a client for the World Bank open data API and
// the fundamentals sync service built on it.
package worldbank

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the base URL for the World Bank API.
	DefaultBaseURL = "https://api.worldbank.org/v2"

	// DefaultTimeout is the default HTTP timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultRateLimit is the default rate limit (requests per second).
	DefaultRateLimit = 5

	// countryPageSize covers the full country list in one request.
	countryPageSize = 400

	// indicatorWindow is how many most-recent observations to request per
	// indicator; the first non-null one wins.
	indicatorWindow = 5
)

// Client is a World Bank API client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     arbor.ILogger
	limiter    *rate.Limiter
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets a logger.
func WithLogger(logger arbor.ILogger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithTimeout sets the HTTP request timeout. Non-positive values keep the
// default.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithRateLimit sets a custom rate limit.
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// NewClient creates a new World Bank API client. No credential is needed;
// the API is public.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents an error from the World Bank API.
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("worldbank API error: %s (status %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// get performs a GET request and decodes the two-element JSON envelope the
// API wraps every response in: [metadata, payload].
func (c *Client) get(ctx context.Context, path string, params url.Values) (json.RawMessage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit exceeded: %w", err)
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("format", "json")

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
			Endpoint:   path,
		}
	}

	var envelope []json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode response envelope: %w", err)
	}
	if len(envelope) < 2 {
		// An error payload (bad indicator, unknown country) comes back as a
		// one-element array carrying only metadata.
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    "response carried no data page",
			Endpoint:   path,
		}
	}

	return envelope[1], nil
}

// ListCountries retrieves the full country list, aggregates included.
func (c *Client) ListCountries(ctx context.Context) ([]CountryEntry, error) {
	params := url.Values{}
	params.Set("per_page", fmt.Sprintf("%d", countryPageSize))

	payload, err := c.get(ctx, "/country", params)
	if err != nil {
		return nil, err
	}

	var entries []CountryEntry
	if err := json.Unmarshal(payload, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode country list: %w", err)
	}
	return entries, nil
}

// Indicator retrieves the most recent observations for one indicator code,
// newest first.
func (c *Client) Indicator(ctx context.Context, iso2, code string) ([]Observation, error) {
	params := url.Values{}
	params.Set("mrv", fmt.Sprintf("%d", indicatorWindow))

	payload, err := c.get(ctx, fmt.Sprintf("/country/%s/indicator/%s", url.PathEscape(iso2), url.PathEscape(code)), params)
	if err != nil {
		return nil, err
	}

	var observations []Observation
	if err := json.Unmarshal(payload, &observations); err != nil {
		return nil, fmt.Errorf("failed to decode indicator %s: %w", code, err)
	}
	return observations, nil
}
