package prices

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/depotworks/tradedepot/internal/config"
	"github.com/depotworks/tradedepot/pkg/logger"
)

// FetchError is a price feed failure: unreachable endpoint, bad status
// or malformed data. It aborts the current trade request only.
type FetchError struct {
	Message string
	Err     error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("price feed: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("price feed: %s", e.Message)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Source produces price table snapshots
type Source interface {
	Fetch(ctx context.Context) (*Table, error)
}

// FeedConfig holds configuration for the feed client
type FeedConfig struct {
	// Endpoint is the price feed URL (IGetPrices-shaped)
	Endpoint string
	// APIKey is sent as the key query parameter
	APIKey string
	// Timeout for one fetch
	Timeout time.Duration
}

// FeedClient fetches price snapshots from the remote feed. One
// best-effort GET per call, no retry.
type FeedClient struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

// NewFeedClient creates a feed client
func NewFeedClient(cfg FeedConfig) *FeedClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = config.PriceFeedTimeout
	}
	return &FeedClient{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// feedResponse is the IGetPrices-shaped payload
type feedResponse struct {
	Response struct {
		Success int `json:"success"`
		Items   map[string]struct {
			Value int `json:"value"`
		} `json:"items"`
	} `json:"response"`
}

// feedURL appends the API key to the endpoint, preserving any query
// parameters already configured on it
func (c *FeedClient) feedURL() (string, error) {
	if c.apiKey == "" {
		return c.endpoint, nil
	}

	u, err := url.Parse(c.endpoint)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("key", c.apiKey)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Fetch retrieves a fresh price snapshot
func (c *FeedClient) Fetch(ctx context.Context) (*Table, error) {
	endpoint, err := c.feedURL()
	if err != nil {
		return nil, &FetchError{Message: "build request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &FetchError{Message: "build request", Err: err}
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{Message: fmt.Sprintf("status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, config.PriceFeedMaxResponseSize))
	if err != nil {
		return nil, &FetchError{Message: "read response", Err: err}
	}

	var feed feedResponse
	if err := json.Unmarshal(body, &feed); err != nil {
		return nil, &FetchError{Message: "malformed response", Err: err}
	}
	if feed.Response.Success != 1 {
		return nil, &FetchError{Message: "feed reported failure"}
	}

	entries := make(map[string]int, len(feed.Response.Items))
	for name, item := range feed.Response.Items {
		entries[name] = item.Value
	}

	table := NewTable(entries, time.Now())

	logger.Feed().Debug().
		Int("items", table.Len()).
		Dur("duration_ms", time.Since(start)).
		Msg("Price snapshot fetched")

	return table, nil
}
