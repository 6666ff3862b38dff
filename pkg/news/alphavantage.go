package news

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultAlphaVantageURL = "https://www.alphavantage.co"
	DefaultTopic           = "technology"
)

var ErrNoFeed = errors.New("alphavantage: response has no feed")

type AlphaVantageClient struct {
	apiKey     string
	baseURL    string
	topic      string
	httpClient *http.Client
	logger     *slog.Logger
}

type AlphaVantageOption func(*AlphaVantageClient)

func WithBaseURL(baseURL string) AlphaVantageOption {
	return func(c *AlphaVantageClient) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

func WithTopic(topic string) AlphaVantageOption {
	return func(c *AlphaVantageClient) {
		if topic != "" {
			c.topic = topic
		}
	}
}

func WithTimeout(timeout time.Duration) AlphaVantageOption {
	return func(c *AlphaVantageClient) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

func WithLogger(logger *slog.Logger) AlphaVantageOption {
	return func(c *AlphaVantageClient) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func NewAlphaVantageClient(apiKey string, opts ...AlphaVantageOption) *AlphaVantageClient {
	c := &AlphaVantageClient{
		apiKey:     apiKey,
		baseURL:    DefaultAlphaVantageURL,
		topic:      DefaultTopic,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *AlphaVantageClient) Name() string {
	return "AlphaVantage"
}

func (c *AlphaVantageClient) requestURL() string {
	q := url.Values{}
	q.Set("function", "NEWS_SENTIMENT")
	q.Set("topics", c.topic)
	q.Set("apikey", c.apiKey)
	return c.baseURL + "/query?" + q.Encode()
}

// Fetch performs a single NEWS_SENTIMENT request. Any transport, status or
// shape problem is returned as an error; callers decide whether that is
// different from an empty feed.
func (c *AlphaVantageClient) Fetch(ctx context.Context) ([]FeedItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.requestURL(), nil)
	if err != nil {
		return nil, fmt.Errorf("alphavantage request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("alphavantage fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("alphavantage fetch: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var raw avResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("alphavantage decode: %w", err)
	}

	if raw.Feed == nil {
		if msg := raw.message(); msg != "" {
			return nil, fmt.Errorf("%w: %s", ErrNoFeed, msg)
		}
		return nil, ErrNoFeed
	}

	return c.decodeItems(*raw.Feed), nil
}

// decodeItems decodes feed records one by one. A record that does not fit
// FeedItem is logged and dropped; the rest of the feed is kept.
func (c *AlphaVantageClient) decodeItems(records []json.RawMessage) []FeedItem {
	items := make([]FeedItem, 0, len(records))
	for i, rec := range records {
		if len(rec) == 0 || string(rec) == "null" {
			c.logger.Warn("skipping empty feed record", "index", i)
			continue
		}

		var item FeedItem
		if err := json.Unmarshal(rec, &item); err != nil {
			c.logger.Warn("skipping undecodable feed record", "index", i, "error", err)
			continue
		}
		items = append(items, item)
	}
	return items
}

type avResponse struct {
	Feed         *[]json.RawMessage `json:"feed"`
	Information  string             `json:"Information"`
	Note         string             `json:"Note"`
	ErrorMessage string             `json:"Error Message"`
}

// message returns whatever explanation the provider put in place of the feed,
// typically a rate limit or invalid key notice.
func (r avResponse) message() string {
	for _, m := range []string{r.ErrorMessage, r.Information, r.Note} {
		if m != "" {
			return m
		}
	}
	return ""
}
