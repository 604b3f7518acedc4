// Package yahoo provides a client for the Yahoo Finance search news feed.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/bobmcallan/tickerpress/internal/common"
	"github.com/bobmcallan/tickerpress/internal/interfaces"
	"github.com/bobmcallan/tickerpress/internal/models"
)

const (
	DefaultBaseURL   = "https://query1.finance.yahoo.com"
	DefaultTimeout   = 10 * time.Second
	DefaultNewsCount = 5
)

// Client implements the NewsClient interface over the Yahoo Finance
// unauthenticated search endpoint.
type Client struct {
	baseURL    string
	newsCount  int
	httpClient *http.Client
	logger     *common.Logger
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithNewsCount sets the number of stories requested per query.
func WithNewsCount(n int) ClientOption {
	return func(c *Client) {
		c.newsCount = n
	}
}

// NewClient creates a new Yahoo Finance client. The endpoint requires no key
// but rejects requests without a browser-like User-Agent.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:   DefaultBaseURL,
		newsCount: DefaultNewsCount,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		logger: common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Name identifies the provider in logs and stored items.
func (c *Client) Name() string {
	return "yahoo"
}

type searchResponse struct {
	News []struct {
		Title               string `json:"title"`
		Publisher           string `json:"publisher"`
		Link                string `json:"link"`
		ProviderPublishTime int64  `json:"providerPublishTime"`
	} `json:"news"`
}

// FetchNews queries the search endpoint for recent stories on the symbol.
// The company name is unused; Yahoo resolves tickers directly.
func (c *Client) FetchNews(ctx context.Context, symbol, _ string) ([]*models.NewsItem, error) {
	params := url.Values{}
	params.Set("q", symbol)
	params.Set("newsCount", strconv.Itoa(c.newsCount))
	params.Set("quotesCount", "0")

	reqURL := fmt.Sprintf("%s/v1/finance/search?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; tickerpress/1.0)")

	c.logger.Debug().Str("symbol", symbol).Msg("Yahoo Finance news request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("yahoo finance error: status %d: %s", resp.StatusCode, string(body))
	}

	var search searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&search); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	items := make([]*models.NewsItem, 0, len(search.News))
	for _, story := range search.News {
		if story.Title == "" {
			continue
		}
		published := time.Now()
		if story.ProviderPublishTime > 0 {
			published = time.Unix(story.ProviderPublishTime, 0).UTC()
		}
		items = append(items, &models.NewsItem{
			Symbol:   symbol,
			Date:     published,
			Headline: story.Title,
			URL:      story.Link,
			Source:   story.Publisher,
		})
	}

	return items, nil
}

// Ensure Client implements NewsClient
var _ interfaces.NewsClient = (*Client)(nil)
