// Package tradestie provides a client for the Tradestie WSB trending API.
package tradestie

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bobmcallan/tickerpress/internal/common"
	"github.com/bobmcallan/tickerpress/internal/interfaces"
	"github.com/bobmcallan/tickerpress/internal/models"
)

const (
	DefaultBaseURL = "https://tradestie.com/api/v1"
	DefaultTimeout = 10 * time.Second
)

// Client implements the TrendingClient interface over the Tradestie API.
type Client struct {
	baseURL    string
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

// NewClient creates a new Tradestie client. The API is unauthenticated.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
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

type redditEntry struct {
	Ticker         string  `json:"ticker"`
	NoOfComments   int     `json:"no_of_comments"`
	Sentiment      string  `json:"sentiment"`
	SentimentScore float64 `json:"sentiment_score"`
}

// FetchTrending returns up to limit WSB trending tickers in feed order.
// Entries longer than five characters are discarded as noise (the feed
// occasionally surfaces words that are not tickers).
func (c *Client) FetchTrending(ctx context.Context, limit int) ([]*models.TrendingTicker, error) {
	reqURL := c.baseURL + "/apps/reddit"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug().Str("url", reqURL).Msg("Tradestie API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("tradestie API error: status %d: %s", resp.StatusCode, string(body))
	}

	var entries []redditEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	tickers := make([]*models.TrendingTicker, 0, limit)
	for _, entry := range entries {
		symbol := strings.ToUpper(strings.TrimSpace(entry.Ticker))
		if symbol == "" || len(symbol) > 5 {
			continue
		}
		tickers = append(tickers, &models.TrendingTicker{
			Ticker:         symbol,
			Mentions:       entry.NoOfComments,
			Sentiment:      normalizeSentiment(entry.Sentiment),
			SentimentScore: entry.SentimentScore,
		})
		if len(tickers) == limit {
			break
		}
	}

	return tickers, nil
}

func normalizeSentiment(s string) string {
	switch strings.ToLower(s) {
	case "bullish":
		return models.SentimentBullish
	case "bearish":
		return models.SentimentBearish
	default:
		return models.SentimentNeutral
	}
}

// Ensure Client implements TrendingClient
var _ interfaces.TrendingClient = (*Client)(nil)
