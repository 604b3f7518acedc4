// Package newsapi provides a client for the NewsAPI /everything endpoint.
package newsapi

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
	DefaultBaseURL  = "https://newsapi.org/v2"
	DefaultTimeout  = 10 * time.Second
	DefaultPageSize = 5

	// lookbackDays bounds the search window so stale coverage does not
	// crowd out the headlines that explain today's move.
	lookbackDays = 2
)

// Client implements the NewsClient interface over NewsAPI.
type Client struct {
	baseURL    string
	apiKey     string
	pageSize   int
	httpClient *http.Client
	logger     *common.Logger
	now        func() time.Time
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

// WithPageSize sets the number of articles requested per query.
func WithPageSize(n int) ClientOption {
	return func(c *Client) {
		c.pageSize = n
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) ClientOption {
	return func(c *Client) {
		c.now = now
	}
}

// NewClient creates a new NewsAPI client
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:  DefaultBaseURL,
		apiKey:   apiKey,
		pageSize: DefaultPageSize,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		logger: common.NewSilentLogger(),
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Name identifies the provider in logs and stored items.
func (c *Client) Name() string {
	return "newsapi"
}

type everythingResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Articles []struct {
		Title  string `json:"title"`
		URL    string `json:"url"`
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Description string `json:"description"`
		PublishedAt string `json:"publishedAt"`
	} `json:"articles"`
}

// FetchNews queries the /everything endpoint for recent coverage of the
// company, searching the quoted company name OR the bare symbol over the
// last two days.
func (c *Client) FetchNews(ctx context.Context, symbol, companyName string) ([]*models.NewsItem, error) {
	params := url.Values{}
	params.Set("q", fmt.Sprintf("%q OR %s", companyName, symbol))
	params.Set("from", c.now().AddDate(0, 0, -lookbackDays).Format("2006-01-02"))
	params.Set("sortBy", "relevancy")
	params.Set("pageSize", strconv.Itoa(c.pageSize))
	params.Set("apiKey", c.apiKey)

	reqURL := fmt.Sprintf("%s/everything?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug().Str("symbol", symbol).Msg("NewsAPI request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("newsapi error: status %d: %s", resp.StatusCode, string(body))
	}

	var everything everythingResponse
	if err := json.NewDecoder(resp.Body).Decode(&everything); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if everything.Status != "ok" {
		return nil, fmt.Errorf("newsapi error: %s", everything.Message)
	}

	items := make([]*models.NewsItem, 0, len(everything.Articles))
	for _, a := range everything.Articles {
		if a.Title == "" {
			continue
		}
		published, _ := time.Parse(time.RFC3339, a.PublishedAt)
		if published.IsZero() {
			published = c.now()
		}
		items = append(items, &models.NewsItem{
			Symbol:   symbol,
			Date:     published,
			Headline: a.Title,
			URL:      a.URL,
			Source:   a.Source.Name,
			Summary:  a.Description,
		})
	}

	return items, nil
}

// Ensure Client implements NewsClient
var _ interfaces.NewsClient = (*Client)(nil)
