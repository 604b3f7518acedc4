// Package fmp provides a client for the Financial Modeling Prep API.
package fmp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/bobmcallan/tickerpress/internal/common"
	"github.com/bobmcallan/tickerpress/internal/interfaces"
	"github.com/bobmcallan/tickerpress/internal/models"
)

const (
	DefaultBaseURL   = "https://financialmodelingprep.com/api/v3"
	DefaultTimeout   = 10 * time.Second
	DefaultRateLimit = 5 // requests per second
)

// Sentinel errors surfaced to callers so rate limiting and thin history can
// be counted separately from hard failures.
var (
	ErrRateLimited         = errors.New("fmp: rate limited")
	ErrInsufficientHistory = errors.New("fmp: insufficient price history")
)

// Client implements the MarketDataClient interface over the FMP REST API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
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

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new FMP client
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents a non-2xx FMP response.
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("FMP API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// get performs a rate-limited GET request
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("apikey", c.apiKey)

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug().Str("url", c.baseURL+path).Msg("FMP API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%w: %s", ErrRateLimited, path)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   path,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

type historicalResponse struct {
	Symbol     string `json:"symbol"`
	Historical []struct {
		Date   string  `json:"date"`
		Close  float64 `json:"close"`
		Volume int64   `json:"volume"`
	} `json:"historical"`
}

// FetchQuote retrieves the two most recent daily closes for the symbol and
// computes the day's move against the prior close. The provider lists bars
// newest first.
func (c *Client) FetchQuote(ctx context.Context, symbol string) (*models.StockQuote, error) {
	path := fmt.Sprintf("/historical-price-full/%s", symbol)

	params := url.Values{}
	params.Set("timeseries", "2")

	var resp historicalResponse
	if err := c.get(ctx, path, params, &resp); err != nil {
		return nil, err
	}

	if len(resp.Historical) < 2 {
		return nil, fmt.Errorf("%w: %s has %d bars", ErrInsufficientHistory, symbol, len(resp.Historical))
	}

	latest := resp.Historical[0]
	prior := resp.Historical[1]
	if prior.Close == 0 {
		return nil, fmt.Errorf("%w: %s prior close is zero", ErrInsufficientHistory, symbol)
	}

	date, err := time.Parse("2006-01-02", latest.Date)
	if err != nil {
		return nil, fmt.Errorf("failed to parse bar date %q: %w", latest.Date, err)
	}

	change := latest.Close - prior.Close
	return &models.StockQuote{
		Symbol:         symbol,
		Price:          latest.Close,
		PriceChange:    change,
		PriceChangePct: change / prior.Close * 100,
		Volume:         latest.Volume,
		Date:           date,
	}, nil
}

type profileResponse struct {
	Symbol      string `json:"symbol"`
	CompanyName string `json:"companyName"`
}

// FetchCompanyName resolves the company name for the symbol. Lookup failures
// degrade to the symbol itself so a run never stalls on a missing profile.
func (c *Client) FetchCompanyName(ctx context.Context, symbol string) string {
	path := fmt.Sprintf("/profile/%s", symbol)

	var profiles []profileResponse
	if err := c.get(ctx, path, nil, &profiles); err != nil {
		c.logger.Warn().Err(err).Str("symbol", symbol).Msg("Profile lookup failed, using symbol as name")
		return symbol
	}
	if len(profiles) == 0 || profiles[0].CompanyName == "" {
		return symbol
	}
	return profiles[0].CompanyName
}

type constituentResponse struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// FetchIndexConstituents retrieves the S&P 500 member symbols in listing order.
func (c *Client) FetchIndexConstituents(ctx context.Context) ([]string, error) {
	var constituents []constituentResponse
	if err := c.get(ctx, "/sp500_constituent", nil, &constituents); err != nil {
		return nil, err
	}

	symbols := make([]string, 0, len(constituents))
	for _, con := range constituents {
		if con.Symbol != "" {
			symbols = append(symbols, con.Symbol)
		}
	}
	return symbols, nil
}

// Ensure Client implements MarketDataClient
var _ interfaces.MarketDataClient = (*Client)(nil)
