// Package interfaces defines the contracts between tickerpress layers.
// Clients wrap external providers, services hold the pipeline logic, and
// storage persists the results. Consumers depend on these interfaces, never
// on concrete implementations.
package interfaces

import (
	"context"

	"github.com/bobmcallan/tickerpress/internal/models"
)

// MarketDataClient fetches quotes and index membership from a market data
// provider.
type MarketDataClient interface {
	// FetchQuote returns the latest close for symbol along with the dollar
	// and percent change computed against the prior close. Returns
	// ErrRateLimited when the provider throttles the request and
	// ErrInsufficientHistory when fewer than two closes are available.
	FetchQuote(ctx context.Context, symbol string) (*models.StockQuote, error)

	// FetchCompanyName resolves the company name for symbol. Returns the
	// symbol itself when the profile lookup fails.
	FetchCompanyName(ctx context.Context, symbol string) string

	// FetchIndexConstituents returns the symbols of the provider's large-cap
	// index listing, in listing order.
	FetchIndexConstituents(ctx context.Context) ([]string, error)
}

// TrendingClient fetches trending tickers from a social aggregation feed.
type TrendingClient interface {
	// FetchTrending returns up to limit trending tickers in feed order.
	FetchTrending(ctx context.Context, limit int) ([]*models.TrendingTicker, error)
}

// NewsClient fetches recent headlines for a symbol from one news provider.
type NewsClient interface {
	// FetchNews returns recent headlines for the symbol. companyName widens
	// the search where the provider supports free-text queries.
	FetchNews(ctx context.Context, symbol, companyName string) ([]*models.NewsItem, error)

	// Name identifies the provider in logs and stored items.
	Name() string
}

// GenerativeClient produces text from a prompt via an LLM provider.
type GenerativeClient interface {
	// GenerateContent sends the prompt and returns the concatenated text of
	// the response.
	GenerateContent(ctx context.Context, prompt string) (string, error)
}
