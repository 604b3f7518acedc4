// Package market builds the day's snapshot set and selects the movers.
package market

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/bobmcallan/tickerpress/internal/clients/fmp"
	"github.com/bobmcallan/tickerpress/internal/common"
	"github.com/bobmcallan/tickerpress/internal/interfaces"
	"github.com/bobmcallan/tickerpress/internal/models"
)

const (
	// DefaultUniverseCap bounds how many tickers one run quotes, keeping a
	// run inside free-tier provider limits.
	DefaultUniverseCap = 50

	// trendingFeedLimit is how many trending tickers one run considers.
	trendingFeedLimit = 20
)

// fallbackConstituents stands in for the index listing when the constituent
// endpoint is unavailable.
var fallbackConstituents = []string{
	"AAPL", "MSFT", "GOOGL", "GOOG", "AMZN", "NVDA", "META", "TSLA", "BRK.B",
	"UNH", "JNJ", "JPM", "V", "PG", "XOM", "HD", "CVX", "MA", "BAC",
	"ABBV", "PFE", "COST", "KO", "AVGO", "MRK", "PEP", "TMO", "WMT",
	"CSCO", "MCD", "ABT", "DHR", "ACN", "LIN", "VZ", "ADBE", "NKE",
	"CRM", "TXN", "NEE", "CMCSA", "PM", "DIS", "ORCL", "WFC", "UPS",
	"INTC", "AMD", "QCOM",
}

// Service implements the MarketService interface.
type Service struct {
	snapshots   interfaces.SnapshotStore
	client      interfaces.MarketDataClient
	trending    interfaces.TrendingService
	logger      *common.Logger
	universeCap int
	now         func() time.Time
}

// ServiceOption configures the service.
type ServiceOption func(*Service)

// WithUniverseCap sets the per-run ticker cap.
func WithUniverseCap(n int) ServiceOption {
	return func(s *Service) {
		if n > 0 {
			s.universeCap = n
		}
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a market service.
func NewService(
	snapshots interfaces.SnapshotStore,
	client interfaces.MarketDataClient,
	trending interfaces.TrendingService,
	logger *common.Logger,
	opts ...ServiceOption,
) *Service {
	s := &Service{
		snapshots:   snapshots,
		client:      client,
		trending:    trending,
		logger:      logger,
		universeCap: DefaultUniverseCap,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SelectMovers quotes the run's universe, persists today's snapshots with
// replace-by-date semantics, and returns the top and bottom movers by
// percent change. Individual ticker failures are skipped; an empty fetched
// pool aborts the run.
func (s *Service) SelectMovers(ctx context.Context, topN int) (*models.MoverSelection, error) {
	s.logger.Info().Msg("Starting daily movers analysis")

	trendingTickers := s.trending.Resolve(ctx, trendingFeedLimit)
	universe := s.buildUniverse(ctx, trendingTickers)
	s.logger.Info().Int("tickers", len(universe)).Msg("Fetching quotes for universe")

	sel := &models.MoverSelection{}
	var pool []*models.StockSnapshot
	for i, symbol := range universe {
		if i > 0 && i%10 == 0 {
			s.logger.Info().Int("processed", i).Int("total", len(universe)).Msg("Quote progress")
		}

		quote, err := s.client.FetchQuote(ctx, symbol)
		if err != nil {
			switch {
			case errors.Is(err, fmp.ErrRateLimited):
				sel.RateLimited++
				s.logger.Warn().Str("symbol", symbol).Msg("Provider rate limited, skipping ticker")
			case errors.Is(err, fmp.ErrInsufficientHistory):
				s.logger.Warn().Str("symbol", symbol).Msg("Insufficient history, skipping ticker")
			default:
				s.logger.Warn().Err(err).Str("symbol", symbol).Msg("Quote fetch failed, skipping ticker")
			}
			continue
		}
		sel.TickersProcessed++

		pool = append(pool, &models.StockSnapshot{
			Symbol:         quote.Symbol,
			Name:           s.client.FetchCompanyName(ctx, symbol),
			Date:           quote.Date,
			Price:          quote.Price,
			PriceChange:    quote.PriceChange,
			PriceChangePct: quote.PriceChangePct,
			Volume:         quote.Volume,
		})
	}

	if len(pool) == 0 {
		return nil, fmt.Errorf("no stock data fetched for %d tickers", len(universe))
	}
	s.logger.Info().Int("fetched", len(pool)).Int("universe", len(universe)).Msg("Quotes fetched")

	enrichWithTrending(pool, trendingTickers)

	sort.Slice(pool, func(i, j int) bool {
		return pool[i].PriceChangePct > pool[j].PriceChangePct
	})

	if err := s.snapshots.ReplaceForDate(ctx, s.snapshotDate(pool), pool); err != nil {
		return nil, fmt.Errorf("failed to persist snapshots: %w", err)
	}

	if topN > len(pool) {
		topN = len(pool)
	}
	sel.Winners = pool[:topN]

	losers := make([]*models.StockSnapshot, 0, topN)
	for i := len(pool) - 1; i >= len(pool)-topN; i-- {
		losers = append(losers, pool[i])
	}
	sel.Losers = losers

	for _, w := range sel.Winners {
		s.logger.Info().Str("symbol", w.Symbol).Str("name", w.Name).
			Float64("change_pct", w.PriceChangePct).Msg("Winner")
	}
	for _, l := range sel.Losers {
		s.logger.Info().Str("symbol", l.Symbol).Str("name", l.Name).
			Float64("change_pct", l.PriceChangePct).Msg("Loser")
	}

	return sel, nil
}

// buildUniverse merges trending tickers ahead of the index constituents and
// caps the result.
func (s *Service) buildUniverse(ctx context.Context, trendingTickers []*models.TrendingTicker) []string {
	constituents, err := s.client.FetchIndexConstituents(ctx)
	if err != nil || len(constituents) == 0 {
		s.logger.Warn().Err(err).Msg("Constituent fetch failed, using fallback ticker list")
		constituents = fallbackConstituents
	}

	seen := make(map[string]bool, s.universeCap)
	universe := make([]string, 0, s.universeCap)
	add := func(symbol string) {
		if symbol == "" || seen[symbol] || len(universe) >= s.universeCap {
			return
		}
		seen[symbol] = true
		universe = append(universe, symbol)
	}

	for _, t := range trendingTickers {
		add(t.Ticker)
	}
	for _, symbol := range constituents {
		add(symbol)
	}
	return universe
}

// enrichWithTrending flags snapshots whose symbol appears in the trending
// feed, carrying the feed's mention count and sentiment.
func enrichWithTrending(pool []*models.StockSnapshot, trendingTickers []*models.TrendingTicker) {
	index := make(map[string]*models.TrendingTicker, len(trendingTickers))
	for _, t := range trendingTickers {
		index[t.Ticker] = t
	}
	for _, snap := range pool {
		if t, ok := index[snap.Symbol]; ok {
			snap.WSBTrending = true
			snap.WSBMentions = t.Mentions
			snap.WSBSentiment = t.Sentiment
		}
	}
}

// snapshotDate picks the trading date the run records under. Quotes carry
// the provider's bar date; fall back to today when the pool is mixed.
func (s *Service) snapshotDate(pool []*models.StockSnapshot) time.Time {
	if len(pool) > 0 && !pool[0].Date.IsZero() {
		return pool[0].Date
	}
	return s.now()
}

// Ensure Service implements MarketService
var _ interfaces.MarketService = (*Service)(nil)
