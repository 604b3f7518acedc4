// Package trending resolves the socially trending ticker list for a run.
package trending

import (
	"context"
	"sort"

	"github.com/bobmcallan/tickerpress/internal/common"
	"github.com/bobmcallan/tickerpress/internal/interfaces"
	"github.com/bobmcallan/tickerpress/internal/models"
)

// fallbackTickers keeps the pipeline moving when every feed is down. The
// entries are perennially active WSB names with representative counts.
var fallbackTickers = []*models.TrendingTicker{
	{Ticker: "GME", Mentions: 1000, Sentiment: models.SentimentBullish, SentimentScore: 0.8},
	{Ticker: "AMC", Mentions: 900, Sentiment: models.SentimentBullish, SentimentScore: 0.75},
	{Ticker: "TSLA", Mentions: 850, Sentiment: models.SentimentNeutral, SentimentScore: 0.6},
	{Ticker: "NVDA", Mentions: 800, Sentiment: models.SentimentBullish, SentimentScore: 0.85},
	{Ticker: "PLTR", Mentions: 750, Sentiment: models.SentimentBullish, SentimentScore: 0.7},
	{Ticker: "AAPL", Mentions: 700, Sentiment: models.SentimentNeutral, SentimentScore: 0.5},
	{Ticker: "MSFT", Mentions: 650, Sentiment: models.SentimentBullish, SentimentScore: 0.6},
	{Ticker: "AMD", Mentions: 600, Sentiment: models.SentimentBullish, SentimentScore: 0.65},
	{Ticker: "GOOGL", Mentions: 550, Sentiment: models.SentimentNeutral, SentimentScore: 0.5},
	{Ticker: "META", Mentions: 500, Sentiment: models.SentimentNeutral, SentimentScore: 0.55},
	{Ticker: "AMZN", Mentions: 480, Sentiment: models.SentimentNeutral, SentimentScore: 0.5},
	{Ticker: "COIN", Mentions: 450, Sentiment: models.SentimentBearish, SentimentScore: 0.3},
	{Ticker: "HOOD", Mentions: 420, Sentiment: models.SentimentBearish, SentimentScore: 0.25},
	{Ticker: "SOFI", Mentions: 400, Sentiment: models.SentimentBullish, SentimentScore: 0.6},
	{Ticker: "RIVN", Mentions: 380, Sentiment: models.SentimentBearish, SentimentScore: 0.35},
	{Ticker: "LCID", Mentions: 350, Sentiment: models.SentimentBearish, SentimentScore: 0.3},
	{Ticker: "BB", Mentions: 320, Sentiment: models.SentimentNeutral, SentimentScore: 0.45},
	{Ticker: "NOK", Mentions: 300, Sentiment: models.SentimentNeutral, SentimentScore: 0.4},
	{Ticker: "WISH", Mentions: 280, Sentiment: models.SentimentBearish, SentimentScore: 0.2},
	{Ticker: "CLOV", Mentions: 250, Sentiment: models.SentimentBearish, SentimentScore: 0.25},
}

// Service resolves trending tickers from one or more feeds.
type Service struct {
	primary   interfaces.TrendingClient
	secondary []interfaces.TrendingClient
	logger    *common.Logger
}

// NewService creates a trending resolver. The primary feed defines the base
// order and per-ticker sentiment; secondary feeds only add mention counts.
func NewService(primary interfaces.TrendingClient, logger *common.Logger, secondary ...interfaces.TrendingClient) *Service {
	return &Service{
		primary:   primary,
		secondary: secondary,
		logger:    logger,
	}
}

// Resolve returns up to limit trending tickers. The primary feed failing
// falls back to the curated list so the pipeline never stalls on a feed
// outage. Secondary feed failures only lose their mention counts.
func (s *Service) Resolve(ctx context.Context, limit int) []*models.TrendingTicker {
	tickers, err := s.primary.FetchTrending(ctx, limit)
	if err != nil || len(tickers) == 0 {
		s.logger.Warn().Err(err).Msg("Trending feed unavailable, using curated fallback list")
		return truncate(cloneTickers(fallbackTickers), limit)
	}

	merged := s.mergeSecondary(ctx, tickers, limit)

	// Rank by total mentions, keeping feed order for ties.
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Mentions > merged[j].Mentions
	})

	s.logger.Info().Int("tickers", len(merged)).Msg("Resolved trending tickers")
	return truncate(merged, limit)
}

// mergeSecondary folds additional feeds into the primary list, summing
// mention counts on exact ticker match.
func (s *Service) mergeSecondary(ctx context.Context, base []*models.TrendingTicker, limit int) []*models.TrendingTicker {
	if len(s.secondary) == 0 {
		return base
	}

	index := make(map[string]*models.TrendingTicker, len(base))
	for _, t := range base {
		index[t.Ticker] = t
	}

	for _, feed := range s.secondary {
		extra, err := feed.FetchTrending(ctx, limit)
		if err != nil {
			s.logger.Warn().Err(err).Msg("Secondary trending feed unavailable, skipping")
			continue
		}
		for _, t := range extra {
			if existing, ok := index[t.Ticker]; ok {
				existing.Mentions += t.Mentions
				continue
			}
			base = append(base, t)
			index[t.Ticker] = t
		}
	}

	return base
}

func cloneTickers(src []*models.TrendingTicker) []*models.TrendingTicker {
	out := make([]*models.TrendingTicker, len(src))
	for i, t := range src {
		copied := *t
		out[i] = &copied
	}
	return out
}

func truncate(tickers []*models.TrendingTicker, limit int) []*models.TrendingTicker {
	if limit > 0 && len(tickers) > limit {
		return tickers[:limit]
	}
	return tickers
}

// Ensure Service implements TrendingService
var _ interfaces.TrendingService = (*Service)(nil)
