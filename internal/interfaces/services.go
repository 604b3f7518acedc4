package interfaces

import (
	"context"
	"time"

	"github.com/bobmcallan/tickerpress/internal/models"
)

// TrendingService resolves the trending ticker list for a run.
type TrendingService interface {
	// Resolve returns up to limit trending tickers. It never fails: when the
	// live feed is unavailable the static fallback list is returned instead.
	Resolve(ctx context.Context, limit int) []*models.TrendingTicker
}

// MarketService builds the day's snapshot set and selects the movers.
type MarketService interface {
	// SelectMovers fetches quotes for the run's universe, persists the
	// snapshots for today (replacing any prior rows for the date), and
	// returns the top and bottom movers by percent change.
	SelectMovers(ctx context.Context, topN int) (*models.MoverSelection, error)
}

// SocialService aggregates social signals for one symbol.
type SocialService interface {
	// Aggregate returns the social context for symbol. direction is the
	// sign of the day's move and biases the sampled sentiment.
	Aggregate(symbol string, priceChangePct float64) *models.SocialContext

	// FormatForPrompt renders the context as plain text for an LLM prompt.
	FormatForPrompt(sc *models.SocialContext) string
}

// NewsService fetches, deduplicates, and stores headlines.
type NewsService interface {
	// FetchAndStore queries all configured providers for symbol, drops
	// duplicate headlines, caps the batch, stores it, and returns the
	// stored items.
	FetchAndStore(ctx context.Context, symbol, companyName string) ([]*models.NewsItem, error)

	// SummaryText renders the most recent stored headlines for symbol as
	// plain text for an LLM prompt.
	SummaryText(ctx context.Context, symbol string) (string, error)
}

// ArticleService synthesizes and stores one article per mover.
type ArticleService interface {
	// CreateForMover generates an article for the snapshot and persists it.
	// movementType classifies the mover (winner or loser).
	CreateForMover(ctx context.Context, snap *models.StockSnapshot, movementType string) (*models.Article, error)
}

// PipelineService owns the background run queue and its single worker.
type PipelineService interface {
	// Enqueue adds a pipeline run to the queue and returns the pending job.
	Enqueue(ctx context.Context, topN int) (*models.PipelineJob, error)

	// Start launches the background worker. Stop drains it.
	Start()
	Stop()

	// LastRun returns the most recently completed or failed job, or
	// ErrNotFound when no run has finished yet.
	LastRun(ctx context.Context) (*models.PipelineJob, error)
}

// Scheduler fires pipeline runs on a cron schedule.
type Scheduler interface {
	Start() error
	Stop()
	// NextRun reports the next scheduled fire time, zero when not running.
	NextRun() time.Time
}
