package server

import (
	"time"

	"github.com/bobmcallan/tickerpress/internal/models"
)

// HealthResponse is the GET /api/health body.
type HealthResponse struct {
	Status string `json:"status"`
}

// VersionResponse is the GET /api/version body.
type VersionResponse struct {
	Version string `json:"version"`
	Build   string `json:"build"`
	Commit  string `json:"commit"`
}

// DailyMoversResponse is the GET /api/stocks/daily body. Winners and losers
// are recomputed from the stored ranked rows, not re-fetched.
type DailyMoversResponse struct {
	Date    string                  `json:"date"`
	Winners []*models.StockSnapshot `json:"winners"`
	Losers  []*models.StockSnapshot `json:"losers"`
}

// SnapshotListResponse is the body for snapshot list endpoints.
type SnapshotListResponse struct {
	Date   string                  `json:"date"`
	Count  int                     `json:"count"`
	Stocks []*models.StockSnapshot `json:"stocks"`
}

// FetchAcceptedResponse is the POST /api/stocks/fetch body, returned with 202.
type FetchAcceptedResponse struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
	TopN   int    `json:"top_n"`
}

// ArticleStock is the snapshot context attached to article responses.
type ArticleStock struct {
	Symbol         string  `json:"symbol"`
	Name           string  `json:"name"`
	Price          float64 `json:"price"`
	PriceChangePct float64 `json:"price_change_pct"`
}

// ArticleResponse is one article enriched with its stock snapshot. Stock is
// omitted when no snapshot exists for the article's symbol and date.
type ArticleResponse struct {
	models.Article
	Stock *ArticleStock `json:"stock,omitempty"`
}

// ArticleListResponse is the body for article list endpoints.
type ArticleListResponse struct {
	Count    int                `json:"count"`
	Articles []*ArticleResponse `json:"articles"`
}

// ArticleHistoryResponse is the GET /api/articles/history body: the day's
// articles without snapshot enrichment, newest first.
type ArticleHistoryResponse struct {
	Date     string            `json:"date"`
	Count    int               `json:"count"`
	Articles []*models.Article `json:"articles"`
}

// NewsListResponse is the GET /api/articles/stock/{symbol}/news body.
type NewsListResponse struct {
	Symbol string             `json:"symbol"`
	Count  int                `json:"count"`
	News   []*models.NewsItem `json:"news"`
}

// JobStatusResponse is the GET /api/jobs/status body.
type JobStatusResponse struct {
	SchedulerEnabled bool                `json:"scheduler_enabled"`
	LastRun          *models.PipelineJob `json:"last_run"`
	NextRun          *time.Time          `json:"next_run,omitempty"`
}
