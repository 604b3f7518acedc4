package models

import "time"

// Job statuses for the pipeline queue.
const (
	JobStatusPending   = "pending"
	JobStatusRunning   = "running"
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
)

// Job types.
const (
	JobTypeDailyPipeline = "daily_pipeline"
)

// PipelineJob is one queued pipeline run. Jobs are enqueued by the cron
// scheduler or the manual trigger endpoint and processed by a single
// background worker, detached from any request.
type PipelineJob struct {
	ID          string    `badgerhold:"key" json:"id"`
	JobType     string    `json:"job_type"`
	TopN        int       `json:"top_n"`
	Status      string    `badgerholdIndex:"Status" json:"status"`
	Error       string    `json:"error,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	StartedAt   time.Time `json:"started_at,omitempty"`
	CompletedAt time.Time `json:"completed_at,omitempty"`
	DurationMS  int64     `json:"duration_ms,omitempty"`

	// Run report, filled in on completion.
	TickersProcessed int `json:"tickers_processed,omitempty"`
	RateLimited      int `json:"rate_limited,omitempty"`
	Winners          int `json:"winners,omitempty"`
	Losers           int `json:"losers,omitempty"`
	ArticlesCreated  int `json:"articles_created,omitempty"`
}

// RunReport summarizes one completed pipeline run.
type RunReport struct {
	TickersProcessed int
	RateLimited      int
	Winners          int
	Losers           int
	ArticlesCreated  int
}
