package interfaces

import (
	"context"
	"errors"
	"time"

	"github.com/bobmcallan/tickerpress/internal/models"
)

// Sentinel errors shared by all store implementations.
var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("not found")

	// ErrSlugExists is returned when an article insert collides on slug.
	ErrSlugExists = errors.New("slug already exists")
)

// StorageManager provides access to all stores over one embedded database.
type StorageManager interface {
	Snapshots() SnapshotStore
	Articles() ArticleStore
	News() NewsStore
	Jobs() JobStore
	Close() error
}

// SnapshotStore persists daily stock snapshots.
type SnapshotStore interface {
	// ReplaceForDate atomically deletes all snapshots dated within day and
	// inserts rows in their place. Either all rows land or none do.
	ReplaceForDate(ctx context.Context, day time.Time, rows []*models.StockSnapshot) error

	// ListByDate returns all snapshots dated within day, ordered by percent
	// change descending.
	ListByDate(ctx context.Context, day time.Time) ([]*models.StockSnapshot, error)

	// GetBySymbol returns the snapshot for symbol on day, or the most recent
	// one when day is nil. Returns ErrNotFound when none exists.
	GetBySymbol(ctx context.Context, symbol string, day *time.Time) (*models.StockSnapshot, error)

	// ListTrending returns the latest day's snapshots flagged as trending,
	// ordered by mention count descending.
	ListTrending(ctx context.Context, day time.Time) ([]*models.StockSnapshot, error)
}

// ArticleStore persists generated articles.
type ArticleStore interface {
	// Insert stores the article, assigning its ID. Returns ErrSlugExists on
	// a slug collision.
	Insert(ctx context.Context, a *models.Article) error

	GetByID(ctx context.Context, id uint64) (*models.Article, error)
	GetBySlug(ctx context.Context, slug string) (*models.Article, error)

	// ListBySymbol returns articles for symbol, newest first, up to limit.
	ListBySymbol(ctx context.Context, symbol string, limit int) ([]*models.Article, error)

	// ListByDate returns all articles dated within day, newest first.
	ListByDate(ctx context.Context, day time.Time) ([]*models.Article, error)
}

// NewsStore persists fetched headlines.
type NewsStore interface {
	InsertBatch(ctx context.Context, items []*models.NewsItem) error

	// ListBySymbol returns headlines for symbol, newest first, up to limit.
	ListBySymbol(ctx context.Context, symbol string, limit int) ([]*models.NewsItem, error)
}

// JobStore persists the pipeline job queue.
type JobStore interface {
	Enqueue(ctx context.Context, job *models.PipelineJob) error

	// Dequeue claims the oldest pending job, marking it running. Returns
	// ErrNotFound when the queue is empty.
	Dequeue(ctx context.Context) (*models.PipelineJob, error)

	// Complete finalizes a running job with its outcome and run report.
	Complete(ctx context.Context, id string, runErr error, duration time.Duration, report *models.RunReport) error

	// GetByID returns the job with the given ID.
	GetByID(ctx context.Context, id string) (*models.PipelineJob, error)

	// LastFinished returns the most recently completed or failed job.
	LastFinished(ctx context.Context) (*models.PipelineJob, error)

	// ResetRunning moves jobs stuck in running back to pending. Called once
	// at startup to recover from an unclean shutdown.
	ResetRunning(ctx context.Context) (int, error)
}
