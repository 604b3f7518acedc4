// Package pipeline runs the daily movers pipeline on a storage-backed job
// queue. Triggers and the scheduler enqueue jobs; a single processor
// goroutine dequeues and executes them detached from any request.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bobmcallan/tickerpress/internal/common"
	"github.com/bobmcallan/tickerpress/internal/interfaces"
	"github.com/bobmcallan/tickerpress/internal/models"
)

// pollInterval is how long the processor sleeps on an empty queue.
const pollInterval = 1 * time.Second

// Service implements the PipelineService interface.
type Service struct {
	market   interfaces.MarketService
	articles interfaces.ArticleService
	jobs     interfaces.JobStore
	logger   *common.Logger

	defaultTopN int
	poll        time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// ServiceOption configures the service.
type ServiceOption func(*Service)

// WithDefaultTopN sets the mover count used when a job carries none.
func WithDefaultTopN(n int) ServiceOption {
	return func(s *Service) {
		if n > 0 {
			s.defaultTopN = n
		}
	}
}

// WithPollInterval overrides the queue poll interval, for tests.
func WithPollInterval(d time.Duration) ServiceOption {
	return func(s *Service) {
		s.poll = d
	}
}

// NewService creates a pipeline service.
func NewService(
	market interfaces.MarketService,
	articles interfaces.ArticleService,
	jobs interfaces.JobStore,
	logger *common.Logger,
	opts ...ServiceOption,
) *Service {
	s := &Service{
		market:      market,
		articles:    articles,
		jobs:        jobs,
		logger:      logger,
		defaultTopN: 5,
		poll:        pollInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Enqueue adds a pipeline run to the queue and returns the pending job.
func (s *Service) Enqueue(ctx context.Context, topN int) (*models.PipelineJob, error) {
	if topN <= 0 {
		topN = s.defaultTopN
	}

	job := &models.PipelineJob{
		ID:        uuid.New().String(),
		JobType:   models.JobTypeDailyPipeline,
		TopN:      topN,
		Status:    models.JobStatusPending,
		CreatedAt: time.Now(),
	}
	if err := s.jobs.Enqueue(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to enqueue pipeline job: %w", err)
	}

	s.logger.Info().Str("job_id", job.ID).Int("top_n", topN).Msg("Pipeline job enqueued")
	return job, nil
}

// Start launches the processor goroutine. Safe to call multiple times;
// stops any existing processor before starting.
func (s *Service) Start() {
	if s.cancel != nil {
		s.Stop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	// Recover jobs stranded in running by an unclean shutdown.
	if count, err := s.jobs.ResetRunning(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to reset orphaned running jobs")
	} else if count > 0 {
		s.logger.Info().Int("count", count).Msg("Reset orphaned running jobs to pending")
	}

	s.safeGo("pipeline-processor", func() { s.processLoop(ctx) })
	s.logger.Info().Msg("Pipeline processor started")
}

// Stop cancels the processor and waits for the current job to finish.
func (s *Service) Stop() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.wg.Wait()
	s.logger.Info().Msg("Pipeline processor stopped")
}

// LastRun returns the most recently completed or failed job.
func (s *Service) LastRun(ctx context.Context) (*models.PipelineJob, error) {
	return s.jobs.LastFinished(ctx)
}

// safeGo launches a goroutine with panic recovery and logging.
func (s *Service) safeGo(name string, fn func()) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error().
					Str("goroutine", name).
					Str("panic", fmt.Sprintf("%v", r)).
					Str("stack", string(debug.Stack())).
					Msg("Recovered from panic in pipeline goroutine")
			}
		}()
		fn()
	}()
}

// processLoop continuously dequeues and executes jobs.
func (s *Service) processLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		job, err := s.jobs.Dequeue(ctx)
		if err != nil {
			if !errors.Is(err, interfaces.ErrNotFound) {
				s.logger.Warn().Err(err).Msg("Processor: dequeue error")
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(s.poll):
				continue
			}
		}

		s.execute(ctx, job)
	}
}

// execute runs one job and finalizes it with the outcome.
func (s *Service) execute(ctx context.Context, job *models.PipelineJob) {
	s.logger.Info().Str("job_id", job.ID).Int("top_n", job.TopN).Msg("Pipeline run started")
	start := time.Now()

	report, runErr := s.run(ctx, job.TopN)

	if err := s.jobs.Complete(ctx, job.ID, runErr, time.Since(start), report); err != nil {
		s.logger.Error().Err(err).Str("job_id", job.ID).Msg("Failed to finalize job")
	}

	event := s.logger.Info()
	if runErr != nil {
		event = s.logger.Error().Err(runErr)
	}
	event.Str("job_id", job.ID).Dur("duration", time.Since(start)).Msg("Pipeline run finished")
}

// run executes one pipeline pass: select movers, then create one article
// per mover (winners before losers, rank order). A failing article is
// logged and skipped; a failing selection aborts the run.
func (s *Service) run(ctx context.Context, topN int) (*models.RunReport, error) {
	sel, err := s.market.SelectMovers(ctx, topN)
	if err != nil {
		return nil, fmt.Errorf("movers selection failed: %w", err)
	}

	report := &models.RunReport{
		TickersProcessed: sel.TickersProcessed,
		RateLimited:      sel.RateLimited,
		Winners:          len(sel.Winners),
		Losers:           len(sel.Losers),
	}

	for _, snap := range sel.Winners {
		if _, err := s.articles.CreateForMover(ctx, snap, models.MovementWinner); err != nil {
			s.logger.Error().Err(err).Str("symbol", snap.Symbol).Msg("Article for winner failed, skipping")
			continue
		}
		report.ArticlesCreated++
	}
	for _, snap := range sel.Losers {
		if _, err := s.articles.CreateForMover(ctx, snap, models.MovementLoser); err != nil {
			s.logger.Error().Err(err).Str("symbol", snap.Symbol).Msg("Article for loser failed, skipping")
			continue
		}
		report.ArticlesCreated++
	}

	s.logger.Info().Int("articles", report.ArticlesCreated).
		Int("winners", report.Winners).Int("losers", report.Losers).
		Int("rate_limited", report.RateLimited).Msg("Pipeline pass complete")
	return report, nil
}

// Ensure Service implements PipelineService
var _ interfaces.PipelineService = (*Service)(nil)
