package badger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/timshannon/badgerhold/v4"

	"github.com/bobmcallan/tickerpress/internal/common"
	"github.com/bobmcallan/tickerpress/internal/interfaces"
	"github.com/bobmcallan/tickerpress/internal/models"
)

type jobStorage struct {
	store  *Store
	logger *common.Logger
}

// NewJobStorage creates a new JobStore backed by BadgerHold.
func NewJobStorage(store *Store, logger *common.Logger) interfaces.JobStore {
	return &jobStorage{store: store, logger: logger}
}

func (s *jobStorage) Enqueue(_ context.Context, job *models.PipelineJob) error {
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now()
	}
	if job.Status == "" {
		job.Status = models.JobStatusPending
	}

	if err := s.store.db.Insert(job.ID, job); err != nil {
		return fmt.Errorf("failed to enqueue job '%s': %w", job.ID, err)
	}

	s.logger.Debug().Str("job_id", job.ID).Str("job_type", job.JobType).Msg("Job enqueued")
	return nil
}

// Dequeue claims the oldest pending job and marks it running. The queue is
// drained by a single worker, so claim and update need no extra locking.
func (s *jobStorage) Dequeue(_ context.Context) (*models.PipelineJob, error) {
	var pending []*models.PipelineJob
	query := badgerhold.Where("Status").Eq(models.JobStatusPending).Index("Status")
	if err := s.store.db.Find(&pending, query); err != nil {
		return nil, fmt.Errorf("failed to scan pending jobs: %w", err)
	}
	if len(pending) == 0 {
		return nil, interfaces.ErrNotFound
	}

	sort.Slice(pending, func(i, j int) bool {
		return pending[i].CreatedAt.Before(pending[j].CreatedAt)
	})

	job := pending[0]
	job.Status = models.JobStatusRunning
	job.StartedAt = time.Now()
	if err := s.store.db.Update(job.ID, job); err != nil {
		return nil, fmt.Errorf("failed to claim job '%s': %w", job.ID, err)
	}

	s.logger.Debug().Str("job_id", job.ID).Msg("Job claimed")
	return job, nil
}

func (s *jobStorage) Complete(_ context.Context, id string, runErr error, duration time.Duration, report *models.RunReport) error {
	var job models.PipelineJob
	if err := s.store.db.Get(id, &job); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return interfaces.ErrNotFound
		}
		return fmt.Errorf("failed to load job '%s': %w", id, err)
	}

	job.CompletedAt = time.Now()
	job.DurationMS = duration.Milliseconds()
	if runErr != nil {
		job.Status = models.JobStatusFailed
		job.Error = runErr.Error()
	} else {
		job.Status = models.JobStatusCompleted
	}
	if report != nil {
		job.TickersProcessed = report.TickersProcessed
		job.RateLimited = report.RateLimited
		job.Winners = report.Winners
		job.Losers = report.Losers
		job.ArticlesCreated = report.ArticlesCreated
	}

	if err := s.store.db.Update(id, &job); err != nil {
		return fmt.Errorf("failed to finalize job '%s': %w", id, err)
	}

	s.logger.Debug().Str("job_id", id).Str("status", job.Status).Msg("Job finalized")
	return nil
}

func (s *jobStorage) GetByID(_ context.Context, id string) (*models.PipelineJob, error) {
	var job models.PipelineJob
	if err := s.store.db.Get(id, &job); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get job '%s': %w", id, err)
	}
	return &job, nil
}

func (s *jobStorage) LastFinished(_ context.Context) (*models.PipelineJob, error) {
	var finished []*models.PipelineJob
	query := badgerhold.Where("Status").In(models.JobStatusCompleted, models.JobStatusFailed)
	if err := s.store.db.Find(&finished, query); err != nil {
		return nil, fmt.Errorf("failed to scan finished jobs: %w", err)
	}
	if len(finished) == 0 {
		return nil, interfaces.ErrNotFound
	}

	latest := finished[0]
	for _, job := range finished[1:] {
		if job.CompletedAt.After(latest.CompletedAt) {
			latest = job
		}
	}
	return latest, nil
}

func (s *jobStorage) ResetRunning(_ context.Context) (int, error) {
	var running []*models.PipelineJob
	query := badgerhold.Where("Status").Eq(models.JobStatusRunning).Index("Status")
	if err := s.store.db.Find(&running, query); err != nil {
		return 0, fmt.Errorf("failed to scan running jobs: %w", err)
	}

	for _, job := range running {
		job.Status = models.JobStatusPending
		job.StartedAt = time.Time{}
		if err := s.store.db.Update(job.ID, job); err != nil {
			return 0, fmt.Errorf("failed to reset job '%s': %w", job.ID, err)
		}
	}

	if len(running) > 0 {
		s.logger.Warn().Int("jobs", len(running)).Msg("Reset interrupted jobs to pending")
	}
	return len(running), nil
}
