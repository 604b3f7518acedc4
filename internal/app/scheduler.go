package app

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/bobmcallan/tickerpress/internal/common"
	"github.com/bobmcallan/tickerpress/internal/interfaces"
)

// Scheduler fires the daily pipeline on a cron expression evaluated in the
// configured market timezone.
type Scheduler struct {
	cron     *cron.Cron
	entryID  cron.EntryID
	pipeline interfaces.PipelineService
	spec     string
	logger   *common.Logger
}

// NewScheduler validates the cron expression and timezone up front so a bad
// configuration fails at startup, not at first fire.
func NewScheduler(config *common.Config, pipeline interfaces.PipelineService, logger *common.Logger) (*Scheduler, error) {
	location, err := time.LoadLocation(config.Scheduler.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid scheduler timezone %q: %w", config.Scheduler.Timezone, err)
	}
	if _, err := cron.ParseStandard(config.Scheduler.Cron); err != nil {
		return nil, fmt.Errorf("invalid scheduler cron %q: %w", config.Scheduler.Cron, err)
	}

	return &Scheduler{
		cron:     cron.New(cron.WithLocation(location)),
		pipeline: pipeline,
		spec:     config.Scheduler.Cron,
		logger:   logger,
	}, nil
}

// Start registers the pipeline job and begins the cron loop.
func (s *Scheduler) Start() error {
	entryID, err := s.cron.AddFunc(s.spec, s.fire)
	if err != nil {
		return fmt.Errorf("failed to schedule pipeline: %w", err)
	}
	s.entryID = entryID
	s.cron.Start()

	s.logger.Info().Str("cron", s.spec).Time("next_run", s.NextRun()).Msg("Scheduler started")
	return nil
}

// Stop halts the cron loop and waits for a firing callback to return.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info().Msg("Scheduler stopped")
}

// NextRun returns the next scheduled firing time, zero when not started.
func (s *Scheduler) NextRun() time.Time {
	return s.cron.Entry(s.entryID).Next
}

// fire enqueues one pipeline run. A zero topN takes the pipeline default.
func (s *Scheduler) fire() {
	job, err := s.pipeline.Enqueue(context.Background(), 0)
	if err != nil {
		s.logger.Error().Err(err).Msg("Scheduled pipeline enqueue failed")
		return
	}
	s.logger.Info().Str("job_id", job.ID).Msg("Scheduled pipeline run enqueued")
}

// Ensure Scheduler implements the interface
var _ interfaces.Scheduler = (*Scheduler)(nil)
