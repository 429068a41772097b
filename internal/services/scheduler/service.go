// Package scheduler drives the cadenced batch jobs: the daily news refresh,
// the weekly fundamentals sync and the weekly re-rate sweep.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/sovran/internal/common"
	"github.com/ternarybob/sovran/internal/interfaces"
	"github.com/ternarybob/sovran/internal/models"
	"golang.org/x/time/rate"
)

// runHistoryLimit bounds how many finished runs stay observable.
const runHistoryLimit = 50

// Service implements interfaces.SchedulerService using cron schedules. Each
// batch walks the full country list sequentially with a minimum spacing
// between countries; one country's failure is tallied, never propagated.
// Triggers are fire-and-forget and carry no mutual exclusion, so two
// overlapping sweeps of the same kind are permitted.
type Service struct {
	config       *common.SchedulerConfig
	storage      interfaces.StorageManager
	fundamentals interfaces.FundamentalsService
	news         interfaces.NewsService
	engine       interfaces.RatingEngine
	logger       arbor.ILogger
	cron         *cron.Cron

	mu      sync.Mutex
	runs    map[string]*models.JobRun
	order   []string
	running bool
}

// NewService creates the scheduler.
func NewService(
	config *common.SchedulerConfig,
	storage interfaces.StorageManager,
	fundamentals interfaces.FundamentalsService,
	news interfaces.NewsService,
	engine interfaces.RatingEngine,
	logger arbor.ILogger,
) *Service {
	return &Service{
		config:       config,
		storage:      storage,
		fundamentals: fundamentals,
		news:         news,
		engine:       engine,
		logger:       logger,
		cron:         cron.New(),
		runs:         make(map[string]*models.JobRun),
	}
}

// Start registers the cron entries and begins firing them. With the
// scheduler disabled in config, Start is a no-op and jobs only run through
// Trigger.
func (s *Service) Start() error {
	if !s.config.Enabled {
		s.logger.Info().Msg("Scheduler disabled, jobs run on demand only")
		return nil
	}
	if s.running {
		return fmt.Errorf("scheduler already running")
	}

	entries := []struct {
		schedule string
		kind     models.JobKind
	}{
		{s.config.NewsSchedule, models.JobDailyNews},
		{s.config.SyncSchedule, models.JobWeeklySync},
		{s.config.RerateSchedule, models.JobWeeklyRerate},
	}

	for _, entry := range entries {
		kind := entry.kind
		if _, err := s.cron.AddFunc(entry.schedule, func() {
			if _, err := s.Trigger(kind); err != nil {
				s.logger.Error().Str("job", string(kind)).Err(err).Msg("Scheduled trigger failed")
			}
		}); err != nil {
			return fmt.Errorf("failed to register %s schedule %q: %w", kind, entry.schedule, err)
		}
		s.logger.Info().Str("job", string(kind)).Str("schedule", entry.schedule).Msg("Job scheduled")
	}

	s.cron.Start()
	s.running = true
	s.logger.Info().Msg("Scheduler started")
	return nil
}

// Stop halts the cron entries. In-flight sweeps run to completion.
func (s *Service) Stop() {
	if s.running {
		s.cron.Stop()
		s.running = false
		s.logger.Info().Msg("Scheduler stopped")
	}
}

// Trigger launches the batch in the background and returns its run handle
// immediately.
func (s *Service) Trigger(kind models.JobKind) (*models.JobRun, error) {
	var delay time.Duration
	var sweep func(ctx context.Context, iso2 string) error

	switch kind {
	case models.JobDailyNews:
		delay = s.config.NewsDelay
		sweep = func(ctx context.Context, iso2 string) error {
			_, err := s.news.FetchForCountry(ctx, iso2)
			return err
		}
	case models.JobWeeklySync:
		delay = s.config.SyncDelay
		sweep = func(ctx context.Context, iso2 string) error {
			_, err := s.fundamentals.SyncCountry(ctx, iso2)
			return err
		}
	case models.JobWeeklyRerate:
		delay = s.config.RerateDelay
		sweep = func(ctx context.Context, iso2 string) error {
			_, err := s.engine.RunRating(ctx, iso2)
			return err
		}
	default:
		return nil, fmt.Errorf("unknown job kind %q", kind)
	}

	run := &models.JobRun{
		ID:        uuid.New().String(),
		Kind:      kind,
		Status:    models.JobRunning,
		StartedAt: time.Now().UTC(),
	}
	s.register(run)

	go s.execute(run, delay, sweep)

	return s.snapshot(run.ID), nil
}

// execute walks the country list for one run, spacing countries by the
// job's minimum delay.
func (s *Service) execute(run *models.JobRun, delay time.Duration, sweep func(ctx context.Context, iso2 string) error) {
	ctx := context.Background()

	s.logger.Info().Str("job", string(run.Kind)).Str("run_id", run.ID).Msg("Batch started")

	countries, err := s.storage.Countries().List(ctx)
	if err != nil {
		s.logger.Error().Str("job", string(run.Kind)).Err(err).Msg("Failed to list countries, abandoning batch")
		s.finish(run, models.JobFailed, models.JobTally{Errors: 1})
		return
	}

	// A limiter with burst 1 enforces the minimum spacing even if a sweep
	// returns instantly.
	var limiter *rate.Limiter
	if delay > 0 {
		limiter = rate.NewLimiter(rate.Every(delay), 1)
	}

	tally := models.JobTally{}
	for _, country := range countries {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				break
			}
		}

		if err := sweep(ctx, country.ISO2); err != nil {
			tally.Errors++
			s.logger.Warn().Str("job", string(run.Kind)).Str("country", country.ISO2).Err(err).Msg("Country sweep failed")
			continue
		}
		tally.Success++
	}

	s.finish(run, models.JobCompleted, tally)
	s.logger.Info().
		Str("job", string(run.Kind)).
		Str("run_id", run.ID).
		Int("success", tally.Success).
		Int("errors", tally.Errors).
		Msg("Batch completed")
}

// Runs returns all known runs, newest first.
func (s *Service) Runs() []*models.JobRun {
	s.mu.Lock()
	defer s.mu.Unlock()

	runs := make([]*models.JobRun, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		if run, ok := s.runs[s.order[i]]; ok {
			copied := *run
			runs = append(runs, &copied)
		}
	}
	return runs
}

// Run returns the run with the given id.
func (s *Service) Run(id string) (*models.JobRun, bool) {
	run := s.snapshot(id)
	return run, run != nil
}

func (s *Service) register(run *models.JobRun) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs[run.ID] = run
	s.order = append(s.order, run.ID)

	// Evict the oldest finished runs beyond the history limit
	for len(s.order) > runHistoryLimit {
		oldest := s.order[0]
		if s.runs[oldest] != nil && s.runs[oldest].Status == models.JobRunning {
			break
		}
		delete(s.runs, oldest)
		s.order = s.order[1:]
	}
}

func (s *Service) finish(run *models.JobRun, status models.JobStatus, tally models.JobTally) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	run.Tally = tally
	run.Status = status
	run.CompletedAt = &now
}

// snapshot returns a copy so callers never race the executing goroutine.
func (s *Service) snapshot(id string) *models.JobRun {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, ok := s.runs[id]
	if !ok {
		return nil
	}
	copied := *run
	return &copied
}
