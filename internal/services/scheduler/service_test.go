package scheduler

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/sovran/internal/common"
	"github.com/ternarybob/sovran/internal/models"
	"github.com/ternarybob/sovran/internal/storage/sqlite"
)

// fakeSweeps records which countries each job visited and fails the ones
// listed in failISO2.
type fakeSweeps struct {
	mu       sync.Mutex
	news     []string
	synced   []string
	rerate   []string
	failISO2 map[string]bool
}

func (f *fakeSweeps) fails(iso2 string) bool {
	return f.failISO2 != nil && f.failISO2[iso2]
}

func (f *fakeSweeps) FetchForCountry(ctx context.Context, iso2 string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fails(iso2) {
		return 0, errors.New("news provider down")
	}
	f.news = append(f.news, iso2)
	return 1, nil
}

func (f *fakeSweeps) SeedCountries(ctx context.Context) (int, error) { return 0, nil }

func (f *fakeSweeps) SyncCountry(ctx context.Context, iso2 string) (*models.FundamentalsSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fails(iso2) {
		return nil, errors.New("indicator provider down")
	}
	f.synced = append(f.synced, iso2)
	return &models.FundamentalsSnapshot{}, nil
}

func (f *fakeSweeps) RunRating(ctx context.Context, iso2 string) (*models.RatingOutcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fails(iso2) {
		return nil, models.ErrProviderDisabled
	}
	f.rerate = append(f.rerate, iso2)
	return &models.RatingOutcome{}, nil
}

func (f *fakeSweeps) ApplyOverride(ctx context.Context, iso2 string, req *models.OverrideRequest) (*models.OverrideOutcome, error) {
	return nil, errors.New("not used")
}

func newTestScheduler(t *testing.T, sweeps *fakeSweeps, countries ...string) *Service {
	t.Helper()

	storage, err := sqlite.NewManager(common.GetLogger(), &common.SQLiteConfig{
		Path:          filepath.Join(t.TempDir(), "test.db"),
		CacheSizeMB:   16,
		BusyTimeoutMS: 5000,
	})
	require.NoError(t, err)
	t.Cleanup(func() { storage.Close() })

	for _, iso2 := range countries {
		require.NoError(t, storage.Countries().Upsert(context.Background(), &models.Country{
			ISO2: iso2, ISO3: iso2 + "X", Name: iso2,
		}))
	}

	config := &common.SchedulerConfig{
		Enabled:        false,
		NewsSchedule:   "0 6 * * *",
		SyncSchedule:   "0 4 * * 1",
		RerateSchedule: "0 3 * * 0",
	}
	return NewService(config, storage, sweeps, sweeps, sweeps, common.GetLogger())
}

func waitForRun(t *testing.T, s *Service, id string) *models.JobRun {
	t.Helper()

	require.Eventually(t, func() bool {
		run, ok := s.Run(id)
		return ok && run.Status != models.JobRunning
	}, 5*time.Second, 10*time.Millisecond)

	run, ok := s.Run(id)
	require.True(t, ok)
	return run
}

func TestTrigger_ReturnsImmediatelyAndCompletes(t *testing.T) {
	sweeps := &fakeSweeps{}
	s := newTestScheduler(t, sweeps, "AR", "BR", "CL")

	run, err := s.Trigger(models.JobDailyNews)
	require.NoError(t, err)
	assert.Equal(t, models.JobDailyNews, run.Kind)
	assert.NotEmpty(t, run.ID)

	done := waitForRun(t, s, run.ID)
	assert.Equal(t, models.JobCompleted, done.Status)
	assert.Equal(t, models.JobTally{Success: 3, Errors: 0}, done.Tally)
	require.NotNil(t, done.CompletedAt)

	sweeps.mu.Lock()
	defer sweeps.mu.Unlock()
	assert.ElementsMatch(t, []string{"AR", "BR", "CL"}, sweeps.news)
}

func TestTrigger_OneFailureIsTalliedNotFatal(t *testing.T) {
	sweeps := &fakeSweeps{failISO2: map[string]bool{"BR": true}}
	s := newTestScheduler(t, sweeps, "AR", "BR", "CL")

	run, err := s.Trigger(models.JobWeeklySync)
	require.NoError(t, err)

	done := waitForRun(t, s, run.ID)
	assert.Equal(t, models.JobCompleted, done.Status)
	assert.Equal(t, models.JobTally{Success: 2, Errors: 1}, done.Tally)

	sweeps.mu.Lock()
	defer sweeps.mu.Unlock()
	assert.ElementsMatch(t, []string{"AR", "CL"}, sweeps.synced)
}

func TestTrigger_RerateSweep(t *testing.T) {
	sweeps := &fakeSweeps{}
	s := newTestScheduler(t, sweeps, "MX")

	run, err := s.Trigger(models.JobWeeklyRerate)
	require.NoError(t, err)

	done := waitForRun(t, s, run.ID)
	assert.Equal(t, 1, done.Tally.Success)

	sweeps.mu.Lock()
	defer sweeps.mu.Unlock()
	assert.Equal(t, []string{"MX"}, sweeps.rerate)
}

func TestTrigger_CountryListFailureFailsRun(t *testing.T) {
	storage, err := sqlite.NewManager(common.GetLogger(), &common.SQLiteConfig{
		Path:          filepath.Join(t.TempDir(), "test.db"),
		CacheSizeMB:   16,
		BusyTimeoutMS: 5000,
	})
	require.NoError(t, err)

	sweeps := &fakeSweeps{}
	config := &common.SchedulerConfig{Enabled: false}
	s := NewService(config, storage, sweeps, sweeps, sweeps, common.GetLogger())

	// Closing the storage makes the country listing fail, which abandons
	// the batch before any sweep.
	require.NoError(t, storage.Close())

	run, err := s.Trigger(models.JobDailyNews)
	require.NoError(t, err)

	done := waitForRun(t, s, run.ID)
	assert.Equal(t, models.JobFailed, done.Status)
	assert.Equal(t, models.JobTally{Success: 0, Errors: 1}, done.Tally)
	require.NotNil(t, done.CompletedAt)

	sweeps.mu.Lock()
	defer sweeps.mu.Unlock()
	assert.Empty(t, sweeps.news)
}

func TestTrigger_UnknownKind(t *testing.T) {
	s := newTestScheduler(t, &fakeSweeps{})

	_, err := s.Trigger(models.JobKind("nightly_defrag"))
	require.Error(t, err)
}

func TestRuns_NewestFirst(t *testing.T) {
	sweeps := &fakeSweeps{}
	s := newTestScheduler(t, sweeps, "AR")

	first, err := s.Trigger(models.JobDailyNews)
	require.NoError(t, err)
	waitForRun(t, s, first.ID)

	second, err := s.Trigger(models.JobWeeklySync)
	require.NoError(t, err)
	waitForRun(t, s, second.ID)

	runs := s.Runs()
	require.Len(t, runs, 2)
	assert.Equal(t, second.ID, runs[0].ID)
	assert.Equal(t, first.ID, runs[1].ID)
}

func TestRun_UnknownID(t *testing.T) {
	s := newTestScheduler(t, &fakeSweeps{})

	_, ok := s.Run("no-such-run")
	assert.False(t, ok)
}

func TestStart_DisabledIsNoOp(t *testing.T) {
	s := newTestScheduler(t, &fakeSweeps{})

	require.NoError(t, s.Start())
	s.Stop()
}

func TestStart_RegistersSchedules(t *testing.T) {
	sweeps := &fakeSweeps{}
	s := newTestScheduler(t, sweeps)
	s.config.Enabled = true

	require.NoError(t, s.Start())
	t.Cleanup(s.Stop)

	// Double start is rejected while running
	require.Error(t, s.Start())
}

func TestStart_BadScheduleFails(t *testing.T) {
	s := newTestScheduler(t, &fakeSweeps{})
	s.config.Enabled = true
	s.config.NewsSchedule = "not a cron expr"

	require.Error(t, s.Start())
}
