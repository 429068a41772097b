package interfaces

import (
	"context"

	"github.com/ternarybob/sovran/internal/models"
)

// FundamentalsService syncs macro fundamentals from the indicator provider.
type FundamentalsService interface {
	// SeedCountries upserts the provider's country list and returns the
	// number of countries observed.
	SeedCountries(ctx context.Context) (int, error)
	// SyncCountry reconciles the country's latest indicator observations
	// into a snapshot and commits it. Per-indicator fetch failures are
	// skipped, never fatal. Returns models.ErrCountryNotFound for unknown
	// identifiers.
	SyncCountry(ctx context.Context, iso2 string) (*models.FundamentalsSnapshot, error)
}

// NewsService ingests recent headlines for a country.
type NewsService interface {
	// FetchForCountry queries the news provider, evicts stale cache rows
	// and inserts fresh scored items. Returns the number of articles
	// observed. With no credential configured it is a no-op returning 0.
	FetchForCountry(ctx context.Context, iso2 string) (int, error)
}

// MemoryService manages analyst rationale notes and selects the ones
// applicable to a country.
type MemoryService interface {
	ApplicableTo(ctx context.Context, countryID int64) ([]*models.MemoryNote, error)
	Create(ctx context.Context, note *models.MemoryNote) (*models.MemoryNote, error)
	Get(ctx context.Context, id int64) (*models.MemoryNote, error)
	List(ctx context.Context) ([]*models.MemoryNote, error)
	Update(ctx context.Context, note *models.MemoryNote) (*models.MemoryNote, error)
	Delete(ctx context.Context, id int64) error
}

// AssessmentEvidence is the evidence bundle handed to the judgment provider.
type AssessmentEvidence struct {
	CountryName   string
	Fundamentals  *models.FundamentalsSnapshot
	Headlines     []*models.NewsItem
	Memories      []*models.MemoryNote
	ResearchBrief string
}

// JudgmentService produces a structured credit judgment from evidence.
type JudgmentService interface {
	// Assess returns models.ErrInvalidJudgment when the provider's grade is
	// outside the fixed scale; an invalid outlook is normalized instead.
	Assess(ctx context.Context, evidence *AssessmentEvidence) (*models.Judgment, error)
}

// ResearchService supplies the optional web-augmented research brief.
type ResearchService interface {
	// Brief is best-effort: callers degrade to an empty brief on any error.
	Brief(ctx context.Context, countryName string) (string, error)
}

// RatingEngine is the pipeline entry point.
type RatingEngine interface {
	RunRating(ctx context.Context, iso2 string) (*models.RatingOutcome, error)
	ApplyOverride(ctx context.Context, iso2 string, req *models.OverrideRequest) (*models.OverrideOutcome, error)
}

// SchedulerService drives the cadenced batch jobs and on-demand triggers.
type SchedulerService interface {
	Start() error
	Stop()
	// Trigger launches the batch in the background and returns its run
	// handle immediately. A second trigger while one is running starts a
	// second concurrent sweep; there is no mutual exclusion.
	Trigger(kind models.JobKind) (*models.JobRun, error)
	Runs() []*models.JobRun
	Run(id string) (*models.JobRun, bool)
}
