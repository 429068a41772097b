package engine

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/sovran/internal/common"
	"github.com/ternarybob/sovran/internal/interfaces"
	"github.com/ternarybob/sovran/internal/models"
	"github.com/ternarybob/sovran/internal/services/memory"
	"github.com/ternarybob/sovran/internal/storage/sqlite"
)

func floatPtr(v float64) *float64 { return &v }

// fakeJudgment returns a canned judgment or error and records the evidence
// it was handed.
type fakeJudgment struct {
	judgment *models.Judgment
	err      error
	evidence *interfaces.AssessmentEvidence
}

func (f *fakeJudgment) Assess(ctx context.Context, evidence *interfaces.AssessmentEvidence) (*models.Judgment, error) {
	f.evidence = evidence
	if f.err != nil {
		return nil, f.err
	}
	return f.judgment, nil
}

// fakeSync writes a snapshot when asked, standing in for the World Bank
// service.
type fakeSync struct {
	storage  interfaces.StorageManager
	snapshot *models.FundamentalsSnapshot
	calls    int
}

func (f *fakeSync) SeedCountries(ctx context.Context) (int, error) { return 0, nil }

func (f *fakeSync) SyncCountry(ctx context.Context, iso2 string) (*models.FundamentalsSnapshot, error) {
	f.calls++
	if f.snapshot == nil {
		return nil, errors.New("provider unavailable")
	}
	if err := f.storage.Fundamentals().Replace(ctx, f.snapshot); err != nil {
		return nil, err
	}
	return f.snapshot, nil
}

type fakeResearch struct {
	brief string
	err   error
}

func (f *fakeResearch) Brief(ctx context.Context, countryName string) (string, error) {
	return f.brief, f.err
}

func newTestStorage(t *testing.T) *sqlite.Manager {
	t.Helper()

	storage, err := sqlite.NewManager(common.GetLogger(), &common.SQLiteConfig{
		Path:          filepath.Join(t.TempDir(), "test.db"),
		CacheSizeMB:   16,
		BusyTimeoutMS: 5000,
	})
	require.NoError(t, err)
	t.Cleanup(func() { storage.Close() })
	return storage
}

func seedCountry(t *testing.T, storage *sqlite.Manager, iso2, name string) *models.Country {
	t.Helper()

	country := &models.Country{ISO2: iso2, ISO3: iso2 + "X", Name: name}
	require.NoError(t, storage.Countries().Upsert(context.Background(), country))
	return country
}

func sampleJudgment() *models.Judgment {
	return &models.Judgment{
		Grade:   "BBB",
		Outlook: "Stable",
		PillarScores: models.PillarScores{
			Economic:  floatPtr(60),
			Fiscal:    floatPtr(50),
			External:  floatPtr(55),
			Monetary:  floatPtr(65),
			Banking:   floatPtr(58),
			Political: floatPtr(52),
		},
		Rationale: "Balanced profile with moderate buffers.",
		PillarAnalysis: map[string]models.PillarAnalysis{
			"fiscal_position": {Summary: "Debt is stable near 60% of GDP."},
		},
	}
}

func TestCompositeScore(t *testing.T) {
	tests := []struct {
		name   string
		scores models.PillarScores
		want   float64
	}{
		{
			name: "all pillars present",
			scores: models.PillarScores{
				Economic:  floatPtr(60),
				Fiscal:    floatPtr(50),
				External:  floatPtr(55),
				Monetary:  floatPtr(65),
				Banking:   floatPtr(58),
				Political: floatPtr(52),
			},
			// 0.25*60 + 0.25*50 + 0.20*55 + 0.10*65 + 0.10*58 + 0.10*52
			want: 56.0,
		},
		{
			name:   "all missing scores zero",
			scores: models.PillarScores{},
			want:   0,
		},
		{
			name: "missing pillar contributes zero",
			scores: models.PillarScores{
				Economic: floatPtr(80),
				Fiscal:   floatPtr(80),
			},
			want: 40.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CompositeScore(tt.scores), 0.0001)
		})
	}
}

func TestRunRating_CommitsJudgment(t *testing.T) {
	storage := newTestStorage(t)
	country := seedCountry(t, storage, "BR", "Brazil")
	ctx := context.Background()

	require.NoError(t, storage.Fundamentals().Replace(ctx, &models.FundamentalsSnapshot{
		CountryID: country.ID,
		Year:      2024,
		GDPGrowth: floatPtr(2.9),
	}))
	_, err := storage.News().Insert(ctx, &models.NewsItem{
		CountryID: country.ID,
		Headline:  "Brazil posts record harvest",
		URL:       "https://example.com/harvest",
	})
	require.NoError(t, err)

	judge := &fakeJudgment{judgment: sampleJudgment()}
	sync := &fakeSync{storage: storage}
	eng := NewEngine(storage, sync, memory.NewService(storage, common.GetLogger()), judge,
		&fakeResearch{brief: "Reform agenda advancing."}, common.GetLogger())

	outcome, err := eng.RunRating(ctx, "BR")
	require.NoError(t, err)

	assert.Equal(t, country.ID, outcome.Country.ID)
	assert.Equal(t, "BBB", outcome.Rating.Grade)
	assert.Equal(t, models.SourceAI, outcome.Rating.Source)
	require.NotNil(t, outcome.Rating.CompositeScore)
	assert.InDelta(t, 56.0, *outcome.Rating.CompositeScore, 0.0001)
	assert.Equal(t, 0, outcome.ApplicableMemories)

	// Fundamentals were on file, so no on-demand sync
	assert.Equal(t, 0, sync.calls)

	// Evidence carried the stored data and the research brief
	require.NotNil(t, judge.evidence)
	require.NotNil(t, judge.evidence.Fundamentals)
	assert.Equal(t, 2024, judge.evidence.Fundamentals.Year)
	require.Len(t, judge.evidence.Headlines, 1)
	assert.Equal(t, "Reform agenda advancing.", judge.evidence.ResearchBrief)

	current, err := storage.Ratings().Current(ctx, country.ID)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, "BBB", current.Grade)
}

func TestRunRating_SyncsMissingFundamentals(t *testing.T) {
	storage := newTestStorage(t)
	country := seedCountry(t, storage, "KE", "Kenya")

	judge := &fakeJudgment{judgment: sampleJudgment()}
	sync := &fakeSync{
		storage:  storage,
		snapshot: &models.FundamentalsSnapshot{CountryID: country.ID, Year: 2024, GDPGrowth: floatPtr(5.0)},
	}
	eng := NewEngine(storage, sync, memory.NewService(storage, common.GetLogger()), judge, nil, common.GetLogger())

	_, err := eng.RunRating(context.Background(), "KE")
	require.NoError(t, err)

	assert.Equal(t, 1, sync.calls)
	require.NotNil(t, judge.evidence.Fundamentals)
	assert.Equal(t, 2024, judge.evidence.Fundamentals.Year)
}

func TestRunRating_DegradesWhenSyncFails(t *testing.T) {
	storage := newTestStorage(t)
	seedCountry(t, storage, "SS", "South Sudan")

	judge := &fakeJudgment{judgment: sampleJudgment()}
	sync := &fakeSync{storage: storage} // no snapshot: sync fails
	eng := NewEngine(storage, sync, memory.NewService(storage, common.GetLogger()), judge, nil, common.GetLogger())

	_, err := eng.RunRating(context.Background(), "SS")
	require.NoError(t, err)

	assert.Equal(t, 1, sync.calls)
	assert.Nil(t, judge.evidence.Fundamentals)
}

func TestRunRating_NoCommitOnJudgmentFailure(t *testing.T) {
	storage := newTestStorage(t)
	country := seedCountry(t, storage, "AR", "Argentina")

	judge := &fakeJudgment{err: models.ErrInvalidJudgment}
	sync := &fakeSync{storage: storage, snapshot: &models.FundamentalsSnapshot{CountryID: country.ID, Year: 2024}}
	eng := NewEngine(storage, sync, memory.NewService(storage, common.GetLogger()), judge, nil, common.GetLogger())

	_, err := eng.RunRating(context.Background(), "AR")
	assert.ErrorIs(t, err, models.ErrInvalidJudgment)

	current, err := storage.Ratings().Current(context.Background(), country.ID)
	require.NoError(t, err)
	assert.Nil(t, current)
}

func TestRunRating_ProviderDisabled(t *testing.T) {
	storage := newTestStorage(t)
	country := seedCountry(t, storage, "JP", "Japan")

	judge := &fakeJudgment{err: models.ErrProviderDisabled}
	sync := &fakeSync{storage: storage, snapshot: &models.FundamentalsSnapshot{CountryID: country.ID, Year: 2024}}
	eng := NewEngine(storage, sync, memory.NewService(storage, common.GetLogger()), judge, nil, common.GetLogger())

	_, err := eng.RunRating(context.Background(), "JP")
	assert.ErrorIs(t, err, models.ErrProviderDisabled)
}

func TestRunRating_UnknownCountry(t *testing.T) {
	storage := newTestStorage(t)
	eng := NewEngine(storage, &fakeSync{storage: storage}, memory.NewService(storage, common.GetLogger()),
		&fakeJudgment{}, nil, common.GetLogger())

	_, err := eng.RunRating(context.Background(), "ZZ")
	assert.ErrorIs(t, err, models.ErrCountryNotFound)
}

func TestRunRating_MemoriesReachEvidence(t *testing.T) {
	storage := newTestStorage(t)
	country := seedCountry(t, storage, "TR", "Turkiye")
	ctx := context.Background()

	memories := memory.NewService(storage, common.GetLogger())
	_, err := memories.Create(ctx, &models.MemoryNote{
		CountryID: &country.ID,
		Title:     "FX reserves quality",
		Content:   "Headline reserves overstate usable buffers.",
	})
	require.NoError(t, err)

	judge := &fakeJudgment{judgment: sampleJudgment()}
	sync := &fakeSync{storage: storage, snapshot: &models.FundamentalsSnapshot{CountryID: country.ID, Year: 2024}}
	eng := NewEngine(storage, sync, memories, judge, nil, common.GetLogger())

	outcome, err := eng.RunRating(ctx, "TR")
	require.NoError(t, err)

	assert.Equal(t, 1, outcome.ApplicableMemories)
	require.Len(t, judge.evidence.Memories, 1)
	assert.Equal(t, "FX reserves quality", judge.evidence.Memories[0].Title)
}

func TestApplyOverride_CommitsRatingAndMemory(t *testing.T) {
	storage := newTestStorage(t)
	country := seedCountry(t, storage, "MX", "Mexico")
	ctx := context.Background()

	eng := NewEngine(storage, &fakeSync{storage: storage}, memory.NewService(storage, common.GetLogger()),
		&fakeJudgment{}, nil, common.GetLogger())

	outcome, err := eng.ApplyOverride(ctx, "MX", &models.OverrideRequest{
		Grade:     "BB+",
		Outlook:   "Negative",
		Rationale: "Pemex contingent liabilities exceed what the model weighs.",
		Tags:      []string{"contingent-liabilities"},
	})
	require.NoError(t, err)

	assert.Equal(t, "BB+", outcome.Rating.Grade)
	assert.Equal(t, models.SourceOverride, outcome.Rating.Source)
	assert.Equal(t, "Pemex contingent liabilities exceed what the model weighs.", outcome.Rating.OverrideRationale)
	assert.Nil(t, outcome.Rating.CompositeScore)

	assert.Equal(t, "Override: Mexico BB+ (Negative)", outcome.Memory.Title)
	require.NotNil(t, outcome.Memory.CountryID)
	assert.Equal(t, country.ID, *outcome.Memory.CountryID)
	assert.Equal(t, []string{"contingent-liabilities"}, outcome.Memory.Tags)

	current, err := storage.Ratings().Current(ctx, country.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SourceOverride, current.Source)

	// The note now counts as evidence for future runs
	applicable, err := memory.NewService(storage, common.GetLogger()).ApplicableTo(ctx, country.ID)
	require.NoError(t, err)
	require.Len(t, applicable, 1)
}

func TestApplyOverride_CustomTitle(t *testing.T) {
	storage := newTestStorage(t)
	seedCountry(t, storage, "MX", "Mexico")

	eng := NewEngine(storage, &fakeSync{storage: storage}, memory.NewService(storage, common.GetLogger()),
		&fakeJudgment{}, nil, common.GetLogger())

	outcome, err := eng.ApplyOverride(context.Background(), "MX", &models.OverrideRequest{
		Grade:     "BBB-",
		Outlook:   "Stable",
		Rationale: "Nearshoring inflows support external accounts.",
		Title:     "Nearshoring adjustment",
	})
	require.NoError(t, err)
	assert.Equal(t, "Nearshoring adjustment", outcome.Memory.Title)
}

func TestApplyOverride_Validation(t *testing.T) {
	storage := newTestStorage(t)
	seedCountry(t, storage, "MX", "Mexico")
	ctx := context.Background()

	eng := NewEngine(storage, &fakeSync{storage: storage}, memory.NewService(storage, common.GetLogger()),
		&fakeJudgment{}, nil, common.GetLogger())

	var verr *models.ValidationError

	_, err := eng.ApplyOverride(ctx, "MX", &models.OverrideRequest{Outlook: "Stable", Rationale: "x"})
	require.ErrorAs(t, err, &verr)

	_, err = eng.ApplyOverride(ctx, "MX", &models.OverrideRequest{Grade: "BBB", Outlook: "Stable"})
	require.ErrorAs(t, err, &verr)

	_, err = eng.ApplyOverride(ctx, "MX", &models.OverrideRequest{Grade: "BBB--", Outlook: "Stable", Rationale: "x"})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "rating", verr.Field)

	_, err = eng.ApplyOverride(ctx, "MX", &models.OverrideRequest{Grade: "BBB", Outlook: "Sideways", Rationale: "x"})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "outlook", verr.Field)

	// Nothing was committed along the way
	country, err := storage.Countries().GetByISO2(ctx, "MX")
	require.NoError(t, err)
	current, err := storage.Ratings().Current(ctx, country.ID)
	require.NoError(t, err)
	assert.Nil(t, current)
}

func TestApplyOverride_UnknownCountry(t *testing.T) {
	storage := newTestStorage(t)
	eng := NewEngine(storage, &fakeSync{storage: storage}, memory.NewService(storage, common.GetLogger()),
		&fakeJudgment{}, nil, common.GetLogger())

	_, err := eng.ApplyOverride(context.Background(), "ZZ", &models.OverrideRequest{
		Grade: "BBB", Outlook: "Stable", Rationale: "x",
	})
	assert.ErrorIs(t, err, models.ErrCountryNotFound)
}
