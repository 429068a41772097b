package memory

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/sovran/internal/common"
	"github.com/ternarybob/sovran/internal/models"
	"github.com/ternarybob/sovran/internal/storage/sqlite"
)

func newTestService(t *testing.T) (*Service, *sqlite.Manager) {
	t.Helper()

	storage, err := sqlite.NewManager(common.GetLogger(), &common.SQLiteConfig{
		Path:          filepath.Join(t.TempDir(), "test.db"),
		CacheSizeMB:   16,
		BusyTimeoutMS: 5000,
	})
	require.NoError(t, err)
	t.Cleanup(func() { storage.Close() })
	return NewService(storage, common.GetLogger()), storage
}

func seedCountry(t *testing.T, storage *sqlite.Manager, iso2, name string) *models.Country {
	t.Helper()

	country := &models.Country{ISO2: iso2, ISO3: iso2 + "X", Name: name}
	require.NoError(t, storage.Countries().Upsert(context.Background(), country))
	return country
}

func TestApplicableTo_SelectsBoundAndListed(t *testing.T) {
	service, storage := newTestService(t)
	ctx := context.Background()

	argentina := seedCountry(t, storage, "AR", "Argentina")
	brazil := seedCountry(t, storage, "BR", "Brazil")
	chile := seedCountry(t, storage, "CL", "Chile")

	bound, err := service.Create(ctx, &models.MemoryNote{
		CountryID: &argentina.ID,
		Title:     "FX controls",
		Content:   "Capital controls distort reported reserves.",
	})
	require.NoError(t, err)

	listed, err := service.Create(ctx, &models.MemoryNote{
		CountryID:            &brazil.ID,
		Title:                "Regional commodity exposure",
		Content:              "Soy and iron ore cycles move fiscal outturns across the region.",
		ApplicableCountryIDs: []int64{argentina.ID, chile.ID},
	})
	require.NoError(t, err)

	_, err = service.Create(ctx, &models.MemoryNote{
		CountryID: &chile.ID,
		Title:     "Pension withdrawals",
		Content:   "One-off pension withdrawals inflated consumption in past cycles.",
	})
	require.NoError(t, err)

	applicable, err := service.ApplicableTo(ctx, argentina.ID)
	require.NoError(t, err)
	require.Len(t, applicable, 2)

	ids := []int64{applicable[0].ID, applicable[1].ID}
	assert.Contains(t, ids, bound.ID)
	assert.Contains(t, ids, listed.ID)
}

func TestApplicableTo_EmptyWhenNoneMatch(t *testing.T) {
	service, storage := newTestService(t)
	ctx := context.Background()

	japan := seedCountry(t, storage, "JP", "Japan")
	brazil := seedCountry(t, storage, "BR", "Brazil")

	_, err := service.Create(ctx, &models.MemoryNote{
		CountryID: &brazil.ID,
		Title:     "Fiscal framework",
		Content:   "Spending cap credibility remains the anchor.",
	})
	require.NoError(t, err)

	applicable, err := service.ApplicableTo(ctx, japan.ID)
	require.NoError(t, err)
	assert.Empty(t, applicable)
}

func TestCreate_Validation(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	_, err := service.Create(ctx, &models.MemoryNote{Title: "  ", Content: "body"})
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "title", verr.Field)

	_, err = service.Create(ctx, &models.MemoryNote{Title: "title", Content: ""})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "content", verr.Field)
}

func TestUpdate_MissingNote(t *testing.T) {
	service, _ := newTestService(t)

	_, err := service.Update(context.Background(), &models.MemoryNote{ID: 42, Title: "t", Content: "c"})
	assert.ErrorIs(t, err, models.ErrMemoryNotFound)
}
