package interfaces

import (
	"context"
	"time"

	"github.com/ternarybob/sovran/internal/models"
)

// CountryStorage manages the immutable country reference set.
type CountryStorage interface {
	// Upsert inserts the country if its ISO2 code is unseen and leaves the
	// existing row untouched otherwise (idempotent re-seed).
	Upsert(ctx context.Context, country *models.Country) error
	GetByISO2(ctx context.Context, iso2 string) (*models.Country, error)
	List(ctx context.Context) ([]*models.Country, error)
	Count(ctx context.Context) (int, error)
}

// FundamentalsStorage manages reconciled macro snapshots.
type FundamentalsStorage interface {
	// Replace commits a snapshot, overwriting any existing row for the same
	// (country, year) key.
	Replace(ctx context.Context, snapshot *models.FundamentalsSnapshot) error
	// Latest returns the most recent snapshot by year, or nil when the
	// country has none.
	Latest(ctx context.Context, countryID int64) (*models.FundamentalsSnapshot, error)
	ListByCountry(ctx context.Context, countryID int64) ([]*models.FundamentalsSnapshot, error)
}

// RatingStorage manages the append-only versioned rating history.
type RatingStorage interface {
	// Commit flips the country's prior current rating to non-current and
	// inserts the new row as current, in a single transaction. It returns
	// the stored row.
	Commit(ctx context.Context, rating *models.Rating) (*models.Rating, error)
	// Current returns the single authoritative rating, or nil when the
	// country is unrated.
	Current(ctx context.Context, countryID int64) (*models.Rating, error)
	History(ctx context.Context, countryID int64, limit int) ([]*models.Rating, error)
}

// MemoryStorage manages analyst rationale notes. List fields (tags,
// applicable country ids) are JSON-encoded at this boundary only.
type MemoryStorage interface {
	Create(ctx context.Context, note *models.MemoryNote) (*models.MemoryNote, error)
	Get(ctx context.Context, id int64) (*models.MemoryNote, error)
	List(ctx context.Context) ([]*models.MemoryNote, error)
	Update(ctx context.Context, note *models.MemoryNote) (*models.MemoryNote, error)
	Delete(ctx context.Context, id int64) error
}

// NewsStorage manages the per-country headline cache.
type NewsStorage interface {
	// Insert stores the item, reporting false when it was dropped as a
	// duplicate of an existing (country, url) row.
	Insert(ctx context.Context, item *models.NewsItem) (bool, error)
	// EvictStale deletes the country's items fetched before cutoff and
	// returns the number removed.
	EvictStale(ctx context.Context, countryID int64, cutoff time.Time) (int64, error)
	Recent(ctx context.Context, countryID int64, limit int) ([]*models.NewsItem, error)
}

// StorageManager aggregates the entity stores over one shared connection.
type StorageManager interface {
	Countries() CountryStorage
	Fundamentals() FundamentalsStorage
	Ratings() RatingStorage
	Memories() MemoryStorage
	News() NewsStorage
	Close() error
}
