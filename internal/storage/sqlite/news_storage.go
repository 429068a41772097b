package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/sovran/internal/models"
)

// NewsStorage implements interfaces.NewsStorage using SQLite
type NewsStorage struct {
	db     *SQLiteDB
	logger arbor.ILogger
}

// NewNewsStorage creates a new news storage instance
func NewNewsStorage(db *SQLiteDB, logger arbor.ILogger) *NewsStorage {
	return &NewsStorage{db: db, logger: logger}
}

// Insert stores a headline, reporting false when it was dropped as a
// duplicate of an existing (country, url) row
func (s *NewsStorage) Insert(ctx context.Context, item *models.NewsItem) (bool, error) {
	if item.FetchedAt.IsZero() {
		item.FetchedAt = time.Now().UTC()
	}

	result, err := s.db.DB().ExecContext(ctx, `
		INSERT OR IGNORE INTO news_cache (country_id, headline, source, url, published_at, sentiment, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		item.CountryID, item.Headline, item.Source, item.URL, item.PublishedAt,
		item.Sentiment, item.FetchedAt.Unix())
	if err != nil {
		return false, fmt.Errorf("failed to insert news item for country %d: %w", item.CountryID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to resolve insert result: %w", err)
	}
	if affected == 0 {
		return false, nil
	}

	if id, err := result.LastInsertId(); err == nil {
		item.ID = id
	}
	return true, nil
}

// EvictStale deletes the country's items fetched before cutoff
func (s *NewsStorage) EvictStale(ctx context.Context, countryID int64, cutoff time.Time) (int64, error) {
	result, err := s.db.DB().ExecContext(ctx, `
		DELETE FROM news_cache WHERE country_id = ? AND fetched_at < ?`,
		countryID, cutoff.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to evict stale news for country %d: %w", countryID, err)
	}

	evicted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to resolve eviction result: %w", err)
	}
	if evicted > 0 {
		s.logger.Debug().Int64("country_id", countryID).Int64("evicted", evicted).Msg("Evicted stale news items")
	}
	return evicted, nil
}

// Recent returns the country's cached headlines, newest publication first
func (s *NewsStorage) Recent(ctx context.Context, countryID int64, limit int) ([]*models.NewsItem, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.DB().QueryContext(ctx, `
		SELECT id, country_id, headline, source, url, published_at, sentiment, fetched_at
		FROM news_cache WHERE country_id = ?
		ORDER BY published_at DESC, id DESC LIMIT ?`, countryID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list news for country %d: %w", countryID, err)
	}
	defer rows.Close()

	items := []*models.NewsItem{}
	for rows.Next() {
		var item models.NewsItem
		var fetchedAt int64
		if err := rows.Scan(&item.ID, &item.CountryID, &item.Headline, &item.Source,
			&item.URL, &item.PublishedAt, &item.Sentiment, &fetchedAt); err != nil {
			return nil, fmt.Errorf("failed to scan news item: %w", err)
		}
		item.FetchedAt = time.Unix(fetchedAt, 0).UTC()
		items = append(items, &item)
	}
	return items, rows.Err()
}
