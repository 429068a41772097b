package news

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/sovran/internal/interfaces"
	"github.com/ternarybob/sovran/internal/models"
)

// removedMarker is what NewsAPI substitutes for withdrawn articles.
const removedMarker = "[Removed]"

// Service implements interfaces.NewsService.
type Service struct {
	client        *Client
	storage       interfaces.StorageManager
	logger        arbor.ILogger
	stalenessDays int
}

// NewService creates a headline ingestion service. stalenessDays bounds the
// cache window; items fetched earlier are evicted on the next refresh.
func NewService(client *Client, storage interfaces.StorageManager, logger arbor.ILogger, stalenessDays int) *Service {
	if stalenessDays <= 0 {
		stalenessDays = 7
	}
	return &Service{
		client:        client,
		storage:       storage,
		logger:        logger,
		stalenessDays: stalenessDays,
	}
}

// FetchForCountry refreshes the country's headline cache: evict stale rows,
// query the provider, score and insert what is new. Returns the number of
// articles the provider reported, which includes placeholders and duplicates
// that were dropped rather than inserted. Without a credential it is a
// silent no-op.
func (s *Service) FetchForCountry(ctx context.Context, iso2 string) (int, error) {
	country, err := s.storage.Countries().GetByISO2(ctx, iso2)
	if err != nil {
		return 0, err
	}

	if !s.client.Enabled() {
		s.logger.Debug().Str("country", iso2).Msg("News provider disabled, skipping fetch")
		return 0, nil
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -s.stalenessDays)
	evicted, err := s.storage.News().EvictStale(ctx, country.ID, cutoff)
	if err != nil {
		return 0, err
	}

	articles, err := s.client.Search(ctx, fmt.Sprintf("%s economy", country.Name))
	if err != nil {
		return 0, err
	}

	observed := len(articles)
	inserted := 0
	for _, article := range articles {
		if article.Title == "" || article.Title == removedMarker {
			continue
		}

		item := &models.NewsItem{
			CountryID:   country.ID,
			Headline:    article.Title,
			Source:      article.Source.Name,
			URL:         article.URL,
			PublishedAt: article.PublishedAt,
			Sentiment:   ScoreHeadline(article.Title),
		}
		fresh, err := s.storage.News().Insert(ctx, item)
		if err != nil {
			return observed, err
		}
		if fresh {
			inserted++
		}
	}

	s.logger.Info().
		Str("country", iso2).
		Int("observed", observed).
		Int("inserted", inserted).
		Int64("evicted", evicted).
		Msg("News cache refreshed")

	return observed, nil
}
