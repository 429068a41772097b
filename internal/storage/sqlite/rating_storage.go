package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/sovran/internal/models"
)

// RatingStorage implements interfaces.RatingStorage using SQLite
type RatingStorage struct {
	db     *SQLiteDB
	logger arbor.ILogger
}

// NewRatingStorage creates a new rating storage instance
func NewRatingStorage(db *SQLiteDB, logger arbor.ILogger) *RatingStorage {
	return &RatingStorage{db: db, logger: logger}
}

// Commit flips the prior current rating to non-current and inserts the new
// row as current in one transaction. The stored row is returned.
func (s *RatingStorage) Commit(ctx context.Context, rating *models.Rating) (*models.Rating, error) {
	if rating.CreatedAt.IsZero() {
		rating.CreatedAt = time.Now().UTC()
	}

	pillarJSON, err := rating.MarshalPillarAnalysis()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal pillar analysis: %w", err)
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		UPDATE ratings SET is_current = 0
		WHERE country_id = ? AND is_current = 1`, rating.CountryID); err != nil {
		return nil, fmt.Errorf("failed to retire current rating for country %d: %w", rating.CountryID, err)
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO ratings
			(country_id, rating, outlook,
			 score_economic, score_fiscal, score_external, score_monetary, score_banking, score_political,
			 composite_score, ai_rationale, pillar_analysis, source, override_rationale, is_current, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?)`,
		rating.CountryID, rating.Grade, rating.Outlook,
		rating.Scores.Economic, rating.Scores.Fiscal, rating.Scores.External,
		rating.Scores.Monetary, rating.Scores.Banking, rating.Scores.Political,
		rating.CompositeScore, rating.AIRationale, pillarJSON,
		string(rating.Source), rating.OverrideRationale, rating.CreatedAt.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to insert rating for country %d: %w", rating.CountryID, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve rating id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit rating transaction: %w", err)
	}

	rating.ID = id
	rating.IsCurrent = true

	s.logger.Debug().
		Int64("country_id", rating.CountryID).
		Str("rating", rating.Grade).
		Str("source", string(rating.Source)).
		Msg("Rating committed")

	return rating, nil
}

// Current returns the single authoritative rating, nil when unrated
func (s *RatingStorage) Current(ctx context.Context, countryID int64) (*models.Rating, error) {
	row := s.db.DB().QueryRowContext(ctx, ratingSelect+`
		WHERE country_id = ? AND is_current = 1`, countryID)

	rating, err := scanRating(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get current rating for country %d: %w", countryID, err)
	}
	return rating, nil
}

// History returns the country's ratings newest first, capped at limit
func (s *RatingStorage) History(ctx context.Context, countryID int64, limit int) ([]*models.Rating, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.DB().QueryContext(ctx, ratingSelect+`
		WHERE country_id = ?
		ORDER BY created_at DESC, id DESC LIMIT ?`, countryID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get rating history for country %d: %w", countryID, err)
	}
	defer rows.Close()

	ratings := []*models.Rating{}
	for rows.Next() {
		rating, err := scanRating(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rating: %w", err)
		}
		ratings = append(ratings, rating)
	}
	return ratings, rows.Err()
}

const ratingSelect = `
	SELECT id, country_id, rating, outlook,
		score_economic, score_fiscal, score_external, score_monetary, score_banking, score_political,
		composite_score, ai_rationale, pillar_analysis, source, override_rationale, is_current, created_at
	FROM ratings`

func scanRating(row rowScanner) (*models.Rating, error) {
	var rating models.Rating
	var aiRationale, pillarJSON, overrideRationale sql.NullString
	var source string
	var isCurrent int
	var createdAt int64

	if err := row.Scan(&rating.ID, &rating.CountryID, &rating.Grade, &rating.Outlook,
		&rating.Scores.Economic, &rating.Scores.Fiscal, &rating.Scores.External,
		&rating.Scores.Monetary, &rating.Scores.Banking, &rating.Scores.Political,
		&rating.CompositeScore, &aiRationale, &pillarJSON, &source, &overrideRationale,
		&isCurrent, &createdAt); err != nil {
		return nil, err
	}

	rating.AIRationale = aiRationale.String
	rating.OverrideRationale = overrideRationale.String
	rating.Source = models.RatingSource(source)
	rating.IsCurrent = isCurrent == 1
	rating.CreatedAt = time.Unix(createdAt, 0).UTC()
	rating.UnmarshalPillarAnalysis(pillarJSON.String)
	return &rating, nil
}
