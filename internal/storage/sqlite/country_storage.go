package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/sovran/internal/models"
)

// CountryStorage implements interfaces.CountryStorage using SQLite
type CountryStorage struct {
	db     *SQLiteDB
	logger arbor.ILogger
}

// NewCountryStorage creates a new country storage instance
func NewCountryStorage(db *SQLiteDB, logger arbor.ILogger) *CountryStorage {
	return &CountryStorage{db: db, logger: logger}
}

// Upsert inserts the country if unseen; an existing ISO2 row is left untouched
func (s *CountryStorage) Upsert(ctx context.Context, country *models.Country) error {
	if country.CreatedAt.IsZero() {
		country.CreatedAt = time.Now().UTC()
	}

	result, err := s.db.DB().ExecContext(ctx, `
		INSERT INTO countries (iso2, iso3, name, region, income_group, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(iso2) DO NOTHING`,
		country.ISO2, country.ISO3, country.Name, country.Region, country.IncomeGroup,
		country.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to upsert country %s: %w", country.ISO2, err)
	}

	if id, err := result.LastInsertId(); err == nil && id > 0 {
		if rows, err := result.RowsAffected(); err == nil && rows > 0 {
			country.ID = id
			return nil
		}
	}

	// Conflict path: resolve the existing row id
	existing, err := s.GetByISO2(ctx, country.ISO2)
	if err != nil {
		return err
	}
	country.ID = existing.ID
	country.CreatedAt = existing.CreatedAt
	return nil
}

// GetByISO2 retrieves a country by its ISO2 code
func (s *CountryStorage) GetByISO2(ctx context.Context, iso2 string) (*models.Country, error) {
	row := s.db.DB().QueryRowContext(ctx, `
		SELECT id, iso2, iso3, name, region, income_group, created_at
		FROM countries WHERE iso2 = ?`, iso2)

	country, err := scanCountry(row)
	if err == sql.ErrNoRows {
		return nil, models.ErrCountryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get country %s: %w", iso2, err)
	}
	return country, nil
}

// List returns all countries ordered by name
func (s *CountryStorage) List(ctx context.Context) ([]*models.Country, error) {
	rows, err := s.db.DB().QueryContext(ctx, `
		SELECT id, iso2, iso3, name, region, income_group, created_at
		FROM countries ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list countries: %w", err)
	}
	defer rows.Close()

	countries := []*models.Country{}
	for rows.Next() {
		country, err := scanCountry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan country: %w", err)
		}
		countries = append(countries, country)
	}
	return countries, rows.Err()
}

// Count returns the number of seeded countries
func (s *CountryStorage) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.DB().QueryRowContext(ctx, `SELECT COUNT(*) FROM countries`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count countries: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCountry(row rowScanner) (*models.Country, error) {
	var country models.Country
	var region, incomeGroup sql.NullString
	var createdAt int64

	if err := row.Scan(&country.ID, &country.ISO2, &country.ISO3, &country.Name,
		&region, &incomeGroup, &createdAt); err != nil {
		return nil, err
	}

	country.Region = region.String
	country.IncomeGroup = incomeGroup.String
	country.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &country, nil
}
