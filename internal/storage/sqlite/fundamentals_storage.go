package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/sovran/internal/models"
)

// FundamentalsStorage implements interfaces.FundamentalsStorage using SQLite
type FundamentalsStorage struct {
	db     *SQLiteDB
	logger arbor.ILogger
}

// NewFundamentalsStorage creates a new fundamentals storage instance
func NewFundamentalsStorage(db *SQLiteDB, logger arbor.ILogger) *FundamentalsStorage {
	return &FundamentalsStorage{db: db, logger: logger}
}

// Replace commits a snapshot, overwriting any existing (country, year) row
func (s *FundamentalsStorage) Replace(ctx context.Context, snapshot *models.FundamentalsSnapshot) error {
	result, err := s.db.DB().ExecContext(ctx, `
		INSERT INTO fundamentals
			(country_id, year, gdp_growth, gdp_per_capita, debt_gdp, deficit_gdp, ca_gdp, reserves_months, inflation)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(country_id, year) DO UPDATE SET
			gdp_growth = excluded.gdp_growth,
			gdp_per_capita = excluded.gdp_per_capita,
			debt_gdp = excluded.debt_gdp,
			deficit_gdp = excluded.deficit_gdp,
			ca_gdp = excluded.ca_gdp,
			reserves_months = excluded.reserves_months,
			inflation = excluded.inflation`,
		snapshot.CountryID, snapshot.Year,
		snapshot.GDPGrowth, snapshot.GDPPerCapita, snapshot.DebtGDP, snapshot.DeficitGDP,
		snapshot.CurrentAccGDP, snapshot.ReservesMo, snapshot.Inflation)
	if err != nil {
		return fmt.Errorf("failed to replace fundamentals for country %d year %d: %w",
			snapshot.CountryID, snapshot.Year, err)
	}

	if id, err := result.LastInsertId(); err == nil && snapshot.ID == 0 {
		snapshot.ID = id
	}
	return nil
}

// Latest returns the most recent snapshot by year, nil when none exist
func (s *FundamentalsStorage) Latest(ctx context.Context, countryID int64) (*models.FundamentalsSnapshot, error) {
	row := s.db.DB().QueryRowContext(ctx, `
		SELECT id, country_id, year, gdp_growth, gdp_per_capita, debt_gdp, deficit_gdp, ca_gdp, reserves_months, inflation
		FROM fundamentals WHERE country_id = ?
		ORDER BY year DESC LIMIT 1`, countryID)

	snapshot, err := scanFundamentals(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest fundamentals for country %d: %w", countryID, err)
	}
	return snapshot, nil
}

// ListByCountry returns all snapshots for a country, newest year first
func (s *FundamentalsStorage) ListByCountry(ctx context.Context, countryID int64) ([]*models.FundamentalsSnapshot, error) {
	rows, err := s.db.DB().QueryContext(ctx, `
		SELECT id, country_id, year, gdp_growth, gdp_per_capita, debt_gdp, deficit_gdp, ca_gdp, reserves_months, inflation
		FROM fundamentals WHERE country_id = ?
		ORDER BY year DESC`, countryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list fundamentals for country %d: %w", countryID, err)
	}
	defer rows.Close()

	snapshots := []*models.FundamentalsSnapshot{}
	for rows.Next() {
		snapshot, err := scanFundamentals(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fundamentals: %w", err)
		}
		snapshots = append(snapshots, snapshot)
	}
	return snapshots, rows.Err()
}

func scanFundamentals(row rowScanner) (*models.FundamentalsSnapshot, error) {
	var snapshot models.FundamentalsSnapshot
	if err := row.Scan(&snapshot.ID, &snapshot.CountryID, &snapshot.Year,
		&snapshot.GDPGrowth, &snapshot.GDPPerCapita, &snapshot.DebtGDP, &snapshot.DeficitGDP,
		&snapshot.CurrentAccGDP, &snapshot.ReservesMo, &snapshot.Inflation); err != nil {
		return nil, err
	}
	return &snapshot, nil
}
