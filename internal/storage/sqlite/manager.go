package sqlite

import (
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/sovran/internal/common"
	"github.com/ternarybob/sovran/internal/interfaces"
)

// Manager aggregates all SQLite-backed storage implementations
type Manager struct {
	db           *SQLiteDB
	logger       arbor.ILogger
	countries    *CountryStorage
	fundamentals *FundamentalsStorage
	ratings      *RatingStorage
	memories     *MemoryStorage
	news         *NewsStorage
}

// NewManager creates a storage manager backed by a single SQLite database
func NewManager(logger arbor.ILogger, config *common.SQLiteConfig) (*Manager, error) {
	db, err := NewSQLiteDB(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sqlite storage: %w", err)
	}

	return &Manager{
		db:           db,
		logger:       logger,
		countries:    NewCountryStorage(db, logger),
		fundamentals: NewFundamentalsStorage(db, logger),
		ratings:      NewRatingStorage(db, logger),
		memories:     NewMemoryStorage(db, logger),
		news:         NewNewsStorage(db, logger),
	}, nil
}

// Countries returns the country storage
func (m *Manager) Countries() interfaces.CountryStorage {
	return m.countries
}

// Fundamentals returns the fundamentals storage
func (m *Manager) Fundamentals() interfaces.FundamentalsStorage {
	return m.fundamentals
}

// Ratings returns the rating storage
func (m *Manager) Ratings() interfaces.RatingStorage {
	return m.ratings
}

// Memories returns the rationale memory storage
func (m *Manager) Memories() interfaces.MemoryStorage {
	return m.memories
}

// News returns the news cache storage
func (m *Manager) News() interfaces.NewsStorage {
	return m.news
}

// Close closes the underlying database connection
func (m *Manager) Close() error {
	m.logger.Info().Msg("Closing storage manager")
	return m.db.Close()
}
