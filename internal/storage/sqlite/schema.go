package sqlite

const schemaSQL = `
-- Country reference set, seeded from the World Bank country list
CREATE TABLE IF NOT EXISTS countries (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	iso2 TEXT NOT NULL UNIQUE,
	iso3 TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL,
	region TEXT,
	income_group TEXT,
	created_at INTEGER NOT NULL
);

-- Reconciled macro snapshots, at most one row per (country, year)
CREATE TABLE IF NOT EXISTS fundamentals (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	country_id INTEGER NOT NULL REFERENCES countries(id) ON DELETE CASCADE,
	year INTEGER NOT NULL,
	gdp_growth REAL,
	gdp_per_capita REAL,
	debt_gdp REAL,
	deficit_gdp REAL,
	ca_gdp REAL,
	reserves_months REAL,
	inflation REAL,
	UNIQUE(country_id, year)
);

-- Append-only versioned ratings; exactly one current row per country
CREATE TABLE IF NOT EXISTS ratings (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	country_id INTEGER NOT NULL REFERENCES countries(id) ON DELETE CASCADE,
	rating TEXT NOT NULL,
	outlook TEXT NOT NULL,
	score_economic REAL,
	score_fiscal REAL,
	score_external REAL,
	score_monetary REAL,
	score_banking REAL,
	score_political REAL,
	composite_score REAL,
	ai_rationale TEXT,
	pillar_analysis TEXT,
	source TEXT NOT NULL CHECK(source IN ('ai','override')),
	override_rationale TEXT,
	is_current INTEGER NOT NULL DEFAULT 1,
	created_at INTEGER NOT NULL
);

-- Analyst rationale notes; list fields are JSON-encoded at this boundary
CREATE TABLE IF NOT EXISTS rationale_memory (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	country_id INTEGER REFERENCES countries(id) ON DELETE SET NULL,
	title TEXT NOT NULL,
	content TEXT NOT NULL,
	tags TEXT NOT NULL DEFAULT '[]',
	applicable_country_ids TEXT NOT NULL DEFAULT '[]',
	created_at INTEGER NOT NULL
);

-- Headline cache with per-country staleness eviction
CREATE TABLE IF NOT EXISTS news_cache (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	country_id INTEGER NOT NULL REFERENCES countries(id) ON DELETE CASCADE,
	headline TEXT NOT NULL,
	source TEXT,
	url TEXT,
	published_at TEXT,
	sentiment REAL NOT NULL DEFAULT 0,
	fetched_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_ratings_country_current ON ratings(country_id, is_current);
CREATE INDEX IF NOT EXISTS idx_ratings_country_created ON ratings(country_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_fundamentals_country_year ON fundamentals(country_id, year DESC);
CREATE INDEX IF NOT EXISTS idx_news_country_date ON news_cache(country_id, published_at DESC);
CREATE UNIQUE INDEX IF NOT EXISTS idx_news_country_url ON news_cache(country_id, url);
CREATE INDEX IF NOT EXISTS idx_memory_country ON rationale_memory(country_id);
`

// InitSchema initializes the database schema
func (s *SQLiteDB) InitSchema() error {
	if _, err := s.db.Exec(schemaSQL); err != nil {
		return err
	}
	s.logger.Debug().Msg("Database schema initialized")

	return s.runMigrations()
}

// runMigrations checks for and applies schema migrations for existing databases
func (s *SQLiteDB) runMigrations() error {
	rows, err := s.db.Query(`PRAGMA table_info(ratings)`)
	if err != nil {
		return err
	}
	defer rows.Close()

	hasPillarAnalysis := false
	for rows.Next() {
		var cid int
		var name, typ string
		var notnull, dfltValue, pk interface{}
		if err := rows.Scan(&cid, &name, &typ, &notnull, &dfltValue, &pk); err != nil {
			return err
		}
		if name == "pillar_analysis" {
			hasPillarAnalysis = true
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	if !hasPillarAnalysis {
		s.logger.Info().Msg("Running migration: Adding pillar_analysis column to ratings")
		if _, err := s.db.Exec(`ALTER TABLE ratings ADD COLUMN pillar_analysis TEXT`); err != nil {
			return err
		}
	}

	return nil
}
