package worldbank

import (
	"context"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/sovran/internal/interfaces"
	"github.com/ternarybob/sovran/internal/models"
)

// indicatorBinding maps one snapshot field to its World Bank indicator code.
type indicatorBinding struct {
	code  string
	apply func(*models.FundamentalsSnapshot, *float64)
}

// indicatorBindings lists the synced indicators in fetch order. The resolved
// snapshot year comes from the first binding that yields an observation.
var indicatorBindings = []indicatorBinding{
	{"NY.GDP.MKTP.KD.ZG", func(s *models.FundamentalsSnapshot, v *float64) { s.GDPGrowth = v }},
	{"NY.GDP.PCAP.CD", func(s *models.FundamentalsSnapshot, v *float64) { s.GDPPerCapita = v }},
	{"FP.CPI.TOTL.ZG", func(s *models.FundamentalsSnapshot, v *float64) { s.Inflation = v }},
	{"GC.DOD.TOTL.GD.ZS", func(s *models.FundamentalsSnapshot, v *float64) { s.DebtGDP = v }},
	{"BN.CAB.XOKA.GD.ZS", func(s *models.FundamentalsSnapshot, v *float64) { s.CurrentAccGDP = v }},
	{"FI.RES.TOTL.MO", func(s *models.FundamentalsSnapshot, v *float64) { s.ReservesMo = v }},
}

// Service implements interfaces.FundamentalsService against the World Bank
// API.
type Service struct {
	client  *Client
	storage interfaces.StorageManager
	logger  arbor.ILogger
}

// NewService creates a fundamentals sync service.
func NewService(client *Client, storage interfaces.StorageManager, logger arbor.ILogger) *Service {
	return &Service{
		client:  client,
		storage: storage,
		logger:  logger,
	}
}

// SeedCountries upserts the API's country list, dropping regional and income
// aggregates. Existing rows are left untouched, so re-seeding is idempotent.
func (s *Service) SeedCountries(ctx context.Context) (int, error) {
	entries, err := s.client.ListCountries(ctx)
	if err != nil {
		return 0, err
	}

	seeded := 0
	for _, entry := range entries {
		if entry.IsAggregate() {
			continue
		}

		country := &models.Country{
			ISO2:        entry.ISO2Code,
			ISO3:        entry.ID,
			Name:        entry.Name,
			Region:      entry.Region.Value,
			IncomeGroup: entry.IncomeLevel.Value,
		}
		if err := s.storage.Countries().Upsert(ctx, country); err != nil {
			return seeded, err
		}
		seeded++
	}

	s.logger.Info().Int("countries", seeded).Msg("Country list seeded")
	return seeded, nil
}

// SyncCountry reconciles the country's latest indicator observations into one
// snapshot and commits it. Indicators publish on different lags, so each
// field takes its own most recent non-null observation; a per-indicator
// fetch failure skips that field only.
func (s *Service) SyncCountry(ctx context.Context, iso2 string) (*models.FundamentalsSnapshot, error) {
	country, err := s.storage.Countries().GetByISO2(ctx, iso2)
	if err != nil {
		return nil, err
	}

	snapshot := &models.FundamentalsSnapshot{CountryID: country.ID}

	for _, binding := range indicatorBindings {
		observations, err := s.client.Indicator(ctx, iso2, binding.code)
		if err != nil {
			s.logger.Warn().
				Str("country", iso2).
				Str("indicator", binding.code).
				Err(err).
				Msg("Indicator fetch failed, skipping")
			continue
		}

		value, year := latestObservation(observations)
		if value == nil {
			continue
		}

		binding.apply(snapshot, value)
		if snapshot.Year == 0 {
			snapshot.Year = year
		}
	}

	// No indicator reported at all; attribute the empty snapshot to the
	// previous calendar year.
	if snapshot.Year == 0 {
		snapshot.Year = time.Now().UTC().Year() - 1
	}

	if err := s.storage.Fundamentals().Replace(ctx, snapshot); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("country", iso2).
		Int("year", snapshot.Year).
		Msg("Fundamentals synced")

	return snapshot, nil
}

// latestObservation returns the most recent non-null value and its year.
// Observations arrive newest first.
func latestObservation(observations []Observation) (*float64, int) {
	for _, obs := range observations {
		if obs.Value != nil {
			v := *obs.Value
			return &v, obs.Year()
		}
	}
	return nil, 0
}
