package models

// FundamentalsSnapshot holds the reconciled macro indicators for one
// (country, year) pair. Every metric is independently nullable because the
// World Bank publishes indicators on different lags; a snapshot can combine
// observations from different calendar years per field, attributed to the
// resolved year of the first indicator that produced a value.
type FundamentalsSnapshot struct {
	ID            int64    `json:"id"`
	CountryID     int64    `json:"country_id"`
	Year          int      `json:"year"`
	GDPGrowth     *float64 `json:"gdp_growth"`
	GDPPerCapita  *float64 `json:"gdp_per_capita"`
	DebtGDP       *float64 `json:"debt_gdp"`
	DeficitGDP    *float64 `json:"deficit_gdp"`
	CurrentAccGDP *float64 `json:"ca_gdp"`
	ReservesMo    *float64 `json:"reserves_months"`
	Inflation     *float64 `json:"inflation"`
}
