package worldbank

import "strconv"

// CountryEntry is one row of the API country list. The list mixes real
// countries with regional and income aggregates; aggregates carry the
// region id "NA".
type CountryEntry struct {
	ID          string     `json:"id"` // ISO3
	ISO2Code    string     `json:"iso2Code"`
	Name        string     `json:"name"`
	Region      CodedValue `json:"region"`
	IncomeLevel CodedValue `json:"incomeLevel"`
}

// CodedValue is the API's {id, value} pair used for regions and income levels.
type CodedValue struct {
	ID    string `json:"id"`
	Value string `json:"value"`
}

// IsAggregate reports whether the entry is a regional or income grouping
// rather than a real country.
func (e *CountryEntry) IsAggregate() bool {
	return e.Region.ID == "NA" || e.ISO2Code == ""
}

// Observation is one indicator data point. Value is null for years the
// country has not reported.
type Observation struct {
	Date  string   `json:"date"`
	Value *float64 `json:"value"`
}

// Year parses the observation's date, which the API reports as a bare year.
func (o *Observation) Year() int {
	year, err := strconv.Atoi(o.Date)
	if err != nil {
		return 0
	}
	return year
}
