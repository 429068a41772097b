package models

import "time"

// Country is an immutable reference entity seeded from the World Bank
// country list. Rows are only ever written through an idempotent upsert
// keyed on the ISO2 code.
type Country struct {
	ID          int64     `json:"id"`
	ISO2        string    `json:"iso2"`
	ISO3        string    `json:"iso3"`
	Name        string    `json:"name"`
	Region      string    `json:"region,omitempty"`
	IncomeGroup string    `json:"income_group,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
