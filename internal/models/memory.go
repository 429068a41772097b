package models

import (
	"encoding/json"
	"time"
)

// MemoryNote is an analyst-authored rationale note. It may be bound to one
// country directly and declared applicable to further countries through
// ApplicableCountryIDs. Notes are mutable independent of rating history.
type MemoryNote struct {
	ID                   int64     `json:"id"`
	CountryID            *int64    `json:"country_id"`
	Title                string    `json:"title"`
	Content              string    `json:"content"`
	Tags                 []string  `json:"tags"`
	ApplicableCountryIDs []int64   `json:"applicable_country_ids"`
	CreatedAt            time.Time `json:"created_at"`

	// Joined display fields, populated on read only.
	CountryName string `json:"country_name,omitempty"`
	CountryISO2 string `json:"country_iso2,omitempty"`
}

// AppliesTo reports whether the note is evidence for the given country:
// either bound to it directly or listing it as applicable.
func (m *MemoryNote) AppliesTo(countryID int64) bool {
	if m.CountryID != nil && *m.CountryID == countryID {
		return true
	}
	for _, id := range m.ApplicableCountryIDs {
		if id == countryID {
			return true
		}
	}
	return false
}

// MarshalTags serializes the tag list for row storage.
func (m *MemoryNote) MarshalTags() (string, error) {
	return marshalList(m.Tags)
}

// MarshalApplicableCountryIDs serializes the applicability list for row storage.
func (m *MemoryNote) MarshalApplicableCountryIDs() (string, error) {
	return marshalList(m.ApplicableCountryIDs)
}

// UnmarshalTags restores the tag list from its stored JSON form. Malformed
// data decodes to an empty list: exclusion, not error.
func (m *MemoryNote) UnmarshalTags(data string) {
	m.Tags = []string{}
	if data == "" {
		return
	}
	if err := json.Unmarshal([]byte(data), &m.Tags); err != nil {
		m.Tags = []string{}
	}
}

// UnmarshalApplicableCountryIDs restores the applicability list from its
// stored JSON form, failing open to an empty list on malformed data.
func (m *MemoryNote) UnmarshalApplicableCountryIDs(data string) {
	m.ApplicableCountryIDs = []int64{}
	if data == "" {
		return
	}
	if err := json.Unmarshal([]byte(data), &m.ApplicableCountryIDs); err != nil {
		m.ApplicableCountryIDs = []int64{}
	}
}

func marshalList[T any](list []T) (string, error) {
	if list == nil {
		return "[]", nil
	}
	data, err := json.Marshal(list)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
