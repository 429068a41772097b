package models

import "time"

// NewsItem is a cached headline for one country with a precomputed lexical
// sentiment score in [-1, 1]. Rows are inserted idempotently on
// (country, url) and evicted per country once older than the staleness
// window.
type NewsItem struct {
	ID          int64     `json:"id"`
	CountryID   int64     `json:"country_id"`
	Headline    string    `json:"headline"`
	Source      string    `json:"source,omitempty"`
	URL         string    `json:"url,omitempty"`
	PublishedAt string    `json:"published_at,omitempty"`
	Sentiment   float64   `json:"sentiment"`
	FetchedAt   time.Time `json:"fetched_at"`
}
