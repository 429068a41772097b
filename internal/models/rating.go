package models

import (
	"encoding/json"
	"time"
)

// RatingSource identifies how a rating was produced.
type RatingSource string

const (
	// SourceAI marks ratings produced by the judgment provider.
	SourceAI RatingSource = "ai"
	// SourceOverride marks analyst manual overrides.
	SourceOverride RatingSource = "override"
)

// RatingScale is the fixed 22-notch grade scale, ordered best to worst.
var RatingScale = []string{
	"AAA", "AA+", "AA", "AA-", "A+", "A", "A-",
	"BBB+", "BBB", "BBB-", "BB+", "BB", "BB-",
	"B+", "B", "B-", "CCC+", "CCC", "CCC-", "CC", "C", "D",
}

// Outlooks is the fixed set of valid outlook values.
var Outlooks = []string{"Stable", "Positive", "Negative", "Watch Positive", "Watch Negative"}

// DefaultOutlook is substituted when the judgment provider returns an
// outlook outside the fixed set. Grades get no such leniency.
const DefaultOutlook = "Stable"

// IsValidGrade reports whether grade belongs to the 22-notch scale.
func IsValidGrade(grade string) bool {
	for _, g := range RatingScale {
		if g == grade {
			return true
		}
	}
	return false
}

// IsValidOutlook reports whether outlook belongs to the fixed set.
func IsValidOutlook(outlook string) bool {
	for _, o := range Outlooks {
		if o == outlook {
			return true
		}
	}
	return false
}

// NormalizeOutlook returns outlook unchanged when valid, DefaultOutlook
// otherwise.
func NormalizeOutlook(outlook string) string {
	if IsValidOutlook(outlook) {
		return outlook
	}
	return DefaultOutlook
}

// PillarScores carries the six 0-100 credit pillar scores. Fields are
// pointers so an incomplete judgment response stays distinguishable from a
// genuine zero score.
type PillarScores struct {
	Economic  *float64 `json:"economic_strength"`
	Fiscal    *float64 `json:"fiscal_position"`
	External  *float64 `json:"external_position"`
	Monetary  *float64 `json:"monetary_policy"`
	Banking   *float64 `json:"banking_sector"`
	Political *float64 `json:"political_governance"`
}

// PillarAnalysis is the per-pillar narrative block returned by the
// judgment provider.
type PillarAnalysis struct {
	Summary   string   `json:"summary"`
	Strengths []string `json:"strengths"`
	Risks     []string `json:"risks"`
}

// Rating is one versioned judgment row. History is append-only: committing
// a new rating flips the prior current row to non-current in the same
// transaction, it never deletes anything.
type Rating struct {
	ID                int64                     `json:"id"`
	CountryID         int64                     `json:"country_id"`
	Grade             string                    `json:"rating"`
	Outlook           string                    `json:"outlook"`
	Scores            PillarScores              `json:"pillar_scores"`
	CompositeScore    *float64                  `json:"composite_score"`
	AIRationale       string                    `json:"ai_rationale,omitempty"`
	PillarAnalysis    map[string]PillarAnalysis `json:"pillar_analysis,omitempty"`
	Source            RatingSource              `json:"source"`
	OverrideRationale string                    `json:"override_rationale,omitempty"`
	IsCurrent         bool                      `json:"is_current"`
	CreatedAt         time.Time                 `json:"created_at"`
}

// MarshalPillarAnalysis serializes the pillar analysis map for row storage.
func (r *Rating) MarshalPillarAnalysis() (string, error) {
	if r.PillarAnalysis == nil {
		return "{}", nil
	}
	data, err := json.Marshal(r.PillarAnalysis)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// UnmarshalPillarAnalysis restores the pillar analysis map from its stored
// JSON form. Malformed stored JSON yields an empty map rather than an error.
func (r *Rating) UnmarshalPillarAnalysis(data string) {
	r.PillarAnalysis = map[string]PillarAnalysis{}
	if data == "" {
		return
	}
	if err := json.Unmarshal([]byte(data), &r.PillarAnalysis); err != nil {
		r.PillarAnalysis = map[string]PillarAnalysis{}
	}
}

// Judgment is the structured response required from the judgment provider.
type Judgment struct {
	Grade          string                    `json:"rating"`
	Outlook        string                    `json:"outlook"`
	PillarScores   PillarScores              `json:"pillar_scores"`
	Rationale      string                    `json:"rationale"`
	PillarAnalysis map[string]PillarAnalysis `json:"pillar_analysis"`
}

// RatingOutcome is returned by a full pipeline run.
type RatingOutcome struct {
	Country            *Country `json:"country"`
	Rating             *Rating  `json:"rating"`
	ApplicableMemories int      `json:"applicable_memories"`
}

// OverrideRequest is the caller-supplied payload for a manual override.
type OverrideRequest struct {
	Grade                string   `json:"rating" validate:"required"`
	Outlook              string   `json:"outlook" validate:"required"`
	Rationale            string   `json:"rationale" validate:"required"`
	Title                string   `json:"title"`
	Tags                 []string `json:"tags"`
	ApplicableCountryIDs []int64  `json:"applicable_country_ids"`
}

// OverrideOutcome is returned by a manual override: the committed rating
// plus the memory note capturing the override rationale as future evidence.
type OverrideOutcome struct {
	Rating *Rating     `json:"rating"`
	Memory *MemoryNote `json:"memory"`
}
