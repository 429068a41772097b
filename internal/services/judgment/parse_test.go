package judgment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/sovran/internal/interfaces"
	"github.com/ternarybob/sovran/internal/models"
)

const validResponse = `{
	"rating": "BBB-",
	"outlook": "Negative",
	"pillar_scores": {
		"economic_strength": 58,
		"fiscal_position": 41,
		"external_position": 52,
		"monetary_policy": 60,
		"banking_sector": 55,
		"political_governance": 47
	},
	"rationale": "Moderate growth offset by a rising debt burden.",
	"pillar_analysis": {
		"fiscal_position": {
			"summary": "Deficits remain above the debt-stabilizing level.",
			"strengths": ["Long average debt maturity"],
			"risks": ["Rigid spending structure"]
		}
	}
}`

func TestParseJudgment_BareJSON(t *testing.T) {
	judgment, err := ParseJudgment(validResponse)
	require.NoError(t, err)

	assert.Equal(t, "BBB-", judgment.Grade)
	assert.Equal(t, "Negative", judgment.Outlook)
	require.NotNil(t, judgment.PillarScores.Fiscal)
	assert.InDelta(t, 41, *judgment.PillarScores.Fiscal, 0.0001)
	assert.Equal(t, "Moderate growth offset by a rising debt burden.", judgment.Rationale)
	assert.Contains(t, judgment.PillarAnalysis, "fiscal_position")
}

func TestParseJudgment_MarkdownFence(t *testing.T) {
	judgment, err := ParseJudgment("```json\n" + validResponse + "\n```")
	require.NoError(t, err)
	assert.Equal(t, "BBB-", judgment.Grade)
}

func TestParseJudgment_LeadingProse(t *testing.T) {
	judgment, err := ParseJudgment("Here is my assessment:\n\n" + validResponse)
	require.NoError(t, err)
	assert.Equal(t, "BBB-", judgment.Grade)
}

func TestParseJudgment_InvalidGradeRejected(t *testing.T) {
	_, err := ParseJudgment(`{"rating": "BBB--", "outlook": "Stable"}`)
	assert.ErrorIs(t, err, models.ErrInvalidJudgment)

	_, err = ParseJudgment(`{"rating": "", "outlook": "Stable"}`)
	assert.ErrorIs(t, err, models.ErrInvalidJudgment)
}

func TestParseJudgment_InvalidOutlookNormalized(t *testing.T) {
	judgment, err := ParseJudgment(`{"rating": "A", "outlook": "Cautiously Optimistic"}`)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultOutlook, judgment.Outlook)
}

func TestParseJudgment_NoJSON(t *testing.T) {
	_, err := ParseJudgment("I cannot assess this country.")
	assert.ErrorIs(t, err, models.ErrInvalidJudgment)
}

func TestParseJudgment_MissingScoresStayNil(t *testing.T) {
	judgment, err := ParseJudgment(`{"rating": "B+", "outlook": "Stable", "pillar_scores": {"economic_strength": 40}}`)
	require.NoError(t, err)
	require.NotNil(t, judgment.PillarScores.Economic)
	assert.Nil(t, judgment.PillarScores.Fiscal)
	assert.Nil(t, judgment.PillarScores.Political)
	assert.NotNil(t, judgment.PillarAnalysis)
}

func TestFormatEvidence_Sections(t *testing.T) {
	growth := 2.5
	evidence := &interfaces.AssessmentEvidence{
		CountryName: "Brazil",
		Fundamentals: &models.FundamentalsSnapshot{
			Year:      2024,
			GDPGrowth: &growth,
		},
		Headlines: []*models.NewsItem{
			{Headline: "Brazil posts record harvest", Source: "Reuters", PublishedAt: "2026-08-20T06:00:00Z", Sentiment: 0.33},
		},
		Memories: []*models.MemoryNote{
			{Title: "Fiscal framework", Content: "Spending cap credibility remains the anchor."},
		},
		ResearchBrief: "Congress is debating tax reform implementation.",
	}

	text := FormatEvidence(evidence)
	assert.Contains(t, text, "Assess the sovereign creditworthiness of Brazil.")
	assert.Contains(t, text, "Data year: 2024")
	assert.Contains(t, text, "GDP growth (%): 2.50")
	assert.Contains(t, text, "GDP per capita (USD): n/a")
	assert.Contains(t, text, "Brazil posts record harvest")
	assert.Contains(t, text, "Fiscal framework: Spending cap credibility remains the anchor.")
	assert.Contains(t, text, "Congress is debating tax reform implementation.")
}

func TestFormatEvidence_EmptyBundle(t *testing.T) {
	text := FormatEvidence(&interfaces.AssessmentEvidence{CountryName: "Nauru"})
	assert.Contains(t, text, "No fundamentals available.")
	assert.Contains(t, text, "No recent headlines available.")
	assert.Contains(t, text, "No analyst notes on file.")
	assert.NotContains(t, text, "## Research brief")
}
