package judgment

import (
	"fmt"
	"strings"

	"github.com/ternarybob/sovran/internal/interfaces"
)

const systemPrompt = `You are a sovereign credit analyst producing a rating for one country.

Use the 22-notch scale, best to worst:
AAA, AA+, AA, AA-, A+, A, A-, BBB+, BBB, BBB-, BB+, BB, BB-, B+, B, B-, CCC+, CCC, CCC-, CC, C, D

Outlook must be one of: Stable, Positive, Negative, Watch Positive, Watch Negative.

Score each of six pillars from 0 (weakest) to 100 (strongest):
- economic_strength: growth, income level, diversification
- fiscal_position: debt burden, deficits, fiscal flexibility
- external_position: current account, reserves, external debt
- monetary_policy: inflation control, exchange rate regime, central bank credibility
- banking_sector: financial system health and contingent liabilities
- political_governance: institutional strength, policy predictability, geopolitical risk

Weigh the evidence provided. Where data is missing, score on what is known and say so in the rationale.

Respond with only a JSON object, no surrounding prose:
{
  "rating": "<grade>",
  "outlook": "<outlook>",
  "pillar_scores": {
    "economic_strength": <0-100>,
    "fiscal_position": <0-100>,
    "external_position": <0-100>,
    "monetary_policy": <0-100>,
    "banking_sector": <0-100>,
    "political_governance": <0-100>
  },
  "rationale": "<three to five sentences>",
  "pillar_analysis": {
    "<pillar key>": {"summary": "<one sentence>", "strengths": ["..."], "risks": ["..."]}
  }
}`

// FormatEvidence renders the evidence bundle as the user message. Sections
// with no data state that explicitly so the model does not hallucinate
// numbers.
func FormatEvidence(evidence *interfaces.AssessmentEvidence) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Assess the sovereign creditworthiness of %s.\n\n", evidence.CountryName)

	b.WriteString("## Macro fundamentals\n")
	if evidence.Fundamentals == nil {
		b.WriteString("No fundamentals available.\n")
	} else {
		fmt.Fprintf(&b, "Data year: %d\n", evidence.Fundamentals.Year)
		writeMetric(&b, "GDP growth (%)", evidence.Fundamentals.GDPGrowth)
		writeMetric(&b, "GDP per capita (USD)", evidence.Fundamentals.GDPPerCapita)
		writeMetric(&b, "Inflation (%)", evidence.Fundamentals.Inflation)
		writeMetric(&b, "Government debt (% GDP)", evidence.Fundamentals.DebtGDP)
		writeMetric(&b, "Fiscal deficit (% GDP)", evidence.Fundamentals.DeficitGDP)
		writeMetric(&b, "Current account (% GDP)", evidence.Fundamentals.CurrentAccGDP)
		writeMetric(&b, "Reserves (months of imports)", evidence.Fundamentals.ReservesMo)
	}

	b.WriteString("\n## Recent headlines\n")
	if len(evidence.Headlines) == 0 {
		b.WriteString("No recent headlines available.\n")
	} else {
		for _, item := range evidence.Headlines {
			fmt.Fprintf(&b, "- [sentiment %+.2f] %s (%s, %s)\n", item.Sentiment, item.Headline, item.Source, item.PublishedAt)
		}
	}

	b.WriteString("\n## Analyst memory\n")
	if len(evidence.Memories) == 0 {
		b.WriteString("No analyst notes on file.\n")
	} else {
		for _, note := range evidence.Memories {
			fmt.Fprintf(&b, "- %s: %s\n", note.Title, note.Content)
		}
	}

	if evidence.ResearchBrief != "" {
		b.WriteString("\n## Research brief\n")
		b.WriteString(evidence.ResearchBrief)
		b.WriteString("\n")
	}

	return b.String()
}

func writeMetric(b *strings.Builder, label string, value *float64) {
	if value == nil {
		fmt.Fprintf(b, "%s: n/a\n", label)
		return
	}
	fmt.Fprintf(b, "%s: %.2f\n", label, *value)
}
