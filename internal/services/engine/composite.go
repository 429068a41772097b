// Package engine orchestrates the rating pipeline: evidence assembly,
// judgment, composite scoring and the rating commit.
package engine

import "github.com/ternarybob/sovran/internal/models"

// Pillar weights. Economic and fiscal strength dominate; the three
// qualitative pillars share the remainder equally.
const (
	weightEconomic  = 0.25
	weightFiscal    = 0.25
	weightExternal  = 0.20
	weightMonetary  = 0.10
	weightBanking   = 0.10
	weightPolitical = 0.10
)

// CompositeScore collapses the six pillar scores into one weighted 0-100
// number. A missing pillar contributes zero rather than renormalizing the
// weights: an incomplete judgment reads as weakness, not as neutral.
func CompositeScore(scores models.PillarScores) float64 {
	return weightEconomic*value(scores.Economic) +
		weightFiscal*value(scores.Fiscal) +
		weightExternal*value(scores.External) +
		weightMonetary*value(scores.Monetary) +
		weightBanking*value(scores.Banking) +
		weightPolitical*value(scores.Political)
}

func value(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
