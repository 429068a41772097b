package news

import "strings"

// positiveTerms and negativeTerms are the fixed sentiment lexicons. Scoring
// is deliberately crude: headlines are short and the score only nudges the
// evidence bundle, it never decides a rating on its own.
var positiveTerms = []string{
	"growth", "surplus", "reform", "upgrade", "recovery", "boom",
	"expansion", "investment", "strong", "positive", "gdp",
}

var negativeTerms = []string{
	"crisis", "default", "downgrade", "recession", "sanctions", "debt",
	"collapse", "inflation", "protest", "instability", "war", "conflict",
	"deficit", "bailout",
}

// ScoreHeadline returns a lexical sentiment score in [-1, 1]. Each lexicon
// term counts at most once per headline.
func ScoreHeadline(headline string) float64 {
	lower := strings.ToLower(headline)

	score := 0.0
	for _, term := range positiveTerms {
		if strings.Contains(lower, term) {
			score++
		}
	}
	for _, term := range negativeTerms {
		if strings.Contains(lower, term) {
			score--
		}
	}

	score /= 3.0
	if score > 1 {
		return 1
	}
	if score < -1 {
		return -1
	}
	return score
}
