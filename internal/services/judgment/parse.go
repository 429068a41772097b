package judgment

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ternarybob/sovran/internal/models"
)

// ParseJudgment decodes the model's response into a Judgment. The model is
// told to return bare JSON but sometimes wraps it in a markdown fence or
// leads with prose; both are tolerated. A grade outside the fixed scale is
// rejected with models.ErrInvalidJudgment, an invalid outlook is normalized
// to the default.
func ParseJudgment(raw string) (*models.Judgment, error) {
	payload := extractJSON(raw)
	if payload == "" {
		return nil, fmt.Errorf("%w: response contained no JSON object", models.ErrInvalidJudgment)
	}

	var judgment models.Judgment
	if err := json.Unmarshal([]byte(payload), &judgment); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidJudgment, err)
	}

	judgment.Grade = strings.TrimSpace(judgment.Grade)
	if !models.IsValidGrade(judgment.Grade) {
		return nil, fmt.Errorf("%w: grade %q is not on the rating scale", models.ErrInvalidJudgment, judgment.Grade)
	}

	judgment.Outlook = models.NormalizeOutlook(strings.TrimSpace(judgment.Outlook))

	if judgment.PillarAnalysis == nil {
		judgment.PillarAnalysis = map[string]models.PillarAnalysis{}
	}

	return &judgment, nil
}

// extractJSON strips markdown fences and surrounding prose, returning the
// outermost JSON object.
func extractJSON(raw string) string {
	text := strings.TrimSpace(raw)

	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return ""
	}
	return text[start : end+1]
}
