package agents

import (
	"errors"

	"github.com/suPer8Hu/client-portal/internal/ai"
)

const qaSchema = `{
  "overallScore": 7,
  "status": "pass | conditional_pass | fail",
  "summary": "Brief overview",
  "criticalIssues": ["..."],
  "recommendations": ["..."],
  "suggestions": ["..."],
  "compliance": {"legal": "pass|warning|fail", "platform": "pass|warning|fail", "brand": "pass|warning|fail"},
  "edits": [{"type": "critical|recommended|suggestion", "issue": "...", "before": "...", "after": "...", "rationale": "..."}]
}`

// QAReview is the result returned when the reviewer's output cannot be
// used. Parsed reviews are passed through as decoded JSON so that fields the
// model shapes differently are kept rather than rejected.
type QAReview struct {
	OverallScore float64 `json:"overallScore"`
	Status       string  `json:"status"`
	Summary      string  `json:"summary"`
	Error        string  `json:"error,omitempty"`
}

func parseFailure(raw string) *QAReview {
	return &QAReview{
		OverallScore: 0,
		Status:       "error",
		Summary:      "Failed to parse QA review",
		Error:        raw,
	}
}

// degradedReview is returned when the reviewer's output is not valid JSON.
func degradedReview(err error) (*QAReview, bool) {
	var de *ai.DecodeError
	if !errors.As(err, &de) {
		return nil, false
	}
	return parseFailure(de.Raw), true
}
