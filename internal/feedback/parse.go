package feedback

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/pitchperfect/pitchperfect/internal/domain"
	debuglog "github.com/pitchperfect/pitchperfect/internal/log"
)

// feedbackSchema is the strict JSON shape requested from the completion
// vendor. Field names match the feedback collection columns.
const feedbackSchema = `{
  "type": "object",
  "properties": {
    "note": {"type": "integer", "minimum": 0, "maximum": 100},
    "points_forts": {"type": "array", "items": {"type": "string"}, "maxItems": 3},
    "axes_amelioration": {"type": "array", "items": {"type": "string"}, "maxItems": 3},
    "moments_cles": {"type": "array", "items": {"type": "string"}},
    "suggestions": {"type": "array", "items": {"type": "string"}},
    "analyse_complete": {"type": "string"}
  },
  "required": ["note", "points_forts", "axes_amelioration", "moments_cles", "suggestions", "analyse_complete"],
  "additionalProperties": false
}`

var scorePattern = regexp.MustCompile(`(?i)(?:note|score).*?(\d+)`)

var fencePattern = regexp.MustCompile("(?s)^```(?:json)?\\s*(.*?)\\s*```$")

// structuredFeedback mirrors the schema above.
type structuredFeedback struct {
	Score        *int     `json:"note"`
	Strengths    []string `json:"points_forts"`
	Improvements []string `json:"axes_amelioration"`
	KeyMoments   []string `json:"moments_cles"`
	Suggestions  []string `json:"suggestions"`
	Analysis     string   `json:"analyse_complete"`
}

// ParseCompletion extracts an evaluation from the vendor's completion text.
// Structured JSON (fenced or bare) is preferred; prose falls back to a
// best-effort score search with the full text retained as the analysis.
func ParseCompletion(text string) *domain.Feedback {
	trimmed := StripFence(text)

	var structured structuredFeedback
	if err := json.Unmarshal([]byte(trimmed), &structured); err == nil && structured.Score != nil {
		fb := &domain.Feedback{
			Score:        clampScore(*structured.Score),
			Strengths:    structured.Strengths,
			Improvements: structured.Improvements,
			KeyMoments:   structured.KeyMoments,
			Suggestions:  structured.Suggestions,
			Analysis:     structured.Analysis,
		}
		if fb.Analysis == "" {
			fb.Analysis = trimmed
		}
		return fb
	}

	debuglog.Debug(debuglog.Detailed, "completion is not structured JSON, scraping prose\n")

	return &domain.Feedback{
		Score:        ExtractScore(text),
		Strengths:    []string{"Analyse générée avec succès"},
		Improvements: []string{"Continuez à pratiquer"},
		KeyMoments:   []string{"Début de conversation"},
		Suggestions:  []string{"Restez naturel et à l'écoute"},
		Analysis:     text,
	}
}

// StripFence removes a surrounding markdown code fence, if any.
func StripFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if m := fencePattern.FindStringSubmatch(trimmed); m != nil {
		return m[1]
	}
	return trimmed
}

// ExtractScore searches the completion for a note/score keyword followed by
// a number, defaulting to 75.
func ExtractScore(text string) int {
	m := scorePattern.FindStringSubmatch(text)
	if m == nil {
		return defaultScore
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return defaultScore
	}
	return clampScore(n)
}

func clampScore(n int) int {
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}
