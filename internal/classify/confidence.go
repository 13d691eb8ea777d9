package classify

import "strings"

// Uncertain is the category reported when the model's answer is not
// trusted.
const Uncertain = "uncertain"

// Reasons attached to uncertain results.
const (
	ReasonBelowThreshold = "Confidence below threshold"
	ReasonNotInSet       = "Category not in allowed set"
	ReasonMalformed      = "Malformed classification response"
)

// DefaultThreshold is the score a label must strictly exceed.
const DefaultThreshold = 0.8

var scores = map[string]float64{
	"high":   0.9,
	"medium": 0.6,
	"low":    0.3,
}

// Score maps a confidence label to a numeric score. Matching ignores case
// and surrounding decoration; unknown or empty labels score 0.
func Score(label string) float64 {
	return scores[strings.ToLower(clean(label))]
}

// Normalize matches an extracted category against the allowed set and
// returns it in the caller's spelling.
func Normalize(category string, categories []string) (string, bool) {
	c := clean(category)
	for _, allowed := range categories {
		if strings.EqualFold(c, allowed) {
			return allowed, true
		}
	}
	return "", false
}

// clean strips the decoration models tend to copy from the response
// template, e.g. "[Negative]." or "\"high\"".
func clean(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, ".")
	s = strings.Trim(s, "[]\"'` ")
	return strings.TrimSpace(s)
}
