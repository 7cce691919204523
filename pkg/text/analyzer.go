// Package text provides a keyword-based emotion heuristic for text
// input. It shares the pipeline's canonical result shape so callers
// treat both sources uniformly.
package text

import (
	"regexp"
	"strings"

	"github.com/emotunes/emotunes/pkg/emotion"
)

// directMap forces single-word explicit emotions to full confidence.
var directMap = map[string]string{
	"happy":     "happy",
	"joy":       "happy",
	"sad":       "sad",
	"angry":     "angry",
	"mad":       "angry",
	"surprise":  "surprise",
	"surprised": "surprise",
	"fear":      "fear",
	"scared":    "fear",
	"afraid":    "fear",
	"neutral":   "neutral",
}

// keywords are weaker multi-word signals per emotion.
var keywords = map[string][]string{
	"happy":    {"happy", "joy", "love", "amazing", "great", "wonderful", "excited"},
	"sad":      {"sad", "terrible", "disappointed", "bad", "unhappy", "depressed"},
	"angry":    {"angry", "mad", "hate", "frustrated", "annoyed", "upset"},
	"surprise": {"surprise", "wow", "unbelievable", "shocked"},
	"fear":     {"scared", "fear", "frightening", "afraid", "terrified"},
}

var nonLetters = regexp.MustCompile(`[^a-z]+`)

// Analyzer scores text against the canonical emotion labels.
// Deterministic and total: any input resolves to some emotion.
type Analyzer struct{}

// NewAnalyzer creates a text emotion analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Analyze maps text to a dominant emotion with a confidence score.
// Empty input is neutral at full confidence.
func (a *Analyzer) Analyze(input string) *emotion.Result {
	lower := strings.ToLower(strings.TrimSpace(input))
	if lower == "" {
		return result("neutral", 1.0)
	}

	// Single explicit emotion word wins outright
	if emo, ok := directMap[nonLetters.ReplaceAllString(lower, "")]; ok {
		return result(emo, 1.0)
	}

	best := "neutral"
	bestHits := 0
	for _, label := range emotion.Labels {
		hits := 0
		for _, kw := range keywords[label] {
			if strings.Contains(lower, kw) {
				hits++
			}
		}
		if hits > bestHits {
			bestHits = hits
			best = label
		}
	}

	if bestHits == 0 {
		return result("neutral", 0.5)
	}

	// More matched signals mean more confidence, capped below certainty
	confidence := 0.6 + 0.1*float64(bestHits)
	if confidence > 0.9 {
		confidence = 0.9
	}
	return result(best, confidence)
}

func result(label string, confidence float64) *emotion.Result {
	raw := emotion.RawOutput{Dominant: label}
	res := emotion.Normalize(raw, emotion.TierHeuristic, nil)
	res.Confidence = confidence
	res.Method = "text_keywords"
	return res
}
