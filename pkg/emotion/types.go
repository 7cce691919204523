// Package emotion implements the emotion-detection fallback pipeline:
// image admission, adaptive preprocessing, a tiered detection cascade,
// and normalization into one canonical result shape.
package emotion

import "time"

// Labels is the canonical emotion vocabulary. Every distribution
// contains all seven, regardless of which detector produced it.
var Labels = []string{"angry", "disgust", "fear", "happy", "sad", "surprise", "neutral"}

// LabelNeutral is the label emitted by the heuristic and fallback tiers.
const LabelNeutral = "neutral"

// Tier identifies which detection strategy produced a result.
// The cascade always attempts tiers in this order and stops at the
// first success.
type Tier int

const (
	TierPrimaryNeural Tier = iota
	TierSecondaryNeural
	TierHeuristic
	TierFixedFallback
)

// String returns the wire name of the tier.
func (t Tier) String() string {
	switch t {
	case TierPrimaryNeural:
		return "primary_neural"
	case TierSecondaryNeural:
		return "secondary_neural"
	case TierHeuristic:
		return "heuristic"
	case TierFixedFallback:
		return "fixed_fallback"
	default:
		return "unknown"
	}
}

// Classifier reports whether results from this tier carry real
// classifier scores, as opposed to the fixed neutral mass.
func (t Tier) Classifier() bool {
	return t == TierPrimaryNeural || t == TierSecondaryNeural
}

// Descriptor holds image measurements taken once during admission.
// Immutable; attached to the final result for diagnostics.
type Descriptor struct {
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	SizeBytes   int64   `json:"file_size_bytes"`
	Format      string  `json:"format"`
	Channels    int     `json:"channels"`
	AspectRatio float64 `json:"aspect_ratio"`
}

// Box is a face bounding box as x, y, width, height in pixels.
type Box [4]int

// RawOutput is a tier's native result before normalization. Scores are
// heterogeneous (backend-native numeric types on a 0-100 scale) and
// never leave the pipeline unconverted.
type RawOutput struct {
	Dominant  string
	Scores    map[string]any
	Regions   []Box
	FaceCount int
	Reason    string
}

// Result is the canonical record crossing the pipeline boundary.
type Result struct {
	Emotion      string             `json:"emotion"`
	Confidence   float64            `json:"confidence"`
	Distribution map[string]float64 `json:"all_emotions"`
	Method       string             `json:"method"`
	FaceRegions  []Box              `json:"face_regions,omitempty"`
	Diagnostics  string             `json:"reason,omitempty"`
	ImageInfo    *Descriptor        `json:"image_info,omitempty"`
	Timestamp    time.Time          `json:"timestamp"`
}
