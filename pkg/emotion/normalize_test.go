package emotion

import (
	"math"
	"testing"
)

// TestNormalizeCompleteness verifies every canonical label is present
// even when the raw scores omit most of them.
func TestNormalizeCompleteness(t *testing.T) {
	raw := RawOutput{
		Dominant: "happy",
		Scores: map[string]any{
			"happy": float32(85.5),
			"sad":   float32(4.5),
		},
	}

	result := Normalize(raw, TierPrimaryNeural, nil)

	if len(result.Distribution) != len(Labels) {
		t.Fatalf("Expected %d labels, got %d", len(Labels), len(result.Distribution))
	}
	for _, label := range Labels {
		if _, ok := result.Distribution[label]; !ok {
			t.Errorf("Missing label %q in distribution", label)
		}
	}
	if result.Distribution["angry"] != 0 {
		t.Errorf("Absent label should be zero-filled, got %v", result.Distribution["angry"])
	}
}

// TestNormalizeConfidenceScale verifies percent-scale scores become a
// [0,1] fraction exactly once.
func TestNormalizeConfidenceScale(t *testing.T) {
	raw := RawOutput{
		Dominant: "happy",
		Scores:   map[string]any{"happy": float32(85.5)},
	}

	result := Normalize(raw, TierPrimaryNeural, nil)

	if math.Abs(result.Confidence-0.855) > 1e-6 {
		t.Errorf("Expected confidence 0.855, got %v", result.Confidence)
	}
	if math.Abs(result.Distribution["happy"]-85.5) > 1e-6 {
		t.Errorf("Distribution should stay percent-scale, got %v", result.Distribution["happy"])
	}
}

// TestNormalizeConfidenceClamped verifies out-of-range scores are
// clamped rather than propagated.
func TestNormalizeConfidenceClamped(t *testing.T) {
	raw := RawOutput{
		Dominant: "happy",
		Scores:   map[string]any{"happy": float32(150.0)},
	}

	result := Normalize(raw, TierPrimaryNeural, nil)

	if result.Confidence != 1.0 {
		t.Errorf("Expected confidence clamped to 1.0, got %v", result.Confidence)
	}
}

// TestNormalizeFallbackMass verifies heuristic and fallback tiers get
// the fixed neutral mass and confidence.
func TestNormalizeFallbackMass(t *testing.T) {
	for _, tier := range []Tier{TierHeuristic, TierFixedFallback} {
		result := Normalize(RawOutput{Dominant: LabelNeutral}, tier, nil)

		if result.Emotion != LabelNeutral {
			t.Errorf("[%s] Expected neutral, got %q", tier, result.Emotion)
		}
		if result.Confidence != FallbackConfidence {
			t.Errorf("[%s] Expected confidence %v, got %v", tier, FallbackConfidence, result.Confidence)
		}
		if result.Distribution[LabelNeutral] != 100 {
			t.Errorf("[%s] Expected full mass on neutral, got %v", tier, result.Distribution[LabelNeutral])
		}
		for _, label := range Labels {
			if label != LabelNeutral && result.Distribution[label] != 0 {
				t.Errorf("[%s] Expected zero mass on %q, got %v", tier, label, result.Distribution[label])
			}
		}
	}
}

// TestNormalizeEmptyDominant verifies a missing dominant label
// defaults to neutral.
func TestNormalizeEmptyDominant(t *testing.T) {
	result := Normalize(RawOutput{}, TierFixedFallback, nil)
	if result.Emotion != LabelNeutral {
		t.Errorf("Expected neutral default, got %q", result.Emotion)
	}
}

// TestNormalizeTimestampAssigned verifies the timestamp is set at
// normalization time.
func TestNormalizeTimestampAssigned(t *testing.T) {
	result := Normalize(RawOutput{Dominant: LabelNeutral}, TierFixedFallback, nil)
	if result.Timestamp.IsZero() {
		t.Error("Expected timestamp to be assigned")
	}
}

// TestCoerceRecursive verifies backend-native containers reduce to
// plain primitives at any nesting depth.
func TestCoerceRecursive(t *testing.T) {
	in := map[string]any{
		"scores": map[string]float32{"happy": 85.5},
		"counts": []any{int32(3), uint8(7)},
		"tensor": []float32{0.1, 0.9},
		"label":  "happy",
	}

	out, ok := Coerce(in).(map[string]any)
	if !ok {
		t.Fatalf("Expected map[string]any, got %T", Coerce(in))
	}

	scores, ok := out["scores"].(map[string]any)
	if !ok {
		t.Fatalf("Expected nested map coerced, got %T", out["scores"])
	}
	if _, ok := scores["happy"].(float64); !ok {
		t.Errorf("Expected float64, got %T", scores["happy"])
	}

	counts, ok := out["counts"].([]any)
	if !ok {
		t.Fatalf("Expected []any, got %T", out["counts"])
	}
	for i, v := range counts {
		if _, ok := v.(float64); !ok {
			t.Errorf("counts[%d]: expected float64, got %T", i, v)
		}
	}

	tensor, ok := out["tensor"].([]any)
	if !ok || len(tensor) != 2 {
		t.Fatalf("Expected coerced tensor, got %T", out["tensor"])
	}

	if out["label"] != "happy" {
		t.Errorf("Non-numeric value should pass through, got %v", out["label"])
	}
}

// TestToFloat64 verifies the scalar reduction is total.
func TestToFloat64(t *testing.T) {
	cases := []struct {
		in   any
		want float64
	}{
		{float32(85.5), 85.5},
		{float64(42.0), 42.0},
		{int(7), 7},
		{int64(-3), -3},
		{uint16(9), 9},
		{"not a number", 0},
		{nil, 0},
	}

	for _, tc := range cases {
		if got := ToFloat64(tc.in); math.Abs(got-tc.want) > 1e-6 {
			t.Errorf("ToFloat64(%v): expected %v, got %v", tc.in, tc.want, got)
		}
	}
}

// TestTierStrings verifies the wire names.
func TestTierStrings(t *testing.T) {
	cases := map[Tier]string{
		TierPrimaryNeural:   "primary_neural",
		TierSecondaryNeural: "secondary_neural",
		TierHeuristic:       "heuristic",
		TierFixedFallback:   "fixed_fallback",
	}
	for tier, want := range cases {
		if tier.String() != want {
			t.Errorf("Expected %q, got %q", want, tier.String())
		}
	}

	if !TierPrimaryNeural.Classifier() || !TierSecondaryNeural.Classifier() {
		t.Error("Neural tiers should be classifiers")
	}
	if TierHeuristic.Classifier() || TierFixedFallback.Classifier() {
		t.Error("Heuristic and fallback tiers should not be classifiers")
	}
}
