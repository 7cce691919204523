package emotion

import "time"

// Normalize converts a tier's native output into the canonical result
// shape. Confidence is a fraction in [0,1]; the distribution carries
// all seven labels on a 0-100 scale with absent labels zero-filled.
// The timestamp is assigned here, not at cascade entry.
func Normalize(raw RawOutput, tier Tier, info *Descriptor) *Result {
	dominant := raw.Dominant
	if dominant == "" {
		dominant = LabelNeutral
	}

	dist := make(map[string]float64, len(Labels))

	var confidence float64
	if tier.Classifier() {
		for _, label := range Labels {
			dist[label] = clamp(ToFloat64(raw.Scores[label]), 0, 100)
		}
		confidence = clamp(dist[dominant]/100, 0, 1)
	} else {
		// Heuristic and fallback tiers carry the fixed neutral mass
		for _, label := range Labels {
			if label == dominant {
				dist[label] = 100
			} else {
				dist[label] = 0
			}
		}
		confidence = FallbackConfidence
	}

	return &Result{
		Emotion:      dominant,
		Confidence:   confidence,
		Distribution: dist,
		Method:       tier.String(),
		FaceRegions:  raw.Regions,
		Diagnostics:  raw.Reason,
		ImageInfo:    info,
		Timestamp:    time.Now(),
	}
}

// Coerce converts backend-native numeric containers into plain Go
// primitives, recursively over nested maps and sequences. It is total:
// values it does not recognize pass through unchanged.
func Coerce(v any) any {
	switch x := v.(type) {
	case float32:
		return float64(x)
	case int:
		return float64(x)
	case int8:
		return float64(x)
	case int16:
		return float64(x)
	case int32:
		return float64(x)
	case int64:
		return float64(x)
	case uint:
		return float64(x)
	case uint8:
		return float64(x)
	case uint16:
		return float64(x)
	case uint32:
		return float64(x)
	case uint64:
		return float64(x)
	case []float32:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = float64(e)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = Coerce(e)
		}
		return out
	case map[string]float32:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = float64(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = Coerce(e)
		}
		return out
	default:
		return v
	}
}

// ToFloat64 reduces any backend-native numeric value to a float64.
// Non-numeric or missing values become 0.
func ToFloat64(v any) float64 {
	switch x := Coerce(v).(type) {
	case float64:
		return x
	default:
		return 0
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
