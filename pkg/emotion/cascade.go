package emotion

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"strings"
	"time"

	"github.com/emotunes/emotunes/pkg/emotion/detect"
	"gocv.io/x/gocv"
)

// Tier wall-clock budgets. Overrunning a budget is treated the same as
// an internal failure: the cascade advances to the next tier. gocv
// inference is not preemptible, so an overrun is detected when the
// call returns rather than interrupting it.
const (
	DefaultNeuralBudget    = 8 * time.Second
	DefaultHeuristicBudget = time.Second

	// FallbackConfidence is the fixed confidence of neutral results
	// from the heuristic and fallback tiers.
	FallbackConfidence = 0.5
)

// Cascade tries detection strategies in a fixed priority order and
// stops at the first success. Detect is total: it always produces a
// RawOutput and never propagates a tier failure.
//
// When a detector reports multiple faces only the first is used; no
// largest-face or most-confident-face selection is applied.
type Cascade struct {
	primary   detect.Analyzer
	secondary detect.Analyzer
	faces     detect.Localizer
	caps      detect.Capabilities

	neuralBudget    time.Duration
	heuristicBudget time.Duration
	logger          *slog.Logger
}

// NewCascade builds a cascade over the given backends. Availability is
// decided once via caps; a nil backend behaves like an unavailable one.
func NewCascade(primary, secondary detect.Analyzer, faces detect.Localizer, caps detect.Capabilities) *Cascade {
	return &Cascade{
		primary:         primary,
		secondary:       secondary,
		faces:           faces,
		caps:            caps,
		neuralBudget:    DefaultNeuralBudget,
		heuristicBudget: DefaultHeuristicBudget,
		logger:          slog.Default().With("component", "emotion.cascade"),
	}
}

// Detect runs the tier state machine on a prepared image. Linear, no
// backward transitions: PrimaryNeural -> SecondaryNeural -> Heuristic
// -> FixedFallback.
func (c *Cascade) Detect(ctx context.Context, img gocv.Mat) (RawOutput, Tier) {
	var reasons []string

	fail := func(tier Tier, err error) {
		te := &TierError{Tier: tier, Err: err}
		reasons = append(reasons, fmt.Sprintf("%s: %v", tier, err))
		c.logger.Warn("tier failed, trying next", "tier", tier.String(), "error", te)
	}

	// PrimaryNeural: strict face enforcement
	if c.caps.Primary && c.primary != nil {
		out, err := c.runNeural(ctx, c.primary, img)
		if err == nil && out != nil {
			return *out, TierPrimaryNeural
		}
		if err != nil {
			fail(TierPrimaryNeural, err)
		}
	} else {
		fail(TierPrimaryNeural, ErrBackendUnavailable)
	}

	// SecondaryNeural: lenient, zero faces reported explicitly
	if c.caps.Secondary && c.secondary != nil {
		out, err := c.runNeural(ctx, c.secondary, img)
		if err == nil && out != nil {
			out.Reason = strings.Join(reasons, "; ")
			return *out, TierSecondaryNeural
		}
		if err != nil {
			fail(TierSecondaryNeural, err)
		} else {
			fail(TierSecondaryNeural, detect.ErrNoFace)
		}
	} else {
		fail(TierSecondaryNeural, ErrBackendUnavailable)
	}

	// Heuristic: face presence only, no emotion classification.
	// Presence still yields the fixed neutral label by policy.
	if c.caps.Heuristic && c.faces != nil {
		start := time.Now()
		boxes, err := c.faces.Locate(img)
		if err == nil && time.Since(start) > c.heuristicBudget {
			err = ErrBudgetExceeded
		}
		switch {
		case err != nil:
			fail(TierHeuristic, err)
		case len(boxes) > 0:
			c.logger.Info("heuristic face check succeeded", "faces", len(boxes))
			return RawOutput{
				Dominant:  LabelNeutral,
				Regions:   toBoxes(boxes),
				FaceCount: len(boxes),
				Reason:    strings.Join(append(reasons, "faces detected but no emotion classifier available"), "; "),
			}, TierHeuristic
		default:
			fail(TierHeuristic, fmt.Errorf("no faces detected. %s", Suggestion(img.Cols(), img.Rows())))
		}
	} else {
		fail(TierHeuristic, ErrBackendUnavailable)
	}

	// FixedFallback: terminal, always succeeds
	return RawOutput{
		Dominant: LabelNeutral,
		Reason:   strings.Join(reasons, "; "),
	}, TierFixedFallback
}

// runNeural runs one neural tier under the wall-clock budget.
// (nil, nil) means the lenient backend explicitly reported zero faces.
func (c *Cascade) runNeural(ctx context.Context, a detect.Analyzer, img gocv.Mat) (*RawOutput, error) {
	tctx, cancel := context.WithTimeout(ctx, c.neuralBudget)
	defer cancel()

	start := time.Now()
	analyses, err := a.Analyze(tctx, img)
	if err != nil {
		return nil, err
	}
	if elapsed := time.Since(start); elapsed > c.neuralBudget {
		return nil, fmt.Errorf("%w after %s", ErrBudgetExceeded, elapsed.Round(time.Millisecond))
	}
	if len(analyses) == 0 {
		return nil, nil
	}

	if len(analyses) > 1 {
		c.logger.Info("multiple faces detected, using first", "faces", len(analyses))
	}

	// First face wins; raw float32 scores are coerced at the
	// normalization boundary.
	first := analyses[0]
	scores := make(map[string]any, len(first.Scores))
	for label, v := range first.Scores {
		scores[label] = v
	}

	regions := make([]Box, 0, len(analyses))
	for _, an := range analyses {
		regions = append(regions, Box{an.Region.Min.X, an.Region.Min.Y, an.Region.Dx(), an.Region.Dy()})
	}

	return &RawOutput{
		Dominant:  first.Dominant,
		Scores:    scores,
		Regions:   regions,
		FaceCount: len(analyses),
	}, nil
}

// Suggestion derives a remediation tip from image resolution, used
// when every detector found nothing.
func Suggestion(width, height int) string {
	var tips []string
	if width < 300 || height < 300 {
		tips = append(tips, "try using a higher resolution image")
	}
	if width > 2000 || height > 2000 {
		tips = append(tips, "very large image, consider resizing")
	}
	if len(tips) == 0 {
		return "ensure the face is clearly visible, well-lit, and facing forward"
	}
	return strings.Join(tips, "; ")
}

func toBoxes(rects []image.Rectangle) []Box {
	boxes := make([]Box, 0, len(rects))
	for _, r := range rects {
		boxes = append(boxes, Box{r.Min.X, r.Min.Y, r.Dx(), r.Dy()})
	}
	return boxes
}
