package emotion

import (
	"context"
	"errors"
	"image"
	"strings"
	"testing"
	"time"

	"gocv.io/x/gocv"

	"github.com/emotunes/emotunes/pkg/emotion/detect"
)

func testMat(t *testing.T) gocv.Mat {
	t.Helper()
	mat := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	t.Cleanup(func() { mat.Close() })
	return mat
}

func happyAnalysis() detect.Analysis {
	return detect.Analysis{
		Dominant: "happy",
		Scores:   map[string]float32{"happy": 85.5, "neutral": 10.0, "sad": 4.5},
		Region:   image.Rect(100, 100, 200, 200),
	}
}

func allCaps() detect.Capabilities {
	return detect.Capabilities{Primary: true, Secondary: true, Heuristic: true}
}

// TestCascadePrimarySuccess verifies the first tier wins when the
// primary backend finds a face.
func TestCascadePrimarySuccess(t *testing.T) {
	primary := &detect.Mock{
		AnalyzeFunc: func(ctx context.Context, img gocv.Mat) ([]detect.Analysis, error) {
			return []detect.Analysis{happyAnalysis()}, nil
		},
	}

	cascade := NewCascade(primary, &detect.Mock{}, &detect.Mock{}, allCaps())

	raw, tier := cascade.Detect(context.Background(), testMat(t))
	if tier != TierPrimaryNeural {
		t.Fatalf("Expected primary tier, got %s", tier)
	}
	if raw.Dominant != "happy" {
		t.Errorf("Expected happy, got %q", raw.Dominant)
	}
	if raw.FaceCount != 1 {
		t.Errorf("Expected 1 face, got %d", raw.FaceCount)
	}

	result := Normalize(raw, tier, nil)
	if result.Method != "primary_neural" {
		t.Errorf("Expected primary_neural method, got %q", result.Method)
	}
	if result.Confidence < 0.85 || result.Confidence > 0.86 {
		t.Errorf("Expected confidence 0.855, got %v", result.Confidence)
	}
}

// TestCascadeSecondaryFallback verifies a primary failure degrades to
// the secondary tier and the failure reason reaches diagnostics.
func TestCascadeSecondaryFallback(t *testing.T) {
	primary := &detect.Mock{
		AnalyzeFunc: func(ctx context.Context, img gocv.Mat) ([]detect.Analysis, error) {
			return nil, errors.New("backend crashed")
		},
	}
	secondary := &detect.Mock{
		AnalyzeFunc: func(ctx context.Context, img gocv.Mat) ([]detect.Analysis, error) {
			return []detect.Analysis{happyAnalysis()}, nil
		},
	}

	cascade := NewCascade(primary, secondary, &detect.Mock{}, allCaps())

	raw, tier := cascade.Detect(context.Background(), testMat(t))
	if tier != TierSecondaryNeural {
		t.Fatalf("Expected secondary tier, got %s", tier)
	}
	if !strings.Contains(raw.Reason, "backend crashed") {
		t.Errorf("Expected primary failure in diagnostics, got %q", raw.Reason)
	}
	if got := primary.Calls(); len(got) != 1 || got[0] != "Analyze" {
		t.Errorf("Expected one primary Analyze call, got %v", got)
	}
	if got := secondary.Calls(); len(got) != 1 || got[0] != "Analyze" {
		t.Errorf("Expected one secondary Analyze call, got %v", got)
	}
}

// TestCascadeNeuralBudgetOverrun verifies a neural backend that
// overruns its wall-clock budget is treated as failed even when it
// eventually returns a result.
func TestCascadeNeuralBudgetOverrun(t *testing.T) {
	slow := &detect.Mock{
		AnalyzeFunc: func(ctx context.Context, img gocv.Mat) ([]detect.Analysis, error) {
			time.Sleep(30 * time.Millisecond)
			return []detect.Analysis{happyAnalysis()}, nil
		},
	}
	fast := &detect.Mock{
		AnalyzeFunc: func(ctx context.Context, img gocv.Mat) ([]detect.Analysis, error) {
			return []detect.Analysis{happyAnalysis()}, nil
		},
	}

	cascade := NewCascade(slow, fast, &detect.Mock{}, allCaps())
	cascade.neuralBudget = 5 * time.Millisecond

	raw, tier := cascade.Detect(context.Background(), testMat(t))
	if tier != TierSecondaryNeural {
		t.Fatalf("Expected overrun to advance to secondary tier, got %s", tier)
	}
	if !strings.Contains(raw.Reason, "budget exceeded") {
		t.Errorf("Expected overrun in diagnostics, got %q", raw.Reason)
	}
}

// TestCascadeHeuristicBudgetOverrun verifies a slow presence check is
// discarded and the cascade bottoms out at the fixed fallback.
func TestCascadeHeuristicBudgetOverrun(t *testing.T) {
	noFace := &detect.Mock{
		AnalyzeFunc: func(ctx context.Context, img gocv.Mat) ([]detect.Analysis, error) {
			return nil, detect.ErrNoFace
		},
	}
	lenient := &detect.Mock{
		AnalyzeFunc: func(ctx context.Context, img gocv.Mat) ([]detect.Analysis, error) {
			return nil, nil
		},
	}
	slowFaces := &detect.Mock{
		LocateFunc: func(img gocv.Mat) ([]image.Rectangle, error) {
			time.Sleep(30 * time.Millisecond)
			return []image.Rectangle{image.Rect(10, 10, 60, 60)}, nil
		},
	}

	cascade := NewCascade(noFace, lenient, slowFaces, allCaps())
	cascade.heuristicBudget = 5 * time.Millisecond

	raw, tier := cascade.Detect(context.Background(), testMat(t))
	if tier != TierFixedFallback {
		t.Fatalf("Expected overrun to reach the fixed fallback, got %s", tier)
	}
	if raw.Dominant != LabelNeutral {
		t.Errorf("Expected neutral, got %q", raw.Dominant)
	}
	if !strings.Contains(raw.Reason, "budget exceeded") {
		t.Errorf("Expected overrun in diagnostics, got %q", raw.Reason)
	}
	if got := slowFaces.Calls(); len(got) != 1 || got[0] != "Locate" {
		t.Errorf("Expected one Locate call, got %v", got)
	}
}

// TestCascadeHeuristicFaces verifies face presence without a
// classifier yields neutral with the boxes attached.
func TestCascadeHeuristicFaces(t *testing.T) {
	noFace := &detect.Mock{
		AnalyzeFunc: func(ctx context.Context, img gocv.Mat) ([]detect.Analysis, error) {
			return nil, detect.ErrNoFace
		},
	}
	lenient := &detect.Mock{
		AnalyzeFunc: func(ctx context.Context, img gocv.Mat) ([]detect.Analysis, error) {
			return nil, nil // zero faces, reported explicitly
		},
	}
	faces := &detect.Mock{
		LocateFunc: func(img gocv.Mat) ([]image.Rectangle, error) {
			return []image.Rectangle{image.Rect(10, 10, 60, 60)}, nil
		},
	}

	cascade := NewCascade(noFace, lenient, faces, allCaps())

	raw, tier := cascade.Detect(context.Background(), testMat(t))
	if tier != TierHeuristic {
		t.Fatalf("Expected heuristic tier, got %s", tier)
	}
	if raw.Dominant != LabelNeutral {
		t.Errorf("Expected neutral, got %q", raw.Dominant)
	}
	if raw.FaceCount != 1 || len(raw.Regions) != 1 {
		t.Errorf("Expected 1 face region, got count=%d regions=%d", raw.FaceCount, len(raw.Regions))
	}
	if raw.Regions[0] != (Box{10, 10, 50, 50}) {
		t.Errorf("Unexpected box: %v", raw.Regions[0])
	}
}

// TestCascadeExhaustion verifies a faceless image bottoms out at the
// fixed fallback with neutral at 0.5.
func TestCascadeExhaustion(t *testing.T) {
	noFace := &detect.Mock{
		AnalyzeFunc: func(ctx context.Context, img gocv.Mat) ([]detect.Analysis, error) {
			return nil, detect.ErrNoFace
		},
	}
	lenient := &detect.Mock{
		AnalyzeFunc: func(ctx context.Context, img gocv.Mat) ([]detect.Analysis, error) {
			return nil, nil
		},
	}
	faces := &detect.Mock{
		LocateFunc: func(img gocv.Mat) ([]image.Rectangle, error) {
			return nil, nil
		},
	}

	cascade := NewCascade(noFace, lenient, faces, allCaps())

	raw, tier := cascade.Detect(context.Background(), testMat(t))
	if tier != TierFixedFallback {
		t.Fatalf("Expected fallback tier, got %s", tier)
	}

	result := Normalize(raw, tier, nil)
	if result.Emotion != LabelNeutral {
		t.Errorf("Expected neutral, got %q", result.Emotion)
	}
	if result.Confidence != 0.5 {
		t.Errorf("Expected confidence 0.5, got %v", result.Confidence)
	}
	if result.Method != "fixed_fallback" {
		t.Errorf("Expected fixed_fallback method, got %q", result.Method)
	}
	if result.Diagnostics == "" {
		t.Error("Expected diagnostics explaining the exhaustion")
	}
}

// TestCascadeNoBackends verifies the cascade still answers with every
// backend unavailable.
func TestCascadeNoBackends(t *testing.T) {
	cascade := NewCascade(nil, nil, nil, detect.Capabilities{})

	raw, tier := cascade.Detect(context.Background(), testMat(t))
	if tier != TierFixedFallback {
		t.Fatalf("Expected fallback tier, got %s", tier)
	}
	if raw.Dominant != LabelNeutral {
		t.Errorf("Expected neutral, got %q", raw.Dominant)
	}
	if !strings.Contains(raw.Reason, "unavailable") {
		t.Errorf("Expected unavailability in diagnostics, got %q", raw.Reason)
	}
}

// TestCascadeDeterminism verifies repeated invocations pick the same
// tier and emotion.
func TestCascadeDeterminism(t *testing.T) {
	cascade := NewCascade(nil, nil, nil, detect.Capabilities{})
	mat := testMat(t)

	first, firstTier := cascade.Detect(context.Background(), mat)
	for i := 0; i < 5; i++ {
		raw, tier := cascade.Detect(context.Background(), mat)
		if tier != firstTier || raw.Dominant != first.Dominant {
			t.Fatalf("Nondeterministic result on run %d: %s/%s vs %s/%s",
				i, tier, raw.Dominant, firstTier, first.Dominant)
		}
	}
}

// TestCascadeFirstFaceWins verifies the documented first-face policy
// with multiple detections.
func TestCascadeFirstFaceWins(t *testing.T) {
	primary := &detect.Mock{
		AnalyzeFunc: func(ctx context.Context, img gocv.Mat) ([]detect.Analysis, error) {
			second := happyAnalysis()
			second.Dominant = "sad"
			return []detect.Analysis{happyAnalysis(), second}, nil
		},
	}

	cascade := NewCascade(primary, nil, nil, detect.Capabilities{Primary: true})

	raw, tier := cascade.Detect(context.Background(), testMat(t))
	if tier != TierPrimaryNeural {
		t.Fatalf("Expected primary tier, got %s", tier)
	}
	if raw.Dominant != "happy" {
		t.Errorf("Expected first face's emotion, got %q", raw.Dominant)
	}
	if raw.FaceCount != 2 || len(raw.Regions) != 2 {
		t.Errorf("Expected both regions reported, got count=%d regions=%d", raw.FaceCount, len(raw.Regions))
	}
}

// TestSuggestion verifies resolution-derived remediation text.
func TestSuggestion(t *testing.T) {
	if s := Suggestion(200, 150); !strings.Contains(s, "higher resolution") {
		t.Errorf("Small image should suggest higher resolution, got %q", s)
	}
	if s := Suggestion(3000, 2400); !strings.Contains(s, "consider resizing") {
		t.Errorf("Large image should suggest resizing, got %q", s)
	}
	if s := Suggestion(640, 480); !strings.Contains(s, "well-lit") {
		t.Errorf("Normal image should get the generic tip, got %q", s)
	}
}
