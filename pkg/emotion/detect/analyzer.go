package detect

import (
	"context"
	"fmt"

	"gocv.io/x/gocv"
)

// NetAnalyzer composes a face localizer with the emotion net.
// Strict analyzers error when no face is found; lenient ones report
// zero faces as an empty result.
type NetAnalyzer struct {
	name   string
	loc    Localizer
	net    *EmotionNet
	strict bool
}

// NewNetAnalyzer creates an analyzer over the given localizer and net.
func NewNetAnalyzer(name string, loc Localizer, net *EmotionNet, strict bool) *NetAnalyzer {
	return &NetAnalyzer{
		name:   name,
		loc:    loc,
		net:    net,
		strict: strict,
	}
}

// Name identifies the backend in logs and diagnostics.
func (a *NetAnalyzer) Name() string {
	return a.name
}

// Analyze finds faces and classifies each one. Faces come back in
// detector order.
func (a *NetAnalyzer) Analyze(ctx context.Context, img gocv.Mat) ([]Analysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	boxes, err := a.loc.Locate(img)
	if err != nil {
		return nil, fmt.Errorf("%s: locate: %w", a.name, err)
	}

	if len(boxes) == 0 {
		if a.strict {
			return nil, fmt.Errorf("%s: %w", a.name, ErrNoFace)
		}
		return nil, nil // lenient: zero faces reported explicitly
	}

	var analyses []Analysis
	var lastErr error
	for _, box := range boxes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		scores, dominant, err := a.net.Classify(img, box)
		if err != nil {
			lastErr = err
			continue
		}

		analyses = append(analyses, Analysis{
			Dominant: dominant,
			Scores:   scores,
			Region:   box,
		})
	}

	if len(analyses) == 0 {
		return nil, fmt.Errorf("%s: classify: %w", a.name, lastErr)
	}

	return analyses, nil
}

// Close releases the localizer. The emotion net is shared between
// analyzers and closed by its owner.
func (a *NetAnalyzer) Close() error {
	return a.loc.Close()
}

// Verify NetAnalyzer implements Analyzer at compile time.
var _ Analyzer = (*NetAnalyzer)(nil)
