package emotion

import (
	"context"
	"log/slog"

	"gocv.io/x/gocv"
)

// Pipeline is the full detection call chain: admission, preprocessing,
// cascade, normalization. Each invocation is self-contained; the only
// state shared between invocations is the read-only detector backends.
//
// The only error a Pipeline method returns is *AdmissionError, raised
// before any detection work begins. Everything downstream is total.
type Pipeline struct {
	pre     *Preprocessor
	cascade *Cascade
	logger  *slog.Logger
}

// NewPipeline wires a preprocessor and cascade into a pipeline.
func NewPipeline(pre *Preprocessor, cascade *Cascade) *Pipeline {
	return &Pipeline{
		pre:     pre,
		cascade: cascade,
		logger:  slog.Default().With("component", "emotion.pipeline"),
	}
}

// DetectFromImage analyzes a persisted image file.
func (p *Pipeline) DetectFromImage(ctx context.Context, path string) (*Result, error) {
	desc, err := Validate(path)
	if err != nil {
		p.logger.Info("image rejected at admission", "path", path, "error", err)
		return nil, err
	}

	p.logger.Info("image admitted",
		"width", desc.Width,
		"height", desc.Height,
		"size_bytes", desc.SizeBytes,
		"format", desc.Format,
	)

	workPath, cleanup := p.pre.PrepareFile(path, desc)
	defer cleanup()

	img := gocv.IMRead(workPath, gocv.IMReadColor)
	defer img.Close()
	if img.Empty() {
		// Admission decoded this image moments ago; treat a re-read
		// failure as cascade exhaustion, not a caller error.
		raw := RawOutput{Dominant: LabelNeutral, Reason: "could not re-read working image"}
		return Normalize(raw, TierFixedFallback, desc), nil
	}

	raw, tier := p.cascade.Detect(ctx, img)
	result := Normalize(raw, tier, desc)

	p.logger.Info("detection complete",
		"emotion", result.Emotion,
		"confidence", result.Confidence,
		"method", result.Method,
	)
	return result, nil
}

// DetectFromFrame analyzes an in-memory decoded frame (BGR, 8-bit).
// Invalid frames resolve to the fixed fallback rather than an error.
func (p *Pipeline) DetectFromFrame(ctx context.Context, frame gocv.Mat) (*Result, error) {
	if err := ValidateFrame(frame); err != nil {
		raw := RawOutput{Dominant: LabelNeutral, Reason: "invalid frame provided"}
		return Normalize(raw, TierFixedFallback, nil), nil
	}

	work, release := p.pre.PrepareFrame(frame)
	defer release()

	raw, tier := p.cascade.Detect(ctx, work)
	result := Normalize(raw, tier, nil)

	p.logger.Debug("frame detection complete",
		"emotion", result.Emotion,
		"method", result.Method,
	)
	return result, nil
}

// Fallback returns the fixed neutral result with the given reason.
// Used by callers that must answer even when the pipeline itself
// cannot be invoked.
func Fallback(reason string) *Result {
	return Normalize(RawOutput{Dominant: LabelNeutral, Reason: reason}, TierFixedFallback, nil)
}
