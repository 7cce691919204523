package emotion

import (
	"log/slog"

	"github.com/emotunes/emotunes/pkg/emotion/detect"
)

// Build constructs a pipeline from detector config. Backend
// availability is probed once here; a backend that is missing or fails
// to load disables its tiers for the life of the process, it is never
// re-checked per request. Build never fails: with no backends at all
// the pipeline still answers from the fixed fallback tier.
func Build(cfg detect.Config, tempDir string) (*Pipeline, detect.Capabilities) {
	logger := slog.Default().With("component", "emotion.setup")
	caps := detect.Probe(cfg)

	var net *detect.EmotionNet
	if caps.Primary || caps.Secondary {
		var err error
		net, err = detect.NewEmotionNet(cfg.EmotionModelPath, cfg.EmotionInputSize)
		if err != nil {
			logger.Error("emotion net unavailable", "error", err)
			caps.Primary = false
			caps.Secondary = false
		}
	}

	var primary detect.Analyzer
	if caps.Primary {
		yunet, err := detect.NewYuNet(cfg.YuNetModelPath, cfg.ConfidenceThresh)
		if err != nil {
			logger.Error("yunet backend unavailable", "error", err)
			caps.Primary = false
		} else {
			primary = detect.NewNetAnalyzer("yunet", yunet, net, true)
		}
	}

	var secondary detect.Analyzer
	var faces detect.Localizer
	if caps.Secondary || caps.Heuristic {
		haar, err := detect.NewHaar(cfg.HaarCascadePath)
		if err != nil {
			logger.Error("haar cascade unavailable", "error", err)
			caps.Secondary = false
			caps.Heuristic = false
		} else {
			faces = haar
			if caps.Secondary {
				secondary = detect.NewNetAnalyzer("haar", haar, net, false)
			}
		}
	}

	logger.Info("detection backends probed",
		"primary", caps.Primary,
		"secondary", caps.Secondary,
		"heuristic", caps.Heuristic,
	)

	cascade := NewCascade(primary, secondary, faces, caps)
	return NewPipeline(NewPreprocessor(tempDir), cascade), caps
}
