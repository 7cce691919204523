// Package detect provides face localization and emotion classification
// backends built on OpenCV.
package detect

import (
	"context"
	"errors"
	"image"
	"os"

	"gocv.io/x/gocv"
)

// Sentinel errors for common conditions.
var (
	// ErrNoFace is returned by strict analyzers when no face is found.
	ErrNoFace = errors.New("detect: no face detected")

	// ErrModelNotFound is returned when a model file is missing.
	ErrModelNotFound = errors.New("detect: model file not found")

	// ErrEmptyImage is returned when the input image has no data.
	ErrEmptyImage = errors.New("detect: empty image")
)

// Emotion labels in the order the classification net emits them.
var Labels = []string{"angry", "disgust", "fear", "happy", "sad", "surprise", "neutral"}

// Analysis is a single face with its emotion scores.
// Scores are on a 0-100 percent scale, in the net's native float32.
type Analysis struct {
	Dominant string
	Scores   map[string]float32
	Region   image.Rectangle
}

// Analyzer runs face localization plus emotion classification.
type Analyzer interface {
	// Analyze finds faces and classifies each one. A strict analyzer
	// errors when no face is found; a lenient one returns an empty
	// slice with a nil error.
	Analyze(ctx context.Context, img gocv.Mat) ([]Analysis, error)

	// Close releases resources
	Close() error
}

// Localizer finds face bounding boxes in an image.
type Localizer interface {
	// Locate returns face boxes in pixel coordinates, in detector order.
	Locate(img gocv.Mat) ([]image.Rectangle, error)

	// Close releases resources
	Close() error
}

// Config holds backend model locations and thresholds.
type Config struct {
	YuNetModelPath   string  // ONNX face detector
	EmotionModelPath string  // ONNX emotion classifier
	HaarCascadePath  string  // frontal-face cascade XML
	ConfidenceThresh float64 // minimum face score (default 0.5)
	EmotionInputSize int     // classifier input edge in pixels
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		YuNetModelPath:   "models/face_detection_yunet.onnx",
		EmotionModelPath: "models/emotion_cnn.onnx",
		HaarCascadePath:  "models/haarcascade_frontalface_default.xml",
		ConfidenceThresh: 0.5,
		EmotionInputSize: 64,
	}
}

// Capabilities records which backends can run. Populated once at
// startup and treated as immutable afterwards.
type Capabilities struct {
	Primary   bool // YuNet localization + emotion net
	Secondary bool // Haar localization + emotion net
	Heuristic bool // Haar face presence only
}

// Probe checks model files once and reports which backends are usable.
// A backend missing here is treated the same as one failing at runtime.
func Probe(cfg Config) Capabilities {
	yunet := fileExists(cfg.YuNetModelPath)
	emotion := fileExists(cfg.EmotionModelPath)
	haar := fileExists(cfg.HaarCascadePath)

	return Capabilities{
		Primary:   yunet && emotion,
		Secondary: haar && emotion,
		Heuristic: haar,
	}
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}
