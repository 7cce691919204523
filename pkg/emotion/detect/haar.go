package detect

import (
	"fmt"
	"image"
	"os"
	"sync"

	"gocv.io/x/gocv"
)

// Haar cascade parameters. Fixed so the presence check stays
// deterministic for a given image buffer.
const (
	haarScaleFactor  = 1.1
	haarMinNeighbors = 5
	haarMinFaceSize  = 30
)

// HaarLocalizer is a cheap geometric frontal-face check. It backs the
// lenient secondary tier and the heuristic presence tier.
type HaarLocalizer struct {
	cascade gocv.CascadeClassifier
	mu      sync.Mutex // Protects inference
}

// NewHaar loads a frontal-face cascade from XML.
func NewHaar(cascadePath string) (*HaarLocalizer, error) {
	if _, err := os.Stat(cascadePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrModelNotFound, cascadePath)
	}

	cascade := gocv.NewCascadeClassifier()
	if !cascade.Load(cascadePath) {
		cascade.Close()
		return nil, fmt.Errorf("detect: cascade could not be loaded from %s", cascadePath)
	}

	return &HaarLocalizer{cascade: cascade}, nil
}

// Locate finds frontal faces and returns their boxes in pixel
// coordinates, in detector order. No retries.
func (l *HaarLocalizer) Locate(img gocv.Mat) ([]image.Rectangle, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if img.Empty() {
		return nil, ErrEmptyImage
	}

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(img, &gray, gocv.ColorBGRToGray)

	boxes := l.cascade.DetectMultiScaleWithParams(
		gray,
		haarScaleFactor,
		haarMinNeighbors,
		0,
		image.Pt(haarMinFaceSize, haarMinFaceSize),
		image.Pt(0, 0),
	)

	return boxes, nil
}

// Close releases the cascade resources
func (l *HaarLocalizer) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cascade.Close()
	return nil
}
