package detect

import (
	"fmt"
	"image"
	"os"
	"sync"

	"gocv.io/x/gocv"
)

// YuNetLocalizer uses OpenCV's FaceDetectorYN for face localization.
// It is the high-precision backend behind the primary tier.
type YuNetLocalizer struct {
	detector gocv.FaceDetectorYN
	mu       sync.Mutex // Protects inference
}

// NewYuNet creates a YuNet face localizer from an ONNX model.
func NewYuNet(modelPath string, confidenceThresh float64) (*YuNetLocalizer, error) {
	if _, err := os.Stat(modelPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrModelNotFound, modelPath)
	}

	// Input size is updated per-image before each detection
	detector := gocv.NewFaceDetectorYNWithParams(
		modelPath,
		"", // No config file needed for ONNX
		image.Pt(320, 320),
		float32(confidenceThresh), // Score threshold
		0.3,                       // NMS threshold
		5000,                      // Top K
		int(gocv.NetBackendDefault),
		int(gocv.NetTargetCPU),
	)

	return &YuNetLocalizer{detector: detector}, nil
}

// Locate finds faces and returns their boxes in pixel coordinates.
func (l *YuNetLocalizer) Locate(img gocv.Mat) ([]image.Rectangle, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if img.Empty() {
		return nil, ErrEmptyImage
	}

	l.detector.SetInputSize(image.Pt(img.Cols(), img.Rows()))

	faces := gocv.NewMat()
	defer faces.Close()

	l.detector.Detect(img, &faces)

	// YuNet output format (15 columns):
	// 0-3: x, y, w, h (bounding box in pixels)
	// 4-13: 5 facial landmarks (x,y pairs)
	// 14: face score
	var boxes []image.Rectangle
	for r := 0; r < faces.Rows(); r++ {
		x := int(faces.GetFloatAt(r, 0))
		y := int(faces.GetFloatAt(r, 1))
		w := int(faces.GetFloatAt(r, 2))
		h := int(faces.GetFloatAt(r, 3))
		boxes = append(boxes, image.Rect(x, y, x+w, y+h))
	}

	return boxes, nil
}

// Close releases the detector resources
func (l *YuNetLocalizer) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.detector.Close()
	return nil
}
