package detect

import (
	"fmt"
	"image"
	"math"
	"os"
	"sync"

	"gocv.io/x/gocv"
)

// EmotionNet classifies a face crop into the seven emotion labels
// using an ONNX CNN (64x64 grayscale input, 7-class softmax output).
type EmotionNet struct {
	net       gocv.Net
	inputSize image.Point
	mu        sync.Mutex // Protects inference
}

// NewEmotionNet loads the emotion classification model.
func NewEmotionNet(modelPath string, inputSize int) (*EmotionNet, error) {
	if _, err := os.Stat(modelPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrModelNotFound, modelPath)
	}

	net := gocv.ReadNetFromONNX(modelPath)
	if net.Empty() {
		return nil, fmt.Errorf("detect: failed to load emotion model from %s", modelPath)
	}

	net.SetPreferableBackend(gocv.NetBackendDefault)
	net.SetPreferableTarget(gocv.NetTargetCPU)

	return &EmotionNet{
		net:       net,
		inputSize: image.Pt(inputSize, inputSize),
	}, nil
}

// Classify scores the face region of img against the seven labels.
// Scores come back on a 0-100 percent scale in the net's native float32.
func (n *EmotionNet) Classify(img gocv.Mat, region image.Rectangle) (map[string]float32, string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if img.Empty() {
		return nil, "", ErrEmptyImage
	}

	bounds := image.Rect(0, 0, img.Cols(), img.Rows())
	roi := region.Intersect(bounds)
	if roi.Empty() {
		return nil, "", fmt.Errorf("detect: face region %v outside image bounds %v", region, bounds)
	}

	face := img.Region(roi)
	defer face.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(face, &gray, gocv.ColorBGRToGray)

	blob := gocv.BlobFromImage(gray, 1.0/255.0, n.inputSize, gocv.NewScalar(0, 0, 0, 0), false, false)
	defer blob.Close()

	n.net.SetInput(blob, "")

	output := n.net.Forward("")
	defer output.Close()

	data, err := output.DataPtrFloat32()
	if err != nil {
		return nil, "", fmt.Errorf("detect: read output tensor: %w", err)
	}
	if len(data) < len(Labels) {
		return nil, "", fmt.Errorf("detect: unexpected output size %d, want %d", len(data), len(Labels))
	}

	probs := softmaxIfNeeded(data[:len(Labels)])

	scores := make(map[string]float32, len(Labels))
	dominant := Labels[0]
	best := float32(-1)
	for i, label := range Labels {
		pct := probs[i] * 100
		scores[label] = pct
		if pct > best {
			best = pct
			dominant = label
		}
	}

	return scores, dominant, nil
}

// Close releases the net resources
func (n *EmotionNet) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.net.Close()
	return nil
}

// softmaxIfNeeded normalizes raw logits to probabilities. Models that
// already emit a softmax layer pass through unchanged.
func softmaxIfNeeded(raw []float32) []float32 {
	sum := float32(0)
	normalized := true
	for _, v := range raw {
		if v < 0 || v > 1 {
			normalized = false
		}
		sum += v
	}
	if normalized && math.Abs(float64(sum)-1.0) < 0.01 {
		return raw
	}

	// Stable softmax over the logits
	maxV := raw[0]
	for _, v := range raw[1:] {
		if v > maxV {
			maxV = v
		}
	}
	out := make([]float32, len(raw))
	var total float64
	for i, v := range raw {
		e := math.Exp(float64(v - maxV))
		out[i] = float32(e)
		total += e
	}
	for i := range out {
		out[i] = float32(float64(out[i]) / total)
	}
	return out
}
