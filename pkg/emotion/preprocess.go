package emotion

import (
	"image"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"gocv.io/x/gocv"
)

// Preprocessing policy. Detection accuracy does not improve past
// ~1000px and latency grows quadratically, so oversized input is
// bounded before any detector sees it.
const (
	MaxStillEdge      = 1000    // longest edge for persisted images
	MaxFrameEdge      = 800     // longest edge for live frames
	CompressOverBytes = 5 << 20 // re-encode files above 5MB
	JPEGQuality       = 85
)

// Preprocessor conditionally downsamples and recompresses oversized
// input. Preparation is best effort: any internal error returns the
// original input unchanged.
type Preprocessor struct {
	tempDir string
	logger  *slog.Logger
}

// NewPreprocessor creates a preprocessor writing temp artifacts to dir.
func NewPreprocessor(dir string) *Preprocessor {
	if dir == "" {
		dir = os.TempDir()
	}
	return &Preprocessor{
		tempDir: dir,
		logger:  slog.Default().With("component", "emotion.preprocess"),
	}
}

// PrepareFile resizes and/or recompresses the image at path when it
// exceeds policy. It returns the path to use for detection and a
// cleanup func that removes the temp artifact; the caller must invoke
// cleanup on every exit path. A compliant image comes back untouched
// with a no-op cleanup.
func (p *Preprocessor) PrepareFile(path string, desc *Descriptor) (string, func()) {
	noop := func() {}

	needsResize := desc.Width > MaxStillEdge || desc.Height > MaxStillEdge
	needsCompress := desc.SizeBytes > CompressOverBytes
	if !needsResize && !needsCompress {
		return path, noop
	}

	img := gocv.IMRead(path, gocv.IMReadColor)
	defer img.Close()
	if img.Empty() {
		p.logger.Warn("preprocess re-read failed, using original", "path", path)
		return path, noop
	}

	if needsResize {
		w, h := img.Cols(), img.Rows()
		scale := float64(MaxStillEdge) / float64(max(w, h))
		newW, newH := int(float64(w)*scale), int(float64(h)*scale)
		gocv.Resize(img, &img, image.Pt(newW, newH), 0, 0, gocv.InterpolationArea)
		p.logger.Debug("resized image", "from_w", w, "from_h", h, "to_w", newW, "to_h", newH)
	}

	// uuid keeps concurrent requests sharing one temp dir collision-free
	tmp := filepath.Join(p.tempDir, "emotunes_"+uuid.NewString()+".jpg")

	var ok bool
	if needsCompress {
		ok = gocv.IMWriteWithParams(tmp, img, []int{gocv.IMWriteJpegQuality, JPEGQuality})
	} else {
		ok = gocv.IMWrite(tmp, img)
	}
	if !ok {
		p.logger.Warn("preprocess write failed, using original", "path", tmp)
		return path, noop
	}

	return tmp, func() {
		if err := os.Remove(tmp); err != nil && !os.IsNotExist(err) {
			p.logger.Warn("could not delete temp artifact", "path", tmp, "error", err)
		}
	}
}

// PrepareFrame bounds a live frame to MaxFrameEdge. It returns the
// frame to use and a cleanup func releasing the resized copy; a
// compliant frame comes back as-is.
func (p *Preprocessor) PrepareFrame(frame gocv.Mat) (gocv.Mat, func()) {
	noop := func() {}

	w, h := frame.Cols(), frame.Rows()
	if max(w, h) <= MaxFrameEdge {
		return frame, noop
	}

	scale := float64(MaxFrameEdge) / float64(max(w, h))
	resized := gocv.NewMat()
	gocv.Resize(frame, &resized, image.Pt(int(float64(w)*scale), int(float64(h)*scale)), 0, 0, gocv.InterpolationArea)
	return resized, func() { resized.Close() }
}
