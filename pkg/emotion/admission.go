package emotion

import (
	"math"
	"os"
	"path/filepath"
	"strings"

	"gocv.io/x/gocv"
)

// Admission limits. Violations are hard failures; nothing downstream
// sees an image that breaks them.
const (
	MinDimension = 100
	MaxDimension = 5000
	MaxFileBytes = 20 << 20 // 20 MiB
)

// supportedFormats are the raster formats the decoder handles.
var supportedFormats = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
	".webp": true,
	".tiff": true,
	".tif":  true,
}

// Validate checks a candidate image against size, format and dimension
// policy. Checks run in order and short-circuit on the first failure:
// existence, byte size, format, decodability, dimensions. On success
// it returns a Descriptor measured from the decoded image.
func Validate(path string) (*Descriptor, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, admissionErrorf(AdmissionNotFound, "image file does not exist: %s", path)
	}
	if fi.Size() == 0 {
		return nil, admissionErrorf(AdmissionEmpty, "image file is empty: %s", path)
	}

	// Byte size before anything else; decoding a 200MB upload to learn
	// it is oversized defeats the limit.
	if fi.Size() > MaxFileBytes {
		return nil, admissionErrorf(AdmissionTooLarge,
			"image file too large (%.1fMB). Maximum size is 20MB.",
			float64(fi.Size())/1024/1024)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if !supportedFormats[ext] {
		return nil, admissionErrorf(AdmissionUnsupportedFormat,
			"unsupported image format %q. Supported formats: JPG, JPEG, PNG, BMP, WEBP, TIFF.", ext)
	}

	img := gocv.IMRead(path, gocv.IMReadColor)
	defer img.Close()
	if img.Empty() {
		return nil, admissionErrorf(AdmissionUnreadable,
			"cannot read image file (unsupported format or corrupt file): %s", path)
	}

	width, height := img.Cols(), img.Rows()

	if width < MinDimension || height < MinDimension {
		return nil, admissionErrorf(AdmissionTooSmall,
			"image too small (%dx%d). Minimum size is %dx%d pixels.",
			width, height, MinDimension, MinDimension)
	}
	if width > MaxDimension || height > MaxDimension {
		return nil, admissionErrorf(AdmissionTooLarge,
			"image too large (%dx%d). Maximum size is %dx%d pixels.",
			width, height, MaxDimension, MaxDimension)
	}

	aspect := 0.0
	if height > 0 {
		aspect = math.Round(float64(width)/float64(height)*100) / 100
	}

	return &Descriptor{
		Width:       width,
		Height:      height,
		SizeBytes:   fi.Size(),
		Format:      ext,
		Channels:    img.Channels(),
		AspectRatio: aspect,
	}, nil
}

// ValidateFrame checks an in-memory frame. Frames arrive already
// decoded, so only emptiness is checked here.
func ValidateFrame(frame gocv.Mat) error {
	if frame.Empty() {
		return admissionErrorf(AdmissionEmpty, "empty frame provided")
	}
	return nil
}
