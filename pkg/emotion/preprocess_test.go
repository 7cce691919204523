package emotion

import (
	"os"
	"testing"

	"gocv.io/x/gocv"
)

// TestPrepareFileCompliant verifies a compliant image passes through
// untouched, and stays untouched on repeated preparation.
func TestPrepareFileCompliant(t *testing.T) {
	dir := t.TempDir()
	path := writeJPEG(t, dir, 640, 480)

	desc, err := Validate(path)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	pre := NewPreprocessor(dir)

	first, cleanup1 := pre.PrepareFile(path, desc)
	defer cleanup1()
	if first != path {
		t.Fatalf("Compliant image should not be rewritten, got %s", first)
	}

	second, cleanup2 := pre.PrepareFile(first, desc)
	defer cleanup2()
	if second != path {
		t.Fatalf("Preparation should be idempotent, got %s", second)
	}
}

// TestPrepareFileResize verifies oversized images are bounded to the
// longest-edge limit and the temp artifact is cleaned up.
func TestPrepareFileResize(t *testing.T) {
	dir := t.TempDir()
	path := writeJPEG(t, dir, 1600, 1200)

	desc, err := Validate(path)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	pre := NewPreprocessor(dir)

	work, cleanup := pre.PrepareFile(path, desc)
	if work == path {
		t.Fatal("Oversized image should produce a temp artifact")
	}

	img := gocv.IMRead(work, gocv.IMReadColor)
	if img.Empty() {
		t.Fatalf("Could not read prepared image %s", work)
	}
	w, h := img.Cols(), img.Rows()
	img.Close()

	if w > MaxStillEdge || h > MaxStillEdge {
		t.Errorf("Expected bounded to %dpx, got %dx%d", MaxStillEdge, w, h)
	}
	// Aspect ratio preserved: 1600x1200 -> 1000x750
	if w != 1000 || h != 750 {
		t.Errorf("Expected 1000x750, got %dx%d", w, h)
	}

	cleanup()
	if _, err := os.Stat(work); !os.IsNotExist(err) {
		t.Errorf("Expected temp artifact removed, stat err: %v", err)
	}
}

// TestPrepareFrameSmall verifies compliant frames come back as-is.
func TestPrepareFrameSmall(t *testing.T) {
	pre := NewPreprocessor(t.TempDir())

	frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame.Close()

	work, release := pre.PrepareFrame(frame)
	defer release()

	if work.Cols() != 640 || work.Rows() != 480 {
		t.Errorf("Compliant frame should be unchanged, got %dx%d", work.Cols(), work.Rows())
	}
}

// TestPrepareFrameLarge verifies oversized frames are bounded to the
// frame edge limit.
func TestPrepareFrameLarge(t *testing.T) {
	pre := NewPreprocessor(t.TempDir())

	frame := gocv.NewMatWithSize(1080, 1920, gocv.MatTypeCV8UC3)
	defer frame.Close()

	work, release := pre.PrepareFrame(frame)
	defer release()

	if work.Cols() != 800 || work.Rows() != 450 {
		t.Errorf("Expected 800x450, got %dx%d", work.Cols(), work.Rows())
	}
}
