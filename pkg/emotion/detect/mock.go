package detect

import (
	"context"
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// Mock implements Analyzer and Localizer for testing.
type Mock struct {
	// AnalyzeFunc is called when Analyze is invoked.
	AnalyzeFunc func(ctx context.Context, img gocv.Mat) ([]Analysis, error)

	// LocateFunc is called when Locate is invoked.
	LocateFunc func(img gocv.Mat) ([]image.Rectangle, error)

	// CloseFunc is called when Close is invoked.
	CloseFunc func() error

	mu    sync.Mutex
	calls []string
}

// Analyze calls AnalyzeFunc and records the call.
func (m *Mock) Analyze(ctx context.Context, img gocv.Mat) ([]Analysis, error) {
	m.record("Analyze")
	if m.AnalyzeFunc != nil {
		return m.AnalyzeFunc(ctx, img)
	}
	return nil, ErrNoFace
}

// Locate calls LocateFunc and records the call.
func (m *Mock) Locate(img gocv.Mat) ([]image.Rectangle, error) {
	m.record("Locate")
	if m.LocateFunc != nil {
		return m.LocateFunc(img)
	}
	return nil, nil
}

// Close calls CloseFunc if set.
func (m *Mock) Close() error {
	m.record("Close")
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// Calls returns the recorded method names in order.
func (m *Mock) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

func (m *Mock) record(method string) {
	m.mu.Lock()
	m.calls = append(m.calls, method)
	m.mu.Unlock()
}

// Verify Mock implements both interfaces at compile time.
var (
	_ Analyzer  = (*Mock)(nil)
	_ Localizer = (*Mock)(nil)
)
