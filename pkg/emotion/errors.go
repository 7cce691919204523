package emotion

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions.
var (
	// ErrBudgetExceeded is returned internally when a tier overruns
	// its wall-clock budget.
	ErrBudgetExceeded = errors.New("emotion: tier budget exceeded")

	// ErrBackendUnavailable marks a tier whose backend was missing at
	// startup.
	ErrBackendUnavailable = errors.New("emotion: detector backend unavailable")
)

// AdmissionCode classifies why an image was rejected before detection.
type AdmissionCode string

const (
	AdmissionNotFound          AdmissionCode = "not_found"
	AdmissionEmpty             AdmissionCode = "empty"
	AdmissionTooLarge          AdmissionCode = "too_large"
	AdmissionTooSmall          AdmissionCode = "too_small"
	AdmissionUnreadable        AdmissionCode = "unreadable"
	AdmissionUnsupportedFormat AdmissionCode = "unsupported_format"
)

// AdmissionError is the only error type that crosses the pipeline
// boundary. The message restates the violated limit so callers can
// surface it verbatim.
type AdmissionError struct {
	Code    AdmissionCode
	Message string
}

// Error implements the error interface.
func (e *AdmissionError) Error() string {
	return fmt.Sprintf("emotion: admission [%s]: %s", e.Code, e.Message)
}

// admissionErrorf builds an AdmissionError with a formatted message.
func admissionErrorf(code AdmissionCode, format string, args ...any) *AdmissionError {
	return &AdmissionError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// AsAdmissionError extracts an AdmissionError from an error chain.
func AsAdmissionError(err error) (*AdmissionError, bool) {
	var ae *AdmissionError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// TierError wraps a tier-scoped failure with the tier that produced
// it. Never surfaced to callers; recorded in diagnostics only.
type TierError struct {
	Tier Tier
	Err  error
}

// Error implements the error interface.
func (e *TierError) Error() string {
	return fmt.Sprintf("emotion [%s]: %v", e.Tier, e.Err)
}

// Unwrap returns the underlying error.
func (e *TierError) Unwrap() error {
	return e.Err
}
