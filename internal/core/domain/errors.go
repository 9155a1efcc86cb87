package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent pipeline failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// Input Errors.

	// ErrInputNotFound indicates the input file or directory does not exist.
	ErrInputNotFound = errors.New("input not found")

	// ErrUnsupportedType indicates the input's media type is not accepted.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrCorruptDocument indicates the document's page count cannot be determined.
	ErrCorruptDocument = errors.New("corrupt document")

	// Rendering Errors.

	// ErrRenderFailed indicates a page could not be rendered or the image PDF
	// could not be assembled.
	ErrRenderFailed = errors.New("render failed")

	// ErrBackendUnavailable indicates an explicitly requested rendering backend
	// is not installed.
	ErrBackendUnavailable = errors.New("rendering backend unavailable")

	// ErrNoBackendAvailable indicates no rendering backend is installed.
	ErrNoBackendAvailable = errors.New("no rendering backend available")

	// ErrIncompleteResults indicates chunk results have a gap in their ordinals.
	ErrIncompleteResults = errors.New("incomplete results")

	// Authentication Errors.

	// ErrAuthRequired indicates no credentials or token are configured.
	ErrAuthRequired = errors.New("authentication required")

	// ErrAuthExpired indicates the authentication has expired and refresh failed.
	ErrAuthExpired = errors.New("authentication expired")
)

// UnsupportedExtensionError reports an input whose extension is not accepted.
type UnsupportedExtensionError struct {
	Extension string
	Path      string
}

func (e *UnsupportedExtensionError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("unsupported type %q: %s", e.Extension, e.Path)
	}
	return fmt.Sprintf("unsupported type %q", e.Extension)
}

// Is matches ErrUnsupportedType.
func (e *UnsupportedExtensionError) Is(target error) bool {
	return target == ErrUnsupportedType
}

// OCRErrorKind classifies a failure reported by the OCR service.
type OCRErrorKind int

// OCR error kinds. RateLimited and Transient5xx are retryable; the others are permanent.
const (
	OCRRateLimited OCRErrorKind = iota + 1
	OCRTransient5xx
	OCRUnsupported
	OCRTooLarge
	OCRAuthExpired
	OCRRejected
	// OCRTransient is what a retryable failure becomes once attempts are exhausted.
	OCRTransient
)

// String returns the kind name.
func (k OCRErrorKind) String() string {
	switch k {
	case OCRRateLimited:
		return "rate limited"
	case OCRTransient5xx:
		return "transient server error"
	case OCRUnsupported:
		return "unsupported"
	case OCRTooLarge:
		return "too large"
	case OCRAuthExpired:
		return "authentication expired"
	case OCRRejected:
		return "rejected"
	case OCRTransient:
		return "retries exhausted"
	default:
		return "unknown"
	}
}

// OCRError is a classified failure of one OCR service call.
type OCRError struct {
	Kind OCRErrorKind

	// Op is the remote step that failed: upload, extract or release.
	Op  string
	Err error
}

func (e *OCRError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("ocr %s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("ocr %s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *OCRError) Unwrap() error {
	return e.Err
}

// Is matches ErrAuthExpired for authentication failures.
func (e *OCRError) Is(target error) bool {
	return e.Kind == OCRAuthExpired && target == ErrAuthExpired
}

// Temporary reports whether the call may succeed if retried.
func (e *OCRError) Temporary() bool {
	return e.Kind == OCRRateLimited || e.Kind == OCRTransient5xx
}

// IsTemporaryOCRError reports whether err carries a retryable OCRError.
func IsTemporaryOCRError(err error) bool {
	var oe *OCRError
	return errors.As(err, &oe) && oe.Temporary()
}

// Stage names a step of a processing session.
type Stage string

// Session stages used in error reports.
const (
	StageIntake   Stage = "intake"
	StageRender   Stage = "render"
	StageSplit    Stage = "split"
	StageOCR      Stage = "ocr"
	StageCombine  Stage = "combine"
	StageFinalize Stage = "finalize"
)

// StageError attributes a session failure to a stage and an input file.
type StageError struct {
	Stage Stage
	Path  string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s failed for %s: %v", e.Stage, e.Path, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// StageOf returns the stage a session error was raised in, if any.
func StageOf(err error) (Stage, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage, true
	}
	return "", false
}
