package driven

import (
	"context"
	"io"
	"slices"

	"github.com/custodia-labs/pdfocr/internal/core/domain"
)

// RemoteHandle identifies a document uploaded to the OCR service.
type RemoteHandle struct {
	ID   string
	Name string
}

// OCRLimits are the service-declared constraints a caller must respect
// before submitting a document.
type OCRLimits struct {
	// MaxBytes is the upload size ceiling. Zero means unlimited.
	MaxBytes int64

	// MediaTypes lists the accepted input types.
	MediaTypes []domain.MediaType
}

// Supports reports whether the media type is accepted.
func (l OCRLimits) Supports(mt domain.MediaType) bool {
	return slices.Contains(l.MediaTypes, mt)
}

// OCRService extracts text from documents on a remote service.
//
// Every call may fail with a *domain.OCRError. Kinds RateLimited and
// Transient5xx are retryable; the rest are permanent.
type OCRService interface {
	// Upload stores the document remotely and requests text recognition.
	Upload(ctx context.Context, name string, mediaType domain.MediaType, r io.Reader) (RemoteHandle, error)

	// ExtractText retrieves the recognised text of an uploaded document.
	ExtractText(ctx context.Context, handle RemoteHandle) (string, error)

	// Release deletes the remote document. Failure is non-fatal to callers.
	Release(ctx context.Context, handle RemoteHandle) error

	// Limits returns the service constraints.
	Limits() OCRLimits
}
