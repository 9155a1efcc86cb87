// Package drive implements the OCR service on Google Drive: a document
// uploaded with conversion to a Google Doc is run through Drive's OCR, and
// exporting the Doc as text/plain returns the recognised text.
package drive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"

	"github.com/custodia-labs/pdfocr/internal/connectors/google"
	"github.com/custodia-labs/pdfocr/internal/core/domain"
	"github.com/custodia-labs/pdfocr/internal/core/ports/driven"
)

// Ensure OCRService implements the interface.
var _ driven.OCRService = (*OCRService)(nil)

// Drive MIME types.
const (
	MimeTypeGoogleDoc = "application/vnd.google-apps.document"
	ExportMimeText    = "text/plain"
)

// MaxUploadSize is the largest file Drive converts to a Google Doc (50MB).
const MaxUploadSize = 50 * 1024 * 1024

// MaxExportSize is the largest export Drive serves (10MB).
const MaxExportSize = 10 * 1024 * 1024

// exportTooLargeHint tells the user how to get a chunk's text under the export limit.
const exportTooLargeHint = "lower the chunk size"

// byteOrderMark prefixes Drive's text/plain exports.
const byteOrderMark = "\ufeff"

// supportedTypes are the inputs Drive can convert to a Google Doc.
var supportedTypes = []domain.MediaType{
	domain.MediaTypePDF,
	domain.MediaTypeJPEG,
	domain.MediaTypePNG,
	domain.MediaTypeGIF,
	domain.MediaTypeBMP,
	domain.MediaTypeDOC,
}

// OCRService runs OCR through Google Drive.
type OCRService struct {
	svc     *drive.Service
	limiter *google.RateLimiter
}

// New creates a Drive OCR service. A nil limiter uses the Drive defaults.
func New(svc *drive.Service, limiter *google.RateLimiter) *OCRService {
	if limiter == nil {
		limiter = google.NewRateLimiter(google.DefaultDriveRateLimit)
	}
	return &OCRService{svc: svc, limiter: limiter}
}

// Upload creates a Google Doc from r, which makes Drive run OCR on it.
func (s *OCRService) Upload(
	ctx context.Context,
	name string,
	mediaType domain.MediaType,
	r io.Reader,
) (driven.RemoteHandle, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return driven.RemoteHandle{}, err
	}

	meta := &drive.File{
		Name:     name,
		MimeType: MimeTypeGoogleDoc,
	}
	file, err := s.svc.Files.Create(meta).
		Media(r, googleapi.ContentType(string(mediaType))).
		Fields("id", "name").
		Context(ctx).
		Do()
	if err != nil {
		return driven.RemoteHandle{}, s.classify("upload", err)
	}
	return driven.RemoteHandle{ID: file.Id, Name: file.Name}, nil
}

// ExtractText exports the Google Doc as plain text.
func (s *OCRService) ExtractText(ctx context.Context, handle driven.RemoteHandle) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return "", err
	}

	resp, err := s.svc.Files.Export(handle.ID, ExportMimeText).Context(ctx).Download()
	if err != nil {
		return "", s.classify("export", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxExportSize+1))
	if err != nil {
		return "", s.classify("export", fmt.Errorf("read export of %s: %w", handle.ID, err))
	}
	if len(data) > MaxExportSize {
		return "", &domain.OCRError{
			Kind: domain.OCRTooLarge,
			Op:   "export",
			Err:  fmt.Errorf("text of %s exceeds %d MB: %s", handle.ID, MaxExportSize>>20, exportTooLargeHint),
		}
	}
	return strings.TrimPrefix(string(data), byteOrderMark), nil
}

// Release deletes the Google Doc.
func (s *OCRService) Release(ctx context.Context, handle driven.RemoteHandle) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}
	if err := s.svc.Files.Delete(handle.ID).Context(ctx).Do(); err != nil {
		return s.classify("delete", err)
	}
	return nil
}

// Limits returns what Drive accepts for conversion.
func (s *OCRService) Limits() driven.OCRLimits {
	return driven.OCRLimits{
		MaxBytes:   MaxUploadSize,
		MediaTypes: supportedTypes,
	}
}

// classify maps err into the OCR taxonomy and pauses the limiter when
// Drive asked for a delay.
func (s *OCRService) classify(op string, err error) error {
	err = google.ClassifyError(op, err)
	var oe *domain.OCRError
	if op == "export" && errors.As(err, &oe) && oe.Kind == domain.OCRTooLarge {
		return &domain.OCRError{Kind: oe.Kind, Op: oe.Op, Err: fmt.Errorf("%w: %s", oe.Err, exportTooLargeHint)}
	}
	if google.IsRateLimited(err) {
		if d := google.RetryAfter(err); d > 0 {
			s.limiter.RecordRateLimitError(d)
		}
	}
	return err
}
