package drive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/custodia-labs/pdfocr/internal/connectors/google"
	"github.com/custodia-labs/pdfocr/internal/core/domain"
	"github.com/custodia-labs/pdfocr/internal/core/ports/driven"
)

// fakeDrive serves the three Drive calls the OCR service makes.
type fakeDrive struct {
	mu      sync.Mutex
	uploads []string
	deleted []string
	texts   map[string]string
	fail    map[string]fakeFailure
}

type fakeFailure struct {
	status     int
	reason     string
	retryAfter string
}

func (f *fakeDrive) failOn(op string, failure fakeFailure) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[op] = failure
}

func (f *fakeDrive) setText(id, text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts[id] = text
}

func (f *fakeDrive) calls() (uploads, deleted []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.uploads...), append([]string(nil), f.deleted...)
}

func (f *fakeDrive) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	op := operation(r)
	if failure, ok := f.fail[op]; ok {
		if failure.retryAfter != "" {
			w.Header().Set("Retry-After", failure.retryAfter)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(failure.status)
		_, _ = fmt.Fprintf(w, `{"error":{"code":%d,"message":"failed","errors":[{"reason":%q}]}}`,
			failure.status, failure.reason)
		return
	}

	switch op {
	case "upload":
		body, _ := io.ReadAll(r.Body)
		f.uploads = append(f.uploads, string(body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"doc-1","name":"report_chunk_1.pdf"}`)
	case "export":
		_, _ = io.WriteString(w, byteOrderMark+f.texts[fileID(r.URL.Path, "/export")])
	case "delete":
		f.deleted = append(f.deleted, fileID(r.URL.Path, ""))
		w.WriteHeader(http.StatusNoContent)
	default:
		http.NotFound(w, r)
	}
}

func operation(r *http.Request) string {
	switch {
	case r.Method == http.MethodPost && r.URL.Query().Get("uploadType") != "":
		return "upload"
	case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/export"):
		return "export"
	case r.Method == http.MethodDelete:
		return "delete"
	}
	return ""
}

func fileID(path, suffix string) string {
	path = strings.TrimSuffix(path, suffix)
	return path[strings.LastIndex(path, "/")+1:]
}

func setupDriveTest(t *testing.T) (*OCRService, *fakeDrive) {
	t.Helper()
	fake := &fakeDrive{texts: map[string]string{}, fail: map[string]fakeFailure{}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "test-token"})
	svc, err := google.NewDriveService(context.Background(), ts,
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)

	limiter := google.NewRateLimiter(google.RateLimitConfig{RequestsPerSecond: 1000, BurstSize: 100})
	return New(svc, limiter), fake
}

func TestOCRService_RoundTrip(t *testing.T) {
	ocr, fake := setupDriveTest(t)
	fake.setText("doc-1", "Recognised text\nsecond line")
	ctx := context.Background()

	handle, err := ocr.Upload(ctx, "report_chunk_1.pdf", domain.MediaTypePDF, strings.NewReader("%PDF-1.4 fake"))
	require.NoError(t, err)
	assert.Equal(t, driven.RemoteHandle{ID: "doc-1", Name: "report_chunk_1.pdf"}, handle)

	uploads, _ := fake.calls()
	require.Len(t, uploads, 1)
	assert.Contains(t, uploads[0], MimeTypeGoogleDoc)
	assert.Contains(t, uploads[0], "application/pdf")
	assert.Contains(t, uploads[0], "%PDF-1.4 fake")

	text, err := ocr.ExtractText(ctx, handle)
	require.NoError(t, err)
	assert.Equal(t, "Recognised text\nsecond line", text, "byte order mark is stripped")

	require.NoError(t, ocr.Release(ctx, handle))
	_, deleted := fake.calls()
	assert.Equal(t, []string{"doc-1"}, deleted)
}

func TestOCRService_ErrorKinds(t *testing.T) {
	tests := []struct {
		name    string
		op      string
		failure fakeFailure
		want    domain.OCRErrorKind
	}{
		{"upload too large", "upload", fakeFailure{status: http.StatusRequestEntityTooLarge}, domain.OCRTooLarge},
		{"upload unsupported", "upload", fakeFailure{status: http.StatusUnsupportedMediaType}, domain.OCRUnsupported},
		{"upload rejected", "upload", fakeFailure{status: http.StatusBadRequest, reason: "badRequest"}, domain.OCRRejected},
		{"export unavailable", "export", fakeFailure{status: http.StatusServiceUnavailable}, domain.OCRTransient5xx},
		{"export size limit", "export", fakeFailure{status: http.StatusForbidden, reason: "exportSizeLimitExceeded"}, domain.OCRTooLarge},
		{"export unauthorised", "export", fakeFailure{status: http.StatusUnauthorized}, domain.OCRAuthExpired},
		{"delete throttled", "delete", fakeFailure{status: http.StatusForbidden, reason: "userRateLimitExceeded"}, domain.OCRRateLimited},
		{"delete forbidden", "delete", fakeFailure{status: http.StatusForbidden, reason: "insufficientFilePermissions"}, domain.OCRRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ocr, fake := setupDriveTest(t)
			fake.failOn(tt.op, tt.failure)
			ctx := context.Background()
			handle := driven.RemoteHandle{ID: "doc-1"}

			var err error
			switch tt.op {
			case "upload":
				_, err = ocr.Upload(ctx, "scan.pdf", domain.MediaTypePDF, strings.NewReader("x"))
			case "export":
				_, err = ocr.ExtractText(ctx, handle)
			case "delete":
				err = ocr.Release(ctx, handle)
			}

			var oe *domain.OCRError
			require.True(t, errors.As(err, &oe), "got %v", err)
			assert.Equal(t, tt.want, oe.Kind)
			assert.Equal(t, tt.op, oe.Op)
			assert.Equal(t, tt.want == domain.OCRRateLimited || tt.want == domain.OCRTransient5xx, domain.IsTemporaryOCRError(err))
		})
	}
}

func TestOCRService_ExtractText_TooLarge(t *testing.T) {
	ocr, fake := setupDriveTest(t)
	ctx := context.Background()
	handle := driven.RemoteHandle{ID: "doc-1"}

	fake.setText("doc-1", strings.Repeat("a", MaxExportSize))
	text, err := ocr.ExtractText(ctx, handle)
	require.NoError(t, err)
	assert.Len(t, text, MaxExportSize)

	fake.setText("doc-1", strings.Repeat("a", MaxExportSize+1))
	_, err = ocr.ExtractText(ctx, handle)

	var oe *domain.OCRError
	require.True(t, errors.As(err, &oe), "got %v", err)
	assert.Equal(t, domain.OCRTooLarge, oe.Kind)
	assert.Equal(t, "export", oe.Op)
	assert.False(t, domain.IsTemporaryOCRError(err))
	assert.ErrorContains(t, err, "lower the chunk size")
}

func TestOCRService_ExtractText_SizeLimitReasonHint(t *testing.T) {
	ocr, fake := setupDriveTest(t)
	fake.failOn("export", fakeFailure{status: http.StatusForbidden, reason: "exportSizeLimitExceeded"})

	_, err := ocr.ExtractText(context.Background(), driven.RemoteHandle{ID: "doc-1"})

	assert.ErrorContains(t, err, "lower the chunk size")
	var gerr *googleapi.Error
	assert.True(t, errors.As(err, &gerr))
}

func TestOCRService_RetryAfterPausesLimiter(t *testing.T) {
	ocr, fake := setupDriveTest(t)
	fake.failOn("upload", fakeFailure{status: http.StatusTooManyRequests, retryAfter: "30"})

	_, err := ocr.Upload(context.Background(), "scan.pdf", domain.MediaTypePDF, strings.NewReader("x"))
	assert.True(t, google.IsRateLimited(err))
	assert.False(t, ocr.limiter.Allow(), "limiter pauses for Retry-After")
}

func TestOCRService_CancelledContext(t *testing.T) {
	ocr, fake := setupDriveTest(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ocr.Upload(ctx, "scan.pdf", domain.MediaTypePDF, strings.NewReader("x"))
	assert.ErrorIs(t, err, context.Canceled)
	uploads, _ := fake.calls()
	assert.Empty(t, uploads)
}

func TestOCRService_Limits(t *testing.T) {
	ocr, _ := setupDriveTest(t)
	limits := ocr.Limits()

	assert.Equal(t, int64(MaxUploadSize), limits.MaxBytes)
	assert.True(t, limits.Supports(domain.MediaTypePDF))
	assert.True(t, limits.Supports(domain.MediaTypePNG))
	assert.False(t, limits.Supports(domain.MediaType("text/plain")))
}
