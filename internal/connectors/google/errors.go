package google

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"time"

	"google.golang.org/api/googleapi"

	"github.com/custodia-labs/pdfocr/internal/core/domain"
)

// rateLimitReasons are 403 reasons Google uses for throttling.
var rateLimitReasons = []string{"rateLimitExceeded", "userRateLimitExceeded"}

// tooLargeReasons are 403 reasons Google uses when a file exceeds a size limit.
var tooLargeReasons = []string{"exportSizeLimitExceeded"}

// ClassifyError converts an error from a Drive call into a *domain.OCRError.
// Context cancellation is returned unchanged so callers stop instead of retrying.
func ClassifyError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var oe *domain.OCRError
	if errors.As(err, &oe) {
		return err
	}
	return &domain.OCRError{Kind: classify(err), Op: op, Err: err}
}

func classify(err error) domain.OCRErrorKind {
	if errors.Is(err, domain.ErrAuthExpired) || errors.Is(err, domain.ErrAuthRequired) {
		return domain.OCRAuthExpired
	}

	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		// Connection resets, DNS hiccups and the like.
		var uerr *url.Error
		if errors.As(err, &uerr) {
			return domain.OCRTransient5xx
		}
		return domain.OCRRejected
	}

	switch {
	case gerr.Code == http.StatusTooManyRequests:
		return domain.OCRRateLimited
	case gerr.Code == http.StatusForbidden && hasReason(gerr, rateLimitReasons...):
		return domain.OCRRateLimited
	case gerr.Code == http.StatusForbidden && hasReason(gerr, tooLargeReasons...):
		return domain.OCRTooLarge
	case gerr.Code >= http.StatusInternalServerError:
		return domain.OCRTransient5xx
	case gerr.Code == http.StatusUnauthorized:
		return domain.OCRAuthExpired
	case gerr.Code == http.StatusRequestEntityTooLarge:
		return domain.OCRTooLarge
	case gerr.Code == http.StatusUnsupportedMediaType:
		return domain.OCRUnsupported
	default:
		return domain.OCRRejected
	}
}

func hasReason(gerr *googleapi.Error, reasons ...string) bool {
	for _, item := range gerr.Errors {
		if slices.Contains(reasons, item.Reason) {
			return true
		}
	}
	return false
}

// IsRateLimited returns true if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	var oe *domain.OCRError
	if errors.As(err, &oe) {
		return oe.Kind == domain.OCRRateLimited
	}
	return false
}

// RetryAfter returns the server-requested delay carried by a Google API
// error, or zero when there is none.
func RetryAfter(err error) time.Duration {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) || gerr.Header == nil {
		return 0
	}
	v := gerr.Header.Get("Retry-After")
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}
