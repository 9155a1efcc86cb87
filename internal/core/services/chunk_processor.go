package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/custodia-labs/pdfocr/internal/core/domain"
	"github.com/custodia-labs/pdfocr/internal/core/ports/driven"
	"github.com/custodia-labs/pdfocr/internal/logger"
)

// releaseTimeout bounds remote cleanup, which runs even after cancellation.
const releaseTimeout = 30 * time.Second

// ChunkProcessor submits chunks to the OCR service.
type ChunkProcessor struct {
	ocr         driven.OCRService
	maxAttempts int
	backoff     BackoffFunc
}

// NewChunkProcessor creates a processor that makes up to maxAttempts calls
// per chunk when the service reports retryable failures.
func NewChunkProcessor(ocr driven.OCRService, maxAttempts int) *ChunkProcessor {
	if maxAttempts < 1 {
		maxAttempts = domain.DefaultMaxAttempts
	}
	return &ChunkProcessor{
		ocr:         ocr,
		maxAttempts: maxAttempts,
		backoff:     Backoff,
	}
}

// SetBackoff replaces the retry delay policy.
func (p *ChunkProcessor) SetBackoff(fn BackoffFunc) {
	p.backoff = fn
}

// Process makes a single attempt: upload, extract, release.
// The remote copy is released on every path once the upload succeeded,
// after extraction has finished. A release failure is logged and never
// replaces the outcome of the extraction.
func (p *ChunkProcessor) Process(ctx context.Context, chunk domain.Chunk) (result domain.RecoveredText, err error) {
	// 1. Respect service limits before any network call
	info, err := os.Stat(chunk.Path)
	if err != nil {
		return result, fmt.Errorf("stat chunk: %w", err)
	}
	limits := p.ocr.Limits()
	if limits.MaxBytes > 0 && info.Size() > limits.MaxBytes {
		return result, &domain.OCRError{
			Kind: domain.OCRTooLarge,
			Op:   "upload",
			Err:  fmt.Errorf("%s is %d bytes, limit is %d", chunk.Name(), info.Size(), limits.MaxBytes),
		}
	}
	if !limits.Supports(chunk.MediaType) {
		return result, &domain.OCRError{
			Kind: domain.OCRUnsupported,
			Op:   "upload",
			Err:  fmt.Errorf("media type %s is not accepted", chunk.MediaType),
		}
	}

	// 2. Upload
	f, err := os.Open(chunk.Path)
	if err != nil {
		return result, fmt.Errorf("open chunk: %w", err)
	}
	handle, err := p.ocr.Upload(ctx, chunk.Name(), chunk.MediaType, f)
	f.Close()
	if err != nil {
		return result, err
	}

	// 3. Release the remote copy whatever happens next
	defer func() {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
		defer cancel()
		if rerr := p.ocr.Release(rctx, handle); rerr != nil {
			logger.Warn("Failed to delete remote copy %s of %s: %v", handle.ID, chunk.Name(), rerr)
		}
	}()

	// 4. Extract
	text, err := p.ocr.ExtractText(ctx, handle)
	if err != nil {
		return result, err
	}

	return domain.RecoveredText{
		Ordinal: chunk.Ordinal,
		Pages:   chunk.Pages,
		Text:    text,
	}, nil
}

// ProcessWithRetry calls Process, retrying rate limits and transient server
// errors with exponential backoff. Once attempts run out the failure becomes
// a permanent OCRError of kind Transient.
func (p *ChunkProcessor) ProcessWithRetry(ctx context.Context, chunk domain.Chunk) (domain.RecoveredText, error) {
	var lastErr error
	for attempt := 0; attempt < p.maxAttempts; attempt++ {
		if attempt > 0 {
			wait := p.backoff(attempt - 1)
			logger.Info("Retrying chunk %d (%s) in %s: %v", chunk.Ordinal+1, chunk.Name(), wait.Round(time.Millisecond), lastErr)
			if err := sleep(ctx, wait); err != nil {
				return domain.RecoveredText{}, err
			}
		}

		result, err := p.Process(ctx, chunk)
		if err == nil {
			return result, nil
		}
		if !domain.IsTemporaryOCRError(err) {
			return domain.RecoveredText{}, err
		}
		lastErr = err
	}

	op := "extract"
	var oe *domain.OCRError
	if errors.As(lastErr, &oe) {
		op = oe.Op
	}
	return domain.RecoveredText{}, &domain.OCRError{
		Kind: domain.OCRTransient,
		Op:   op,
		Err:  fmt.Errorf("gave up after %d attempts: %w", p.maxAttempts, lastErr),
	}
}
