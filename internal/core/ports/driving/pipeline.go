package driving

import (
	"context"

	"github.com/custodia-labs/pdfocr/internal/core/domain"
)

// Converter turns a PDF into an image-only PDF.
type Converter interface {
	// Convert renders every page of input and writes an image PDF.
	Convert(ctx context.Context, input string, opts domain.ConvertOptions) (*domain.ConversionResult, error)
}

// OCRPipeline runs one processing session for a single document.
type OCRPipeline interface {
	// Run processes input and writes the combined text artefact.
	// On failure the returned result still describes the folder left behind.
	Run(ctx context.Context, input string, opts domain.SessionOptions) (*domain.SessionResult, error)
}

// BatchRunner processes every accepted document in a directory.
type BatchRunner interface {
	// Run creates a timestamped batch root and runs one session per file,
	// continuing past per-file failures. Only setup failures are returned as errors.
	Run(ctx context.Context, sourceDir string, exts []string, opts domain.BatchOptions) (*domain.BatchReport, error)

	// Watch keeps a finished run open, processing files that appear in its
	// source directory until ctx is cancelled. Each outcome is appended to
	// report and passed to onOutcome.
	Watch(
		ctx context.Context,
		report *domain.BatchReport,
		exts []string,
		opts domain.BatchOptions,
		onOutcome func(domain.FileOutcome),
	) error
}

// BackendCatalog describes the installed rendering backends.
type BackendCatalog interface {
	// Statuses lists every backend in priority order.
	Statuses() []domain.BackendStatus
}
