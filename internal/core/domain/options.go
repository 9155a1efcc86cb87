package domain

import "fmt"

// Pipeline defaults.
const (
	DefaultDPI              = 200
	DefaultQuality          = 95
	DefaultPagesPerChunk    = 10
	DefaultMaxAttempts      = 3
	DefaultRequestsPerSec   = 8
	DefaultChunkConcurrency = 1
	DefaultBatchConcurrency = 1
)

// RenderOptions control page rendering and image PDF encoding.
type RenderOptions struct {
	DPI     int
	Quality int
	Backend BackendKind
}

// Validate checks dpi > 0 and 1 <= quality <= 100.
func (o RenderOptions) Validate() error {
	if o.DPI <= 0 {
		return fmt.Errorf("%w: dpi must be positive, got %d", ErrInvalidInput, o.DPI)
	}
	if o.Quality < 1 || o.Quality > 100 {
		return fmt.Errorf("%w: quality must be between 1 and 100, got %d", ErrInvalidInput, o.Quality)
	}
	return nil
}

// NormalizeOptions configure one image PDF conversion.
type NormalizeOptions struct {
	DPI     int
	Quality int

	// OutputPath overrides <input-stem>_image.pdf next to the input.
	OutputPath string
}

// ConvertOptions configure the stand-alone convert operation.
type ConvertOptions struct {
	Render     RenderOptions
	OutputPath string
}

// ConversionResult reports a finished conversion.
type ConversionResult struct {
	Input       Document
	Output      Document
	Backend     BackendKind
	InputBytes  int64
	OutputBytes int64
}

// SessionOptions configure one processing session.
type SessionOptions struct {
	Render        RenderOptions
	PagesPerChunk int

	// SkipNormalize submits the original PDF without image conversion.
	SkipNormalize bool

	// KeepChunks retains chunk files after the text is combined.
	KeepChunks bool

	// DeleteOriginal removes the input file after a successful session.
	DeleteOriginal bool

	// OutputPath overrides <folder>/<stem>_ocr_text.txt.
	OutputPath string

	// Folder overrides <input-dir>/<stem>_processing.
	Folder string
}

// Validate checks the options before any filesystem work.
func (o SessionOptions) Validate() error {
	if o.PagesPerChunk < 1 {
		return fmt.Errorf("%w: pages per chunk must be at least 1, got %d", ErrInvalidInput, o.PagesPerChunk)
	}
	if o.SkipNormalize {
		return nil
	}
	return o.Render.Validate()
}

// DefaultSessionOptions returns options with the pipeline defaults.
func DefaultSessionOptions() SessionOptions {
	return SessionOptions{
		Render:        RenderOptions{DPI: DefaultDPI, Quality: DefaultQuality},
		PagesPerChunk: DefaultPagesPerChunk,
	}
}

// BatchOptions configure a batch run.
type BatchOptions struct {
	Session SessionOptions

	// Concurrency bounds how many files are processed at once.
	Concurrency int
}
