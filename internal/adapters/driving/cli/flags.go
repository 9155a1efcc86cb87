package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pdfocr/internal/core/domain"
	"github.com/custodia-labs/pdfocr/internal/logger"
)

// renderFlags are the rendering options shared by convert, ocr and ocr-batch.
type renderFlags struct {
	dpi     int
	quality int
	backend string
}

func (f *renderFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.dpi, "dpi", domain.DefaultDPI, "Rendering resolution in dots per inch")
	cmd.Flags().IntVar(&f.quality, "quality", domain.DefaultQuality, "JPEG quality of rendered pages (1-100)")
	cmd.Flags().StringVar(&f.backend, "backend", "", "Rendering backend: pdftoppm, mutool or ghostscript (default: first available)")
}

// apply overlays explicitly set flags on base.
func (f *renderFlags) apply(cmd *cobra.Command, base domain.RenderOptions) (domain.RenderOptions, error) {
	opts := base
	if cmd.Flags().Changed("dpi") {
		opts.DPI = f.dpi
	}
	if cmd.Flags().Changed("quality") {
		opts.Quality = f.quality
	}
	if cmd.Flags().Changed("backend") {
		kind, err := domain.ParseBackendKind(f.backend)
		if err != nil {
			return opts, err
		}
		opts.Backend = kind
	}
	return opts, opts.Validate()
}

// sessionFlags are the session options shared by ocr and ocr-batch.
type sessionFlags struct {
	render         renderFlags
	pagesPerChunk  int
	keepChunks     bool
	deleteOriginal bool
	noConvert      bool
}

func (f *sessionFlags) register(cmd *cobra.Command) {
	f.render.register(cmd)
	cmd.Flags().IntVarP(&f.pagesPerChunk, "chunk-size", "c", domain.DefaultPagesPerChunk, "Pages per OCR chunk")
	cmd.Flags().BoolVar(&f.keepChunks, "keep-chunks", false, "Keep chunk files after the text is combined")
	cmd.Flags().BoolVar(&f.deleteOriginal, "delete-original", false, "Delete the input file after successful processing")
	cmd.Flags().BoolVar(&f.noConvert, "no-convert", false, "Submit PDFs as-is without converting to an image PDF")
}

// apply overlays explicitly set flags on the configured session defaults.
func (f *sessionFlags) apply(cmd *cobra.Command, settings *domain.Settings) (domain.SessionOptions, error) {
	opts := settings.SessionOptions()
	if cmd.Flags().Changed("chunk-size") {
		opts.PagesPerChunk = f.pagesPerChunk
	}
	opts.KeepChunks = f.keepChunks
	opts.DeleteOriginal = f.deleteOriginal
	opts.SkipNormalize = f.noConvert

	render, err := f.render.apply(cmd, opts.Render)
	switch {
	case err == nil:
		opts.Render = render
	case opts.SkipNormalize:
		// Nothing is rendered, so the configured render options stand.
		logger.Warn("Ignoring render flags with --no-convert: %v", err)
	default:
		return opts, err
	}
	if opts.PagesPerChunk < 1 {
		return opts, fmt.Errorf("%w: chunk size must be at least 1", domain.ErrInvalidInput)
	}
	return opts, nil
}

// loadSettings returns the resolved settings, or the defaults when no
// settings service is configured.
func loadSettings() (*domain.Settings, error) {
	if settingsService == nil {
		defaults := domain.DefaultSettings()
		return &defaults, nil
	}
	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	return settings, nil
}
