package services

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/pdfocr/internal/core/domain"
	"github.com/custodia-labs/pdfocr/internal/core/ports/driven"
	"github.com/custodia-labs/pdfocr/internal/logger"
)

// ImageAssembler renders every page of a PDF and writes them as an
// image-only PDF.
type ImageAssembler struct {
	writer driven.ImagePDFWriter
}

// NewImageAssembler creates an assembler over a PDF writer.
func NewImageAssembler(writer driven.ImagePDFWriter) *ImageAssembler {
	return &ImageAssembler{writer: writer}
}

// Normalize renders doc with backend and writes an image PDF.
// The output defaults to <stem>_image.pdf next to the input.
// On any failure the partial output is removed.
func (a *ImageAssembler) Normalize(
	ctx context.Context,
	doc domain.Document,
	opts domain.NormalizeOptions,
	backend driven.RenderingBackend,
) (domain.Document, error) {
	// 1. Validate input
	if err := (domain.RenderOptions{DPI: opts.DPI, Quality: opts.Quality}).Validate(); err != nil {
		return domain.Document{}, err
	}
	inputInfo, err := statInput(doc.Path)
	if err != nil {
		return domain.Document{}, err
	}

	output := opts.OutputPath
	if output == "" {
		output = filepath.Join(doc.Dir(), domain.ImagePDFName(doc.Stem()))
	}

	// 2. Inspect
	pages, err := backend.PageCount(ctx, doc.Path)
	if err != nil {
		return domain.Document{}, fmt.Errorf("%w: %s: %v", domain.ErrCorruptDocument, doc.Path, err)
	}
	if pages < 1 {
		return domain.Document{}, fmt.Errorf("%w: %s has no pages", domain.ErrCorruptDocument, doc.Path)
	}

	logger.Info("Converting %s (%d pages) at %d DPI with %s", doc.Name(), pages, opts.DPI, backend.Kind().Description())

	// 3. Render and assemble page by page
	pdf, err := a.writer.Create(output, opts.Quality)
	if err != nil {
		return domain.Document{}, fmt.Errorf("%w: create %s: %v", domain.ErrRenderFailed, output, err)
	}
	for i := range pages {
		if err := ctx.Err(); err != nil {
			pdf.Abort()
			return domain.Document{}, err
		}
		img, err := backend.Render(ctx, doc.Path, i, opts.DPI)
		if err != nil {
			pdf.Abort()
			return domain.Document{}, fmt.Errorf("%w: page %d of %s: %v", domain.ErrRenderFailed, i+1, doc.Name(), err)
		}
		if err := pdf.AddPage(img); err != nil {
			pdf.Abort()
			return domain.Document{}, fmt.Errorf("%w: page %d of %s: %v", domain.ErrRenderFailed, i+1, doc.Name(), err)
		}
		logger.Debug("Rendered page %d/%d", i+1, pages)
	}

	// 4. Write
	if err := pdf.Close(ctx); err != nil {
		pdf.Abort()
		return domain.Document{}, fmt.Errorf("%w: write %s: %v", domain.ErrRenderFailed, output, err)
	}

	logger.Info("Image PDF written: %s (%.2f MB, input %.2f MB)",
		output, megabytes(fileSize(output)), megabytes(inputInfo.Size()))

	return domain.Document{Path: output, MediaType: domain.MediaTypePDF, PageCount: pages}, nil
}
