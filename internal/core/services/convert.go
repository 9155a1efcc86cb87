package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/pdfocr/internal/core/domain"
	"github.com/custodia-labs/pdfocr/internal/core/ports/driving"
	"github.com/custodia-labs/pdfocr/internal/logger"
)

// Ensure ConvertService implements the interface.
var _ driving.Converter = (*ConvertService)(nil)

// ConvertService runs the stand-alone PDF to image PDF conversion.
type ConvertService struct {
	selector  *BackendSelector
	assembler *ImageAssembler
}

// NewConvertService creates a conversion service.
func NewConvertService(selector *BackendSelector, assembler *ImageAssembler) *ConvertService {
	return &ConvertService{selector: selector, assembler: assembler}
}

// Convert renders every page of input into a new image PDF.
func (s *ConvertService) Convert(ctx context.Context, input string, opts domain.ConvertOptions) (*domain.ConversionResult, error) {
	logger.Section("Convert")

	// 1. Fail fast on bad input
	if err := opts.Render.Validate(); err != nil {
		return nil, err
	}
	info, err := statInput(input)
	if err != nil {
		return nil, err
	}
	doc, err := domain.NewDocument(input)
	if err != nil {
		return nil, err
	}
	if !doc.MediaType.IsPDF() {
		return nil, fmt.Errorf("%w: convert requires a PDF, got %s", domain.ErrUnsupportedType, doc.Name())
	}

	// 2. Select backend
	backend, err := s.selector.Select(opts.Render.Backend)
	if err != nil {
		return nil, err
	}

	// 3. Render and assemble
	out, err := s.assembler.Normalize(ctx, doc, domain.NormalizeOptions{
		DPI:        opts.Render.DPI,
		Quality:    opts.Render.Quality,
		OutputPath: opts.OutputPath,
	}, backend)
	if err != nil {
		return nil, err
	}

	return &domain.ConversionResult{
		Input:       doc.WithPageCount(out.PageCount),
		Output:      out,
		Backend:     backend.Kind(),
		InputBytes:  info.Size(),
		OutputBytes: fileSize(out.Path),
	}, nil
}
