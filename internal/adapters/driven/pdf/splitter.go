package pdf

import (
	"context"
	"fmt"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/custodia-labs/pdfocr/internal/core/domain"
	"github.com/custodia-labs/pdfocr/internal/core/ports/driven"
)

// Ensure Splitter implements the interface.
var _ driven.PDFSplitter = (*Splitter)(nil)

// Splitter extracts page ranges with pdfcpu.
type Splitter struct {
	conf *model.Configuration
}

// NewSplitter creates a splitter.
func NewSplitter() *Splitter {
	return &Splitter{conf: newConfiguration()}
}

// ExtractPages writes pages of src to dst.
func (s *Splitter) ExtractPages(ctx context.Context, src string, pages domain.PageRange, dst string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if pages.Start < 1 || pages.End < pages.Start {
		return fmt.Errorf("%w: invalid page range %s", domain.ErrInvalidInput, pages)
	}

	if err := os.Remove(dst); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("replace %s: %w", dst, err)
	}
	if err := api.TrimFile(src, dst, []string{pages.String()}, s.conf); err != nil {
		os.Remove(dst)
		return fmt.Errorf("extract pages %s: %w", pages, err)
	}
	return nil
}
