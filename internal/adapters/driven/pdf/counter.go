package pdf

import (
	"context"
	"fmt"

	pdflib "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/custodia-labs/pdfocr/internal/core/ports/driven"
	"github.com/custodia-labs/pdfocr/internal/logger"
)

// Ensure PageCounter implements the interface.
var _ driven.PageCounter = (*PageCounter)(nil)

// PageCounter reads page counts from PDF files.
type PageCounter struct{}

// NewPageCounter creates a page counter.
func NewPageCounter() *PageCounter {
	return &PageCounter{}
}

// PageCount returns the number of pages in the PDF at path.
func (c *PageCounter) PageCount(ctx context.Context, path string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	n, err := countPages(path)
	if err == nil && n > 0 {
		return n, nil
	}
	logger.Debug("Falling back to pdfcpu for page count of %s: %v", path, err)

	n, ferr := api.PageCountFile(path)
	if ferr != nil {
		if err == nil {
			err = ferr
		}
		return 0, fmt.Errorf("read page count: %w", err)
	}
	return n, nil
}

// countPages uses ledongthuc/pdf, which panics on some malformed files.
func countPages(path string) (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parse %s: %v", path, r)
		}
	}()

	f, reader, err := pdflib.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	return reader.NumPage(), nil
}
