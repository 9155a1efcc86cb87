package driven

import (
	"context"
	"image"

	"github.com/custodia-labs/pdfocr/internal/core/domain"
)

// PageCounter reads the number of pages in a PDF.
type PageCounter interface {
	PageCount(ctx context.Context, path string) (int, error)
}

// PDFSplitter writes a contiguous page range of a PDF to a new file.
type PDFSplitter interface {
	// ExtractPages writes pages of src to dst, replacing dst if it exists.
	ExtractPages(ctx context.Context, src string, pages domain.PageRange, dst string) error
}

// ImagePDFWriter starts new image-only PDF documents.
type ImagePDFWriter interface {
	// Create begins a document that will be written to outputPath.
	// Quality (1-100) controls lossy page compression.
	Create(outputPath string, quality int) (ImagePDF, error)
}

// ImagePDF is an image-only PDF being assembled page by page.
// Exactly one of Close or Abort must be called.
type ImagePDF interface {
	// AddPage appends a page. Images with transparency are flattened first.
	AddPage(img image.Image) error

	// Close writes the PDF to its output path.
	Close(ctx context.Context) error

	// Abort discards the pages and removes any partial output.
	Abort()
}
