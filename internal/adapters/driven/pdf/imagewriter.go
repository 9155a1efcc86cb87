package pdf

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"golang.org/x/image/draw"

	"github.com/custodia-labs/pdfocr/internal/core/ports/driven"
)

// Ensure ImageWriter implements the interface.
var _ driven.ImagePDFWriter = (*ImageWriter)(nil)

// ImageWriter assembles image-only PDFs: each page is JPEG encoded and
// imported as a full-page image.
type ImageWriter struct {
	conf *model.Configuration
}

// NewImageWriter creates an image PDF writer.
func NewImageWriter() *ImageWriter {
	return &ImageWriter{conf: newConfiguration()}
}

// Create starts a document. Pages are spooled to a temporary directory so
// memory use does not grow with the page count.
func (w *ImageWriter) Create(outputPath string, quality int) (driven.ImagePDF, error) {
	if quality < 1 || quality > 100 {
		return nil, fmt.Errorf("jpeg quality must be between 1 and 100, got %d", quality)
	}
	dir, err := os.MkdirTemp("", "pdfocr-pages-*")
	if err != nil {
		return nil, fmt.Errorf("create page directory: %w", err)
	}
	return &imageDocument{
		conf:    w.conf,
		output:  outputPath,
		quality: quality,
		dir:     dir,
	}, nil
}

type imageDocument struct {
	conf    *model.Configuration
	output  string
	quality int
	dir     string
	pages   []string
	done    bool
}

func (d *imageDocument) AddPage(img image.Image) error {
	if d.done {
		return fmt.Errorf("document already closed")
	}
	path := filepath.Join(d.dir, fmt.Sprintf("page-%05d.jpg", len(d.pages)+1))
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := jpeg.Encode(f, Flatten(img), &jpeg.Options{Quality: d.quality}); err != nil {
		f.Close()
		return fmt.Errorf("encode page %d: %w", len(d.pages)+1, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	d.pages = append(d.pages, path)
	return nil
}

func (d *imageDocument) Close(ctx context.Context) error {
	if d.done {
		return fmt.Errorf("document already closed")
	}
	defer d.cleanup()

	if err := ctx.Err(); err != nil {
		return err
	}
	if len(d.pages) == 0 {
		return fmt.Errorf("no pages to write")
	}

	// Importing into an existing file appends pages to it.
	if err := os.Remove(d.output); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("replace %s: %w", d.output, err)
	}
	if err := api.ImportImagesFile(d.pages, d.output, pdfcpu.DefaultImportConfig(), d.conf); err != nil {
		os.Remove(d.output)
		return fmt.Errorf("write image pdf: %w", err)
	}
	return nil
}

func (d *imageDocument) Abort() {
	d.cleanup()
	os.Remove(d.output)
}

func (d *imageDocument) cleanup() {
	d.done = true
	os.RemoveAll(d.dir)
}

// Flatten returns img unchanged when it is an opaque image JPEG can encode
// directly. Anything else is composited onto white and returned as RGBA.
func Flatten(img image.Image) image.Image {
	switch m := img.(type) {
	case *image.YCbCr, *image.Gray:
		return img
	case *image.RGBA:
		if m.Opaque() {
			return img
		}
	}

	b := img.Bounds()
	dst := image.NewRGBA(b)
	draw.Draw(dst, b, image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(dst, b, img, b.Min, draw.Over)
	return dst
}
