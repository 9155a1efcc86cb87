package driven

import (
	"context"
	"image"

	"github.com/custodia-labs/pdfocr/internal/core/domain"
)

// RenderingBackend turns PDF pages into raster images.
// Several interchangeable implementations exist; selection picks one
// by explicit choice or by probing availability in priority order.
type RenderingBackend interface {
	// Kind identifies the implementation.
	Kind() domain.BackendKind

	// Available reports whether the backend's runtime dependency is installed.
	// Absence is expected and is not an error.
	Available() bool

	// PageCount returns the number of pages in the PDF at path.
	PageCount(ctx context.Context, path string) (int, error)

	// Render rasterises the page at pageIndex (0-based) at the given resolution.
	Render(ctx context.Context, path string, pageIndex, dpi int) (image.Image, error)
}

// AvailabilityProbe decides whether a backend can be used.
// The default probe asks the backend itself; tests inject fakes.
type AvailabilityProbe func(RenderingBackend) bool
