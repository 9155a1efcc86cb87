package render

import (
	"context"
	"fmt"
	"image"
	_ "image/png" // pdftoppm and mutool write PNG
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	_ "golang.org/x/image/tiff" // ghostscript writes TIFF

	"github.com/custodia-labs/pdfocr/internal/core/domain"
	"github.com/custodia-labs/pdfocr/internal/core/ports/driven"
	"github.com/custodia-labs/pdfocr/internal/logger"
)

// Ensure Backend implements the interface.
var _ driven.RenderingBackend = (*Backend)(nil)

// Runner executes an external command and returns its combined output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Run executes name with args.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// argsFunc builds the command line that renders one page (1-based) of in.
// It returns the arguments and the image file the command will write.
type argsFunc func(in, workDir string, page, dpi int) (args []string, output string)

// Backend renders pages with an external tool.
type Backend struct {
	kind     domain.BackendKind
	binary   string
	args     argsFunc
	counter  driven.PageCounter
	runner   Runner
	lookPath func(string) (string, error)
}

// Option configures a Backend.
type Option func(*Backend)

// WithRunner replaces the command runner.
func WithRunner(r Runner) Option {
	return func(b *Backend) { b.runner = r }
}

// WithLookPath replaces the binary lookup used for availability.
func WithLookPath(fn func(string) (string, error)) Option {
	return func(b *Backend) { b.lookPath = fn }
}

// WithBinary overrides the executable name or path.
func WithBinary(path string) Option {
	return func(b *Backend) { b.binary = path }
}

func newBackend(kind domain.BackendKind, binary string, args argsFunc, counter driven.PageCounter, opts []Option) *Backend {
	b := &Backend{
		kind:     kind,
		binary:   binary,
		args:     args,
		counter:  counter,
		runner:   ExecRunner{},
		lookPath: exec.LookPath,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// NewPdftoppm creates the Poppler backend.
func NewPdftoppm(counter driven.PageCounter, opts ...Option) *Backend {
	return newBackend(domain.BackendPdftoppm, "pdftoppm", func(in, workDir string, page, dpi int) ([]string, string) {
		prefix := filepath.Join(workDir, "page")
		n := strconv.Itoa(page)
		return []string{"-r", strconv.Itoa(dpi), "-f", n, "-l", n, "-png", "-singlefile", in, prefix}, prefix + ".png"
	}, counter, opts)
}

// NewMutool creates the MuPDF backend.
func NewMutool(counter driven.PageCounter, opts ...Option) *Backend {
	return newBackend(domain.BackendMutool, "mutool", func(in, workDir string, page, dpi int) ([]string, string) {
		out := filepath.Join(workDir, "page.png")
		return []string{"draw", "-r", strconv.Itoa(dpi), "-o", out, in, strconv.Itoa(page)}, out
	}, counter, opts)
}

// NewGhostscript creates the Ghostscript backend.
func NewGhostscript(counter driven.PageCounter, opts ...Option) *Backend {
	return newBackend(domain.BackendGhostscript, "gs", func(in, workDir string, page, dpi int) ([]string, string) {
		out := filepath.Join(workDir, "page.tif")
		return []string{
			"-q", "-dSAFER", "-dBATCH", "-dNOPAUSE",
			"-sDEVICE=tiff24nc",
			fmt.Sprintf("-r%d", dpi),
			fmt.Sprintf("-dFirstPage=%d", page),
			fmt.Sprintf("-dLastPage=%d", page),
			"-sOutputFile=" + out,
			in,
		}, out
	}, counter, opts)
}

// All returns every backend in priority order.
func All(counter driven.PageCounter, opts ...Option) []driven.RenderingBackend {
	return []driven.RenderingBackend{
		NewPdftoppm(counter, opts...),
		NewMutool(counter, opts...),
		NewGhostscript(counter, opts...),
	}
}

// Kind identifies the backend.
func (b *Backend) Kind() domain.BackendKind {
	return b.kind
}

// Available reports whether the backend's binary is on PATH.
func (b *Backend) Available() bool {
	_, err := b.lookPath(b.binary)
	return err == nil
}

// PageCount returns the number of pages in the PDF.
func (b *Backend) PageCount(ctx context.Context, path string) (int, error) {
	return b.counter.PageCount(ctx, path)
}

// Render rasterises one page (0-based) at dpi.
func (b *Backend) Render(ctx context.Context, path string, pageIndex, dpi int) (image.Image, error) {
	if pageIndex < 0 {
		return nil, fmt.Errorf("invalid page index %d", pageIndex)
	}

	workDir, err := os.MkdirTemp("", "pdfocr-render-*")
	if err != nil {
		return nil, fmt.Errorf("create render directory: %w", err)
	}
	defer os.RemoveAll(workDir)

	args, output := b.args(path, workDir, pageIndex+1, dpi)
	logger.Debug("%s %s", b.binary, strings.Join(args, " "))

	if out, err := b.runner.Run(ctx, b.binary, args...); err != nil {
		msg := strings.TrimSpace(string(out))
		if msg == "" {
			return nil, fmt.Errorf("%s page %d: %w", b.binary, pageIndex+1, err)
		}
		return nil, fmt.Errorf("%s page %d: %w: %s", b.binary, pageIndex+1, err, msg)
	}

	return decodeImage(output)
}

func decodeImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read rendered page: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode rendered page: %w", err)
	}
	return img, nil
}
