package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pdfocr/internal/core/domain"
)

func convertOpts() domain.ConvertOptions {
	return domain.ConvertOptions{Render: domain.RenderOptions{DPI: 200, Quality: 95}}
}

func TestConvertService_Convert(t *testing.T) {
	dir := t.TempDir()
	doc := writeInput(t, dir, "scan.pdf", "%PDF-1.4")
	backend := &mockBackend{kind: domain.BackendMutool, available: true, pages: 2}
	svc := NewConvertService(NewBackendSelector(backend), NewImageAssembler(&mockImageWriter{}))

	res, err := svc.Convert(context.Background(), doc.Path, convertOpts())
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "scan_image.pdf"), res.Output.Path)
	assert.Equal(t, domain.BackendMutool, res.Backend)
	assert.Equal(t, 2, res.Input.PageCount)
	assert.Equal(t, int64(len("%PDF-1.4")), res.InputBytes)
	assert.Positive(t, res.OutputBytes)
	assert.Equal(t, []int{0, 1}, backend.rendered)
}

func TestConvertService_Convert_Errors(t *testing.T) {
	tests := []struct {
		name      string
		available bool
		input     string
		opts      domain.ConvertOptions
		want      error
	}{
		{name: "missing input", available: true, input: "nope.pdf", opts: convertOpts(), want: domain.ErrInputNotFound},
		{name: "directory", available: true, input: "sub.pdf", opts: convertOpts(), want: domain.ErrInvalidInput},
		{name: "not a pdf", available: true, input: "photo.png", opts: convertOpts(), want: domain.ErrUnsupportedType},
		{
			name:      "bad quality",
			available: true,
			input:     "scan.pdf",
			opts:      domain.ConvertOptions{Render: domain.RenderOptions{DPI: 200, Quality: 101}},
			want:      domain.ErrInvalidInput,
		},
		{
			name:      "bad dpi",
			available: true,
			input:     "scan.pdf",
			opts:      domain.ConvertOptions{Render: domain.RenderOptions{DPI: 0, Quality: 95}},
			want:      domain.ErrInvalidInput,
		},
		{name: "no backend", available: false, input: "scan.pdf", opts: convertOpts(), want: domain.ErrNoBackendAvailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeInput(t, dir, "scan.pdf", "%PDF")
			writeInput(t, dir, "photo.png", "png")
			require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.pdf"), 0o755))
			backend := &mockBackend{kind: domain.BackendPdftoppm, available: tt.available, pages: 1}
			svc := NewConvertService(NewBackendSelector(backend), NewImageAssembler(&mockImageWriter{}))

			_, err := svc.Convert(context.Background(), filepath.Join(dir, tt.input), tt.opts)

			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, backend.rendered)
			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			assert.Len(t, entries, 3, "no output is written on failure")
		})
	}
}
