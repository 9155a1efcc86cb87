package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/custodia-labs/pdfocr/internal/core/domain"
	"github.com/custodia-labs/pdfocr/internal/core/ports/driven"
)

// mockPageCounter returns a fixed page count per path, or a default.
type mockPageCounter struct {
	pages    map[string]int
	fallback int
	err      error
}

func (m *mockPageCounter) PageCount(_ context.Context, path string) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	if n, ok := m.pages[path]; ok {
		return n, nil
	}
	return m.fallback, nil
}

// mockSplitter writes a small text file describing the extracted range.
type mockSplitter struct {
	mu    sync.Mutex
	calls []domain.PageRange
	err   error
}

func (m *mockSplitter) ExtractPages(_ context.Context, src string, pages domain.PageRange, dst string) error {
	m.mu.Lock()
	m.calls = append(m.calls, pages)
	m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	return os.WriteFile(dst, []byte(fmt.Sprintf("%s pages %s", src, pages)), 0o644)
}

// mockBackend renders solid images and can fail on a chosen page.
type mockBackend struct {
	kind      domain.BackendKind
	available bool
	pages     int
	failPage  int
	mu        sync.Mutex
	rendered  []int
}

func (m *mockBackend) Kind() domain.BackendKind { return m.kind }

func (m *mockBackend) Available() bool { return m.available }

func (m *mockBackend) PageCount(_ context.Context, _ string) (int, error) {
	return m.pages, nil
}

func (m *mockBackend) Render(_ context.Context, _ string, pageIndex, _ int) (image.Image, error) {
	m.mu.Lock()
	m.rendered = append(m.rendered, pageIndex)
	m.mu.Unlock()
	if m.failPage > 0 && pageIndex+1 == m.failPage {
		return nil, errors.New("render crashed")
	}
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	img.Set(0, 0, color.NRGBA{R: 255, A: 128})
	return img, nil
}

// mockImageWriter writes one line per page when closed.
type mockImageWriter struct {
	createErr error
	addErr    error
	closeErr  error
	aborted   bool
}

func (m *mockImageWriter) Create(outputPath string, quality int) (driven.ImagePDF, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	return &mockImagePDF{w: m, out: outputPath, quality: quality}, nil
}

type mockImagePDF struct {
	w       *mockImageWriter
	out     string
	quality int
	pages   int
	started bool
}

func (p *mockImagePDF) AddPage(_ image.Image) error {
	if p.w.addErr != nil {
		return p.w.addErr
	}
	if !p.started {
		// Simulate a writer that streams to disk as pages arrive.
		if err := os.WriteFile(p.out, []byte("%PDF-partial"), 0o644); err != nil {
			return err
		}
		p.started = true
	}
	p.pages++
	return nil
}

func (p *mockImagePDF) Close(_ context.Context) error {
	if p.w.closeErr != nil {
		return p.w.closeErr
	}
	return os.WriteFile(p.out, []byte(fmt.Sprintf("%%PDF image pages=%d quality=%d", p.pages, p.quality)), 0o644)
}

func (p *mockImagePDF) Abort() {
	p.w.aborted = true
	os.Remove(p.out)
}

// mockOCR is a scriptable OCR service.
type mockOCR struct {
	mu sync.Mutex

	limits driven.OCRLimits

	// uploadErrs are returned by successive Upload calls before succeeding.
	uploadErrs []error

	// failNames makes Upload fail permanently for names containing the key.
	failNames map[string]error

	extractErr error
	releaseErr error

	uploads  []string
	released []string
	next     int
	texts    map[string]string
}

func newMockOCR() *mockOCR {
	return &mockOCR{
		limits: driven.OCRLimits{
			MaxBytes:   1 << 20,
			MediaTypes: []domain.MediaType{domain.MediaTypePDF, domain.MediaTypePNG, domain.MediaTypeJPEG},
		},
		texts: make(map[string]string),
	}
}

func (m *mockOCR) Upload(_ context.Context, name string, _ domain.MediaType, r io.Reader) (driven.RemoteHandle, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return driven.RemoteHandle{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.uploads = append(m.uploads, name)
	for key, ferr := range m.failNames {
		if strings.Contains(name, key) {
			return driven.RemoteHandle{}, ferr
		}
	}
	if len(m.uploadErrs) > 0 {
		err := m.uploadErrs[0]
		m.uploadErrs = m.uploadErrs[1:]
		return driven.RemoteHandle{}, err
	}
	m.next++
	id := fmt.Sprintf("remote-%d", m.next)
	m.texts[id] = "text of " + name + ": " + string(bytes.TrimSpace(data))
	return driven.RemoteHandle{ID: id, Name: name}, nil
}

func (m *mockOCR) ExtractText(_ context.Context, h driven.RemoteHandle) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.extractErr != nil {
		return "", m.extractErr
	}
	return m.texts[h.ID], nil
}

func (m *mockOCR) Release(_ context.Context, h driven.RemoteHandle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.released = append(m.released, h.ID)
	return m.releaseErr
}

func (m *mockOCR) Limits() driven.OCRLimits {
	return m.limits
}

func (m *mockOCR) uploadCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.uploads)
}

func (m *mockOCR) releasedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.released)
}

// mockRunStore records saved runs.
type mockRunStore struct {
	mu   sync.Mutex
	runs []domain.RunRecord
	err  error
}

func (m *mockRunStore) SaveRun(_ context.Context, run domain.RunRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	for i := range m.runs {
		if m.runs[i].ID == run.ID {
			m.runs[i] = run
			return nil
		}
	}
	m.runs = append(m.runs, run)
	return nil
}

func (m *mockRunStore) RecentRuns(_ context.Context, limit int) ([]domain.RunRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if limit > len(m.runs) {
		limit = len(m.runs)
	}
	return m.runs[:limit], nil
}

func (m *mockRunStore) GetRun(_ context.Context, id string) (*domain.RunRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.runs {
		if r.ID == id {
			return &r, nil
		}
	}
	return nil, domain.ErrNotFound
}

// mockWatcher delivers paths pushed by the test.
type mockWatcher struct {
	events chan string
	errs   chan error
	err    error
}

func newMockWatcher() *mockWatcher {
	return &mockWatcher{events: make(chan string, 4), errs: make(chan error, 1)}
}

func (m *mockWatcher) Watch(_ context.Context, _ string) (<-chan string, <-chan error, error) {
	if m.err != nil {
		return nil, nil, m.err
	}
	return m.events, m.errs, nil
}
