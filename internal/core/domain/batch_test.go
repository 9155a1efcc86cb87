package domain

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBatchRootName(t *testing.T) {
	ts := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	assert.Equal(t, "batch_processing_20260304_050607", BatchRootName(ts))
}

func TestBatchRun_FolderFor(t *testing.T) {
	run := BatchRun{Root: filepath.Join("src", "batch_processing_x")}

	pdf, _ := NewDocument(filepath.Join("src", "invoice.pdf"))
	png, _ := NewDocument(filepath.Join("src", "receipt.PNG"))

	assert.Equal(t, filepath.Join(run.Root, "invoice"), run.FolderFor(pdf))
	assert.Equal(t, filepath.Join(run.Root, "png_files", "receipt"), run.FolderFor(png))
}

func TestBatchReport_Counts(t *testing.T) {
	report := &BatchReport{Outcomes: []FileOutcome{
		{Input: "a.pdf"},
		{Input: "b.pdf", Err: errors.New("ocr failed")},
		{Input: "c.jpg"},
	}}

	assert.Equal(t, 2, report.Succeeded())
	assert.Equal(t, 1, report.Failed())
	assert.Len(t, report.Failures(), 1)
	assert.Equal(t, "b.pdf", report.Failures()[0].Input)
	assert.Equal(t, map[string]int{"pdf": 2, "jpg": 1}, report.CountByType())
}

func TestRecordFromBatch(t *testing.T) {
	start := time.Now().Add(-time.Minute)
	report := &BatchReport{
		Run:        BatchRun{ID: "run-1", SourceDir: "src", Root: "src/batch", StartedAt: start},
		FinishedAt: start.Add(time.Minute),
		Outcomes: []FileOutcome{
			{Input: "a.pdf", Output: "a.txt"},
			{Input: "b.pdf", Err: errors.New("boom")},
		},
	}

	rec := RecordFromBatch(report)

	assert.Equal(t, RunKindBatch, rec.Kind)
	assert.Equal(t, 1, rec.Succeeded)
	assert.Equal(t, 1, rec.Failed)
	assert.Equal(t, time.Minute, rec.Duration())
	assert.Len(t, rec.Files, 2)
	assert.Equal(t, "boom", rec.Files[1].Error)
}

func TestParseBackendKind(t *testing.T) {
	for in, want := range map[string]BackendKind{
		"":         BackendAuto,
		"auto":     BackendAuto,
		"Poppler":  BackendPdftoppm,
		"mupdf":    BackendMutool,
		"gs":       BackendGhostscript,
		"pdftoppm": BackendPdftoppm,
	} {
		got, err := ParseBackendKind(in)
		assert.NoError(t, err)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseBackendKind("imagemagick")
	assert.True(t, errors.Is(err, ErrInvalidInput))
}
