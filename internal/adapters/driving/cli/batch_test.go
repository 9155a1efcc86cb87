package cli

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pdfocr/internal/core/domain"
)

func testBatchReport() *domain.BatchReport {
	return &domain.BatchReport{
		Run: domain.BatchRun{
			ID:        "run-1",
			SourceDir: "/scans",
			Root:      "/scans/batch_processing_20250314_092653",
		},
		Outcomes: []domain.FileOutcome{
			{Input: "/scans/a.pdf", MediaType: domain.MediaTypePDF, Chunks: 2, Duration: time.Second},
			{
				Input:     "/scans/b.pdf",
				MediaType: domain.MediaTypePDF,
				Err:       &domain.StageError{Stage: domain.StageOCR, Path: "/scans/b.pdf", Err: errors.New("rejected")},
			},
			{Input: "/scans/c.png", MediaType: domain.MediaTypePNG, Chunks: 1, Degraded: true},
		},
	}
}

func setupBatchTest() (*mockBatchRunner, *mockSettings, func()) {
	runner := &mockBatchRunner{report: testBatchReport()}
	settings := newMockSettings()
	cleanup := setupServicesTest(Services{BatchRunner: runner, Settings: settings})
	return runner, settings, cleanup
}

func TestBatchCmd_Use(t *testing.T) {
	assert.Equal(t, "ocr-batch <directory>", batchCmd.Use)
}

func TestBatchCmd_Short(t *testing.T) {
	assert.Equal(t, "Recover the text of every document in a directory", batchCmd.Short)
}

func TestBatchCmd_ReportsOutcomes(t *testing.T) {
	runner, _, cleanup := setupBatchTest()
	defer cleanup()

	out, err := executeCommand(nil, "ocr-batch", "/scans")

	require.Error(t, err)
	assert.EqualError(t, err, "1 of 3 documents failed")
	assert.Equal(t, "/scans", runner.dir)

	assert.Contains(t, out, "Found 3 file(s)")
	assert.Regexp(t, `pdf\s+2`, out)
	assert.Regexp(t, `png\s+1`, out)
	assert.Contains(t, out, "[  OK  ] a.pdf")
	assert.Contains(t, out, "[FAILED] b.pdf")
	assert.Contains(t, out, "ocr failed for /scans/b.pdf: rejected")
	assert.Contains(t, out, "[  OK  ] c.png")
	assert.Contains(t, out, "original PDF submitted")
	assert.Regexp(t, `Succeeded:\s+2`, out)
	assert.Regexp(t, `Failed:\s+1`, out)
	assert.Contains(t, out, "/scans/batch_processing_20250314_092653")
	assert.False(t, runner.watchCall)
}

func TestBatchCmd_AllSucceeded(t *testing.T) {
	runner, _, cleanup := setupBatchTest()
	defer cleanup()
	runner.report.Outcomes = runner.report.Outcomes[:1]

	_, err := executeCommand(nil, "ocr-batch", "/scans")
	assert.NoError(t, err)
}

func TestBatchCmd_EmptyDirectory(t *testing.T) {
	runner, _, cleanup := setupBatchTest()
	defer cleanup()
	runner.report.Outcomes = nil

	out, err := executeCommand(nil, "ocr-batch", "/scans")

	require.NoError(t, err)
	assert.Contains(t, out, "No supported files found.")
}

func TestBatchCmd_OptionsFromSettings(t *testing.T) {
	runner, settings, cleanup := setupBatchTest()
	defer cleanup()
	settings.settings.BatchConcurrency = 4
	settings.settings.BatchTypes = []string{"pdf"}
	settings.settings.PagesPerChunk = 7

	_, _ = executeCommand(nil, "ocr-batch", "/scans")

	assert.Equal(t, 4, runner.opts.Concurrency)
	assert.Equal(t, []string{"pdf"}, runner.exts)
	assert.Equal(t, 7, runner.opts.Session.PagesPerChunk)
}

func TestBatchCmd_FlagsOverrideSettings(t *testing.T) {
	runner, settings, cleanup := setupBatchTest()
	defer cleanup()
	settings.settings.BatchTypes = []string{"pdf"}

	_, _ = executeCommand(nil, "ocr-batch", "/scans", "--types", "png, .JPG,", "-j", "2", "--keep-chunks")

	assert.Equal(t, []string{"png", ".JPG"}, runner.exts)
	assert.Equal(t, 2, runner.opts.Concurrency)
	assert.True(t, runner.opts.Session.KeepChunks)
}

func TestBatchCmd_InvalidConcurrency(t *testing.T) {
	runner, _, cleanup := setupBatchTest()
	defer cleanup()

	_, err := executeCommand(nil, "ocr-batch", "/scans", "--concurrency", "0")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, runner.dir)
}

func TestBatchCmd_RunError(t *testing.T) {
	runner, _, cleanup := setupBatchTest()
	defer cleanup()
	runner.err = domain.ErrInputNotFound

	_, err := executeCommand(nil, "ocr-batch", "/missing")

	assert.ErrorIs(t, err, domain.ErrInputNotFound)
	assert.Contains(t, err.Error(), "batch failed")
}

func TestBatchCmd_Watch(t *testing.T) {
	runner, _, cleanup := setupBatchTest()
	defer cleanup()
	runner.report.Outcomes = runner.report.Outcomes[:1]
	runner.watchNew = []domain.FileOutcome{
		{Input: "/scans/late.pdf", MediaType: domain.MediaTypePDF, Chunks: 1},
	}

	out, err := executeCommand(strings.NewReader(""), "ocr-batch", "/scans", "--watch")

	require.NoError(t, err)
	assert.True(t, runner.watchCall)
	assert.Contains(t, out, "Watching /scans for new files.")
	assert.NotContains(t, out, "Ctrl+C", "stdin is not a terminal")
	assert.Contains(t, out, "[  OK  ] late.pdf")
	assert.Regexp(t, `Processed:\s+2`, out)
}

func TestBatchCmd_WatchError(t *testing.T) {
	runner, _, cleanup := setupBatchTest()
	defer cleanup()
	runner.watchErr = errors.New("too many open files")

	_, err := executeCommand(nil, "ocr-batch", "/scans", "-w")

	assert.ErrorContains(t, err, "watch failed: too many open files")
}

func TestBatchCmd_NotConfigured(t *testing.T) {
	cleanup := setupServicesTest(Services{})
	defer cleanup()

	_, err := executeCommand(nil, "ocr-batch", "/scans")
	assert.EqualError(t, err, "batch service not configured")
}

func TestSplitTypes(t *testing.T) {
	assert.Nil(t, splitTypes(""))
	assert.Nil(t, splitTypes(" , "))
	assert.Equal(t, []string{"pdf", "png"}, splitTypes("pdf,png"))
	assert.Equal(t, []string{"pdf", ".jpg"}, splitTypes(" pdf , .jpg "))
}
