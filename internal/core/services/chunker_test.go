package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pdfocr/internal/core/domain"
)

func writeInput(t *testing.T, dir, name, content string) domain.Document {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	doc, err := domain.NewDocument(path)
	require.NoError(t, err)
	return doc
}

func TestChunker_Split_Coverage(t *testing.T) {
	for _, tc := range []struct {
		pages, size int
		want        []int
	}{
		{pages: 10, size: 10, want: []int{10}},
		{pages: 10, size: 3, want: []int{3, 3, 3, 1}},
		{pages: 25, size: 10, want: []int{10, 10, 5}},
		{pages: 1, size: 5, want: []int{1}},
		{pages: 7, size: 1, want: []int{1, 1, 1, 1, 1, 1, 1}},
	} {
		dir := t.TempDir()
		doc := writeInput(t, dir, "report.pdf", "%PDF")
		chunker := NewChunker(&mockPageCounter{fallback: tc.pages}, &mockSplitter{})

		chunks, err := chunker.Split(context.Background(), doc, tc.size, filepath.Join(dir, "out"))
		require.NoError(t, err)
		require.Len(t, chunks, len(tc.want))

		next := 1
		for i, c := range chunks {
			assert.Equal(t, i, c.Ordinal)
			assert.Equal(t, next, c.Pages.Start, "chunk %d must start where the previous ended", i)
			assert.Equal(t, tc.want[i], c.Pages.Len())
			assert.FileExists(t, c.Path)
			next = c.Pages.End + 1
		}
		assert.Equal(t, tc.pages+1, next, "ranges must cover every page")
	}
}

func TestChunker_Split_SingleChunkIsCopied(t *testing.T) {
	dir := t.TempDir()
	doc := writeInput(t, dir, "report.pdf", "%PDF-original")
	splitter := &mockSplitter{}
	chunker := NewChunker(&mockPageCounter{fallback: 4}, splitter)

	chunks, err := chunker.Split(context.Background(), doc, 10, filepath.Join(dir, "out"))
	require.NoError(t, err)
	require.Len(t, chunks, 1)

	assert.Empty(t, splitter.calls)
	assert.Equal(t, "report_chunk_1.pdf", filepath.Base(chunks[0].Path))
	data, err := os.ReadFile(chunks[0].Path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-original", string(data))
}

func TestChunker_Split_DeterministicNames(t *testing.T) {
	dir := t.TempDir()
	doc := writeInput(t, dir, "report.pdf", "%PDF")
	chunker := NewChunker(&mockPageCounter{fallback: 25}, &mockSplitter{})

	first, err := chunker.Split(context.Background(), doc, 10, filepath.Join(dir, "a"))
	require.NoError(t, err)
	second, err := chunker.Split(context.Background(), doc, 10, filepath.Join(dir, "b"))
	require.NoError(t, err)

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, filepath.Base(first[i].Path), filepath.Base(second[i].Path))
		assert.Equal(t, first[i].Pages, second[i].Pages)
	}
	assert.Equal(t, "report_chunk_1.pdf", filepath.Base(first[0].Path))
	assert.Equal(t, "report_chunk_3.pdf", filepath.Base(first[2].Path))
}

func TestChunker_Split_PadsLargeCounts(t *testing.T) {
	dir := t.TempDir()
	doc := writeInput(t, dir, "big.pdf", "%PDF")
	chunker := NewChunker(&mockPageCounter{fallback: 120}, &mockSplitter{})

	chunks, err := chunker.Split(context.Background(), doc, 10, dir)
	require.NoError(t, err)
	require.Len(t, chunks, 12)
	assert.Equal(t, "big_chunk_01.pdf", filepath.Base(chunks[0].Path))
	assert.Equal(t, "big_chunk_12.pdf", filepath.Base(chunks[11].Path))
}

func TestChunker_Split_UsesKnownPageCount(t *testing.T) {
	dir := t.TempDir()
	doc := writeInput(t, dir, "report.pdf", "%PDF").WithPageCount(6)
	chunker := NewChunker(&mockPageCounter{err: errors.New("should not be called")}, &mockSplitter{})

	chunks, err := chunker.Split(context.Background(), doc, 3, dir)
	require.NoError(t, err)
	assert.Len(t, chunks, 2)
}

func TestChunker_Split_Errors(t *testing.T) {
	dir := t.TempDir()
	doc := writeInput(t, dir, "report.pdf", "%PDF")

	t.Run("invalid size", func(t *testing.T) {
		_, err := NewChunker(&mockPageCounter{fallback: 3}, &mockSplitter{}).Split(context.Background(), doc, 0, dir)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("missing input", func(t *testing.T) {
		missing := domain.Document{Path: filepath.Join(dir, "missing.pdf"), MediaType: domain.MediaTypePDF}
		_, err := NewChunker(&mockPageCounter{fallback: 3}, &mockSplitter{}).Split(context.Background(), missing, 2, dir)
		assert.ErrorIs(t, err, domain.ErrInputNotFound)
	})

	t.Run("corrupt document", func(t *testing.T) {
		_, err := NewChunker(&mockPageCounter{err: errors.New("no xref")}, &mockSplitter{}).Split(context.Background(), doc, 2, dir)
		assert.ErrorIs(t, err, domain.ErrCorruptDocument)
	})

	t.Run("zero pages", func(t *testing.T) {
		_, err := NewChunker(&mockPageCounter{fallback: 0}, &mockSplitter{}).Split(context.Background(), doc, 2, dir)
		assert.ErrorIs(t, err, domain.ErrCorruptDocument)
	})

	t.Run("splitter failure", func(t *testing.T) {
		_, err := NewChunker(&mockPageCounter{fallback: 4}, &mockSplitter{err: errors.New("disk full")}).Split(context.Background(), doc, 2, dir)
		assert.ErrorContains(t, err, "disk full")
	})
}

func TestSingleChunk(t *testing.T) {
	doc := domain.Document{Path: "/tmp/scan.png", MediaType: domain.MediaTypePNG}
	c := SingleChunk(doc)
	assert.Equal(t, 0, c.Ordinal)
	assert.Equal(t, domain.PageRange{Start: 1, End: 1}, c.Pages)
	assert.Equal(t, doc.Path, c.Path)
}
