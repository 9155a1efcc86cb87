package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/pdfocr/internal/core/domain"
	"github.com/custodia-labs/pdfocr/internal/core/ports/driven"
	"github.com/custodia-labs/pdfocr/internal/logger"
)

// Chunker splits PDFs into consecutive page ranges written as separate files.
type Chunker struct {
	counter  driven.PageCounter
	splitter driven.PDFSplitter
}

// NewChunker creates a chunker.
func NewChunker(counter driven.PageCounter, splitter driven.PDFSplitter) *Chunker {
	return &Chunker{counter: counter, splitter: splitter}
}

// Split writes one chunk file per range of at most pagesPerChunk pages into destDir.
// A document that fits in one chunk is still copied into destDir.
// Chunk names depend only on the document stem and chunk count, so splitting the
// same document twice yields the same files.
func (c *Chunker) Split(ctx context.Context, doc domain.Document, pagesPerChunk int, destDir string) ([]domain.Chunk, error) {
	return c.SplitNamed(ctx, doc, doc.Stem(), pagesPerChunk, destDir)
}

// SplitNamed is Split with chunk files named after stem instead of the document.
func (c *Chunker) SplitNamed(
	ctx context.Context,
	doc domain.Document,
	stem string,
	pagesPerChunk int,
	destDir string,
) ([]domain.Chunk, error) {
	if pagesPerChunk < 1 {
		return nil, fmt.Errorf("%w: pages per chunk must be at least 1, got %d", domain.ErrInvalidInput, pagesPerChunk)
	}
	if _, err := statInput(doc.Path); err != nil {
		return nil, err
	}

	pageCount := doc.PageCount
	if pageCount == 0 {
		n, err := c.counter.PageCount(ctx, doc.Path)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", domain.ErrCorruptDocument, doc.Path, err)
		}
		pageCount = n
	}

	ranges, err := domain.PartitionPages(pageCount, pagesPerChunk)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, fmt.Errorf("create chunk directory: %w", err)
	}

	logger.Info("Splitting %s (%d pages) into %d chunk(s) of up to %d pages", doc.Name(), pageCount, len(ranges), pagesPerChunk)

	parent := doc.WithPageCount(pageCount)
	chunks := make([]domain.Chunk, 0, len(ranges))
	for i, r := range ranges {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		dst := filepath.Join(destDir, domain.ChunkFileName(stem, i, len(ranges)))
		if len(ranges) == 1 {
			err = copyFile(doc.Path, dst)
		} else {
			err = c.splitter.ExtractPages(ctx, doc.Path, r, dst)
		}
		if err != nil {
			return nil, fmt.Errorf("write chunk %d (pages %s): %w", i+1, r, err)
		}

		chunks = append(chunks, domain.Chunk{
			Document: domain.Document{Path: dst, MediaType: domain.MediaTypePDF, PageCount: r.Len()},
			Parent:   parent,
			Pages:    r,
			Ordinal:  i,
		})
		logger.Debug("Chunk %d: pages %s -> %s", i+1, r, filepath.Base(dst))
	}
	return chunks, nil
}

// SingleChunk wraps a document that is submitted whole, such as an image.
func SingleChunk(doc domain.Document) domain.Chunk {
	pages := max(doc.PageCount, 1)
	return domain.Chunk{
		Document: doc,
		Parent:   doc,
		Pages:    domain.PageRange{Start: 1, End: pages},
		Ordinal:  0,
	}
}
