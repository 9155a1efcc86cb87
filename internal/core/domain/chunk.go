package domain

import (
	"fmt"
	"strconv"
)

// PageRange is an inclusive, 1-based range of pages.
type PageRange struct {
	Start int
	End   int
}

// Len returns the number of pages in the range.
func (r PageRange) Len() int {
	return r.End - r.Start + 1
}

// String renders the range as "a-b", or "a" for a single page.
func (r PageRange) String() string {
	if r.Start == r.End {
		return strconv.Itoa(r.Start)
	}
	return fmt.Sprintf("%d-%d", r.Start, r.End)
}

// PartitionPages splits pages [1..pageCount] into consecutive ranges of at
// most pagesPerChunk pages. The last range may be shorter.
func PartitionPages(pageCount, pagesPerChunk int) ([]PageRange, error) {
	if pagesPerChunk < 1 {
		return nil, fmt.Errorf("%w: pages per chunk must be at least 1, got %d", ErrInvalidInput, pagesPerChunk)
	}
	if pageCount < 1 {
		return nil, fmt.Errorf("%w: document has no pages", ErrCorruptDocument)
	}

	ranges := make([]PageRange, 0, (pageCount+pagesPerChunk-1)/pagesPerChunk)
	for start := 1; start <= pageCount; start += pagesPerChunk {
		end := min(start+pagesPerChunk-1, pageCount)
		ranges = append(ranges, PageRange{Start: start, End: end})
	}
	return ranges, nil
}

// Chunk is a contiguous page range of a parent document, materialised as
// its own file. Chunks belong to the session that created them.
type Chunk struct {
	// Document is the chunk file itself.
	Document

	// Parent is the document the pages were taken from.
	Parent Document

	// Pages is the range of parent pages the chunk covers.
	Pages PageRange

	// Ordinal is the 0-based position used to order results.
	Ordinal int
}

// ChunkFileName returns the deterministic file name for the chunk at ordinal
// (0-based) out of total. Numbers are zero-padded to the width of total so
// lexical and numeric ordering agree.
func ChunkFileName(stem string, ordinal, total int) string {
	width := len(strconv.Itoa(max(total, 1)))
	return fmt.Sprintf("%s_chunk_%0*d.pdf", stem, width, ordinal+1)
}

// RecoveredText is the OCR output for one chunk.
type RecoveredText struct {
	Ordinal int
	Pages   PageRange
	Text    string
}
