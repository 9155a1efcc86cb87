package services

import (
	"fmt"
	"slices"
	"strings"

	"github.com/custodia-labs/pdfocr/internal/core/domain"
)

var separatorRule = strings.Repeat("=", 50)

// ChunkSeparator returns the boundary line written after the chunk at ordinal.
// Chunk numbers in the marker are 1-based.
func ChunkSeparator(ordinal int, pages domain.PageRange) string {
	return fmt.Sprintf("\n\n%s Chunk %d End (pages %s) %s\n\n", separatorRule, ordinal+1, pages, separatorRule)
}

// Combine concatenates chunk texts in ascending ordinal order with a boundary
// marker between consecutive chunks.
// Returns domain.ErrIncompleteResults unless the ordinals are exactly 0..n-1.
func Combine(results []domain.RecoveredText) (string, error) {
	if len(results) == 0 {
		return "", fmt.Errorf("%w: no chunk results", domain.ErrIncompleteResults)
	}

	sorted := slices.Clone(results)
	slices.SortFunc(sorted, func(a, b domain.RecoveredText) int {
		return a.Ordinal - b.Ordinal
	})

	for i, r := range sorted {
		if r.Ordinal != i {
			return "", fmt.Errorf("%w: missing chunk %d of %d", domain.ErrIncompleteResults, i+1, len(sorted))
		}
	}

	var sb strings.Builder
	for i, r := range sorted {
		sb.WriteString(r.Text)
		if i < len(sorted)-1 {
			sb.WriteString(ChunkSeparator(r.Ordinal, r.Pages))
		}
	}
	return sb.String(), nil
}
