// Package domain defines the core entities of the pdfocr pipeline.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: An input file with its media type and page count
//   - Chunk: A contiguous page range of a Document materialised as its own file
//   - RecoveredText: The OCR text for one Chunk
//   - ProcessingFolder: The working directory of one session
//   - BatchRun and BatchReport: One directory run and its per-file outcomes
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
