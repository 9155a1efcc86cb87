// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - RenderingBackend: Renders one PDF page to a raster image
//   - PageCounter: Reads a PDF's page count
//   - PDFSplitter: Writes a page range of a PDF to a new file
//   - ImagePDFWriter: Encodes rendered pages into an image-only PDF
//   - OCRService: Remote text extraction (Google Drive)
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - RunStore: Run history. Without it nothing is recorded.
//   - DirectoryWatcher: File arrival events. Without it batch watch mode is disabled.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or connector package
package driven
