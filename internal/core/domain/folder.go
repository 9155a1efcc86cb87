package domain

import (
	"path/filepath"
	"time"
)

// File naming for session artefacts.
const (
	processingSuffix = "_processing"
	ocrTextSuffix    = "_ocr_text.txt"
	imagePDFSuffix   = "_image.pdf"
	batchRootPrefix  = "batch_processing_"
	batchRootLayout  = "20060102_150405"
)

// ProcessingFolder is the working directory of one session.
// It is created at session start and never reused across runs.
type ProcessingFolder struct {
	// Path is the folder location.
	Path string

	// Original is the copy of the input document kept inside the folder.
	Original string
}

// Join returns a path inside the folder.
func (f ProcessingFolder) Join(name string) string {
	return filepath.Join(f.Path, name)
}

// ProcessingFolderName returns the default folder name for a document stem.
func ProcessingFolderName(stem string) string {
	return stem + processingSuffix
}

// OCRTextName returns the final text artefact name for a document stem.
func OCRTextName(stem string) string {
	return stem + ocrTextSuffix
}

// ImagePDFName returns the normalised PDF name for a document stem.
func ImagePDFName(stem string) string {
	return stem + imagePDFSuffix
}

// BatchRootName returns the batch directory name for a run started at t.
func BatchRootName(t time.Time) string {
	return batchRootPrefix + t.Format(batchRootLayout)
}
