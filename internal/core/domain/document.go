package domain

import (
	"path/filepath"
	"strings"
)

// Document is an immutable reference to an input file on disk.
type Document struct {
	// Path is the file location.
	Path string

	// MediaType is derived from the file extension.
	MediaType MediaType

	// PageCount is zero until the document has been inspected.
	PageCount int
}

// NewDocument classifies a path by extension.
// Returns ErrUnsupportedType if the extension is not accepted.
func NewDocument(path string) (Document, error) {
	mt, ok := MediaTypeForPath(path)
	if !ok {
		return Document{}, &UnsupportedExtensionError{Extension: filepath.Ext(path), Path: path}
	}
	return Document{Path: path, MediaType: mt}, nil
}

// Name returns the base file name.
func (d Document) Name() string {
	return filepath.Base(d.Path)
}

// Stem returns the file name without its extension.
func (d Document) Stem() string {
	name := d.Name()
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// Ext returns the lowercase extension without the leading dot.
func (d Document) Ext() string {
	return normaliseExtension(filepath.Ext(d.Path))
}

// Dir returns the directory containing the document.
func (d Document) Dir() string {
	return filepath.Dir(d.Path)
}

// WithPageCount returns a copy of the document with a known page count.
func (d Document) WithPageCount(n int) Document {
	d.PageCount = n
	return d
}

// WithPath returns a copy of the document pointing at another file of the same type.
func (d Document) WithPath(path string) Document {
	d.Path = path
	return d
}
