package domain

import (
	"path/filepath"
	"sort"
	"strings"
)

// MediaType is the declared content type of an input document.
type MediaType string

// Supported media types.
const (
	MediaTypePDF  MediaType = "application/pdf"
	MediaTypeJPEG MediaType = "image/jpeg"
	MediaTypePNG  MediaType = "image/png"
	MediaTypeGIF  MediaType = "image/gif"
	MediaTypeBMP  MediaType = "image/bmp"
	MediaTypeDOC  MediaType = "application/msword"
)

// extensionTypes maps lowercase file extensions (without the dot) to media types.
var extensionTypes = map[string]MediaType{
	"pdf":  MediaTypePDF,
	"jpg":  MediaTypeJPEG,
	"jpeg": MediaTypeJPEG,
	"png":  MediaTypePNG,
	"gif":  MediaTypeGIF,
	"bmp":  MediaTypeBMP,
	"doc":  MediaTypeDOC,
}

// MediaTypeForExtension returns the media type for a file extension.
// The extension may carry a leading dot and is matched case-insensitively.
func MediaTypeForExtension(ext string) (MediaType, bool) {
	mt, ok := extensionTypes[normaliseExtension(ext)]
	return mt, ok
}

// MediaTypeForPath returns the media type implied by a file path's extension.
func MediaTypeForPath(path string) (MediaType, bool) {
	return MediaTypeForExtension(filepath.Ext(path))
}

// SupportedExtensions returns every accepted extension in sorted order.
func SupportedExtensions() []string {
	exts := make([]string, 0, len(extensionTypes))
	for ext := range extensionTypes {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// ParseExtensions turns a list of extensions into a validated, de-duplicated list.
// An empty input selects every supported extension.
func ParseExtensions(exts []string) ([]string, error) {
	if len(exts) == 0 {
		return SupportedExtensions(), nil
	}

	seen := make(map[string]bool, len(exts))
	result := make([]string, 0, len(exts))
	for _, raw := range exts {
		ext := normaliseExtension(raw)
		if ext == "" {
			continue
		}
		if _, ok := extensionTypes[ext]; !ok {
			return nil, &UnsupportedExtensionError{Extension: raw}
		}
		if !seen[ext] {
			seen[ext] = true
			result = append(result, ext)
		}
	}
	if len(result) == 0 {
		return SupportedExtensions(), nil
	}
	return result, nil
}

// IsPDF reports whether the media type is a PDF.
func (m MediaType) IsPDF() bool {
	return m == MediaTypePDF
}

// IsImage reports whether the media type is a raster image.
func (m MediaType) IsImage() bool {
	return strings.HasPrefix(string(m), "image/")
}

// String returns the MIME string.
func (m MediaType) String() string {
	return string(m)
}

func normaliseExtension(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}
