package domain

import (
	"fmt"
	"strings"
)

// BackendKind identifies a rendering backend implementation.
type BackendKind string

// Rendering backends. BackendAuto lets selection probe in priority order.
const (
	BackendAuto        BackendKind = ""
	BackendPdftoppm    BackendKind = "pdftoppm"
	BackendMutool      BackendKind = "mutool"
	BackendGhostscript BackendKind = "ghostscript"
)

// BackendPriority is the fixed probing order used when no backend is requested.
var BackendPriority = []BackendKind{BackendPdftoppm, BackendMutool, BackendGhostscript}

var backendAliases = map[string]BackendKind{
	"":            BackendAuto,
	"auto":        BackendAuto,
	"pdftoppm":    BackendPdftoppm,
	"poppler":     BackendPdftoppm,
	"mutool":      BackendMutool,
	"mupdf":       BackendMutool,
	"ghostscript": BackendGhostscript,
	"gs":          BackendGhostscript,
}

// ParseBackendKind parses a backend name or alias.
func ParseBackendKind(s string) (BackendKind, error) {
	kind, ok := backendAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("%w: unknown rendering backend %q", ErrInvalidInput, s)
	}
	return kind, nil
}

// Description returns a human-readable backend name.
func (k BackendKind) Description() string {
	switch k {
	case BackendAuto:
		return "Automatic (first available)"
	case BackendPdftoppm:
		return "Poppler pdftoppm"
	case BackendMutool:
		return "MuPDF mutool"
	case BackendGhostscript:
		return "Ghostscript"
	default:
		return string(k)
	}
}

// BackendStatus reports whether a backend is installed.
type BackendStatus struct {
	Kind      BackendKind
	Priority  int
	Available bool
}
