package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Report colours.
var (
	colourTitle   = lipgloss.Color("#7C3AED")
	colourMuted   = lipgloss.Color("#6C7086")
	colourSuccess = lipgloss.Color("#A6E3A1")
	colourWarning = lipgloss.Color("#F9E2AF")
	colourError   = lipgloss.Color("#F38BA8")
)

// styles holds lipgloss styles bound to one output writer. Colour is only
// emitted when the writer is a terminal.
type styles struct {
	title   lipgloss.Style
	muted   lipgloss.Style
	ok      lipgloss.Style
	warn    lipgloss.Style
	failed  lipgloss.Style
	label   lipgloss.Style
	summary lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		title:  r.NewStyle().Bold(true).Foreground(colourTitle),
		muted:  r.NewStyle().Foreground(colourMuted),
		ok:     r.NewStyle().Bold(true).Foreground(colourSuccess),
		warn:   r.NewStyle().Foreground(colourWarning),
		failed: r.NewStyle().Bold(true).Foreground(colourError),
		label:  r.NewStyle().Width(14),
		summary: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colourMuted).
			Padding(0, 1),
	}
}

// badge renders a fixed-width status marker.
func (s styles) badge(ok bool) string {
	if ok {
		return s.ok.Render("[  OK  ]")
	}
	return s.failed.Render("[FAILED]")
}

// field renders an aligned "label value" line.
func (s styles) field(label string, value any) string {
	return s.label.Render(label+":") + fmt.Sprint(value)
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w any) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// formatMB renders a byte count in megabytes.
func formatMB(n int64) string {
	return fmt.Sprintf("%.2f MB", float64(n)/(1024*1024))
}
