// Package style renders loom's terminal output. Styling degrades to
// plain text when stdout is not a terminal, so output stays pipeable.
package style

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

var (
	// Header styles section headings in the run summary
	Header = lipgloss.NewStyle().Bold(true)

	// Success styles applied operations
	Success = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))

	// Failure styles aborted runs
	Failure = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	// Muted styles simulated operations and secondary detail
	Muted = lipgloss.NewStyle().Faint(true)
)

// IsTerminal reports whether w is an interactive terminal
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
