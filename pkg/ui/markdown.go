// Package ui renders help topics and recipe documentation for the
// terminal.
package ui

import (
	"github.com/charmbracelet/glamour"
)

// MarkdownRenderer converts markdown to styled terminal output
type MarkdownRenderer struct {
	Style string // "dark", "light", "notty", "auto", or a custom style path
	Width int    // terminal width, 0 auto-detects
}

// NewMarkdownRenderer creates a renderer with terminal auto-detection
func NewMarkdownRenderer() *MarkdownRenderer {
	return &MarkdownRenderer{Style: "auto"}
}

// Render converts markdown to terminal output. On any rendering error
// the raw markdown is returned, so docs always display.
func (r *MarkdownRenderer) Render(content string) string {
	var options []glamour.TermRendererOption

	if r.Style != "" && r.Style != "auto" {
		options = append(options, glamour.WithStylePath(r.Style))
	} else {
		options = append(options, glamour.WithAutoStyle())
	}

	if r.Width > 0 {
		options = append(options, glamour.WithWordWrap(r.Width))
	}

	renderer, err := glamour.NewTermRenderer(options...)
	if err != nil {
		return content
	}

	rendered, err := renderer.Render(content)
	if err != nil {
		return content
	}

	return rendered
}
