package ui

import (
	"github.com/charmbracelet/glamour"
)

// MarkdownRenderer renders pack documentation for the terminal
type MarkdownRenderer struct {
	Style string // "dark", "light", "notty", "auto", or a path to a custom style
	Width int    // Word wrap width (0 = glamour default)
}

// NewMarkdownRenderer creates a renderer with automatic style detection
func NewMarkdownRenderer() *MarkdownRenderer {
	return &MarkdownRenderer{
		Style: "auto",
	}
}

// Render converts markdown for the given format. Only terminal output is
// rendered; everything else gets the source unchanged.
func (r *MarkdownRenderer) Render(content string, format Format) string {
	if format != FormatTerminal {
		return content
	}

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
