package main

import (
	"github.com/charmbracelet/glamour"
)

// newRenderer returns a markdown renderer for terminal output. It falls
// back to plain text when glamour cannot initialise.
func newRenderer() func(string) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return func(s string) string { return s }
	}
	return func(markdown string) string {
		out, err := r.Render(markdown)
		if err != nil {
			return markdown
		}
		return out
	}
}
