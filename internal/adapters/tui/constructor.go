// Package tui provides the interactive terminal view of a chore run.
package tui

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/chore/internal/ui/output"
)

// NewModel creates a new TUI model with default settings.
// A nil writer means stderr.
func NewModel(w io.Writer) Model {
	out := output.New(w, output.Interactive)
	lipgloss.SetColorProfile(out.Profile)

	return Model{
		Commands:   make([]*CommandNode, 0),
		CommandMap: make(map[string]*CommandNode),
		SpanMap:    make(map[string]*CommandNode),
		Output:     out,
		AutoScroll: true,
		FollowMode: true,
	}
}
