// Package listing renders the help screen that lists every known command.
package listing

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/chore/internal/core/domain"
	"go.trai.ch/chore/internal/ui/output"
	"go.trai.ch/chore/internal/ui/style"
)

// Header is the first line of the listing.
const Header = "Available commands:"

const (
	indent = "  "
	gutter = "  "
)

// Write prints the commands of g sorted by name, one per line, with the
// descriptions aligned after the longest name.
func Write(w io.Writer, g *domain.Graph) error {
	r := lipgloss.NewRenderer(w)
	r.SetColorProfile(output.Interactive.Profile())

	headerStyle := r.NewStyle().Bold(true)
	nameStyle := r.NewStyle().Foreground(style.Teal).Bold(true)
	descStyle := r.NewStyle().Foreground(style.Slate)

	cmds := g.Commands()
	width := 0
	for _, c := range cmds {
		width = max(width, len(c.Name.String()))
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(Header))
	b.WriteString("\n")

	for _, c := range cmds {
		name := c.Name.String()
		b.WriteString(indent)
		b.WriteString(nameStyle.Render(name))
		if c.Description != "" {
			b.WriteString(strings.Repeat(" ", width-len(name)))
			b.WriteString(gutter)
			b.WriteString(descStyle.Render(c.Description))
		}
		b.WriteString("\n")
	}

	_, err := fmt.Fprint(w, b.String())
	return err
}
