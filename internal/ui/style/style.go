// Package style holds the colors and icons shared by every chore surface.
package style

import "github.com/charmbracelet/lipgloss"

// Palette.
var (
	Teal   = lipgloss.Color("#14B8A6")
	Slate  = lipgloss.Color("#64748B")
	White  = lipgloss.Color("#FFFFFF")
	Ink    = lipgloss.Color("#0F172A")
	Green  = lipgloss.Color("#16A34A")
	Red    = lipgloss.Color("#DC2626")
	Yellow = lipgloss.Color("#EAB308")
)

// Icons.
const (
	Check   = "✓"
	Cross   = "✗"
	Warning = "!"
	Skip    = "⚡"
	Dot     = "●"
	Circle  = "○"
	Prompt  = "$"
)
