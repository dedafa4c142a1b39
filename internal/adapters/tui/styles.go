package tui

import (
	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/chore/internal/ui/style"
)

const (
	listTitle = "COMMANDS"
	logTitle  = "LOGS"
)

var (
	pendingStyle = lipgloss.NewStyle().
			Foreground(style.Slate)

	runningStyle = lipgloss.NewStyle().
			Foreground(style.Teal).
			Bold(true)

	doneStyle = lipgloss.NewStyle().
			Foreground(style.Green)

	errorStyle = lipgloss.NewStyle().
			Foreground(style.Red)

	cachedStyle = lipgloss.NewStyle().
			Foreground(style.Slate).
			Faint(true)

	selectedStyle = lipgloss.NewStyle().
			Foreground(style.Teal).
			Bold(true)

	hintStyle = lipgloss.NewStyle().
			Foreground(style.Slate).
			Faint(true)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			Background(style.Teal).
			Foreground(style.White)

	failureTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Padding(0, 1).
				Background(style.Red).
				Foreground(style.White)

	listStyle = lipgloss.NewStyle().
			PaddingRight(2)

	logStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderLeft(true).
			BorderForeground(style.Slate).
			PaddingLeft(1)
)
