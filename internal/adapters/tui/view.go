package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/chore/internal/ui/style"
)

// View renders the UI.
func (m *Model) View() string {
	if m.ListHeight == 0 {
		return "Initializing..."
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.commandList(),
		m.logPane(),
	)
}

func (m *Model) commandList() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(listTitle) + "\n\n")

	end := min(m.ListOffset+m.ListHeight, len(m.Commands))
	start := min(m.ListOffset, end)
	for i := start; i < end; i++ {
		s.WriteString(m.renderRow(i, m.Commands[i]) + "\n")
	}

	if m.Finished() {
		s.WriteString("\n" + hintStyle.Render("q to quit"))
	}

	return listStyle.Render(s.String())
}

func (m *Model) renderRow(index int, node *CommandNode) string {
	rowStyle := statusStyle(node)

	cursor := "  "
	if index == m.SelectedIdx {
		cursor = selectedStyle.Render("> ")
		if !node.finished() {
			rowStyle = selectedStyle
		}
	}

	content := statusIcon(node) + " " + node.Name
	if node.finished() && !node.Cached && node.Duration > 0 {
		content += " " + node.Duration.Round(time.Millisecond).String()
	}
	return cursor + rowStyle.Render(content)
}

func statusIcon(node *CommandNode) string {
	if node.Cached {
		return style.Skip
	}

	switch node.Status {
	case StatusRunning:
		return style.Dot
	case StatusDone:
		return style.Check
	case StatusError:
		return style.Cross
	default:
		return style.Circle
	}
}

func statusStyle(node *CommandNode) lipgloss.Style {
	if node.Cached {
		return cachedStyle
	}

	switch node.Status {
	case StatusRunning:
		return runningStyle
	case StatusDone:
		return doneStyle
	case StatusError:
		return errorStyle
	default:
		return pendingStyle
	}
}

func (m *Model) logPane() string {
	var header, content string

	node, ok := m.CommandMap[m.ActiveName]
	if ok {
		mode := "Manual"
		if m.FollowMode {
			mode = "Following"
		}
		title := fmt.Sprintf("%s: %s (%s)", logTitle, node.Name, mode)
		if node.Status == StatusError {
			header = failureTitleStyle.Render(title)
		} else {
			header = titleStyle.Render(title)
		}
		content = node.Term.View()
	} else {
		header = titleStyle.Render(logTitle + " (Waiting...)")
	}

	return logStyle.Render(
		lipgloss.JoinVertical(
			lipgloss.Left,
			header,
			content,
		),
	)
}
