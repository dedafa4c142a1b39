package tui

import (
	"slices"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

const (
	listWidthRatio     = 0.3
	logPaneBorderWidth = 4
)

// CommandStatus represents the current state of a command.
type CommandStatus string

const (
	// StatusPending indicates the command is waiting for its prerequisites.
	StatusPending CommandStatus = "Pending"
	// StatusRunning indicates the command is executing.
	StatusRunning CommandStatus = "Running"
	// StatusDone indicates the command completed successfully.
	StatusDone CommandStatus = "Done"
	// StatusError indicates the command failed.
	StatusError CommandStatus = "Error"
)

// CommandNode represents a single command in the list pane.
type CommandNode struct {
	Name          string
	Status        CommandStatus
	Term          *Vterm
	Cached        bool
	Target        bool
	Prerequisites []string
	StartTime     time.Time
	Duration      time.Duration
}

func (n *CommandNode) finished() bool {
	return n.Status == StatusDone || n.Status == StatusError
}

// Model represents the main TUI state.
type Model struct {
	Commands    []*CommandNode
	CommandMap  map[string]*CommandNode
	SpanMap     map[string]*CommandNode
	Output      *termenv.Output
	AutoScroll  bool
	ActiveName  string
	SelectedIdx int
	ListOffset  int
	ListHeight  int
	LogWidth    int
	LogHeight   int
	FollowMode  bool

	// Interrupted is set when the user quits while commands are still pending.
	Interrupted bool
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Finished reports whether every planned command has completed.
func (m *Model) Finished() bool {
	if len(m.Commands) == 0 {
		return false
	}
	for _, node := range m.Commands {
		if !node.finished() {
			return false
		}
	}
	return true
}

func (m *Model) ensureVisible() {
	if m.ListHeight <= 0 {
		return
	}
	if m.SelectedIdx < m.ListOffset {
		m.ListOffset = m.SelectedIdx
	} else if m.SelectedIdx >= m.ListOffset+m.ListHeight {
		m.ListOffset = m.SelectedIdx - m.ListHeight + 1
	}
}

func (m *Model) selected() *CommandNode {
	if m.SelectedIdx >= 0 && m.SelectedIdx < len(m.Commands) {
		return m.Commands[m.SelectedIdx]
	}
	return nil
}

func (m *Model) focusSelected() {
	node := m.selected()
	if node == nil {
		return
	}
	m.ActiveName = node.Name
	if m.FollowMode && m.AutoScroll {
		node.Term.ScrollToBottom()
	}
}

func (m *Model) selectName(name string) {
	if i := slices.IndexFunc(m.Commands, func(n *CommandNode) bool { return n.Name == name }); i >= 0 {
		m.SelectedIdx = i
	}
	m.ensureVisible()
	m.focusSelected()
}

func (m *Model) newTerm() *Vterm {
	term := NewVterm()
	if m.LogWidth > 0 && m.LogHeight > 0 {
		term.SetWidth(m.LogWidth)
		term.SetHeight(m.LogHeight)
	}
	return term
}

// Update handles incoming messages and updates the model state.
//
//nolint:cyclop // message dispatch
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)

	case MsgPlan:
		m.plan(msg)

	case MsgCommandStart:
		node, ok := m.CommandMap[msg.Name]
		if !ok {
			break
		}
		node.Status = StatusRunning
		node.StartTime = msg.StartTime
		m.SpanMap[msg.SpanID] = node
		if m.FollowMode {
			m.selectName(msg.Name)
		}

	case MsgCommandLog:
		if node, ok := m.SpanMap[msg.SpanID]; ok {
			_, _ = node.Term.Write(msg.Data)
		}

	case MsgCommandComplete:
		node, ok := m.SpanMap[msg.SpanID]
		if !ok {
			break
		}
		node.Cached = msg.Cached
		if !node.StartTime.IsZero() {
			node.Duration = msg.EndTime.Sub(node.StartTime)
		}
		if msg.Err != nil {
			node.Status = StatusError
			// Keep the failure on screen.
			if m.FollowMode {
				m.selectName(node.Name)
				m.FollowMode = false
			}
		} else {
			node.Status = StatusDone
		}
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.Interrupted = !m.Finished()
		return m, tea.Quit
	case "k", "up":
		if m.SelectedIdx > 0 {
			m.SelectedIdx--
			m.FollowMode = false
			m.ensureVisible()
			m.focusSelected()
		}
	case "j", "down":
		if m.SelectedIdx < len(m.Commands)-1 {
			m.SelectedIdx++
			m.FollowMode = false
			m.ensureVisible()
			m.focusSelected()
		}
	case "esc":
		m.FollowMode = true
		for i, node := range m.Commands {
			if node.Status == StatusRunning {
				m.SelectedIdx = i
				break
			}
		}
		m.ensureVisible()
		m.focusSelected()
	default:
		if node, ok := m.CommandMap[m.ActiveName]; ok {
			node.Term.Update(msg)
		}
	}
	return m, nil
}

func (m *Model) resize(width, height int) {
	listWidth := int(float64(width) * listWidthRatio)
	m.LogWidth = width - listWidth - logPaneBorderWidth

	headerHeight := lipgloss.Height(titleStyle.Render(listTitle))
	m.LogHeight = height - headerHeight

	fullHeader := titleStyle.Render(listTitle) + "\n\n"
	m.ListHeight = height - lipgloss.Height(fullHeader)
	m.ensureVisible()

	for _, node := range m.Commands {
		node.Term.SetWidth(m.LogWidth)
		node.Term.SetHeight(m.LogHeight)
	}
}

func (m *Model) plan(msg MsgPlan) {
	m.Commands = make([]*CommandNode, len(msg.Commands))
	m.CommandMap = make(map[string]*CommandNode, len(msg.Commands))
	m.SpanMap = make(map[string]*CommandNode)
	m.SelectedIdx = 0
	m.ListOffset = 0

	for i, name := range msg.Commands {
		m.Commands[i] = &CommandNode{
			Name:          name,
			Status:        StatusPending,
			Term:          m.newTerm(),
			Target:        slices.Contains(msg.Targets, name),
			Prerequisites: msg.Prerequisites[name],
		}
		m.CommandMap[name] = m.Commands[i]
	}
}
