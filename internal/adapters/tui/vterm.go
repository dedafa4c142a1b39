package tui

import (
	"bytes"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/vito/midterm"
)

// Vterm keeps the emulated terminal state of one command's output and the
// window of it that is currently visible.
type Vterm struct {
	vt      *midterm.Terminal
	Offset  int
	Height  int
	Width   int
	viewBuf bytes.Buffer
	mu      sync.Mutex
}

// NewVterm creates a new Vterm instance.
func NewVterm() *Vterm {
	return &Vterm{vt: midterm.NewAutoResizingTerminal()}
}

// Write feeds raw output, including ANSI sequences, into the terminal.
// A view that was at the bottom stays at the bottom.
func (v *Vterm) Write(p []byte) (int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	atBottom := v.Offset >= v.maxOffset()
	n, err := v.vt.Write(p)
	if atBottom {
		v.Offset = v.maxOffset()
	}
	return n, err
}

// SetHeight updates the number of visible rows.
func (v *Vterm) SetHeight(h int) {
	v.mu.Lock()
	defer v.mu.Unlock()

	atBottom := v.Offset >= v.maxOffset()
	v.Height = max(h, 1)
	if atBottom {
		v.Offset = v.maxOffset()
	}
	v.clamp()
}

// SetWidth updates the number of visible columns.
func (v *Vterm) SetWidth(w int) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.Width = max(w, 1)
	v.vt.ResizeX(v.Width)
}

// ScrollToBottom moves the view to the newest output.
func (v *Vterm) ScrollToBottom() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.Offset = v.maxOffset()
}

// View renders the visible rows.
func (v *Vterm) View() string {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.clamp()
	v.viewBuf.Reset()

	used := v.vt.UsedHeight()
	for i := 0; i < v.Height && v.Offset+i < used; i++ {
		if i > 0 {
			_ = v.viewBuf.WriteByte('\n')
		}
		_ = v.vt.RenderLine(&v.viewBuf, v.Offset+i)
	}
	return v.viewBuf.String()
}

// Update scrolls the view in response to navigation keys.
func (v *Vterm) Update(msg tea.Msg) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	switch key.String() {
	case "ctrl+u", "pgup":
		v.Offset -= v.Height
	case "ctrl+d", "pgdown":
		v.Offset += v.Height
	case "g", "home":
		v.Offset = 0
	case "G", "end":
		v.Offset = v.maxOffset()
	case "shift+up":
		v.Offset--
	case "shift+down":
		v.Offset++
	}
	v.clamp()
}

func (v *Vterm) clamp() {
	v.Offset = min(max(v.Offset, 0), v.maxOffset())
}

func (v *Vterm) maxOffset() int {
	return max(v.vt.UsedHeight()-v.Height, 0)
}
