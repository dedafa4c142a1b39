package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.trai.ch/chore/internal/core/domain"
	"go.trai.ch/chore/internal/core/ports"
)

var _ ports.Renderer = (*Renderer)(nil)

// Renderer wraps the Bubble Tea model as a ports.Renderer.
type Renderer struct {
	program *tea.Program
	model   *Model
	done    chan struct{}
	err     error
}

// NewRenderer creates a new TUI renderer.
func NewRenderer(model *Model, opts ...tea.ProgramOption) *Renderer {
	return &Renderer{
		program: tea.NewProgram(model, opts...),
		model:   model,
		done:    make(chan struct{}),
	}
}

// Start launches the TUI in a background goroutine.
func (r *Renderer) Start(_ context.Context) error {
	go func() {
		defer close(r.done)
		final, err := r.program.Run()
		if err != nil {
			r.err = err
			return
		}
		if m, ok := final.(*Model); ok && m.Interrupted {
			r.err = domain.ErrInterrupted
		}
	}()
	return nil
}

// Stop signals the TUI to quit.
func (r *Renderer) Stop() error {
	r.program.Quit()
	return nil
}

// Wait blocks until the TUI has terminated. It returns domain.ErrInterrupted
// when the user quit before every command finished.
func (r *Renderer) Wait() error {
	<-r.done
	return r.err
}

// OnPlanEmit forwards the resolved run to the TUI.
func (r *Renderer) OnPlanEmit(commands []string, prerequisites map[string][]string, targets []string) {
	r.program.Send(MsgPlan{
		Commands:      commands,
		Prerequisites: prerequisites,
		Targets:       targets,
	})
}

// OnCommandStart forwards command start events to the TUI.
func (r *Renderer) OnCommandStart(spanID, parentID, name string, startTime time.Time) {
	r.program.Send(MsgCommandStart{
		SpanID:    spanID,
		ParentID:  parentID,
		Name:      name,
		StartTime: startTime,
	})
}

// OnCommandLog forwards command output to the TUI.
func (r *Renderer) OnCommandLog(spanID string, data []byte) {
	r.program.Send(MsgCommandLog{
		SpanID: spanID,
		Data:   data,
	})
}

// OnCommandComplete forwards command completion events to the TUI.
func (r *Renderer) OnCommandComplete(spanID string, endTime time.Time, err error, cached bool) {
	r.program.Send(MsgCommandComplete{
		SpanID:  spanID,
		EndTime: endTime,
		Err:     err,
		Cached:  cached,
	})
}

// Program returns the underlying tea.Program.
func (r *Renderer) Program() *tea.Program {
	return r.program
}
