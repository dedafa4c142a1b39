// Package linear provides a synchronous, line-buffered renderer for CI environments.
package linear

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/muesli/termenv"
	"go.trai.ch/chore/internal/core/ports"
	"go.trai.ch/chore/internal/ui/output"
	"go.trai.ch/chore/internal/ui/style"
)

var _ ports.Renderer = (*Renderer)(nil)

// Renderer implements ports.Renderer for CI/non-interactive environments.
// It outputs linear, chronological logs with command name prefixes.
type Renderer struct {
	stdout io.Writer
	stderr io.Writer
	output *termenv.Output

	mu       sync.Mutex
	commands map[string]*commandState // spanID -> command state
}

type commandState struct {
	name      string
	startTime time.Time
	buf       bytes.Buffer
}

// NewRenderer creates a new Renderer. Nil writers default to the process
// stdout and stderr.
func NewRenderer(stdout, stderr io.Writer) *Renderer {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}

	return &Renderer{
		stdout:   stdout,
		stderr:   stderr,
		output:   output.New(stderr, output.CI),
		commands: make(map[string]*commandState),
	}
}

// Start is a no-op for linear renderer (synchronous).
func (r *Renderer) Start(_ context.Context) error {
	return nil
}

// Stop flushes all remaining buffers.
func (r *Renderer) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, cmd := range r.commands {
		r.flushBufferLocked(cmd)
	}
	return nil
}

// Wait is a no-op for linear renderer (synchronous).
func (r *Renderer) Wait() error {
	return nil
}

// OnPlanEmit prints the planned commands.
func (r *Renderer) OnPlanEmit(commands []string, _ map[string][]string, targets []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, _ = fmt.Fprintf(r.stderr, "Running %d command(s) for: %s\n",
		len(commands), strings.Join(targets, " "))
}

// OnCommandStart prints a command start message.
func (r *Renderer) OnCommandStart(spanID, _ /* parentID */, name string, startTime time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.commands[spanID] = &commandState{
		name:      name,
		startTime: startTime,
	}

	prefix := r.output.String(fmt.Sprintf("[%s]", name)).Faint().String()
	_, _ = fmt.Fprintf(r.stderr, "%s Starting...\n", prefix)
}

// OnCommandLog buffers log data and prints complete lines with the command prefix.
func (r *Renderer) OnCommandLog(spanID string, data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cmd, ok := r.commands[spanID]
	if !ok {
		return
	}

	cmd.buf.Write(data)
	for {
		i := bytes.IndexByte(cmd.buf.Bytes(), '\n')
		if i < 0 {
			break
		}
		r.printLineLocked(cmd.name, cmd.buf.Next(i+1))
	}
}

// OnCommandComplete flushes remaining output and prints the completion status.
func (r *Renderer) OnCommandComplete(spanID string, endTime time.Time, err error, cached bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cmd, ok := r.commands[spanID]
	if !ok {
		return
	}

	r.flushBufferLocked(cmd)

	duration := endTime.Sub(cmd.startTime).Round(time.Millisecond)
	prefix := fmt.Sprintf("[%s]", cmd.name)

	switch {
	case err != nil:
		symbol := r.output.String(style.Cross).Foreground(termenv.ANSIRed).String()
		_, _ = fmt.Fprintf(r.stderr, "%s %s Failed after %v: %v\n", prefix, symbol, duration, err)
	case cached:
		symbol := r.output.String(style.Skip).Foreground(termenv.ANSIYellow).String()
		_, _ = fmt.Fprintf(r.stderr, "%s %s Already satisfied\n", prefix, symbol)
	default:
		symbol := r.output.String(style.Check).Foreground(termenv.ANSIGreen).String()
		_, _ = fmt.Fprintf(r.stderr, "%s %s Completed in %v\n", prefix, symbol, duration)
	}

	delete(r.commands, spanID)
}

// flushBufferLocked prints a trailing partial line. Must be called with r.mu held.
func (r *Renderer) flushBufferLocked(cmd *commandState) {
	if cmd.buf.Len() > 0 {
		r.printLineLocked(cmd.name, cmd.buf.Bytes())
		cmd.buf.Reset()
	}
}

// printLineLocked prints a line with the command name prefix.
// Must be called with r.mu held.
func (r *Renderer) printLineLocked(name string, line []byte) {
	line = bytes.TrimSuffix(line, []byte("\n"))
	line = bytes.TrimSuffix(line, []byte("\r"))
	if len(line) == 0 {
		return
	}

	_, _ = fmt.Fprintf(r.stdout, "[%s] %s\n", name, line)
}
