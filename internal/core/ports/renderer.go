package ports

import (
	"context"
	"time"
)

// Renderer is the abstraction for output rendering.
// It decouples telemetry collection from presentation,
// so the same event stream drives either the TUI or linear CI logs.
//
//go:generate mockgen -source=renderer.go -destination=mocks/mock_renderer.go -package=mocks
type Renderer interface {
	// Start initializes the renderer.
	// Asynchronous renderers (like the TUI) launch their loop here.
	Start(ctx context.Context) error

	// Stop signals the renderer to stop accepting events and flush buffered output.
	Stop() error

	// Wait blocks until the renderer has fully terminated.
	Wait() error

	// OnPlanEmit is called once the dispatcher has resolved the run.
	// commands: names in execution order
	// prerequisites: command -> prerequisite names
	// targets: the names the user asked for
	OnPlanEmit(commands []string, prerequisites map[string][]string, targets []string)

	// OnCommandStart is called when a command begins.
	OnCommandStart(spanID, parentID, name string, startTime time.Time)

	// OnCommandLog is called with raw output of a running command.
	// data may contain partial lines or ANSI sequences.
	OnCommandLog(spanID string, data []byte)

	// OnCommandComplete is called when a command finishes.
	// cached reports that the command was skipped because it was already satisfied.
	OnCommandComplete(spanID string, endTime time.Time, err error, cached bool)
}
