// Package main is the entry point for the chore command runner.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/grindlemire/graft"
	"go.trai.ch/chore/cmd/chore/commands"
	"go.trai.ch/chore/internal/app"
	"go.trai.ch/chore/internal/core/domain"
	_ "go.trai.ch/chore/internal/wiring"
)

const (
	exitFailure        = 1
	exitUnknownCommand = 2
	exitInterrupted    = 130

	shutdownTimeout = 5 * time.Second
)

// ComponentProvider is a function that returns the application components.
type ComponentProvider func(context.Context) (*app.Components, func(), error)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr, provideComponents))
}

func provideComponents(ctx context.Context) (*app.Components, func(), error) {
	c, _, err := graft.ExecuteFor[*app.Components](ctx)
	return c, func() {}, err
}

func run(
	ctx context.Context,
	args []string,
	stdout, stderr io.Writer,
	provider ComponentProvider,
	opts ...func(*app.App),
) int {
	// 0. Context with signal handling
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// 1. Initialize application components
	components, cleanup, err := provider(ctx)
	if err != nil {
		// Logger is not available yet if initialization failed
		_, _ = fmt.Fprintln(stderr, "Error: "+err.Error())
		return exitFailure
	}
	defer cleanup()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		_ = components.App.Close(shutdownCtx)
	}()

	components.App.WithOutput(stdout, stderr)
	for _, opt := range opts {
		opt(components.App)
	}

	// 2. Interface - CLI
	cli := commands.New(components.App)
	cli.SetArgs(args)
	cli.SetOutput(stdout, stderr)

	// 3. Execution
	if err := cli.Execute(ctx); err != nil {
		code := exitCode(ctx, err)
		if code != exitInterrupted && !reported(err) {
			components.Logger.Error(err)
		}
		return code
	}
	return 0
}

// reported reports whether err is a step that ran and exited with a code.
// Such steps have already shown their output and status.
func reported(err error) bool {
	var stepErr *domain.StepError
	return errors.As(err, &stepErr) && stepErr.ExitCode > 0
}

// exitCode maps err to the process exit status. A failed step passes its own
// exit code through.
func exitCode(ctx context.Context, err error) int {
	var stepErr *domain.StepError
	switch {
	case errors.Is(err, domain.ErrInterrupted), ctx.Err() != nil:
		return exitInterrupted
	case errors.As(err, &stepErr) && stepErr.ExitCode > 0:
		return stepErr.ExitCode
	case errors.Is(err, domain.ErrUnknownCommand):
		return exitUnknownCommand
	default:
		return exitFailure
	}
}
