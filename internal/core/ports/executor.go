// Package ports defines the core interfaces for the application.
package ports

import (
	"context"
	"io"

	"go.trai.ch/chore/internal/core/domain"
)

// Executor defines the interface for running a single command step.
//
//go:generate mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks
type Executor interface {
	// Execute runs one step of the given command.
	//
	// The env parameter contains environment variables in "KEY=VALUE" format
	// layered over the inherited process environment.
	//
	// Output that is not redirected by the step goes to stdout and stderr.
	// It returns an error if the step cannot be started or exits unsuccessfully.
	Execute(ctx context.Context, cmd *domain.Command, step domain.Step, env []string, stdout, stderr io.Writer) error
}
