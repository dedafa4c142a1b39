package ports

import "context"

// EnvironmentFactory builds the process environment of an activated virtual environment.
//
//go:generate mockgen -source=environment.go -destination=mocks/mock_environment.go -package=mocks
type EnvironmentFactory interface {
	// GetEnvironment returns "KEY=VALUE" pairs that activate the environment
	// rooted at envDir. PATH entries are meant to be prepended to the
	// inherited PATH by the executor.
	GetEnvironment(ctx context.Context, envDir string) ([]string, error)
}
