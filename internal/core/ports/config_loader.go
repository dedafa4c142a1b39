package ports

import "go.trai.ch/chore/internal/core/domain"

// ConfigLoader defines the interface for loading the command configuration.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads the configuration reachable from the given working directory
	// and returns the command graph. Without a configuration file the
	// built-in recipe rooted at cwd is returned.
	Load(cwd string) (*domain.Graph, error)

	// DiscoverRoot walks up from cwd to find the project root.
	// Returns the directory containing chore.yaml, or cwd if there is none.
	DiscoverRoot(cwd string) (string, error)
}
