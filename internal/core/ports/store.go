package ports

import "go.trai.ch/chore/internal/core/domain"

// RunInfoStore defines the interface for storing and retrieving the last successful run of a command.
//
//go:generate mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type RunInfoStore interface {
	// Get retrieves the run info for a given command name.
	// Returns nil, nil if not found.
	Get(commandName string) (*domain.RunInfo, error)

	// Put stores the run info.
	Put(info domain.RunInfo) error
}
