package ports

import "go.trai.ch/chore/internal/core/domain"

// Hasher defines the interface for computing hashes.
//
//go:generate mockgen -destination=mocks/mock_hasher.go -package=mocks -source=hasher.go
type Hasher interface {
	// ComputeInputHash computes the input hash for a given command.
	ComputeInputHash(cmd *domain.Command, env map[string]string, root string) (string, error)
}
