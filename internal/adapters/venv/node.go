package venv

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/chore/internal/core/ports"
)

// EnvFactoryNodeID is the unique identifier for the environment factory Graft node.
const EnvFactoryNodeID graft.ID = "adapter.venv.env_factory"

func init() {
	graft.Register(graft.Node[ports.EnvironmentFactory]{
		ID:        EnvFactoryNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.EnvironmentFactory, error) {
			return NewEnvFactory(), nil
		},
	})
}
