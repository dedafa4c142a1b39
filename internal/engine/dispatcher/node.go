package dispatcher

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/chore/internal/adapters/fs"        //nolint:depguard // Wired in engine wiring
	"go.trai.ch/chore/internal/adapters/logger"    //nolint:depguard // Wired in engine wiring
	"go.trai.ch/chore/internal/adapters/shell"     //nolint:depguard // Wired in engine wiring
	"go.trai.ch/chore/internal/adapters/state"     //nolint:depguard // Wired in engine wiring
	"go.trai.ch/chore/internal/adapters/telemetry" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/chore/internal/adapters/venv"      //nolint:depguard // Wired in engine wiring
	"go.trai.ch/chore/internal/core/ports"
)

// NodeID is the unique identifier for the dispatcher Graft node.
const NodeID graft.ID = "engine.dispatcher"

func init() {
	graft.Register(graft.Node[*Dispatcher]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			shell.NodeID,
			state.NodeID,
			fs.HasherNodeID,
			fs.VerifierNodeID,
			venv.EnvFactoryNodeID,
			telemetry.TracerNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Dispatcher, error) {
			executor, err := graft.Dep[ports.Executor](ctx)
			if err != nil {
				return nil, err
			}

			store, err := graft.Dep[ports.RunInfoStore](ctx)
			if err != nil {
				return nil, err
			}

			hasher, err := graft.Dep[ports.Hasher](ctx)
			if err != nil {
				return nil, err
			}

			verifier, err := graft.Dep[ports.Verifier](ctx)
			if err != nil {
				return nil, err
			}

			envFactory, err := graft.Dep[ports.EnvironmentFactory](ctx)
			if err != nil {
				return nil, err
			}

			tracer, err := graft.Dep[*telemetry.OTelTracer](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return New(executor, store, hasher, verifier, envFactory, tracer, log), nil
		},
	})
}
