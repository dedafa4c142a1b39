package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/chore/internal/adapters/config"    //nolint:depguard // Wired in app layer
	"go.trai.ch/chore/internal/adapters/fs"        //nolint:depguard // Wired in app layer
	"go.trai.ch/chore/internal/adapters/logger"    //nolint:depguard // Wired in app layer
	"go.trai.ch/chore/internal/adapters/telemetry" //nolint:depguard // Wired in app layer
	"go.trai.ch/chore/internal/adapters/watcher"   //nolint:depguard // Wired in app layer
	"go.trai.ch/chore/internal/core/ports"
	"go.trai.ch/chore/internal/engine/dispatcher"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	// App Node
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			dispatcher.NodeID,
			telemetry.TracerNodeID,
			logger.NodeID,
			watcher.NodeID,
			fs.HasherNodeID,
		},
		Run: func(ctx context.Context) (*App, error) {
			loader, err := graft.Dep[ports.ConfigLoader](ctx)
			if err != nil {
				return nil, err
			}

			disp, err := graft.Dep[*dispatcher.Dispatcher](ctx)
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

			w, err := graft.Dep[ports.Watcher](ctx)
			if err != nil {
				return nil, err
			}

			hasher, err := graft.Dep[ports.Hasher](ctx)
			if err != nil {
				return nil, err
			}

			return New(loader, disp, tracer, log, w, hasher), nil
		},
	})

	// Components Node
	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: runComponentsNode,
	})
}

func runComponentsNode(ctx context.Context) (*Components, error) {
	a, err := graft.Dep[*App](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	return &Components{
		App:    a,
		Logger: log,
	}, nil
}
