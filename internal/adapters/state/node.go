package state

import (
	"context"
	"os"
	"path/filepath"

	"github.com/grindlemire/graft"
	"go.trai.ch/chore/internal/adapters/config"
	"go.trai.ch/chore/internal/core/domain"
	"go.trai.ch/chore/internal/core/ports"
	"go.trai.ch/zerr"
)

// NodeID is the unique identifier for the run state store Graft node.
const NodeID graft.ID = "adapter.run_info_store"

func init() {
	graft.Register(graft.Node[ports.RunInfoStore]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.NodeID},
		Run: func(ctx context.Context) (ports.RunInfoStore, error) {
			loader, err := graft.Dep[ports.ConfigLoader](ctx)
			if err != nil {
				return nil, err
			}

			cwd, err := os.Getwd()
			if err != nil {
				return nil, zerr.Wrap(err, domain.ErrFailedToGetRoot.Error())
			}
			root, err := loader.DiscoverRoot(cwd)
			if err != nil {
				return nil, err
			}

			return NewStore(filepath.Join(root, domain.DefaultStatePath())), nil
		},
	})
}
