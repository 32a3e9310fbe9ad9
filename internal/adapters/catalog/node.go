package catalog

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/notekeep/internal/adapters/logger" //nolint:depguard // Wired in adapter wiring
	"go.trai.ch/notekeep/internal/core/ports"
)

// NodeID is the unique identifier for the catalog parser Graft node.
const NodeID graft.ID = "adapter.catalog"

func init() {
	graft.Register(graft.Node[*Parser]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (*Parser, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewParser(log), nil
		},
	})
}
