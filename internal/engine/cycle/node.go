package cycle

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/notekeep/internal/adapters/cachefile" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/notekeep/internal/adapters/logger"    //nolint:depguard // Wired in engine wiring
	"go.trai.ch/notekeep/internal/adapters/snapshot"  //nolint:depguard // Wired in engine wiring
	"go.trai.ch/notekeep/internal/adapters/telemetry" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/notekeep/internal/core/ports"
)

// NodeID is the unique identifier for the backup cycle Graft node.
const NodeID graft.ID = "engine.cycle"

func init() {
	graft.Register(graft.Node[*Runner]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			cachefile.ReaderNodeID,
			cachefile.BackupStoreNodeID,
			snapshot.NodeID,
			telemetry.TracerNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Runner, error) {
			source, err := graft.Dep[ports.SourceReader](ctx)
			if err != nil {
				return nil, err
			}

			backups, err := graft.Dep[ports.BackupStore](ctx)
			if err != nil {
				return nil, err
			}

			snapshots, err := graft.Dep[ports.SnapshotStore](ctx)
			if err != nil {
				return nil, err
			}

			tracer, err := graft.Dep[ports.Tracer](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return NewRunner(source, backups, snapshots, tracer, log), nil
		},
	})
}
