package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/notekeep/internal/adapters/cachefile" //nolint:depguard // Wired in app layer
	"go.trai.ch/notekeep/internal/adapters/catalog"   //nolint:depguard // Wired in app layer
	"go.trai.ch/notekeep/internal/adapters/config"    //nolint:depguard // Wired in app layer
	"go.trai.ch/notekeep/internal/adapters/logger"    //nolint:depguard // Wired in app layer
	"go.trai.ch/notekeep/internal/adapters/snapshot"  //nolint:depguard // Wired in app layer
	"go.trai.ch/notekeep/internal/adapters/watcher"   //nolint:depguard // Wired in app layer
	"go.trai.ch/notekeep/internal/core/ports"
	"go.trai.ch/notekeep/internal/engine/cycle"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			logger.ControlNodeID,
			logger.NodeID,
			cycle.NodeID,
			cachefile.ReaderNodeID,
			cachefile.BackupStoreNodeID,
			snapshot.NodeID,
			catalog.NodeID,
			watcher.NodeID,
		},
		Run: func(ctx context.Context) (*App, error) {
			loader, err := graft.Dep[ports.ConfigLoader](ctx)
			if err != nil {
				return nil, err
			}

			control, err := graft.Dep[*logger.Logger](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			runner, err := graft.Dep[*cycle.Runner](ctx)
			if err != nil {
				return nil, err
			}

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

			parser, err := graft.Dep[*catalog.Parser](ctx)
			if err != nil {
				return nil, err
			}

			w, err := graft.Dep[ports.Watcher](ctx)
			if err != nil {
				return nil, err
			}

			return New(loader, control, log, runner, source, backups, snapshots, parser, w), nil
		},
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			application, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return &Components{
				App:    application,
				Logger: log,
			}, nil
		},
	})
}
