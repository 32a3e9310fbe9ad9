package cachefile

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/notekeep/internal/core/ports"
)

const (
	// ReaderNodeID is the unique identifier for the cache reader Graft node.
	ReaderNodeID graft.ID = "adapter.cache_reader"
	// BackupStoreNodeID is the unique identifier for the backup store Graft node.
	BackupStoreNodeID graft.ID = "adapter.backup_store"
)

func init() {
	graft.Register(graft.Node[ports.SourceReader]{
		ID:        ReaderNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.SourceReader, error) {
			return NewReader(), nil
		},
	})

	graft.Register(graft.Node[ports.BackupStore]{
		ID:        BackupStoreNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.BackupStore, error) {
			return NewBackupStore(), nil
		},
	})
}
