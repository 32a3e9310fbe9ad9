package ports

import "go.trai.ch/notekeep/internal/core/domain"

//go:generate mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks

// SourceReader reads cache documents.
type SourceReader interface {
	// Read loads the cache file at path. Nested payloads are unwrapped.
	// Returns domain.ErrSourceNotFound if the file does not exist and
	// domain.ErrSourceUnreadable if it cannot be read or parsed.
	Read(path string) (domain.CacheDocument, error)

	// Decode parses the contents of a cache file.
	Decode(data []byte) (domain.CacheDocument, error)
}

// BackupStore reads and writes the accumulated backup file.
type BackupStore interface {
	// Load reads the backup file at path.
	// Returns nil, nil if the file does not exist and domain.ErrBackupCorrupt if
	// it exists but cannot be parsed.
	Load(path string) (*domain.BackupState, error)

	// Save atomically replaces the backup file at path.
	Save(path string, file *domain.BackupFile) error
}

// SnapshotStore manages point-in-time copies of the backup file.
type SnapshotStore interface {
	// Snapshot copies the backup file into dir.
	// Returns nil, nil if the backup file does not exist.
	Snapshot(backupPath, dir string) (*domain.Snapshot, error)

	// Prune removes all but the newest retention snapshots in dir and returns
	// the number of snapshots removed.
	Prune(dir string, retention int) (int, error)

	// List returns the snapshots in dir, oldest first.
	List(dir string) ([]domain.Snapshot, error)

	// Open resolves a snapshot by name.
	// Returns domain.ErrSnapshotNotFound if it does not exist.
	Open(dir, name string) (*domain.Snapshot, error)
}
