package domain

import (
	"path/filepath"
	"time"
)

const (
	// BackupFileName is the name of the accumulated backup file inside the backup root.
	BackupFileName = "backup.json"

	// SnapshotDirName is the name of the snapshot directory inside the backup root.
	SnapshotDirName = "snapshots"

	// SnapshotPrefix is the file name prefix shared by all snapshots.
	SnapshotPrefix = "backup-"

	// SnapshotExt is the file extension shared by all snapshots.
	SnapshotExt = ".json"

	// SnapshotGlob matches snapshot file names.
	SnapshotGlob = SnapshotPrefix + "*" + SnapshotExt

	// SnapshotTimeLayout is the timestamp embedded in snapshot names.
	// It sorts identically as a string and chronologically.
	SnapshotTimeLayout = "2006-01-02T15-04-05"

	// MetadataTimeLayout is the layout used for backup metadata timestamps.
	MetadataTimeLayout = time.RFC3339Nano

	// BackupFormatVersion is the schema version written into backup metadata.
	BackupFormatVersion = 1

	// DefaultMaxSnapshots is the default snapshot retention count.
	DefaultMaxSnapshots = 10

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

// BackupFilePath returns the path of the backup file inside the backup root.
func BackupFilePath(backupDir string) string {
	return filepath.Join(backupDir, BackupFileName)
}

// SnapshotDirPath returns the snapshot directory inside the backup root.
func SnapshotDirPath(backupDir string) string {
	return filepath.Join(backupDir, SnapshotDirName)
}

// SnapshotFileName returns the snapshot name for the given instant. The
// timestamp is written in UTC so names sort in the order they were taken.
func SnapshotFileName(t time.Time) string {
	return SnapshotPrefix + t.UTC().Format(SnapshotTimeLayout) + SnapshotExt
}
