package domain

import "go.trai.ch/zerr"

var (
	// ErrSourceNotFound is returned when the live cache file does not exist.
	ErrSourceNotFound = zerr.New("cache file not found")

	// ErrSourceUnreadable is returned when the live cache file cannot be read or parsed.
	ErrSourceUnreadable = zerr.New("cache file is unreadable")

	// ErrNestedCacheInvalid is returned when the nested "cache" payload is not a JSON object.
	ErrNestedCacheInvalid = zerr.New("nested cache payload is not a JSON object")

	// ErrSectionInvalid is returned when a known section is present but is not a JSON object.
	ErrSectionInvalid = zerr.New("section is not a JSON object")

	// ErrBackupCorrupt is returned when an existing backup file cannot be parsed.
	ErrBackupCorrupt = zerr.New("backup file is corrupt")

	// ErrBackupReadFailed is returned when an existing backup file cannot be read.
	ErrBackupReadFailed = zerr.New("failed to read backup file")

	// ErrBackupMarshalFailed is returned when the merged backup cannot be encoded.
	ErrBackupMarshalFailed = zerr.New("failed to marshal backup file")

	// ErrBackupWriteFailed is returned when the merged backup cannot be written.
	ErrBackupWriteFailed = zerr.New("failed to write backup file")

	// ErrBackupDirCreateFailed is returned when the backup root directory cannot be created.
	ErrBackupDirCreateFailed = zerr.New("failed to create backup directory")

	// ErrSnapshotFailed is returned when the pre-merge snapshot cannot be taken.
	ErrSnapshotFailed = zerr.New("failed to snapshot backup file")

	// ErrSnapshotDirCreateFailed is returned when the snapshot directory cannot be created.
	ErrSnapshotDirCreateFailed = zerr.New("failed to create snapshot directory")

	// ErrSnapshotVerifyFailed is returned when a snapshot copy does not match its source.
	ErrSnapshotVerifyFailed = zerr.New("snapshot content does not match backup file")

	// ErrSnapshotNotFound is returned when a requested snapshot does not exist.
	ErrSnapshotNotFound = zerr.New("snapshot not found")

	// ErrInvalidSnapshotName is returned when a snapshot name does not follow the naming scheme.
	ErrInvalidSnapshotName = zerr.New("invalid snapshot name, expected backup-YYYY-MM-DDTHH-MM-SS.json")

	// ErrPruneFailed is returned when old snapshots cannot be removed.
	ErrPruneFailed = zerr.New("failed to prune snapshots")

	// ErrInvalidRetention is returned when the snapshot retention count is below one.
	ErrInvalidRetention = zerr.New("snapshot retention must be at least 1")

	// ErrConfigLoadFailed is returned when the configuration cannot be loaded.
	ErrConfigLoadFailed = zerr.New("failed to load configuration")

	// ErrConfigInvalid is returned when a configuration value is out of range.
	ErrConfigInvalid = zerr.New("invalid configuration")

	// ErrUnknownTool is returned when a tool call names a tool that is not registered.
	ErrUnknownTool = zerr.New("unknown tool")

	// ErrInvalidToolArguments is returned when tool call arguments cannot be decoded or validated.
	ErrInvalidToolArguments = zerr.New("invalid tool arguments")

	// ErrUnknownPattern is returned when an unsupported pattern analysis is requested.
	ErrUnknownPattern = zerr.New("unknown pattern type, expected 'topics', 'participants' or 'frequency'")

	// ErrInvalidDate is returned when a date filter cannot be parsed.
	ErrInvalidDate = zerr.New("invalid date, expected ISO format such as 2024-01-31")

	// ErrWatcherFailed is returned when the source file cannot be watched.
	ErrWatcherFailed = zerr.New("failed to watch cache file")

	// ErrDiffFailed is returned when a snapshot cannot be compared with the backup.
	ErrDiffFailed = zerr.New("failed to diff snapshot against backup")
)
