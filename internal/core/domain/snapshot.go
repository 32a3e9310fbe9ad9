package domain

import (
	"strings"
	"time"

	"go.trai.ch/zerr"
)

// Snapshot is a point-in-time copy of the backup file.
type Snapshot struct {
	Name     string    `json:"name" yaml:"name"`
	Path     string    `json:"path" yaml:"path"`
	TakenAt  time.Time `json:"taken_at" yaml:"taken_at"`
	Size     int64     `json:"size" yaml:"size"`
	Checksum uint64    `json:"checksum" yaml:"checksum"`
}

// ParseSnapshotName extracts the timestamp embedded in a snapshot name.
// The timestamp is in UTC.
func ParseSnapshotName(name string) (time.Time, error) {
	stamp, ok := strings.CutPrefix(name, SnapshotPrefix)
	if ok {
		stamp, ok = strings.CutSuffix(stamp, SnapshotExt)
	}
	if !ok {
		return time.Time{}, zerr.With(ErrInvalidSnapshotName, "name", name)
	}

	t, err := time.ParseInLocation(SnapshotTimeLayout, stamp, time.UTC)
	if err != nil {
		return time.Time{}, zerr.With(ErrInvalidSnapshotName, "name", name)
	}
	return t, nil
}
