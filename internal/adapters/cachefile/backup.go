package cachefile

import (
	"bytes"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"go.trai.ch/notekeep/internal/core/domain"
	"go.trai.ch/notekeep/internal/core/ports"
	"go.trai.ch/zerr"
)

const metadataKey = "backup_metadata"

var _ ports.BackupStore = (*BackupStore)(nil)

// BackupStore implements ports.BackupStore.
type BackupStore struct{}

// NewBackupStore creates a new BackupStore.
func NewBackupStore() *BackupStore {
	return &BackupStore{}
}

// Load reads the backup file at path. Only the sections and the metadata
// timestamps are carried over. Metadata that is not an object is ignored so
// the sections survive it; the next save writes fresh metadata.
func (s *BackupStore) Load(path string) (*domain.BackupState, error) {
	//nolint:gosec // Path is constructed from the configured backup directory
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, errors.Join(domain.ErrBackupReadFailed, zerr.With(zerr.Wrap(err, "read failed"), "path", path))
	}

	state, err := decodeBackup(data)
	if err != nil {
		return nil, errors.Join(domain.ErrBackupCorrupt, zerr.With(err, "path", path))
	}
	return state, nil
}

func decodeBackup(data []byte) (*domain.BackupState, error) {
	top, err := decodeObject(data)
	if err != nil {
		return nil, zerr.Wrap(err, "backup file is not a JSON object")
	}

	doc, err := domain.DecodeSections(top)
	if err != nil {
		return nil, err
	}

	state := &domain.BackupState{Document: doc}

	raw, ok := top[metadataKey]
	if !ok {
		return state, nil
	}

	var meta map[string]json.RawMessage
	if err := json.Unmarshal(raw, &meta); err != nil {
		return state, nil //nolint:nilerr // malformed metadata only loses its timestamps
	}

	state.CreatedAt = stringField(meta, "created_at")
	state.LastMergedAt = stringField(meta, "last_merged_at")
	return state, nil
}

// stringField returns meta[key] when it is a JSON string.
func stringField(meta map[string]json.RawMessage, key string) string {
	var s string
	if err := json.Unmarshal(meta[key], &s); err != nil {
		return ""
	}
	return s
}

// Save encodes file and atomically replaces the backup file at path, creating
// the backup directory when needed. HTML characters and non-ASCII text are
// written unescaped.
func (s *BackupStore) Save(path string, file *domain.BackupFile) error {
	if err := os.MkdirAll(filepath.Dir(path), domain.DirPerm); err != nil {
		return errors.Join(domain.ErrBackupDirCreateFailed, zerr.With(zerr.Wrap(err, "mkdir failed"), "path", filepath.Dir(path)))
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(file); err != nil {
		return errors.Join(domain.ErrBackupMarshalFailed, zerr.Wrap(err, "encode failed"))
	}

	if err := writeFileAtomic(path, buf.Bytes()); err != nil {
		return errors.Join(domain.ErrBackupWriteFailed, zerr.With(err, "path", path))
	}
	return nil
}

// writeFileAtomic writes data next to path and renames it into place, so
// readers observe either the previous or the new content.
func writeFileAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return zerr.Wrap(err, "failed to create temporary file")
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err = tmp.Write(data); err == nil {
		err = tmp.Chmod(domain.FilePerm)
	}
	if err == nil {
		err = tmp.Sync()
	}
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return zerr.Wrap(err, "failed to write temporary file")
	}

	if err = os.Rename(tmpPath, path); err != nil {
		return zerr.Wrap(err, "failed to replace file")
	}
	return nil
}
