// Package snapshot implements timestamped copies of the backup file.
package snapshot

import (
	"cmp"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/gobwas/glob"
	"go.trai.ch/notekeep/internal/core/domain"
	"go.trai.ch/notekeep/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.SnapshotStore = (*Store)(nil)

// Store implements ports.SnapshotStore on the local file system.
type Store struct {
	now     func() time.Time
	pattern glob.Glob
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the clock used to name new snapshots.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore creates a new Store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		now:     time.Now,
		pattern: glob.MustCompile(domain.SnapshotGlob),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot copies the backup file into dir under a name derived from the
// current time. The copy is written to a temporary file, synced, verified
// against the source and then renamed into place. A snapshot never replaces
// an existing one: when its second is already taken it moves to the next free
// second.
func (s *Store) Snapshot(backupPath, dir string) (*domain.Snapshot, error) {
	//nolint:gosec // Path comes from the configured backup directory
	src, err := os.Open(backupPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.With(zerr.Wrap(err, "failed to open backup file"), "path", backupPath)
	}
	defer func() {
		_ = src.Close()
	}()

	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return nil, errors.Join(domain.ErrSnapshotDirCreateFailed, zerr.With(zerr.Wrap(err, "mkdir failed"), "path", dir))
	}

	name, err := freeName(dir, s.now())
	if err != nil {
		return nil, err
	}
	dest := filepath.Join(dir, name)

	tmp, err := os.CreateTemp(dir, name+".*.tmp")
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to create snapshot file"), "path", dir)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = os.Remove(tmpPath)
	}()

	digest := xxhash.New()
	size, err := io.Copy(tmp, io.TeeReader(src, digest))
	if err == nil {
		err = tmp.Chmod(domain.FilePerm)
	}
	if err == nil {
		err = tmp.Sync()
	}
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to write snapshot file"), "path", tmpPath)
	}

	copySum, err := checksum(tmpPath)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to read snapshot file"), "path", tmpPath)
	}
	if copySum != digest.Sum64() {
		return nil, zerr.With(domain.ErrSnapshotVerifyFailed, "path", dest)
	}

	if err := os.Rename(tmpPath, dest); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to move snapshot into place"), "path", dest)
	}

	takenAt, err := domain.ParseSnapshotName(name)
	if err != nil {
		return nil, err
	}

	return &domain.Snapshot{
		Name:     name,
		Path:     dest,
		TakenAt:  takenAt,
		Size:     size,
		Checksum: copySum,
	}, nil
}

func freeName(dir string, at time.Time) (string, error) {
	for {
		name := domain.SnapshotFileName(at)
		_, err := os.Lstat(filepath.Join(dir, name))
		if errors.Is(err, fs.ErrNotExist) {
			return name, nil
		}
		if err != nil {
			return "", zerr.With(zerr.Wrap(err, "failed to stat snapshot file"), "name", name)
		}
		at = at.Add(time.Second)
	}
}

// Prune removes the oldest snapshots in dir until at most retention remain.
// A missing directory is not an error. Removal failures do not stop the
// remaining removals; they are returned together with the number of
// snapshots that were removed.
func (s *Store) Prune(dir string, retention int) (int, error) {
	if retention < 1 {
		return 0, zerr.With(domain.ErrInvalidRetention, "retention", retention)
	}

	snapshots, err := s.List(dir)
	if err != nil {
		return 0, errors.Join(domain.ErrPruneFailed, err)
	}

	excess := len(snapshots) - retention
	if excess <= 0 {
		return 0, nil
	}

	var errs error
	removed := 0
	for _, snap := range snapshots[:excess] {
		if err := os.Remove(snap.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = errors.Join(errs, zerr.With(zerr.Wrap(err, "failed to remove snapshot"), "path", snap.Path))
			continue
		}
		removed++
	}

	if errs != nil {
		return removed, errors.Join(domain.ErrPruneFailed, errs)
	}
	return removed, nil
}

// List returns the snapshots in dir ordered from oldest to newest.
// Files matching the snapshot pattern whose timestamp cannot be parsed are
// ignored. Checksums are not computed.
func (s *Store) List(dir string) ([]domain.Snapshot, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.With(zerr.Wrap(err, "failed to read snapshot directory"), "path", dir)
	}

	var snapshots []domain.Snapshot
	for _, entry := range entries {
		if entry.IsDir() || !s.pattern.Match(entry.Name()) {
			continue
		}
		takenAt, err := domain.ParseSnapshotName(entry.Name())
		if err != nil {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		snapshots = append(snapshots, domain.Snapshot{
			Name:    entry.Name(),
			Path:    filepath.Join(dir, entry.Name()),
			TakenAt: takenAt,
			Size:    info.Size(),
		})
	}

	slices.SortFunc(snapshots, func(a, b domain.Snapshot) int {
		return cmp.Or(a.TakenAt.Compare(b.TakenAt), cmp.Compare(a.Name, b.Name))
	})
	return snapshots, nil
}

// Open resolves a snapshot by name and computes its checksum.
func (s *Store) Open(dir, name string) (*domain.Snapshot, error) {
	takenAt, err := domain.ParseSnapshotName(name)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(dir, name)
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errors.Join(domain.ErrSnapshotNotFound, zerr.With(zerr.Wrap(err, "stat failed"), "name", name))
		}
		return nil, zerr.With(zerr.Wrap(err, "failed to stat snapshot"), "path", path)
	}

	sum, err := checksum(path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to read snapshot"), "path", path)
	}

	return &domain.Snapshot{
		Name:     name,
		Path:     path,
		TakenAt:  takenAt,
		Size:     info.Size(),
		Checksum: sum,
	}, nil
}

func checksum(path string) (uint64, error) {
	//nolint:gosec // Path is constructed from the snapshot directory
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = f.Close()
	}()

	digest := xxhash.New()
	if _, err := io.Copy(digest, f); err != nil {
		return 0, err
	}
	return digest.Sum64(), nil
}
