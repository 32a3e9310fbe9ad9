package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	jsonpatch "github.com/evanphx/json-patch"
	"go.trai.ch/notekeep/internal/core/domain"
	"go.trai.ch/zerr"
)

// Snapshots lists the snapshots of the backup directory, oldest first.
func (a *App) Snapshots(_ context.Context) ([]domain.Snapshot, error) {
	cfg, err := a.Config()
	if err != nil {
		return nil, err
	}

	snaps, err := a.snapshots.List(domain.SnapshotDirPath(cfg.BackupDir))
	if err != nil {
		return nil, err
	}
	if snaps == nil {
		snaps = []domain.Snapshot{}
	}
	return snaps, nil
}

// DiffSnapshot returns the JSON merge patch (RFC 7386) that turns the named
// snapshot into the current backup file.
func (a *App) DiffSnapshot(_ context.Context, name string) ([]byte, error) {
	cfg, err := a.Config()
	if err != nil {
		return nil, err
	}

	snap, err := a.snapshots.Open(domain.SnapshotDirPath(cfg.BackupDir), name)
	if err != nil {
		return nil, err
	}

	//nolint:gosec // Path is resolved inside the snapshot directory
	original, err := os.ReadFile(snap.Path)
	if err != nil {
		return nil, errors.Join(domain.ErrDiffFailed, zerr.With(zerr.Wrap(err, "failed to read snapshot"), "path", snap.Path))
	}

	backupPath := domain.BackupFilePath(cfg.BackupDir)
	//nolint:gosec // Path comes from the configured backup directory
	current, err := os.ReadFile(backupPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errors.Join(domain.ErrDiffFailed, zerr.With(zerr.New("no backup file"), "path", backupPath))
		}
		return nil, errors.Join(domain.ErrDiffFailed, zerr.With(zerr.Wrap(err, "failed to read backup file"), "path", backupPath))
	}

	patch, err := jsonpatch.CreateMergePatch(original, current)
	if err != nil {
		return nil, errors.Join(domain.ErrDiffFailed, zerr.With(zerr.Wrap(err, "failed to compute merge patch"), "name", name))
	}
	return patch, nil
}

// RestoreSnapshot replaces the backup file with the contents of the named
// snapshot. The current backup file is snapshotted first and retention is
// applied afterwards, so a restore can itself be undone.
func (a *App) RestoreSnapshot(_ context.Context, name string) (*domain.RestoreResult, error) {
	cfg, err := a.Config()
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	dir := domain.SnapshotDirPath(cfg.BackupDir)
	backupPath := domain.BackupFilePath(cfg.BackupDir)

	snap, err := a.snapshots.Open(dir, name)
	if err != nil {
		return nil, err
	}

	state, err := a.backups.Load(snap.Path)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrSnapshotNotFound, "snapshot removed before restore"), "name", name)
	}

	safety, err := a.snapshots.Snapshot(backupPath, dir)
	if err != nil {
		return nil, errors.Join(domain.ErrSnapshotFailed, err)
	}

	createdAt := state.CreatedAt
	if createdAt == "" {
		createdAt = domain.FormatTimestamp(a.now())
	}
	meetings := state.Document.MeetingCount()

	file := domain.NewBackupFile(domain.BackupMetadata{
		CreatedAt:    createdAt,
		LastMergedAt: state.LastMergedAt,
		SourcePath:   cfg.CachePath,
		MeetingCount: meetings,
		Version:      domain.BackupFormatVersion,
	}, state.Document)

	if err := a.backups.Save(backupPath, file); err != nil {
		return nil, err
	}

	pruned, err := a.snapshots.Prune(dir, cfg.MaxSnapshots)
	if err != nil {
		a.logger.Warn(fmt.Sprintf("removed %d old snapshot(s) but some could not be removed", pruned))
		a.logger.Error(err)
	}

	return &domain.RestoreResult{
		Restored:     *snap,
		Safety:       safety,
		Pruned:       pruned,
		MeetingCount: meetings,
		BackupPath:   backupPath,
	}, nil
}
