// Package cycle runs one backup cycle: read, snapshot, merge, write, prune.
package cycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.trai.ch/notekeep/internal/core/domain"
	"go.trai.ch/notekeep/internal/core/ports"
	"go.trai.ch/notekeep/internal/engine/merge"
	"go.trai.ch/zerr"
)

// Span names of the cycle stages.
const (
	SpanCycle      = "backup"
	SpanReadSource = "read_source"
	SpanReadBackup = "read_backup"
	SpanSnapshot   = "snapshot"
	SpanMerge      = "merge"
	SpanWrite      = "write_backup"
	SpanPrune      = "prune"
)

// Request identifies the files a cycle operates on.
type Request struct {
	// SourcePath is the live cache file.
	SourcePath string
	// BackupDir holds the backup file and the snapshot directory.
	BackupDir string
	// Retention is the number of snapshots kept after the cycle.
	Retention int
}

// Runner executes backup cycles. A Runner does not serialize concurrent
// cycles; callers sharing a backup directory must do so.
type Runner struct {
	source    ports.SourceReader
	backups   ports.BackupStore
	snapshots ports.SnapshotStore
	tracer    ports.Tracer
	logger    ports.Logger
	now       func() time.Time
}

// NewRunner creates a new Runner.
func NewRunner(
	source ports.SourceReader,
	backups ports.BackupStore,
	snapshots ports.SnapshotStore,
	tracer ports.Tracer,
	logger ports.Logger,
) *Runner {
	return &Runner{
		source:    source,
		backups:   backups,
		snapshots: snapshots,
		tracer:    tracer,
		logger:    logger,
		now:       time.Now,
	}
}

// WithClock sets the clock used for metadata timestamps.
func (r *Runner) WithClock(now func() time.Time) *Runner {
	r.now = now
	return r
}

// Run executes one cycle. The stages always run in the same order and the
// backup file is only replaced after the previous version was snapshotted.
// A corrupt backup file is reported and replaced by a fresh backup; its
// bytes survive in the snapshot. Prune failures are logged and do not fail
// the cycle.
func (r *Runner) Run(ctx context.Context, req Request) (*domain.CycleResult, error) {
	if req.Retention < 1 {
		return nil, zerr.With(domain.ErrInvalidRetention, "retention", req.Retention)
	}

	ctx, span := r.tracer.Start(ctx, SpanCycle)
	defer span.End()
	span.SetAttribute("source_path", req.SourcePath)
	span.SetAttribute("backup_dir", req.BackupDir)

	result, err := r.run(ctx, req)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return result, nil
}

func (r *Runner) run(ctx context.Context, req Request) (*domain.CycleResult, error) {
	backupPath := domain.BackupFilePath(req.BackupDir)
	snapshotDir := domain.SnapshotDirPath(req.BackupDir)

	// 1. Read the live cache
	current, err := stage(ctx, r.tracer, SpanReadSource, func(context.Context) (domain.CacheDocument, error) {
		return r.source.Read(req.SourcePath)
	})
	if err != nil {
		return nil, err
	}

	// 2. Read the existing backup
	previous, err := stage(ctx, r.tracer, SpanReadBackup, func(context.Context) (*domain.BackupState, error) {
		return r.backups.Load(backupPath)
	})
	if err != nil {
		if !errors.Is(err, domain.ErrBackupCorrupt) {
			return nil, err
		}
		r.logger.Warn(fmt.Sprintf("backup file %s is corrupt, starting a fresh backup", backupPath))
		r.logger.Error(err)
		previous = nil
	}

	createdAt := domain.FormatTimestamp(r.now())
	var backup domain.CacheDocument
	if previous != nil {
		backup = previous.Document
		if previous.CreatedAt != "" {
			createdAt = previous.CreatedAt
		}
	}

	// 3. Snapshot the existing backup before it is replaced
	snap, err := stage(ctx, r.tracer, SpanSnapshot, func(context.Context) (*domain.Snapshot, error) {
		return r.snapshots.Snapshot(backupPath, snapshotDir)
	})
	if err != nil {
		return nil, errors.Join(domain.ErrSnapshotFailed, err)
	}

	// 4. Merge
	_, mergeSpan := r.tracer.Start(ctx, SpanMerge)
	merged, report := merge.Merge(backup, current)
	mergeSpan.SetAttribute("meetings_before", report.MeetingsBefore)
	mergeSpan.SetAttribute("meetings_after", report.MeetingsAfter)
	mergeSpan.SetAttribute("new", report.New)
	mergeSpan.SetAttribute("updated", report.Updated)
	mergeSpan.SetAttribute("preserved", report.Preserved)
	mergeSpan.End()

	// 5. Write the merged backup
	file := domain.NewBackupFile(domain.BackupMetadata{
		CreatedAt:    createdAt,
		LastMergedAt: domain.FormatTimestamp(r.now()),
		SourcePath:   req.SourcePath,
		MeetingCount: report.MeetingsAfter,
		Version:      domain.BackupFormatVersion,
	}, merged)
	if _, err := stage(ctx, r.tracer, SpanWrite, func(context.Context) (struct{}, error) {
		return struct{}{}, r.backups.Save(backupPath, file)
	}); err != nil {
		return nil, err
	}

	// 6. Prune old snapshots
	pruned, err := stage(ctx, r.tracer, SpanPrune, func(context.Context) (int, error) {
		return r.snapshots.Prune(snapshotDir, req.Retention)
	})
	if err != nil {
		r.logger.Warn(fmt.Sprintf("removed %d old snapshot(s) but some could not be removed", pruned))
		r.logger.Error(err)
	}

	return &domain.CycleResult{
		Report:     report,
		Snapshot:   snap,
		Pruned:     pruned,
		BackupPath: backupPath,
	}, nil
}

// stage runs fn inside a span named name and records its error.
func stage[T any](ctx context.Context, tracer ports.Tracer, name string, fn func(context.Context) (T, error)) (T, error) {
	ctx, span := tracer.Start(ctx, name)
	defer span.End()

	out, err := fn(ctx)
	if err != nil {
		span.RecordError(err)
	}
	return out, err
}
