// Package app implements the application layer for notekeep.
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.trai.ch/notekeep/internal/adapters/catalog"
	"go.trai.ch/notekeep/internal/adapters/watcher"
	"go.trai.ch/notekeep/internal/core/domain"
	"go.trai.ch/notekeep/internal/core/ports"
	"go.trai.ch/notekeep/internal/engine/cycle"
	"go.trai.ch/zerr"
)

var errNotConfigured = zerr.New("configuration has not been loaded")

var _ ports.BackupService = (*App)(nil)

// LogConfigurer applies the logging settings of a configuration.
type LogConfigurer interface {
	Configure(level, format string) error
}

// App represents the main application logic. Backup cycles and restores
// are serialized so that the tool server, the watcher and the CLI never
// write the backup directory concurrently.
type App struct {
	configLoader ports.ConfigLoader
	logConfig    LogConfigurer
	logger       ports.Logger
	runner       *cycle.Runner
	source       ports.SourceReader
	backups      ports.BackupStore
	snapshots    ports.SnapshotStore
	parser       *catalog.Parser
	watcher      ports.Watcher

	// mu serializes writes to the backup directory.
	mu       sync.Mutex
	cfgMu    sync.RWMutex
	cfg      *domain.Config
	debounce time.Duration
	now      func() time.Time
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	logConfig LogConfigurer,
	log ports.Logger,
	runner *cycle.Runner,
	source ports.SourceReader,
	backups ports.BackupStore,
	snapshots ports.SnapshotStore,
	parser *catalog.Parser,
	w ports.Watcher,
) *App {
	return &App{
		configLoader: loader,
		logConfig:    logConfig,
		logger:       log,
		runner:       runner,
		source:       source,
		backups:      backups,
		snapshots:    snapshots,
		parser:       parser,
		watcher:      w,
		debounce:     watcher.DefaultDebounceWindow,
		now:          time.Now,
	}
}

// WithDebounce sets how long the source must stay quiet before a watched
// change triggers a cycle.
func (a *App) WithDebounce(window time.Duration) *App {
	a.debounce = window
	return a
}

// WithClock sets the clock used for restore metadata.
func (a *App) WithClock(now func() time.Time) *App {
	a.now = now
	return a
}

// Configure loads the configuration from path, the environment and the
// overrides, and applies its logging settings.
func (a *App) Configure(path string, overrides map[string]any) (*domain.Config, error) {
	cfg, err := a.configLoader.Load(path, overrides)
	if err != nil {
		return nil, err
	}

	if a.logConfig != nil {
		if err := a.logConfig.Configure(cfg.LogLevel, cfg.LogFormat); err != nil {
			return nil, err
		}
	}

	a.cfgMu.Lock()
	a.cfg = cfg
	a.cfgMu.Unlock()

	return cfg, nil
}

// Config returns the loaded configuration.
func (a *App) Config() (*domain.Config, error) {
	a.cfgMu.RLock()
	defer a.cfgMu.RUnlock()

	if a.cfg == nil {
		return nil, errNotConfigured
	}
	return a.cfg, nil
}

// Backup runs one backup cycle with the configured paths and retention.
func (a *App) Backup(ctx context.Context) (*domain.CycleResult, error) {
	cfg, err := a.Config()
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	return a.runner.Run(ctx, cycle.Request{
		SourcePath: cfg.CachePath,
		BackupDir:  cfg.BackupDir,
		Retention:  cfg.MaxSnapshots,
	})
}

// Status describes the backup file and its snapshots without modifying
// anything.
func (a *App) Status(_ context.Context) (*domain.BackupStatus, error) {
	cfg, err := a.Config()
	if err != nil {
		return nil, err
	}

	backupPath := domain.BackupFilePath(cfg.BackupDir)
	state, err := a.backups.Load(backupPath)
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

	status := &domain.BackupStatus{
		SourcePath: cfg.CachePath,
		BackupPath: backupPath,
		Exists:     state != nil,
		Snapshots:  snaps,
		Retention:  cfg.MaxSnapshots,
	}
	if state != nil {
		status.CreatedAt = state.CreatedAt
		status.LastMergedAt = state.LastMergedAt
		status.MeetingCount = state.Document.MeetingCount()
	}

	return status, nil
}

// runCycle runs a backup cycle and logs its outcome.
func (a *App) runCycle(ctx context.Context) {
	result, err := a.Backup(ctx)
	if err != nil {
		a.logger.Error(err)
		return
	}

	r := result.Report
	a.logger.Info(fmt.Sprintf("backup complete: %d meetings (%d new, %d updated, %d preserved)",
		r.MeetingsAfter, r.New, r.Updated, r.Preserved))
}
