package app

import (
	"context"
	"io"

	"go.trai.ch/notekeep/internal/adapters/catalog"
	"go.trai.ch/notekeep/internal/adapters/tools"
	"go.trai.ch/notekeep/internal/adapters/toolserver"
	"go.trai.ch/notekeep/internal/adapters/watcher"
	"go.trai.ch/notekeep/internal/build"
	"golang.org/x/sync/errgroup"
)

// ServeOptions configures the tool server.
type ServeOptions struct {
	// AutoBackup runs the watcher next to the server.
	AutoBackup bool
}

// Watch runs an initial backup cycle and then one cycle per debounced
// change of the source file, until ctx is done. Cycle failures are logged
// and do not stop watching.
func (a *App) Watch(ctx context.Context) error {
	cfg, err := a.Config()
	if err != nil {
		return err
	}

	a.runCycle(ctx)

	if err := a.watcher.Start(ctx, cfg.CachePath); err != nil {
		return err
	}
	defer func() {
		_ = a.watcher.Stop()
	}()

	a.logger.Info("watching " + cfg.CachePath)

	debouncer := watcher.NewDebouncer(a.debounce, func(int) {
		if ctx.Err() != nil {
			return
		}
		a.runCycle(ctx)
	})

	for range a.watcher.Events() {
		debouncer.Trigger()
	}
	debouncer.Stop()

	// Wait for a cycle that is still writing.
	a.mu.Lock()
	defer a.mu.Unlock()

	return nil
}

// Serve answers tool requests read from in on out until in is exhausted or
// ctx is done. With AutoBackup the watcher runs concurrently and stops
// together with the server.
func (a *App) Serve(ctx context.Context, in io.Reader, out io.Writer, opts ServeOptions) error {
	cfg, err := a.Config()
	if err != nil {
		return err
	}

	holder := catalog.NewHolder(cfg.QueryPath(), a.source, a.parser, a.logger)
	toolbox := tools.New(holder, a, cfg.Location, cfg.CachePath)
	server := toolserver.New(toolbox, a.logger, build.Version)

	g, ctx := errgroup.WithContext(ctx)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g.Go(func() error {
		defer cancel()
		return server.Serve(ctx, in, out)
	})

	if opts.AutoBackup {
		g.Go(func() error {
			return a.Watch(ctx)
		})
	}

	return g.Wait()
}
