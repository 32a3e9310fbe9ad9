package watcher_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/notekeep/internal/adapters/watcher"
	"go.trai.ch/notekeep/internal/core/ports"
	"go.trai.ch/notekeep/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func startWatcher(t *testing.T, path string) (<-chan ports.WatchEvent, context.CancelFunc) {
	t.Helper()

	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Warn(gomock.Any()).AnyTimes()

	w, err := watcher.NewWatcher(log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Stop() })

	ctx, cancel := context.WithCancel(t.Context())
	require.NoError(t, w.Start(ctx, path))

	events := make(chan ports.WatchEvent, 32)
	go func() {
		defer close(events)
		for ev := range w.Events() {
			events <- ev
		}
	}()

	return events, cancel
}

func waitEvent(t *testing.T, events <-chan ports.WatchEvent) ports.WatchEvent {
	t.Helper()
	select {
	case ev, ok := <-events:
		require.True(t, ok, "event stream closed")
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
	}
	return ports.WatchEvent{}
}

func TestWatcher_ReportsTargetChanges(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "cache-v3.json")
	require.NoError(t, os.WriteFile(target, []byte(`{}`), 0o600))

	events, cancel := startWatcher(t, target)
	defer cancel()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.json"), []byte(`{}`), 0o600))
	require.NoError(t, os.WriteFile(target, []byte(`{"cache":"{}"}`), 0o600))

	ev := waitEvent(t, events)
	assert.Equal(t, target, ev.Path)
	assert.Contains(t, []ports.WatchOp{ports.OpWrite, ports.OpCreate}, ev.Operation)
}

func TestWatcher_ObservesAtomicReplace(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "cache-v3.json")
	require.NoError(t, os.WriteFile(target, []byte(`{}`), 0o600))

	events, cancel := startWatcher(t, target)
	defer cancel()

	tmp := filepath.Join(dir, "cache-v3.json.tmp")
	require.NoError(t, os.WriteFile(tmp, []byte(`{"cache":"{}"}`), 0o600))
	require.NoError(t, os.Rename(tmp, target))

	ev := waitEvent(t, events)
	assert.Equal(t, target, ev.Path)
}

func TestWatcher_StopsOnCancel(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "cache-v3.json")

	events, cancel := startWatcher(t, target)
	cancel()

	select {
	case _, ok := <-events:
		assert.False(t, ok)
	case <-time.After(5 * time.Second):
		t.Fatal("event stream not closed after cancel")
	}
}

func TestWatcher_StartFailsForMissingDirectory(t *testing.T) {
	ctrl := gomock.NewController(t)
	w, err := watcher.NewWatcher(mocks.NewMockLogger(ctrl))
	require.NoError(t, err)
	defer func() { _ = w.Stop() }()

	err = w.Start(t.Context(), filepath.Join(t.TempDir(), "missing", "cache.json"))
	assert.ErrorContains(t, err, "failed to watch cache file")
}
