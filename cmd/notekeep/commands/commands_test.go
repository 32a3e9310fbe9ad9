package commands_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/notekeep/cmd/notekeep/commands"
	"go.trai.ch/notekeep/internal/adapters/tools"
	"go.trai.ch/notekeep/internal/app"
	"go.trai.ch/notekeep/internal/build"
	"go.trai.ch/notekeep/internal/core/domain"
	"gopkg.in/yaml.v3"
)

type queryCall struct {
	from, tool string
	args       map[string]any
}

type mockApp struct {
	configured  bool
	configPath  string
	overrides   map[string]any
	configErr   error
	backupFunc  func(ctx context.Context) (*domain.CycleResult, error)
	status      *domain.BackupStatus
	watched     bool
	serveOpts   app.ServeOptions
	served      string
	snapshots   []domain.Snapshot
	patch       []byte
	restored    string
	queries     []queryCall
	queryResult tools.Result
}

func (m *mockApp) Configure(path string, overrides map[string]any) (*domain.Config, error) {
	m.configured = true
	m.configPath = path
	m.overrides = overrides
	if m.configErr != nil {
		return nil, m.configErr
	}
	return &domain.Config{}, nil
}

func (m *mockApp) Backup(ctx context.Context) (*domain.CycleResult, error) {
	if m.backupFunc != nil {
		return m.backupFunc(ctx)
	}
	return &domain.CycleResult{}, nil
}

func (m *mockApp) Status(context.Context) (*domain.BackupStatus, error) {
	return m.status, nil
}

func (m *mockApp) Watch(context.Context) error {
	m.watched = true
	return nil
}

func (m *mockApp) Serve(_ context.Context, in io.Reader, out io.Writer, opts app.ServeOptions) error {
	m.serveOpts = opts
	data, err := io.ReadAll(in)
	if err != nil {
		return err
	}
	m.served = string(data)
	_, err = out.Write([]byte("served\n"))
	return err
}

func (m *mockApp) Snapshots(context.Context) ([]domain.Snapshot, error) {
	return m.snapshots, nil
}

func (m *mockApp) DiffSnapshot(_ context.Context, name string) ([]byte, error) {
	if name == "missing" {
		return nil, domain.ErrSnapshotNotFound
	}
	return m.patch, nil
}

func (m *mockApp) RestoreSnapshot(_ context.Context, name string) (*domain.RestoreResult, error) {
	m.restored = name
	return &domain.RestoreResult{
		Restored:     domain.Snapshot{Name: name},
		Safety:       &domain.Snapshot{Name: "backup-2024-03-02T10-00-00.json"},
		Pruned:       1,
		MeetingCount: 4,
		BackupPath:   "/b/backup.json",
	}, nil
}

func (m *mockApp) Query(_ context.Context, from, tool string, args map[string]any) (tools.Result, error) {
	m.queries = append(m.queries, queryCall{from: from, tool: tool, args: args})
	return m.queryResult, nil
}

func execute(t *testing.T, m *mockApp, args ...string) (string, error) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")

	cli := commands.New(m)
	out := new(bytes.Buffer)
	cli.SetOutput(out, new(bytes.Buffer))
	cli.SetArgs(args)

	err := cli.Execute(context.Background())
	return out.String(), err
}

var cycleResult = &domain.CycleResult{
	Report: domain.ReconciliationReport{
		MeetingsBefore: 2,
		MeetingsAfter:  3,
		New:            1,
		Updated:        1,
		Preserved:      1,
	},
	Snapshot:   &domain.Snapshot{Name: "backup-2024-03-01T10-00-00.json"},
	Pruned:     2,
	BackupPath: "/b/backup.json",
}

func TestCommands_Configure(t *testing.T) {
	t.Run("passes only changed flags as overrides", func(t *testing.T) {
		m := &mockApp{}
		_, err := execute(t, m, "backup", "--config", "/etc/notekeep.yaml",
			"--source", "/c/cache.json", "--max-snapshots", "3", "--log-level", "debug")
		require.NoError(t, err)

		assert.True(t, m.configured)
		assert.Equal(t, "/etc/notekeep.yaml", m.configPath)
		assert.Equal(t, map[string]any{
			"cache_path":    "/c/cache.json",
			"max_snapshots": 3,
			"log_level":     "debug",
		}, m.overrides)
	})

	t.Run("returns configuration errors", func(t *testing.T) {
		m := &mockApp{configErr: domain.ErrConfigLoadFailed}
		_, err := execute(t, m, "status")
		require.ErrorIs(t, err, domain.ErrConfigLoadFailed)
	})

	t.Run("rejects unknown output formats", func(t *testing.T) {
		m := &mockApp{}
		_, err := execute(t, m, "status", "--output", "xml")
		require.ErrorIs(t, err, domain.ErrConfigInvalid)
		assert.False(t, m.configured)
	})
}

func TestCommands_Backup(t *testing.T) {
	m := &mockApp{backupFunc: func(context.Context) (*domain.CycleResult, error) {
		return cycleResult, nil
	}}

	t.Run("text", func(t *testing.T) {
		out, err := execute(t, m, "backup")
		require.NoError(t, err)
		assert.Equal(t, "✓ Backup complete\n"+
			"  meetings   2 → 3\n"+
			"  new        1\n"+
			"  updated    1\n"+
			"  preserved  1\n"+
			"  location   /b/backup.json\n"+
			"  snapshot   backup-2024-03-01T10-00-00.json\n"+
			"  pruned     2\n", out)
	})

	t.Run("json", func(t *testing.T) {
		out, err := execute(t, m, "backup", "-o", "json")
		require.NoError(t, err)

		var got domain.CycleResult
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		assert.Equal(t, *cycleResult, got)
	})

	t.Run("returns error on failure", func(t *testing.T) {
		failing := &mockApp{backupFunc: func(context.Context) (*domain.CycleResult, error) {
			return nil, errors.New("simulated error")
		}}
		_, err := execute(t, failing, "backup")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "simulated error")
	})
}

func TestCommands_Status(t *testing.T) {
	m := &mockApp{status: &domain.BackupStatus{
		SourcePath:   "/c/cache.json",
		BackupPath:   "/b/backup.json",
		Exists:       true,
		MeetingCount: 3,
		Snapshots:    []domain.Snapshot{},
		Retention:    10,
	}}

	t.Run("text", func(t *testing.T) {
		out, err := execute(t, m, "status")
		require.NoError(t, err)
		assert.Contains(t, out, "# Backup Status")
		assert.Contains(t, out, "- **Meetings:** 3")
		assert.Contains(t, out, "No snapshots yet")
	})

	t.Run("yaml", func(t *testing.T) {
		out, err := execute(t, m, "status", "--output", "yaml")
		require.NoError(t, err)

		var got map[string]any
		require.NoError(t, yaml.Unmarshal([]byte(out), &got))
		assert.Equal(t, "/b/backup.json", got["backup_path"])
		assert.Equal(t, 3, got["meeting_count"])
		assert.Equal(t, true, got["exists"])
	})
}

func TestCommands_Watch(t *testing.T) {
	m := &mockApp{}
	_, err := execute(t, m, "watch")
	require.NoError(t, err)
	assert.True(t, m.watched)
}

func TestCommands_Serve(t *testing.T) {
	m := &mockApp{}
	cli := commands.New(m)
	out := new(bytes.Buffer)
	cli.SetOutput(out, new(bytes.Buffer))
	cli.SetInput(strings.NewReader("{\"jsonrpc\":\"2.0\"}\n"))
	cli.SetArgs([]string{"serve", "--auto-backup"})

	require.NoError(t, cli.Execute(context.Background()))
	assert.True(t, m.serveOpts.AutoBackup)
	assert.Equal(t, "{\"jsonrpc\":\"2.0\"}\n", m.served)
	assert.Equal(t, "served\n", out.String())
}

func TestCommands_Snapshots(t *testing.T) {
	taken := time.Date(2024, 3, 1, 10, 0, 0, 0, time.Local)

	t.Run("list", func(t *testing.T) {
		m := &mockApp{snapshots: []domain.Snapshot{
			{Name: "backup-2024-03-01T10-00-00.json", TakenAt: taken, Size: 120},
		}}
		out, err := execute(t, m, "snapshots", "list")
		require.NoError(t, err)
		assert.Equal(t, "NAME                             TAKEN                SIZE\n"+
			"backup-2024-03-01T10-00-00.json  2024-03-01 10:00:00  120\n", out)
	})

	t.Run("list empty", func(t *testing.T) {
		out, err := execute(t, &mockApp{}, "snapshots", "list")
		require.NoError(t, err)
		assert.Equal(t, "No snapshots yet\n", out)
	})

	t.Run("diff indents the patch", func(t *testing.T) {
		m := &mockApp{patch: []byte(`{"meeting_count":3}`)}
		out, err := execute(t, m, "snapshots", "diff", "backup-2024-03-01T10-00-00.json")
		require.NoError(t, err)
		assert.Equal(t, "{\n  \"meeting_count\": 3\n}\n", out)
	})

	t.Run("diff requires a name", func(t *testing.T) {
		_, err := execute(t, &mockApp{}, "snapshots", "diff")
		require.Error(t, err)
	})

	t.Run("diff returns app errors", func(t *testing.T) {
		_, err := execute(t, &mockApp{}, "snapshots", "diff", "missing")
		require.ErrorIs(t, err, domain.ErrSnapshotNotFound)
	})

	t.Run("restore", func(t *testing.T) {
		m := &mockApp{}
		out, err := execute(t, m, "snapshots", "restore", "backup-2024-03-01T10-00-00.json")
		require.NoError(t, err)
		assert.Equal(t, "backup-2024-03-01T10-00-00.json", m.restored)
		assert.Equal(t, "✓ Restored backup-2024-03-01T10-00-00.json (4 meetings)\n"+
			"  location  /b/backup.json\n"+
			"  undo with backup-2024-03-02T10-00-00.json\n"+
			"  pruned    1\n", out)
	})
}

func TestCommands_Meetings(t *testing.T) {
	t.Run("search joins the query and omits the default limit", func(t *testing.T) {
		m := &mockApp{queryResult: tools.Result{Text: "# Search Results"}}
		out, err := execute(t, m, "meetings", "search", "quarterly", "planning")
		require.NoError(t, err)
		assert.Equal(t, "# Search Results\n", out)
		require.Len(t, m.queries, 1)
		assert.Equal(t, queryCall{
			tool: tools.SearchMeetings,
			args: map[string]any{"query": "quarterly planning"},
		}, m.queries[0])
	})

	t.Run("search passes an explicit limit and source", func(t *testing.T) {
		m := &mockApp{}
		_, err := execute(t, m, "meetings", "search", "x", "--limit", "5", "--from", "backup")
		require.NoError(t, err)
		require.Len(t, m.queries, 1)
		assert.Equal(t, queryCall{
			from: "backup",
			tool: tools.SearchMeetings,
			args: map[string]any{"query": "x", "limit": 5},
		}, m.queries[0])
	})

	t.Run("meeting commands", func(t *testing.T) {
		m := &mockApp{}
		for _, cmd := range []string{"show", "transcript", "notes"} {
			_, err := execute(t, m, "meetings", cmd, "m1")
			require.NoError(t, err)
		}
		require.Len(t, m.queries, 3)
		assert.Equal(t, tools.GetMeeting, m.queries[0].tool)
		assert.Equal(t, tools.GetTranscript, m.queries[1].tool)
		assert.Equal(t, tools.GetNotes, m.queries[2].tool)
		assert.Equal(t, map[string]any{"meeting_id": "m1"}, m.queries[2].args)
	})

	t.Run("analyze passes date bounds", func(t *testing.T) {
		m := &mockApp{}
		_, err := execute(t, m, "meetings", "analyze", "topics", "--start", "2024-01-01", "--end", "2024-01-31")
		require.NoError(t, err)
		require.Len(t, m.queries, 1)
		assert.Equal(t, map[string]any{
			"pattern_type": "topics",
			"start_date":   "2024-01-01",
			"end_date":     "2024-01-31",
		}, m.queries[0].args)
	})

	t.Run("tool errors fail the command", func(t *testing.T) {
		m := &mockApp{queryResult: tools.Result{Text: "Meeting not found: m9", IsError: true}}
		out, err := execute(t, m, "meetings", "show", "m9")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Meeting not found: m9")
		assert.Empty(t, out)
	})
}

func TestCommands_Version(t *testing.T) {
	m := &mockApp{}
	out, err := execute(t, m, "version")
	require.NoError(t, err)
	assert.Equal(t, "notekeep version "+build.Version+" (commit: "+build.Commit+", date: "+build.Date+")\n", out)
	assert.False(t, m.configured)
}

func TestCommands_VersionFlag(t *testing.T) {
	m := &mockApp{}
	out, err := execute(t, m, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "notekeep version "+build.Version)
	assert.False(t, m.configured)
}
