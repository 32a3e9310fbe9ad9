package cachefile_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/notekeep/internal/adapters/cachefile"
	"go.trai.ch/notekeep/internal/core/domain"
)

func parse(t *testing.T, raw string) domain.Value {
	t.Helper()
	v, err := domain.ParseValue([]byte(raw))
	require.NoError(t, err)
	return v
}

func sampleBackupFile(t *testing.T) *domain.BackupFile {
	t.Helper()
	return domain.NewBackupFile(domain.BackupMetadata{
		CreatedAt:    "2026-01-01T09:00:00+01:00",
		LastMergedAt: "2026-01-02T09:00:00+01:00",
		SourcePath:   "/cache/cache-v3.json",
		MeetingCount: 2,
		Version:      domain.BackupFormatVersion,
	}, domain.CacheDocument{
		Documents: domain.Section{
			"m2": parse(t, `{"title": "Standup"}`),
			"m1": parse(t, `{"title": "Réunion <b>&</b>"}`),
		},
		Transcripts: domain.Section{
			"m1": parse(t, `[{"text": "bonjour", "source": "microphone"}]`),
		},
	})
}

func TestBackupStore_SaveGolden(t *testing.T) {
	path := filepath.Join(t.TempDir(), domain.BackupFileName)

	require.NoError(t, cachefile.NewBackupStore().Save(path, sampleBackupFile(t)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	g := goldie.New(t)
	g.Assert(t, "backup_file", data)
}

func TestBackupStore_SaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), domain.BackupFileName)
	store := cachefile.NewBackupStore()
	file := sampleBackupFile(t)

	require.NoError(t, store.Save(path, file))

	state, err := store.Load(path)
	require.NoError(t, err)
	require.NotNil(t, state)

	assert.Equal(t, "2026-01-01T09:00:00+01:00", state.CreatedAt)
	assert.Equal(t, "2026-01-02T09:00:00+01:00", state.LastMergedAt)
	assert.Len(t, state.Document.Documents, 2)
	assert.True(t, state.Document.Documents["m1"].Equal(file.Documents["m1"]))
	assert.True(t, state.Document.Transcripts["m1"].Equal(file.Transcripts["m1"]))
	assert.Empty(t, state.Document.DocumentPanels)
}

func TestBackupStore_SaveReplacesAtomically(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, domain.BackupFileName)
	store := cachefile.NewBackupStore()

	require.NoError(t, os.WriteFile(path, []byte(`{"old": true}`), domain.FilePerm))
	require.NoError(t, store.Save(path, sampleBackupFile(t)))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temporary file must not be left behind")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(domain.FilePerm), info.Mode().Perm())
}

func TestBackupStore_SaveCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "backups", domain.BackupFileName)

	require.NoError(t, cachefile.NewBackupStore().Save(path, sampleBackupFile(t)))
	assert.FileExists(t, path)
}

func TestBackupStore_SaveFailureKeepsPreviousFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, domain.BackupFileName)
	require.NoError(t, os.WriteFile(path, []byte(`{"previous": true}`), domain.FilePerm))

	// The parent of the target is a regular file.
	err := cachefile.NewBackupStore().Save(filepath.Join(path, "inner.json"), sampleBackupFile(t))
	assert.ErrorIs(t, err, domain.ErrBackupDirCreateFailed)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"previous": true}`, string(data))
}

func TestBackupStore_Load(t *testing.T) {
	tests := []struct {
		name          string
		content       string
		wantCreatedAt string
		wantMeetings  int
	}{
		{
			name:          "full metadata",
			content:       `{"backup_metadata": {"created_at": "2025-05-01T10:00:00", "version": 1}, "documents": {"a": {}}}`,
			wantCreatedAt: "2025-05-01T10:00:00",
			wantMeetings:  1,
		},
		{
			name:         "missing metadata",
			content:      `{"documents": {"a": {}, "b": {}}}`,
			wantMeetings: 2,
		},
		{
			name:         "metadata is not an object",
			content:      `{"backup_metadata": "x", "documents": {"a": {}}}`,
			wantMeetings: 1,
		},
		{
			name:         "empty array section",
			content:      `{"documents": {"a": {}, "b": {}}, "transcripts": []}`,
			wantMeetings: 2,
		},
		{
			name:         "non-string created_at",
			content:      `{"backup_metadata": {"created_at": 12}, "documents": {}}`,
			wantMeetings: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), domain.BackupFileName)
			require.NoError(t, os.WriteFile(path, []byte(tt.content), domain.FilePerm))

			state, err := cachefile.NewBackupStore().Load(path)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCreatedAt, state.CreatedAt)
			assert.Equal(t, tt.wantMeetings, state.Document.MeetingCount())
		})
	}
}

func TestBackupStore_Load_Missing(t *testing.T) {
	state, err := cachefile.NewBackupStore().Load(filepath.Join(t.TempDir(), domain.BackupFileName))
	require.NoError(t, err)
	assert.Nil(t, state)
}

func TestBackupStore_Load_Corrupt(t *testing.T) {
	for _, content := range []string{`{"documents": `, `[]`, `{"documents": [1]}`, `{"transcripts": "x"}`} {
		path := filepath.Join(t.TempDir(), domain.BackupFileName)
		require.NoError(t, os.WriteFile(path, []byte(content), domain.FilePerm))

		_, err := cachefile.NewBackupStore().Load(path)
		assert.ErrorIs(t, err, domain.ErrBackupCorrupt, "content %q", content)
	}
}
