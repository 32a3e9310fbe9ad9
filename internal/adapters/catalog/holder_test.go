package catalog_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/notekeep/internal/adapters/cachefile"
	"go.trai.ch/notekeep/internal/adapters/catalog"
	"go.trai.ch/notekeep/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func newHolder(t *testing.T, log *mocks.MockLogger) (*catalog.Holder, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cache-v3.json")
	return catalog.NewHolder(path, cachefile.NewReader(), catalog.NewParser(log), log), path
}

// writeAt writes content and pins the modification time so that staleness
// checks do not depend on the file system's timestamp resolution.
func writeAt(t *testing.T, path, content string, mtime time.Time) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	require.NoError(t, os.Chtimes(path, mtime, mtime))
}

func TestHolder_MissingFileIsEmpty(t *testing.T) {
	ctrl := gomock.NewController(t)
	holder, _ := newHolder(t, mocks.NewMockLogger(ctrl))

	cat, err := holder.RefreshIfStale(context.Background())
	require.NoError(t, err)
	assert.Empty(t, cat.Meetings)
}

func TestHolder_ReloadsOnChange(t *testing.T) {
	ctrl := gomock.NewController(t)
	holder, path := newHolder(t, mocks.NewMockLogger(ctrl))
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	writeAt(t, path, `{"documents": {"m1": {}}}`, base)
	first, err := holder.RefreshIfStale(context.Background())
	require.NoError(t, err)
	assert.Len(t, first.Meetings, 1)

	again, err := holder.RefreshIfStale(context.Background())
	require.NoError(t, err)
	assert.Same(t, first, again)

	writeAt(t, path, `{"documents": {"m1": {}, "m2": {}}}`, base.Add(time.Minute))
	second, err := holder.RefreshIfStale(context.Background())
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.Len(t, second.Meetings, 2)
}

func TestHolder_TouchWithoutChangeKeepsCatalog(t *testing.T) {
	ctrl := gomock.NewController(t)
	holder, path := newHolder(t, mocks.NewMockLogger(ctrl))
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	writeAt(t, path, `{"documents": {"m1": {}}}`, base)
	first, err := holder.RefreshIfStale(context.Background())
	require.NoError(t, err)

	require.NoError(t, os.Chtimes(path, base.Add(time.Hour), base.Add(time.Hour)))
	second, err := holder.RefreshIfStale(context.Background())
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestHolder_KeepsPreviousCatalogOnDecodeFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	holder, path := newHolder(t, log)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	writeAt(t, path, `{"documents": {"m1": {}}}`, base)
	first, err := holder.RefreshIfStale(context.Background())
	require.NoError(t, err)

	log.EXPECT().Warn(gomock.Any()).Times(1)
	log.EXPECT().Error(gomock.Any()).Times(1)

	writeAt(t, path, `{"documents": `, base.Add(time.Minute))
	second, err := holder.RefreshIfStale(context.Background())
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestHolder_DecodeFailureWithoutPreviousIsEmpty(t *testing.T) {
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	holder, path := newHolder(t, log)

	log.EXPECT().Warn(gomock.Any()).Times(1)
	log.EXPECT().Error(gomock.Any()).Times(1)

	writeAt(t, path, `[]`, time.Now())
	cat, err := holder.RefreshIfStale(context.Background())
	require.NoError(t, err)
	assert.Empty(t, cat.Meetings)
}

func TestHolder_Invalidate(t *testing.T) {
	ctrl := gomock.NewController(t)
	holder, path := newHolder(t, mocks.NewMockLogger(ctrl))

	writeAt(t, path, `{"documents": {"m1": {}}}`, time.Now())
	first, err := holder.RefreshIfStale(context.Background())
	require.NoError(t, err)

	holder.Invalidate()
	second, err := holder.RefreshIfStale(context.Background())
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.Equal(t, path, holder.Path())
}
